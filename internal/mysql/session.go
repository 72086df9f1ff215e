// Package mysql runs statements against the OpenMRS MySQL database by
// shelling out to the mysql CLI, optionally through docker exec when the
// database runs in the openmrs-sdk-mysql container. There is no driver
// connection: the exporters are batch tools run next to an SDK install, and
// the CLI is what is reliably present there.
package mysql

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/PIH/iniz-exporters/pkg/logging"
)

// ContainerName is the name of the dockerized MySQL container created by the
// OpenMRS SDK.
const ContainerName = "openmrs-sdk-mysql"

// Property keys holding the database credentials in the server's
// openmrs-server.properties / openmrs-runtime.properties file.
const (
	usernameProperty = "connection.username"
	passwordProperty = "connection.password"
)

// Session holds everything needed to run statements against one database.
// It is constructed once per command invocation and threaded through the
// pipeline; nothing here is package-level mutable state.
type Session struct {
	// Database is the MySQL schema name.
	Database string
	// User and Password authenticate the mysql CLI.
	User     string
	Password string
	// Docker routes the mysql invocation through docker exec.
	Docker bool

	// runner is swapped out by tests.
	runner commandRunner
}

type commandRunner func(ctx context.Context, name string, args ...string) (string, error)

// runCommand executes a command and returns its stdout, with stderr folded
// into the error on failure.
func runCommand(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s exited with error: %w\nstderr: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// Options configures session construction.
type Options struct {
	Database string
	// Server is the OpenMRS SDK server name used to locate the properties
	// file with credentials. Defaults to the database name.
	Server string
	// PropertiesPath overrides the default properties file location.
	PropertiesPath string
	// User and Password skip the properties lookup when both are given.
	User     string
	Password string
	Docker   bool
}

// NewSession builds a session, resolving credentials from the SDK server's
// properties file unless they were passed in explicitly.
func NewSession(opts Options) (*Session, error) {
	s := &Session{
		Database: opts.Database,
		User:     opts.User,
		Password: opts.Password,
		Docker:   opts.Docker,
		runner:   runCommand,
	}
	if s.User != "" && s.Password != "" {
		return s, nil
	}

	path := opts.PropertiesPath
	if path == "" {
		server := opts.Server
		if server == "" {
			server = opts.Database
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("locating properties file: %w", err)
		}
		path = filepath.Join(home, "openmrs", server, "openmrs-server.properties")
	}

	user, password, err := ReadCredentials(path)
	if err != nil {
		return nil, err
	}
	if s.User == "" {
		s.User = user
	}
	if s.Password == "" {
		s.Password = password
	}
	logging.Debug("MySQL", "Resolved credentials for user %q from %s", s.User, path)
	return s, nil
}

// ReadCredentials extracts connection.username and connection.password from
// an OpenMRS properties file. The file is plain key=value lines, which
// godotenv parses directly.
func ReadCredentials(path string) (user, password string, err error) {
	props, err := godotenv.Read(path)
	if err != nil {
		return "", "", fmt.Errorf("reading properties file %s: %w", path, err)
	}
	user = props[usernameProperty]
	password = props[passwordProperty]
	if user == "" {
		// The server properties file historically only carries the
		// password; root is the SDK default account.
		user = "root"
	}
	if password == "" {
		return "", "", fmt.Errorf("no %s found in %s", passwordProperty, path)
	}
	return user, password, nil
}

// Run executes one SQL statement batch and returns the raw tab-separated
// output. The statement must not contain double quotes.
func (s *Session) Run(ctx context.Context, sql string) (string, error) {
	if strings.Contains(sql, `"`) {
		return "", fmt.Errorf("refusing to run SQL containing a double quote")
	}

	args := []string{
		"-u", s.User,
		"--password=" + s.Password,
		"-e", sql,
		s.Database,
	}

	if !s.Docker {
		logging.Debug("MySQL", "Running mysql against %s", s.Database)
		return s.runner(ctx, "mysql", args...)
	}

	containerID, err := s.containerID(ctx)
	if err != nil {
		return "", err
	}
	logging.Debug("MySQL", "Running mysql in container %s against %s", containerID, s.Database)
	dockerArgs := append([]string{"exec", containerID, "mysql"}, args...)
	return s.runner(ctx, "docker", dockerArgs...)
}

// containerID finds the running SDK MySQL container.
func (s *Session) containerID(ctx context.Context) (string, error) {
	out, err := s.runner(ctx, "docker", "ps", "--quiet", "--filter", "name="+ContainerName)
	if err != nil {
		return "", fmt.Errorf("listing docker containers: %w", err)
	}
	id := strings.TrimSpace(out)
	if id == "" {
		return "", fmt.Errorf("no running container named %s", ContainerName)
	}
	// docker ps can match more than one container; take the first.
	if i := strings.IndexByte(id, '\n'); i >= 0 {
		id = id[:i]
	}
	return id, nil
}
