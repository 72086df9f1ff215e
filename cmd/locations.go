package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/PIH/iniz-exporters/internal/config"
	"github.com/PIH/iniz-exporters/internal/location"
	"github.com/PIH/iniz-exporters/internal/mysql"
	"github.com/PIH/iniz-exporters/pkg/logging"
)

var (
	locationsOutfile   string
	locationsServer    string
	locationsPropsPath string
	locationsUser      string
	locationsPassword  string
	locationsDocker    bool
	locationsVerbose   bool
	locationsQuiet     bool
)

// locationsCmd exports the locations domain.
var locationsCmd = &cobra.Command{
	Use:   "locations <database>",
	Short: "Export locations with spread tags and attributes",
	Long: `Export locations from an OpenMRS MySQL database as a CSV the
Initializer can load. Tags and attributes are spread into one column per
value, and parents are ordered before their children.`,
	Args: cobra.ExactArgs(1),
	RunE: runLocations,
}

func init() {
	rootCmd.AddCommand(locationsCmd)

	locationsCmd.Flags().StringVarP(&locationsOutfile, "outfile", "o", "",
		"Path of the CSV file to write (default: <outputDir>/locations.csv)")
	locationsCmd.Flags().StringVarP(&locationsServer, "server", "s", "",
		"SDK server name used to locate credentials (default: the database name)")
	locationsCmd.Flags().StringVarP(&locationsPropsPath, "props-path", "r", "",
		"Path to the properties file holding connection credentials")
	locationsCmd.Flags().StringVarP(&locationsUser, "user", "u", "", "Database username")
	locationsCmd.Flags().StringVarP(&locationsPassword, "password", "p", "", "Database password")
	locationsCmd.Flags().BoolVarP(&locationsDocker, "docker", "d", true,
		"Run mysql through the openmrs-sdk-mysql docker container")
	locationsCmd.Flags().BoolVarP(&locationsVerbose, "verbose", "v", false, "More verbose output")
	locationsCmd.Flags().BoolVarP(&locationsQuiet, "quiet", "q", false, "Suppress progress indicators")
}

func runLocations(cmd *cobra.Command, args []string) error {
	logging.InitFromVerbose(locationsVerbose)

	cfg, err := config.LoadConfig(config.GetDefaultConfigPath())
	if err != nil {
		return err
	}

	docker := cfg.Docker
	if cmd.Flags().Changed("docker") {
		docker = locationsDocker
	}

	outfile := locationsOutfile
	if outfile == "" {
		outfile = filepath.Join(cfg.OutputDir, "locations.csv")
	}

	session, err := mysql.NewSession(mysql.Options{
		Database:       args[0],
		Server:         locationsServer,
		PropertiesPath: locationsPropsPath,
		User:           locationsUser,
		Password:       locationsPassword,
		Docker:         docker,
	})
	if err != nil {
		return err
	}

	return location.Export(cmd.Context(), session, location.Options{
		Outfile: outfile,
		Quiet:   locationsQuiet,
	})
}
