package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/PIH/iniz-exporters/internal/config"
	"github.com/PIH/iniz-exporters/internal/export"
	"github.com/PIH/iniz-exporters/internal/mysql"
	"github.com/PIH/iniz-exporters/internal/record"
	"github.com/PIH/iniz-exporters/pkg/logging"
	pkgstrings "github.com/PIH/iniz-exporters/pkg/strings"
)

var (
	conceptsOutfile     string
	conceptsSetName     string
	conceptsExcludeSets []string
	conceptsExcludeKeys []string
	conceptsServer      string
	conceptsPropsPath   string
	conceptsUser        string
	conceptsPassword    string
	conceptsDocker      bool
	conceptsLocales     string
	conceptsNameTypes   string
	conceptsKey         string
	conceptsWhere       string
	conceptsLimit       int
	conceptsVerbose     bool
	conceptsQuiet       bool
)

// conceptsCmd exports the concepts domain.
var conceptsCmd = &cobra.Command{
	Use:   "concepts <database>",
	Short: "Export concepts in dependency order",
	Long: `Export concepts from an OpenMRS MySQL database as a CSV the
Initializer can load. Rows are ordered so every set member and answer
appears before the concept referring to it; a reference cycle aborts the
export with a report of every cycle found.

Examples:
  inizexport concepts ces
  inizexport concepts ces -c "Vitals" -o vitals.csv
  inizexport concepts ces --key uuid --exclude-set "Retired Forms"`,
	Args: cobra.ExactArgs(1),
	RunE: runConcepts,
}

func init() {
	rootCmd.AddCommand(conceptsCmd)

	conceptsCmd.Flags().StringVarP(&conceptsOutfile, "outfile", "o", "",
		"Path of the CSV file to write (default: <outputDir>/concepts[-<set-name>].csv)")
	conceptsCmd.Flags().StringVarP(&conceptsSetName, "set-name", "c", "",
		"Fully specified English name of a concept set; only concepts reachable from it are exported")
	conceptsCmd.Flags().StringArrayVarP(&conceptsExcludeSets, "exclude-set", "e", nil,
		"Concept set whose whole subtree is removed from the output (repeatable)")
	conceptsCmd.Flags().StringArrayVar(&conceptsExcludeKeys, "exclude", nil,
		"Individual concept key to remove from the output (repeatable)")
	conceptsCmd.Flags().StringVarP(&conceptsServer, "server", "s", "",
		"SDK server name used to locate credentials (default: the database name)")
	conceptsCmd.Flags().StringVarP(&conceptsPropsPath, "props-path", "r", "",
		"Path to the properties file holding connection credentials")
	conceptsCmd.Flags().StringVarP(&conceptsUser, "user", "u", "", "Database username")
	conceptsCmd.Flags().StringVarP(&conceptsPassword, "password", "p", "", "Database password")
	conceptsCmd.Flags().BoolVarP(&conceptsDocker, "docker", "d", true,
		"Run mysql through the openmrs-sdk-mysql docker container")
	conceptsCmd.Flags().StringVarP(&conceptsLocales, "locales", "l", "",
		"Comma-separated list of locales to extract names for")
	conceptsCmd.Flags().StringVar(&conceptsNameTypes, "name-types", "",
		"Comma-separated list of name types to extract (full, short)")
	conceptsCmd.Flags().StringVar(&conceptsKey, "key", "name",
		"Concept identifier the referent columns use: name or uuid")
	conceptsCmd.Flags().StringVar(&conceptsWhere, "where", "",
		"Extra SQL predicate ANDed onto the concept filter, e.g. 'c.is_set = 1'")
	conceptsCmd.Flags().IntVar(&conceptsLimit, "limit", 0,
		"Cap the number of concepts queried (debugging aid)")
	conceptsCmd.Flags().BoolVarP(&conceptsVerbose, "verbose", "v", false, "More verbose output")
	conceptsCmd.Flags().BoolVarP(&conceptsQuiet, "quiet", "q", false, "Suppress progress indicators")
}

func runConcepts(cmd *cobra.Command, args []string) error {
	logging.InitFromVerbose(conceptsVerbose)

	cfg, err := config.LoadConfig(config.GetDefaultConfigPath())
	if err != nil {
		return err
	}

	locales := cfg.Locales
	if cmd.Flags().Changed("locales") {
		locales = pkgstrings.SplitList(conceptsLocales)
	}
	nameTypes := cfg.NameTypes
	if cmd.Flags().Changed("name-types") {
		nameTypes = pkgstrings.SplitList(conceptsNameTypes)
	}
	docker := cfg.Docker
	if cmd.Flags().Changed("docker") {
		docker = conceptsDocker
	}

	key, err := keyColumn(conceptsKey)
	if err != nil {
		return err
	}

	outfile := conceptsOutfile
	if outfile == "" {
		name := "concepts"
		if conceptsSetName != "" {
			name += "-" + pkgstrings.SquishName(conceptsSetName)
		}
		outfile = filepath.Join(cfg.OutputDir, name+".csv")
	}

	session, err := mysql.NewSession(mysql.Options{
		Database:       args[0],
		Server:         conceptsServer,
		PropertiesPath: conceptsPropsPath,
		User:           conceptsUser,
		Password:       conceptsPassword,
		Docker:         docker,
	})
	if err != nil {
		return err
	}

	pipeline := export.New(session, export.Options{
		Locales:     locales,
		NameTypes:   nameTypes,
		Key:         key,
		SetName:     conceptsSetName,
		ExcludeSets: conceptsExcludeSets,
		ExcludeKeys: conceptsExcludeKeys,
		Where:       conceptsWhere,
		Outfile:     outfile,
		Limit:       conceptsLimit,
		Quiet:       conceptsQuiet,
		DumpRaw:     conceptsVerbose,
	})
	return pipeline.Run(cmd.Context())
}

// keyColumn maps the --key flag onto the column the referent values use.
func keyColumn(key string) (string, error) {
	switch key {
	case "name", "":
		return record.KeyFullySpecifiedNameEN, nil
	case "uuid":
		return record.KeyUUID, nil
	default:
		return "", fmt.Errorf("invalid key %q: must be 'name' or 'uuid'", key)
	}
}
