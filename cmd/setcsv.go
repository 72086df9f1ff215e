package cmd

import (
	"github.com/spf13/cobra"

	"github.com/PIH/iniz-exporters/internal/setcsv"
	"github.com/PIH/iniz-exporters/pkg/logging"
)

var (
	setCsvOutfile string
	setCsvVerbose bool
)

// setCsvCmd derives a concept_sets CSV from an exported concepts CSV.
var setCsvCmd = &cobra.Command{
	Use:   "set-csv <infile>",
	Short: "Build a concept_sets CSV from an exported concepts CSV",
	Long: `Build an Initializer concept_sets CSV from a concepts CSV. The
first data row of the input defines the set; every following row becomes a
member of it, in input order.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logging.InitFromVerbose(setCsvVerbose)
		return setcsv.Create(setcsv.Options{
			Infile:  args[0],
			Outfile: setCsvOutfile,
		})
	},
}

func init() {
	rootCmd.AddCommand(setCsvCmd)

	setCsvCmd.Flags().StringVarP(&setCsvOutfile, "outfile", "o", "output.csv",
		"Path of the CSV file to write")
	setCsvCmd.Flags().BoolVarP(&setCsvVerbose, "verbose", "v", false, "More verbose output")
}
