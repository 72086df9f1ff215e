package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/PIH/iniz-exporters/internal/dependency"
	"github.com/PIH/iniz-exporters/internal/record"
)

// Exit codes for CLI commands. These are stable so wrapper scripts can react
// to the failure class.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeCycle indicates the reference graph contains cycles and no
	// legal load order exists.
	ExitCodeCycle = 2
	// ExitCodeMalformed indicates malformed input data (unresolvable
	// referents, missing or duplicate keys).
	ExitCodeMalformed = 3
)

// rootCmd represents the base command for the inizexport application.
var rootCmd = &cobra.Command{
	Use:   "inizexport",
	Short: "Export OpenMRS reference data as Initializer-loadable CSVs",
	Long: `inizexport pulls reference data (concepts, locations) out of an
OpenMRS MySQL database and writes CSV files that the OpenMRS Initializer
module can load. Concept rows are ordered so that every set member and
answer appears before the concept that refers to it.`,
	// SilenceUsage prevents Cobra from printing the usage message on
	// errors that are handled by the application.
	SilenceUsage: true,
}

// SetVersion sets the version for the root command. Called from the main
// package to inject the build version.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "inizexport version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the appropriate exit code based on the error type.
func getExitCode(err error) int {
	var cycleErr *dependency.CycleError
	if errors.As(err, &cycleErr) {
		return ExitCodeCycle
	}

	var unknownErr *dependency.UnknownReferentError
	if errors.As(err, &unknownErr) {
		return ExitCodeMalformed
	}
	var missingErr *record.MissingKeyError
	if errors.As(err, &missingErr) {
		return ExitCodeMalformed
	}
	var dupErr *record.DuplicateKeyError
	if errors.As(err, &dupErr) {
		return ExitCodeMalformed
	}

	return ExitCodeError
}

func init() {
	rootCmd.AddCommand(newVersionCmd())
}
