/*
Copyright © 2025 Klauzula Contributors

Klauzula is a CLI client for the abusive-clause analysis service.
*/
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/uzzysan/Klauzule-zakazane/internal/lib"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "klauzula",
	Short: "Klauzula - abusive clause analysis client",
	Long: `Klauzula submits contracts to the abusive-clause analysis service and
waits for the result.

A run uploads the document, resolves the background analysis job, polls it
until it finishes and downloads the analysis:
  - upload (PDF, DOCX, JPG, PNG; 50 MB by default)
  - job lookup with bounded retry
  - fixed-interval polling with a time budget
  - analysis fetch and report

Example:
  klauzula analyze umowa.pdf
  klauzula analyze contract.docx --language en --mode ai --output json
  klauzula job status <task-id>
  klauzula analysis show <analysis-id> --risk-level high`,
	Version:       "0.1.0",
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		var wfErr *lib.WorkflowError
		if errors.As(err, &wfErr) {
			fmt.Fprint(os.Stderr, wfErr.UserMessage())
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(exitCode(err))
	}
}

// exitCode maps an error to the process exit status
func exitCode(err error) int {
	switch lib.KindOf(err) {
	case lib.KindCancelled:
		return 130
	case lib.KindValidation, lib.KindConfiguration:
		return 2
	default:
		return 1
	}
}

func init() {
	// Persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./klauzula.yaml, ~/.config/klauzula/klauzula.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().String("base-url", "", "analysis service base URL (overrides api.base_url)")

	// Add version template
	rootCmd.SetVersionTemplate("Klauzula version {{.Version}}\n")
}
