package cmd

import (
	"github.com/spf13/cobra"

	"github.com/uzzysan/Klauzule-zakazane/internal/services"
	"github.com/uzzysan/Klauzule-zakazane/internal/ui"
)

// jobCmd represents the job command group
var jobCmd = &cobra.Command{
	Use:   "job",
	Short: "Inspect background analysis jobs",
	Long: `Inspect background analysis jobs on the service.

Available subcommands:
  status - Show the current status of a job`,
}

// jobStatusCmd represents the job status command
var jobStatusCmd = &cobra.Command{
	Use:   "status <task-id>",
	Short: "Show the current status of a job",
	Long: `Display one snapshot of a background analysis job.

Shows:
  • Job status (queued, processing, completed, failed)
  • Current processing stage
  • Analysis id once the job has completed
  • Error message if the job failed

This is read-only: it does not resume a run that timed out. Use
'klauzula analysis show <analysis-id>' to fetch a completed result.

Examples:
  # Check job status
  klauzula job status 0b7d3c1e-5f2a-4e8b-9c1d-2a3b4c5d6e7f

  # Continuous monitoring (every 5 seconds)
  watch -n 5 klauzula job status 0b7d3c1e-5f2a-4e8b-9c1d-2a3b4c5d6e7f`,
	Args: cobra.ExactArgs(1),
	RunE: runJobStatus,
}

func init() {
	rootCmd.AddCommand(jobCmd)
	jobCmd.AddCommand(jobStatusCmd)

	jobStatusCmd.Flags().StringP("output", "o", "table", "output format: table, json or yaml")
}

func runJobStatus(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd, nil)
	if err != nil {
		return err
	}

	format, err := outputFlag(cmd)
	if err != nil {
		return err
	}

	poller := services.NewJobPoller(rt.http, rt.logger)
	job, err := poller.GetJob(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	return ui.NewReport(cmd.OutOrStdout(), format).WriteJob(job)
}

// outputFlag reads and validates a command's --output flag
func outputFlag(cmd *cobra.Command) (ui.OutputFormat, error) {
	value, err := cmd.Flags().GetString("output")
	if err != nil {
		return "", err
	}
	return ui.ParseOutputFormat(value)
}
