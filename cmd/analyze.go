package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/uzzysan/Klauzule-zakazane/internal/lib"
	"github.com/uzzysan/Klauzule-zakazane/internal/models"
	"github.com/uzzysan/Klauzule-zakazane/internal/pipeline"
	"github.com/uzzysan/Klauzule-zakazane/internal/services"
	"github.com/uzzysan/Klauzule-zakazane/internal/ui"
)

var (
	noProgress   bool
	outputFormat string
	pollInterval time.Duration
	pollTimeout  time.Duration
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Upload a document and wait for its analysis",
	Long: `Upload a contract to the analysis service and wait for the result.

The run goes through these stages:
  • uploading      - the document is sent, with progress
  • awaiting_task  - the background job id is resolved (retried with backoff)
  • polling        - the job status is checked at a fixed interval
  • fetching       - the finished analysis is downloaded

The document is checked locally first: only PDF, DOCX, JPG and PNG files up to
the configured size limit are sent. Press Ctrl+C to abort a running analysis.

If polling runs out of time the job may still finish on the server; inspect it
with 'klauzula job status <task-id>'. A new run always starts with a new upload.

Examples:
  # Analyse a Polish contract with the offline engine
  klauzula analyze umowa.pdf

  # Analyse an English contract with the AI engine and print JSON
  klauzula analyze contract.docx --language en --mode ai --output json

  # Wait longer for slow jobs
  klauzula analyze scan.png --poll-timeout 10m --poll-interval 5s`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().String("language", "", "document language: pl or en (overrides upload.language)")
	analyzeCmd.Flags().String("mode", "", "analysis mode: offline or ai (overrides upload.mode)")
	analyzeCmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable progress indicators")
	analyzeCmd.Flags().StringVarP(&outputFormat, "output", "o", "table", "output format: table, json or yaml")
	analyzeCmd.Flags().DurationVar(&pollInterval, "poll-interval", 0, "delay between job status checks (overrides workflow.poll_interval_ms)")
	analyzeCmd.Flags().DurationVar(&pollTimeout, "poll-timeout", 0, "time budget for job polling (overrides workflow.poll_timeout_seconds)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd, map[string]string{
		"upload.language": "language",
		"upload.mode":     "mode",
	})
	if err != nil {
		return err
	}
	config := rt.config

	if cmd.Flags().Changed("poll-interval") {
		config.Workflow.PollIntervalMs = pollInterval.Milliseconds()
	}
	if cmd.Flags().Changed("poll-timeout") {
		config.Workflow.PollTimeoutSeconds = int(pollTimeout.Round(time.Second).Seconds())
	}
	if err := config.Validate(); err != nil {
		return err
	}

	format, err := ui.ParseOutputFormat(outputFormat)
	if err != nil {
		return err
	}

	req, err := models.NewSubmissionFromFile(args[0], config.Upload.Language, config.Upload.Mode)
	if err != nil {
		return err
	}

	interactive := !noProgress && ui.IsTerminal(os.Stderr)
	logger := rt.logger
	if interactive && !verbose {
		// Keep info lines from tearing the progress bar
		logger.SetLevel(lib.LogLevelWarn)
	}

	registry := prometheus.NewRegistry()
	coordinator := pipeline.NewCoordinator(
		services.NewUploader(rt.http, config.API.UploadPath, config.Upload.Limits(), logger),
		services.NewDocumentClient(rt.http, config.Workflow, logger),
		services.NewJobPoller(rt.http, logger),
		services.NewAnalysisClient(rt.http, logger),
		*config,
		pipeline.WithLogger(logger),
		pipeline.WithMetrics(pipeline.MustNewMetrics(registry)),
	)

	// Ctrl+C aborts the run; the coordinator then reports failed("cancelled")
	sigCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	stopAbort := context.AfterFunc(sigCtx, coordinator.Abort)
	defer stopAbort()

	result, runErr := runWithRenderer(cmd.Context(), coordinator, req, interactive)

	if path := config.Metrics.Textfile; path != "" {
		if err := pipeline.WriteTextfile(path, registry); err != nil {
			logger.Warn("Failed to write metrics textfile", "path", path, "error", err)
		}
	}

	if runErr != nil {
		return runErr
	}

	return ui.NewReport(cmd.OutOrStdout(), format).WriteAnalysis(result)
}

// runWithRenderer executes one run while a renderer follows its states.
// With progress disabled the run executes alone.
func runWithRenderer(ctx context.Context, coordinator *pipeline.Coordinator, req models.SubmissionRequest, showProgress bool) (*models.AnalysisResult, error) {
	if noProgress {
		return coordinator.Run(ctx, req)
	}

	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()
	states := coordinator.Watch(watchCtx)
	renderer := ui.NewRenderer(os.Stderr, showProgress, req.Size)

	var (
		result *models.AnalysisResult
		runErr error
	)

	g, gctx := errgroup.WithContext(watchCtx)
	g.Go(func() error {
		return renderer.Consume(gctx, states)
	})
	g.Go(func() error {
		result, runErr = coordinator.Run(ctx, req)
		if lib.IsKind(runErr, lib.KindBusy) {
			// A rejected run publishes nothing for the renderer to finish on
			stopWatch()
		}
		return nil
	})

	if err := g.Wait(); err != nil && runErr == nil && !errors.Is(err, context.Canceled) {
		return nil, fmt.Errorf("failed to render progress: %w", err)
	}
	return result, runErr
}
