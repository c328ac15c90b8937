package services

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/uzzysan/Klauzule-zakazane/internal/lib"
	"github.com/uzzysan/Klauzule-zakazane/internal/models"
)

// JobPoller watches background jobs until they reach a terminal status
type JobPoller struct {
	http   *HTTPClient
	logger *lib.Logger
}

// NewJobPoller creates a JobPoller using the given client
func NewJobPoller(httpClient *HTTPClient, logger *lib.Logger) *JobPoller {
	if logger == nil {
		logger = lib.DefaultLogger
	}
	return &JobPoller{
		http:   httpClient,
		logger: logger,
	}
}

// GetJob fetches a single snapshot of a job
func (p *JobPoller) GetJob(ctx context.Context, jobID string) (*models.JobHandle, error) {
	if strings.TrimSpace(jobID) == "" {
		return nil, lib.ErrMissingReference("poll", "job id is empty")
	}

	var handle models.JobHandle
	if err := p.http.GetJSON(ctx, "poll", "/jobs/"+url.PathEscape(jobID), nil, &handle); err != nil {
		return nil, err
	}
	if handle.ID == "" {
		handle.ID = jobID
	}
	return &handle, nil
}

// Poll requests the job status every interval until it completes, fails or the
// budget runs out. onTick is called with every decoded handle, terminal or not.
//
// The clock starts at the first request and the whole loop runs under a deadline of
// timeout+interval, so Poll always returns within that bound. A completed job is
// returned as-is; a failed job yields a job_failure error, an exhausted budget a
// timeout error and a cancelled ctx a cancelled error. Request errors fail the poll
// immediately.
func (p *JobPoller) Poll(ctx context.Context, jobID string, interval time.Duration, timeout time.Duration, onTick func(models.JobHandle)) (*models.JobHandle, error) {
	if strings.TrimSpace(jobID) == "" {
		return nil, lib.ErrMissingReference("poll", "job id is empty")
	}
	if interval <= 0 {
		interval = models.DefaultConfig().Workflow.PollInterval()
	}

	p.logger.Info("Polling job status", "job_id", jobID, "interval", interval, "timeout", timeout)

	startTime := time.Now()
	pollCtx, cancel := context.WithDeadline(ctx, startTime.Add(timeout+interval))
	defer cancel()

	pollCount := 0

	for {
		if err := pollCtx.Err(); err != nil {
			return nil, p.stopError(ctx, jobID, timeout, pollCount)
		}

		pollCount++
		handle, err := p.GetJob(pollCtx, jobID)
		if err != nil {
			if pollCtx.Err() != nil {
				return nil, p.stopError(ctx, jobID, timeout, pollCount)
			}
			p.logger.Error("Job polling failed", "job_id", jobID, "attempt", pollCount, "error", err)
			return nil, err
		}

		p.logger.Debug("Job status",
			"job_id", jobID,
			"attempt", pollCount,
			"status", handle.Status,
			"stage", handle.Stage())

		if onTick != nil {
			onTick(*handle)
		}

		if !models.IsValidJobStatus(handle.Status) {
			p.logger.Warn("Unknown job status, continuing to poll", "job_id", jobID, "status", handle.Status)
		}

		switch handle.Status {
		case models.JobStatusCompleted:
			p.logger.Info("Job completed", "job_id", jobID, "polls", pollCount, "duration", time.Since(startTime))
			return handle, nil
		case models.JobStatusFailed:
			p.logger.Warn("Job failed", "job_id", jobID, "polls", pollCount, "error", handle.ErrorMessage())
			return nil, lib.ErrJobFailed(jobID, handle.ErrorMessage())
		}

		if time.Since(startTime) >= timeout {
			return nil, p.stopError(ctx, jobID, timeout, pollCount)
		}

		if err := lib.Sleep(pollCtx, interval); err != nil {
			return nil, p.stopError(ctx, jobID, timeout, pollCount)
		}
	}
}

// stopError distinguishes a caller cancellation from an exhausted budget
func (p *JobPoller) stopError(ctx context.Context, jobID string, timeout time.Duration, pollCount int) error {
	if err := ctx.Err(); err != nil {
		p.logger.Info("Job polling cancelled", "job_id", jobID, "polls", pollCount)
		return lib.ErrCancelled("poll", err)
	}
	p.logger.Error("Job polling timeout", "job_id", jobID, "timeout", timeout, "polls", pollCount)
	return lib.ErrPollTimeout(jobID, timeout)
}
