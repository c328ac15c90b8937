package services

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/uzzysan/Klauzule-zakazane/internal/lib"
	"github.com/uzzysan/Klauzule-zakazane/internal/models"
)

// errTaskNotReady marks a document whose background job is not registered yet
var errTaskNotReady = errors.New("task identifier not assigned yet")

// DocumentClient reads uploaded document resources
type DocumentClient struct {
	http         *HTTPClient
	initialDelay time.Duration
	retryConfig  lib.RetryConfig
	logger       *lib.Logger
}

// NewDocumentClient creates a DocumentClient whose task lookup follows the workflow settings
func NewDocumentClient(httpClient *HTTPClient, workflow models.WorkflowConfig, logger *lib.Logger) *DocumentClient {
	if logger == nil {
		logger = lib.DefaultLogger
	}
	attempts := workflow.TaskLookupAttempts
	if attempts < 1 {
		attempts = 1
	}
	return &DocumentClient{
		http:         httpClient,
		initialDelay: time.Duration(workflow.TaskLookupInitialDelayMs) * time.Millisecond,
		retryConfig: lib.RetryConfig{
			MaxAttempts:      attempts,
			InitialBackoffMs: workflow.TaskLookupInitialDelayMs,
			MaxBackoffMs:     workflow.TaskLookupMaxBackoffMs,
		},
		logger: logger,
	}
}

// GetDocument fetches the document resource
func (c *DocumentClient) GetDocument(ctx context.Context, documentID string) (*models.DocumentResponse, error) {
	if strings.TrimSpace(documentID) == "" {
		return nil, lib.ErrMissingReference("task_lookup", "document id is empty")
	}

	var doc models.DocumentResponse
	if err := c.http.GetJSON(ctx, "task_lookup", "/documents/"+url.PathEscape(documentID), nil, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// LookupTask resolves the background job id for an uploaded document.
// The first request waits for the initial delay; while the id is still absent, or the
// request fails transiently, it is retried with exponential backoff up to the configured
// number of attempts. If the id never appears the result is a missing_reference error.
func (c *DocumentClient) LookupTask(ctx context.Context, documentID string) (string, error) {
	c.logger.Debug("Looking up task for document",
		"document_id", documentID,
		"initial_delay", c.initialDelay,
		"attempts", c.retryConfig.MaxAttempts)

	if err := lib.Sleep(ctx, c.initialDelay); err != nil {
		return "", lib.ErrCancelled("task_lookup", err)
	}

	shouldRetry := func(err error) bool {
		if errors.Is(err, errTaskNotReady) {
			return true
		}
		var wfErr *lib.WorkflowError
		if errors.As(err, &wfErr) {
			switch wfErr.Kind {
			case lib.KindNetwork:
				return true
			case lib.KindServer:
				return lib.ClassifyHTTPError(wfErr.HTTPStatus) == lib.ErrorTypeTransient
			}
		}
		return false
	}

	var taskID string
	operation := func(ctx context.Context, attempt int) error {
		doc, err := c.GetDocument(ctx, documentID)
		if err != nil {
			if shouldRetry(err) && attempt+1 < c.retryConfig.MaxAttempts {
				lib.LogRetry(c.logger, "task lookup", attempt+1, c.retryConfig.MaxAttempts, err)
			}
			return err
		}
		taskID = doc.TaskID()
		if taskID == "" {
			c.logger.Debug("Task not assigned yet", "document_id", documentID, "attempt", attempt+1)
			return errTaskNotReady
		}
		return nil
	}

	err := lib.ExecuteWithRetry(ctx, operation, c.retryConfig, shouldRetry)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", lib.ErrCancelled("task_lookup", ctxErr)
		}
		if errors.Is(err, errTaskNotReady) {
			c.logger.Warn("Task never became available", "document_id", documentID, "attempts", c.retryConfig.MaxAttempts)
			return "", lib.ErrMissingReference("task_lookup", "task not ready")
		}
		var wfErr *lib.WorkflowError
		if errors.As(err, &wfErr) {
			return "", wfErr
		}
		return "", err
	}

	c.logger.Info("Task resolved", "document_id", documentID, "task_id", taskID)
	return taskID, nil
}
