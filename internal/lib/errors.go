package lib

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// WorkflowError represents a user-friendly error with context and guidance
type WorkflowError struct {
	Kind       ErrorKind
	Op         string   // Operation that failed: "upload", "task_lookup", "poll", "fetch", ...
	Message    string   // Short description of what went wrong
	Cause      error    // Underlying error
	Guidance   []string // What the user can do to fix it
	HTTPStatus int      // HTTP status code if applicable
}

// ErrorKind classifies errors so callers can branch without parsing text
type ErrorKind string

const (
	KindValidation       ErrorKind = "validation"
	KindNetwork          ErrorKind = "network"
	KindServer           ErrorKind = "server"
	KindTimeout          ErrorKind = "timeout"
	KindJobFailure       ErrorKind = "job_failure"
	KindMissingReference ErrorKind = "missing_reference"
	KindCancelled        ErrorKind = "cancelled"
	KindBusy             ErrorKind = "busy"
	KindConfiguration    ErrorKind = "configuration"
	KindUnknown          ErrorKind = "unknown"
)

// Error implements the error interface
func (e *WorkflowError) Error() string {
	var sb strings.Builder

	// Kind prefix for clarity
	sb.WriteString(fmt.Sprintf("[%s] ", strings.ToUpper(string(e.Kind))))
	if e.Op != "" {
		sb.WriteString(e.Op)
		sb.WriteString(": ")
	}
	sb.WriteString(e.Message)

	if e.Cause != nil {
		sb.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if e.HTTPStatus > 0 {
		sb.WriteString(fmt.Sprintf(" (HTTP %d)", e.HTTPStatus))
	}

	return sb.String()
}

// UserMessage returns a formatted message suitable for displaying to end users
func (e *WorkflowError) UserMessage() string {
	var sb strings.Builder

	sb.WriteString("Error: ")
	sb.WriteString(e.Message)
	sb.WriteString("\n")

	if len(e.Guidance) > 0 {
		sb.WriteString("\nHow to fix:\n")
		for i, guide := range e.Guidance {
			sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, guide))
		}
	}

	if e.Cause != nil {
		sb.WriteString(fmt.Sprintf("\nTechnical details: %v\n", e.Cause))
	}

	return sb.String()
}

// Unwrap returns the underlying cause for errors.Is/As compatibility
func (e *WorkflowError) Unwrap() error {
	return e.Cause
}

// Validation Errors

// ErrValidation creates an error for input rejected before any network call
func ErrValidation(field string, reason string) *WorkflowError {
	return &WorkflowError{
		Kind:    KindValidation,
		Op:      "validate",
		Message: reason,
		Guidance: []string{
			fmt.Sprintf("Check the %s of the submitted document", field),
			"Supported formats: PDF, DOCX, JPG, PNG",
		},
	}
}

// Network Errors

// ErrNetwork creates an error for requests that never produced a response
func ErrNetwork(op string, url string, cause error) *WorkflowError {
	return &WorkflowError{
		Kind:    KindNetwork,
		Op:      op,
		Message: fmt.Sprintf("Cannot reach service at %s", url),
		Cause:   cause,
		Guidance: []string{
			"Check that the analysis service is running",
			fmt.Sprintf("Verify the URL is correct: %s", url),
			"Check your network connection",
		},
	}
}

// Service Errors

// ErrServer creates an error for non-2xx responses
// message is the one extracted from the structured error body, or a status-derived fallback
func ErrServer(op string, statusCode int, message string) *WorkflowError {
	guidance := []string{"The request was rejected by the analysis service"}
	if statusCode >= 500 {
		guidance = []string{
			"The service may be experiencing issues",
			"Wait a moment and start a new run",
		}
	} else if statusCode == 401 || statusCode == 403 {
		guidance = []string{
			"Log in again with 'klauzula auth login'",
			"Check that your account has access to this resource",
		}
	}
	return &WorkflowError{
		Kind:       KindServer,
		Op:         op,
		Message:    message,
		HTTPStatus: statusCode,
		Guidance:   guidance,
	}
}

// ErrInvalidResponse creates an error for a success response whose body could not be decoded
func ErrInvalidResponse(op string, statusCode int, cause error) *WorkflowError {
	return &WorkflowError{
		Kind:       KindServer,
		Op:         op,
		Message:    "invalid response body",
		Cause:      cause,
		HTTPStatus: statusCode,
		Guidance: []string{
			"The service answered but its response could not be read",
			"Check that api.base_url points at the analysis service API",
		},
	}
}

// Workflow Errors

// ErrPollTimeout creates an error for an exhausted poll budget
func ErrPollTimeout(jobID string, timeout time.Duration) *WorkflowError {
	return &WorkflowError{
		Kind:    KindTimeout,
		Op:      "poll",
		Message: fmt.Sprintf("Job %s did not finish within %s", jobID, timeout),
		Guidance: []string{
			"The job may still complete on the server",
			fmt.Sprintf("Inspect it with 'klauzula job status %s'", jobID),
			"Start a new run to analyse the document again",
		},
	}
}

// ErrJobFailed creates an error for a job the server reported as failed
func ErrJobFailed(jobID string, message string) *WorkflowError {
	if strings.TrimSpace(message) == "" {
		message = "Job failed"
	}
	return &WorkflowError{
		Kind:    KindJobFailure,
		Op:      "poll",
		Message: message,
		Guidance: []string{
			fmt.Sprintf("The server reported job %s as failed", jobID),
			"Check that the document is readable and not password protected",
		},
	}
}

// ErrMissingReference creates an error for an identifier absent from a successful response
func ErrMissingReference(op string, message string) *WorkflowError {
	return &WorkflowError{
		Kind:    KindMissingReference,
		Op:      op,
		Message: message,
		Guidance: []string{
			"The service responded without the expected identifier",
			"Start a new run; if it keeps happening, check the service logs",
		},
	}
}

// ErrCancelled creates an error for a run stopped by the caller
func ErrCancelled(op string, cause error) *WorkflowError {
	return &WorkflowError{
		Kind:    KindCancelled,
		Op:      op,
		Message: "cancelled",
		Cause:   cause,
	}
}

// ErrRunInProgress creates an error for an overlapping run
func ErrRunInProgress(stage string) *WorkflowError {
	return &WorkflowError{
		Kind:    KindBusy,
		Op:      "run",
		Message: fmt.Sprintf("A run is already in progress (stage: %s)", stage),
		Guidance: []string{
			"Wait for the current run to finish",
			"Or abort it before starting a new one",
		},
	}
}

// Configuration Errors

// ErrInvalidConfig creates an error for configuration validation failures
func ErrInvalidConfig(field string, reason string) *WorkflowError {
	return &WorkflowError{
		Kind:    KindConfiguration,
		Op:      "config",
		Message: fmt.Sprintf("Invalid configuration: %s", reason),
		Guidance: []string{
			fmt.Sprintf("Check the '%s' field in your config file", field),
			"Compare with klauzula.example.yaml for correct format",
		},
	}
}

// Helper Functions

// KindOf returns the kind of a WorkflowError anywhere in err's chain
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var wfErr *WorkflowError
	if errors.As(err, &wfErr) {
		return wfErr.Kind
	}
	if errors.Is(err, context.Canceled) {
		return KindCancelled
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

// Reason returns the human-readable reason shown in a failed workflow state
func Reason(err error) string {
	if err == nil {
		return ""
	}
	var wfErr *WorkflowError
	if errors.As(err, &wfErr) {
		return wfErr.Message
	}
	if errors.Is(err, context.Canceled) {
		return "cancelled"
	}
	return err.Error()
}

// ClassifyError examines an error and returns a WorkflowError for it
func ClassifyError(op string, err error) *WorkflowError {
	if err == nil {
		return nil
	}

	// Already a WorkflowError
	var wfErr *WorkflowError
	if errors.As(err, &wfErr) {
		return wfErr
	}

	if errors.Is(err, context.Canceled) {
		return ErrCancelled(op, err)
	}

	if IsNetworkError(err) {
		return &WorkflowError{
			Kind:     KindNetwork,
			Op:       op,
			Message:  "Network connectivity issue",
			Cause:    err,
			Guidance: []string{"Check network connection", "Verify service is running"},
		}
	}

	// Generic fallback
	return &WorkflowError{
		Kind:     KindUnknown,
		Op:       op,
		Message:  "An error occurred",
		Cause:    err,
		Guidance: []string{"Check the technical details below", "See logs for more information"},
	}
}
