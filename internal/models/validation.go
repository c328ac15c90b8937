package models

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/uzzysan/Klauzule-zakazane/internal/lib"
)

// UploadLimits are the local pre-flight checks applied before any upload
type UploadLimits struct {
	MaxSizeBytes int64
	AllowedTypes []string
}

// allowedExtensions maps accepted media types to their file extensions
var allowedExtensions = map[string][]string{
	MediaTypePDF:  {".pdf"},
	MediaTypeDOCX: {".docx"},
	MediaTypeJPEG: {".jpg", ".jpeg"},
	MediaTypePNG:  {".png"},
}

// IsAllowedType checks if the media type is in the allowed set
func (l UploadLimits) IsAllowedType(mediaType string) bool {
	mediaType = normalizeMediaType(mediaType)
	for _, allowed := range l.AllowedTypes {
		if normalizeMediaType(allowed) == mediaType {
			return true
		}
	}
	return false
}

// Validate checks a submission against the limits.
// Returns a validation WorkflowError describing the first violation.
func (l UploadLimits) Validate(req SubmissionRequest) error {
	if strings.TrimSpace(req.FileName) == "" {
		return lib.ErrValidation("file name", "File name is required")
	}

	if !l.IsAllowedType(req.ContentType) {
		return lib.ErrValidation("file type",
			fmt.Sprintf("Unsupported file type %q. Allowed: PDF, DOCX, JPG, PNG", req.ContentType))
	}

	if exts, ok := allowedExtensions[normalizeMediaType(req.ContentType)]; ok {
		ext := strings.ToLower(filepath.Ext(req.FileName))
		if !containsString(exts, ext) {
			return lib.ErrValidation("file extension",
				fmt.Sprintf("File extension %q does not match type %s", ext, req.ContentType))
		}
	}

	if req.Size <= 0 {
		return lib.ErrValidation("file size", "File is empty")
	}

	if l.MaxSizeBytes > 0 && req.Size > l.MaxSizeBytes {
		return lib.ErrValidation("file size",
			fmt.Sprintf("File is too large. Maximum size: %dMB", l.MaxSizeBytes>>20))
	}

	if !IsValidLanguage(req.Language) {
		return lib.ErrValidation("language", fmt.Sprintf("Invalid language %q (expected pl or en)", req.Language))
	}

	if !IsValidAnalysisMode(req.Mode) {
		return lib.ErrValidation("analysis mode", fmt.Sprintf("Invalid analysis mode %q (expected offline or ai)", req.Mode))
	}

	return nil
}

// Validate checks if a ProjectConfig has valid fields
func (c *ProjectConfig) Validate() error {
	if c.API.BaseURL == "" {
		return lib.ErrInvalidConfig("api.base_url", "api base_url is required")
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return lib.ErrInvalidConfig("api.base_url", fmt.Sprintf("invalid api base_url %q", c.API.BaseURL))
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return lib.ErrInvalidConfig("api.base_url", "api base_url must use http or https")
	}

	if !strings.HasPrefix(c.API.UploadPath, "/") {
		return lib.ErrInvalidConfig("api.upload_path", "upload_path must start with '/'")
	}

	if c.API.RequestTimeoutSeconds <= 0 {
		return lib.ErrInvalidConfig("api.request_timeout_seconds",
			fmt.Sprintf("request_timeout_seconds must be > 0, got %d", c.API.RequestTimeoutSeconds))
	}

	if c.Upload.MaxSizeMB <= 0 {
		return lib.ErrInvalidConfig("upload.max_size_mb",
			fmt.Sprintf("max_size_mb must be > 0, got %d", c.Upload.MaxSizeMB))
	}

	for _, t := range c.Upload.AllowedTypes {
		if _, ok := allowedExtensions[normalizeMediaType(t)]; !ok {
			return lib.ErrInvalidConfig("upload.allowed_types", fmt.Sprintf("unsupported media type %q", t))
		}
	}

	if !IsValidLanguage(c.Upload.Language) {
		return lib.ErrInvalidConfig("upload.language", fmt.Sprintf("language must be pl or en, got %q", c.Upload.Language))
	}

	if !IsValidAnalysisMode(c.Upload.Mode) {
		return lib.ErrInvalidConfig("upload.mode", fmt.Sprintf("mode must be offline or ai, got %q", c.Upload.Mode))
	}

	if c.Workflow.PollIntervalMs <= 0 {
		return lib.ErrInvalidConfig("workflow.poll_interval_ms", "poll_interval_ms must be positive")
	}

	if c.Workflow.PollTimeoutSeconds <= 0 {
		return lib.ErrInvalidConfig("workflow.poll_timeout_seconds", "poll_timeout_seconds must be positive")
	}

	if c.Workflow.PollInterval() > c.Workflow.PollTimeout() {
		return lib.ErrInvalidConfig("workflow.poll_interval_ms", "poll interval must not exceed poll timeout")
	}

	if c.Workflow.TaskLookupAttempts < 1 || c.Workflow.TaskLookupAttempts > 10 {
		return lib.ErrInvalidConfig("workflow.task_lookup_attempts", "task_lookup_attempts must be between 1 and 10")
	}

	if c.Workflow.TaskLookupInitialDelayMs < 0 {
		return lib.ErrInvalidConfig("workflow.task_lookup_initial_delay_ms", "task_lookup_initial_delay_ms must not be negative")
	}

	if c.Workflow.TaskLookupMaxBackoffMs < c.Workflow.TaskLookupInitialDelayMs {
		return lib.ErrInvalidConfig("workflow.task_lookup_max_backoff_ms",
			"task_lookup_max_backoff_ms must be >= task_lookup_initial_delay_ms")
	}

	return nil
}

func containsString(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
