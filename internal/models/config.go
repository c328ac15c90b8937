package models

import (
	"time"
)

// ProjectConfig is the top-level configuration for the klauzula client
type ProjectConfig struct {
	API      APIConfig      `yaml:"api" json:"api"`
	Upload   UploadConfig   `yaml:"upload" json:"upload"`
	Workflow WorkflowConfig `yaml:"workflow" json:"workflow"`
	Auth     AuthConfig     `yaml:"auth" json:"auth"`
	Logging  LoggingConfig  `yaml:"logging" json:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics" json:"metrics"`
}

// APIConfig contains connection details for the analysis service
type APIConfig struct {
	BaseURL               string `yaml:"base_url" json:"base_url"`
	UploadPath            string `yaml:"upload_path" json:"upload_path"` // "/documents/upload" on the FastAPI deployment
	RequestTimeoutSeconds int    `yaml:"request_timeout_seconds" json:"request_timeout_seconds"`
}

// UploadConfig contains local pre-flight limits and submission defaults
type UploadConfig struct {
	MaxSizeMB    int          `yaml:"max_size_mb" json:"max_size_mb"`
	AllowedTypes []string     `yaml:"allowed_types" json:"allowed_types"`
	Language     Language     `yaml:"language" json:"language"`
	Mode         AnalysisMode `yaml:"mode" json:"mode"`
}

// WorkflowConfig controls task lookup and job polling
type WorkflowConfig struct {
	PollIntervalMs           int64 `yaml:"poll_interval_ms" json:"poll_interval_ms"`
	PollTimeoutSeconds       int   `yaml:"poll_timeout_seconds" json:"poll_timeout_seconds"`
	TaskLookupInitialDelayMs int64 `yaml:"task_lookup_initial_delay_ms" json:"task_lookup_initial_delay_ms"`
	TaskLookupAttempts       int   `yaml:"task_lookup_attempts" json:"task_lookup_attempts"`
	TaskLookupMaxBackoffMs   int64 `yaml:"task_lookup_max_backoff_ms" json:"task_lookup_max_backoff_ms"`
}

// AuthConfig contains the access credential settings
type AuthConfig struct {
	Token           string `yaml:"token" json:"-"`
	CredentialsFile string `yaml:"credentials_file" json:"credentials_file"`
}

// LoggingConfig controls log verbosity
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
}

// MetricsConfig controls the optional Prometheus textfile export
type MetricsConfig struct {
	Textfile string `yaml:"textfile" json:"textfile"`
}

// DefaultAllowedTypes lists the media types the analysis service accepts
var DefaultAllowedTypes = []string{
	MediaTypePDF,
	MediaTypeDOCX,
	MediaTypeJPEG,
	MediaTypePNG,
}

// DefaultConfig returns a sensible default configuration
func DefaultConfig() ProjectConfig {
	return ProjectConfig{
		API: APIConfig{
			BaseURL:               "http://localhost:8000/api/v1",
			UploadPath:            "/documents",
			RequestTimeoutSeconds: 120,
		},
		Upload: UploadConfig{
			MaxSizeMB:    50,
			AllowedTypes: append([]string(nil), DefaultAllowedTypes...),
			Language:     LanguagePolish,
			Mode:         ModeOffline,
		},
		Workflow: WorkflowConfig{
			PollIntervalMs:           2000,
			PollTimeoutSeconds:       300,
			TaskLookupInitialDelayMs: 500,
			TaskLookupAttempts:       5,
			TaskLookupMaxBackoffMs:   4000,
		},
		Auth: AuthConfig{
			CredentialsFile: "",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// PollInterval returns the fixed delay between job status requests
func (c WorkflowConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

// PollTimeout returns the wall-clock budget for one poll call
func (c WorkflowConfig) PollTimeout() time.Duration {
	return time.Duration(c.PollTimeoutSeconds) * time.Second
}

// RequestTimeout returns the per-request HTTP timeout
func (c APIConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// Limits returns the pre-flight upload limits derived from the configuration
func (c UploadConfig) Limits() UploadLimits {
	types := c.AllowedTypes
	if len(types) == 0 {
		types = DefaultAllowedTypes
	}
	return UploadLimits{
		MaxSizeBytes: int64(c.MaxSizeMB) << 20,
		AllowedTypes: types,
	}
}
