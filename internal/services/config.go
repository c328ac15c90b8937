package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/uzzysan/Klauzule-zakazane/internal/models"
)

// EnvPrefix is the prefix of environment variable overrides, e.g. KLAUZULA_API_BASE_URL
const EnvPrefix = "KLAUZULA"

// ConfigLoader reads the project configuration.
// Priority order (highest to lowest):
//  1. CLI flags (via Bind)
//  2. Environment variables
//  3. Configuration file
//  4. Default values
type ConfigLoader struct {
	v *viper.Viper
}

// NewConfigLoader creates a loader with defaults registered
func NewConfigLoader() *ConfigLoader {
	v := viper.New()
	setDefaults(v, models.DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &ConfigLoader{v: v}
}

// Bind makes a CLI flag override a configuration key when the flag is set
func (l *ConfigLoader) Bind(configKey string, flag *pflag.Flag) error {
	if flag == nil {
		return fmt.Errorf("no flag to bind to %s", configKey)
	}
	return l.v.BindPFlag(configKey, flag)
}

// Load reads configFile, or searches the standard locations when it is empty.
// A missing config file in the standard locations is not an error.
func (l *ConfigLoader) Load(configFile string) (*models.ProjectConfig, error) {
	v := l.v
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("klauzula")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/klauzula")
		v.AddConfigPath("/etc/klauzula")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Build config manually from viper values
	config := models.ProjectConfig{
		API: models.APIConfig{
			BaseURL:               v.GetString("api.base_url"),
			UploadPath:            v.GetString("api.upload_path"),
			RequestTimeoutSeconds: v.GetInt("api.request_timeout_seconds"),
		},
		Upload: models.UploadConfig{
			MaxSizeMB:    v.GetInt("upload.max_size_mb"),
			AllowedTypes: v.GetStringSlice("upload.allowed_types"),
			Language:     models.Language(v.GetString("upload.language")),
			Mode:         models.AnalysisMode(v.GetString("upload.mode")),
		},
		Workflow: models.WorkflowConfig{
			PollIntervalMs:           v.GetInt64("workflow.poll_interval_ms"),
			PollTimeoutSeconds:       v.GetInt("workflow.poll_timeout_seconds"),
			TaskLookupInitialDelayMs: v.GetInt64("workflow.task_lookup_initial_delay_ms"),
			TaskLookupAttempts:       v.GetInt("workflow.task_lookup_attempts"),
			TaskLookupMaxBackoffMs:   v.GetInt64("workflow.task_lookup_max_backoff_ms"),
		},
		Auth: models.AuthConfig{
			Token:           v.GetString("auth.token"),
			CredentialsFile: v.GetString("auth.credentials_file"),
		},
		Logging: models.LoggingConfig{
			Level: v.GetString("logging.level"),
		},
		Metrics: models.MetricsConfig{
			Textfile: v.GetString("metrics.textfile"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// ConfigFileUsed returns the path to the config file that was loaded, or "" for none
func (l *ConfigLoader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

func setDefaults(v *viper.Viper, d models.ProjectConfig) {
	v.SetDefault("api.base_url", d.API.BaseURL)
	v.SetDefault("api.upload_path", d.API.UploadPath)
	v.SetDefault("api.request_timeout_seconds", d.API.RequestTimeoutSeconds)

	v.SetDefault("upload.max_size_mb", d.Upload.MaxSizeMB)
	v.SetDefault("upload.allowed_types", d.Upload.AllowedTypes)
	v.SetDefault("upload.language", string(d.Upload.Language))
	v.SetDefault("upload.mode", string(d.Upload.Mode))

	v.SetDefault("workflow.poll_interval_ms", d.Workflow.PollIntervalMs)
	v.SetDefault("workflow.poll_timeout_seconds", d.Workflow.PollTimeoutSeconds)
	v.SetDefault("workflow.task_lookup_initial_delay_ms", d.Workflow.TaskLookupInitialDelayMs)
	v.SetDefault("workflow.task_lookup_attempts", d.Workflow.TaskLookupAttempts)
	v.SetDefault("workflow.task_lookup_max_backoff_ms", d.Workflow.TaskLookupMaxBackoffMs)

	v.SetDefault("auth.token", d.Auth.Token)
	v.SetDefault("auth.credentials_file", d.Auth.CredentialsFile)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("metrics.textfile", d.Metrics.Textfile)
}
