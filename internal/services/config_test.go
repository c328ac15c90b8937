package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uzzysan/Klauzule-zakazane/internal/lib"
	"github.com/uzzysan/Klauzule-zakazane/internal/models"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "klauzula.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	loader := NewConfigLoader()
	config, err := loader.Load("")
	require.NoError(t, err)

	assert.Equal(t, models.DefaultConfig(), *config)
	assert.Empty(t, loader.ConfigFileUsed())
}

func TestLoadConfig_File(t *testing.T) {
	path := writeConfig(t, `
api:
  base_url: https://klauzule.example.com/api/v1
  upload_path: /documents/upload
upload:
  max_size_mb: 10
  language: en
  mode: ai
  allowed_types:
    - application/pdf
workflow:
  poll_interval_ms: 500
  poll_timeout_seconds: 60
  task_lookup_attempts: 3
logging:
  level: debug
metrics:
  textfile: /tmp/klauzula.prom
`)

	loader := NewConfigLoader()
	config, err := loader.Load(path)
	require.NoError(t, err)

	assert.Equal(t, path, loader.ConfigFileUsed())
	assert.Equal(t, "https://klauzule.example.com/api/v1", config.API.BaseURL)
	assert.Equal(t, "/documents/upload", config.API.UploadPath)
	assert.Equal(t, 120, config.API.RequestTimeoutSeconds)
	assert.Equal(t, 10, config.Upload.MaxSizeMB)
	assert.Equal(t, models.LanguageEnglish, config.Upload.Language)
	assert.Equal(t, models.ModeAI, config.Upload.Mode)
	assert.Equal(t, []string{models.MediaTypePDF}, config.Upload.AllowedTypes)
	assert.Equal(t, int64(500), config.Workflow.PollIntervalMs)
	assert.Equal(t, 60, config.Workflow.PollTimeoutSeconds)
	assert.Equal(t, 3, config.Workflow.TaskLookupAttempts)
	assert.Equal(t, int64(500), config.Workflow.TaskLookupInitialDelayMs)
	assert.Equal(t, "debug", config.Logging.Level)
	assert.Equal(t, "/tmp/klauzula.prom", config.Metrics.Textfile)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "api:\n  base_url: http://from-file:8000/api/v1\n")
	t.Setenv("KLAUZULA_API_BASE_URL", "http://from-env:8000/api/v1")
	t.Setenv("KLAUZULA_WORKFLOW_POLL_INTERVAL_MS", "250")
	t.Setenv("KLAUZULA_AUTH_TOKEN", "env-token")

	config, err := NewConfigLoader().Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://from-env:8000/api/v1", config.API.BaseURL)
	assert.Equal(t, int64(250), config.Workflow.PollIntervalMs)
	assert.Equal(t, "env-token", config.Auth.Token)
}

func TestLoadConfig_FlagOverridesEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("KLAUZULA_API_BASE_URL", "http://from-env:8000/api/v1")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("base-url", "", "")
	flags.String("language", "", "")
	require.NoError(t, flags.Parse([]string{"--base-url", "http://from-flag:8000/api/v1"}))

	loader := NewConfigLoader()
	require.NoError(t, loader.Bind("api.base_url", flags.Lookup("base-url")))
	require.NoError(t, loader.Bind("upload.language", flags.Lookup("language")))
	assert.Error(t, loader.Bind("upload.mode", flags.Lookup("mode")))

	config, err := loader.Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://from-flag:8000/api/v1", config.API.BaseURL)
	// An unset flag leaves the default in place
	assert.Equal(t, models.LanguagePolish, config.Upload.Language)
}

func TestLoadConfig_Invalid(t *testing.T) {
	path := writeConfig(t, "workflow:\n  poll_interval_ms: 0\n")

	_, err := NewConfigLoader().Load(path)
	assert.True(t, lib.IsKind(err, lib.KindConfiguration), "got %v", err)
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	_, err := NewConfigLoader().Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestLoadConfig_MalformedFile(t *testing.T) {
	path := writeConfig(t, "api: [unclosed\n")

	_, err := NewConfigLoader().Load(path)
	assert.ErrorContains(t, err, "failed to read config file")
}
