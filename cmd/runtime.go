package cmd

import (
	"github.com/spf13/cobra"

	"github.com/uzzysan/Klauzule-zakazane/internal/lib"
	"github.com/uzzysan/Klauzule-zakazane/internal/models"
	"github.com/uzzysan/Klauzule-zakazane/internal/services"
)

// runtime bundles what every command needs: configuration, logger and service client
type runtime struct {
	config      *models.ProjectConfig
	logger      *lib.Logger
	http        *services.HTTPClient
	credentials *services.FileCredentialStore
}

// newRuntime loads the configuration with the given config-key to flag-name bindings
// and builds the shared service client
func newRuntime(cmd *cobra.Command, bindings map[string]string) (*runtime, error) {
	loader := services.NewConfigLoader()

	all := map[string]string{"api.base_url": "base-url"}
	for key, flagName := range bindings {
		all[key] = flagName
	}
	for key, flagName := range all {
		flag := cmd.Flags().Lookup(flagName)
		if flag == nil {
			continue
		}
		if err := loader.Bind(key, flag); err != nil {
			return nil, err
		}
	}

	config, err := loader.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	logLevel := lib.ParseLogLevel(config.Logging.Level)
	if verbose {
		logLevel = lib.LogLevelDebug
	}
	logger := lib.NewLogger(logLevel)

	if used := loader.ConfigFileUsed(); used != "" {
		logger.Debug("Loaded configuration", "file", used)
	}

	credentials := services.NewFileCredentialStore(config.Auth.CredentialsFile, logger)

	var tokens services.TokenSource = credentials
	if config.Auth.Token != "" {
		tokens = services.StaticToken(config.Auth.Token)
	}

	return &runtime{
		config:      config,
		logger:      logger,
		http:        services.NewHTTPClient(config.API, tokens, logger),
		credentials: credentials,
	}, nil
}
