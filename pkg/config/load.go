package config

import (
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Load reads the first environment file it finds among envFilePath (or .env
// when none is given) and then builds the configuration from the process
// environment. A missing file is not an error.
func Load(envFilePath ...string) (*App, error) {
	logger := slog.Default()
	logger.Debug("Loading environment variables")

	if len(envFilePath) == 0 {
		envFilePath = []string{".env"}
	}

	for _, path := range envFilePath {
		logger.Debug("Looking for environment file", "path", path)
		foundPath, err := FindEnvFile(path)
		if err != nil {
			logger.Debug("Environment file not found", "path", path, "error", err)
			continue
		}

		if err := godotenv.Load(foundPath); err != nil {
			logger.Error("Failed to load environment file", "path", foundPath, "error", err)
			continue
		}
		logger.Debug("Loaded environment from file", "path", foundPath)
		return loadFromEnv()
	}

	logger.Debug("No environment file found, using process environment")
	return loadFromEnv()
}

func loadFromEnv() (*App, error) {
	var cfg App
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	slog.Default().Debug("App config loaded",
		"env", cfg.Env,
		"log_level", cfg.Log.Level,
		"log_format", cfg.Log.Format,
		"ledger_warn_unhandled", cfg.Ledger.WarnUnhandled,
		"script_fail_on_error", cfg.Script.FailOnError,
	)
	return &cfg, nil
}
