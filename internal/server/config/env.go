package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// EnvFile is read into the environment before variables are consulted.
// Variables already set in the process win over the file.
var EnvFile = ".env"

// loadDotenv is a seam for tests.
var loadDotenv = godotenv.Load

func envString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func envNonEmpty(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func envDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}

// parseEnv overlays environment variables onto config. PORT is the
// conventional platform variable and becomes ":PORT"; ADDRESS, when set,
// takes precedence over it.
func parseEnv(config *Config) error {
	if err := loadDotenv(EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", EnvFile, err)
	}

	if port := os.Getenv("PORT"); port != "" {
		config.Address = ":" + port
	}
	envNonEmpty(&config.Address, "ADDRESS")
	envString(&config.GRPCHealthAddr, "GRPC_HEALTH_ADDRESS")

	envNonEmpty(&config.Storage, "STORAGE")
	envNonEmpty(&config.DatabaseDSN, "DATABASE_URL")
	envString(&config.ViewsDir, "VIEWS_DIR")
	envString(&config.PublicDir, "PUBLIC_DIR")

	envString(&config.BasicAuthUser, "BASIC_AUTH_USER")
	envString(&config.BasicAuthPass, "BASIC_AUTH_PASS")
	envString(&config.BasicAuthPassHash, "BASIC_AUTH_PASS_HASH")

	envNonEmpty(&config.S3Region, "S3_REGION")
	envNonEmpty(&config.S3BaseEndpoint, "S3_ENDPOINT")
	envNonEmpty(&config.S3AccessKey, "S3_ACCESS_KEY")
	envNonEmpty(&config.S3SecretKey, "S3_SECRET_KEY")

	envNonEmpty(&config.LogLevel, "LOG_LEVEL")
	envNonEmpty(&config.LogFormat, "LOG_FORMAT")

	return errors.Join(
		envInt(&config.GlobalRateLimit, "RATE_LIMIT_GLOBAL_MAX"),
		envDuration(&config.GlobalRateWindow, "RATE_LIMIT_GLOBAL_WINDOW"),
		envInt(&config.MutatingRateLimit, "RATE_LIMIT_WRITE_MAX"),
		envDuration(&config.MutatingRateWindow, "RATE_LIMIT_WRITE_WINDOW"),
		envDuration(&config.RateLimitSweepInterval, "RATE_LIMIT_SWEEP_INTERVAL"),
	)
}
