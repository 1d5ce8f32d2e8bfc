package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/profilekeeper/internal/flagx"
)

// Duration accepts either a Go duration string ("90s") or integer
// nanoseconds in JSON.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		d.Duration = parsed
	default:
		return fmt.Errorf("invalid duration %s", string(b))
	}
	return nil
}

// JsonConfig is the file representation of Config. Empty or zero fields
// leave the current value alone. Credentials are not read from files.
type JsonConfig struct {
	Address                string   `json:"address"`
	GRPCHealthAddr         *string  `json:"grpc_health_address"`
	Storage                string   `json:"storage"`
	DatabaseDSN            string   `json:"database_dsn"`
	ViewsDir               string   `json:"views_dir"`
	PublicDir              string   `json:"public_dir"`
	GlobalRateLimit        int      `json:"rate_limit_global_max"`
	GlobalRateWindow       Duration `json:"rate_limit_global_window"`
	MutatingRateLimit      int      `json:"rate_limit_write_max"`
	MutatingRateWindow     Duration `json:"rate_limit_write_window"`
	RateLimitSweepInterval Duration `json:"rate_limit_sweep_interval"`
	S3Region               string   `json:"s3_region"`
	S3BaseEndpoint         string   `json:"s3_endpoint"`
	LogLevel               string   `json:"log_level"`
	LogFormat              string   `json:"log_format"`
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}

// parseJson overlays the file named by -c/-config (or CONFIG) onto config.
// No file means no changes.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigFile(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return err
	}

	setString(&config.Address, c.Address)
	if c.GRPCHealthAddr != nil {
		config.GRPCHealthAddr = *c.GRPCHealthAddr
	}
	setString(&config.Storage, c.Storage)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.ViewsDir, c.ViewsDir)
	setString(&config.PublicDir, c.PublicDir)
	setInt(&config.GlobalRateLimit, c.GlobalRateLimit)
	setDuration(&config.GlobalRateWindow, c.GlobalRateWindow)
	setInt(&config.MutatingRateLimit, c.MutatingRateLimit)
	setDuration(&config.MutatingRateWindow, c.MutatingRateWindow)
	setDuration(&config.RateLimitSweepInterval, c.RateLimitSweepInterval)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.LogFormat, c.LogFormat)

	return nil
}
