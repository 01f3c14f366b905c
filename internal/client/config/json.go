package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tellbrandz/tbz/internal/flagx"
	"github.com/tellbrandz/tbz/internal/timex"
)

// jsonConfig is a DTO used exclusively for JSON unmarshalling. Empty values
// leave the corresponding Config field untouched.
type jsonConfig struct {
	BackendURL          string         `json:"backend_url"`
	AnonKey             string         `json:"anon_key"`
	StateDB             string         `json:"state_db"`
	LogLevel            string         `json:"log_level"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	RequestTimeout      timex.Duration `json:"request_timeout"`
	RefreshLeeway       timex.Duration `json:"refresh_leeway"`
	Records             *Records       `json:"records"`
	Storage             *jsonStorage   `json:"storage"`
}

type jsonStorage struct {
	Driver    string `json:"driver"`
	Endpoint  string `json:"endpoint"`
	Region    string `json:"region"`
	AccessKey string `json:"access_key"`
	SecretKey string `json:"secret_key"`
	Bucket    string `json:"bucket"`
	PublicURL string `json:"public_url"`
	UseSSL    *bool  `json:"use_ssl"`
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// parseJSON overlays cfg with the file named by -c/-config, if any.
func parseJSON(cfg *Config, args []string) error {
	path := flagx.ConfigFile(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var jc jsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&cfg.BackendURL, jc.BackendURL)
	setString(&cfg.AnonKey, jc.AnonKey)
	setString(&cfg.StateDB, jc.StateDB)
	setString(&cfg.LogLevel, jc.LogLevel)
	if jc.OnlineCheckInterval.Duration > 0 {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.RefreshLeeway.Duration > 0 {
		cfg.RefreshLeeway = jc.RefreshLeeway.Duration
	}
	if jc.Records != nil {
		setString(&cfg.Records.Driver, jc.Records.Driver)
		setString(&cfg.Records.DSN, jc.Records.DSN)
	}
	if s := jc.Storage; s != nil {
		setString(&cfg.Storage.Driver, s.Driver)
		setString(&cfg.Storage.Endpoint, s.Endpoint)
		setString(&cfg.Storage.Region, s.Region)
		setString(&cfg.Storage.AccessKey, s.AccessKey)
		setString(&cfg.Storage.SecretKey, s.SecretKey)
		setString(&cfg.Storage.Bucket, s.Bucket)
		setString(&cfg.Storage.PublicURL, s.PublicURL)
		if s.UseSSL != nil {
			cfg.Storage.UseSSL = *s.UseSSL
		}
	}
	return nil
}
