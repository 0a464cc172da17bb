package config

import (
	"encoding/json"
	"os"

	"github.com/boulin/eventverse/internal/flagx"
	"github.com/boulin/eventverse/internal/timex"
)

// JsonConfig is the on-disk form of Config.
type JsonConfig struct {
	ServerURL           string         `json:"server_url"`
	HealthAddr          string         `json:"health_addr"`
	DatabasePath        string         `json:"database_path"`
	RequestTimeout      timex.Duration `json:"request_timeout"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	RefreshSchedule     string         `json:"refresh_schedule"`
	LogLevel            string         `json:"log_level"`
}

// parseJson overlays cfg with the non-empty values of the file named by -c
// or -config. Missing or malformed files panic.
func parseJson(cfg *Config, args []string) {
	path := flagx.ConfigPath(args)
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.ServerURL, jc.ServerURL)
	setString(&cfg.HealthAddr, jc.HealthAddr)
	setString(&cfg.DatabasePath, jc.DatabasePath)
	setString(&cfg.RefreshSchedule, jc.RefreshSchedule)
	setString(&cfg.LogLevel, jc.LogLevel)
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.OnlineCheckInterval.Duration > 0 {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
