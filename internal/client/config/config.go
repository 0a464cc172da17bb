package config

import (
	"os"
	"time"
)

// EnvPrefix prefixes every environment variable the client reads.
const EnvPrefix = "EVENTVERSE_"

// Config holds runtime settings for the Eventverse client.
type Config struct {
	ServerURL           string        `env:"SERVER_URL"`
	HealthAddr          string        `env:"HEALTH_ADDR"`
	DatabasePath        string        `env:"DB_PATH"`
	RequestTimeout      time.Duration `env:"REQUEST_TIMEOUT"`
	OnlineCheckInterval time.Duration `env:"ONLINE_CHECK_INTERVAL"`
	RefreshSchedule     string        `env:"REFRESH_SCHEDULE"`
	LogLevel            string        `env:"LOG_LEVEL"`
}

// LoadDefaults populates c with development defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.HealthAddr = "127.0.0.1:50051"
	c.DatabasePath = "eventverse.db"
	c.RequestTimeout = 10 * time.Second
	c.OnlineCheckInterval = 3 * time.Second
	c.RefreshSchedule = "@every 10m"
	c.LogLevel = "info"
}

// LoadConfig applies defaults, then the JSON file, the environment and the
// command line. It panics on malformed input.
func LoadConfig() *Config {
	return load(os.Args[1:], nil)
}

// load is LoadConfig over explicit arguments; a nil environ means the
// process environment.
func load(args []string, environ map[string]string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, args)
	parseEnv(cfg, environ)
	parseFlags(cfg, args)
	return cfg
}
