package config

import "github.com/caarlos0/env/v11"

// parseEnv overlays cfg with EVENTVERSE_* variables. Unset variables leave
// fields untouched.
func parseEnv(cfg *Config, environ map[string]string) {
	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		panic(err)
	}
}
