package config

import "github.com/caarlos0/env/v11"

func parseEnv(cfg *Config, environ map[string]string) {
	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		panic(err)
	}
}
