package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

const envPrefix = "TBZ_"

// parseEnv overlays cfg with TBZ_* variables. Unset variables keep the
// current value.
func parseEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: envPrefix}); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	return nil
}
