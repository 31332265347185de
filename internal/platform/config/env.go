// Package config loads service configuration from the environment. Services
// declare a struct with `env:"PROACT_*"` tags and layer command-line flags on
// top of the parsed values.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// ParseEnv fills target from environment variables according to its env tags.
// Defaults declared via envDefault apply when a variable is unset.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
