// Package config loads server configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Server is the interactive server's environment configuration. Flags on
// the binary override these.
type Server struct {
	Port           int     `env:"PORT" envDefault:"8080"`
	DBPath         string  `env:"DB_PATH" envDefault:":memory:"`
	CommissionRate float64 `env:"COMMISSION_RATE" envDefault:"0.02"`
}

// FromEnv parses the server configuration from environment variables.
func FromEnv() (Server, error) {
	var cfg Server
	if err := env.Parse(&cfg); err != nil {
		return Server{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
