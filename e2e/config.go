package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// E2E_SERVER_ADDR points at a running taskroom server, e.g. localhost:8080.
	// Leaving it empty skips the suite.
	ServerAddr string `envconfig:"E2E_SERVER_ADDR"`
	Email      string `envconfig:"E2E_EMAIL" default:"e2e@example.com"`
	Password   string `envconfig:"E2E_PASSWORD" default:"E2e$trongPass123"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
