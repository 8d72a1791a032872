// Package config loads service configuration from the environment.
package config

import (
	"github.com/caarlos0/env/v11"
)

// Config holds the runtime configuration for the progression service
type Config struct {
	// RedisAddr is the host:port of the backing Redis instance
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	// GRPCPort is the port the gRPC server listens on
	GRPCPort int `env:"GRPC_PORT" envDefault:"50051"`
	// MetricsAddr is the listen address for the Prometheus endpoint
	MetricsAddr string `env:"METRICS_ADDR" envDefault:":9090"`
}

// Load parses configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
