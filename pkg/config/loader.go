// Package config loads every collaborator's settings from the environment.
package config

import (
	"fmt"

	"github.com/ammar0144/crud4go/pkg/db"
	"github.com/ammar0144/crud4go/pkg/logger"
	"github.com/ammar0144/crud4go/pkg/redis"
	"github.com/kelseyhightower/envconfig"
)

// Settings groups the database, cache and logging configuration
type Settings struct {
	Database db.Config
	Cache    redis.Config
	Logging  logger.Config
}

// Load reads Settings from environment variables, applying declared defaults
func Load() (*Settings, error) {
	cfg := &Settings{}

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("unable to parse configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks the database and cache sections
func (s *Settings) Validate() error {
	if err := s.Database.Validate(); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := s.Cache.Validate(); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	return nil
}
