// Copyright (c) 2026 Kartei. All rights reserved.
// Author: dev@kartei.app

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis) via constructors.
  - Zero Hidden State: No global variables are used to store config.

This ensures the application is Twelve-Factor compliant by storing config in the env.
*/
package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// Config holds all runtime configuration for the Kartei API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Cache (Redis)
	RedisURL string `env:"REDIS_URL,required"`

	// APIUsers maps basic-auth usernames to bcrypt password hashes.
	// Format: "alice:$2a$10$...,bob:$2a$10$..."
	APIUsers map[string]string `env:"API_USERS"`

	// AuthzGrants maps a permission name to the users holding it.
	// Format: "address.create:alice|bob;own_address.edit:alice"
	AuthzGrants string `env:"AUTHZ_GRANTS"`

	// SearchFieldExceptions lists derived free-defined field names that are
	// never written into the search index (comma-separated).
	SearchFieldExceptions []string `env:"SEARCH_FIELD_EXCEPTIONS" envSeparator:","`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	return cfg, nil
}

// ParseGrants expands the AuthzGrants string into permission → users.
func (c *Config) ParseGrants() map[string][]string {
	grants := make(map[string][]string)

	for _, entry := range strings.Split(c.AuthzGrants, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		permission, users, ok := strings.Cut(entry, ":")
		if !ok {
			continue
		}

		for _, user := range strings.Split(users, "|") {
			if user = strings.TrimSpace(user); user != "" {
				grants[permission] = append(grants[permission], user)
			}
		}
	}

	return grants
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
