// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath        string `env:"RGSQ_DB_PATH" envDefault:"./data/rgsq.db"`
	SessionSecret string `env:"RGSQ_SESSION_SECRET,required"`
	ServerHost    string `env:"RGSQ_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"RGSQ_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"RGSQ_ENV" envDefault:"development"`
	LogLevel      string `env:"RGSQ_LOG_LEVEL" envDefault:"info"`
	UploadsDir    string `env:"RGSQ_UPLOADS_DIR" envDefault:"./uploads"`

	// AdminInviteCode gates self-service admin signup. Static shared
	// secret; rotation is operational, not in-app.
	AdminInviteCode string `env:"RGSQ_ADMIN_INVITE_CODE" envDefault:"TEAM305"`

	// SMTP configuration. When host or from address is empty the
	// notification sender degrades to a no-op.
	SMTPHost string `env:"RGSQ_SMTP_HOST"`
	SMTPPort int    `env:"RGSQ_SMTP_PORT" envDefault:"587"`
	SMTPUser string `env:"RGSQ_SMTP_USER"`
	SMTPPass string `env:"RGSQ_SMTP_PASS"`
	SMTPFrom string `env:"RGSQ_SMTP_FROM"`

	// Seeding configuration
	DoSeed bool `env:"RGSQ_DO_SEED" envDefault:"false"` // Enable database seeding
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// SMTPEnabled returns true if outgoing mail is configured.
func (c Config) SMTPEnabled() bool {
	return c.SMTPHost != "" && c.SMTPFrom != ""
}

// MinSessionSecretLength is the minimum required length for the session secret.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("RGSQ_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	if cfg.AdminInviteCode == "" {
		return nil, fmt.Errorf("RGSQ_ADMIN_INVITE_CODE must not be empty")
	}

	return cfg, nil
}
