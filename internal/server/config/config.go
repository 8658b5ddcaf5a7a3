// Package config handles configuration for the server component,
// including defaults, JSON overlay, and command-line flags.
package config

import (
	"path/filepath"
	"time"
)

// Config holds runtime settings for the QuickPad server.
//
// Fields:
//   - EndpointAddr: bind address for the HTTP endpoint.
//   - DataDir: base directory for all persisted state (credential file,
//     per-user note files, per-user upload directories).
//   - SecretKey: HMAC secret for signing session JWTs (HS256). Do not use
//     test defaults in prod.
//   - SessionValidityDuration: lifetime of issued session tokens.
//   - MaxUploadBytes: cap on a single upload request body.
type Config struct {
	EndpointAddr            string
	DataDir                 string
	SecretKey               string
	SessionValidityDuration time.Duration
	MaxUploadBytes          int64
}

// LoadDefaults populates Config with sensible development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.EndpointAddr = ":8080"
	c.DataDir = "."
	c.SecretKey = "a-very-secret-key-for-dev"
	c.SessionValidityDuration = 24 * time.Hour
	c.MaxUploadBytes = 16 << 20
}

// UsersFile is the credential file location inside DataDir.
func (c *Config) UsersFile() string {
	return filepath.Join(c.DataDir, "users.txt")
}

// NotesDir is the directory holding one JSONL file per user.
func (c *Config) NotesDir() string {
	return filepath.Join(c.DataDir, "user_notes")
}

// UploadsDir is the directory holding one attachment directory per user.
func (c *Config) UploadsDir() string {
	return filepath.Join(c.DataDir, "user_uploads")
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
