// Package config loads the ladder configuration and exposes it to the
// classifiers as a model.Capabilities snapshot.
package config

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/ladder/internal/alert"
	"github.com/ppiankov/ladder/internal/model"
	"github.com/ppiankov/ladder/internal/review"
)

// Environment variables that override the file.
const (
	EnvSecurityProfile = "LADDER_SECURITY_PROFILE"
	EnvApprovalPIN     = "LADDER_APPROVAL_PIN"
	EnvTargetDir       = "LADDER_TARGET_DIR"
)

// ErrInvalidPIN is returned when approval_pin is set but is not six digits.
var ErrInvalidPIN = errors.New("approval pin must be exactly 6 digits")

// AuditConfig selects where decisions are recorded. Empty paths disable
// the corresponding sink.
type AuditConfig struct {
	JSONLPath  string `yaml:"jsonl_path"`
	SQLitePath string `yaml:"sqlite_path"`
}

// Config is the on-disk configuration.
type Config struct {
	SecurityProfile model.SecurityProfile `yaml:"security_profile"`
	Profile         string                `yaml:"profile,omitempty"`
	TargetDir       string                `yaml:"target_dir"`
	WorkspaceRoots  []string              `yaml:"workspace_roots"`
	ApprovalPIN     string                `yaml:"approval_pin,omitempty"`
	TrustedDomains  []string              `yaml:"trusted_domains"`
	CriticalPaths   []string              `yaml:"critical_paths"`
	Review          review.Config         `yaml:"review"`
	Audit           AuditConfig           `yaml:"audit"`
	Alerts          []alert.Webhook       `yaml:"alerts,omitempty"`
}

// DefaultConfig returns the balanced profile with default review floors,
// the current directory as target and no audit sinks.
func DefaultConfig() *Config {
	return &Config{
		SecurityProfile: model.ProfileBalanced,
		Review:          review.DefaultConfig(),
	}
}

// Dir returns ~/.ladder, or "" when the home directory is unknown.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".ladder")
}

// DefaultPath returns ~/.ladder/config.yaml.
func DefaultPath() string {
	dir := Dir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// LoadConfig loads configuration from a YAML file.
// Empty path falls back to ~/.ladder/config.yaml.
// Missing file returns defaults. Invalid YAML returns an error.
// Environment overrides are applied last.
func LoadConfig(path string) (*Config, error) {
	cfg, _, err := LoadConfigWithHash(path)
	return cfg, err
}

// LoadConfigWithHash loads configuration and returns the SHA-256 of the raw
// file bytes. When no file exists the hash is that of empty input.
func LoadConfigWithHash(path string) (*Config, string, error) {
	if path == "" {
		path = DefaultPath()
	}

	var data []byte
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, "", fmt.Errorf("failed to read config: %w", err)
		}
		data = b
	}

	h := sha256.Sum256(data)
	hash := "sha256:" + hex.EncodeToString(h[:])

	// Start with defaults, YAML overwrites only specified fields
	cfg := DefaultConfig()
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, "", fmt.Errorf("failed to parse config: %w", err)
		}
	}

	loadDotEnv()
	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, hash, nil
}

// loadDotEnv reads .env from the working directory if present. Variables
// already set in the process win.
func loadDotEnv() {
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load(".env")
	}
}

// ApplyEnv overlays LADDER_* environment variables.
func (c *Config) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvSecurityProfile)); v != "" {
		c.SecurityProfile = model.SecurityProfile(strings.ToLower(v))
	}
	if v := strings.TrimSpace(os.Getenv(EnvApprovalPIN)); v != "" {
		c.ApprovalPIN = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvTargetDir)); v != "" {
		c.TargetDir = v
	}
}

// Validate checks the PIN format, the security profile name and the alert
// webhooks.
func (c *Config) Validate() error {
	if err := ValidatePIN(c.ApprovalPIN); err != nil {
		return err
	}
	if c.SecurityProfile == "" {
		c.SecurityProfile = model.ProfileBalanced
	}
	if _, err := model.ParseSecurityProfile(string(c.SecurityProfile)); err != nil {
		return fmt.Errorf("invalid security_profile: %w", err)
	}
	for i, hook := range c.Alerts {
		if err := hook.Validate(); err != nil {
			return fmt.Errorf("alerts[%d]: %w", i, err)
		}
	}
	return nil
}

// ValidatePIN accepts "" (no PIN configured) or exactly six ASCII digits.
func ValidatePIN(pin string) error {
	if pin == "" {
		return nil
	}
	if len(pin) != 6 {
		return ErrInvalidPIN
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return ErrInvalidPIN
		}
	}
	return nil
}

// Save writes the config as YAML with owner-only permissions.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// ReviewConfig returns the review floors with the capability fields the
// review computer needs filled in.
func (c *Config) ReviewConfig() review.Config {
	rc := c.Review
	rc.HomeDir = homeDir()
	rc.CriticalPaths = append([]string(nil), c.CriticalPaths...)
	rc.HasApprovalPIN = c.ApprovalPIN != ""
	return rc
}
