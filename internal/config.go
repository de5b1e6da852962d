package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/kwm/internal/manager"
	"github.com/starford/kwm/internal/tokenize"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Vault   VaultConfig       `yaml:"vault"`
	SQLite  SQLiteConfig      `yaml:"sqlite"`
	Auth    AuthConfig        `yaml:"auth"`
	Manager ManagerConfig     `yaml:"manager"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Vault.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	return c.Manager.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// VaultConfig holds the Markdown vault settings. Watch keeps the collection
// in sync with file changes while serving.
type VaultConfig struct {
	Path  string `yaml:"path"`
	Watch bool   `yaml:"watch"`
}

// Validate validates the vault configuration.
func (c *VaultConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// ManagerConfig holds the default options of an update run. Options saved
// by a previous run take precedence.
type ManagerConfig struct {
	SentencesDeck     string            `yaml:"sentences_deck"`
	WordsDeck         string            `yaml:"words_deck"`
	WordField         string            `yaml:"word_field"`
	Strategy          tokenize.Strategy `yaml:"strategy"`
	RequireAllKnown   bool              `yaml:"require_all_known"`
	IncludeUnreviewed bool              `yaml:"include_unreviewed"`

	// AutoUpdate runs an update after the watcher saw vault changes and
	// the vault stayed quiet for AutoUpdateDelay.
	AutoUpdate      bool          `yaml:"auto_update"`
	AutoUpdateDelay time.Duration `yaml:"auto_update_delay"`
}

// Validate validates the manager configuration. Deck and field names may be
// left empty and supplied per run.
func (c *ManagerConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Strategy, validation.By(func(v any) error {
			if s, _ := v.(tokenize.Strategy); !s.IsValid() {
				return errors.New("must be Space-separated or Kanji")
			}
			return nil
		})),
		validation.Field(&c.AutoUpdateDelay, validation.Min(time.Duration(0))),
	)
}

// Options returns the configured defaults as run options.
func (c *ManagerConfig) Options() manager.Options {
	return manager.Options{
		SentencesDeck:     c.SentencesDeck,
		WordsDeck:         c.WordsDeck,
		WordField:         c.WordField,
		Strategy:          c.Strategy,
		RequireAllKnown:   c.RequireAllKnown,
		IncludeUnreviewed: c.IncludeUnreviewed,
	}
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Vault: VaultConfig{
			Path:  "./vault",
			Watch: true,
		},
		SQLite: SQLiteConfig{
			Path: "./kwm.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Manager: ManagerConfig{
			SentencesDeck:   "Sentences",
			WordsDeck:       "Words",
			WordField:       "Word",
			Strategy:        tokenize.SpaceSeparated,
			AutoUpdateDelay: 2 * time.Second,
		},
	}
}
