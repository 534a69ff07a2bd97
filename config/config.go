// Package config loads the fin settings from an optional TOML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Store     StoreConfig     `mapstructure:"store"`
	LLM       LLMConfig       `mapstructure:"llm"`
	UI        UIConfig        `mapstructure:"ui"`
	Recurring RecurringConfig `mapstructure:"recurring"`
	Log       LogConfig       `mapstructure:"log"`
}

// StoreConfig selects where the ledger is kept.
type StoreConfig struct {
	Backend string `mapstructure:"backend"` // file, sqlite or memory
	Path    string `mapstructure:"path"`    // a directory, or the database file for sqlite
}

// LLMConfig holds provider settings.
type LLMConfig struct {
	Model      string        `mapstructure:"model"`
	APIKey     string        `mapstructure:"api_key"`
	APIKeyEnv  string        `mapstructure:"api_key_env"`
	Timeout    time.Duration `mapstructure:"timeout"`
	Attempts   int           `mapstructure:"attempts"`
	Synthesize bool          `mapstructure:"synthesize"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	Currency string `mapstructure:"currency"`
}

// RecurringConfig holds the background scheduler settings.
type RecurringConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

// LogConfig holds the application log settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Key returns the API key, from the configuration or from the environment
// variable it names.
func (c LLMConfig) Key() string {
	if c.APIKey != "" {
		return c.APIKey
	}
	if c.APIKeyEnv != "" {
		return os.Getenv(c.APIKeyEnv)
	}
	return ""
}

// Location returns the path to open for the configured backend. A sqlite
// store configured with a directory gets a fintrack.db file in it.
func (s StoreConfig) Location() string {
	path := expandHome(s.Path)
	if strings.EqualFold(s.Backend, "sqlite") && filepath.Ext(path) == "" {
		return filepath.Join(path, "fintrack.db")
	}
	return path
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		return filepath.Join(home(), strings.TrimPrefix(path, "~"))
	}
	return path
}

func home() string {
	if h, err := os.UserHomeDir(); err == nil {
		return h
	}
	return os.Getenv("HOME")
}

// Path returns the configuration file: $FINTRACK_CONFIG, or
// ~/.config/fintrack/config.toml.
func Path() string {
	if p := os.Getenv("FINTRACK_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(home(), ".config", "fintrack", "config.toml")
}

func defaults(v *viper.Viper) {
	v.SetDefault("store.backend", "file")
	v.SetDefault("store.path", filepath.Join(home(), ".local", "share", "fintrack"))
	v.SetDefault("llm.model", "gemini-2.5-flash")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.api_key_env", "GEMINI_API_KEY")
	v.SetDefault("llm.timeout", "20s")
	v.SetDefault("llm.attempts", 3)
	v.SetDefault("llm.synthesize", true)
	v.SetDefault("ui.currency", "INR")
	v.SetDefault("recurring.interval", "1h")
	v.SetDefault("log.level", "warn")
}

// Load reads configuration from file and env. Env var overrides use prefix FINTRACK_.
// A missing configuration file is not an error.
func Load() (Config, error) {
	v := viper.New()
	defaults(v)

	v.SetConfigType("toml")
	v.SetConfigFile(Path())

	v.SetEnvPrefix("FINTRACK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read config %s: %w", Path(), err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.LLM.Attempts < 1 {
		c.LLM.Attempts = 1
	}
	return c, nil
}

// Save writes the provided config to Path, creating the config directory if
// needed. The API key is written only if it is set in cfg; prefer the
// environment variable.
func Save(cfg Config) error {
	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("store.backend", cfg.Store.Backend)
	v.Set("store.path", cfg.Store.Path)
	v.Set("llm.model", cfg.LLM.Model)
	if cfg.LLM.APIKey != "" {
		v.Set("llm.api_key", cfg.LLM.APIKey)
	}
	v.Set("llm.api_key_env", cfg.LLM.APIKeyEnv)
	v.Set("llm.timeout", cfg.LLM.Timeout.String())
	v.Set("llm.attempts", cfg.LLM.Attempts)
	v.Set("llm.synthesize", cfg.LLM.Synthesize)
	v.Set("ui.currency", cfg.UI.Currency)
	v.Set("recurring.interval", cfg.Recurring.Interval.String())
	v.Set("log.level", cfg.Log.Level)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
