// Package config loads mindcanvas settings from a TOML file, an optional .env file and
// MINDCANVAS_* environment variables, in that order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Duration is a time.Duration written as a string such as "15s" in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config holds mindcanvas configuration.
type Config struct {
	Workspace string          `toml:"workspace"`
	Log       LogConfig       `toml:"log"`
	Generator GeneratorConfig `toml:"generator"`
	Canvas    CanvasConfig    `toml:"canvas"`
	Store     StoreConfig     `toml:"store"`
	Server    ServerConfig    `toml:"server"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `toml:"level"` // debug, info, warn, error, none
}

// GeneratorConfig selects and tunes the text generation backend.
type GeneratorConfig struct {
	Provider        string   `toml:"provider"` // "openai", "openaicompat", "remote"
	Model           string   `toml:"model"`
	BaseURL         string   `toml:"base_url"`
	APIKey          string   `toml:"api_key"`
	MaxTokens       int      `toml:"max_tokens"`
	DetailMaxTokens int      `toml:"detail_max_tokens"`
	MaxChildren     int      `toml:"max_children"`
	Temperature     float64  `toml:"temperature"`
	RetryAttempts   int      `toml:"retry_attempts"`
	RetryDelay      Duration `toml:"retry_delay"`
	Breaker         bool     `toml:"breaker"`
	DetailTimeout   Duration `toml:"detail_timeout"`
	ChildrenTimeout Duration `toml:"children_timeout"`
	SummaryTimeout  Duration `toml:"summary_timeout"`
}

// CanvasConfig controls layout and interaction.
type CanvasConfig struct {
	Radius            float64  `toml:"radius"`
	HistoryLimit      int      `toml:"history_limit"`
	DoubleClickWindow Duration `toml:"double_click_window"`
	NoticeTTL         Duration `toml:"notice_ttl"`
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Backend       string   `toml:"backend"` // "sqlite", "file", "memory", "redis", "postgres"
	Path          string   `toml:"path"`    // sqlite database file or file store directory
	Table         string   `toml:"table"`
	RedisAddr     string   `toml:"redis_addr"`
	RedisPassword string   `toml:"redis_password"`
	RedisDB       int      `toml:"redis_db"`
	RedisPrefix   string   `toml:"redis_prefix"`
	RedisTTL      Duration `toml:"redis_ttl"`
	PostgresDSN   string   `toml:"postgres_dsn"`
}

// ServerConfig controls the HTTP generation service.
type ServerConfig struct {
	Addr           string   `toml:"addr"`
	RequestTimeout Duration `toml:"request_timeout"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Workspace: "mindcanvas",
		Log:       LogConfig{Level: "info"},
		Generator: GeneratorConfig{
			Provider:        "openai",
			Model:           "gpt-4o-mini",
			MaxTokens:       2048,
			DetailMaxTokens: 1024,
			MaxChildren:     8,
			Temperature:     0.7,
			RetryAttempts:   2,
			RetryDelay:      Duration{time.Second},
			Breaker:         true,
			DetailTimeout:   Duration{10 * time.Second},
			ChildrenTimeout: Duration{15 * time.Second},
			SummaryTimeout:  Duration{15 * time.Second},
		},
		Canvas: CanvasConfig{
			Radius:            200,
			HistoryLimit:      50,
			DoubleClickWindow: Duration{250 * time.Millisecond},
			NoticeTTL:         Duration{5 * time.Second},
		},
		Store: StoreConfig{
			Backend:     "sqlite",
			Path:        filepath.Join(DataDir(), "mindcanvas.db"),
			RedisAddr:   "localhost:6379",
			RedisPrefix: "mindcanvas:",
		},
		Server: ServerConfig{
			Addr:           ":8080",
			RequestTimeout: Duration{30 * time.Second},
			AllowedOrigins: []string{"*"},
		},
	}
}

// ConfigDir returns the mindcanvas config directory path.
func ConfigDir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "mindcanvas")
}

// DataDir returns the directory for local persistence.
func DataDir() string {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dir, "mindcanvas")
}

// Path returns the default config file path.
func Path() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads path (or the default path when empty) over the defaults and applies
// environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = Path()
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// LoadDotEnv loads KEY=VALUE pairs from files into the process environment without
// overriding variables that are already set. Missing files are skipped.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("config: load %s: %w", f, err)
		}
	}
	return nil
}

// Save writes the config to path.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// EnsureExists creates the config file with defaults if it doesn't exist.
func EnsureExists(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return Save(Default(), path)
}

// Validate checks values that cannot be defaulted.
func (c *Config) Validate() error {
	var errs []error
	switch c.Generator.Provider {
	case "openai", "openaicompat", "remote":
	default:
		errs = append(errs, fmt.Errorf("unknown generator provider %q", c.Generator.Provider))
	}
	switch c.Store.Backend {
	case "sqlite", "file", "memory", "redis", "postgres":
	default:
		errs = append(errs, fmt.Errorf("unknown store backend %q", c.Store.Backend))
	}
	if c.Generator.Provider == "remote" && c.Generator.BaseURL == "" {
		errs = append(errs, errors.New("remote provider requires generator.base_url"))
	}
	if c.Store.Backend == "postgres" && c.Store.PostgresDSN == "" {
		errs = append(errs, errors.New("postgres backend requires store.postgres_dsn"))
	}
	if c.Canvas.Radius <= 0 {
		errs = append(errs, errors.New("canvas.radius must be positive"))
	}
	if c.Canvas.HistoryLimit <= 0 {
		errs = append(errs, errors.New("canvas.history_limit must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

type envBinding struct {
	key string
	set func(c *Config, v string) error
}

func setString(field func(c *Config) *string) func(*Config, string) error {
	return func(c *Config, v string) error {
		*field(c) = v
		return nil
	}
}

func setInt(field func(c *Config) *int) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*field(c) = n
		return nil
	}
}

func setDuration(field func(c *Config) *Duration) func(*Config, string) error {
	return func(c *Config, v string) error {
		return field(c).UnmarshalText([]byte(v))
	}
}

var envBindings = []envBinding{
	{"MINDCANVAS_WORKSPACE", setString(func(c *Config) *string { return &c.Workspace })},
	{"MINDCANVAS_LOG_LEVEL", setString(func(c *Config) *string { return &c.Log.Level })},
	{"MINDCANVAS_PROVIDER", setString(func(c *Config) *string { return &c.Generator.Provider })},
	{"MINDCANVAS_MODEL", setString(func(c *Config) *string { return &c.Generator.Model })},
	{"MINDCANVAS_BASE_URL", setString(func(c *Config) *string { return &c.Generator.BaseURL })},
	{"MINDCANVAS_API_KEY", setString(func(c *Config) *string { return &c.Generator.APIKey })},
	{"MINDCANVAS_MAX_CHILDREN", setInt(func(c *Config) *int { return &c.Generator.MaxChildren })},
	{"MINDCANVAS_DETAIL_TIMEOUT", setDuration(func(c *Config) *Duration { return &c.Generator.DetailTimeout })},
	{"MINDCANVAS_CHILDREN_TIMEOUT", setDuration(func(c *Config) *Duration { return &c.Generator.ChildrenTimeout })},
	{"MINDCANVAS_STORE", setString(func(c *Config) *string { return &c.Store.Backend })},
	{"MINDCANVAS_STORE_PATH", setString(func(c *Config) *string { return &c.Store.Path })},
	{"MINDCANVAS_REDIS_ADDR", setString(func(c *Config) *string { return &c.Store.RedisAddr })},
	{"MINDCANVAS_REDIS_PASSWORD", setString(func(c *Config) *string { return &c.Store.RedisPassword })},
	{"MINDCANVAS_POSTGRES_DSN", setString(func(c *Config) *string { return &c.Store.PostgresDSN })},
	{"MINDCANVAS_ADDR", setString(func(c *Config) *string { return &c.Server.Addr })},
	{"MINDCANVAS_ALLOWED_ORIGINS", func(c *Config, v string) error {
		c.Server.AllowedOrigins = strings.Split(v, ",")
		return nil
	}},
}

// ApplyEnv overrides fields from MINDCANVAS_* variables.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	for _, b := range envBindings {
		v, ok := lookup(b.key)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		if err := b.set(c, strings.TrimSpace(v)); err != nil {
			return fmt.Errorf("config: %s: %w", b.key, err)
		}
	}
	return nil
}
