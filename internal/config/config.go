package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Log       LogConfig       `yaml:"log"`
	Assets    AssetsConfig    `yaml:"assets"`
	Display   DisplayConfig   `yaml:"display"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type StorageConfig struct {
	Path string `yaml:"path"`
	Seed string `yaml:"seed"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// AssetsConfig points at the static frontend. Version names the asset cache;
// bumping it invalidates every client copy.
type AssetsConfig struct {
	Dir     string `yaml:"dir"`
	Version string `yaml:"version"`
}

type DisplayConfig struct {
	Locale string `yaml:"locale"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// Addr returns host:port for the HTTP listener.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server:    ServerConfig{Host: "127.0.0.1", Port: 8080},
		Storage:   StorageConfig{Path: "pocketlifts.db", Seed: "two"},
		Log:       LogConfig{Level: "info", Format: "text"},
		Assets:    AssetsConfig{Version: "v1"},
		Display:   DisplayConfig{Locale: "en"},
		Tailscale: TailscaleConfig{Hostname: "pocketlifts", StateDir: "tsnet-state"},
	}
}

// Load starts from Default, overlays the YAML file at path when path is
// non-empty, then applies environment variable overrides. Env vars use the
// prefix POCKETLIFTS_ and underscore-separated paths:
//
//	POCKETLIFTS_SERVER_HOST, POCKETLIFTS_SERVER_PORT,
//	POCKETLIFTS_STORAGE_PATH, POCKETLIFTS_STORAGE_SEED,
//	POCKETLIFTS_LOG_LEVEL, POCKETLIFTS_LOG_FORMAT,
//	POCKETLIFTS_ASSETS_DIR, POCKETLIFTS_ASSETS_VERSION,
//	POCKETLIFTS_DISPLAY_LOCALE,
//	POCKETLIFTS_TAILSCALE_ENABLED, POCKETLIFTS_TAILSCALE_HOSTNAME
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("POCKETLIFTS_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("POCKETLIFTS_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("POCKETLIFTS_STORAGE_PATH"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("POCKETLIFTS_STORAGE_SEED"); v != "" {
		cfg.Storage.Seed = v
	}
	if v := os.Getenv("POCKETLIFTS_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("POCKETLIFTS_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("POCKETLIFTS_ASSETS_DIR"); v != "" {
		cfg.Assets.Dir = v
	}
	if v := os.Getenv("POCKETLIFTS_ASSETS_VERSION"); v != "" {
		cfg.Assets.Version = v
	}
	if v := os.Getenv("POCKETLIFTS_DISPLAY_LOCALE"); v != "" {
		cfg.Display.Locale = v
	}
	if v := os.Getenv("POCKETLIFTS_TAILSCALE_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Tailscale.Enabled = b
		}
	}
	if v := os.Getenv("POCKETLIFTS_TAILSCALE_HOSTNAME"); v != "" {
		cfg.Tailscale.Hostname = v
	}
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if c.Storage.Path == "" {
		return fmt.Errorf("storage.path is required")
	}
	switch c.Storage.Seed {
	case "two", "five":
	default:
		return fmt.Errorf("storage.seed must be \"two\" or \"five\", got %q", c.Storage.Seed)
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be \"text\" or \"json\", got %q", c.Log.Format)
	}
	if c.Assets.Version == "" {
		return fmt.Errorf("assets.version is required")
	}
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}
	return nil
}

// SlogLevel maps the configured level name to a slog.Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, errors.New("log.level must be debug, info, warn or error")
	}
	return level, nil
}

// NewLogger builds the process logger on w.
func (l LogConfig) NewLogger(w io.Writer) *slog.Logger {
	level, _ := l.SlogLevel()
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(l.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
