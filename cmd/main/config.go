package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/CTAG07/podtags/pkg/templating"
	"github.com/natefinch/atomic"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// SiteConfig holds the locations and settings used by every command.
type SiteConfig struct {
	PodRoot      string `json:"pod_root" mapstructure:"pod_root"`
	TemplateDir  string `json:"template_dir" mapstructure:"template_dir"`
	OutputDir    string `json:"output_dir" mapstructure:"output_dir"`
	DatabasePath string `json:"database_path" mapstructure:"database_path"`
	LogLevel     string `json:"log_level" mapstructure:"log_level"`
	Workers      int    `json:"workers" mapstructure:"workers"`
}

// Config is the top-level configuration struct that aggregates all other configs.
type Config struct {
	Site      *SiteConfig                `json:"site_config" mapstructure:"site_config"`
	Templates *templating.TemplateConfig `json:"template_config" mapstructure:"template_config"`
}

// DefaultSiteConfig creates a site configuration with default values.
func DefaultSiteConfig() *SiteConfig {
	return &SiteConfig{
		PodRoot:      ".",
		TemplateDir:  "./views",
		OutputDir:    "./build",
		DatabasePath: "./podtags.db",
		LogLevel:     "info",
		Workers:      4,
	}
}

// DefaultConfig returns the configuration used when no file overrides it.
func DefaultConfig() *Config {
	templates := templating.DefaultConfig()
	return &Config{
		Site:      DefaultSiteConfig(),
		Templates: &templates,
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Site.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Site.Workers)
	}
	if c.Site.PodRoot == "" {
		return errors.New("pod root must be set")
	}
	if err := c.Templates.Validate(); err != nil {
		return fmt.Errorf("invalid template config: %w", err)
	}
	return nil
}

// flagKeys maps command-line flags onto configuration keys.
var flagKeys = map[string]string{
	"pod":       "site_config.pod_root",
	"templates": "site_config.template_dir",
	"out":       "site_config.output_dir",
	"db":        "site_config.database_path",
	"log-level": "site_config.log_level",
	"workers":   "site_config.workers",
}

// LoadConfig reads the configuration from a JSON file at the given path.
// If the file doesn't exist, it creates one with default values. Environment
// variables prefixed with PODTAGS_ and any flags that were set override the
// file, in that order.
func LoadConfig(path string, flags *pflag.FlagSet) (*Config, error) {
	config := DefaultConfig()
	defaults, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal default config: %w", err)
	}

	v := viper.New()
	v.SetConfigType("json")
	v.SetEnvPrefix("PODTAGS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err = v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}

	file, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err = atomic.WriteFile(path, bytes.NewReader(defaults)); err != nil {
			// The defaults are still usable without a file on disk.
			fmt.Fprintf(os.Stderr, "warning: failed to write default config file: %v\n", err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err = v.MergeConfig(bytes.NewReader(file)); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			flag := flags.Lookup(name)
			if flag == nil {
				continue
			}
			if err = v.BindPFlag(key, flag); err != nil {
				return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
			}
		}
	}

	if err = v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err = config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// newLogger builds the command's logger at the configured level.
func newLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}
