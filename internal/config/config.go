// Package config loads bunmark's settings from defaults, an optional YAML
// file and BUNMARK_ environment variables, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/iw2rmb/bunmark/schedule"
	"github.com/iw2rmb/bunmark/session"
)

type Config struct {
	VaultPath string `mapstructure:"vault_path"`
	Mode      string `mapstructure:"mode"`
	Language  string `mapstructure:"language"`
	LogLevel  string `mapstructure:"log_level"`
	LogFile   string `mapstructure:"log_file"`

	Timing TimingConfig `mapstructure:"timing"`
	Scan   ScanConfig   `mapstructure:"scan"`
	Editor EditorConfig `mapstructure:"editor"`
	Vault  VaultConfig  `mapstructure:"vault"`
}

type TimingConfig struct {
	TypingGrace      time.Duration `mapstructure:"typing_grace"`
	CheckboxGrace    time.Duration `mapstructure:"checkbox_grace"`
	SuppressMarkers  time.Duration `mapstructure:"suppress_markers"`
	FileChangedGrace time.Duration `mapstructure:"file_changed_grace"`
	Autosave         time.Duration `mapstructure:"autosave"`
	ImageUpdate      time.Duration `mapstructure:"image_update"`
}

type ScanConfig struct {
	ViewportMargin int `mapstructure:"viewport_margin"`
	HeavyChars     int `mapstructure:"heavy_chars"`
	VeryHeavyChars int `mapstructure:"very_heavy_chars"`
}

type EditorConfig struct {
	TabWidth       int    `mapstructure:"tab_width"`
	Wrap           bool   `mapstructure:"wrap"`
	LineNumbers    bool   `mapstructure:"line_numbers"`
	HighlightStyle string `mapstructure:"highlight_style"`
}

type VaultConfig struct {
	// Ignore holds doublestar patterns left out of listings.
	Ignore []string `mapstructure:"ignore"`
}

// EnvPrefix prefixes environment overrides: BUNMARK_VAULT_PATH,
// BUNMARK_TIMING_AUTOSAVE, ...
const EnvPrefix = "BUNMARK"

// Dir returns the XDG config directory for bunmark.
// Uses $XDG_CONFIG_HOME if set, otherwise ~/.config
func Dir() (string, error) {
	if xdgHome := os.Getenv("XDG_CONFIG_HOME"); xdgHome != "" {
		return filepath.Join(xdgHome, "bunmark"), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "bunmark"), nil
}

func setDefaults(v *viper.Viper) {
	t := session.DefaultTiming()
	v.SetDefault("vault_path", "")
	v.SetDefault("mode", "main")
	v.SetDefault("language", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
	v.SetDefault("timing.typing_grace", t.TypingGrace)
	v.SetDefault("timing.checkbox_grace", t.CheckboxGrace)
	v.SetDefault("timing.suppress_markers", t.SuppressMarkers)
	v.SetDefault("timing.file_changed_grace", t.FileChangedGrace)
	v.SetDefault("timing.autosave", t.Autosave)
	v.SetDefault("timing.image_update", t.ImageUpdate)
	v.SetDefault("scan.viewport_margin", 20)
	v.SetDefault("scan.heavy_chars", 120_000)
	v.SetDefault("scan.very_heavy_chars", 250_000)
	v.SetDefault("editor.tab_width", 4)
	v.SetDefault("editor.wrap", true)
	v.SetDefault("editor.line_numbers", false)
	v.SetDefault("editor.highlight_style", "monokai")
	v.SetDefault("vault.ignore", []string{})
}

// Load reads the configuration. With file empty the config directory and the
// working directory are searched for config.yaml; a missing file is not an
// error. An explicit file must exist.
func Load(file string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, fmt.Errorf("failed to get config dir: %w", err)
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if _, err := session.ParseMode(cfg.Mode); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SessionMode parses Mode; Load has already rejected bad values.
func (c *Config) SessionMode() session.Mode {
	m, _ := session.ParseMode(c.Mode)
	return m
}

// SessionTiming returns the grace windows with unset values defaulted.
func (c *Config) SessionTiming() session.Timing {
	d := session.DefaultTiming()
	pick := func(v, def time.Duration) time.Duration {
		if v > 0 {
			return v
		}
		return def
	}
	return session.Timing{
		TypingGrace:      pick(c.Timing.TypingGrace, d.TypingGrace),
		CheckboxGrace:    pick(c.Timing.CheckboxGrace, d.CheckboxGrace),
		SuppressMarkers:  pick(c.Timing.SuppressMarkers, d.SuppressMarkers),
		FileChangedGrace: pick(c.Timing.FileChangedGrace, d.FileChangedGrace),
		Autosave:         pick(c.Timing.Autosave, d.Autosave),
		ImageUpdate:      pick(c.Timing.ImageUpdate, d.ImageUpdate),
	}
}

// SchedulerOptions returns the scheduler settings of the configuration.
func (c *Config) SchedulerOptions() schedule.Options {
	t := c.SessionTiming()
	return schedule.Options{
		Mode:           c.SessionMode(),
		HeavyChars:     c.Scan.HeavyChars,
		VeryHeavyChars: c.Scan.VeryHeavyChars,
		Autosave:       t.Autosave,
		ImageDelay:     t.ImageUpdate,
	}
}
