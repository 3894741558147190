// Package config provides configuration management for the watcher.
//
// Values are layered: built-in defaults, then an optional YAML file,
// then environment variables. The environment always wins, so a `.env`
// file loaded at startup behaves the same as a real environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the config path probed when no -config flag is given.
const DefaultConfigFile = "configs/watcher.yaml"

// Configuration validation errors.
var (
	ErrMissingSourceURL     = errors.New("watcher.source_url is required")
	ErrMissingBaseURL       = errors.New("watcher.base_url is required")
	ErrInvalidCheckInterval = errors.New("watcher.check_interval_hours must be at least 1")
	ErrInvalidTimeout       = errors.New("watcher.timeout_sec must be at least 1")
	ErrMissingCheckpoint    = errors.New("watcher.checkpoint_file is required")
	ErrInvalidSMTPPort      = errors.New("mail.smtp_port must be between 0 and 65535")
	ErrInvalidLogLevel      = errors.New("logging.level must be one of: debug, info, warn, warning, error")
)

// Config represents the complete watcher configuration.
type Config struct {
	Watcher WatcherConfig `yaml:"watcher"`
	Mail    MailConfig    `yaml:"mail"`
	Logging LoggingConfig `yaml:"logging"`
}

// WatcherConfig contains fetch and evaluation settings.
type WatcherConfig struct {
	SourceURL          string         `yaml:"source_url"`
	BaseURL            string         `yaml:"base_url"`
	Selectors          SelectorConfig `yaml:"selectors"`
	CheckIntervalHours int            `yaml:"check_interval_hours"`
	CheckpointFile     string         `yaml:"checkpoint_file"`
	TimeoutSec         int            `yaml:"timeout_sec"`
	Debug              bool           `yaml:"debug"`
}

// SelectorConfig holds the structural selectors for the announcement page.
type SelectorConfig struct {
	Container string `yaml:"container"`
	Row       string `yaml:"row"`
	DateLabel string `yaml:"date_label"`
	Anchor    string `yaml:"anchor"`
}

// MailConfig contains the SMTP endpoint and message identities.
type MailConfig struct {
	SMTPHost string `yaml:"smtp_host"`
	SMTPPort int    `yaml:"smtp_port"`
	SendAddr string `yaml:"send_addr"`
	SendPass string `yaml:"send_pass"`
	RecvAddr string `yaml:"recv_addr"`
	SendName string `yaml:"send_name"`
	RecvName string `yaml:"recv_name"`
	Subject  string `yaml:"subject"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns the built-in configuration for the renji.com
// announcement listing.
func Default() *Config {
	return &Config{
		Watcher: WatcherConfig{
			SourceURL: "https://www.renji.com/default.php?mod=article&fid=38",
			BaseURL:   "https://www.renji.com/",
			Selectors: SelectorConfig{
				Container: `div[ya="20"] > div > div > table`,
				Row:       "td",
				DateLabel: `span[style="float:right"]`,
				Anchor:    "a",
			},
			CheckIntervalHours: 24,
			CheckpointFile:     "/tmp/renji-checkpoint.txt",
			TimeoutSec:         30,
		},
		Mail: MailConfig{
			SendName: "RenjiNotification",
			RecvName: "Anonymous VIP",
		},
		Logging: LoggingConfig{
			Level: "warning",
		},
	}
}

// Load builds the configuration: defaults, then the YAML file at path
// (skipped when path is empty), then environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// applyEnv overlays the documented environment variables.
func (c *Config) applyEnv() error {
	envString("LAST_CHECKPOINT_FILE", &c.Watcher.CheckpointFile)
	envString("LOG_LEVEL", &c.Logging.Level)
	envString("SMTP_SERVER_ADDR", &c.Mail.SMTPHost)
	envString("MAIL_SEND_ADDR", &c.Mail.SendAddr)
	envString("MAIL_SEND_PASS", &c.Mail.SendPass)
	envString("MAIL_RECV_ADDR", &c.Mail.RecvAddr)
	envString("MAIL_SEND_NAME", &c.Mail.SendName)
	envString("MAIL_RECV_NAME", &c.Mail.RecvName)
	envString("SUBJECT", &c.Mail.Subject)

	// CHECK_INTEVAL: historical spelling, kept because it is the
	// published configuration surface.
	if err := envInt("CHECK_INTEVAL", &c.Watcher.CheckIntervalHours); err != nil {
		return err
	}

	if err := envInt("SMTP_SERVER_PORT", &c.Mail.SMTPPort); err != nil {
		return err
	}

	if v, ok := os.LookupEnv("DEBUG"); ok && v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid DEBUG value %q: %w", v, err)
		}

		c.Watcher.Debug = debug
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Watcher.SourceURL == "" {
		return ErrMissingSourceURL
	}

	if c.Watcher.BaseURL == "" {
		return ErrMissingBaseURL
	}

	if c.Watcher.CheckIntervalHours < 1 {
		return ErrInvalidCheckInterval
	}

	if c.Watcher.TimeoutSec < 1 {
		return ErrInvalidTimeout
	}

	if c.Watcher.CheckpointFile == "" {
		return ErrMissingCheckpoint
	}

	if c.Mail.SMTPPort < 0 || c.Mail.SMTPPort > 65535 {
		return ErrInvalidSMTPPort
	}

	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "warning": true, "error": true,
	}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return ErrInvalidLogLevel
	}

	return nil
}

// Timeout returns the HTTP client timeout.
func (w *WatcherConfig) Timeout() time.Duration {
	return time.Duration(w.TimeoutSec) * time.Second
}

// CheckInterval returns the staleness window.
func (w *WatcherConfig) CheckInterval() time.Duration {
	return time.Duration(w.CheckIntervalHours) * time.Hour
}

// Complete reports whether every field required for a real send is set.
func (m *MailConfig) Complete() bool {
	return m.SMTPHost != "" &&
		m.SMTPPort != 0 &&
		m.SendAddr != "" &&
		m.SendPass != "" &&
		m.RecvAddr != ""
}

// SubjectOr returns the configured subject override, or fallback.
func (m *MailConfig) SubjectOr(fallback string) string {
	if m.Subject != "" {
		return m.Subject
	}

	return fallback
}

// String returns a string representation of the config without secrets.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Source: %s, Interval: %dh, Checkpoint: %s, Mail: %t, Debug: %t}",
		c.Watcher.SourceURL,
		c.Watcher.CheckIntervalHours,
		c.Watcher.CheckpointFile,
		c.Mail.Complete(),
		c.Watcher.Debug,
	)
}

func envString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s value %q: %w", key, v, err)
	}

	*dst = n

	return nil
}
