package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`
	LogFormat         string        `mapstructure:"log_format" yaml:"log_format"`
	DatabasePath      string        `mapstructure:"database_path" yaml:"database_path"`
	PasswordHasher    string        `mapstructure:"password_hasher" yaml:"password_hasher"`
	DefaultCommunity  string        `mapstructure:"default_community" yaml:"default_community"`
	HistoryLimit      int           `mapstructure:"history_limit" yaml:"history_limit"`
	HistoryCap        int           `mapstructure:"history_cap" yaml:"history_cap"`
	ClientBuffer      int           `mapstructure:"client_buffer" yaml:"client_buffer"`
	MaxMessageBytes   int64         `mapstructure:"max_message_bytes" yaml:"max_message_bytes"`
	EventsPerSecond   float64       `mapstructure:"events_per_second" yaml:"events_per_second"`
	StrictProtocol    bool          `mapstructure:"strict_protocol" yaml:"strict_protocol"`
	AllowedOrigins    []string      `mapstructure:"allowed_origins" yaml:"allowed_origins"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":3000",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		LogLevel:          "info",
		LogFormat:         "console",
		DatabasePath:      "terminal-chat.db",
		PasswordHasher:    "sha256",
		DefaultCommunity:  "global",
		HistoryLimit:      100,
		HistoryCap:        1000,
		ClientBuffer:      64,
		MaxMessageBytes:   64 << 10,
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.LogFormat != "" {
		c.LogFormat = other.LogFormat
	}
	if other.DatabasePath != "" {
		c.DatabasePath = other.DatabasePath
	}
	if other.PasswordHasher != "" {
		c.PasswordHasher = other.PasswordHasher
	}
}

// Validate rejects values the server cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("addr must not be empty"))
	}
	if c.DatabasePath == "" {
		errs = append(errs, errors.New("database_path must not be empty"))
	}
	switch strings.ToLower(c.PasswordHasher) {
	case "", "sha256", "bcrypt":
	default:
		errs = append(errs, fmt.Errorf("password_hasher %q is not one of sha256, bcrypt", c.PasswordHasher))
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log_format %q is not one of console, json", c.LogFormat))
	}
	if c.HistoryLimit < 0 || c.HistoryCap < 0 {
		errs = append(errs, errors.New("history_limit and history_cap must not be negative"))
	}
	if c.HistoryCap > 0 && c.HistoryLimit > c.HistoryCap {
		errs = append(errs, fmt.Errorf("history_limit %d exceeds history_cap %d", c.HistoryLimit, c.HistoryCap))
	}
	if c.EventsPerSecond < 0 {
		errs = append(errs, errors.New("events_per_second must not be negative"))
	}
	return errors.Join(errs...)
}
