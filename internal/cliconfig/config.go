package cliconfig

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bft-labs/telsend/internal/domain"
)

// Config holds CLI configuration for telsend.
type Config struct {
	URL     string
	Data    string
	File    string
	Headers []string

	Transports []string
	Mode       string
	Timeout    time.Duration

	HTTPTimeout    time.Duration
	KeepAliveQuota int
	UnloadGrace    time.Duration

	LogLevel    string
	MetricsAddr string
	Watch       bool

	DisableXhr              bool
	DisableBeacon           bool
	DisableBeaconSync       bool
	DisableFetchKeepAlive   bool
	DisableCredentials      bool
	EnableCompletionPromise bool
	ManagedEndpoint         bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Transports:     []string{"fetch", "xhr", "beacon"},
		Mode:           domain.ModeSync.String(),
		HTTPTimeout:    30 * time.Second,
		KeepAliveQuota: 64 * 1024,
		LogLevel:       "info",
	}
}

// Validate checks the configuration for errors and normalizes values.
func (c *Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("url is required")
	}
	if c.Data != "" && c.File != "" {
		return fmt.Errorf("data and file are mutually exclusive")
	}
	if _, err := domain.ParseSendMode(c.Mode); err != nil {
		return err
	}
	if _, err := domain.ParseTransports(c.Transports); err != nil {
		return err
	}
	if _, err := c.HeaderMap(); err != nil {
		return err
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be positive")
	}
	if c.UnloadGrace < 0 {
		return fmt.Errorf("unload grace must not be negative")
	}
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	return nil
}

// HeaderMap parses the key=value header list.
func (c *Config) HeaderMap() (map[string]string, error) {
	if len(c.Headers) == 0 {
		return nil, nil
	}
	headers := make(map[string]string, len(c.Headers))
	for _, h := range c.Headers {
		k, v, ok := strings.Cut(h, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid header %q, want key=value", h)
		}
		headers[k] = strings.TrimSpace(v)
	}
	return headers, nil
}

// Body returns the payload body from Data or File.
func (c *Config) Body() ([]byte, error) {
	if c.File == "" {
		return []byte(c.Data), nil
	}
	b, err := os.ReadFile(c.File)
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}
	return b, nil
}

// TransportConfig returns the transport switches.
func (c *Config) TransportConfig() domain.TransportConfig {
	return domain.TransportConfig{
		DisableXhr:              c.DisableXhr,
		DisableBeacon:           c.DisableBeacon,
		DisableBeaconSync:       c.DisableBeaconSync,
		DisableFetchKeepAlive:   c.DisableFetchKeepAlive,
		DisableCredentials:      c.DisableCredentials,
		EnableCompletionPromise: c.EnableCompletionPromise,
		IsManagedEndpoint:       c.ManagedEndpoint,
	}
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setStrings sets a list if not empty and flag not changed.
func (s *configSetter) setStrings(flag string, value []string, dst *[]string) {
	if len(value) == 0 || s.changed[flag] {
		return
	}
	*dst = append([]string(nil), value...)
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setListFromString splits a comma separated list.
// Used for environment variables that come as strings.
func (s *configSetter) setListFromString(flag, value string, dst *[]string) {
	if value == "" || s.changed[flag] {
		return
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	*dst = out
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
// Used for environment variables that come as strings.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
