package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	URL            string              `toml:"url"`
	Headers        []string            `toml:"headers"`
	Transports     []string            `toml:"transports"`
	Mode           string              `toml:"mode"`
	Timeout        string              `toml:"timeout"`
	HTTPTimeout    string              `toml:"http_timeout"`
	KeepAliveQuota int                 `toml:"keepalive_quota"`
	UnloadGrace    string              `toml:"unload_grace"`
	LogLevel       string              `toml:"log_level"`
	MetricsAddr    string              `toml:"metrics_addr"`
	Watch          *bool               `toml:"watch"`
	Transport      FileTransportConfig `toml:"transport"`
}

// FileTransportConfig is the [transport] table. The config watcher reads the
// same table when the file changes.
type FileTransportConfig struct {
	DisableXhr              *bool `toml:"disable_xhr"`
	DisableBeacon           *bool `toml:"disable_beacon"`
	DisableBeaconSync       *bool `toml:"disable_beacon_sync"`
	DisableFetchKeepAlive   *bool `toml:"disable_fetch_keepalive"`
	DisableCredentials      *bool `toml:"disable_credentials"`
	EnableCompletionPromise *bool `toml:"enable_completion_promise"`
	IsManagedEndpoint       *bool `toml:"is_managed_endpoint"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.telsend/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".telsend", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("url", fc.URL, &cfg.URL)
	s.setStrings("header", fc.Headers, &cfg.Headers)
	s.setStrings("transport", fc.Transports, &cfg.Transports)
	s.setString("mode", fc.Mode, &cfg.Mode)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)
	s.setString("metrics-addr", fc.MetricsAddr, &cfg.MetricsAddr)

	if err := s.setDuration("timeout", fc.Timeout, &cfg.Timeout); err != nil {
		return err
	}
	if err := s.setDuration("http-timeout", fc.HTTPTimeout, &cfg.HTTPTimeout); err != nil {
		return err
	}
	if err := s.setDuration("unload-grace", fc.UnloadGrace, &cfg.UnloadGrace); err != nil {
		return err
	}

	s.setInt("keepalive-quota", fc.KeepAliveQuota, &cfg.KeepAliveQuota)

	s.setBool("watch", fc.Watch, &cfg.Watch)

	t := fc.Transport
	s.setBool("disable-xhr", t.DisableXhr, &cfg.DisableXhr)
	s.setBool("disable-beacon", t.DisableBeacon, &cfg.DisableBeacon)
	s.setBool("disable-beacon-sync", t.DisableBeaconSync, &cfg.DisableBeaconSync)
	s.setBool("disable-fetch-keepalive", t.DisableFetchKeepAlive, &cfg.DisableFetchKeepAlive)
	s.setBool("disable-credentials", t.DisableCredentials, &cfg.DisableCredentials)
	s.setBool("completion-promise", t.EnableCompletionPromise, &cfg.EnableCompletionPromise)
	s.setBool("managed-endpoint", t.IsManagedEndpoint, &cfg.ManagedEndpoint)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
