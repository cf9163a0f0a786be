package cliconfig

import (
	"os"

	"github.com/bft-labs/telsend/internal/domain"
)

// ApplyEnvConfig applies configuration from environment variables (TELSEND_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("url", os.Getenv("TELSEND_URL"), &cfg.URL)
	s.setString("mode", os.Getenv("TELSEND_MODE"), &cfg.Mode)
	s.setString("log-level", os.Getenv("TELSEND_LOG_LEVEL"), &cfg.LogLevel)
	s.setString("metrics-addr", os.Getenv("TELSEND_METRICS_ADDR"), &cfg.MetricsAddr)
	s.setListFromString("transport", os.Getenv("TELSEND_TRANSPORTS"), &cfg.Transports)

	if err := s.setDuration("timeout", os.Getenv("TELSEND_TIMEOUT"), &cfg.Timeout); err != nil {
		return err
	}
	if err := s.setDuration("http-timeout", os.Getenv("TELSEND_HTTP_TIMEOUT"), &cfg.HTTPTimeout); err != nil {
		return err
	}
	if err := s.setDuration("unload-grace", os.Getenv("TELSEND_UNLOAD_GRACE"), &cfg.UnloadGrace); err != nil {
		return err
	}

	if err := s.setIntFromString("keepalive-quota", os.Getenv("TELSEND_KEEPALIVE_QUOTA"), &cfg.KeepAliveQuota); err != nil {
		return err
	}

	s.setBoolFromString("watch", os.Getenv("TELSEND_WATCH"), &cfg.Watch)
	for _, f := range transportFields(cfg, nil) {
		s.setBoolFromString(f.flag, os.Getenv(f.env), f.src)
	}

	return nil
}

// transportField links one transport switch to its flag, its environment
// variable and its place in Config and, when dst is non-nil, in dst.
type transportField struct {
	flag string
	env  string
	src  *bool
	dst  *bool
}

func transportFields(cfg *Config, dst *domain.TransportConfig) []transportField {
	if dst == nil {
		dst = &domain.TransportConfig{}
	}
	return []transportField{
		{"disable-xhr", "TELSEND_DISABLE_XHR", &cfg.DisableXhr, &dst.DisableXhr},
		{"disable-beacon", "TELSEND_DISABLE_BEACON", &cfg.DisableBeacon, &dst.DisableBeacon},
		{"disable-beacon-sync", "TELSEND_DISABLE_BEACON_SYNC", &cfg.DisableBeaconSync, &dst.DisableBeaconSync},
		{"disable-fetch-keepalive", "TELSEND_DISABLE_FETCH_KEEPALIVE", &cfg.DisableFetchKeepAlive, &dst.DisableFetchKeepAlive},
		{"disable-credentials", "TELSEND_DISABLE_CREDENTIALS", &cfg.DisableCredentials, &dst.DisableCredentials},
		{"completion-promise", "TELSEND_COMPLETION_PROMISE", &cfg.EnableCompletionPromise, &dst.EnableCompletionPromise},
		{"managed-endpoint", "TELSEND_MANAGED_ENDPOINT", &cfg.ManagedEndpoint, &dst.IsManagedEndpoint},
	}
}

// OverrideTransport copies onto dst every transport switch that was set by a
// flag (changed map) or a TELSEND_* variable, so a reloaded [transport] table
// keeps flags > env > file precedence.
func (c *Config) OverrideTransport(dst *domain.TransportConfig, changed map[string]bool) {
	for _, f := range transportFields(c, dst) {
		if changed[f.flag] || os.Getenv(f.env) != "" {
			*f.dst = *f.src
		}
	}
}
