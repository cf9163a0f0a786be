package configwatcher

import "github.com/bft-labs/telsend/pkg/telsend"

// WithConfigWatcher returns a telsend Option that enables config file
// watching.
//
// Usage:
//
//	c, err := telsend.New(cfg,
//	    configwatcher.WithConfigWatcher(configwatcher.Config{
//	        Path:          "/etc/telsend/config.toml",
//	        DebounceDelay: 100 * time.Millisecond,
//	    }),
//	)
func WithConfigWatcher(cfg Config) telsend.Option {
	return telsend.WithPlugin(New(cfg))
}

// WithDefaultConfigWatcher returns a telsend Option that watches the
// client's ConfigPath with default settings.
//
// Usage:
//
//	c, err := telsend.New(cfg, configwatcher.WithDefaultConfigWatcher())
func WithDefaultConfigWatcher() telsend.Option {
	return WithConfigWatcher(DefaultConfig())
}
