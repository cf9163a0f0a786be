// Package configwatcher provides transport config hot reload for telsend.
// When enabled, it watches the TOML config file and applies its [transport]
// table through SetConfig whenever the file changes.
package configwatcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/bft-labs/telsend/pkg/log"
	"github.com/bft-labs/telsend/pkg/telsend"
)

// Plugin implements config watching functionality.
type Plugin struct {
	mu sync.Mutex

	// Configuration
	path          string
	debounceDelay time.Duration
	overrides     func(*telsend.TransportConfig)

	// Runtime state
	target   telsend.Configurer
	logger   telsend.Logger
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	debounce *time.Timer
	reloads  int
}

// Config holds configuration options for the config watcher plugin.
type Config struct {
	// Path is the file to watch. Empty uses the client's ConfigPath.
	Path string

	// DebounceDelay is the delay to wait after a file change before reloading.
	// Default: 100 milliseconds
	DebounceDelay time.Duration

	// Overrides, if set, adjusts every config read from the file before it
	// is applied. Callers use it to keep switches pinned by flags.
	Overrides func(*telsend.TransportConfig)
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DebounceDelay: 100 * time.Millisecond,
	}
}

// New creates a new config watcher plugin with the given configuration.
func New(cfg Config) *Plugin {
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = 100 * time.Millisecond
	}
	return &Plugin{
		path:          cfg.Path,
		debounceDelay: cfg.DebounceDelay,
		overrides:     cfg.Overrides,
	}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "configwatcher"
}

// Initialize applies the current file and starts the watcher.
func (p *Plugin) Initialize(ctx context.Context, cfg telsend.PluginConfig) error {
	p.mu.Lock()
	if p.path == "" {
		p.path = cfg.ConfigPath
	}
	p.target = cfg.Transport
	p.logger = cfg.Logger
	if p.logger == nil {
		p.logger = log.NewNoopLogger()
	}
	p.mu.Unlock()

	if p.path == "" || p.target == nil {
		p.logger.Warn("config watcher disabled: no config path")
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	// The directory is watched so editors that replace the file are seen.
	if err := watcher.Add(filepath.Dir(p.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(p.path), err)
	}

	if err := p.reload(); err != nil && !os.IsNotExist(err) {
		p.logger.Warn("config watcher: initial load failed", log.String("path", p.path), log.Err(err))
	}

	watchCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.logger.Info("config watcher plugin initialized", log.String("path", p.path))

	p.wg.Add(1)
	go p.watchLoop(watchCtx, watcher)

	return nil
}

// Shutdown stops the config watcher.
func (p *Plugin) Shutdown(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()

	p.mu.Lock()
	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.mu.Unlock()
	return nil
}

// Reloads returns how many times the file was applied successfully.
func (p *Plugin) Reloads() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reloads
}

func (p *Plugin) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer p.wg.Done()
	defer watcher.Close()

	name := filepath.Base(p.path)
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			p.debounceReload(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			p.logger.Error("config watcher: watcher error", log.Err(err))
		}
	}
}

func (p *Plugin) debounceReload(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.debounce = time.AfterFunc(p.debounceDelay, func() {
		if ctx.Err() != nil {
			return
		}
		if err := p.reload(); err != nil {
			p.logger.Error("config watcher: reload failed", log.String("path", p.path), log.Err(err))
		}
	})
}

// transportFile is the part of the config file this plugin reads.
type transportFile struct {
	Transport *telsend.TransportConfig `toml:"transport"`
}

// reload parses the file and applies its transport table, after overrides.
// A file without a transport table leaves the active config untouched.
func (p *Plugin) reload() error {
	cfg, ok, err := LoadTransportConfig(p.path)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	if p.overrides != nil {
		p.overrides(&cfg)
	}
	p.target.SetConfig(cfg)

	p.mu.Lock()
	p.reloads++
	p.mu.Unlock()

	p.logger.Info("config watcher: transport config applied",
		log.Bool("disable_xhr", cfg.DisableXhr),
		log.Bool("disable_beacon", cfg.DisableBeacon),
		log.Bool("disable_beacon_sync", cfg.DisableBeaconSync),
		log.Bool("disable_credentials", cfg.DisableCredentials),
	)
	return nil
}

// LoadTransportConfig reads the [transport] table of the TOML file at path.
// ok is false when the file has no such table.
func LoadTransportConfig(path string) (cfg telsend.TransportConfig, ok bool, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, false, err
	}
	var f transportFile
	if err := toml.Unmarshal(b, &f); err != nil {
		return cfg, false, fmt.Errorf("parse %s: %w", path, err)
	}
	if f.Transport == nil {
		return cfg, false, nil
	}
	return *f.Transport, true, nil
}

// Ensure Plugin implements telsend.Plugin.
var _ telsend.Plugin = (*Plugin)(nil)
