package telsend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	httpAdapter "github.com/bft-labs/telsend/internal/adapters/http"
	"github.com/bft-labs/telsend/internal/adapters/metrics"
	"github.com/bft-labs/telsend/internal/app"
	"github.com/bft-labs/telsend/internal/ports"
)

// Config controls a Client.
type Config struct {
	// Transports is the preference order. Empty means fetch, xhr, beacon.
	Transports []Transport

	// Transport is the initial switch snapshot.
	Transport TransportConfig

	// HTTPTimeout bounds the default HTTP client. Default: 30 seconds.
	HTTPTimeout time.Duration

	// KeepAliveQuota is the aggregate keepalive byte budget.
	// Default: 65536. Negative disables the limit.
	KeepAliveQuota int64

	// UnloadGrace is how long an unload send waits for a real response
	// before reporting success.
	UnloadGrace time.Duration

	// BeaconQueueBytes bounds the built-in beacon queue. Default: 65536.
	BeaconQueueBytes int

	// ConfigPath is passed to plugins that watch a config file.
	ConfigPath string
}

// SetDefaults fills zero fields with defaults.
func (c *Config) SetDefaults() {
	if c.HTTPTimeout == 0 {
		c.HTTPTimeout = 30 * time.Second
	}
	if c.KeepAliveQuota == 0 {
		c.KeepAliveQuota = app.DefaultKeepAliveQuota
	}
	if c.BeaconQueueBytes == 0 {
		c.BeaconQueueBytes = httpAdapter.DefaultBeaconQueueBytes
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.HTTPTimeout < 0 {
		return fmt.Errorf("%w: http timeout must not be negative", ErrInvalidConfig)
	}
	if c.UnloadGrace < 0 {
		return fmt.Errorf("%w: unload grace must not be negative", ErrInvalidConfig)
	}
	if c.BeaconQueueBytes < 0 {
		return fmt.Errorf("%w: beacon queue bytes must not be negative", ErrInvalidConfig)
	}
	for _, t := range c.Transports {
		if t == TransportUnknown {
			return fmt.Errorf("%w: unknown transport in preference list", ErrInvalidConfig)
		}
	}
	return nil
}

// Client sends telemetry payloads through the first usable transport.
type Client struct {
	config  Config
	opts    options
	manager *app.Manager
	queue   *httpAdapter.BeaconQueue
	logger  ports.Logger

	mu      sync.Mutex
	started []Plugin
	closed  bool
}

// New creates and initializes a Client.
func New(cfg Config, opts ...Option) (*Client, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := defaultOptions(&http.Client{Timeout: cfg.HTTPTimeout})
	for _, opt := range opts {
		opt(&o)
	}

	client := o.httpClient
	if o.requestObserver != nil {
		client = httpAdapter.NewInstrumentedClient(client, o.requestObserver)
	}

	var obs observers
	if o.registerer != nil {
		obs = append(obs, metrics.NewPrometheus(o.registerer))
	}
	if o.eventHandler != nil {
		obs = append(obs, eventObserver{handler: o.eventHandler})
	}
	var observer ports.SendObserver
	if len(obs) > 0 {
		observer = obs
	}

	caps := o.capabilities
	c := &Client{config: cfg, opts: o, logger: o.logger}

	beacon := o.beacon
	if beacon == nil && caps.Beacon {
		c.queue = httpAdapter.NewBeaconQueue(client, httpAdapter.BeaconQueueConfig{
			MaxQueuedBytes: cfg.BeaconQueueBytes,
		}, o.logger)
		beacon = c.queue
	}

	c.manager = app.NewManager(app.Environment{
		Client:         client,
		Beacon:         beacon,
		Jar:            o.jar,
		Fetch:          caps.Fetch,
		FetchKeepAlive: caps.FetchKeepAlive,
		Xhr:            caps.Xhr,
		CrossOriginXhr: caps.CrossOriginXhr,
		XDomain:        caps.XDomain,
		PageScheme:     caps.PageScheme,
	}, o.logger, app.ManagerOptions{
		KeepAliveQuota: cfg.KeepAliveQuota,
		UnloadGrace:    cfg.UnloadGrace,
		RetryHook:      o.retryHook,
		Observer:       observer,
	})
	c.manager.Initialize(cfg.Transport, cfg.Transports)

	return c, nil
}

// Send delivers payload. onComplete is invoked exactly once, also when an
// error is returned.
func (c *Client) Send(ctx context.Context, payload Payload, mode SendMode, onComplete OnComplete) (*Future, error) {
	return c.manager.Send(ctx, payload, mode, onComplete)
}

// SetConfig atomically replaces the transport config.
func (c *Client) SetConfig(cfg TransportConfig) {
	c.manager.SetConfig(cfg)
}

// Config returns the active transport config.
func (c *Client) Config() TransportConfig {
	return c.manager.Config()
}

// OutstandingSyncBytes returns the bytes in flight via keepalive.
func (c *Client) OutstandingSyncBytes() int64 {
	return c.manager.OutstandingSyncBytes()
}

// Start initializes registered plugins. If one fails, the plugins already
// started are shut down and the error is returned.
func (c *Client) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return errors.New("telsend: client closed")
	}
	pcfg := PluginConfig{
		Transport:  c.manager,
		Logger:     c.logger,
		ConfigPath: c.config.ConfigPath,
	}
	for _, p := range c.opts.plugins {
		if err := p.Initialize(ctx, pcfg); err != nil {
			c.shutdownPlugins(ctx)
			return fmt.Errorf("initialize plugin %s: %w", p.Name(), err)
		}
		c.started = append(c.started, p)
	}
	return nil
}

// Close shuts plugins down in reverse order and drains the beacon queue.
func (c *Client) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	err := c.shutdownPlugins(ctx)
	if c.queue != nil {
		if qerr := c.queue.Close(ctx); qerr != nil {
			err = errors.Join(err, fmt.Errorf("drain beacon queue: %w", qerr))
		}
	}
	return err
}

func (c *Client) shutdownPlugins(ctx context.Context) error {
	var errs []error
	for i := len(c.started) - 1; i >= 0; i-- {
		p := c.started[i]
		if err := p.Shutdown(ctx); err != nil {
			c.logger.Warn("plugin shutdown failed", ports.String("plugin", p.Name()), ports.Err(err))
			errs = append(errs, err)
		}
	}
	c.started = nil
	return errors.Join(errs...)
}
