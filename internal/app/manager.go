package app

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/bft-labs/telsend/internal/domain"
	"github.com/bft-labs/telsend/internal/ports"
)

// Environment describes the delivery primitives a host exposes.
type Environment struct {
	// Client backs fetch, xhr and xdomain requests.
	Client ports.HTTPClient

	// Beacon is the beacon primitive; nil when unsupported.
	Beacon ports.BeaconQueue

	// Jar supplies credentials for managed endpoints.
	Jar http.CookieJar

	Fetch          bool
	FetchKeepAlive bool
	Xhr            bool
	CrossOriginXhr bool
	XDomain        bool

	// PageScheme is the scheme of the hosting page, used by xdomain.
	PageScheme string
}

// ManagerOptions tunes a Manager.
type ManagerOptions struct {
	KeepAliveQuota int64
	UnloadGrace    time.Duration
	RetryHook      RetryHook
	Observer       ports.SendObserver
}

// senderSet is the immutable result of Initialize.
type senderSet struct {
	selector   *Selector
	transports []domain.Transport
}

// Manager is the entry point of the transport layer. It owns the config
// snapshot and the keepalive tracker of one instance.
type Manager struct {
	env     Environment
	opts    ManagerOptions
	logger  ports.Logger
	tracker *SyncPayloadTracker

	initMu sync.Mutex
	cfg    atomic.Pointer[domain.TransportConfig]
	set    atomic.Pointer[senderSet]
}

// NewManager creates an uninitialized manager for env.
func NewManager(env Environment, logger ports.Logger, opts ManagerOptions) *Manager {
	m := &Manager{env: env, opts: opts, logger: logger}
	var onChange func(int64)
	if opts.Observer != nil {
		onChange = opts.Observer.OnOutstandingSyncBytes
	}
	m.tracker = NewSyncPayloadTracker(onChange)
	m.cfg.Store(&domain.TransportConfig{})
	return m
}

// Initialize resolves the host's capabilities into senders and installs cfg.
// transports is the preference order; empty uses domain.DefaultTransports.
func (m *Manager) Initialize(cfg domain.TransportConfig, transports []domain.Transport) {
	m.initMu.Lock()
	defer m.initMu.Unlock()

	if len(transports) == 0 {
		transports = domain.DefaultTransports
	}
	order := append([]domain.Transport(nil), transports...)

	var xhr, fetch, legacy, beacon Sender
	if m.env.Client != nil && m.env.Xhr {
		xhr = NewXhrSender(m.env.Client, m.env.Jar, m.logger)
	}
	if m.env.Client != nil && m.env.Fetch {
		fetch = NewFetchSender(m.env.Client, m.env.Jar, m.tracker, FetchConfig{
			KeepAlive:   m.env.FetchKeepAlive,
			Quota:       m.opts.KeepAliveQuota,
			UnloadGrace: m.opts.UnloadGrace,
		}, m.logger)
	}
	if m.env.Client != nil && m.env.XDomain {
		legacy = NewLegacySender(m.env.Client, m.env.PageScheme, m.logger)
	}
	if m.env.Beacon != nil {
		var fallbackXhr Sender
		if xhr != nil && m.env.CrossOriginXhr {
			fallbackXhr = xhr
		}
		beacon = NewBeaconSender(m.env.Beacon, NewFallbackCoordinator(m.opts.RetryHook, fallbackXhr, m.logger), m.logger)
	}

	m.SetConfig(cfg)
	m.set.Store(&senderSet{
		selector: NewSelector(SelectorConfig{
			Beacon:         beacon,
			Fetch:          fetch,
			Xhr:            xhr,
			Legacy:         legacy,
			CrossOriginXhr: m.env.CrossOriginXhr,
		}),
		transports: order,
	})

	names := make([]string, len(order))
	for i, t := range order {
		names[i] = t.String()
	}
	m.logger.Info("transport manager initialized", ports.Any("transports", names))
}

// SetConfig atomically replaces the active config snapshot. Sends already in
// progress keep the snapshot they started with.
func (m *Manager) SetConfig(cfg domain.TransportConfig) {
	c := cfg
	m.cfg.Store(&c)
}

// Config returns a copy of the active config snapshot.
func (m *Manager) Config() domain.TransportConfig {
	return *m.cfg.Load()
}

// OutstandingSyncBytes returns the bytes currently in flight via keepalive.
func (m *Manager) OutstandingSyncBytes() int64 {
	return m.tracker.Outstanding()
}

// Send delivers payload with the first usable transport. onComplete is
// invoked exactly once, also when Send returns an error. A Future is
// returned for async sends when EnableCompletionPromise is set and the
// chosen transport supports it.
func (m *Manager) Send(ctx context.Context, payload domain.Payload, mode domain.SendMode, onComplete domain.OnComplete) (*Future, error) {
	sendID := uuid.NewString()
	log := m.logger.With(ports.String("send_id", sendID))
	done := newCompletion(sendID, payload, onComplete, m.opts.Observer, log)

	set := m.set.Load()
	if set == nil {
		done.finish(failureOutcome(domain.ErrNotInitialized))
		return nil, domain.ErrNotInitialized
	}
	if payload.URL == "" {
		log.Warn("payload has no endpoint url")
		done.finish(failureOutcome(domain.ErrMissingEndpoint))
		return nil, domain.ErrMissingEndpoint
	}

	cfg := m.Config()
	sender := set.selector.Select(set.transports, mode.RequiresSync(), cfg)
	if sender == nil {
		log.Warn("no transport available",
			ports.String("mode", mode.String()),
			ports.String("url", payload.URL),
		)
		done.finish(failureOutcome(domain.ErrTransportUnavailable))
		return nil, domain.ErrTransportUnavailable
	}

	var future *Future
	if cfg.EnableCompletionPromise && mode == domain.ModeAsync && sender.SupportsFuture() {
		future = newFuture()
		done.future = future
	}
	done.begin(sender.Transport())

	log.Debug("sending payload",
		ports.String("transport", sender.Transport().String()),
		ports.String("mode", mode.String()),
		ports.Int("bytes", payload.Size()),
	)
	sender.Send(ctx, &sendRequest{
		ctx:     ctx,
		payload: payload,
		mode:    mode,
		cfg:     cfg,
		done:    done,
		log:     log,
	})
	return future, nil
}
