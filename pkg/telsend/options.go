package telsend

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	httpAdapter "github.com/bft-labs/telsend/internal/adapters/http"
	"github.com/bft-labs/telsend/internal/ports"
	"github.com/bft-labs/telsend/pkg/log"
)

// HTTPClient is the interface for making HTTP requests.
// *http.Client satisfies this interface.
type HTTPClient = ports.HTTPClient

// Logger is the interface for structured logging.
type Logger = log.Logger

// RequestObserver receives requests made through the client that were not
// issued by a transport itself.
type RequestObserver = httpAdapter.RequestObserver

// Capabilities lists the delivery primitives the host exposes.
type Capabilities struct {
	Fetch          bool
	FetchKeepAlive bool
	Xhr            bool
	CrossOriginXhr bool
	XDomain        bool
	Beacon         bool

	// PageScheme is the scheme of the hosting page; xdomain only reaches
	// endpoints on the same scheme.
	PageScheme string
}

// DefaultCapabilities describes a host with every modern primitive.
func DefaultCapabilities() Capabilities {
	return Capabilities{
		Fetch:          true,
		FetchKeepAlive: true,
		Xhr:            true,
		CrossOriginXhr: true,
		Beacon:         true,
		PageScheme:     "https",
	}
}

// Option configures optional behavior of a Client.
type Option func(*options)

// options holds the optional configuration for a Client.
type options struct {
	httpClient      ports.HTTPClient
	jar             http.CookieJar
	logger          ports.Logger
	capabilities    Capabilities
	beacon          ports.BeaconQueue
	retryHook       RetryHook
	registerer      prometheus.Registerer
	eventHandler    EventHandler
	requestObserver RequestObserver
	plugins         []Plugin
}

// defaultOptions returns options with sensible defaults.
func defaultOptions(client *http.Client) options {
	return options{
		httpClient:   client,
		logger:       log.NewNoopLogger(),
		capabilities: DefaultCapabilities(),
	}
}

// WithHTTPClient sets the client backing fetch, xhr and xdomain requests.
// If not provided, a default client with the configured timeout is used.
func WithHTTPClient(client HTTPClient) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithCookieJar supplies credentials attached to managed endpoints.
func WithCookieJar(jar http.CookieJar) Option {
	return func(o *options) {
		o.jar = jar
	}
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithCapabilities overrides the host primitives.
func WithCapabilities(c Capabilities) Option {
	return func(o *options) {
		o.capabilities = c
	}
}

// WithBeaconQueue replaces the built-in beacon queue.
func WithBeaconQueue(q ports.BeaconQueue) Option {
	return func(o *options) {
		o.beacon = q
	}
}

// WithRetryHook registers a hook that takes over after a beacon queuing
// failure instead of the built-in xhr fallback.
func WithRetryHook(hook RetryHook) Option {
	return func(o *options) {
		o.retryHook = hook
	}
}

// WithMetrics registers Prometheus metrics on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = reg
	}
}

// WithEventHandler sets a handler notified after every send completes.
// Handlers are called synchronously from the completing goroutine.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}

// WithRequestObserver instruments the HTTP client. Requests issued by the
// transports are tagged and never reach the observer.
func WithRequestObserver(observer RequestObserver) Option {
	return func(o *options) {
		o.requestObserver = observer
	}
}

// WithPlugin registers a plugin to be initialized by Start.
// Plugins are initialized in registration order and shutdown in reverse order.
func WithPlugin(plugin Plugin) Option {
	return func(o *options) {
		o.plugins = append(o.plugins, plugin)
	}
}
