package app

import (
	"errors"
	"sync"
	"time"

	"github.com/bft-labs/telsend/internal/domain"
	"github.com/bft-labs/telsend/internal/ports"
)

// State represents the delivery state of one payload.
type State int

const (
	StateIdle State = iota
	StateSending
	StateFallbackSending
	StateCompleted
	StateTimedOut
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateSending:
		return "Sending"
	case StateFallbackSending:
		return "FallbackSending"
	case StateCompleted:
		return "Completed"
	case StateTimedOut:
		return "TimedOut"
	default:
		return "Unknown"
	}
}

// terminal reports whether no further transition is possible.
func (s State) terminal() bool {
	return s == StateCompleted || s == StateTimedOut
}

// outcomeKind classifies how an attempt ended.
type outcomeKind int

const (
	// outcomeResponse is a completed exchange with an HTTP status.
	outcomeResponse outcomeKind = iota
	// outcomeTimeout is a transport-native timeout.
	outcomeTimeout
	// outcomeFailure is a network or local failure; futures reject.
	outcomeFailure
)

// outcome is the normalized result of one attempt.
type outcome struct {
	kind    outcomeKind
	status  int
	headers map[string]string
	body    string
	err     error
}

func responseOutcome(status int, headers map[string]string, body string) outcome {
	return outcome{kind: outcomeResponse, status: status, headers: headers, body: body}
}

func timeoutOutcome(err error) outcome {
	return outcome{kind: outcomeTimeout, status: domain.StatusTimeout, body: err.Error(), err: err}
}

func failureOutcome(err error) outcome {
	return outcome{kind: outcomeFailure, status: domain.StatusNetworkFailure, body: err.Error(), err: err}
}

// completion normalizes every sender's outcome into one callback invocation
// and, when present, one future settlement. Attempts to complete a second
// time are dropped.
type completion struct {
	mu        sync.Mutex
	state     State
	fallback  bool
	transport domain.Transport

	sendID     string
	url        string
	size       int
	started    time.Time
	onComplete domain.OnComplete
	future     *Future
	observer   ports.SendObserver
	logger     ports.Logger
}

func newCompletion(sendID string, payload domain.Payload, onComplete domain.OnComplete, observer ports.SendObserver, logger ports.Logger) *completion {
	if onComplete == nil {
		onComplete = func(int, map[string]string, string) {}
	}
	return &completion{
		state:      StateIdle,
		sendID:     sendID,
		url:        payload.URL,
		size:       payload.Size(),
		started:    time.Now(),
		onComplete: onComplete,
		observer:   observer,
		logger:     logger,
	}
}

// State returns the current delivery state.
func (c *completion) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// begin moves Idle → Sending for the given transport.
func (c *completion) begin(t domain.Transport) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateIdle {
		return false
	}
	c.state = StateSending
	c.transport = t
	return true
}

// beginFallback moves Sending → FallbackSending. It succeeds at most once per
// payload, so fallbacks never chain.
func (c *completion) beginFallback(t domain.Transport) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateSending || c.fallback {
		return false
	}
	c.state = StateFallbackSending
	c.fallback = true
	c.transport = t
	return true
}

// finish records a terminal outcome. It returns false if the payload already
// completed, in which case nothing is reported.
func (c *completion) finish(o outcome) bool {
	c.mu.Lock()
	if c.state.terminal() {
		c.mu.Unlock()
		return false
	}
	if o.kind == outcomeTimeout {
		c.state = StateTimedOut
	} else {
		c.state = StateCompleted
	}
	transport := c.transport
	fallback := c.fallback
	c.mu.Unlock()

	headers := o.headers
	if headers == nil {
		headers = map[string]string{}
	}
	c.onComplete(o.status, headers, o.body)

	if c.future != nil {
		switch o.kind {
		case outcomeResponse:
			c.future.resolve(domain.Successful(o.status))
		case outcomeTimeout:
			c.future.resolve(false)
		default:
			c.future.reject(o.err)
		}
	}

	c.logger.Debug("send complete",
		ports.String("transport", transport.String()),
		ports.Int("status", o.status),
		ports.Bool("fallback", fallback),
	)

	if c.observer != nil {
		c.observer.OnSendComplete(ports.SendResult{
			SendID:    c.sendID,
			Transport: transport,
			URL:       c.url,
			Status:    o.status,
			Bytes:     c.size,
			Duration:  time.Since(c.started),
			Fallback:  fallback,
			Err:       o.err,
		})
	}
	return true
}

// RetryHook replaces the built-in xhr fallback after a beacon queuing
// failure. It receives the original payload and a callback that completes
// the logical send; it must invoke the callback exactly once.
type RetryHook func(payload domain.Payload, onComplete domain.OnComplete)

// FallbackCoordinator performs the single bounded fallback after a primary
// transport failed to queue a request.
type FallbackCoordinator struct {
	retry  RetryHook
	xhr    Sender
	logger ports.Logger
}

// NewFallbackCoordinator creates a coordinator. xhr may be nil when the host
// has no xhr support.
func NewFallbackCoordinator(retry RetryHook, xhr Sender, logger ports.Logger) *FallbackCoordinator {
	return &FallbackCoordinator{retry: retry, xhr: xhr, logger: logger}
}

// onQueueRejected handles a queuing failure of req's primary attempt. The
// primary failure signal is suppressed in favour of the fallback's outcome.
func (f *FallbackCoordinator) onQueueRejected(req *sendRequest) {
	fallbackTransport := domain.TransportXhr
	if f.retry != nil {
		fallbackTransport = domain.TransportBeacon
	}
	if !req.done.beginFallback(fallbackTransport) {
		req.done.finish(failureOutcome(domain.ErrBeaconQueueRejected))
		return
	}

	if f.retry != nil {
		f.retry(req.payload, func(status int, headers map[string]string, body string) {
			req.done.finish(responseOutcome(status, headers, body))
		})
		return
	}

	if f.xhr == nil || req.cfg.DisableXhr || !f.xhr.Available(true) {
		req.log.Warn("beacon rejected and no xhr fallback available")
		req.done.finish(failureOutcome(errors.Join(domain.ErrBeaconQueueRejected, domain.ErrTransportUnavailable)))
		return
	}

	mode := domain.ModeSync
	if req.payload.DisableSyncFallback {
		mode = domain.ModeAsync
	}
	req.log.Warn("beacon rejected payload, falling back to xhr",
		ports.String("mode", mode.String()),
		ports.Int("bytes", req.payload.Size()),
	)
	fallback := *req
	fallback.mode = mode
	f.xhr.Send(req.ctx, &fallback)
}
