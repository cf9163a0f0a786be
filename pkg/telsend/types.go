package telsend

import (
	"github.com/bft-labs/telsend/internal/app"
	"github.com/bft-labs/telsend/internal/domain"
)

// Re-exported domain types.
type (
	// Payload is a prepared telemetry body and its destination.
	Payload = domain.Payload

	// OnComplete receives the terminal outcome of one logical send.
	OnComplete = domain.OnComplete

	// TransportConfig is the switch snapshot applied with SetConfig.
	TransportConfig = domain.TransportConfig

	// Transport identifies a delivery mechanism.
	Transport = domain.Transport

	// SendMode selects async, sync or unload delivery.
	SendMode = domain.SendMode

	// Future settles when an async send with completion promises completes.
	Future = app.Future

	// RetryHook replaces the xhr fallback after a beacon queuing failure.
	RetryHook = app.RetryHook
)

const (
	TransportUnknown = domain.TransportUnknown
	TransportBeacon  = domain.TransportBeacon
	TransportFetch   = domain.TransportFetch
	TransportXhr     = domain.TransportXhr
	TransportXDomain = domain.TransportXDomain

	ModeAsync  = domain.ModeAsync
	ModeSync   = domain.ModeSync
	ModeUnload = domain.ModeUnload

	StatusOK             = domain.StatusOK
	StatusNetworkFailure = domain.StatusNetworkFailure
	StatusTimeout        = domain.StatusTimeout
)

// Errors returned by Send; check with errors.Is.
var (
	ErrMissingEndpoint      = domain.ErrMissingEndpoint
	ErrTransportUnavailable = domain.ErrTransportUnavailable
	ErrNetworkFailure       = domain.ErrNetworkFailure
	ErrTimeout              = domain.ErrTimeout
	ErrProtocolMismatch     = domain.ErrProtocolMismatch
	ErrBeaconQueueRejected  = domain.ErrBeaconQueueRejected
	ErrNotInitialized       = domain.ErrNotInitialized
	ErrInvalidConfig        = domain.ErrInvalidConfig
)

// ParseTransports converts transport names ("beacon", "fetch", "xhr",
// "xdomain") to Transports, preserving order.
func ParseTransports(names []string) ([]Transport, error) {
	return domain.ParseTransports(names)
}

// ParseSendMode converts "async", "sync" or "unload" to a SendMode.
func ParseSendMode(name string) (SendMode, error) {
	return domain.ParseSendMode(name)
}
