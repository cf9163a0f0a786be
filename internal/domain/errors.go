package domain

import "errors"

// Domain errors represent the failure taxonomy of the transport layer.
// These errors are returned by the public API and can be checked with errors.Is.
var (
	// ErrMissingEndpoint is returned when a payload has no URL.
	// No network attempt is made.
	ErrMissingEndpoint = errors.New("telsend: missing endpoint url")

	// ErrTransportUnavailable is returned when no configured transport
	// exists in the host and is enabled.
	ErrTransportUnavailable = errors.New("telsend: no transport available")

	// ErrNetworkFailure wraps connection-level failures.
	ErrNetworkFailure = errors.New("telsend: network failure")

	// ErrTimeout is returned when a request exceeded its timeout.
	ErrTimeout = errors.New("telsend: request timed out")

	// ErrProtocolMismatch is returned by the legacy transport when the
	// endpoint scheme differs from the page scheme.
	ErrProtocolMismatch = errors.New("telsend: endpoint scheme does not match page scheme")

	// ErrBeaconQueueRejected is returned when the beacon primitive refused
	// to queue a payload.
	ErrBeaconQueueRejected = errors.New("telsend: beacon queue rejected payload")

	// ErrNotInitialized is returned when Send is called before Initialize.
	ErrNotInitialized = errors.New("telsend: manager not initialized")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("telsend: invalid configuration")
)

// Status codes reported to completion callbacks for outcomes that carry no
// HTTP status of their own.
const (
	StatusOK             = 200
	StatusNetworkFailure = 400
	StatusTimeout        = 500
)
