package domain

import (
	"fmt"
	"strings"
)

// Transport identifies a delivery mechanism.
type Transport int

const (
	TransportUnknown Transport = iota
	TransportBeacon
	TransportFetch
	TransportXhr
	TransportXDomain
)

// String returns the lower-case transport name.
func (t Transport) String() string {
	switch t {
	case TransportBeacon:
		return "beacon"
	case TransportFetch:
		return "fetch"
	case TransportXhr:
		return "xhr"
	case TransportXDomain:
		return "xdomain"
	default:
		return "unknown"
	}
}

// ParseTransport converts a transport name to a Transport.
func ParseTransport(name string) (Transport, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "beacon":
		return TransportBeacon, nil
	case "fetch":
		return TransportFetch, nil
	case "xhr":
		return TransportXhr, nil
	case "xdomain", "xdr":
		return TransportXDomain, nil
	default:
		return TransportUnknown, fmt.Errorf("unknown transport %q", name)
	}
}

// ParseTransports converts a list of names, preserving order.
func ParseTransports(names []string) ([]Transport, error) {
	out := make([]Transport, 0, len(names))
	for _, n := range names {
		t, err := ParseTransport(n)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// DefaultTransports is the preference order used when none is configured.
var DefaultTransports = []Transport{TransportFetch, TransportXhr, TransportBeacon}

// SendMode controls whether a send may block the caller and whether it must
// complete independently of further execution.
type SendMode int

const (
	// ModeAsync returns immediately; completion is reported later.
	ModeAsync SendMode = iota

	// ModeSync blocks until the outcome is known (xhr) or uses a keepalive
	// request (fetch).
	ModeSync

	// ModeUnload is ModeSync during teardown: keepalive fetches that have
	// not settled when control returns are reported as successful.
	ModeUnload
)

// RequiresSync reports whether the mode needs synchronous support.
func (m SendMode) RequiresSync() bool {
	return m != ModeAsync
}

// String returns the mode name.
func (m SendMode) String() string {
	switch m {
	case ModeAsync:
		return "async"
	case ModeSync:
		return "sync"
	case ModeUnload:
		return "unload"
	default:
		return "unknown"
	}
}

// ParseSendMode converts a mode name to a SendMode.
func ParseSendMode(name string) (SendMode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "async":
		return ModeAsync, nil
	case "sync":
		return ModeSync, nil
	case "unload":
		return ModeUnload, nil
	default:
		return ModeAsync, fmt.Errorf("unknown send mode %q", name)
	}
}
