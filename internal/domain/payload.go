package domain

import "time"

// Payload is a prepared telemetry body ready for delivery.
// The transport layer never inspects or modifies Data.
type Payload struct {
	// URL is the collector endpoint. Required for any network attempt.
	URL string

	// Data is the serialized body (UTF-8 JSON text or pre-serialized bytes).
	Data []byte

	// Headers are caller-supplied request headers. Transports that cannot
	// carry headers (beacon, xdomain) drop them.
	Headers map[string]string

	// Timeout bounds the request for transports with native timeout support.
	// Zero means no application-level timeout.
	Timeout time.Duration

	// DisableSyncFallback makes the beacon fallback use an async xhr
	// instead of a blocking one.
	DisableSyncFallback bool

	// DisableKeepAlive sends a sync fetch as an ordinary blocking request
	// instead of a keepalive one.
	DisableKeepAlive bool
}

// Size returns the body length in bytes.
func (p Payload) Size() int {
	return len(p.Data)
}

// OnComplete receives the terminal outcome of one logical send.
// headers may be empty; body is empty when the transport yields no response.
type OnComplete func(status int, headers map[string]string, body string)

// Successful reports whether status is a 2xx or 3xx HTTP status.
func Successful(status int) bool {
	return status >= 200 && status < 400
}
