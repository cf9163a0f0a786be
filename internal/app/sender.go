package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/bft-labs/telsend/internal/domain"
	"github.com/bft-labs/telsend/internal/ports"
)

// Sender is one transport bound to the host primitive it drives.
type Sender interface {
	// Transport identifies the delivery mechanism.
	Transport() domain.Transport

	// Available reports whether the host supports this transport, and
	// synchronous delivery with it when sync is true.
	Available(sync bool) bool

	// SupportsFuture reports whether async sends can settle a Future.
	SupportsFuture() bool

	// Send transmits req and reports its terminal outcome through req.done.
	// Synchronous modes return after completion unless the transport's
	// contract says otherwise.
	Send(ctx context.Context, req *sendRequest)
}

// sendRequest carries one logical send through a sender.
type sendRequest struct {
	ctx     context.Context
	payload domain.Payload
	mode    domain.SendMode
	cfg     domain.TransportConfig
	done    *completion
	log     ports.Logger
}

// requireEndpoint completes req with ErrMissingEndpoint when it has no URL.
func requireEndpoint(req *sendRequest) bool {
	if req.payload.URL != "" {
		return true
	}
	req.log.Warn("payload has no endpoint url")
	req.done.finish(failureOutcome(domain.ErrMissingEndpoint))
	return false
}

// run executes fn on the calling goroutine for synchronous modes and on a
// new goroutine otherwise.
func run(mode domain.SendMode, fn func()) {
	if mode.RequiresSync() {
		fn()
		return
	}
	go fn()
}

// responseHeaders flattens h with lower-cased names.
func responseHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[strings.ToLower(k)] = strings.Join(v, ", ")
	}
	return out
}

// readBody reads and closes resp.Body.
func readBody(resp *http.Response) (string, error) {
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return string(b), fmt.Errorf("read response: %w", err)
	}
	return string(b), nil
}

// attachCredentials copies the jar's cookies for the request URL onto req.
func attachCredentials(req *http.Request, jar http.CookieJar, cfg domain.TransportConfig) {
	if jar == nil || !cfg.SendCredentials() {
		return
	}
	for _, c := range jar.Cookies(req.URL) {
		req.AddCookie(c)
	}
}
