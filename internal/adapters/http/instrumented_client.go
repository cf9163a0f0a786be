package http

import (
	"net/http"
	"time"

	"github.com/bft-labs/telsend/internal/ports"
)

// RequestObserver receives one call per instrumented request. status is 0
// when err is non-nil.
type RequestObserver func(req *http.Request, status int, elapsed time.Duration, err error)

// InstrumentedClient reports requests to an observer, except those whose
// context was tagged with ports.WithoutInstrumentation.
type InstrumentedClient struct {
	next     ports.HTTPClient
	observer RequestObserver
}

// NewInstrumentedClient wraps next.
func NewInstrumentedClient(next ports.HTTPClient, observer RequestObserver) *InstrumentedClient {
	return &InstrumentedClient{next: next, observer: observer}
}

// Do sends req through the wrapped client.
func (c *InstrumentedClient) Do(req *http.Request) (*http.Response, error) {
	if c.observer == nil || ports.InstrumentationDisabled(req.Context()) {
		return c.next.Do(req)
	}
	start := time.Now()
	resp, err := c.next.Do(req)
	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	c.observer(req, status, time.Since(start), err)
	return resp, err
}
