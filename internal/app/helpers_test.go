package app

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/bft-labs/telsend/internal/domain"
	"github.com/bft-labs/telsend/pkg/log"
)

// call is one recorded completion callback invocation.
type call struct {
	status  int
	headers map[string]string
	body    string
}

// callbackRecorder records completion callback invocations.
type callbackRecorder struct {
	mu    sync.Mutex
	calls []call
	ch    chan call
}

func newRecorder() *callbackRecorder {
	return &callbackRecorder{ch: make(chan call, 16)}
}

func (r *callbackRecorder) OnComplete(status int, headers map[string]string, body string) {
	r.mu.Lock()
	r.calls = append(r.calls, call{status, headers, body})
	r.mu.Unlock()
	r.ch <- call{status, headers, body}
}

func (r *callbackRecorder) Calls() []call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]call{}, r.calls...)
}

// wait returns the next invocation or fails the test after a timeout.
func (r *callbackRecorder) wait(t *testing.T) call {
	t.Helper()
	select {
	case c := <-r.ch:
		return c
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for completion callback")
		return call{}
	}
}

// countingClient wraps an HTTPClient and records every request.
type countingClient struct {
	mu       sync.Mutex
	next     *http.Client
	err      error
	requests []*http.Request
}

func (c *countingClient) Do(req *http.Request) (*http.Response, error) {
	c.mu.Lock()
	c.requests = append(c.requests, req)
	c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	return c.next.Do(req)
}

func (c *countingClient) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.requests)
}

func (c *countingClient) Requests() []*http.Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*http.Request{}, c.requests...)
}

// fakeBeacon is a BeaconQueue with a fixed answer.
type fakeBeacon struct {
	mu     sync.Mutex
	accept bool
	urls   []string
	types  []string
}

func (b *fakeBeacon) Enqueue(url string, body []byte, contentType string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.urls = append(b.urls, url)
	b.types = append(b.types, contentType)
	return b.accept
}

func (b *fakeBeacon) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.urls)
}

// fullEnvironment returns a host with every primitive backed by client.
func fullEnvironment(client *countingClient, beacon *fakeBeacon) Environment {
	env := Environment{
		Client:         client,
		Fetch:          true,
		FetchKeepAlive: true,
		Xhr:            true,
		CrossOriginXhr: true,
		PageScheme:     "http",
	}
	if beacon != nil {
		env.Beacon = beacon
	}
	return env
}

func newTestManager(env Environment, opts ManagerOptions, cfg domain.TransportConfig, transports ...domain.Transport) *Manager {
	m := NewManager(env, log.NewNoopLogger(), opts)
	m.Initialize(cfg, transports)
	return m
}

func waitFuture(t *testing.T, f *Future) (bool, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	ok, err := f.Wait(ctx)
	if err == context.DeadlineExceeded {
		t.Fatal("timed out waiting for future")
	}
	return ok, err
}

// eventually polls cond until it holds or the test times out.
func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}
