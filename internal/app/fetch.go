package app

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/bft-labs/telsend/internal/domain"
	"github.com/bft-labs/telsend/internal/ports"
)

// FetchSender implements modern request/response delivery. Sync sends use a
// keepalive request, accounted for in the shared SyncPayloadTracker.
type FetchSender struct {
	client      ports.HTTPClient
	jar         http.CookieJar
	keepAlive   bool
	tracker     *SyncPayloadTracker
	quota       int64
	unloadGrace time.Duration
	logger      ports.Logger
}

// FetchConfig holds the host capabilities and limits of a FetchSender.
type FetchConfig struct {
	// KeepAlive reports whether the host supports keepalive requests.
	KeepAlive bool

	// Quota is the aggregate keepalive body limit. Zero uses
	// DefaultKeepAliveQuota; negative disables the limit.
	Quota int64

	// UnloadGrace is how long an unload send waits for a response before
	// completing optimistically.
	UnloadGrace time.Duration
}

// NewFetchSender creates a fetch sender. A nil client means the host has no
// fetch.
func NewFetchSender(client ports.HTTPClient, jar http.CookieJar, tracker *SyncPayloadTracker, cfg FetchConfig, logger ports.Logger) *FetchSender {
	if cfg.Quota == 0 {
		cfg.Quota = DefaultKeepAliveQuota
	}
	return &FetchSender{
		client:      client,
		jar:         jar,
		keepAlive:   cfg.KeepAlive,
		tracker:     tracker,
		quota:       cfg.Quota,
		unloadGrace: cfg.UnloadGrace,
		logger:      logger,
	}
}

func (f *FetchSender) Transport() domain.Transport { return domain.TransportFetch }

func (f *FetchSender) Available(sync bool) bool {
	return f.client != nil && (!sync || f.keepAlive)
}

func (f *FetchSender) SupportsFuture() bool { return true }

// Send issues the request. Async sends return immediately. Sync sends wait
// for the outcome or for ctx to end; unload sends return once the grace
// period elapses and report success if nothing was observed by then.
func (f *FetchSender) Send(ctx context.Context, req *sendRequest) {
	if !requireEndpoint(req) {
		return
	}
	if !req.mode.RequiresSync() {
		go f.do(ctx, req)
		return
	}

	size := int64(req.payload.Size())
	keepAlive := f.keepAlive && !req.payload.DisableKeepAlive && !req.cfg.DisableFetchKeepAlive
	if keepAlive && !f.tracker.TryAdd(size, f.quota) {
		req.log.Debug("keepalive quota exhausted, sending without keepalive",
			ports.Int64("outstanding", f.tracker.Outstanding()),
			ports.Int64("bytes", size),
		)
		keepAlive = false
	}
	if !keepAlive {
		f.do(ctx, req)
		return
	}

	// A keepalive request outlives the caller.
	caller := ctx
	ctx = context.WithoutCancel(ctx)
	settled := make(chan struct{})
	go func() {
		defer close(settled)
		defer f.tracker.Release(size)
		defer func() {
			if r := recover(); r != nil {
				req.done.finish(failureOutcome(fmt.Errorf("%w: fetch panicked: %v", domain.ErrNetworkFailure, r)))
			}
		}()
		f.do(ctx, req)
	}()

	if req.mode != domain.ModeUnload {
		// The caller may stop waiting; the request still completes and
		// releases its bytes in the background.
		select {
		case <-settled:
		case <-caller.Done():
			req.log.Debug("caller stopped waiting for keepalive send", ports.Err(caller.Err()))
		}
		return
	}
	if f.unloadGrace > 0 {
		timer := time.NewTimer(f.unloadGrace)
		defer timer.Stop()
		select {
		case <-settled:
			return
		case <-timer.C:
		}
	} else {
		select {
		case <-settled:
			return
		default:
		}
	}
	if req.done.finish(responseOutcome(domain.StatusOK, nil, "")) {
		req.log.Debug("unload send unsettled, assuming success", ports.String("url", req.payload.URL))
	}
}

func (f *FetchSender) do(ctx context.Context, req *sendRequest) {
	ctx = ports.WithoutInstrumentation(ctx)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.payload.URL, bytes.NewReader(req.payload.Data))
	if err != nil {
		req.done.finish(failureOutcome(fmt.Errorf("%w: fetch create request: %w", domain.ErrNetworkFailure, err)))
		return
	}
	httpReq.Header.Set("Content-Type", jsonContentType)
	for k, v := range req.payload.Headers {
		httpReq.Header.Set(k, v)
	}
	attachCredentials(httpReq, f.jar, req.cfg)

	resp, err := f.client.Do(httpReq)
	if err != nil {
		req.log.Warn("fetch request failed", ports.String("url", req.payload.URL), ports.Err(err))
		req.done.finish(failureOutcome(fmt.Errorf("%w: fetch post %s: %w", domain.ErrNetworkFailure, req.payload.URL, err)))
		return
	}
	body, err := readBody(resp)
	if err != nil {
		req.done.finish(failureOutcome(fmt.Errorf("%w: fetch post %s: %w", domain.ErrNetworkFailure, req.payload.URL, err)))
		return
	}
	if !domain.Successful(resp.StatusCode) {
		req.log.Debug("fetch returned unsuccessful status",
			ports.String("url", req.payload.URL),
			ports.Int("status", resp.StatusCode),
		)
	}
	req.done.finish(responseOutcome(resp.StatusCode, responseHeaders(resp.Header), body))
}
