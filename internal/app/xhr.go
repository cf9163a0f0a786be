package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/bft-labs/telsend/internal/domain"
	"github.com/bft-labs/telsend/internal/ports"
)

const jsonContentType = "application/json"

// XhrSender implements classic request/response delivery. Sync sends block
// the caller until the exchange completes.
type XhrSender struct {
	client ports.HTTPClient
	jar    http.CookieJar
	logger ports.Logger
}

// NewXhrSender creates an xhr sender. A nil client means the host has no xhr.
func NewXhrSender(client ports.HTTPClient, jar http.CookieJar, logger ports.Logger) *XhrSender {
	return &XhrSender{client: client, jar: jar, logger: logger}
}

func (x *XhrSender) Transport() domain.Transport { return domain.TransportXhr }

func (x *XhrSender) Available(sync bool) bool { return x.client != nil }

func (x *XhrSender) SupportsFuture() bool { return true }

// Send posts the payload and completes with the response status and text,
// 400 on network failure or 500 on timeout.
func (x *XhrSender) Send(ctx context.Context, req *sendRequest) {
	if !requireEndpoint(req) {
		return
	}
	run(req.mode, func() { x.do(ctx, req) })
}

func (x *XhrSender) do(ctx context.Context, req *sendRequest) {
	if req.payload.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.payload.Timeout)
		defer cancel()
	}
	ctx = ports.WithoutInstrumentation(ctx)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.payload.URL, bytes.NewReader(req.payload.Data))
	if err != nil {
		req.done.finish(failureOutcome(fmt.Errorf("%w: xhr create request: %w", domain.ErrNetworkFailure, err)))
		return
	}
	httpReq.Header.Set("Content-Type", jsonContentType)
	for k, v := range req.payload.Headers {
		httpReq.Header.Set(k, v)
	}
	attachCredentials(httpReq, x.jar, req.cfg)

	resp, err := x.client.Do(httpReq)
	if err != nil {
		x.fail(req, err)
		return
	}
	body, err := readBody(resp)
	if err != nil {
		x.fail(req, err)
		return
	}
	req.done.finish(responseOutcome(resp.StatusCode, responseHeaders(resp.Header), body))
}

func (x *XhrSender) fail(req *sendRequest, err error) {
	if isTimeout(err) {
		req.log.Warn("xhr request timed out",
			ports.String("url", req.payload.URL),
			ports.Duration("timeout", req.payload.Timeout),
		)
		req.done.finish(timeoutOutcome(fmt.Errorf("%w: xhr post %s: %w", domain.ErrTimeout, req.payload.URL, err)))
		return
	}
	req.log.Warn("xhr request failed", ports.String("url", req.payload.URL), ports.Err(err))
	req.done.finish(failureOutcome(fmt.Errorf("%w: xhr post %s: %w", domain.ErrNetworkFailure, req.payload.URL, err)))
}

// isTimeout reports whether err came from a deadline rather than a
// connection failure.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
