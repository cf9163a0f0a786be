package app

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/bft-labs/telsend/internal/domain"
	"github.com/bft-labs/telsend/internal/ports"
)

const legacyContentType = "text/plain"

// LegacySender is the cross-domain fallback for hosts without native
// cross-origin xhr. It only reaches endpoints on the page's own scheme,
// carries no custom headers and has no timeout of its own.
type LegacySender struct {
	client     ports.HTTPClient
	pageScheme string
	logger     ports.Logger
}

// NewLegacySender creates a legacy sender for a page served over pageScheme
// ("http" or "https"). A nil client means the host has no such primitive.
func NewLegacySender(client ports.HTTPClient, pageScheme string, logger ports.Logger) *LegacySender {
	return &LegacySender{
		client:     client,
		pageScheme: strings.TrimSuffix(strings.ToLower(pageScheme), ":"),
		logger:     logger,
	}
}

func (l *LegacySender) Transport() domain.Transport { return domain.TransportXDomain }

func (l *LegacySender) Available(sync bool) bool { return l.client != nil }

func (l *LegacySender) SupportsFuture() bool { return false }

func (l *LegacySender) Send(ctx context.Context, req *sendRequest) {
	if !requireEndpoint(req) {
		return
	}
	u, err := url.Parse(req.payload.URL)
	if err != nil {
		req.done.finish(failureOutcome(fmt.Errorf("%w: parse endpoint: %w", domain.ErrNetworkFailure, err)))
		return
	}
	if !strings.EqualFold(u.Scheme, l.pageScheme) {
		req.log.Warn("cannot send cross-scheme with legacy transport",
			ports.String("endpoint_scheme", u.Scheme),
			ports.String("page_scheme", l.pageScheme),
		)
		req.done.finish(failureOutcome(fmt.Errorf("%w: endpoint %q, page %q", domain.ErrProtocolMismatch, u.Scheme, l.pageScheme)))
		return
	}
	run(req.mode, func() { l.do(ctx, req) })
}

func (l *LegacySender) do(ctx context.Context, req *sendRequest) {
	ctx = ports.WithoutInstrumentation(ctx)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.payload.URL, bytes.NewReader(req.payload.Data))
	if err != nil {
		req.done.finish(failureOutcome(fmt.Errorf("%w: xdomain create request: %w", domain.ErrNetworkFailure, err)))
		return
	}
	httpReq.Header.Set("Content-Type", legacyContentType)

	resp, err := l.client.Do(httpReq)
	if err != nil {
		req.log.Warn("xdomain request failed", ports.String("url", req.payload.URL), ports.Err(err))
		req.done.finish(failureOutcome(fmt.Errorf("%w: xdomain post %s: %w", domain.ErrNetworkFailure, req.payload.URL, err)))
		return
	}
	body, err := readBody(resp)
	if err != nil {
		req.done.finish(failureOutcome(fmt.Errorf("%w: xdomain post %s: %w", domain.ErrNetworkFailure, req.payload.URL, err)))
		return
	}
	// The primitive exposes no status: only success or error.
	if !domain.Successful(resp.StatusCode) {
		req.done.finish(failureOutcome(fmt.Errorf("%w: xdomain post %s: server returned %d", domain.ErrNetworkFailure, req.payload.URL, resp.StatusCode)))
		return
	}
	req.done.finish(responseOutcome(domain.StatusOK, nil, body))
}
