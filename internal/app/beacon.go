package app

import (
	"context"

	"github.com/bft-labs/telsend/internal/domain"
	"github.com/bft-labs/telsend/internal/ports"
)

// beaconContentType is CORS-safelisted so the host never preflights a beacon.
const beaconContentType = "text/plain;charset=UTF-8"

// BeaconSender implements fire-and-forget delivery. An accepted payload is
// reported as 200 with an empty body; a rejected one is handed to the
// FallbackCoordinator.
type BeaconSender struct {
	queue    ports.BeaconQueue
	fallback *FallbackCoordinator
	logger   ports.Logger
}

// NewBeaconSender creates a beacon sender. A nil queue means the host has no
// beacon support.
func NewBeaconSender(queue ports.BeaconQueue, fallback *FallbackCoordinator, logger ports.Logger) *BeaconSender {
	return &BeaconSender{queue: queue, fallback: fallback, logger: logger}
}

func (b *BeaconSender) Transport() domain.Transport { return domain.TransportBeacon }

// Available reports beacon support; a beacon is usable at unload by nature.
func (b *BeaconSender) Available(sync bool) bool { return b.queue != nil }

func (b *BeaconSender) SupportsFuture() bool { return false }

func (b *BeaconSender) Send(ctx context.Context, req *sendRequest) {
	if !requireEndpoint(req) {
		return
	}
	if len(req.payload.Headers) > 0 {
		req.log.Debug("beacon cannot carry headers, dropping them", ports.Int("headers", len(req.payload.Headers)))
	}

	if b.queue.Enqueue(req.payload.URL, req.payload.Data, beaconContentType) {
		req.done.finish(responseOutcome(domain.StatusOK, nil, ""))
		return
	}

	if b.fallback == nil {
		req.done.finish(failureOutcome(domain.ErrBeaconQueueRejected))
		return
	}
	b.fallback.onQueueRejected(req)
}
