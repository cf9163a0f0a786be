package telsend

import (
	"time"

	"github.com/bft-labs/telsend/internal/ports"
)

// SendEvent describes one completed logical send.
type SendEvent struct {
	SendID    string
	Transport Transport
	URL       string
	Status    int
	Bytes     int
	Duration  time.Duration
	Fallback  bool
	Err       error
}

// EventHandler receives send notifications.
type EventHandler interface {
	OnSendComplete(event SendEvent)
}

// eventObserver adapts EventHandler to ports.SendObserver.
type eventObserver struct {
	handler EventHandler
}

func (e eventObserver) OnSendComplete(r ports.SendResult) {
	e.handler.OnSendComplete(SendEvent{
		SendID:    r.SendID,
		Transport: r.Transport,
		URL:       r.URL,
		Status:    r.Status,
		Bytes:     r.Bytes,
		Duration:  r.Duration,
		Fallback:  r.Fallback,
		Err:       r.Err,
	})
}

func (eventObserver) OnOutstandingSyncBytes(int64) {}

// observers fans notifications out to several observers.
type observers []ports.SendObserver

func (o observers) OnSendComplete(r ports.SendResult) {
	for _, obs := range o {
		obs.OnSendComplete(r)
	}
}

func (o observers) OnOutstandingSyncBytes(n int64) {
	for _, obs := range o {
		obs.OnOutstandingSyncBytes(n)
	}
}
