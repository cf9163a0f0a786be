package http

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sync"

	"github.com/bft-labs/telsend/internal/ports"
)

// Default beacon queue limits, matching the aggregate quota hosts apply to
// queued beacons.
const (
	DefaultBeaconQueueBytes    = 64 * 1024
	DefaultBeaconQueueCapacity = 64
)

// BeaconQueueConfig bounds a BeaconQueue.
type BeaconQueueConfig struct {
	// MaxQueuedBytes is the body byte budget across queued and in-flight
	// beacons.
	MaxQueuedBytes int

	// Capacity is the maximum number of queued beacons.
	Capacity int
}

type beacon struct {
	url         string
	body        []byte
	contentType string
}

// BeaconQueue implements ports.BeaconQueue over net/http. Accepted beacons
// are posted by a background worker; their responses are discarded.
type BeaconQueue struct {
	client ports.HTTPClient
	logger ports.Logger
	limit  int

	mu      sync.Mutex
	pending int
	closed  bool
	queue   chan beacon
	wg      sync.WaitGroup
}

// NewBeaconQueue creates a queue and starts its worker.
func NewBeaconQueue(client ports.HTTPClient, cfg BeaconQueueConfig, logger ports.Logger) *BeaconQueue {
	if cfg.MaxQueuedBytes <= 0 {
		cfg.MaxQueuedBytes = DefaultBeaconQueueBytes
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultBeaconQueueCapacity
	}
	q := &BeaconQueue{
		client: client,
		logger: logger,
		limit:  cfg.MaxQueuedBytes,
		queue:  make(chan beacon, cfg.Capacity),
	}
	q.wg.Add(1)
	go q.run()
	return q
}

// Enqueue accepts body for eventual delivery. It returns false when the
// queue is closed, full, or the byte budget would be exceeded.
func (q *BeaconQueue) Enqueue(url string, body []byte, contentType string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed || q.pending+len(body) > q.limit {
		return false
	}
	b := beacon{url: url, body: append([]byte(nil), body...), contentType: contentType}
	select {
	case q.queue <- b:
		q.pending += len(body)
		return true
	default:
		return false
	}
}

// Pending returns the bytes queued or in flight.
func (q *BeaconQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pending
}

// Close stops accepting beacons and waits for queued ones to be delivered or
// for ctx to end.
func (q *BeaconQueue) Close(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.queue)
	}
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *BeaconQueue) run() {
	defer q.wg.Done()
	for b := range q.queue {
		q.deliver(b)
		q.mu.Lock()
		q.pending -= len(b.body)
		q.mu.Unlock()
	}
}

func (q *BeaconQueue) deliver(b beacon) {
	ctx := ports.WithoutInstrumentation(context.Background())
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.url, bytes.NewReader(b.body))
	if err != nil {
		q.logger.Debug("beacon dropped", ports.String("url", b.url), ports.Err(err))
		return
	}
	req.Header.Set("Content-Type", b.contentType)

	resp, err := q.client.Do(req)
	if err != nil {
		q.logger.Debug("beacon delivery failed", ports.String("url", b.url), ports.Err(err))
		return
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
