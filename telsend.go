// Package telsend sends telemetry payloads over the first transport the host
// supports.
//
// Example usage:
//
//	status, err := telsend.Post(ctx, telsend.Payload{
//	    URL:  "https://collector.example.com/v1/track",
//	    Data: body,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Long-lived callers should create a Client with New and reuse it.
package telsend

import (
	"context"
	"errors"
	"fmt"

	"github.com/bft-labs/telsend/pkg/telsend"
)

// Config controls a Client.
type Config = telsend.Config

// Client sends payloads through the first usable transport.
type Client = telsend.Client

// Payload is a prepared telemetry body and its destination.
type Payload = telsend.Payload

// Option configures optional behavior of a Client.
type Option = telsend.Option

// New creates and initializes a Client.
func New(cfg Config, opts ...Option) (*Client, error) {
	return telsend.New(cfg, opts...)
}

// Post sends payload synchronously with a default client and returns the
// completion status. The client is closed before Post returns; a failure to
// drain queued beacons is joined into the returned error.
func Post(ctx context.Context, payload Payload, opts ...Option) (status int, err error) {
	c, err := telsend.New(telsend.Config{}, opts...)
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := c.Close(ctx); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close client: %w", cerr))
		}
	}()

	_, err = c.Send(ctx, payload, telsend.ModeSync, func(s int, _ map[string]string, _ string) {
		status = s
	})
	return status, err
}
