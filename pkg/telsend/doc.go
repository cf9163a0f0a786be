// Package telsend provides an embeddable outbound telemetry transport.
//
// A Client takes a prepared payload and hands it to the network with the
// first transport the host supports, in preference order: fetch, xhr or
// beacon, with xdomain standing in for xhr on hosts without cross-origin
// support. Every send reports exactly one completion through its callback.
//
// # Basic Usage
//
//	c, err := telsend.New(telsend.Config{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer c.Close(context.Background())
//
//	_, err = c.Send(ctx, telsend.Payload{
//	    URL:  "https://collector.example.com/v1/track",
//	    Data: body,
//	}, telsend.ModeAsync, func(status int, headers map[string]string, body string) {
//	    // status 200 for success, 400 for network failure, 500 for timeout
//	})
//
// # Send Modes
//
// ModeAsync returns immediately. ModeSync blocks until the outcome is known
// and uses keepalive fetch when available. ModeUnload behaves like ModeSync
// but reports success once control returns if no response has arrived yet.
//
// # Completion Promises
//
// With TransportConfig.EnableCompletionPromise set, async fetch and xhr
// sends also return a Future that resolves to whether the status was 2xx or
// 3xx, or rejects on network failure.
//
// # Configuration
//
// SetConfig replaces the transport switches atomically. Sends already in
// progress keep the snapshot they started with.
//
// # Plugins
//
// Plugins registered with WithPlugin are initialized by Start and shut down
// by Close in reverse order.
package telsend
