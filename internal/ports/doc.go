// Package ports defines the interfaces (ports) that connect the transport
// core to infrastructure adapters.
//
// Ports are the boundaries between the senders and the host primitives they
// drive. They define what a sender needs from the host without specifying
// how those needs are fulfilled.
//
// # Port Interfaces
//
//   - [HTTPClient]: HTTP request abstraction backing fetch, xhr and xdomain
//   - [BeaconQueue]: Queue-accepting one-way delivery primitive
//   - [SendObserver]: Receives the outcome of every logical send
//   - [Logger]: Structured logging abstraction
//
// # Usage
//
// The core (internal/app) depends only on these interfaces.
// Infrastructure adapters (internal/adapters) implement them with net/http,
// zerolog and Prometheus.
package ports
