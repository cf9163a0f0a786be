// Package domain contains the core entities and value objects for telsend.
//
// This package represents the innermost layer of the Clean Architecture. It has
// no dependencies on infrastructure concerns (HTTP, logging, metrics) and
// contains only the vocabulary shared by every transport.
//
// # Entities
//
//   - [Payload]: A ready-to-send telemetry body and its destination
//   - [TransportConfig]: Read-only snapshot of transport switches
//   - [Transport]: Identifier of a delivery mechanism
//   - [SendMode]: Whether a send may block or must survive teardown
//
// # Design Principles
//
// Domain values are:
//   - Copied, never shared for mutation
//   - Free of infrastructure dependencies
//   - Testable without mocks or external systems
package domain
