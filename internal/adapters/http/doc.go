// Package http provides net/http renditions of the host delivery primitives:
// a quota-bounded beacon queue and an instrumented client that skips
// requests tagged by the transports.
package http
