package ports

// BeaconQueue is a fire-and-forget delivery primitive.
// Enqueue returns true when the payload was accepted for eventual
// transmission and false when queuing failed (quota exhausted, closed).
// No response is ever reported for an accepted payload.
type BeaconQueue interface {
	Enqueue(url string, body []byte, contentType string) bool
}
