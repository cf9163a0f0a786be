package ports

import (
	"time"

	"github.com/bft-labs/telsend/internal/domain"
)

// SendResult describes the terminal outcome of one logical send.
type SendResult struct {
	SendID    string
	Transport domain.Transport
	URL       string
	Status    int
	Bytes     int
	Duration  time.Duration
	Fallback  bool
	Err       error
}

// SendObserver is notified once per logical send after the completion
// callback has run. Implementations must return quickly.
type SendObserver interface {
	OnSendComplete(result SendResult)

	// OnOutstandingSyncBytes reports the tracker value after it changes.
	OnOutstandingSyncBytes(n int64)
}
