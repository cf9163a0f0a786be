package app

import (
	"sync"
	"sync/atomic"
)

// DefaultKeepAliveQuota is the aggregate number of body bytes the host lets
// keepalive requests have in flight at once.
const DefaultKeepAliveQuota int64 = 64 * 1024

// SyncPayloadTracker accounts for bytes committed to in-flight keepalive
// requests. It is owned by one Manager and shared by reference across its
// sends.
type SyncPayloadTracker struct {
	outstanding atomic.Int64
	onChange    func(int64)

	// notifyMu orders onChange calls so the last one sees the final value.
	notifyMu sync.Mutex
}

// NewSyncPayloadTracker creates a tracker. onChange, if non-nil, receives the
// current value after every mutation, one call at a time.
func NewSyncPayloadTracker(onChange func(int64)) *SyncPayloadTracker {
	return &SyncPayloadTracker{onChange: onChange}
}

// Outstanding returns the bytes currently in flight.
func (t *SyncPayloadTracker) Outstanding() int64 {
	return t.outstanding.Load()
}

// TryAdd commits n bytes if the total stays within limit.
// A limit <= 0 disables the check.
func (t *SyncPayloadTracker) TryAdd(n, limit int64) bool {
	for {
		cur := t.outstanding.Load()
		if limit > 0 && cur+n > limit {
			return false
		}
		if t.outstanding.CompareAndSwap(cur, cur+n) {
			t.notify()
			return true
		}
	}
}

// Release returns n bytes previously committed with TryAdd.
// The counter never goes below zero.
func (t *SyncPayloadTracker) Release(n int64) {
	for {
		cur := t.outstanding.Load()
		next := cur - n
		if next < 0 {
			next = 0
		}
		if t.outstanding.CompareAndSwap(cur, next) {
			t.notify()
			return
		}
	}
}

func (t *SyncPayloadTracker) notify() {
	if t.onChange == nil {
		return
	}
	t.notifyMu.Lock()
	defer t.notifyMu.Unlock()
	t.onChange(t.outstanding.Load())
}
