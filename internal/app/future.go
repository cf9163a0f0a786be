package app

import (
	"context"
	"sync"
)

// Future is the completion promise returned for async sends when
// EnableCompletionPromise is set. It resolves to true when the exchange
// reached a successful terminal response, resolves to false on an
// unsuccessful status or timeout, and rejects on network failure.
type Future struct {
	once sync.Once
	done chan struct{}
	ok   bool
	err  error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

func (f *Future) resolve(ok bool) {
	f.once.Do(func() {
		f.ok = ok
		close(f.done)
	})
}

func (f *Future) reject(err error) {
	f.once.Do(func() {
		f.err = err
		close(f.done)
	})
}

// Done is closed once the future settles.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the future settles or ctx is done.
func (f *Future) Wait(ctx context.Context) (bool, error) {
	select {
	case <-f.done:
		return f.ok, f.err
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// Result returns the settled value. It must only be called after Done is
// closed.
func (f *Future) Result() (bool, error) {
	return f.ok, f.err
}
