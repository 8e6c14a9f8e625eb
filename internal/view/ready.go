package view

import (
	"context"
	"sync"
)

// Ready is a one-shot completion handle. Views that depend on an external
// collaborator (e.g. the map widget) wait on it instead of polling a global
// flag. Signal may be called any number of times; only the first counts.
type Ready struct {
	once sync.Once
	ch   chan struct{}
}

// NewReady returns an unsignaled handle.
func NewReady() *Ready {
	return &Ready{ch: make(chan struct{})}
}

// Signal marks the handle as ready and releases all waiters.
func (r *Ready) Signal() {
	r.once.Do(func() { close(r.ch) })
}

// Done returns a channel closed once Signal has been called.
func (r *Ready) Done() <-chan struct{} {
	return r.ch
}

// IsReady reports whether Signal has been called.
func (r *Ready) IsReady() bool {
	select {
	case <-r.ch:
		return true
	default:
		return false
	}
}

// Wait blocks until the handle is signaled or ctx is done.
func (r *Ready) Wait(ctx context.Context) error {
	select {
	case <-r.ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
