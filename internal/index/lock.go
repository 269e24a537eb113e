package index

import "sync/atomic"

// buildLock provides non-blocking exclusive-build semantics: an index build
// is a single-writer operation, so a second build attempt is rejected rather
// than queued.
type buildLock struct {
	state atomic.Int32 // 0 = unlocked, 1 = locked
}

// TryAcquire attempts to acquire the lock without blocking.
func (l *buildLock) TryAcquire() bool {
	return l.state.CompareAndSwap(0, 1)
}

// Release releases the lock. Must only be called after a successful acquire.
func (l *buildLock) Release() {
	l.state.Store(0)
}
