// Package sync provides synchronization primitives for code that runs
// without Go's scheduler available (before goroutines exist, or with
// interrupts still disabled).
package sync

import "sync/atomic"

var (
	// TODO: replace with a real yield function once a scheduler exists.
	yieldFn func()
)

// Spinlock implements a lock where each task trying to acquire it busy-waits
// until the lock becomes available.
//
// The acyclic lock order used throughout the memory-management core is:
// serial < heap < mapper < frame allocator. Code that needs more than one of
// these locks must acquire them in that order to avoid deadlocks.
type Spinlock struct {
	state uint32
}

// Acquire blocks until the lock can be acquired by the currently active task.
// Re-acquiring a lock already held by the current task will deadlock.
func (l *Spinlock) Acquire() {
	archAcquireSpinlock(&l.state, 1)
}

// TryAcquire attempts to acquire the lock and returns true if it succeeded.
func (l *Spinlock) TryAcquire() bool {
	return atomic.SwapUint32(&l.state, 1) == 0
}

// Release relinquishes a held lock. Calling Release on a free lock has no
// effect.
func (l *Spinlock) Release() {
	atomic.StoreUint32(&l.state, 0)
}

// archAcquireSpinlock is an arch-specific implementation for acquiring the
// lock. It busy-waits, calling yieldFn (if set) after attemptsBeforeYielding
// failed attempts.
func archAcquireSpinlock(state *uint32, attemptsBeforeYielding uint32)
