// Package worker coordinates the N goroutines an LNS solve runs
// concurrently, each exploring its own working solution against a shared
// population, synchronized generation by generation through a cancellable
// barrier (spec.md §4.12, grounded on original_source's
// utils/cancellable_barrier.rs).
package worker

import "sync"

// WaitResult reports the role a goroutine played arriving at the
// barrier: exactly one Leader per generation (the one whose arrival
// completed the generation, responsible for any end-of-generation work),
// every other arrival a Follower, or Cancelled if the barrier was
// cancelled before or during the wait.
type WaitResult int

const (
	Follower WaitResult = iota
	Leader
	Cancelled
)

func (r WaitResult) IsLeader() bool    { return r == Leader }
func (r WaitResult) IsCancelled() bool { return r == Cancelled }

// CancellableBarrier is a reusable (cyclic) barrier for n goroutines, with
// a cancel switch that immediately releases every waiter — used to stop
// all workers once the solver's iteration/duration budget is exhausted.
// Ported from parking_lot::{Mutex, Condvar} to sync.Mutex/sync.Cond: the
// mutex guards count/generation/cancelled exactly as BarrierState did,
// and Cond.Wait plays the role of Condvar::wait_while.
type CancellableBarrier struct {
	mu         sync.Mutex
	cond       *sync.Cond
	numThreads int
	count      int
	generation uint64
	cancelled  bool
}

func NewCancellableBarrier(n int) *CancellableBarrier {
	b := &CancellableBarrier{numThreads: n}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Wait blocks until every one of numThreads goroutines has called Wait
// for the current generation, then releases them all and advances the
// generation. The goroutine whose arrival completed the generation gets
// Leader; everyone else gets Follower. Returns Cancelled immediately (no
// blocking) if Cancel was already called, or for any waiter still parked
// when Cancel is called.
func (b *CancellableBarrier) Wait() WaitResult {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.cancelled {
		return Cancelled
	}

	localGen := b.generation
	b.count++

	if b.count < b.numThreads {
		for b.generation == localGen && !b.cancelled {
			b.cond.Wait()
		}
		if b.cancelled {
			return Cancelled
		}
		return Follower
	}

	b.count = 0
	b.generation++
	b.cond.Broadcast()
	return Leader
}

// Cancel releases every goroutine currently parked in Wait (and causes
// every future Wait call to return Cancelled immediately).
func (b *CancellableBarrier) Cancel() {
	b.mu.Lock()
	b.cancelled = true
	b.mu.Unlock()
	b.cond.Broadcast()
}
