package worker

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCancellableBarrier_ExactlyOneLeaderPerGeneration(t *testing.T) {
	const n = 8
	b := NewCancellableBarrier(n)

	var wg sync.WaitGroup
	var leaders int32
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			if b.Wait().IsLeader() {
				atomic.AddInt32(&leaders, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), leaders)
}

func TestCancellableBarrier_ReleasesAllWaitersTogether(t *testing.T) {
	const n = 6
	b := NewCancellableBarrier(n)

	var wg sync.WaitGroup
	results := make([]WaitResult, n)
	wg.Add(n)
	for i := 0; i < n; i++ {
		i := i
		go func() {
			defer wg.Done()
			results[i] = b.Wait()
		}()
	}
	wg.Wait()

	var leaders int
	for _, r := range results {
		assert.False(t, r.IsCancelled())
		if r.IsLeader() {
			leaders++
		}
	}
	assert.Equal(t, 1, leaders)
}

func TestCancellableBarrier_IsCyclic(t *testing.T) {
	const n = 4
	b := NewCancellableBarrier(n)

	for gen := 0; gen < 3; gen++ {
		var wg sync.WaitGroup
		var leaders int32
		wg.Add(n)
		for i := 0; i < n; i++ {
			go func() {
				defer wg.Done()
				if b.Wait().IsLeader() {
					atomic.AddInt32(&leaders, 1)
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), leaders, "generation %d must have exactly one leader", gen)
	}
}

func TestCancellableBarrier_CancelReleasesParkedWaiters(t *testing.T) {
	const n = 4
	b := NewCancellableBarrier(n)

	var wg sync.WaitGroup
	results := make([]WaitResult, n-1)
	wg.Add(n - 1)
	for i := 0; i < n-1; i++ {
		i := i
		go func() {
			defer wg.Done()
			results[i] = b.Wait() // n-1 waiters park; the barrier never completes on its own
		}()
	}

	// Give the goroutines a chance to actually park before cancelling.
	time.Sleep(20 * time.Millisecond)
	b.Cancel()

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Cancel did not release parked waiters")
	}

	for _, r := range results {
		assert.True(t, r.IsCancelled())
	}
}

func TestCancellableBarrier_WaitAfterCancelReturnsImmediately(t *testing.T) {
	b := NewCancellableBarrier(2)
	b.Cancel()

	done := make(chan WaitResult, 1)
	go func() { done <- b.Wait() }()

	select {
	case r := <-done:
		require.True(t, r.IsCancelled())
	case <-time.After(time.Second):
		t.Fatal("Wait blocked after the barrier was already cancelled")
	}
}
