package worker

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoordinator_RunsExactlyNWorkers(t *testing.T) {
	c := NewCoordinator(5)
	var calls int32
	c.Run(func(index int, barrier *CancellableBarrier) {
		atomic.AddInt32(&calls, 1)
	})
	assert.Equal(t, int32(5), calls)
}

func TestCoordinator_ClampsBelowOneWorkerToOne(t *testing.T) {
	c := NewCoordinator(0)
	assert.Equal(t, 1, c.N)
}

func TestCoordinator_SharesOneBarrierAcrossWorkers(t *testing.T) {
	c := NewCoordinator(4)
	var leaders int32
	c.Run(func(index int, barrier *CancellableBarrier) {
		if barrier.Wait().IsLeader() {
			atomic.AddInt32(&leaders, 1)
		}
	})
	assert.Equal(t, int32(1), leaders)
}

func TestCoordinator_WorkerIndicesAreDistinct(t *testing.T) {
	c := NewCoordinator(4)
	seen := make(chan int, 4)
	c.Run(func(index int, barrier *CancellableBarrier) {
		seen <- index
	})
	close(seen)
	indices := make(map[int]bool)
	for i := range seen {
		indices[i] = true
	}
	assert.Len(t, indices, 4)
}
