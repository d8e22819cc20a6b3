package optimizer

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAcceptor_Any_AlwaysAccepts(t *testing.T) {
	a := Acceptor{Kind: AcceptorAny}
	ctx := AcceptContext{}
	assert.True(t, a.Accept(ctx, 100, Score{Soft: 0}, Score{Soft: 1000}, Score{Hard: 50, Soft: 9999}))
}

func TestAcceptor_Greedy_AcceptsWhenPopulationHasRoom(t *testing.T) {
	a := Acceptor{Kind: AcceptorGreedy}
	ctx := AcceptContext{MaxSolutions: 10}
	assert.True(t, a.Accept(ctx, 3, Score{Soft: 0}, Score{Soft: 1000}, Score{Soft: 2000}))
}

func TestAcceptor_Greedy_RequiresImprovementAtCapacity(t *testing.T) {
	a := Acceptor{Kind: AcceptorGreedy}
	ctx := AcceptContext{MaxSolutions: 3}

	// GIVEN the population is already at capacity
	// WHEN the candidate is worse than the current worst member
	// THEN it is rejected
	assert.False(t, a.Accept(ctx, 3, Score{Soft: 0}, Score{Soft: 100}, Score{Soft: 150}))
	// WHEN the candidate strictly improves on the current worst member
	// THEN it is accepted
	assert.True(t, a.Accept(ctx, 3, Score{Soft: 0}, Score{Soft: 100}, Score{Soft: 50}))
}

func TestAcceptor_SimulatedAnnealing_AlwaysAcceptsImprovement(t *testing.T) {
	a := Acceptor{Kind: AcceptorSimulatedAnnealing, InitialTemperature: 1, CoolingRate: 0.99}
	ctx := AcceptContext{Iteration: 0, Rng: rand.New(rand.NewSource(1))}
	assert.True(t, a.Accept(ctx, 0, Score{Soft: 10}, Score{Soft: 10}, Score{Soft: 5}))
}

func TestAcceptor_SimulatedAnnealing_RejectsWorseAtZeroTemperature(t *testing.T) {
	a := Acceptor{Kind: AcceptorSimulatedAnnealing, InitialTemperature: 0, CoolingRate: 0.99}
	ctx := AcceptContext{Iteration: 0, Rng: rand.New(rand.NewSource(1))}
	assert.False(t, a.Accept(ctx, 0, Score{Soft: 10}, Score{Soft: 10}, Score{Soft: 50}))
}

func TestAcceptor_SimulatedAnnealing_CoolingMakesAcceptanceLessLikely(t *testing.T) {
	a := Acceptor{Kind: AcceptorSimulatedAnnealing, InitialTemperature: 100, CoolingRate: 0.9}
	best := Score{Soft: 100}
	candidate := Score{Soft: 110}

	accepts := func(iteration int, seed int64) bool {
		ctx := AcceptContext{Iteration: iteration, Rng: rand.New(rand.NewSource(seed))}
		return a.Accept(ctx, 0, best, best, candidate)
	}

	// Sample acceptance rate at an early iteration (hot) and a late one
	// (cold) across many seeds; the hot rate must exceed the cold rate.
	const trials = 200
	var hot, cold int
	for i := 0; i < trials; i++ {
		if accepts(0, int64(i)) {
			hot++
		}
		if accepts(50, int64(i)) {
			cold++
		}
	}
	assert.Greater(t, hot, cold, "acceptance should become less likely as the schedule cools")
}

func TestAcceptor_Schrimpf_RejectsInfeasibleCandidate(t *testing.T) {
	a := Acceptor{Kind: AcceptorSchrimpf, InitialRatio: 2.0}
	ctx := AcceptContext{Iteration: 0, MaxIterations: 100}
	assert.False(t, a.Accept(ctx, 0, Score{Soft: 10}, Score{Soft: 10}, Score{Hard: 1, Soft: 10}))
}

// TestAcceptor_Schrimpf_ThresholdDecaysMonotonically exercises spec.md §8
// invariant 6: the Schrimpf threshold moves monotonically from
// InitialRatio at iteration 0 toward 1.0 at MaxIterations, so a
// candidate tolerated early may no longer be tolerated later.
func TestAcceptor_Schrimpf_ThresholdDecaysMonotonically(t *testing.T) {
	a := Acceptor{Kind: AcceptorSchrimpf, InitialRatio: 2.0}
	maxIterations := 100

	prev := a.schrimpfThreshold(0, maxIterations)
	assert.InDelta(t, 2.0, prev, 1e-9)
	for _, iter := range []int{10, 25, 50, 75, 100} {
		cur := a.schrimpfThreshold(iter, maxIterations)
		assert.LessOrEqual(t, cur, prev, "threshold must not increase as iterations progress")
		prev = cur
	}
	assert.InDelta(t, 1.0, prev, 1e-9, "threshold reaches exactly 1.0 at MaxIterations")
}

func TestAcceptor_Schrimpf_AcceptsWithinThresholdOfBest(t *testing.T) {
	a := Acceptor{Kind: AcceptorSchrimpf, InitialRatio: 1.5}
	ctx := AcceptContext{Iteration: 0, MaxIterations: 100}
	best := Score{Soft: 100}
	assert.True(t, a.Accept(ctx, 0, best, best, Score{Soft: 140}))
	assert.False(t, a.Accept(ctx, 0, best, best, Score{Soft: 200}))
}
