package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// solutionWithService builds a working solution that assigns svc to
// vehicle route vehicleIdx. Edge sets are location pairs and both test
// vehicles share the depot, so only a different svc gives a distinct edge
// set (and so a distinct edgeSetHash value) to insert into a Population.
func solutionWithService(problem *Problem, vehicleIdx int, svc ServiceIdx) *WorkingSolution {
	ws := NewWorkingSolution(problem)
	applyServiceInsertion(ws, Insertion{Kind: InsertService, Service: svc, Route: RouteIdx(vehicleIdx), Position: 0})
	return ws
}

func TestPopulation_InsertKeepsSortedByScoreAscending(t *testing.T) {
	problem := buildTestProblem()
	pop := NewPopulation(10, 0.2)

	// GIVEN three solutions inserted out of score order
	low := solutionWithService(problem, 0, 0)
	mid := solutionWithService(problem, 1, 1)
	high := NewWorkingSolution(problem) // nothing assigned: worst (all-unassigned penalty)

	ok := pop.Insert(mid, Score{Soft: 50})
	require.True(t, ok)
	ok = pop.Insert(high, Score{Soft: 100})
	require.True(t, ok)
	ok = pop.Insert(low, Score{Soft: 10})
	require.True(t, ok)

	// THEN Solutions() is sorted ascending by score
	solutions := pop.Solutions()
	require.Len(t, solutions, 3)
	for i := 1; i < len(solutions); i++ {
		assert.True(t, !solutions[i].Score.Less(solutions[i-1].Score),
			"population must stay sorted ascending by score")
	}
	best, ok := pop.Best()
	require.True(t, ok)
	assert.Equal(t, 10.0, best.Score.Soft)
	worst, ok := pop.Worst()
	require.True(t, ok)
	assert.Equal(t, 100.0, worst.Score.Soft)
}

func TestPopulation_RejectsDuplicateEdgeSets(t *testing.T) {
	problem := buildTestProblem()
	pop := NewPopulation(10, 0.2)

	a := solutionWithService(problem, 0, 0)
	b := solutionWithService(problem, 0, 0) // identical assignment -> identical edge set

	ok := pop.Insert(a, Score{Soft: 10})
	require.True(t, ok)
	ok = pop.Insert(b, Score{Soft: 20})
	assert.False(t, ok, "a solution with an already-seen edge set must be rejected")
	assert.Equal(t, 1, pop.Len())
}

func TestPopulation_OverflowEvictsWorstBiasedFitnessNotWorstScore(t *testing.T) {
	problem := buildTestProblem()
	pop := NewPopulation(2, 0.0) // eliteFrac 0 maximizes the diversity term's weight

	// Three distinct, mutually non-duplicate solutions.
	s1 := solutionWithService(problem, 0, 0)
	s2 := solutionWithService(problem, 1, 1)
	s3 := NewWorkingSolution(problem)

	require.True(t, pop.Insert(s1, Score{Soft: 10}))
	require.True(t, pop.Insert(s2, Score{Soft: 20}))
	require.True(t, pop.Insert(s3, Score{Soft: 30}))

	// Capacity 2: exactly one of the three was evicted.
	assert.Equal(t, 2, pop.Len())
	assert.True(t, pop.AtCapacity())
}

func TestPopulation_BestAndWorstEmptyPopulation(t *testing.T) {
	pop := NewPopulation(5, 0.2)
	_, ok := pop.Best()
	assert.False(t, ok)
	_, ok = pop.Worst()
	assert.False(t, ok)
	assert.True(t, pop.IsEmpty())
}

func TestPopulation_BiasedFitnessOfSoleMemberIsZero(t *testing.T) {
	problem := buildTestProblem()
	pop := NewPopulation(5, 0.2)
	s := solutionWithService(problem, 0, 0)
	require.True(t, pop.Insert(s, Score{Soft: 10}))

	bf := pop.BiasedFitness(pop.Solutions()[0])
	assert.Equal(t, 0.0, bf, "a single-member population has cost_rank 0 and diversity_rank 0")
}
