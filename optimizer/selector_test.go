package optimizer

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTestPopulation(t *testing.T) *Population {
	t.Helper()
	problem := buildTestProblem()
	pop := NewPopulation(10, 0.2)
	require.True(t, pop.Insert(solutionWithService(problem, 0, 0), Score{Soft: 10}))
	require.True(t, pop.Insert(solutionWithService(problem, 1, 1), Score{Soft: 20}))
	require.True(t, pop.Insert(NewWorkingSolution(problem), Score{Soft: 30}))
	return pop
}

func TestSelector_Best_ReturnsLowestScoredMember(t *testing.T) {
	pop := buildTestPopulation(t)
	s := Selector{Kind: SelectorBest}
	got, ok := s.Select(pop, rand.New(rand.NewSource(1)))
	require.True(t, ok)
	assert.Equal(t, 10.0, got.Score.Soft)
}

func TestSelector_Best_EmptyPopulation(t *testing.T) {
	pop := NewPopulation(10, 0.2)
	s := Selector{Kind: SelectorBest}
	_, ok := s.Select(pop, rand.New(rand.NewSource(1)))
	assert.False(t, ok)
}

func TestSelector_Random_AlwaysReturnsAMember(t *testing.T) {
	pop := buildTestPopulation(t)
	s := Selector{Kind: SelectorRandom}
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		got, ok := s.Select(pop, rng)
		require.True(t, ok)
		assert.Contains(t, pop.Solutions(), got)
	}
}

func TestSelector_Weighted_AlwaysReturnsAMember(t *testing.T) {
	pop := buildTestPopulation(t)
	s := Selector{Kind: SelectorWeighted}
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 20; i++ {
		got, ok := s.Select(pop, rng)
		require.True(t, ok)
		assert.Contains(t, pop.Solutions(), got)
	}
}

func TestSelector_Weighted_FavorsLowerBiasedFitness(t *testing.T) {
	pop := buildTestPopulation(t)
	s := Selector{Kind: SelectorWeighted}
	rng := rand.New(rand.NewSource(42))

	counts := make(map[AcceptedSolutionID]int)
	const trials = 2000
	for i := 0; i < trials; i++ {
		got, ok := s.Select(pop, rng)
		require.True(t, ok)
		counts[got.ID]++
	}
	best, _ := pop.Best()
	worst, _ := pop.Worst()
	assert.Greater(t, counts[best.ID], counts[worst.ID],
		"the lowest-scored member should be drawn more often than the highest-scored one")
}

func TestSelector_BinaryTournament_SingleMember(t *testing.T) {
	problem := buildTestProblem()
	pop := NewPopulation(10, 0.2)
	require.True(t, pop.Insert(solutionWithService(problem, 0, 0), Score{Soft: 10}))

	s := Selector{Kind: SelectorBinaryTournament}
	got, ok := s.Select(pop, rand.New(rand.NewSource(1)))
	require.True(t, ok)
	assert.Equal(t, pop.Solutions()[0], got)
}

func TestSelector_BinaryTournament_AlwaysReturnsAMember(t *testing.T) {
	pop := buildTestPopulation(t)
	s := Selector{Kind: SelectorBinaryTournament}
	rng := rand.New(rand.NewSource(9))
	for i := 0; i < 20; i++ {
		got, ok := s.Select(pop, rng)
		require.True(t, ok)
		assert.Contains(t, pop.Solutions(), got)
	}
}
