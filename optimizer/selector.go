package optimizer

import "math/rand"

// SelectorKind tags which parent-selection policy a Selector runs
// (spec.md §4.9), grounded on original_source's SolutionSelector enum
// (solution_selector.rs) and its Best/Random/Weighted/BinaryTournament
// variants.
type SelectorKind int

const (
	SelectorBest SelectorKind = iota
	SelectorRandom
	SelectorWeighted
	SelectorBinaryTournament
)

type Selector struct {
	Kind SelectorKind
}

// Select returns a parent from the population, or false if the population
// is empty.
func (s Selector) Select(population *Population, rng *rand.Rand) (*AcceptedSolution, bool) {
	switch s.Kind {
	case SelectorRandom:
		return selectRandom(population, rng)
	case SelectorWeighted:
		return selectWeighted(population, rng)
	case SelectorBinaryTournament:
		return selectBinaryTournament(population, rng)
	default:
		return selectBest(population)
	}
}

// selectBest assumes the population is kept sorted (Population.Insert's
// invariant) and returns its first element.
func selectBest(population *Population) (*AcceptedSolution, bool) {
	return population.Best()
}

func selectRandom(population *Population, rng *rand.Rand) (*AcceptedSolution, bool) {
	solutions := population.Solutions()
	if len(solutions) == 0 {
		return nil, false
	}
	return solutions[rng.Intn(len(solutions))], true
}

// selectWeighted draws with weight 2 - bf(s) per original_source's
// select_weighted.rs, falling back to uniform selection if every weight
// comes out non-positive (a numerical edge case the original guards with
// choose_weighted's error path).
func selectWeighted(population *Population, rng *rand.Rand) (*AcceptedSolution, bool) {
	solutions := population.Solutions()
	if len(solutions) == 0 {
		return nil, false
	}
	weights := make([]float64, len(solutions))
	var total float64
	for i, s := range solutions {
		w := 2.0 - population.BiasedFitness(s)
		if w < 0 {
			w = 0
		}
		weights[i] = w
		total += w
	}
	if total <= 0 {
		return selectRandom(population, rng)
	}
	draw := rng.Float64() * total
	for i, w := range weights {
		draw -= w
		if draw <= 0 {
			return solutions[i], true
		}
	}
	return solutions[len(solutions)-1], true
}

// selectBinaryTournament picks two distinct members uniformly and returns
// whichever has the smaller biased fitness.
func selectBinaryTournament(population *Population, rng *rand.Rand) (*AcceptedSolution, bool) {
	solutions := population.Solutions()
	if len(solutions) == 0 {
		return nil, false
	}
	if len(solutions) == 1 {
		return solutions[0], true
	}
	i := rng.Intn(len(solutions))
	j := rng.Intn(len(solutions) - 1)
	if j >= i {
		j++
	}
	a, b := solutions[i], solutions[j]
	if population.BiasedFitness(a) < population.BiasedFitness(b) {
		return a, true
	}
	return b, true
}
