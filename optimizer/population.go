package optimizer

import (
	"math"
	"sort"
)

// AcceptedSolutionID is a monotonic identifier assigned at acceptance
// time, grounded on original_source's AcceptedSolutionId newtype
// (accepted_solution.rs).
type AcceptedSolutionID uint64

// AcceptedSolution is an immutable snapshot of a working solution plus
// its total score, taken the moment an acceptor returns true. Never
// mutated after creation; destroyed only by Population eviction.
type AcceptedSolution struct {
	ID       AcceptedSolutionID
	Solution *WorkingSolution
	Score    Score
}

// Population is the bounded, sorted set of accepted solutions the LNS
// loop selects parents from (spec.md §3/§4.10). Kept strictly sorted by
// total score ascending; biased fitness is recomputed whenever membership
// changes.
type Population struct {
	maxSolutions int
	eliteFrac    float64
	nextID       AcceptedSolutionID
	solutions    []*AcceptedSolution
	edgeHashes   map[uint64]bool
}

func NewPopulation(maxSolutions int, eliteFrac float64) *Population {
	return &Population{
		maxSolutions: maxSolutions,
		eliteFrac:    eliteFrac,
		edgeHashes:   make(map[uint64]bool),
	}
}

func (p *Population) Len() int                      { return len(p.solutions) }
func (p *Population) IsEmpty() bool                  { return len(p.solutions) == 0 }
func (p *Population) Solutions() []*AcceptedSolution { return p.solutions }
func (p *Population) AtCapacity() bool               { return len(p.solutions) >= p.maxSolutions }

func (p *Population) Best() (*AcceptedSolution, bool) {
	if p.IsEmpty() {
		return nil, false
	}
	return p.solutions[0], true
}

func (p *Population) Worst() (*AcceptedSolution, bool) {
	if p.IsEmpty() {
		return nil, false
	}
	return p.solutions[len(p.solutions)-1], true
}

// Insert adds solution/score to the population if it isn't a duplicate of
// an existing member (by route-edge-set hash), keeps the population
// sorted by total score ascending (spec.md §8 invariant 4), and — on
// overflow — evicts the member with the worst (highest) biased fitness,
// which need not be the worst-scored one. Returns false if the candidate
// was rejected as a duplicate.
func (p *Population) Insert(solution *WorkingSolution, score Score) bool {
	hash := edgeSetHash(solution.EdgeSet())
	if p.edgeHashes[hash] {
		return false
	}

	p.nextID++
	p.solutions = append(p.solutions, &AcceptedSolution{ID: p.nextID, Solution: solution, Score: score})
	p.edgeHashes[hash] = true
	sort.SliceStable(p.solutions, func(i, j int) bool {
		return p.solutions[i].Score.Less(p.solutions[j].Score)
	})

	if len(p.solutions) > p.maxSolutions {
		ranks := p.biasedFitnessRanks()
		worstIdx := 0
		for i, s := range p.solutions {
			if ranks[s.ID] > ranks[p.solutions[worstIdx].ID] {
				worstIdx = i
			}
		}
		evicted := p.solutions[worstIdx]
		delete(p.edgeHashes, edgeSetHash(evicted.Solution.EdgeSet()))
		p.solutions = append(p.solutions[:worstIdx], p.solutions[worstIdx+1:]...)
	}
	return true
}

// BiasedFitness returns bf(s) = cost_rank(s)/N + (1-elite_frac)*diversity_rank(s)/N,
// smaller is better (spec.md §3). cost_rank is s's 0-based index in the
// score-sorted population (already the invariant Population maintains);
// diversity_rank is s's 0-based index when solutions are sorted ascending
// by the reciprocal of their mean broken-pairs distance to everyone else
// (so the most distant solution gets diversity_rank 0).
func (p *Population) BiasedFitness(s *AcceptedSolution) float64 {
	ranks := p.biasedFitnessRanks()
	return ranks[s.ID]
}

// biasedFitnessRanks computes every member's biased fitness in one pass
// (diversity requires comparing every pair, so doing it member-by-member
// would be quadratic per call instead of once).
func (p *Population) biasedFitnessRanks() map[AcceptedSolutionID]float64 {
	n := len(p.solutions)
	out := make(map[AcceptedSolutionID]float64, n)
	if n == 0 {
		return out
	}

	edgeSets := make([]map[routeEdge]struct{}, n)
	for i, s := range p.solutions {
		edgeSets[i] = s.Solution.EdgeSet()
	}

	type diversityEntry struct {
		id    AcceptedSolutionID
		index int
		score float64
	}
	diversities := make([]diversityEntry, n)
	for i := range p.solutions {
		if n == 1 {
			diversities[i] = diversityEntry{p.solutions[i].ID, i, 0}
			continue
		}
		var total float64
		for j := range p.solutions {
			if i == j {
				continue
			}
			total += brokenPairsDistance(edgeSets[i], edgeSets[j])
		}
		diversities[i] = diversityEntry{p.solutions[i].ID, i, total / float64(n-1)}
	}

	sorted := append([]diversityEntry(nil), diversities...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return reciprocal(sorted[i].score) < reciprocal(sorted[j].score)
	})
	diversityRank := make(map[AcceptedSolutionID]int, n)
	for rank, d := range sorted {
		diversityRank[d.id] = rank
	}

	for costRank, s := range p.solutions {
		bf := float64(costRank)/float64(n) + (1-p.eliteFrac)*float64(diversityRank[s.ID])/float64(n)
		out[s.ID] = bf
	}
	return out
}

func reciprocal(x float64) float64 {
	if x == 0 {
		return math.Inf(1)
	}
	return 1 / x
}

// brokenPairsDistance is BPD(a,b) = max(|Ea|,|Eb|) - |Ea∩Eb| over
// directed route edges (spec.md §4.10).
func brokenPairsDistance(a, b map[routeEdge]struct{}) float64 {
	shared := 0
	for e := range a {
		if _, ok := b[e]; ok {
			shared++
		}
	}
	max := len(a)
	if len(b) > max {
		max = len(b)
	}
	return float64(max - shared)
}

func edgeSetHash(edges map[routeEdge]struct{}) uint64 {
	var h uint64 = 1469598103934665603 // FNV offset basis
	keys := make([]routeEdge, 0, len(edges))
	for e := range edges {
		keys = append(keys, e)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].From != keys[j].From {
			return keys[i].From < keys[j].From
		}
		return keys[i].To < keys[j].To
	})
	for _, e := range keys {
		h = fnvMix(h, uint64(e.From))
		h = fnvMix(h, uint64(e.To))
	}
	return h
}

func fnvMix(h uint64, v uint64) uint64 {
	const prime = 1099511628211
	h ^= v
	h *= prime
	return h
}
