package optimizer

import (
	"math"
	"math/rand"
)

// AcceptorKind tags which acceptance policy an Acceptor runs (spec.md
// §4.8), grounded on original_source's SolutionAcceptor enum
// (solution_acceptor.rs) and its Greedy variant (greedy_solution_acceptor.rs).
type AcceptorKind int

const (
	AcceptorGreedy AcceptorKind = iota
	AcceptorSimulatedAnnealing
	AcceptorSchrimpf
	AcceptorAny
)

// Acceptor configures one acceptance policy. SimulatedAnnealing uses
// InitialTemperature and CoolingRate; Schrimpf uses InitialRatio.
type Acceptor struct {
	Kind               AcceptorKind
	InitialTemperature float64
	CoolingRate        float64
	InitialRatio       float64
}

// AcceptContext carries the information an acceptor needs beyond the two
// scores being compared: where the search is (for the annealing/Schrimpf
// schedules) and the population it would be accepted into (for Greedy's
// capacity check).
type AcceptContext struct {
	Iteration     int
	MaxIterations int // 0 means unbounded; Schrimpf requires this to be set
	MaxSolutions  int
	Rng           *rand.Rand
}

// Accept reports whether a candidate solution scoring candidate should
// join the population, given the population's current members' scores
// (bestScore is the score of Population.Best(); worstScore that of
// Population.Worst()).
func (a Acceptor) Accept(ctx AcceptContext, populationSize int, bestScore, worstScore Score, candidate Score) bool {
	switch a.Kind {
	case AcceptorAny:
		return true
	case AcceptorSimulatedAnnealing:
		return a.acceptSimulatedAnnealing(ctx, bestScore, candidate)
	case AcceptorSchrimpf:
		return a.acceptSchrimpf(ctx, bestScore, candidate)
	default:
		return a.acceptGreedy(ctx, populationSize, worstScore, candidate)
	}
}

// acceptGreedy accepts unconditionally while the population has room, and
// otherwise only a strict improvement over the current worst member.
func (a Acceptor) acceptGreedy(ctx AcceptContext, populationSize int, worstScore, candidate Score) bool {
	if populationSize < ctx.MaxSolutions {
		return true
	}
	return candidate.Less(worstScore)
}

// acceptSimulatedAnnealing accepts with probability exp(-Δ/T), Δ measured
// on the soft component alone when both candidate and best are feasible
// (since hard is 0 either side, soft is the only thing moving) and on the
// hard component when either is infeasible (since hard dominates the
// comparison lexicographically, improving it is what matters).
func (a Acceptor) acceptSimulatedAnnealing(ctx AcceptContext, best, candidate Score) bool {
	if candidate.Less(best) || candidate == best {
		return true
	}
	var delta float64
	if best.IsFeasible() && candidate.IsFeasible() {
		delta = candidate.Soft - best.Soft
	} else {
		delta = candidate.Hard - best.Hard
	}
	t := a.InitialTemperature * math.Pow(a.CoolingRate, float64(ctx.Iteration))
	if t <= 0 {
		return false
	}
	p := math.Exp(-delta / t)
	return ctx.Rng.Float64() < p
}

// acceptSchrimpf accepts a feasible candidate whose total score is within
// threshold(i)·best.Total, where the threshold decays linearly from
// InitialRatio down to 1.0 over MaxIterations — early iterations tolerate
// solutions well above the incumbent, later ones only accept near-ties or
// improvements.
func (a Acceptor) acceptSchrimpf(ctx AcceptContext, best, candidate Score) bool {
	if !candidate.IsFeasible() {
		return false
	}
	threshold := a.schrimpfThreshold(ctx.Iteration, ctx.MaxIterations)
	return candidate.Total() <= threshold*best.Total()
}

func (a Acceptor) schrimpfThreshold(iteration, maxIterations int) float64 {
	if maxIterations <= 0 {
		return 1.0
	}
	progress := float64(iteration) / float64(maxIterations)
	if progress > 1 {
		progress = 1
	}
	return a.InitialRatio + (1.0-a.InitialRatio)*progress
}
