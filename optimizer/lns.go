package optimizer

import (
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fknop/hermes/optimizer/worker"
)

// RecreateMode selects how Solver picks among several configured recreate
// strategies each iteration (spec.md §4.11 step 4).
type RecreateMode int

const (
	RecreateRoundRobin RecreateMode = iota
	RecreateWeightedRandom
)

// RecreateConfig is the ordered list of recreate strategies a solve
// cycles through in turn (RecreateRoundRobin) or draws from uniformly at
// random (RecreateWeightedRandom; strategies carry no weights).
type RecreateConfig struct {
	Strategies      []RecreateStrategy
	Mode            RecreateMode
	InsertOnFailure bool
}

// SolverParams is the full external configuration surface for a solve
// (spec.md §6), covering both the LNS loop's own knobs and the worker
// pool it runs across.
type SolverParams struct {
	MaxIterations int           // 0 means unbounded; Budget still applies
	MaxDuration   time.Duration // 0 means unbounded
	MaxSolutions  int
	Workers       int
	Seed          int64

	Acceptor  Acceptor
	Selector  Selector
	Ruin      RuinParams
	Recreate  RecreateConfig
	Noise     NoiseConfig
	Intensify IntensifyConfig
	EliteFrac float64
}

// Budget bounds one solve: by iteration count, wall-clock duration, or
// both (whichever is reached first stops the solve). A non-zero field
// replaces the matching SolverParams cap (MaxIterations/MaxDuration) for
// that Run; a zero field falls back to the params value, so a zero Budget
// runs under SolverParams' caps alone.
type Budget struct {
	MaxIterations int
	MaxDuration   time.Duration
}

func IterationBudget(n int) Budget        { return Budget{MaxIterations: n} }
func DurationBudget(d time.Duration) Budget { return Budget{MaxDuration: d} }
func BothBudget(n int, d time.Duration) Budget {
	return Budget{MaxIterations: n, MaxDuration: d}
}

// solverStatus tracks a Solver's lifecycle for Status().
type solverStatus int32

const (
	statusIdle solverStatus = iota
	statusRunning
	statusDone
	statusCancelled
)

func (s solverStatus) String() string {
	switch s {
	case statusRunning:
		return "running"
	case statusDone:
		return "done"
	case statusCancelled:
		return "cancelled"
	default:
		return "idle"
	}
}

// Report summarizes one completed (or cancelled) solve.
type Report struct {
	Iterations int
	Duration   time.Duration
	Cancelled  bool
	Best       *AcceptedSolution
	Population []*AcceptedSolution
}

// Solver runs the LNS loop of spec.md §4.11 across params.Workers
// goroutines sharing one Population, synchronized generation by
// generation through worker.CancellableBarrier (spec.md §4.12).
type Solver struct {
	problem     *Problem
	params      SolverParams
	constraints *ConstraintSet

	popMu      sync.Mutex
	population *Population

	status     int32 // atomic solverStatus
	cancelled  int32 // atomic bool, polled at iteration boundaries (spec.md §7)
	iterations int64 // atomic, total across all workers
}

func NewSolver(problem *Problem, params SolverParams, constraints *ConstraintSet) *Solver {
	if constraints == nil {
		constraints = NewDefaultConstraintSet()
	}
	workers := params.Workers
	if workers < 1 {
		workers = 1
	}
	params.Workers = workers
	return &Solver{
		problem:     problem,
		params:      params,
		constraints: constraints,
		population:  NewPopulation(maxInt(params.MaxSolutions, 1), params.EliteFrac),
	}
}

func (s *Solver) Status() string { return solverStatus(atomic.LoadInt32(&s.status)).String() }

// Cancel stops every worker at its next iteration boundary. Safe to call
// concurrently with Run, and idempotent.
func (s *Solver) Cancel() {
	atomic.StoreInt32(&s.cancelled, 1)
}

func (s *Solver) isCancelled() bool { return atomic.LoadInt32(&s.cancelled) != 0 }

// BestSolutions returns a snapshot of the current population, best first.
func (s *Solver) BestSolutions() []*AcceptedSolution {
	s.popMu.Lock()
	defer s.popMu.Unlock()
	out := make([]*AcceptedSolution, len(s.population.Solutions()))
	copy(out, s.population.Solutions())
	return out
}

// Run executes the solve to completion: params.Workers goroutines each
// run the per-iteration LNS loop (spec.md §4.11) against the shared
// Population, rendezvousing every generation at a CancellableBarrier
// whose leader checks the termination budget and purges nothing else
// (each worker's InsertionEngine is private, so there's no shared cache
// to sweep across workers). Run blocks until every worker has observed
// termination or cancellation.
func (s *Solver) Run(budget Budget) *Report {
	atomic.StoreInt32(&s.status, int32(statusRunning))
	start := timeNow()

	maxIterations := budget.MaxIterations
	if maxIterations == 0 {
		maxIterations = s.params.MaxIterations
	}
	maxDuration := budget.MaxDuration
	if maxDuration == 0 {
		maxDuration = s.params.MaxDuration
	}

	master := NewPartitionedRNG(s.params.Seed)
	coord := worker.NewCoordinator(s.params.Workers)

	coord.Run(func(index int, barrier *worker.CancellableBarrier) {
		s.runWorker(index, master.ForWorker(index), barrier, start, maxIterations, maxDuration)
	})

	// The leader also sets the cancel flag once the budget is spent, so a
	// run counts as cancelled only if its budget was not yet exhausted.
	// Cancellation is a normal completion: the status is "done" either way.
	exhausted := (maxIterations > 0 && int(atomic.LoadInt64(&s.iterations)) >= maxIterations) ||
		(maxDuration > 0 && timeNow().Sub(start) >= maxDuration)
	cancelled := s.isCancelled() && !exhausted
	atomic.StoreInt32(&s.status, int32(statusDone))

	s.popMu.Lock()
	best, _ := s.population.Best()
	solutions := make([]*AcceptedSolution, len(s.population.Solutions()))
	copy(solutions, s.population.Solutions())
	s.popMu.Unlock()

	return &Report{
		Iterations: int(atomic.LoadInt64(&s.iterations)),
		Duration:   timeNow().Sub(start),
		Cancelled:  cancelled,
		Best:       best,
		Population: solutions,
	}
}

// runWorker is one goroutine's contribution to the solve: it repeats the
// single-iteration body of spec.md §4.11 until the shared budget is
// exhausted or Cancel is called, rendezvousing with its peers once per
// generation so the leader can evaluate the termination condition on a
// consistent, shared iteration count rather than each worker guessing
// independently.
func (s *Solver) runWorker(index int, rng *PartitionedRNG, barrier *worker.CancellableBarrier, start time.Time, maxIterations int, maxDuration time.Duration) {
	engine := NewInsertionEngine(s.constraints)
	noiser := NewJobNoiser(s.params.Noise, rng.seed)

	for {
		if s.isCancelled() {
			barrier.Cancel()
			return
		}

		s.runIteration(index, rng, engine, noiser)
		atomic.AddInt64(&s.iterations, 1)

		result := barrier.Wait()
		if result.IsCancelled() {
			return
		}
		if result.IsLeader() {
			done := (maxIterations > 0 && int(atomic.LoadInt64(&s.iterations)) >= maxIterations) ||
				(maxDuration > 0 && timeNow().Sub(start) >= maxDuration)
			if done {
				s.Cancel()
				barrier.Cancel()
				return
			}
		}
	}
}

// runIteration is the body of spec.md §4.11's numbered steps, run by one
// worker against its own working solution and insertion-engine cache:
//  1. Select a parent from the shared population (empty parent if none yet).
//  2. Clone it into a working solution.
//  3. Ruin: pick a strategy, remove a ratio-sized chunk of assigned jobs.
//  4. Recreate: reinsert unassigned jobs with the configured strategy/strategies.
//  5. (Noise is applied inside recreate's insertion ranking, not here.)
//  6. Intensify (SPEC_FULL.md §4.11 supplement): run first-improvement
//     2-opt over every route, accepting only strictly-improving reversals.
//  7. Score the fully-recreated-and-intensified solution and ask the acceptor.
//  8. Submit an accepted candidate to the population. The insertion cache
//     is cleared at the start of each iteration (it's only valid against
//     that iteration's working solution).
func (s *Solver) runIteration(index int, rng *PartitionedRNG, engine *InsertionEngine, noiser *JobNoiser) {
	engine.Clear()

	s.popMu.Lock()
	parent, ok := s.params.Selector.Select(s.population, rng.ForSubsystem(SubsystemSelector))
	populationSize := s.population.Len()
	best, hasBest := s.population.Best()
	worst, hasWorst := s.population.Worst()
	s.popMu.Unlock()

	var working *WorkingSolution
	if ok {
		working = parent.Solution.Clone()
	} else {
		working = NewWorkingSolution(s.problem)
	}

	ruinRNG := rng.ForSubsystem(SubsystemRuin)
	strategy := PickRuinStrategy(s.params.Ruin, ruinRNG)
	Ruin(strategy, s.params.Ruin, working, ruinRNG)

	recreateRNG := rng.ForSubsystem(SubsystemRecreate)
	strategy2 := s.pickRecreateStrategy(recreateRNG)
	Recreate(strategy2, working, engine, s.params.Recreate.InsertOnFailure, recreateRNG, noiser)

	Intensify(s.params.Intensify, s.constraints, s.problem, working)

	candidate := s.constraints.ComputeScore(s.problem, working)
	candidate.CheckFinite()

	var bestScore, worstScore Score
	if hasBest {
		bestScore = best.Score
	} else {
		bestScore = candidate
	}
	if hasWorst {
		worstScore = worst.Score
	} else {
		worstScore = candidate
	}

	ctx := AcceptContext{
		Iteration:     int(atomic.LoadInt64(&s.iterations)),
		MaxIterations: s.params.MaxIterations,
		MaxSolutions:  s.params.MaxSolutions,
		Rng:           rng.ForSubsystem(SubsystemAcceptor),
	}
	if s.params.Acceptor.Accept(ctx, populationSize, bestScore, worstScore, candidate) {
		s.popMu.Lock()
		s.population.Insert(working, candidate)
		s.popMu.Unlock()
	}
}

// pickRecreateStrategy chooses among the configured recreate strategies:
// round-robin by iteration count, or a uniform random draw.
func (s *Solver) pickRecreateStrategy(rng *rand.Rand) RecreateStrategy {
	strategies := s.params.Recreate.Strategies
	if len(strategies) == 0 {
		return RecreateStrategy{Kind: RecreateBestInsertion, Order: OrderRandom}
	}
	if len(strategies) == 1 {
		return strategies[0]
	}
	if s.params.Recreate.Mode == RecreateWeightedRandom {
		return strategies[rng.Intn(len(strategies))]
	}
	i := int(atomic.LoadInt64(&s.iterations)) % len(strategies)
	return strategies[i]
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// timeNow is the sole indirection point for wall-clock reads, isolated so
// tests can fake elapsed time without the solver depending on a clock
// interface throughout.
var timeNow = time.Now
