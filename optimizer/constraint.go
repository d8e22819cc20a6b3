package optimizer

// InsertionContext bundles everything a constraint's marginal scorer
// needs to evaluate a candidate insertion without mutating the working
// solution. problem and solution are never modified through context.
type InsertionContext struct {
	problem  *Problem
	solution *WorkingSolution
	route    *Route // nil when Insertion.NewRoute is true
	vehicle  *Vehicle
	insertion Insertion

	// InsertOnFailure mirrors SolverParams.Recreate.InsertOnFailure: when
	// false, the soft pass may be skipped once the full hard pass has
	// found the candidate infeasible and a feasible alternative exists
	// (spec.md §4.4's early-exit policy). The hard pass always runs.
	InsertOnFailure bool
}

func (c *InsertionContext) Problem() *Problem        { return c.problem }
func (c *InsertionContext) Solution() *WorkingSolution { return c.solution }
func (c *InsertionContext) Insertion() Insertion     { return c.insertion }
func (c *InsertionContext) Vehicle() *Vehicle        { return c.vehicle }

// Route returns the route being inserted into. For a new-route insertion
// there is no existing route yet; callers needing route state should
// treat it as a fresh, empty route on vehicle c.vehicle.
func (c *InsertionContext) Route() *Route { return c.route }

// RouteConstraint scores a route or an insertion into a route.
type RouteConstraint interface {
	Level() ScoreLevel
	ComputeRouteScore(problem *Problem, route *Route) Score
	ComputeInsertionScore(ctx *InsertionContext) Score
}

// GlobalConstraint scores the whole working solution (e.g. the
// unassigned-job penalty, which has no meaningful per-route form).
type GlobalConstraint interface {
	Level() ScoreLevel
	ComputeGlobalScore(solution *WorkingSolution) Score
	ComputeInsertionScore(ctx *InsertionContext) Score
}

// ConstraintSet is the full set of active constraints, dispatched as
// tagged collections rather than an open plugin registry: adding a new
// constraint family means adding it to these two slices, same as the
// teacher's InstanceScheduler/scorer registries.
type ConstraintSet struct {
	Route  []RouteConstraint
	Global []GlobalConstraint
}

// NewDefaultConstraintSet assembles the constraints enumerated in
// spec.md §4.4.
func NewDefaultConstraintSet() *ConstraintSet {
	return &ConstraintSet{
		Route: []RouteConstraint{
			&TransportCostConstraint{},
			&WaitingDurationConstraint{},
			&VehicleFixedCostConstraint{},
			&TimeWindowConstraint{},
			&CapacityConstraint{},
			&MaximumActivitiesConstraint{},
			&SkillsConstraint{},
			&ShipmentPrecedenceConstraint{},
		},
		Global: []GlobalConstraint{
			&UnassignedJobConstraint{},
		},
	}
}

// ComputeScore is the full, non-marginal score of a working solution:
// the sum over every route constraint applied to every route, plus every
// global constraint applied to the whole solution. Used after recreate
// completes an iteration (C11 step 6) and by tests asserting delta
// consistency (invariant 2 in spec.md §8).
func (cs *ConstraintSet) ComputeScore(problem *Problem, solution *WorkingSolution) Score {
	var scores []Score
	for _, route := range solution.Routes() {
		for _, rc := range cs.Route {
			scores = append(scores, rc.ComputeRouteScore(problem, route))
		}
	}
	for _, gc := range cs.Global {
		scores = append(scores, gc.ComputeGlobalScore(solution))
	}
	return Sum(scores)
}

// ComputeRouteScoreOnly sums every route constraint (hard and soft) over
// a single route, without the other routes or the global constraints.
// Used by the intensify stage (C11's post-recreate local search) to price
// a candidate move against just the one route it touches, instead of
// paying for a whole-solution ComputeScore on every candidate.
func (cs *ConstraintSet) ComputeRouteScoreOnly(problem *Problem, route *Route) Score {
	var scores []Score
	for _, rc := range cs.Route {
		scores = append(scores, rc.ComputeRouteScore(problem, route))
	}
	return Sum(scores)
}

// ComputeInsertionScore is the marginal score delta an insertion would
// produce, per spec.md §4.4's composition rule: every hard constraint is
// summed first, unconditionally and in full (so the returned Hard value
// always reflects every simultaneous hard violation, not just the
// first); only once that full hard pass is done is the soft pass itself
// skipped — and only when all three of the skip conditions hold: the
// hard pass came back infeasible, the caller has disabled
// insert-on-failure, and a feasible bestScore is already on hand (so
// there's a feasible alternative to prefer and nothing is lost by not
// computing this candidate's soft cost).
func (cs *ConstraintSet) ComputeInsertionScore(ctx *InsertionContext, bestScore *Score) Score {
	score := Zero()
	for _, rc := range cs.Route {
		if rc.Level() != Hard {
			continue
		}
		score = score.Add(rc.ComputeInsertionScore(ctx))
	}
	for _, gc := range cs.Global {
		if gc.Level() != Hard {
			continue
		}
		score = score.Add(gc.ComputeInsertionScore(ctx))
	}

	skipOnFailure := !ctx.InsertOnFailure && bestScore != nil && bestScore.IsFeasible() && score.IsInfeasible()
	if skipOnFailure {
		return score
	}

	for _, rc := range cs.Route {
		if rc.Level() != Soft {
			continue
		}
		score = score.Add(rc.ComputeInsertionScore(ctx))
	}
	for _, gc := range cs.Global {
		if gc.Level() != Soft {
			continue
		}
		score = score.Add(gc.ComputeInsertionScore(ctx))
	}
	return score
}
