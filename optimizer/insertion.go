package optimizer

// InsertionEngine evaluates candidate insertions against a constraint set
// and caches the result of "best position for job j on route r" keyed by
// the route's version, so an unchanged route never gets re-scanned within
// the same LNS iteration (spec.md §4.5, grounded on original_source's
// insertion_cache.rs).
type InsertionEngine struct {
	constraints *ConstraintSet
	cache       map[cacheKey]cacheEntry
}

type cacheKey struct {
	route   RouteIdx
	version uint64
	service ServiceIdx
}

type cacheEntry struct {
	score     Score
	insertion Insertion
	found     bool
}

func NewInsertionEngine(constraints *ConstraintSet) *InsertionEngine {
	return &InsertionEngine{
		constraints: constraints,
		cache:       make(map[cacheKey]cacheEntry),
	}
}

// Clear drops every cache entry. Called between LNS iterations so a new
// acceptance cycle starts cold (an iteration's cache is only valid against
// the working solution it was built against).
func (e *InsertionEngine) Clear() {
	e.cache = make(map[cacheKey]cacheEntry)
}

// Sweep evicts entries whose stored version no longer matches the route's
// current version (spec.md §4.5's purge policy), for callers that want to
// keep warm entries across an iteration instead of a full Clear.
func (e *InsertionEngine) Sweep(solution *WorkingSolution) {
	for key := range e.cache {
		if int(key.route) >= solution.NumRoutes() || solution.Route(key.route).Version() != key.version {
			delete(e.cache, key)
		}
	}
}

// BestServicePosition returns the best-scoring insertion of service id
// anywhere in the working solution: every existing route's every position,
// plus opening a new route when the fleet permits it. insertOnFailure
// mirrors SolverParams.Recreate.InsertOnFailure and feeds the constraint
// set's early-exit policy.
func (e *InsertionEngine) BestServicePosition(solution *WorkingSolution, id ServiceIdx, insertOnFailure bool, noiser *JobNoiser) (Insertion, Score, bool) {
	problem := solution.Problem()
	var best Insertion
	var bestScore Score
	found := false
	seed := int64(id)

	for routeIdx, route := range solution.Routes() {
		if entry, ok := e.cachedBest(RouteIdx(routeIdx), route, id); ok {
			if entry.found && (!found || rankLess(noiser, seed, entry.score, bestScore)) {
				best, bestScore, found = entry.insertion, entry.score, true
			}
			continue
		}
		ins, score, ok := e.bestPositionOnRoute(problem, solution, RouteIdx(routeIdx), route, id, insertOnFailure, func() *Score {
			if found {
				return &bestScore
			}
			return nil
		})
		e.storeCache(RouteIdx(routeIdx), route.Version(), id, ins, score, ok)
		if ok && (!found || rankLess(noiser, seed, score, bestScore)) {
			best, bestScore, found = ins, score, true
		}
	}

	if vehicle, ok := solution.AvailableVehicle(); ok {
		ins := Insertion{Kind: InsertService, Service: id, NewRoute: true, Vehicle: vehicle, Position: 0}
		ctx := &InsertionContext{problem: problem, solution: solution, route: nil, vehicle: problem.Vehicle(vehicle), insertion: ins, InsertOnFailure: insertOnFailure}
		var ref *Score
		if found {
			ref = &bestScore
		}
		score := e.constraints.ComputeInsertionScore(ctx, ref)
		if score.IsFeasible() || insertOnFailure || !found {
			if !found || rankLess(noiser, seed, score, bestScore) {
				best, bestScore, found = ins, score, true
			}
		}
	}

	return best, bestScore, found
}

// rankLess compares two candidate scores for ranking purposes only: hard
// dominates exactly (noise never overrides feasibility), and when both
// candidates tie on hard, noiser (if non-nil) perturbs the soft component
// before comparing — spec.md §4.11 step 5's tie-breaking noise, injected
// only at comparison time and never persisted into the Score actually
// applied or stored.
func rankLess(noiser *JobNoiser, jobSeed int64, a, b Score) bool {
	if a.Hard != b.Hard {
		return a.Hard < b.Hard
	}
	softA, softB := a.Soft, b.Soft
	if noiser != nil {
		softA = noiser.Perturb(jobSeed, softA)
		softB = noiser.Perturb(jobSeed, softB)
	}
	return softA < softB
}

func (e *InsertionEngine) cachedBest(routeIdx RouteIdx, route *Route, id ServiceIdx) (cacheEntry, bool) {
	entry, ok := e.cache[cacheKey{routeIdx, route.Version(), id}]
	return entry, ok
}

func (e *InsertionEngine) storeCache(routeIdx RouteIdx, version uint64, id ServiceIdx, ins Insertion, score Score, found bool) {
	e.cache[cacheKey{routeIdx, version, id}] = cacheEntry{score: score, insertion: ins, found: found}
}

// bestPositionOnRoute scans every position 0..=len on one route, keeping
// the lexicographically smallest score and breaking ties toward the
// smaller position index (spec.md §4.5).
func (e *InsertionEngine) bestPositionOnRoute(problem *Problem, solution *WorkingSolution, routeIdx RouteIdx, route *Route, id ServiceIdx, insertOnFailure bool, bestSoFar func() *Score) (Insertion, Score, bool) {
	vehicle := problem.Vehicle(route.Vehicle)
	found := false
	var best Insertion
	var bestScore Score

	for pos := 0; pos <= route.Len(); pos++ {
		ins := Insertion{Kind: InsertService, Service: id, Route: routeIdx, Position: pos}
		ctx := &InsertionContext{problem: problem, solution: solution, route: route, vehicle: vehicle, insertion: ins, InsertOnFailure: insertOnFailure}
		ref := bestSoFar()
		if found && (ref == nil || bestScore.Less(*ref)) {
			ref = &bestScore
		}
		score := e.constraints.ComputeInsertionScore(ctx, ref)
		if !found || score.Less(bestScore) {
			best, bestScore, found = ins, score, true
		}
	}
	return best, bestScore, found
}

// BestShipmentPosition evaluates every (pickupPos, deliveryPos) pair with
// pickupPos < deliveryPos on every route via apply-and-diff: the pickup
// and delivery legs interact too much (shared demand direction, two
// schedule shifts) for the O(1) marginal formulas the single-activity
// case uses, so this clones the route, splices both activities in, and
// diffs the full constraint score before/after. Shipments are the
// uncommon path; routes are small, so the extra cost is bounded.
func (e *InsertionEngine) BestShipmentPosition(solution *WorkingSolution, id ShipmentIdx, insertOnFailure bool) (Insertion, Score, bool) {
	problem := solution.Problem()
	sh := problem.Shipment(id)
	var best Insertion
	var bestScore Score
	found := false

	evaluate := func(routeIdx RouteIdx, base *Route, newRoute bool, vehicle VehicleIdx) {
		n := 0
		if base != nil {
			n = base.Len()
		}
		for p := 0; p <= n; p++ {
			for d := p + 1; d <= n+1; d++ {
				trial := emptyOrClone(base, vehicle)
				trial.insertAt(p, pickupActivity(sh, id), problem)
				trial.insertAt(d, deliveryActivity(sh, id), problem)
				before := Zero()
				if base != nil {
					before = routeScore(e.constraints, problem, base)
				}
				after := routeScore(e.constraints, problem, trial)
				delta := after.Sub(before)
				if !found || delta.Less(bestScore) {
					best = Insertion{Kind: InsertShipment, Shipment: id, Route: routeIdx, NewRoute: newRoute, Vehicle: vehicle, Position: p, DeliveryPosition: d}
					bestScore = delta
					found = true
				}
			}
		}
	}

	for routeIdx, route := range solution.Routes() {
		evaluate(RouteIdx(routeIdx), route, false, route.Vehicle)
	}
	if vehicle, ok := solution.AvailableVehicle(); ok {
		evaluate(0, nil, true, vehicle)
	}
	_ = insertOnFailure
	return best, bestScore, found
}

func emptyOrClone(r *Route, vehicle VehicleIdx) *Route {
	if r == nil {
		return NewRoute(vehicle)
	}
	return r.Clone()
}

func pickupActivity(sh *Shipment, id ShipmentIdx) Activity {
	return Activity{Kind: ActivityPickup, Shipment: id, Location: sh.Pickup.Location, Duration: sh.Pickup.Duration, Windows: sh.Pickup.TimeWindows, Demand: sh.Demand}
}

func deliveryActivity(sh *Shipment, id ShipmentIdx) Activity {
	return Activity{Kind: ActivityDelivery, Shipment: id, Location: sh.Delivery.Location, Duration: sh.Delivery.Duration, Windows: sh.Delivery.TimeWindows, Demand: sh.Demand}
}

// routeScore sums every route constraint's full score for one route,
// including the vehicle fixed cost only when non-empty — callers needing
// the new-route fixed-cost transition add it separately.
func routeScore(cs *ConstraintSet, problem *Problem, route *Route) Score {
	var scores []Score
	for _, rc := range cs.Route {
		scores = append(scores, rc.ComputeRouteScore(problem, route))
	}
	return Sum(scores)
}
