package optimizer

import (
	"math/rand"
	"sort"
)

// RecreateOrder selects the iteration order Best-insertion drives
// unassigned jobs in (spec.md §4.6).
type RecreateOrder int

const (
	OrderRandom RecreateOrder = iota
	OrderDemandDesc
	OrderFarDesc
	OrderCloseAsc
	OrderTimeWindowAsc
)

// RecreateKind tags which strategy a RecreateStrategy value runs, mirroring
// the ruin/acceptor/selector tagged-dispatch pattern elsewhere in this
// package instead of an open interface registry.
type RecreateKind int

const (
	RecreateBestInsertion RecreateKind = iota
	RecreateKRegret
)

// RecreateStrategy is a single configured recreate strategy: either
// Best-insertion with an ordering, or k-Regret with a k.
type RecreateStrategy struct {
	Kind  RecreateKind
	Order RecreateOrder // meaningful when Kind == RecreateBestInsertion
	K     int           // meaningful when Kind == RecreateKRegret
}

// Recreate drives solution to a fully- (or best-effort-) assigned state
// using the given strategy, insertion engine, and job-noise injector. rng
// is the per-subsystem PRNG partition reserved for recreate (spec.md §4.11
// step 5's per-job noise seeding is handled by noiser, not rng, so
// equivalent candidates perturb identically within one iteration
// regardless of draw order elsewhere).
func Recreate(strategy RecreateStrategy, solution *WorkingSolution, engine *InsertionEngine, insertOnFailure bool, rng *rand.Rand, noiser *JobNoiser) {
	switch strategy.Kind {
	case RecreateKRegret:
		kRegret(strategy.K, solution, engine, insertOnFailure, noiser)
	default:
		bestInsertion(strategy.Order, solution, engine, insertOnFailure, rng, noiser)
	}
}

// bestInsertion orders the unassigned jobs per spec.md §4.6 and inserts
// each, in turn, at its globally best position.
func bestInsertion(order RecreateOrder, solution *WorkingSolution, engine *InsertionEngine, insertOnFailure bool, rng *rand.Rand, noiser *JobNoiser) {
	services := orderServices(order, solution, rng)
	for _, id := range services {
		if !solution.IsUnassignedService(id) {
			continue // already placed, e.g. a dependent of a prior shipment insertion
		}
		insertBestService(solution, engine, id, insertOnFailure, noiser)
	}

	for _, id := range solution.UnassignedShipments() {
		insertBestShipment(solution, engine, id, insertOnFailure, noiser)
	}
}

func insertBestService(solution *WorkingSolution, engine *InsertionEngine, id ServiceIdx, insertOnFailure bool, noiser *JobNoiser) {
	ins, score, found := engine.BestServicePosition(solution, id, insertOnFailure, noiser)
	if !found {
		return
	}
	if !score.IsFeasible() && !insertOnFailure {
		return
	}
	applyServiceInsertion(solution, ins)
}

func insertBestShipment(solution *WorkingSolution, engine *InsertionEngine, id ShipmentIdx, insertOnFailure bool, noiser *JobNoiser) {
	ins, score, found := engine.BestShipmentPosition(solution, id, insertOnFailure)
	if !found {
		return
	}
	if !score.IsFeasible() && !insertOnFailure {
		return
	}
	applyShipmentInsertion(solution, ins)
}

func applyServiceInsertion(solution *WorkingSolution, ins Insertion) {
	if ins.NewRoute {
		routeIdx := solution.OpenNewRoute(ins.Vehicle)
		solution.InsertService(routeIdx, ins.Position, ins.Service)
		return
	}
	solution.InsertService(ins.Route, ins.Position, ins.Service)
}

func applyShipmentInsertion(solution *WorkingSolution, ins Insertion) {
	if ins.NewRoute {
		routeIdx := solution.OpenNewRoute(ins.Vehicle)
		solution.InsertShipment(routeIdx, ins.Position, ins.DeliveryPosition, ins.Shipment)
		return
	}
	solution.InsertShipment(ins.Route, ins.Position, ins.DeliveryPosition, ins.Shipment)
}

// orderServices materializes the unassigned services in the requested
// order. Far/Close are measured as travel distance from the first
// vehicle's start location (the depot, in the common single-depot case);
// TimeWindow orders by earliest window end, services with no windows last.
func orderServices(order RecreateOrder, solution *WorkingSolution, rng *rand.Rand) []ServiceIdx {
	ids := solution.UnassignedServices()
	problem := solution.Problem()

	switch order {
	case OrderRandom:
		rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	case OrderDemandDesc:
		sort.SliceStable(ids, func(i, j int) bool {
			return problem.Service(ids[i]).Demand.Sum() > problem.Service(ids[j]).Demand.Sum()
		})
	case OrderFarDesc, OrderCloseAsc:
		depot := depotLocation(problem)
		dist := func(id ServiceIdx) float64 {
			return problem.TravelDistance(0, depot, problem.Service(id).Location)
		}
		sort.SliceStable(ids, func(i, j int) bool {
			if order == OrderFarDesc {
				return dist(ids[i]) > dist(ids[j])
			}
			return dist(ids[i]) < dist(ids[j])
		})
	case OrderTimeWindowAsc:
		sort.SliceStable(ids, func(i, j int) bool {
			a, aok := earliestWindowEnd(problem.Service(ids[i]).TimeWindows)
			b, bok := earliestWindowEnd(problem.Service(ids[j]).TimeWindows)
			if aok != bok {
				return aok // windowed jobs sort before unwindowed ones
			}
			return a < b
		})
	}
	return ids
}

func depotLocation(problem *Problem) LocationIdx {
	if problem.NumVehicles() == 0 {
		return 0
	}
	return problem.Vehicle(0).StartLocation
}

func earliestWindowEnd(windows []TimeWindow) (int64, bool) {
	if len(windows) == 0 {
		return 0, false
	}
	best := windows[0].End
	for _, w := range windows[1:] {
		if w.End < best {
			best = w.End
		}
	}
	return best, true
}

// regretCandidate tracks one unassigned job's best insertion and its
// regret value for the k-Regret comparison.
type regretCandidate struct {
	service    ServiceIdx
	isShipment bool
	shipment   ShipmentIdx
	best       Insertion
	bestScore  Score
	regret     float64
	found      bool
}

// kRegret repeatedly picks the unassigned job with the largest regret —
// the sum of the gaps between each of its k best insertion scores and
// the best one (shipments get regret 0) — and inserts it
// at its best position, per spec.md §4.6. Regret favors jobs that get much
// worse if deferred, the reason k-Regret tends to beat Best-insertion on
// tightly constrained instances. Tie-breaking noise (spec.md §4.11 step 5)
// is scoped to Best-insertion's position ranking; k-Regret's own ranking
// (which job has the largest regret) stays exact so regret values remain
// directly comparable run to run.
func kRegret(k int, solution *WorkingSolution, engine *InsertionEngine, insertOnFailure bool, noiser *JobNoiser) {
	if k < 1 {
		k = 1
	}
	_ = noiser

	for {
		services := solution.UnassignedServices()
		shipments := solution.UnassignedShipments()
		if len(services) == 0 && len(shipments) == 0 {
			return
		}

		var candidates []regretCandidate
		for _, id := range services {
			c := regretCandidate{service: id}
			scores := topKServiceScores(engine, solution, id, k, insertOnFailure)
			if len(scores) == 0 {
				candidates = append(candidates, c)
				continue
			}
			c.found = true
			c.best = scores[0].ins
			c.bestScore = scores[0].score
			c.regret = regretOf(scores)
			candidates = append(candidates, c)
		}
		for _, id := range shipments {
			ins, score, found := engine.BestShipmentPosition(solution, id, insertOnFailure)
			c := regretCandidate{shipment: id, isShipment: true, found: found, best: ins, bestScore: score}
			candidates = append(candidates, c)
		}

		chosen, ok := pickHighestRegret(candidates)
		if !ok {
			return
		}
		if !chosen.found {
			// Leave unreachable jobs unassigned rather than loop forever.
			if chosen.isShipment {
				// no candidate position exists anywhere (e.g. no available vehicle)
			}
			return
		}
		if !chosen.bestScore.IsFeasible() && !insertOnFailure {
			return
		}
		if chosen.isShipment {
			applyShipmentInsertion(solution, chosen.best)
		} else {
			applyServiceInsertion(solution, chosen.best)
		}
	}
}

type scoredInsertion struct {
	ins   Insertion
	score Score
}

// topKServiceScores evaluates every route position for id and returns the
// k best by lexicographic score (smallest first). It does not use the
// shared cache's single-best entry, since k-Regret needs more than the
// single best per route.
func topKServiceScores(engine *InsertionEngine, solution *WorkingSolution, id ServiceIdx, k int, insertOnFailure bool) []scoredInsertion {
	problem := solution.Problem()
	var all []scoredInsertion

	for routeIdx, route := range solution.Routes() {
		vehicle := problem.Vehicle(route.Vehicle)
		for pos := 0; pos <= route.Len(); pos++ {
			ins := Insertion{Kind: InsertService, Service: id, Route: RouteIdx(routeIdx), Position: pos}
			ctx := &InsertionContext{problem: problem, solution: solution, route: route, vehicle: vehicle, insertion: ins, InsertOnFailure: insertOnFailure}
			score := engine.constraints.ComputeInsertionScore(ctx, nil)
			all = append(all, scoredInsertion{ins, score})
		}
	}
	if vehicle, ok := solution.AvailableVehicle(); ok {
		ins := Insertion{Kind: InsertService, Service: id, NewRoute: true, Vehicle: vehicle}
		ctx := &InsertionContext{problem: problem, solution: solution, route: nil, vehicle: problem.Vehicle(vehicle), insertion: ins, InsertOnFailure: insertOnFailure}
		score := engine.constraints.ComputeInsertionScore(ctx, nil)
		all = append(all, scoredInsertion{ins, score})
	}

	sort.SliceStable(all, func(i, j int) bool { return all[i].score.Less(all[j].score) })
	if len(all) > k {
		all = all[:k]
	}
	return all
}

func regretOf(scores []scoredInsertion) float64 {
	if len(scores) == 0 {
		return 0
	}
	var regret float64
	best := scores[0].score.Total()
	for _, s := range scores {
		regret += s.score.Total() - best
	}
	return regret
}

// pickHighestRegret breaks ties by smallest best-insertion score, then by
// smallest job id (services before shipments, spec.md §4.6).
func pickHighestRegret(candidates []regretCandidate) (regretCandidate, bool) {
	if len(candidates) == 0 {
		return regretCandidate{}, false
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		switch {
		case c.regret > best.regret:
			best = c
		case c.regret == best.regret && c.found && best.found && c.bestScore.Less(best.bestScore):
			best = c
		case c.regret == best.regret && c.found && best.found && c.bestScore == best.bestScore:
			if !c.isShipment && !best.isShipment && c.service < best.service {
				best = c
			}
		}
	}
	return best, true
}
