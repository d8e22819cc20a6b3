package optimizer

// maximumActivitiesWeight and skillsWeight give a concrete hard-score
// magnitude to binary violations, matching the WEIGHT=1000.0 convention
// original_source's maximum_activities_constraint.rs uses: any hard
// violation, however small the underlying count, must outrank the
// largest plausible soft score so Score.Cmp never mistakes a feasible
// swap for an improvement over an infeasible one.
const (
	maximumActivitiesWeight = 1000.0
	skillsWeight            = 1000.0
	shipmentPrecedenceWeight = 1000.0
)

// endpointsOf returns the location an insertion's new activity would sit
// between: prevLoc/nextLoc are the route's current neighbors at pos, and
// hadEdge reports whether an edge already existed there to be split (false
// only when the route is empty before this insertion, i.e. a brand new
// route or the first activity on an existing empty one).
func endpointsOf(problem *Problem, vehicle *Vehicle, route *Route, pos int) (prevLoc, nextLoc LocationIdx, hadEdge bool) {
	n := 0
	if route != nil {
		n = route.Len()
	}
	if n == 0 {
		return vehicle.StartLocation, vehicle.EndLocation, false
	}
	if pos == 0 {
		prevLoc = vehicle.StartLocation
	} else {
		prevLoc = route.Activity(pos - 1).Location
	}
	if pos == n {
		nextLoc = vehicle.EndLocation
	} else {
		nextLoc = route.Activity(pos).Location
	}
	return prevLoc, nextLoc, true
}

// TransportCostConstraint is the vehicle-profile-aware travel cost of the
// edges a route drives, soft-scored (spec.md §4.4). Because Problem.TravelCost
// takes the requesting vehicle, a vehicle's Profile automatically selects
// its own distance/time/cost matrices — the "profile-aware transport cost"
// supplement in SPEC_FULL.md is this constraint, not a separate one.
type TransportCostConstraint struct{}

func (TransportCostConstraint) Level() ScoreLevel { return Soft }

func (TransportCostConstraint) ComputeRouteScore(problem *Problem, route *Route) Score {
	return SoftOf(routeTransportCost(problem, route))
}

func (TransportCostConstraint) ComputeInsertionScore(ctx *InsertionContext) Score {
	problem := ctx.Problem()
	vehicle := ctx.Vehicle()
	ins := ctx.Insertion()

	if ins.Kind != InsertService {
		return Zero()
	}
	svc := problem.Service(ins.Service)
	prevLoc, nextLoc, hadEdge := endpointsOf(problem, vehicle, ctx.Route(), ins.Position)

	added := problem.TravelCost(vehicle, prevLoc, svc.Location) + problem.TravelCost(vehicle, svc.Location, nextLoc)
	var removed float64
	if hadEdge {
		removed = problem.TravelCost(vehicle, prevLoc, nextLoc)
	}
	return SoftOf(added - removed)
}

// routeTransportCost is the full, non-marginal travel cost of a route:
// every driven edge (including the implicit depot legs), using the
// vehicle's own cost coefficients or cost matrix.
func routeTransportCost(problem *Problem, route *Route) float64 {
	if route.IsEmpty() {
		return 0
	}
	vehicle := problem.Vehicle(route.Vehicle)
	var total float64
	prev := vehicle.StartLocation
	for _, act := range route.Activities() {
		total += problem.TravelCost(vehicle, prev, act.Location)
		prev = act.Location
	}
	total += problem.TravelCost(vehicle, prev, vehicle.EndLocation)
	return total
}

// WaitingDurationConstraint charges the optional per-second waiting cost
// (spec.md §4.4), scored fully and marginally via the schedule-shift
// delta shared with TimeWindowConstraint.
type WaitingDurationConstraint struct{}

func (WaitingDurationConstraint) Level() ScoreLevel { return Soft }

func (WaitingDurationConstraint) ComputeRouteScore(problem *Problem, route *Route) Score {
	if !problem.HasWaitingDurationCost() {
		return Zero()
	}
	return SoftOf(problem.WaitingDurationCost(route.TotalWaitingDuration()))
}

func (WaitingDurationConstraint) ComputeInsertionScore(ctx *InsertionContext) Score {
	problem := ctx.Problem()
	if !problem.HasWaitingDurationCost() || ctx.Insertion().Kind != InsertService {
		return Zero()
	}
	delta := scheduleShiftDelta(problem, ctx.Vehicle(), ctx.Route(), ctx.Insertion().Position, insertionActivity(problem, ctx.Insertion()))
	return SoftOf(problem.WaitingDurationCost(delta.waitingDelta))
}

// VehicleFixedCostConstraint charges a vehicle's fixed cost exactly once,
// the moment its route stops being empty.
type VehicleFixedCostConstraint struct{}

func (VehicleFixedCostConstraint) Level() ScoreLevel { return Soft }

func (VehicleFixedCostConstraint) ComputeRouteScore(problem *Problem, route *Route) Score {
	if route.IsEmpty() {
		return Zero()
	}
	return SoftOf(problem.FixedVehicleCost(route.Vehicle))
}

func (VehicleFixedCostConstraint) ComputeInsertionScore(ctx *InsertionContext) Score {
	route := ctx.Route()
	if route != nil && !route.IsEmpty() {
		return Zero()
	}
	vehicle := ctx.Insertion().Vehicle
	if route != nil {
		vehicle = route.Vehicle
	}
	return SoftOf(ctx.Problem().FixedVehicleCost(vehicle))
}

// TimeWindowConstraint is hard: any activity beginning after its chosen
// time window's end accrues lateness, summed across the route.
type TimeWindowConstraint struct{}

func (TimeWindowConstraint) Level() ScoreLevel { return Hard }

func (TimeWindowConstraint) ComputeRouteScore(problem *Problem, route *Route) Score {
	var lateness int64
	for _, act := range route.Activities() {
		lateness += act.Lateness
	}
	return HardOf(float64(lateness))
}

func (TimeWindowConstraint) ComputeInsertionScore(ctx *InsertionContext) Score {
	if ctx.Insertion().Kind != InsertService {
		return Zero()
	}
	problem := ctx.Problem()
	delta := scheduleShiftDelta(problem, ctx.Vehicle(), ctx.Route(), ctx.Insertion().Position, insertionActivity(problem, ctx.Insertion()))
	return HardOf(float64(delta.latenessDelta))
}

// CapacityConstraint is hard: componentwise excess of running load over
// the vehicle's capacity, summed across the route.
type CapacityConstraint struct{}

func (CapacityConstraint) Level() ScoreLevel { return Hard }

func (CapacityConstraint) ComputeRouteScore(problem *Problem, route *Route) Score {
	vehicle := problem.Vehicle(route.Vehicle)
	var excess float64
	for _, act := range route.Activities() {
		excess += act.RunningLoad.ExceedsBy(vehicle.Capacity).Sum()
	}
	return HardOf(excess)
}

// ComputeInsertionScore exploits linearity of the running-load recurrence:
// inserting a service with demand D at pos shifts every downstream load
// (and the new activity's own load) by the constant +D, regardless of any
// deliveries further down the route that subtract their own unrelated
// demand. So the marginal excess is a sum over the suffix of
// excess(load+D) - excess(load), plus the brand new activity's own term.
func (CapacityConstraint) ComputeInsertionScore(ctx *InsertionContext) Score {
	if ctx.Insertion().Kind != InsertService {
		return Zero()
	}
	problem := ctx.Problem()
	vehicle := ctx.Vehicle()
	svc := problem.Service(ctx.Insertion().Service)
	route := ctx.Route()
	pos := ctx.Insertion().Position

	var prevLoad Capacity
	if route == nil || pos == 0 {
		prevLoad = make(Capacity, len(vehicle.Capacity))
	} else {
		prevLoad = route.Activity(pos - 1).RunningLoad
	}
	newLoad := prevLoad
	if len(svc.Demand) > 0 {
		newLoad = prevLoad.Add(svc.Demand)
	}
	excess := newLoad.ExceedsBy(vehicle.Capacity).Sum() - prevLoad.ExceedsBy(vehicle.Capacity).Sum()

	if route != nil {
		for i := pos; i < route.Len(); i++ {
			old := route.Activity(i).RunningLoad
			var shifted Capacity
			if len(svc.Demand) > 0 {
				shifted = old.Add(svc.Demand)
			} else {
				shifted = old
			}
			excess += shifted.ExceedsBy(vehicle.Capacity).Sum() - old.ExceedsBy(vehicle.Capacity).Sum()
		}
	}
	return HardOf(excess)
}

// MaximumActivitiesConstraint bounds how many stops a single route may
// contain, when the vehicle sets MaxActivities.
type MaximumActivitiesConstraint struct{}

func (MaximumActivitiesConstraint) Level() ScoreLevel { return Hard }

func (MaximumActivitiesConstraint) ComputeRouteScore(problem *Problem, route *Route) Score {
	vehicle := problem.Vehicle(route.Vehicle)
	if vehicle.MaxActivities != nil && route.Len() > *vehicle.MaxActivities {
		return HardOf(maximumActivitiesWeight)
	}
	return Zero()
}

func (MaximumActivitiesConstraint) ComputeInsertionScore(ctx *InsertionContext) Score {
	vehicle := ctx.Vehicle()
	if vehicle.MaxActivities == nil {
		return Zero()
	}
	n := 0
	if ctx.Route() != nil {
		n = ctx.Route().Len()
	}
	added := 1
	if ctx.Insertion().Kind == InsertShipment {
		added = 2
	}
	if n+added > *vehicle.MaxActivities {
		return HardOf(maximumActivitiesWeight)
	}
	return Zero()
}

// SkillsConstraint is hard: every activity's required skills must be a
// subset of its route's vehicle's skills.
type SkillsConstraint struct{}

func (SkillsConstraint) Level() ScoreLevel { return Hard }

func (SkillsConstraint) ComputeRouteScore(problem *Problem, route *Route) Score {
	vehicle := problem.Vehicle(route.Vehicle)
	var violations float64
	for _, act := range route.Activities() {
		required := requiredSkillsOf(problem, act)
		if required != nil && !vehicle.Skills.Subset(required) {
			violations++
		}
	}
	return HardOf(violations * skillsWeight)
}

func (SkillsConstraint) ComputeInsertionScore(ctx *InsertionContext) Score {
	problem := ctx.Problem()
	vehicle := ctx.Vehicle()
	ins := ctx.Insertion()

	var required SkillSet
	switch ins.Kind {
	case InsertService:
		required = problem.Service(ins.Service).RequiredSkills
	case InsertShipment:
		required = problem.Shipment(ins.Shipment).RequiredSkills
	}
	if required != nil && !vehicle.Skills.Subset(required) {
		return HardOf(skillsWeight)
	}
	return Zero()
}

func requiredSkillsOf(problem *Problem, act Activity) SkillSet {
	switch act.Kind {
	case ActivityService:
		return problem.Service(act.Service).RequiredSkills
	case ActivityPickup, ActivityDelivery:
		return problem.Shipment(act.Shipment).RequiredSkills
	default:
		return nil
	}
}

// ShipmentPrecedenceConstraint is a supplemented hard constraint (not in
// the distilled spec, carried over from original_source's route invariant
// that a shipment's pickup must precede its delivery): WorkingSolution's
// InsertShipment/RemoveShipment already maintain this by construction, but
// the constraint still scores it explicitly so a ruin/recreate bug shows
// up as an infeasible score instead of a silent corruption.
type ShipmentPrecedenceConstraint struct{}

func (ShipmentPrecedenceConstraint) Level() ScoreLevel { return Hard }

func (ShipmentPrecedenceConstraint) ComputeRouteScore(problem *Problem, route *Route) Score {
	pickupPos := make(map[ShipmentIdx]int)
	var violations float64
	for i, act := range route.Activities() {
		switch act.Kind {
		case ActivityPickup:
			pickupPos[act.Shipment] = i
		case ActivityDelivery:
			if p, ok := pickupPos[act.Shipment]; !ok || p > i {
				violations++
			}
		}
	}
	return HardOf(violations * shipmentPrecedenceWeight)
}

// ComputeInsertionScore is zero: a single-service insertion never touches
// shipment ordering, and shipment insertions are evaluated by the
// insertion engine's apply-and-diff path (C5), which calls ComputeRouteScore
// on the post-insertion route directly rather than this marginal hook.
func (ShipmentPrecedenceConstraint) ComputeInsertionScore(ctx *InsertionContext) Score {
	return Zero()
}

// insertionActivity materializes the Activity a service insertion would
// splice in, without touching the working solution — used by the
// schedule-shift delta helpers below.
func insertionActivity(problem *Problem, ins Insertion) Activity {
	svc := problem.Service(ins.Service)
	return Activity{
		Kind:     ActivityService,
		Service:  ins.Service,
		Location: svc.Location,
		Duration: svc.Duration,
		Windows:  svc.TimeWindows,
		Demand:   svc.Demand,
	}
}

type shiftDelta struct {
	waitingDelta  int64
	latenessDelta int64
}

// scheduleShiftDelta walks forward from pos simulating the insertion of
// act without mutating route, accumulating the new schedule's waiting and
// lateness against the original until an activity's recomputed begin time
// matches its original begin time exactly — at that point its departure
// also matches the original, so every activity downstream of it keeps its
// original schedule and contributes no further delta (spec.md §4.4).
func scheduleShiftDelta(problem *Problem, vehicle *Vehicle, route *Route, pos int, act Activity) shiftDelta {
	var prevLocation LocationIdx
	var prevDeparture int64
	if route == nil || pos == 0 {
		prevLocation = vehicle.StartLocation
		prevDeparture = vehicle.ShiftStart
	} else {
		prev := route.Activity(pos - 1)
		prevLocation = prev.Location
		prevDeparture = prev.Departure
	}

	profile := vehicle.Profile
	travelTime := problem.TravelTime(profile, prevLocation, act.Location)
	arrival := prevDeparture + travelTime
	begin, lateness := scheduleWindow(arrival, act.Windows)
	waiting := begin - arrival
	departure := begin + act.Duration

	delta := shiftDelta{waitingDelta: waiting, latenessDelta: lateness}

	if route == nil {
		return delta
	}
	prevLocation = act.Location
	prevDeparture = departure
	for i := pos; i < route.Len(); i++ {
		orig := route.Activity(i)
		newArrival := prevDeparture + problem.TravelTime(profile, prevLocation, orig.Location)
		newBegin, newLateness := scheduleWindow(newArrival, orig.Windows)
		newWaiting := newBegin - newArrival

		delta.waitingDelta += newWaiting - orig.Waiting
		delta.latenessDelta += newLateness - orig.Lateness

		if newBegin == orig.Begin {
			break
		}
		prevLocation = orig.Location
		prevDeparture = newBegin + orig.Duration
	}
	return delta
}
