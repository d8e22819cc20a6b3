package optimizer

// ActivityKind distinguishes the three stop types a route can contain.
type ActivityKind int

const (
	ActivityService ActivityKind = iota
	ActivityPickup
	ActivityDelivery
)

func (k ActivityKind) String() string {
	switch k {
	case ActivityService:
		return "service"
	case ActivityPickup:
		return "pickup"
	case ActivityDelivery:
		return "delivery"
	default:
		return "unknown"
	}
}

// Activity is one stop on a route. For ActivityService, Service is the
// job identifier; for ActivityPickup/ActivityDelivery, Shipment is.
type Activity struct {
	Kind     ActivityKind
	Service  ServiceIdx
	Shipment ShipmentIdx

	Location LocationIdx
	Duration int64
	Windows  []TimeWindow
	Demand   Capacity

	Arrival     int64
	Begin       int64
	Departure   int64
	Waiting     int64
	Lateness    int64
	RunningLoad Capacity
}

// scheduleWindow applies spec.md §4.3's tie-break rule: pick the first
// time window whose end is not before arrival; fall back to the last
// window if none qualifies, which is how lateness enters the schedule.
// An activity with no time windows begins exactly on arrival and is
// never late. Shared by recomputeFrom and the constraints that need to
// re-derive a shifted suffix's schedule without mutating the route.
func scheduleWindow(arrival int64, windows []TimeWindow) (begin, lateness int64) {
	if len(windows) == 0 {
		return arrival, 0
	}
	w := windows[len(windows)-1]
	for _, candidate := range windows {
		if candidate.End >= arrival {
			w = candidate
			break
		}
	}
	begin = maxInt64(arrival, w.Start)
	if begin > w.End {
		lateness = begin - w.End
	}
	return begin, lateness
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

// Route is the ordered sequence of activities performed by one vehicle,
// bookended implicitly by the vehicle's start and end location. Route is
// only ever mutated through Route.insertAt/removeAt/reverseSegment, all of which bump
// Version so the insertion cache (C5) can detect staleness.
type Route struct {
	Vehicle    VehicleIdx
	activities []Activity
	version    uint64

	totalDistance float64
	totalWaiting  int64
	totalDemand   Capacity
}

// NewRoute creates an empty route assigned to the given vehicle.
func NewRoute(vehicle VehicleIdx) *Route {
	return &Route{Vehicle: vehicle}
}

func (r *Route) Len() int                 { return len(r.activities) }
func (r *Route) IsEmpty() bool            { return len(r.activities) == 0 }
func (r *Route) Version() uint64          { return r.version }
func (r *Route) Activities() []Activity   { return r.activities }
func (r *Route) Activity(pos int) Activity { return r.activities[pos] }
func (r *Route) TotalDistance() float64   { return r.totalDistance }
func (r *Route) TotalWaitingDuration() int64 { return r.totalWaiting }
func (r *Route) TotalDemand() Capacity    { return r.totalDemand }

func (r *Route) bumpVersion() { r.version++ }

// insertAt splices act into position pos (0..=Len()) and recomputes the
// schedule from pos forward. Time windows and capacity are NOT enforced
// here — per spec.md §4.3, feasibility is expressed entirely through the
// constraint score, so intermediate working solutions may be infeasible.
func (r *Route) insertAt(pos int, act Activity, problem *Problem) {
	r.activities = append(r.activities, Activity{})
	copy(r.activities[pos+1:], r.activities[pos:])
	r.activities[pos] = act
	r.recomputeFrom(pos, problem)
	r.bumpVersion()
}

// removeAt deletes the activity at pos and recomputes the schedule from
// pos forward (now referring to what used to be pos+1).
func (r *Route) removeAt(pos int, problem *Problem) Activity {
	removed := r.activities[pos]
	r.activities = append(r.activities[:pos], r.activities[pos+1:]...)
	r.recomputeFrom(pos, problem)
	r.bumpVersion()
	return removed
}

// reverseSegment reverses activities[from:to+1] in place and recomputes
// the schedule from from forward. Used by the 2-opt intensify operator
// (optimizer/intensify.go); unlike insertAt/removeAt it does not change
// Len(), but it still bumps Version since the activity order changed.
func (r *Route) reverseSegment(from, to int, problem *Problem) {
	for i, j := from, to; i < j; i, j = i+1, j-1 {
		r.activities[i], r.activities[j] = r.activities[j], r.activities[i]
	}
	r.recomputeFrom(from, problem)
	r.bumpVersion()
}

// recomputeFrom is the fixed-point schedule recompute from spec.md
// §4.3: arrival = prev.departure + travel_time(prev.loc, cur.loc); begin
// = tie-broken window bound; waiting = begin - arrival; departure =
// begin + duration. Running load and the cached aggregates are
// recomputed alongside it. Capacity dim mismatches are prevented by
// Problem.Build, so demand addition never needs a dimension check here.
func (r *Route) recomputeFrom(from int, problem *Problem) {
	vehicle := problem.Vehicle(r.Vehicle)
	profile := vehicle.Profile

	var prevLocation LocationIdx
	var prevDeparture int64
	var prevLoad Capacity
	if from == 0 {
		prevLocation = vehicle.StartLocation
		prevDeparture = vehicle.ShiftStart
		prevLoad = make(Capacity, capacityDim(vehicle.Capacity))
	} else {
		prev := r.activities[from-1]
		prevLocation = prev.Location
		prevDeparture = prev.Departure
		prevLoad = prev.RunningLoad
	}

	for i := from; i < len(r.activities); i++ {
		act := &r.activities[i]
		travelTime := problem.TravelTime(profile, prevLocation, act.Location)
		act.Arrival = prevDeparture + travelTime
		act.Begin, act.Lateness = scheduleWindow(act.Arrival, act.Windows)
		act.Waiting = act.Begin - act.Arrival
		act.Departure = act.Begin + act.Duration

		load := prevLoad
		if len(act.Demand) > 0 {
			switch act.Kind {
			case ActivityDelivery:
				load = load.Add(negate(act.Demand))
			default: // ActivityService, ActivityPickup both accumulate
				load = load.Add(act.Demand)
			}
		}
		act.RunningLoad = load

		prevLocation = act.Location
		prevDeparture = act.Departure
		prevLoad = load
	}

	r.recomputeAggregates(problem)
}

func negate(c Capacity) Capacity {
	out := make(Capacity, len(c))
	for i, v := range c {
		out[i] = -v
	}
	return out
}

func capacityDim(c Capacity) int { return len(c) }

// recomputeAggregates rebuilds the cached totals from the current
// schedule. It does not touch the version counter (callers that mutate
// the route already bump it).
func (r *Route) recomputeAggregates(problem *Problem) {
	vehicle := problem.Vehicle(r.Vehicle)
	profile := vehicle.Profile

	var distance float64
	var waiting int64
	prevLocation := vehicle.StartLocation
	for _, act := range r.activities {
		distance += problem.TravelDistance(profile, prevLocation, act.Location)
		waiting += act.Waiting
		prevLocation = act.Location
	}
	distance += problem.TravelDistance(profile, prevLocation, vehicle.EndLocation)

	r.totalDistance = distance
	r.totalWaiting = waiting
	if len(r.activities) == 0 {
		r.totalDemand = make(Capacity, capacityDim(vehicle.Capacity))
	} else {
		r.totalDemand = r.activities[len(r.activities)-1].RunningLoad
	}
}

// EndTime returns the departure time of the route's last activity, or
// the vehicle's shift start if the route is empty.
func (r *Route) EndTime(problem *Problem) int64 {
	if r.IsEmpty() {
		return problem.Vehicle(r.Vehicle).ShiftStart
	}
	return r.activities[len(r.activities)-1].Departure
}

// PositionOfShipmentPickup returns the position of shipment id's pickup
// activity, or -1 if absent from this route.
func (r *Route) PositionOfShipmentPickup(id ShipmentIdx) int {
	for i, act := range r.activities {
		if act.Kind == ActivityPickup && act.Shipment == id {
			return i
		}
	}
	return -1
}

// PositionOfShipmentDelivery mirrors PositionOfShipmentPickup for the
// delivery leg.
func (r *Route) PositionOfShipmentDelivery(id ShipmentIdx) int {
	for i, act := range r.activities {
		if act.Kind == ActivityDelivery && act.Shipment == id {
			return i
		}
	}
	return -1
}

// Clone deep-copies the route (used when cloning a population member
// into a fresh working solution, C11 step 2).
func (r *Route) Clone() *Route {
	activities := make([]Activity, len(r.activities))
	for i, act := range r.activities {
		activities[i] = act
		activities[i].Windows = act.Windows // shared, never mutated in place
		activities[i].Demand = act.Demand
		activities[i].RunningLoad = append(Capacity(nil), act.RunningLoad...)
	}
	return &Route{
		Vehicle:       r.Vehicle,
		activities:    activities,
		version:       r.version,
		totalDistance: r.totalDistance,
		totalWaiting:  r.totalWaiting,
		totalDemand:   append(Capacity(nil), r.totalDemand...),
	}
}

// Edges returns the directed location-to-location edges this route
// visits, including the implicit depot legs, for broken-pairs-distance
// diversity scoring (C10).
func (r *Route) Edges(problem *Problem) []routeEdge {
	vehicle := problem.Vehicle(r.Vehicle)
	if r.IsEmpty() {
		return nil
	}
	edges := make([]routeEdge, 0, len(r.activities)+1)
	prev := vehicle.StartLocation
	for _, act := range r.activities {
		edges = append(edges, routeEdge{prev, act.Location})
		prev = act.Location
	}
	edges = append(edges, routeEdge{prev, vehicle.EndLocation})
	return edges
}

type routeEdge struct {
	From LocationIdx
	To   LocationIdx
}
