package optimizer

import "sort"

// InsertionKind distinguishes a single-activity service insertion from a
// two-activity shipment insertion.
type InsertionKind int

const (
	InsertService InsertionKind = iota
	InsertShipment
)

// Insertion describes where a job would go (or has gone) in a working
// solution. For InsertShipment, DeliveryPosition is the index the
// delivery activity ends up at *after* the pickup has already been
// spliced in at Position — i.e. it indexes the route in its
// post-pickup-insertion state, and must satisfy Position < DeliveryPosition.
type Insertion struct {
	Kind             InsertionKind
	Service          ServiceIdx
	Shipment         ShipmentIdx
	Route            RouteIdx
	NewRoute         bool
	Vehicle          VehicleIdx // vehicle template to instantiate when NewRoute is true
	Position         int
	DeliveryPosition int
}

// WorkingSolution is the mutable state ruin and recreate operate on: an
// array of routes plus the set of jobs not currently assigned to any of
// them. It holds a reference to the immutable Problem but never mutates
// it.
type WorkingSolution struct {
	problem             *Problem
	routes              []*Route
	unassignedServices  map[ServiceIdx]struct{}
	unassignedShipments map[ShipmentIdx]struct{}
}

// NewWorkingSolution bootstraps an empty-assignment working solution.
// Under a finite fleet every vehicle gets its own empty route up front
// (RouteIdx and VehicleIdx coincide); under an infinite fleet no routes
// exist yet — OpenNewRoute creates them on demand from a vehicle
// template, and more than one route may reference the same VehicleIdx.
func NewWorkingSolution(problem *Problem) *WorkingSolution {
	ws := &WorkingSolution{
		problem:             problem,
		unassignedServices:  make(map[ServiceIdx]struct{}, problem.NumServices()),
		unassignedShipments: make(map[ShipmentIdx]struct{}, problem.NumShipments()),
	}
	if problem.FleetMode() == FleetFinite {
		ws.routes = make([]*Route, problem.NumVehicles())
		for i := range ws.routes {
			ws.routes[i] = NewRoute(VehicleIdx(i))
		}
	}
	for i := 0; i < problem.NumServices(); i++ {
		ws.unassignedServices[ServiceIdx(i)] = struct{}{}
	}
	for i := 0; i < problem.NumShipments(); i++ {
		ws.unassignedShipments[ShipmentIdx(i)] = struct{}{}
	}
	return ws
}

// Clone deep-copies the working solution, e.g. for cloning a population
// member at the start of an LNS iteration (C11 step 2).
func (ws *WorkingSolution) Clone() *WorkingSolution {
	routes := make([]*Route, len(ws.routes))
	for i, r := range ws.routes {
		routes[i] = r.Clone()
	}
	services := make(map[ServiceIdx]struct{}, len(ws.unassignedServices))
	for id := range ws.unassignedServices {
		services[id] = struct{}{}
	}
	shipments := make(map[ShipmentIdx]struct{}, len(ws.unassignedShipments))
	for id := range ws.unassignedShipments {
		shipments[id] = struct{}{}
	}
	return &WorkingSolution{
		problem:             ws.problem,
		routes:              routes,
		unassignedServices:  services,
		unassignedShipments: shipments,
	}
}

func (ws *WorkingSolution) Problem() *Problem { return ws.problem }
func (ws *WorkingSolution) NumRoutes() int    { return len(ws.routes) }
func (ws *WorkingSolution) Route(idx RouteIdx) *Route { return ws.routes[idx] }
func (ws *WorkingSolution) Routes() []*Route  { return ws.routes }

// UnassignedServices returns the unassigned service ids in ascending
// order, for deterministic iteration by recreate strategies.
func (ws *WorkingSolution) UnassignedServices() []ServiceIdx {
	out := make([]ServiceIdx, 0, len(ws.unassignedServices))
	for id := range ws.unassignedServices {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// UnassignedShipments mirrors UnassignedServices for shipments.
func (ws *WorkingSolution) UnassignedShipments() []ShipmentIdx {
	out := make([]ShipmentIdx, 0, len(ws.unassignedShipments))
	for id := range ws.unassignedShipments {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (ws *WorkingSolution) IsUnassignedService(id ServiceIdx) bool {
	_, ok := ws.unassignedServices[id]
	return ok
}

func (ws *WorkingSolution) IsUnassignedShipment(id ShipmentIdx) bool {
	_, ok := ws.unassignedShipments[id]
	return ok
}

// AvailableVehicle returns a vehicle currently owning an empty route,
// for opening a new route under a finite fleet. Under an infinite fleet
// there is no such notion — opening a new route is always possible via
// OpenNewRoute instead, so this always returns false (spec.md §4.3).
func (ws *WorkingSolution) AvailableVehicle() (VehicleIdx, bool) {
	if ws.problem.FleetMode() == FleetInfinite {
		return 0, false
	}
	for _, r := range ws.routes {
		if r.IsEmpty() {
			return r.Vehicle, true
		}
	}
	return 0, false
}

// OpenNewRoute instantiates a new route from a vehicle template. Valid
// for an infinite fleet (any template, arbitrarily many instances) and,
// degenerately, also callable under a finite fleet if the caller already
// holds a vehicle id via AvailableVehicle — but the idiomatic path for a
// finite fleet is to insert directly into the existing empty route
// returned by AvailableVehicle.
func (ws *WorkingSolution) OpenNewRoute(vehicle VehicleIdx) RouteIdx {
	ws.routes = append(ws.routes, NewRoute(vehicle))
	return RouteIdx(len(ws.routes) - 1)
}

func activityForService(problem *Problem, id ServiceIdx) Activity {
	s := problem.Service(id)
	return Activity{
		Kind:     ActivityService,
		Service:  id,
		Location: s.Location,
		Duration: s.Duration,
		Windows:  s.TimeWindows,
		Demand:   s.Demand,
	}
}

// InsertService splices the service into routeIdx at pos and removes it
// from the unassigned set. The route's version is bumped by the
// underlying Route.insertAt.
func (ws *WorkingSolution) InsertService(routeIdx RouteIdx, pos int, id ServiceIdx) {
	ws.routes[routeIdx].insertAt(pos, activityForService(ws.problem, id), ws.problem)
	delete(ws.unassignedServices, id)
}

// InsertShipment splices both shipment legs into routeIdx. pickupPos is
// the pickup's final position; deliveryPos is the delivery's position in
// the route *after* the pickup has already been inserted, and must be >
// pickupPos (spec.md §3's pickup-before-delivery invariant).
func (ws *WorkingSolution) InsertShipment(routeIdx RouteIdx, pickupPos, deliveryPos int, id ShipmentIdx) {
	if deliveryPos <= pickupPos {
		panic("optimizer: shipment delivery position must be greater than pickup position")
	}
	sh := ws.problem.Shipment(id)
	pickupAct := Activity{
		Kind:     ActivityPickup,
		Shipment: id,
		Location: sh.Pickup.Location,
		Duration: sh.Pickup.Duration,
		Windows:  sh.Pickup.TimeWindows,
		Demand:   sh.Demand,
	}
	deliveryAct := Activity{
		Kind:     ActivityDelivery,
		Shipment: id,
		Location: sh.Delivery.Location,
		Duration: sh.Delivery.Duration,
		Windows:  sh.Delivery.TimeWindows,
		Demand:   sh.Demand,
	}
	route := ws.routes[routeIdx]
	route.insertAt(pickupPos, pickupAct, ws.problem)
	route.insertAt(deliveryPos, deliveryAct, ws.problem)
	delete(ws.unassignedShipments, id)
}

// RemoveService removes a service from wherever it is currently placed
// and returns it to the unassigned set.
func (ws *WorkingSolution) RemoveService(id ServiceIdx) {
	for _, r := range ws.routes {
		for pos, act := range r.Activities() {
			if act.Kind == ActivityService && act.Service == id {
				r.removeAt(pos, ws.problem)
				ws.unassignedServices[id] = struct{}{}
				return
			}
		}
	}
}

// RemoveShipment removes both legs of a shipment (atomic: spec.md §3
// shipments are removed together) and returns it to the unassigned set.
func (ws *WorkingSolution) RemoveShipment(id ShipmentIdx) {
	for _, r := range ws.routes {
		pickupPos := r.PositionOfShipmentPickup(id)
		deliveryPos := r.PositionOfShipmentDelivery(id)
		if pickupPos == -1 && deliveryPos == -1 {
			continue
		}
		// Remove the later activity first so the earlier index stays valid.
		if pickupPos > deliveryPos {
			r.removeAt(pickupPos, ws.problem)
			r.removeAt(deliveryPos, ws.problem)
		} else {
			r.removeAt(deliveryPos, ws.problem)
			r.removeAt(pickupPos, ws.problem)
		}
		ws.unassignedShipments[id] = struct{}{}
		return
	}
}

// RemoveActivity removes whatever occupies routeIdx/pos. Removing one
// leg of a shipment removes the whole shipment, preserving the atomicity
// invariant; ruin strategies that pick individual positions rely on this.
func (ws *WorkingSolution) RemoveActivity(routeIdx RouteIdx, pos int) {
	act := ws.routes[routeIdx].Activity(pos)
	switch act.Kind {
	case ActivityService:
		ws.routes[routeIdx].removeAt(pos, ws.problem)
		ws.unassignedServices[act.Service] = struct{}{}
	case ActivityPickup, ActivityDelivery:
		ws.RemoveShipment(act.Shipment)
	}
}

// RemoveRoute unassigns every job on routeIdx and empties it in place
// (the route slot, and any vehicle it occupies, remain addressable).
func (ws *WorkingSolution) RemoveRoute(routeIdx RouteIdx) {
	r := ws.routes[routeIdx]
	for _, act := range r.Activities() {
		switch act.Kind {
		case ActivityService:
			ws.unassignedServices[act.Service] = struct{}{}
		case ActivityPickup:
			ws.unassignedShipments[act.Shipment] = struct{}{}
		}
	}
	for r.Len() > 0 {
		r.removeAt(r.Len()-1, ws.problem)
	}
}

// EdgeSet returns the full set of directed location edges across every
// route, used by Population for duplicate detection and the
// broken-pairs-distance diversity metric (C10).
func (ws *WorkingSolution) EdgeSet() map[routeEdge]struct{} {
	set := make(map[routeEdge]struct{})
	for _, r := range ws.routes {
		for _, e := range r.Edges(ws.problem) {
			set[e] = struct{}{}
		}
	}
	return set
}
