package optimizer

import (
	"fmt"
	"math"
)

// Index newtypes. The original Rust source generates these with a
// define_index_newtype! macro; Go has no macros, so each is spelled out
// by hand as a distinct int-backed type.

type LocationIdx int
type ServiceIdx int
type ShipmentIdx int
type VehicleIdx int
type RouteIdx int
type ProfileIdx int

func (i LocationIdx) String() string { return fmt.Sprintf("location#%d", int(i)) }
func (i ServiceIdx) String() string  { return fmt.Sprintf("service#%d", int(i)) }
func (i ShipmentIdx) String() string { return fmt.Sprintf("shipment#%d", int(i)) }
func (i VehicleIdx) String() string  { return fmt.Sprintf("vehicle#%d", int(i)) }
func (i RouteIdx) String() string    { return fmt.Sprintf("route#%d", int(i)) }
func (i ProfileIdx) String() string  { return fmt.Sprintf("profile#%d", int(i)) }

// TimeWindow is a non-empty closed interval [Start, End] in seconds since
// the scheduling epoch.
type TimeWindow struct {
	Start int64
	End   int64
}

func (w TimeWindow) empty() bool { return w.Start > w.End }

// Capacity is a componentwise demand/capacity vector (e.g. weight,
// volume, pallet count). Two capacities are only comparable when they
// have the same length; Problem.Build enforces this across all services,
// shipments, and vehicles.
type Capacity []float64

func (c Capacity) dim() int { return len(c) }

// Add returns the componentwise sum.
func (c Capacity) Add(other Capacity) Capacity {
	out := make(Capacity, len(c))
	for i := range c {
		out[i] = c[i] + other[i]
	}
	return out
}

// ExceedsBy returns, per component, max(0, c[i]-capacity[i]).
func (c Capacity) ExceedsBy(capacity Capacity) Capacity {
	out := make(Capacity, len(c))
	for i := range c {
		if d := c[i] - capacity[i]; d > 0 {
			out[i] = d
		}
	}
	return out
}

// Sum adds up all components (used to turn a componentwise excess into a
// single hard-score contribution).
func (c Capacity) Sum() float64 {
	var total float64
	for _, v := range c {
		total += v
	}
	return total
}

// Skill is an opaque named capability a vehicle may have and a service or
// shipment may require.
type Skill string

// SkillSet is a small set of skills, good enough for the cardinalities
// this domain sees (rarely more than a handful of skills per entity).
type SkillSet map[Skill]struct{}

func NewSkillSet(skills ...Skill) SkillSet {
	set := make(SkillSet, len(skills))
	for _, s := range skills {
		set[s] = struct{}{}
	}
	return set
}

// Subset reports whether every skill in required also appears in s.
func (s SkillSet) Subset(required SkillSet) bool {
	for skill := range required {
		if _, ok := s[skill]; !ok {
			return false
		}
	}
	return true
}

// Location is an indexable point in the travel matrices. The core never
// looks at coordinates directly; only travel-matrix providers do.
type Location struct {
	ExternalID string
}

// Service is a single-location job.
type Service struct {
	ExternalID      string
	Location        LocationIdx
	Demand          Capacity
	Duration        int64 // service duration in seconds
	TimeWindows     []TimeWindow
	RequiredSkills  SkillSet
	AllowedVehicles map[VehicleIdx]struct{} // nil/empty means any vehicle is allowed
}

func (s *Service) HasTimeWindows() bool {
	for _, tw := range s.TimeWindows {
		if !tw.empty() {
			return true
		}
	}
	return false
}

func (s *Service) AllowsVehicle(v VehicleIdx) bool {
	if len(s.AllowedVehicles) == 0 {
		return true
	}
	_, ok := s.AllowedVehicles[v]
	return ok
}

// ShipmentLeg is one side (pickup or delivery) of a shipment.
type ShipmentLeg struct {
	Location    LocationIdx
	Duration    int64
	TimeWindows []TimeWindow
}

func (l ShipmentLeg) HasTimeWindows() bool {
	for _, tw := range l.TimeWindows {
		if !tw.empty() {
			return true
		}
	}
	return false
}

// Shipment is an atomic pickup-delivery pair; both legs carry the same
// demand magnitude (added at pickup, removed at delivery).
type Shipment struct {
	ExternalID     string
	Demand         Capacity
	Pickup         ShipmentLeg
	Delivery       ShipmentLeg
	RequiredSkills SkillSet
}

func (s *Shipment) HasTimeWindows() bool {
	return s.Pickup.HasTimeWindows() || s.Delivery.HasTimeWindows()
}

// Vehicle describes one vehicle (finite fleet) or one vehicle type
// (infinite fleet, instantiated on demand by the recreate strategies).
type Vehicle struct {
	ExternalID      string
	Capacity        Capacity
	StartLocation   LocationIdx
	EndLocation     LocationIdx
	ShiftStart      int64
	ShiftEnd        int64
	FixedCost       float64
	CostPerDistance float64 // used when the profile's cost matrix is absent
	CostPerTime     float64 // used when the profile's cost matrix is absent
	MaxActivities   *int    // nil means unbounded
	Skills          SkillSet
	Profile         ProfileIdx
}

// FleetMode selects how Problem.AvailableVehicle behaves and whether
// opening a new route requires an idle vehicle slot.
type FleetMode int

const (
	FleetFinite FleetMode = iota
	FleetInfinite
)

// TravelMatrices holds flat, row-major distance/time/cost matrices for
// one vehicle profile. Costs is optional: when nil, edge cost is derived
// from the requesting vehicle's CostPerDistance/CostPerTime coefficients.
type TravelMatrices struct {
	Dim       int
	Distances []float64
	Times     []float64
	Costs     []float64 // optional, may be nil
}

func (m *TravelMatrices) at(table []float64, from, to LocationIdx) float64 {
	return table[int(from)*m.Dim+int(to)]
}

// Coefficients groups the problem-global cost parameters from spec.md §3.
type Coefficients struct {
	UnassignedJobCost           float64
	WaitingDurationCostPerSecond float64
}

// Problem is the immutable read model every other component in this
// package queries. It is built once via Build and never mutated
// afterwards; all of its query methods are safe for concurrent use.
type Problem struct {
	locations    []Location
	services     []Service
	shipments    []Shipment
	vehicles     []Vehicle
	matrices     []TravelMatrices // indexed by ProfileIdx
	neighborhood [][]ServiceIdx   // indexed by ServiceIdx, len <= K, excludes self
	coefficients Coefficients
	fleetMode    FleetMode
}

// ProblemBuilder accumulates the pieces of a Problem before validation.
// External collaborators (benchmark parsers, JSON loaders, travel-matrix
// providers) populate a ProblemBuilder and call Build.
type ProblemBuilder struct {
	Locations        []Location
	Services         []Service
	Shipments        []Shipment
	Vehicles         []Vehicle
	Matrices         []TravelMatrices
	Coefficients     Coefficients
	FleetMode        FleetMode
	NeighborhoodSize int // K; 0 defaults to 8
}

const defaultNeighborhoodSize = 8

// Build validates the accumulated input and, if valid, precomputes the
// per-service nearest-neighbor index. All errors are *ConfigError and
// fatal to the caller (spec.md §7): there is no partial/best-effort
// Problem.
func (b *ProblemBuilder) Build() (*Problem, error) {
	if len(b.Vehicles) == 0 {
		return nil, configErrorf("vehicles", "fleet must not be empty")
	}
	if len(b.Locations) == 0 {
		return nil, configErrorf("locations", "must not be empty")
	}
	if len(b.Matrices) == 0 {
		return nil, configErrorf("matrices", "at least one travel profile is required")
	}

	numLocations := len(b.Locations)
	for i, m := range b.Matrices {
		if m.Dim != numLocations {
			return nil, configErrorf("matrices", "profile %d: dimension %d does not match %d locations", i, m.Dim, numLocations)
		}
		if len(m.Distances) != m.Dim*m.Dim {
			return nil, configErrorf("matrices", "profile %d: distances length %d, want %d", i, len(m.Distances), m.Dim*m.Dim)
		}
		if len(m.Times) != m.Dim*m.Dim {
			return nil, configErrorf("matrices", "profile %d: times length %d, want %d", i, len(m.Times), m.Dim*m.Dim)
		}
		if m.Costs != nil && len(m.Costs) != m.Dim*m.Dim {
			return nil, configErrorf("matrices", "profile %d: costs length %d, want %d", i, len(m.Costs), m.Dim*m.Dim)
		}
	}

	capDim := -1
	checkCapacity := func(field string, c Capacity) error {
		if capDim == -1 {
			capDim = len(c)
		} else if len(c) != capDim {
			return configErrorf(field, "capacity dimension %d does not match established dimension %d", len(c), capDim)
		}
		return nil
	}

	for i, v := range b.Vehicles {
		if int(v.StartLocation) < 0 || int(v.StartLocation) >= numLocations {
			return nil, configErrorf("vehicles", "vehicle %d: start location %v out of range", i, v.StartLocation)
		}
		if int(v.EndLocation) < 0 || int(v.EndLocation) >= numLocations {
			return nil, configErrorf("vehicles", "vehicle %d: end location %v out of range", i, v.EndLocation)
		}
		if v.ShiftStart > v.ShiftEnd {
			return nil, configErrorf("vehicles", "vehicle %d: shift start %d after shift end %d", i, v.ShiftStart, v.ShiftEnd)
		}
		if int(v.Profile) < 0 || int(v.Profile) >= len(b.Matrices) {
			return nil, configErrorf("vehicles", "vehicle %d: profile %v out of range", i, v.Profile)
		}
		if err := checkCapacity("vehicles", v.Capacity); err != nil {
			return nil, err
		}
	}

	for i, s := range b.Services {
		if int(s.Location) < 0 || int(s.Location) >= numLocations {
			return nil, configErrorf("services", "service %d: location %v out of range", i, s.Location)
		}
		for _, tw := range s.TimeWindows {
			if tw.empty() {
				return nil, configErrorf("services", "service %d: time window [%d,%d] is empty", i, tw.Start, tw.End)
			}
		}
		if err := checkCapacity("services", s.Demand); err != nil {
			return nil, err
		}
	}

	for i, sh := range b.Shipments {
		if int(sh.Pickup.Location) < 0 || int(sh.Pickup.Location) >= numLocations {
			return nil, configErrorf("shipments", "shipment %d: pickup location %v out of range", i, sh.Pickup.Location)
		}
		if int(sh.Delivery.Location) < 0 || int(sh.Delivery.Location) >= numLocations {
			return nil, configErrorf("shipments", "shipment %d: delivery location %v out of range", i, sh.Delivery.Location)
		}
		for _, tw := range sh.Pickup.TimeWindows {
			if tw.empty() {
				return nil, configErrorf("shipments", "shipment %d: pickup time window [%d,%d] is empty", i, tw.Start, tw.End)
			}
		}
		for _, tw := range sh.Delivery.TimeWindows {
			if tw.empty() {
				return nil, configErrorf("shipments", "shipment %d: delivery time window [%d,%d] is empty", i, tw.Start, tw.End)
			}
		}
		if err := checkCapacity("shipments", sh.Demand); err != nil {
			return nil, err
		}
	}

	if b.Coefficients.UnassignedJobCost < 0 {
		return nil, configErrorf("coefficients", "unassigned_job_cost must be non-negative, got %v", b.Coefficients.UnassignedJobCost)
	}
	if b.Coefficients.WaitingDurationCostPerSecond < 0 {
		return nil, configErrorf("coefficients", "waiting_duration_cost_per_second must be non-negative, got %v", b.Coefficients.WaitingDurationCostPerSecond)
	}

	k := b.NeighborhoodSize
	if k <= 0 {
		k = defaultNeighborhoodSize
	}

	p := &Problem{
		locations:    b.Locations,
		services:     b.Services,
		shipments:    b.Shipments,
		vehicles:     b.Vehicles,
		matrices:     b.Matrices,
		coefficients: b.Coefficients,
		fleetMode:    b.FleetMode,
	}
	p.neighborhood = buildNeighborhood(p, k)
	return p, nil
}

// buildNeighborhood precomputes, for every service, the indices of its K
// nearest services by travel distance on profile 0 (the default profile;
// heterogeneous-profile neighborhoods are a refinement future recreate
// strategies can add without changing this contract).
func buildNeighborhood(p *Problem, k int) [][]ServiceIdx {
	n := len(p.services)
	out := make([][]ServiceIdx, n)
	if n == 0 {
		return out
	}
	profile := ProfileIdx(0)
	type distPair = struct {
		idx  ServiceIdx
		dist float64
	}
	for i := range p.services {
		candidates := make([]distPair, 0, n-1)
		from := p.services[i].Location
		for j := range p.services {
			if i == j {
				continue
			}
			to := p.services[j].Location
			candidates = append(candidates, distPair{ServiceIdx(j), p.TravelDistance(profile, from, to)})
		}
		sortDistPairs(candidates)
		limit := k
		if limit > len(candidates) {
			limit = len(candidates)
		}
		neighbors := make([]ServiceIdx, limit)
		for idx := 0; idx < limit; idx++ {
			neighbors[idx] = candidates[idx].idx
		}
		out[i] = neighbors
	}
	return out
}

func sortDistPairs(pairs []struct {
	idx  ServiceIdx
	dist float64
}) {
	// Insertion sort: K and the candidate set are both small in practice
	// (neighborhood tables are a one-time precompute over services, not a
	// per-iteration hot path), so an allocation-free O(n^2) sort in place
	// of pulling in sort.Slice's reflection overhead is the right trade.
	for i := 1; i < len(pairs); i++ {
		for j := i; j > 0 && pairs[j].dist < pairs[j-1].dist; j-- {
			pairs[j], pairs[j-1] = pairs[j-1], pairs[j]
		}
	}
}

// --- Read-only queries (C2) ---

func (p *Problem) NumLocations() int { return len(p.locations) }
func (p *Problem) NumServices() int  { return len(p.services) }
func (p *Problem) NumShipments() int { return len(p.shipments) }
func (p *Problem) NumVehicles() int  { return len(p.vehicles) }
func (p *Problem) FleetMode() FleetMode { return p.fleetMode }

func (p *Problem) Service(i ServiceIdx) *Service     { return &p.services[i] }
func (p *Problem) Shipment(i ShipmentIdx) *Shipment  { return &p.shipments[i] }
func (p *Problem) Vehicle(i VehicleIdx) *Vehicle     { return &p.vehicles[i] }
func (p *Problem) Location(i LocationIdx) *Location  { return &p.locations[i] }

// TravelDistance returns the travel distance in meters for the given
// profile between two locations. O(1).
func (p *Problem) TravelDistance(profile ProfileIdx, from, to LocationIdx) float64 {
	m := &p.matrices[profile]
	return m.at(m.Distances, from, to)
}

// TravelTime returns the travel time in seconds. O(1).
func (p *Problem) TravelTime(profile ProfileIdx, from, to LocationIdx) int64 {
	m := &p.matrices[profile]
	return int64(math.Round(m.at(m.Times, from, to)))
}

// TravelCost returns the travel cost for the given profile and vehicle.
// When the profile carries an explicit cost matrix, that value wins;
// otherwise cost is derived from the vehicle's variable cost
// coefficients applied to distance and time. O(1).
func (p *Problem) TravelCost(vehicle *Vehicle, from, to LocationIdx) float64 {
	m := &p.matrices[vehicle.Profile]
	if m.Costs != nil {
		return m.at(m.Costs, from, to)
	}
	return vehicle.CostPerDistance*m.at(m.Distances, from, to) + vehicle.CostPerTime*float64(p.TravelTime(vehicle.Profile, from, to))
}

// NearestServices returns the precomputed neighborhood of s: up to K
// nearest services, excluding s itself. O(K).
func (p *Problem) NearestServices(s ServiceIdx) []ServiceIdx {
	return p.neighborhood[s]
}

func (p *Problem) UnassignedJobCost() float64 { return p.coefficients.UnassignedJobCost }

func (p *Problem) WaitingDurationCost(duration int64) float64 {
	return float64(duration) * p.coefficients.WaitingDurationCostPerSecond
}

func (p *Problem) HasTimeWindows() bool {
	for i := range p.services {
		if p.services[i].HasTimeWindows() {
			return true
		}
	}
	for i := range p.shipments {
		if p.shipments[i].HasTimeWindows() {
			return true
		}
	}
	return false
}

func (p *Problem) HasWaitingDurationCost() bool {
	return p.coefficients.WaitingDurationCostPerSecond > 0
}

func (p *Problem) FixedVehicleCost(v VehicleIdx) float64 {
	return p.vehicles[v].FixedCost
}
