package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildLineProblem lays n+1 locations on a line at positions 0,10,20,...
// and one service per non-depot location, all reachable by a single
// vehicle with no capacity/time-window pressure — isolates the 2-opt
// reversal math from every other constraint, same intent as
// original_source's create_location_grid/create_basic_services fixtures.
func buildLineProblem(t *testing.T, n int) *Problem {
	t.Helper()
	pos := make([]float64, n+1)
	for i := range pos {
		pos[i] = float64(i) * 10
	}
	distances := make([]float64, (n+1)*(n+1))
	for i := 0; i <= n; i++ {
		for j := 0; j <= n; j++ {
			d := pos[i] - pos[j]
			if d < 0 {
				d = -d
			}
			distances[i*(n+1)+j] = d
		}
	}
	matrices := []TravelMatrices{{Dim: n + 1, Distances: distances, Times: append([]float64(nil), distances...)}}

	locations := make([]Location, n+1)
	services := make([]Service, n)
	for i := 0; i <= n; i++ {
		locations[i] = Location{}
	}
	for i := 0; i < n; i++ {
		services[i] = Service{
			Location:    LocationIdx(i + 1),
			Demand:      Capacity{0},
			Duration:    0,
			TimeWindows: []TimeWindow{{Start: 0, End: 1_000_000}},
		}
	}

	builder := &ProblemBuilder{
		Locations: locations,
		Services:  services,
		Vehicles: []Vehicle{
			{Capacity: Capacity{1000}, StartLocation: 0, EndLocation: 0, ShiftStart: 0, ShiftEnd: 1_000_000, CostPerDistance: 1},
		},
		Matrices:  matrices,
		FleetMode: FleetFinite,
		Coefficients: Coefficients{
			UnassignedJobCost: 10000,
		},
	}
	problem, err := builder.Build()
	require.NoError(t, err)
	return problem
}

// routeOn builds a route with one activity per service index, in the
// given order, on vehicle 0.
func routeOn(problem *Problem, order []ServiceIdx) *Route {
	route := NewRoute(0)
	for pos, svc := range order {
		route.insertAt(pos, activityForService(problem, svc), problem)
	}
	return route
}

func serviceOrder(route *Route) []ServiceIdx {
	out := make([]ServiceIdx, route.Len())
	for i, act := range route.Activities() {
		out[i] = act.Service
	}
	return out
}

// TestTwoOptOperator_ReversesTheRequestedSegment mirrors original_source's
// tests/intensify/two_opt_tests.rs: a 6-stop route, from=1,to=4, applying
// the move reverses exactly that inclusive index range and leaves the
// endpoints untouched.
func TestTwoOptOperator_ReversesTheRequestedSegment(t *testing.T) {
	// GIVEN a straight-line route visiting services 0..5 in order
	problem := buildLineProblem(t, 6)
	route := routeOn(problem, []ServiceIdx{0, 1, 2, 3, 4, 5})

	// WHEN a 2-opt move reverses the [1,4] segment
	op := NewTwoOptOperator(1, 4)
	op.Apply(problem, route)

	// THEN positions 0 and 5 are untouched and 1..4 come back reversed
	assert.Equal(t, []ServiceIdx{0, 4, 3, 2, 1, 5}, serviceOrder(route))
}

// TestTwoOptOperator_DeltaMatchesFullRouteRecompute exercises the same
// invariant as constraints_route_test.go's TestDeltaConsistency_* family,
// applied to a route mutation instead of an insertion: Delta's marginal
// answer must equal ComputeRouteScoreOnly(after) - ComputeRouteScoreOnly(before).
func TestTwoOptOperator_DeltaMatchesFullRouteRecompute(t *testing.T) {
	problem := buildLineProblem(t, 6)
	constraints := NewDefaultConstraintSet()
	// A route that crosses itself: the straight line visits 0,10,...,60
	// but doubles back from 40 to 20 before continuing to 50,60 — a 2-opt
	// reversal of the crossing segment should strictly shorten it.
	route := routeOn(problem, []ServiceIdx{0, 3, 1, 2, 4, 5})

	before := constraints.ComputeRouteScoreOnly(problem, route)
	op := NewTwoOptOperator(1, 3)
	marginal := op.Delta(constraints, problem, route)

	op.Apply(problem, route)
	after := constraints.ComputeRouteScoreOnly(problem, route)

	assertScoreApprox(t, marginal, after.Sub(before))
}

// TestIntensify_DisabledLeavesRouteUntouched confirms IntensifyConfig's
// zero value (Enabled: false) is a true no-op, matching every existing
// lns_test.go solver scenario that never sets Intensify at all.
func TestIntensify_DisabledLeavesRouteUntouched(t *testing.T) {
	problem := buildLineProblem(t, 6)
	constraints := NewDefaultConstraintSet()
	solution := NewWorkingSolution(problem)
	solution.Route(0).insertAt(0, activityForService(problem, 3), problem)
	solution.Route(0).insertAt(1, activityForService(problem, 1), problem)
	solution.Route(0).insertAt(2, activityForService(problem, 2), problem)
	before := serviceOrder(solution.Route(0))

	Intensify(IntensifyConfig{Enabled: false}, constraints, problem, solution)

	assert.Equal(t, before, serviceOrder(solution.Route(0)))
}

// TestIntensify_UncrossesARoute is the end-to-end version: a route with a
// crossing detour must score no worse after Intensify runs to a local
// optimum, and must still hold each of its five services exactly once
// (2-opt reorders, never drops or duplicates).
func TestIntensify_UncrossesARoute(t *testing.T) {
	// GIVEN a route that visits 0,30,10,20,40,50 (a detour back and forth)
	problem := buildLineProblem(t, 5)
	constraints := NewDefaultConstraintSet()
	solution := NewWorkingSolution(problem)
	route := solution.Route(0)
	for pos, svc := range []ServiceIdx{2, 0, 1, 3, 4} {
		route.insertAt(pos, activityForService(problem, svc), problem)
	}
	before := constraints.ComputeRouteScoreOnly(problem, route)

	// WHEN intensify runs to a local optimum
	Intensify(IntensifyConfig{Enabled: true, MaxPassesPerRoute: 0}, constraints, problem, solution)

	// THEN the route's score never got worse, and every service is still
	// on the route exactly once
	after := constraints.ComputeRouteScoreOnly(problem, route)
	assert.False(t, before.Less(after), "intensify must never worsen the route's score")

	seen := make(map[ServiceIdx]bool)
	for _, svc := range serviceOrder(route) {
		assert.False(t, seen[svc], "service %d duplicated by intensify", svc)
		seen[svc] = true
	}
	assert.Len(t, seen, 5)
}
