package optimizer

// buildTestProblem assembles a small, fully-connected 4-location problem:
// locations 0 (depot) .. 3, two services at 1 and 2, one shipment with
// pickup at 3 and delivery at 1, two vehicles starting/ending at the
// depot. Distances are the Manhattan distance on a simple 1-D layout so
// expected costs are easy to hand-compute in tests; times equal
// distances (unit speed).
func buildTestProblem() *Problem {
	const n = 4
	// locations laid out on a line at positions 0, 10, 20, 30
	pos := []float64{0, 10, 20, 30}
	distances := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			d := pos[i] - pos[j]
			if d < 0 {
				d = -d
			}
			distances[i*n+j] = d
		}
	}
	matrices := []TravelMatrices{{Dim: n, Distances: distances, Times: append([]float64(nil), distances...)}}

	builder := &ProblemBuilder{
		Locations: []Location{{ExternalID: "depot"}, {ExternalID: "a"}, {ExternalID: "b"}, {ExternalID: "c"}},
		Services: []Service{
			{ExternalID: "svc-1", Location: 1, Demand: Capacity{1}, Duration: 5, TimeWindows: []TimeWindow{{Start: 0, End: 1000}}},
			{ExternalID: "svc-2", Location: 2, Demand: Capacity{1}, Duration: 5, TimeWindows: []TimeWindow{{Start: 0, End: 1000}}},
		},
		Shipments: []Shipment{
			{
				ExternalID: "shp-1",
				Demand:     Capacity{1},
				Pickup:     ShipmentLeg{Location: 3, Duration: 5, TimeWindows: []TimeWindow{{Start: 0, End: 1000}}},
				Delivery:   ShipmentLeg{Location: 1, Duration: 5, TimeWindows: []TimeWindow{{Start: 0, End: 1000}}},
			},
		},
		Vehicles: []Vehicle{
			{ExternalID: "v0", Capacity: Capacity{5}, StartLocation: 0, EndLocation: 0, ShiftStart: 0, ShiftEnd: 1000, CostPerDistance: 1},
			{ExternalID: "v1", Capacity: Capacity{5}, StartLocation: 0, EndLocation: 0, ShiftStart: 0, ShiftEnd: 1000, CostPerDistance: 1},
		},
		Matrices:  matrices,
		FleetMode: FleetFinite,
		Coefficients: Coefficients{
			UnassignedJobCost:            10000,
			WaitingDurationCostPerSecond: 0,
		},
	}
	p, err := builder.Build()
	if err != nil {
		panic(err) // test fixture bug, not a runtime scenario
	}
	return p
}
