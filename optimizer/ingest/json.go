package ingest

import (
	"encoding/json"
	"fmt"

	"github.com/fknop/hermes/optimizer"
)

// jsonProblem mirrors original_source's JsonVehicleRoutingProblem (its
// body wasn't in the retrieval pack; field names follow the Go Problem/
// Service/Shipment/Vehicle types this schema must round-trip into, in
// the snake_case serde would produce for them).
type jsonProblem struct {
	Locations        []jsonLocation        `json:"locations"`
	Services         []jsonService         `json:"services"`
	Shipments        []jsonShipment        `json:"shipments"`
	VehicleProfiles  []jsonVehicleProfile  `json:"vehicle_profiles"`
	Vehicles         []jsonVehicle         `json:"vehicles"`
	FleetMode        string                `json:"fleet_mode"`
	UnassignedJobCost           float64    `json:"unassigned_job_cost"`
	WaitingDurationCostPerSecond float64   `json:"waiting_duration_cost_per_second"`
	NeighborhoodSize int                   `json:"neighborhood_size"`
}

type jsonLocation struct {
	ExternalID string `json:"external_id"`
}

type jsonTimeWindow struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

type jsonService struct {
	ExternalID     string           `json:"external_id"`
	Location       int              `json:"location"`
	Demand         []float64        `json:"demand"`
	Duration       int64            `json:"duration"`
	TimeWindows    []jsonTimeWindow `json:"time_windows"`
	RequiredSkills []string         `json:"required_skills"`
}

type jsonShipmentLeg struct {
	Location    int              `json:"location"`
	Duration    int64            `json:"duration"`
	TimeWindows []jsonTimeWindow `json:"time_windows"`
}

type jsonShipment struct {
	ExternalID     string          `json:"external_id"`
	Demand         []float64       `json:"demand"`
	Pickup         jsonShipmentLeg `json:"pickup"`
	Delivery       jsonShipmentLeg `json:"delivery"`
	RequiredSkills []string        `json:"required_skills"`
}

type jsonVehicleProfile struct {
	Distances []float64 `json:"distances"`
	Times     []float64 `json:"times"`
	Costs     []float64 `json:"costs,omitempty"`
}

type jsonVehicle struct {
	ExternalID      string  `json:"external_id"`
	Capacity        []float64 `json:"capacity"`
	StartLocation   int     `json:"start_location"`
	EndLocation     int     `json:"end_location"`
	ShiftStart      int64   `json:"shift_start"`
	ShiftEnd        int64   `json:"shift_end"`
	FixedCost       float64 `json:"fixed_cost"`
	CostPerDistance float64 `json:"cost_per_distance"`
	CostPerTime     float64 `json:"cost_per_time"`
	MaxActivities   *int    `json:"max_activities"`
	Skills          []string `json:"skills"`
	Profile         int     `json:"profile"`
}

// ParseJSON decodes this project's JSON problem schema into a
// ProblemBuilder. Every cross-reference (location/profile index) is
// passed through verbatim; range/shape validation is left to
// ProblemBuilder.Build so there's a single place that enforces it
// regardless of which ingest path produced the builder.
func ParseJSON(data []byte) (*optimizer.ProblemBuilder, error) {
	var doc jsonProblem
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("ingest: parsing json problem: %w", err)
	}

	locations := make([]optimizer.Location, len(doc.Locations))
	for i, l := range doc.Locations {
		locations[i] = optimizer.Location{ExternalID: l.ExternalID}
	}

	services := make([]optimizer.Service, len(doc.Services))
	for i, s := range doc.Services {
		services[i] = optimizer.Service{
			ExternalID:     s.ExternalID,
			Location:       optimizer.LocationIdx(s.Location),
			Demand:         optimizer.Capacity(s.Demand),
			Duration:       s.Duration,
			TimeWindows:    toTimeWindows(s.TimeWindows),
			RequiredSkills: toSkillSet(s.RequiredSkills),
		}
	}

	shipments := make([]optimizer.Shipment, len(doc.Shipments))
	for i, s := range doc.Shipments {
		shipments[i] = optimizer.Shipment{
			ExternalID: s.ExternalID,
			Demand:     optimizer.Capacity(s.Demand),
			Pickup: optimizer.ShipmentLeg{
				Location:    optimizer.LocationIdx(s.Pickup.Location),
				Duration:    s.Pickup.Duration,
				TimeWindows: toTimeWindows(s.Pickup.TimeWindows),
			},
			Delivery: optimizer.ShipmentLeg{
				Location:    optimizer.LocationIdx(s.Delivery.Location),
				Duration:    s.Delivery.Duration,
				TimeWindows: toTimeWindows(s.Delivery.TimeWindows),
			},
			RequiredSkills: toSkillSet(s.RequiredSkills),
		}
	}

	matrices := make([]optimizer.TravelMatrices, len(doc.VehicleProfiles))
	for i, p := range doc.VehicleProfiles {
		dim := locationCount(p)
		matrices[i] = optimizer.TravelMatrices{Dim: dim, Distances: p.Distances, Times: p.Times, Costs: p.Costs}
	}

	vehicles := make([]optimizer.Vehicle, len(doc.Vehicles))
	for i, v := range doc.Vehicles {
		vehicles[i] = optimizer.Vehicle{
			ExternalID:      v.ExternalID,
			Capacity:        optimizer.Capacity(v.Capacity),
			StartLocation:   optimizer.LocationIdx(v.StartLocation),
			EndLocation:     optimizer.LocationIdx(v.EndLocation),
			ShiftStart:      v.ShiftStart,
			ShiftEnd:        v.ShiftEnd,
			FixedCost:       v.FixedCost,
			CostPerDistance: v.CostPerDistance,
			CostPerTime:     v.CostPerTime,
			MaxActivities:   v.MaxActivities,
			Skills:          toSkillSet(v.Skills),
			Profile:         optimizer.ProfileIdx(v.Profile),
		}
	}

	fleetMode := optimizer.FleetFinite
	if doc.FleetMode == "infinite" {
		fleetMode = optimizer.FleetInfinite
	}

	return &optimizer.ProblemBuilder{
		Locations: locations,
		Services:  services,
		Shipments: shipments,
		Vehicles:  vehicles,
		Matrices:  matrices,
		Coefficients: optimizer.Coefficients{
			UnassignedJobCost:            doc.UnassignedJobCost,
			WaitingDurationCostPerSecond: doc.WaitingDurationCostPerSecond,
		},
		FleetMode:        fleetMode,
		NeighborhoodSize: doc.NeighborhoodSize,
	}, nil
}

func toTimeWindows(in []jsonTimeWindow) []optimizer.TimeWindow {
	out := make([]optimizer.TimeWindow, len(in))
	for i, w := range in {
		out[i] = optimizer.TimeWindow{Start: w.Start, End: w.End}
	}
	return out
}

func toSkillSet(in []string) optimizer.SkillSet {
	if len(in) == 0 {
		return nil
	}
	skills := make([]optimizer.Skill, len(in))
	for i, s := range in {
		skills[i] = optimizer.Skill(s)
	}
	return optimizer.NewSkillSet(skills...)
}

// locationCount recovers a profile's matrix dimension from its distances
// length (always a perfect square — ProblemBuilder.Build rejects a
// mismatched profile otherwise).
func locationCount(p jsonVehicleProfile) int {
	n := 0
	for n*n < len(p.Distances) {
		n++
	}
	return n
}
