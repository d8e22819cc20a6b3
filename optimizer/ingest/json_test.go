package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fknop/hermes/optimizer"
)

const jsonFixture = `{
  "locations": [
    {"external_id": "depot"},
    {"external_id": "a"},
    {"external_id": "b"}
  ],
  "services": [
    {
      "external_id": "svc-1",
      "location": 1,
      "demand": [1],
      "duration": 5,
      "time_windows": [{"start": 0, "end": 100}],
      "required_skills": ["refrigerated"]
    }
  ],
  "shipments": [
    {
      "external_id": "shp-1",
      "demand": [2],
      "pickup": {"location": 2, "duration": 3, "time_windows": [{"start": 0, "end": 200}]},
      "delivery": {"location": 1, "duration": 3, "time_windows": [{"start": 0, "end": 200}]}
    }
  ],
  "vehicle_profiles": [
    {
      "distances": [0, 1, 2, 1, 0, 1, 2, 1, 0],
      "times": [0, 1, 2, 1, 0, 1, 2, 1, 0]
    }
  ],
  "vehicles": [
    {
      "external_id": "v0",
      "capacity": [5],
      "start_location": 0,
      "end_location": 0,
      "shift_start": 0,
      "shift_end": 1000,
      "cost_per_distance": 1,
      "skills": ["refrigerated"],
      "profile": 0
    }
  ],
  "fleet_mode": "finite",
  "unassigned_job_cost": 10000
}`

func TestParseJSON_BuildsExpectedProblem(t *testing.T) {
	builder, err := ParseJSON([]byte(jsonFixture))
	require.NoError(t, err)

	require.Len(t, builder.Locations, 3)
	require.Len(t, builder.Services, 1)
	require.Len(t, builder.Shipments, 1)
	require.Len(t, builder.Vehicles, 1)
	require.Len(t, builder.Matrices, 1)

	assert.Equal(t, 1.0, builder.Services[0].Demand.Sum())
	assert.Contains(t, builder.Services[0].RequiredSkills, optimizer.Skill("refrigerated"))
	assert.Equal(t, 2.0, builder.Shipments[0].Demand.Sum())
	assert.Equal(t, 10000.0, builder.Coefficients.UnassignedJobCost)
	assert.Equal(t, optimizer.FleetFinite, builder.FleetMode)

	p, err := builder.Build()
	require.NoError(t, err)
	assert.Equal(t, 3, p.NumLocations())
	assert.Equal(t, 1, p.NumServices())
	assert.Equal(t, 1, p.NumShipments())
}

func TestParseJSON_InfiniteFleetMode(t *testing.T) {
	const doc = `{
		"locations": [{"external_id": "depot"}],
		"vehicle_profiles": [{"distances": [0], "times": [0]}],
		"vehicles": [{"external_id": "v0", "capacity": [1], "start_location": 0, "end_location": 0, "profile": 0}],
		"fleet_mode": "infinite"
	}`
	builder, err := ParseJSON([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, optimizer.FleetInfinite, builder.FleetMode)
}

func TestParseJSON_RejectsMalformedJSON(t *testing.T) {
	_, err := ParseJSON([]byte("{not json"))
	assert.Error(t, err)
}
