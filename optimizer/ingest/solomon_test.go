package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const solomonFixture = `Tiny Solomon-style instance

VEHICLE
NUMBER     CAPACITY
  2         200

CUSTOMER
CUST NO.  XCOORD.   YCOORD.    DEMAND   READY TIME   DUE DATE   SERVICE TIME

    0      40         50          0          0       1000          0
    1      45         68         10          0        200         10
    2      45         70         30        200        400         10
`

func TestParseSolomon_BuildsExpectedProblem(t *testing.T) {
	builder, err := ParseSolomon(strings.NewReader(solomonFixture))
	require.NoError(t, err)

	require.Len(t, builder.Locations, 3)
	require.Len(t, builder.Services, 2)
	require.Len(t, builder.Vehicles, 2)
	require.Len(t, builder.Matrices, 1)

	assert.Equal(t, 10.0, builder.Services[0].Demand.Sum())
	assert.Equal(t, int64(10), builder.Services[0].Duration)
	assert.Equal(t, int64(0), builder.Services[0].TimeWindows[0].Start)
	assert.Equal(t, int64(200), builder.Services[0].TimeWindows[0].End)

	assert.Equal(t, 200.0, builder.Vehicles[0].Capacity.Sum())
	assert.Equal(t, int64(0), builder.Vehicles[0].ShiftStart)
	assert.Equal(t, int64(1000), builder.Vehicles[0].ShiftEnd)

	p, err := builder.Build()
	require.NoError(t, err)
	assert.Equal(t, 3, p.NumLocations())
	assert.Equal(t, 2, p.NumServices())
	assert.Equal(t, 2, p.NumVehicles())
}

func TestParseSolomon_RejectsMissingVehicleFields(t *testing.T) {
	bad := `Bad

VEHICLE
NUMBER     CAPACITY
  2

CUSTOMER
CUST NO.  XCOORD.   YCOORD.    DEMAND   READY TIME   DUE DATE   SERVICE TIME

    0      40         50          0          0       1000          0
`
	_, err := ParseSolomon(strings.NewReader(bad))
	assert.Error(t, err)
}

func TestParseSolomon_RejectsNoDepotRow(t *testing.T) {
	bad := `Empty

VEHICLE
NUMBER     CAPACITY
  2         200

CUSTOMER
CUST NO.  XCOORD.   YCOORD.    DEMAND   READY TIME   DUE DATE   SERVICE TIME
`
	_, err := ParseSolomon(strings.NewReader(bad))
	assert.Error(t, err)
}
