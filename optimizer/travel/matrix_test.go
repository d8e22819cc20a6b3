package travel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlatMatrix_BuildSucceedsOnSquareMatrices(t *testing.T) {
	m := FlatMatrix{
		Dim:       2,
		Distances: []float64{0, 1, 1, 0},
		Times:     []float64{0, 2, 2, 0},
	}
	matrices, err := m.Build()
	require.NoError(t, err)
	assert.Equal(t, 2, matrices.Dim)
	assert.Equal(t, m.Distances, matrices.Distances)
	assert.Equal(t, m.Times, matrices.Times)
	assert.Nil(t, matrices.Costs)
}

func TestFlatMatrix_BuildAcceptsOptionalCosts(t *testing.T) {
	m := FlatMatrix{
		Dim:       2,
		Distances: []float64{0, 1, 1, 0},
		Times:     []float64{0, 2, 2, 0},
		Costs:     []float64{0, 5, 5, 0},
	}
	matrices, err := m.Build()
	require.NoError(t, err)
	assert.Equal(t, m.Costs, matrices.Costs)
}

func TestFlatMatrix_BuildRejectsMismatchedDistancesLength(t *testing.T) {
	m := FlatMatrix{Dim: 2, Distances: []float64{0, 1, 1}, Times: []float64{0, 1, 1, 0}}
	_, err := m.Build()
	assert.Error(t, err)
}

func TestFlatMatrix_BuildRejectsMismatchedTimesLength(t *testing.T) {
	m := FlatMatrix{Dim: 2, Distances: []float64{0, 1, 1, 0}, Times: []float64{0, 1}}
	_, err := m.Build()
	assert.Error(t, err)
}

func TestFlatMatrix_BuildRejectsMismatchedCostsLength(t *testing.T) {
	m := FlatMatrix{
		Dim:       2,
		Distances: []float64{0, 1, 1, 0},
		Times:     []float64{0, 1, 1, 0},
		Costs:     []float64{0, 1},
	}
	_, err := m.Build()
	assert.Error(t, err)
}
