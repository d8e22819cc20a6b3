package travel

import (
	"fmt"

	"github.com/fknop/hermes/optimizer"
)

// FlatMatrix wraps caller-supplied row-major distance/time/cost matrices,
// the Go realization of TravelMatrixProvider::Custom — used when the
// matrices come from an external routing service the caller already
// queried (GraphHopper, OSRM, a precomputed cache) rather than computed
// in-process.
type FlatMatrix struct {
	Dim       int
	Distances []float64
	Times     []float64
	Costs     []float64 // optional
}

// Build validates squareness and returns the equivalent TravelMatrices.
func (m FlatMatrix) Build() (optimizer.TravelMatrices, error) {
	want := m.Dim * m.Dim
	if len(m.Distances) != want {
		return optimizer.TravelMatrices{}, fmt.Errorf("travel: distances length %d, want %d (dim %d)", len(m.Distances), want, m.Dim)
	}
	if len(m.Times) != want {
		return optimizer.TravelMatrices{}, fmt.Errorf("travel: times length %d, want %d (dim %d)", len(m.Times), want, m.Dim)
	}
	if m.Costs != nil && len(m.Costs) != want {
		return optimizer.TravelMatrices{}, fmt.Errorf("travel: costs length %d, want %d (dim %d)", len(m.Costs), want, m.Dim)
	}
	return optimizer.TravelMatrices{Dim: m.Dim, Distances: m.Distances, Times: m.Times, Costs: m.Costs}, nil
}
