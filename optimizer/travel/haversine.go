// Package travel builds optimizer.TravelMatrices for a set of
// coordinates without depending on an external routing service, grounded
// on original_source's TravelMatrixProvider::AsTheCrowFlies variant
// (hermes_matrix_providers/travel_matrix_provider.rs) and the
// problem/kmh.rs Kmh newtype.
package travel

import (
	"math"

	"github.com/fknop/hermes/optimizer"
)

const earthRadiusMeters = 6371000.0

// Coordinate is one location's latitude/longitude in decimal degrees.
type Coordinate struct {
	Lat float64
	Lng float64
}

// Haversine builds a single-profile TravelMatrices over coordinates using
// great-circle distance and a constant average speed — the Go
// realization of AsTheCrowFlies{speed_kmh}. No cost matrix is produced;
// vehicles fall back to their own CostPerDistance/CostPerTime
// coefficients (optimizer.Vehicle's documented default).
type Haversine struct {
	AverageSpeedKmh float64
}

// Build computes the distance (meters) and time (seconds) matrices for
// every ordered pair of coordinates.
func (h Haversine) Build(coords []Coordinate) optimizer.TravelMatrices {
	n := len(coords)
	distances := make([]float64, n*n)
	times := make([]float64, n*n)
	speedMps := h.AverageSpeedKmh * 1000.0 / 3600.0

	for i, from := range coords {
		for j, to := range coords {
			d := haversineMeters(from, to)
			distances[i*n+j] = d
			if speedMps > 0 {
				times[i*n+j] = d / speedMps
			}
		}
	}

	return optimizer.TravelMatrices{Dim: n, Distances: distances, Times: times}
}

func haversineMeters(a, b Coordinate) float64 {
	const toRad = math.Pi / 180.0
	lat1, lat2 := a.Lat*toRad, b.Lat*toRad
	dLat := (b.Lat - a.Lat) * toRad
	dLng := (b.Lng - a.Lng) * toRad

	sinDLat := math.Sin(dLat / 2)
	sinDLng := math.Sin(dLng / 2)
	h := sinDLat*sinDLat + math.Cos(lat1)*math.Cos(lat2)*sinDLng*sinDLng
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusMeters * c
}
