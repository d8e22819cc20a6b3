// Package ingest loads optimizer.ProblemBuilder values from file formats
// external to the core: the classic Solomon VRPTW benchmark text format
// and this project's own JSON problem schema (grounded on
// original_source's hermes_optimizer::json::schema, referenced by
// hermes_cli/get_matrix.rs as JsonVehicleRoutingProblem — its body was
// filtered from the retrieval pack by the size cap, so the schema below
// is reconstructed from the Go-side Problem/Service/Shipment/Vehicle
// field names rather than transcribed).
package ingest

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/fknop/hermes/optimizer"
)

// solomonCustomer is one parsed CUSTOMER section row. Customer 0 is
// always the depot.
type solomonCustomer struct {
	x, y           float64
	demand         float64
	readyTime      int64
	dueDate        int64
	serviceTime    int64
}

// ParseSolomon parses the Solomon VRPTW benchmark text format: a
// problem-name line, a VEHICLE section (fleet size + uniform capacity),
// and a CUSTOMER section (one depot row followed by one row per
// customer: id, x, y, demand, ready time, due date, service time). Every
// coordinate pair becomes a Location; travel distance/time is Euclidean
// (Solomon instances use unit speed, so distance and time share one
// matrix).
func ParseSolomon(r io.Reader) (*optimizer.ProblemBuilder, error) {
	scanner := bufio.NewScanner(r)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, strings.TrimSpace(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("ingest: reading solomon input: %w", err)
	}

	vehicleCount, capacity, customers, err := parseSolomonLines(lines)
	if err != nil {
		return nil, err
	}
	if len(customers) == 0 {
		return nil, fmt.Errorf("ingest: solomon input has no depot row")
	}

	locations := make([]optimizer.Location, len(customers))
	for i := range customers {
		locations[i] = optimizer.Location{ExternalID: fmt.Sprintf("customer-%d", i)}
	}

	dim := len(customers)
	distances := make([]float64, dim*dim)
	for i, a := range customers {
		for j, b := range customers {
			dx, dy := a.x-b.x, a.y-b.y
			distances[i*dim+j] = math.Sqrt(dx*dx + dy*dy)
		}
	}
	matrices := []optimizer.TravelMatrices{{Dim: dim, Distances: distances, Times: append([]float64(nil), distances...)}}

	depot := customers[0]
	services := make([]optimizer.Service, 0, len(customers)-1)
	for i, c := range customers[1:] {
		idx := i + 1
		services = append(services, optimizer.Service{
			ExternalID: fmt.Sprintf("customer-%d", idx),
			Location:   optimizer.LocationIdx(idx),
			Demand:     optimizer.Capacity{c.demand},
			Duration:   c.serviceTime,
			TimeWindows: []optimizer.TimeWindow{
				{Start: c.readyTime, End: c.dueDate},
			},
		})
	}

	vehicles := make([]optimizer.Vehicle, vehicleCount)
	for i := range vehicles {
		vehicles[i] = optimizer.Vehicle{
			ExternalID:    fmt.Sprintf("vehicle-%d", i),
			Capacity:      optimizer.Capacity{capacity},
			StartLocation: 0,
			EndLocation:   0,
			ShiftStart:    depot.readyTime,
			ShiftEnd:      depot.dueDate,
			CostPerDistance: 1,
		}
	}

	return &optimizer.ProblemBuilder{
		Locations: locations,
		Services:  services,
		Vehicles:  vehicles,
		Matrices:  matrices,
		FleetMode: optimizer.FleetFinite,
	}, nil
}

func parseSolomonLines(lines []string) (vehicleCount int, capacity float64, customers []solomonCustomer, err error) {
	section := ""
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		switch {
		case line == "":
			continue
		case strings.EqualFold(line, "VEHICLE"):
			section = "vehicle"
			continue
		case strings.EqualFold(line, "CUSTOMER"):
			section = "customer"
			continue
		case strings.HasPrefix(strings.ToUpper(line), "NUMBER"):
			continue
		case strings.HasPrefix(strings.ToUpper(line), "CUST"):
			continue
		}

		switch section {
		case "vehicle":
			fields := strings.Fields(line)
			if len(fields) < 2 {
				return 0, 0, nil, fmt.Errorf("ingest: malformed VEHICLE row %q", line)
			}
			vehicleCount, err = strconv.Atoi(fields[0])
			if err != nil {
				return 0, 0, nil, fmt.Errorf("ingest: vehicle count: %w", err)
			}
			capacity, err = strconv.ParseFloat(fields[1], 64)
			if err != nil {
				return 0, 0, nil, fmt.Errorf("ingest: vehicle capacity: %w", err)
			}
			section = ""
		case "customer":
			fields := strings.Fields(line)
			if len(fields) < 7 {
				return 0, 0, nil, fmt.Errorf("ingest: malformed CUSTOMER row %q", line)
			}
			c, err := parseSolomonCustomer(fields)
			if err != nil {
				return 0, 0, nil, err
			}
			customers = append(customers, c)
		}
	}
	return vehicleCount, capacity, customers, nil
}

func parseSolomonCustomer(fields []string) (solomonCustomer, error) {
	nums := make([]float64, 6)
	// fields[0] is the customer id, ignored (rows are already in order).
	for i, f := range fields[1:7] {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return solomonCustomer{}, fmt.Errorf("ingest: customer field %d: %w", i+1, err)
		}
		nums[i] = v
	}
	return solomonCustomer{
		x:           nums[0],
		y:           nums[1],
		demand:      nums[2],
		readyTime:   int64(nums[3]),
		dueDate:     int64(nums[4]),
		serviceTime: int64(nums[5]),
	}, nil
}
