package cli

import (
	"fmt"
	"os"

	"github.com/fknop/hermes/optimizer"
	"github.com/fknop/hermes/optimizer/ingest"
)

// loadProblem reads a problem file in the requested format and builds
// the optimizer.Problem, returning a *optimizer.ConfigError (wrapped)
// on any validation failure — the same fatal-at-the-edge contract
// Problem.Build already documents.
func loadProblem(path, format string) (*optimizer.Problem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading problem file: %w", err)
	}

	var builder *optimizer.ProblemBuilder
	switch format {
	case "solomon":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening problem file: %w", err)
		}
		defer f.Close()
		builder, err = ingest.ParseSolomon(f)
		if err != nil {
			return nil, err
		}
	case "json", "":
		builder, err = ingest.ParseJSON(data)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown problem format %q (want json or solomon)", format)
	}

	return builder.Build()
}
