package optimizer

import "math/rand"

// NoiseConfig is SolverParams' optional recreate-time tie-breaking noise
// (spec.md §4.9/§4.11 step 5). A zero-value NoiseConfig (Enabled == false)
// disables it.
type NoiseConfig struct {
	Enabled     bool
	MaxCost     float64
	Probability float64
	Level       float64
}

// JobNoiser perturbs soft-score comparisons during recreate so the search
// doesn't always break ties against the same candidate, without ever
// touching the score actually stored or applied. Each job gets its own
// PRNG stream (seeded by the job's index, not by draw order), so the same
// run with the same master seed reproduces bit-identical perturbations
// regardless of which other jobs were compared first.
type JobNoiser struct {
	cfg     NoiseConfig
	seed    int64
	streams map[int64]*rand.Rand
}

// NewJobNoiser returns nil when cfg.Enabled is false, so callers can pass
// the result straight through to rankLess without a branch.
func NewJobNoiser(cfg NoiseConfig, seed int64) *JobNoiser {
	if !cfg.Enabled {
		return nil
	}
	return &JobNoiser{cfg: cfg, seed: seed, streams: make(map[int64]*rand.Rand)}
}

func (n *JobNoiser) streamFor(jobSeed int64) *rand.Rand {
	if r, ok := n.streams[jobSeed]; ok {
		return r
	}
	r := rand.New(rand.NewSource(n.seed ^ fnv1a64(subsystemJob(jobSeed))))
	n.streams[jobSeed] = r
	return r
}

// Perturb adds u·level·max_cost to soft with probability cfg.Probability,
// u ~ U[0,1], drawn from the job's own stream.
func (n *JobNoiser) Perturb(jobSeed int64, soft float64) float64 {
	if n == nil {
		return soft
	}
	r := n.streamFor(jobSeed)
	if r.Float64() >= n.cfg.Probability {
		return soft
	}
	u := r.Float64()
	return soft + u*n.cfg.Level*n.cfg.MaxCost
}
