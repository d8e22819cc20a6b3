package optimizer

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ParamsBundle is SolverParams as loaded from YAML: every strategy is
// named by string rather than enum value, and numeric overrides are
// pointers so "not set in YAML" is distinguishable from zero — mirrors
// the teacher's PolicyBundle (sim/bundle.go) field-by-field.
type ParamsBundle struct {
	MaxIterations int     `yaml:"max_iterations"`
	MaxDuration   string  `yaml:"max_duration"`
	MaxSolutions  int     `yaml:"max_solutions"`
	Workers       int     `yaml:"workers"`
	Seed          int64   `yaml:"seed"`
	EliteFrac     float64 `yaml:"elite_frac"`

	Acceptor  AcceptorBundle  `yaml:"acceptor"`
	Selector  string          `yaml:"selector"`
	Ruin      RuinBundle      `yaml:"ruin"`
	Recreate  RecreateBundle  `yaml:"recreate"`
	Noise     NoiseBundle     `yaml:"noise"`
	Intensify IntensifyBundle `yaml:"intensify"`
}

// IntensifyBundle configures the post-recreate 2-opt local-search pass
// (SPEC_FULL.md §4.11 supplement).
type IntensifyBundle struct {
	Enabled           bool `yaml:"enabled"`
	MaxPassesPerRoute int  `yaml:"max_passes_per_route"`
}

type AcceptorBundle struct {
	Kind               string   `yaml:"kind"`
	InitialTemperature *float64 `yaml:"initial_temperature"`
	CoolingRate        *float64 `yaml:"cooling_rate"`
	InitialRatio       *float64 `yaml:"initial_ratio"`
}

type RuinStrategyBundle struct {
	Kind   string  `yaml:"kind"`
	Weight float64 `yaml:"weight"`
}

type RuinBundle struct {
	Strategies   []RuinStrategyBundle `yaml:"strategies"`
	MinimumRatio float64              `yaml:"minimum_ratio"`
	MaximumRatio float64              `yaml:"maximum_ratio"`
}

type RecreateStrategyBundle struct {
	Kind  string `yaml:"kind"`
	Order string `yaml:"order"`
	K     int    `yaml:"k"`
}

type RecreateBundle struct {
	Strategies      []RecreateStrategyBundle `yaml:"strategies"`
	Mode            string                   `yaml:"mode"`
	InsertOnFailure bool                     `yaml:"insert_on_failure"`
}

type NoiseBundle struct {
	Enabled     bool    `yaml:"enabled"`
	MaxCost     float64 `yaml:"max_cost"`
	Probability float64 `yaml:"probability"`
	Level       float64 `yaml:"level"`
}

// Valid strategy-name registries, same shape as the teacher's
// validAdmissionPolicies/validRoutingPolicies/... in sim/bundle.go.
var (
	validAcceptors        = map[string]bool{"greedy": true, "simulated-annealing": true, "schrimpf": true, "any": true}
	validSelectors         = map[string]bool{"best": true, "random": true, "weighted": true, "binary-tournament": true}
	validRuinKinds         = map[string]bool{"random": true, "worst": true, "radial": true, "route": true}
	validRecreateKinds     = map[string]bool{"best-insertion": true, "k-regret": true}
	validRecreateOrders    = map[string]bool{"": true, "random": true, "demand-desc": true, "far-desc": true, "close-asc": true, "time-window-asc": true}
	validRecreateModes     = map[string]bool{"": true, "round-robin": true, "weighted-random": true}
)

func validNames(m map[string]bool) string {
	names := make([]string, 0, len(m))
	for k := range m {
		if k != "" {
			names = append(names, k)
		}
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// LoadParamsBundle reads and strictly parses a YAML solver parameter
// file (unrecognized keys rejected, mirroring sim.LoadPolicyBundle).
func LoadParamsBundle(path string) (*ParamsBundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading solver params: %w", err)
	}
	var bundle ParamsBundle
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&bundle); err != nil {
		return nil, fmt.Errorf("parsing solver params: %w", err)
	}
	return &bundle, nil
}

// Validate checks every strategy name and numeric range in the bundle,
// returning a *ConfigError on the first violation (spec.md §7).
func (b *ParamsBundle) Validate() error {
	if !validAcceptors[b.Acceptor.Kind] {
		return configErrorf("acceptor.kind", "unknown acceptor %q; valid options: %s", b.Acceptor.Kind, validNames(validAcceptors))
	}
	if !validSelectors[b.Selector] {
		return configErrorf("selector", "unknown selector %q; valid options: %s", b.Selector, validNames(validSelectors))
	}
	for i, s := range b.Ruin.Strategies {
		if !validRuinKinds[s.Kind] {
			return configErrorf("ruin.strategies", "strategy %d: unknown ruin kind %q; valid options: %s", i, s.Kind, validNames(validRuinKinds))
		}
		if s.Weight < 0 {
			return configErrorf("ruin.strategies", "strategy %d: weight must be non-negative, got %v", i, s.Weight)
		}
	}
	if b.Ruin.MinimumRatio < 0 || b.Ruin.MaximumRatio > 1 || b.Ruin.MinimumRatio > b.Ruin.MaximumRatio {
		return configErrorf("ruin", "minimum_ratio/maximum_ratio must satisfy 0 <= min <= max <= 1, got [%v,%v]", b.Ruin.MinimumRatio, b.Ruin.MaximumRatio)
	}
	for i, s := range b.Recreate.Strategies {
		if !validRecreateKinds[s.Kind] {
			return configErrorf("recreate.strategies", "strategy %d: unknown recreate kind %q; valid options: %s", i, s.Kind, validNames(validRecreateKinds))
		}
		if s.Kind == "best-insertion" && !validRecreateOrders[s.Order] {
			return configErrorf("recreate.strategies", "strategy %d: unknown order %q; valid options: %s", i, s.Order, validNames(validRecreateOrders))
		}
		if s.Kind == "k-regret" && s.K < 1 {
			return configErrorf("recreate.strategies", "strategy %d: k must be >= 1, got %d", i, s.K)
		}
	}
	if !validRecreateModes[b.Recreate.Mode] {
		return configErrorf("recreate.mode", "unknown mode %q; valid options: %s", b.Recreate.Mode, validNames(validRecreateModes))
	}
	if b.MaxSolutions < 1 {
		return configErrorf("max_solutions", "must be >= 1, got %d", b.MaxSolutions)
	}
	if b.Workers < 0 {
		return configErrorf("workers", "must be >= 0 (0 means 1), got %d", b.Workers)
	}
	if b.EliteFrac < 0 || b.EliteFrac > 1 {
		return configErrorf("elite_frac", "must be within [0,1], got %v", b.EliteFrac)
	}
	if b.MaxDuration != "" {
		if _, err := time.ParseDuration(b.MaxDuration); err != nil {
			return configErrorf("max_duration", "invalid duration %q: %v", b.MaxDuration, err)
		}
	}
	if b.Intensify.MaxPassesPerRoute < 0 {
		return configErrorf("intensify.max_passes_per_route", "must be >= 0 (0 means unbounded), got %d", b.Intensify.MaxPassesPerRoute)
	}
	return nil
}

// ToSolverParams converts a validated bundle into SolverParams. Callers
// should call Validate first; ToSolverParams does not re-validate.
func (b *ParamsBundle) ToSolverParams() SolverParams {
	var duration time.Duration
	if b.MaxDuration != "" {
		duration, _ = time.ParseDuration(b.MaxDuration)
	}

	ruinStrategies := make([]RuinStrategy, len(b.Ruin.Strategies))
	for i, s := range b.Ruin.Strategies {
		ruinStrategies[i] = RuinStrategy{Kind: ruinKindFromName(s.Kind), Weight: s.Weight}
	}

	recreateStrategies := make([]RecreateStrategy, len(b.Recreate.Strategies))
	for i, s := range b.Recreate.Strategies {
		recreateStrategies[i] = RecreateStrategy{
			Kind:  recreateKindFromName(s.Kind),
			Order: recreateOrderFromName(s.Order),
			K:     s.K,
		}
	}

	params := SolverParams{
		MaxIterations: b.MaxIterations,
		MaxDuration:   duration,
		MaxSolutions:  b.MaxSolutions,
		Workers:       b.Workers,
		Seed:          b.Seed,
		EliteFrac:     b.EliteFrac,
		Acceptor: Acceptor{
			Kind:               acceptorKindFromName(b.Acceptor.Kind),
			InitialTemperature: derefOr(b.Acceptor.InitialTemperature, 1000),
			CoolingRate:        derefOr(b.Acceptor.CoolingRate, 0.999),
			InitialRatio:       derefOr(b.Acceptor.InitialRatio, 1.2),
		},
		Selector: Selector{Kind: selectorKindFromName(b.Selector)},
		Ruin: RuinParams{
			Strategies:   ruinStrategies,
			MinimumRatio: b.Ruin.MinimumRatio,
			MaximumRatio: b.Ruin.MaximumRatio,
		},
		Recreate: RecreateConfig{
			Strategies:      recreateStrategies,
			Mode:            recreateModeFromName(b.Recreate.Mode),
			InsertOnFailure: b.Recreate.InsertOnFailure,
		},
		Noise: NoiseConfig{
			Enabled:     b.Noise.Enabled,
			MaxCost:     b.Noise.MaxCost,
			Probability: b.Noise.Probability,
			Level:       b.Noise.Level,
		},
		Intensify: IntensifyConfig{
			Enabled:           b.Intensify.Enabled,
			MaxPassesPerRoute: b.Intensify.MaxPassesPerRoute,
		},
	}
	return params
}

func derefOr(p *float64, fallback float64) float64 {
	if p == nil {
		return fallback
	}
	return *p
}

func acceptorKindFromName(name string) AcceptorKind {
	switch name {
	case "simulated-annealing":
		return AcceptorSimulatedAnnealing
	case "schrimpf":
		return AcceptorSchrimpf
	case "any":
		return AcceptorAny
	default:
		return AcceptorGreedy
	}
}

func selectorKindFromName(name string) SelectorKind {
	switch name {
	case "random":
		return SelectorRandom
	case "weighted":
		return SelectorWeighted
	case "binary-tournament":
		return SelectorBinaryTournament
	default:
		return SelectorBest
	}
}

func ruinKindFromName(name string) RuinKind {
	switch name {
	case "worst":
		return RuinWorstKind
	case "radial":
		return RuinRadialKind
	case "route":
		return RuinRouteKind
	default:
		return RuinRandomKind
	}
}

func recreateKindFromName(name string) RecreateKind {
	if name == "k-regret" {
		return RecreateKRegret
	}
	return RecreateBestInsertion
}

func recreateOrderFromName(name string) RecreateOrder {
	switch name {
	case "demand-desc":
		return OrderDemandDesc
	case "far-desc":
		return OrderFarDesc
	case "close-asc":
		return OrderCloseAsc
	case "time-window-asc":
		return OrderTimeWindowAsc
	default:
		return OrderRandom
	}
}

func recreateModeFromName(name string) RecreateMode {
	if name == "weighted-random" {
		return RecreateWeightedRandom
	}
	return RecreateRoundRobin
}

// DefaultParamsBundle returns a reasonable out-of-the-box configuration,
// used by the CLI when no --params file is given.
func DefaultParamsBundle() *ParamsBundle {
	return &ParamsBundle{
		MaxIterations: 5000,
		MaxSolutions:  20,
		Workers:       1,
		Seed:          42,
		EliteFrac:     0.2,
		Acceptor:      AcceptorBundle{Kind: "greedy"},
		Selector:      "weighted",
		Ruin: RuinBundle{
			Strategies: []RuinStrategyBundle{
				{Kind: "random", Weight: 50},
				{Kind: "worst", Weight: 50},
				{Kind: "radial", Weight: 200},
			},
			MinimumRatio: 0.05,
			MaximumRatio: 0.3,
		},
		Recreate: RecreateBundle{
			Strategies: []RecreateStrategyBundle{
				{Kind: "best-insertion", Order: "random"},
				{Kind: "k-regret", K: 3},
			},
			Mode: "round-robin",
		},
		Intensify: IntensifyBundle{
			Enabled:           true,
			MaxPassesPerRoute: 25,
		},
	}
}
