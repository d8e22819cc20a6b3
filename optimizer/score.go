package optimizer

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// ScoreLevel tags a constraint's contribution as Hard (feasibility) or
// Soft (cost). Comparison between scores is lexicographic on (Hard, Soft).
type ScoreLevel int

const (
	Hard ScoreLevel = iota
	Soft
)

func (l ScoreLevel) String() string {
	switch l {
	case Hard:
		return "hard"
	case Soft:
		return "soft"
	default:
		return fmt.Sprintf("ScoreLevel(%d)", int(l))
	}
}

// Score is the two-level additive score: hard constraint violations and
// soft cost, compared lexicographically. NaN in either field is an
// internal invariant violation, never a valid runtime value.
type Score struct {
	Hard float64
	Soft float64
}

// Zero is the additive identity.
func Zero() Score { return Score{} }

// HardOf constructs a score with only a hard contribution.
func HardOf(x float64) Score { return Score{Hard: x} }

// SoftOf constructs a score with only a soft contribution.
func SoftOf(x float64) Score { return Score{Soft: x} }

// Of constructs a score at the given level, routing x to the matching field.
func Of(level ScoreLevel, x float64) Score {
	switch level {
	case Hard:
		return HardOf(x)
	case Soft:
		return SoftOf(x)
	default:
		panic(fmt.Sprintf("optimizer: unknown score level %v", level))
	}
}

// Add returns the componentwise sum of two scores.
func (s Score) Add(other Score) Score {
	return Score{Hard: s.Hard + other.Hard, Soft: s.Soft + other.Soft}
}

// Sub returns the componentwise difference s - other.
func (s Score) Sub(other Score) Score {
	return Score{Hard: s.Hard - other.Hard, Soft: s.Soft - other.Soft}
}

// Sum reduces a slice of scores to their componentwise total. Addition is
// commutative and associative, so constraint evaluation order never
// affects the result (invariant 3 in spec.md's testable properties).
func Sum(scores []Score) Score {
	if len(scores) == 0 {
		return Zero()
	}
	hard := make([]float64, len(scores))
	soft := make([]float64, len(scores))
	for i, s := range scores {
		hard[i] = s.Hard
		soft[i] = s.Soft
	}
	return Score{Hard: floats.Sum(hard), Soft: floats.Sum(soft)}
}

// IsInfeasible reports whether the score carries any hard violation.
func (s Score) IsInfeasible() bool { return s.Hard > 0 }

// IsFeasible is the negation of IsInfeasible.
func (s Score) IsFeasible() bool { return !s.IsInfeasible() }

// CheckFinite panics if either component is NaN or infinite — per
// spec.md §7, a NaN score is an internal invariant violation, not a
// recoverable error.
func (s Score) CheckFinite() {
	if math.IsNaN(s.Hard) || math.IsInf(s.Hard, 0) {
		panic(fmt.Sprintf("optimizer: non-finite hard score %v", s.Hard))
	}
	if math.IsNaN(s.Soft) || math.IsInf(s.Soft, 0) {
		panic(fmt.Sprintf("optimizer: non-finite soft score %v", s.Soft))
	}
}

// Cmp compares two scores lexicographically on (Hard, Soft): negative if
// s < other, zero if equal, positive if s > other. Smaller is better.
func (s Score) Cmp(other Score) int {
	if s.Hard != other.Hard {
		if s.Hard < other.Hard {
			return -1
		}
		return 1
	}
	if s.Soft != other.Soft {
		if s.Soft < other.Soft {
			return -1
		}
		return 1
	}
	return 0
}

// Less reports whether s is strictly better than other.
func (s Score) Less(other Score) bool { return s.Cmp(other) < 0 }

// Total collapses the two-level score to a single scalar for display and
// for acceptors that only need a magnitude (hard violations are weighted
// far above any soft cost so lexicographic ordering is preserved for any
// realistic cost scale).
func (s Score) Total() float64 {
	const hardDominance = 1e12
	return s.Hard*hardDominance + s.Soft
}

func (s Score) String() string {
	return fmt.Sprintf("Score{hard: %g, soft: %g}", s.Hard, s.Soft)
}
