package dominance

import "github.com/louisbranch/explodingdice/internal/core/probability"

// BaseRegime describes how often the reference die succeeds on its own.
type BaseRegime string

const (
	// BaseCeiling means the reference alone succeeds more often than not,
	// leaving little room for any variable die to help.
	BaseCeiling BaseRegime = "ceiling"
	// BaseModerate sits between the ceiling and low regimes.
	BaseModerate BaseRegime = "moderate"
	// BaseLow means the reference rarely succeeds and the variable die
	// carries most outcomes.
	BaseLow BaseRegime = "low"
)

var (
	ceilingAbove = probability.Frac(1, 2)
	lowBelow     = probability.Frac(1, 10)
)

// Base classifies the reference die's own survival probability.
func Base(sref probability.Value) BaseRegime {
	switch {
	case sref.Cmp(ceilingAbove) > 0:
		return BaseCeiling
	case sref.Cmp(lowBelow) < 0:
		return BaseLow
	default:
		return BaseModerate
	}
}
