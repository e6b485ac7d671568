package sensitivity

import "github.com/louisbranch/explodingdice/internal/core/probability"

// Magnitude buckets the absolute size of a marginal change.
type Magnitude string

const (
	// MagnitudeNegligible is a change under one percentage point.
	MagnitudeNegligible Magnitude = "negligible"
	// MagnitudeModerate is a change between one and ten percentage points.
	MagnitudeModerate Magnitude = "moderate"
	// MagnitudeSignificant is a change over ten percentage points.
	MagnitudeSignificant Magnitude = "significant"
)

var (
	negligibleBelow  = probability.Frac(1, 100)
	significantAbove = probability.Frac(1, 10)
)

// Classify returns the magnitude class of delta. The sign is ignored.
func Classify(delta probability.Value) Magnitude {
	abs := delta.Abs()
	switch {
	case abs.Cmp(negligibleBelow) < 0:
		return MagnitudeNegligible
	case abs.Cmp(significantAbove) > 0:
		return MagnitudeSignificant
	default:
		return MagnitudeModerate
	}
}
