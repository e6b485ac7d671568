package sensitivity

import (
	"slices"

	"github.com/louisbranch/explodingdice/internal/core/combine"
	"github.com/louisbranch/explodingdice/internal/core/dice"
	"github.com/louisbranch/explodingdice/internal/core/probability"
)

// Difficulty names a band of success probability.
type Difficulty string

const (
	DifficultyTrivial  Difficulty = "trivial"
	DifficultyEasy     Difficulty = "easy"
	DifficultyMedium   Difficulty = "medium"
	DifficultyHard     Difficulty = "hard"
	DifficultyVeryHard Difficulty = "very-hard"
	DifficultyExtreme  Difficulty = "extreme"
)

// bands are ordered from easiest to hardest. Each covers [Low, High); the
// trivial band also includes certainty.
var bands = []struct {
	difficulty Difficulty
	low, high  probability.Value
}{
	{DifficultyTrivial, probability.Frac(9, 10), probability.One()},
	{DifficultyEasy, probability.Frac(3, 4), probability.Frac(9, 10)},
	{DifficultyMedium, probability.Frac(1, 2), probability.Frac(3, 4)},
	{DifficultyHard, probability.Frac(1, 4), probability.Frac(1, 2)},
	{DifficultyVeryHard, probability.Frac(1, 10), probability.Frac(1, 4)},
	{DifficultyExtreme, probability.Zero(), probability.Frac(1, 10)},
}

// DesignRange names a probability window a game designer targets on purpose.
type DesignRange string

const (
	RangeTrivial          DesignRange = "trivial"
	RangeBalanced         DesignRange = "balanced"
	RangeHeroic           DesignRange = "heroic"
	RangeNearlyImpossible DesignRange = "nearly-impossible"
)

// designRanges are closed on both ends except nearly-impossible, which
// excludes zero and stops short of its upper bound.
var designRanges = []struct {
	name      DesignRange
	low, high probability.Value
}{
	{RangeTrivial, probability.Frac(9, 10), probability.One()},
	{RangeBalanced, probability.Frac(2, 5), probability.Frac(3, 5)},
	{RangeHeroic, probability.Frac(1, 10), probability.Frac(1, 4)},
	{RangeNearlyImpossible, probability.Zero(), probability.Frac(1, 20)},
}

// preallocLimit caps the up-front point allocation for long curves.
const preallocLimit = 1024

// CrossingThresholds are the probabilities whose first crossing is reported.
var CrossingThresholds = []probability.Value{
	probability.Frac(19, 20),
	probability.Frac(9, 10),
	probability.Frac(3, 4),
	probability.Frac(1, 2),
	probability.Frac(1, 4),
	probability.Frac(1, 10),
	probability.Frac(1, 20),
}

// RecommendationTargets are the success chances a designer typically aims for.
var RecommendationTargets = []probability.Value{
	probability.Frac(3, 4),
	probability.Frac(1, 2),
	probability.Frac(1, 4),
}

// Point is the combined probability at one target.
type Point struct {
	Target      int               `json:"target"`
	Probability probability.Value `json:"probability"`
}

// Difference is a finite difference in T anchored at its lowest target.
type Difference struct {
	Target int               `json:"target"`
	Value  probability.Value `json:"value"`
}

// Inflection is a sign change in the second difference.
type Inflection struct {
	Target int `json:"target"`
	// ConcaveToConvex is set when the second difference grows across the
	// inflection; otherwise the curve turns from convex to concave.
	ConcaveToConvex bool `json:"concave_to_convex"`
}

// Crossing records the first target whose probability falls below Threshold.
type Crossing struct {
	Threshold probability.Value `json:"threshold"`
	Target    int               `json:"target,omitempty"`
	// Found is false when every target stays at or above Threshold.
	Found bool `json:"found"`
	// AlwaysBelow is set when even the first target is below Threshold.
	AlwaysBelow bool `json:"always_below"`
}

// Band is the target range whose probabilities fall in one difficulty band.
type Band struct {
	Difficulty Difficulty `json:"difficulty"`
	MinTarget  int        `json:"min_target"`
	MaxTarget  int        `json:"max_target"`
}

// Range is the target span whose probabilities fall in one design range.
type Range struct {
	Name      DesignRange `json:"name"`
	MinTarget int         `json:"min_target"`
	MaxTarget int         `json:"max_target"`
}

// Slopes splits the first differences by the quartiles of |ΔP/ΔT|.
type Slopes struct {
	// SteepAbove is the 75th percentile of |ΔP/ΔT|.
	SteepAbove probability.Value `json:"steep_above"`
	// FlatBelow is the 25th percentile of |ΔP/ΔT|.
	FlatBelow probability.Value `json:"flat_below"`
	Steep     []Difference      `json:"steep"`
	Flat      []Difference      `json:"flat"`
}

// Recommendation is the target whose probability is closest to Desired.
type Recommendation struct {
	Desired     probability.Value `json:"desired"`
	Target      int               `json:"target"`
	Probability probability.Value `json:"probability"`
}

// Curve describes P(max(reference, variable) ≥ T) for T = 1..MaxTarget.
type Curve struct {
	Reference       int              `json:"reference"`
	Variable        int              `json:"variable"`
	MaxTarget       int              `json:"max_target"`
	Points          []Point          `json:"points"`
	Steps           []Difference     `json:"steps"`
	Curvature       []Difference     `json:"curvature"`
	Inflections     []Inflection     `json:"inflections"`
	Crossings       []Crossing       `json:"crossings"`
	Bands           []Band           `json:"bands"`
	Ranges          []Range          `json:"ranges"`
	Slopes          *Slopes          `json:"slopes,omitempty"`
	Recommendations []Recommendation `json:"recommendations"`
}

type targetChecker interface {
	CheckTarget(sides, target int) error
}

// Curve evaluates the combined probability over every target in 1..maxTarget.
// A maxTarget beyond either die's ceiling is rejected before any work starts.
func (a *Analyzer) Curve(reference, variable, maxTarget int) (Curve, error) {
	if maxTarget < 1 {
		return Curve{}, ErrNoTargets
	}
	for _, sides := range []int{reference, variable} {
		if err := dice.Validate(sides); err != nil {
			return Curve{}, err
		}
	}
	if checker, ok := a.engine.(targetChecker); ok {
		for _, sides := range []int{reference, variable} {
			if err := checker.CheckTarget(sides, maxTarget); err != nil {
				return Curve{}, err
			}
		}
	}
	ref := dice.Die{Sides: reference}
	v := dice.Die{Sides: variable}

	points := make([]Point, 0, min(maxTarget, preallocLimit))
	for target := 1; target <= maxTarget; target++ {
		p, err := combine.Max(a.engine, ref, v, target)
		if err != nil {
			return Curve{}, err
		}
		points = append(points, Point{Target: target, Probability: p})
	}

	c := Curve{
		Reference: reference,
		Variable:  variable,
		MaxTarget: maxTarget,
		Points:    points,
	}
	c.Steps = differences(points)
	c.Curvature = secondDifferences(c.Steps)
	c.Inflections = inflections(c.Curvature)
	c.Crossings = crossings(points)
	c.Bands = difficultyBands(points)
	c.Ranges = ranges(points)
	c.Slopes = slopes(c.Steps)
	c.Recommendations = recommendations(points)
	return c, nil
}

func differences(points []Point) []Difference {
	if len(points) < 2 {
		return nil
	}
	out := make([]Difference, 0, len(points)-1)
	for i := 0; i+1 < len(points); i++ {
		out = append(out, Difference{
			Target: points[i].Target,
			Value:  points[i+1].Probability.Sub(points[i].Probability),
		})
	}
	return out
}

func secondDifferences(steps []Difference) []Difference {
	if len(steps) < 2 {
		return nil
	}
	out := make([]Difference, 0, len(steps)-1)
	for i := 0; i+1 < len(steps); i++ {
		out = append(out, Difference{
			Target: steps[i].Target,
			Value:  steps[i+1].Value.Sub(steps[i].Value),
		})
	}
	return out
}

func inflections(curvature []Difference) []Inflection {
	var out []Inflection
	for i := 0; i+1 < len(curvature); i++ {
		before, after := curvature[i].Value, curvature[i+1].Value
		if before.Sign() == after.Sign() {
			continue
		}
		out = append(out, Inflection{
			Target:          curvature[i+1].Target,
			ConcaveToConvex: after.Cmp(before) > 0,
		})
	}
	return out
}

func crossings(points []Point) []Crossing {
	out := make([]Crossing, 0, len(CrossingThresholds))
	for _, threshold := range CrossingThresholds {
		c := Crossing{Threshold: threshold}
		for i, p := range points {
			if p.Probability.Cmp(threshold) < 0 {
				c.Found = true
				c.Target = p.Target
				c.AlwaysBelow = i == 0
				break
			}
		}
		out = append(out, c)
	}
	return out
}

func difficultyBands(points []Point) []Band {
	var out []Band
	for _, band := range bands {
		var b *Band
		for _, p := range points {
			inBand := p.Probability.Cmp(band.low) >= 0 &&
				(p.Probability.Cmp(band.high) < 0 || band.difficulty == DifficultyTrivial)
			if !inBand {
				continue
			}
			if b == nil {
				b = &Band{Difficulty: band.difficulty, MinTarget: p.Target, MaxTarget: p.Target}
				continue
			}
			b.MinTarget = min(b.MinTarget, p.Target)
			b.MaxTarget = max(b.MaxTarget, p.Target)
		}
		if b != nil {
			out = append(out, *b)
		}
	}
	return out
}

func ranges(points []Point) []Range {
	var out []Range
	for _, dr := range designRanges {
		var r *Range
		for _, p := range points {
			var in bool
			if dr.name == RangeNearlyImpossible {
				in = p.Probability.Sign() > 0 && p.Probability.Cmp(dr.high) < 0
			} else {
				in = p.Probability.Cmp(dr.low) >= 0 && p.Probability.Cmp(dr.high) <= 0
			}
			if !in {
				continue
			}
			if r == nil {
				r = &Range{Name: dr.name, MinTarget: p.Target, MaxTarget: p.Target}
				continue
			}
			r.MinTarget = min(r.MinTarget, p.Target)
			r.MaxTarget = max(r.MaxTarget, p.Target)
		}
		if r != nil {
			out = append(out, *r)
		}
	}
	return out
}

func slopes(steps []Difference) *Slopes {
	if len(steps) == 0 {
		return nil
	}
	magnitudes := make([]probability.Value, len(steps))
	for i, s := range steps {
		magnitudes[i] = s.Value.Abs()
	}
	slices.SortFunc(magnitudes, probability.Value.Cmp)

	s := &Slopes{
		SteepAbove: quartile(magnitudes, 3),
		FlatBelow:  quartile(magnitudes, 1),
	}
	for _, step := range steps {
		m := step.Value.Abs()
		switch {
		case m.Cmp(s.SteepAbove) > 0:
			s.Steep = append(s.Steep, step)
		case m.Cmp(s.FlatBelow) < 0:
			s.Flat = append(s.Flat, step)
		}
	}
	return s
}

// quartile interpolates linearly between the closest ranks of sorted,
// placing quartile k at position (n-1)·k/4.
func quartile(sorted []probability.Value, k int) probability.Value {
	pos := (len(sorted) - 1) * k
	lo, rem := pos/4, pos%4
	if rem == 0 {
		return sorted[lo]
	}
	gap := sorted[lo+1].Sub(sorted[lo])
	return sorted[lo].Add(gap.Mul(probability.Frac(int64(rem), 4)))
}

func recommendations(points []Point) []Recommendation {
	if len(points) == 0 {
		return nil
	}
	out := make([]Recommendation, 0, len(RecommendationTargets))
	for _, desired := range RecommendationTargets {
		best := points[0]
		bestDistance := best.Probability.Sub(desired).Abs()
		for _, p := range points[1:] {
			distance := p.Probability.Sub(desired).Abs()
			if distance.Cmp(bestDistance) < 0 {
				best, bestDistance = p, distance
			}
		}
		out = append(out, Recommendation{
			Desired:     desired,
			Target:      best.Target,
			Probability: best.Probability,
		})
	}
	return out
}
