package domain

import (
	"context"

	"github.com/louisbranch/explodingdice/internal/analysis"
	"github.com/louisbranch/explodingdice/internal/core/dice"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// TargetCurveInput represents the MCP tool input for the target curve.
type TargetCurveInput struct {
	Reference int    `json:"reference,omitempty" jsonschema:"faces on the reference die, defaults to the configured reference"`
	Variable  int    `json:"variable" jsonschema:"faces on the variable die"`
	MaxTarget int    `json:"max_target,omitempty" jsonschema:"highest target evaluated, defaults to the configured curve length"`
	Locale    string `json:"locale,omitempty" jsonschema:"BCP 47 locale for messages and percentages, default en-US"`
}

// CrossingEntry is the first target whose probability falls below a threshold.
type CrossingEntry struct {
	Threshold   Probability `json:"threshold" jsonschema:"probability threshold"`
	Target      int         `json:"target,omitempty" jsonschema:"first target below the threshold"`
	Found       bool        `json:"found" jsonschema:"false when no evaluated target falls below"`
	AlwaysBelow bool        `json:"always_below" jsonschema:"true when even target 1 is below"`
}

// BandEntry is the target range of one difficulty band.
type BandEntry struct {
	Difficulty string `json:"difficulty" jsonschema:"trivial, easy, medium, hard, very-hard or extreme"`
	MinTarget  int    `json:"min_target" jsonschema:"lowest target in the band"`
	MaxTarget  int    `json:"max_target" jsonschema:"highest target in the band"`
}

// RangeEntry is the target span of one design range.
type RangeEntry struct {
	Name      string `json:"name" jsonschema:"trivial, balanced, heroic or nearly-impossible"`
	MinTarget int    `json:"min_target" jsonschema:"lowest target in the range"`
	MaxTarget int    `json:"max_target" jsonschema:"highest target in the range"`
}

// SlopeEntry is the change in combined probability from one target to the next.
type SlopeEntry struct {
	Target int         `json:"target" jsonschema:"lower target of the step"`
	Delta  Probability `json:"delta" jsonschema:"P(target+1) minus P(target)"`
}

// RecommendationEntry is the target closest to a desired success chance.
type RecommendationEntry struct {
	Desired     Probability `json:"desired" jsonschema:"desired success chance"`
	Target      int         `json:"target" jsonschema:"closest target"`
	Probability Probability `json:"probability" jsonschema:"actual success chance at that target"`
}

// InflectionEntry is a sign change of the curve's second difference.
type InflectionEntry struct {
	Target          int  `json:"target" jsonschema:"target where curvature changes sign"`
	ConcaveToConvex bool `json:"concave_to_convex" jsonschema:"true when curvature turns upward"`
}

// TargetCurveResult represents the MCP tool output for the target curve.
type TargetCurveResult struct {
	Pair            string                `json:"pair" jsonschema:"pair label such as d6+d8"`
	Points          []TargetProbability   `json:"points" jsonschema:"combined probability for targets 1..max_target"`
	Inflections     []InflectionEntry     `json:"inflections" jsonschema:"curvature sign changes"`
	Crossings       []CrossingEntry       `json:"crossings" jsonschema:"threshold crossings"`
	Bands           []BandEntry           `json:"bands" jsonschema:"difficulty bands that contain at least one target"`
	Ranges          []RangeEntry          `json:"ranges" jsonschema:"design ranges that contain at least one target"`
	SteepAbove      *Probability          `json:"steep_above,omitempty" jsonschema:"75th percentile of the absolute step size"`
	FlatBelow       *Probability          `json:"flat_below,omitempty" jsonschema:"25th percentile of the absolute step size"`
	Steep           []SlopeEntry          `json:"steep" jsonschema:"steps larger than steep_above"`
	Flat            []SlopeEntry          `json:"flat" jsonschema:"steps smaller than flat_below"`
	Recommendations []RecommendationEntry `json:"recommendations" jsonschema:"targets for 75, 50 and 25 percent success"`
}

// TargetCurveTool defines the MCP tool schema for the target curve.
func TargetCurveTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "explode_target_curve",
		Description: "Evaluates max(reference, variable) over a range of targets with crossings, difficulty bands, design ranges, steep and flat regions, and recommended targets",
	}
}

// TargetCurveHandler evaluates the combined probability curve for a pair.
func TargetCurveHandler(cfg analysis.Config) mcp.ToolHandlerFor[TargetCurveInput, TargetCurveResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input TargetCurveInput) (*mcp.CallToolResult, TargetCurveResult, error) {
		f := newFormatter(input.Locale)
		reference := orDefault(input.Reference, cfg.ReferenceDie)
		pair, err := dice.NewPair(reference, input.Variable)
		if err != nil {
			return nil, TargetCurveResult{}, f.toolError(err)
		}
		run, err := analysis.NewRun(cfg)
		if err != nil {
			return nil, TargetCurveResult{}, f.toolError(err)
		}
		curve, err := run.Curve(reference, input.Variable, orDefault(input.MaxTarget, cfg.CurveMaxTarget))
		if err != nil {
			return nil, TargetCurveResult{}, f.toolError(err)
		}

		result := TargetCurveResult{
			Pair:            pair.Label(),
			Points:          make([]TargetProbability, 0, len(curve.Points)),
			Inflections:     make([]InflectionEntry, 0, len(curve.Inflections)),
			Crossings:       make([]CrossingEntry, 0, len(curve.Crossings)),
			Bands:           make([]BandEntry, 0, len(curve.Bands)),
			Ranges:          make([]RangeEntry, 0, len(curve.Ranges)),
			Steep:           []SlopeEntry{},
			Flat:            []SlopeEntry{},
			Recommendations: make([]RecommendationEntry, 0, len(curve.Recommendations)),
		}
		for _, p := range curve.Points {
			result.Points = append(result.Points, TargetProbability{Target: p.Target, Probability: f.probability(p.Probability)})
		}
		for _, in := range curve.Inflections {
			result.Inflections = append(result.Inflections, InflectionEntry{Target: in.Target, ConcaveToConvex: in.ConcaveToConvex})
		}
		for _, c := range curve.Crossings {
			result.Crossings = append(result.Crossings, CrossingEntry{
				Threshold:   f.probability(c.Threshold),
				Target:      c.Target,
				Found:       c.Found,
				AlwaysBelow: c.AlwaysBelow,
			})
		}
		for _, b := range curve.Bands {
			result.Bands = append(result.Bands, BandEntry{
				Difficulty: string(b.Difficulty),
				MinTarget:  b.MinTarget,
				MaxTarget:  b.MaxTarget,
			})
		}
		for _, r := range curve.Ranges {
			result.Ranges = append(result.Ranges, RangeEntry{
				Name:      string(r.Name),
				MinTarget: r.MinTarget,
				MaxTarget: r.MaxTarget,
			})
		}
		if s := curve.Slopes; s != nil {
			steepAbove, flatBelow := f.probability(s.SteepAbove), f.probability(s.FlatBelow)
			result.SteepAbove, result.FlatBelow = &steepAbove, &flatBelow
			for _, d := range s.Steep {
				result.Steep = append(result.Steep, SlopeEntry{Target: d.Target, Delta: f.probability(d.Value)})
			}
			for _, d := range s.Flat {
				result.Flat = append(result.Flat, SlopeEntry{Target: d.Target, Delta: f.probability(d.Value)})
			}
		}
		for _, r := range curve.Recommendations {
			result.Recommendations = append(result.Recommendations, RecommendationEntry{
				Desired:     f.probability(r.Desired),
				Target:      r.Target,
				Probability: f.probability(r.Probability),
			})
		}

		summary := f.printer.Sprintf("%s over targets 1..%d", pair.Label(), curve.MaxTarget)
		for _, r := range result.Recommendations {
			summary += f.printer.Sprintf("; %s at %d", r.Desired.Percent, r.Target)
		}
		if len(result.Steep) > 0 {
			summary += f.printer.Sprintf("; steepest from %d to %d", result.Steep[0].Target, result.Steep[len(result.Steep)-1].Target+1)
		}
		return textResult(summary), result, nil
	}
}
