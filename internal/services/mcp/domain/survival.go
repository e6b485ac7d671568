package domain

import (
	"context"

	"github.com/louisbranch/explodingdice/internal/analysis"
	"github.com/louisbranch/explodingdice/internal/core/dice"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// SurvivalInput represents the MCP tool input for single-die survival.
type SurvivalInput struct {
	Sides  int    `json:"sides" jsonschema:"number of faces on the die, at least 2"`
	Target int    `json:"target" jsonschema:"total to reach or beat"`
	Locale string `json:"locale,omitempty" jsonschema:"BCP 47 locale for messages and percentages, default en-US"`
}

// SurvivalResult represents the MCP tool output for single-die survival.
type SurvivalResult struct {
	Die         string      `json:"die" jsonschema:"die label such as d6"`
	Target      int         `json:"target" jsonschema:"requested target"`
	Probability Probability `json:"probability" jsonschema:"chance that the exploding total reaches the target"`
	Limit       int         `json:"limit" jsonschema:"largest target magnitude accepted for this die"`
}

// DieStatsInput represents the MCP tool input for die statistics.
type DieStatsInput struct {
	Sides   int    `json:"sides" jsonschema:"number of faces on the die, at least 2"`
	Targets []int  `json:"targets,omitempty" jsonschema:"targets to evaluate, defaults to the configured targets"`
	Locale  string `json:"locale,omitempty" jsonschema:"BCP 47 locale for messages and percentages, default en-US"`
}

// TargetProbability is the probability at one target.
type TargetProbability struct {
	Target      int         `json:"target" jsonschema:"target total"`
	Probability Probability `json:"probability" jsonschema:"chance of reaching the target"`
}

// DieStatsResult represents the MCP tool output for die statistics.
type DieStatsResult struct {
	Die             string              `json:"die" jsonschema:"die label such as d6"`
	Sides           int                 `json:"sides" jsonschema:"number of faces"`
	ExplosionChance Probability         `json:"explosion_chance" jsonschema:"chance of rolling the maximum face"`
	ExpectedValue   Rational            `json:"expected_value" jsonschema:"mean exploding total, N(N+1)/(2(N-1))"`
	Survival        []TargetProbability `json:"survival" jsonschema:"survival probability per target"`
}

// SurvivalTool defines the MCP tool schema for single-die survival.
func SurvivalTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "explode_survival",
		Description: "Computes the exact probability that one exploding die totals at least a target",
	}
}

// DieStatsTool defines the MCP tool schema for die statistics.
func DieStatsTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "explode_die_stats",
		Description: "Describes one exploding die: explosion chance, expected total and survival per target",
	}
}

// SurvivalHandler evaluates S(N, T) on a fresh run.
func SurvivalHandler(cfg analysis.Config) mcp.ToolHandlerFor[SurvivalInput, SurvivalResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input SurvivalInput) (*mcp.CallToolResult, SurvivalResult, error) {
		f := newFormatter(input.Locale)
		run, err := analysis.NewRun(cfg)
		if err != nil {
			return nil, SurvivalResult{}, f.toolError(err)
		}
		p, err := run.Survival(input.Sides, input.Target)
		if err != nil {
			return nil, SurvivalResult{}, f.toolError(err)
		}

		d := dice.Die{Sides: input.Sides}
		result := SurvivalResult{
			Die:         d.Label(),
			Target:      input.Target,
			Probability: f.probability(p),
			Limit:       run.Limit(input.Sides),
		}
		summary := f.printer.Sprintf("P(%s ≥ %d) = %s (%s)", d.Label(), input.Target, p.String(), result.Probability.Percent)
		return textResult(summary), result, nil
	}
}

// DieStatsHandler summarizes one die on a fresh run.
func DieStatsHandler(cfg analysis.Config) mcp.ToolHandlerFor[DieStatsInput, DieStatsResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input DieStatsInput) (*mcp.CallToolResult, DieStatsResult, error) {
		f := newFormatter(input.Locale)
		d, err := dice.New(input.Sides)
		if err != nil {
			return nil, DieStatsResult{}, f.toolError(err)
		}
		run, err := analysis.NewRun(cfg)
		if err != nil {
			return nil, DieStatsResult{}, f.toolError(err)
		}

		targets := orDefaults(input.Targets, cfg.Targets)
		survival := make([]TargetProbability, 0, len(targets))
		for _, target := range targets {
			p, err := run.Survival(d.Sides, target)
			if err != nil {
				return nil, DieStatsResult{}, f.toolError(err)
			}
			survival = append(survival, TargetProbability{Target: target, Probability: f.probability(p)})
		}

		result := DieStatsResult{
			Die:             d.Label(),
			Sides:           d.Sides,
			ExplosionChance: f.probability(d.ExplosionChance()),
			ExpectedValue:   f.rational(d.ExpectedValue()),
			Survival:        survival,
		}
		summary := f.printer.Sprintf("%s: E = %s (%.3f), explodes %s of the time",
			d.Label(), result.ExpectedValue.Exact, result.ExpectedValue.Approx, result.ExplosionChance.Percent)
		return textResult(summary), result, nil
	}
}
