package domain

import (
	"context"

	"github.com/louisbranch/explodingdice/internal/analysis"
	"github.com/louisbranch/explodingdice/internal/core/dice"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// CombineMaxInput represents the MCP tool input for the two-dice maximum.
type CombineMaxInput struct {
	DieA   int    `json:"die_a" jsonschema:"faces on the first die, at least 2"`
	DieB   int    `json:"die_b" jsonschema:"faces on the second die, at least 2"`
	Target int    `json:"target" jsonschema:"total the higher die must reach or beat"`
	Locale string `json:"locale,omitempty" jsonschema:"BCP 47 locale for messages and percentages, default en-US"`
}

// CombineMaxResult represents the MCP tool output for the two-dice maximum.
type CombineMaxResult struct {
	Pair     string      `json:"pair" jsonschema:"pair label such as d6+d8"`
	Target   int         `json:"target" jsonschema:"requested target"`
	Combined Probability `json:"combined" jsonschema:"chance that the higher total reaches the target"`
	A        Probability `json:"a" jsonschema:"first die alone"`
	B        Probability `json:"b" jsonschema:"second die alone"`
	OnlyA    Probability `json:"only_a" jsonschema:"chance that only the first die succeeds"`
	OnlyB    Probability `json:"only_b" jsonschema:"chance that only the second die succeeds"`
	Overlap  Probability `json:"overlap" jsonschema:"chance that both dice succeed"`
}

// CombineMaxTool defines the MCP tool schema for the two-dice maximum.
func CombineMaxTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "explode_combine_max",
		Description: "Computes the exact probability that the higher of two exploding dice totals at least a target",
	}
}

// CombineMaxHandler evaluates 1 − (1 − Sa)(1 − Sb) with its inclusion/exclusion parts.
func CombineMaxHandler(cfg analysis.Config) mcp.ToolHandlerFor[CombineMaxInput, CombineMaxResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input CombineMaxInput) (*mcp.CallToolResult, CombineMaxResult, error) {
		f := newFormatter(input.Locale)
		pair, err := dice.NewPair(input.DieA, input.DieB)
		if err != nil {
			return nil, CombineMaxResult{}, f.toolError(err)
		}
		run, err := analysis.NewRun(cfg)
		if err != nil {
			return nil, CombineMaxResult{}, f.toolError(err)
		}
		c, err := run.Breakdown(input.DieA, input.DieB, input.Target)
		if err != nil {
			return nil, CombineMaxResult{}, f.toolError(err)
		}

		result := CombineMaxResult{
			Pair:     pair.Label(),
			Target:   input.Target,
			Combined: f.probability(c.Combined),
			A:        f.probability(c.A),
			B:        f.probability(c.B),
			OnlyA:    f.probability(c.OnlyA),
			OnlyB:    f.probability(c.OnlyB),
			Overlap:  f.probability(c.Overlap),
		}
		summary := f.printer.Sprintf("P(max(%s) ≥ %d) = %s (%s)", pair.Label(), input.Target, c.Combined.String(), result.Combined.Percent)
		return textResult(summary), result, nil
	}
}
