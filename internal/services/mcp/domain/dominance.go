package domain

import (
	"context"

	"github.com/louisbranch/explodingdice/internal/analysis"
	"github.com/louisbranch/explodingdice/internal/core/dice"
	"github.com/louisbranch/explodingdice/internal/core/dominance"
	apperrors "github.com/louisbranch/explodingdice/internal/platform/errors"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// DominanceInput represents the MCP tool input for dominance classification.
type DominanceInput struct {
	Reference int    `json:"reference,omitempty" jsonschema:"faces on the reference die, defaults to the configured reference"`
	Variable  int    `json:"variable" jsonschema:"faces on the variable die"`
	Target    int    `json:"target" jsonschema:"target total"`
	Locale    string `json:"locale,omitempty" jsonschema:"BCP 47 locale for messages and percentages, default en-US"`
}

// DominanceResult represents the MCP tool output for dominance classification.
type DominanceResult struct {
	Pair         string      `json:"pair" jsonschema:"pair label such as d6+d8"`
	Target       int         `json:"target" jsonschema:"target total"`
	Sref         Probability `json:"sref" jsonschema:"reference die alone"`
	Svar         Probability `json:"svar" jsonschema:"variable die alone"`
	Cref         Probability `json:"cref" jsonschema:"chance that only the reference succeeds"`
	Cvar         Probability `json:"cvar" jsonschema:"chance that only the variable succeeds"`
	Overlap      Probability `json:"overlap" jsonschema:"chance that both succeed"`
	Combined     Probability `json:"combined" jsonschema:"chance that the higher total succeeds"`
	Ratio        *Rational   `json:"ratio,omitempty" jsonschema:"cvar divided by cref, absent when undefined"`
	RatioDefined bool        `json:"ratio_defined" jsonschema:"false when the reference never succeeds alone"`
	Regime       string      `json:"regime" jsonschema:"reference-dominant, balanced or variable-dominant"`
	BaseRegime   string      `json:"base_regime" jsonschema:"ceiling, moderate or low reference success"`
	Note         string      `json:"note,omitempty" jsonschema:"explanation when the ratio is undefined"`
}

// DominanceTool defines the MCP tool schema for dominance classification.
func DominanceTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "explode_dominance",
		Description: "Classifies which die of a pair carries success at a target",
	}
}

// DominanceHandler classifies the regime of a reference and variable die.
func DominanceHandler(cfg analysis.Config) mcp.ToolHandlerFor[DominanceInput, DominanceResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input DominanceInput) (*mcp.CallToolResult, DominanceResult, error) {
		f := newFormatter(input.Locale)
		reference := orDefault(input.Reference, cfg.ReferenceDie)
		pair, err := dice.NewPair(reference, input.Variable)
		if err != nil {
			return nil, DominanceResult{}, f.toolError(err)
		}
		run, err := analysis.NewRun(cfg)
		if err != nil {
			return nil, DominanceResult{}, f.toolError(err)
		}
		res, err := run.Dominance(reference, input.Variable, input.Target)
		if err != nil {
			return nil, DominanceResult{}, f.toolError(err)
		}

		result := DominanceResult{
			Pair:         pair.Label(),
			Target:       input.Target,
			Sref:         f.probability(res.Sref),
			Svar:         f.probability(res.Svar),
			Cref:         f.probability(res.Cref),
			Cvar:         f.probability(res.Cvar),
			Overlap:      f.probability(res.Overlap),
			Combined:     f.probability(res.Combined),
			RatioDefined: res.RatioDefined,
			Regime:       string(res.Regime),
			BaseRegime:   string(dominance.Base(res.Sref)),
		}
		if res.RatioDefined {
			ratio := f.rational(*res.Ratio)
			result.Ratio = &ratio
		} else {
			result.Note = apperrors.LocalizedMessage(res.Err(), f.locale)
		}

		summary := f.printer.Sprintf("%s at %d: %s", pair.Label(), input.Target, result.Regime)
		if result.Ratio != nil {
			summary += f.printer.Sprintf(" (r = %.3f)", result.Ratio.Approx)
		}
		return textResult(summary), result, nil
	}
}
