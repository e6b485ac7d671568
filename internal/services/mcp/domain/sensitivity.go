package domain

import (
	"context"
	"strconv"

	"github.com/louisbranch/explodingdice/internal/analysis"
	"github.com/louisbranch/explodingdice/internal/core/dice"
	"github.com/louisbranch/explodingdice/internal/core/sensitivity"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// SensitivityTableInput represents the MCP tool input for the marginal table.
type SensitivityTableInput struct {
	Reference int    `json:"reference,omitempty" jsonschema:"faces on the fixed reference die, defaults to the configured reference"`
	Sizes     []int  `json:"sizes,omitempty" jsonschema:"strictly increasing variable die sizes, defaults to the configured sizes"`
	Targets   []int  `json:"targets,omitempty" jsonschema:"targets to evaluate, defaults to the configured targets"`
	Locale    string `json:"locale,omitempty" jsonschema:"BCP 47 locale for messages and percentages, default en-US"`
}

// SensitivityRow holds the combined probabilities for one variable die.
type SensitivityRow struct {
	Die   string              `json:"die" jsonschema:"variable die label"`
	Sides int                 `json:"sides" jsonschema:"variable die faces"`
	Cells []TargetProbability `json:"cells" jsonschema:"combined probability per target"`
}

// MarginalEntry is the change from upgrading the variable die one step.
type MarginalEntry struct {
	Transition      string      `json:"transition" jsonschema:"transition label such as d4→d6"`
	From            int         `json:"from" jsonschema:"faces before the upgrade"`
	To              int         `json:"to" jsonschema:"faces after the upgrade"`
	Target          int         `json:"target" jsonschema:"target total"`
	Delta           Probability `json:"delta" jsonschema:"signed change in combined probability"`
	Relative        *Rational   `json:"relative,omitempty" jsonschema:"delta divided by the probability before the upgrade"`
	RelativeDefined bool        `json:"relative_defined" jsonschema:"false when the probability before the upgrade is zero"`
	Magnitude       string      `json:"magnitude" jsonschema:"negligible, moderate or significant"`
}

// AccelerationEntry is the change between two consecutive marginals.
type AccelerationEntry struct {
	Transition string      `json:"transition" jsonschema:"sizes spanned such as d4→d6→d8"`
	Target     int         `json:"target" jsonschema:"target total"`
	Value      Probability `json:"value" jsonschema:"second difference of the combined probability"`
}

// PatternEntry summarizes how marginals evolve at one target.
type PatternEntry struct {
	Target  int      `json:"target" jsonschema:"target total"`
	Pattern string   `json:"pattern" jsonschema:"diminishing, increasing, non-monotonic or undetermined"`
	Peaks   []string `json:"peaks" jsonschema:"transitions whose marginal is a local maximum"`
	Troughs []string `json:"troughs" jsonschema:"transitions whose marginal is a local minimum"`
}

// SensitivityTableResult represents the MCP tool output for the marginal table.
type SensitivityTableResult struct {
	Reference     string              `json:"reference" jsonschema:"reference die label"`
	Targets       []int               `json:"targets" jsonschema:"targets in column order"`
	Rows          []SensitivityRow    `json:"rows" jsonschema:"one row per variable die"`
	Marginals     []MarginalEntry     `json:"marginals" jsonschema:"first differences across die sizes"`
	Accelerations []AccelerationEntry `json:"accelerations" jsonschema:"second differences across die sizes"`
	Patterns      []PatternEntry      `json:"patterns" jsonschema:"return pattern per target"`
}

// SensitivityTableTool defines the MCP tool schema for the marginal table.
func SensitivityTableTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "explode_sensitivity_table",
		Description: "Tabulates max(reference, variable) across variable die sizes and targets with marginal and acceleration analysis",
	}
}

// SensitivityTableHandler builds the table, marginals, accelerations and patterns.
func SensitivityTableHandler(cfg analysis.Config) mcp.ToolHandlerFor[SensitivityTableInput, SensitivityTableResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input SensitivityTableInput) (*mcp.CallToolResult, SensitivityTableResult, error) {
		f := newFormatter(input.Locale)
		run, err := analysis.NewRun(cfg)
		if err != nil {
			return nil, SensitivityTableResult{}, f.toolError(err)
		}
		reference := orDefault(input.Reference, cfg.ReferenceDie)
		table, err := run.SensitivityTable(reference, orDefaults(input.Sizes, cfg.VariableDice), orDefaults(input.Targets, cfg.Targets))
		if err != nil {
			return nil, SensitivityTableResult{}, f.toolError(err)
		}

		result := SensitivityTableResult{
			Reference:     dice.Die{Sides: reference}.Label(),
			Targets:       table.Targets,
			Rows:          make([]SensitivityRow, 0, len(table.Sizes)),
			Marginals:     make([]MarginalEntry, 0),
			Accelerations: make([]AccelerationEntry, 0),
			Patterns:      make([]PatternEntry, 0, len(table.Targets)),
		}
		for i, size := range table.Sizes {
			cells := make([]TargetProbability, 0, len(table.Targets))
			for j, target := range table.Targets {
				cells = append(cells, TargetProbability{Target: target, Probability: f.probability(table.Cells[i][j])})
			}
			result.Rows = append(result.Rows, SensitivityRow{
				Die:   dice.Die{Sides: size}.Label(),
				Sides: size,
				Cells: cells,
			})
		}
		for _, m := range table.Marginals() {
			entry := MarginalEntry{
				Transition:      m.Label(),
				From:            m.From,
				To:              m.To,
				Target:          m.Target,
				Delta:           f.probability(m.Delta),
				RelativeDefined: m.RelativeDefined,
				Magnitude:       string(m.Magnitude),
			}
			if m.RelativeDefined {
				relative := f.rational(*m.Relative)
				entry.Relative = &relative
			}
			result.Marginals = append(result.Marginals, entry)
		}
		for _, a := range table.Accelerations() {
			result.Accelerations = append(result.Accelerations, AccelerationEntry{
				Transition: "d" + strconv.Itoa(a.From) + "→d" + strconv.Itoa(a.Via) + "→d" + strconv.Itoa(a.To),
				Target:     a.Target,
				Value:      f.probability(a.Value),
			})
		}
		for _, p := range table.Patterns() {
			result.Patterns = append(result.Patterns, PatternEntry{
				Target:  p.Target,
				Pattern: string(p.Pattern),
				Peaks:   transitionLabels(p.Peaks),
				Troughs: transitionLabels(p.Troughs),
			})
		}

		summary := f.printer.Sprintf("%s against %d variable dice at %d targets: %d marginals",
			result.Reference, len(result.Rows), len(result.Targets), len(result.Marginals))
		return textResult(summary), result, nil
	}
}

func transitionLabels(transitions []sensitivity.Transition) []string {
	out := make([]string, 0, len(transitions))
	for _, t := range transitions {
		out = append(out, t.Label())
	}
	return out
}
