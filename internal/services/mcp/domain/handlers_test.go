package domain

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/louisbranch/explodingdice/internal/analysis"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func testConfig() analysis.Config {
	return analysis.DefaultConfig()
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil || len(result.Content) == 0 {
		t.Fatal("expected text content")
	}
	text, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("expected *mcp.TextContent, got %T", result.Content[0])
	}
	return text.Text
}

func TestSurvivalHandler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		handler := SurvivalHandler(testConfig())
		toolResult, result, err := handler(context.Background(), nil, SurvivalInput{Sides: 6, Target: 8})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Die != "d6" {
			t.Errorf("expected die d6, got %q", result.Die)
		}
		if result.Probability.Exact != "5/36" {
			t.Errorf("expected 5/36, got %q", result.Probability.Exact)
		}
		if result.Probability.Percent != "13.89%" {
			t.Errorf("expected 13.89%%, got %q", result.Probability.Percent)
		}
		if result.Limit != 60000 {
			t.Errorf("expected limit 60000, got %d", result.Limit)
		}
		if text := resultText(t, toolResult); !strings.Contains(text, "5/36") {
			t.Errorf("expected summary to contain 5/36, got %q", text)
		}
	})

	t.Run("non-positive target", func(t *testing.T) {
		handler := SurvivalHandler(testConfig())
		_, result, err := handler(context.Background(), nil, SurvivalInput{Sides: 4, Target: -3})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Probability.Exact != "1" {
			t.Errorf("expected certainty, got %q", result.Probability.Exact)
		}
	})

	t.Run("invalid die", func(t *testing.T) {
		handler := SurvivalHandler(testConfig())
		_, _, err := handler(context.Background(), nil, SurvivalInput{Sides: 1, Target: 3})
		if err == nil {
			t.Fatal("expected error")
		}
		if !strings.HasPrefix(err.Error(), "INVALID_DIE_SIZE: ") {
			t.Errorf("expected code prefix, got %q", err.Error())
		}
	})

	t.Run("target beyond ceiling localized", func(t *testing.T) {
		handler := SurvivalHandler(testConfig())
		_, _, err := handler(context.Background(), nil, SurvivalInput{Sides: 6, Target: 70000, Locale: "pt-BR"})
		if err == nil {
			t.Fatal("expected error")
		}
		if !strings.HasPrefix(err.Error(), "TARGET_OUT_OF_RANGE: ") {
			t.Errorf("expected code prefix, got %q", err.Error())
		}
		if !strings.Contains(err.Error(), "70000") {
			t.Errorf("expected target in message, got %q", err.Error())
		}
	})
}

func TestDieStatsHandler(t *testing.T) {
	handler := DieStatsHandler(testConfig())
	_, result, err := handler(context.Background(), nil, DieStatsInput{Sides: 6})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ExpectedValue.Exact != "21/5" {
		t.Errorf("expected 21/5, got %q", result.ExpectedValue.Exact)
	}
	if result.ExplosionChance.Exact != "1/6" {
		t.Errorf("expected 1/6, got %q", result.ExplosionChance.Exact)
	}
	if len(result.Survival) != 4 || result.Survival[0].Target != 4 {
		t.Fatalf("expected default targets, got %+v", result.Survival)
	}

	_, custom, err := handler(context.Background(), nil, DieStatsInput{Sides: 4, Targets: []int{10}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(custom.Survival) != 1 || custom.Survival[0].Probability.Exact != "3/64" {
		t.Fatalf("expected S(4,10) = 3/64, got %+v", custom.Survival)
	}

	if _, _, err := handler(context.Background(), nil, DieStatsInput{Sides: 0}); err == nil {
		t.Fatal("expected error for invalid die")
	}
}

func TestCombineMaxHandler(t *testing.T) {
	handler := CombineMaxHandler(testConfig())
	_, result, err := handler(context.Background(), nil, CombineMaxInput{DieA: 6, DieB: 4, Target: 6})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Pair != "d6+d4" {
		t.Errorf("expected pair d6+d4, got %q", result.Pair)
	}
	if result.Combined.Exact != "31/96" {
		t.Errorf("expected 31/96, got %q", result.Combined.Exact)
	}
	if result.Overlap.Exact != "1/32" {
		t.Errorf("expected overlap 1/32, got %q", result.Overlap.Exact)
	}

	if _, _, err := handler(context.Background(), nil, CombineMaxInput{DieA: 6, DieB: 1, Target: 6}); err == nil {
		t.Fatal("expected error for invalid die")
	}
}

func TestSensitivityTableHandler(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		handler := SensitivityTableHandler(testConfig())
		_, result, err := handler(context.Background(), nil, SensitivityTableInput{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Reference != "d6" || len(result.Rows) != 5 || len(result.Targets) != 4 {
			t.Fatalf("unexpected shape: reference %q rows %d targets %d", result.Reference, len(result.Rows), len(result.Targets))
		}
		if len(result.Marginals) != 16 || len(result.Accelerations) != 12 || len(result.Patterns) != 4 {
			t.Fatalf("unexpected analytics: %d marginals %d accelerations %d patterns",
				len(result.Marginals), len(result.Accelerations), len(result.Patterns))
		}
		var found bool
		for _, m := range result.Marginals {
			if m.Transition == "d4→d6" && m.Target == 6 {
				found = true
				if m.Delta.Exact != "-5/288" {
					t.Errorf("expected -5/288, got %q", m.Delta.Exact)
				}
				if m.Relative == nil || m.Relative.Exact != "-5/93" {
					t.Errorf("expected relative -5/93, got %+v", m.Relative)
				}
				if m.Magnitude != "moderate" {
					t.Errorf("expected moderate, got %q", m.Magnitude)
				}
			}
		}
		if !found {
			t.Fatal("expected d4→d6 marginal at 6")
		}
		if result.Patterns[1].Pattern != "non-monotonic" || len(result.Patterns[1].Peaks) != 1 || result.Patterns[1].Peaks[0] != "d6→d8" {
			t.Errorf("unexpected pattern at 6: %+v", result.Patterns[1])
		}
		if result.Accelerations[0].Transition != "d4→d6→d8" {
			t.Errorf("unexpected acceleration label %q", result.Accelerations[0].Transition)
		}
	})

	t.Run("single size has no marginals", func(t *testing.T) {
		handler := SensitivityTableHandler(testConfig())
		_, result, err := handler(context.Background(), nil, SensitivityTableInput{Reference: 8, Sizes: []int{10}, Targets: []int{5}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Marginals == nil || len(result.Marginals) != 0 {
			t.Fatalf("expected empty marginals, got %+v", result.Marginals)
		}
		if result.Patterns[0].Pattern != "undetermined" {
			t.Errorf("expected undetermined, got %q", result.Patterns[0].Pattern)
		}
	})

	t.Run("unordered sizes", func(t *testing.T) {
		handler := SensitivityTableHandler(testConfig())
		_, _, err := handler(context.Background(), nil, SensitivityTableInput{Sizes: []int{8, 6}})
		if err == nil {
			t.Fatal("expected error")
		}
		if !strings.HasPrefix(err.Error(), "SIZES_UNORDERED: ") {
			t.Errorf("expected code prefix, got %q", err.Error())
		}
		if !strings.Contains(err.Error(), "8") || !strings.Contains(err.Error(), "6") {
			t.Errorf("expected sizes in message, got %q", err.Error())
		}
	})
}

func TestDominanceHandler(t *testing.T) {
	t.Run("variable dominant", func(t *testing.T) {
		handler := DominanceHandler(testConfig())
		_, result, err := handler(context.Background(), nil, DominanceInput{Variable: 12, Target: 10})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Pair != "d6+d12" {
			t.Errorf("expected d6+d12, got %q", result.Pair)
		}
		if result.Regime != "variable-dominant" {
			t.Errorf("expected variable-dominant, got %q", result.Regime)
		}
		if result.Ratio == nil || result.Ratio.Exact != "11/3" {
			t.Errorf("expected ratio 11/3, got %+v", result.Ratio)
		}
		if result.BaseRegime != "low" {
			t.Errorf("expected low base regime, got %q", result.BaseRegime)
		}
		if result.Note != "" {
			t.Errorf("expected no note, got %q", result.Note)
		}
	})

	t.Run("undefined ratio", func(t *testing.T) {
		handler := DominanceHandler(testConfig())
		_, result, err := handler(context.Background(), nil, DominanceInput{Reference: 6, Variable: 8, Target: 1})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.RatioDefined || result.Ratio != nil {
			t.Fatalf("expected undefined ratio, got %+v", result.Ratio)
		}
		if result.Regime != "variable-dominant" {
			t.Errorf("expected variable-dominant, got %q", result.Regime)
		}
		if result.BaseRegime != "ceiling" {
			t.Errorf("expected ceiling base regime, got %q", result.BaseRegime)
		}
		if !strings.Contains(result.Note, "undefined") {
			t.Errorf("expected undefined-ratio note, got %q", result.Note)
		}
	})
}

func TestTargetCurveHandler(t *testing.T) {
	handler := TargetCurveHandler(testConfig())
	toolResult, result, err := handler(context.Background(), nil, TargetCurveInput{Variable: 6, MaxTarget: 12})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Points) != 12 {
		t.Fatalf("expected 12 points, got %d", len(result.Points))
	}
	if len(result.Bands) != 6 || result.Bands[0].Difficulty != "trivial" {
		t.Fatalf("unexpected bands: %+v", result.Bands)
	}
	if len(result.Recommendations) != 3 || result.Recommendations[0].Target != 4 {
		t.Fatalf("unexpected recommendations: %+v", result.Recommendations)
	}
	if last := result.Crossings[len(result.Crossings)-1]; last.Found {
		t.Errorf("expected 5%% threshold not crossed by 12, got %+v", last)
	}
	if text := resultText(t, toolResult); !strings.Contains(text, "d6+d6") {
		t.Errorf("expected pair in summary, got %q", text)
	}

	_, defaulted, err := handler(context.Background(), nil, TargetCurveInput{Variable: 8})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(defaulted.Points) != testConfig().CurveMaxTarget {
		t.Fatalf("expected %d points, got %d", testConfig().CurveMaxTarget, len(defaulted.Points))
	}

	if _, _, err := handler(context.Background(), nil, TargetCurveInput{Variable: 8, MaxTarget: -1}); err == nil {
		t.Fatal("expected error for negative max target")
	}
}

func TestTargetCurveHandlerSlopesAndRanges(t *testing.T) {
	handler := TargetCurveHandler(testConfig())
	toolResult, result, err := handler(context.Background(), nil, TargetCurveInput{Variable: 6, MaxTarget: 16})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.SteepAbove == nil || result.SteepAbove.Exact != "1/9" {
		t.Fatalf("unexpected steep threshold: %+v", result.SteepAbove)
	}
	if len(result.Steep) != 3 || result.Steep[0].Target != 3 || result.Steep[2].Target != 5 {
		t.Fatalf("unexpected steep steps: %+v", result.Steep)
	}
	if result.Steep[2].Delta.Exact != "-1/4" {
		t.Errorf("expected -1/4 at the steepest step, got %q", result.Steep[2].Delta.Exact)
	}
	if len(result.Flat) == 0 {
		t.Fatal("expected flat steps")
	}
	names := make([]string, 0, len(result.Ranges))
	for _, r := range result.Ranges {
		names = append(names, r.Name)
	}
	if strings.Join(names, ",") != "trivial,balanced,heroic,nearly-impossible" {
		t.Fatalf("unexpected ranges: %+v", result.Ranges)
	}
	if r := result.Ranges[1]; r.MinTarget != 5 || r.MaxTarget != 5 {
		t.Errorf("expected balanced at 5, got %+v", r)
	}
	if text := resultText(t, toolResult); !strings.Contains(text, "steepest from 3 to 6") {
		t.Errorf("expected steep region in summary, got %q", text)
	}
}

func TestTargetCurveHandlerRejectsHugeMaxTarget(t *testing.T) {
	handler := TargetCurveHandler(testConfig())
	_, _, err := handler(context.Background(), nil, TargetCurveInput{Variable: 6, MaxTarget: math.MaxInt})
	if err == nil {
		t.Fatal("expected error for a max target beyond the ceiling")
	}
	if !strings.HasPrefix(err.Error(), "TARGET_OUT_OF_RANGE: ") {
		t.Fatalf("expected TARGET_OUT_OF_RANGE prefix, got %q", err.Error())
	}
}

func TestConfigHandler(t *testing.T) {
	handler := ConfigHandler(testConfig())
	_, result, err := handler(context.Background(), nil, ConfigInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ReferenceDie != 6 || result.CacheStrategy != "precompute" {
		t.Fatalf("unexpected config: %+v", result)
	}
	if len(result.Env) != 7 || result.Env[0].Name != "EXPLODING_DICE_REFERENCE_DIE" || result.Env[0].Default != "6" {
		t.Fatalf("unexpected env vars: %+v", result.Env)
	}
	if len(result.Locales) == 0 || result.Locales[0] != "en-US" {
		t.Fatalf("unexpected locales: %v", result.Locales)
	}
}

func TestFormatterLocalizesPercent(t *testing.T) {
	handler := SurvivalHandler(testConfig())
	_, result, err := handler(context.Background(), nil, SurvivalInput{Sides: 6, Target: 8, Locale: "pt-BR"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Probability.Percent != "13,89%" {
		t.Errorf("expected 13,89%%, got %q", result.Probability.Percent)
	}

	_, fallback, err := handler(context.Background(), nil, SurvivalInput{Sides: 6, Target: 8, Locale: "not a locale!"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fallback.Probability.Percent != "13.89%" {
		t.Errorf("expected en-US fallback 13.89%%, got %q", fallback.Probability.Percent)
	}
}
