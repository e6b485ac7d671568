package report

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"strings"
	"testing"

	"github.com/louisbranch/explodingdice/internal/analysis"
	apperrors "github.com/louisbranch/explodingdice/internal/platform/errors"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if !cfg.Pretty {
		t.Fatal("expected pretty output by default")
	}
	if cfg.DescribeEnv {
		t.Fatal("expected describe-env off by default")
	}
	if cfg.Analysis.CacheStrategy != analysis.CachePrecompute {
		t.Fatalf("expected precompute strategy, got %q", cfg.Analysis.CacheStrategy)
	}
}

func TestParseConfigOverrides(t *testing.T) {
	t.Setenv("EXPLODING_DICE_REPORT_PRETTY", "false")

	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-cache", "lazy", "-parallelism", "2", "-reference", "8"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Pretty {
		t.Fatal("expected env to disable pretty output")
	}
	if cfg.Analysis.CacheStrategy != analysis.CacheLazy {
		t.Fatalf("expected lazy strategy, got %q", cfg.Analysis.CacheStrategy)
	}
	if cfg.Analysis.Parallelism != 2 || cfg.Analysis.ReferenceDie != 8 {
		t.Fatalf("unexpected analysis config %+v", cfg.Analysis)
	}
}

func TestParseConfigRejectsInvalidAnalysis(t *testing.T) {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	_, err := ParseConfig(fs, []string{"-cache", "eager"})
	if err == nil {
		t.Fatal("expected error")
	}
	if got := apperrors.GetCode(err); got != apperrors.CodeConfigInvalid {
		t.Fatalf("code = %s, want %s", got, apperrors.CodeConfigInvalid)
	}
}

func TestRunWritesReport(t *testing.T) {
	cfg := Config{Analysis: analysis.DefaultConfig()}
	cfg.Analysis.CurveMaxTarget = 12

	var out bytes.Buffer
	if err := Run(context.Background(), cfg, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if strings.Count(out.String(), "\n") != 1 {
		t.Fatal("expected compact single-line output")
	}

	var decoded struct {
		Dice []struct {
			Sides int `json:"sides"`
		} `json:"dice"`
		Marginals []json.RawMessage `json:"marginals"`
		Curves    []json.RawMessage `json:"curves"`
	}
	if err := json.Unmarshal(out.Bytes(), &decoded); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if len(decoded.Dice) != 5 || decoded.Dice[0].Sides != 6 {
		t.Fatalf("unexpected dice %+v", decoded.Dice)
	}
	if len(decoded.Marginals) != 16 {
		t.Fatalf("expected 16 marginals, got %d", len(decoded.Marginals))
	}
	if len(decoded.Curves) != 5 {
		t.Fatalf("expected 5 curves, got %d", len(decoded.Curves))
	}
	if !strings.Contains(out.String(), `"exact":"31/96"`) {
		t.Fatal("expected exact fraction 31/96 in report")
	}
}

func TestRunReportUsesSnakeCaseKeys(t *testing.T) {
	cfg := Config{Analysis: analysis.DefaultConfig()}
	cfg.Analysis.CurveMaxTarget = 12

	var out bytes.Buffer
	if err := Run(context.Background(), cfg, &out); err != nil {
		t.Fatalf("run: %v", err)
	}

	var decoded struct {
		Table struct {
			Reference int `json:"reference"`
		} `json:"table"`
		Marginals []struct {
			From            int  `json:"from"`
			To              int  `json:"to"`
			RelativeDefined bool `json:"relative_defined"`
		} `json:"marginals"`
		Dominance [][]struct {
			Regime string `json:"regime"`
		} `json:"dominance"`
		Curves []struct {
			MaxTarget int `json:"max_target"`
		} `json:"curves"`
	}
	if err := json.Unmarshal(out.Bytes(), &decoded); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if decoded.Table.Reference != 6 {
		t.Fatalf("table reference = %d, want 6", decoded.Table.Reference)
	}
	if m := decoded.Marginals[0]; m.From == 0 || m.To == 0 || !m.RelativeDefined {
		t.Fatalf("unexpected first marginal %+v", m)
	}
	if len(decoded.Dominance) == 0 || decoded.Dominance[0][0].Regime == "" {
		t.Fatalf("unexpected dominance %+v", decoded.Dominance)
	}
	if decoded.Curves[0].MaxTarget != 12 {
		t.Fatalf("curve max target = %d, want 12", decoded.Curves[0].MaxTarget)
	}
	for _, key := range []string{`"Reference"`, `"RelativeDefined"`, `"MaxTarget"`, `"Regime"`} {
		if strings.Contains(out.String(), key) {
			t.Fatalf("unexpected Go field name %s in report", key)
		}
	}
}

func TestRunPrettyIndents(t *testing.T) {
	cfg := Config{Pretty: true, Analysis: analysis.DefaultConfig()}
	cfg.Analysis.VariableDice = []int{4}
	cfg.Analysis.Targets = []int{4}
	cfg.Analysis.CurveMaxTarget = 4

	var out bytes.Buffer
	if err := Run(context.Background(), cfg, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.HasPrefix(out.String(), "{\n  \"run_id\"") {
		t.Fatalf("expected indented output, got %.40q", out.String())
	}
}

func TestRunDescribeEnv(t *testing.T) {
	var out bytes.Buffer
	if err := Run(context.Background(), Config{DescribeEnv: true}, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	var vars []struct {
		Name    string `json:"name"`
		Default string `json:"default"`
	}
	if err := json.Unmarshal(out.Bytes(), &vars); err != nil {
		t.Fatalf("decode env vars: %v", err)
	}
	if len(vars) != 8 {
		t.Fatalf("expected 8 env vars, got %d", len(vars))
	}
	if vars[0].Name != "EXPLODING_DICE_REPORT_PRETTY" || vars[0].Default != "true" {
		t.Fatalf("unexpected first env var %+v", vars[0])
	}
}

func TestRunPropagatesAnalysisErrors(t *testing.T) {
	cfg := Config{Analysis: analysis.DefaultConfig()}
	cfg.Analysis.Parallelism = 0
	if err := Run(context.Background(), cfg, &bytes.Buffer{}); err == nil {
		t.Fatal("expected error")
	}
}
