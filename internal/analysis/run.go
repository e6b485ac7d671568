// Package analysis runs the exploding-dice analytics for one configuration.
//
// A Run owns its survival cache; nothing is shared between runs. Execute
// computes the full report, and the query methods answer single questions
// against the same cache.
package analysis

import (
	"context"
	"fmt"

	"github.com/louisbranch/explodingdice/internal/core/combine"
	"github.com/louisbranch/explodingdice/internal/core/dice"
	"github.com/louisbranch/explodingdice/internal/core/dominance"
	"github.com/louisbranch/explodingdice/internal/core/probability"
	"github.com/louisbranch/explodingdice/internal/core/sensitivity"
	"github.com/louisbranch/explodingdice/internal/core/survival"
	"github.com/louisbranch/explodingdice/internal/platform/id"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const tracerName = "github.com/louisbranch/explodingdice/internal/analysis"

// Run is a single analysis over one configuration and one cache.
type Run struct {
	id       string
	cfg      Config
	cache    *survival.Cache
	engine   *survival.Engine
	analyzer *sensitivity.Analyzer
	tracer   trace.Tracer
}

// NewRun validates cfg and prepares a run with a fresh cache.
func NewRun(cfg Config) (*Run, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	runID, err := id.NewID()
	if err != nil {
		return nil, fmt.Errorf("run id: %w", err)
	}
	cache := survival.NewCache()
	engine := survival.New(cache, survival.WithMaxExplosions(cfg.MaxExplosions))
	return &Run{
		id:       runID,
		cfg:      cfg,
		cache:    cache,
		engine:   engine,
		analyzer: sensitivity.New(engine, sensitivity.WithParallelism(cfg.Parallelism)),
		tracer:   otel.Tracer(tracerName),
	}, nil
}

// ID identifies the run in traces and reports.
func (r *Run) ID() string {
	return r.id
}

// Config returns the validated configuration of the run.
func (r *Run) Config() Config {
	return r.cfg
}

// Cache exposes the run's survival cache.
func (r *Run) Cache() *survival.Cache {
	return r.cache
}

// DieSummary describes one die on its own.
type DieSummary struct {
	Sides         int                 `json:"sides"`
	Label         string              `json:"label"`
	ExpectedValue probability.Value   `json:"expected_value"`
	Survival      []sensitivity.Point `json:"survival"`
}

// Report is the full output of Execute.
type Report struct {
	RunID         string                      `json:"run_id"`
	Config        Config                      `json:"config"`
	Dice          []DieSummary                `json:"dice"`
	Table         sensitivity.Table           `json:"table"`
	Marginals     []sensitivity.Marginal      `json:"marginals"`
	Accelerations []sensitivity.Acceleration  `json:"accelerations"`
	Patterns      []sensitivity.ReturnPattern `json:"patterns"`
	Efficiency    []sensitivity.Efficiency    `json:"efficiency"`
	Dominance     [][]dominance.Result        `json:"dominance"`
	Curves        []sensitivity.Curve         `json:"curves"`
	CacheEntries  int                         `json:"cache_entries"`
}

// Execute computes the full report. With CachePrecompute the cache is filled
// and frozen before any step reads it; with CacheLazy the steps populate it
// concurrently.
func (r *Run) Execute(ctx context.Context) (Report, error) {
	ctx, span := r.tracer.Start(ctx, "analysis.Execute",
		trace.WithAttributes(
			attribute.String("run_id", r.id),
			attribute.Int("reference_die", r.cfg.ReferenceDie),
			attribute.IntSlice("variable_dice", r.cfg.VariableDice),
			attribute.IntSlice("targets", r.cfg.Targets),
			attribute.String("cache_strategy", string(r.cfg.CacheStrategy)),
		),
	)
	defer span.End()

	if r.cfg.CacheStrategy == CachePrecompute {
		if err := r.precompute(ctx); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "precompute failed")
			return Report{}, err
		}
	}

	report := Report{RunID: r.id, Config: r.cfg}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Parallelism)

	g.Go(func() error {
		return r.step(gctx, "analysis.dice", func() (err error) {
			report.Dice, err = r.dieSummaries()
			return err
		})
	})
	g.Go(func() error {
		return r.step(gctx, "analysis.table", func() error {
			table, err := r.analyzer.Table(r.cfg.ReferenceDie, r.cfg.VariableDice, r.cfg.Targets)
			if err != nil {
				return err
			}
			report.Table = table
			report.Marginals = table.Marginals()
			report.Accelerations = table.Accelerations()
			report.Patterns = table.Patterns()
			report.Efficiency = table.Efficiency()
			return nil
		})
	})
	g.Go(func() error {
		return r.step(gctx, "analysis.dominance", func() (err error) {
			report.Dominance, err = dominance.Grid(r.engine, r.cfg.ReferenceDie, r.cfg.VariableDice, r.cfg.Targets)
			return err
		})
	})
	curves := make([]sensitivity.Curve, len(r.cfg.VariableDice))
	for i, variable := range r.cfg.VariableDice {
		g.Go(func() error {
			return r.step(gctx, "analysis.curve", func() (err error) {
				curves[i], err = r.analyzer.Curve(r.cfg.ReferenceDie, variable, r.cfg.CurveMaxTarget)
				return err
			}, attribute.Int("variable_die", variable))
		})
	}

	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "analysis failed")
		return Report{}, err
	}
	report.Curves = curves
	report.CacheEntries = r.cache.Len()
	span.SetAttributes(attribute.Int("cache_entries", report.CacheEntries))
	return report, nil
}

func (r *Run) precompute(ctx context.Context) error {
	_, span := r.tracer.Start(ctx, "analysis.precompute")
	defer span.End()

	if err := r.engine.Precompute(r.cfg.dice(), r.cfg.curveTargets()); err != nil {
		return fmt.Errorf("precompute: %w", err)
	}
	r.cache.Freeze()
	span.SetAttributes(attribute.Int("cache_entries", r.cache.Len()))
	return nil
}

func (r *Run) step(ctx context.Context, name string, fn func() error, attrs ...attribute.KeyValue) error {
	_, span := r.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
	defer span.End()
	if err := fn(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, name+" failed")
		return err
	}
	return nil
}

func (r *Run) dieSummaries() ([]DieSummary, error) {
	sizes := r.cfg.dice()
	out := make([]DieSummary, 0, len(sizes))
	for _, sides := range sizes {
		d, err := dice.New(sides)
		if err != nil {
			return nil, err
		}
		points := make([]sensitivity.Point, 0, len(r.cfg.Targets))
		for _, target := range r.cfg.Targets {
			p, err := r.engine.Survival(sides, target)
			if err != nil {
				return nil, fmt.Errorf("survival %s ≥ %d: %w", d.Label(), target, err)
			}
			points = append(points, sensitivity.Point{Target: target, Probability: p})
		}
		out = append(out, DieSummary{
			Sides:         sides,
			Label:         d.Label(),
			ExpectedValue: d.ExpectedValue(),
			Survival:      points,
		})
	}
	return out, nil
}

// Limit returns the largest target magnitude the run accepts for a die.
func (r *Run) Limit(sides int) int {
	return r.engine.Limit(sides)
}

// Survival returns S(sides, target).
func (r *Run) Survival(sides, target int) (probability.Value, error) {
	return r.engine.Survival(sides, target)
}

// CombineMax returns P(max(a, b) ≥ target).
func (r *Run) CombineMax(a, b, target int) (probability.Value, error) {
	return combine.MaxSides(r.engine, a, b, target)
}

// Breakdown returns the inclusion/exclusion components of CombineMax.
func (r *Run) Breakdown(a, b, target int) (combine.Components, error) {
	return combine.Breakdown(r.engine, dice.Die{Sides: a}, dice.Die{Sides: b}, target)
}

// SensitivityTable computes the marginal table for reference against sizes.
func (r *Run) SensitivityTable(reference int, sizes, targets []int) (sensitivity.Table, error) {
	return r.analyzer.Table(reference, sizes, targets)
}

// Dominance classifies which die carries success at target.
func (r *Run) Dominance(reference, variable, target int) (dominance.Result, error) {
	return dominance.Classify(r.engine, reference, variable, target)
}

// Curve evaluates the combined probability over 1..maxTarget.
func (r *Run) Curve(reference, variable, maxTarget int) (sensitivity.Curve, error) {
	return r.analyzer.Curve(reference, variable, maxTarget)
}
