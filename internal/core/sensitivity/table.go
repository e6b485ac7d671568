package sensitivity

import (
	"fmt"
	"strconv"

	"github.com/louisbranch/explodingdice/internal/core/combine"
	"github.com/louisbranch/explodingdice/internal/core/dice"
	"github.com/louisbranch/explodingdice/internal/core/probability"
	apperrors "github.com/louisbranch/explodingdice/internal/platform/errors"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrNoSizes indicates an empty variable die sequence.
	ErrNoSizes = apperrors.New(apperrors.CodeSizesMissing, "at least one variable die size is required")
	// ErrUnorderedSizes indicates variable die sizes that are not strictly increasing.
	ErrUnorderedSizes = apperrors.New(apperrors.CodeSizesUnordered, "variable die sizes must be strictly increasing")
	// ErrNoTargets indicates an empty target set.
	ErrNoTargets = apperrors.New(apperrors.CodeTargetsMissing, "at least one target is required")
)

// Analyzer builds sensitivity tables and curves from a survival engine.
type Analyzer struct {
	engine      combine.Survivor
	parallelism int
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithParallelism computes up to n table rows at once. The engine must then
// be safe for concurrent use.
func WithParallelism(n int) Option {
	return func(a *Analyzer) {
		if n >= 1 {
			a.parallelism = n
		}
	}
}

// New returns an Analyzer over engine.
func New(engine combine.Survivor, opts ...Option) *Analyzer {
	a := &Analyzer{engine: engine, parallelism: 1}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Table holds P[i][j] = P(max(reference, Sizes[i]) ≥ Targets[j]).
type Table struct {
	Reference int                   `json:"reference"`
	Sizes     []int                 `json:"sizes"`
	Targets   []int                 `json:"targets"`
	Cells     [][]probability.Value `json:"cells"`
}

// Transition names a step between consecutive variable die sizes.
type Transition struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// Label renders the transition as "d4→d6".
func (t Transition) Label() string {
	return "d" + strconv.Itoa(t.From) + "→d" + strconv.Itoa(t.To)
}

// Marginal is the change in combined probability when the variable die
// moves from one configured size to the next, at a fixed target.
type Marginal struct {
	Transition
	Target int `json:"target"`
	// Base is the probability before the upgrade.
	Base probability.Value `json:"base"`
	// Delta is signed; a negative value means the upgrade hurts.
	Delta probability.Value `json:"delta"`
	// Relative is Delta / Base, nil when Base is zero.
	Relative        *probability.Value `json:"relative,omitempty"`
	RelativeDefined bool               `json:"relative_defined"`
	Magnitude       Magnitude          `json:"magnitude"`
}

// Acceleration is the second difference across two consecutive transitions.
type Acceleration struct {
	From   int               `json:"from"`
	Via    int               `json:"via"`
	To     int               `json:"to"`
	Target int               `json:"target"`
	Value  probability.Value `json:"value"`
}

// Efficiency is the combined probability per face of the variable die.
type Efficiency struct {
	Size   int               `json:"size"`
	Target int               `json:"target"`
	Value  probability.Value `json:"value"`
}

// ValidateSizes checks that sizes is non-empty and strictly increasing.
func ValidateSizes(sizes []int) error {
	if len(sizes) == 0 {
		return ErrNoSizes
	}
	for i := 1; i < len(sizes); i++ {
		if sizes[i] <= sizes[i-1] {
			return apperrors.WithMetadata(
				apperrors.CodeSizesUnordered,
				fmt.Sprintf("variable die sizes must be strictly increasing: %d then %d", sizes[i-1], sizes[i]),
				map[string]string{
					"Previous": strconv.Itoa(sizes[i-1]),
					"Next":     strconv.Itoa(sizes[i]),
				},
			)
		}
	}
	return nil
}

// Table computes the probability table for the reference die paired with
// each variable size at each target.
func (a *Analyzer) Table(reference int, sizes []int, targets []int) (Table, error) {
	if err := dice.Validate(reference); err != nil {
		return Table{}, err
	}
	if err := ValidateSizes(sizes); err != nil {
		return Table{}, err
	}
	if len(targets) == 0 {
		return Table{}, ErrNoTargets
	}

	ref := dice.Die{Sides: reference}
	cells := make([][]probability.Value, len(sizes))
	row := func(i int) error {
		out := make([]probability.Value, len(targets))
		for j, target := range targets {
			p, err := combine.Max(a.engine, ref, dice.Die{Sides: sizes[i]}, target)
			if err != nil {
				return err
			}
			out[j] = p
		}
		cells[i] = out
		return nil
	}

	if a.parallelism <= 1 {
		for i := range sizes {
			if err := row(i); err != nil {
				return Table{}, err
			}
		}
	} else {
		var g errgroup.Group
		g.SetLimit(a.parallelism)
		for i := range sizes {
			g.Go(func() error { return row(i) })
		}
		if err := g.Wait(); err != nil {
			return Table{}, err
		}
	}

	return Table{
		Reference: reference,
		Sizes:     append([]int(nil), sizes...),
		Targets:   append([]int(nil), targets...),
		Cells:     cells,
	}, nil
}

// Lookup returns the cell for a size and target.
func (t Table) Lookup(size, target int) (probability.Value, bool) {
	i, j := indexOf(t.Sizes, size), indexOf(t.Targets, target)
	if i < 0 || j < 0 {
		return probability.Value{}, false
	}
	return t.Cells[i][j], true
}

// Marginals returns one record per (transition, target), transitions in size
// order and targets in table order within each transition.
func (t Table) Marginals() []Marginal {
	if len(t.Sizes) < 2 {
		return nil
	}
	out := make([]Marginal, 0, (len(t.Sizes)-1)*len(t.Targets))
	for i := 0; i+1 < len(t.Sizes); i++ {
		for j, target := range t.Targets {
			out = append(out, t.marginal(i, j, target))
		}
	}
	return out
}

// MarginalsAt returns the marginals for one target in size order.
func (t Table) MarginalsAt(target int) []Marginal {
	j := indexOf(t.Targets, target)
	if j < 0 || len(t.Sizes) < 2 {
		return nil
	}
	out := make([]Marginal, 0, len(t.Sizes)-1)
	for i := 0; i+1 < len(t.Sizes); i++ {
		out = append(out, t.marginal(i, j, target))
	}
	return out
}

func (t Table) marginal(i, j, target int) Marginal {
	base := t.Cells[i][j]
	delta := t.Cells[i+1][j].Sub(base)
	m := Marginal{
		Transition: Transition{From: t.Sizes[i], To: t.Sizes[i+1]},
		Target:     target,
		Base:       base,
		Delta:      delta,
		Magnitude:  Classify(delta),
	}
	if relative, ok := delta.Quo(base); ok {
		m.Relative = &relative
		m.RelativeDefined = true
	}
	return m
}

// Accelerations returns Δ(i+1→i+2) − Δ(i→i+1) for every target, in the same
// ordering as Marginals.
func (t Table) Accelerations() []Acceleration {
	if len(t.Sizes) < 3 {
		return nil
	}
	out := make([]Acceleration, 0, (len(t.Sizes)-2)*len(t.Targets))
	for i := 0; i+2 < len(t.Sizes); i++ {
		for j, target := range t.Targets {
			first := t.Cells[i+1][j].Sub(t.Cells[i][j])
			second := t.Cells[i+2][j].Sub(t.Cells[i+1][j])
			out = append(out, Acceleration{
				From:   t.Sizes[i],
				Via:    t.Sizes[i+1],
				To:     t.Sizes[i+2],
				Target: target,
				Value:  second.Sub(first),
			})
		}
	}
	return out
}

// Efficiency returns P[i][j] / Sizes[i] for every cell.
func (t Table) Efficiency() []Efficiency {
	out := make([]Efficiency, 0, len(t.Sizes)*len(t.Targets))
	for i, size := range t.Sizes {
		faces := probability.Frac(int64(size), 1)
		for j, target := range t.Targets {
			v, _ := t.Cells[i][j].Quo(faces)
			out = append(out, Efficiency{Size: size, Target: target, Value: v})
		}
	}
	return out
}

func indexOf(values []int, want int) int {
	for i, v := range values {
		if v == want {
			return i
		}
	}
	return -1
}
