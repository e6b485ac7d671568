// Package dominance attributes a combined success to the die that carried it.
//
// For a reference die and a variable die at a target, the exclusive
// contributions are
//
//	Cref = Sref · (1 − Svar)   only the reference succeeds
//	Cvar = Svar · (1 − Sref)   only the variable succeeds
//
// and the dominance ratio is r = Cvar / Cref.
package dominance

import (
	"fmt"

	"github.com/louisbranch/explodingdice/internal/core/combine"
	"github.com/louisbranch/explodingdice/internal/core/dice"
	"github.com/louisbranch/explodingdice/internal/core/probability"
	apperrors "github.com/louisbranch/explodingdice/internal/platform/errors"
)

// ErrUndefinedRatio marks a result whose reference contribution is zero.
// Classify never returns it; callers that need a ratio use Result.Err.
var ErrUndefinedRatio = apperrors.New(apperrors.CodeUndefinedRatio, "dominance ratio is undefined when the reference contribution is zero")

// Regime names which die drives success at a target.
type Regime string

const (
	RegimeReferenceDominant Regime = "reference-dominant"
	RegimeBalanced          Regime = "balanced"
	RegimeVariableDominant  Regime = "variable-dominant"
)

var (
	lowerBound = probability.Frac(1, 2)
	upperBound = probability.Frac(2, 1)
)

// Result is the dominance classification at one target.
type Result struct {
	Reference int `json:"reference"`
	Variable  int `json:"variable"`
	Target    int `json:"target"`

	Sref probability.Value `json:"sref"`
	Svar probability.Value `json:"svar"`
	Cref probability.Value `json:"cref"`
	Cvar probability.Value `json:"cvar"`
	// Overlap is Sref · Svar, the chance both dice succeed.
	Overlap  probability.Value `json:"overlap"`
	Combined probability.Value `json:"combined"`

	// Ratio is Cvar / Cref, nil when Cref is zero.
	Ratio        *probability.Value `json:"ratio,omitempty"`
	RatioDefined bool               `json:"ratio_defined"`
	Regime       Regime             `json:"regime"`
}

// Err returns ErrUndefinedRatio when the ratio could not be computed.
func (r Result) Err() error {
	if r.RatioDefined {
		return nil
	}
	return ErrUndefinedRatio
}

// Classify computes the contributions and regime for reference and variable
// at target. A zero reference contribution is classified variable-dominant
// with RatioDefined unset.
func Classify(engine combine.Survivor, reference, variable, target int) (Result, error) {
	c, err := combine.Breakdown(engine, dice.Die{Sides: reference}, dice.Die{Sides: variable}, target)
	if err != nil {
		return Result{}, err
	}
	res := Result{
		Reference: reference,
		Variable:  variable,
		Target:    target,
		Sref:      c.A,
		Svar:      c.B,
		Cref:      c.OnlyA,
		Cvar:      c.OnlyB,
		Overlap:   c.Overlap,
		Combined:  c.Combined,
	}

	ratio, ok := res.Cvar.Quo(res.Cref)
	if !ok {
		res.Regime = RegimeVariableDominant
		return res, nil
	}
	res.Ratio = &ratio
	res.RatioDefined = true
	res.Regime = regimeOf(ratio)
	return res, nil
}

func regimeOf(ratio probability.Value) Regime {
	switch {
	case ratio.Cmp(lowerBound) < 0:
		return RegimeReferenceDominant
	case ratio.Cmp(upperBound) > 0:
		return RegimeVariableDominant
	default:
		return RegimeBalanced
	}
}

// Grid classifies every (variable, target) pair against one reference die.
// Rows follow variables and columns follow targets.
func Grid(engine combine.Survivor, reference int, variables, targets []int) ([][]Result, error) {
	out := make([][]Result, len(variables))
	for i, variable := range variables {
		row := make([]Result, len(targets))
		for j, target := range targets {
			res, err := Classify(engine, reference, variable, target)
			if err != nil {
				return nil, fmt.Errorf("dominance d%d+d%d at %d: %w", reference, variable, target, err)
			}
			row[j] = res
		}
		out[i] = row
	}
	return out, nil
}
