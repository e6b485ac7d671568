// Package combine composes two independent exploding dice under the maximum
// operator: roll both, keep the higher total.
//
// The maximum of two independent totals misses a target only when both dice
// miss it, so
//
//	P(max ≥ T) = 1 − (1 − S_a(T)) · (1 − S_b(T))
//
// There is no covariance term; the dice are independent by construction.
package combine

import (
	"fmt"

	"github.com/louisbranch/explodingdice/internal/core/dice"
	"github.com/louisbranch/explodingdice/internal/core/probability"
	apperrors "github.com/louisbranch/explodingdice/internal/platform/errors"
)

// ErrDominanceViolated reports a combined probability below one of its
// single-die inputs. It signals an engine defect, never bad input.
var ErrDominanceViolated = apperrors.New(apperrors.CodeDominanceViolated, "combined probability is below a single die")

// Survivor evaluates single-die survival probabilities.
type Survivor interface {
	Survival(sides, target int) (probability.Value, error)
}

// Max returns the probability that the higher of two independent exploding
// dice totals at least target.
func Max(engine Survivor, a, b dice.Die, target int) (probability.Value, error) {
	sa, sb, err := survivals(engine, a, b, target)
	if err != nil {
		return probability.Value{}, err
	}
	return maxOf(sa, sb), nil
}

// MaxSides is Max for raw face counts.
func MaxSides(engine Survivor, a, b, target int) (probability.Value, error) {
	return Max(engine, dice.Die{Sides: a}, dice.Die{Sides: b}, target)
}

// Components splits P(max ≥ T) by inclusion and exclusion.
type Components struct {
	Target int
	// A and B are the single-die survival probabilities.
	A probability.Value
	B probability.Value
	// OnlyA and OnlyB are the chances that exactly one die succeeds.
	OnlyA probability.Value
	OnlyB probability.Value
	// Overlap is the chance both succeed, A·B.
	Overlap probability.Value
	// Combined is A + B − A·B, equal to Max.
	Combined probability.Value
}

// Breakdown returns the inclusion/exclusion components of Max.
func Breakdown(engine Survivor, a, b dice.Die, target int) (Components, error) {
	sa, sb, err := survivals(engine, a, b, target)
	if err != nil {
		return Components{}, err
	}
	return Components{
		Target:   target,
		A:        sa,
		B:        sb,
		OnlyA:    sa.Mul(sb.Complement()),
		OnlyB:    sb.Mul(sa.Complement()),
		Overlap:  sa.Mul(sb),
		Combined: maxOf(sa, sb),
	}, nil
}

// CheckDominance verifies that Max(a, b, target) is at least each single-die
// survival probability.
func CheckDominance(engine Survivor, a, b dice.Die, target int) error {
	sa, sb, err := survivals(engine, a, b, target)
	if err != nil {
		return err
	}
	combined := maxOf(sa, sb)
	single := probability.Max(sa, sb)
	if combined.Cmp(single) < 0 {
		return apperrors.WithMetadata(
			apperrors.CodeDominanceViolated,
			fmt.Sprintf("max(%s, %s) ≥ %d = %s is below %s", a, b, target, combined, single),
			map[string]string{
				"Combined": combined.String(),
				"Single":   single.String(),
			},
		)
	}
	return nil
}

func survivals(engine Survivor, a, b dice.Die, target int) (probability.Value, probability.Value, error) {
	sa, err := engine.Survival(a.Sides, target)
	if err != nil {
		return probability.Value{}, probability.Value{}, fmt.Errorf("survival %s: %w", a, err)
	}
	sb, err := engine.Survival(b.Sides, target)
	if err != nil {
		return probability.Value{}, probability.Value{}, fmt.Errorf("survival %s: %w", b, err)
	}
	return sa, sb, nil
}

func maxOf(sa, sb probability.Value) probability.Value {
	return sa.Complement().Mul(sb.Complement()).Complement()
}
