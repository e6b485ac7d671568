// Package dice describes exploding dice.
//
// An exploding die of N faces is rolled once; whenever it shows its maximum
// face N it is rolled again and the new result is added to the running
// total, without bound. A Die carries nothing but its face count.
package dice

import (
	"fmt"
	"math/big"
	"strconv"

	"github.com/louisbranch/explodingdice/internal/core/probability"
	apperrors "github.com/louisbranch/explodingdice/internal/platform/errors"
)

// MinSides is the smallest face count a die may have. A one-faced die would
// explode on every roll and never settle on a total.
const MinSides = 2

// ErrInvalidDieSize indicates a die with fewer than MinSides faces.
var ErrInvalidDieSize = apperrors.New(apperrors.CodeInvalidDieSize, "die size must be at least 2")

// Die is an exploding die identified solely by its face count.
type Die struct {
	Sides int
}

// New returns a die with the given number of faces.
func New(sides int) (Die, error) {
	if err := Validate(sides); err != nil {
		return Die{}, err
	}
	return Die{Sides: sides}, nil
}

// Must is like New but panics on an invalid size. Intended for constants in
// tests and package-level defaults.
func Must(sides int) Die {
	d, err := New(sides)
	if err != nil {
		panic(err)
	}
	return d
}

// Validate returns ErrInvalidDieSize (carrying the offending size as
// metadata) when sides is below MinSides.
func Validate(sides int) error {
	if sides < MinSides {
		return apperrors.WithMetadata(
			apperrors.CodeInvalidDieSize,
			fmt.Sprintf("die size %d is invalid: must be at least %d", sides, MinSides),
			map[string]string{"Sides": strconv.Itoa(sides)},
		)
	}
	return nil
}

// Label renders the conventional dN notation.
func (d Die) Label() string {
	return "d" + strconv.Itoa(d.Sides)
}

// String implements fmt.Stringer.
func (d Die) String() string {
	return d.Label()
}

// ExplosionChance is the probability 1/N of rolling the maximum face.
func (d Die) ExplosionChance() probability.Value {
	return probability.Frac(1, int64(d.Sides))
}

// ExpectedValue returns the exact mean total of the exploding die,
// N(N+1) / (2(N−1)).
//
// Each roll contributes (N+1)/2 on average and a further roll follows with
// probability 1/N, so the mean is (N+1)/2 · N/(N−1).
func (d Die) ExpectedValue() probability.Value {
	n := big.NewInt(int64(d.Sides))
	num := new(big.Int).Mul(n, new(big.Int).Add(n, big.NewInt(1)))
	den := new(big.Int).Lsh(new(big.Int).Sub(n, big.NewInt(1)), 1)
	return probability.FromRat(new(big.Rat).SetFrac(num, den))
}

// Pair is an ordered pair of dice: a fixed reference die and a variable die.
type Pair struct {
	Reference Die
	Variable  Die
}

// NewPair validates both face counts and returns the pair.
func NewPair(reference, variable int) (Pair, error) {
	ref, err := New(reference)
	if err != nil {
		return Pair{}, err
	}
	v, err := New(variable)
	if err != nil {
		return Pair{}, err
	}
	return Pair{Reference: ref, Variable: v}, nil
}

// Label renders the pair as "d6+d8".
func (p Pair) Label() string {
	return p.Reference.Label() + "+" + p.Variable.Label()
}
