// Package probability provides exact rational probability values.
//
// Values are immutable: every operation returns a new Value and the
// underlying big.Rat is never shared with callers. Exactness is what lets
// equality and ordering checks across chained explosions hold without any
// floating-point tolerance; Float64 exists only for presentation.
package probability

import (
	"encoding/json"
	"fmt"
	"math/big"
)

// Value is an exact rational probability.
//
// The zero Value is 0.
type Value struct {
	r *big.Rat
}

var (
	zeroRat = new(big.Rat)
	oneRat  = big.NewRat(1, 1)
)

// Zero returns the probability 0.
func Zero() Value { return Value{} }

// One returns the probability 1.
func One() Value { return Value{r: new(big.Rat).Set(oneRat)} }

// Frac returns num/den. It panics when den is zero, like big.NewRat.
func Frac(num, den int64) Value {
	return Value{r: big.NewRat(num, den)}
}

// FromRat copies r into a new Value.
func FromRat(r *big.Rat) Value {
	if r == nil {
		return Value{}
	}
	return Value{r: new(big.Rat).Set(r)}
}

func (v Value) rat() *big.Rat {
	if v.r == nil {
		return zeroRat
	}
	return v.r
}

// Rat returns a copy of the underlying rational.
func (v Value) Rat() *big.Rat {
	return new(big.Rat).Set(v.rat())
}

// Complement returns 1 − v.
func (v Value) Complement() Value {
	return Value{r: new(big.Rat).Sub(oneRat, v.rat())}
}

// Add returns v + w.
func (v Value) Add(w Value) Value {
	return Value{r: new(big.Rat).Add(v.rat(), w.rat())}
}

// Sub returns v − w. The result may be negative; differences between
// probabilities are signed.
func (v Value) Sub(w Value) Value {
	return Value{r: new(big.Rat).Sub(v.rat(), w.rat())}
}

// Mul returns v · w.
func (v Value) Mul(w Value) Value {
	return Value{r: new(big.Rat).Mul(v.rat(), w.rat())}
}

// Quo returns v / w and false when w is zero.
func (v Value) Quo(w Value) (Value, bool) {
	if w.IsZero() {
		return Value{}, false
	}
	return Value{r: new(big.Rat).Quo(v.rat(), w.rat())}, true
}

// Abs returns |v|.
func (v Value) Abs() Value {
	return Value{r: new(big.Rat).Abs(v.rat())}
}

// Neg returns −v.
func (v Value) Neg() Value {
	return Value{r: new(big.Rat).Neg(v.rat())}
}

// Cmp compares v and w and returns -1, 0 or +1.
func (v Value) Cmp(w Value) int {
	return v.rat().Cmp(w.rat())
}

// Equal reports whether v and w are exactly equal.
func (v Value) Equal(w Value) bool {
	return v.Cmp(w) == 0
}

// Sign returns -1, 0 or +1 depending on the sign of v.
func (v Value) Sign() int {
	return v.rat().Sign()
}

// IsZero reports whether v is exactly 0.
func (v Value) IsZero() bool {
	return v.Sign() == 0
}

// Max returns the larger of v and w.
func Max(v, w Value) Value {
	if v.Cmp(w) >= 0 {
		return v
	}
	return w
}

// Float64 returns the nearest float64 to v.
func (v Value) Float64() float64 {
	f, _ := v.rat().Float64()
	return f
}

// String renders v as "a/b" (or "a" for integers).
func (v Value) String() string {
	return v.rat().RatString()
}

// Decimal renders v with prec digits after the decimal point.
func (v Value) Decimal(prec int) string {
	return v.rat().FloatString(prec)
}

// jsonValue is the wire shape shared with reporting collaborators.
type jsonValue struct {
	Exact  string  `json:"exact"`
	Approx float64 `json:"approx"`
}

// MarshalJSON encodes v as its exact fraction plus a float approximation.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonValue{Exact: v.String(), Approx: v.Float64()})
}

// UnmarshalJSON decodes the exact fraction written by MarshalJSON.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw jsonValue
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r, ok := new(big.Rat).SetString(raw.Exact)
	if !ok {
		return fmt.Errorf("parse exact probability %q", raw.Exact)
	}
	v.r = r
	return nil
}
