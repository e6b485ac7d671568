// Package sensitivity measures how the two-dice maximum responds to changes
// in the variable die and in the target.
//
// Across die sizes it produces a probability table, the first differences
// between consecutive sizes (marginals), their second differences
// (accelerations) and a magnitude class per marginal. Across targets it
// produces a Curve with first and second differences in T, inflection points,
// threshold crossings and difficulty bands.
//
// Nothing here assumes the combined probability grows with die size. Larger
// dice explode less often, so an upgrade can lower the probability at some
// targets; those marginals are negative and are reported as such. Only
// monotonicity in the target is guaranteed.
package sensitivity
