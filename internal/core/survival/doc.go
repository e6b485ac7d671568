// Package survival computes S(N, T), the exact probability that a single
// exploding die of N faces totals at least T.
//
// # Recurrence
//
//   - T ≤ 0: S = 1, any roll already meets the target.
//   - 1 ≤ T ≤ N: S = (N − T + 1) / N, the faces that meet T on the first roll.
//     The maximum face is among them: exploding only raises the total.
//   - T > N: S = (1/N) · S(N, T − N). Only the maximum face keeps the die
//     alive; every other first roll falls short.
//
// The recurrence is evaluated with an explicit loop that walks down the
// explosion chain in steps of N, so evaluation depth is bounded by ⌈T/N⌉ and
// never by the call stack.
//
// # Caching
//
// Every evaluated (N, T) pair with T ≥ 1 is stored in a Cache owned by the
// caller, typically one analysis run. Two population disciplines are
// supported:
//
//   - Lazy: concurrent callers share a Cache; at most one evaluation per key
//     is in flight and racing callers receive the same value.
//   - Precompute then freeze: Precompute fills the cache sequentially and
//     Freeze makes it read-only. Misses on a frozen cache are evaluated
//     without being stored.
//
// A failed evaluation never writes to the cache.
package survival
