package survival

import (
	"fmt"
	"math"
	"strconv"

	"github.com/louisbranch/explodingdice/internal/core/dice"
	"github.com/louisbranch/explodingdice/internal/core/probability"
	apperrors "github.com/louisbranch/explodingdice/internal/platform/errors"
)

// DefaultMaxExplosions bounds how many explosions a target may require:
// |T| may not exceed DefaultMaxExplosions × N.
const DefaultMaxExplosions = 10000

// ErrTargetOutOfRange indicates |T| exceeds the engine's safety ceiling.
var ErrTargetOutOfRange = apperrors.New(apperrors.CodeTargetOutOfRange, "target exceeds the safety ceiling")

// Engine evaluates survival probabilities against a shared Cache.
type Engine struct {
	cache         *Cache
	maxExplosions int
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxExplosions sets the safety ceiling in explosions. Values below 1
// are ignored.
func WithMaxExplosions(limit int) Option {
	return func(e *Engine) {
		if limit >= 1 {
			e.maxExplosions = limit
		}
	}
}

// New returns an engine backed by cache. A nil cache gets a fresh one.
func New(cache *Cache, opts ...Option) *Engine {
	if cache == nil {
		cache = NewCache()
	}
	e := &Engine{cache: cache, maxExplosions: DefaultMaxExplosions}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Cache returns the engine's cache.
func (e *Engine) Cache() *Cache {
	return e.cache
}

// MaxExplosions returns the configured safety ceiling in explosions.
func (e *Engine) MaxExplosions() int {
	return e.maxExplosions
}

// Limit returns the largest |T| accepted for a die of the given size.
func (e *Engine) Limit(sides int) int {
	if sides <= 0 {
		return 0
	}
	if sides > math.MaxInt/e.maxExplosions {
		return math.MaxInt
	}
	return e.maxExplosions * sides
}

// Survival returns S(sides, target).
//
// Errors:
//   - dice.ErrInvalidDieSize when sides < 2.
//   - ErrTargetOutOfRange when |target| > Limit(sides).
func (e *Engine) Survival(sides, target int) (probability.Value, error) {
	if err := dice.Validate(sides); err != nil {
		return probability.Value{}, err
	}
	if err := e.CheckTarget(sides, target); err != nil {
		return probability.Value{}, err
	}
	if target <= 0 {
		return probability.One(), nil
	}

	key := Key{Sides: sides, Target: target}
	if v, ok := e.cache.Lookup(key); ok {
		return v, nil
	}
	if e.cache.Frozen() {
		return e.evaluate(key, false), nil
	}

	result, _, _ := e.cache.inflight.Do(key.String(), func() (any, error) {
		if v, ok := e.cache.Lookup(key); ok {
			return v, nil
		}
		return e.evaluate(key, true), nil
	})
	return result.(probability.Value), nil
}

// Precompute evaluates every (size, target) combination in order, filling
// the cache. It stops at the first invalid input.
func (e *Engine) Precompute(sizes []int, targets []int) error {
	for _, sides := range sizes {
		for _, target := range targets {
			if _, err := e.Survival(sides, target); err != nil {
				return fmt.Errorf("precompute d%d ≥ %d: %w", sides, target, err)
			}
		}
	}
	return nil
}

// CheckTarget returns a TARGET_OUT_OF_RANGE error when |target| exceeds
// Limit(sides).
func (e *Engine) CheckTarget(sides, target int) error {
	limit := e.Limit(sides)
	if target <= limit && target >= -limit {
		return nil
	}
	return apperrors.WithMetadata(
		apperrors.CodeTargetOutOfRange,
		fmt.Sprintf("target %d exceeds the safety ceiling %d for d%d", target, limit, sides),
		map[string]string{
			"Target": strconv.Itoa(target),
			"Limit":  strconv.Itoa(limit),
			"Sides":  strconv.Itoa(sides),
		},
	)
}

// evaluate walks down the explosion chain from key.Target until it reaches a
// cached value or a single-roll target, then multiplies back up by 1/N per
// explosion. With store set, every value on the chain is cached.
func (e *Engine) evaluate(key Key, store bool) probability.Value {
	sides := key.Sides
	var (
		pending []int
		value   probability.Value
	)
	for t := key.Target; ; t -= sides {
		if v, ok := e.cache.Lookup(Key{Sides: sides, Target: t}); ok {
			value = v
			break
		}
		if t <= sides {
			value = probability.Frac(int64(sides-t+1), int64(sides))
			if store {
				e.cache.store(Key{Sides: sides, Target: t}, value)
			}
			break
		}
		pending = append(pending, t)
	}

	explode := probability.Frac(1, int64(sides))
	for i := len(pending) - 1; i >= 0; i-- {
		value = explode.Mul(value)
		if store {
			e.cache.store(Key{Sides: sides, Target: pending[i]}, value)
		}
	}
	return value
}
