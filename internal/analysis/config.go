package analysis

import (
	"fmt"
	"strconv"

	"github.com/louisbranch/explodingdice/internal/core/dice"
	"github.com/louisbranch/explodingdice/internal/core/sensitivity"
	"github.com/louisbranch/explodingdice/internal/core/survival"
	"github.com/louisbranch/explodingdice/internal/platform/config"
	apperrors "github.com/louisbranch/explodingdice/internal/platform/errors"
)

// CacheStrategy selects how a run populates its survival cache.
type CacheStrategy string

const (
	// CachePrecompute fills the cache for every configured key up front and
	// freezes it before any analysis reads it.
	CachePrecompute CacheStrategy = "precompute"
	// CacheLazy fills the cache on first use, one computation per key.
	CacheLazy CacheStrategy = "lazy"
)

// Config holds the inputs of one analysis run.
type Config struct {
	ReferenceDie   int           `json:"reference_die" env:"EXPLODING_DICE_REFERENCE_DIE" envDefault:"6"`
	VariableDice   []int         `json:"variable_dice" env:"EXPLODING_DICE_VARIABLE_DICE" envDefault:"4,6,8,10,12" envSeparator:","`
	Targets        []int         `json:"targets" env:"EXPLODING_DICE_TARGETS" envDefault:"4,6,8,10" envSeparator:","`
	MaxExplosions  int           `json:"max_explosions" env:"EXPLODING_DICE_MAX_EXPLOSIONS" envDefault:"10000"`
	CurveMaxTarget int           `json:"curve_max_target" env:"EXPLODING_DICE_CURVE_MAX_TARGET" envDefault:"25"`
	CacheStrategy  CacheStrategy `json:"cache_strategy" env:"EXPLODING_DICE_CACHE_STRATEGY" envDefault:"precompute"`
	Parallelism    int           `json:"parallelism" env:"EXPLODING_DICE_PARALLELISM" envDefault:"4"`
}

// DefaultConfig returns the reference analysis: a d6 against d4 through d12
// at targets 4, 6, 8 and 10.
func DefaultConfig() Config {
	return Config{
		ReferenceDie:   6,
		VariableDice:   []int{4, 6, 8, 10, 12},
		Targets:        []int{4, 6, 8, 10},
		MaxExplosions:  survival.DefaultMaxExplosions,
		CurveMaxTarget: 25,
		CacheStrategy:  CachePrecompute,
		Parallelism:    4,
	}
}

// LoadConfig reads the run configuration from the environment and validates it.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration once so that a run never fails halfway
// on bad input.
func (c Config) Validate() error {
	if c.MaxExplosions < 1 {
		return invalid("max explosions must be at least 1", nil)
	}
	if c.Parallelism < 1 {
		return invalid("parallelism must be at least 1", nil)
	}
	switch c.CacheStrategy {
	case CachePrecompute, CacheLazy:
	default:
		return invalid(fmt.Sprintf("unknown cache strategy %q", c.CacheStrategy), nil)
	}
	if err := dice.Validate(c.ReferenceDie); err != nil {
		return invalid("reference die: "+apperrors.LocalizedMessage(err, ""), err)
	}
	if err := sensitivity.ValidateSizes(c.VariableDice); err != nil {
		return invalid("variable dice: "+apperrors.LocalizedMessage(err, ""), err)
	}
	for _, sides := range c.VariableDice {
		if err := dice.Validate(sides); err != nil {
			return invalid("variable dice: "+apperrors.LocalizedMessage(err, ""), err)
		}
	}
	if len(c.Targets) == 0 {
		return invalid("at least one target is required", sensitivity.ErrNoTargets)
	}
	if c.CurveMaxTarget < 1 {
		return invalid("curve max target must be at least 1", nil)
	}

	limit := survival.New(nil, survival.WithMaxExplosions(c.MaxExplosions)).Limit(c.smallestDie())
	for _, target := range c.Targets {
		if target > limit || target < -limit {
			return invalid("target "+strconv.Itoa(target)+" exceeds ±"+strconv.Itoa(limit), survival.ErrTargetOutOfRange)
		}
	}
	if c.CurveMaxTarget > limit {
		return invalid("curve max target "+strconv.Itoa(c.CurveMaxTarget)+" exceeds "+strconv.Itoa(limit), survival.ErrTargetOutOfRange)
	}
	return nil
}

func (c Config) smallestDie() int {
	smallest := c.ReferenceDie
	for _, sides := range c.VariableDice {
		smallest = min(smallest, sides)
	}
	return smallest
}

// dice lists the reference die followed by every variable die not equal to it.
func (c Config) dice() []int {
	out := []int{c.ReferenceDie}
	for _, sides := range c.VariableDice {
		if sides != c.ReferenceDie {
			out = append(out, sides)
		}
	}
	return out
}

// curveTargets is 1..CurveMaxTarget followed by any configured target outside it.
func (c Config) curveTargets() []int {
	out := make([]int, 0, c.CurveMaxTarget+len(c.Targets))
	for target := 1; target <= c.CurveMaxTarget; target++ {
		out = append(out, target)
	}
	for _, target := range c.Targets {
		if target < 1 || target > c.CurveMaxTarget {
			out = append(out, target)
		}
	}
	return out
}

func invalid(reason string, cause error) error {
	return apperrors.WrapWithMetadata(
		apperrors.CodeConfigInvalid,
		"invalid analysis configuration: "+reason,
		map[string]string{"Reason": reason},
		cause,
	)
}
