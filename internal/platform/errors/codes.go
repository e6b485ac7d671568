// Package errors provides structured error handling with i18n support.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Die errors
	CodeInvalidDieSize Code = "INVALID_DIE_SIZE"

	// Target errors
	CodeTargetOutOfRange Code = "TARGET_OUT_OF_RANGE"
	CodeTargetsMissing   Code = "TARGETS_MISSING"

	// Die sequence errors
	CodeSizesMissing   Code = "SIZES_MISSING"
	CodeSizesUnordered Code = "SIZES_UNORDERED"

	// Analytics errors
	CodeUndefinedRatio    Code = "UNDEFINED_RATIO"
	CodeDominanceViolated Code = "DOMINANCE_VIOLATED"

	// Configuration errors
	CodeConfigInvalid Code = "CONFIG_INVALID"
)

// Codes lists every code with a catalog message.
func Codes() []Code {
	return []Code{
		CodeInvalidDieSize,
		CodeTargetOutOfRange,
		CodeTargetsMissing,
		CodeSizesMissing,
		CodeSizesUnordered,
		CodeUndefinedRatio,
		CodeDominanceViolated,
		CodeConfigInvalid,
	}
}

// CallerFault reports whether the code describes bad caller input rather
// than a broken invariant inside the engine.
func (c Code) CallerFault() bool {
	switch c {
	case CodeInvalidDieSize,
		CodeTargetOutOfRange,
		CodeTargetsMissing,
		CodeSizesMissing,
		CodeSizesUnordered,
		CodeConfigInvalid:
		return true
	default:
		return false
	}
}
