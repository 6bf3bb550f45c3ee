// Package mpcerr defines the sentinel error taxonomy shared by every
// component of convexmpc. Callers branch on error kind with errors.Is;
// call sites wrap a sentinel with fmt.Errorf("%w", ...) to attach detail
// without losing the kind.
package mpcerr

import "errors"

var (
	// ErrInvalidArgument signals an out-of-range index, a bad shape, or a
	// non-symbol where a symbol was required.
	ErrInvalidArgument = errors.New("mpcerr: invalid argument")

	// ErrUnknownSymbol signals that a constraint or matrix references a
	// symbol missing from the ordering it was checked against.
	ErrUnknownSymbol = errors.New("mpcerr: unknown symbol")

	// ErrMissingRepresentation signals that the code emitter could not
	// address a free symbol in either ordering.
	ErrMissingRepresentation = errors.New("mpcerr: missing representation")

	// ErrNonlinear signals that affine extraction found a term of total
	// variable degree greater than one.
	ErrNonlinear = errors.New("mpcerr: nonlinear term")

	// ErrNotFinalized signals that a symbolic objective was used before
	// Finalize.
	ErrNotFinalized = errors.New("mpcerr: objective not finalized")

	// ErrCompileFailed signals that the configured compiler exited non-zero.
	ErrCompileFailed = errors.New("mpcerr: compile failed")

	// ErrLoadFailed signals that the compiled artifact could not be opened.
	ErrLoadFailed = errors.New("mpcerr: load failed")

	// ErrSymbolMissing signals that a required evaluator entry point could
	// not be resolved in the loaded artifact.
	ErrSymbolMissing = errors.New("mpcerr: symbol missing")

	// ErrValidationFailed signals inconsistent dimensions or pointer wiring.
	ErrValidationFailed = errors.New("mpcerr: validation failed")

	// ErrDimensionMismatch signals that a user-supplied vector disagrees
	// with the objective's reported dimensions.
	ErrDimensionMismatch = errors.New("mpcerr: dimension mismatch")

	// ErrLineSearchExceeded signals that backtracking hit its iteration cap.
	ErrLineSearchExceeded = errors.New("mpcerr: line search exceeded maximum iterations")

	// ErrEval wraps a failure reported by an evaluator.
	ErrEval = errors.New("mpcerr: evaluation failed")
)
