//go:build linux || darwin

// Package objective adapts native evaluator function pointers (produced by
// the JIT loader from generated C source) to the solver's objective
// interface. Grounded on the original engine's
// FastMPCFunctionPointerObjective: N, M, Q, P plus one pointer per
// evaluator, a parameter vector set once per problem instance, and
// DefaultFunctions no-op behavior wherever a pointer has not been wired
// (an empty equality or inequality block never needs real code).
package objective

/*
#include <stddef.h>

typedef void (*evaluator3_fn)(const double*, const double*, double*);
typedef void (*evaluator2_fn)(const double*, double*);

static void call_evaluator3(evaluator3_fn fn, const double* a, const double* b, double* out) {
	fn(a, b, out);
}
static void call_evaluator2(evaluator2_fn fn, const double* a, double* out) {
	fn(a, out);
}
*/
import "C"

import (
	"unsafe"

	"github.com/convexmpc/convexmpc/mpcerr"
)

// FunctionPointerObjective is the solver-visible objective: a fixed set of
// dimensions (N variables, M equality constraints, Q inequality
// constraints, P parameters) plus one native evaluator per quantity the
// solver needs.
type FunctionPointerObjective struct {
	n, m, q, p int
	params     []float64

	valueFn, gradFn, hessFn           unsafe.Pointer
	eqMatFn, eqVecFn                  unsafe.Pointer
	ineqValFn, ineqGradFn, ineqHessFn unsafe.Pointer
}

// New builds a FunctionPointerObjective of the given dimensions with every
// evaluator pointer unset (nil pointers behave as the zero default until
// installed).
func New(numVariables, numInequalityConstraints, numEqualityConstraints, numParameters int) *FunctionPointerObjective {
	return &FunctionPointerObjective{
		n: numVariables,
		q: numInequalityConstraints,
		m: numEqualityConstraints,
		p: numParameters,
	}
}

func (o *FunctionPointerObjective) NumVariables() int             { return o.n }
func (o *FunctionPointerObjective) NumEqualityConstraints() int   { return o.m }
func (o *FunctionPointerObjective) NumInequalityConstraints() int { return o.q }
func (o *FunctionPointerObjective) NumParameters() int            { return o.p }

// SetParameters installs the parameter vector evaluators are called
// against. It fails with mpcerr.ErrDimensionMismatch unless len(params) ==
// NumParameters().
func (o *FunctionPointerObjective) SetParameters(params []float64) error {
	if len(params) != o.p {
		return mpcerr.ErrDimensionMismatch
	}
	o.params = append([]float64(nil), params...)
	return nil
}

// InstallValue, InstallGradient, ... wire the native evaluator pointers
// resolved by the JIT loader. A nil ptr is equivalent to never installing
// one: the corresponding accessor falls back to its zero default.
func (o *FunctionPointerObjective) InstallValue(ptr unsafe.Pointer)        { o.valueFn = ptr }
func (o *FunctionPointerObjective) InstallGradient(ptr unsafe.Pointer)     { o.gradFn = ptr }
func (o *FunctionPointerObjective) InstallHessian(ptr unsafe.Pointer)      { o.hessFn = ptr }
func (o *FunctionPointerObjective) InstallEqMatrix(ptr unsafe.Pointer)     { o.eqMatFn = ptr }
func (o *FunctionPointerObjective) InstallEqVector(ptr unsafe.Pointer)     { o.eqVecFn = ptr }
func (o *FunctionPointerObjective) InstallIneqValue(ptr unsafe.Pointer)    { o.ineqValFn = ptr }
func (o *FunctionPointerObjective) InstallIneqGradient(ptr unsafe.Pointer) { o.ineqGradFn = ptr }
func (o *FunctionPointerObjective) InstallIneqHessian(ptr unsafe.Pointer)  { o.ineqHessFn = ptr }

func (o *FunctionPointerObjective) checkState(x []float64) error {
	if len(x) != o.n {
		return mpcerr.ErrDimensionMismatch
	}
	return nil
}

// Value returns phi(x), 0 if no value evaluator is installed.
func (o *FunctionPointerObjective) Value(x []float64) (float64, error) {
	if err := o.checkState(x); err != nil {
		return 0, err
	}
	if o.valueFn == nil {
		return 0, nil
	}
	return callScalar3(o.valueFn, x, o.params), nil
}

// Gradient returns grad phi(x), a zero vector of length N if no gradient
// evaluator is installed.
func (o *FunctionPointerObjective) Gradient(x []float64) ([]float64, error) {
	if err := o.checkState(x); err != nil {
		return nil, err
	}
	if o.gradFn == nil {
		return make([]float64, o.n), nil
	}
	return callVector3(o.gradFn, x, o.params, o.n), nil
}

// Hessian returns grad^2 phi(x), a zero N x N matrix if no Hessian
// evaluator is installed.
func (o *FunctionPointerObjective) Hessian(x []float64) ([][]float64, error) {
	if err := o.checkState(x); err != nil {
		return nil, err
	}
	if o.hessFn == nil {
		return zeroMatrix(o.n, o.n), nil
	}
	flat := callVector3(o.hessFn, x, o.params, o.n*o.n)
	return unflattenColumnMajor(flat, o.n, o.n), nil
}

// EqualityConstraintMatrix returns A (M x N), empty when M = 0.
func (o *FunctionPointerObjective) EqualityConstraintMatrix() ([][]float64, error) {
	if o.m == 0 || o.eqMatFn == nil {
		return zeroMatrix(o.m, o.n), nil
	}
	flat := callVector2(o.eqMatFn, o.params, o.m*o.n)
	return unflattenColumnMajor(flat, o.m, o.n), nil
}

// EqualityConstraintVector returns b (length M), empty when M = 0.
func (o *FunctionPointerObjective) EqualityConstraintVector() ([]float64, error) {
	if o.m == 0 || o.eqVecFn == nil {
		return make([]float64, o.m), nil
	}
	return callVector2(o.eqVecFn, o.params, o.m), nil
}

// InequalityConstraintsValue returns B(x), 0 when Q = 0.
func (o *FunctionPointerObjective) InequalityConstraintsValue(x []float64) (float64, error) {
	if err := o.checkState(x); err != nil {
		return 0, err
	}
	if o.q == 0 || o.ineqValFn == nil {
		return 0, nil
	}
	return callScalar3(o.ineqValFn, x, o.params), nil
}

// InequalityConstraintsGradient returns grad B(x), a zero vector of
// length N when Q = 0.
func (o *FunctionPointerObjective) InequalityConstraintsGradient(x []float64) ([]float64, error) {
	if err := o.checkState(x); err != nil {
		return nil, err
	}
	if o.q == 0 || o.ineqGradFn == nil {
		return make([]float64, o.n), nil
	}
	return callVector3(o.ineqGradFn, x, o.params, o.n), nil
}

// InequalityConstraintsHessian returns grad^2 B(x), a zero N x N matrix
// when Q = 0.
func (o *FunctionPointerObjective) InequalityConstraintsHessian(x []float64) ([][]float64, error) {
	if err := o.checkState(x); err != nil {
		return nil, err
	}
	if o.q == 0 || o.ineqHessFn == nil {
		return zeroMatrix(o.n, o.n), nil
	}
	flat := callVector3(o.ineqHessFn, x, o.params, o.n*o.n)
	return unflattenColumnMajor(flat, o.n, o.n), nil
}

// Validate checks that the core evaluators are wired, that any
// constraint block of nonzero size has its evaluators wired, and that
// the parameter vector's length matches P.
func (o *FunctionPointerObjective) Validate() error {
	if o.valueFn == nil || o.gradFn == nil || o.hessFn == nil {
		return mpcerr.ErrValidationFailed
	}
	if o.m > 0 && (o.eqMatFn == nil || o.eqVecFn == nil) {
		return mpcerr.ErrValidationFailed
	}
	if o.q > 0 && (o.ineqValFn == nil || o.ineqGradFn == nil || o.ineqHessFn == nil) {
		return mpcerr.ErrValidationFailed
	}
	if o.p > 0 && len(o.params) != o.p {
		return mpcerr.ErrValidationFailed
	}
	return nil
}

func zeroMatrix(rows, cols int) [][]float64 {
	m := make([][]float64, rows)
	for r := range m {
		m[r] = make([]float64, cols)
	}
	return m
}

// unflattenColumnMajor reads a column-major flattened rows x cols buffer
// back into a [][]float64, the inverse of the layout codegen emits.
func unflattenColumnMajor(flat []float64, rows, cols int) [][]float64 {
	m := zeroMatrix(rows, cols)
	for c := 0; c < cols; c++ {
		for r := 0; r < rows; r++ {
			m[r][c] = flat[c*rows+r]
		}
	}
	return m
}

func doublePtr(s []float64) *C.double {
	if len(s) == 0 {
		return nil
	}
	return (*C.double)(unsafe.Pointer(&s[0]))
}

func callScalar3(fn unsafe.Pointer, state, param []float64) float64 {
	out := make([]float64, 1)
	C.call_evaluator3(C.evaluator3_fn(fn), doublePtr(state), doublePtr(param), doublePtr(out))
	return out[0]
}

func callVector3(fn unsafe.Pointer, state, param []float64, outLen int) []float64 {
	out := make([]float64, outLen)
	C.call_evaluator3(C.evaluator3_fn(fn), doublePtr(state), doublePtr(param), doublePtr(out))
	return out
}

func callVector2(fn unsafe.Pointer, param []float64, outLen int) []float64 {
	out := make([]float64, outLen)
	C.call_evaluator2(C.evaluator2_fn(fn), doublePtr(param), doublePtr(out))
	return out
}
