//go:build linux || darwin

// Package symbolic is the single facade that turns a symbolic objective
// plus its equality/inequality constraints into a native, solver-ready
// function-pointer objective. Grounded on the original engine's
// SymbolicObjective: one setObjective call, constraint containers
// embedded directly, and a single-shot finalize that walks emitter,
// loader and installer steps in order and caches the problem's
// dimensions once they're known.
package symbolic

import (
	"log/slog"
	"unsafe"

	"github.com/convexmpc/convexmpc/codegen"
	"github.com/convexmpc/convexmpc/equality"
	"github.com/convexmpc/convexmpc/expr"
	"github.com/convexmpc/convexmpc/inequality"
	"github.com/convexmpc/convexmpc/jit"
	"github.com/convexmpc/convexmpc/mpcconfig"
	"github.com/convexmpc/convexmpc/mpcerr"
	"github.com/convexmpc/convexmpc/mpclog"
	"github.com/convexmpc/convexmpc/objective"
	"github.com/convexmpc/convexmpc/symdiff"
	"github.com/convexmpc/convexmpc/symset"
)

// Objective composes the symbolic value, the equality and inequality
// constraint containers, and (once Finalize succeeds) the native
// function-pointer objective it produced. Build one with New: the zero
// value has no constraint containers and no logger.
type Objective struct {
	value expr.Expr

	Equality   *equality.Container
	Inequality *inequality.Container

	variables  *symset.Set
	parameters *symset.Set

	native    *objective.FunctionPointerObjective
	library   *jit.Library
	finalized bool

	logger *slog.Logger
}

// New returns an Objective with empty equality/inequality containers and
// no value expression set yet.
func New(logger *slog.Logger) *Objective {
	return &Objective{
		Equality:   equality.New(),
		Inequality: inequality.New(),
		logger:     mpclog.OrDiscard(logger),
	}
}

// SetObjective installs the scalar expression phi(x) to minimize.
// Finalize must be called (or re-called) after any subsequent change to
// value or to either constraint container for it to take effect.
func (o *Objective) SetObjective(value expr.Expr) {
	o.value = value
	o.finalized = false
}

// GetSymbols returns every symbol referenced by the objective value, in
// no particular order, deduplicated.
func (o *Objective) GetSymbols() []*expr.Symbol {
	if o.value == nil {
		return nil
	}
	return expr.Symbols(o.value)
}

// GetVariables returns the "V:"-prefixed symbols referenced by the
// objective value.
func (o *Objective) GetVariables() []*expr.Symbol {
	if o.value == nil {
		return nil
	}
	return expr.Variables(o.value)
}

// GetParameters returns the "P:"-prefixed symbols referenced by the
// objective value.
func (o *Objective) GetParameters() []*expr.Symbol {
	if o.value == nil {
		return nil
	}
	return expr.Parameters(o.value)
}

// Finalize performs the original engine's seven-step finalization: assert
// the objective is set, differentiate it symbolically, emit the eight
// evaluator functions, JIT-compile and load them, install the resolved
// pointers on a fresh function-pointer objective, and cache the problem's
// dimensions. variableOrder and parameterOrder fix the column layout of
// every emitted evaluator; parameterOrder may be empty (P = 0).
//
// Any jit.Library produced by a previous Finalize call is closed once the
// new one has been built and its evaluators installed, since the old
// evaluator pointers become dangling once a fresh library replaces them.
// If this call fails, the previous library is kept.
func (o *Objective) Finalize(variableOrder, parameterOrder *symset.Set, compiler mpcconfig.Compiler) error {
	if o.value == nil {
		return mpcerr.ErrNotFinalized
	}
	if parameterOrder == nil {
		var err error
		parameterOrder, err = symset.New()
		if err != nil {
			return err
		}
	}

	gradient := symdiff.Gradient(o.value, variableOrder)
	hessian := symdiff.Hessian(o.value, variableOrder)

	A, b, err := o.Equality.ConvertToLinearSystem(variableOrder)
	if err != nil {
		return err
	}

	barrierValue := o.Inequality.BarrierValue()
	barrierGradient := o.Inequality.BarrierGradient(variableOrder)
	barrierHessian := o.Inequality.BarrierHessian(variableOrder)

	source, err := codegen.Generate(codegen.Spec{
		Variables:    variableOrder,
		Parameters:   parameterOrder,
		Value:        o.value,
		Gradient:     gradient,
		Hessian:      hessian,
		EqMatrix:     A,
		EqVector:     b,
		IneqValue:    barrierValue,
		IneqGradient: barrierGradient,
		IneqHessian:  barrierHessian,
	})
	if err != nil {
		return err
	}

	lib, err := jit.Load(compiler, source, o.logger)
	if err != nil {
		return err
	}

	native := objective.New(variableOrder.Size(), o.Inequality.Len(), o.Equality.Len(), parameterOrder.Size())
	if err := installEvaluators(native, lib); err != nil {
		lib.Close()
		return err
	}

	if o.library != nil {
		o.library.Close()
	}
	o.native = native
	o.library = lib
	o.variables = variableOrder
	o.parameters = parameterOrder
	o.finalized = true

	o.logger.Debug("symbolic: finalized objective",
		slog.Int("variables", variableOrder.Size()),
		slog.Int("parameters", parameterOrder.Size()),
		slog.Int("equalityConstraints", o.Equality.Len()),
		slog.Int("inequalityConstraints", o.Inequality.Len()))
	return nil
}

func installEvaluators(native *objective.FunctionPointerObjective, lib *jit.Library) error {
	installers := []struct {
		name    string
		install func(unsafe.Pointer)
	}{
		{codegen.ValueFn, native.InstallValue},
		{codegen.GradientFn, native.InstallGradient},
		{codegen.HessianFn, native.InstallHessian},
		{codegen.EqMatrixFn, native.InstallEqMatrix},
		{codegen.EqVectorFn, native.InstallEqVector},
		{codegen.IneqValueFn, native.InstallIneqValue},
		{codegen.IneqGradFn, native.InstallIneqGradient},
		{codegen.IneqHessFn, native.InstallIneqHessian},
	}
	for _, e := range installers {
		ptr, err := lib.Lookup(e.name)
		if err != nil {
			return err
		}
		e.install(ptr)
	}
	return nil
}

// SetParameters forwards to the underlying native objective. It fails
// with mpcerr.ErrNotFinalized if called before Finalize.
func (o *Objective) SetParameters(params []float64) error {
	if !o.finalized {
		return mpcerr.ErrNotFinalized
	}
	return o.native.SetParameters(params)
}

// Native returns the underlying function-pointer objective, ready to pass
// to solver.New. It fails with mpcerr.ErrNotFinalized before the first
// successful Finalize call.
func (o *Objective) Native() (*objective.FunctionPointerObjective, error) {
	if !o.finalized {
		return nil, mpcerr.ErrNotFinalized
	}
	return o.native, nil
}

// Validate refuses any non-finalized instance, then delegates to the
// native objective's own validation.
func (o *Objective) Validate() error {
	if !o.finalized {
		return mpcerr.ErrNotFinalized
	}
	return o.native.Validate()
}

// Close releases the JIT-compiled artifact backing this objective, if
// any. It is safe to call on an objective that was never finalized.
func (o *Objective) Close() error {
	if o.library == nil {
		return nil
	}
	err := o.library.Close()
	o.library = nil
	return err
}
