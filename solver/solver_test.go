//go:build linux || darwin

package solver_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/convexmpc/convexmpc/codegen"
	"github.com/convexmpc/convexmpc/equality"
	"github.com/convexmpc/convexmpc/expr"
	"github.com/convexmpc/convexmpc/inequality"
	"github.com/convexmpc/convexmpc/jit"
	"github.com/convexmpc/convexmpc/mpcconfig"
	"github.com/convexmpc/convexmpc/objective"
	"github.com/convexmpc/convexmpc/solver"
	"github.com/convexmpc/convexmpc/symdiff"
	"github.com/convexmpc/convexmpc/symset"
)

// unconstrainedSquare is f(x) = x^2 with no equality or inequality
// constraints, implementing solver.Objective directly.
type unconstrainedSquare struct{}

func (unconstrainedSquare) NumVariables() int             { return 1 }
func (unconstrainedSquare) NumEqualityConstraints() int   { return 0 }
func (unconstrainedSquare) NumInequalityConstraints() int { return 0 }

func (unconstrainedSquare) Value(x []float64) (float64, error) { return x[0] * x[0], nil }
func (unconstrainedSquare) Gradient(x []float64) ([]float64, error) {
	return []float64{2 * x[0]}, nil
}
func (unconstrainedSquare) Hessian(x []float64) ([][]float64, error) {
	return [][]float64{{2}}, nil
}
func (unconstrainedSquare) EqualityConstraintMatrix() ([][]float64, error) { return nil, nil }
func (unconstrainedSquare) EqualityConstraintVector() ([]float64, error)   { return nil, nil }
func (unconstrainedSquare) InequalityConstraintsValue(x []float64) (float64, error) {
	return 0, nil
}
func (unconstrainedSquare) InequalityConstraintsGradient(x []float64) ([]float64, error) {
	return []float64{0}, nil
}
func (unconstrainedSquare) InequalityConstraintsHessian(x []float64) ([][]float64, error) {
	return [][]float64{{0}}, nil
}

func TestMinimizeUnconstrainedQuadratic(t *testing.T) {
	s := solver.NewUnvalidated(unconstrainedSquare{}, solver.DefaultHyperParameters(), nil)
	result, err := s.Minimize([]float64{9}, nil)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, result.Value, 1e-8)
	assert.InDelta(t, 0.0, result.X[0], 1e-8)
}

// equalityBoundPlusFloor is f(x, y) = x^2 + y^2 subject to x = 3 and
// y >= 2, implementing solver.Objective directly.
type equalityBoundPlusFloor struct{}

func (equalityBoundPlusFloor) NumVariables() int             { return 2 }
func (equalityBoundPlusFloor) NumEqualityConstraints() int   { return 1 }
func (equalityBoundPlusFloor) NumInequalityConstraints() int { return 1 }

func (equalityBoundPlusFloor) Value(x []float64) (float64, error) {
	return x[0]*x[0] + x[1]*x[1], nil
}
func (equalityBoundPlusFloor) Gradient(x []float64) ([]float64, error) {
	return []float64{2 * x[0], 2 * x[1]}, nil
}
func (equalityBoundPlusFloor) Hessian(x []float64) ([][]float64, error) {
	return [][]float64{{2, 0}, {0, 2}}, nil
}
func (equalityBoundPlusFloor) EqualityConstraintMatrix() ([][]float64, error) {
	return [][]float64{{1, 0}}, nil
}
func (equalityBoundPlusFloor) EqualityConstraintVector() ([]float64, error) {
	return []float64{3}, nil
}

// residual is E(x, y) = 2 - y < 0, i.e. y > 2.
func (equalityBoundPlusFloor) InequalityConstraintsValue(x []float64) (float64, error) {
	e := 2 - x[1]
	return -math.Log(-e), nil
}
func (equalityBoundPlusFloor) InequalityConstraintsGradient(x []float64) ([]float64, error) {
	return []float64{0, -1 / (x[1] - 2)}, nil
}
func (equalityBoundPlusFloor) InequalityConstraintsHessian(x []float64) ([][]float64, error) {
	d := x[1] - 2
	return [][]float64{{0, 0}, {0, 1 / (d * d)}}, nil
}

func TestMinimizeWithEqualityAndInequalityConstraints(t *testing.T) {
	s := solver.NewUnvalidated(equalityBoundPlusFloor{}, solver.DefaultHyperParameters(), nil)
	result, err := s.Minimize([]float64{20, 20}, nil)
	require.NoError(t, err)
	assert.InDelta(t, 13.0, result.Value, 1e-2)
	assert.InDelta(t, 3.0, result.X[0], 1e-2)
	assert.InDelta(t, 2.0, result.X[1], 1e-2)
}

func TestMinimizeRejectsWrongLengthStart(t *testing.T) {
	s := solver.NewUnvalidated(unconstrainedSquare{}, solver.DefaultHyperParameters(), nil)
	_, err := s.Minimize([]float64{1, 2}, nil)
	assert.Error(t, err)
}

// buildJITObjective compiles the same problem as equalityBoundPlusFloor
// through the full symbolic pipeline (expr -> symdiff -> equality /
// inequality -> codegen -> jit -> objective) and returns the resulting
// function-pointer objective plus the Library backing it.
func buildJITObjective(t *testing.T) (*objective.FunctionPointerObjective, *jit.Library) {
	t.Helper()

	x := expr.Var("x")
	y := expr.Var("y")
	order, err := symset.New(x, y)
	require.NoError(t, err)

	value := expr.Add(expr.Pow(x, expr.Int(2)), expr.Pow(y, expr.Int(2)))
	gradient := symdiff.Gradient(value, order)
	hessian := symdiff.Hessian(value, order)

	eq := equality.New()
	eq.AppendEquality(x, expr.Int(3))
	A, b, err := eq.ConvertToLinearSystem(order)
	require.NoError(t, err)

	ineq := inequality.New()
	ineq.AppendGreaterThan(y, expr.Int(2))
	barrierGrad := ineq.BarrierGradient(order)
	barrierHess := ineq.BarrierHessian(order)

	source, err := codegen.Generate(codegen.Spec{
		Variables:    order,
		Parameters:   nil,
		Value:        value,
		Gradient:     gradient,
		Hessian:      hessian,
		EqMatrix:     A,
		EqVector:     b,
		IneqValue:    ineq.BarrierValue(),
		IneqGradient: barrierGrad,
		IneqHessian:  barrierHess,
	})
	require.NoError(t, err)

	lib, err := jit.Load(mpcconfig.DefaultCompiler, source, nil)
	require.NoError(t, err)

	obj := objective.New(2, 1, 1, 0)
	valuePtr, err := lib.Lookup(codegen.ValueFn)
	require.NoError(t, err)
	gradPtr, err := lib.Lookup(codegen.GradientFn)
	require.NoError(t, err)
	hessPtr, err := lib.Lookup(codegen.HessianFn)
	require.NoError(t, err)
	eqMatPtr, err := lib.Lookup(codegen.EqMatrixFn)
	require.NoError(t, err)
	eqVecPtr, err := lib.Lookup(codegen.EqVectorFn)
	require.NoError(t, err)
	ineqValPtr, err := lib.Lookup(codegen.IneqValueFn)
	require.NoError(t, err)
	ineqGradPtr, err := lib.Lookup(codegen.IneqGradFn)
	require.NoError(t, err)
	ineqHessPtr, err := lib.Lookup(codegen.IneqHessFn)
	require.NoError(t, err)

	obj.InstallValue(valuePtr)
	obj.InstallGradient(gradPtr)
	obj.InstallHessian(hessPtr)
	obj.InstallEqMatrix(eqMatPtr)
	obj.InstallEqVector(eqVecPtr)
	obj.InstallIneqValue(ineqValPtr)
	obj.InstallIneqGradient(ineqGradPtr)
	obj.InstallIneqHessian(ineqHessPtr)
	require.NoError(t, obj.Validate())

	return obj, lib
}

func TestJITCompiledObjectiveMatchesAnalyticObjective(t *testing.T) {
	jitObj, lib := buildJITObjective(t)
	defer lib.Close()

	analyticSolver := solver.NewUnvalidated(equalityBoundPlusFloor{}, solver.DefaultHyperParameters(), nil)
	jitSolver, err := solver.New(jitObj, solver.DefaultHyperParameters(), nil)
	require.NoError(t, err)

	analyticResult, err := analyticSolver.Minimize([]float64{20, 20}, nil)
	require.NoError(t, err)
	jitResult, err := jitSolver.Minimize([]float64{20, 20}, nil)
	require.NoError(t, err)

	assert.InDelta(t, analyticResult.Value, jitResult.Value, 1e-6)
	assert.InDelta(t, analyticResult.X[0], jitResult.X[0], 1e-6)
	assert.InDelta(t, analyticResult.X[1], jitResult.X[1], 1e-6)
}
