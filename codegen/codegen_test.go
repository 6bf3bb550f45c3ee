package codegen_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/convexmpc/convexmpc/codegen"
	"github.com/convexmpc/convexmpc/expr"
	"github.com/convexmpc/convexmpc/mpcerr"
	"github.com/convexmpc/convexmpc/symset"
)

func TestGenerateRendersAllEightEntryPoints(t *testing.T) {
	x, y := expr.Var("x"), expr.Var("y")
	a := expr.Param("a")
	vars, err := symset.New(x, y)
	require.NoError(t, err)
	params, err := symset.New(a)
	require.NoError(t, err)

	spec := codegen.Spec{
		Variables:    vars,
		Parameters:   params,
		Value:        expr.Add(expr.Pow(x, expr.Int(2)), expr.Pow(y, expr.Int(2))),
		Gradient:     []expr.Expr{expr.Mul(expr.Int(2), x), expr.Mul(expr.Int(2), y)},
		Hessian:      [][]expr.Expr{{expr.Int(2), expr.Zero}, {expr.Zero, expr.Int(2)}},
		EqMatrix:     [][]expr.Expr{{expr.One, a}},
		EqVector:     []expr.Expr{a},
		IneqValue:    expr.Zero,
		IneqGradient: []expr.Expr{expr.Zero, expr.Zero},
		IneqHessian:  [][]expr.Expr{{expr.Zero, expr.Zero}, {expr.Zero, expr.Zero}},
	}

	src, err := codegen.Generate(spec)
	require.NoError(t, err)
	for _, name := range []string{
		codegen.ValueFn, codegen.GradientFn, codegen.HessianFn,
		codegen.EqMatrixFn, codegen.EqVectorFn,
		codegen.IneqValueFn, codegen.IneqGradFn, codegen.IneqHessFn,
	} {
		assert.Contains(t, src, "void "+name+"(")
	}
	assert.Contains(t, src, "#include <math.h>")
	assert.Contains(t, src, "extern \"C\"")
	assert.Contains(t, src, "state[0]")
	assert.Contains(t, src, "param[0]")
}

func TestGenerateFlattensMatrixColumnMajor(t *testing.T) {
	x, y := expr.Var("x"), expr.Var("y")
	vars, err := symset.New(x, y)
	require.NoError(t, err)
	params, err := symset.New()
	require.NoError(t, err)

	// [[1,-3,0],[0,0,0.5]] column-major -> out[0]=1 out[1]=0 out[2]=-3
	// out[3]=0 out[4]=0 out[5]=0.5
	m := [][]expr.Expr{
		{expr.Int(1), expr.Int(-3), expr.Zero},
		{expr.Zero, expr.Zero, expr.Rat(1, 2)},
	}
	spec := codegen.Spec{
		Variables:  vars,
		Parameters: params,
		Value:      expr.Zero,
		Gradient:   []expr.Expr{expr.Zero, expr.Zero},
		Hessian:    [][]expr.Expr{{expr.Zero, expr.Zero}, {expr.Zero, expr.Zero}},
		EqMatrix:   m,
		EqVector:   []expr.Expr{expr.Zero, expr.Zero},
		IneqValue:  expr.Zero,
		IneqGradient: []expr.Expr{
			expr.Zero, expr.Zero,
		},
		IneqHessian: [][]expr.Expr{{expr.Zero, expr.Zero}, {expr.Zero, expr.Zero}},
	}

	src, err := codegen.Generate(spec)
	require.NoError(t, err)
	assert.Contains(t, src, "out[0] = 1;")
	assert.Contains(t, src, "out[2] = -3;")
	assert.Contains(t, src, "out[5] = 0.5;")
}

func TestGenerateFailsWithMissingRepresentation(t *testing.T) {
	x := expr.Var("x")
	vars, err := symset.New() // x is not in this ordering
	require.NoError(t, err)
	params, err := symset.New()
	require.NoError(t, err)

	spec := codegen.Spec{
		Variables:  vars,
		Parameters: params,
		Value:      x,
		Gradient:   []expr.Expr{},
		Hessian:    [][]expr.Expr{},
	}
	_, err = codegen.Generate(spec)
	assert.ErrorIs(t, err, mpcerr.ErrMissingRepresentation)
}
