// Package codegen renders symbolic expressions into C source defining the
// evaluator ABI the JIT loader compiles and the function-pointer objective
// calls through. Grounded on the original engine's CodeGenerator: every
// expression becomes a standard C arithmetic expression with variables and
// parameters substituted by indexed array accesses, and every emitted
// matrix is flattened in column-major order into the output buffer. The
// whole source is wrapped in an extern "C" guard so either a C or a C++
// compiler can produce it.
package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/convexmpc/convexmpc/expr"
	"github.com/convexmpc/convexmpc/mpcerr"
	"github.com/convexmpc/convexmpc/symset"
)

// Entry points, by the exact names the JIT loader resolves.
const (
	ValueFn     = "value"
	GradientFn  = "grad"
	HessianFn   = "hess"
	EqMatrixFn  = "eqMat"
	EqVectorFn  = "eqVec"
	IneqValueFn = "ineqVal"
	IneqGradFn  = "ineqGrad"
	IneqHessFn  = "ineqHess"
)

// Spec bundles the symbolic quantities a finalized objective needs turned
// into native code, plus the variable/parameter orderings every expression
// is addressed against.
type Spec struct {
	Variables  *symset.Set
	Parameters *symset.Set

	Value    expr.Expr
	Gradient []expr.Expr
	Hessian  [][]expr.Expr

	EqMatrix [][]expr.Expr // M x N, M may be 0
	EqVector []expr.Expr   // length M

	IneqValue    expr.Expr
	IneqGradient []expr.Expr   // length N
	IneqHessian  [][]expr.Expr // N x N
}

// Generate renders the full evaluator source for spec: one C function per
// entry point above, preceded by a math.h include and wrapped in an
// extern "C" block.
func Generate(spec Spec) (string, error) {
	var b strings.Builder
	b.WriteString("#include <math.h>\n\n")
	b.WriteString("#ifdef __cplusplus\nextern \"C\" {\n#endif\n\n")

	writers := []func() (string, error){
		func() (string, error) { return emitScalar(ValueFn, spec.Value, true, spec.Variables, spec.Parameters) },
		func() (string, error) {
			return emitVector(GradientFn, spec.Gradient, true, spec.Variables, spec.Parameters)
		},
		func() (string, error) {
			return emitMatrix(HessianFn, spec.Hessian, true, spec.Variables, spec.Parameters)
		},
		func() (string, error) {
			return emitMatrix(EqMatrixFn, spec.EqMatrix, false, spec.Variables, spec.Parameters)
		},
		func() (string, error) {
			return emitVector(EqVectorFn, spec.EqVector, false, spec.Variables, spec.Parameters)
		},
		func() (string, error) {
			return emitScalar(IneqValueFn, spec.IneqValue, true, spec.Variables, spec.Parameters)
		},
		func() (string, error) {
			return emitVector(IneqGradFn, spec.IneqGradient, true, spec.Variables, spec.Parameters)
		},
		func() (string, error) {
			return emitMatrix(IneqHessFn, spec.IneqHessian, true, spec.Variables, spec.Parameters)
		},
	}
	for _, w := range writers {
		fn, err := w()
		if err != nil {
			return "", err
		}
		b.WriteString(fn)
		b.WriteString("\n")
	}

	b.WriteString("#ifdef __cplusplus\n}\n#endif\n")
	return b.String(), nil
}

func signature(name string, hasState bool) string {
	if hasState {
		return fmt.Sprintf("void %s(const double* state, const double* param, double* out)", name)
	}
	return fmt.Sprintf("void %s(const double* param, double* out)", name)
}

func emitScalar(name string, e expr.Expr, hasState bool, vars, params *symset.Set) (string, error) {
	if e == nil {
		e = expr.Zero
	}
	rendered, err := render(e, vars, params)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s {\n    out[0] = %s;\n}\n", signature(name, hasState), rendered), nil
}

func emitVector(name string, entries []expr.Expr, hasState bool, vars, params *symset.Set) (string, error) {
	var body strings.Builder
	for i, e := range entries {
		rendered, err := render(e, vars, params)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&body, "    out[%d] = %s;\n", i, rendered)
	}
	return fmt.Sprintf("%s {\n%s}\n", signature(name, hasState), body.String()), nil
}

// emitMatrix flattens an R x C matrix of expressions into out in
// column-major order: entry (r, c) lands at out[c*R + r].
func emitMatrix(name string, m [][]expr.Expr, hasState bool, vars, params *symset.Set) (string, error) {
	var body strings.Builder
	rows := len(m)
	for r, row := range m {
		for c, e := range row {
			rendered, err := render(e, vars, params)
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&body, "    out[%d] = %s;\n", c*rows+r, rendered)
		}
	}
	return fmt.Sprintf("%s {\n%s}\n", signature(name, hasState), body.String()), nil
}

// render turns e into a standard C arithmetic expression, substituting
// every variable with state[indexOf(v)] and every parameter with
// param[indexOf(p)]. It fails with mpcerr.ErrMissingRepresentation if a
// free symbol in e has no entry in the corresponding ordering.
func render(e expr.Expr, vars, params *symset.Set) (string, error) {
	switch n := e.(type) {
	case *expr.Const:
		return formatConst(n), nil
	case *expr.Symbol:
		return renderSymbol(n, vars, params)
	case *expr.Sum:
		terms := n.Terms()
		parts := make([]string, len(terms))
		for i, t := range terms {
			s, err := render(t, vars, params)
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		return "(" + strings.Join(parts, " + ") + ")", nil
	case *expr.Product:
		factors := n.Factors()
		parts := make([]string, len(factors))
		for i, f := range factors {
			s, err := render(f, vars, params)
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		return "(" + strings.Join(parts, " * ") + ")", nil
	case *expr.Power:
		base, err := render(n.Base(), vars, params)
		if err != nil {
			return "", err
		}
		exp, err := render(n.Exponent(), vars, params)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("pow(%s, %s)", base, exp), nil
	case *expr.Call:
		arg, err := render(n.Arg(), vars, params)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s(%s)", n.Name(), arg), nil
	default:
		return "", mpcerr.ErrMissingRepresentation
	}
}

func renderSymbol(s *expr.Symbol, vars, params *symset.Set) (string, error) {
	if s.IsVariable() {
		if idx, ok := vars.IndexOf(s); ok {
			return fmt.Sprintf("state[%d]", idx), nil
		}
		return "", mpcerr.ErrMissingRepresentation
	}
	if s.IsParameter() {
		if idx, ok := params.IndexOf(s); ok {
			return fmt.Sprintf("param[%d]", idx), nil
		}
		return "", mpcerr.ErrMissingRepresentation
	}
	return "", mpcerr.ErrMissingRepresentation
}

func formatConst(c *expr.Const) string {
	return strconv.FormatFloat(c.Float64(), 'g', 17, 64)
}
