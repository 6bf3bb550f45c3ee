// Package equality stores equality constraints and extracts their affine
// form A x = b. Grounded on the original engine's SymbolicEquality: an
// ordered list of "left = right" expressions, each normalized to a
// left-right residual that must vanish, plus a convertToLinearSystem pass
// that walks each residual as a polynomial in the variable ordering.
package equality

import (
	"github.com/convexmpc/convexmpc/expr"
	"github.com/convexmpc/convexmpc/mpcerr"
	"github.com/convexmpc/convexmpc/symset"
)

// Container holds an ordered list of equality-constraint residuals: for
// constraint r, the system requires residual[r](x) == 0.
type Container struct {
	residuals []expr.Expr
}

// New returns an empty equality constraint container.
func New() *Container { return &Container{} }

// Append stores a raw residual expression directly, for callers that
// already have "left - right" in hand.
func (c *Container) Append(residual expr.Expr) {
	c.residuals = append(c.residuals, residual)
}

// AppendEquality is the two-expression convenience form: it stores
// left - right, following the original's insertConstraint(index, left,
// right) overload.
func (c *Container) AppendEquality(left, right expr.Expr) {
	c.Append(expr.Sub(left, right))
}

// Insert places a raw residual at position i, shifting later constraints
// up by one. i must be in [0, Len()].
func (c *Container) Insert(i int, residual expr.Expr) error {
	if i < 0 || i > len(c.residuals) {
		return mpcerr.ErrInvalidArgument
	}
	c.residuals = append(c.residuals, nil)
	copy(c.residuals[i+1:], c.residuals[i:])
	c.residuals[i] = residual
	return nil
}

// InsertEquality is Insert's two-expression convenience form.
func (c *Container) InsertEquality(i int, left, right expr.Expr) error {
	return c.Insert(i, expr.Sub(left, right))
}

// Len returns the number of stored constraints.
func (c *Container) Len() int { return len(c.residuals) }

// Residual returns the i-th constraint's residual expression.
func (c *Container) Residual(i int) (expr.Expr, error) {
	if i < 0 || i >= len(c.residuals) {
		return nil, mpcerr.ErrInvalidArgument
	}
	return c.residuals[i], nil
}

// ConvertToLinearSystem extracts the affine form A x = b for the stored
// constraints against the given variable ordering: A is Len() x
// order.Size(), b is length Len(), and A's and b's entries are
// expressions in the parameters (not yet bound to numbers) - they are
// emitted as the eqMat/eqVec evaluators downstream, not evaluated here.
//
// Every term of every (expanded) residual must have total variable degree
// <= 1: ConvertToLinearSystem fails with mpcerr.ErrNonlinear if a term
// mixes two variables or raises one to a power, and with
// mpcerr.ErrUnknownSymbol if a residual references a variable absent from
// order. When the same variable appears in multiple terms of one
// constraint, its coefficients are summed; column placement follows
// order.
func (c *Container) ConvertToLinearSystem(order *symset.Set) ([][]expr.Expr, []expr.Expr, error) {
	n := order.Size()
	A := make([][]expr.Expr, len(c.residuals))
	b := make([]expr.Expr, len(c.residuals))

	for r, residual := range c.residuals {
		row := make([]expr.Expr, n)
		for i := range row {
			row[i] = expr.Zero
		}
		var remainderTerms []expr.Expr

		for _, term := range expr.Addends(expr.Expand(residual)) {
			variable, coeffFactors, err := classifyTerm(term, order)
			if err != nil {
				return nil, nil, err
			}
			coeff := expr.Mul(coeffFactors...)
			if variable == nil {
				remainderTerms = append(remainderTerms, coeff)
				continue
			}
			idx, _ := order.IndexOf(variable)
			row[idx] = expr.Add(row[idx], coeff)
		}

		A[r] = row
		b[r] = expr.Neg(expr.Add(remainderTerms...))
	}
	return A, b, nil
}

// classifyTerm splits one additive term of an expanded residual into its
// (at most one) variable factor and the remaining coefficient factors.
// Any factor that references a variable in any shape other than "the bare
// variable itself, to the first power" makes the term nonlinear.
func classifyTerm(term expr.Expr, order *symset.Set) (*expr.Symbol, []expr.Expr, error) {
	var variable *expr.Symbol
	var coeff []expr.Expr

	for _, f := range expr.MulFactors(term) {
		if sym, ok := f.(*expr.Symbol); ok && sym.IsVariable() {
			if !order.Contains(sym) {
				return nil, nil, mpcerr.ErrUnknownSymbol
			}
			if variable != nil {
				return nil, nil, mpcerr.ErrNonlinear
			}
			variable = sym
			continue
		}

		vars := expr.Variables(f)
		if len(vars) == 0 {
			coeff = append(coeff, f)
			continue
		}
		for _, v := range vars {
			if !order.Contains(v) {
				return nil, nil, mpcerr.ErrUnknownSymbol
			}
		}
		return nil, nil, mpcerr.ErrNonlinear
	}
	return variable, coeff, nil
}
