// Package inequality stores inequality constraints, each conventionally
// represented as "E <= 0", and builds the symbolic log-barrier value,
// gradient, and Hessian over them. Grounded on the original engine's
// SymbolicInequality: appendLessThan/appendGreaterThan rewrite a relation
// into the E <= 0 convention, and the barrier is the sum of -log(-E_i)
// over every stored constraint.
package inequality

import (
	"github.com/convexmpc/convexmpc/expr"
	"github.com/convexmpc/convexmpc/mpcerr"
	"github.com/convexmpc/convexmpc/symdiff"
	"github.com/convexmpc/convexmpc/symset"
)

// Container holds an ordered list of inequality residuals, each required
// to satisfy residual(x) < 0 at a feasible point.
type Container struct {
	residuals []expr.Expr
}

// New returns an empty inequality constraint container.
func New() *Container { return &Container{} }

// Append stores a raw "E <= 0" residual directly.
func (c *Container) Append(residual expr.Expr) {
	c.residuals = append(c.residuals, residual)
}

// AppendLessThan is sugar for left <= right: stores left - right.
func (c *Container) AppendLessThan(left, right expr.Expr) {
	c.Append(expr.Sub(left, right))
}

// AppendGreaterThan is sugar for left >= right: stores right - left.
func (c *Container) AppendGreaterThan(left, right expr.Expr) {
	c.Append(expr.Sub(right, left))
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

// InsertLessThan is Insert's left <= right convenience form.
func (c *Container) InsertLessThan(i int, left, right expr.Expr) error {
	return c.Insert(i, expr.Sub(left, right))
}

// InsertGreaterThan is Insert's left >= right convenience form.
func (c *Container) InsertGreaterThan(i int, left, right expr.Expr) error {
	return c.Insert(i, expr.Sub(right, left))
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

// BarrierValue returns B(x) = sum_i -log(-E_i(x)), the zero expression
// when there are no stored constraints.
func (c *Container) BarrierValue() expr.Expr {
	if len(c.residuals) == 0 {
		return expr.Zero
	}
	terms := make([]expr.Expr, len(c.residuals))
	for i, e := range c.residuals {
		terms[i] = barrierTerm(e)
	}
	return expr.Add(terms...)
}

// barrierTerm is the per-constraint barrier contribution -log(-E).
func barrierTerm(e expr.Expr) expr.Expr {
	return expr.Neg(expr.Fn("log", expr.Neg(e)))
}

// BarrierGradient returns the gradient of BarrierValue() with respect to
// order. With zero stored constraints this is a zero vector of length
// order.Size().
func (c *Container) BarrierGradient(order *symset.Set) []expr.Expr {
	return symdiff.Gradient(c.BarrierValue(), order)
}

// BarrierHessian returns the Hessian of BarrierValue() with respect to
// order. With zero stored constraints this is an order.Size() x
// order.Size() zero matrix.
func (c *Container) BarrierHessian(order *symset.Set) [][]expr.Expr {
	return symdiff.Hessian(c.BarrierValue(), order)
}
