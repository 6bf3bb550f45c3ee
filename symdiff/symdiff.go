// Package symdiff implements the differentiation utilities built on top of
// expr's per-node Diff method: gradient, Jacobian, Hessian, and truncated
// Taylor expansion about a point. Each operation is a thin composition over
// repeated calls to Expr.Diff against an ordered symset.Set, grounded on the
// original engine's gradient/hessian helpers (built the same way, via a
// diff loop over an ordered variable list) and its taylorExpand contract.
package symdiff

import (
	"github.com/convexmpc/convexmpc/expr"
	"github.com/convexmpc/convexmpc/mpcerr"
	"github.com/convexmpc/convexmpc/symset"
)

// Gradient returns, for each symbol in order, the partial derivative of e
// with respect to that symbol, in order's order.
func Gradient(e expr.Expr, order *symset.Set) []expr.Expr {
	vars := order.Slice()
	grad := make([]expr.Expr, len(vars))
	for i, v := range vars {
		grad[i] = e.Diff(v)
	}
	return grad
}

// Jacobian returns, for each expression in fs and each symbol in order, the
// partial derivative ∂fs[r]/∂order[c], as an |fs|×|order| matrix of
// expressions (row-major, outer slice indexed by r).
func Jacobian(fs []expr.Expr, order *symset.Set) [][]expr.Expr {
	rows := make([][]expr.Expr, len(fs))
	for r, f := range fs {
		rows[r] = Gradient(f, order)
	}
	return rows
}

// Hessian returns the |order|×|order| matrix of second partial derivatives
// of e, entry (r, c) = ∂²e/(∂order[r] ∂order[c]).
func Hessian(e expr.Expr, order *symset.Set) [][]expr.Expr {
	first := Gradient(e, order)
	h := make([][]expr.Expr, len(first))
	for r, g := range first {
		h[r] = Gradient(g, order)
	}
	return h
}

// TaylorExpand returns the truncated Taylor series of e in the single
// symbol v about point a, through and including order k-1:
//
//	sum_{n=0}^{k-1} f^(n)(a) / n! * (v - a)^n
//
// It fails with mpcerr.ErrInvalidArgument if v is nil.
func TaylorExpand(e expr.Expr, v *expr.Symbol, a expr.Expr, k int) (expr.Expr, error) {
	if v == nil {
		return nil, mpcerr.ErrInvalidArgument
	}
	if k <= 0 {
		return expr.Zero, nil
	}

	terms := make([]expr.Expr, 0, k)
	deriv := e
	fact := int64(1)
	delta := expr.Sub(v, a)
	for n := 0; n < k; n++ {
		if n > 0 {
			fact *= int64(n)
		}
		coeff := expr.Subst(deriv, v, a)
		term := expr.Mul(coeff, expr.Rat(1, fact), expr.Pow(delta, expr.Int(int64(n))))
		terms = append(terms, term)
		deriv = deriv.Diff(v)
	}
	return expr.Add(terms...), nil
}
