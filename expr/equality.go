package expr

// Equality is a top-level L = R relation node. It is not itself something
// Eval produces a meaningful scalar for in the usual sense; equality and
// inequality constraint containers consume it structurally (via Left/Right)
// rather than evaluating it, but it satisfies Expr so it can live in the
// same hash-consed tree and be passed around like any other node.
type Equality struct {
	left, right Expr
}

// Eq builds (or returns the pooled) equality node left = right.
func Eq(left, right Expr) Expr {
	return intern(&Equality{left: left, right: right})
}

// Residual returns left - right, the expression whose root is zero exactly
// where the equality holds.
func (e *Equality) Residual() Expr { return Sub(e.left, e.right) }

// Left and Right expose the two sides, used by callers that rewrite the
// relation (e.g. R - L instead of L - R) rather than always taking Residual.
func (e *Equality) Left() Expr  { return e.left }
func (e *Equality) Right() Expr { return e.right }

func (e *Equality) String() string { return e.left.String() + " = " + e.right.String() }

func (e *Equality) key() string { return "(= " + e.left.key() + " " + e.right.key() + ")" }

func (e *Equality) Equal(other Expr) bool {
	o, ok := other.(*Equality)
	return ok && e.key() == o.key()
}

func (e *Equality) Diff(v *Symbol) Expr {
	return Eq(e.left.Diff(v), e.right.Diff(v))
}

// Eval evaluates the residual, not a boolean: a caller asking whether the
// equality holds at a point should compare the result to zero themselves.
func (e *Equality) Eval(env Env) (float64, bool) {
	return e.Residual().Eval(env)
}
