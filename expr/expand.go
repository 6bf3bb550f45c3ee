package expr

// maxExpandPower bounds integer-power expansion the same way constant
// folding is bounded: a pathological (x+y)^500 is left as an unexpanded
// power rather than distributed into an enormous sum.
const maxExpandPower = 40

// Expand fully distributes multiplication over addition, turning any
// expression built from +, *, and integer powers of sums into a flat sum
// of monomials. It is the prerequisite the affine-form extraction relies
// on: that pass does not try to recognize a distributed form on its own,
// mirroring how the original engine's expandAll is run before a
// constraint is inspected. Function-node arguments are expanded
// but not expanded through (sin, cos, ... remain opaque).
func Expand(e Expr) Expr {
	switch n := e.(type) {
	case *Const, *Symbol:
		return e
	case *Call:
		return Fn(n.name, Expand(n.arg))
	case *Equality:
		return Eq(Expand(n.left), Expand(n.right))
	case *Sum:
		terms := make([]Expr, len(n.terms))
		for i, t := range n.terms {
			terms[i] = Expand(t)
		}
		return Add(terms...)
	case *Power:
		base := Expand(n.base)
		if c, ok := n.exp.(*Const); ok && c.isInteger() && !c.isNegative() {
			count := c.val.Num().Int64()
			if s, ok := base.(*Sum); ok && count <= maxExpandPower {
				result := Expr(One)
				for i := int64(0); i < count; i++ {
					result = expandMul(result, s)
				}
				return result
			}
		}
		return Pow(base, n.exp)
	case *Product:
		result := Expr(One)
		for _, f := range n.factors {
			result = expandMul(result, Expand(f))
		}
		return result
	default:
		return e
	}
}

func expandMul(a, b Expr) Expr {
	aTerms := sumTerms(a)
	bTerms := sumTerms(b)
	products := make([]Expr, 0, len(aTerms)*len(bTerms))
	for _, at := range aTerms {
		for _, bt := range bTerms {
			products = append(products, Mul(at, bt))
		}
	}
	return Add(products...)
}

func sumTerms(e Expr) []Expr {
	if s, ok := e.(*Sum); ok {
		return s.terms
	}
	return []Expr{e}
}
