package expr

// Subst returns e with every occurrence of v replaced by repl, rebuilding
// through the ordinary simplifying constructors so the result is again in
// canonical form.
func Subst(e Expr, v *Symbol, repl Expr) Expr {
	switch n := e.(type) {
	case *Const:
		return n
	case *Symbol:
		if n == v {
			return repl
		}
		return n
	case *Sum:
		terms := make([]Expr, len(n.terms))
		for i, t := range n.terms {
			terms[i] = Subst(t, v, repl)
		}
		return Add(terms...)
	case *Product:
		factors := make([]Expr, len(n.factors))
		for i, f := range n.factors {
			factors[i] = Subst(f, v, repl)
		}
		return Mul(factors...)
	case *Power:
		return Pow(Subst(n.base, v, repl), Subst(n.exp, v, repl))
	case *Call:
		return Fn(n.name, Subst(n.arg, v, repl))
	case *Equality:
		return Eq(Subst(n.left, v, repl), Subst(n.right, v, repl))
	default:
		return e
	}
}
