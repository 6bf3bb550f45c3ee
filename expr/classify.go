package expr

// Symbols walks e and returns every distinct symbol it references, in
// first-encountered (depth-first, left-to-right) order. Variables and
// Parameters are the same walk filtered by prefix, mirroring the original
// engine's getSymbols/getVariables/getParameters split over the $v_/$p_
// naming convention (here V:/P:).
func Symbols(e Expr) []*Symbol {
	seen := map[*Symbol]bool{}
	var out []*Symbol
	var walk func(Expr)
	walk = func(e Expr) {
		switch n := e.(type) {
		case *Symbol:
			if !seen[n] {
				seen[n] = true
				out = append(out, n)
			}
		case *Const:
		case *Sum:
			for _, t := range n.terms {
				walk(t)
			}
		case *Product:
			for _, f := range n.factors {
				walk(f)
			}
		case *Power:
			walk(n.base)
			walk(n.exp)
		case *Call:
			walk(n.arg)
		case *Equality:
			walk(n.left)
			walk(n.right)
		}
	}
	walk(e)
	return out
}

// Variables returns the subset of Symbols(e) created by Var.
func Variables(e Expr) []*Symbol {
	var out []*Symbol
	for _, s := range Symbols(e) {
		if s.IsVariable() {
			out = append(out, s)
		}
	}
	return out
}

// Parameters returns the subset of Symbols(e) created by Param.
func Parameters(e Expr) []*Symbol {
	var out []*Symbol
	for _, s := range Symbols(e) {
		if s.IsParameter() {
			out = append(out, s)
		}
	}
	return out
}
