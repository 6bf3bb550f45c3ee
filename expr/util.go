package expr

// SumOf returns the sum of syms, Zero for an empty slice. Grounded on the
// original engine's SymEngineUtilities::sum.
func SumOf(syms []*Symbol) Expr {
	terms := make([]Expr, len(syms))
	for i, s := range syms {
		terms[i] = s
	}
	return Add(terms...)
}

// SquaredSum returns the sum of syms' squares, Zero for an empty slice.
// Grounded on the original engine's SymEngineUtilities::squaredSum.
func SquaredSum(syms []*Symbol) Expr {
	terms := make([]Expr, len(syms))
	for i, s := range syms {
		terms[i] = Mul(s, s)
	}
	return Add(terms...)
}

// Norm returns the Euclidean norm of syms, sqrt(SquaredSum(syms)).
// Grounded on the original engine's SymEngineUtilities::norm.
func Norm(syms []*Symbol) Expr {
	return Pow(SquaredSum(syms), Rat(1, 2))
}
