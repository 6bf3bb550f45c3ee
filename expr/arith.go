package expr

import (
	"sort"
	"strings"
)

// Sum is an n-ary addition node. Constructors keep it flattened, with
// exactly one constant term (if any) and every other distinct term
// coefficient-combined, sorted by canonical key for a deterministic form.
type Sum struct {
	terms []Expr
}

// Add builds the (simplified) sum of terms.
func Add(terms ...Expr) Expr {
	flat := make([]Expr, 0, len(terms))
	for _, t := range terms {
		flattenSum(t, &flat)
	}

	type group struct {
		coeff *Const
		rest  Expr // nil means the group's contribution is just coeff
	}
	order := []string{}
	groups := map[string]*group{}
	constAccum := &Const{val: ratZero()}

	addGroup := func(coeff *Const, rest Expr) {
		key := "1"
		if rest != nil {
			key = rest.key()
		}
		g, ok := groups[key]
		if !ok {
			g = &group{coeff: &Const{val: ratZero()}, rest: rest}
			groups[key] = g
			order = append(order, key)
		}
		g.coeff = constAdd(g.coeff, coeff)
	}

	for _, t := range flat {
		if c, ok := t.(*Const); ok {
			constAccum = constAdd(constAccum, c)
			continue
		}
		coeff, rest := splitCoefficient(t)
		addGroup(coeff, rest)
	}

	sort.Strings(order)

	result := make([]Expr, 0, len(order)+1)
	for _, key := range order {
		g := groups[key]
		if g.coeff.isZero() {
			continue
		}
		if g.rest == nil {
			constAccum = constAdd(constAccum, g.coeff)
			continue
		}
		if g.coeff.isOne() {
			result = append(result, g.rest)
		} else {
			result = append(result, Mul(intern(g.coeff), g.rest))
		}
	}
	if !constAccum.isZero() || len(result) == 0 {
		result = append([]Expr{intern(constAccum)}, result...)
	}

	if len(result) == 1 {
		return result[0]
	}
	return intern(&Sum{terms: result})
}

// Sub is sugar for Add(a, Neg(b)).
func Sub(a, b Expr) Expr { return Add(a, Neg(b)) }

// Neg is sugar for the product of -1 and e.
func Neg(e Expr) Expr { return Mul(Int(-1), e) }

func flattenSum(e Expr, out *[]Expr) {
	if s, ok := e.(*Sum); ok {
		for _, t := range s.terms {
			*out = append(*out, t)
		}
		return
	}
	*out = append(*out, e)
}

// splitCoefficient pulls the leading numeric coefficient off a Product so
// like terms (e.g. 2*x*y and 3*x*y) can be combined during Add.
func splitCoefficient(e Expr) (*Const, Expr) {
	p, ok := e.(*Product)
	if !ok || len(p.factors) == 0 {
		return &Const{val: ratOne()}, e
	}
	if c, ok := p.factors[0].(*Const); ok {
		rest := p.factors[1:]
		if len(rest) == 0 {
			return c, nil
		}
		if len(rest) == 1 {
			return c, rest[0]
		}
		return c, &Product{factors: rest}
	}
	return &Const{val: ratOne()}, e
}

func (s *Sum) String() string {
	if len(s.terms) == 0 {
		return "0"
	}
	parts := make([]string, len(s.terms))
	for i, t := range s.terms {
		parts[i] = t.String()
	}
	return strings.Join(parts, " + ")
}

func (s *Sum) key() string {
	parts := make([]string, len(s.terms))
	for i, t := range s.terms {
		parts[i] = t.key()
	}
	return "(+ " + strings.Join(parts, " ") + ")"
}

func (s *Sum) Equal(other Expr) bool {
	o, ok := other.(*Sum)
	return ok && s.key() == o.key()
}

func (s *Sum) Diff(v *Symbol) Expr {
	terms := make([]Expr, len(s.terms))
	for i, t := range s.terms {
		terms[i] = t.Diff(v)
	}
	return Add(terms...)
}

func (s *Sum) Eval(env Env) (float64, bool) {
	total := 0.0
	for _, t := range s.terms {
		v, ok := t.Eval(env)
		if !ok {
			return 0, false
		}
		total += v
	}
	return total, true
}

// Terms returns the sum's addends in canonical order.
func (s *Sum) Terms() []Expr { return append([]Expr(nil), s.terms...) }

// Addends returns e's top-level summands: its Terms() if e is a *Sum, or
// []Expr{e} otherwise. It lets callers outside this package iterate a
// normalized expression term-by-term without a type switch.
func Addends(e Expr) []Expr {
	if s, ok := e.(*Sum); ok {
		return s.Terms()
	}
	return []Expr{e}
}

// Product is an n-ary multiplication node, canonicalized the same way as
// Sum: one constant factor, every other distinct base exponent-combined,
// sorted by canonical key.
type Product struct {
	factors []Expr
}

// Mul builds the (simplified) product of factors.
func Mul(factors ...Expr) Expr {
	flat := make([]Expr, 0, len(factors))
	for _, f := range factors {
		flattenProduct(f, &flat)
	}

	coeff := &Const{val: ratOne()}
	type group struct {
		base Expr
		exp  Expr
	}
	order := []string{}
	groups := map[string]*group{}

	for _, f := range flat {
		if c, ok := f.(*Const); ok {
			coeff = constMul(coeff, c)
			continue
		}
		base, exp := f, Expr(One)
		if p, ok := f.(*Power); ok {
			base, exp = p.base, p.exp
		}
		key := base.key()
		g, ok := groups[key]
		if !ok {
			g = &group{base: base, exp: Zero}
			groups[key] = g
			order = append(order, key)
		}
		g.exp = Add(g.exp, exp)
	}
	if coeff.isZero() {
		return Zero
	}

	sort.Strings(order)

	result := make([]Expr, 0, len(order)+1)
	for _, key := range order {
		g := groups[key]
		term := Pow(g.base, g.exp)
		if c, ok := term.(*Const); ok && c.isOne() {
			continue
		}
		result = append(result, term)
	}

	if len(result) == 0 {
		return intern(coeff)
	}
	if coeff.isOne() {
		if len(result) == 1 {
			return result[0]
		}
		return intern(&Product{factors: result})
	}
	return intern(&Product{factors: append([]Expr{intern(coeff)}, result...)})
}

func flattenProduct(e Expr, out *[]Expr) {
	if p, ok := e.(*Product); ok {
		for _, f := range p.factors {
			*out = append(*out, f)
		}
		return
	}
	*out = append(*out, e)
}

func (p *Product) String() string {
	if len(p.factors) == 0 {
		return "1"
	}
	parts := make([]string, len(p.factors))
	for i, f := range p.factors {
		if _, ok := f.(*Sum); ok {
			parts[i] = "(" + f.String() + ")"
		} else {
			parts[i] = f.String()
		}
	}
	return strings.Join(parts, "*")
}

func (p *Product) key() string {
	parts := make([]string, len(p.factors))
	for i, f := range p.factors {
		parts[i] = f.key()
	}
	return "(* " + strings.Join(parts, " ") + ")"
}

func (p *Product) Equal(other Expr) bool {
	o, ok := other.(*Product)
	return ok && p.key() == o.key()
}

func (p *Product) Diff(v *Symbol) Expr {
	terms := make([]Expr, len(p.factors))
	for i := range p.factors {
		factors := make([]Expr, len(p.factors))
		copy(factors, p.factors)
		factors[i] = p.factors[i].Diff(v)
		terms[i] = Mul(factors...)
	}
	return Add(terms...)
}

func (p *Product) Eval(env Env) (float64, bool) {
	total := 1.0
	for _, f := range p.factors {
		v, ok := f.Eval(env)
		if !ok {
			return 0, false
		}
		total *= v
	}
	return total, true
}

// Factors returns the product's factors in canonical order.
func (p *Product) Factors() []Expr { return append([]Expr(nil), p.factors...) }

// MulFactors returns e's top-level factors: its Factors() if e is a
// *Product, or []Expr{e} otherwise.
func MulFactors(e Expr) []Expr {
	if p, ok := e.(*Product); ok {
		return p.Factors()
	}
	return []Expr{e}
}
