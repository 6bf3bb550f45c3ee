package expr

import (
	"math"
	"math/big"
)

// Power is an exponentiation node, base^exp.
type Power struct {
	base, exp Expr
}

// maxIntegerFold bounds constant^constant integer-power folding so a
// pathological exponent like 10000 cannot blow up the rational numerator.
const maxIntegerFold = 20

// Pow builds the (simplified) power base^exp.
func Pow(base, exp Expr) Expr {
	if ce, ok := exp.(*Const); ok {
		switch {
		case ce.isZero():
			return One
		case ce.isOne():
			return base
		}
	}
	if cb, ok := base.(*Const); ok {
		if cb.isZero() {
			if ce, ok := exp.(*Const); ok && !ce.isNegative() && !ce.isZero() {
				return Zero
			}
		}
		if cb.isOne() {
			return One
		}
		if ce, ok := exp.(*Const); ok && ce.isInteger() {
			n := ce.val.Num().Int64()
			if ce.val.IsInt() && n >= -maxIntegerFold && n <= maxIntegerFold {
				return intern(constIntPow(cb, n))
			}
		}
	}
	if inner, ok := base.(*Power); ok {
		return Pow(inner.base, Mul(inner.exp, exp))
	}
	return intern(&Power{base: base, exp: exp})
}

func constIntPow(c *Const, n int64) *Const {
	if n == 0 {
		return &Const{val: ratOne()}
	}
	neg := n < 0
	if neg {
		n = -n
	}
	result := ratOne()
	base := new(big.Rat).Set(c.val)
	for n > 0 {
		if n&1 == 1 {
			result = new(big.Rat).Mul(result, base)
		}
		base = new(big.Rat).Mul(base, base)
		n >>= 1
	}
	if neg {
		result = new(big.Rat).Inv(result)
	}
	return &Const{val: result}
}

func (p *Power) String() string {
	base := p.base.String()
	if _, ok := p.base.(*Sum); ok {
		base = "(" + base + ")"
	}
	if _, ok := p.base.(*Product); ok {
		base = "(" + base + ")"
	}
	exp := p.exp.String()
	if _, ok := p.exp.(*Sum); ok {
		exp = "(" + exp + ")"
	}
	return base + "^" + exp
}

func (p *Power) key() string { return "(^ " + p.base.key() + " " + p.exp.key() + ")" }

func (p *Power) Equal(other Expr) bool {
	o, ok := other.(*Power)
	return ok && p.key() == o.key()
}

// Diff implements the power rule, the log rule, and the general rule for
// exponentiation depending on which of base and exp depend on v:
//
//	d/dv base^exp = exp * base^(exp-1) * base'                if exp constant in v
//	              = base^exp * ln(base) * exp'                if base constant in v
//	              = base^exp * (exp' * ln(base) + exp*base'/base)  otherwise
func (p *Power) Diff(v *Symbol) Expr {
	baseDeriv := p.base.Diff(v)
	expDeriv := p.exp.Diff(v)
	baseConst := baseDeriv.Equal(Zero)
	expConst := expDeriv.Equal(Zero)

	switch {
	case expConst:
		return Mul(p.exp, Pow(p.base, Sub(p.exp, One)), baseDeriv)
	case baseConst:
		return Mul(p, Fn("log", p.base), expDeriv)
	default:
		return Mul(p, Add(
			Mul(expDeriv, Fn("log", p.base)),
			Mul(p.exp, baseDeriv, Pow(p.base, Int(-1))),
		))
	}
}

func (p *Power) Eval(env Env) (float64, bool) {
	b, ok := p.base.Eval(env)
	if !ok {
		return 0, false
	}
	e, ok := p.exp.Eval(env)
	if !ok {
		return 0, false
	}
	if b < 0 && e != float64(int64(e)) {
		return 0, false
	}
	return math.Pow(b, e), true
}

// Base returns the power's base expression.
func (p *Power) Base() Expr { return p.base }

// Exponent returns the power's exponent expression.
func (p *Power) Exponent() Expr { return p.exp }
