package expr

import "math/big"

// Const is an exact rational or integer constant leaf.
type Const struct {
	val *big.Rat
}

// Int builds an integer constant.
func Int(n int64) Expr {
	return intern(&Const{val: new(big.Rat).SetInt64(n)})
}

// Rat builds an exact rational constant p/q.
func Rat(p, q int64) Expr {
	if q == 0 {
		panic("expr: Rat: zero denominator")
	}
	return intern(&Const{val: new(big.Rat).SetFrac64(p, q)})
}

// Float builds a constant from a float64, using its exact binary value.
func Float(f float64) Expr {
	r := new(big.Rat)
	r.SetFloat64(f)
	return intern(&Const{val: r})
}

// Zero and One are the two constants almost every simplification rule tests
// against; exposing them saves repeated Int(0)/Int(1) allocation at call
// sites that compare against them often.
var (
	Zero = Int(0)
	One  = Int(1)
)

func (c *Const) isZero() bool { return c.val.Sign() == 0 }
func (c *Const) isOne() bool  { return c.val.Cmp(big.NewRat(1, 1)) == 0 }
func (c *Const) isNegOne() bool {
	return c.val.Cmp(big.NewRat(-1, 1)) == 0
}
func (c *Const) isNegative() bool { return c.val.Sign() < 0 }
func (c *Const) isInteger() bool  { return c.val.IsInt() }

// Float64 returns the nearest float64 to the constant's exact value.
func (c *Const) Float64() float64 {
	f, _ := c.val.Float64()
	return f
}

func (c *Const) String() string {
	if c.val.IsInt() {
		return c.val.Num().String()
	}
	return c.val.RatString()
}

func (c *Const) key() string { return "k:" + c.val.RatString() }

func (c *Const) Equal(other Expr) bool {
	o, ok := other.(*Const)
	return ok && c.val.Cmp(o.val) == 0
}

func (c *Const) Diff(*Symbol) Expr { return Zero }

func (c *Const) Eval(Env) (float64, bool) { return c.Float64(), true }

func constAdd(a, b *Const) *Const { return &Const{val: new(big.Rat).Add(a.val, b.val)} }
func constMul(a, b *Const) *Const { return &Const{val: new(big.Rat).Mul(a.val, b.val)} }
func constNeg(a *Const) *Const    { return &Const{val: new(big.Rat).Neg(a.val)} }
func constInv(a *Const) *Const    { return &Const{val: new(big.Rat).Inv(a.val)} }

func ratZero() *big.Rat { return new(big.Rat) }
func ratOne() *big.Rat  { return new(big.Rat).SetInt64(1) }
