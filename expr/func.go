package expr

import (
	"fmt"
	"math"
)

// Call is a named elementary-function application to a single argument:
// sin, cos, tan, log (natural log), exp, sqrt. Spec'd functions are closed
// over this one node type rather than one type per function, following the
// same named-function-node approach a small Go CAS kernel uses for its
// builtin math functions.
type Call struct {
	name string
	arg  Expr
}

var callDiffRule map[string]func(arg Expr) Expr

func init() {
	callDiffRule = map[string]func(arg Expr) Expr{
		"sin":  func(arg Expr) Expr { return Fn("cos", arg) },
		"cos":  func(arg Expr) Expr { return Neg(Fn("sin", arg)) },
		"tan":  func(arg Expr) Expr { return Pow(Fn("cos", arg), Int(-2)) },
		"log":  func(arg Expr) Expr { return Pow(arg, Int(-1)) },
		"exp":  func(arg Expr) Expr { return Fn("exp", arg) },
		"sqrt": func(arg Expr) Expr { return Mul(Rat(1, 2), Pow(Fn("sqrt", arg), Int(-1))) },
	}
}

var callEval = map[string]func(float64) (float64, bool){
	"sin": func(x float64) (float64, bool) { return math.Sin(x), true },
	"cos": func(x float64) (float64, bool) { return math.Cos(x), true },
	"tan": func(x float64) (float64, bool) { return math.Tan(x), true },
	"log": func(x float64) (float64, bool) {
		if x <= 0 {
			return 0, false
		}
		return math.Log(x), true
	},
	"exp": func(x float64) (float64, bool) { return math.Exp(x), true },
	"sqrt": func(x float64) (float64, bool) {
		if x < 0 {
			return 0, false
		}
		return math.Sqrt(x), true
	},
}

// Fn builds (or returns the pooled) application of the named elementary
// function to arg. It panics on an unrecognized name, mirroring how Rat
// treats a zero denominator as a programmer error rather than a runtime one.
func Fn(name string, arg Expr) Expr {
	if _, ok := callDiffRule[name]; !ok {
		panic(fmt.Sprintf("expr: Fn: unknown function %q", name))
	}
	return intern(&Call{name: name, arg: arg})
}

func (c *Call) String() string { return c.name + "(" + c.arg.String() + ")" }

func (c *Call) key() string { return "(" + c.name + " " + c.arg.key() + ")" }

func (c *Call) Equal(other Expr) bool {
	o, ok := other.(*Call)
	return ok && c.name == o.name && c.arg.Equal(o.arg)
}

func (c *Call) Diff(v *Symbol) Expr {
	rule := callDiffRule[c.name]
	return Mul(rule(c.arg), c.arg.Diff(v))
}

func (c *Call) Eval(env Env) (float64, bool) {
	x, ok := c.arg.Eval(env)
	if !ok {
		return 0, false
	}
	fn, ok := callEval[c.name]
	if !ok {
		return 0, false
	}
	return fn(x)
}

// Name returns the function's name (sin, cos, tan, log, exp, sqrt).
func (c *Call) Name() string { return c.name }

// Arg returns the function's single argument.
func (c *Call) Arg() Expr { return c.arg }
