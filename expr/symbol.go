package expr

import "strings"

// VarPrefix and ParamPrefix are the reserved naming-convention prefixes that
// partition symbols into variables and parameters (spec.md §3: "Variable:
// name begins with V:"; "Parameter: name begins with P:"). Var and Param are
// the only constructors that attach them - callers never type a prefix
// themselves.
const (
	VarPrefix   = "V:"
	ParamPrefix = "P:"
)

// Symbol is an atomic named leaf. Two symbols with the same raw (prefixed)
// name are the same *Symbol, by construction through the pool.
type Symbol struct {
	raw string
}

// Var creates (or returns the pooled) variable symbol named name.
func Var(name string) *Symbol { return internSymbol(VarPrefix + name) }

// Param creates (or returns the pooled) parameter symbol named name.
func Param(name string) *Symbol { return internSymbol(ParamPrefix + name) }

// RawSymbol creates a symbol with no prefix applied. It exists so that
// classification's "symbols with neither role are rejected" edge case is
// reachable from outside the package; ordinary callers should use Var/Param.
func RawSymbol(name string) *Symbol { return internSymbol(name) }

// VarVector builds n sequentially-numbered variables baseName0..baseNameN-1,
// mirroring the original engine's variableVector convenience.
func VarVector(baseName string, n int) []*Symbol {
	vec := make([]*Symbol, n)
	for i := range vec {
		vec[i] = Var(baseName + itoa(i))
	}
	return vec
}

// ParamVector is VarVector's Param analogue.
func ParamVector(baseName string, n int) []*Symbol {
	vec := make([]*Symbol, n)
	for i := range vec {
		vec[i] = Param(baseName + itoa(i))
	}
	return vec
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		pos--
		buf[pos] = '-'
	}
	return string(buf[pos:])
}

func internSymbol(raw string) *Symbol {
	s := &Symbol{raw: raw}
	return intern(s).(*Symbol)
}

// Name strips the role prefix for display.
func (s *Symbol) Name() string {
	switch {
	case strings.HasPrefix(s.raw, VarPrefix):
		return s.raw[len(VarPrefix):]
	case strings.HasPrefix(s.raw, ParamPrefix):
		return s.raw[len(ParamPrefix):]
	default:
		return s.raw
	}
}

// Raw returns the full, prefixed identifier used for hashing and
// classification. It is an encoding detail exposed for diagnostics.
func (s *Symbol) Raw() string { return s.raw }

// IsVariable reports whether s was created by Var.
func (s *Symbol) IsVariable() bool { return strings.HasPrefix(s.raw, VarPrefix) }

// IsParameter reports whether s was created by Param.
func (s *Symbol) IsParameter() bool { return strings.HasPrefix(s.raw, ParamPrefix) }

func (s *Symbol) String() string { return s.Name() }

func (s *Symbol) key() string { return "s:" + s.raw }

func (s *Symbol) Equal(other Expr) bool {
	o, ok := other.(*Symbol)
	return ok && s.raw == o.raw
}

func (s *Symbol) Diff(v *Symbol) Expr {
	if s == v {
		return One
	}
	return Zero
}

func (s *Symbol) Eval(env Env) (float64, bool) {
	v, ok := env[s]
	return v, ok
}
