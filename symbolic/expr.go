// Package symbolic is the expression kernel used by the solver adapters.
//
// Design goals:
//   - Exact rational arithmetic (math/big.Rat), floats only where a result
//     is numeric by nature (Newton roots, numeric limits)
//   - Deterministic simplification and stable output, so that printed
//     results can be compared as strings
//   - A small text parser for the loosely formatted input users type
//   - Errors, not panics, at every exported entry point
package symbolic

import (
	"math"
	"math/big"
	"sort"
	"strconv"
)

// ============================================================
// Core Interface
// ============================================================

type Expr interface {
	Simplify() Expr
	String() string
	LaTeX() string
	Sub(name string, value Expr) Expr
	Diff(name string) Expr
	// Approx evaluates the expression in float64. Unbound symbols and
	// undefined operations yield NaN or ±Inf.
	Approx(env map[string]float64) float64
}

// ============================================================
// Num: exact rational number
// ============================================================

// Num is an exact rational. Values produced by float computations carry
// the approx flag and print in decimal form.
type Num struct {
	val    *big.Rat
	approx bool
}

func N(n int64) *Num { return &Num{val: new(big.Rat).SetInt64(n)} }

// F returns p/q. It panics on q == 0 and is meant for constants.
func F(p, q int64) *Num {
	if q == 0 {
		panic("symbolic: denominator is zero")
	}
	return &Num{val: new(big.Rat).SetFrac(big.NewInt(p), big.NewInt(q))}
}

// NFloat wraps a finite float64. Non-finite input returns nil.
func NFloat(f float64) *Num {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &Num{val: new(big.Rat).SetFloat64(f), approx: true}
}

func NRat(r *big.Rat) *Num { return &Num{val: new(big.Rat).Set(r)} }

// ParseNum reads an integer or decimal literal exactly.
func ParseNum(s string) (*Num, bool) {
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return nil, false
	}
	return &Num{val: r}, true
}

func (n *Num) Simplify() Expr                  { return n }
func (n *Num) Sub(string, Expr) Expr           { return n }
func (n *Num) Diff(string) Expr                { return N(0) }
func (n *Num) Approx(map[string]float64) float64 { return n.Float64() }
func (n *Num) Float64() float64                { f, _ := n.val.Float64(); return f }
func (n *Num) IsZero() bool                    { return n.val.Sign() == 0 }
func (n *Num) IsOne() bool                     { return !n.approx && n.val.Cmp(big.NewRat(1, 1)) == 0 }
func (n *Num) IsNegOne() bool                  { return !n.approx && n.val.Cmp(big.NewRat(-1, 1)) == 0 }
func (n *Num) IsInteger() bool                 { return !n.approx && n.val.IsInt() }
func (n *Num) IsApprox() bool                  { return n.approx }
func (n *Num) Sign() int                       { return n.val.Sign() }
func (n *Num) Rat() *big.Rat                   { return new(big.Rat).Set(n.val) }

func (n *Num) String() string {
	if n.approx {
		return formatFloat(n.Float64())
	}
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	return n.val.RatString()
}

func (n *Num) LaTeX() string {
	if n.approx || n.val.IsInt() {
		return n.String()
	}
	sign := ""
	v := new(big.Rat).Set(n.val)
	if v.Sign() < 0 {
		sign = "-"
		v.Neg(v)
	}
	return sign + "\\frac{" + v.Num().String() + "}{" + v.Denom().String() + "}"
}

func formatFloat(f float64) string { return strconv.FormatFloat(f, 'g', 10, 64) }

func numAdd(a, b *Num) *Num {
	return &Num{val: new(big.Rat).Add(a.val, b.val), approx: a.approx || b.approx}
}
func numMul(a, b *Num) *Num {
	return &Num{val: new(big.Rat).Mul(a.val, b.val), approx: a.approx || b.approx}
}
func numNeg(a *Num) *Num { return &Num{val: new(big.Rat).Neg(a.val), approx: a.approx} }

// numPowInt raises a to an integer power. The caller guarantees a != 0
// when k < 0.
func numPowInt(a *Num, k int64) *Num {
	neg := k < 0
	if neg {
		k = -k
	}
	result := new(big.Rat).SetInt64(1)
	base := new(big.Rat).Set(a.val)
	for k > 0 {
		if k&1 == 1 {
			result.Mul(result, base)
		}
		base.Mul(base, base)
		k >>= 1
	}
	if neg {
		result.Inv(result)
	}
	return &Num{val: result, approx: a.approx}
}

// ratRoot returns the exact q-th root of r when it exists.
func ratRoot(r *big.Rat, q int64) (*big.Rat, bool) {
	if r.Sign() < 0 {
		if q%2 == 0 {
			return nil, false
		}
		root, ok := ratRoot(new(big.Rat).Neg(r), q)
		if !ok {
			return nil, false
		}
		return root.Neg(root), true
	}
	num, okN := intRoot(r.Num(), q)
	den, okD := intRoot(r.Denom(), q)
	if !okN || !okD {
		return nil, false
	}
	return new(big.Rat).SetFrac(num, den), true
}

func intRoot(n *big.Int, q int64) (*big.Int, bool) {
	if q == 2 {
		s := new(big.Int).Sqrt(n)
		return s, new(big.Int).Mul(s, s).Cmp(n) == 0
	}
	f, _ := new(big.Float).SetInt(n).Float64()
	guess := int64(math.Round(math.Pow(f, 1/float64(q))))
	for _, c := range []int64{guess - 1, guess, guess + 1} {
		if c < 0 {
			continue
		}
		b := big.NewInt(c)
		if new(big.Int).Exp(b, big.NewInt(q), nil).Cmp(n) == 0 {
			return b, true
		}
	}
	return nil, false
}

// ============================================================
// Const: named mathematical constants
// ============================================================

type Const struct{ name string }

var (
	Pi = &Const{name: "pi"}
	E  = &Const{name: "e"}
)

func (c *Const) Simplify() Expr        { return c }
func (c *Const) String() string        { return c.name }
func (c *Const) Sub(string, Expr) Expr { return c }
func (c *Const) Diff(string) Expr      { return N(0) }
func (c *Const) LaTeX() string {
	if c == Pi || c.name == "pi" {
		return "\\pi"
	}
	return c.name
}
func (c *Const) Approx(map[string]float64) float64 {
	if c.name == "pi" {
		return math.Pi
	}
	return math.E
}

// ============================================================
// Inf: signed infinity, used for limit points and results
// ============================================================

type Inf struct{ neg bool }

func Infinity() *Inf    { return &Inf{} }
func NegInfinity() *Inf { return &Inf{neg: true} }

func (i *Inf) Negative() bool        { return i.neg }
func (i *Inf) Simplify() Expr        { return i }
func (i *Inf) Sub(string, Expr) Expr { return i }
func (i *Inf) Diff(string) Expr      { return N(0) }
func (i *Inf) String() string {
	if i.neg {
		return "-oo"
	}
	return "oo"
}
func (i *Inf) LaTeX() string {
	if i.neg {
		return "-\\infty"
	}
	return "\\infty"
}
func (i *Inf) Approx(map[string]float64) float64 {
	if i.neg {
		return math.Inf(-1)
	}
	return math.Inf(1)
}

// ============================================================
// Sym: symbolic variable
// ============================================================

type Sym struct{ name string }

func S(name string) *Sym      { return &Sym{name: name} }
func (s *Sym) Name() string   { return s.name }
func (s *Sym) Simplify() Expr { return s }
func (s *Sym) String() string { return s.name }
func (s *Sym) LaTeX() string {
	if greekNames[s.name] {
		return "\\" + s.name
	}
	return s.name
}
func (s *Sym) Sub(name string, value Expr) Expr {
	if s.name == name {
		return value
	}
	return s
}
func (s *Sym) Diff(name string) Expr {
	if s.name == name {
		return N(1)
	}
	return N(0)
}
func (s *Sym) Approx(env map[string]float64) float64 {
	if v, ok := env[s.name]; ok {
		return v
	}
	return math.NaN()
}

var greekNames = map[string]bool{
	"alpha": true, "beta": true, "gamma": true, "delta": true, "epsilon": true,
	"theta": true, "lambda": true, "mu": true, "phi": true, "psi": true,
	"omega": true, "rho": true, "sigma": true, "tau": true,
}

// ============================================================
// Free Symbols
// ============================================================

// Symbols returns the sorted names of the free symbols in e.
func Symbols(e Expr) []string {
	set := map[string]struct{}{}
	collectSymbols(e, set)
	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func collectSymbols(e Expr, out map[string]struct{}) {
	switch v := e.(type) {
	case *Sym:
		out[v.name] = struct{}{}
	case *Add:
		for _, t := range v.terms {
			collectSymbols(t, out)
		}
	case *Mul:
		for _, f := range v.factors {
			collectSymbols(f, out)
		}
	case *Pow:
		collectSymbols(v.base, out)
		collectSymbols(v.exp, out)
	case *Func:
		collectSymbols(v.arg, out)
	}
}

func contains(e Expr, name string) bool {
	switch v := e.(type) {
	case *Sym:
		return v.name == name
	case *Add:
		for _, t := range v.terms {
			if contains(t, name) {
				return true
			}
		}
	case *Mul:
		for _, f := range v.factors {
			if contains(f, name) {
				return true
			}
		}
	case *Pow:
		return contains(v.base, name) || contains(v.exp, name)
	case *Func:
		return contains(v.arg, name)
	}
	return false
}

func isZero(e Expr) bool {
	n, ok := e.(*Num)
	return ok && n.IsZero()
}

func isNum(e Expr, v int64) bool {
	n, ok := e.(*Num)
	return ok && !n.approx && n.val.Cmp(new(big.Rat).SetInt64(v)) == 0
}

// undefined reports whether e contains a division by zero left behind by
// substitution, such as 0^-1.
func undefined(e Expr) bool {
	switch v := e.(type) {
	case *Pow:
		if b, ok := v.base.(*Num); ok && b.IsZero() {
			if en, ok := v.exp.(*Num); ok && en.Sign() <= 0 {
				return true
			}
		}
		return undefined(v.base) || undefined(v.exp)
	case *Add:
		for _, t := range v.terms {
			if undefined(t) {
				return true
			}
		}
	case *Mul:
		for _, f := range v.factors {
			if undefined(f) {
				return true
			}
		}
	case *Func:
		return undefined(v.arg)
	}
	return false
}

// ============================================================
// Top-level convenience functions
// ============================================================

func Simplify(e Expr) Expr { return e.Simplify() }
func String(e Expr) string { return e.String() }
func LaTeX(e Expr) string  { return e.LaTeX() }

// Sub substitutes value for name and simplifies.
func Sub(e Expr, name string, value Expr) Expr { return e.Sub(name, value).Simplify() }

// Approx evaluates e with the given bindings.
func Approx(e Expr, env map[string]float64) float64 { return e.Approx(env) }

// Equal compares two expressions by their canonical printed form.
func Equal(a, b Expr) bool { return a.Simplify().String() == b.Simplify().String() }

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
