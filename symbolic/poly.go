package symbolic

import (
	"math/big"
)

// ============================================================
// Equation
// ============================================================

type Equation struct{ LHS, RHS Expr }

func Eq(lhs, rhs Expr) *Equation { return &Equation{LHS: lhs, RHS: rhs} }

func (e *Equation) String() string { return e.LHS.String() + " = " + e.RHS.String() }
func (e *Equation) LaTeX() string  { return e.LHS.LaTeX() + " = " + e.RHS.LaTeX() }

// Residual returns LHS - RHS.
func (e *Equation) Residual() Expr { return Minus(e.LHS, e.RHS) }

// Symbols returns the sorted free symbols of both sides.
func (e *Equation) Symbols() []string { return Symbols(e.Residual()) }

// ============================================================
// Expansion
// ============================================================

const (
	maxExpandPower = 12
	// maxExpandTerms bounds the term count of one expanded product.
	maxExpandTerms = 8192
	// maxPolyDegree is the largest degree treated as a polynomial. Higher
	// powers go to the numeric solver instead of a coefficient slice.
	maxPolyDegree = 1024
)

// Expand distributes products over sums and multiplies out small
// non-negative integer powers of sums.
func Expand(e Expr) Expr { return expand(e.Simplify()).Simplify() }

func expand(e Expr) Expr {
	switch v := e.(type) {
	case *Add:
		terms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			terms[i] = expand(t)
		}
		return AddOf(terms...)
	case *Mul:
		fs := make([]Expr, len(v.factors))
		for i, f := range v.factors {
			fs[i] = expand(f)
		}
		return expandProduct(fs)
	case *Pow:
		base := expand(v.base)
		n, ok := v.exp.(*Num)
		if !ok || !n.IsInteger() {
			return PowOf(base, v.exp)
		}
		k := n.val.Num().Int64()
		if _, isSum := base.(*Add); !isSum || k < 2 || k > maxExpandPower {
			return PowOf(base, v.exp)
		}
		fs := make([]Expr, k)
		for i := range fs {
			fs[i] = base
		}
		return expandProduct(fs)
	case *Func:
		return FuncOf(v.name, expand(v.arg))
	}
	return e
}

// expandProduct multiplies the factors out term by term. It never hands a
// product of sums back to MulOf, which would regroup it into a power.
func expandProduct(fs []Expr) Expr {
	size := 1
	for _, f := range fs {
		if sum, ok := f.(*Add); ok {
			if size *= len(sum.terms); size > maxExpandTerms {
				return MulOf(fs...)
			}
		}
	}
	acc := [][]Expr{{}}
	for _, f := range fs {
		sum, ok := f.(*Add)
		if !ok {
			for i := range acc {
				acc[i] = append(acc[i], f)
			}
			continue
		}
		next := make([][]Expr, 0, len(acc)*len(sum.terms))
		for _, prefix := range acc {
			for _, t := range sum.terms {
				item := make([]Expr, 0, len(prefix)+1)
				item = append(item, prefix...)
				next = append(next, append(item, t))
			}
		}
		acc = next
	}
	terms := make([]Expr, len(acc))
	for i, item := range acc {
		terms[i] = MulOf(item...)
	}
	return AddOf(terms...)
}

// ============================================================
// Polynomial Coefficients
// ============================================================

// monomials maps each power of v in the expanded form of e to its
// coefficient. Negative powers are kept. ok is false when some term is
// not a monomial in v.
func monomials(e Expr, v string) (map[int]Expr, bool) {
	terms := []Expr{e}
	if a, ok := e.(*Add); ok {
		terms = a.terms
	}
	out := map[int]Expr{}
	for _, t := range terms {
		deg, coeff, ok := monomial(t, v)
		if !ok {
			return nil, false
		}
		if c, seen := out[deg]; seen {
			out[deg] = AddOf(c, coeff)
		} else {
			out[deg] = coeff
		}
	}
	return out, true
}

func monomial(t Expr, v string) (int, Expr, bool) {
	if !contains(t, v) {
		return 0, t, true
	}
	if d, ok := varPower(t, v); ok {
		return d, N(1), true
	}
	m, ok := t.(*Mul)
	if !ok {
		return 0, nil, false
	}
	deg := 0
	var coeff []Expr
	for _, f := range m.factors {
		if !contains(f, v) {
			coeff = append(coeff, f)
			continue
		}
		d, ok := varPower(f, v)
		if !ok {
			return 0, nil, false
		}
		deg += d
	}
	if deg > maxPolyDegree || deg < -maxPolyDegree {
		return 0, nil, false
	}
	return deg, MulOf(coeff...), true
}

func varPower(e Expr, v string) (int, bool) {
	switch t := e.(type) {
	case *Sym:
		return 1, t.name == v
	case *Pow:
		s, ok := t.base.(*Sym)
		n, isNum := t.exp.(*Num)
		if !ok || !isNum || s.name != v || !n.IsInteger() || !n.val.Num().IsInt64() {
			return 0, false
		}
		k := n.val.Num().Int64()
		if k > maxPolyDegree || k < -maxPolyDegree {
			return 0, false
		}
		return int(k), true
	}
	return 0, false
}

// PolyCoeffs returns the coefficients of e as a polynomial in v, lowest
// degree first. Negative powers are cleared by multiplying through by the
// lowest power of v, which preserves the nonzero roots.
func PolyCoeffs(e Expr, v string) ([]Expr, bool) {
	mono, ok := monomials(Expand(e), v)
	if !ok {
		return nil, false
	}
	lo, hi := 0, 0
	first := true
	for d, c := range mono {
		if isZero(c) {
			continue
		}
		if first || d < lo {
			lo = d
		}
		if first || d > hi {
			hi = d
		}
		first = false
	}
	if first {
		return []Expr{N(0)}, true
	}
	if hi-lo > maxPolyDegree {
		return nil, false
	}
	coeffs := make([]Expr, hi-lo+1)
	for i := range coeffs {
		coeffs[i] = N(0)
	}
	for d, c := range mono {
		if !isZero(c) {
			coeffs[d-lo] = Expand(c)
		}
	}
	return coeffs, true
}

// Degree returns the polynomial degree of e in v, or -1 when e is not a
// polynomial in v.
func Degree(e Expr, v string) int {
	mono, ok := monomials(Expand(e), v)
	if !ok {
		return -1
	}
	deg := 0
	for d, c := range mono {
		if d < 0 {
			return -1
		}
		if d > deg && !isZero(c) {
			deg = d
		}
	}
	return deg
}

// linear reports whether e is a*v + b with a, b free of v and a nonzero.
func linear(e Expr, v string) (a, b Expr, ok bool) {
	mono, ok := monomials(Expand(e), v)
	if !ok {
		return nil, nil, false
	}
	a, b = N(0), N(0)
	for d, c := range mono {
		switch d {
		case 0:
			b = c
		case 1:
			a = c
		default:
			if !isZero(c) {
				return nil, nil, false
			}
		}
	}
	if isZero(a) {
		return nil, nil, false
	}
	return a, b, true
}

// ratCoeffs converts coefficients to exact rationals when every one of
// them is an exact number.
func ratCoeffs(cs []Expr) ([]*big.Rat, bool) {
	out := make([]*big.Rat, len(cs))
	for i, c := range cs {
		n, ok := c.(*Num)
		if !ok || n.approx {
			return nil, false
		}
		out[i] = n.Rat()
	}
	return out, true
}
