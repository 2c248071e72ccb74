package symbolic

import (
	"sort"
	"strings"
)

// ============================================================
// Mul: product of factors
// ============================================================

type Mul struct{ factors []Expr }

// MulOf builds and simplifies a product.
func MulOf(factors ...Expr) Expr { return (&Mul{factors: factors}).Simplify() }

// Div returns a / b, simplified.
func Div(a, b Expr) Expr { return MulOf(a, PowOf(b, N(-1))) }

func (m *Mul) Factors() []Expr { return append([]Expr(nil), m.factors...) }

func (m *Mul) Simplify() Expr {
	flat := make([]Expr, 0, len(m.factors))
	for _, f := range m.factors {
		s := f.Simplify()
		if inner, ok := s.(*Mul); ok {
			flat = append(flat, inner.factors...)
			continue
		}
		flat = append(flat, s)
	}

	type power struct{ base, exp Expr }
	coeff := N(1)
	groups := map[string]*power{}
	var order []string
	var inf *Inf
	for _, f := range flat {
		switch v := f.(type) {
		case *Num:
			coeff = numMul(coeff, v)
			continue
		case *Inf:
			if inf == nil {
				inf = Infinity()
			}
			if v.neg {
				inf = &Inf{neg: !inf.neg}
			}
			continue
		}
		base, exp := asPower(f)
		key := base.String()
		if g, ok := groups[key]; ok {
			g.exp = AddOf(g.exp, exp)
			continue
		}
		groups[key] = &power{base: base, exp: exp}
		order = append(order, key)
	}
	if inf != nil {
		if coeff.IsZero() {
			return &Mul{factors: []Expr{coeff, inf}}
		}
		return &Inf{neg: inf.neg != (coeff.Sign() < 0)}
	}

	factors := make([]Expr, 0, len(order))
	merged := false
	for _, k := range order {
		g := groups[k]
		p := PowOf(g.base, g.exp)
		switch v := p.(type) {
		case *Num:
			coeff = numMul(coeff, v)
		case *Mul:
			factors = append(factors, v.factors...)
			merged = true
		default:
			factors = append(factors, p)
		}
	}
	if merged {
		return MulOf(append([]Expr{coeff}, factors...)...)
	}

	if coeff.IsZero() {
		for _, f := range factors {
			if undefined(f) {
				return &Mul{factors: append([]Expr{coeff}, factors...)}
			}
		}
		return coeff
	}
	sortFactors(factors)
	switch {
	case len(factors) == 0:
		return coeff
	case coeff.IsOne() && len(factors) == 1:
		return factors[0]
	case coeff.IsOne():
		return &Mul{factors: factors}
	}
	return &Mul{factors: append([]Expr{coeff}, factors...)}
}

func asPower(e Expr) (Expr, Expr) {
	if p, ok := e.(*Pow); ok {
		return p.base, p.exp
	}
	return e, N(1)
}

// sortFactors puts symbols first, then function applications, then the
// rest, each group ordered by printed form.
func sortFactors(fs []Expr) {
	rank := func(e Expr) int {
		base, _ := asPower(e)
		switch base.(type) {
		case *Sym, *Const:
			return 0
		case *Func:
			return 1
		}
		return 2
	}
	sort.SliceStable(fs, func(i, j int) bool {
		ri, rj := rank(fs[i]), rank(fs[j])
		if ri != rj {
			return ri < rj
		}
		return fs[i].String() < fs[j].String()
	})
}

// parts splits a simplified product into its coefficient, the factors with
// non-negative exponents, and the denominators with the sign flipped.
func (m *Mul) parts() (*Num, []Expr, []Expr) {
	coeff := N(1)
	var num, den []Expr
	for i, f := range m.factors {
		if n, ok := f.(*Num); ok && i == 0 {
			coeff = n
			continue
		}
		if p, ok := f.(*Pow); ok {
			if en, ok := p.exp.(*Num); ok && en.Sign() < 0 && !en.approx {
				den = append(den, (&Pow{base: p.base, exp: numNeg(en)}).Simplify())
				continue
			}
		}
		num = append(num, f)
	}
	return coeff, num, den
}

func (m *Mul) String() string {
	coeff, num, den := m.parts()
	sign, lead, denLead := "", "", ""
	if coeff.approx {
		f := coeff.Float64()
		if f < 0 {
			sign, f = "-", -f
		}
		if f != 1 {
			lead = formatFloat(f)
		}
	} else {
		r := coeff.Rat()
		if r.Sign() < 0 {
			sign = "-"
			r.Neg(r)
		}
		if !r.Num().IsInt64() || r.Num().Int64() != 1 {
			lead = r.Num().String()
		}
		if !r.IsInt() {
			denLead = r.Denom().String()
		}
	}

	numParts := make([]string, 0, len(num)+1)
	if lead != "" {
		numParts = append(numParts, lead)
	}
	for _, f := range num {
		numParts = append(numParts, factorString(f))
	}
	numStr := strings.Join(numParts, "*")
	if numStr == "" {
		numStr = "1"
	}
	if len(den) == 0 && denLead == "" {
		return sign + numStr
	}

	denParts := make([]string, 0, len(den)+1)
	if denLead != "" {
		denParts = append(denParts, denLead)
	}
	for _, f := range den {
		denParts = append(denParts, factorString(f))
	}
	denStr := strings.Join(denParts, "*")
	switch {
	case len(denParts) > 1:
		denStr = "(" + denStr + ")"
	case denLead == "":
		denStr = wrapDenominator(den[0])
	}
	return sign + numStr + "/" + denStr
}

func factorString(e Expr) string {
	if _, ok := e.(*Add); ok {
		return "(" + e.String() + ")"
	}
	return e.String()
}

func wrapDenominator(e Expr) string {
	switch e.(type) {
	case *Add, *Mul:
		return "(" + e.String() + ")"
	}
	return e.String()
}

func (m *Mul) LaTeX() string {
	coeff, num, den := m.parts()
	sign := ""
	c := coeff
	if c.Sign() < 0 {
		sign = "-"
		c = numNeg(c)
	}
	var numParts, denParts []string
	if c.approx {
		if c.Float64() != 1 {
			numParts = append(numParts, c.String())
		}
	} else {
		r := c.Rat()
		if !r.Num().IsInt64() || r.Num().Int64() != 1 {
			numParts = append(numParts, r.Num().String())
		}
		if !r.IsInt() {
			denParts = append(denParts, r.Denom().String())
		}
	}
	for _, f := range num {
		numParts = append(numParts, factorLaTeX(f))
	}
	for _, f := range den {
		denParts = append(denParts, factorLaTeX(f))
	}
	numStr := strings.Join(numParts, " ")
	if numStr == "" {
		numStr = "1"
	}
	if len(denParts) == 0 {
		return sign + numStr
	}
	return sign + "\\frac{" + numStr + "}{" + strings.Join(denParts, " ") + "}"
}

func factorLaTeX(e Expr) string {
	if _, ok := e.(*Add); ok {
		return "\\left(" + e.LaTeX() + "\\right)"
	}
	return e.LaTeX()
}

func (m *Mul) Sub(name string, value Expr) Expr {
	fs := make([]Expr, len(m.factors))
	for i, f := range m.factors {
		fs[i] = f.Sub(name, value)
	}
	return MulOf(fs...)
}

// Diff applies the product rule.
func (m *Mul) Diff(name string) Expr {
	terms := make([]Expr, 0, len(m.factors))
	for i, f := range m.factors {
		if !contains(f, name) {
			continue
		}
		fs := make([]Expr, 0, len(m.factors))
		for j, g := range m.factors {
			if i == j {
				fs = append(fs, f.Diff(name))
			} else {
				fs = append(fs, g)
			}
		}
		terms = append(terms, MulOf(fs...))
	}
	if len(terms) == 0 {
		return N(0)
	}
	return AddOf(terms...)
}

func (m *Mul) Approx(env map[string]float64) float64 {
	prod := 1.0
	for _, f := range m.factors {
		prod *= f.Approx(env)
	}
	return prod
}
