package symbolic

import (
	"sort"
	"strings"
)

// ============================================================
// Add: sum of terms
// ============================================================

type Add struct{ terms []Expr }

// AddOf builds and simplifies a sum.
func AddOf(terms ...Expr) Expr { return (&Add{terms: terms}).Simplify() }

// Neg returns -e, simplified.
func Neg(e Expr) Expr { return MulOf(N(-1), e) }

// Minus returns a - b, simplified.
func Minus(a, b Expr) Expr { return AddOf(a, Neg(b)) }

func (a *Add) Terms() []Expr { return append([]Expr(nil), a.terms...) }

func (a *Add) Simplify() Expr {
	flat := make([]Expr, 0, len(a.terms))
	for _, t := range a.terms {
		s := t.Simplify()
		if inner, ok := s.(*Add); ok {
			flat = append(flat, inner.terms...)
			continue
		}
		flat = append(flat, s)
	}
	// 0*0^-1 would otherwise collect as a zero coefficient and vanish.
	for _, t := range flat {
		if undefined(t) {
			return &Add{terms: flat}
		}
	}

	type group struct {
		coeff *Num
		rest  Expr
	}
	constant := N(0)
	groups := map[string]*group{}
	var order []string
	var inf *Inf
	for _, t := range flat {
		switch v := t.(type) {
		case *Num:
			constant = numAdd(constant, v)
			continue
		case *Inf:
			if inf != nil && inf.neg != v.neg {
				// oo - oo stays unevaluated
				return &Add{terms: []Expr{Infinity(), NegInfinity()}}
			}
			inf = v
			continue
		}
		coeff, rest := splitCoeff(t)
		key := rest.String()
		if g, ok := groups[key]; ok {
			g.coeff = numAdd(g.coeff, coeff)
			continue
		}
		groups[key] = &group{coeff: coeff, rest: rest}
		order = append(order, key)
	}
	if inf != nil {
		return inf
	}

	terms := make([]Expr, 0, len(order)+1)
	for _, k := range order {
		g := groups[k]
		if g.coeff.IsZero() {
			continue
		}
		terms = append(terms, scale(g.coeff, g.rest))
	}
	sortTerms(terms)
	if !constant.IsZero() {
		terms = append(terms, constant)
	}
	switch len(terms) {
	case 0:
		return constant
	case 1:
		return terms[0]
	}
	return &Add{terms: terms}
}

// splitCoeff separates the leading numeric coefficient of a simplified term.
func splitCoeff(e Expr) (*Num, Expr) {
	m, ok := e.(*Mul)
	if !ok || len(m.factors) == 0 {
		return N(1), e
	}
	c, ok := m.factors[0].(*Num)
	if !ok {
		return N(1), e
	}
	rest := m.factors[1:]
	if len(rest) == 1 {
		return c, rest[0]
	}
	return c, &Mul{factors: append([]Expr(nil), rest...)}
}

// scale multiplies an already simplified, coefficient-free term by c.
func scale(c *Num, rest Expr) Expr {
	if c.IsOne() {
		return rest
	}
	if m, ok := rest.(*Mul); ok {
		return &Mul{factors: append([]Expr{c}, m.factors...)}
	}
	return &Mul{factors: []Expr{c, rest}}
}

// sortTerms orders terms by descending degree, then by printed form.
func sortTerms(terms []Expr) {
	sort.SliceStable(terms, func(i, j int) bool {
		di, dj := termDegree(terms[i]), termDegree(terms[j])
		if di != dj {
			return di > dj
		}
		_, ri := splitCoeff(terms[i])
		_, rj := splitCoeff(terms[j])
		return ri.String() < rj.String()
	})
}

func termDegree(e Expr) float64 {
	switch v := e.(type) {
	case *Sym:
		return 1
	case *Pow:
		if _, ok := v.base.(*Sym); ok {
			if n, ok := v.exp.(*Num); ok {
				return n.Float64()
			}
		}
	case *Mul:
		d := 0.0
		for _, f := range v.factors {
			d += termDegree(f)
		}
		return d
	}
	return 0
}

func (a *Add) String() string {
	var sb strings.Builder
	for i, t := range a.terms {
		s := t.String()
		switch {
		case i == 0:
			sb.WriteString(s)
		case strings.HasPrefix(s, "-"):
			sb.WriteString(" - ")
			sb.WriteString(s[1:])
		default:
			sb.WriteString(" + ")
			sb.WriteString(s)
		}
	}
	return sb.String()
}

func (a *Add) LaTeX() string {
	var sb strings.Builder
	for i, t := range a.terms {
		s := t.LaTeX()
		switch {
		case i == 0:
			sb.WriteString(s)
		case strings.HasPrefix(s, "-"):
			sb.WriteString(" - ")
			sb.WriteString(s[1:])
		default:
			sb.WriteString(" + ")
			sb.WriteString(s)
		}
	}
	return sb.String()
}

func (a *Add) Sub(name string, value Expr) Expr {
	terms := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		terms[i] = t.Sub(name, value)
	}
	return AddOf(terms...)
}

func (a *Add) Diff(name string) Expr {
	terms := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		terms[i] = t.Diff(name)
	}
	return AddOf(terms...)
}

func (a *Add) Approx(env map[string]float64) float64 {
	sum := 0.0
	for _, t := range a.terms {
		sum += t.Approx(env)
	}
	return sum
}
