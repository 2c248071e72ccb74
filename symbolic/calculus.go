package symbolic

import (
	"errors"
	"fmt"
)

// ============================================================
// Differentiation
// ============================================================

// Diff differentiates e with respect to v.
func Diff(e Expr, v string) Expr { return e.Diff(v).Simplify() }

// ImplicitDiff returns dy/dx for the curve F(x, y) = 0 given by eq,
// computed as -F_x/F_y.
func ImplicitDiff(eq *Equation, x, y string) (Expr, error) {
	f := eq.Residual()
	fy := Diff(f, y)
	if isZero(fy) {
		return nil, fmt.Errorf("implicit derivative: %s does not depend on %s", f, y)
	}
	fx := Diff(f, x)
	return Neg(Div(fx, fy)), nil
}

// ============================================================
// Integration
// ============================================================

// ErrNoRule is returned when no antiderivative rule applies.
var ErrNoRule = errors.New("no integration rule applies")

// Integrate returns an antiderivative of e with respect to v, without the
// constant of integration. Supported: polynomials and (ax+b)^n, a^x,
// sin, cos, tan, exp, sinh, cosh, ln, asin and atan of linear arguments,
// sec^2, csc^2, sin^2 and cos^2 of linear arguments, and constant factors.
func Integrate(e Expr, v string) (Expr, error) {
	s := e.Simplify()
	if r, ok := integrate(s, v); ok {
		return r.Simplify(), nil
	}
	if ex := Expand(s); ex.String() != s.String() {
		if r, ok := integrate(ex, v); ok {
			return r.Simplify(), nil
		}
	}
	return nil, fmt.Errorf("integrate %s: %w", s, ErrNoRule)
}

func integrate(e Expr, v string) (Expr, bool) {
	if !contains(e, v) {
		return MulOf(e, S(v)), true
	}
	switch t := e.(type) {
	case *Sym:
		return MulOf(F(1, 2), PowOf(t, N(2))), true
	case *Add:
		parts := make([]Expr, len(t.terms))
		for i, term := range t.terms {
			r, ok := integrate(term, v)
			if !ok {
				return nil, false
			}
			parts[i] = r
		}
		return AddOf(parts...), true
	case *Mul:
		var consts, deps []Expr
		for _, f := range t.factors {
			if contains(f, v) {
				deps = append(deps, f)
			} else {
				consts = append(consts, f)
			}
		}
		if len(deps) != 1 {
			return nil, false
		}
		r, ok := integrate(deps[0], v)
		if !ok {
			return nil, false
		}
		return MulOf(append(consts, r)...), true
	case *Pow:
		return integratePow(t, v)
	case *Func:
		return integrateFunc(t, v)
	}
	return nil, false
}

func integratePow(p *Pow, v string) (Expr, bool) {
	if !contains(p.exp, v) {
		if fn, ok := p.base.(*Func); ok {
			if !isNum(p.exp, 2) {
				return nil, false
			}
			a, _, lin := linear(fn.arg, v)
			if !lin {
				return nil, false
			}
			u := fn.arg
			switch fn.name {
			case "sec":
				return Div(TanOf(u), a), true
			case "csc":
				return Neg(Div(FuncOf("cot", u), a)), true
			case "sin":
				return Div(Minus(MulOf(F(1, 2), u), MulOf(F(1, 4), SinOf(MulOf(N(2), u)))), a), true
			case "cos":
				return Div(AddOf(MulOf(F(1, 2), u), MulOf(F(1, 4), SinOf(MulOf(N(2), u)))), a), true
			}
			return nil, false
		}
		a, _, ok := linear(p.base, v)
		if !ok {
			return nil, false
		}
		if isNum(p.exp, -1) {
			return Div(LnOf(AbsOf(p.base)), a), true
		}
		n1 := AddOf(p.exp, N(1))
		return Div(PowOf(p.base, n1), MulOf(a, n1)), true
	}
	if !contains(p.base, v) {
		a, _, ok := linear(p.exp, v)
		if !ok {
			return nil, false
		}
		return Div(p, MulOf(a, LnOf(p.base))), true
	}
	return nil, false
}

func integrateFunc(f *Func, v string) (Expr, bool) {
	u := f.arg
	a, _, ok := linear(u, v)
	if !ok {
		return nil, false
	}
	var r Expr
	switch f.name {
	case "sin":
		r = Neg(CosOf(u))
	case "cos":
		r = SinOf(u)
	case "tan":
		r = Neg(LnOf(AbsOf(CosOf(u))))
	case "exp":
		r = ExpOf(u)
	case "sinh":
		r = FuncOf("cosh", u)
	case "cosh":
		r = FuncOf("sinh", u)
	case "ln":
		r = Minus(MulOf(u, LnOf(u)), u)
	case "asin":
		r = AddOf(MulOf(u, FuncOf("asin", u)), Sqrt(Minus(N(1), PowOf(u, N(2)))))
	case "atan":
		r = Minus(MulOf(u, FuncOf("atan", u)), MulOf(F(1, 2), LnOf(AddOf(N(1), PowOf(u, N(2))))))
	default:
		return nil, false
	}
	return Div(r, a), true
}

// DefiniteIntegrate evaluates F(b) - F(a) for an antiderivative F.
func DefiniteIntegrate(e Expr, v string, a, b Expr) (Expr, error) {
	anti, err := Integrate(e, v)
	if err != nil {
		return nil, err
	}
	r := Minus(Sub(anti, v, b), Sub(anti, v, a))
	if undefined(r) || (len(Symbols(r)) == 0 && !finite(r.Approx(nil))) {
		return nil, fmt.Errorf("integral of %s over [%s, %s] does not converge", e, a, b)
	}
	return r, nil
}

// 10-point Gauss–Legendre nodes and weights on [-1, 1].
var (
	gaussNodes = []float64{
		-0.9739065285, -0.8650633667, -0.6794095683,
		-0.4333953941, -0.1488743390, 0.1488743390,
		0.4333953941, 0.6794095683, 0.8650633667, 0.9739065285,
	}
	gaussWeights = []float64{
		0.0666713443, 0.1494513492, 0.2190863625,
		0.2692667193, 0.2955242247, 0.2955242247,
		0.2692667193, 0.2190863625, 0.1494513492, 0.0666713443,
	}
)

// NumericIntegrate approximates the integral of e over [a, b] with
// 10-point Gauss–Legendre quadrature.
func NumericIntegrate(e Expr, v string, a, b float64) (float64, error) {
	mid, half := (a+b)/2, (b-a)/2
	sum := 0.0
	env := map[string]float64{}
	for i, t := range gaussNodes {
		env[v] = mid + half*t
		y := e.Approx(env)
		if !finite(y) {
			return 0, fmt.Errorf("integrand %s is not finite at %s = %g", e, v, env[v])
		}
		sum += gaussWeights[i] * y
	}
	return half * sum, nil
}

// ============================================================
// Trig Identities
// ============================================================

// TrigSimplify applies c*sin(u)^2 + c*cos(u)^2 = c throughout e.
func TrigSimplify(e Expr) Expr { return trigSimplify(e.Simplify()) }

func trigSimplify(e Expr) Expr {
	switch v := e.(type) {
	case *Add:
		terms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			terms[i] = trigSimplify(t)
		}
		return pythagorean(AddOf(terms...))
	case *Mul:
		fs := make([]Expr, len(v.factors))
		for i, f := range v.factors {
			fs[i] = trigSimplify(f)
		}
		return MulOf(fs...)
	case *Pow:
		return PowOf(trigSimplify(v.base), v.exp)
	case *Func:
		return FuncOf(v.name, trigSimplify(v.arg))
	}
	return e
}

func pythagorean(e Expr) Expr {
	for {
		add, ok := e.(*Add)
		if !ok {
			return e
		}
		i, j, c, found := pythagoreanPair(add.terms)
		if !found {
			return e
		}
		terms := make([]Expr, 0, len(add.terms)-1)
		for k, t := range add.terms {
			if k != i && k != j {
				terms = append(terms, t)
			}
		}
		e = AddOf(append(terms, c)...)
	}
}

func pythagoreanPair(terms []Expr) (int, int, *Num, bool) {
	type square struct {
		fn, arg string
		coeff   *Num
		idx     int
	}
	var squares []square
	for idx, t := range terms {
		coeff, rest := splitCoeff(t)
		p, ok := rest.(*Pow)
		if !ok || !isNum(p.exp, 2) {
			continue
		}
		fn, ok := p.base.(*Func)
		if !ok || (fn.name != "sin" && fn.name != "cos") {
			continue
		}
		squares = append(squares, square{fn: fn.name, arg: fn.arg.String(), coeff: coeff, idx: idx})
	}
	for i := 0; i < len(squares); i++ {
		for j := i + 1; j < len(squares); j++ {
			a, b := squares[i], squares[j]
			if a.fn != b.fn && a.arg == b.arg && a.coeff.val.Cmp(b.coeff.val) == 0 {
				return a.idx, b.idx, a.coeff, true
			}
		}
	}
	return 0, 0, nil, false
}
