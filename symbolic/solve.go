package symbolic

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"sort"
	"strings"
)

// ============================================================
// Equation Solving
// ============================================================

// ErrUnsolvable is returned when no solving strategy applies.
var ErrUnsolvable = errors.New("cannot solve")

// SolveOptions tunes the numeric root search used when no closed form
// applies.
type SolveOptions struct {
	SearchRange float64 // roots are searched in [-SearchRange, SearchRange]
	Tolerance   float64
	MaxIter     int
}

func DefaultSolveOptions() SolveOptions {
	return SolveOptions{SearchRange: 100, Tolerance: 1e-10, MaxIter: 100}
}

func (o SolveOptions) orDefaults() SolveOptions {
	d := DefaultSolveOptions()
	if o.SearchRange <= 0 {
		o.SearchRange = d.SearchRange
	}
	if o.Tolerance <= 0 {
		o.Tolerance = d.Tolerance
	}
	if o.MaxIter <= 0 {
		o.MaxIter = d.MaxIter
	}
	return o
}

// Assignment binds one variable to a value.
type Assignment struct {
	Var   string
	Value Expr
}

func (a Assignment) String() string { return a.Var + " = " + a.Value.String() }

// Solution is one solution of an equation, as a list of assignments.
type Solution []Assignment

func (s Solution) String() string {
	parts := make([]string, len(s))
	for i, a := range s {
		parts[i] = a.String()
	}
	return strings.Join(parts, ", ")
}

// Solve solves eq for its free symbols in sorted order. The first symbol
// with at least one solution wins and is expressed in terms of the rest.
// An empty result with a nil error means no solution was found.
func Solve(eq *Equation, opts SolveOptions) ([]Solution, error) {
	residual := eq.Residual()
	var firstErr error
	for _, v := range Symbols(residual) {
		roots, err := SolveFor(residual, v, opts)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if len(roots) == 0 {
			continue
		}
		out := make([]Solution, len(roots))
		for i, r := range roots {
			out[i] = Solution{{Var: v, Value: r}}
		}
		return out, nil
	}
	return nil, firstErr
}

// SolveFor returns the roots of expr = 0 in v.
func SolveFor(expr Expr, v string, opts SolveOptions) ([]Expr, error) {
	opts = opts.orDefaults()
	e := expr.Simplify()
	if !contains(e, v) {
		return nil, fmt.Errorf("%w: %s does not depend on %s", ErrUnsolvable, e, v)
	}
	if cs, ok := PolyCoeffs(e, v); ok {
		roots, err := solvePoly(cs, v, opts)
		if err != nil {
			return nil, err
		}
		return definedRoots(e, v, roots), nil
	}
	if len(Symbols(e)) == 1 {
		return newtonRoots(e, v, opts), nil
	}
	return nil, fmt.Errorf("%w: %s is not polynomial in %s", ErrUnsolvable, e, v)
}

// definedRoots drops numeric roots at which the original expression is
// undefined, such as those introduced by clearing denominators, and
// approximate roots that do not hold up against the unexpanded expression.
func definedRoots(e Expr, v string, roots []Expr) []Expr {
	var de Expr
	out := roots[:0]
	for _, r := range roots {
		if len(Symbols(r)) == 0 {
			val := Sub(e, v, r)
			if undefined(val) || !finite(val.Approx(nil)) {
				continue
			}
			if n, ok := r.(*Num); ok && n.approx {
				if de == nil {
					de = Diff(e, v)
				}
				if !settled(e, de, v, n.Float64()) {
					continue
				}
			}
		}
		out = append(out, r)
	}
	return out
}

// settled reports whether x is a root of e to working precision: e is zero
// there, or a Newton step from x moves it by less than 1e-6 relative.
func settled(e, de Expr, v string, x float64) bool {
	env := map[string]float64{v: x}
	fx := e.Approx(env)
	if fx == 0 {
		return true
	}
	dfx := de.Approx(env)
	if !finite(fx) || !finite(dfx) || dfx == 0 {
		return false
	}
	return math.Abs(fx/dfx) <= 1e-6*math.Max(1, math.Abs(x))
}

func solvePoly(cs []Expr, v string, opts SolveOptions) ([]Expr, error) {
	switch deg := len(cs) - 1; {
	case deg < 1:
		return nil, nil
	case deg == 1:
		return []Expr{Expand(Neg(Div(cs[0], cs[1])))}, nil
	case deg == 2:
		return quadratic(cs[0], cs[1], cs[2]), nil
	}
	rs, ok := ratCoeffs(cs)
	if !ok {
		return nil, fmt.Errorf("%w: degree %d polynomial with non-rational coefficients", ErrUnsolvable, len(cs)-1)
	}
	return solveRationalPoly(rs, v, opts), nil
}

// quadratic solves a*v^2 + b*v + c = 0.
func quadratic(c, b, a Expr) []Expr {
	if rs, ok := ratCoeffs([]Expr{c, b, a}); ok {
		return exactQuadratic(rs[0], rs[1], rs[2])
	}
	if isZero(b) {
		s := Sqrt(Expand(Neg(Div(c, a))))
		return []Expr{Neg(s), s}
	}
	s := Sqrt(Expand(Minus(PowOf(b, N(2)), MulOf(N(4), a, c))))
	den := MulOf(N(2), a)
	return []Expr{
		Expand(Div(Minus(Neg(b), s), den)),
		Expand(Div(AddOf(Neg(b), s), den)),
	}
}

// exactQuadratic returns the real roots in ascending order, keeping an
// irrational discriminant as sqrt.
func exactQuadratic(c, b, a *big.Rat) []Expr {
	disc := new(big.Rat).Mul(b, b)
	disc.Sub(disc, new(big.Rat).Mul(big.NewRat(4, 1), new(big.Rat).Mul(a, c)))
	if disc.Sign() < 0 {
		return nil
	}
	negB := NRat(new(big.Rat).Neg(b))
	twoA := NRat(new(big.Rat).Mul(big.NewRat(2, 1), a))
	if disc.Sign() == 0 {
		return []Expr{Div(negB, twoA)}
	}
	s := Sqrt(NRat(disc))
	roots := []Expr{
		Expand(Div(Minus(negB, s), twoA)),
		Expand(Div(AddOf(negB, s), twoA)),
	}
	sortRoots(roots)
	return roots
}

func sortRoots(roots []Expr) {
	sort.SliceStable(roots, func(i, j int) bool {
		return roots[i].Approx(nil) < roots[j].Approx(nil)
	})
}

// solveRationalPoly finds rational roots with the rational root theorem,
// deflating after each, and falls back to Newton's method on whatever
// remains above degree two.
func solveRationalPoly(poly []*big.Rat, v string, opts SolveOptions) []Expr {
	var roots []Expr
	if poly[0].Sign() == 0 {
		roots = append(roots, N(0))
		for len(poly) > 1 && poly[0].Sign() == 0 {
			poly = poly[1:]
		}
	}
	for len(poly) > 3 {
		r, ok := rationalRoot(poly)
		if !ok {
			break
		}
		roots = append(roots, NRat(r))
		poly = deflate(poly, r)
	}
	switch len(poly) - 1 {
	case 1:
		r := new(big.Rat).Quo(poly[0], poly[1])
		roots = append(roots, NRat(r.Neg(r)))
	case 2:
		roots = append(roots, exactQuadratic(poly[0], poly[1], poly[2])...)
	default:
		if len(poly) > 3 {
			terms := make([]Expr, len(poly))
			for k, c := range poly {
				terms[k] = MulOf(NRat(c), PowOf(S(v), N(int64(k))))
			}
			roots = append(roots, newtonRoots(AddOf(terms...), v, opts)...)
		}
	}

	seen := map[string]bool{}
	out := roots[:0]
	for _, r := range roots {
		if key := r.String(); !seen[key] {
			seen[key] = true
			out = append(out, r)
		}
	}
	sortRoots(out)
	return out
}

const maxRootCandidate = 1_000_000

func rationalRoot(poly []*big.Rat) (*big.Rat, bool) {
	ints := integerCoeffs(poly)
	a0 := new(big.Int).Abs(ints[0])
	an := new(big.Int).Abs(ints[len(ints)-1])
	if !a0.IsInt64() || !an.IsInt64() || a0.Int64() > maxRootCandidate || an.Int64() > maxRootCandidate {
		return nil, false
	}
	for _, p := range divisors(a0.Int64()) {
		for _, q := range divisors(an.Int64()) {
			for _, sign := range []int64{1, -1} {
				r := big.NewRat(sign*p, q)
				if evalRat(poly, r).Sign() == 0 {
					return r, true
				}
			}
		}
	}
	return nil, false
}

func integerCoeffs(poly []*big.Rat) []*big.Int {
	lcm := big.NewInt(1)
	for _, c := range poly {
		d := c.Denom()
		g := new(big.Int).GCD(nil, nil, lcm, d)
		lcm.Mul(lcm, new(big.Int).Quo(d, g))
	}
	out := make([]*big.Int, len(poly))
	for i, c := range poly {
		scaled := new(big.Rat).Mul(c, new(big.Rat).SetInt(lcm))
		out[i] = new(big.Int).Set(scaled.Num())
	}
	return out
}

func divisors(n int64) []int64 {
	var small, large []int64
	for d := int64(1); d*d <= n; d++ {
		if n%d == 0 {
			small = append(small, d)
			if d != n/d {
				large = append(large, n/d)
			}
		}
	}
	for i := len(large) - 1; i >= 0; i-- {
		small = append(small, large[i])
	}
	return small
}

// evalRat evaluates a polynomial with lowest-degree-first coefficients.
func evalRat(poly []*big.Rat, x *big.Rat) *big.Rat {
	acc := new(big.Rat)
	for i := len(poly) - 1; i >= 0; i-- {
		acc.Mul(acc, x)
		acc.Add(acc, poly[i])
	}
	return acc
}

// deflate divides the polynomial by (v - r).
func deflate(poly []*big.Rat, r *big.Rat) []*big.Rat {
	n := len(poly) - 1
	out := make([]*big.Rat, n)
	carry := new(big.Rat).Set(poly[n])
	out[n-1] = new(big.Rat).Set(carry)
	for k := n - 1; k >= 1; k-- {
		carry = new(big.Rat).Add(poly[k], new(big.Rat).Mul(r, carry))
		out[k-1] = new(big.Rat).Set(carry)
	}
	return out
}

// newtonRoots scans 201 starting points across the search range and keeps
// the distinct converged roots. A start converges when f is exactly zero or
// the Newton step shrinks below Tolerance relative to x; a small |f| alone
// is not enough, since flat functions such as (x+1)^60 are tiny far from
// their root. Roots within 1e-9 of an integer are reported exactly.
func newtonRoots(e Expr, v string, opts SolveOptions) []Expr {
	opts = opts.orDefaults()
	de := Diff(e, v)
	env := map[string]float64{}
	f := func(x float64) float64 { env[v] = x; return e.Approx(env) }
	df := func(x float64) float64 { env[v] = x; return de.Approx(env) }

	r := opts.SearchRange
	var found []float64
	keep := func(x float64) {
		if math.Abs(x) <= r && !nearAny(found, x, opts.Tolerance*100) {
			found = append(found, x)
		}
	}
	for i := 0; i <= 200; i++ {
		x := -r + 2*r*float64(i)/200
		for iter := 0; iter < opts.MaxIter; iter++ {
			fx := f(x)
			if math.IsNaN(fx) || math.IsInf(fx, 0) {
				break
			}
			if fx == 0 {
				keep(x)
				break
			}
			dfx := df(x)
			if math.IsNaN(dfx) || math.IsInf(dfx, 0) || dfx == 0 {
				break
			}
			step := fx / dfx
			x -= step
			if math.Abs(x) > r*10 {
				break
			}
			if math.Abs(step) <= opts.Tolerance*math.Max(1, math.Abs(x)) {
				if fx := f(x); finite(fx) {
					keep(x)
				}
				break
			}
		}
	}
	sort.Float64s(found)
	out := make([]Expr, 0, len(found))
	for _, x := range found {
		if n := math.Round(x); math.Abs(x-n) < 1e-9 {
			out = append(out, N(int64(n)))
			continue
		}
		out = append(out, NFloat(x))
	}
	return out
}

func nearAny(xs []float64, x, tol float64) bool {
	for _, y := range xs {
		if math.Abs(x-y) < tol {
			return true
		}
	}
	return false
}
