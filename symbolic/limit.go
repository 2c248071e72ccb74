package symbolic

import (
	"errors"
	"fmt"
	"math"
	"math/big"
)

// ============================================================
// Limits
// ============================================================

// ErrNoLimit is returned when the two one-sided limits disagree or the
// expression oscillates.
var ErrNoLimit = errors.New("limit does not exist")

const maxLHopital = 6

// Limit computes the two-sided limit of e as v approaches point. point may
// be Infinity() or NegInfinity().
//
// Strategy: direct substitution, then L'Hôpital on 0/0 and ∞/∞ quotients,
// then degree comparison for rational functions at ±oo, and finally a
// numeric estimate snapped to a nearby small-denominator rational.
func Limit(e Expr, v string, point Expr) (Expr, error) {
	e = e.Simplify()
	if !contains(e, v) {
		return e, nil
	}
	if inf, ok := point.(*Inf); ok {
		return limitAtInfinity(e, v, inf.neg)
	}
	return limitAt(e, v, point.Simplify(), maxLHopital)
}

func limitAt(e Expr, v string, point Expr, depth int) (Expr, error) {
	if r, ok := substitute(e, v, point); ok {
		return r, nil
	}
	if depth > 0 {
		if num, den, ok := quotient(e); ok {
			at := point.Approx(nil)
			n0 := num.Approx(map[string]float64{v: at})
			d0 := den.Approx(map[string]float64{v: at})
			if (nearZero(n0) && nearZero(d0)) || (math.IsInf(n0, 0) && math.IsInf(d0, 0)) {
				next := Div(Diff(num, v), Diff(den, v))
				return limitAt(next, v, point, depth-1)
			}
		}
		if a, ok := e.(*Add); ok {
			if r, ok := termwiseLimit(a, v, point, depth-1); ok {
				return r, nil
			}
		}
	}
	return numericLimit(e, v, point.Approx(nil))
}

// termwiseLimit sums the limits of the terms of a. ok is false when a term
// has no limit or the terms diverge in opposite directions.
func termwiseLimit(a *Add, v string, point Expr, depth int) (Expr, bool) {
	parts := make([]Expr, 0, len(a.terms))
	var inf *Inf
	for _, t := range a.terms {
		r, err := limitAt(t, v, point, depth)
		if err != nil {
			return nil, false
		}
		if i, isInf := r.(*Inf); isInf {
			if inf != nil && inf.neg != i.neg {
				return nil, false
			}
			inf = i
		}
		parts = append(parts, r)
	}
	if inf != nil {
		return inf, true
	}
	return AddOf(parts...), true
}

// substitute plugs point into e and accepts the result when it is defined.
func substitute(e Expr, v string, point Expr) (Expr, bool) {
	r := Sub(e, v, point)
	if undefined(r) {
		return nil, false
	}
	if len(Symbols(r)) > 0 {
		return r, true
	}
	if !finite(r.Approx(nil)) {
		return nil, false
	}
	return r, true
}

// quotient splits e into numerator and denominator. ok is false when e has
// no denominator.
func quotient(e Expr) (num, den Expr, ok bool) {
	switch t := e.(type) {
	case *Pow:
		if n, isNum := t.exp.(*Num); isNum && n.Sign() < 0 {
			return N(1), PowOf(t.base, numNeg(n)), true
		}
	case *Mul:
		var ns, ds []Expr
		for _, f := range t.factors {
			if p, isPow := f.(*Pow); isPow {
				if n, isNum := p.exp.(*Num); isNum && n.Sign() < 0 {
					ds = append(ds, PowOf(p.base, numNeg(n)))
					continue
				}
			}
			ns = append(ns, f)
		}
		if len(ds) > 0 {
			return MulOf(ns...), MulOf(ds...), true
		}
	}
	return nil, nil, false
}

func nearZero(f float64) bool { return math.Abs(f) < 1e-12 }

func limitAtInfinity(e Expr, v string, neg bool) (Expr, error) {
	if r, ok := rationalLimit(e, v, neg); ok {
		return r, nil
	}
	sign := 1.0
	if neg {
		sign = -1
	}
	env := map[string]float64{}
	var vals []float64
	for k := 2; k <= 8; k++ {
		env[v] = sign * math.Pow(10, float64(k))
		vals = append(vals, e.Approx(env))
	}
	return classifyTail(vals)
}

// rationalLimit handles p(v)/q(v) with numeric coefficients at ±oo by
// comparing degrees.
func rationalLimit(e Expr, v string, neg bool) (Expr, bool) {
	num, den, ok := quotient(e)
	if !ok {
		num, den = e, N(1)
	}
	nc, ok := numericPoly(num, v)
	if !ok {
		return nil, false
	}
	dc, ok := numericPoly(den, v)
	if !ok {
		return nil, false
	}
	dn, dd := len(nc)-1, len(dc)-1
	lead := new(big.Rat).Quo(nc[dn], dc[dd])
	switch {
	case dn < dd:
		return N(0), true
	case dn == dd:
		return NRat(lead), true
	}
	negative := lead.Sign() < 0
	if neg && (dn-dd)%2 == 1 {
		negative = !negative
	}
	return &Inf{neg: negative}, true
}

// numericPoly returns exact coefficients of a polynomial in v with no
// negative powers and no other symbols, trimmed so the last is nonzero.
func numericPoly(e Expr, v string) ([]*big.Rat, bool) {
	mono, ok := monomials(Expand(e), v)
	if !ok {
		return nil, false
	}
	hi := 0
	for d, c := range mono {
		if d < 0 && !isZero(c) {
			return nil, false
		}
		if d > hi && !isZero(c) {
			hi = d
		}
	}
	out := make([]*big.Rat, hi+1)
	for i := range out {
		out[i] = new(big.Rat)
	}
	for d, c := range mono {
		if d < 0 || d > hi {
			continue
		}
		n, ok := c.(*Num)
		if !ok || n.approx {
			return nil, false
		}
		out[d] = n.Rat()
	}
	if out[hi].Sign() == 0 {
		return nil, false
	}
	return out, true
}

// numericLimit estimates the limit at a finite point from both sides.
func numericLimit(e Expr, v string, p float64) (Expr, error) {
	if !finite(p) {
		return nil, fmt.Errorf("limit point %v is not a number", p)
	}
	env := map[string]float64{}
	side := func(dir float64) []float64 {
		var vals []float64
		for k := 2; k <= 5; k++ {
			env[v] = p + dir*math.Pow(10, -float64(k))
			vals = append(vals, e.Approx(env))
		}
		return vals
	}
	left, errL := classifyTail(side(-1))
	right, errR := classifyTail(side(1))
	if errL != nil {
		return nil, errL
	}
	if errR != nil {
		return nil, errR
	}
	if left.String() != right.String() {
		return nil, fmt.Errorf("%w: left %s, right %s", ErrNoLimit, left, right)
	}
	return right, nil
}

// classifyTail inspects a sequence of samples approaching the limit point
// and decides between convergence, divergence to ±oo, and no limit.
func classifyTail(vals []float64) (Expr, error) {
	n := len(vals)
	last, prev := vals[n-1], vals[n-2]
	if math.IsNaN(last) || math.IsNaN(prev) {
		return nil, fmt.Errorf("%w: expression is undefined near the point", ErrNoLimit)
	}
	if math.IsInf(last, 0) || (math.Abs(last) > 1e4 && math.Abs(last) > 5*math.Abs(prev) && sameSign(last, prev)) {
		if last < 0 {
			return NegInfinity(), nil
		}
		return Infinity(), nil
	}
	scale := math.Max(1, math.Abs(last))
	if math.Abs(last-prev) <= 1e-3*scale {
		return snap(last, 1e-4*scale), nil
	}
	return nil, fmt.Errorf("%w: values do not settle", ErrNoLimit)
}

func sameSign(a, b float64) bool { return (a < 0) == (b < 0) }

// snap rounds x to the simplest rational with denominator at most 1000
// within tol, or returns it as an approximate number.
func snap(x, tol float64) Expr {
	if r := math.Round(x); math.Abs(x-r) <= tol {
		return N(int64(r))
	}
	for q := int64(2); q <= 1000; q++ {
		p := math.Round(x * float64(q))
		if math.Abs(x-p/float64(q)) <= tol {
			return F(int64(p), q)
		}
	}
	return NFloat(x)
}
