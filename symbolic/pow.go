package symbolic

import (
	"math"
	"math/big"
)

// ============================================================
// Pow: base^exponent
// ============================================================

type Pow struct{ base, exp Expr }

// PowOf builds and simplifies base^exp.
func PowOf(base, exp Expr) Expr { return (&Pow{base: base, exp: exp}).Simplify() }

// Sqrt returns e^(1/2).
func Sqrt(e Expr) Expr { return PowOf(e, F(1, 2)) }

func (p *Pow) Base() Expr { return p.base }
func (p *Pow) Exp() Expr  { return p.exp }

var half = big.NewRat(1, 2)

func (p *Pow) Simplify() Expr {
	base := p.base.Simplify()
	exp := p.exp.Simplify()
	if undefined(base) || undefined(exp) {
		return &Pow{base: base, exp: exp}
	}
	en, expNum := exp.(*Num)
	if expNum && en.IsZero() {
		return N(1)
	}
	if expNum && en.IsOne() {
		return base
	}

	switch b := base.(type) {
	case *Num:
		if b.IsOne() {
			return N(1)
		}
		if !expNum {
			break
		}
		if b.IsZero() {
			if en.Sign() > 0 {
				return N(0)
			}
			break
		}
		if b.approx || en.approx {
			if r := NFloat(powFloat(b.Float64(), en)); r != nil {
				return r
			}
			break
		}
		if en.val.IsInt() {
			k := en.val.Num()
			if k.IsInt64() && k.Int64() >= -1024 && k.Int64() <= 1024 {
				return numPowInt(b, k.Int64())
			}
			break
		}
		q, pn := en.val.Denom(), en.val.Num()
		if q.IsInt64() && q.Int64() <= 16 && pn.IsInt64() {
			if root, ok := ratRoot(b.val, q.Int64()); ok {
				return PowOf(NRat(root), N(pn.Int64()))
			}
		}
		if en.val.Cmp(half) == 0 && b.val.IsInt() && b.Sign() > 0 {
			if k, rest := squareFactor(b.val.Num()); k > 1 {
				return MulOf(N(k), &Pow{base: NRat(new(big.Rat).SetInt(rest)), exp: exp})
			}
		}
	case *Pow:
		if expNum && en.IsInteger() {
			return PowOf(b.base, MulOf(b.exp, en))
		}
	case *Mul:
		if expNum && en.IsInteger() {
			fs := make([]Expr, len(b.factors))
			for i, f := range b.factors {
				fs[i] = PowOf(f, en)
			}
			return MulOf(fs...)
		}
	case *Inf:
		if expNum {
			if en.Sign() < 0 {
				return N(0)
			}
			if b.neg && en.IsInteger() && en.val.Num().Bit(0) == 0 {
				return Infinity()
			}
			return b
		}
	case *Const:
		if b.name == "e" {
			return FuncOf("exp", exp)
		}
	}
	return &Pow{base: base, exp: exp}
}

func (p *Pow) String() string {
	if en, ok := p.exp.(*Num); ok && !en.approx {
		if en.val.Cmp(half) == 0 {
			return "sqrt(" + p.base.String() + ")"
		}
		if en.Sign() < 0 {
			return "1/" + wrapDenominator((&Pow{base: p.base, exp: numNeg(en)}).Simplify())
		}
	}
	return wrapBase(p.base) + "^" + wrapExponent(p.exp)
}

func wrapBase(e Expr) string {
	switch v := e.(type) {
	case *Add, *Mul, *Pow:
		return "(" + e.String() + ")"
	case *Num:
		if v.Sign() < 0 || !v.val.IsInt() {
			return "(" + e.String() + ")"
		}
	}
	return e.String()
}

func wrapExponent(e Expr) string {
	switch v := e.(type) {
	case *Sym, *Const:
		return e.String()
	case *Num:
		if v.Sign() >= 0 && v.IsInteger() {
			return e.String()
		}
	}
	return "(" + e.String() + ")"
}

func (p *Pow) LaTeX() string {
	if en, ok := p.exp.(*Num); ok && !en.approx {
		if en.val.Cmp(half) == 0 {
			return "\\sqrt{" + p.base.LaTeX() + "}"
		}
		if en.Sign() < 0 {
			return "\\frac{1}{" + (&Pow{base: p.base, exp: numNeg(en)}).Simplify().LaTeX() + "}"
		}
	}
	base := p.base.LaTeX()
	switch v := p.base.(type) {
	case *Add, *Mul, *Pow:
		base = "\\left(" + base + "\\right)"
	case *Num:
		if v.Sign() < 0 || !v.val.IsInt() {
			base = "\\left(" + base + "\\right)"
		}
	}
	return base + "^{" + p.exp.LaTeX() + "}"
}

func (p *Pow) Sub(name string, value Expr) Expr {
	return PowOf(p.base.Sub(name, value), p.exp.Sub(name, value))
}

func (p *Pow) Diff(name string) Expr {
	inBase, inExp := contains(p.base, name), contains(p.exp, name)
	switch {
	case !inBase && !inExp:
		return N(0)
	case !inExp:
		return MulOf(p.exp, PowOf(p.base, AddOf(p.exp, N(-1))), p.base.Diff(name))
	case !inBase:
		return MulOf(p, LnOf(p.base), p.exp.Diff(name))
	}
	return MulOf(p, AddOf(
		MulOf(p.exp.Diff(name), LnOf(p.base)),
		MulOf(p.exp, p.base.Diff(name), PowOf(p.base, N(-1))),
	))
}

func (p *Pow) Approx(env map[string]float64) float64 {
	b := p.base.Approx(env)
	if en, ok := p.exp.(*Num); ok {
		return powFloat(b, en)
	}
	return math.Pow(b, p.exp.Approx(env))
}

// squareFactor writes n = k^2 * rest with k as large as trial division up
// to 10^4 finds.
func squareFactor(n *big.Int) (int64, *big.Int) {
	k := int64(1)
	rest := new(big.Int).Set(n)
	for d := int64(2); d <= 10_000; d++ {
		sq := big.NewInt(d * d)
		if sq.Cmp(rest) > 0 {
			break
		}
		for new(big.Int).Mod(rest, sq).Sign() == 0 {
			rest.Quo(rest, sq)
			k *= d
		}
	}
	return k, rest
}

// powFloat evaluates b^e, taking real odd roots of negative bases.
func powFloat(b float64, e *Num) float64 {
	if b < 0 && !e.approx && !e.val.IsInt() && e.val.Denom().Bit(0) == 1 {
		r := math.Pow(-b, e.Float64())
		if e.val.Num().Bit(0) == 1 {
			return -r
		}
		return r
	}
	return math.Pow(b, e.Float64())
}
