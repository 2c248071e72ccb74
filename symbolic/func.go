package symbolic

import (
	"fmt"
	"math"
	"math/big"
)

// ============================================================
// Func: named function applications
// ============================================================

type Func struct {
	name string
	arg  Expr
}

var funcEval = map[string]func(float64) float64{
	"sin":  math.Sin,
	"cos":  math.Cos,
	"tan":  math.Tan,
	"sec":  func(x float64) float64 { return 1 / math.Cos(x) },
	"csc":  func(x float64) float64 { return 1 / math.Sin(x) },
	"cot":  func(x float64) float64 { return math.Cos(x) / math.Sin(x) },
	"asin": math.Asin,
	"acos": math.Acos,
	"atan": math.Atan,
	"sinh": math.Sinh,
	"cosh": math.Cosh,
	"tanh": math.Tanh,
	"exp":  math.Exp,
	"ln":   math.Log,
	"abs":  math.Abs,
}

// oddFuncs satisfy f(-u) = -f(u); evenFuncs satisfy f(-u) = f(u).
var (
	oddFuncs  = map[string]bool{"sin": true, "tan": true, "csc": true, "cot": true, "asin": true, "atan": true, "sinh": true, "tanh": true}
	evenFuncs = map[string]bool{"cos": true, "sec": true, "cosh": true, "abs": true}
)

// IsFunc reports whether name is a supported function.
func IsFunc(name string) bool {
	_, ok := funcEval[name]
	return ok
}

// FuncOf applies the named function. Unknown names panic; use IsFunc
// first when the name comes from input.
func FuncOf(name string, arg Expr) Expr {
	if !IsFunc(name) {
		panic(fmt.Sprintf("symbolic: unknown function %q", name))
	}
	return (&Func{name: name, arg: arg}).Simplify()
}

func SinOf(x Expr) Expr { return FuncOf("sin", x) }
func CosOf(x Expr) Expr { return FuncOf("cos", x) }
func TanOf(x Expr) Expr { return FuncOf("tan", x) }
func ExpOf(x Expr) Expr { return FuncOf("exp", x) }
func LnOf(x Expr) Expr  { return FuncOf("ln", x) }
func AbsOf(x Expr) Expr { return FuncOf("abs", x) }

func (f *Func) Name() string { return f.name }
func (f *Func) Arg() Expr    { return f.arg }

func (f *Func) Simplify() Expr {
	arg := f.arg.Simplify()
	if n, ok := arg.(*Num); ok {
		if n.approx {
			if r := NFloat(funcEval[f.name](n.Float64())); r != nil {
				return r
			}
		} else if v, ok := exactValue(f.name, n); ok {
			return v
		}
	}
	if v, ok := specialAngle(f.name, arg); ok {
		return v
	}
	switch f.name {
	case "ln":
		if c, ok := arg.(*Const); ok && c.name == "e" {
			return N(1)
		}
		if inner, ok := arg.(*Func); ok && inner.name == "exp" {
			return inner.arg
		}
	case "exp":
		if inner, ok := arg.(*Func); ok && inner.name == "ln" {
			return inner.arg
		}
	}
	if negativeLead(arg) && (oddFuncs[f.name] || evenFuncs[f.name]) {
		pos := (&Func{name: f.name, arg: Neg(arg)}).Simplify()
		if oddFuncs[f.name] {
			return Neg(pos)
		}
		return pos
	}
	return &Func{name: f.name, arg: arg}
}

// negativeLead reports whether a simplified expression carries an explicit
// negative sign.
func negativeLead(e Expr) bool {
	switch v := e.(type) {
	case *Num:
		return v.Sign() < 0
	case *Mul:
		if c, ok := v.factors[0].(*Num); ok {
			return c.Sign() < 0
		}
	}
	return false
}

func exactValue(name string, n *Num) (Expr, bool) {
	if n.IsZero() {
		switch name {
		case "sin", "tan", "asin", "atan", "sinh", "tanh", "abs":
			return N(0), true
		case "cos", "sec", "cosh", "exp":
			return N(1), true
		case "acos":
			return MulOf(F(1, 2), Pi), true
		}
	}
	if n.IsOne() {
		switch name {
		case "ln", "acos":
			return N(0), true
		case "asin":
			return MulOf(F(1, 2), Pi), true
		case "atan":
			return MulOf(F(1, 4), Pi), true
		}
	}
	if name == "abs" {
		if n.Sign() < 0 {
			return numNeg(n), true
		}
		return n, true
	}
	return nil, false
}

// piMultiple returns k when e is k*pi for an exact rational k.
func piMultiple(e Expr) (*big.Rat, bool) {
	switch v := e.(type) {
	case *Const:
		if v.name == "pi" {
			return big.NewRat(1, 1), true
		}
	case *Mul:
		if len(v.factors) != 2 {
			return nil, false
		}
		c, ok := v.factors[0].(*Num)
		p, isConst := v.factors[1].(*Const)
		if ok && !c.approx && isConst && p.name == "pi" {
			return c.Rat(), true
		}
	}
	return nil, false
}

// specialAngle evaluates sin, cos and tan exactly at multiples of pi/6 and
// pi/4. tan is left alone where it is undefined.
func specialAngle(name string, arg Expr) (Expr, bool) {
	if name != "sin" && name != "cos" && name != "tan" {
		return nil, false
	}
	k, ok := piMultiple(arg)
	if !ok {
		return nil, false
	}
	deg := new(big.Rat).Mul(k, big.NewRat(180, 1))
	if !deg.IsInt() || !deg.Num().IsInt64() {
		return nil, false
	}
	d := deg.Num().Int64()
	if d%30 != 0 && d%45 != 0 {
		return nil, false
	}
	switch name {
	case "sin":
		return sinDegrees(d), true
	case "cos":
		return sinDegrees(d + 90), true
	}
	d = ((d % 180) + 180) % 180
	switch d {
	case 90:
		return nil, false
	case 0:
		return N(0), true
	}
	sign := int64(1)
	if d > 90 {
		d, sign = 180-d, -1
	}
	var v Expr
	switch d {
	case 30:
		v = Div(Sqrt(N(3)), N(3))
	case 45:
		v = N(1)
	case 60:
		v = Sqrt(N(3))
	}
	return MulOf(N(sign), v), true
}

// sinDegrees is sin(d°) for d a multiple of 30 or 45.
func sinDegrees(d int64) Expr {
	d = ((d % 360) + 360) % 360
	sign := int64(1)
	if d >= 180 {
		d, sign = d-180, -1
	}
	if d > 90 {
		d = 180 - d
	}
	var v Expr
	switch d {
	case 0:
		return N(0)
	case 30:
		v = F(1, 2)
	case 45:
		v = Div(Sqrt(N(2)), N(2))
	case 60:
		v = Div(Sqrt(N(3)), N(2))
	case 90:
		v = N(1)
	}
	return MulOf(N(sign), v)
}

func (f *Func) String() string { return f.name + "(" + f.arg.String() + ")" }

func (f *Func) LaTeX() string {
	arg := f.arg.LaTeX()
	switch f.name {
	case "abs":
		return "\\left|" + arg + "\\right|"
	case "exp":
		return "e^{" + arg + "}"
	case "asin", "acos", "atan":
		return "\\arc" + f.name[1:] + "\\left(" + arg + "\\right)"
	}
	return "\\" + f.name + "\\left(" + arg + "\\right)"
}

func (f *Func) Sub(name string, value Expr) Expr {
	return FuncOf(f.name, f.arg.Sub(name, value))
}

func (f *Func) Diff(name string) Expr {
	if !contains(f.arg, name) {
		return N(0)
	}
	u := f.arg
	du := u.Diff(name)
	var outer Expr
	switch f.name {
	case "sin":
		outer = CosOf(u)
	case "cos":
		outer = Neg(SinOf(u))
	case "tan":
		outer = PowOf(FuncOf("sec", u), N(2))
	case "sec":
		outer = MulOf(FuncOf("sec", u), TanOf(u))
	case "csc":
		outer = Neg(MulOf(FuncOf("csc", u), FuncOf("cot", u)))
	case "cot":
		outer = Neg(PowOf(FuncOf("csc", u), N(2)))
	case "asin":
		outer = PowOf(Minus(N(1), PowOf(u, N(2))), F(-1, 2))
	case "acos":
		outer = Neg(PowOf(Minus(N(1), PowOf(u, N(2))), F(-1, 2)))
	case "atan":
		outer = PowOf(AddOf(N(1), PowOf(u, N(2))), N(-1))
	case "sinh":
		outer = FuncOf("cosh", u)
	case "cosh":
		outer = FuncOf("sinh", u)
	case "tanh":
		outer = PowOf(FuncOf("cosh", u), N(-2))
	case "exp":
		outer = ExpOf(u)
	case "ln":
		outer = PowOf(u, N(-1))
	case "abs":
		outer = MulOf(u, PowOf(AbsOf(u), N(-1)))
	}
	return MulOf(outer, du)
}

func (f *Func) Approx(env map[string]float64) float64 {
	return funcEval[f.name](f.arg.Approx(env))
}
