package adapter

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/njchilds90/mathsolver/normalize"
	"github.com/njchilds90/mathsolver/symbolic"
	"github.com/njchilds90/mathsolver/types"
)

var (
	diffVar      = regexp.MustCompile(`d/d([a-z])\b`)
	diffWord     = regexp.MustCompile(`derivative|differentiat`)
	integralWord = regexp.MustCompile(`integrat|integral|∫`)
	trailingD    = regexp.MustCompile(`(?:^|[\s*)\d])d([a-z])$`)
	bounds       = regexp.MustCompile(`\bfrom\s*(\S+?)(?:\s+to\s*|->)(\S+)`)
)

// Calculus handles calculus and trigonometry text with DefaultConfig.
func Calculus(original, normalized string) types.SolveResponse {
	return DefaultConfig().Calculus(original, normalized)
}

// Calculus tries, in order: limit syntax, derivatives, implicit
// differentiation, integrals, single-variable equations and finally
// identity-based simplification.
func (c Config) Calculus(original, normalized string) types.SolveResponse {
	text := fixTrig(strings.TrimSpace(normalized))

	if p, ok := parseLimit(text); ok {
		return c.calculusLimit(original, p)
	}
	if m := diffVar.FindStringSubmatch(text); m != nil {
		return c.derivative(original, text, m[1])
	}
	if diffWord.MatchString(text) {
		return c.derivative(original, text, "")
	}
	if strings.Contains(text, "=") {
		if resp, ok := c.equation(original, text); ok {
			return resp
		}
	}
	if integralWord.MatchString(text) || trailingD.MatchString(strings.TrimSpace(bounds.ReplaceAllString(text, ""))) {
		return c.integral(original, text)
	}
	return c.simplify(original, text)
}

func engineFailure(original, what string, err error) types.SolveResponse {
	return Failure(types.Calculus, original, types.ErrEngine, err, fmt.Sprintf("Could not %s: %v", what, err))
}

func (c Config) calculusLimit(original string, p limitProblem) types.SolveResponse {
	result, err := symbolic.Limit(p.body, p.v, p.point)
	if err != nil {
		return engineFailure(original, "evaluate the limit", err)
	}
	return success(types.Calculus, original, result.String(), result.LaTeX(),
		fmt.Sprintf("Take the limit as %s approaches %s", p.v, p.pointText),
		"Evaluate the expression",
		"Simplify the result",
	)
}

// ============================================================
// Derivatives
// ============================================================

func (c Config) derivative(original, text, v string) types.SolveResponse {
	body := stripWrapping(normalize.StripCues(text))
	e, err := symbolic.Parse(body)
	if err != nil {
		return engineFailure(original, "parse the expression", err)
	}
	if v == "" {
		v = pickVar(e)
	}
	d := symbolic.Diff(e, v)
	resp := success(types.Calculus, original, d.String(), d.LaTeX(),
		"Identify inner and outer functions",
		"Apply the chain rule",
		"Differentiate and simplify",
	)
	resp.Graph = c.Sample(d, v)
	return resp
}

// ============================================================
// Equations
// ============================================================

// equation handles implicit differentiation of two-variable equations and
// numeric solving of one-variable equations. ok is false when text is not
// one of those.
func (c Config) equation(original, text string) (types.SolveResponse, bool) {
	eq, err := symbolic.ParseEquation(stripFiller(text))
	if err != nil {
		if integralWord.MatchString(text) {
			return types.SolveResponse{}, false
		}
		return engineFailure(original, "parse the equation", err), true
	}
	switch vars := eq.Symbols(); len(vars) {
	case 2:
		x, y := vars[0], vars[1]
		if y == "x" {
			x, y = y, x
		}
		d, err := symbolic.ImplicitDiff(eq, x, y)
		if err != nil {
			return engineFailure(original, "differentiate implicitly", err), true
		}
		return success(types.Calculus, original, d.String(), d.LaTeX(),
			"Differentiate both sides with respect to "+x,
			fmt.Sprintf("Treat %s as a function of %s", y, x),
			fmt.Sprintf("Solve for d%s/d%s", y, x),
		), true
	case 1:
		return c.solveOne(original, eq, vars[0]), true
	}
	return types.SolveResponse{}, false
}

// solveOne finds the real roots of a one-variable equation, searching
// numerically over one period either side of zero.
func (c Config) solveOne(original string, eq *symbolic.Equation, v string) types.SolveResponse {
	opts := c.Solve
	opts.SearchRange = 2 * math.Pi
	roots, err := symbolic.SolveFor(eq.Residual(), v, opts)
	if err != nil {
		return engineFailure(original, "solve the equation", err)
	}
	steps := []string{
		"Move all terms to one side: " + eq.Residual().String() + " = 0",
		"Search for roots on [-2π, 2π]",
		"Refine each root with Newton's method",
	}
	if len(roots) == 0 {
		return success(types.Calculus, original, "No real solution in [-2π, 2π]", eq.LaTeX(), steps...)
	}
	parts := make([]string, len(roots))
	for i, r := range roots {
		parts[i] = symbolic.Assignment{Var: v, Value: r}.String()
	}
	return success(types.Calculus, original, strings.Join(parts, "; "), eq.LaTeX(), steps...)
}

// ============================================================
// Integrals
// ============================================================

func (c Config) integral(original, text string) types.SolveResponse {
	var lo, hi symbolic.Expr
	if m := bounds.FindStringSubmatchIndex(text); m != nil {
		var err error
		if lo, err = symbolic.Parse(text[m[2]:m[3]]); err != nil {
			return engineFailure(original, "parse the lower bound", err)
		}
		if hi, err = symbolic.Parse(text[m[4]:m[5]]); err != nil {
			return engineFailure(original, "parse the upper bound", err)
		}
		text = strings.Join(strings.Fields(text[:m[0]]+" "+text[m[1]:]), " ")
	}

	v := ""
	if m := trailingD.FindStringSubmatch(text); m != nil {
		v = m[1]
	}
	e, err := symbolic.Parse(normalize.StripCues(text))
	if err != nil {
		return engineFailure(original, "parse the integrand", err)
	}
	if v == "" {
		v = pickVar(e)
	}

	if lo == nil {
		anti, err := symbolic.Integrate(e, v)
		if err != nil {
			return engineFailure(original, "integrate", err)
		}
		return success(types.Calculus, original, anti.String()+" + C", anti.LaTeX()+" + C",
			"Identify the integrand",
			"Apply integration rules",
			"Add the constant of integration",
		)
	}

	steps := []string{
		"Identify the integrand",
		fmt.Sprintf("Integrate from %s = %s to %s = %s", v, lo, v, hi),
	}
	val, err := symbolic.DefiniteIntegrate(e, v, lo, hi)
	if err == nil {
		return success(types.Calculus, original, display(val), val.LaTeX(),
			append(steps, "Find an antiderivative F", "Evaluate F(b) - F(a)")...)
	}
	if !errors.Is(err, symbolic.ErrNoRule) {
		return engineFailure(original, "integrate", err)
	}
	f, err := symbolic.NumericIntegrate(e, v, lo.Approx(nil), hi.Approx(nil))
	if err != nil {
		return engineFailure(original, "integrate numerically", err)
	}
	approx := symbolic.NFloat(f)
	return success(types.Calculus, original, approx.String(), approx.LaTeX(),
		append(steps, "No antiderivative found by the integration rules",
			"Apply 10-point Gauss-Legendre quadrature")...)
}

// ============================================================
// Simplification
// ============================================================

func (c Config) simplify(original, text string) types.SolveResponse {
	e, err := symbolic.Parse(stripFiller(text))
	if err != nil {
		return Failure(types.Calculus, original, types.ErrUnsupported,
			fmt.Errorf("%w: %v", ErrUnsupported, err), "Unsupported calculus expression")
	}
	s := symbolic.TrigSimplify(e)
	if len(symbolic.Symbols(s)) == 0 {
		return success(types.Calculus, original, display(s), s.LaTeX(),
			"Apply trigonometric identities",
			"Evaluate the expression (angles in radians)",
		)
	}
	return success(types.Calculus, original, s.String(), s.LaTeX(),
		"Apply the Pythagorean identity sin²(u) + cos²(u) = 1",
		"Collect like terms",
	)
}
