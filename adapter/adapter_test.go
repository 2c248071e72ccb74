package adapter_test

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/mathsolver/adapter"
	"github.com/njchilds90/mathsolver/normalize"
	"github.com/njchilds90/mathsolver/symbolic"
	"github.com/njchilds90/mathsolver/types"
)

func run(fn adapter.Func, in string) types.SolveResponse {
	return fn(in, normalize.Canonical(in))
}

func assertOK(t *testing.T, resp types.SolveResponse, want string) {
	t.Helper()
	assert.True(t, resp.OK, "error: %s", resp.Error)
	assert.Equal(t, want, resp.Solution)
	assert.Empty(t, resp.Error)
	assert.Empty(t, resp.ErrorKind)
	assert.NotNil(t, resp.Steps)
}

// ============================================================
// Algebra
// ============================================================

func TestAlgebra_Linear(t *testing.T) {
	resp := run(adapter.Algebra, "x + 10 = 0")
	assertOK(t, resp, "x = -10")
	assert.Equal(t, types.Algebra, resp.ProblemType)
	assert.Equal(t, "x + 10 = 0", resp.OriginalExpression)
	assert.Equal(t, "x + 10 = 0", resp.LaTeX)
	require.Len(t, resp.Steps, 4)
	assert.Equal(t, "Given equation: x + 10 = 0", resp.Steps[0])
	assert.Equal(t, "Solve the equation for x", resp.Steps[3])
	assert.Nil(t, resp.Graph)
}

func TestAlgebra_Cases(t *testing.T) {
	cases := []struct{ in, want string }{
		{"2x + 3 = 7", "x = 2"},
		{"x^2 + 5x + 6 = 0", "x = -3; x = -2"},
		{"solve x + 10 = 0", "x = -10"},
		{"3(x+1) = 6", "x = 1"},
		{"x + y = 5", "x = -y + 5"},
		{"x^2 = -1", "No solution found"},
		{"2 = 2", "Identity: true for all values"},
		{"1 = 2", "No solution: the equation is inconsistent"},
		{"x = 1e3", "x = 1000"},
		{"(x+1)^60 = 0", "x = -1"},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			assertOK(t, run(adapter.Algebra, c.in), c.want)
		})
	}
}

func TestAlgebra_HugeDegree(t *testing.T) {
	resp := run(adapter.Algebra, "x^1000000000 = 1")
	assert.True(t, resp.OK, resp.Error)
	assert.Contains(t, resp.Solution, "x = ")

	resp = run(adapter.Algebra, "(x+y+z+w)^12 = 0")
	assert.NotEmpty(t, resp.Solution)
}

func TestAlgebra_MissingEquals(t *testing.T) {
	resp := run(adapter.Algebra, "x + 10")
	assert.False(t, resp.OK)
	assert.Equal(t, types.ErrInput, resp.ErrorKind)
	assert.Equal(t, "Invalid equation. Please include '='.", resp.Solution)
	assert.Equal(t, []string{}, resp.Steps)
	assert.Empty(t, resp.LaTeX)
}

func TestAlgebra_ParseError(t *testing.T) {
	resp := run(adapter.Algebra, "x + = 2")
	assert.False(t, resp.OK)
	assert.Equal(t, types.ErrEngine, resp.ErrorKind)
	assert.Contains(t, resp.Solution, "Could not solve the equation")
	assert.Contains(t, resp.Error, "left side")
	assert.Empty(t, resp.Steps)
}

// ============================================================
// Calculus
// ============================================================

func TestCalculus_Derivative(t *testing.T) {
	for _, in := range []string{"d/dx sin(3x)", "d/dx sin3x", "derivative of sin(3x)", "d/dx (sin(3x))"} {
		t.Run(in, func(t *testing.T) {
			resp := run(adapter.Calculus, in)
			assertOK(t, resp, "3*cos(3*x)")
			assert.Equal(t, types.Calculus, resp.ProblemType)
			require.NotNil(t, resp.Graph)
			assert.Len(t, resp.Graph.Series, 401)
			assert.Equal(t, []string{
				"Identify inner and outer functions",
				"Apply the chain rule",
				"Differentiate and simplify",
			}, resp.Steps)
		})
	}
}

func TestCalculus_DerivativeVariable(t *testing.T) {
	assertOK(t, run(adapter.Calculus, "d/dt t^2"), "2*t")
	assertOK(t, run(adapter.Calculus, "differentiate x^3"), "3*x^2")
}

func TestCalculus_Implicit(t *testing.T) {
	resp := run(adapter.Calculus, "x^2 + y^2 = 1")
	assertOK(t, resp, "-x/y")
	assert.Equal(t, "Solve for dy/dx", resp.Steps[2])
}

func TestCalculus_Integral(t *testing.T) {
	resp := run(adapter.Calculus, "integrate x^2 dx")
	assertOK(t, resp, "x^3/3 + C")
	assert.Equal(t, `\frac{x^{3}}{3} + C`, resp.LaTeX)

	assertOK(t, run(adapter.Calculus, "∫ sin(x) dx"), "-cos(x) + C")
	assertOK(t, run(adapter.Calculus, "2x + 3 dx"), "x^2 + 3*x + C")
}

func TestCalculus_DefiniteIntegral(t *testing.T) {
	assertOK(t, run(adapter.Calculus, "integrate x^2 dx from 0 to 3"), "9")
	assertOK(t, run(adapter.Calculus, "integrate x from 0 to 2"), "2")
}

func TestCalculus_DefiniteIntegralNumeric(t *testing.T) {
	resp := run(adapter.Calculus, "integrate x*sin(x) from 0 to 1")
	require.True(t, resp.OK, resp.Error)
	got, err := strconv.ParseFloat(resp.Solution, 64)
	require.NoError(t, err)
	assert.InDelta(t, 0.3011686789, got, 1e-6)
	assert.Contains(t, resp.Steps, "Apply 10-point Gauss-Legendre quadrature")
}

func TestCalculus_NoRule(t *testing.T) {
	resp := run(adapter.Calculus, "integrate x*sin(x) dx")
	assert.False(t, resp.OK)
	assert.Equal(t, types.ErrEngine, resp.ErrorKind)
	assert.Empty(t, resp.Steps)
	assert.Empty(t, resp.LaTeX)
	assert.Nil(t, resp.Graph)
}

func TestCalculus_Limit(t *testing.T) {
	resp := run(adapter.Calculus, "lim x->0 sin(x)/x")
	assertOK(t, resp, "1")
	assert.Equal(t, types.Calculus, resp.ProblemType)
	assert.Equal(t, []string{
		"Take the limit as x approaches 0",
		"Evaluate the expression",
		"Simplify the result",
	}, resp.Steps)
}

func TestCalculus_Trig(t *testing.T) {
	assertOK(t, run(adapter.Calculus, "sin^2 x + cos^2 x"), "1")
	assertOK(t, run(adapter.Calculus, "simplify sin^2x + cos^2x"), "1")
	assertOK(t, run(adapter.Calculus, "sin(x) + cos(x)"), "cos(x) + sin(x)")
	assertOK(t, run(adapter.Calculus, "sin x"), "sin(x)")
	assertOK(t, run(adapter.Calculus, "sin(pi/2)"), "1")
	assertOK(t, run(adapter.Calculus, "cos(pi)"), "-1")
	assertOK(t, run(adapter.Calculus, "sin(pi/6)"), "1/2")
	assertOK(t, run(adapter.Calculus, "tan(pi/4)"), "1")
	assert.Contains(t, run(adapter.Calculus, "sin(pi/3)").Solution, "sqrt(3)/2")

	resp := run(adapter.Calculus, "value of tan 45")
	assert.True(t, resp.OK)
	assert.Contains(t, resp.Solution, "tan(45) ≈ 1.6197")
}

func TestCalculus_TrigEquation(t *testing.T) {
	resp := run(adapter.Calculus, "tan(theta) = 1")
	assert.True(t, resp.OK, resp.Error)
	assert.Contains(t, resp.Solution, "theta = 0.785398")
}

func TestCalculus_Unsupported(t *testing.T) {
	resp := adapter.Calculus("??", "??")
	assert.False(t, resp.OK)
	assert.Equal(t, types.ErrUnsupported, resp.ErrorKind)
	assert.Equal(t, "Unsupported calculus expression", resp.Solution)
	assert.Equal(t, []string{}, resp.Steps)
}

// ============================================================
// Limits
// ============================================================

func TestLimits_Standard(t *testing.T) {
	resp := run(adapter.Limits, "lim x->0 sin(x)/x")
	assertOK(t, resp, "1")
	assert.Equal(t, types.Limits, resp.ProblemType)
	assert.Equal(t, []string{
		"Identify the limit expression",
		"Recognize the standard limit sin(x)/x as x → 0",
		"Apply the known result: lim x→0 sin(x)/x = 1",
		"Conclude the limit value",
	}, resp.Steps)

	require.NotNil(t, resp.Graph)
	assert.Len(t, resp.Graph.Series, 400)
	for _, p := range resp.Graph.Series {
		assert.NotEqual(t, 0.0, p.X)
	}
}

func TestLimits_Cases(t *testing.T) {
	cases := []struct{ in, want string }{
		{"lim x→0 (1 - cos(x))/x^2", "1/2"},
		{"lim x->0 tan(x)/x", "1"},
		{"limit as x approaches 0 of x^2", "0"},
		{"lim x to 2 x^2", "4"},
		{"lim x->oo 1/x", "0"},
		{"lim x->infinity (2x^2 + 1)/(x^2 - 3)", "2"},
		{"lim x->-oo x^3", "-oo"},
		{"lim x->0.5 2x", "1"},
		{"lim x->0 sin(x)/x + 1", "2"},
		{"lim x->2 (x^2-4)/(x-2) + 3", "7"},
		{"lim x->0 (1-cos(x))/x^2 + 1", "3/2"},
		{"lim x->pi sin(x)", "0"},
		{"limx->0 x + 1", "1"},
		{"limit x->0 x", "0"},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			assertOK(t, run(adapter.Limits, c.in), c.want)
		})
	}
}

func TestLimits_GenericStep(t *testing.T) {
	resp := run(adapter.Limits, "limit as x approaches 0 of x^2")
	assert.Equal(t, "Substitute the approaching value and simplify", resp.Steps[1])
}

func TestLimits_MissingArrow(t *testing.T) {
	resp := run(adapter.Limits, "lim sin(x)/x")
	assert.False(t, resp.OK)
	assert.Equal(t, types.ErrInput, resp.ErrorKind)
	assert.Len(t, resp.Steps, 1)
	assert.Contains(t, resp.Solution, "lim x->0")
}

func TestLimits_DoesNotExist(t *testing.T) {
	resp := run(adapter.Limits, "lim x->0 1/x")
	assert.False(t, resp.OK)
	assert.Equal(t, types.ErrEngine, resp.ErrorKind)
	assert.Contains(t, resp.Solution, "Error: ")
	assert.Equal(t, []string{resp.Solution}, resp.Steps)
	assert.Nil(t, resp.Graph)
}

// ============================================================
// Graph sampling
// ============================================================

func TestSample(t *testing.T) {
	cfg := adapter.Config{GraphMin: -1, GraphMax: 1, GraphIntervals: 4}
	x := symbolic.S("x")

	g := cfg.Sample(x, "x")
	require.NotNil(t, g)
	xs := make([]float64, len(g.Series))
	for i, p := range g.Series {
		xs[i] = p.X
	}
	assert.Equal(t, []float64{-1, -0.5, 0, 0.5, 1}, xs)

	g = cfg.Sample(symbolic.Div(symbolic.N(1), x), "x")
	require.NotNil(t, g)
	assert.Len(t, g.Series, 4)

	assert.Nil(t, cfg.Sample(symbolic.S("y"), "x"))
}
