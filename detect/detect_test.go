package detect_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/njchilds90/mathsolver/detect"
	"github.com/njchilds90/mathsolver/normalize"
	"github.com/njchilds90/mathsolver/types"
)

func TestDetect_Coverage(t *testing.T) {
	cases := []struct {
		in   string
		want types.ProblemType
	}{
		{"2*x + 3 = 7", types.Algebra},
		{"d/dx sin(x)", types.Calculus},
		{"lim x->0 sin(x)/x", types.Limits},
		{"sin(x) + cos(x)", types.Trigonometry},
		{"hello world", types.Unknown},
		{"3x", types.Algebra},
		{"x2", types.Algebra},
		{"1 + 1", types.Algebra},
		{"derivative of cos(x)", types.Calculus},
		{"differentiate x^3", types.Calculus},
		{"d/dt t^2", types.Calculus},
		{"integrate x^2 dx", types.Calculus},
		{"∫ x^2 dx", types.Calculus},
		{"find integral of x^3", types.Calculus},
		{"tan(theta) = 1", types.Trigonometry},
		{"limit as x approaches 0 of x^2", types.Limits},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			assert.Equal(t, c.want, detect.Detect(c.in))
		})
	}
}

func TestDetect_LimitBeatsTrig(t *testing.T) {
	for _, in := range []string{"lim x->0 sin(x)/x", "lim x->0 tan(x) = 1", "LIM x->0 cos(x)"} {
		assert.Equal(t, types.Limits, detect.Detect(in), in)
	}
}

func TestDetect_Deterministic(t *testing.T) {
	for i := 0; i < 100; i++ {
		assert.Equal(t, types.Trigonometry, detect.Detect("sin(x) + cos(x)"))
	}
}

func TestDetect_CanonicalText(t *testing.T) {
	// the solver classifies canonical text; cues must survive it
	for _, in := range []string{"d/dx sin(3x)", "integrate x^2 dx", "lim x→0 sin(x)/x"} {
		assert.Equal(t, detect.Detect(in), detect.Detect(normalize.Canonical(in)), in)
	}
}

func TestExplain(t *testing.T) {
	typ, rule := detect.Explain("x + y = 5")
	assert.Equal(t, types.Algebra, typ)
	assert.Equal(t, "equation", rule)

	typ, rule = detect.Explain("what is this")
	assert.Equal(t, types.Unknown, typ)
	assert.Equal(t, "none", rule)
}
