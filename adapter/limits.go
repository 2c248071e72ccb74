package adapter

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/njchilds90/mathsolver/symbolic"
	"github.com/njchilds90/mathsolver/types"
)

var (
	limitCue   = regexp.MustCompile(`^lim(?:it)?\s*(?:as\b\s*)?`)
	limitArrow = regexp.MustCompile(`^([a-z])->([-+]?(?:\d+\.?\d*|\.\d+|oo|infinity|inf|pi))\s*(?:of\b)?\s*(.+)$`)
)

const limitUsage = "Invalid limit. Use the form: lim x->0 sin(x)/x"

type limitProblem struct {
	v         string
	pointText string
	point     symbolic.Expr
	body      symbolic.Expr
}

// parseLimit reads "lim <v>-><point> <body>". ok is false when text does
// not have that shape or the body does not parse.
func parseLimit(text string) (limitProblem, bool) {
	p, err := readLimit(text)
	return p, err == nil
}

func readLimit(text string) (limitProblem, error) {
	loc := limitCue.FindStringIndex(text)
	if loc == nil {
		return limitProblem{}, ErrMissingArrow
	}
	m := limitArrow.FindStringSubmatch(strings.TrimSpace(text[loc[1]:]))
	if m == nil {
		return limitProblem{}, ErrMissingArrow
	}
	point, err := limitPoint(m[2])
	if err != nil {
		return limitProblem{}, err
	}
	body, err := symbolic.Parse(m[3])
	if err != nil {
		return limitProblem{}, fmt.Errorf("limit body: %w", err)
	}
	return limitProblem{v: m[1], pointText: m[2], point: point, body: body}, nil
}

// limitPoint reads a point such as -1, 0.25, pi, oo or -infinity. Decimals
// are kept exact.
func limitPoint(s string) (symbolic.Expr, error) {
	neg := strings.HasPrefix(s, "-")
	mag := strings.TrimLeft(s, "+-")
	switch mag {
	case "oo", "inf", "infinity":
		if neg {
			return symbolic.NegInfinity(), nil
		}
		return symbolic.Infinity(), nil
	case "pi":
		if neg {
			return symbolic.Neg(symbolic.Pi), nil
		}
		return symbolic.Pi, nil
	}
	n, ok := symbolic.ParseNum(s)
	if !ok {
		return nil, fmt.Errorf("invalid limit point %q", s)
	}
	return n, nil
}

// Limits evaluates a limit with DefaultConfig.
func Limits(original, normalized string) types.SolveResponse {
	return DefaultConfig().Limits(original, normalized)
}

// Limits evaluates "lim <v>-><point> <body>" and graphs the body.
func (c Config) Limits(original, normalized string) types.SolveResponse {
	text := fixTrig(strings.TrimSpace(normalized))
	if !limitCue.MatchString(text) {
		text = "lim " + text
	}
	p, err := readLimit(text)
	switch {
	case errors.Is(err, ErrMissingArrow):
		return Failure(types.Limits, original, types.ErrInput, err, limitUsage, limitUsage)
	case err != nil:
		msg := "Error: " + err.Error()
		return Failure(types.Limits, original, types.ErrEngine, err, msg, msg)
	}

	steps := []string{"Identify the limit expression"}
	steps = append(steps, recognize(p)...)

	result, err := symbolic.Limit(p.body, p.v, p.point)
	if err != nil {
		msg := "Error: " + err.Error()
		return Failure(types.Limits, original, types.ErrEngine, err, msg, msg)
	}
	steps = append(steps, "Conclude the limit value")

	resp := success(types.Limits, original, result.String(), result.LaTeX(), steps...)
	resp.Graph = c.Sample(p.body, p.v)
	return resp
}

type standardLimit struct {
	form   func(v symbolic.Expr) symbolic.Expr
	name   string
	result string
}

var standardLimits = []standardLimit{
	{
		form:   func(v symbolic.Expr) symbolic.Expr { return symbolic.Div(symbolic.SinOf(v), v) },
		name:   "sin(%[1]s)/%[1]s",
		result: "1",
	},
	{
		form: func(v symbolic.Expr) symbolic.Expr {
			return symbolic.Div(symbolic.Minus(symbolic.N(1), symbolic.CosOf(v)), symbolic.PowOf(v, symbolic.N(2)))
		},
		name:   "(1 − cos(%[1]s))/%[1]s²",
		result: "1/2",
	},
	{
		form:   func(v symbolic.Expr) symbolic.Expr { return symbolic.Div(symbolic.TanOf(v), v) },
		name:   "tan(%[1]s)/%[1]s",
		result: "1",
	},
}

// recognize returns the narrative for a standard limit at zero, or the
// generic substitution step.
func recognize(p limitProblem) []string {
	if n, ok := p.point.(*symbolic.Num); ok && n.IsZero() {
		v := symbolic.S(p.v)
		for _, sl := range standardLimits {
			if !symbolic.Equal(p.body, sl.form(v)) {
				continue
			}
			name := fmt.Sprintf(sl.name, p.v)
			return []string{
				fmt.Sprintf("Recognize the standard limit %s as %s → 0", name, p.v),
				fmt.Sprintf("Apply the known result: lim %s→0 %s = %s", p.v, name, sl.result),
			}
		}
	}
	return []string{"Substitute the approaching value and simplify"}
}
