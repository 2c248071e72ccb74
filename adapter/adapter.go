// Package adapter turns canonical problem text into a SolveResponse, one
// adapter per domain. Adapters never return errors: every failure is a
// response with OK false and an ErrorKind.
package adapter

import (
	"errors"
	"math"
	"regexp"
	"strings"

	"github.com/njchilds90/mathsolver/symbolic"
	"github.com/njchilds90/mathsolver/types"
)

// Func is the shape shared by every adapter. original is echoed back
// verbatim; normalized is the canonical text with cues intact.
type Func func(original, normalized string) types.SolveResponse

// Config holds the options shared by all adapters.
type Config struct {
	GraphMin       float64
	GraphMax       float64
	GraphIntervals int // the graph has GraphIntervals+1 points
	Solve          symbolic.SolveOptions
}

func DefaultConfig() Config {
	return Config{
		GraphMin:       -5,
		GraphMax:       5,
		GraphIntervals: 400,
		Solve:          symbolic.DefaultSolveOptions(),
	}
}

var (
	ErrMissingEquals = errors.New("missing '='")
	ErrMissingArrow  = errors.New("missing limit arrow")
	ErrUnsupported   = errors.New("unsupported expression")
)

// Failure builds the response for a failed solve. Steps default to empty.
func Failure(t types.ProblemType, original string, kind types.ErrorKind, err error, solution string, steps ...string) types.SolveResponse {
	msg := solution
	if err != nil {
		msg = err.Error()
	}
	return types.SolveResponse{
		ProblemType:        t,
		OriginalExpression: original,
		Solution:           solution,
		Steps:              append([]string{}, steps...),
		OK:                 false,
		Error:              msg,
		ErrorKind:          kind,
	}
}

func success(t types.ProblemType, original, solution, latex string, steps ...string) types.SolveResponse {
	return types.SolveResponse{
		ProblemType:        t,
		OriginalExpression: original,
		Solution:           solution,
		Steps:              append([]string{}, steps...),
		LaTeX:              latex,
		OK:                 true,
	}
}

// Sample evaluates e at GraphIntervals+1 evenly spaced values of v across
// the window. Non-finite samples are dropped; nil means nothing survived.
func (c Config) Sample(e symbolic.Expr, v string) *types.Graph {
	n := c.GraphIntervals
	if n <= 0 || !(c.GraphMax > c.GraphMin) {
		return nil
	}
	series := make([]types.Point, 0, n+1)
	env := map[string]float64{}
	for i := 0; i <= n; i++ {
		x := c.GraphMin + float64(i)*(c.GraphMax-c.GraphMin)/float64(n)
		env[v] = x
		y := e.Approx(env)
		if math.IsNaN(y) || math.IsInf(y, 0) {
			continue
		}
		series = append(series, types.Point{X: x, Y: y})
	}
	if len(series) == 0 {
		return nil
	}
	return &types.Graph{Series: series}
}

// ============================================================
// Text fix-ups
// ============================================================

var (
	// sin**2*x, produced by implicit multiplication from sin^2x
	trigPower = regexp.MustCompile(`\b(sin|cos|tan|sec|csc|cot)\*\*(\d+)\*([a-z(])`)
	// sin3*x or sin3x
	trigCoeff = regexp.MustCompile(`\b(sin|cos|tan|sec|csc|cot)(\d+)\*?([a-z])`)
	filler    = regexp.MustCompile(`^(?:simplify|evaluate|compute|find|solve|what is|the|value of)\b\s*`)
)

// fixTrig restores function arguments that implicit multiplication split.
func fixTrig(s string) string {
	s = trigPower.ReplaceAllString(s, "$1^$2 $3")
	return trigCoeff.ReplaceAllString(s, "$1($2*$3)")
}

// stripFiller removes leading imperative words such as "solve" or
// "value of" that carry no mathematical content.
func stripFiller(s string) string {
	for {
		next := strings.TrimSpace(filler.ReplaceAllString(s, ""))
		if next == s {
			return s
		}
		s = next
	}
}

// stripWrapping removes one pair of parentheses enclosing all of s.
func stripWrapping(s string) string {
	if len(s) < 2 || s[0] != '(' || s[len(s)-1] != ')' {
		return s
	}
	depth := 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 && i != len(s)-1 {
				return s
			}
		}
	}
	return strings.TrimSpace(s[1 : len(s)-1])
}

// pickVar chooses the variable to operate on: x when present, otherwise
// the only free symbol, otherwise x.
func pickVar(e symbolic.Expr) string {
	syms := symbolic.Symbols(e)
	for _, s := range syms {
		if s == "x" {
			return s
		}
	}
	if len(syms) == 1 {
		return syms[0]
	}
	return "x"
}

// display prints e exactly, adding a decimal approximation for closed
// forms that are not plain numbers.
func display(e symbolic.Expr) string {
	if len(symbolic.Symbols(e)) > 0 {
		return e.String()
	}
	if _, ok := e.(*symbolic.Num); ok {
		return e.String()
	}
	if _, ok := e.(*symbolic.Inf); ok {
		return e.String()
	}
	f := e.Approx(nil)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return e.String()
	}
	return e.String() + " ≈ " + symbolic.NFloat(f).String()
}
