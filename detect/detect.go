// Package detect classifies an expression with an ordered rule cascade.
// The first matching rule wins, so a limit that mentions sin is a limit
// and an equation with a derivative marker is calculus.
package detect

import (
	"regexp"
	"strings"

	"github.com/njchilds90/mathsolver/types"
)

type rule struct {
	name  string
	match func(compact string) bool
	typ   types.ProblemType
}

var (
	derivativeMarker = regexp.MustCompile(`d/d[a-z]`)
	trigName         = regexp.MustCompile(`sin|cos|tan|sec|csc|cot`)
	coefficient      = regexp.MustCompile(`[a-z]\d|\d[a-z]`)
)

func containsAny(subs ...string) func(string) bool {
	return func(s string) bool {
		for _, sub := range subs {
			if strings.Contains(s, sub) {
				return true
			}
		}
		return false
	}
}

var rules = []rule{
	{name: "limit", match: containsAny("lim"), typ: types.Limits},
	{name: "derivative", match: func(s string) bool {
		return derivativeMarker.MatchString(s) || containsAny("derivative", "differentiat")(s)
	}, typ: types.Calculus},
	{name: "integral", match: containsAny("integral", "integrat", "∫"), typ: types.Calculus},
	{name: "trig", match: trigName.MatchString, typ: types.Trigonometry},
	{name: "equation", match: func(s string) bool {
		return strings.Contains(s, "=") || coefficient.MatchString(s)
	}, typ: types.Algebra},
	{name: "operator", match: containsAny("+", "-", "*", "/", "^"), typ: types.Algebra},
}

// Detect returns the problem type of expression. It is pure and
// deterministic.
func Detect(expression string) types.ProblemType {
	t, _ := Explain(expression)
	return t
}

// Explain is Detect plus the name of the rule that fired, or "none".
func Explain(expression string) (types.ProblemType, string) {
	s := compact(expression)
	for _, r := range rules {
		if r.match(s) {
			return r.typ, r.name
		}
	}
	return types.Unknown, "none"
}

// compact lower-cases s and removes all whitespace.
func compact(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), "")
}
