// Package normalize turns loosely formatted math input into the canonical
// text the detector, the classifier and the symbolic parser expect.
//
// Every function here is pure and total: malformed input passes through for
// the parser to reject.
package normalize

import (
	"regexp"
	"strings"
)

var (
	// spaces touching a binary operator or an arrow
	operatorSpace = regexp.MustCompile(`\s*(->|→|[-+*/^=·×−])\s*`)
	// "x to 0", "x approaches -1"
	wordArrow   = regexp.MustCompile(`\b([a-z])\s+(?:to|approaches)(?:\s+|(-))`)
	// a digit before a letter or "(", unless it is scientific notation
	implicitMul = regexp.MustCompile(`\d*\.?\d+e\d+|\d[a-z(]`)

	cueWords     = regexp.MustCompile(`\b(?:derivative of|derivative|differentiate|integral of|integral|integrate)\b`)
	leadingDiff  = regexp.MustCompile(`\bd/d[a-z]\b`)
	trailingDiff = regexp.MustCompile(`(^|[\s*)\d])d[a-z]$`)
	leadingLimit = regexp.MustCompile(`^(?:lim(?:it)?|as\b)`)
)

var symbolReplacer = strings.NewReplacer(
	"^", "**",
	"·", "*",
	"×", "*",
	"−", "-",
)

// maxPasses bounds fixpoint. Real input settles in two or three passes.
const maxPasses = 16

// Normalize applies the full pipeline, cue stripping included. The result
// is what the symbolic parser consumes.
func Normalize(raw string) string {
	return fixpoint(raw, func(s string) string {
		s = StripCues(notation(s))
		// stripping a cue can leave a space beside an operator
		s = operatorSpace.ReplaceAllString(s, "$1")
		return implicitMultiplication(s)
	})
}

// Canonical applies every step except cue stripping, so that the cue words
// remain available for classification and adapter dispatch.
func Canonical(raw string) string {
	return fixpoint(raw, func(s string) string {
		return implicitMultiplication(notation(s))
	})
}

// fixpoint applies pass until the text stops changing. One step can expose
// work for another ("2derivative" only loses its cue once it reads
// "2*derivative"), and repeating makes both functions idempotent.
func fixpoint(s string, pass func(string) string) string {
	for i := 0; i < maxPasses; i++ {
		next := pass(s)
		if next == s {
			break
		}
		s = next
	}
	return s
}

// notation runs steps 1 to 3: case and whitespace, arrows, operator symbols.
func notation(raw string) string {
	s := collapse(strings.ToLower(raw))
	s = operatorSpace.ReplaceAllString(s, "$1")
	s = wordArrow.ReplaceAllString(s, "$1->$2")
	s = strings.ReplaceAll(s, "→", "->")
	return symbolReplacer.Replace(s)
}

// StripCues removes natural-language filler used only as a classification
// signal: derivative and integral words, d/dx prefixes, trailing dx and
// leading limit markers. It repeats until the text stops changing.
func StripCues(s string) string {
	for {
		next := cueWords.ReplaceAllString(s, " ")
		next = leadingDiff.ReplaceAllString(next, " ")
		next = strings.ReplaceAll(next, "∫", " ")
		next = collapse(next)
		next = trailingDiff.ReplaceAllString(next, "$1")
		next = strings.TrimRight(next, " *")
		next = collapse(leadingLimit.ReplaceAllString(next, ""))
		if next == s {
			return next
		}
		s = next
	}
}

func implicitMultiplication(s string) string {
	return implicitMul.ReplaceAllStringFunc(s, func(m string) string {
		if len(m) > 2 {
			return m // 1e22
		}
		return m[:1] + "*" + m[1:]
	})
}

func collapse(s string) string { return strings.Join(strings.Fields(s), " ") }
