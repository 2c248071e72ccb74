package symbolic

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// ============================================================
// Parser
// ============================================================

// ParseError reports malformed input and the byte offset where parsing
// stopped.
type ParseError struct {
	Pos int
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at position %d: %s", e.Pos, e.Msg)
}

// maxExponent bounds the exponent of a literal such as 1e22.
const maxExponent = 308

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNum
	tokIdent
	tokOp
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

// funcAliases maps accepted spellings to canonical function names.
var funcAliases = map[string]string{
	"sin": "sin", "cos": "cos", "tan": "tan", "sec": "sec", "csc": "csc", "cot": "cot",
	"asin": "asin", "acos": "acos", "atan": "atan",
	"arcsin": "asin", "arccos": "acos", "arctan": "atan",
	"sinh": "sinh", "cosh": "cosh", "tanh": "tanh",
	"exp": "exp", "ln": "ln", "log": "ln", "abs": "abs",
	"sqrt": "sqrt",
}

// knownWords are split out of letter runs before falling back to single
// letter symbols, longest first.
var knownWords = func() []string {
	var ws []string
	for w := range funcAliases {
		ws = append(ws, w)
	}
	for w := range greekNames {
		ws = append(ws, w)
	}
	ws = append(ws, "pi")
	sort.Slice(ws, func(i, j int) bool {
		if len(ws[i]) != len(ws[j]) {
			return len(ws[i]) > len(ws[j])
		}
		return ws[i] < ws[j]
	})
	return ws
}()

func lex(src string) ([]token, error) {
	var toks []token
	rs := []rune(src)
	offsets := make([]int, len(rs)+1)
	off := 0
	for i, r := range rs {
		offsets[i] = off
		off += len(string(r))
	}
	offsets[len(rs)] = off

	for i := 0; i < len(rs); {
		r := rs[i]
		pos := offsets[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case unicode.IsDigit(r) || (r == '.' && i+1 < len(rs) && unicode.IsDigit(rs[i+1])):
			j := i
			dot := false
			for j < len(rs) && (unicode.IsDigit(rs[j]) || (rs[j] == '.' && !dot)) {
				if rs[j] == '.' {
					dot = true
				}
				j++
			}
			// scientific notation needs a digit right after the e; "2e"
			// stays 2 times Euler's number.
			if j+1 < len(rs) && (rs[j] == 'e' || rs[j] == 'E') && unicode.IsDigit(rs[j+1]) {
				k := j + 1
				for k < len(rs) && unicode.IsDigit(rs[k]) {
					k++
				}
				if exp, err := strconv.Atoi(string(rs[j+1 : k])); err != nil || exp > maxExponent {
					return nil, &ParseError{Pos: offsets[j], Msg: fmt.Sprintf("exponent %s is out of range", string(rs[j+1:k]))}
				}
				j = k
			}
			toks = append(toks, token{kind: tokNum, text: string(rs[i:j]), pos: pos})
			i = j
		case r == 'π':
			toks = append(toks, token{kind: tokIdent, text: "pi", pos: pos})
			i++
		case r < unicode.MaxASCII && unicode.IsLetter(r):
			j := i
			for j < len(rs) && rs[j] < unicode.MaxASCII && unicode.IsLetter(rs[j]) {
				j++
			}
			for _, w := range splitWord(strings.ToLower(string(rs[i:j]))) {
				toks = append(toks, token{kind: tokIdent, text: w.text, pos: pos + w.offset})
			}
			i = j
		case r == '*' && i+1 < len(rs) && rs[i+1] == '*':
			toks = append(toks, token{kind: tokOp, text: "^", pos: pos})
			i += 2
		case strings.ContainsRune("+-*/^=,", r):
			toks = append(toks, token{kind: tokOp, text: string(r), pos: pos})
			i++
		case r == '·' || r == '×':
			toks = append(toks, token{kind: tokOp, text: "*", pos: pos})
			i++
		case r == '−':
			toks = append(toks, token{kind: tokOp, text: "-", pos: pos})
			i++
		case r == '(' || r == '[':
			toks = append(toks, token{kind: tokLParen, text: "(", pos: pos})
			i++
		case r == ')' || r == ']':
			toks = append(toks, token{kind: tokRParen, text: ")", pos: pos})
			i++
		default:
			return nil, &ParseError{Pos: pos, Msg: fmt.Sprintf("unexpected character %q", r)}
		}
	}
	toks = append(toks, token{kind: tokEOF, pos: len(src)})
	return toks, nil
}

type word struct {
	text   string
	offset int
}

// splitWord breaks a letter run into known words and single letters:
// "xsinx" becomes x, sin, x and "theta" stays whole.
func splitWord(s string) []word {
	var out []word
	for i := 0; i < len(s); {
		matched := ""
		for _, w := range knownWords {
			if strings.HasPrefix(s[i:], w) {
				matched = w
				break
			}
		}
		if matched == "" {
			matched = s[i : i+1]
		}
		out = append(out, word{text: matched, offset: i})
		i += len(matched)
	}
	return out
}

type parser struct {
	toks []token
	pos  int
}

// Parse reads an expression. Supported syntax: + - * / ^ ** and
// parentheses, unary signs, implicit multiplication (2x, 3(x+1), xy),
// function calls with or without parentheses (sin(x), sin x), function
// powers (sin^2 x), and the constants pi and e.
func Parse(src string) (Expr, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	if p.peek().kind == tokEOF {
		return nil, &ParseError{Pos: 0, Msg: "empty expression"}
	}
	e, err := p.expr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, &ParseError{Pos: t.pos, Msg: fmt.Sprintf("unexpected %q", t.text)}
	}
	return e.Simplify(), nil
}

// ParseEquation reads "lhs = rhs". Exactly one '=' is required.
func ParseEquation(src string) (*Equation, error) {
	idx := strings.Index(src, "=")
	if idx < 0 {
		return nil, &ParseError{Pos: len(src), Msg: "expected '='"}
	}
	if j := strings.Index(src[idx+1:], "="); j >= 0 {
		return nil, &ParseError{Pos: idx + 1 + j, Msg: "more than one '='"}
	}
	lhs, err := Parse(src[:idx])
	if err != nil {
		return nil, fmt.Errorf("left side: %w", err)
	}
	rhs, err := Parse(src[idx+1:])
	if err != nil {
		return nil, fmt.Errorf("right side: %w", err)
	}
	return Eq(lhs, rhs), nil
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) isOp(text string) bool {
	t := p.peek()
	return t.kind == tokOp && t.text == text
}

func (p *parser) expr() (Expr, error) {
	first, err := p.term()
	if err != nil {
		return nil, err
	}
	terms := []Expr{first}
	for p.isOp("+") || p.isOp("-") {
		op := p.next().text
		t, err := p.term()
		if err != nil {
			return nil, err
		}
		if op == "-" {
			t = Neg(t)
		}
		terms = append(terms, t)
	}
	if len(terms) == 1 {
		return first, nil
	}
	return AddOf(terms...), nil
}

func (p *parser) term() (Expr, error) {
	first, err := p.unary()
	if err != nil {
		return nil, err
	}
	factors := []Expr{first}
	for {
		switch {
		case p.isOp("*"):
			p.next()
			f, err := p.unary()
			if err != nil {
				return nil, err
			}
			factors = append(factors, f)
		case p.isOp("/"):
			p.next()
			f, err := p.unary()
			if err != nil {
				return nil, err
			}
			factors = append(factors, PowOf(f, N(-1)))
		case startsPrimary(p.peek()):
			f, err := p.power()
			if err != nil {
				return nil, err
			}
			factors = append(factors, f)
		default:
			if len(factors) == 1 {
				return first, nil
			}
			return MulOf(factors...), nil
		}
	}
}

func startsPrimary(t token) bool {
	return t.kind == tokNum || t.kind == tokIdent || t.kind == tokLParen
}

func (p *parser) unary() (Expr, error) {
	switch {
	case p.isOp("-"):
		p.next()
		e, err := p.unary()
		if err != nil {
			return nil, err
		}
		return Neg(e), nil
	case p.isOp("+"):
		p.next()
		return p.unary()
	}
	return p.power()
}

func (p *parser) power() (Expr, error) {
	base, err := p.primary()
	if err != nil {
		return nil, err
	}
	if !p.isOp("^") {
		return base, nil
	}
	p.next()
	exp, err := p.unary()
	if err != nil {
		return nil, err
	}
	return PowOf(base, exp), nil
}

func (p *parser) primary() (Expr, error) {
	t := p.next()
	switch t.kind {
	case tokNum:
		n, ok := ParseNum(t.text)
		if !ok {
			return nil, &ParseError{Pos: t.pos, Msg: fmt.Sprintf("bad number %q", t.text)}
		}
		return n, nil
	case tokIdent:
		if name, ok := funcAliases[t.text]; ok {
			return p.application(name, t)
		}
		switch t.text {
		case "pi":
			return Pi, nil
		case "e":
			return E, nil
		}
		return S(t.text), nil
	case tokLParen:
		e, err := p.expr()
		if err != nil {
			return nil, err
		}
		if c := p.next(); c.kind != tokRParen {
			return nil, &ParseError{Pos: c.pos, Msg: "expected ')'"}
		}
		return e, nil
	case tokEOF:
		return nil, &ParseError{Pos: t.pos, Msg: "unexpected end of input"}
	}
	return nil, &ParseError{Pos: t.pos, Msg: fmt.Sprintf("unexpected %q", t.text)}
}

// application parses the argument of a function name: sin(x), sin x,
// sin^2(x) and sin^2 x.
func (p *parser) application(name string, at token) (Expr, error) {
	var fpow Expr
	if p.isOp("^") {
		p.next()
		e, err := p.unary()
		if err != nil {
			return nil, err
		}
		fpow = e
	}
	var arg Expr
	var err error
	switch {
	case p.peek().kind == tokLParen:
		p.next()
		arg, err = p.expr()
		if err != nil {
			return nil, err
		}
		if c := p.next(); c.kind != tokRParen {
			return nil, &ParseError{Pos: c.pos, Msg: "expected ')'"}
		}
	case startsPrimary(p.peek()):
		arg, err = p.power()
		if err != nil {
			return nil, err
		}
	default:
		return nil, &ParseError{Pos: at.pos, Msg: fmt.Sprintf("missing argument for %s", at.text)}
	}

	var out Expr
	if name == "sqrt" {
		out = Sqrt(arg)
	} else {
		out = FuncOf(name, arg)
	}
	if fpow != nil {
		out = PowOf(out, fpow)
	}
	return out, nil
}
