// Package types holds the request and response values shared by the
// detector, the adapters, the dispatcher and the transport.
package types

import "strings"

// ProblemType is the mathematical domain an expression belongs to.
type ProblemType string

const (
	Algebra      ProblemType = "algebra"
	Calculus     ProblemType = "calculus"
	Trigonometry ProblemType = "trigonometry"
	Limits       ProblemType = "limits"
	Unknown      ProblemType = "unknown"
)

// ProblemTypes lists every classifiable type, excluding Unknown.
var ProblemTypes = []ProblemType{Algebra, Calculus, Trigonometry, Limits}

// ParseProblemType maps a label back to a ProblemType. Unrecognized labels
// map to Unknown.
func ParseProblemType(s string) ProblemType {
	switch t := ProblemType(strings.ToLower(strings.TrimSpace(s))); t {
	case Algebra, Calculus, Trigonometry, Limits:
		return t
	}
	return Unknown
}

// ErrorKind classifies a failed response.
type ErrorKind string

const (
	ErrInput        ErrorKind = "input"
	ErrEngine       ErrorKind = "engine"
	ErrUnsupported  ErrorKind = "unsupported"
	ErrUnclassified ErrorKind = "unclassified"
)

type SolveRequest struct {
	Expression string `json:"expression"`
}

// Point is one sample of a graphed function.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Graph struct {
	Series []Point `json:"series"`
}

// SolveResponse is the uniform result of every solve. Steps is never nil.
// On failure OK is false, Error carries the reason and Solution keeps the
// human-readable message.
type SolveResponse struct {
	ProblemType        ProblemType `json:"problem_type"`
	OriginalExpression string      `json:"original_expression"`
	Solution           string      `json:"solution"`
	Steps              []string    `json:"steps"`
	LaTeX              string      `json:"latex"`
	Graph              *Graph      `json:"graph,omitempty"`
	OK                 bool        `json:"ok"`
	Error              string      `json:"error,omitempty"`
	ErrorKind          ErrorKind   `json:"error_kind,omitempty"`
}
