// Package mathsolver classifies free-text math problems and solves them
// step by step.
//
// Pipeline:
//   - normalize: canonical text (2x → 2*x, ^ → **, arrows, cue words)
//   - detect: ordered rules, first match wins
//   - classifier: optional TF-IDF fallback when no rule fires
//   - adapter: algebra, calculus and limits solvers on the symbolic engine
//   - Route: one table from problem type to adapter
//
// Every call is independent. Solve never returns an error and never
// panics; failures are reported in the response through OK, Error and
// ErrorKind.
//
//	resp := mathsolver.Solve(mathsolver.SolveRequest{Expression: "x + 10 = 0"})
//	fmt.Println(resp.Solution) // x = -10
package mathsolver
