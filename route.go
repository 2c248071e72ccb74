package mathsolver

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/njchilds90/mathsolver/adapter"
	"github.com/njchilds90/mathsolver/normalize"
	"github.com/njchilds90/mathsolver/types"
)

// ErrNotImplemented is reported for problem types with no adapter.
var ErrNotImplemented = errors.New("solver not implemented")

const notImplemented = "Solver not implemented yet"

// routes maps each problem type to its adapter. Trigonometry shares the
// calculus adapter.
var routes = map[types.ProblemType]func(adapter.Config) adapter.Func{
	types.Algebra:      func(c adapter.Config) adapter.Func { return c.Algebra },
	types.Calculus:     func(c adapter.Config) adapter.Func { return c.Calculus },
	types.Trigonometry: func(c adapter.Config) adapter.Func { return c.Calculus },
	types.Limits:       func(c adapter.Config) adapter.Func { return c.Limits },
}

// Route dispatches expression to the adapter for t with the default
// adapter options.
func Route(t types.ProblemType, expression string) types.SolveResponse {
	return route(adapter.DefaultConfig(), zap.NewNop(), t, expression)
}

// Route dispatches expression to the adapter for t.
func (s *Solver) Route(t types.ProblemType, expression string) types.SolveResponse {
	return route(s.adapters, s.logger, t, expression)
}

// route always returns a response stamped with t. Adapter panics become
// engine failures.
func route(cfg adapter.Config, log *zap.Logger, t types.ProblemType, expression string) (resp types.SolveResponse) {
	pick, ok := routes[t]
	if !ok {
		return adapter.Failure(t, expression, types.ErrUnclassified, ErrNotImplemented, notImplemented)
	}
	defer func() {
		if r := recover(); r != nil {
			log.Error("adapter panicked",
				zap.String("problem_type", string(t)),
				zap.String("expression", expression),
				zap.Any("panic", r),
			)
			err := fmt.Errorf("internal error: %v", r)
			resp = adapter.Failure(t, expression, types.ErrEngine, err, "Error: "+err.Error())
		}
	}()
	resp = pick(cfg)(expression, normalize.Canonical(expression))
	resp.ProblemType = t
	return resp
}
