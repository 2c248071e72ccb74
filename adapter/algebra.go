package adapter

import (
	"fmt"
	"strings"

	"github.com/njchilds90/mathsolver/symbolic"
	"github.com/njchilds90/mathsolver/types"
)

// Algebra solves an equation with DefaultConfig.
func Algebra(original, normalized string) types.SolveResponse {
	return DefaultConfig().Algebra(original, normalized)
}

// Algebra solves "lhs = rhs" for its free variables. The first variable in
// sorted order that has solutions is expressed in terms of the others.
func (c Config) Algebra(original, normalized string) types.SolveResponse {
	text := stripFiller(fixTrig(normalized))
	i := strings.Index(text, "=")
	if i < 0 {
		return Failure(types.Algebra, original, types.ErrInput, ErrMissingEquals,
			"Invalid equation. Please include '='.")
	}

	lhs, err := symbolic.Parse(text[:i])
	if err != nil {
		return c.unsolvable(original, fmt.Errorf("left side: %w", err))
	}
	rhs, err := symbolic.Parse(text[i+1:])
	if err != nil {
		return c.unsolvable(original, fmt.Errorf("right side: %w", err))
	}
	eq := symbolic.Eq(lhs, rhs)
	vars := eq.Symbols()

	steps := []string{
		"Given equation: " + original,
		"Apply implicit multiplication (e.g., 2x → 2·x)",
		"Rearrange terms to isolate the variable(s)",
	}

	if len(vars) == 0 {
		r := eq.Residual()
		if n, ok := r.(*symbolic.Num); ok && n.IsZero() {
			return success(types.Algebra, original, "Identity: true for all values", eq.LaTeX(),
				append(steps, "Both sides are equal for every value")...)
		}
		return success(types.Algebra, original, "No solution: the equation is inconsistent", eq.LaTeX(),
			append(steps, "The sides differ by "+r.String())...)
	}

	sols, err := symbolic.Solve(eq, c.Solve)
	if err != nil {
		return c.unsolvable(original, err)
	}
	solution := "No solution found"
	if len(sols) > 0 {
		parts := make([]string, len(sols))
		for i, s := range sols {
			parts[i] = s.String()
		}
		solution = strings.Join(parts, "; ")
	}
	steps = append(steps, "Solve the equation for "+strings.Join(vars, ", "))
	return success(types.Algebra, original, solution, eq.LaTeX(), steps...)
}

func (c Config) unsolvable(original string, err error) types.SolveResponse {
	return Failure(types.Algebra, original, types.ErrEngine, err, "Could not solve the equation: "+err.Error())
}
