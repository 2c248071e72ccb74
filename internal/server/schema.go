package server

import "github.com/njchilds90/mathsolver/types"

// ToolSpec describes the solve endpoint as a tool for agent registration.
func ToolSpec() map[string]any {
	labels := make([]string, 0, len(types.ProblemTypes)+1)
	for _, t := range types.ProblemTypes {
		labels = append(labels, string(t))
	}
	labels = append(labels, string(types.Unknown))

	tools := []map[string]any{
		tool("solve",
			"Classify a free-text math problem (algebra, calculus, trigonometry, limits) and solve it step by step",
			"POST", "/solve",
			map[string]any{
				"expression": map[string]any{
					"type":        "string",
					"description": "Problem text, e.g. \"2x + 3 = 7\", \"d/dx sin(3x)\" or \"lim x->0 sin(x)/x\"",
				},
			},
			[]string{"expression"},
			map[string]any{
				"type": "object",
				"properties": map[string]any{
					"problem_type":        map[string]any{"type": "string", "enum": labels},
					"original_expression": map[string]any{"type": "string"},
					"solution":            map[string]any{"type": "string"},
					"steps":               map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					"latex":               map[string]any{"type": "string"},
					"graph":               map[string]any{"type": "object"},
					"ok":                  map[string]any{"type": "boolean"},
					"error":               map[string]any{"type": "string"},
					"error_kind": map[string]any{"type": "string", "enum": []string{
						string(types.ErrInput), string(types.ErrEngine),
						string(types.ErrUnsupported), string(types.ErrUnclassified),
					}},
				},
			},
		),
	}
	return map[string]any{"tools": tools}
}

func tool(name, description, method, path string, props map[string]any, required []string, output map[string]any) map[string]any {
	return map[string]any{
		"name":        name,
		"description": description,
		"method":      method,
		"path":        path,
		"inputSchema": map[string]any{
			"type":       "object",
			"properties": props,
			"required":   required,
		},
		"outputSchema": output,
	}
}
