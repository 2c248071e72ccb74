package mathsolver_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/njchilds90/mathsolver"
	"github.com/njchilds90/mathsolver/types"
)

type fakeClassifier struct {
	mu    sync.Mutex
	label types.ProblemType
	calls []string
}

func (f *fakeClassifier) Classify(expression string) types.ProblemType {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, expression)
	return f.label
}

func solve(expr string) types.SolveResponse {
	return mathsolver.Solve(mathsolver.SolveRequest{Expression: expr})
}

// ============================================================
// End to end
// ============================================================

func TestSolve_Algebra(t *testing.T) {
	resp := solve("x + 10 = 0")
	assert.Equal(t, types.Algebra, resp.ProblemType)
	assert.Equal(t, "x = -10", resp.Solution)
	assert.True(t, resp.OK)
}

func TestSolve_Limit(t *testing.T) {
	resp := solve("lim x->0 sin(x)/x")
	assert.Equal(t, types.Limits, resp.ProblemType)
	assert.Equal(t, "1", resp.Solution)
	require.NotNil(t, resp.Graph)
}

func TestSolve_Calculus(t *testing.T) {
	cases := []struct{ in, want string }{
		{"d/dx sin(3x)", "3*cos(3*x)"},
		{"integrate x^2 dx", "x^3/3 + C"},
		{"lim x→0 (1 - cos(x))/x^2", "1/2"},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			resp := solve(c.in)
			assert.True(t, resp.OK, resp.Error)
			assert.Equal(t, c.want, resp.Solution)
		})
	}
}

func TestSolve_TrigKeepsDetectedType(t *testing.T) {
	resp := solve("sin(x) + cos(x)")
	assert.Equal(t, types.Trigonometry, resp.ProblemType)
	assert.Equal(t, "cos(x) + sin(x)", resp.Solution)
}

func TestSolve_Unknown(t *testing.T) {
	want := types.SolveResponse{
		ProblemType:        types.Unknown,
		OriginalExpression: "hello world",
		Solution:           "Solver not implemented yet",
		Steps:              []string{},
		OK:                 false,
		Error:              "solver not implemented",
		ErrorKind:          types.ErrUnclassified,
	}
	assert.Empty(t, cmp.Diff(want, solve("hello world")))
}

func TestSolve_ErrorContainment(t *testing.T) {
	inputs := []string{
		"", "   ", "(((", "=", "x^^2", "d/dx", "integrate", "lim x->",
		"lim x->0", "x = = 1", "1/0 = x", "sin(", "∫∫∫", "x**", "lim x->oo sin(x)",
		"integrate 1/x from -1 to 1", "d/dx abs(x)", "x^2 + y^2 + z^2 = 1",
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			var resp types.SolveResponse
			require.NotPanics(t, func() { resp = solve(in) })
			assert.Equal(t, in, resp.OriginalExpression)
			assert.NotNil(t, resp.Steps)
			if !resp.OK {
				assert.NotEmpty(t, resp.Error)
				assert.NotEmpty(t, resp.ErrorKind)
				assert.Nil(t, resp.Graph)
			}
		})
	}
}

func TestSolve_Deterministic(t *testing.T) {
	first := solve("x^2 + 5x + 6 = 0")
	for i := 0; i < 20; i++ {
		assert.Empty(t, cmp.Diff(first, solve("x^2 + 5x + 6 = 0")))
	}
}

// ============================================================
// Classifier fallback
// ============================================================

func TestSolver_ClassifierOnlyForUnknown(t *testing.T) {
	fake := &fakeClassifier{label: types.Limits}
	s := mathsolver.New(mathsolver.WithClassifier(fake))

	resp := s.Solve(context.Background(), mathsolver.SolveRequest{Expression: "x + 10 = 0"})
	assert.Equal(t, types.Algebra, resp.ProblemType)
	assert.Empty(t, fake.calls)

	d := s.Detect("what is this")
	assert.Equal(t, types.Limits, d.Type)
	assert.Equal(t, "classifier", d.Source)
	assert.Equal(t, []string{"what is this"}, fake.calls)

	fake.calls = nil
	s.Detect("  What   IS this ")
	assert.Equal(t, []string{"what is this"}, fake.calls, "classifier sees canonical text")

	resp = s.Solve(context.Background(), mathsolver.SolveRequest{Expression: "what is this"})
	assert.Equal(t, types.Limits, resp.ProblemType)
	assert.Equal(t, types.ErrInput, resp.ErrorKind)
}

func TestSolver_ClassifierUnknownStaysUnclassified(t *testing.T) {
	s := mathsolver.New(mathsolver.WithClassifier(&fakeClassifier{label: types.Unknown}))
	resp := s.Solve(context.Background(), mathsolver.SolveRequest{Expression: "hello"})
	assert.Equal(t, types.ErrUnclassified, resp.ErrorKind)
}

func TestSolver_Detect(t *testing.T) {
	d := mathsolver.New().Detect("lim x->0 sin(x)/x")
	assert.Equal(t, mathsolver.Detection{Type: types.Limits, Source: "rules", Rule: "limit"}, d)
}

// ============================================================
// Options
// ============================================================

func TestSolver_LogsDetection(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	s := mathsolver.New(
		mathsolver.WithLogger(zap.New(core)),
		mathsolver.WithTracer(noop.NewTracerProvider().Tracer("test")),
	)
	s.Solve(context.Background(), mathsolver.SolveRequest{Expression: "2x + 3 = 7"})

	entries := logs.FilterMessage("detected problem type").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "algebra", fields["problem_type"])
	assert.Equal(t, "rules", fields["detector"])
	assert.Equal(t, "equation", fields["rule"])
}

func TestSolver_WithNilLoggerKeepsDefault(t *testing.T) {
	s := mathsolver.New(mathsolver.WithLogger(nil))
	assert.NotPanics(t, func() { s.Solve(context.Background(), mathsolver.SolveRequest{Expression: "x = 1"}) })
}

// ============================================================
// Route
// ============================================================

func TestRoute(t *testing.T) {
	assert.Equal(t, types.Trigonometry, mathsolver.Route(types.Trigonometry, "sin x").ProblemType)
	assert.Equal(t, types.Calculus, mathsolver.Route(types.Calculus, "lim x->0 sin(x)/x").ProblemType)

	resp := mathsolver.Route(types.ProblemType("geometry"), "area")
	assert.Equal(t, types.ErrUnclassified, resp.ErrorKind)
	assert.Equal(t, "Solver not implemented yet", resp.Solution)
	assert.Equal(t, types.ProblemType("geometry"), resp.ProblemType)
}

func TestSolve_Concurrent(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, "x = 2", solve("2x + 3 = 7").Solution)
		}()
	}
	wg.Wait()
}
