package mathsolver

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/njchilds90/mathsolver/adapter"
	"github.com/njchilds90/mathsolver/detect"
	"github.com/njchilds90/mathsolver/normalize"
	"github.com/njchilds90/mathsolver/types"
)

type (
	SolveRequest  = types.SolveRequest
	SolveResponse = types.SolveResponse
	ProblemType   = types.ProblemType
)

const tracerName = "github.com/njchilds90/mathsolver"

// Classifier is the statistical fallback consulted when no detection rule
// fires. *classifier.Classifier implements it.
type Classifier interface {
	Classify(expression string) types.ProblemType
}

// Solver runs the detect-and-dispatch pipeline. It holds no per-request
// state and is safe for concurrent use.
type Solver struct {
	classifier Classifier
	logger     *zap.Logger
	adapters   adapter.Config
	tracer     trace.Tracer
}

type Option func(*Solver)

func WithClassifier(c Classifier) Option { return func(s *Solver) { s.classifier = c } }

func WithLogger(l *zap.Logger) Option {
	return func(s *Solver) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithAdapterConfig(cfg adapter.Config) Option { return func(s *Solver) { s.adapters = cfg } }

// WithTracer overrides the tracer taken from the global provider.
func WithTracer(t trace.Tracer) Option { return func(s *Solver) { s.tracer = t } }

func New(opts ...Option) *Solver {
	s := &Solver{
		logger:   zap.NewNop(),
		adapters: adapter.DefaultConfig(),
	}
	for _, o := range opts {
		o(s)
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer(tracerName)
	}
	return s
}

var rulesOnly = New()

// Solve runs a rules-only solver with the default adapter options.
func Solve(req SolveRequest) SolveResponse {
	return rulesOnly.Solve(context.Background(), req)
}

// Detection reports how a problem type was chosen.
type Detection struct {
	Type   types.ProblemType
	Source string // "rules" or "classifier"
	Rule   string
}

// Detect classifies expression. The rules and the classifier both see the
// canonical text. The classifier is consulted only when the rules return
// Unknown, so a rule decision is never overridden.
func (s *Solver) Detect(expression string) Detection {
	canonical := normalize.Canonical(expression)
	t, rule := detect.Explain(canonical)
	d := Detection{Type: t, Source: "rules", Rule: rule}
	if t == types.Unknown && s.classifier != nil {
		d.Type = s.classifier.Classify(canonical)
		d.Source = "classifier"
	}
	return d
}

// Solve detects the problem type of req and dispatches it. ctx carries the
// trace span only.
func (s *Solver) Solve(ctx context.Context, req SolveRequest) SolveResponse {
	_, span := s.tracer.Start(ctx, "mathsolver.Solve")
	defer span.End()

	d := s.Detect(req.Expression)
	s.logger.Debug("detected problem type",
		zap.String("problem_type", string(d.Type)),
		zap.String("detector", d.Source),
		zap.String("rule", d.Rule),
	)

	resp := s.Route(d.Type, req.Expression)

	span.SetAttributes(
		attribute.String("problem_type", string(d.Type)),
		attribute.String("detector", d.Source),
		attribute.Bool("ok", resp.OK),
	)
	if !resp.OK {
		span.SetStatus(codes.Error, resp.Error)
	}
	return resp
}
