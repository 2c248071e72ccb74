package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "mathsolver"

var (
	solveRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "solve",
			Name:      "requests_total",
			Help:      "Solve requests by detected problem type and outcome",
		},
		[]string{"problem_type", "ok"},
	)

	solveDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "solve",
			Name:      "duration_seconds",
			Help:      "Time spent in the solver pipeline",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"problem_type"},
	)
)
