package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	evaluationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "strategist_evaluations_total",
		Help: "Evaluations handled by the API, by outcome.",
	}, []string{"outcome"})

	evaluationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "strategist_evaluation_duration_seconds",
		Help:    "Time spent scoring and persisting one evaluation.",
		Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
	})

	weightsRescaledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "strategist_weights_rescaled_total",
		Help: "Evaluations whose weights had to be rescaled to sum to 1.",
	})

	sinkWarningsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "strategist_sink_warnings_total",
		Help: "Evaluations that succeeded but failed to reach at least one sink.",
	})
)
