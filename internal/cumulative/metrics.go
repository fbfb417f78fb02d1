package cumulative

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	generationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cumulative_quiz_generations_total",
		Help: "Cumulative quiz generation attempts by outcome.",
	}, []string{"outcome"})

	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cumulative_quiz_cache_lookups_total",
		Help: "Fast-cache lookups by result (hit, miss, stale).",
	}, []string{"result"})

	droppedQuestions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cumulative_quiz_dropped_questions_total",
		Help: "Source questions dropped during combination for missing answers.",
	})

	generationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cumulative_quiz_generation_seconds",
		Help:    "Wall time of full cumulative quiz generation.",
		Buckets: prometheus.DefBuckets,
	})
)
