// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	UtterancesClassified = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_utterances_classified_total",
			Help: "Total number of utterances classified, by resulting intent type",
		},
		[]string{"intent_type"},
	)

	ClassifyDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "assistant_classify_duration_seconds",
			Help: "Duration of intent classification in seconds",
		},
	)

	ActionsStaged = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_actions_staged_total",
			Help: "Total number of action intents staged for confirmation",
		},
		[]string{"action_type"},
	)

	ActionsResolved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_actions_resolved_total",
			Help: "Total number of action intents reaching a terminal state",
		},
		[]string{"action_type", "status"},
	)

	ExecutorDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "assistant_executor_duration_seconds",
			Help: "Duration of executor dispatch in seconds",
		},
		[]string{"action_type"},
	)

	ConfirmRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_confirm_rejected_total",
			Help: "Confirm/cancel calls rejected before dispatch",
		},
		[]string{"reason"},
	)
)
