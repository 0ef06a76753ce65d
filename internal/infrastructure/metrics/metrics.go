package metrics

import (
	"github.com/halalcheck/client/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkflowSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workflow_submissions_total",
			Help: "Total number of submissions that reached the analysis service",
		},
		[]string{"workflow"},
	)

	WorkflowFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workflow_failures_total",
			Help: "Total number of failed submissions by error kind",
		},
		[]string{"workflow", "kind"},
	)

	WorkflowSubmitDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "workflow_submit_duration_seconds",
			Help:    "Round trip time of a submission in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"workflow"},
	)

	WorkflowInFlight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "workflow_in_flight",
			Help: "Number of submissions currently waiting on the analysis service",
		},
		[]string{"workflow"},
	)
)

// Record updates the instruments for one lifecycle event.
func Record(event domain.WorkflowEvent) {
	switch event.Type {
	case domain.EventSubmitStart:
		WorkflowSubmissions.WithLabelValues(event.Workflow).Inc()
		WorkflowInFlight.WithLabelValues(event.Workflow).Inc()
	case domain.EventSubmitSuccess:
		WorkflowInFlight.WithLabelValues(event.Workflow).Dec()
		WorkflowSubmitDuration.WithLabelValues(event.Workflow).Observe(event.Duration.Seconds())
	case domain.EventSubmitFailure:
		WorkflowInFlight.WithLabelValues(event.Workflow).Dec()
		WorkflowSubmitDuration.WithLabelValues(event.Workflow).Observe(event.Duration.Seconds())
		WorkflowFailures.WithLabelValues(event.Workflow, event.ErrorKind).Inc()
	}
}
