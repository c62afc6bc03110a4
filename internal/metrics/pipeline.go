package metrics

import "github.com/prometheus/client_golang/prometheus"

// Organization pipeline Prometheus metrics.
var (
	NotesOrganizedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "inkdex",
			Name:      "notes_organized_total",
			Help:      "Total number of notes run through the organization pipeline",
		},
		[]string{"status"},
	)

	OrganizeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "inkdex",
			Name:      "organize_duration_seconds",
			Help:      "Full pipeline run duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	StructuresGeneratedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "inkdex",
			Name:      "structures_generated_total",
			Help:      "Total generated structures by type",
		},
		[]string{"type"},
	)
)

var pipelineMetricsRegistered bool

// RegisterPipelineMetrics registers Prometheus pipeline metrics. Must be called once from main.
func RegisterPipelineMetrics() {
	if pipelineMetricsRegistered {
		return
	}
	prometheus.MustRegister(NotesOrganizedTotal)
	prometheus.MustRegister(OrganizeDuration)
	prometheus.MustRegister(StructuresGeneratedTotal)
	pipelineMetricsRegistered = true
}
