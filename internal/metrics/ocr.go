package metrics

import "github.com/prometheus/client_golang/prometheus"

// OCR Prometheus metrics.
var (
	OCRRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "inkdex",
			Name:      "ocr_requests_total",
			Help:      "Total number of OCR page recognitions",
		},
		[]string{"provider", "status"},
	)

	OCRRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "inkdex",
			Name:      "ocr_request_duration_seconds",
			Help:      "OCR page recognition duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"provider"},
	)

	OCRCostTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "inkdex",
			Name:      "ocr_cost_dollars_total",
			Help:      "Total OCR spend in dollars",
		},
		[]string{"provider"},
	)

	OCRErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "inkdex",
			Name:      "ocr_errors_total",
			Help:      "Total OCR errors",
		},
		[]string{"provider", "error_type"},
	)

	OCRBudgetRemaining = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "inkdex",
			Name:      "ocr_budget_dollars_remaining",
			Help:      "Remaining OCR budget in dollars",
		},
		[]string{"period"},
	)
)

var ocrMetricsRegistered bool

// RegisterOCRMetrics registers Prometheus OCR metrics. Must be called once from main.
func RegisterOCRMetrics() {
	if ocrMetricsRegistered {
		return
	}
	prometheus.MustRegister(OCRRequestsTotal)
	prometheus.MustRegister(OCRRequestDuration)
	prometheus.MustRegister(OCRCostTotal)
	prometheus.MustRegister(OCRErrorsTotal)
	prometheus.MustRegister(OCRBudgetRemaining)
	ocrMetricsRegistered = true
}
