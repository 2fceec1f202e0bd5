package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	reportExporter = "report_exporter"

	// Export metrics
	exportsTotal          = "exports_total"
	exportDurationSeconds = "export_duration_seconds"
	exportsInFlight       = "exports_in_flight"

	// Labels
	exportKindLabel    = "kind"
	exportOutcomeLabel = "outcome"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

var exportsTotalLabels = []string{
	exportKindLabel,
	exportOutcomeLabel,
}

var exportDurationLabels = []string{
	exportKindLabel,
}

/**
* Metrics definition
**/
var exportsTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: reportExporter,
		Name:      exportsTotal,
		Help:      "number of exports partitioned by document kind and outcome",
	},
	exportsTotalLabels,
)

var exportDurationMetric = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: reportExporter,
		Name:      exportDurationSeconds,
		Help:      "time spent producing and saving a document",
		Buckets:   []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
	},
	exportDurationLabels,
)

var exportsInFlightMetric = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: reportExporter,
		Name:      exportsInFlight,
		Help:      "number of exports currently running",
	},
	exportDurationLabels,
)

// ObserveExport records the outcome and duration of one export.
func ObserveExport(kind string, success bool, duration time.Duration) {
	outcome := OutcomeFailure
	if success {
		outcome = OutcomeSuccess
	}
	exportsTotalMetric.With(prometheus.Labels{
		exportKindLabel:    kind,
		exportOutcomeLabel: outcome,
	}).Inc()
	exportDurationMetric.With(prometheus.Labels{exportKindLabel: kind}).Observe(duration.Seconds())
}

// TrackInFlight marks an export of kind as running until the returned func is called.
func TrackInFlight(kind string) func() {
	gauge := exportsInFlightMetric.With(prometheus.Labels{exportKindLabel: kind})
	gauge.Inc()
	return gauge.Dec
}

func ExportsTotal(kind, outcome string) prometheus.Counter {
	return exportsTotalMetric.With(prometheus.Labels{
		exportKindLabel:    kind,
		exportOutcomeLabel: outcome,
	})
}

// Handler serves every collector registered with the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

func init() {
	registerMetrics()
}

func registerMetrics() {
	prometheus.MustRegister(exportsTotalMetric)
	prometheus.MustRegister(exportDurationMetric)
	prometheus.MustRegister(exportsInFlightMetric)
}
