package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	checksTotal            *prometheus.CounterVec
	checkDuration          prometheus.Histogram
	matchesTotal           *prometheus.CounterVec
	providerErrorsTotal    *prometheus.CounterVec
	documentsIngestedTotal prometheus.Counter
)

// InitPrometheus registers all application collectors with the default
// registry. Until it runs, the increment helpers below are no-ops, so
// library code can record metrics unconditionally.
func InitPrometheus() {
	checksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scholarguard_checks_total",
			Help: "Total number of plagiarism checks processed, by status.",
		},
		[]string{"status"},
	)

	checkDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scholarguard_check_duration_seconds",
			Help:    "Duration of the detection pipeline per check.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		},
	)

	matchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scholarguard_matches_total",
			Help: "Total number of matches emitted, by match type.",
		},
		[]string{"type"},
	)

	providerErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scholarguard_provider_errors_total",
			Help: "Total number of failed external provider calls, by provider.",
		},
		[]string{"provider"},
	)

	documentsIngestedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scholarguard_documents_ingested_total",
			Help: "Total number of documents ingested into the fingerprint corpus.",
		},
	)

	prometheus.MustRegister(
		checksTotal,
		checkDuration,
		matchesTotal,
		providerErrorsTotal,
		documentsIngestedTotal,
	)
}

// Handler exposes the default registry for the metrics server
func Handler() http.Handler {
	return promhttp.Handler()
}

// IncCheck records a completed plagiarism check with its final status
func IncCheck(status string) {
	if checksTotal != nil {
		checksTotal.WithLabelValues(status).Inc()
	}
}

// ObserveCheckDuration records end-to-end pipeline latency in seconds
func ObserveCheckDuration(seconds float64) {
	if checkDuration != nil {
		checkDuration.Observe(seconds)
	}
}

// IncMatches records n emitted matches of the given type
func IncMatches(matchType string, n int) {
	if matchesTotal != nil && n > 0 {
		matchesTotal.WithLabelValues(matchType).Add(float64(n))
	}
}

// IncProviderError records a failed call to an external provider
func IncProviderError(provider string) {
	if providerErrorsTotal != nil {
		providerErrorsTotal.WithLabelValues(provider).Inc()
	}
}

// IncDocumentsIngested records one document consumed from the ingest stream
func IncDocumentsIngested() {
	if documentsIngestedTotal != nil {
		documentsIngestedTotal.Inc()
	}
}
