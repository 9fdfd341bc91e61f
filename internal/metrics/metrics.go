package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels of a single geocode request.
const (
	OutcomeSuccess  = "success"
	OutcomeEmpty    = "empty"
	OutcomeFailure  = "failure"
	OutcomeCanceled = "canceled"
)

type Metrics struct {
	GeocodeRequests *prometheus.CounterVec
	RequestSeconds  *prometheus.HistogramVec
	MatchedFacility prometheus.Histogram
	ActivePasses    prometheus.Gauge
	StalePasses     prometheus.Counter
	Selections      prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		GeocodeRequests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "locator_geocode_requests_total",
			Help: "Total number of geocode requests by outcome.",
		}, []string{"outcome"}),
		RequestSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "locator_geocode_request_duration_seconds",
			Help:    "Duration of requests to the geocoding provider API.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
		MatchedFacility: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "locator_matched_facilities",
			Help:    "Number of facilities matched per postal code lookup.",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
		}),
		ActivePasses: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "locator_active_passes",
			Help: "Current number of geocoding passes in flight.",
		}),
		StalePasses: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "locator_stale_passes_total",
			Help: "Total number of passes whose results were discarded because a newer selection exists.",
		}),
		Selections: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "locator_selections_total",
			Help: "Total number of selections made.",
		}),
	}
}
