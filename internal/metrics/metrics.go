package metrics

import (
	"encoding/json"
	"net/http"

	"github.com/Sunny-JP/hw-ba-cafe/internal/health"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Tap pipeline

	TapsRecordedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cafetimer",
		Name:      "taps_recorded_total",
		Help:      "Tap submissions processed, by outcome.",
	}, []string{"outcome"})

	NotificationsScheduledTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cafetimer",
		Name:      "notifications_scheduled_total",
		Help:      "Deferred reminder requests sent to the push provider, by result.",
	}, []string{"result"})

	// Subscription lifecycle

	SubscriptionsPrunedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "cafetimer",
		Name:      "subscriptions_pruned_total",
		Help:      "Push subscriptions deleted by the lifecycle policy.",
	})

	SubscriptionCleanupErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "cafetimer",
		Name:      "subscription_cleanup_errors_total",
		Help:      "Individual subscription deletions that failed.",
	})

	// Sweeper

	SweepCycleDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "cafetimer",
		Name:      "sweep_cycle_duration_seconds",
		Help:      "Time taken for one subscription sweep cycle.",
		Buckets:   prometheus.DefBuckets,
	})

	SweepProfilesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cafetimer",
		Name:      "sweep_profiles_total",
		Help:      "Profiles visited by the sweeper, by result.",
	}, []string{"result"})

	// HTTP metrics

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "cafetimer",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cafetimer",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests.",
	}, []string{"method", "path", "status"})
)

func Register() {
	prometheus.MustRegister(
		TapsRecordedTotal,
		NotificationsScheduledTotal,
		SubscriptionsPrunedTotal,
		SubscriptionCleanupErrorsTotal,
		SweepCycleDuration,
		SweepProfilesTotal,
		HTTPRequestDuration,
		HTTPRequestsTotal,
	)
}

// NewServer exposes /metrics plus the health endpoints on their own port so
// they stay off the public API surface.
func NewServer(addr string, checker *health.Checker) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, checker.Liveness(r.Context()))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		result := checker.Readiness(r.Context())
		status := http.StatusOK
		if result.Status != "up" {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, result)
	})
	return &http.Server{Addr: addr, Handler: mux}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
