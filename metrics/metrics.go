package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "foodgram_api_request_duration_seconds",
			Help:    "API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "foodgram_api_active_requests",
			Help: "Requests currently being served",
		},
	)

	// MembershipChanges counts favorite, cart and subscription toggles.
	MembershipChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_membership_changes_total",
			Help: "Favorite, shopping cart and subscription changes",
		},
		[]string{"kind", "action", "outcome"},
	)

	ShoppingListDownloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_shopping_list_downloads_total",
			Help: "Shopping list downloads by format",
		},
		[]string{"format"},
	)
)

func RecordAPIRequest(method, route, status string, d time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, status).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func TrackActiveRequest(start bool) {
	if start {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

func RecordMembershipChange(kind, action, outcome string) {
	MembershipChanges.WithLabelValues(kind, action, outcome).Inc()
}
