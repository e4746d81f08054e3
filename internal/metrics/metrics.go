package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	deliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pushcamp_deliveries_total",
			Help: "Delivery attempts by terminal status",
		},
		[]string{"status"},
	)

	dispatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pushcamp_dispatch_duration_seconds",
			Help:    "Wall time of one campaign fan-out",
			Buckets: []float64{.1, .5, 1, 2, 5, 10, 30, 60},
		},
	)

	clicksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pushcamp_clicks_total",
			Help: "Recorded notification clicks",
		},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordDelivery records one settled delivery attempt.
func RecordDelivery(status string) {
	deliveriesTotal.WithLabelValues(status).Inc()
}

// RecordDispatch records the duration of a completed campaign fan-out.
func RecordDispatch(d time.Duration) {
	dispatchDuration.Observe(d.Seconds())
}

// RecordClick records one click-attribution write.
func RecordClick() {
	clicksTotal.Inc()
}
