package gateway

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "perfgate",
		Subsystem: "gateway",
		Name:      "http_requests_total",
		Help:      "Count of processed HTTP requests",
	}, []string{"route", "status"})

	requestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "perfgate",
		Subsystem: "gateway",
		Name:      "http_request_duration_seconds",
		Help:      "Latency distribution of gateway handlers",
		Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"route", "status"})
)

func recordRequest(route string, status int, d time.Duration) {
	labels := prometheus.Labels{"route": route, "status": strconv.Itoa(status)}
	requestTotal.With(labels).Inc()
	requestLatency.With(labels).Observe(d.Seconds())
}
