package monitoring

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5},
		},
		[]string{"method", "path"},
	)

	AppointmentMutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "appointment_mutations_total",
			Help: "Appointments created, updated or deleted",
		},
		[]string{"action"},
	)
)

var registerOnce sync.Once

// Init registers the collectors with the default registry. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(RequestsTotal)
		prometheus.MustRegister(RequestDuration)
		prometheus.MustRegister(AppointmentMutations)
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}
