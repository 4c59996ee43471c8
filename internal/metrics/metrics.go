package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DBQueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "rental_db_query_duration_seconds",
		Help: "Time spent executing database statements",
	}, []string{"operation"})

	DBQueryErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rental_db_query_errors_total",
		Help: "The total number of failed database statements",
	}, []string{"operation", "kind"})

	CommandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rental_commands_total",
		Help: "The total number of executed commands",
	}, []string{"command", "status"})

	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rental_events_published_total",
		Help: "Rental events handed to the broker",
	}, []string{"type", "status"})
)

// ObserveQuery records the duration of one store call started at start.
func ObserveQuery(operation string, start time.Time) {
	DBQueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
