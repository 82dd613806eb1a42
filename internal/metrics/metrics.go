package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds the collectors of one registry.
type Metrics struct {
	Registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	ReservationsCreated  prometheus.Counter
	ReservationsCanceled prometheus.Counter
	SeatConflicts        prometheus.Counter
	FlightsCreated       prometheus.Counter
	FlightsCanceled      prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "airline_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "airline_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		ReservationsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "airline_reservations_created_total",
			Help: "Reservations committed.",
		}),
		ReservationsCanceled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "airline_reservations_canceled_total",
			Help: "Reservations canceled by customers.",
		}),
		SeatConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "airline_seat_conflicts_total",
			Help: "Reservation attempts rejected because a seat was already claimed.",
		}),
		FlightsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "airline_flights_created_total",
			Help: "Flights created.",
		}),
		FlightsCanceled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "airline_flights_canceled_total",
			Help: "Flights canceled.",
		}),
	}

	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		m.requests,
		m.requestDuration,
		m.ReservationsCreated,
		m.ReservationsCanceled,
		m.SeatConflicts,
		m.FlightsCreated,
		m.FlightsCanceled,
	)
	return m
}

// Middleware records request count and latency per route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
