package metrics

import (
	"database/sql"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics набор Prometheus метрик сервиса
type Metrics struct {
	registerer prometheus.Registerer

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	ReservationsTotal   *prometheus.CounterVec
	ExpiredBookings     prometheus.Counter
	SweepDuration       prometheus.Histogram
	StatusTransitions   *prometheus.CounterVec
}

// New регистрирует метрики в prometheus.DefaultRegisterer
func New(serviceName string) *Metrics {
	return NewWithRegisterer(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegisterer регистрирует метрики в переданном реестре (для тестов)
func NewWithRegisterer(serviceName string, reg prometheus.Registerer) *Metrics {
	constLabels := prometheus.Labels{"service": serviceName}

	m := &Metrics{
		registerer: reg,
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: constLabels,
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request latency",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "route"}),
		ReservationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "booking_reservations_total",
			Help:        "Reservation attempts by outcome",
			ConstLabels: constLabels,
		}, []string{"outcome"}),
		ExpiredBookings: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "booking_payment_expired_total",
			Help:        "Bookings cancelled because the payment window elapsed",
			ConstLabels: constLabels,
		}),
		SweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "booking_expiration_sweep_duration_seconds",
			Help:        "Duration of payment expiration sweeps",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}),
		StatusTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "booking_status_transitions_total",
			Help:        "Booking status transitions",
			ConstLabels: constLabels,
		}, []string{"from", "to"}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.ReservationsTotal,
		m.ExpiredBookings,
		m.SweepDuration,
		m.StatusTransitions,
	)

	return m
}

// ObserveHTTP фиксирует завершенный HTTP запрос
func (m *Metrics) ObserveHTTP(method, route string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ReservationOutcome фиксирует исход попытки бронирования
func (m *Metrics) ReservationOutcome(outcome string) {
	m.ReservationsTotal.WithLabelValues(outcome).Inc()
}

// StatusTransition фиксирует переход статуса бронирования
func (m *Metrics) StatusTransition(from, to string) {
	m.StatusTransitions.WithLabelValues(from, to).Inc()
}

// SweepCompleted фиксирует завершенный проход по просроченным оплатам
func (m *Metrics) SweepCompleted(expired int, duration time.Duration) {
	m.ExpiredBookings.Add(float64(expired))
	m.SweepDuration.Observe(duration.Seconds())
}

// RegisterDBStats регистрирует метрики пула соединений sql.DB
func (m *Metrics) RegisterDBStats(db *sql.DB, dbName string) {
	m.registerer.MustRegister(collectors.NewDBStatsCollector(db, dbName))
}
