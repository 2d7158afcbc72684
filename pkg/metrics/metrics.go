package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "callcenter"

// Metrics holds Prometheus metrics for the call-center service
type Metrics struct {
	PlansCreated       *prometheus.CounterVec
	NotificationsSent  *prometheus.CounterVec
	Fallbacks          *prometheus.CounterVec
	CallsRecorded      *prometheus.CounterVec
	RemindersProcessed *prometheus.CounterVec
	RequestDuration    *prometheus.HistogramVec
}

// New creates and registers the metrics on reg. Pass prometheus.NewRegistry()
// in tests to avoid duplicate registration.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		PlansCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "payment_plans_created_total",
				Help:      "Payment plans created, by plan type",
			},
			[]string{"plan_type"},
		),
		NotificationsSent: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "notifications_total",
				Help:      "Notification send attempts, by channel and status",
			},
			[]string{"channel", "status"},
		),
		Fallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "notification_fallbacks_total",
				Help:      "Language or transport substitutions made while sending",
			},
			[]string{"kind"},
		),
		CallsRecorded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "calls_recorded_total",
				Help:      "Calls recorded by agents, by outcome",
			},
			[]string{"outcome"},
		),
		RemindersProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reminders_processed_total",
				Help:      "Installment reminder job results",
			},
			[]string{"result"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route", "method", "status"},
		),
	}

	if reg != nil {
		reg.MustRegister(
			m.PlansCreated,
			m.NotificationsSent,
			m.Fallbacks,
			m.CallsRecorded,
			m.RemindersProcessed,
			m.RequestDuration,
		)
	}

	return m
}

// Middleware records request durations labelled by the matched mux route
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(recorder, r)

		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if tpl, err := current.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		m.RequestDuration.
			WithLabelValues(route, r.Method, strconv.Itoa(recorder.statusCode)).
			Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (rec *statusRecorder) WriteHeader(statusCode int) {
	rec.statusCode = statusCode
	rec.ResponseWriter.WriteHeader(statusCode)
}
