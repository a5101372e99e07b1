package service

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lifestream-app/lifestream/internal/biz/domain"
)

// Metrics holds the LifeStream Prometheus metrics.
// Each instance owns its registry so several services can coexist in tests.
type Metrics struct {
	registry *prometheus.Registry

	MessagesProcessed prometheus.Counter
	ActivitiesLogged  *prometheus.CounterVec
	GoalsCompleted    prometheus.Counter
	PointsAwarded     prometheus.Counter
	Replies           *prometheus.CounterVec
	ReplyLatency      prometheus.Histogram
	DayRollovers      prometheus.Counter
	ActivitiesPurged  prometheus.Counter
	StateSaves        *prometheus.CounterVec
}

// NewMetrics creates and registers all metrics
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		MessagesProcessed: factory.NewCounter(prometheus.CounterOpts{
			Name: "lifestream_messages_processed_total",
			Help: "Total number of user messages processed",
		}),

		// Activities by category
		ActivitiesLogged: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "lifestream_activities_logged_total",
			Help: "Total number of activities extracted by category",
		}, []string{"category"}),

		GoalsCompleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "lifestream_goals_completed_total",
			Help: "Total number of daily goal completions",
		}),

		PointsAwarded: factory.NewCounter(prometheus.CounterOpts{
			Name: "lifestream_points_awarded_total",
			Help: "Total number of points awarded",
		}),

		// Replies by source: generator or template
		Replies: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "lifestream_replies_total",
			Help: "Total number of replies by source",
		}, []string{"source"}),

		ReplyLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "lifestream_reply_duration_seconds",
			Help:    "Reply composition latency in seconds",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 2, 5, 10, 15},
		}),

		DayRollovers: factory.NewCounter(prometheus.CounterOpts{
			Name: "lifestream_day_rollovers_total",
			Help: "Total number of calendar day rollovers",
		}),

		ActivitiesPurged: factory.NewCounter(prometheus.CounterOpts{
			Name: "lifestream_activities_purged_total",
			Help: "Total number of activities dropped by retention",
		}),

		// State saves by result: ok or error
		StateSaves: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "lifestream_state_saves_total",
			Help: "Total number of state store writes by result",
		}, []string{"result"}),
	}
}

// Registry returns the metrics registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Observe updates counters from a domain event
func (m *Metrics) Observe(evt domain.Event) {
	switch evt.Type {
	case domain.EventMessageProcessed:
		m.MessagesProcessed.Inc()
	case domain.EventActivityLogged:
		for _, a := range evt.Activities {
			m.ActivitiesLogged.WithLabelValues(string(a.Category)).Inc()
		}
	case domain.EventGoalCompleted:
		m.GoalsCompleted.Inc()
	case domain.EventPointsAwarded:
		m.PointsAwarded.Add(float64(evt.Points))
	case domain.EventResponseGenerated:
		m.Replies.WithLabelValues(evt.Source).Inc()
	case domain.EventDayRolledOver:
		m.DayRollovers.Inc()
	case domain.EventActivitiesPurged:
		m.ActivitiesPurged.Add(float64(evt.Count))
	}
}

// RecordSave records a state store write
func (m *Metrics) RecordSave(err error) {
	if err != nil {
		m.StateSaves.WithLabelValues("error").Inc()
		return
	}
	m.StateSaves.WithLabelValues("ok").Inc()
}

// RecordReplyLatency records reply latency
func (m *Metrics) RecordReplyLatency(seconds float64) {
	m.ReplyLatency.Observe(seconds)
}
