// Package metrics exposes Prometheus instrumentation for the reputation
// service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager owns the service's metric collectors.
type Manager struct {
	registry *prometheus.Registry

	membersRegistered   prometheus.Counter
	votesAccepted       *prometheus.CounterVec
	votesRejected       *prometheus.CounterVec
	achievementsAwarded *prometheus.CounterVec
	rolesClaimed        prometheus.Counter
	decayPointsRemoved  prometheus.Counter
	seasonsStarted      prometheus.Counter
	httpDuration        *prometheus.HistogramVec
}

// NewManager builds a Manager and registers its collectors. Without
// WithRegistry it uses a private registry, which keeps independent instances
// (as in tests) from colliding.
func NewManager(opts ...Option) *Manager {
	cfg := defaultOptions()
	for _, opt := range opts {
		opt(&cfg)
	}

	m := &Manager{registry: cfg.registry}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}

	m.membersRegistered = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: cfg.namespace,
		Name:      "members_registered_total",
		Help:      "Number of member records created.",
	})
	m.votesAccepted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: cfg.namespace,
		Name:      "votes_accepted_total",
		Help:      "Accepted votes by direction.",
	}, []string{"direction"})
	m.votesRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: cfg.namespace,
		Name:      "votes_rejected_total",
		Help:      "Rejected votes by reason.",
	}, []string{"reason"})
	m.achievementsAwarded = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: cfg.namespace,
		Name:      "achievements_awarded_total",
		Help:      "Achievement bits set, by achievement.",
	}, []string{"achievement"})
	m.rolesClaimed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: cfg.namespace,
		Name:      "roles_claimed_total",
		Help:      "Successful role unlock claims.",
	})
	m.decayPointsRemoved = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: cfg.namespace,
		Name:      "decay_points_removed_total",
		Help:      "Points removed by applied decay.",
	})
	m.seasonsStarted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: cfg.namespace,
		Name:      "seasons_started_total",
		Help:      "Seasons started.",
	})
	m.httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: cfg.namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration by route and status.",
		Buckets:   cfg.buckets,
	}, []string{"route", "status"})

	m.registry.MustRegister(
		m.membersRegistered,
		m.votesAccepted,
		m.votesRejected,
		m.achievementsAwarded,
		m.rolesClaimed,
		m.decayPointsRemoved,
		m.seasonsStarted,
		m.httpDuration,
	)
	return m
}

// Handler serves the /metrics endpoint for this manager's registry.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// MemberRegistered counts a created member record.
func (m *Manager) MemberRegistered() {
	if m == nil {
		return
	}
	m.membersRegistered.Inc()
}

// VoteAccepted counts an accepted vote; direction is "up" or "down".
func (m *Manager) VoteAccepted(direction string) {
	if m == nil {
		return
	}
	m.votesAccepted.WithLabelValues(direction).Inc()
}

// VoteRejected counts a rejected vote by reason.
func (m *Manager) VoteRejected(reason string) {
	if m == nil {
		return
	}
	m.votesRejected.WithLabelValues(reason).Inc()
}

// AchievementAwarded counts a newly set achievement bit.
func (m *Manager) AchievementAwarded(achievement string) {
	if m == nil {
		return
	}
	m.achievementsAwarded.WithLabelValues(achievement).Inc()
}

// RoleClaimed counts a successful role unlock.
func (m *Manager) RoleClaimed() {
	if m == nil {
		return
	}
	m.rolesClaimed.Inc()
}

// DecayRemoved counts points removed by an applied decay pass.
func (m *Manager) DecayRemoved(points int64) {
	if m == nil || points <= 0 {
		return
	}
	m.decayPointsRemoved.Add(float64(points))
}

// SeasonStarted counts a started season.
func (m *Manager) SeasonStarted() {
	if m == nil {
		return
	}
	m.seasonsStarted.Inc()
}

// ObserveHTTP records one request's duration in seconds.
func (m *Manager) ObserveHTTP(route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.httpDuration.WithLabelValues(route, status).Observe(seconds)
}
