package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application. Every helper is
// nil-safe so services and tests can run without a registry.
type Metrics struct {
	RequestDuration *prometheus.HistogramVec

	UsersCreated       prometheus.Counter
	ProjectsCreated    prometheus.Counter
	TasksCreated       prometheus.Counter
	MaterialsCreated   prometheus.Counter
	InvitationsCreated prometheus.Counter
	LoginFailures      prometheus.Counter
	LoginThrottled     prometheus.Counter

	NotificationsSent         prometheus.Counter
	NotificationsFailed       prometheus.Counter
	NotificationsDeadLettered prometheus.Counter
}

// New creates and registers all metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "projecthub_http_request_duration_seconds",
			Help:    "Duration of HTTP requests by route, method and status",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"route", "method", "status"}),
		UsersCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "projecthub_users_created_total",
			Help: "Total number of users created",
		}),
		ProjectsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "projecthub_projects_created_total",
			Help: "Total number of projects created",
		}),
		TasksCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "projecthub_tasks_created_total",
			Help: "Total number of tasks created",
		}),
		MaterialsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "projecthub_materials_created_total",
			Help: "Total number of materials created",
		}),
		InvitationsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "projecthub_invitations_created_total",
			Help: "Total number of project invitations created",
		}),
		LoginFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "projecthub_login_failures_total",
			Help: "Total number of rejected login attempts",
		}),
		LoginThrottled: f.NewCounter(prometheus.CounterOpts{
			Name: "projecthub_login_throttled_total",
			Help: "Total number of login attempts rejected by the rate limiter",
		}),
		NotificationsSent: f.NewCounter(prometheus.CounterOpts{
			Name: "projecthub_notifications_sent_total",
			Help: "Invitation emails delivered to the SMTP server",
		}),
		NotificationsFailed: f.NewCounter(prometheus.CounterOpts{
			Name: "projecthub_notifications_failed_total",
			Help: "Invitation email send attempts that failed and were rescheduled",
		}),
		NotificationsDeadLettered: f.NewCounter(prometheus.CounterOpts{
			Name: "projecthub_notifications_dead_lettered_total",
			Help: "Invitation emails abandoned after exhausting retries",
		}),
	}
}

func (m *Metrics) ObserveRequest(route, method, status string, d time.Duration) {
	if m != nil {
		m.RequestDuration.WithLabelValues(route, method, status).Observe(d.Seconds())
	}
}

func (m *Metrics) IncrementUsersCreated() {
	if m != nil {
		m.UsersCreated.Inc()
	}
}

func (m *Metrics) IncrementProjectsCreated() {
	if m != nil {
		m.ProjectsCreated.Inc()
	}
}

func (m *Metrics) IncrementTasksCreated() {
	if m != nil {
		m.TasksCreated.Inc()
	}
}

func (m *Metrics) IncrementMaterialsCreated() {
	if m != nil {
		m.MaterialsCreated.Inc()
	}
}

func (m *Metrics) IncrementInvitationsCreated() {
	if m != nil {
		m.InvitationsCreated.Inc()
	}
}

func (m *Metrics) IncrementLoginFailures() {
	if m != nil {
		m.LoginFailures.Inc()
	}
}

func (m *Metrics) IncrementLoginThrottled() {
	if m != nil {
		m.LoginThrottled.Inc()
	}
}

func (m *Metrics) IncrementNotificationsSent() {
	if m != nil {
		m.NotificationsSent.Inc()
	}
}

func (m *Metrics) IncrementNotificationsFailed() {
	if m != nil {
		m.NotificationsFailed.Inc()
	}
}

func (m *Metrics) IncrementNotificationsDeadLettered() {
	if m != nil {
		m.NotificationsDeadLettered.Inc()
	}
}
