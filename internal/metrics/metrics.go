package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"papertrail/internal/domain"
)

// Outcome labels recorded for each custody transition.
const (
	OutcomeOK          = "ok"
	OutcomeValidation  = "validation"
	OutcomeNotFound    = "not_found"
	OutcomeConflict    = "conflict"
	OutcomeForbidden   = "forbidden"
	OutcomePersistence = "persistence"
)

// Metrics tracks custody transitions and how long they take.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Transitions        *prometheus.CounterVec
	TransitionDuration *prometheus.HistogramVec
	NoticesFailed      prometheus.Counter
}

// New registers the custody metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "papertrail_custody_transitions_total",
			Help: "Custody operations by operation and outcome",
		}, []string{"operation", "outcome"}),
		TransitionDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "papertrail_custody_transition_duration_seconds",
			Help:    "Duration of custody operations including the database transaction",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 5},
		}, []string{"operation"}),
		NoticesFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "papertrail_custody_notices_failed_total",
			Help: "Custody notice emails that could not be sent",
		}),
	}
}

// ObserveTransition records one custody operation started at start.
func (m *Metrics) ObserveTransition(operation string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(operation, Outcome(err)).Inc()
	m.TransitionDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// IncrementNoticeFailed records a custody notice that was dropped.
func (m *Metrics) IncrementNoticeFailed() {
	if m == nil {
		return
	}
	m.NoticesFailed.Inc()
}

// Outcome maps an operation result onto its outcome label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, domain.ErrValidation):
		return OutcomeValidation
	case errors.Is(err, domain.ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, domain.ErrConflict):
		return OutcomeConflict
	case errors.Is(err, domain.ErrForbidden):
		return OutcomeForbidden
	default:
		return OutcomePersistence
	}
}
