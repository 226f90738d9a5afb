package workflow

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts workflow transitions by outcome
type Metrics struct {
	Transitions *prometheus.CounterVec
}

// NewMetrics registers the workflow metrics with reg. A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		Transitions: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "police_case_transitions_total",
			Help: "Workflow transitions attempted, by workflow, transition and outcome",
		}, []string{"workflow", "transition", "outcome"}),
	}
}

// record counts one attempt and hands err back to the caller
func (m *Metrics) record(workflow, transition string, err error) error {
	if m == nil {
		return err
	}
	outcome := "ok"
	if err != nil {
		outcome = string(KindOf(err))
	}
	m.Transitions.WithLabelValues(workflow, transition, outcome).Inc()
	return err
}
