package usecase

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type wizardMetrics struct {
	open           prometheus.Gauge
	submissions    prometheus.Counter
	submitFailures prometheus.Counter
}

// newWizardMetrics creates the wizard metrics on reg. A nil reg leaves them unregistered.
func newWizardMetrics(reg prometheus.Registerer) *wizardMetrics {
	factory := promauto.With(reg)
	return &wizardMetrics{
		open: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "themis",
			Subsystem: "wizard",
			Name:      "sessions_open",
			Help:      "Number of open risk assessment wizards",
		}),
		submissions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "themis",
			Subsystem: "wizard",
			Name:      "submissions_total",
			Help:      "Risk assessments submitted through the wizard",
		}),
		submitFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "themis",
			Subsystem: "wizard",
			Name:      "submit_failures_total",
			Help:      "Wizard submissions that failed to persist the risk",
		}),
	}
}
