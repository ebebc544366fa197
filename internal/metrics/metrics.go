package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "t3"

// Metrics counts state store activity.
type Metrics struct {
	commits         *prometheus.CounterVec
	externalChanges prometheus.Counter
	parseErrors     prometheus.Counter
}

// New - creates the collectors and registers them with the given registerer.
func New(registerer prometheus.Registerer) *Metrics {
	that := &Metrics{
		commits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "state_commits_total",
			Help:      "Number of state commits by store operation.",
		}, []string{"operation"}),
		externalChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "state_external_changes_total",
			Help:      "Number of state changes written by another process.",
		}),
		parseErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "state_parse_errors_total",
			Help:      "Number of stored states that could not be parsed.",
		}),
	}

	registerer.MustRegister(that.commits, that.externalChanges, that.parseErrors)

	return that
}

func (that *Metrics) StateCommitted(operation string) {
	that.commits.WithLabelValues(operation).Inc()
}

func (that *Metrics) ExternalChange() {
	that.externalChanges.Inc()
}

func (that *Metrics) ParseFailed() {
	that.parseErrors.Inc()
}
