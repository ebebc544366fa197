package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	// Given: metrics registered on a fresh registry
	m := New(prometheus.NewRegistry())

	// When: recording activity
	m.StateCommitted("move")
	m.StateCommitted("move")
	m.StateCommitted("reset")
	m.ExternalChange()
	m.ParseFailed()

	// Then: every counter reflects it
	assert.InDelta(t, 2, testutil.ToFloat64(m.commits.WithLabelValues("move")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.commits.WithLabelValues("reset")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.externalChanges), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.parseErrors), 0)
}

func TestNew_PanicsOnDoubleRegistration(t *testing.T) {
	// Given: a registry that already holds the collectors
	registry := prometheus.NewRegistry()
	New(registry)

	// Then: registering them again panics
	assert.Panics(t, func() { New(registry) })
}
