package observability_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/reactivities/backend/internal/observability"
)

func TestObserveDispatch(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)

	m.ObserveDispatch("list_activities", "ok", 5*time.Millisecond)
	m.ObserveDispatch("list_activities", "ok", 7*time.Millisecond)
	m.ObserveDispatch("edit_activity", "not_found", time.Millisecond)

	families, err := reg.Gather()
	require.NoError(t, err)

	counts := map[string]float64{}
	for _, f := range families {
		if f.GetName() != "reactivities_dispatch_requests_total" {
			continue
		}
		for _, metric := range f.GetMetric() {
			var kind, outcome string
			for _, l := range metric.GetLabel() {
				switch l.GetName() {
				case "kind":
					kind = l.GetValue()
				case "outcome":
					outcome = l.GetValue()
				}
			}
			counts[kind+"/"+outcome] = metric.GetCounter().GetValue()
		}
	}
	assert.Equal(t, 2.0, counts["list_activities/ok"])
	assert.Equal(t, 1.0, counts["edit_activity/not_found"])

	n, err := testutil.GatherAndCount(reg, "reactivities_dispatch_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, n, "one histogram series per kind")
}

func TestObserveDispatch_NilMetrics(t *testing.T) {
	var m *observability.Metrics
	assert.NotPanics(t, func() { m.ObserveDispatch("list_activities", "ok", time.Second) })
}
