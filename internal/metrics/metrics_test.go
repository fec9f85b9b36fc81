package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilRecorderObserveIsNoop(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.Observe(true, time.Millisecond, 0, 0, 0)
	})
}

func TestNewRecorderRegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg)

	r.Observe(true, 5*time.Millisecond, 1, 2, 3)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := map[string]*dto.MetricFamily{}
	for _, f := range families {
		names[f.GetName()] = f
	}

	require.Contains(t, names, "chtl_compiles_total")
	assert.Equal(t, float64(1), names["chtl_compiles_total"].Metric[0].GetCounter().GetValue())

	require.Contains(t, names, "chtl_diagnostics_total")
}

func TestObserveFailureIncrementsFailureCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg)

	r.Observe(false, time.Millisecond, 1, 0, 0)

	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == "chtl_compile_failures_total" {
			assert.Equal(t, float64(1), f.Metric[0].GetCounter().GetValue())
		}
	}
}

func TestNewRecorderWithNilRegistererDoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		r := NewRecorder(nil)
		r.Observe(true, time.Millisecond, 0, 0, 0)
	})
}
