package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/agvfleet/core/model"
	"github.com/kilianp07/agvfleet/core/vehiclestatus"
)

func TestPromSinkGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	s, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	s.OnVehicleStatus(vehiclestatus.VehicleStatus{VehicleID: 1, Charge: 42.5, QueueLength: 1, Stalled: true, Low: false})
	assert.Equal(t, 42.5, testutil.ToFloat64(s.charge.WithLabelValues("1")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.stalled.WithLabelValues("1")))
	assert.Equal(t, 0.0, testutil.ToFloat64(s.low.WithLabelValues("1")))

	s.OnTaskListChanged(1, []model.TaskKind{model.TaskPickup, model.TaskDelivery, model.TaskCharging})
	assert.Equal(t, 3.0, testutil.ToFloat64(s.queue.WithLabelValues("1")))
}

func TestPromSinkReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	b, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	a.OnVehicleStatus(vehiclestatus.VehicleStatus{VehicleID: 2, Charge: 10})
	assert.Equal(t, 10.0, testutil.ToFloat64(b.charge.WithLabelValues("2")))
}

func TestNewSinks(t *testing.T) {
	sinks, err := NewSinks(Config{}, prometheus.NewRegistry())
	require.NoError(t, err)
	assert.Empty(t, sinks)

	sinks, err = NewSinks(Config{PrometheusEnabled: true}, prometheus.NewRegistry())
	require.NoError(t, err)
	require.Len(t, sinks, 1)
	assert.IsType(t, &PromSink{}, sinks[0])
}
