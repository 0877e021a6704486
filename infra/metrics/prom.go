package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/agvfleet/core/model"
	"github.com/kilianp07/agvfleet/core/vehiclestatus"
)

// PromSink exports the latest vehicle status as Prometheus gauges.
type PromSink struct {
	charge  *prometheus.GaugeVec
	queue   *prometheus.GaugeVec
	stalled *prometheus.GaugeVec
	low     *prometheus.GaugeVec
}

// NewPromSink registers the gauges on the default Prometheus registerer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers the gauges on reg. A nil registerer
// defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	labels := []string{"vehicle_id"}
	s := &PromSink{
		charge: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "agv_charge_percent",
			Help: "Battery charge of each vehicle in percent",
		}, labels),
		queue: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "agv_queue_length",
			Help: "Pending tasks per vehicle",
		}, labels),
		stalled: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "agv_stalled",
			Help: "1 when the vehicle waits for a route around a blocked node",
		}, labels),
		low: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "agv_battery_low",
			Help: "1 when the vehicle charge is below the low threshold",
		}, labels),
	}
	for _, g := range []**prometheus.GaugeVec{&s.charge, &s.queue, &s.stalled, &s.low} {
		if err := reg.Register(*g); err != nil {
			if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
				*g = are.ExistingCollector.(*prometheus.GaugeVec)
			} else {
				return nil, err
			}
		}
	}
	return s, nil
}

// OnVehicleStatus implements vehiclestatus.Sink.
func (s *PromSink) OnVehicleStatus(st vehiclestatus.VehicleStatus) {
	id := strconv.Itoa(st.VehicleID)
	s.charge.WithLabelValues(id).Set(st.Charge)
	s.queue.WithLabelValues(id).Set(float64(st.QueueLength))
	s.stalled.WithLabelValues(id).Set(boolGauge(st.Stalled))
	s.low.WithLabelValues(id).Set(boolGauge(st.Low))
}

// OnTaskListChanged implements vehiclestatus.Sink.
func (s *PromSink) OnTaskListChanged(id int, kinds []model.TaskKind) {
	s.queue.WithLabelValues(strconv.Itoa(id)).Set(float64(len(kinds)))
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
