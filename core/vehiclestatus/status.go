// Package vehiclestatus carries per-vehicle status to presentation sinks.
package vehiclestatus

import (
	"time"

	"github.com/kilianp07/agvfleet/core/model"
)

// VehicleStatus is the state pushed to observers after each energy update.
type VehicleStatus struct {
	VehicleID   int            `json:"vehicle_id"`
	Charge      float64        `json:"charge"`
	TaskKind    model.TaskKind `json:"task_kind"`
	Position    model.Point    `json:"position"`
	Low         bool           `json:"low"`
	Stalled     bool           `json:"stalled"`
	QueueLength int            `json:"queue_length"`
	Time        time.Time      `json:"time"`
}

// Sink receives status and task list notifications. Implementations must
// return quickly; the scheduler calls them from its tick.
type Sink interface {
	OnVehicleStatus(VehicleStatus)
	OnTaskListChanged(vehicleID int, kinds []model.TaskKind)
}

// NopSink discards everything.
type NopSink struct{}

func (NopSink) OnVehicleStatus(VehicleStatus)            {}
func (NopSink) OnTaskListChanged(int, []model.TaskKind) {}

// MultiSink fans out to several sinks in order.
type MultiSink []Sink

// OnVehicleStatus implements Sink.
func (m MultiSink) OnVehicleStatus(s VehicleStatus) {
	for _, sink := range m {
		sink.OnVehicleStatus(s)
	}
}

// OnTaskListChanged implements Sink.
func (m MultiSink) OnTaskListChanged(id int, kinds []model.TaskKind) {
	for _, sink := range m {
		sink.OnTaskListChanged(id, append([]model.TaskKind(nil), kinds...))
	}
}
