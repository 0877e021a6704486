package vehiclestatus

import (
	"context"

	"github.com/kilianp07/agvfleet/core/model"
	"github.com/kilianp07/agvfleet/internal/eventbus"
)

// Update is one sink notification travelling over the bus. Exactly one of
// Status or Tasks is meaningful, selected by TaskList.
type Update struct {
	TaskList  bool
	Status    VehicleStatus
	VehicleID int
	Tasks     []model.TaskKind
}

// BusSink publishes notifications on a bus so that slow sinks never hold up
// the publisher.
type BusSink struct {
	bus *eventbus.TypedBus[Update]
}

// NewBusSink returns a Sink publishing to bus.
func NewBusSink(bus *eventbus.TypedBus[Update]) *BusSink {
	return &BusSink{bus: bus}
}

// OnVehicleStatus implements Sink.
func (b *BusSink) OnVehicleStatus(s VehicleStatus) {
	b.bus.Publish(Update{Status: s, VehicleID: s.VehicleID})
}

// OnTaskListChanged implements Sink.
func (b *BusSink) OnTaskListChanged(id int, kinds []model.TaskKind) {
	b.bus.Publish(Update{TaskList: true, VehicleID: id, Tasks: append([]model.TaskKind(nil), kinds...)})
}

// Forward delivers updates from ch to sink until ctx ends or ch closes.
func Forward(ctx context.Context, ch <-chan Update, sink Sink) {
	for {
		select {
		case <-ctx.Done():
			return
		case u, ok := <-ch:
			if !ok {
				return
			}
			if u.TaskList {
				sink.OnTaskListChanged(u.VehicleID, u.Tasks)
			} else {
				sink.OnVehicleStatus(u.Status)
			}
		}
	}
}
