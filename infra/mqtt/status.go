package mqtt

import (
	"encoding/json"
	"fmt"

	"github.com/kilianp07/agvfleet/core/model"
	"github.com/kilianp07/agvfleet/core/vehiclestatus"
)

type taskListMessage struct {
	VehicleID int              `json:"vehicle_id"`
	Tasks     []model.TaskKind `json:"tasks"`
}

// OnVehicleStatus publishes a retained status message on
// <prefix>/<id>/status.
func (p *PahoClient) OnVehicleStatus(s vehiclestatus.VehicleStatus) {
	payload, err := json.Marshal(s)
	if err != nil {
		p.logger.Errorf("encode status: %v", err)
		return
	}
	topic := fmt.Sprintf("%s/%d/status", p.cfg.StatusTopicPrefix, s.VehicleID)
	if err := p.publish(topic, p.qos("status"), true, payload); err != nil {
		p.logger.Errorf("publish status for vehicle %d: %v", s.VehicleID, err)
	}
}

// OnTaskListChanged publishes the pending task kinds on <prefix>/<id>/tasks.
func (p *PahoClient) OnTaskListChanged(id int, kinds []model.TaskKind) {
	if kinds == nil {
		kinds = []model.TaskKind{}
	}
	payload, err := json.Marshal(taskListMessage{VehicleID: id, Tasks: kinds})
	if err != nil {
		p.logger.Errorf("encode task list: %v", err)
		return
	}
	topic := fmt.Sprintf("%s/%d/tasks", p.cfg.StatusTopicPrefix, id)
	if err := p.publish(topic, p.qos("status"), true, payload); err != nil {
		p.logger.Errorf("publish task list for vehicle %d: %v", id, err)
	}
}

var _ vehiclestatus.Sink = (*PahoClient)(nil)
