package events

import "github.com/kilianp07/agvfleet/core/model"

// TaskAction names a lifecycle transition.
type TaskAction string

const (
	TaskEnqueued            TaskAction = "enqueued"
	TaskStarted             TaskAction = "started"
	TaskCompleted           TaskAction = "completed"
	TaskChargingInserted    TaskAction = "charging_inserted"
	TaskChargingUnreachable TaskAction = "charging_unreachable"
	TaskReplanned           TaskAction = "replanned"
	TaskStalled             TaskAction = "stalled"
)

// TaskEvent is published by the coordinator for each task transition.
type TaskEvent struct {
	VehicleID int
	TaskID    string
	Kind      model.TaskKind
	Action    TaskAction
	Detail    string
}
