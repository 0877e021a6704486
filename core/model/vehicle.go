package model

// Charge bounds in percent.
const (
	MinCharge = 0.0
	MaxCharge = 100.0
)

// Vehicle is the scheduler's view of one AGV.
type Vehicle struct {
	ID       int
	Position Point
	Charge   float64 // percent, always within [MinCharge, MaxCharge]
	Active   *Task   // nil while idle
	Queue    []Task
}

// ClampCharge bounds c to [MinCharge, MaxCharge].
func ClampCharge(c float64) float64 {
	if c < MinCharge {
		return MinCharge
	}
	if c > MaxCharge {
		return MaxCharge
	}
	return c
}

// Idle reports whether the vehicle has no active task.
func (v *Vehicle) Idle() bool { return v.Active == nil }

// ActiveKind returns the kind of the active task, or TaskIdle.
func (v *Vehicle) ActiveKind() TaskKind {
	if v.Active == nil {
		return TaskIdle
	}
	return v.Active.Kind
}

// QueueKinds lists the kinds of the pending tasks in queue order.
func (v *Vehicle) QueueKinds() []TaskKind {
	kinds := make([]TaskKind, len(v.Queue))
	for i, t := range v.Queue {
		kinds[i] = t.Kind
	}
	return kinds
}

// VehicleSnapshot is a read-only copy of a vehicle handed to observers.
type VehicleSnapshot struct {
	ID            int        `json:"id"`
	Position      Point      `json:"position"`
	Charge        float64    `json:"charge"`
	CurrentTask   TaskKind   `json:"current_task"`
	Active        *Task      `json:"active,omitempty"`
	WaypointIndex int        `json:"waypoint_index"`
	Stalled       bool       `json:"stalled"`
	Queue         []Task     `json:"queue"`
	QueueKinds    []TaskKind `json:"queue_kinds"`
}

// Snapshot copies v so the result can be read without synchronisation.
func (v *Vehicle) Snapshot() VehicleSnapshot {
	s := VehicleSnapshot{
		ID:          v.ID,
		Position:    v.Position,
		Charge:      v.Charge,
		CurrentTask: v.ActiveKind(),
		Queue:       make([]Task, len(v.Queue)),
		QueueKinds:  v.QueueKinds(),
	}
	if v.Active != nil {
		a := v.Active.Clone()
		s.Active = &a
	}
	for i, t := range v.Queue {
		s.Queue[i] = t.Clone()
	}
	return s
}
