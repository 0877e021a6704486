// Package queue manages the per-vehicle FIFO of pending tasks, including the
// priority insertion of charging work.
package queue

import (
	"context"
	"errors"
	"fmt"

	"github.com/kilianp07/agvfleet/core/model"
	"github.com/kilianp07/agvfleet/core/pathing"
)

// ErrDuplicatePriority is returned when a charging task is already queued.
var ErrDuplicatePriority = errors.New("charging task already queued")

// Manager mutates vehicle queues. Callers serialize access per vehicle.
type Manager struct {
	paths pathing.Service
}

// NewManager returns a Manager that plans charging paths with paths.
func NewManager(paths pathing.Service) *Manager {
	return &Manager{paths: paths}
}

// Enqueue appends task to the back of the queue.
func (m *Manager) Enqueue(v *model.Vehicle, task model.Task) {
	v.Queue = append(v.Queue, task)
}

// InsertPriority plans a charging trip to target and puts it at the front of
// the queue. The rest of the queue keeps its order.
func (m *Manager) InsertPriority(ctx context.Context, v *model.Vehicle, target model.Point) (model.Task, error) {
	if HasCharging(v) {
		return model.Task{}, ErrDuplicatePriority
	}
	path, err := m.paths.FindPath(ctx, v.Position, target)
	if err != nil {
		return model.Task{}, fmt.Errorf("plan charging for vehicle %d: %w", v.ID, err)
	}
	task := model.NewTask(model.TaskCharging, target, path)
	task.Priority = true

	q := make([]model.Task, 0, len(v.Queue)+1)
	q = append(q, task)
	v.Queue = append(q, v.Queue...)
	return task, nil
}

// DequeueNext pops the front task when the vehicle is idle.
func (m *Manager) DequeueNext(v *model.Vehicle) (model.Task, bool) {
	if !v.Idle() || len(v.Queue) == 0 {
		return model.Task{}, false
	}
	next := v.Queue[0]
	v.Queue = append(v.Queue[:0:0], v.Queue[1:]...)
	return next, true
}

// PromoteCharging moves the queued charging task to the front and marks it
// priority. It reports whether the queue changed.
func (m *Manager) PromoteCharging(v *model.Vehicle) (model.Task, bool) {
	i := chargingIndex(v)
	if i < 0 || (i == 0 && v.Queue[0].Priority) {
		return model.Task{}, false
	}
	task := v.Queue[i]
	task.Priority = true
	q := make([]model.Task, 0, len(v.Queue))
	q = append(q, task)
	q = append(q, v.Queue[:i]...)
	v.Queue = append(q, v.Queue[i+1:]...)
	return task, true
}

func chargingIndex(v *model.Vehicle) int {
	for i, t := range v.Queue {
		if t.Kind == model.TaskCharging {
			return i
		}
	}
	return -1
}

// HasCharging reports whether a charging task is queued.
func HasCharging(v *model.Vehicle) bool {
	return chargingIndex(v) >= 0
}

// Kinds lists the kinds of the queued tasks.
func Kinds(v *model.Vehicle) []model.TaskKind {
	return v.QueueKinds()
}
