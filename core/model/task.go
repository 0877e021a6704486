package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TaskKind enumerates the kinds of work a vehicle can perform.
type TaskKind int

const (
	TaskIdle TaskKind = iota
	TaskPickup
	TaskTransport
	TaskDelivery
	TaskCharging
)

// String returns the lower-case name of the kind.
func (k TaskKind) String() string {
	switch k {
	case TaskIdle:
		return "idle"
	case TaskPickup:
		return "pickup"
	case TaskTransport:
		return "transport"
	case TaskDelivery:
		return "delivery"
	case TaskCharging:
		return "charging"
	default:
		return "unknown"
	}
}

// ParseTaskKind converts a name such as "transport" into a TaskKind.
func ParseTaskKind(s string) (TaskKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "idle":
		return TaskIdle, nil
	case "pickup":
		return TaskPickup, nil
	case "transport":
		return TaskTransport, nil
	case "delivery":
		return TaskDelivery, nil
	case "charging":
		return TaskCharging, nil
	default:
		return TaskIdle, fmt.Errorf("unknown task kind %q", s)
	}
}

// MarshalText encodes the kind by name.
func (k TaskKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText decodes a kind name.
func (k *TaskKind) UnmarshalText(b []byte) error {
	v, err := ParseTaskKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// Task is a unit of movement work assigned to a vehicle.
type Task struct {
	ID        string     `json:"id"`
	Kind      TaskKind   `json:"kind"`
	Target    Point      `json:"target"`
	Path      []Waypoint `json:"path"`
	Priority  bool       `json:"priority"`
	CreatedAt time.Time  `json:"created_at"`
}

// NewTask returns a task with a fresh identifier.
func NewTask(kind TaskKind, target Point, path []Waypoint) Task {
	return Task{
		ID:        uuid.NewString(),
		Kind:      kind,
		Target:    target,
		Path:      path,
		CreatedAt: time.Now().UTC(),
	}
}

// Clone returns a copy that shares no memory with t.
func (t Task) Clone() Task {
	c := t
	if t.Path != nil {
		c.Path = append([]Waypoint(nil), t.Path...)
	}
	return c
}

// PathContains reports whether node appears in the path at or after index from.
func (t Task) PathContains(node int64, from int) bool {
	if from < 0 {
		from = 0
	}
	for i := from; i < len(t.Path); i++ {
		if t.Path[i].Node == node {
			return true
		}
	}
	return false
}
