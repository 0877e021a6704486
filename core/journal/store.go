// Package journal keeps an append-only audit trail of task lifecycle events.
// It is never read back to restore scheduler state.
package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/agvfleet/core/events"
	"github.com/kilianp07/agvfleet/core/logger"
)

// Record is one journal line.
type Record struct {
	Timestamp time.Time         `json:"timestamp"`
	VehicleID int               `json:"vehicle_id"`
	TaskID    string            `json:"task_id,omitempty"`
	Kind      string            `json:"kind"`
	Action    events.TaskAction `json:"action"`
	Detail    string            `json:"detail,omitempty"`
}

// FromEvent converts a bus event into a record stamped with now.
func FromEvent(e events.TaskEvent, now time.Time) Record {
	return Record{
		Timestamp: now.UTC(),
		VehicleID: e.VehicleID,
		TaskID:    e.TaskID,
		Kind:      e.Kind.String(),
		Action:    e.Action,
		Detail:    e.Detail,
	}
}

// Query filters records. Zero values match everything; a nil VehicleID
// matches any vehicle.
type Query struct {
	Start     time.Time
	End       time.Time
	VehicleID *int
	Action    events.TaskAction
}

// ForVehicle returns a copy of q restricted to vehicle id.
func (q Query) ForVehicle(id int) Query {
	q.VehicleID = &id
	return q
}

func (q Query) match(r Record) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.VehicleID != nil && r.VehicleID != *q.VehicleID {
		return false
	}
	if q.Action != "" && r.Action != q.Action {
		return false
	}
	return true
}

// Store persists Records and supports querying.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}

// Config selects the backend.
type Config struct {
	Backend string `json:"backend"` // "jsonl", "sqlite" or empty to disable
	Path    string `json:"path"`
}

// Open returns the configured store, or nil when the journal is disabled.
func Open(cfg Config) (Store, error) {
	switch cfg.Backend {
	case "":
		return nil, nil
	case "jsonl":
		return NewJSONLStore(cfg.Path)
	case "sqlite":
		return NewSQLiteStore(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown journal backend %q", cfg.Backend)
	}
}

// Consume appends every event from ch to store until ctx ends or ch closes.
// Append failures are logged and do not stop consumption.
func Consume(ctx context.Context, ch <-chan events.TaskEvent, store Store, log logger.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-ch:
			if !ok {
				return
			}
			if err := store.Append(ctx, FromEvent(e, time.Now())); err != nil {
				log.Errorf("journal append: %v", err)
			}
		}
	}
}
