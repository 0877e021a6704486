// Package pathing defines the contract with the external path planner and an
// adapter that bounds each planning call.
package pathing

import (
	"context"
	"errors"

	"github.com/kilianp07/agvfleet/core/model"
)

// ErrUnreachable is returned when no route exists between two points.
var ErrUnreachable = errors.New("no route to target")

// Service resolves paths between workspace points.
type Service interface {
	// FindPath returns the waypoints leading from one point to another.
	FindPath(ctx context.Context, from, to model.Point) ([]model.Waypoint, error)
	// FindPathAvoiding returns a path that never visits a blocked node.
	FindPathAvoiding(ctx context.Context, from, to model.Point, blocked map[int64]struct{}) ([]model.Waypoint, error)
}

// Blocked builds an avoid-set from node ids.
func Blocked(ids ...int64) map[int64]struct{} {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
