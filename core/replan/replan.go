// Package replan reroutes vehicles whose remaining path crosses a blocked node.
package replan

import (
	"context"
	"errors"

	"github.com/kilianp07/agvfleet/core/executor"
	"github.com/kilianp07/agvfleet/core/logger"
	"github.com/kilianp07/agvfleet/core/model"
	"github.com/kilianp07/agvfleet/core/pathing"
)

// Target is a vehicle together with its execution progress.
type Target struct {
	Vehicle *model.Vehicle
	State   *executor.State
}

// Report lists the vehicles affected by one fault.
type Report struct {
	NodeID    int64 `json:"node_id"`
	Replanned []int `json:"replanned"`
	Stalled   []int `json:"stalled"`
	Failed    []int `json:"failed"` // planner errors other than unreachable
}

// Affected reports whether any vehicle was touched.
func (r Report) Affected() bool {
	return len(r.Replanned)+len(r.Stalled)+len(r.Failed) > 0
}

// Replanner asks the path service for detours.
type Replanner struct {
	paths pathing.Service
	log   logger.Logger
}

// New returns a Replanner.
func New(paths pathing.Service, log logger.Logger) *Replanner {
	return &Replanner{paths: paths, log: log}
}

// OnFault replans each target whose active task still has to visit nodeID.
// Each affected vehicle gets exactly one planning attempt. When no detour
// exists the vehicle is stalled and keeps its previous path.
func (r *Replanner) OnFault(ctx context.Context, nodeID int64, targets []Target) Report {
	rep := Report{NodeID: nodeID}
	for _, t := range targets {
		v := t.Vehicle
		if v.Active == nil || !v.Active.PathContains(nodeID, t.State.Index) {
			continue
		}
		path, err := r.paths.FindPathAvoiding(ctx, v.Position, v.Active.Target, pathing.Blocked(nodeID))
		if err != nil {
			t.State.Stall()
			if errors.Is(err, pathing.ErrUnreachable) {
				rep.Stalled = append(rep.Stalled, v.ID)
			} else {
				rep.Failed = append(rep.Failed, v.ID)
			}
			r.log.Warnf("vehicle %d stalled: node %d blocked and no detour: %v", v.ID, nodeID, err)
			continue
		}
		t.State.Replace(v.Active, path)
		rep.Replanned = append(rep.Replanned, v.ID)
		r.log.Infow("path replanned", map[string]any{
			"vehicle_id": v.ID,
			"node_id":    nodeID,
			"waypoints":  len(path),
		})
	}
	return rep
}
