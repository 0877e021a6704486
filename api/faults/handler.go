// Package faults exposes manual fault injection over HTTP.
package faults

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/kilianp07/agvfleet/api/respond"
	"github.com/kilianp07/agvfleet/core/replan"
)

// Handler reroutes vehicles around a blocked node.
type Handler interface {
	HandleFault(ctx context.Context, nodeID int64) replan.Report
}

type faultRequest struct {
	NodeID *int64 `json:"node_id"`
}

// NewHandler returns POST /api/faults. The body is {"node_id": N} and the
// response lists the replanned and stalled vehicles.
func NewHandler(h Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			respond.Error(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		var req faultRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.NodeID == nil {
			respond.Error(w, http.StatusBadRequest, "node_id is required")
			return
		}
		respond.JSON(w, http.StatusOK, h.HandleFault(r.Context(), *req.NodeID))
	})
}
