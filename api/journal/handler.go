// Package journal exposes the task journal over HTTP.
package journal

import (
	"net/http"
	"strconv"
	"time"

	"github.com/kilianp07/agvfleet/api/respond"
	"github.com/kilianp07/agvfleet/core/events"
	corejournal "github.com/kilianp07/agvfleet/core/journal"
)

// NewHandler returns an HTTP handler exposing journal records via
// GET /api/journal. Requests must include an Authorization header with
// "Bearer <token>" when token is non-empty.
func NewHandler(store corejournal.Store, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token != "" {
			auth := r.Header.Get("Authorization")
			if auth != "Bearer "+token {
				respond.Error(w, http.StatusUnauthorized, "unauthorized")
				return
			}
		}
		q := corejournal.Query{}
		if s := r.URL.Query().Get("start"); s != "" {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				q.Start = t
			}
		}
		if s := r.URL.Query().Get("end"); s != "" {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				q.End = t
			}
		}
		if s := r.URL.Query().Get("vehicle_id"); s != "" {
			id, err := strconv.Atoi(s)
			if err != nil {
				respond.Error(w, http.StatusBadRequest, "invalid vehicle_id")
				return
			}
			q = q.ForVehicle(id)
		}
		q.Action = events.TaskAction(r.URL.Query().Get("action"))
		records, err := store.Query(r.Context(), q)
		if err != nil {
			respond.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		if records == nil {
			records = []corejournal.Record{}
		}
		respond.JSON(w, http.StatusOK, records)
	})
}
