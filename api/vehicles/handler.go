package vehicles

import (
	"net/http"
	"strconv"

	"github.com/kilianp07/agvfleet/api/respond"
	"github.com/kilianp07/agvfleet/core/model"
	"github.com/kilianp07/agvfleet/core/vehiclestatus"
)

// NewStatusHandler returns an HTTP handler exposing the latest pushed vehicle
// status via GET /api/vehicles/status. Query parameters: low=true and
// task=<kind>.
func NewStatusHandler(store *vehiclestatus.MemoryStore) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			respond.Error(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		var f vehiclestatus.Filter
		if s := r.URL.Query().Get("low"); s != "" {
			low, err := strconv.ParseBool(s)
			if err != nil {
				respond.Error(w, http.StatusBadRequest, "invalid low flag")
				return
			}
			f.LowOnly = low
		}
		if s := r.URL.Query().Get("task"); s != "" {
			k, err := model.ParseTaskKind(s)
			if err != nil {
				respond.Error(w, http.StatusBadRequest, err.Error())
				return
			}
			f.Task = &k
		}
		respond.JSON(w, http.StatusOK, store.List(f))
	})
}
