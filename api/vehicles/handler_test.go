package vehicles

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/agvfleet/core/model"
	"github.com/kilianp07/agvfleet/core/vehiclestatus"
)

func TestStatusHandler_Basic(t *testing.T) {
	store := vehiclestatus.NewMemoryStore()
	store.OnVehicleStatus(vehiclestatus.VehicleStatus{VehicleID: 1, Charge: 50})
	h := NewStatusHandler(store)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/api/vehicles/status", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var out []vehiclestatus.Entry
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, 50.0, out[0].Charge)
}

func TestStatusHandler_Filter(t *testing.T) {
	store := vehiclestatus.NewMemoryStore()
	store.OnVehicleStatus(vehiclestatus.VehicleStatus{VehicleID: 1, Low: true, TaskKind: model.TaskCharging})
	store.OnVehicleStatus(vehiclestatus.VehicleStatus{VehicleID: 2, TaskKind: model.TaskPickup})
	h := NewStatusHandler(store)

	for query, want := range map[string]int{"?low=true": 1, "?task=pickup": 2, "?task=charging&low=1": 1} {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest("GET", "/api/vehicles/status"+query, nil))
		require.Equal(t, http.StatusOK, rr.Code, query)
		var out []vehiclestatus.Entry
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
		require.Len(t, out, 1, query)
		assert.Equal(t, want, out[0].VehicleID, query)
	}
}

func TestStatusHandler_BadRequest(t *testing.T) {
	h := NewStatusHandler(vehiclestatus.NewMemoryStore())
	for _, query := range []string{"?low=maybe", "?task=flying"} {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest("GET", "/api/vehicles/status"+query, nil))
		assert.Equal(t, http.StatusBadRequest, rr.Code, query)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("POST", "/api/vehicles/status", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
