package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/agvfleet/core/energy"
	"github.com/kilianp07/agvfleet/core/events"
	"github.com/kilianp07/agvfleet/core/executor"
	"github.com/kilianp07/agvfleet/core/fleet"
	"github.com/kilianp07/agvfleet/core/journal"
	"github.com/kilianp07/agvfleet/core/model"
	"github.com/kilianp07/agvfleet/core/pathing"
	"github.com/kilianp07/agvfleet/core/replan"
	"github.com/kilianp07/agvfleet/core/vehiclestatus"
	"github.com/kilianp07/agvfleet/infra/logger"
	"github.com/kilianp07/agvfleet/infra/planner"
)

type testServer struct {
	srv   *httptest.Server
	coord *fleet.Coordinator
	store journal.Store
}

func newTestServer(t *testing.T) testServer {
	t.Helper()
	g, err := planner.New(planner.Config{
		Nodes: []planner.Node{{ID: 1}, {ID: 2, X: 1}, {ID: 3, X: 2}, {ID: 4, X: 1, Z: 2}},
		Edges: []planner.Edge{{From: 1, To: 2}, {From: 2, To: 3}, {From: 1, To: 4}, {From: 4, To: 3}},
	})
	require.NoError(t, err)
	e, err := energy.New(energy.Config{})
	require.NoError(t, err)
	x, err := executor.New(executor.Config{}, e)
	require.NoError(t, err)
	status := vehiclestatus.NewMemoryStore()
	coord := fleet.NewCoordinator(pathing.NewAdapter(g, time.Second, logger.NopLogger{}), e, x, nil, status, logger.NopLogger{})

	store, err := journal.NewJSONLStore(filepath.Join(t.TempDir(), "journal.jsonl"))
	require.NoError(t, err)
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewCounter(prometheus.CounterOpts{Name: "agv_test_total", Help: "test"}))

	srv := httptest.NewServer(NewRouter(Deps{
		Fleet:        coord,
		Status:       status,
		Journal:      store,
		JournalToken: "secret",
		Gatherer:     reg,
	}))
	t.Cleanup(srv.Close)
	return testServer{srv: srv, coord: coord, store: store}
}

func (s testServer) do(t *testing.T, method, path, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, s.srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestVehicleLifecycle(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, "POST", "/api/vehicles", `{"id": 2, "position": {"x": 0, "y": 0, "z": 0}}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp = s.do(t, "POST", "/api/vehicles", `{"id": 2}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = s.do(t, "POST", "/api/vehicles/2/tasks", `{"kind": "transport", "target": {"x": 2, "y": 0, "z": 0}}`)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	var task model.Task
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&task))
	assert.Equal(t, model.TaskTransport, task.Kind)
	require.Len(t, task.Path, 3)

	s.coord.Tick(context.Background(), 100*time.Millisecond)
	s.coord.Tick(context.Background(), 100*time.Millisecond)

	resp = s.do(t, "POST", "/api/faults", `{"node_id": 2}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var rep replan.Report
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rep))
	assert.Equal(t, []int{2}, rep.Replanned)

	resp = s.do(t, "GET", "/api/vehicles/2", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var snap model.VehicleSnapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	require.NotNil(t, snap.Active)
	for _, wp := range snap.Active.Path {
		assert.NotEqual(t, int64(2), wp.Node)
	}
	assert.Equal(t, 0, snap.WaypointIndex)

	resp = s.do(t, "GET", "/api/vehicles", "")
	var all []model.VehicleSnapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&all))
	assert.Len(t, all, 1)

	resp = s.do(t, "GET", "/api/vehicles/status", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var entries []vehiclestatus.Entry
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&entries))
	require.Len(t, entries, 1)
	assert.Equal(t, model.TaskTransport, entries[0].TaskKind)
}

func TestTaskRequestErrors(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.coord.RegisterVehicle(1, model.Point{}, 100))

	tests := []struct {
		path, body string
		want       int
	}{
		{"/api/vehicles/99/tasks", `{"kind": "pickup", "target": {"x": 1}}`, http.StatusNotFound},
		{"/api/vehicles/1/tasks", `{"kind": "idle", "target": {"x": 1}}`, http.StatusBadRequest},
		{"/api/vehicles/1/tasks", `{"kind": "teleport"}`, http.StatusBadRequest},
		{"/api/vehicles/abc/tasks", `{}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		resp := s.do(t, "POST", tt.path, tt.body)
		assert.Equal(t, tt.want, resp.StatusCode, tt.path+" "+tt.body)
	}
	resp := s.do(t, "GET", "/api/vehicles/99", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp = s.do(t, "POST", "/api/faults", `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestJournalRequiresToken(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.store.Append(context.Background(), journal.Record{
		Timestamp: time.Now(), VehicleID: 1, Kind: "pickup", Action: events.TaskEnqueued,
	}))

	resp := s.do(t, "GET", "/api/journal", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, err := http.NewRequest("GET", s.srv.URL+"/api/journal?vehicle_id=1", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer secret")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var recs []journal.Record
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&recs))
	assert.Len(t, recs, 1)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(t, "GET", "/metrics", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	buf := new(strings.Builder)
	_, _ = io.Copy(buf, resp.Body)
	assert.Contains(t, buf.String(), "agv_test_total")

	resp = s.do(t, "GET", "/healthz", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
