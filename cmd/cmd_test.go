package cmd

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/agvfleet/core/model"
	"github.com/kilianp07/agvfleet/infra/logger"
)

func TestParsePoint(t *testing.T) {
	p, err := parsePoint("1, 2.5,-3")
	require.NoError(t, err)
	assert.Equal(t, model.Point{X: 1, Y: 2.5, Z: -3}, p)

	_, err = parsePoint("1,2")
	assert.Error(t, err)
	_, err = parsePoint("a,b,c")
	assert.Error(t, err)
}

func TestServerURL(t *testing.T) {
	assert.Equal(t, "http://localhost:8080", serverURL(":8080"))
	assert.Equal(t, "http://10.0.0.2:9000", serverURL("10.0.0.2:9000"))
}

func TestFetchAndPrintVehicles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/vehicles", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":3,"charge":42.5,"current_task":"Transport","position":{"x":1,"y":0,"z":2},"queue_kinds":["Charging","Delivery"]}]`))
	}))
	defer srv.Close()

	vehicles, err := fetchVehicles(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Len(t, vehicles, 1)
	assert.Equal(t, model.TaskTransport, vehicles[0].CurrentTask)

	var buf bytes.Buffer
	require.NoError(t, printVehicles(&buf, vehicles))
	out := buf.String()
	assert.Contains(t, out, "CHARGE")
	assert.Contains(t, out, "42.5")
	assert.Contains(t, out, "charging,delivery")
}

func TestFetchVehiclesStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := fetchVehicles(context.Background(), srv.URL)
	assert.Error(t, err)
}

func TestApplyLogLevel(t *testing.T) {
	t.Cleanup(func() {
		logLevel = ""
		_ = logger.SetLevel("")
	})
	logLevel = "debug"
	require.NoError(t, applyLogLevel(rootCmd, nil))
	logLevel = "chatty"
	assert.Error(t, applyLogLevel(rootCmd, nil))

	require.NotNil(t, rootCmd.PersistentFlags().Lookup("log-level"))
}
