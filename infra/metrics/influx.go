package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/kilianp07/agvfleet/core/model"
	"github.com/kilianp07/agvfleet/core/vehiclestatus"
	"github.com/kilianp07/agvfleet/infra/logger"
)

// InfluxConfig locates the InfluxDB v2 bucket.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// InfluxSink writes vehicle status points to an InfluxDB instance using the
// official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns a
// vehiclestatus.NopSink if the health check fails.
func NewInfluxSinkWithFallback(cfg InfluxConfig) vehiclestatus.Sink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return vehiclestatus.NopSink{}
	}
	return sink
}

// OnVehicleStatus writes a vehicle_status point.
func (s *InfluxSink) OnVehicleStatus(st vehiclestatus.VehicleStatus) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	ts := st.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	p := write.NewPointWithMeasurement("vehicle_status").
		AddTag("vehicle_id", strconv.Itoa(st.VehicleID)).
		AddTag("task", st.TaskKind.String()).
		AddField("charge", round3(st.Charge)).
		AddField("x", round3(st.Position.X)).
		AddField("y", round3(st.Position.Y)).
		AddField("z", round3(st.Position.Z)).
		AddField("queue_length", st.QueueLength).
		AddField("low", st.Low).
		AddField("stalled", st.Stalled).
		SetTime(ts)
	if err := s.writeAPI.WritePoint(ctx, p); err != nil {
		s.log.Errorf("write vehicle status: %v", err)
	}
}

// OnTaskListChanged writes a task_queue point.
func (s *InfluxSink) OnTaskListChanged(id int, kinds []model.TaskKind) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	p := write.NewPointWithMeasurement("task_queue").
		AddTag("vehicle_id", strconv.Itoa(id)).
		AddField("length", len(kinds)).
		AddField("kinds", strings.Join(names, ",")).
		SetTime(time.Now())
	if err := s.writeAPI.WritePoint(ctx, p); err != nil {
		s.log.Errorf("write task queue: %v", err)
	}
}

// Close releases the client.
func (s *InfluxSink) Close() { s.client.Close() }

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
