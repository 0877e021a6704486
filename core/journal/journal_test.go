package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/agvfleet/core/events"
	"github.com/kilianp07/agvfleet/core/model"
	"github.com/kilianp07/agvfleet/infra/logger"
	"github.com/kilianp07/agvfleet/internal/eventbus"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()
	j, err := NewJSONLStore(filepath.Join(dir, "journal.jsonl"))
	require.NoError(t, err)
	s, err := NewSQLiteStore(filepath.Join(dir, "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return map[string]Store{"jsonl": j, "sqlite": s}
}

func TestStoresQueryVehicleZero(t *testing.T) {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, st.Append(ctx, FromEvent(events.TaskEvent{VehicleID: 0, TaskID: "z", Action: events.TaskEnqueued}, base)))
			require.NoError(t, st.Append(ctx, FromEvent(events.TaskEvent{VehicleID: 3, TaskID: "c", Action: events.TaskEnqueued}, base)))

			zero, err := st.Query(ctx, Query{}.ForVehicle(0))
			require.NoError(t, err)
			require.Len(t, zero, 1)
			assert.Equal(t, "z", zero[0].TaskID)

			all, err := st.Query(ctx, Query{})
			require.NoError(t, err)
			assert.Len(t, all, 2)
		})
	}
}

func TestStoresAppendQuery(t *testing.T) {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	recs := []Record{
		FromEvent(events.TaskEvent{VehicleID: 1, TaskID: "a", Kind: model.TaskTransport, Action: events.TaskEnqueued}, base),
		FromEvent(events.TaskEvent{VehicleID: 2, TaskID: "b", Kind: model.TaskCharging, Action: events.TaskChargingInserted}, base.Add(time.Second)),
		FromEvent(events.TaskEvent{VehicleID: 1, TaskID: "a", Kind: model.TaskTransport, Action: events.TaskCompleted}, base.Add(2*time.Second)),
	}
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for _, r := range recs {
				require.NoError(t, st.Append(ctx, r))
			}
			all, err := st.Query(ctx, Query{})
			require.NoError(t, err)
			require.Len(t, all, 3)
			assert.Equal(t, "transport", all[0].Kind)
			assert.True(t, all[1].Timestamp.Equal(base.Add(time.Second)))

			byVehicle, err := st.Query(ctx, Query{}.ForVehicle(1))
			require.NoError(t, err)
			assert.Len(t, byVehicle, 2)

			byAction, err := st.Query(ctx, Query{Action: events.TaskChargingInserted})
			require.NoError(t, err)
			require.Len(t, byAction, 1)
			assert.Equal(t, 2, byAction[0].VehicleID)

			window, err := st.Query(ctx, Query{Start: base.Add(time.Second), End: base.Add(time.Second)})
			require.NoError(t, err)
			assert.Len(t, window, 1)
		})
	}
}

func TestOpen(t *testing.T) {
	s, err := Open(Config{})
	require.NoError(t, err)
	assert.Nil(t, s)

	_, err = Open(Config{Backend: "csv"})
	assert.Error(t, err)

	s, err = Open(Config{Backend: "jsonl", Path: filepath.Join(t.TempDir(), "j.jsonl")})
	require.NoError(t, err)
	assert.IsType(t, &JSONLStore{}, s)
}

func TestConsume(t *testing.T) {
	st, err := NewJSONLStore(filepath.Join(t.TempDir(), "j.jsonl"))
	require.NoError(t, err)
	bus := eventbus.NewTyped[events.TaskEvent]()
	ch := bus.Subscribe()
	done := make(chan struct{})
	go func() {
		Consume(context.Background(), ch, st, logger.NopLogger{})
		close(done)
	}()
	bus.Publish(events.TaskEvent{VehicleID: 4, Action: events.TaskStalled, Detail: "node 3"})
	bus.Close()
	<-done

	out, err := st.Query(context.Background(), Query{})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "node 3", out[0].Detail)
}
