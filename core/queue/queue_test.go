package queue

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/kilianp07/agvfleet/core/model"
	"github.com/kilianp07/agvfleet/core/pathing"
	"github.com/kilianp07/agvfleet/core/pathing/pathingtest"
)

var charger = model.Point{X: 10, Z: 10}

func TestEnqueueFIFO(t *testing.T) {
	m := NewManager(nil)
	v := &model.Vehicle{ID: 1}
	m.Enqueue(v, model.NewTask(model.TaskPickup, model.Point{}, nil))
	m.Enqueue(v, model.NewTask(model.TaskDelivery, model.Point{}, nil))
	assert.Equal(t, []model.TaskKind{model.TaskPickup, model.TaskDelivery}, Kinds(v))
}

func TestInsertPriorityFront(t *testing.T) {
	paths := &pathingtest.MockService{}
	paths.On("FindPath", mock.Anything, model.Point{}, charger).Return(pathingtest.Line(2), nil).Once()
	m := NewManager(paths)
	v := &model.Vehicle{ID: 1}
	m.Enqueue(v, model.NewTask(model.TaskTransport, model.Point{}, nil))
	m.Enqueue(v, model.NewTask(model.TaskDelivery, model.Point{}, nil))

	task, err := m.InsertPriority(context.Background(), v, charger)
	require.NoError(t, err)
	assert.True(t, task.Priority)
	assert.Equal(t, charger, task.Target)
	assert.Equal(t, []model.TaskKind{model.TaskCharging, model.TaskTransport, model.TaskDelivery}, Kinds(v))
	paths.AssertExpectations(t)
}

func TestInsertPriorityGuard(t *testing.T) {
	paths := &pathingtest.MockService{}
	paths.On("FindPath", mock.Anything, mock.Anything, mock.Anything).Return(pathingtest.Line(1), nil).Once()
	m := NewManager(paths)
	v := &model.Vehicle{ID: 1}

	_, err := m.InsertPriority(context.Background(), v, charger)
	require.NoError(t, err)
	_, err = m.InsertPriority(context.Background(), v, charger)
	assert.ErrorIs(t, err, ErrDuplicatePriority)
	assert.Len(t, v.Queue, 1)
	paths.AssertNumberOfCalls(t, "FindPath", 1)
}

func TestPromoteCharging(t *testing.T) {
	m := NewManager(nil)
	v := &model.Vehicle{ID: 1}
	m.Enqueue(v, model.NewTask(model.TaskTransport, model.Point{}, nil))
	m.Enqueue(v, model.NewTask(model.TaskCharging, charger, nil))
	m.Enqueue(v, model.NewTask(model.TaskDelivery, model.Point{}, nil))

	task, moved := m.PromoteCharging(v)
	require.True(t, moved)
	assert.True(t, task.Priority)
	assert.Equal(t, []model.TaskKind{model.TaskCharging, model.TaskTransport, model.TaskDelivery}, Kinds(v))
	assert.True(t, v.Queue[0].Priority)
	assert.False(t, v.Queue[1].Priority)

	_, moved = m.PromoteCharging(v)
	assert.False(t, moved)

	empty := &model.Vehicle{ID: 2}
	_, moved = m.PromoteCharging(empty)
	assert.False(t, moved)
}

func TestInsertPriorityUnreachable(t *testing.T) {
	paths := &pathingtest.MockService{}
	paths.On("FindPath", mock.Anything, mock.Anything, mock.Anything).Return(nil, pathing.ErrUnreachable)
	m := NewManager(paths)
	v := &model.Vehicle{ID: 3}
	m.Enqueue(v, model.NewTask(model.TaskPickup, model.Point{}, nil))

	_, err := m.InsertPriority(context.Background(), v, charger)
	assert.ErrorIs(t, err, pathing.ErrUnreachable)
	assert.Equal(t, []model.TaskKind{model.TaskPickup}, Kinds(v))
}

func TestDequeueNext(t *testing.T) {
	m := NewManager(nil)
	v := &model.Vehicle{ID: 1}
	_, ok := m.DequeueNext(v)
	assert.False(t, ok)

	first := model.NewTask(model.TaskPickup, model.Point{}, nil)
	m.Enqueue(v, first)
	m.Enqueue(v, model.NewTask(model.TaskDelivery, model.Point{}, nil))

	busy := model.NewTask(model.TaskTransport, model.Point{}, nil)
	v.Active = &busy
	_, ok = m.DequeueNext(v)
	assert.False(t, ok, "busy vehicle must not dequeue")
	assert.Len(t, v.Queue, 2)

	v.Active = nil
	got, ok := m.DequeueNext(v)
	require.True(t, ok)
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, []model.TaskKind{model.TaskDelivery}, Kinds(v))
}

func TestPriorityInsertionProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		paths := &pathingtest.MockService{}
		paths.On("FindPath", mock.Anything, mock.Anything, mock.Anything).Return(pathingtest.Line(1), nil)
		m := NewManager(paths)
		v := &model.Vehicle{ID: 1}
		kinds := rapid.SliceOf(rapid.SampledFrom([]model.TaskKind{
			model.TaskPickup, model.TaskTransport, model.TaskDelivery,
		})).Draw(t, "kinds")
		for _, k := range kinds {
			m.Enqueue(v, model.NewTask(k, model.Point{}, nil))
		}
		inserts := rapid.IntRange(1, 4).Draw(t, "inserts")
		for i := 0; i < inserts; i++ {
			_, _ = m.InsertPriority(context.Background(), v, charger)
		}

		got := Kinds(v)
		if got[0] != model.TaskCharging {
			t.Fatalf("front is %v", got[0])
		}
		charging := 0
		for _, k := range got {
			if k == model.TaskCharging {
				charging++
			}
		}
		if charging != 1 {
			t.Fatalf("%d charging tasks queued", charging)
		}
		for i, k := range kinds {
			if got[i+1] != k {
				t.Fatalf("order changed at %d: %v != %v", i, got[i+1], k)
			}
		}
	})
}
