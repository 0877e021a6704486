package pathing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/agvfleet/core/model"
)

type stubPlanner struct {
	path    []model.Waypoint
	err     error
	delay   time.Duration
	blocked map[int64]struct{}
}

func (s *stubPlanner) FindPath(ctx context.Context, from, to model.Point) ([]model.Waypoint, error) {
	return s.FindPathAvoiding(ctx, from, to, nil)
}

func (s *stubPlanner) FindPathAvoiding(_ context.Context, _, _ model.Point, blocked map[int64]struct{}) ([]model.Waypoint, error) {
	s.blocked = blocked
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	return s.path, s.err
}

func TestAdapterReturnsCopy(t *testing.T) {
	stub := &stubPlanner{path: []model.Waypoint{{Node: 1}, {Node: 2}}}
	a := NewAdapter(stub, 0, nil)
	got, err := a.FindPath(context.Background(), model.Point{}, model.Point{X: 1})
	require.NoError(t, err)
	got[0].Node = 42
	assert.Equal(t, int64(1), stub.path[0].Node)
}

func TestAdapterWrapsPlannerErrors(t *testing.T) {
	a := NewAdapter(&stubPlanner{err: errors.New("graph not loaded")}, 0, nil)
	_, err := a.FindPath(context.Background(), model.Point{}, model.Point{})
	assert.ErrorIs(t, err, ErrUnreachable)

	a = NewAdapter(&stubPlanner{err: ErrUnreachable}, 0, nil)
	_, err = a.FindPath(context.Background(), model.Point{}, model.Point{})
	assert.ErrorIs(t, err, ErrUnreachable)
}

func TestAdapterTimeout(t *testing.T) {
	a := NewAdapter(&stubPlanner{delay: 200 * time.Millisecond}, 10*time.Millisecond, nil)
	start := time.Now()
	_, err := a.FindPath(context.Background(), model.Point{}, model.Point{})
	assert.ErrorIs(t, err, ErrUnreachable)
	assert.Less(t, time.Since(start), 150*time.Millisecond)
}

func TestAdapterCopiesAvoidSet(t *testing.T) {
	stub := &stubPlanner{}
	a := NewAdapter(stub, 0, nil)
	blocked := Blocked(7)
	_, err := a.FindPathAvoiding(context.Background(), model.Point{}, model.Point{}, blocked)
	require.NoError(t, err)
	assert.Contains(t, stub.blocked, int64(7))
	stub.blocked[8] = struct{}{}
	assert.NotContains(t, blocked, int64(8))
}
