// Package pathingtest provides a testify mock of pathing.Service.
package pathingtest

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/kilianp07/agvfleet/core/model"
)

// MockService records planner calls.
type MockService struct {
	mock.Mock
}

// FindPath implements pathing.Service.
func (m *MockService) FindPath(ctx context.Context, from, to model.Point) ([]model.Waypoint, error) {
	args := m.Called(ctx, from, to)
	p, _ := args.Get(0).([]model.Waypoint)
	return p, args.Error(1)
}

// FindPathAvoiding implements pathing.Service.
func (m *MockService) FindPathAvoiding(ctx context.Context, from, to model.Point, blocked map[int64]struct{}) ([]model.Waypoint, error) {
	args := m.Called(ctx, from, to, blocked)
	p, _ := args.Get(0).([]model.Waypoint)
	return p, args.Error(1)
}

// Line returns waypoints at (1,0,0), (2,0,0)... with node ids equal to X.
func Line(n int) []model.Waypoint {
	out := make([]model.Waypoint, n)
	for i := range out {
		out[i] = model.Waypoint{Node: int64(i + 1), Pos: model.Point{X: float64(i + 1)}}
	}
	return out
}
