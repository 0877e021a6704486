package pathing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kilianp07/agvfleet/core/logger"
	"github.com/kilianp07/agvfleet/core/model"
)

// Adapter wraps a planner so that every call returns promptly with either a
// path owned by the caller or an error matching ErrUnreachable.
type Adapter struct {
	planner Service
	timeout time.Duration
	log     logger.Logger
}

// NewAdapter wraps planner. A zero timeout leaves calls bounded only by the
// caller's context.
func NewAdapter(planner Service, timeout time.Duration, log logger.Logger) *Adapter {
	return &Adapter{planner: planner, timeout: timeout, log: log}
}

type result struct {
	path []model.Waypoint
	err  error
}

// FindPath implements Service.
func (a *Adapter) FindPath(ctx context.Context, from, to model.Point) ([]model.Waypoint, error) {
	return a.call(ctx, func(ctx context.Context) ([]model.Waypoint, error) {
		return a.planner.FindPath(ctx, from, to)
	})
}

// FindPathAvoiding implements Service.
func (a *Adapter) FindPathAvoiding(ctx context.Context, from, to model.Point, blocked map[int64]struct{}) ([]model.Waypoint, error) {
	avoid := make(map[int64]struct{}, len(blocked))
	for id := range blocked {
		avoid[id] = struct{}{}
	}
	return a.call(ctx, func(ctx context.Context) ([]model.Waypoint, error) {
		return a.planner.FindPathAvoiding(ctx, from, to, avoid)
	})
}

func (a *Adapter) call(ctx context.Context, fn func(context.Context) ([]model.Waypoint, error)) ([]model.Waypoint, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}
	done := make(chan result, 1)
	go func() {
		p, err := fn(ctx)
		done <- result{path: p, err: err}
	}()
	select {
	case r := <-done:
		if r.err != nil {
			return nil, a.normalize(r.err)
		}
		return append([]model.Waypoint(nil), r.path...), nil
	case <-ctx.Done():
		if a.log != nil {
			a.log.Warnf("planner call abandoned: %v", ctx.Err())
		}
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, ctx.Err())
	}
}

func (a *Adapter) normalize(err error) error {
	if errors.Is(err, ErrUnreachable) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUnreachable, err)
}
