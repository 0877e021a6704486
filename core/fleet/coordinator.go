// Package fleet owns the vehicle registry and drives the scheduling tick:
// energy update, low-battery charging insertion, dequeue and execution.
package fleet

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kilianp07/agvfleet/core/charging"
	"github.com/kilianp07/agvfleet/core/energy"
	"github.com/kilianp07/agvfleet/core/events"
	"github.com/kilianp07/agvfleet/core/executor"
	"github.com/kilianp07/agvfleet/core/logger"
	"github.com/kilianp07/agvfleet/core/model"
	"github.com/kilianp07/agvfleet/core/pathing"
	"github.com/kilianp07/agvfleet/core/queue"
	"github.com/kilianp07/agvfleet/core/replan"
	"github.com/kilianp07/agvfleet/core/vehiclestatus"
	"github.com/kilianp07/agvfleet/internal/eventbus"
)

var (
	ErrUnknownVehicle   = errors.New("unknown vehicle")
	ErrDuplicateVehicle = errors.New("vehicle already registered")
	ErrInvalidTask      = errors.New("invalid task kind")
)

type entry struct {
	v         *model.Vehicle
	st        executor.State
	lowWarned bool
}

// Coordinator is the single writer of fleet state. Tick, HandleFault,
// RequestTask and RegisterVehicle are serialized by one mutex.
type Coordinator struct {
	mu       sync.Mutex
	vehicles map[int]*entry
	order    []int

	paths    pathing.Service
	energy   *energy.Model
	queue    *queue.Manager
	exec     *executor.Executor
	replan   *replan.Replanner
	chargers *charging.Locator
	sink     vehiclestatus.Sink
	taskBus  *eventbus.TypedBus[events.TaskEvent]
	log      logger.Logger
	now      func() time.Time
}

// NewCoordinator wires the scheduling components. sink and chargers may be nil.
func NewCoordinator(paths pathing.Service, e *energy.Model, x *executor.Executor, chargers *charging.Locator, sink vehiclestatus.Sink, log logger.Logger) *Coordinator {
	if sink == nil {
		sink = vehiclestatus.NopSink{}
	}
	if chargers == nil {
		chargers = charging.NewLocator(nil)
	}
	return &Coordinator{
		vehicles: make(map[int]*entry),
		paths:    paths,
		energy:   e,
		queue:    queue.NewManager(paths),
		exec:     x,
		replan:   replan.New(paths, log),
		chargers: chargers,
		sink:     sink,
		log:      log,
		now:      time.Now,
	}
}

// SetTaskEvents publishes task lifecycle events on bus.
func (c *Coordinator) SetTaskEvents(bus *eventbus.TypedBus[events.TaskEvent]) {
	c.mu.Lock()
	c.taskBus = bus
	c.mu.Unlock()
}

// RegisterVehicle adds a vehicle at start with the given charge, clamped to
// [0,100].
func (c *Coordinator) RegisterVehicle(id int, start model.Point, charge float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.vehicles[id]; ok {
		return fmt.Errorf("register vehicle %d: %w", id, ErrDuplicateVehicle)
	}
	v := &model.Vehicle{ID: id, Position: start, Charge: model.ClampCharge(charge)}
	c.vehicles[id] = &entry{v: v}
	c.order = append(c.order, id)
	fleetVehicles.Set(float64(len(c.order)))
	c.log.Infow("vehicle registered", map[string]any{"vehicle_id": id, "charge": v.Charge})
	c.emitStatus(c.vehicles[id])
	c.sink.OnTaskListChanged(id, nil)
	return nil
}

// RequestTask plans a path to target and appends the task to the vehicle's
// queue. Planning failures wrap pathing.ErrUnreachable. A second queued
// charging task is rejected with queue.ErrDuplicatePriority.
func (c *Coordinator) RequestTask(ctx context.Context, id int, kind model.TaskKind, target model.Point) (model.Task, error) {
	if kind <= model.TaskIdle || kind > model.TaskCharging {
		return model.Task{}, fmt.Errorf("request %s: %w", kind, ErrInvalidTask)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.vehicles[id]
	if !ok {
		unknownVehicle.Inc()
		c.log.Warnf("task request for unknown vehicle %d", id)
		return model.Task{}, fmt.Errorf("vehicle %d: %w", id, ErrUnknownVehicle)
	}
	if kind == model.TaskCharging && queue.HasCharging(e.v) {
		return model.Task{}, fmt.Errorf("vehicle %d: %w", id, queue.ErrDuplicatePriority)
	}
	path, err := c.paths.FindPath(ctx, e.v.Position, target)
	if err != nil {
		unreachableTotal.WithLabelValues("request").Inc()
		return model.Task{}, fmt.Errorf("plan %s for vehicle %d: %w", kind, id, err)
	}
	task := model.NewTask(kind, target, path)
	c.queue.Enqueue(e.v, task)
	c.sink.OnTaskListChanged(id, queue.Kinds(e.v))
	c.publish(e.v.ID, task, events.TaskEnqueued, "")
	return task.Clone(), nil
}

// Tick advances every vehicle by elapsed in registration order. A
// non-positive elapsed leaves all state untouched.
func (c *Coordinator) Tick(ctx context.Context, elapsed time.Duration) {
	if elapsed <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	start := time.Now()
	for _, id := range c.order {
		c.tickVehicle(ctx, c.vehicles[id], elapsed)
	}
	ticksTotal.Inc()
	tickDuration.Observe(time.Since(start).Seconds())
}

func (c *Coordinator) tickVehicle(ctx context.Context, e *entry, elapsed time.Duration) {
	v := e.v
	c.energy.Advance(v, elapsed, c.exec.Moving(v, &e.st))
	c.emitStatus(e)

	if c.energy.IsLow(v) {
		if v.ActiveKind() != model.TaskCharging {
			c.insertCharging(ctx, e)
		}
	} else {
		e.lowWarned = false
	}

	if v.Idle() {
		if task, ok := c.queue.DequeueNext(v); ok {
			c.exec.Start(v, &e.st, task)
			c.sink.OnTaskListChanged(v.ID, queue.Kinds(v))
			c.publish(v.ID, task, events.TaskStarted, "")
		}
	}

	out := c.exec.Step(v, &e.st, elapsed)
	if out.Completed != nil {
		tasksCompleted.WithLabelValues(out.Completed.Kind.String()).Inc()
		c.publish(v.ID, *out.Completed, events.TaskCompleted, "")
		c.log.Debugw("task completed", map[string]any{
			"vehicle_id": v.ID,
			"task_id":    out.Completed.ID,
			"kind":       out.Completed.Kind.String(),
			"charge":     v.Charge,
		})
	}
}

func (c *Coordinator) insertCharging(ctx context.Context, e *entry) {
	v := e.v
	if !e.lowWarned {
		c.log.Warnf("vehicle %d battery low (%.1f%% < %.1f%%)", v.ID, v.Charge, c.energy.Threshold())
		e.lowWarned = true
	}
	if queue.HasCharging(v) {
		if task, moved := c.queue.PromoteCharging(v); moved {
			chargingInserted.Inc()
			c.sink.OnTaskListChanged(v.ID, queue.Kinds(v))
			c.publish(v.ID, task, events.TaskChargingInserted, "promoted")
		}
		return
	}
	target := c.chargers.Nearest(v.Position)
	task, err := c.queue.InsertPriority(ctx, v, target)
	switch {
	case err == nil:
		chargingInserted.Inc()
		c.sink.OnTaskListChanged(v.ID, queue.Kinds(v))
		c.publish(v.ID, task, events.TaskChargingInserted, "")
	case errors.Is(err, queue.ErrDuplicatePriority):
	default:
		unreachableTotal.WithLabelValues("charging").Inc()
		c.log.Warnf("vehicle %d: charging insertion failed, retrying next tick: %v", v.ID, err)
		c.publish(v.ID, model.Task{Kind: model.TaskCharging, Target: target}, events.TaskChargingUnreachable, err.Error())
	}
}

// HandleFault reroutes every vehicle whose remaining path visits nodeID.
func (c *Coordinator) HandleFault(ctx context.Context, nodeID int64) replan.Report {
	c.mu.Lock()
	defer c.mu.Unlock()
	targets := make([]replan.Target, 0, len(c.order))
	for _, id := range c.order {
		e := c.vehicles[id]
		targets = append(targets, replan.Target{Vehicle: e.v, State: &e.st})
	}
	rep := c.replan.OnFault(ctx, nodeID, targets)
	detail := fmt.Sprintf("node %d", nodeID)
	for _, id := range rep.Replanned {
		replansTotal.WithLabelValues("replanned").Inc()
		c.publishActive(id, events.TaskReplanned, detail)
	}
	for _, id := range rep.Stalled {
		replansTotal.WithLabelValues("stalled").Inc()
		unreachableTotal.WithLabelValues("replan").Inc()
		c.publishActive(id, events.TaskStalled, detail)
	}
	for _, id := range rep.Failed {
		replansTotal.WithLabelValues("failed").Inc()
		c.publishActive(id, events.TaskStalled, detail)
	}
	if !rep.Affected() {
		c.log.Debugf("fault on node %d affects no active path", nodeID)
	}
	return rep
}

// Run ticks every interval and handles faults between ticks until ctx ends.
func (c *Coordinator) Run(ctx context.Context, interval time.Duration, faults <-chan events.Fault) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Tick(ctx, interval)
		case f, ok := <-faults:
			if !ok {
				faults = nil
				continue
			}
			c.log.Infow("fault received", map[string]any{"node_id": f.NodeID, "source": f.Source})
			c.HandleFault(ctx, f.NodeID)
		}
	}
}

// Snapshot returns copies of all vehicles in registration order.
func (c *Coordinator) Snapshot() []model.VehicleSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.VehicleSnapshot, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.snapshot(c.vehicles[id]))
	}
	return out
}

// Vehicle returns a copy of one vehicle.
func (c *Coordinator) Vehicle(id int) (model.VehicleSnapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.vehicles[id]
	if !ok {
		return model.VehicleSnapshot{}, false
	}
	return c.snapshot(e), true
}

// VehicleCount returns the number of registered vehicles.
func (c *Coordinator) VehicleCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.order)
}

func (c *Coordinator) snapshot(e *entry) model.VehicleSnapshot {
	s := e.v.Snapshot()
	s.WaypointIndex = e.st.Index
	s.Stalled = e.st.Stalled
	return s
}

func (c *Coordinator) emitStatus(e *entry) {
	v := e.v
	c.sink.OnVehicleStatus(vehiclestatus.VehicleStatus{
		VehicleID:   v.ID,
		Charge:      v.Charge,
		TaskKind:    v.ActiveKind(),
		Position:    v.Position,
		Low:         c.energy.IsLow(v),
		Stalled:     e.st.Stalled,
		QueueLength: len(v.Queue),
		Time:        c.now().UTC(),
	})
}

func (c *Coordinator) publish(vehicleID int, task model.Task, action events.TaskAction, detail string) {
	if c.taskBus == nil {
		return
	}
	c.taskBus.Publish(events.TaskEvent{
		VehicleID: vehicleID,
		TaskID:    task.ID,
		Kind:      task.Kind,
		Action:    action,
		Detail:    detail,
	})
}

func (c *Coordinator) publishActive(vehicleID int, action events.TaskAction, detail string) {
	var task model.Task
	if a := c.vehicles[vehicleID].v.Active; a != nil {
		task = *a
	}
	c.publish(vehicleID, task, action, detail)
}
