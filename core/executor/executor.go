// Package executor moves vehicles along the path of their active task.
package executor

import (
	"fmt"
	"time"

	"github.com/kilianp07/agvfleet/core/energy"
	"github.com/kilianp07/agvfleet/core/model"
)

const (
	DefaultSpeed   = 2.0
	DefaultEpsilon = 0.1
)

// Config sets travel speed in units per second and the arrival tolerance.
type Config struct {
	Speed   float64 `json:"speed"`
	Epsilon float64 `json:"epsilon"`
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.Speed == 0 {
		c.Speed = DefaultSpeed
	}
	if c.Epsilon == 0 {
		c.Epsilon = DefaultEpsilon
	}
}

// Validate checks that speed and tolerance are positive.
func (c Config) Validate() error {
	if c.Speed <= 0 {
		return fmt.Errorf("speed must be > 0")
	}
	if c.Epsilon <= 0 {
		return fmt.Errorf("epsilon must be > 0")
	}
	return nil
}

// State is the execution progress of one vehicle. Index points at the next
// waypoint to reach.
type State struct {
	Index   int
	Stalled bool
}

// Replace swaps the path of task and restarts it from the first waypoint.
func (s *State) Replace(task *model.Task, path []model.Waypoint) {
	task.Path = path
	s.Index = 0
	s.Stalled = false
}

// Stall freezes progress until the next Replace.
func (s *State) Stall() { s.Stalled = true }

func (s *State) reset() {
	s.Index = 0
	s.Stalled = false
}

// Outcome summarises one Step.
type Outcome struct {
	Moved     bool
	Reached   int         // waypoints reached during the step
	Completed *model.Task // set when the active task finished
	Stalled   bool
}

// Executor advances active tasks.
type Executor struct {
	cfg    Config
	energy *energy.Model
}

// New returns an Executor. energy may be nil when recharge on completion is
// not wanted.
func New(cfg Config, e *energy.Model) (*Executor, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Executor{cfg: cfg, energy: e}, nil
}

// Config returns the effective configuration.
func (x *Executor) Config() Config { return x.cfg }

// Start makes task the active task of v.
func (x *Executor) Start(v *model.Vehicle, st *State, task model.Task) {
	t := task.Clone()
	v.Active = &t
	st.reset()
}

// Moving reports whether v will travel on its next step.
func (x *Executor) Moving(v *model.Vehicle, st *State) bool {
	return v.Active != nil && !st.Stalled && st.Index < len(v.Active.Path)
}

// Step moves v toward its next waypoints for the elapsed time. Distance left
// over after reaching a waypoint is spent on the following one.
func (x *Executor) Step(v *model.Vehicle, st *State, elapsed time.Duration) Outcome {
	var out Outcome
	if v.Active == nil {
		return out
	}
	if st.Stalled {
		out.Stalled = true
		return out
	}

	budget := x.cfg.Speed * elapsed.Seconds()
	path := v.Active.Path
	for st.Index < len(path) {
		target := path[st.Index].Pos
		d := v.Position.Distance(target)
		if d < x.cfg.Epsilon {
			st.Index++
			out.Reached++
			continue
		}
		if budget <= 0 {
			break
		}
		v.Position = v.Position.MoveTowards(target, budget)
		budget -= min(budget, d)
		out.Moved = true
		if v.Position.Distance(target) >= x.cfg.Epsilon {
			break
		}
		st.Index++
		out.Reached++
	}

	if st.Index >= len(path) {
		done := *v.Active
		v.Active = nil
		st.reset()
		if done.Kind == model.TaskCharging && x.energy != nil {
			x.energy.Recharge(v)
		}
		out.Completed = &done
	}
	return out
}
