package config

import (
	"github.com/kilianp07/agvfleet/core/executor"
	"github.com/kilianp07/agvfleet/core/fleet"
	"github.com/kilianp07/agvfleet/core/model"
)

// SchedulerConfig groups the tick period and the motion parameters.
type SchedulerConfig struct {
	TickIntervalMS int     `json:"tick_interval_ms"`
	Speed          float64 `json:"speed"`
	Epsilon        float64 `json:"epsilon"`
}

// Fleet returns the coordinator loop settings.
func (c SchedulerConfig) Fleet() fleet.Config {
	return fleet.Config{TickIntervalMS: c.TickIntervalMS}
}

// Executor returns the motion settings.
func (c SchedulerConfig) Executor() executor.Config {
	return executor.Config{Speed: c.Speed, Epsilon: c.Epsilon}
}

// SetDefaults fills unset fields.
func (c *SchedulerConfig) SetDefaults() {
	f := c.Fleet()
	f.SetDefaults()
	e := c.Executor()
	e.SetDefaults()
	c.TickIntervalMS, c.Speed, c.Epsilon = f.TickIntervalMS, e.Speed, e.Epsilon
}

// Validate checks tick and motion settings.
func (c SchedulerConfig) Validate() error {
	if err := c.Fleet().Validate(); err != nil {
		return err
	}
	return c.Executor().Validate()
}

// VehicleConfig registers a vehicle at startup. A nil Charge starts full.
type VehicleConfig struct {
	ID     int      `json:"id"`
	X      float64  `json:"x"`
	Y      float64  `json:"y"`
	Z      float64  `json:"z"`
	Charge *float64 `json:"charge"`
}

// Position returns the start point.
func (v VehicleConfig) Position() model.Point {
	return model.Point{X: v.X, Y: v.Y, Z: v.Z}
}

// InitialCharge returns the configured charge or a full battery.
func (v VehicleConfig) InitialCharge() float64 {
	if v.Charge == nil {
		return model.MaxCharge
	}
	return *v.Charge
}

// HTTPConfig configures the API server.
type HTTPConfig struct {
	Address string `json:"address"`
	// JournalToken, when set, is required as a bearer token on /api/journal.
	JournalToken string `json:"journal_token"`
}

// SetDefaults fills unset fields.
func (c *HTTPConfig) SetDefaults() {
	if c.Address == "" {
		c.Address = ":8080"
	}
}
