// Package energy implements the per-vehicle charge model: drain while idle or
// working, charge while a charging task is active, and a low-battery threshold.
package energy

import (
	"fmt"
	"time"

	"github.com/kilianp07/agvfleet/core/model"
)

const (
	DefaultDrainRate    = 0.5
	DefaultChargeRate   = 2.0
	DefaultLowThreshold = 15.0

	MinLowThreshold = 10.0
	MaxLowThreshold = 30.0
)

// Config holds the rates in percent per second and the low-battery threshold
// in percent.
type Config struct {
	DrainRate float64 `json:"drain_rate"`
	// MovingDrainRate replaces DrainRate while the vehicle is travelling.
	// Zero keeps a single fleet-level rate.
	MovingDrainRate float64 `json:"moving_drain_rate"`
	ChargeRate      float64 `json:"charge_rate"`
	LowThreshold    float64 `json:"low_threshold"`
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.DrainRate == 0 {
		c.DrainRate = DefaultDrainRate
	}
	if c.ChargeRate == 0 {
		c.ChargeRate = DefaultChargeRate
	}
	if c.LowThreshold == 0 {
		c.LowThreshold = DefaultLowThreshold
	}
}

// Validate checks rates and threshold bounds.
func (c Config) Validate() error {
	if c.DrainRate < 0 || c.MovingDrainRate < 0 || c.ChargeRate < 0 {
		return fmt.Errorf("energy rates must not be negative")
	}
	if c.LowThreshold < MinLowThreshold || c.LowThreshold > MaxLowThreshold {
		return fmt.Errorf("low_threshold %.1f outside [%.0f, %.0f]", c.LowThreshold, MinLowThreshold, MaxLowThreshold)
	}
	return nil
}

// Model advances vehicle charge levels. It holds no per-vehicle state.
type Model struct {
	cfg Config
}

// New returns a Model using cfg with defaults applied.
func New(cfg Config) (*Model, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Model{cfg: cfg}, nil
}

// Config returns the effective configuration.
func (m *Model) Config() Config { return m.cfg }

// Threshold returns the low-battery threshold.
func (m *Model) Threshold() float64 { return m.cfg.LowThreshold }

// Advance updates the charge of v for the elapsed time and returns the new
// level. A Charging task raises the charge, anything else drains it. moving
// selects MovingDrainRate when one is configured.
func (m *Model) Advance(v *model.Vehicle, elapsed time.Duration, moving bool) float64 {
	secs := elapsed.Seconds()
	if secs <= 0 {
		return v.Charge
	}
	if v.ActiveKind() == model.TaskCharging {
		v.Charge += m.cfg.ChargeRate * secs
	} else {
		rate := m.cfg.DrainRate
		if moving && m.cfg.MovingDrainRate > 0 {
			rate = m.cfg.MovingDrainRate
		}
		v.Charge -= rate * secs
	}
	v.Charge = model.ClampCharge(v.Charge)
	return v.Charge
}

// IsLow reports whether v is strictly below the threshold.
func (m *Model) IsLow(v *model.Vehicle) bool {
	return v.Charge < m.cfg.LowThreshold
}

// Recharge fills the battery on arrival at a charger.
func (m *Model) Recharge(v *model.Vehicle) {
	v.Charge = model.MaxCharge
}
