package fleet

import (
	"fmt"
	"time"
)

// DefaultTickIntervalMS is the default scheduler period.
const DefaultTickIntervalMS = 100

// Config controls the service loop.
type Config struct {
	TickIntervalMS int `json:"tick_interval_ms"`
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.TickIntervalMS == 0 {
		c.TickIntervalMS = DefaultTickIntervalMS
	}
}

// Validate checks the tick interval.
func (c Config) Validate() error {
	if c.TickIntervalMS <= 0 {
		return fmt.Errorf("tick_interval_ms must be > 0")
	}
	return nil
}

// Interval returns the tick period.
func (c Config) Interval() time.Duration {
	return time.Duration(c.TickIntervalMS) * time.Millisecond
}
