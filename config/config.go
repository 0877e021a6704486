package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/agvfleet/core/energy"
	"github.com/kilianp07/agvfleet/core/journal"
	"github.com/kilianp07/agvfleet/core/model"
	"github.com/kilianp07/agvfleet/infra/metrics"
	"github.com/kilianp07/agvfleet/infra/mqtt"
	"github.com/kilianp07/agvfleet/infra/planner"
)

type Config struct {
	Scheduler SchedulerConfig `json:"scheduler"`
	Energy    energy.Config   `json:"energy"`
	Planner   planner.Config  `json:"planner"`
	Chargers  []model.Point   `json:"chargers"`
	Vehicles  []VehicleConfig `json:"vehicles"`
	MQTT      mqtt.Config     `json:"mqtt"`
	HTTP      HTTPConfig      `json:"http"`
	Metrics   metrics.Config  `json:"metrics"`
	Journal   journal.Config  `json:"journal"`
}

// Load reads the YAML or JSON file at path, applies K_ prefixed environment
// overrides (K_HTTP__ADDRESS sets http.address) and validates the result. An
// empty path loads defaults and environment only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("K_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults applies defaults to every section.
func (c *Config) SetDefaults() {
	c.Scheduler.SetDefaults()
	c.Energy.SetDefaults()
	c.HTTP.SetDefaults()
	if c.MQTT.Enabled() {
		c.MQTT.SetDefaults()
	}
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Scheduler.Validate(); err != nil {
		return fmt.Errorf("scheduler: %w", err)
	}
	if err := c.Energy.Validate(); err != nil {
		return fmt.Errorf("energy: %w", err)
	}
	if err := c.Planner.Validate(); err != nil {
		return err
	}
	switch c.Journal.Backend {
	case "", "jsonl", "sqlite":
	default:
		return fmt.Errorf("journal: unknown backend %s", c.Journal.Backend)
	}
	if c.Journal.Backend != "" && c.Journal.Path == "" {
		return fmt.Errorf("journal: path is required")
	}
	seen := make(map[int]struct{}, len(c.Vehicles))
	for _, v := range c.Vehicles {
		if _, dup := seen[v.ID]; dup {
			return fmt.Errorf("vehicles: duplicate id %d", v.ID)
		}
		seen[v.ID] = struct{}{}
	}
	return nil
}
