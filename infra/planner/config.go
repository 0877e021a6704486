package planner

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Node is a waypoint of the workspace graph.
type Node struct {
	ID int64   `json:"id" yaml:"id"`
	X  float64 `json:"x" yaml:"x"`
	Y  float64 `json:"y" yaml:"y"`
	Z  float64 `json:"z" yaml:"z"`
}

// Edge connects two nodes. A zero Cost means the Euclidean distance.
type Edge struct {
	From int64   `json:"from" yaml:"from"`
	To   int64   `json:"to" yaml:"to"`
	Cost float64 `json:"cost,omitempty" yaml:"cost,omitempty"`
}

// Config describes the waypoint map and the per-call planning budget.
type Config struct {
	Nodes     []Node `json:"nodes" yaml:"nodes"`
	Edges     []Edge `json:"edges" yaml:"edges"`
	MapFile   string `json:"map_file" yaml:"map_file"`
	TimeoutMS int    `json:"timeout_ms" yaml:"timeout_ms"`
}

// Timeout returns the planning budget, zero meaning unbounded.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// Validate checks graph consistency.
func (c Config) Validate() error {
	if c.TimeoutMS < 0 {
		return fmt.Errorf("planner: timeout_ms must be >= 0")
	}
	ids := make(map[int64]struct{}, len(c.Nodes))
	for _, n := range c.Nodes {
		if _, dup := ids[n.ID]; dup {
			return fmt.Errorf("planner: duplicate node %d", n.ID)
		}
		ids[n.ID] = struct{}{}
	}
	for _, e := range c.Edges {
		if e.From == e.To {
			return fmt.Errorf("planner: self edge on node %d", e.From)
		}
		if _, ok := ids[e.From]; !ok {
			return fmt.Errorf("planner: edge references unknown node %d", e.From)
		}
		if _, ok := ids[e.To]; !ok {
			return fmt.Errorf("planner: edge references unknown node %d", e.To)
		}
		if e.Cost < 0 {
			return fmt.Errorf("planner: negative cost on edge %d-%d", e.From, e.To)
		}
	}
	return nil
}

type mapFile struct {
	Nodes []Node `yaml:"nodes"`
	Edges []Edge `yaml:"edges"`
}

// LoadMap merges nodes and edges from MapFile into the inline definition.
func (c Config) LoadMap() (Config, error) {
	if c.MapFile == "" {
		return c, nil
	}
	data, err := os.ReadFile(c.MapFile)
	if err != nil {
		return c, fmt.Errorf("read map file: %w", err)
	}
	var m mapFile
	if err := yaml.Unmarshal(data, &m); err != nil {
		return c, fmt.Errorf("decode map file: %w", err)
	}
	out := c
	out.Nodes = append(append([]Node(nil), c.Nodes...), m.Nodes...)
	out.Edges = append(append([]Edge(nil), c.Edges...), m.Edges...)
	return out, nil
}
