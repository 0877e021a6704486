// Package planner implements a reference path planner on a static waypoint
// graph using gonum's A* search.
package planner

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/kilianp07/agvfleet/core/model"
	"github.com/kilianp07/agvfleet/core/pathing"
)

// GraphPlanner answers path queries over an undirected weighted graph.
// It is immutable after construction and safe for concurrent use.
type GraphPlanner struct {
	nodes map[int64]model.Point
	order []int64
	edges []Edge
}

// New builds a planner from cfg after validating it.
func New(cfg Config) (*GraphPlanner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p := &GraphPlanner{nodes: make(map[int64]model.Point, len(cfg.Nodes))}
	for _, n := range cfg.Nodes {
		p.nodes[n.ID] = model.Point{X: n.X, Y: n.Y, Z: n.Z}
		p.order = append(p.order, n.ID)
	}
	p.edges = append(p.edges, cfg.Edges...)
	return p, nil
}

// FindPath implements pathing.Service.
func (p *GraphPlanner) FindPath(ctx context.Context, from, to model.Point) ([]model.Waypoint, error) {
	return p.FindPathAvoiding(ctx, from, to, nil)
}

// FindPathAvoiding implements pathing.Service. Start and target snap to the
// nearest node that is not blocked.
func (p *GraphPlanner) FindPathAvoiding(ctx context.Context, from, to model.Point, blocked map[int64]struct{}) ([]model.Waypoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	src, ok := p.nearest(from, blocked)
	if !ok {
		return nil, fmt.Errorf("%w: no usable start node", pathing.ErrUnreachable)
	}
	dst, ok := p.nearest(to, blocked)
	if !ok {
		return nil, fmt.Errorf("%w: no usable target node", pathing.ErrUnreachable)
	}

	g := p.build(blocked)
	shortest, _ := path.AStar(simple.Node(src), simple.Node(dst), g, p.heuristic)
	route, cost := shortest.To(dst)
	if len(route) == 0 || math.IsInf(cost, 1) {
		return nil, fmt.Errorf("%w: %d -> %d", pathing.ErrUnreachable, src, dst)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]model.Waypoint, 0, len(route))
	for _, n := range route {
		out = append(out, model.Waypoint{Node: n.ID(), Pos: p.nodes[n.ID()]})
	}
	return out, nil
}

func (p *GraphPlanner) build(blocked map[int64]struct{}) *simple.WeightedUndirectedGraph {
	g := simple.NewWeightedUndirectedGraph(0, math.Inf(1))
	for _, id := range p.order {
		if _, skip := blocked[id]; skip {
			continue
		}
		g.AddNode(simple.Node(id))
	}
	for _, e := range p.edges {
		if _, skip := blocked[e.From]; skip {
			continue
		}
		if _, skip := blocked[e.To]; skip {
			continue
		}
		w := e.Cost
		if w == 0 {
			w = p.nodes[e.From].Distance(p.nodes[e.To])
		}
		g.SetWeightedEdge(g.NewWeightedEdge(simple.Node(e.From), simple.Node(e.To), w))
	}
	return g
}

func (p *GraphPlanner) heuristic(x, y graph.Node) float64 {
	return p.nodes[x.ID()].Distance(p.nodes[y.ID()])
}

func (p *GraphPlanner) nearest(pt model.Point, blocked map[int64]struct{}) (int64, bool) {
	var (
		best  int64
		bestD = math.Inf(1)
		found bool
	)
	for _, id := range p.order {
		if _, skip := blocked[id]; skip {
			continue
		}
		if d := pt.Distance(p.nodes[id]); d < bestD {
			best, bestD, found = id, d, true
		}
	}
	return best, found
}
