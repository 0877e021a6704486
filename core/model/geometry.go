package model

import "math"

// Point is a position in workspace coordinates.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// Distance returns the euclidean distance between p and q.
func (p Point) Distance(q Point) float64 {
	dx, dy, dz := q.X-p.X, q.Y-p.Y, q.Z-p.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// MoveTowards returns the point reached when travelling from p toward target
// by at most maxDist. The target is returned when it lies within maxDist.
func (p Point) MoveTowards(target Point, maxDist float64) Point {
	d := p.Distance(target)
	if d <= maxDist || d == 0 {
		return target
	}
	if maxDist <= 0 {
		return p
	}
	f := maxDist / d
	return Point{
		X: p.X + (target.X-p.X)*f,
		Y: p.Y + (target.Y-p.Y)*f,
		Z: p.Z + (target.Z-p.Z)*f,
	}
}

// Waypoint is one element of a resolved path. Node identifies the planner
// graph node the position belongs to.
type Waypoint struct {
	Node int64 `json:"node"`
	Pos  Point `json:"pos"`
}
