// Package charging locates charging stations.
package charging

import "github.com/kilianp07/agvfleet/core/model"

// DefaultStation is used when no station is configured.
var DefaultStation = model.Point{X: 10, Y: 0, Z: 10}

// Locator picks the closest station to a position.
type Locator struct {
	stations []model.Point
}

// NewLocator returns a Locator over stations, or over DefaultStation when the
// list is empty.
func NewLocator(stations []model.Point) *Locator {
	if len(stations) == 0 {
		stations = []model.Point{DefaultStation}
	}
	return &Locator{stations: append([]model.Point(nil), stations...)}
}

// Nearest returns the closest station. Ties go to the first configured one.
func (l *Locator) Nearest(p model.Point) model.Point {
	best := l.stations[0]
	bestD := p.Distance(best)
	for _, s := range l.stations[1:] {
		if d := p.Distance(s); d < bestD {
			best, bestD = s, d
		}
	}
	return best
}

// Stations returns a copy of the configured stations.
func (l *Locator) Stations() []model.Point {
	return append([]model.Point(nil), l.stations...)
}
