package events

import "time"

// Fault reports that a node of the waypoint graph is blocked. Repeated
// faults for the same node are independent triggers.
type Fault struct {
	NodeID int64     `json:"node_id"`
	Source string    `json:"source,omitempty"`
	Time   time.Time `json:"time,omitempty"`
}
