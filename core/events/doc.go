// Package events defines the events carried on the event bus.
//
// Available event types:
//   - Fault: a waypoint node became blocked
//   - TaskEvent: a task lifecycle transition on a vehicle
package events
