// Package infra holds the adapters behind the core contracts: the waypoint
// planner, the MQTT fault feed and status publisher, and the metrics sinks.
// Nothing under core imports these packages.
package infra
