package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/agvfleet/core/vehiclestatus"
)

// Config selects the metric backends fed from vehicle status.
type Config struct {
	PrometheusEnabled bool         `json:"prometheus_enabled"`
	Influx            InfluxConfig `json:"influx"`
}

// NewSinks builds the configured sinks. An empty slice means none is enabled.
func NewSinks(cfg Config, reg prometheus.Registerer) ([]vehiclestatus.Sink, error) {
	var sinks []vehiclestatus.Sink
	if cfg.PrometheusEnabled {
		p, err := NewPromSinkWithRegistry(reg)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, p)
	}
	if cfg.Influx.URL != "" {
		sinks = append(sinks, NewInfluxSinkWithFallback(cfg.Influx))
	}
	return sinks, nil
}
