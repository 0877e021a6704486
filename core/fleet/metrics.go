package fleet

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ticksTotal       prometheus.Counter
	tickDuration     prometheus.Histogram
	chargingInserted prometheus.Counter
	replansTotal     *prometheus.CounterVec
	tasksCompleted   *prometheus.CounterVec
	unreachableTotal *prometheus.CounterVec
	unknownVehicle   prometheus.Counter
	fleetVehicles    prometheus.Gauge
)

type collectors struct {
	ticks       prometheus.Counter
	tickDur     prometheus.Histogram
	charging    prometheus.Counter
	replans     *prometheus.CounterVec
	completed   *prometheus.CounterVec
	unreachable *prometheus.CounterVec
	unknown     prometheus.Counter
	vehicles    prometheus.Gauge
}

// newCollectors creates new metric collectors.
func newCollectors() collectors {
	return collectors{
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "agv_scheduler_ticks_total",
			Help: "Number of scheduler ticks processed",
		}),
		tickDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "agv_scheduler_tick_duration_seconds",
			Help:    "Wall time spent processing one tick",
			Buckets: prometheus.ExponentialBuckets(0.00005, 4, 8),
		}),
		charging: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "agv_charging_inserted_total",
			Help: "Priority charging tasks inserted on low battery",
		}),
		replans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agv_replans_total",
			Help: "Replanning attempts triggered by faults",
		}, []string{"result"}),
		completed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agv_tasks_completed_total",
			Help: "Tasks completed by kind",
		}, []string{"kind"}),
		unreachable: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agv_unreachable_total",
			Help: "Planner requests that found no route",
		}, []string{"operation"}),
		unknown: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "agv_unknown_vehicle_total",
			Help: "Requests that referenced an unregistered vehicle",
		}),
		vehicles: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "agv_fleet_vehicles",
			Help: "Number of registered vehicles",
		}),
	}
}

func (c collectors) assign() {
	ticksTotal = c.ticks
	tickDuration = c.tickDur
	chargingInserted = c.charging
	replansTotal = c.replans
	tasksCompleted = c.completed
	unreachableTotal = c.unreachable
	unknownVehicle = c.unknown
	fleetVehicles = c.vehicles
}

func init() {
	newCollectors().assign()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers scheduler metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(ticksTotal, tickDuration, chargingInserted, replansTotal,
		tasksCompleted, unreachableTotal, unknownVehicle, fleetVehicles)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	newCollectors().assign()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
