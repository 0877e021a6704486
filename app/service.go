package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/agvfleet/api"
	"github.com/kilianp07/agvfleet/config"
	"github.com/kilianp07/agvfleet/core/charging"
	"github.com/kilianp07/agvfleet/core/energy"
	"github.com/kilianp07/agvfleet/core/events"
	"github.com/kilianp07/agvfleet/core/executor"
	"github.com/kilianp07/agvfleet/core/fleet"
	"github.com/kilianp07/agvfleet/core/journal"
	"github.com/kilianp07/agvfleet/core/pathing"
	"github.com/kilianp07/agvfleet/core/vehiclestatus"
	"github.com/kilianp07/agvfleet/infra/logger"
	"github.com/kilianp07/agvfleet/infra/metrics"
	"github.com/kilianp07/agvfleet/infra/mqtt"
	"github.com/kilianp07/agvfleet/infra/planner"
	"github.com/kilianp07/agvfleet/internal/eventbus"
)

const (
	statusBuffer    = 1024
	shutdownTimeout = 5 * time.Second
)

// Service wires the coordinator to its planner, sinks, journal, fault feed
// and HTTP API.
type Service struct {
	Coordinator *fleet.Coordinator
	Status      *vehiclestatus.MemoryStore

	interval  time.Duration
	statusBus *eventbus.TypedBus[vehiclestatus.Update]
	taskBus   *eventbus.TypedBus[events.TaskEvent]
	sink      vehiclestatus.Sink
	journal   journal.Store
	mqtt      *mqtt.PahoClient
	server    *http.Server
	log       logger.Logger
}

// New creates a Service from the configuration. Vehicles listed in the
// configuration are registered before New returns.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	plannerCfg, err := cfg.Planner.LoadMap()
	if err != nil {
		return nil, fmt.Errorf("load map: %w", err)
	}
	graph, err := planner.New(plannerCfg)
	if err != nil {
		return nil, fmt.Errorf("planner: %w", err)
	}
	paths := pathing.NewAdapter(graph, plannerCfg.Timeout(), logger.New("pathing"))

	em, err := energy.New(cfg.Energy)
	if err != nil {
		return nil, fmt.Errorf("energy model: %w", err)
	}
	exec, err := executor.New(cfg.Scheduler.Executor(), em)
	if err != nil {
		return nil, fmt.Errorf("executor: %w", err)
	}

	status := vehiclestatus.NewMemoryStore()
	sinks := []vehiclestatus.Sink{status}
	extra, err := metrics.NewSinks(cfg.Metrics, prometheus.DefaultRegisterer)
	if err != nil {
		return nil, fmt.Errorf("metrics sinks: %w", err)
	}
	sinks = append(sinks, extra...)

	s := &Service{
		Status:    status,
		interval:  cfg.Scheduler.Fleet().Interval(),
		statusBus: eventbus.NewTypedWithBuffer[vehiclestatus.Update](statusBuffer),
		taskBus:   eventbus.NewTyped[events.TaskEvent](),
		log:       logg,
	}

	if cfg.MQTT.Enabled() {
		client, err := mqtt.NewPahoClient(cfg.MQTT)
		if err != nil {
			return nil, fmt.Errorf("mqtt client: %w", err)
		}
		s.mqtt = client
		sinks = append(sinks, client)
	}
	s.sink = vehiclestatus.MultiSink(sinks)

	store, err := journal.Open(cfg.Journal)
	if err != nil {
		s.closeClients()
		return nil, fmt.Errorf("journal: %w", err)
	}
	s.journal = store

	coord := fleet.NewCoordinator(paths, em, exec, charging.NewLocator(cfg.Chargers),
		vehiclestatus.NewBusSink(s.statusBus), logger.New("fleet"))
	coord.SetTaskEvents(s.taskBus)
	for _, v := range cfg.Vehicles {
		if err := coord.RegisterVehicle(v.ID, v.Position(), v.InitialCharge()); err != nil {
			s.closeClients()
			return nil, fmt.Errorf("register vehicle %d: %w", v.ID, err)
		}
	}
	s.Coordinator = coord

	deps := api.Deps{
		Fleet:        coord,
		Status:       status,
		JournalToken: cfg.HTTP.JournalToken,
		Journal:      store,
		Gatherer:     prometheus.DefaultGatherer,
	}
	s.server = &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           api.NewRouter(deps),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s, nil
}

// Run serves the API and drives the tick loop until ctx ends.
func (s *Service) Run(ctx context.Context) error {
	go vehiclestatus.Forward(ctx, s.statusBus.Subscribe(), s.sink)
	if s.journal != nil {
		go journal.Consume(ctx, s.taskBus.Subscribe(), s.journal, logger.New("journal"))
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("http listening on %s", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var faults <-chan events.Fault
	if s.mqtt != nil {
		faults = s.mqtt.Faults()
	}
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	done := make(chan struct{})
	go func() {
		s.Coordinator.Run(runCtx, s.interval, faults)
		close(done)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case err, ok := <-errCh:
		if ok {
			runErr = fmt.Errorf("http server: %w", err)
		}
	}
	cancel()
	<-done

	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		s.log.Errorf("http shutdown: %v", err)
	}
	return runErr
}

// Close releases buses, the MQTT connection and the journal.
func (s *Service) Close() error {
	s.statusBus.Close()
	s.taskBus.Close()
	return s.closeClients()
}

func (s *Service) closeClients() error {
	if s.mqtt != nil {
		s.mqtt.Disconnect()
	}
	if s.journal != nil {
		return s.journal.Close()
	}
	return nil
}
