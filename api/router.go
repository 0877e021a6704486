// Package api assembles the HTTP surface of the scheduler.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kilianp07/agvfleet/api/faults"
	apijournal "github.com/kilianp07/agvfleet/api/journal"
	"github.com/kilianp07/agvfleet/api/vehicles"
	"github.com/kilianp07/agvfleet/core/journal"
	"github.com/kilianp07/agvfleet/core/vehiclestatus"
)

// Fleet is everything the routes need from the coordinator.
type Fleet interface {
	vehicles.Fleet
	faults.Handler
}

// Deps are the collaborators of the router. Status, Journal and Gatherer
// are optional.
type Deps struct {
	Fleet        Fleet
	Status       *vehiclestatus.MemoryStore
	Journal      journal.Store
	JournalToken string
	Gatherer     prometheus.Gatherer
}

// NewRouter builds the chi router.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Route("/vehicles", func(r chi.Router) {
			if d.Status != nil {
				r.Method(http.MethodGet, "/status", vehicles.NewStatusHandler(d.Status))
			}
			vehicles.NewHandlers(d.Fleet).Mount(r)
		})
		r.Method(http.MethodPost, "/faults", faults.NewHandler(d.Fleet))
		if d.Journal != nil {
			r.Method(http.MethodGet, "/journal", apijournal.NewHandler(d.Journal, d.JournalToken))
		}
	})
	if d.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return r
}
