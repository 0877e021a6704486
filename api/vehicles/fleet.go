package vehicles

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kilianp07/agvfleet/api/respond"
	"github.com/kilianp07/agvfleet/core/fleet"
	"github.com/kilianp07/agvfleet/core/model"
	"github.com/kilianp07/agvfleet/core/pathing"
	"github.com/kilianp07/agvfleet/core/queue"
)

// Fleet is the part of the coordinator the vehicle routes use.
type Fleet interface {
	RegisterVehicle(id int, start model.Point, charge float64) error
	RequestTask(ctx context.Context, id int, kind model.TaskKind, target model.Point) (model.Task, error)
	Snapshot() []model.VehicleSnapshot
	Vehicle(id int) (model.VehicleSnapshot, bool)
}

// Handlers serves vehicle snapshots, registration and task requests.
type Handlers struct {
	fleet Fleet
}

func NewHandlers(f Fleet) *Handlers { return &Handlers{fleet: f} }

// Mount attaches the routes to r, which is expected to be rooted at
// /api/vehicles.
func (h *Handlers) Mount(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.register)
	r.Get("/{id}", h.get)
	r.Post("/{id}/tasks", h.requestTask)
}

func parseID(r *http.Request) (int, error) {
	return strconv.Atoi(chi.URLParam(r, "id"))
}

func (h *Handlers) list(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusOK, h.fleet.Snapshot())
}

func (h *Handlers) get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid vehicle id")
		return
	}
	snap, ok := h.fleet.Vehicle(id)
	if !ok {
		respond.Error(w, http.StatusNotFound, "unknown vehicle")
		return
	}
	respond.JSON(w, http.StatusOK, snap)
}

type registerRequest struct {
	ID       int         `json:"id"`
	Position model.Point `json:"position"`
	Charge   *float64    `json:"charge"`
}

func (h *Handlers) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid body")
		return
	}
	charge := model.MaxCharge
	if req.Charge != nil {
		charge = *req.Charge
	}
	if err := h.fleet.RegisterVehicle(req.ID, req.Position, charge); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, fleet.ErrDuplicateVehicle) {
			status = http.StatusConflict
		}
		respond.Error(w, status, err.Error())
		return
	}
	snap, _ := h.fleet.Vehicle(req.ID)
	respond.JSON(w, http.StatusCreated, snap)
}

type taskRequest struct {
	Kind   model.TaskKind `json:"kind"`
	Target model.Point    `json:"target"`
}

func (h *Handlers) requestTask(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid vehicle id")
		return
	}
	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid body: "+err.Error())
		return
	}
	task, err := h.fleet.RequestTask(r.Context(), id, req.Kind, req.Target)
	switch {
	case err == nil:
		respond.JSON(w, http.StatusAccepted, task)
	case errors.Is(err, fleet.ErrUnknownVehicle):
		respond.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, fleet.ErrInvalidTask):
		respond.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, queue.ErrDuplicatePriority):
		respond.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, pathing.ErrUnreachable):
		respond.Error(w, http.StatusUnprocessableEntity, err.Error())
	default:
		respond.Error(w, http.StatusInternalServerError, err.Error())
	}
}
