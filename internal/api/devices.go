package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"devicesapi/internal/device"
	"devicesapi/internal/models"
)

const maxBodyBytes = 1 << 20

// Handler serves the device REST resource.
type Handler struct {
	svc *device.Service
}

func NewHandler(svc *device.Service) *Handler { return &Handler{svc: svc} }

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return device.Invalid("malformed request body: %s", err.Error())
	}
	return nil
}

// POST /api/devices
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in device.Input
	if err := decode(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	d, err := h.svc.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/devices/"+d.ID)
	models.WriteJSON(w, http.StatusCreated, d)
}

// PUT /api/devices/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var in device.Input
	if err := decode(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	d, err := h.svc.Update(r.Context(), mux.Vars(r)["id"], in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	models.WriteJSON(w, http.StatusOK, d)
}

// PATCH /api/devices/{id}
func (h *Handler) Patch(w http.ResponseWriter, r *http.Request) {
	var p device.Patch
	if err := decode(w, r, &p); err != nil {
		writeError(w, r, err)
		return
	}

	d, err := h.svc.Patch(r.Context(), mux.Vars(r)["id"], p)
	if err != nil {
		writeError(w, r, err)
		return
	}

	models.WriteJSON(w, http.StatusOK, d)
}

// DELETE /api/devices/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GET /api/devices/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.GetByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}

	models.WriteJSON(w, http.StatusOK, d)
}

// GET /api/devices
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ds, err := h.svc.ListAll(r.Context())
	h.writeList(w, r, ds, err)
}

// GET /api/devices/brand/{brand}
func (h *Handler) ListByBrand(w http.ResponseWriter, r *http.Request) {
	ds, err := h.svc.ListByBrand(r.Context(), mux.Vars(r)["brand"])
	h.writeList(w, r, ds, err)
}

// GET /api/devices/state/{state}
func (h *Handler) ListByState(w http.ResponseWriter, r *http.Request) {
	ds, err := h.svc.ListByState(r.Context(), mux.Vars(r)["state"])
	h.writeList(w, r, ds, err)
}

func (h *Handler) writeList(w http.ResponseWriter, r *http.Request, ds []device.Device, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	if ds == nil {
		ds = []device.Device{}
	}

	models.WriteJSON(w, http.StatusOK, ds)
}

// GET /api/devices/{id}/events
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	evs, err := h.svc.Events(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}

	models.WriteJSON(w, http.StatusOK, evs)
}
