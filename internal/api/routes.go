package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"devicesapi/internal/middleware"
	"devicesapi/internal/models"
)

// RegisterRoutes mounts the device resource under /api/devices. A
// non-empty token puts the device routes behind bearer auth; the OpenAPI
// document at /api/openapi.yaml stays public.
func RegisterRoutes(r *mux.Router, h *Handler, token string) {
	r.HandleFunc("/api/openapi.yaml", serveOpenAPI).Methods(http.MethodGet)

	sub := r.PathPrefix("/api/devices").Subrouter()
	if token != "" {
		sub.Use(middleware.BearerAuth(token))
	}

	sub.HandleFunc("", h.List).Methods(http.MethodGet)
	sub.HandleFunc("", h.Create).Methods(http.MethodPost)
	sub.HandleFunc("/brand/{brand}", h.ListByBrand).Methods(http.MethodGet)
	sub.HandleFunc("/state/{state}", h.ListByState).Methods(http.MethodGet)
	sub.HandleFunc("/{id}", h.Get).Methods(http.MethodGet)
	sub.HandleFunc("/{id}", h.Update).Methods(http.MethodPut)
	sub.HandleFunc("/{id}", h.Patch).Methods(http.MethodPatch)
	sub.HandleFunc("/{id}", h.Delete).Methods(http.MethodDelete)
	sub.HandleFunc("/{id}/events", h.Events).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		models.WriteError(w, http.StatusNotFound, "resource not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		models.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
}
