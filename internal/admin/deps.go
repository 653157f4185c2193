package admin

import (
	"github.com/gorilla/mux"

	"devicesapi/internal/device"
)

type Dependencies struct {
	Devices *device.Service
}

// Attach mounts the read-only admin pages under /admin.
func Attach(r *mux.Router, d Dependencies) {
	h := &Handler{d: d, t: parseTemplates()}
	sub := r.PathPrefix("/admin").Subrouter()

	sub.HandleFunc("", h.redirect("/admin/devices")).Methods("GET")
	sub.HandleFunc("/", h.redirect("/admin/devices")).Methods("GET")
	sub.HandleFunc("/devices", h.DevicesList).Methods("GET")
	sub.HandleFunc("/devices/{id}", h.DeviceDetail).Methods("GET")

	sub.HandleFunc("/static/style.css", serveCSS).Methods("GET")
}
