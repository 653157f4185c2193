package admin

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"devicesapi/internal/api"
	"devicesapi/internal/device"
	"devicesapi/internal/logs"
	"devicesapi/internal/middleware"
)

type Handler struct {
	d Dependencies
	t pageTemplates
}

func (h *Handler) redirect(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, path, http.StatusFound)
	}
}

func (h *Handler) render(w http.ResponseWriter, status int, page string, data any) {
	t, ok := h.t[page]
	if !ok {
		http.Error(w, "template not found: "+page, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := t.ExecuteTemplate(w, "layout", data); err != nil {
		logs.Logger.Errorf("admin: render %s: %v", page, err)
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := api.StatusOf(device.KindOf(err))
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logs.Logger.WithField("reqid", middleware.GetRequestID(r)).Errorf("admin: %+v", err)
		msg = "internal server error"
	}
	h.render(w, status, "error.tmpl", map[string]any{
		"Title":   http.StatusText(status),
		"Status":  status,
		"Message": msg,
	})
}

// DevicesList renders every device, optionally narrowed by ?brand= or ?state=.
// brand wins when both are given.
func (h *Handler) DevicesList(w http.ResponseWriter, r *http.Request) {
	brand := strings.TrimSpace(r.URL.Query().Get("brand"))
	state := strings.TrimSpace(r.URL.Query().Get("state"))

	var (
		rows []device.Device
		err  error
	)
	switch {
	case brand != "":
		rows, err = h.d.Devices.ListByBrand(r.Context(), brand)
	case state != "":
		rows, err = h.d.Devices.ListByState(r.Context(), state)
	default:
		rows, err = h.d.Devices.ListAll(r.Context())
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.render(w, http.StatusOK, "devices_list.tmpl", map[string]any{
		"Title":  "Devices",
		"Rows":   rows,
		"Brand":  brand,
		"State":  state,
		"States": device.States,
	})
}

func (h *Handler) DeviceDetail(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	dev, err := h.d.Devices.GetByID(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	events, err := h.d.Devices.Events(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, http.StatusOK, "device_detail.tmpl", map[string]any{
		"Title":  "Device " + dev.Name,
		"Dev":    dev,
		"Events": events,
	})
}
