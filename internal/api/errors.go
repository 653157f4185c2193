package api

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"devicesapi/internal/device"
	"devicesapi/internal/logs"
	"devicesapi/internal/middleware"
	"devicesapi/internal/models"
)

// StatusOf maps a domain error kind to its HTTP status. The admin pages
// use it too.
func StatusOf(k device.Kind) int {
	switch k {
	case device.KindNotFound:
		return http.StatusNotFound
	case device.KindInvariantViolation, device.KindInvalidValue:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeError is the only place where service errors become responses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusOf(device.KindOf(err))

	if status == http.StatusInternalServerError {
		logs.Logger.WithFields(logrus.Fields{
			"reqid":  middleware.GetRequestID(r),
			"method": r.Method,
			"uri":    r.RequestURI,
		}).Errorf("request failed: %+v", err)
		models.WriteError(w, status, "internal server error")
		return
	}

	models.WriteError(w, status, err.Error())
}
