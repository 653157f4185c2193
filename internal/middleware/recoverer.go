package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/sirupsen/logrus"

	"devicesapi/internal/logs"
	"devicesapi/internal/models"
)

// Recoverer turns a handler panic into a logged stack trace and a 500
// carrying the usual error body.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logs.Logger.WithFields(logrus.Fields{
					"reqid":  GetRequestID(r),
					"method": r.Method,
					"uri":    r.RequestURI,
				}).Errorf("panic: %v\n%s", rec, debug.Stack())

				models.WriteError(w, http.StatusInternalServerError,
					"unexpected server error (request id "+GetRequestID(r)+")")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
