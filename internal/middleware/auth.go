package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"devicesapi/internal/models"
)

// BearerAuth requires "Authorization: Bearer <token>" on every request.
func BearerAuth(token string) mux.MiddlewareFunc {
	want := []byte(token)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const p = "Bearer "
			auth := r.Header.Get("Authorization")
			got := []byte(strings.TrimPrefix(auth, p))

			if !strings.HasPrefix(auth, p) || subtle.ConstantTimeCompare(got, want) != 1 {
				w.Header().Set("WWW-Authenticate", `Bearer realm="devices"`)
				models.WriteError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
