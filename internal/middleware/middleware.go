package middleware

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/XavierBriggs/fortuna/services/weapons-api/pkg/models"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// Logger logs one line per request: request id, client, method, path,
// status, bytes written and duration
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		defer func() {
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			log.Printf("[%s] %s %s %s %d %dB %s",
				chimiddleware.GetReqID(r.Context()),
				r.RemoteAddr,
				r.Method,
				r.URL.RequestURI(),
				status,
				ww.BytesWritten(),
				time.Since(start),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

// Recover turns panics into a sanitized 500 response. Outside production the
// panic value and stack are included in the response detail.
func Recover(production bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}

				stack := debug.Stack()
				log.Printf("❌ Error occurred: %v\n%s", rvr, stack)

				resp := models.ErrorResponse{
					Error:   http.StatusText(http.StatusInternalServerError),
					Message: "Internal Server Error",
					Code:    http.StatusInternalServerError,
				}
				if !production {
					resp.Detail = fmt.Sprintf("%v\n%s", rvr, stack)
				}

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				if err := json.NewEncoder(w).Encode(resp); err != nil {
					log.Printf("error encoding error response: %v", err)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// SecurityHeaders sets a conservative set of response headers
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "SAMEORIGIN")
		h.Set("X-DNS-Prefetch-Control", "off")
		h.Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}
