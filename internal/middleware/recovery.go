package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
)

const panicBody = `{"error":"An internal error occurred","code":"INTERNAL_ERROR"}`

// Recoverer is a middleware that recovers from panics.
// The panic and stack go to the log; the caller only sees a generic 500.
func Recoverer(logger *slog.Logger) func(http.Handler) http.Handler {
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

				logger.Error("panic recovered",
					slog.String("request_id", GetRequestID(r.Context())),
					slog.Any("panic", rvr),
					slog.String("stack", string(debug.Stack())),
				)

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(panicBody))
			}()

			next.ServeHTTP(w, r)
		})
	}
}
