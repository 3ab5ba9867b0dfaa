package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/frahmantamala/hr-management/internal"
	"github.com/frahmantamala/hr-management/internal/transport"
	"github.com/go-chi/chi/middleware"
)

// RecoveryMiddleware turns a handler panic into the generic 500 envelope.
// The panic value and stack only go to the log.
func RecoveryMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	base := transport.NewBaseHandler(logger)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}
				logger.ErrorContext(r.Context(), "handler panicked",
					"request_id", middleware.GetReqID(r.Context()),
					"panic", rec,
					"route", r.Method+" "+r.URL.Path,
					"stack", string(debug.Stack()),
				)
				base.WriteAppError(w, internal.NewInternalError("Internal server error", nil))
			}()
			next.ServeHTTP(w, r)
		})
	}
}
