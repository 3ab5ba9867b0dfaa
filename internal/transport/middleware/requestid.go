package middleware

import (
	"context"
	"net/http"

	"github.com/frahmantamala/hr-management/pkg/logger"
	"github.com/go-chi/chi/middleware"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

const maxRequestIDLen = 128

// RequestID takes the caller's X-Request-ID or a fresh uuid, stores it where
// chi's GetReqID finds it and threads it into the context logger.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
		}

		ctx := context.WithValue(r.Context(), middleware.RequestIDKey, id)
		ctx = logger.With(ctx, "request_id", id)
		w.Header().Set(requestIDHeader, id)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
