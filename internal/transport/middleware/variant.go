package middleware

import (
	"net/http"

	"github.com/frahmantamala/hr-management/internal"
	"github.com/frahmantamala/hr-management/pkg/logger"
)

// ClientVariant tags every request with the mount that served it.
func ClientVariant(v internal.Variant) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := internal.ContextWithVariant(r.Context(), v)
			ctx = logger.With(ctx, "variant", string(v))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
