package middleware

import (
	"log/slog"
	"net/http"

	"github.com/romindigital/ikirezi-bookstore-sub002/pkg/logger"
)

// RequestLogger returns middleware that builds a request-scoped logger enriched
// with correlation_id, shopper_id, trace_id, and span_id, then stores it in
// context via logger.NewContext. Downstream handlers retrieve it with
// logger.FromContext(ctx).
//
// This middleware should be mounted AFTER RequestLogging, which sets the
// correlation_id.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			// Shopper identity arrives via the X-User-ID header injected by
			// the storefront gateway after session validation.
			if shopperID := r.Header.Get("X-User-ID"); shopperID != "" {
				ctx = logger.WithShopperID(ctx, shopperID)
			}

			enriched := logger.WithContext(ctx, base)
			ctx = logger.NewContext(ctx, enriched)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
