package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/romindigital/ikirezi-bookstore-sub002/pkg/httputil"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

// shopperIDKey is the context key for the shopper identity.
const shopperIDKey contextKey = "shopper_id"

// ShopperIDFromHeader is middleware that reads the X-User-ID header (injected
// by the API gateway after JWT validation) and stores it in the request
// context. Anonymous requests pass through; catalog browsing does not require
// an identity.
func ShopperIDFromHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if uid := r.Header.Get("X-User-ID"); uid != "" {
			ctx := context.WithValue(r.Context(), shopperIDKey, uid)
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}

// RequireShopper rejects requests that carry no shopper identity with 401.
// Used on the per-shopper routes (recent searches, preferences).
func RequireShopper(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := shopperIDFromContext(r.Context()); !ok {
			httputil.WriteJSON(w, http.StatusUnauthorized, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "UNAUTHORIZED", Message: "authentication required"},
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// shopperIDFromContext extracts the shopper ID from the request context.
func shopperIDFromContext(ctx context.Context) (string, bool) {
	uid, ok := ctx.Value(shopperIDKey).(string)
	return uid, ok && uid != ""
}

// ContentTypeJSON enforces that requests with a body have Content-Type: application/json.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 || r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			ct := r.Header.Get("Content-Type")
			if ct != "" && !strings.HasPrefix(ct, "application/json") {
				httputil.WriteJSON(w, http.StatusUnsupportedMediaType, httputil.Response{
					Error: &httputil.ErrorResponse{Code: "UNSUPPORTED_MEDIA_TYPE", Message: "Content-Type must be application/json"},
				})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
