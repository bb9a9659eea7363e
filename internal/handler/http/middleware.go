package http

import (
	"net/http"
	"strings"

	"github.com/Fmukanda/travelapp/internal/policy"
	"github.com/Fmukanda/travelapp/pkg/middleware"
)

// ContentTypeJSON enforces that requests with a body have Content-Type: application/json.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 {
			ct := r.Header.Get("Content-Type")
			if !strings.HasPrefix(ct, "application/json") {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnsupportedMediaType)
				_, _ = w.Write([]byte(`{"error":{"code":"UNSUPPORTED_MEDIA_TYPE","message":"Content-Type must be application/json"}}`))
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// actorFromRequest builds the policy actor from the claims the auth
// middleware put in the context. Anonymous requests yield an
// unauthenticated actor.
func actorFromRequest(r *http.Request) policy.Actor {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		return policy.Anonymous()
	}
	return policy.Actor{ID: userID, Authenticated: true}
}
