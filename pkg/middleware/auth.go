// Package middleware provides the HTTP middleware stack: authentication,
// CORS, request logging, panic recovery, and rate limiting.
package middleware

import (
	"net/http"
	"strings"

	"github.com/shashiranjanraj/karigar/pkg/identity"
	"github.com/shashiranjanraj/karigar/pkg/logger"
	"github.com/shashiranjanraj/karigar/pkg/metrics"
	"github.com/shashiranjanraj/karigar/pkg/response"
)

// Auth returns the "authenticated" guard. It extracts the bearer token,
// verifies it with v, and attaches the verified identity to the request
// context. On any failure the wrapped handler never runs and the client
// gets the uniform 401 body.
func Auth(v identity.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				metrics.AuthDecisions.WithLabelValues("auth", "deny").Inc()
				response.Unauthorized(w)
				return
			}

			id, err := v.Verify(r.Context(), token)
			if err != nil {
				logger.WithCtx(r.Context()).Debug("token rejected", "path", r.URL.Path)
				metrics.AuthDecisions.WithLabelValues("auth", "deny").Inc()
				response.Unauthorized(w)
				return
			}

			metrics.AuthDecisions.WithLabelValues("auth", "allow").Inc()
			ctx := identity.WithCtx(r.Context(), id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}
