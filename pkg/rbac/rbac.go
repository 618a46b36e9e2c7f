// Package rbac provides the "admin" guard: a role lookup against the user
// directory, applied after the authentication guard.
package rbac

import (
	"context"
	"net/http"

	"github.com/shashiranjanraj/karigar/pkg/identity"
	"github.com/shashiranjanraj/karigar/pkg/logger"
	"github.com/shashiranjanraj/karigar/pkg/metrics"
	"github.com/shashiranjanraj/karigar/pkg/response"
)

// RoleAdmin is the only elevated role the directory knows.
const RoleAdmin = "admin"

// RoleLookup resolves the directory role for a verified email.
// A missing directory record must be reported as an error, not an empty role.
type RoleLookup interface {
	RoleByEmail(ctx context.Context, email string) (string, error)
}

// Admin returns the admin guard. It requires the Auth middleware to have
// attached an identity already; any lookup failure, missing directory
// record, or non-admin role fails closed with the uniform 403 body.
func Admin(dir RoleLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := identity.FromCtx(r.Context())
			if !ok {
				metrics.AuthDecisions.WithLabelValues("admin", "deny").Inc()
				response.Forbidden(w)
				return
			}

			role, err := dir.RoleByEmail(r.Context(), id.Email)
			if err != nil {
				logger.WithCtx(r.Context()).Warn("admin check: role lookup failed",
					"email", id.Email, "error", err)
				metrics.AuthDecisions.WithLabelValues("admin", "deny").Inc()
				response.Forbidden(w)
				return
			}

			if role != RoleAdmin {
				metrics.AuthDecisions.WithLabelValues("admin", "deny").Inc()
				response.Forbidden(w)
				return
			}

			metrics.AuthDecisions.WithLabelValues("admin", "allow").Inc()
			next.ServeHTTP(w, r)
		})
	}
}
