package auth

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/hr-management/internal"
	"github.com/frahmantamala/hr-management/internal/transport"
)

// RBACAuthorization gates routes by role. Every check goes through Policy.Permits,
// so exact allow-lists and hierarchy checks share one code path.
type RBACAuthorization struct {
	*transport.BaseHandler
	logger *slog.Logger
}

func NewRBACAuthorization(logger *slog.Logger) *RBACAuthorization {
	return &RBACAuthorization{
		BaseHandler: transport.NewBaseHandler(logger),
		logger:      logger,
	}
}

// RequireAnyRole is the non-HTTP form of the check, used by services.
func RequireAnyRole(user *User, policy Policy) error {
	if user == nil {
		return internal.ErrAuthRequired
	}
	if !policy.Permits(user.Role) {
		return internal.ErrInsufficientRole
	}
	return nil
}

func (ra *RBACAuthorization) Require(policy Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, _ := UserFromContext(r.Context())
			if err := RequireAnyRole(user, policy); err != nil {
				if user != nil {
					ra.logger.WarnContext(r.Context(), "access denied: role not allowed",
						"user_id", user.ID,
						"role", user.Role,
						"allowed_roles", policy.roles(),
						"inherit", policy.Inherit)
				}
				ra.HandleServiceError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRoles admits only the listed roles.
func (ra *RBACAuthorization) RequireRoles(roles ...Role) func(http.Handler) http.Handler {
	return ra.Require(AnyOf(roles...))
}

// RequireMinimumRole admits role and every role above it.
func (ra *RBACAuthorization) RequireMinimumRole(role Role) func(http.Handler) http.Handler {
	return ra.Require(AtLeast(role))
}
