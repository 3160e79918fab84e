package middleware

import (
	"fmt"
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/hrleave/leave-backend-go/internal/domain/user"
	"github.com/hrleave/leave-backend-go/internal/handler/http/response"
)

// RequirePermission gates a route by the caller's role holding a named
// permission. Per-record scoping (own vs team vs org) still happens in
// the services; this only keeps the wrong roles off the route.
func RequirePermission(permission user.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, claims, err := jwtauth.FromContext(r.Context())
			if err != nil {
				response.Forbidden(w, fmt.Sprintf("Insufficient permissions: required '%s'", permission))
				return
			}

			roleStr, ok := claims["role"].(string)
			if !ok {
				response.Forbidden(w, fmt.Sprintf("Insufficient permissions: required '%s'", permission))
				return
			}

			role := user.Role(roleStr)
			if !user.HasPermission(role, permission) {
				response.Forbidden(w, fmt.Sprintf("Insufficient permissions: required '%s', but user role is '%s'", permission, role))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireHR admits hr only, keyed on the user.manage permission that no
// other role holds.
var RequireHR = RequirePermission(user.PermissionUserManage)

// RequireApprover admits managers and hr via the leave.approve permission.
var RequireApprover = RequirePermission(user.PermissionLeaveApprove)
