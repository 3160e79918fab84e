package middleware

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/hrleave/leave-backend-go/internal/domain/auth"
	"github.com/hrleave/leave-backend-go/internal/domain/user"
	"github.com/hrleave/leave-backend-go/internal/handler/http/response"
)

// AuthRequired rejects requests whose token is missing, invalid, or not
// an access token.
func AuthRequired(ja *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, _, err := jwtauth.FromContext(r.Context())

			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}

			if token == nil {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			claims, err := token.AsMap(r.Context())
			if err != nil {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}
			tokenType, ok := claims["type"].(string)
			if tokenType != "access" || !ok {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(hfn)
	}
}

// ActorFromRequest rebuilds the authenticated caller from token claims.
// Only valid behind AuthRequired.
func ActorFromRequest(r *http.Request) (user.Actor, error) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return user.Actor{}, auth.ErrInvalidToken
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return user.Actor{}, auth.ErrInvalidToken
	}
	email, _ := claims["email"].(string)
	role, ok := claims["role"].(string)
	if !ok {
		return user.Actor{}, auth.ErrInvalidToken
	}

	return user.Actor{ID: userID, Email: email, Role: user.Role(role)}, nil
}
