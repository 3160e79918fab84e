package http

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/hrleave/leave-backend-go/internal/config"
	"github.com/hrleave/leave-backend-go/internal/handler/http/middleware"
	"github.com/hrleave/leave-backend-go/internal/pkg/jwt"
)

func NewRouter(
	cfg *config.Config,
	jwtService jwt.Service,
	authHandler AuthHandler,
	userHandler UserHandler,
	leaveHandler LeaveHandler,
	notificationHandler NotificationHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "leave-backend"),
		slog.String("version", "v1.0.0"),
		slog.String("env", cfg.App.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.App.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.RefreshToken)
			r.Post("/logout", authHandler.Logout)
		})

		// The SSE stream authenticates with a short lived token in the
		// query string, so it sits outside the bearer token group.
		r.Get("/notifications/stream", notificationHandler.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired(jwtService.JWTAuth()))

			r.Get("/auth/me", authHandler.Me)

			r.Route("/users", func(r chi.Router) {
				r.Get("/me", userHandler.Profile)

				// HR only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireHR)
					r.Get("/", userHandler.List)
					r.Patch("/{id}", userHandler.Update)
				})
			})

			r.Route("/team", func(r chi.Router) {
				r.Use(middleware.RequireApprover)
				r.Get("/", userHandler.Team)
			})

			r.Route("/leave", func(r chi.Router) {
				r.Route("/types", func(r chi.Router) {
					r.Get("/", leaveHandler.ListTypes)

					// HR only
					r.Group(func(r chi.Router) {
						r.Use(middleware.RequireHR)
						r.Post("/", leaveHandler.CreateType)
						r.Patch("/{id}", leaveHandler.UpdateType)
					})
				})

				r.Get("/balance", leaveHandler.MyBalance)

				r.Route("/requests", func(r chi.Router) {
					r.Post("/", leaveHandler.Submit)
					r.Get("/", leaveHandler.MyRequests)
					r.Post("/{id}/cancel", leaveHandler.Cancel)

					// Manager or HR
					r.Group(func(r chi.Router) {
						r.Use(middleware.RequireApprover)
						r.Get("/pending", leaveHandler.PendingApprovals)
						r.Post("/{id}/approve", leaveHandler.Approve)
						r.Post("/{id}/reject", leaveHandler.Reject)
					})
				})
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", notificationHandler.List)
				r.Get("/unread-count", notificationHandler.UnreadCount)
				r.Get("/sse-token", notificationHandler.GetSSEToken)
				r.Patch("/{id}/read", notificationHandler.MarkRead)
				r.Patch("/read-all", notificationHandler.MarkAllRead)
			})
		})
	})
	return r
}
