package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hrleave/leave-backend-go/internal/config"
	appHTTP "github.com/hrleave/leave-backend-go/internal/handler/http"
	"github.com/hrleave/leave-backend-go/internal/pkg/cron"
	"github.com/hrleave/leave-backend-go/internal/pkg/database"
	"github.com/hrleave/leave-backend-go/internal/pkg/jwt"
	"github.com/hrleave/leave-backend-go/internal/pkg/sse"
	"github.com/hrleave/leave-backend-go/internal/repository/postgresql"
	auditService "github.com/hrleave/leave-backend-go/internal/service/audit"
	authService "github.com/hrleave/leave-backend-go/internal/service/auth"
	leaveService "github.com/hrleave/leave-backend-go/internal/service/leave"
	notificationService "github.com/hrleave/leave-backend-go/internal/service/notification"
	userService "github.com/hrleave/leave-backend-go/internal/service/user"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		os.Exit(1)
	}
	defer db.Close()

	txManager := postgresql.NewTxManager(db)
	userRepo := postgresql.NewUserRepository(db)
	refreshTokenRepo := postgresql.NewRefreshTokenRepository(db)
	leaveTypeRepo := postgresql.NewLeaveTypeRepository(db)
	leaveBalanceRepo := postgresql.NewLeaveBalanceRepository(db)
	leaveRequestRepo := postgresql.NewLeaveRequestRepository(db)
	notificationRepo := postgresql.NewNotificationRepository(db)
	auditLogRepo := postgresql.NewAuditLogRepository(db)

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.RefreshExpiration)

	hub := sse.NewHub()
	auditRecorder := auditService.NewRecorder(auditLogRepo)
	notificationSvc := notificationService.NewNotificationService(notificationRepo, hub, notificationService.Config{})
	leaveSvc := leaveService.NewLeaveService(txManager, leaveTypeRepo, leaveBalanceRepo, leaveRequestRepo, userRepo, notificationSvc, auditRecorder)
	userSvc := userService.NewUserService(userRepo, auditRecorder)
	authSvc := authService.NewAuthService(txManager, userRepo, refreshTokenRepo, leaveSvc, jwtService, auditRecorder)

	authHandler := appHTTP.NewAuthHandler(jwtService, authSvc)
	userHandler := appHTTP.NewUserHandler(userSvc)
	leaveHandler := appHTTP.NewLeaveHandler(leaveSvc)
	notificationHandler := appHTTP.NewNotificationHandler(jwtService, notificationSvc)

	router := appHTTP.NewRouter(cfg, jwtService, authHandler, userHandler, leaveHandler, notificationHandler)

	scheduler := cron.NewScheduler()
	cron.NewMaintenanceJobs(refreshTokenRepo, userRepo, leaveTypeRepo, leaveBalanceRepo).Register(scheduler)
	scheduler.Start()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // SSE streams stay open indefinitely
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("Server starting", "port", cfg.App.Port, "env", cfg.App.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown error", "error", err)
	}

	scheduler.Stop()

	// Flush queued notifications before the database connection goes away.
	notificationSvc.Stop()
}
