package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hrleave/leave-backend-go/internal/domain/notification"
	"github.com/hrleave/leave-backend-go/internal/handler/http/middleware"
	"github.com/hrleave/leave-backend-go/internal/handler/http/response"
	"github.com/hrleave/leave-backend-go/internal/pkg/jwt"
)

const sseKeepAliveInterval = 30 * time.Second

type NotificationHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	UnreadCount(w http.ResponseWriter, r *http.Request)
	MarkRead(w http.ResponseWriter, r *http.Request)
	MarkAllRead(w http.ResponseWriter, r *http.Request)
	GetSSEToken(w http.ResponseWriter, r *http.Request)
	Stream(w http.ResponseWriter, r *http.Request)
}

type NotificationHandlerImpl struct {
	jwtService          jwt.Service
	notificationService notification.Service
}

func NewNotificationHandler(jwtService jwt.Service, notificationService notification.Service) NotificationHandler {
	return &NotificationHandlerImpl{
		jwtService:          jwtService,
		notificationService: notificationService,
	}
}

// List implements NotificationHandler.
func (n *NotificationHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	notifications, err := n.notificationService.List(r.Context(), actor.ID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, notifications)
}

// UnreadCount implements NotificationHandler.
func (n *NotificationHandlerImpl) UnreadCount(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	count, err := n.notificationService.UnreadCount(r.Context(), actor.ID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, notification.UnreadCountResponse{UnreadCount: count})
}

// MarkRead implements NotificationHandler.
func (n *NotificationHandlerImpl) MarkRead(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	notificationID := chi.URLParam(r, "id")
	if err := n.notificationService.MarkRead(r.Context(), actor.ID, notificationID); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Notification marked as read", nil)
}

// MarkAllRead implements NotificationHandler.
func (n *NotificationHandlerImpl) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if err := n.notificationService.MarkAllRead(r.Context(), actor.ID); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "All notifications marked as read", nil)
}

// GetSSEToken implements NotificationHandler. EventSource cannot set an
// Authorization header, so the client exchanges its access token for a
// short lived token carried in the stream URL.
func (n *NotificationHandlerImpl) GetSSEToken(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	token, expiresIn, err := n.jwtService.GenerateSSEToken(actor.ID)
	if err != nil {
		slog.Error("Generate SSE Token error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Success(w, notification.SSETokenResponse{
		Token:     token,
		ExpiresIn: expiresIn,
	})
}

// Stream implements NotificationHandler.
func (n *NotificationHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		response.Unauthorized(w, "Missing token")
		return
	}

	userID, err := n.jwtService.ValidateSSEToken(token)
	if err != nil {
		response.Unauthorized(w, "Invalid or expired token")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		response.InternalServerError(w, "Streaming is not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, unsubscribe := n.notificationService.Subscribe(r.Context(), userID)
	defer unsubscribe()

	fmt.Fprintf(w, "event: connected\ndata: {}\n\n")
	flusher.Flush()

	slog.Info("SSE stream opened", "user_id", userID)

	keepAlive := time.NewTicker(sseKeepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			slog.Info("SSE stream closed", "user_id", userID)
			return
		case <-keepAlive.C:
			fmt.Fprintf(w, ": ping\n\n")
			flusher.Flush()
		case event, open := <-events:
			if !open {
				return
			}
			data, err := json.Marshal(event.Data)
			if err != nil {
				slog.Error("SSE marshal error", "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Event, data)
			flusher.Flush()
		}
	}
}
