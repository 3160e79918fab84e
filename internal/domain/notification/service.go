package notification

import (
	"context"
)

// SSEEvent is the payload pushed to subscribed clients.
type SSEEvent struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Notifier is the narrow interface other services use to emit
// notifications. Queueing never blocks the caller; delivery is
// best effort and happens on background workers.
type Notifier interface {
	Queue(ctx context.Context, req CreateNotificationRequest) error
}

// Service defines the notification service interface
type Service interface {
	Notifier

	List(ctx context.Context, userID string) ([]NotificationResponse, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, userID, notificationID string) error
	MarkAllRead(ctx context.Context, userID string) error

	// SSE subscription
	Subscribe(ctx context.Context, userID string) (<-chan SSEEvent, func())

	// Stop drains the queue and waits for the workers to exit.
	Stop()
}
