package notification

import (
	"context"
)

// Repository defines the notification repository interface
type Repository interface {
	CreateBatch(ctx context.Context, notifications []Notification) error
	ListByUser(ctx context.Context, userID string, limit int) ([]Notification, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) error
}
