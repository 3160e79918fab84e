package notification

import (
	"time"
)

// CreateNotificationRequest represents a queued notification before persistence.
type CreateNotificationRequest struct {
	UserID       string
	Title        string
	Message      string
	Kind         Kind
	RelatedTable *string
	RelatedID    *string
}

// NotificationResponse represents a notification in API responses
type NotificationResponse struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	Kind      Kind       `json:"type"`
	IsRead    bool       `json:"is_read"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// UnreadCountResponse represents unread count response
type UnreadCountResponse struct {
	UnreadCount int `json:"unread_count"`
}

// SSETokenResponse represents the short-lived SSE token response
type SSETokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

// ToResponse converts a Notification entity to a NotificationResponse
func ToResponse(n Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Title:     n.Title,
		Message:   n.Message,
		Kind:      n.Kind,
		IsRead:    n.IsRead,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}
