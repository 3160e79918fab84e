package notification

import "errors"

// Notification domain errors
var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrInvalidKind          = errors.New("invalid notification kind")
	ErrQueueFull            = errors.New("notification queue is full")
)
