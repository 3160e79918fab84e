package notification

import (
	"time"
)

// Kind classifies a notification for client-side rendering.
type Kind string

const (
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
	KindWarning Kind = "warning"
	KindError   Kind = "error"
)

// ValidKinds returns all accepted notification kinds.
func ValidKinds() []Kind {
	return []Kind{KindInfo, KindSuccess, KindWarning, KindError}
}

// Notification represents a notification entity
type Notification struct {
	ID           string
	UserID       string
	Title        string
	Message      string
	Kind         Kind
	RelatedTable *string
	RelatedID    *string
	IsRead       bool
	ReadAt       *time.Time
	CreatedAt    time.Time
}
