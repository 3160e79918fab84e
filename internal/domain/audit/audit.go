package audit

import (
	"context"
	"time"
)

// Actions follow "entity.verb". New actions are added here so the log
// stays greppable.
const (
	ActionUserRegistered = "user.registered"
	ActionUserUpdated    = "user.updated"
	ActionLeaveSubmitted = "leave_request.submitted"
	ActionLeaveApproved  = "leave_request.approved"
	ActionLeaveRejected  = "leave_request.rejected"
	ActionLeaveCancelled = "leave_request.cancelled"
)

// Entry is one append-only audit record. Rows are never updated or
// deleted.
type Entry struct {
	ID         string    `json:"id"`
	ActorID    string    `json:"actor_id"`
	Action     string    `json:"action"`
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id"`
	Detail     *string   `json:"detail,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Repository - interface for the audit_logs table
type Repository interface {
	Create(ctx context.Context, entry Entry) error
	ListByEntity(ctx context.Context, entityType, entityID string) ([]Entry, error)
}

// Recorder is the write side handed to services. Recording never returns
// an error: an audit write must not fail the operation it describes.
type Recorder interface {
	Record(ctx context.Context, entry Entry)
}
