package leave

import (
	"context"
	"time"
)

// LeaveTypeRepository - interface for the leave_types table
type LeaveTypeRepository interface {
	Create(ctx context.Context, leaveType LeaveType) (LeaveType, error)
	GetByID(ctx context.Context, id string) (LeaveType, error)
	GetByName(ctx context.Context, name string) (LeaveType, error)
	List(ctx context.Context) ([]LeaveType, error)
	ListActive(ctx context.Context) ([]LeaveType, error)
	Update(ctx context.Context, req UpdateLeaveTypeRequest) error
}

// LeaveBalanceRepository - interface for the leave_balances ledger.
type LeaveBalanceRepository interface {
	// Initialize upserts the ledger row for (userID, leaveType, year):
	// inserts total/remaining at the type's annual cap, or, when the row
	// exists, re-caps total_days without ever touching used_days.
	Initialize(ctx context.Context, userID string, leaveType LeaveType, year int) error
	GetByUserTypeYear(ctx context.Context, userID, leaveTypeID string, year int) (LeaveBalance, error)
	GetByUserYear(ctx context.Context, userID string, year int) ([]LeaveBalance, error)
	// Deduct atomically moves days from remaining to used, failing with
	// ErrInsufficientBalance when remaining_days < days. The check and the
	// mutation are one conditional UPDATE; concurrent deductions against an
	// exhausted balance cannot both succeed.
	Deduct(ctx context.Context, userID, leaveTypeID string, year, days int) error
}

// LeaveRequestRepository - interface for the leave_requests table
type LeaveRequestRepository interface {
	Create(ctx context.Context, request LeaveRequest) (LeaveRequest, error)
	GetByID(ctx context.Context, id string) (LeaveRequest, error)
	ListByUser(ctx context.Context, userID string, filter RequestFilter) ([]LeaveRequest, error)
	// ListPending returns pending requests oldest-first; a nil managerID
	// returns all of them (hr scope), otherwise only direct reports'.
	ListPending(ctx context.Context, managerID *string) ([]LeaveRequest, error)
	// HasOverlapping reports whether any pending or approved request of
	// userID intersects [start, end] inclusively.
	HasOverlapping(ctx context.Context, userID string, start, end time.Time) (bool, error)
	// The Mark* mutations flip status away from pending and return false
	// when the request was not pending (already processed or missing).
	MarkApproved(ctx context.Context, id, approverID string, at time.Time) (bool, error)
	MarkRejected(ctx context.Context, id, approverID string, at time.Time, reason string) (bool, error)
	MarkCancelled(ctx context.Context, id string, at time.Time) (bool, error)
}
