package leave

import (
	"context"

	"github.com/hrleave/leave-backend-go/internal/domain/user"
)

type Service interface {
	// Types
	CreateType(ctx context.Context, caller user.Actor, req CreateLeaveTypeRequest) (LeaveType, error)
	UpdateType(ctx context.Context, caller user.Actor, req UpdateLeaveTypeRequest) error
	ListTypes(ctx context.Context) ([]LeaveType, error)

	// Ledger
	InitializeBalances(ctx context.Context, userID string, year int) error
	MyBalance(ctx context.Context, caller user.Actor, year int) ([]LeaveBalance, error)

	// Lifecycle
	Submit(ctx context.Context, caller user.Actor, req SubmitLeaveRequest) (LeaveRequest, error)
	MyRequests(ctx context.Context, caller user.Actor, filter RequestFilter) ([]LeaveRequest, error)
	PendingApprovals(ctx context.Context, caller user.Actor) ([]LeaveRequest, error)
	Approve(ctx context.Context, caller user.Actor, requestID string) error
	Reject(ctx context.Context, caller user.Actor, req RejectLeaveRequest) error
	Cancel(ctx context.Context, caller user.Actor, requestID string) error
}
