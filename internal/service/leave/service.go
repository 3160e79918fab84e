package leave

import (
	"context"
	"fmt"
	"time"

	"github.com/hrleave/leave-backend-go/internal/domain/audit"
	"github.com/hrleave/leave-backend-go/internal/domain/leave"
	"github.com/hrleave/leave-backend-go/internal/domain/notification"
	"github.com/hrleave/leave-backend-go/internal/domain/user"
	"github.com/hrleave/leave-backend-go/internal/pkg/database"
	"github.com/hrleave/leave-backend-go/internal/pkg/validator"
)

type leaveServiceImpl struct {
	txm      database.TxManager
	types    leave.LeaveTypeRepository
	balances leave.LeaveBalanceRepository
	requests leave.LeaveRequestRepository
	users    user.UserRepository
	notifier notification.Notifier
	audits   audit.Recorder
}

func NewLeaveService(
	txm database.TxManager,
	types leave.LeaveTypeRepository,
	balances leave.LeaveBalanceRepository,
	requests leave.LeaveRequestRepository,
	users user.UserRepository,
	notifier notification.Notifier,
	audits audit.Recorder,
) leave.Service {
	return &leaveServiceImpl{
		txm:      txm,
		types:    types,
		balances: balances,
		requests: requests,
		users:    users,
		notifier: notifier,
		audits:   audits,
	}
}

// CreateType implements leave.Service. HR only.
func (s *leaveServiceImpl) CreateType(ctx context.Context, caller user.Actor, req leave.CreateLeaveTypeRequest) (leave.LeaveType, error) {
	if err := user.Authorize(caller, caller.ID, nil, user.PermissionLeaveManageTypes); err != nil {
		return leave.LeaveType{}, err
	}
	if err := req.Validate(); err != nil {
		return leave.LeaveType{}, err
	}

	lt := leave.LeaveType{
		Name:           req.Name,
		Description:    req.Description,
		MaxDaysPerYear: req.MaxDaysPerYear,
	}
	return s.types.Create(ctx, lt)
}

// UpdateType implements leave.Service. HR only. Types are never deleted;
// retiring one sets is_active to false so history keeps its references.
func (s *leaveServiceImpl) UpdateType(ctx context.Context, caller user.Actor, req leave.UpdateLeaveTypeRequest) error {
	if err := user.Authorize(caller, caller.ID, nil, user.PermissionLeaveManageTypes); err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return err
	}
	return s.types.Update(ctx, req)
}

// ListTypes implements leave.Service.
func (s *leaveServiceImpl) ListTypes(ctx context.Context) ([]leave.LeaveType, error) {
	return s.types.List(ctx)
}

// InitializeBalances implements leave.Service. One ledger row per active
// leave type; safe to re-run, existing used_days survive.
func (s *leaveServiceImpl) InitializeBalances(ctx context.Context, userID string, year int) error {
	types, err := s.types.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("list active leave types: %w", err)
	}

	for _, lt := range types {
		if err := s.balances.Initialize(ctx, userID, lt, year); err != nil {
			return fmt.Errorf("initialize balance for %s: %w", lt.Name, err)
		}
	}
	return nil
}

// MyBalance implements leave.Service.
func (s *leaveServiceImpl) MyBalance(ctx context.Context, caller user.Actor, year int) ([]leave.LeaveBalance, error) {
	if year == 0 {
		year = time.Now().Year()
	}
	return s.balances.GetByUserYear(ctx, caller.ID, year)
}

// Submit implements leave.Service. Preconditions run in a fixed order and
// the first failure wins: past start date, end before start, inactive
// leave type, insufficient balance, overlapping request.
func (s *leaveServiceImpl) Submit(ctx context.Context, caller user.Actor, req leave.SubmitLeaveRequest) (leave.LeaveRequest, error) {
	if err := user.Authorize(caller, caller.ID, nil, user.PermissionLeaveSubmit); err != nil {
		return leave.LeaveRequest{}, err
	}
	if err := req.Validate(); err != nil {
		return leave.LeaveRequest{}, err
	}

	// Date checks come before anything about the leave type, so a
	// past-dated request always reports the date problem.
	if req.Start.Before(leave.Today()) {
		return leave.LeaveRequest{}, leave.ErrStartDateInPast
	}
	if req.End.Before(req.Start) {
		return leave.LeaveRequest{}, validator.ValidationErrors{{
			Field:   "end_date",
			Message: "end_date must not be before start_date",
		}}
	}

	leaveType, err := s.types.GetByID(ctx, req.LeaveTypeID)
	if err != nil {
		return leave.LeaveRequest{}, err
	}
	if !leaveType.IsActive {
		return leave.LeaveRequest{}, leave.ErrLeaveTypeInactive
	}

	days := leave.InclusiveDays(req.Start, req.End)

	balance, err := s.balances.GetByUserTypeYear(ctx, caller.ID, leaveType.ID, time.Now().Year())
	if err != nil {
		return leave.LeaveRequest{}, err
	}
	if balance.RemainingDays < days {
		return leave.LeaveRequest{}, leave.ErrInsufficientBalance
	}

	overlap, err := s.requests.HasOverlapping(ctx, caller.ID, req.Start, req.End)
	if err != nil {
		return leave.LeaveRequest{}, err
	}
	if overlap {
		return leave.LeaveRequest{}, leave.ErrOverlappingRequest
	}

	request, err := s.requests.Create(ctx, leave.LeaveRequest{
		UserID:        caller.ID,
		LeaveTypeID:   leaveType.ID,
		StartDate:     req.Start,
		EndDate:       req.End,
		DaysRequested: days,
		Reason:        req.Reason,
	})
	if err != nil {
		return leave.LeaveRequest{}, err
	}

	s.notifyManager(ctx, caller, request, leaveType)

	detail := fmt.Sprintf("%s, %s to %s, %d day(s)",
		leaveType.Name, request.StartDate.Format("2006-01-02"), request.EndDate.Format("2006-01-02"), days)
	s.audits.Record(ctx, audit.Entry{
		ActorID:    caller.ID,
		Action:     audit.ActionLeaveSubmitted,
		EntityType: "leave_request",
		EntityID:   request.ID,
		Detail:     &detail,
	})

	return request, nil
}

func (s *leaveServiceImpl) notifyManager(ctx context.Context, caller user.Actor, request leave.LeaveRequest, leaveType leave.LeaveType) {
	owner, err := s.users.GetByID(ctx, caller.ID)
	if err != nil || owner.ManagerID == nil {
		return
	}

	table := "leave_requests"
	_ = s.notifier.Queue(ctx, notification.CreateNotificationRequest{
		UserID: *owner.ManagerID,
		Title:  "New Leave Request",
		Message: fmt.Sprintf("%s requested %d day(s) of %s leave from %s to %s",
			owner.FullName(), request.DaysRequested, leaveType.Name,
			request.StartDate.Format("2006-01-02"), request.EndDate.Format("2006-01-02")),
		Kind:         notification.KindInfo,
		RelatedTable: &table,
		RelatedID:    &request.ID,
	})
}

// MyRequests implements leave.Service.
func (s *leaveServiceImpl) MyRequests(ctx context.Context, caller user.Actor, filter leave.RequestFilter) ([]leave.LeaveRequest, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	return s.requests.ListByUser(ctx, caller.ID, filter)
}

// PendingApprovals implements leave.Service. Managers see their direct
// reports' pending requests; hr sees everyone's.
func (s *leaveServiceImpl) PendingApprovals(ctx context.Context, caller user.Actor) ([]leave.LeaveRequest, error) {
	if !user.HasPermission(caller.Role, user.PermissionLeaveApprove) {
		return nil, user.ErrForbidden
	}

	var managerID *string
	if caller.Role != user.RoleHR {
		managerID = &caller.ID
	}
	return s.requests.ListPending(ctx, managerID)
}

// Approve implements leave.Service. The status flip and the ledger
// deduction commit together or not at all; a request that lost the race
// to another approver surfaces as ErrRequestAlreadyProcessed.
func (s *leaveServiceImpl) Approve(ctx context.Context, caller user.Actor, requestID string) error {
	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return err
	}
	if err := user.Authorize(caller, request.UserID, request.OwnerManagerID, user.PermissionLeaveApprove); err != nil {
		return err
	}

	err = s.txm.WithinTransaction(ctx, func(ctx context.Context) error {
		ok, err := s.requests.MarkApproved(ctx, requestID, caller.ID, time.Now())
		if err != nil {
			return err
		}
		if !ok {
			return leave.ErrRequestAlreadyProcessed
		}

		return s.balances.Deduct(ctx, request.UserID, request.LeaveTypeID, time.Now().Year(), request.DaysRequested)
	})
	if err != nil {
		return err
	}

	s.audits.Record(ctx, audit.Entry{
		ActorID:    caller.ID,
		Action:     audit.ActionLeaveApproved,
		EntityType: "leave_request",
		EntityID:   request.ID,
	})

	table := "leave_requests"
	_ = s.notifier.Queue(ctx, notification.CreateNotificationRequest{
		UserID: request.UserID,
		Title:  "Leave Request Approved",
		Message: fmt.Sprintf("Your leave request from %s to %s has been approved",
			request.StartDate.Format("2006-01-02"), request.EndDate.Format("2006-01-02")),
		Kind:         notification.KindSuccess,
		RelatedTable: &table,
		RelatedID:    &request.ID,
	})

	return nil
}

// Reject implements leave.Service. The reason is stored verbatim and
// echoed back in the requester's notification.
func (s *leaveServiceImpl) Reject(ctx context.Context, caller user.Actor, req leave.RejectLeaveRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	request, err := s.requests.GetByID(ctx, req.RequestID)
	if err != nil {
		return err
	}
	if err := user.Authorize(caller, request.UserID, request.OwnerManagerID, user.PermissionLeaveApprove); err != nil {
		return err
	}

	ok, err := s.requests.MarkRejected(ctx, req.RequestID, caller.ID, time.Now(), req.Reason)
	if err != nil {
		return err
	}
	if !ok {
		return leave.ErrRequestAlreadyProcessed
	}

	s.audits.Record(ctx, audit.Entry{
		ActorID:    caller.ID,
		Action:     audit.ActionLeaveRejected,
		EntityType: "leave_request",
		EntityID:   request.ID,
		Detail:     &req.Reason,
	})

	table := "leave_requests"
	_ = s.notifier.Queue(ctx, notification.CreateNotificationRequest{
		UserID: request.UserID,
		Title:  "Leave Request Rejected",
		Message: fmt.Sprintf("Your leave request from %s to %s was rejected: %s",
			request.StartDate.Format("2006-01-02"), request.EndDate.Format("2006-01-02"), req.Reason),
		Kind:         notification.KindError,
		RelatedTable: &table,
		RelatedID:    &request.ID,
	})

	return nil
}

// Cancel implements leave.Service. Only the owner may cancel, and only
// while the request is still pending. No ledger effect.
func (s *leaveServiceImpl) Cancel(ctx context.Context, caller user.Actor, requestID string) error {
	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return err
	}
	if request.UserID != caller.ID {
		return leave.ErrNotRequestOwner
	}

	ok, err := s.requests.MarkCancelled(ctx, requestID, time.Now())
	if err != nil {
		return err
	}
	if !ok {
		return leave.ErrRequestAlreadyProcessed
	}

	s.audits.Record(ctx, audit.Entry{
		ActorID:    caller.ID,
		Action:     audit.ActionLeaveCancelled,
		EntityType: "leave_request",
		EntityID:   requestID,
	})

	return nil
}
