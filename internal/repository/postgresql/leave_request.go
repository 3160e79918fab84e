package postgresql

import (
	"context"
	"time"

	"github.com/hrleave/leave-backend-go/internal/domain/leave"
	"github.com/hrleave/leave-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type leaveRequestRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRequestRepository(db *database.DB) leave.LeaveRequestRepository {
	return &leaveRequestRepositoryImpl{db: db}
}

const leaveRequestColumns = `
	lr.id, lr.user_id, lr.leave_type_id, lr.start_date, lr.end_date,
	lr.days_requested, lr.reason, lr.status,
	lr.approved_by, lr.approved_at, lr.rejection_reason, lr.cancelled_at,
	lr.created_at, lr.updated_at,
	lt.name AS leave_type_name,
	u.first_name || ' ' || u.last_name AS employee_name,
	u.department,
	a.first_name || ' ' || a.last_name AS approver_name,
	u.manager_id AS owner_manager_id
`

const leaveRequestJoins = `
	FROM leave_requests lr
	JOIN leave_types lt ON lr.leave_type_id = lt.id
	JOIN users u ON lr.user_id = u.id
	LEFT JOIN users a ON lr.approved_by = a.id
`

func scanLeaveRequest(row pgx.Row) (leave.LeaveRequest, error) {
	var lr leave.LeaveRequest
	err := row.Scan(
		&lr.ID, &lr.UserID, &lr.LeaveTypeID, &lr.StartDate, &lr.EndDate,
		&lr.DaysRequested, &lr.Reason, &lr.Status,
		&lr.ApprovedBy, &lr.ApprovedAt, &lr.RejectionReason, &lr.CancelledAt,
		&lr.CreatedAt, &lr.UpdatedAt,
		&lr.LeaveTypeName,
		&lr.EmployeeName,
		&lr.Department,
		&lr.ApproverName,
		&lr.OwnerManagerID,
	)
	return lr, err
}

// Create implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) Create(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_requests (
			id, user_id, leave_type_id, start_date, end_date,
			days_requested, reason, status
		)
		VALUES (uuidv7(), $1, $2, $3, $4, $5, $6, 'pending')
		RETURNING id, status, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		request.UserID, request.LeaveTypeID, request.StartDate, request.EndDate,
		request.DaysRequested, request.Reason,
	).Scan(&request.ID, &request.Status, &request.CreatedAt, &request.UpdatedAt)
	if err != nil {
		return leave.LeaveRequest{}, err
	}

	return request, nil
}

// GetByID implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + leaveRequestColumns + leaveRequestJoins + `WHERE lr.id = $1`

	lr, err := scanLeaveRequest(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return leave.LeaveRequest{}, leave.ErrRequestNotFound
		}
		return leave.LeaveRequest{}, err
	}
	return lr, nil
}

// ListByUser implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) ListByUser(ctx context.Context, userID string, filter leave.RequestFilter) ([]leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + leaveRequestColumns + leaveRequestJoins + `
		WHERE lr.user_id = $1
		  AND ($2::text IS NULL OR lr.status = $2)
		  AND ($3::int IS NULL OR EXTRACT(YEAR FROM lr.start_date) = $3)
		ORDER BY lr.created_at DESC
	`

	rows, err := q.Query(ctx, query, userID, filter.Status, filter.Year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectLeaveRequests(rows)
}

// ListPending implements leave.LeaveRequestRepository. Oldest first so
// approvers work through the backlog in submission order.
func (r *leaveRequestRepositoryImpl) ListPending(ctx context.Context, managerID *string) ([]leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + leaveRequestColumns + leaveRequestJoins + `
		WHERE lr.status = 'pending'
		  AND ($1::uuid IS NULL OR u.manager_id = $1)
		ORDER BY lr.created_at ASC
	`

	rows, err := q.Query(ctx, query, managerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectLeaveRequests(rows)
}

func collectLeaveRequests(rows pgx.Rows) ([]leave.LeaveRequest, error) {
	requests := make([]leave.LeaveRequest, 0)
	for rows.Next() {
		lr, err := scanLeaveRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, lr)
	}
	return requests, rows.Err()
}

// HasOverlapping implements leave.LeaveRequestRepository. Boundaries
// are inclusive: sharing a single day counts as an overlap.
func (r *leaveRequestRepositoryImpl) HasOverlapping(ctx context.Context, userID string, start, end time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS (
			SELECT 1
			FROM leave_requests
			WHERE user_id = $1
			  AND status IN ('pending', 'approved')
			  AND start_date <= $3
			  AND end_date >= $2
		)
	`

	var exists bool
	if err := q.QueryRow(ctx, query, userID, start, end).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// MarkApproved implements leave.LeaveRequestRepository. The WHERE clause
// on status makes the flip conditional: false means the request was
// already resolved (or does not exist).
func (r *leaveRequestRepositoryImpl) MarkApproved(ctx context.Context, id, approverID string, at time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_requests
		SET status = 'approved', approved_by = $2, approved_at = $3, updated_at = $3
		WHERE id = $1 AND status = 'pending'
	`

	result, err := q.Exec(ctx, query, id, approverID, at)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() == 1, nil
}

// MarkRejected implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) MarkRejected(ctx context.Context, id, approverID string, at time.Time, reason string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_requests
		SET status = 'rejected', approved_by = $2, approved_at = $3,
			rejection_reason = $4, updated_at = $3
		WHERE id = $1 AND status = 'pending'
	`

	result, err := q.Exec(ctx, query, id, approverID, at, reason)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() == 1, nil
}

// MarkCancelled implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) MarkCancelled(ctx context.Context, id string, at time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_requests
		SET status = 'cancelled', cancelled_at = $2, updated_at = $2
		WHERE id = $1 AND status = 'pending'
	`

	result, err := q.Exec(ctx, query, id, at)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() == 1, nil
}
