package postgresql

import (
	"context"
	"time"

	"github.com/hrleave/leave-backend-go/internal/domain/leave"
	"github.com/hrleave/leave-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type leaveBalanceRepositoryImpl struct {
	db *database.DB
}

func NewLeaveBalanceRepository(db *database.DB) leave.LeaveBalanceRepository {
	return &leaveBalanceRepositoryImpl{db: db}
}

// Initialize implements leave.LeaveBalanceRepository. The upsert re-caps
// total_days when the row already exists and recomputes remaining_days
// from the new cap, but never touches used_days.
func (r *leaveBalanceRepositoryImpl) Initialize(ctx context.Context, userID string, leaveType leave.LeaveType, year int) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_balances (id, user_id, leave_type_id, year, total_days, used_days, remaining_days)
		VALUES (uuidv7(), $1, $2, $3, $4, 0, $4)
		ON CONFLICT (user_id, leave_type_id, year)
		DO UPDATE SET
			total_days     = EXCLUDED.total_days,
			remaining_days = EXCLUDED.total_days - leave_balances.used_days,
			updated_at     = NOW()
	`

	_, err := q.Exec(ctx, query, userID, leaveType.ID, year, leaveType.MaxDaysPerYear)
	return err
}

// GetByUserTypeYear implements leave.LeaveBalanceRepository.
func (r *leaveBalanceRepositoryImpl) GetByUserTypeYear(ctx context.Context, userID, leaveTypeID string, year int) (leave.LeaveBalance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT lb.id, lb.user_id, lb.leave_type_id, lb.year,
			   lb.total_days, lb.used_days, lb.remaining_days,
			   lb.created_at, lb.updated_at,
			   lt.name AS leave_type_name, lt.description AS leave_type_description
		FROM leave_balances lb
		JOIN leave_types lt ON lb.leave_type_id = lt.id
		WHERE lb.user_id = $1 AND lb.leave_type_id = $2 AND lb.year = $3
	`

	var b leave.LeaveBalance
	err := q.QueryRow(ctx, query, userID, leaveTypeID, year).Scan(
		&b.ID, &b.UserID, &b.LeaveTypeID, &b.Year,
		&b.TotalDays, &b.UsedDays, &b.RemainingDays,
		&b.CreatedAt, &b.UpdatedAt,
		&b.LeaveTypeName, &b.LeaveTypeDescription,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return leave.LeaveBalance{}, leave.ErrBalanceNotFound
		}
		return leave.LeaveBalance{}, err
	}
	return b, nil
}

// GetByUserYear implements leave.LeaveBalanceRepository.
func (r *leaveBalanceRepositoryImpl) GetByUserYear(ctx context.Context, userID string, year int) ([]leave.LeaveBalance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT lb.id, lb.user_id, lb.leave_type_id, lb.year,
			   lb.total_days, lb.used_days, lb.remaining_days,
			   lb.created_at, lb.updated_at,
			   lt.name AS leave_type_name, lt.description AS leave_type_description
		FROM leave_balances lb
		JOIN leave_types lt ON lb.leave_type_id = lt.id
		WHERE lb.user_id = $1 AND lb.year = $2
		ORDER BY lt.name
	`

	rows, err := q.Query(ctx, query, userID, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	balances := make([]leave.LeaveBalance, 0)
	for rows.Next() {
		var b leave.LeaveBalance
		if err := rows.Scan(
			&b.ID, &b.UserID, &b.LeaveTypeID, &b.Year,
			&b.TotalDays, &b.UsedDays, &b.RemainingDays,
			&b.CreatedAt, &b.UpdatedAt,
			&b.LeaveTypeName, &b.LeaveTypeDescription,
		); err != nil {
			return nil, err
		}
		balances = append(balances, b)
	}

	return balances, rows.Err()
}

// Deduct implements leave.LeaveBalanceRepository. The availability check
// and the mutation are one conditional UPDATE, so two approvals racing
// over the last remaining days cannot both succeed.
func (r *leaveBalanceRepositoryImpl) Deduct(ctx context.Context, userID, leaveTypeID string, year, days int) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_balances
		SET used_days      = used_days + $4,
			remaining_days = remaining_days - $4,
			updated_at     = $5
		WHERE user_id = $1 AND leave_type_id = $2 AND year = $3
		  AND remaining_days >= $4
	`

	result, err := q.Exec(ctx, query, userID, leaveTypeID, year, days, time.Now())
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return leave.ErrInsufficientBalance
	}

	return nil
}
