package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/hrleave/leave-backend-go/internal/domain/auth"
	"github.com/hrleave/leave-backend-go/internal/domain/leave"
	"github.com/hrleave/leave-backend-go/internal/domain/user"
)

// MaintenanceJobs holds the recurring housekeeping work: pruning expired
// refresh tokens and making sure every active user has ledger rows for
// the current year, which covers the January rollover without a manual
// step.
type MaintenanceJobs struct {
	tokens   auth.RefreshTokenRepository
	users    user.UserRepository
	types    leave.LeaveTypeRepository
	balances leave.LeaveBalanceRepository
}

func NewMaintenanceJobs(
	tokens auth.RefreshTokenRepository,
	users user.UserRepository,
	types leave.LeaveTypeRepository,
	balances leave.LeaveBalanceRepository,
) *MaintenanceJobs {
	return &MaintenanceJobs{
		tokens:   tokens,
		users:    users,
		types:    types,
		balances: balances,
	}
}

// Register attaches the jobs to the scheduler.
func (m *MaintenanceJobs) Register(s *Scheduler) {
	s.AddJob("prune-expired-refresh-tokens", 24*time.Hour, m.PruneExpiredTokens)
	s.AddJob("ensure-current-year-balances", 12*time.Hour, m.EnsureCurrentYearBalances)
}

// PruneExpiredTokens drops refresh tokens past their expiry.
func (m *MaintenanceJobs) PruneExpiredTokens(ctx context.Context) error {
	deleted, err := m.tokens.DeleteExpired(ctx, time.Now().Unix())
	if err != nil {
		return err
	}
	if deleted > 0 {
		slog.Info("Pruned expired refresh tokens", "count", deleted)
	}
	return nil
}

// EnsureCurrentYearBalances initializes this year's ledger rows for every
// active user and active leave type. Initialize is an upsert, so rerunning
// never touches used days.
func (m *MaintenanceJobs) EnsureCurrentYearBalances(ctx context.Context) error {
	year := time.Now().Year()

	types, err := m.types.ListActive(ctx)
	if err != nil {
		return err
	}
	if len(types) == 0 {
		return nil
	}

	users, err := m.users.List(ctx)
	if err != nil {
		return err
	}

	for _, u := range users {
		if !u.IsActive {
			continue
		}
		for _, lt := range types {
			if err := m.balances.Initialize(ctx, u.ID, lt, year); err != nil {
				return err
			}
		}
	}
	return nil
}
