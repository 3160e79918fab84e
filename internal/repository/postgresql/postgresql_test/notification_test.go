package postgresql_test

import (
	"context"
	"testing"

	"github.com/hrleave/leave-backend-go/internal/domain/notification"
	"github.com/hrleave/leave-backend-go/internal/domain/user"
	"github.com/hrleave/leave-backend-go/internal/repository/postgresql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationRepository(t *testing.T) {
	db := testDatabase(t)
	userRepo := postgresql.NewUserRepository(db)
	repo := postgresql.NewNotificationRepository(db)
	ctx := context.Background()

	seedNotification := func(t *testing.T, userID string) notification.Notification {
		t.Helper()

		batch := []notification.Notification{{
			UserID:  userID,
			Title:   "Leave request approved",
			Message: "Your annual leave was approved",
			Kind:    notification.KindSuccess,
		}}
		require.NoError(t, repo.CreateBatch(ctx, batch))
		return batch[0]
	}

	t.Run("create batch and list newest first", func(t *testing.T) {
		truncateAll(t, db)

		owner := seedUser(t, userRepo, "emp@example.com", user.RoleEmployee, nil)
		n := seedNotification(t, owner.ID)

		listed, err := repo.ListByUser(ctx, owner.ID, 20)
		require.NoError(t, err)
		require.Len(t, listed, 1)
		assert.Equal(t, n.ID, listed[0].ID)
		assert.False(t, listed[0].IsRead)
		assert.Nil(t, listed[0].ReadAt)
	})

	t.Run("mark read is idempotent", func(t *testing.T) {
		truncateAll(t, db)

		owner := seedUser(t, userRepo, "emp@example.com", user.RoleEmployee, nil)
		n := seedNotification(t, owner.ID)

		require.NoError(t, repo.MarkRead(ctx, n.ID, owner.ID))

		listed, err := repo.ListByUser(ctx, owner.ID, 20)
		require.NoError(t, err)
		require.Len(t, listed, 1)
		require.NotNil(t, listed[0].ReadAt)
		firstReadAt := *listed[0].ReadAt

		// A second mark still succeeds and keeps the original read_at.
		require.NoError(t, repo.MarkRead(ctx, n.ID, owner.ID))

		listed, err = repo.ListByUser(ctx, owner.ID, 20)
		require.NoError(t, err)
		require.NotNil(t, listed[0].ReadAt)
		assert.True(t, listed[0].ReadAt.Equal(firstReadAt))

		count, err := repo.UnreadCount(ctx, owner.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})

	t.Run("mark read scopes to the owner", func(t *testing.T) {
		truncateAll(t, db)

		owner := seedUser(t, userRepo, "emp@example.com", user.RoleEmployee, nil)
		other := seedUser(t, userRepo, "other@example.com", user.RoleEmployee, nil)
		n := seedNotification(t, owner.ID)

		err := repo.MarkRead(ctx, n.ID, other.ID)
		assert.ErrorIs(t, err, notification.ErrNotificationNotFound)

		err = repo.MarkRead(ctx, "00000000-0000-0000-0000-000000000000", owner.ID)
		assert.ErrorIs(t, err, notification.ErrNotificationNotFound)
	})

	t.Run("mark all read clears the unread count", func(t *testing.T) {
		truncateAll(t, db)

		owner := seedUser(t, userRepo, "emp@example.com", user.RoleEmployee, nil)
		seedNotification(t, owner.ID)
		seedNotification(t, owner.ID)

		count, err := repo.UnreadCount(ctx, owner.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		require.NoError(t, repo.MarkAllRead(ctx, owner.ID))

		count, err = repo.UnreadCount(ctx, owner.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})
}
