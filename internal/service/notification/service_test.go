package notification

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/hrleave/leave-backend-go/internal/domain/notification"
	"github.com/hrleave/leave-backend-go/internal/pkg/sse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotificationRepo struct {
	mu        sync.Mutex
	stored    []notification.Notification
	markRead  [][2]string // notificationID, userID
	markedAll []string
}

func (f *fakeNotificationRepo) CreateBatch(_ context.Context, batch []notification.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stored = append(f.stored, batch...)
	return nil
}

func (f *fakeNotificationRepo) ListByUser(_ context.Context, userID string, limit int) ([]notification.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []notification.Notification
	for _, n := range f.stored {
		if n.UserID == userID && len(out) < limit {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotificationRepo) UnreadCount(_ context.Context, userID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, n := range f.stored {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (f *fakeNotificationRepo) MarkRead(_ context.Context, notificationID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markRead = append(f.markRead, [2]string{notificationID, userID})
	return nil
}

func (f *fakeNotificationRepo) MarkAllRead(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markedAll = append(f.markedAll, userID)
	return nil
}

func (f *fakeNotificationRepo) snapshot() []notification.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]notification.Notification(nil), f.stored...)
}

func queued(userID, title string) notification.CreateNotificationRequest {
	return notification.CreateNotificationRequest{
		UserID:  userID,
		Title:   title,
		Message: "message body",
		Kind:    notification.KindInfo,
	}
}

func TestQueueAndFlush(t *testing.T) {
	t.Run("stop drains and persists everything queued", func(t *testing.T) {
		repo := &fakeNotificationRepo{}
		svc := NewNotificationService(repo, sse.NewHub(), Config{FlushInterval: time.Hour})

		ctx := context.Background()
		for i := 0; i < 25; i++ {
			require.NoError(t, svc.Queue(ctx, queued("u-1", "t")))
		}
		svc.Stop()

		stored := repo.snapshot()
		assert.Len(t, stored, 25)
		for _, n := range stored {
			assert.NotEmpty(t, n.ID)
			assert.Equal(t, notification.KindInfo, n.Kind)
			assert.False(t, n.IsRead)
		}
	})

	t.Run("full queue drops with ErrQueueFull", func(t *testing.T) {
		repo := &fakeNotificationRepo{}
		svc := NewNotificationService(repo, sse.NewHub(), Config{QueueSize: 1, FlushInterval: time.Hour})
		// With the workers stopped nothing consumes the queue, so the
		// second enqueue must find it full.
		svc.Stop()

		ctx := context.Background()
		require.NoError(t, svc.Queue(ctx, queued("u-1", "first")))
		err := svc.Queue(ctx, queued("u-1", "second"))
		assert.ErrorIs(t, err, notification.ErrQueueFull)
	})
}

func TestSubscribeReceivesStoredNotifications(t *testing.T) {
	repo := &fakeNotificationRepo{}
	hub := sse.NewHub()
	svc := NewNotificationService(repo, hub, Config{FlushInterval: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, unsubscribe := svc.Subscribe(ctx, "u-1")
	defer unsubscribe()

	require.NoError(t, svc.Queue(ctx, queued("u-1", "Leave Request Approved")))

	select {
	case event := <-events:
		assert.Equal(t, "notification", event.Event)
		resp, ok := event.Data.(notification.NotificationResponse)
		require.True(t, ok)
		assert.Equal(t, "Leave Request Approved", resp.Title)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the SSE event")
	}

	svc.Stop()
}

func TestSubscribeUnwindsOnCancelledContext(t *testing.T) {
	repo := &fakeNotificationRepo{}
	hub := sse.NewHub()
	svc := NewNotificationService(repo, hub, Config{FlushInterval: time.Hour})
	defer svc.Stop()

	ctx, cancel := context.WithCancel(context.Background())

	events, unsubscribe := svc.Subscribe(ctx, "u-1")
	defer unsubscribe()

	// Nobody reads events; overfill both the hub channel and the
	// forwarder's buffer so the pending send has nowhere to go.
	for i := 0; i < 25; i++ {
		hub.Publish("u-1", sse.Event{UserID: "u-1", Event: "notification", Data: i})
	}
	cancel()

	// The forwarder must notice the cancellation and close the channel
	// instead of blocking on the full buffer forever.
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-events:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("events channel never closed after context cancellation")
		}
	}
}

func TestReadDelegation(t *testing.T) {
	repo := &fakeNotificationRepo{}
	svc := NewNotificationService(repo, sse.NewHub(), Config{FlushInterval: time.Hour})
	defer svc.Stop()

	ctx := context.Background()

	require.NoError(t, svc.MarkRead(ctx, "u-1", "n-9"))
	require.Len(t, repo.markRead, 1)
	// Repository order is (notificationID, userID).
	assert.Equal(t, [2]string{"n-9", "u-1"}, repo.markRead[0])

	require.NoError(t, svc.MarkAllRead(ctx, "u-1"))
	assert.Equal(t, []string{"u-1"}, repo.markedAll)
}
