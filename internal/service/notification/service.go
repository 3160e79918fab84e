package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hrleave/leave-backend-go/internal/domain/notification"
	"github.com/hrleave/leave-backend-go/internal/pkg/sse"
)

// Config holds notification service configuration
type Config struct {
	BatchSize     int           // default: 100
	FlushInterval time.Duration // default: 5 seconds
	WorkerCount   int           // default: 2
	QueueSize     int           // default: 1000
}

type service struct {
	repo   notification.Repository
	hub    *sse.Hub
	config Config

	queue  chan notification.CreateNotificationRequest
	wg     sync.WaitGroup
	stopCh chan struct{}
}

// NewNotificationService creates a notification service backed by
// background workers that batch-insert queued notifications.
func NewNotificationService(repo notification.Repository, hub *sse.Hub, cfg Config) notification.Service {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.FlushInterval == 0 {
		cfg.FlushInterval = 5 * time.Second
	}
	if cfg.WorkerCount == 0 {
		cfg.WorkerCount = 2
	}
	if cfg.QueueSize == 0 {
		cfg.QueueSize = 1000
	}

	s := &service{
		repo:   repo,
		hub:    hub,
		config: cfg,
		queue:  make(chan notification.CreateNotificationRequest, cfg.QueueSize),
		stopCh: make(chan struct{}),
	}

	for i := 0; i < cfg.WorkerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	slog.Info("notification service started",
		"workers", cfg.WorkerCount,
		"batch_size", cfg.BatchSize,
		"flush_interval", cfg.FlushInterval,
	)

	return s
}

// worker drains the queue, flushing on batch size, flush interval, or stop.
func (s *service) worker(id int) {
	defer s.wg.Done()

	batch := make([]notification.CreateNotificationRequest, 0, s.config.BatchSize)
	ticker := time.NewTicker(s.config.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		notifications := make([]notification.Notification, len(batch))
		for i, req := range batch {
			notifications[i] = notification.Notification{
				ID:           uuid.New().String(),
				UserID:       req.UserID,
				Title:        req.Title,
				Message:      req.Message,
				Kind:         req.Kind,
				RelatedTable: req.RelatedTable,
				RelatedID:    req.RelatedID,
				IsRead:       false,
				CreatedAt:    time.Now(),
			}
		}

		if err := s.repo.CreateBatch(ctx, notifications); err != nil {
			// A failed insert drops the batch. Notifications are
			// best effort and never fail the operation that
			// produced them.
			slog.Error("notification batch insert failed", "worker", id, "count", len(notifications), "error", err)
		} else {
			for _, n := range notifications {
				s.hub.Publish(n.UserID, sse.Event{
					UserID: n.UserID,
					Event:  "notification",
					Data:   notification.ToResponse(n),
				})
			}
		}

		batch = batch[:0]
	}

	for {
		select {
		case req := <-s.queue:
			batch = append(batch, req)
			if len(batch) >= s.config.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-s.stopCh:
			// Drain whatever is still queued before exiting.
			for {
				select {
				case req := <-s.queue:
					batch = append(batch, req)
					if len(batch) >= s.config.BatchSize {
						flush()
					}
				default:
					flush()
					return
				}
			}
		}
	}
}

// Queue implements notification.Notifier. It never blocks; a full
// queue returns ErrQueueFull and the notification is dropped.
func (s *service) Queue(ctx context.Context, req notification.CreateNotificationRequest) error {
	select {
	case s.queue <- req:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		slog.Warn("notification queue full, dropping", "user_id", req.UserID, "title", req.Title)
		return notification.ErrQueueFull
	}
}

// List returns the user's 50 most recent notifications.
func (s *service) List(ctx context.Context, userID string) ([]notification.NotificationResponse, error) {
	notifications, err := s.repo.ListByUser(ctx, userID, 50)
	if err != nil {
		return nil, err
	}

	responses := make([]notification.NotificationResponse, len(notifications))
	for i, n := range notifications {
		responses[i] = notification.ToResponse(n)
	}
	return responses, nil
}

// UnreadCount returns the count of unread notifications.
func (s *service) UnreadCount(ctx context.Context, userID string) (int, error) {
	return s.repo.UnreadCount(ctx, userID)
}

// MarkRead marks one of the user's notifications as read.
func (s *service) MarkRead(ctx context.Context, userID, notificationID string) error {
	return s.repo.MarkRead(ctx, notificationID, userID)
}

// MarkAllRead marks all of the user's notifications as read.
func (s *service) MarkAllRead(ctx context.Context, userID string) error {
	return s.repo.MarkAllRead(ctx, userID)
}

// Subscribe creates an SSE subscription for a user.
func (s *service) Subscribe(ctx context.Context, userID string) (<-chan notification.SSEEvent, func()) {
	ch, cleanup := s.hub.Subscribe(userID)

	out := make(chan notification.SSEEvent, 10)

	go func() {
		defer close(out)
		for {
			select {
			case event, ok := <-ch:
				if !ok {
					return
				}
				// The consumer may already be gone with out's buffer
				// full; never block past the subscription's lifetime.
				select {
				case out <- notification.SSEEvent{Event: event.Event, Data: event.Data}:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, cleanup
}

// Stop flushes pending batches and waits for the workers to exit.
func (s *service) Stop() {
	close(s.stopCh)
	s.wg.Wait()
	slog.Info("notification service stopped")
}
