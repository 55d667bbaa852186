package notifications

import (
	"context"
	"encoding/json"
	"log/slog"

	"inschoolz/internal/models"
	"inschoolz/internal/observability"
	"inschoolz/internal/repository"
)

// Service persists notifications and fans them out in real time. The row is
// written first and is the source of truth; the Redis publish that feeds the
// websocket hub is best-effort.
type Service struct {
	repo     repository.NotificationRepository
	notifier *Notifier
}

// NewService returns a new notification Service.
func NewService(repo repository.NotificationRepository, notifier *Notifier) *Service {
	return &Service{repo: repo, notifier: notifier}
}

// Send stores the notification and publishes it to the user's channel.
// Failures are logged, never returned: no business flow rolls back over a
// notification.
func (s *Service) Send(ctx context.Context, n *models.Notification) {
	if err := s.repo.Create(ctx, n); err != nil {
		slog.ErrorContext(ctx, "failed to persist notification",
			slog.Uint64("user_id", uint64(n.UserID)),
			slog.String("type", string(n.Type)),
			slog.String("error", err.Error()),
		)
		return
	}
	observability.NotificationsSentTotal.WithLabelValues(string(n.Type), "db").Inc()

	if s.notifier == nil {
		return
	}
	payload, err := json.Marshal(n)
	if err != nil {
		return
	}
	if err := s.notifier.PublishUser(ctx, n.UserID, string(payload)); err != nil {
		slog.WarnContext(ctx, "failed to publish notification",
			slog.Uint64("user_id", uint64(n.UserID)),
			slog.String("error", err.Error()),
		)
		return
	}
	observability.NotificationsSentTotal.WithLabelValues(string(n.Type), "ws").Inc()
}

// List returns a user's notifications.
func (s *Service) List(ctx context.Context, userID uint, unreadOnly bool, limit, offset int) ([]models.Notification, error) {
	return s.repo.List(ctx, userID, unreadOnly, limit, offset)
}

// UnreadCount returns the user's unread notification count.
func (s *Service) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	return s.repo.UnreadCount(ctx, userID)
}

// MarkRead marks one of the user's notifications as read.
func (s *Service) MarkRead(ctx context.Context, userID, id uint) error {
	return s.repo.MarkRead(ctx, userID, id)
}

// MarkAllRead marks all of the user's notifications as read.
func (s *Service) MarkAllRead(ctx context.Context, userID uint) error {
	return s.repo.MarkAllRead(ctx, userID)
}

// Delete removes one of the user's notifications.
func (s *Service) Delete(ctx context.Context, userID, id uint) error {
	return s.repo.Delete(ctx, userID, id)
}
