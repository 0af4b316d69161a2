package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Yasserk123/HealthVision-Projet/internal/model"
	"github.com/Yasserk123/HealthVision-Projet/internal/repository"
	"github.com/Yasserk123/HealthVision-Projet/internal/session"
	apperrors "github.com/Yasserk123/HealthVision-Projet/pkg/errors"
	"github.com/Yasserk123/HealthVision-Projet/pkg/messaging"
)

// Channel is the broker channel carrying model.NotificationEvent payloads.
const Channel = "notifications"

type Service interface {
	ListForCurrentUser(ctx context.Context) ([]*model.Notification, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
	MarkAllRead(ctx context.Context) error
	Create(ctx context.Context, userID uuid.UUID, title, message string, typ model.NotificationType) (*model.Notification, error)
}

type service struct {
	repo   repository.NotificationRepository
	broker messaging.Broker
	logger zerolog.Logger
}

func NewService(repo repository.NotificationRepository, broker messaging.Broker, logger zerolog.Logger) Service {
	if broker == nil {
		broker = messaging.NopBroker{}
	}
	return &service{
		repo:   repo,
		broker: broker,
		logger: logger.With().Str("service", "notification").Logger(),
	}
}

func (s *service) ListForCurrentUser(ctx context.Context) ([]*model.Notification, error) {
	user, ok := session.UserFrom(ctx)
	if !ok {
		return nil, apperrors.ErrNoSession
	}

	notifications, err := s.repo.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

// MarkRead sets read on one of the caller's notifications. Repeating it is
// harmless.
func (s *service) MarkRead(ctx context.Context, id uuid.UUID) error {
	user, ok := session.UserFrom(ctx)
	if !ok {
		return apperrors.ErrNoSession
	}

	if err := s.repo.MarkRead(ctx, id, user.ID); err != nil {
		return fmt.Errorf("failed to mark notification %s as read: %w", id, err)
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context) error {
	user, ok := session.UserFrom(ctx)
	if !ok {
		return apperrors.ErrNoSession
	}

	if err := s.repo.MarkAllRead(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to mark notifications as read: %w", err)
	}
	return nil
}

// Create stores a notification for userID, then announces it on the broker.
// An empty type means info.
func (s *service) Create(ctx context.Context, userID uuid.UUID, title, message string, typ model.NotificationType) (*model.Notification, error) {
	if typ == "" {
		typ = model.NotificationTypeInfo
	}
	if !typ.Valid() {
		return nil, apperrors.NewBadRequest(fmt.Sprintf("unknown notification type %q", typ), nil)
	}
	if userID == uuid.Nil {
		return nil, apperrors.NewBadRequest("user_id is required", nil)
	}

	created, err := s.repo.Create(ctx, &model.NewNotification{
		UserID:  userID,
		Title:   title,
		Message: message,
		Type:    typ,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	s.publish(ctx, created)
	return created, nil
}

func (s *service) publish(ctx context.Context, n *model.Notification) {
	event := model.NotificationEvent{
		ID:             uuid.New(),
		NotificationID: n.ID,
		UserID:         n.UserID,
		Type:           n.Type,
		Title:          n.Title,
		Message:        n.Message,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.broker.Publish(ctx, Channel, event); err != nil {
		s.logger.Warn().Err(err).
			Str("notification_id", n.ID.String()).
			Msg("Failed to publish notification event")
	}
}
