package rest

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Yasserk123/HealthVision-Projet/internal/model"
	"github.com/Yasserk123/HealthVision-Projet/internal/repository"
)

func (r *notificationRepository) Create(ctx context.Context, notification *model.NewNotification) (*model.Notification, error) {
	var created model.Notification
	if err := r.client.From(repository.TableNotifications).
		Select("*").
		Single().
		Insert(ctx, notification, &created); err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	if err := checkShape(r.validator, "notification", &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.Notification, error) {
	var notifications []*model.Notification
	if err := r.client.From(repository.TableNotifications).
		Select("*").
		Eq("user_id", userID).
		Order("created_at", false).
		Execute(ctx, &notifications); err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	if err := checkShape(r.validator, "notification", notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	if err := r.client.From(repository.TableNotifications).
		Eq("id", id).
		Eq("user_id", userID).
		Update(ctx, map[string]bool{"read": true}); err != nil {
		return fmt.Errorf("failed to mark notification as read: %w", err)
	}
	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	if err := r.client.From(repository.TableNotifications).
		Eq("user_id", userID).
		Eq("read", false).
		Update(ctx, map[string]bool{"read": true}); err != nil {
		return fmt.Errorf("failed to mark notifications as read: %w", err)
	}
	return nil
}
