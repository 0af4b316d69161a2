package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Yasserk123/HealthVision-Projet/internal/model"
)

const notificationColumns = `id, created_at, user_id, title, message, type, read`

func (r *notificationRepository) Create(ctx context.Context, notification *model.NewNotification) (*model.Notification, error) {
	query := `
		INSERT INTO notifications (user_id, title, message, type)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + notificationColumns

	var created model.Notification
	if err := r.db.GetContext(ctx, &created, query,
		notification.UserID,
		notification.Title,
		notification.Message,
		notification.Type,
	); err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	return &created, nil
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = $1 ORDER BY created_at DESC`

	var notifications []*model.Notification
	if err := r.db.SelectContext(ctx, &notifications, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	query := `UPDATE notifications SET read = true WHERE id = $1 AND user_id = $2`

	if _, err := r.db.ExecContext(ctx, query, id, userID); err != nil {
		return fmt.Errorf("failed to mark notification as read: %w", err)
	}
	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	query := `UPDATE notifications SET read = true WHERE user_id = $1 AND read = false`

	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to mark notifications as read: %w", err)
	}
	return nil
}
