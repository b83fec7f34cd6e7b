package repository

import (
	"context"

	"timechart/core/database"
	"timechart/core/logger"
	"timechart/modules/notification/entity"
)

type NotificationRepository struct {
	DB database.IDatabase
}

func NewNotificationRepository(db database.IDatabase) *NotificationRepository {
	return &NotificationRepository{DB: db}
}

type NotificationRepositoryInterface interface {
	Create(ctx context.Context, delivery *entity.Delivery) error
	ListRecent(ctx context.Context, limit int) ([]entity.Delivery, error)
}

func (r *NotificationRepository) Create(ctx context.Context, delivery *entity.Delivery) error {
	query := `
		INSERT INTO notification_deliveries (event_id, group_id, user_id, delivered, error)
		VALUES ($1, $2, $3, $4, $5)
	`
	err := r.DB.ExecContext(ctx, query,
		delivery.EventID, delivery.GroupID, delivery.UserID, delivery.Delivered, delivery.Error)
	if err != nil {
		logger.Error("NotificationRepository:Create", err)
		return err
	}
	return nil
}

func (r *NotificationRepository) ListRecent(ctx context.Context, limit int) ([]entity.Delivery, error) {
	query := `
		SELECT id, event_id, group_id, user_id, delivered, error, created_at
		FROM notification_deliveries
		ORDER BY created_at DESC
		LIMIT $1
	`
	var deliveries []entity.Delivery
	if err := r.DB.SelectContext(ctx, &deliveries, query, limit); err != nil {
		logger.Error("NotificationRepository:ListRecent", err)
		return nil, err
	}
	return deliveries, nil
}
