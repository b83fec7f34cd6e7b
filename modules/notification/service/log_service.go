package service

import (
	"context"

	"timechart/core/constants"
	"timechart/core/errors"
	"timechart/modules/notification/entity"
	"timechart/modules/notification/repository"
)

type LogServiceInterface interface {
	ListRecent(ctx context.Context, limit int) ([]entity.Delivery, *errors.AppError)
}

// LogService exposes the delivery log to the admin API.
type LogService struct {
	repo repository.NotificationRepositoryInterface
}

func NewLogService(repo repository.NotificationRepositoryInterface) *LogService {
	return &LogService{repo: repo}
}

func (s *LogService) ListRecent(ctx context.Context, limit int) ([]entity.Delivery, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	deliveries, err := s.repo.ListRecent(ctx, limit)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "get deliveries failed", err)
	}
	return deliveries, nil
}
