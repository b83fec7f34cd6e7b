package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"timechart/core/constants"
	"timechart/core/errors"
	"timechart/core/logger"
	"timechart/modules/schedule/dto"
	"timechart/modules/schedule/entity"
	"timechart/modules/schedule/repository"
)

type ScheduleServiceInterface interface {
	BulkCreate(ctx context.Context, req *dto.BulkCreateRequest) (*dto.BulkCreateResponse, *errors.AppError)
	ListByDateRange(ctx context.Context, from, to time.Time) ([]entity.SlotSummary, *errors.AppError)
	Update(ctx context.Context, id uuid.UUID, req *dto.UpdateSlotRequest) *errors.AppError
	Delete(ctx context.Context, id uuid.UUID) *errors.AppError
	Attendance(ctx context.Context, from, to time.Time) ([]entity.AttendanceRow, *errors.AppError)
}

type ScheduleService struct {
	repo repository.ScheduleRepositoryInterface
}

func NewScheduleService(repo repository.ScheduleRepositoryInterface) *ScheduleService {
	return &ScheduleService{repo: repo}
}

// ExpandDateRange parses and expands an inclusive date range, rejecting
// reversed ranges and ranges spanning more than MaxScheduleSpanDays days.
func ExpandDateRange(startDate, endDate string) ([]time.Time, error) {
	start, err := time.Parse(constants.DateFormat, startDate)
	if err != nil {
		return nil, fmt.Errorf("invalid start_date %q", startDate)
	}
	end, err := time.Parse(constants.DateFormat, endDate)
	if err != nil {
		return nil, fmt.Errorf("invalid end_date %q", endDate)
	}
	if start.After(end) {
		return nil, fmt.Errorf("end_date should be greater than start_date")
	}
	if int(end.Sub(start).Hours()/24) > constants.MaxScheduleSpanDays {
		return nil, fmt.Errorf("date range spans more than %d days", constants.MaxScheduleSpanDays)
	}

	var dates []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates, nil
}

// BulkCreate inserts the (place × date × time) cartesian product, skipping
// slots that collide with the (place, date, time) uniqueness constraint.
func (s *ScheduleService) BulkCreate(ctx context.Context, req *dto.BulkCreateRequest) (*dto.BulkCreateResponse, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultTimeout)
	defer cancel()

	if len(req.PlaceIDs) == 0 {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "at least one place is required", nil)
	}
	times := req.Times
	if len(times) == 0 {
		times = constants.DefaultClassHours
	}
	for _, clock := range times {
		if _, err := time.Parse(constants.ClockFormat, clock); err != nil {
			return nil, errors.NewAppError(errors.ErrInvalidInput, fmt.Sprintf("invalid time %q", clock), nil)
		}
	}
	limit := req.Limit
	if limit <= 0 {
		limit = constants.DefaultSlotLimit
	}

	dates, err := ExpandDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, err.Error(), nil)
	}

	resp := &dto.BulkCreateResponse{}
	for _, placeID := range req.PlaceIDs {
		for _, date := range dates {
			for _, clock := range times {
				pid := placeID
				slot := &entity.TimeSlot{
					PlaceID: &pid,
					Date:    date,
					Time:    clock + ":00",
					Open:    req.Open,
					Limit:   limit,
				}
				created, err := s.repo.CreateSkipConflict(ctx, slot, req.GroupIDs)
				if err != nil {
					return nil, errors.NewAppError(errors.ErrCreateFailed, "bulk create failed", err)
				}
				if created {
					resp.Created++
				} else {
					resp.Skipped++
				}
			}
		}
	}

	logger.Info("ScheduleService:BulkCreate:Done",
		"places", len(req.PlaceIDs),
		"dates", len(dates),
		"times", len(times),
		"created", resp.Created,
		"skipped", resp.Skipped,
	)
	return resp, nil
}

func (s *ScheduleService) ListByDateRange(ctx context.Context, from, to time.Time) ([]entity.SlotSummary, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	slots, err := s.repo.ListByDateRange(ctx, from, to)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "get slots failed", err)
	}
	return slots, nil
}

func (s *ScheduleService) Update(ctx context.Context, id uuid.UUID, req *dto.UpdateSlotRequest) *errors.AppError {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	if req.Limit < 0 {
		return errors.NewAppError(errors.ErrInvalidInput, "limit must not be negative", nil)
	}
	if err := s.repo.Update(ctx, id, req.Open, req.Limit); err != nil {
		return errors.NewAppError(errors.ErrUpdateFailed, "update slot failed", err)
	}
	return nil
}

func (s *ScheduleService) Delete(ctx context.Context, id uuid.UUID) *errors.AppError {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	if err := s.repo.Delete(ctx, id); err != nil {
		return errors.NewAppError(errors.ErrDeleteFailed, "delete slot failed", err)
	}
	return nil
}

func (s *ScheduleService) Attendance(ctx context.Context, from, to time.Time) ([]entity.AttendanceRow, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	rows, err := s.repo.Attendance(ctx, from, to)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "get attendance failed", err)
	}
	return rows, nil
}
