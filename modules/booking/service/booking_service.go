package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"timechart/core/constants"
	"timechart/core/errors"
	"timechart/core/logger"
	bookingEntity "timechart/modules/booking/entity"
	"timechart/modules/booking/repository"
	groupEntity "timechart/modules/group/entity"
	groupRepository "timechart/modules/group/repository"
	scheduleEntity "timechart/modules/schedule/entity"
	scheduleRepository "timechart/modules/schedule/repository"
	userRepository "timechart/modules/user/repository"
)

type BookingServiceInterface interface {
	Book(ctx context.Context, userID int64, slotID uuid.UUID) (bookingEntity.Verdict, *errors.AppError)
	Cancel(ctx context.Context, userID int64, slotID uuid.UUID) (bookingEntity.Verdict, *errors.AppError)
	ListUserFutureBookings(ctx context.Context, userID int64) ([]scheduleEntity.UserBooking, *errors.AppError)
}

type BookingService struct {
	engine       *Engine
	bookingRepo  repository.BookingRepositoryInterface
	userRepo     userRepository.UserRepositoryInterface
	groupRepo    groupRepository.GroupRepositoryInterface
	scheduleRepo scheduleRepository.ScheduleRepositoryInterface
	now          func() time.Time
}

func NewBookingService(
	engine *Engine,
	bookingRepo repository.BookingRepositoryInterface,
	userRepo userRepository.UserRepositoryInterface,
	groupRepo groupRepository.GroupRepositoryInterface,
	scheduleRepo scheduleRepository.ScheduleRepositoryInterface,
) *BookingService {
	return &BookingService{
		engine:       engine,
		bookingRepo:  bookingRepo,
		userRepo:     userRepo,
		groupRepo:    groupRepo,
		scheduleRepo: scheduleRepo,
		now:          time.Now,
	}
}

// Engine exposes the eligibility engine for dialogue-time date filtering.
func (s *BookingService) Engine() *Engine {
	return s.engine
}

// Book evaluates eligibility and appends the user to the slot roster in one
// atomic step.
func (s *BookingService) Book(ctx context.Context, userID int64, slotID uuid.UUID) (bookingEntity.Verdict, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return bookingEntity.Verdict{}, errors.NewAppError(errors.ErrGetFailed, "get user failed", err)
	}
	if user == nil {
		return bookingEntity.Verdict{}, errors.NewAppError(errors.ErrNotFound, "user not found", nil)
	}

	group, appErr := s.loadGroup(ctx, user.GroupID)
	if appErr != nil {
		return bookingEntity.Verdict{}, appErr
	}

	now := s.now()
	weekStart := WeekWindowStart(s.engine.Today(now))

	verdict, err := s.bookingRepo.Book(ctx, userID, slotID, weekStart, func(snap repository.Snapshot) bookingEntity.Verdict {
		summary := &scheduleEntity.SlotSummary{
			TimeSlot:    snap.Slot,
			RosterCount: snap.RosterCount,
		}
		for _, id := range snap.AllowedGroupIDs {
			summary.AllowedGroupIDs = append(summary.AllowedGroupIDs, id.String())
		}
		return s.engine.CanBook(BookRequest{
			User:          user,
			Group:         group,
			Slot:          summary,
			BookedSameDay: snap.BookedSameDay,
			WeekCount:     snap.WeekCount,
			Now:           now,
		})
	})
	if err != nil {
		if err == sql.ErrNoRows {
			return bookingEntity.Verdict{}, errors.NewAppError(errors.ErrNotFound, "time slot not found", nil)
		}
		return bookingEntity.Verdict{}, errors.NewAppError(errors.ErrCreateFailed, "book slot failed", err)
	}

	logger.Info("BookingService:Book:Verdict",
		"user_id", userID,
		"slot_id", slotID,
		"allowed", verdict.Allowed,
		"reason", verdict.Reason,
	)
	return verdict, nil
}

// Cancel removes the user's booking when the cancellation rules allow it.
func (s *BookingService) Cancel(ctx context.Context, userID int64, slotID uuid.UUID) (bookingEntity.Verdict, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	now := s.now()
	verdict, err := s.bookingRepo.Cancel(ctx, userID, slotID, func(onRoster bool, slotDate time.Time) bookingEntity.Verdict {
		return s.engine.CanCancel(onRoster, slotDate, now)
	})
	if err != nil {
		if err == sql.ErrNoRows {
			return bookingEntity.Verdict{}, errors.NewAppError(errors.ErrNotFound, "time slot not found", nil)
		}
		return bookingEntity.Verdict{}, errors.NewAppError(errors.ErrDeleteFailed, "cancel booking failed", err)
	}

	logger.Info("BookingService:Cancel:Verdict",
		"user_id", userID,
		"slot_id", slotID,
		"allowed", verdict.Allowed,
		"reason", verdict.Reason,
	)
	return verdict, nil
}

// ListUserFutureBookings lists the user's bookings from tomorrow onwards,
// the set that is still cancellable.
func (s *BookingService) ListUserFutureBookings(ctx context.Context, userID int64) ([]scheduleEntity.UserBooking, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	tomorrow := s.engine.Today(s.now()).AddDate(0, 0, 1)
	bookings, err := s.scheduleRepo.ListUserBookings(ctx, userID, tomorrow)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "get bookings failed", err)
	}
	return bookings, nil
}

func (s *BookingService) loadGroup(ctx context.Context, groupID *uuid.UUID) (*groupEntity.Group, *errors.AppError) {
	if groupID == nil {
		return nil, nil
	}
	group, err := s.groupRepo.GetByID(ctx, *groupID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "get group failed", err)
	}
	return group, nil
}
