package service

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"

	"timechart/core/cache"
	"timechart/core/constants"
	"timechart/core/errors"
	"timechart/core/logger"
	"timechart/core/params"
	"timechart/modules/group/dto"
	"timechart/modules/group/entity"
	"timechart/modules/group/mapper"
	"timechart/modules/group/repository"
)

// SignupOpenedPublisher is implemented by the notification module. The group
// service fires it on the closed→open signup edge only.
type SignupOpenedPublisher interface {
	SignupOpened(ctx context.Context, groupID uuid.UUID) error
}

type GroupServiceInterface interface {
	Create(ctx context.Context, req *dto.GroupRequest) (*dto.GroupResponse, *errors.AppError)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.GroupResponse, *errors.AppError)
	List(ctx context.Context, p params.QueryParams) (*dto.PaginatedGroupResponse, *errors.AppError)
	ListActive(ctx context.Context) ([]entity.Group, *errors.AppError)
	FindByName(ctx context.Context, name string) (*entity.Group, *errors.AppError)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Group, *errors.AppError)
	Update(ctx context.Context, req *dto.GroupRequest, id uuid.UUID) *errors.AppError
	SetSignupAllowed(ctx context.Context, id uuid.UUID, allowed bool) *errors.AppError
	Delete(ctx context.Context, id uuid.UUID) *errors.AppError
}

type GroupService struct {
	repo      repository.GroupRepositoryInterface
	cache     cache.Cache
	publisher SignupOpenedPublisher
}

func NewGroupService(repo repository.GroupRepositoryInterface, cache cache.Cache, publisher SignupOpenedPublisher) *GroupService {
	return &GroupService{repo: repo, cache: cache, publisher: publisher}
}

func (s *GroupService) Create(ctx context.Context, req *dto.GroupRequest) (*dto.GroupResponse, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	if req.Name == "" {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "group name is required", nil)
	}
	if req.WeekLimit < 0 {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "week_limit must not be negative", nil)
	}

	created, err := s.repo.Create(ctx, mapper.ToGroupEntity(req))
	if err != nil {
		return nil, errors.NewAppError(errors.ErrCreateFailed, "create group failed", err)
	}
	s.invalidateActiveList(ctx)
	return mapper.ToGroupResponse(created), nil
}

func (s *GroupService) GetByID(ctx context.Context, id uuid.UUID) (*dto.GroupResponse, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	group, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "get group failed", err)
	}
	if group == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "group not found", nil)
	}
	return mapper.ToGroupResponse(group), nil
}

func (s *GroupService) List(ctx context.Context, p params.QueryParams) (*dto.PaginatedGroupResponse, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	groups, err := s.repo.List(ctx, p)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "get groups failed", err)
	}
	return mapper.ToGroupPaginationResponse(groups), nil
}

// ListActive serves the bot's group keyboard; the list is small and read on
// every onboarding, so it is cached briefly.
func (s *GroupService) ListActive(ctx context.Context) ([]entity.Group, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	if s.cache != nil {
		if raw, ok := s.cache.Get(ctx, constants.RedisKeyActiveGroups); ok {
			var groups []entity.Group
			if err := json.Unmarshal([]byte(raw), &groups); err == nil {
				return groups, nil
			}
		}
	}

	groups, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "get active groups failed", err)
	}

	if s.cache != nil {
		if raw, err := json.Marshal(groups); err == nil {
			s.cache.Set(ctx, constants.RedisKeyActiveGroups, string(raw), constants.CacheListTTL)
		}
	}
	return groups, nil
}

// FindByName resolves a group by its exact name; (nil, nil) when absent.
func (s *GroupService) FindByName(ctx context.Context, name string) (*entity.Group, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	group, err := s.repo.GetByName(ctx, name)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "get group failed", err)
	}
	return group, nil
}

// FindByID resolves a group entity; (nil, nil) when absent.
func (s *GroupService) FindByID(ctx context.Context, id uuid.UUID) (*entity.Group, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	group, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "get group failed", err)
	}
	return group, nil
}

func (s *GroupService) Update(ctx context.Context, req *dto.GroupRequest, id uuid.UUID) *errors.AppError {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	if req.WeekLimit < 0 {
		return errors.NewAppError(errors.ErrInvalidInput, "week_limit must not be negative", nil)
	}
	if err := s.repo.Update(ctx, mapper.ToGroupEntity(req), id); err != nil {
		return errors.NewAppError(errors.ErrUpdateFailed, "update group failed", err)
	}
	s.invalidateActiveList(ctx)
	return nil
}

// SetSignupAllowed toggles the signup window. Only the false→true edge
// publishes the signup-opened event; re-saving an already open group does not
// re-notify.
func (s *GroupService) SetSignupAllowed(ctx context.Context, id uuid.UUID, allowed bool) *errors.AppError {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	previous, err := s.repo.SetSignupAllowed(ctx, id, allowed)
	if err != nil {
		if err == sql.ErrNoRows {
			return errors.NewAppError(errors.ErrNotFound, "group not found", nil)
		}
		return errors.NewAppError(errors.ErrUpdateFailed, "set signup failed", err)
	}

	if allowed && !previous {
		logger.Info("GroupService:SetSignupAllowed:SignupOpened", "group_id", id)
		if s.publisher != nil {
			if err := s.publisher.SignupOpened(ctx, id); err != nil {
				// The flag change stands; delivery is best-effort.
				logger.Error("GroupService:SetSignupAllowed:Publish", "group_id", id, "error", err)
			}
		}
	}
	return nil
}

func (s *GroupService) Delete(ctx context.Context, id uuid.UUID) *errors.AppError {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	if err := s.repo.Delete(ctx, id); err != nil {
		return errors.NewAppError(errors.ErrDeleteFailed, "delete group failed", err)
	}
	s.invalidateActiveList(ctx)
	return nil
}

func (s *GroupService) invalidateActiveList(ctx context.Context) {
	if s.cache != nil {
		s.cache.Delete(ctx, constants.RedisKeyActiveGroups)
	}
}
