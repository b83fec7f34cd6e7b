package service

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"timechart/core/cache"
	"timechart/core/constants"
	"timechart/core/errors"
	"timechart/core/params"
	"timechart/modules/place/entity"
	"timechart/modules/place/repository"
)

type PlaceServiceInterface interface {
	Create(ctx context.Context, place *entity.Place) (*entity.Place, *errors.AppError)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Place, *errors.AppError)
	List(ctx context.Context, p params.QueryParams) (*entity.PaginatedPlaceEntity, *errors.AppError)
	ListActive(ctx context.Context) ([]entity.Place, *errors.AppError)
	FindActiveByName(ctx context.Context, name string) (*entity.Place, *errors.AppError)
	Update(ctx context.Context, place *entity.Place, id uuid.UUID) *errors.AppError
	Delete(ctx context.Context, id uuid.UUID) *errors.AppError
}

type PlaceService struct {
	repo  repository.PlaceRepositoryInterface
	cache cache.Cache
}

func NewPlaceService(repo repository.PlaceRepositoryInterface, cache cache.Cache) *PlaceService {
	return &PlaceService{repo: repo, cache: cache}
}

func (s *PlaceService) Create(ctx context.Context, place *entity.Place) (*entity.Place, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	if place.Name == "" {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "place name is required", nil)
	}
	created, err := s.repo.Create(ctx, place)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrCreateFailed, "create place failed", err)
	}
	s.invalidateActiveList(ctx)
	return created, nil
}

func (s *PlaceService) GetByID(ctx context.Context, id uuid.UUID) (*entity.Place, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	place, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "get place failed", err)
	}
	if place == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "place not found", nil)
	}
	return place, nil
}

func (s *PlaceService) List(ctx context.Context, p params.QueryParams) (*entity.PaginatedPlaceEntity, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	places, err := s.repo.List(ctx, p)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "get places failed", err)
	}
	return places, nil
}

// ListActive serves the bot's place keyboard and is read on every booking
// dialogue, so the list is cached briefly.
func (s *PlaceService) ListActive(ctx context.Context) ([]entity.Place, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	if s.cache != nil {
		if raw, ok := s.cache.Get(ctx, constants.RedisKeyActivePlaces); ok {
			var places []entity.Place
			if err := json.Unmarshal([]byte(raw), &places); err == nil {
				return places, nil
			}
		}
	}

	places, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "get active places failed", err)
	}

	if s.cache != nil {
		if raw, err := json.Marshal(places); err == nil {
			s.cache.Set(ctx, constants.RedisKeyActivePlaces, string(raw), constants.CacheListTTL)
		}
	}
	return places, nil
}

// FindActiveByName resolves user-typed text to an active place. Matching is
// slug-normalized so "gym hall" finds "Gym Hall".
func (s *PlaceService) FindActiveByName(ctx context.Context, name string) (*entity.Place, *errors.AppError) {
	places, appErr := s.ListActive(ctx)
	if appErr != nil {
		return nil, appErr
	}
	wanted := slug.Make(name)
	for i := range places {
		if slug.Make(places[i].Name) == wanted {
			return &places[i], nil
		}
	}
	return nil, nil
}

func (s *PlaceService) Update(ctx context.Context, place *entity.Place, id uuid.UUID) *errors.AppError {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	if err := s.repo.Update(ctx, place, id); err != nil {
		return errors.NewAppError(errors.ErrUpdateFailed, "update place failed", err)
	}
	s.invalidateActiveList(ctx)
	return nil
}

func (s *PlaceService) Delete(ctx context.Context, id uuid.UUID) *errors.AppError {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	if err := s.repo.Delete(ctx, id); err != nil {
		return errors.NewAppError(errors.ErrDeleteFailed, "delete place failed", err)
	}
	s.invalidateActiveList(ctx)
	return nil
}

func (s *PlaceService) invalidateActiveList(ctx context.Context) {
	if s.cache != nil {
		s.cache.Delete(ctx, constants.RedisKeyActivePlaces)
	}
}
