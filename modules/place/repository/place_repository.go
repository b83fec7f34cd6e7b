package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"timechart/core/database"
	"timechart/core/logger"
	"timechart/core/params"
	"timechart/modules/place/entity"
)

type PlaceRepository struct {
	DB database.IDatabase
}

func NewPlaceRepository(db database.IDatabase) *PlaceRepository {
	return &PlaceRepository{DB: db}
}

type PlaceRepositoryInterface interface {
	Create(ctx context.Context, place *entity.Place) (*entity.Place, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Place, error)
	List(ctx context.Context, p params.QueryParams) (*entity.PaginatedPlaceEntity, error)
	ListActive(ctx context.Context) ([]entity.Place, error)
	Update(ctx context.Context, place *entity.Place, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

const placeColumns = `id, name, is_active, created_at, updated_at`

func (r *PlaceRepository) Create(ctx context.Context, place *entity.Place) (*entity.Place, error) {
	query := `
		INSERT INTO places (name, is_active)
		VALUES ($1, $2)
		RETURNING ` + placeColumns

	var created entity.Place
	err := r.DB.GetContext(ctx, &created, query, place.Name, place.IsActive)
	if err != nil {
		logger.Error("PlaceRepository:Create", err)
		return nil, err
	}
	return &created, nil
}

func (r *PlaceRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Place, error) {
	query := `SELECT ` + placeColumns + ` FROM places WHERE id = $1`

	var place entity.Place
	err := r.DB.GetContext(ctx, &place, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("PlaceRepository:GetByID", err)
		return nil, err
	}
	return &place, nil
}

func (r *PlaceRepository) List(ctx context.Context, p params.QueryParams) (*entity.PaginatedPlaceEntity, error) {
	countQuery := `SELECT COUNT(*) FROM places WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')`
	var total int
	if err := r.DB.GetContext(ctx, &total, countQuery, p.Search); err != nil {
		logger.Error("PlaceRepository:List:Count", err)
		return nil, err
	}

	query := `
		SELECT ` + placeColumns + `
		FROM places
		WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')
		ORDER BY name
		LIMIT $2 OFFSET $3
	`
	var places []entity.Place
	if err := r.DB.SelectContext(ctx, &places, query, p.Search, p.PageSize, p.Offset()); err != nil {
		logger.Error("PlaceRepository:List", err)
		return nil, err
	}

	return &entity.PaginatedPlaceEntity{
		Items:      places,
		TotalItems: total,
		PageNumber: p.PageNumber,
		PageSize:   p.PageSize,
	}, nil
}

func (r *PlaceRepository) ListActive(ctx context.Context) ([]entity.Place, error) {
	query := `SELECT ` + placeColumns + ` FROM places WHERE is_active = true ORDER BY name`

	var places []entity.Place
	if err := r.DB.SelectContext(ctx, &places, query); err != nil {
		logger.Error("PlaceRepository:ListActive", err)
		return nil, err
	}
	return places, nil
}

func (r *PlaceRepository) Update(ctx context.Context, place *entity.Place, id uuid.UUID) error {
	query := `
		UPDATE places
		SET name = $1, is_active = $2, updated_at = now()
		WHERE id = $3
	`
	if err := r.DB.ExecContext(ctx, query, place.Name, place.IsActive, id); err != nil {
		logger.Error("PlaceRepository:Update", err)
		return err
	}
	return nil
}

func (r *PlaceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM places WHERE id = $1`
	if err := r.DB.ExecContext(ctx, query, id); err != nil {
		logger.Error("PlaceRepository:Delete", err)
		return err
	}
	return nil
}
