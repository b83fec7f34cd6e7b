package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"timechart/core/database"
	"timechart/core/logger"
	"timechart/core/params"
	"timechart/modules/group/entity"
)

type GroupRepository struct {
	DB database.IDatabase
}

func NewGroupRepository(db database.IDatabase) *GroupRepository {
	return &GroupRepository{DB: db}
}

type GroupRepositoryInterface interface {
	Create(ctx context.Context, group *entity.Group) (*entity.Group, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Group, error)
	GetByName(ctx context.Context, name string) (*entity.Group, error)
	List(ctx context.Context, p params.QueryParams) (*entity.PaginatedGroupEntity, error)
	ListActive(ctx context.Context) ([]entity.Group, error)
	Update(ctx context.Context, group *entity.Group, id uuid.UUID) error
	SetSignupAllowed(ctx context.Context, id uuid.UUID, allowed bool) (previous bool, err error)
	Delete(ctx context.Context, id uuid.UUID) error
}

const groupColumns = `id, name, is_active, allow_signup, week_limit, color, created_at, updated_at`

func (r *GroupRepository) Create(ctx context.Context, group *entity.Group) (*entity.Group, error) {
	query := `
		INSERT INTO groups (name, is_active, allow_signup, week_limit, color)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + groupColumns

	var created entity.Group
	err := r.DB.GetContext(ctx, &created, query,
		group.Name, group.IsActive, group.AllowSignup, group.WeekLimit, group.Color)
	if err != nil {
		logger.Error("GroupRepository:Create", err)
		return nil, err
	}
	return &created, nil
}

func (r *GroupRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM groups WHERE id = $1`

	var group entity.Group
	err := r.DB.GetContext(ctx, &group, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("GroupRepository:GetByID", err)
		return nil, err
	}
	return &group, nil
}

func (r *GroupRepository) GetByName(ctx context.Context, name string) (*entity.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM groups WHERE name = $1`

	var group entity.Group
	err := r.DB.GetContext(ctx, &group, query, name)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("GroupRepository:GetByName", err)
		return nil, err
	}
	return &group, nil
}

func (r *GroupRepository) List(ctx context.Context, p params.QueryParams) (*entity.PaginatedGroupEntity, error) {
	countQuery := `SELECT COUNT(*) FROM groups WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')`
	var total int
	if err := r.DB.GetContext(ctx, &total, countQuery, p.Search); err != nil {
		logger.Error("GroupRepository:List:Count", err)
		return nil, err
	}

	query := `
		SELECT ` + groupColumns + `
		FROM groups
		WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')
		ORDER BY name
		LIMIT $2 OFFSET $3
	`
	var groups []entity.Group
	if err := r.DB.SelectContext(ctx, &groups, query, p.Search, p.PageSize, p.Offset()); err != nil {
		logger.Error("GroupRepository:List", err)
		return nil, err
	}

	return &entity.PaginatedGroupEntity{
		Items:      groups,
		TotalItems: total,
		PageNumber: p.PageNumber,
		PageSize:   p.PageSize,
	}, nil
}

func (r *GroupRepository) ListActive(ctx context.Context) ([]entity.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM groups WHERE is_active = true ORDER BY name`

	var groups []entity.Group
	if err := r.DB.SelectContext(ctx, &groups, query); err != nil {
		logger.Error("GroupRepository:ListActive", err)
		return nil, err
	}
	return groups, nil
}

func (r *GroupRepository) Update(ctx context.Context, group *entity.Group, id uuid.UUID) error {
	query := `
		UPDATE groups
		SET name = $1, is_active = $2, week_limit = $3, color = $4, updated_at = now()
		WHERE id = $5
	`
	err := r.DB.ExecContext(ctx, query,
		group.Name, group.IsActive, group.WeekLimit, group.Color, id)
	if err != nil {
		logger.Error("GroupRepository:Update", err)
		return err
	}
	return nil
}

// SetSignupAllowed flips the signup flag and reports the previous value so
// the service can detect the closed→open edge.
func (r *GroupRepository) SetSignupAllowed(ctx context.Context, id uuid.UUID, allowed bool) (bool, error) {
	query := `
		UPDATE groups g
		SET allow_signup = $2, updated_at = now()
		FROM (SELECT allow_signup FROM groups WHERE id = $1 FOR UPDATE) old
		WHERE g.id = $1
		RETURNING old.allow_signup
	`
	var previous bool
	err := r.DB.GetContext(ctx, &previous, query, id, allowed)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, sql.ErrNoRows
		}
		logger.Error("GroupRepository:SetSignupAllowed", err)
		return false, err
	}
	return previous, nil
}

func (r *GroupRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM groups WHERE id = $1`
	if err := r.DB.ExecContext(ctx, query, id); err != nil {
		logger.Error("GroupRepository:Delete", err)
		return err
	}
	return nil
}
