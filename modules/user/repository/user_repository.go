package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"timechart/core/database"
	"timechart/core/logger"
	"timechart/modules/user/entity"
)

type UserRepository struct {
	DB database.IDatabase
}

func NewUserRepository(db database.IDatabase) *UserRepository {
	return &UserRepository{DB: db}
}

type UserRepositoryInterface interface {
	Upsert(ctx context.Context, user *entity.User) (*entity.User, error)
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	AssignGroup(ctx context.Context, userID int64, groupID uuid.UUID) error
	SetLastName(ctx context.Context, userID int64, lastName string) error
	ListNotifiable(ctx context.Context, groupID uuid.UUID) ([]entity.User, error)
}

const userColumns = `id, is_active, nick_name, first_name, last_name, chat_id, group_id, created_at, updated_at`

// Upsert creates the user on first contact and refreshes identity fields on
// every later one. Group membership is left untouched.
func (r *UserRepository) Upsert(ctx context.Context, user *entity.User) (*entity.User, error) {
	query := `
		INSERT INTO users (id, is_active, nick_name, first_name, last_name, chat_id)
		VALUES ($1, true, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET nick_name = EXCLUDED.nick_name,
		    first_name = EXCLUDED.first_name,
		    last_name = EXCLUDED.last_name,
		    chat_id = EXCLUDED.chat_id,
		    updated_at = now()
		RETURNING ` + userColumns

	var saved entity.User
	err := r.DB.GetContext(ctx, &saved, query,
		user.ID, user.NickName, user.FirstName, user.LastName, user.ChatID)
	if err != nil {
		logger.Error("UserRepository:Upsert", err)
		return nil, err
	}
	return &saved, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	var user entity.User
	err := r.DB.GetContext(ctx, &user, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("UserRepository:GetByID", err)
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) AssignGroup(ctx context.Context, userID int64, groupID uuid.UUID) error {
	query := `UPDATE users SET group_id = $2, updated_at = now() WHERE id = $1`
	if err := r.DB.ExecContext(ctx, query, userID, groupID); err != nil {
		logger.Error("UserRepository:AssignGroup", err)
		return err
	}
	return nil
}

func (r *UserRepository) SetLastName(ctx context.Context, userID int64, lastName string) error {
	query := `UPDATE users SET last_name = $2, updated_at = now() WHERE id = $1`
	if err := r.DB.ExecContext(ctx, query, userID, lastName); err != nil {
		logger.Error("UserRepository:SetLastName", err)
		return err
	}
	return nil
}

// ListNotifiable returns the group's members that have a chat handle on
// record.
func (r *UserRepository) ListNotifiable(ctx context.Context, groupID uuid.UUID) ([]entity.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE group_id = $1 AND is_active = true AND chat_id IS NOT NULL
		ORDER BY last_name, first_name
	`
	var users []entity.User
	if err := r.DB.SelectContext(ctx, &users, query, groupID); err != nil {
		logger.Error("UserRepository:ListNotifiable", err)
		return nil, err
	}
	return users, nil
}
