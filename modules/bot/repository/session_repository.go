package repository

import (
	"context"
	"database/sql"

	"timechart/core/database"
	"timechart/core/logger"
	"timechart/modules/bot/entity"
)

type SessionRepository struct {
	DB database.IDatabase
}

func NewSessionRepository(db database.IDatabase) *SessionRepository {
	return &SessionRepository{DB: db}
}

type SessionRepositoryInterface interface {
	Get(ctx context.Context, userID int64) (*entity.Session, error)
	Save(ctx context.Context, session *entity.Session) error
	Clear(ctx context.Context, userID int64) error
}

func (r *SessionRepository) Get(ctx context.Context, userID int64) (*entity.Session, error) {
	query := `
		SELECT user_id, chat_id, state, place_id, place_name, date, updated_at
		FROM conversation_sessions WHERE user_id = $1
	`
	var session entity.Session
	err := r.DB.GetContext(ctx, &session, query, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("SessionRepository:Get", err)
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) Save(ctx context.Context, session *entity.Session) error {
	query := `
		INSERT INTO conversation_sessions (user_id, chat_id, state, place_id, place_name, date, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (user_id) DO UPDATE
		SET chat_id = EXCLUDED.chat_id,
		    state = EXCLUDED.state,
		    place_id = EXCLUDED.place_id,
		    place_name = EXCLUDED.place_name,
		    date = EXCLUDED.date,
		    updated_at = now()
	`
	err := r.DB.ExecContext(ctx, query,
		session.UserID, session.ChatID, session.State, session.PlaceID, session.PlaceName, session.Date)
	if err != nil {
		logger.Error("SessionRepository:Save", err)
		return err
	}
	return nil
}

func (r *SessionRepository) Clear(ctx context.Context, userID int64) error {
	query := `DELETE FROM conversation_sessions WHERE user_id = $1`
	if err := r.DB.ExecContext(ctx, query, userID); err != nil {
		logger.Error("SessionRepository:Clear", err)
		return err
	}
	return nil
}
