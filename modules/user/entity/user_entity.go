package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is a bot user, keyed by the Telegram account id. Created on first
// contact; group and last name are filled in during onboarding.
type User struct {
	ID        int64      `db:"id" json:"id"`
	IsActive  bool       `db:"is_active" json:"is_active"`
	NickName  string     `db:"nick_name" json:"nick_name"`
	FirstName string     `db:"first_name" json:"first_name"`
	LastName  string     `db:"last_name" json:"last_name"`
	ChatID    *int64     `db:"chat_id" json:"chat_id,omitempty"`
	GroupID   *uuid.UUID `db:"group_id" json:"group_id,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// DisplayName mirrors how the admin side labels a user.
func (u *User) DisplayName() string {
	if u.NickName != "" {
		return u.NickName
	}
	return u.FirstName + " " + u.LastName
}
