package entity

import (
	"time"

	"github.com/google/uuid"
)

// SignupOpenedEvent is the queued payload of a signup window opening.
type SignupOpenedEvent struct {
	EventID  string    `json:"event_id"`
	GroupID  uuid.UUID `json:"group_id"`
	OpenedAt time.Time `json:"opened_at"`
}

// Delivery records one recipient's delivery attempt. The log is the audit
// trail for "did the group get notified"; delivery itself is best-effort.
type Delivery struct {
	ID        int64     `db:"id" json:"id"`
	EventID   string    `db:"event_id" json:"event_id"`
	GroupID   uuid.UUID `db:"group_id" json:"group_id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Delivered bool      `db:"delivered" json:"delivered"`
	Error     string    `db:"error" json:"error,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
