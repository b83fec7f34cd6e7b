package entity

import (
	"time"

	"github.com/google/uuid"
)

// State names for the conversation machine. The empty state means no
// conversation is in progress.
type State string

const (
	StateNone                State = ""
	StateAwaitingGroup       State = "awaiting_group"
	StateAwaitingLastName    State = "awaiting_last_name"
	StateAwaitingPlace       State = "awaiting_place"
	StateAwaitingDate        State = "awaiting_date"
	StateAwaitingTime        State = "awaiting_time"
	StateAwaitingUnsubscribe State = "awaiting_unsubscribe"
)

// Session is the per-user conversation memory. It is persisted so that an
// in-progress dialogue survives a service restart; it is deleted when the
// conversation ends.
type Session struct {
	UserID    int64      `db:"user_id"`
	ChatID    int64      `db:"chat_id"`
	State     State      `db:"state"`
	PlaceID   *uuid.UUID `db:"place_id"`
	PlaceName string     `db:"place_name"`
	Date      *time.Time `db:"date"`
	UpdatedAt time.Time  `db:"updated_at"`
}
