package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"timechart/core/entity"
)

// TimeSlot is one bookable (place, date, time) unit. The triple is unique.
// Roster membership lives in time_slot_people; the optional group allow-list
// in time_slot_groups (empty allow-list means open to all active groups).
type TimeSlot struct {
	PlaceID *uuid.UUID `db:"place_id" json:"place_id,omitempty"`

	Date time.Time `db:"date" json:"date"`

	// Time is the time-of-day as stored, "HH:MM:SS".
	Time string `db:"time" json:"time"`

	Open bool `db:"open" json:"open"`

	// Limit is the seat capacity. Enforced by the booking transaction, not
	// by the schema.
	Limit int `db:"slot_limit" json:"limit"`

	entity.BaseEntity
}

// Clock returns the time-of-day as "HH:MM".
func (t *TimeSlot) Clock() string {
	if len(t.Time) >= 5 {
		return t.Time[:5]
	}
	return t.Time
}

// DateString returns the slot date as "YYYY-MM-DD".
func (t *TimeSlot) DateString() string {
	return t.Date.Format("2006-01-02")
}

// SlotSummary is a TimeSlot joined with its place, roster size and
// allow-list, as listed to a booking user.
type SlotSummary struct {
	TimeSlot
	PlaceName   string `db:"place_name"`
	RosterCount int    `db:"roster_count"`

	// AllowedGroupIDs is the slot's group allow-list as uuid strings;
	// empty means unrestricted.
	AllowedGroupIDs []string `db:"-"`
}

// AllowedGroups parses the allow-list into uuids, skipping malformed rows.
func (s *SlotSummary) AllowedGroups() []uuid.UUID {
	out := make([]uuid.UUID, 0, len(s.AllowedGroupIDs))
	for _, raw := range s.AllowedGroupIDs {
		if id, err := uuid.Parse(strings.TrimSpace(raw)); err == nil {
			out = append(out, id)
		}
	}
	return out
}

// UserBooking is one of a user's bookings as shown in the unsubscribe list.
type UserBooking struct {
	SlotID    uuid.UUID `db:"slot_id"`
	PlaceName string    `db:"place_name"`
	Date      time.Time `db:"date"`
	Time      string    `db:"time"`
}

// Clock returns the booking time-of-day as "HH:MM".
func (b *UserBooking) Clock() string {
	if len(b.Time) >= 5 {
		return b.Time[:5]
	}
	return b.Time
}

// AttendanceRow is one roster entry of the attendance listing.
type AttendanceRow struct {
	Date      time.Time `db:"date" json:"date"`
	Time      string    `db:"time" json:"time"`
	PlaceName string    `db:"place_name" json:"place_name"`
	UserID    int64     `db:"user_id" json:"user_id"`
	LastName  string    `db:"last_name" json:"last_name"`
	FirstName string    `db:"first_name" json:"first_name"`
	GroupName string    `db:"group_name" json:"group_name"`
}
