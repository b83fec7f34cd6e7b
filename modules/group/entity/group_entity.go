package entity

import (
	"timechart/core/entity"
)

// Group is a fixed student group. AllowSignup gates booking for all its
// members; flipping it from false to true opens the signup window and
// triggers member notifications.
type Group struct {
	Name string `db:"name" json:"name"`

	IsActive bool `db:"is_active" json:"is_active"`

	AllowSignup bool `db:"allow_signup" json:"allow_signup"`

	// WeekLimit caps bookings per member per calendar week.
	WeekLimit int `db:"week_limit" json:"week_limit"`

	// Color is a display hint for admin listings.
	Color string `db:"color" json:"color"`

	entity.BaseEntity
}

type PaginatedGroupEntity = entity.Pagination[Group]
