package dto

import (
	"github.com/google/uuid"
)

// BulkCreateRequest describes a cartesian schedule definition: every
// (place, date, time) combination becomes one TimeSlot.
type BulkCreateRequest struct {
	PlaceIDs  []uuid.UUID `json:"place_ids" validate:"required"`
	StartDate string      `json:"start_date" validate:"required"` // YYYY-MM-DD, inclusive
	EndDate   string      `json:"end_date" validate:"required"`   // YYYY-MM-DD, inclusive
	Times     []string    `json:"times" validate:"required"`      // HH:MM
	Open      bool        `json:"open"`
	Limit     int         `json:"limit"`
	GroupIDs  []uuid.UUID `json:"group_ids"` // optional allow-list
}

type BulkCreateResponse struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

type UpdateSlotRequest struct {
	Open  bool `json:"open"`
	Limit int  `json:"limit"`
}
