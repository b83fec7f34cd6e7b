package entity

import (
	"timechart/core/entity"
)

// Place is a bookable location; purely a dimension on time slots.
type Place struct {
	Name string `db:"name" json:"name"`

	IsActive bool `db:"is_active" json:"is_active"`

	entity.BaseEntity
}

type PaginatedPlaceEntity = entity.Pagination[Place]
