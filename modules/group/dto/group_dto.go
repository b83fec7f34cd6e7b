package dto

import (
	"time"

	"github.com/google/uuid"
)

type GroupRequest struct {
	Name        string `json:"name" validate:"required"`
	IsActive    bool   `json:"is_active"`
	AllowSignup bool   `json:"allow_signup"`
	WeekLimit   int    `json:"week_limit"`
	Color       string `json:"color"`
}

type GroupResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	IsActive    bool      `json:"is_active"`
	AllowSignup bool      `json:"allow_signup"`
	WeekLimit   int       `json:"week_limit"`
	Color       string    `json:"color"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type PaginatedGroupResponse struct {
	Items      []GroupResponse `json:"items"`
	TotalItems int             `json:"total_items"`
	PageNumber int             `json:"page_number"`
	PageSize   int             `json:"page_size"`
}

type SetSignupRequest struct {
	AllowSignup bool `json:"allow_signup"`
}
