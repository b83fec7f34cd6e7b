package dto

import (
	"github.com/google/uuid"

	"timechart/modules/booking/entity"
)

// BookingRequest is the admin API body for booking or cancelling a seat on a
// user's behalf.
type BookingRequest struct {
	UserID int64     `json:"user_id"`
	SlotID uuid.UUID `json:"slot_id"`
}

// VerdictResponse reports the outcome of a booking or cancellation attempt.
type VerdictResponse struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message,omitempty"`
}

func ToVerdictResponse(v entity.Verdict) *VerdictResponse {
	resp := &VerdictResponse{Allowed: v.Allowed}
	if !v.Allowed {
		resp.Reason = string(v.Reason)
		resp.Message = v.Reason.Message()
	}
	return resp
}
