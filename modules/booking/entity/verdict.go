package entity

// Reason enumerates why a booking or cancellation was denied. Reasons are
// business outcomes, not errors; each one maps to a user-facing message.
type Reason string

const (
	ReasonSlotClosed           Reason = "slot_closed"
	ReasonNoGroup              Reason = "no_group"
	ReasonSignupClosed         Reason = "signup_closed"
	ReasonUserInactive         Reason = "user_inactive"
	ReasonDateNotBookable      Reason = "date_not_bookable"
	ReasonCutoffPassed         Reason = "cutoff_passed"
	ReasonGroupNotAllowed      Reason = "group_not_allowed"
	ReasonCapacityFull         Reason = "capacity_full"
	ReasonAlreadyBookedThatDay Reason = "already_booked_that_day"
	ReasonWeekLimitReached     Reason = "week_limit_reached"

	ReasonNotBooked          Reason = "not_booked"
	ReasonCancelTooLate      Reason = "cancel_too_late"
	ReasonCancelCutoffPassed Reason = "cancel_cutoff_passed"
)

var reasonMessages = map[Reason]string{
	ReasonSlotClosed:           "This class is closed for booking.",
	ReasonNoGroup:              "I don't know your group yet. Send /start to introduce yourself first.",
	ReasonSignupClosed:         "Signup is not open for your group right now.",
	ReasonUserInactive:         "Your account is not active. Please contact the administrator.",
	ReasonDateNotBookable:      "Bookings are only possible for future dates.",
	ReasonCutoffPassed:         "It is too late to book for tomorrow, the signup window has closed for today.",
	ReasonGroupNotAllowed:      "This class is reserved for other groups.",
	ReasonCapacityFull:         "No free seats left in this class.",
	ReasonAlreadyBookedThatDay: "You are already booked for a class on that day.",
	ReasonWeekLimitReached:     "You have reached your group's weekly booking limit.",
	ReasonNotBooked:            "You are not booked for that class.",
	ReasonCancelTooLate:        "Past and same-day bookings cannot be cancelled.",
	ReasonCancelCutoffPassed:   "It is too late to cancel tomorrow's class.",
}

// Message returns the user-facing explanation for a denial.
func (r Reason) Message() string {
	if msg, ok := reasonMessages[r]; ok {
		return msg
	}
	return "Booking is not possible right now."
}

// Verdict is the outcome of an eligibility evaluation.
type Verdict struct {
	Allowed bool
	Reason  Reason
}

func Allow() Verdict {
	return Verdict{Allowed: true}
}

func Deny(reason Reason) Verdict {
	return Verdict{Allowed: false, Reason: reason}
}
