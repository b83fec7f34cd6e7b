package service

import (
	"time"

	"github.com/google/uuid"

	"timechart/core/config"
	"timechart/core/constants"
	"timechart/core/logger"
	"timechart/modules/booking/entity"
	groupEntity "timechart/modules/group/entity"
	scheduleEntity "timechart/modules/schedule/entity"
	userEntity "timechart/modules/user/entity"
)

// OverridePolicy names the privileged user ids and how much they bypass.
// By default they skip the capacity, one-per-day and weekly-quota checks
// only; with SkipStructural they skip everything.
type OverridePolicy struct {
	IDs            map[int64]struct{}
	SkipStructural bool
}

func (p OverridePolicy) Privileged(id int64) bool {
	_, ok := p.IDs[id]
	return ok
}

// BypassesStructural reports whether the id skips the structural checks too,
// not just the capacity/quota ones.
func (p OverridePolicy) BypassesStructural(id int64) bool {
	return p.SkipStructural && p.Privileged(id)
}

// Engine evaluates booking and cancellation eligibility. It is pure: all
// state arrives in the request, nothing is mutated.
type Engine struct {
	CutoffHour int
	Location   *time.Location
	Override   OverridePolicy
}

// NewEngine builds the engine from the loaded booking config.
func NewEngine(cfg config.BookingConfig) *Engine {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Warn("Engine:NewEngine:BadTimezone", "timezone", cfg.Timezone, "error", err)
		loc = time.UTC
	}
	cutoff := cfg.CutoffHour
	if cutoff <= 0 || cutoff > 23 {
		cutoff = constants.DefaultCutoffHour
	}
	ids := make(map[int64]struct{}, len(cfg.AdminIDs))
	for _, id := range cfg.AdminIDs {
		ids[id] = struct{}{}
	}
	return &Engine{
		CutoffHour: cutoff,
		Location:   loc,
		Override:   OverridePolicy{IDs: ids, SkipStructural: cfg.OverrideStructure},
	}
}

// BookRequest is the snapshot CanBook evaluates.
type BookRequest struct {
	User  *userEntity.User
	Group *groupEntity.Group // nil when the user has no group

	Slot *scheduleEntity.SlotSummary

	// BookedSameDay reports whether the user already holds a booking on
	// the slot's date.
	BookedSameDay bool

	// WeekCount is the user's booking count within the current week
	// window (see WeekWindowStart).
	WeekCount int

	Now time.Time
}

// CanBook runs the eligibility checks in order; the first failure determines
// the reported reason.
func (e *Engine) CanBook(req BookRequest) entity.Verdict {
	privileged := e.Override.Privileged(req.User.ID)
	if e.Override.BypassesStructural(req.User.ID) {
		return entity.Allow()
	}

	if !req.Slot.Open {
		return entity.Deny(entity.ReasonSlotClosed)
	}
	if req.Group == nil {
		return entity.Deny(entity.ReasonNoGroup)
	}
	if !req.Group.IsActive || !req.Group.AllowSignup {
		return entity.Deny(entity.ReasonSignupClosed)
	}
	if !req.User.IsActive {
		return entity.Deny(entity.ReasonUserInactive)
	}

	if v := e.dateGate(req.Slot.Date, req.Now, entity.ReasonDateNotBookable, entity.ReasonCutoffPassed); !v.Allowed {
		return v
	}

	if allowed := req.Slot.AllowedGroups(); len(allowed) > 0 && !containsGroup(allowed, req.Group.ID) {
		return entity.Deny(entity.ReasonGroupNotAllowed)
	}

	if privileged {
		return entity.Allow()
	}

	if req.Slot.RosterCount >= req.Slot.Limit {
		return entity.Deny(entity.ReasonCapacityFull)
	}
	if req.BookedSameDay {
		return entity.Deny(entity.ReasonAlreadyBookedThatDay)
	}
	if req.WeekCount >= req.Group.WeekLimit {
		return entity.Deny(entity.ReasonWeekLimitReached)
	}
	return entity.Allow()
}

// CanCancel checks that the user holds the booking and the slot date is
// still cancellable.
func (e *Engine) CanCancel(onRoster bool, slotDate time.Time, now time.Time) entity.Verdict {
	if !onRoster {
		return entity.Deny(entity.ReasonNotBooked)
	}
	return e.dateGate(slotDate, now, entity.ReasonCancelTooLate, entity.ReasonCancelCutoffPassed)
}

// dateGate rejects past/same-day dates outright and next-day dates once the
// cutoff hour has passed.
func (e *Engine) dateGate(slotDate, now time.Time, pastReason, cutoffReason entity.Reason) entity.Verdict {
	today := e.Today(now)
	date := dateOnly(slotDate)

	if !date.After(today) {
		return entity.Deny(pastReason)
	}
	if date.Equal(today.AddDate(0, 0, 1)) && now.In(e.Location).Hour() >= e.CutoffHour {
		return entity.Deny(cutoffReason)
	}
	return entity.Allow()
}

// DateVerdict exposes the structural date check for dialogue-time use,
// with the denial reason preserved.
func (e *Engine) DateVerdict(slotDate, now time.Time) entity.Verdict {
	return e.dateGate(slotDate, now, entity.ReasonDateNotBookable, entity.ReasonCutoffPassed)
}

// DateBookable reports whether a date passes the structural date check,
// used to filter the dates offered in dialogue.
func (e *Engine) DateBookable(slotDate, now time.Time) bool {
	return e.DateVerdict(slotDate, now).Allowed
}

// Today is the current calendar date in the operational timezone,
// normalized to midnight UTC for date arithmetic.
func (e *Engine) Today(now time.Time) time.Time {
	return dateOnly(now.In(e.Location))
}

// WeekWindowStart returns the start of the weekly-quota window for the given
// day: Monday of the current week, except on Sundays when the window starts
// tomorrow.
func WeekWindowStart(today time.Time) time.Time {
	today = dateOnly(today)
	if today.Weekday() == time.Sunday {
		return today.AddDate(0, 0, 1)
	}
	return today.AddDate(0, 0, -(int(today.Weekday()) - 1))
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func containsGroup(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
