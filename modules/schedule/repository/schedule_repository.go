package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"timechart/core/database"
	"timechart/core/logger"
	"timechart/modules/schedule/entity"
)

type ScheduleRepository struct {
	DB database.IDatabase
}

func NewScheduleRepository(db database.IDatabase) *ScheduleRepository {
	return &ScheduleRepository{DB: db}
}

type ScheduleRepositoryInterface interface {
	CreateSkipConflict(ctx context.Context, slot *entity.TimeSlot, allowedGroupIDs []uuid.UUID) (created bool, err error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.TimeSlot, error)
	ListByDateRange(ctx context.Context, from, to time.Time) ([]entity.SlotSummary, error)
	Update(ctx context.Context, id uuid.UUID, open bool, limit int) error
	Delete(ctx context.Context, id uuid.UUID) error

	ListOpenDates(ctx context.Context, placeID uuid.UUID, groupID uuid.UUID, from time.Time) ([]time.Time, error)
	ListOpenSlotsForDate(ctx context.Context, placeID uuid.UUID, groupID uuid.UUID, date time.Time) ([]entity.SlotSummary, error)
	GetSummaryByPlaceDateTime(ctx context.Context, placeID uuid.UUID, date time.Time, clock string) (*entity.SlotSummary, error)

	ListUserBookings(ctx context.Context, userID int64, from time.Time) ([]entity.UserBooking, error)
	Attendance(ctx context.Context, from, to time.Time) ([]entity.AttendanceRow, error)
}

const slotColumns = `id, place_id, date, "time", open, slot_limit, created_at, updated_at`

// allowListOK is the structural allow-list predicate: the slot either has no
// allow-list or the group is on it.
const allowListOK = `
	(NOT EXISTS (SELECT 1 FROM time_slot_groups g WHERE g.time_slot_id = ts.id)
	 OR EXISTS (SELECT 1 FROM time_slot_groups g WHERE g.time_slot_id = ts.id AND g.group_id = $2))`

// CreateSkipConflict inserts one slot of a bulk-created schedule. A
// (place, date, time) collision is reported as created=false, not an error.
func (r *ScheduleRepository) CreateSkipConflict(ctx context.Context, slot *entity.TimeSlot, allowedGroupIDs []uuid.UUID) (bool, error) {
	query := `
		INSERT INTO time_slots (place_id, date, "time", open, slot_limit)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (place_id, date, "time") DO NOTHING
		RETURNING id
	`
	var id uuid.UUID
	err := r.DB.GetContext(ctx, &id, query,
		slot.PlaceID, slot.Date, slot.Time, slot.Open, slot.Limit)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		logger.Error("ScheduleRepository:CreateSkipConflict", err)
		return false, err
	}

	for _, groupID := range allowedGroupIDs {
		insert := `INSERT INTO time_slot_groups (time_slot_id, group_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
		if err := r.DB.ExecContext(ctx, insert, id, groupID); err != nil {
			logger.Error("ScheduleRepository:CreateSkipConflict:AllowList", err)
			return true, err
		}
	}
	return true, nil
}

func (r *ScheduleRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.TimeSlot, error) {
	query := `SELECT ` + slotColumns + ` FROM time_slots WHERE id = $1`

	var slot entity.TimeSlot
	err := r.DB.GetContext(ctx, &slot, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("ScheduleRepository:GetByID", err)
		return nil, err
	}
	return &slot, nil
}

func (r *ScheduleRepository) ListByDateRange(ctx context.Context, from, to time.Time) ([]entity.SlotSummary, error) {
	query := `
		SELECT ts.id, ts.place_id, ts.date, ts."time", ts.open, ts.slot_limit,
		       ts.created_at, ts.updated_at,
		       COALESCE(p.name, '') AS place_name,
		       (SELECT COUNT(*) FROM time_slot_people sp WHERE sp.time_slot_id = ts.id) AS roster_count
		FROM time_slots ts
		LEFT JOIN places p ON p.id = ts.place_id
		WHERE ts.date BETWEEN $1 AND $2
		ORDER BY ts.date, ts."time", place_name
	`
	var slots []entity.SlotSummary
	if err := r.DB.SelectContext(ctx, &slots, query, from, to); err != nil {
		logger.Error("ScheduleRepository:ListByDateRange", err)
		return nil, err
	}
	return slots, nil
}

func (r *ScheduleRepository) Update(ctx context.Context, id uuid.UUID, open bool, limit int) error {
	query := `UPDATE time_slots SET open = $2, slot_limit = $3, updated_at = now() WHERE id = $1`
	if err := r.DB.ExecContext(ctx, query, id, open, limit); err != nil {
		logger.Error("ScheduleRepository:Update", err)
		return err
	}
	return nil
}

func (r *ScheduleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM time_slots WHERE id = $1`
	if err := r.DB.ExecContext(ctx, query, id); err != nil {
		logger.Error("ScheduleRepository:Delete", err)
		return err
	}
	return nil
}

// ListOpenDates returns the distinct future dates at a place that still have
// an open, under-capacity slot the group may book.
func (r *ScheduleRepository) ListOpenDates(ctx context.Context, placeID uuid.UUID, groupID uuid.UUID, from time.Time) ([]time.Time, error) {
	query := `
		SELECT DISTINCT ts.date
		FROM time_slots ts
		WHERE ts.place_id = $1
		  AND ts.open = true
		  AND ts.date >= $3
		  AND (SELECT COUNT(*) FROM time_slot_people sp WHERE sp.time_slot_id = ts.id) < ts.slot_limit
		  AND ` + allowListOK + `
		ORDER BY ts.date
	`
	var dates []time.Time
	if err := r.DB.SelectContext(ctx, &dates, query, placeID, groupID, from); err != nil {
		logger.Error("ScheduleRepository:ListOpenDates", err)
		return nil, err
	}
	return dates, nil
}

// ListOpenSlotsForDate returns the open, under-capacity slots for a
// place+date that pass the group allow-list.
func (r *ScheduleRepository) ListOpenSlotsForDate(ctx context.Context, placeID uuid.UUID, groupID uuid.UUID, date time.Time) ([]entity.SlotSummary, error) {
	query := `
		SELECT ts.id, ts.place_id, ts.date, ts."time", ts.open, ts.slot_limit,
		       ts.created_at, ts.updated_at,
		       COALESCE(p.name, '') AS place_name,
		       (SELECT COUNT(*) FROM time_slot_people sp WHERE sp.time_slot_id = ts.id) AS roster_count
		FROM time_slots ts
		LEFT JOIN places p ON p.id = ts.place_id
		WHERE ts.place_id = $1
		  AND ts.open = true
		  AND ts.date = $3
		  AND (SELECT COUNT(*) FROM time_slot_people sp WHERE sp.time_slot_id = ts.id) < ts.slot_limit
		  AND ` + allowListOK + `
		ORDER BY ts."time"
	`
	var slots []entity.SlotSummary
	if err := r.DB.SelectContext(ctx, &slots, query, placeID, groupID, date); err != nil {
		logger.Error("ScheduleRepository:ListOpenSlotsForDate", err)
		return nil, err
	}
	return slots, nil
}

// GetSummaryByPlaceDateTime resolves the slot a user picked in dialogue,
// including its roster size and allow-list.
func (r *ScheduleRepository) GetSummaryByPlaceDateTime(ctx context.Context, placeID uuid.UUID, date time.Time, clock string) (*entity.SlotSummary, error) {
	query := `
		SELECT ts.id, ts.place_id, ts.date, ts."time", ts.open, ts.slot_limit,
		       ts.created_at, ts.updated_at,
		       COALESCE(p.name, '') AS place_name,
		       (SELECT COUNT(*) FROM time_slot_people sp WHERE sp.time_slot_id = ts.id) AS roster_count
		FROM time_slots ts
		LEFT JOIN places p ON p.id = ts.place_id
		WHERE ts.place_id = $1 AND ts.date = $2 AND ts."time" = $3::time
	`
	var slot entity.SlotSummary
	err := r.DB.GetContext(ctx, &slot, query, placeID, date, clock)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("ScheduleRepository:GetSummaryByPlaceDateTime", err)
		return nil, err
	}

	var allowed pq.StringArray
	allowQuery := `SELECT COALESCE(array_agg(group_id::text), '{}') FROM time_slot_groups WHERE time_slot_id = $1`
	if err := r.DB.QueryRowContext(ctx, allowQuery, slot.ID).Scan(&allowed); err != nil {
		logger.Error("ScheduleRepository:GetSummaryByPlaceDateTime:AllowList", err)
		return nil, err
	}
	slot.AllowedGroupIDs = allowed
	return &slot, nil
}

func (r *ScheduleRepository) ListUserBookings(ctx context.Context, userID int64, from time.Time) ([]entity.UserBooking, error) {
	query := `
		SELECT ts.id AS slot_id, COALESCE(p.name, '') AS place_name, ts.date, ts."time"
		FROM time_slot_people sp
		JOIN time_slots ts ON ts.id = sp.time_slot_id
		LEFT JOIN places p ON p.id = ts.place_id
		WHERE sp.user_id = $1 AND ts.date >= $2
		ORDER BY ts.date, ts."time"
	`
	var bookings []entity.UserBooking
	if err := r.DB.SelectContext(ctx, &bookings, query, userID, from); err != nil {
		logger.Error("ScheduleRepository:ListUserBookings", err)
		return nil, err
	}
	return bookings, nil
}

func (r *ScheduleRepository) Attendance(ctx context.Context, from, to time.Time) ([]entity.AttendanceRow, error) {
	query := `
		SELECT ts.date, ts."time", COALESCE(p.name, '') AS place_name,
		       u.id AS user_id, u.last_name, u.first_name,
		       COALESCE(g.name, '') AS group_name
		FROM time_slot_people sp
		JOIN time_slots ts ON ts.id = sp.time_slot_id
		JOIN users u ON u.id = sp.user_id
		LEFT JOIN places p ON p.id = ts.place_id
		LEFT JOIN groups g ON g.id = u.group_id
		WHERE ts.date BETWEEN $1 AND $2
		ORDER BY ts.date, ts."time", place_name, u.last_name
	`
	var rows []entity.AttendanceRow
	if err := r.DB.SelectContext(ctx, &rows, query, from, to); err != nil {
		logger.Error("ScheduleRepository:Attendance", err)
		return nil, err
	}
	return rows, nil
}
