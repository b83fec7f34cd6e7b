package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"timechart/core/database"
	"timechart/core/logger"
	bookingEntity "timechart/modules/booking/entity"
	scheduleEntity "timechart/modules/schedule/entity"
)

// Snapshot is the slot state read under the row lock, handed to the
// eligibility decision.
type Snapshot struct {
	Slot            scheduleEntity.TimeSlot
	RosterCount     int
	AllowedGroupIDs []uuid.UUID
	BookedSameDay   bool
	WeekCount       int
}

type BookingRepositoryInterface interface {
	Book(ctx context.Context, userID int64, slotID uuid.UUID, weekStart time.Time, decide func(Snapshot) bookingEntity.Verdict) (bookingEntity.Verdict, error)
	Cancel(ctx context.Context, userID int64, slotID uuid.UUID, decide func(onRoster bool, slotDate time.Time) bookingEntity.Verdict) (bookingEntity.Verdict, error)
}

type BookingRepository struct {
	DB database.IDatabase
}

func NewBookingRepository(db database.IDatabase) *BookingRepository {
	return &BookingRepository{DB: db}
}

// Book runs the check-then-append sequence atomically: the slot row is
// locked, the roster and quota counts are read under that lock, and the
// roster insert only happens when decide allows it. Two concurrent bookings
// of the same slot therefore serialize on the row lock and can never both
// pass the capacity check.
func (r *BookingRepository) Book(ctx context.Context, userID int64, slotID uuid.UUID, weekStart time.Time, decide func(Snapshot) bookingEntity.Verdict) (bookingEntity.Verdict, error) {
	var verdict bookingEntity.Verdict

	err := r.DB.WithinTx(ctx, func(tx *sqlx.Tx) error {
		var snap Snapshot

		lockQuery := `
			SELECT id, place_id, date, "time", open, slot_limit, created_at, updated_at
			FROM time_slots WHERE id = $1
			FOR UPDATE
		`
		if err := tx.GetContext(ctx, &snap.Slot, lockQuery, slotID); err != nil {
			return err
		}

		if err := tx.GetContext(ctx, &snap.RosterCount,
			`SELECT COUNT(*) FROM time_slot_people WHERE time_slot_id = $1`, slotID); err != nil {
			return err
		}

		var allowed []string
		if err := tx.SelectContext(ctx, &allowed,
			`SELECT group_id::text FROM time_slot_groups WHERE time_slot_id = $1`, slotID); err != nil {
			return err
		}
		for _, raw := range allowed {
			if id, err := uuid.Parse(raw); err == nil {
				snap.AllowedGroupIDs = append(snap.AllowedGroupIDs, id)
			}
		}

		if err := tx.GetContext(ctx, &snap.BookedSameDay, `
			SELECT EXISTS (
				SELECT 1 FROM time_slot_people sp
				JOIN time_slots t ON t.id = sp.time_slot_id
				WHERE sp.user_id = $1 AND t.date = $2
			)`, userID, snap.Slot.Date); err != nil {
			return err
		}

		if err := tx.GetContext(ctx, &snap.WeekCount, `
			SELECT COUNT(*) FROM time_slot_people sp
			JOIN time_slots t ON t.id = sp.time_slot_id
			WHERE sp.user_id = $1 AND t.date >= $2
		`, userID, weekStart); err != nil {
			return err
		}

		verdict = decide(snap)
		if !verdict.Allowed {
			return nil
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO time_slot_people (time_slot_id, user_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, slotID, userID)
		return err
	})
	if err != nil {
		if err != sql.ErrNoRows {
			logger.Error("BookingRepository:Book", "user_id", userID, "slot_id", slotID, "error", err)
		}
		return bookingEntity.Verdict{}, err
	}
	return verdict, nil
}

// Cancel removes the user from the slot roster when decide allows it.
func (r *BookingRepository) Cancel(ctx context.Context, userID int64, slotID uuid.UUID, decide func(onRoster bool, slotDate time.Time) bookingEntity.Verdict) (bookingEntity.Verdict, error) {
	var verdict bookingEntity.Verdict

	err := r.DB.WithinTx(ctx, func(tx *sqlx.Tx) error {
		var slotDate time.Time
		if err := tx.GetContext(ctx, &slotDate,
			`SELECT date FROM time_slots WHERE id = $1 FOR UPDATE`, slotID); err != nil {
			return err
		}

		var onRoster bool
		if err := tx.GetContext(ctx, &onRoster, `
			SELECT EXISTS (
				SELECT 1 FROM time_slot_people
				WHERE time_slot_id = $1 AND user_id = $2
			)`, slotID, userID); err != nil {
			return err
		}

		verdict = decide(onRoster, slotDate)
		if !verdict.Allowed {
			return nil
		}

		_, err := tx.ExecContext(ctx,
			`DELETE FROM time_slot_people WHERE time_slot_id = $1 AND user_id = $2`,
			slotID, userID)
		return err
	})
	if err != nil {
		if err != sql.ErrNoRows {
			logger.Error("BookingRepository:Cancel", "user_id", userID, "slot_id", slotID, "error", err)
		}
		return bookingEntity.Verdict{}, err
	}
	return verdict, nil
}
