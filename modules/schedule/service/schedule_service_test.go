package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"timechart/modules/schedule/dto"
	"timechart/modules/schedule/entity"
)

func TestExpandDateRange(t *testing.T) {
	t.Run("inclusive expansion", func(t *testing.T) {
		dates, err := ExpandDateRange("2026-09-07", "2026-09-09")
		if err != nil {
			t.Fatalf("ExpandDateRange: %v", err)
		}
		if len(dates) != 3 {
			t.Fatalf("len(dates) = %d, want 3", len(dates))
		}
		if got := dates[0].Format("2006-01-02"); got != "2026-09-07" {
			t.Fatalf("dates[0] = %s, want 2026-09-07", got)
		}
		if got := dates[2].Format("2006-01-02"); got != "2026-09-09" {
			t.Fatalf("dates[2] = %s, want 2026-09-09", got)
		}
	})

	t.Run("single day", func(t *testing.T) {
		dates, err := ExpandDateRange("2026-09-07", "2026-09-07")
		if err != nil {
			t.Fatalf("ExpandDateRange: %v", err)
		}
		if len(dates) != 1 {
			t.Fatalf("len(dates) = %d, want 1", len(dates))
		}
	})

	t.Run("reversed range", func(t *testing.T) {
		if _, err := ExpandDateRange("2026-09-09", "2026-09-07"); err == nil {
			t.Fatal("expected error for reversed range")
		}
	})

	t.Run("span too long", func(t *testing.T) {
		if _, err := ExpandDateRange("2026-09-01", "2026-09-20"); err == nil {
			t.Fatal("expected error for long span")
		}
	})

	t.Run("bad format", func(t *testing.T) {
		if _, err := ExpandDateRange("07.09.2026", "2026-09-09"); err == nil {
			t.Fatal("expected error for bad date format")
		}
	})
}

type fakeScheduleRepo struct {
	created []entity.TimeSlot
	// dates already occupied, keyed by "place|date|time"
	existing map[string]bool
}

func (f *fakeScheduleRepo) key(slot *entity.TimeSlot) string {
	return slot.PlaceID.String() + "|" + slot.DateString() + "|" + slot.Time
}

func (f *fakeScheduleRepo) CreateSkipConflict(_ context.Context, slot *entity.TimeSlot, _ []uuid.UUID) (bool, error) {
	if f.existing[f.key(slot)] {
		return false, nil
	}
	f.created = append(f.created, *slot)
	return true, nil
}

func (f *fakeScheduleRepo) GetByID(context.Context, uuid.UUID) (*entity.TimeSlot, error) {
	return nil, nil
}
func (f *fakeScheduleRepo) ListByDateRange(context.Context, time.Time, time.Time) ([]entity.SlotSummary, error) {
	return nil, nil
}
func (f *fakeScheduleRepo) Update(context.Context, uuid.UUID, bool, int) error { return nil }
func (f *fakeScheduleRepo) Delete(context.Context, uuid.UUID) error            { return nil }
func (f *fakeScheduleRepo) ListOpenDates(context.Context, uuid.UUID, uuid.UUID, time.Time) ([]time.Time, error) {
	return nil, nil
}
func (f *fakeScheduleRepo) ListOpenSlotsForDate(context.Context, uuid.UUID, uuid.UUID, time.Time) ([]entity.SlotSummary, error) {
	return nil, nil
}
func (f *fakeScheduleRepo) GetSummaryByPlaceDateTime(context.Context, uuid.UUID, time.Time, string) (*entity.SlotSummary, error) {
	return nil, nil
}
func (f *fakeScheduleRepo) ListUserBookings(context.Context, int64, time.Time) ([]entity.UserBooking, error) {
	return nil, nil
}
func (f *fakeScheduleRepo) Attendance(context.Context, time.Time, time.Time) ([]entity.AttendanceRow, error) {
	return nil, nil
}

func TestBulkCreateCartesianProduct(t *testing.T) {
	repo := &fakeScheduleRepo{existing: map[string]bool{}}
	svc := NewScheduleService(repo)

	resp, appErr := svc.BulkCreate(context.Background(), &dto.BulkCreateRequest{
		PlaceIDs:  []uuid.UUID{uuid.New(), uuid.New()},
		StartDate: "2026-09-07",
		EndDate:   "2026-09-09",
		Times:     []string{"10:00", "12:00"},
		Open:      true,
		Limit:     4,
	})
	if appErr != nil {
		t.Fatalf("BulkCreate: %v", appErr)
	}

	// 2 places x 3 dates x 2 times
	if resp.Created != 12 {
		t.Fatalf("created = %d, want 12", resp.Created)
	}
	if resp.Skipped != 0 {
		t.Fatalf("skipped = %d, want 0", resp.Skipped)
	}
	for _, slot := range repo.created {
		if slot.Limit != 4 || !slot.Open {
			t.Fatalf("slot saved with limit=%d open=%v", slot.Limit, slot.Open)
		}
		if slot.Time != "10:00:00" && slot.Time != "12:00:00" {
			t.Fatalf("slot time = %q", slot.Time)
		}
	}
}

func TestBulkCreateSkipsCollisions(t *testing.T) {
	placeID := uuid.New()
	repo := &fakeScheduleRepo{existing: map[string]bool{
		placeID.String() + "|2026-09-07|10:00:00": true,
	}}
	svc := NewScheduleService(repo)

	resp, appErr := svc.BulkCreate(context.Background(), &dto.BulkCreateRequest{
		PlaceIDs:  []uuid.UUID{placeID},
		StartDate: "2026-09-07",
		EndDate:   "2026-09-08",
		Times:     []string{"10:00"},
	})
	if appErr != nil {
		t.Fatalf("BulkCreate: %v", appErr)
	}
	if resp.Created != 1 || resp.Skipped != 1 {
		t.Fatalf("created=%d skipped=%d, want 1/1", resp.Created, resp.Skipped)
	}
}

func TestBulkCreateValidation(t *testing.T) {
	svc := NewScheduleService(&fakeScheduleRepo{existing: map[string]bool{}})

	t.Run("no places", func(t *testing.T) {
		_, appErr := svc.BulkCreate(context.Background(), &dto.BulkCreateRequest{
			StartDate: "2026-09-07", EndDate: "2026-09-08",
		})
		if appErr == nil {
			t.Fatal("expected validation error")
		}
	})

	t.Run("bad time", func(t *testing.T) {
		_, appErr := svc.BulkCreate(context.Background(), &dto.BulkCreateRequest{
			PlaceIDs:  []uuid.UUID{uuid.New()},
			StartDate: "2026-09-07", EndDate: "2026-09-08",
			Times: []string{"25:99"},
		})
		if appErr == nil {
			t.Fatal("expected validation error")
		}
	})
}
