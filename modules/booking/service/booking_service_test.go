package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"

	"timechart/core/errors"
	"timechart/core/params"
	"timechart/modules/booking/entity"
	"timechart/modules/booking/repository"
	groupEntity "timechart/modules/group/entity"
	userEntity "timechart/modules/user/entity"
)

// fakeBookingRepo hands the configured snapshot to the decide callback the
// way the real repository does under its row lock.
type fakeBookingRepo struct {
	snap repository.Snapshot
	err  error

	onRoster bool
	slotDate time.Time

	gotWeekStart time.Time
}

func (f *fakeBookingRepo) Book(_ context.Context, _ int64, _ uuid.UUID, weekStart time.Time, decide func(repository.Snapshot) entity.Verdict) (entity.Verdict, error) {
	if f.err != nil {
		return entity.Verdict{}, f.err
	}
	f.gotWeekStart = weekStart
	return decide(f.snap), nil
}

func (f *fakeBookingRepo) Cancel(_ context.Context, _ int64, _ uuid.UUID, decide func(bool, time.Time) entity.Verdict) (entity.Verdict, error) {
	if f.err != nil {
		return entity.Verdict{}, f.err
	}
	return decide(f.onRoster, f.slotDate), nil
}

type stubUserRepo struct {
	user *userEntity.User
}

func (s *stubUserRepo) Upsert(context.Context, *userEntity.User) (*userEntity.User, error) {
	return nil, nil
}
func (s *stubUserRepo) GetByID(context.Context, int64) (*userEntity.User, error) {
	return s.user, nil
}
func (s *stubUserRepo) AssignGroup(context.Context, int64, uuid.UUID) error  { return nil }
func (s *stubUserRepo) SetLastName(context.Context, int64, string) error    { return nil }
func (s *stubUserRepo) ListNotifiable(context.Context, uuid.UUID) ([]userEntity.User, error) {
	return nil, nil
}

type stubGroupRepo struct {
	group *groupEntity.Group
}

func (s *stubGroupRepo) Create(context.Context, *groupEntity.Group) (*groupEntity.Group, error) {
	return nil, nil
}
func (s *stubGroupRepo) GetByID(context.Context, uuid.UUID) (*groupEntity.Group, error) {
	return s.group, nil
}
func (s *stubGroupRepo) GetByName(context.Context, string) (*groupEntity.Group, error) {
	return nil, nil
}
func (s *stubGroupRepo) List(context.Context, params.QueryParams) (*groupEntity.PaginatedGroupEntity, error) {
	return nil, nil
}
func (s *stubGroupRepo) ListActive(context.Context) ([]groupEntity.Group, error) { return nil, nil }
func (s *stubGroupRepo) Update(context.Context, *groupEntity.Group, uuid.UUID) error {
	return nil
}
func (s *stubGroupRepo) SetSignupAllowed(context.Context, uuid.UUID, bool) (bool, error) {
	return false, nil
}
func (s *stubGroupRepo) Delete(context.Context, uuid.UUID) error { return nil }

func newTestBookingService(repo *fakeBookingRepo, user *userEntity.User, group *groupEntity.Group) *BookingService {
	svc := NewBookingService(testEngine(), repo, &stubUserRepo{user: user}, &stubGroupRepo{group: group}, nil)
	svc.now = func() time.Time { return wednesdayNoon }
	return svc
}

func TestBookAllowsFromSnapshot(t *testing.T) {
	group := testGroup(2)
	user := testUser(7)
	user.GroupID = &group.ID

	repo := &fakeBookingRepo{snap: repository.Snapshot{
		Slot: testSlot(day(2), 5, 0).TimeSlot,
	}}
	svc := newTestBookingService(repo, user, group)

	verdict, appErr := svc.Book(context.Background(), user.ID, uuid.New())
	if appErr != nil {
		t.Fatalf("unexpected error: %v", appErr)
	}
	if !verdict.Allowed {
		t.Fatalf("verdict = %+v, want allowed", verdict)
	}

	wantWeekStart := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	if !repo.gotWeekStart.Equal(wantWeekStart) {
		t.Fatalf("weekStart = %v, want %v", repo.gotWeekStart, wantWeekStart)
	}
}

func TestBookDeniesOnFullSnapshot(t *testing.T) {
	group := testGroup(2)
	user := testUser(7)
	user.GroupID = &group.ID

	repo := &fakeBookingRepo{snap: repository.Snapshot{
		Slot:        testSlot(day(2), 1, 0).TimeSlot,
		RosterCount: 1,
	}}
	svc := newTestBookingService(repo, user, group)

	verdict, appErr := svc.Book(context.Background(), user.ID, uuid.New())
	if appErr != nil {
		t.Fatalf("unexpected error: %v", appErr)
	}
	if verdict.Allowed || verdict.Reason != entity.ReasonCapacityFull {
		t.Fatalf("verdict = %+v, want capacity denial", verdict)
	}
}

func TestBookAllowListReachesEngine(t *testing.T) {
	group := testGroup(2)
	user := testUser(7)
	user.GroupID = &group.ID

	otherGroup := uuid.New()
	repo := &fakeBookingRepo{snap: repository.Snapshot{
		Slot:            testSlot(day(2), 5, 0).TimeSlot,
		AllowedGroupIDs: []uuid.UUID{otherGroup},
	}}
	svc := newTestBookingService(repo, user, group)

	verdict, appErr := svc.Book(context.Background(), user.ID, uuid.New())
	if appErr != nil {
		t.Fatalf("unexpected error: %v", appErr)
	}
	if verdict.Allowed || verdict.Reason != entity.ReasonGroupNotAllowed {
		t.Fatalf("verdict = %+v, want allow-list denial", verdict)
	}

	repo.snap.AllowedGroupIDs = []uuid.UUID{otherGroup, group.ID}
	verdict, appErr = svc.Book(context.Background(), user.ID, uuid.New())
	if appErr != nil {
		t.Fatalf("unexpected error: %v", appErr)
	}
	if !verdict.Allowed {
		t.Fatalf("verdict = %+v, want allowed once the group is listed", verdict)
	}
}

func TestBookUnknownUser(t *testing.T) {
	svc := newTestBookingService(&fakeBookingRepo{}, nil, nil)

	_, appErr := svc.Book(context.Background(), 7, uuid.New())
	if appErr == nil || appErr.Code != errors.ErrNotFound {
		t.Fatalf("error = %v, want %s", appErr, errors.ErrNotFound)
	}
}

func TestBookUnknownSlot(t *testing.T) {
	group := testGroup(2)
	user := testUser(7)
	user.GroupID = &group.ID

	repo := &fakeBookingRepo{err: sql.ErrNoRows}
	svc := newTestBookingService(repo, user, group)

	_, appErr := svc.Book(context.Background(), user.ID, uuid.New())
	if appErr == nil || appErr.Code != errors.ErrNotFound {
		t.Fatalf("error = %v, want %s", appErr, errors.ErrNotFound)
	}
}

func TestCancelNotOnRoster(t *testing.T) {
	group := testGroup(2)
	user := testUser(7)
	user.GroupID = &group.ID

	repo := &fakeBookingRepo{onRoster: false, slotDate: day(2)}
	svc := newTestBookingService(repo, user, group)

	verdict, appErr := svc.Cancel(context.Background(), user.ID, uuid.New())
	if appErr != nil {
		t.Fatalf("unexpected error: %v", appErr)
	}
	if verdict.Allowed || verdict.Reason != entity.ReasonNotBooked {
		t.Fatalf("verdict = %+v, want not-booked denial", verdict)
	}
}
