package service

import (
	"context"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	coreEntity "timechart/core/entity"
	"timechart/core/errors"
	"timechart/core/logger"
	"timechart/core/params"
	botEntity "timechart/modules/bot/entity"
	bookingEntity "timechart/modules/booking/entity"
	bookingService "timechart/modules/booking/service"
	groupDto "timechart/modules/group/dto"
	groupEntity "timechart/modules/group/entity"
	placeEntity "timechart/modules/place/entity"
	scheduleEntity "timechart/modules/schedule/entity"
	userEntity "timechart/modules/user/entity"
)

func TestMain(m *testing.M) {
	logger.SetLogger(zap.NewNop().Sugar())
	os.Exit(m.Run())
}

// --- fakes ---

type fakeSessions struct {
	byUser map[int64]*botEntity.Session
}

func (f *fakeSessions) Get(_ context.Context, userID int64) (*botEntity.Session, error) {
	return f.byUser[userID], nil
}
func (f *fakeSessions) Save(_ context.Context, s *botEntity.Session) error {
	f.byUser[s.UserID] = s
	return nil
}
func (f *fakeSessions) Clear(_ context.Context, userID int64) error {
	delete(f.byUser, userID)
	return nil
}

type fakeUsers struct {
	byID map[int64]*userEntity.User
}

func (f *fakeUsers) Upsert(_ context.Context, u *userEntity.User) (*userEntity.User, error) {
	existing, ok := f.byID[u.ID]
	if !ok {
		copied := *u
		copied.IsActive = true
		f.byID[u.ID] = &copied
		return &copied, nil
	}
	existing.NickName = u.NickName
	existing.FirstName = u.FirstName
	existing.ChatID = u.ChatID
	return existing, nil
}
func (f *fakeUsers) GetByID(_ context.Context, id int64) (*userEntity.User, error) {
	return f.byID[id], nil
}
func (f *fakeUsers) AssignGroup(_ context.Context, userID int64, groupID uuid.UUID) error {
	f.byID[userID].GroupID = &groupID
	return nil
}
func (f *fakeUsers) SetLastName(_ context.Context, userID int64, lastName string) error {
	f.byID[userID].LastName = lastName
	return nil
}
func (f *fakeUsers) ListNotifiable(context.Context, uuid.UUID) ([]userEntity.User, error) {
	return nil, nil
}

type fakeGroups struct {
	groups []groupEntity.Group
}

func (f *fakeGroups) ListActive(context.Context) ([]groupEntity.Group, *errors.AppError) {
	return f.groups, nil
}
func (f *fakeGroups) FindByName(_ context.Context, name string) (*groupEntity.Group, *errors.AppError) {
	for i := range f.groups {
		if f.groups[i].Name == name {
			return &f.groups[i], nil
		}
	}
	return nil, nil
}
func (f *fakeGroups) FindByID(_ context.Context, id uuid.UUID) (*groupEntity.Group, *errors.AppError) {
	for i := range f.groups {
		if f.groups[i].ID == id {
			return &f.groups[i], nil
		}
	}
	return nil, nil
}
func (f *fakeGroups) Create(context.Context, *groupDto.GroupRequest) (*groupDto.GroupResponse, *errors.AppError) {
	return nil, nil
}
func (f *fakeGroups) GetByID(context.Context, uuid.UUID) (*groupDto.GroupResponse, *errors.AppError) {
	return nil, nil
}
func (f *fakeGroups) List(context.Context, params.QueryParams) (*groupDto.PaginatedGroupResponse, *errors.AppError) {
	return nil, nil
}
func (f *fakeGroups) Update(context.Context, *groupDto.GroupRequest, uuid.UUID) *errors.AppError {
	return nil
}
func (f *fakeGroups) SetSignupAllowed(context.Context, uuid.UUID, bool) *errors.AppError { return nil }
func (f *fakeGroups) Delete(context.Context, uuid.UUID) *errors.AppError                 { return nil }

type fakePlaces struct {
	places []placeEntity.Place
}

func (f *fakePlaces) ListActive(context.Context) ([]placeEntity.Place, *errors.AppError) {
	return f.places, nil
}
func (f *fakePlaces) FindActiveByName(_ context.Context, name string) (*placeEntity.Place, *errors.AppError) {
	for i := range f.places {
		if strings.EqualFold(f.places[i].Name, name) {
			return &f.places[i], nil
		}
	}
	return nil, nil
}
func (f *fakePlaces) Create(context.Context, *placeEntity.Place) (*placeEntity.Place, *errors.AppError) {
	return nil, nil
}
func (f *fakePlaces) GetByID(context.Context, uuid.UUID) (*placeEntity.Place, *errors.AppError) {
	return nil, nil
}
func (f *fakePlaces) List(context.Context, params.QueryParams) (*placeEntity.PaginatedPlaceEntity, *errors.AppError) {
	return nil, nil
}
func (f *fakePlaces) Update(context.Context, *placeEntity.Place, uuid.UUID) *errors.AppError {
	return nil
}
func (f *fakePlaces) Delete(context.Context, uuid.UUID) *errors.AppError { return nil }

type fakeSchedule struct {
	dates   []time.Time
	slots   []scheduleEntity.SlotSummary
	summary *scheduleEntity.SlotSummary
}

func (f *fakeSchedule) ListOpenDates(context.Context, uuid.UUID, uuid.UUID, time.Time) ([]time.Time, error) {
	return f.dates, nil
}
func (f *fakeSchedule) ListOpenSlotsForDate(context.Context, uuid.UUID, uuid.UUID, time.Time) ([]scheduleEntity.SlotSummary, error) {
	return f.slots, nil
}
func (f *fakeSchedule) GetSummaryByPlaceDateTime(context.Context, uuid.UUID, time.Time, string) (*scheduleEntity.SlotSummary, error) {
	return f.summary, nil
}
func (f *fakeSchedule) CreateSkipConflict(context.Context, *scheduleEntity.TimeSlot, []uuid.UUID) (bool, error) {
	return false, nil
}
func (f *fakeSchedule) GetByID(context.Context, uuid.UUID) (*scheduleEntity.TimeSlot, error) {
	return nil, nil
}
func (f *fakeSchedule) ListByDateRange(context.Context, time.Time, time.Time) ([]scheduleEntity.SlotSummary, error) {
	return nil, nil
}
func (f *fakeSchedule) Update(context.Context, uuid.UUID, bool, int) error { return nil }
func (f *fakeSchedule) Delete(context.Context, uuid.UUID) error            { return nil }
func (f *fakeSchedule) ListUserBookings(context.Context, int64, time.Time) ([]scheduleEntity.UserBooking, error) {
	return nil, nil
}
func (f *fakeSchedule) Attendance(context.Context, time.Time, time.Time) ([]scheduleEntity.AttendanceRow, error) {
	return nil, nil
}

type fakeBooking struct {
	bookVerdict   bookingEntity.Verdict
	cancelVerdict bookingEntity.Verdict
	bookings      []scheduleEntity.UserBooking

	bookedSlots    []uuid.UUID
	cancelledSlots []uuid.UUID
}

func (f *fakeBooking) Book(_ context.Context, _ int64, slotID uuid.UUID) (bookingEntity.Verdict, *errors.AppError) {
	f.bookedSlots = append(f.bookedSlots, slotID)
	return f.bookVerdict, nil
}
func (f *fakeBooking) Cancel(_ context.Context, _ int64, slotID uuid.UUID) (bookingEntity.Verdict, *errors.AppError) {
	f.cancelledSlots = append(f.cancelledSlots, slotID)
	return f.cancelVerdict, nil
}
func (f *fakeBooking) ListUserFutureBookings(context.Context, int64) ([]scheduleEntity.UserBooking, *errors.AppError) {
	return f.bookings, nil
}

type fakeSender struct {
	mu   sync.Mutex
	sent []OutgoingMessage
}

func (f *fakeSender) Send(msg OutgoingMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeSender) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = nil
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func (f *fakeSender) message(i int) OutgoingMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent[i]
}

func (f *fakeSender) last(t *testing.T) OutgoingMessage {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		t.Fatal("no message sent")
	}
	return f.sent[len(f.sent)-1]
}

// --- harness ---

type harness struct {
	svc      *ConversationService
	sessions *fakeSessions
	users    *fakeUsers
	groups   *fakeGroups
	places   *fakePlaces
	schedule *fakeSchedule
	booking  *fakeBooking
	sender   *fakeSender

	groupID uuid.UUID
	placeID uuid.UUID
}

var testNow = time.Date(2026, 9, 2, 12, 0, 0, 0, time.UTC)

func newHarness() *harness {
	groupID := uuid.New()
	placeID := uuid.New()

	h := &harness{
		sessions: &fakeSessions{byUser: map[int64]*botEntity.Session{}},
		users:    &fakeUsers{byID: map[int64]*userEntity.User{}},
		groups: &fakeGroups{groups: []groupEntity.Group{{
			Name:        "A-1",
			IsActive:    true,
			AllowSignup: true,
			WeekLimit:   2,
			BaseEntity:  coreEntity.BaseEntity{ID: groupID},
		}}},
		places: &fakePlaces{places: []placeEntity.Place{{
			Name:       "Gym Hall",
			IsActive:   true,
			BaseEntity: coreEntity.BaseEntity{ID: placeID},
		}}},
		schedule: &fakeSchedule{},
		booking:  &fakeBooking{bookVerdict: bookingEntity.Allow(), cancelVerdict: bookingEntity.Allow()},
		sender:   &fakeSender{},
		groupID:  groupID,
		placeID:  placeID,
	}
	engine := &bookingService.Engine{CutoffHour: 19, Location: time.UTC}
	h.svc = NewConversationService(h.sessions, h.users, h.groups, h.places, h.schedule, h.booking, engine, h.sender)
	h.svc.now = func() time.Time { return testNow }
	return h
}

func (h *harness) say(text string) {
	h.svc.HandleUpdate(context.Background(), Incoming{
		UserID:    100,
		ChatID:    200,
		NickName:  "student",
		FirstName: "Sasha",
		Text:      text,
	})
}

func (h *harness) onboard() {
	h.say("/start")
	h.say("A-1")
	h.say("Ivanov")
	h.sender.reset()
}

// --- tests ---

func TestUnknownTextOutsideConversation(t *testing.T) {
	h := newHarness()
	h.say("what's up")
	if got := h.sender.last(t).Text; got != msgUnknownCommand {
		t.Fatalf("reply = %q, want %q", got, msgUnknownCommand)
	}
}

func TestOnboardingFlow(t *testing.T) {
	h := newHarness()

	h.say("/start")
	greeting := h.sender.last(t)
	if !strings.Contains(greeting.Text, "pick your group") {
		t.Fatalf("greeting = %q", greeting.Text)
	}
	if len(greeting.Keyboard) != 1 || greeting.Keyboard[0][0] != "A-1" {
		t.Fatalf("group keyboard = %v", greeting.Keyboard)
	}

	h.say("A-1")
	if got := h.sender.last(t).Text; got != msgAskLastName {
		t.Fatalf("reply = %q, want %q", got, msgAskLastName)
	}

	h.say("Ivanov")
	final := h.sender.last(t)
	if !strings.Contains(final.Text, "Ivanov") || !strings.Contains(final.Text, "A-1") {
		t.Fatalf("final reply = %q", final.Text)
	}

	user := h.users.byID[100]
	if user.LastName != "Ivanov" {
		t.Fatalf("last name = %q", user.LastName)
	}
	if user.GroupID == nil || *user.GroupID != h.groupID {
		t.Fatalf("group not assigned")
	}
	if h.sessions.byUser[100] != nil {
		t.Fatal("session not cleared after onboarding")
	}
}

func TestUnknownGroupEndsConversation(t *testing.T) {
	h := newHarness()
	h.say("/start")
	h.say("Z-9")
	if got := h.sender.last(t).Text; got != msgGroupUnknown {
		t.Fatalf("reply = %q, want %q", got, msgGroupUnknown)
	}
	if h.sessions.byUser[100] != nil {
		t.Fatal("group lookup failure must end the conversation")
	}
}

func TestBookMeRequiresOnboarding(t *testing.T) {
	h := newHarness()
	h.say("book me")
	if got := h.sender.last(t).Text; got != msgNeedOnboarding {
		t.Fatalf("reply = %q, want %q", got, msgNeedOnboarding)
	}
}

func TestBookMeWhenSignupClosed(t *testing.T) {
	h := newHarness()
	h.onboard()
	h.groups.groups[0].AllowSignup = false

	h.say("book me")
	if got := h.sender.last(t).Text; got != msgSignupClosed {
		t.Fatalf("reply = %q, want %q", got, msgSignupClosed)
	}
}

func TestSignupClosedNotBypassedByPrivilegeAlone(t *testing.T) {
	h := newHarness()
	h.onboard()
	h.groups.groups[0].AllowSignup = false
	h.svc.engine.Override = bookingService.OverridePolicy{IDs: map[int64]struct{}{100: {}}}

	h.say("book me")
	if got := h.sender.last(t).Text; got != msgSignupClosed {
		t.Fatalf("reply = %q, want %q", got, msgSignupClosed)
	}
}

func TestSignupClosedBypassedWithStructuralOverride(t *testing.T) {
	h := newHarness()
	h.onboard()
	h.groups.groups[0].AllowSignup = false
	h.svc.engine.Override = bookingService.OverridePolicy{
		IDs:            map[int64]struct{}{100: {}},
		SkipStructural: true,
	}

	h.say("book me")
	if got := h.sender.last(t).Text; got != msgAskPlace {
		t.Fatalf("reply = %q, want %q", got, msgAskPlace)
	}
}

func TestDispatchKeepsPerUserOrder(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	for _, text := range []string{"/start", "A-1", "Ivanov"} {
		h.svc.Dispatch(ctx, Incoming{
			UserID:    100,
			ChatID:    200,
			NickName:  "student",
			FirstName: "Sasha",
			Text:      text,
		})
	}

	deadline := time.Now().Add(2 * time.Second)
	for h.sender.count() < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("sent %d replies, want 3", h.sender.count())
		}
		time.Sleep(5 * time.Millisecond)
	}

	if got := h.sender.message(0).Text; !strings.Contains(got, "pick your group") {
		t.Fatalf("first reply = %q, want group prompt", got)
	}
	if got := h.sender.message(1).Text; got != msgAskLastName {
		t.Fatalf("second reply = %q, want %q", got, msgAskLastName)
	}
	if got := h.sender.message(2).Text; !strings.Contains(got, "Ivanov") {
		t.Fatalf("third reply = %q, want onboarding confirmation", got)
	}
}

func TestBookingFlow(t *testing.T) {
	h := newHarness()
	h.onboard()

	slotID := uuid.New()
	slotDate := time.Date(2026, 9, 4, 0, 0, 0, 0, time.UTC)
	h.schedule.dates = []time.Time{
		time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC), // today, must be filtered out
		slotDate,
	}
	summary := scheduleEntity.SlotSummary{
		TimeSlot: scheduleEntity.TimeSlot{
			Date:       slotDate,
			Time:       "10:00:00",
			Open:       true,
			Limit:      5,
			BaseEntity: coreEntity.BaseEntity{ID: slotID},
		},
		PlaceName: "Gym Hall",
	}
	h.schedule.slots = []scheduleEntity.SlotSummary{summary}
	h.schedule.summary = &summary

	h.say("Book me please")
	ask := h.sender.last(t)
	if ask.Text != msgAskPlace {
		t.Fatalf("reply = %q, want %q", ask.Text, msgAskPlace)
	}

	h.say("gym hall")
	dates := h.sender.last(t)
	if dates.Text != msgAskDate {
		t.Fatalf("reply = %q, want %q", dates.Text, msgAskDate)
	}
	if len(dates.Keyboard) != 1 || dates.Keyboard[0][0] != "2026-09-04" {
		t.Fatalf("date keyboard = %v, want only 2026-09-04", dates.Keyboard)
	}

	h.say("2026-09-04")
	times := h.sender.last(t)
	if times.Text != msgAskTime {
		t.Fatalf("reply = %q, want %q", times.Text, msgAskTime)
	}
	if len(times.Keyboard) != 1 || times.Keyboard[0][0] != "10:00" {
		t.Fatalf("time keyboard = %v", times.Keyboard)
	}

	h.say("10:00")
	final := h.sender.last(t)
	if !strings.Contains(final.Text, "Gym Hall") || !strings.Contains(final.Text, "2026-09-04") {
		t.Fatalf("final reply = %q", final.Text)
	}
	if len(h.booking.bookedSlots) != 1 || h.booking.bookedSlots[0] != slotID {
		t.Fatalf("booked slots = %v", h.booking.bookedSlots)
	}
	if h.sessions.byUser[100] != nil {
		t.Fatal("session not cleared after booking")
	}
}

func TestBookingDeniedVerdictIsReported(t *testing.T) {
	h := newHarness()
	h.onboard()

	slotDate := time.Date(2026, 9, 4, 0, 0, 0, 0, time.UTC)
	summary := scheduleEntity.SlotSummary{
		TimeSlot: scheduleEntity.TimeSlot{
			Date:       slotDate,
			Time:       "10:00:00",
			Open:       true,
			Limit:      1,
			BaseEntity: coreEntity.BaseEntity{ID: uuid.New()},
		},
	}
	h.schedule.dates = []time.Time{slotDate}
	h.schedule.slots = []scheduleEntity.SlotSummary{summary}
	h.schedule.summary = &summary
	h.booking.bookVerdict = bookingEntity.Deny(bookingEntity.ReasonCapacityFull)

	h.say("book me")
	h.say("Gym Hall")
	h.say("2026-09-04")
	h.say("10:00")

	want := bookingEntity.ReasonCapacityFull.Message()
	if got := h.sender.last(t).Text; got != want {
		t.Fatalf("reply = %q, want %q", got, want)
	}
}

func TestCancelWordEndsConversation(t *testing.T) {
	h := newHarness()
	h.onboard()
	h.schedule.dates = []time.Time{time.Date(2026, 9, 4, 0, 0, 0, 0, time.UTC)}

	h.say("book me")
	h.say("Cancel")
	if got := h.sender.last(t).Text; got != msgConversationEnded {
		t.Fatalf("reply = %q, want %q", got, msgConversationEnded)
	}
	if h.sessions.byUser[100] != nil {
		t.Fatal("session not cleared by cancel")
	}
}

func TestBadDateEndsConversation(t *testing.T) {
	h := newHarness()
	h.onboard()
	h.schedule.dates = []time.Time{time.Date(2026, 9, 4, 0, 0, 0, 0, time.UTC)}

	h.say("book me")
	h.say("Gym Hall")
	h.say("next friday")
	if got := h.sender.last(t).Text; got != msgBadDate {
		t.Fatalf("reply = %q, want %q", got, msgBadDate)
	}
	if h.sessions.byUser[100] != nil {
		t.Fatal("session must be cleared on bad date")
	}
}

func TestUnsubscribeFlow(t *testing.T) {
	h := newHarness()
	h.onboard()

	slotID := uuid.New()
	h.booking.bookings = []scheduleEntity.UserBooking{{
		SlotID:    slotID,
		PlaceName: "Gym Hall",
		Date:      time.Date(2026, 9, 4, 0, 0, 0, 0, time.UTC),
		Time:      "10:00:00",
	}}

	h.say("unsubscribe me")
	ask := h.sender.last(t)
	if ask.Text != msgAskUnsubscribe {
		t.Fatalf("reply = %q, want %q", ask.Text, msgAskUnsubscribe)
	}
	if len(ask.Keyboard) != 1 || ask.Keyboard[0][0] != "Gym Hall 2026-09-04 10:00" {
		t.Fatalf("keyboard = %v", ask.Keyboard)
	}

	h.say("Gym Hall 2026-09-04 10:00")
	final := h.sender.last(t)
	if !strings.Contains(final.Text, "cancelled") {
		t.Fatalf("final reply = %q", final.Text)
	}
	if len(h.booking.cancelledSlots) != 1 || h.booking.cancelledSlots[0] != slotID {
		t.Fatalf("cancelled slots = %v", h.booking.cancelledSlots)
	}
}

func TestUnsubscribeWithNoBookings(t *testing.T) {
	h := newHarness()
	h.onboard()
	h.say("cancel booking")
	if got := h.sender.last(t).Text; got != msgNoBookings {
		t.Fatalf("reply = %q, want %q", got, msgNoBookings)
	}
}
