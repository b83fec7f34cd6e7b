package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"timechart/core/constants"
	"timechart/core/logger"
	"timechart/modules/bot/entity"
	botRepository "timechart/modules/bot/repository"
	bookingService "timechart/modules/booking/service"
	groupService "timechart/modules/group/service"
	placeService "timechart/modules/place/service"
	scheduleRepository "timechart/modules/schedule/repository"
	userEntity "timechart/modules/user/entity"
	userRepository "timechart/modules/user/repository"
)

var (
	bookVerb  = regexp.MustCompile(`(?i)\bbook me\b`)
	unsubVerb = regexp.MustCompile(`(?i)\b(unsubscribe me|cancel booking)\b`)
	datePat   = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	clockPat  = regexp.MustCompile(`\b\d{1,2}:\d{2}\b`)
)

// ConversationService is the dialogue state machine. Each update is handled
// under a per-user lock, so a user's rapid-fire messages are serialized; the
// session row keeps the dialogue position between updates.
type ConversationService struct {
	sessions botRepository.SessionRepositoryInterface
	users    userRepository.UserRepositoryInterface
	groups   groupService.GroupServiceInterface
	places   placeService.PlaceServiceInterface
	schedule scheduleRepository.ScheduleRepositoryInterface
	booking  bookingService.BookingServiceInterface
	engine   *bookingService.Engine
	sender   Sender
	now      func() time.Time

	locks  sync.Map
	queues sync.Map
}

func NewConversationService(
	sessions botRepository.SessionRepositoryInterface,
	users userRepository.UserRepositoryInterface,
	groups groupService.GroupServiceInterface,
	places placeService.PlaceServiceInterface,
	schedule scheduleRepository.ScheduleRepositoryInterface,
	booking bookingService.BookingServiceInterface,
	engine *bookingService.Engine,
	sender Sender,
) *ConversationService {
	return &ConversationService{
		sessions: sessions,
		users:    users,
		groups:   groups,
		places:   places,
		schedule: schedule,
		booking:  booking,
		engine:   engine,
		sender:   sender,
		now:      time.Now,
	}
}

type userQueue struct {
	mu      sync.Mutex
	pending []Incoming
	running bool
}

// Dispatch hands one update to the user's serial queue. The poller calls it
// from its single receive loop, so enqueue order is receipt order; one worker
// per user drains the queue FIFO while different users proceed concurrently.
func (s *ConversationService) Dispatch(ctx context.Context, in Incoming) {
	q := s.queueFor(in.UserID)

	q.mu.Lock()
	q.pending = append(q.pending, in)
	if q.running {
		q.mu.Unlock()
		return
	}
	q.running = true
	q.mu.Unlock()

	go func() {
		for {
			q.mu.Lock()
			if len(q.pending) == 0 {
				q.running = false
				q.mu.Unlock()
				return
			}
			next := q.pending[0]
			q.pending = q.pending[1:]
			q.mu.Unlock()

			s.HandleUpdate(ctx, next)
		}
	}()
}

func (s *ConversationService) queueFor(userID int64) *userQueue {
	q, _ := s.queues.LoadOrStore(userID, &userQueue{})
	return q.(*userQueue)
}

// HandleUpdate routes one inbound message: an active session goes to its
// state handler, otherwise the text is matched against the entry verbs.
func (s *ConversationService) HandleUpdate(ctx context.Context, in Incoming) {
	lock := s.lockFor(in.UserID)
	lock.Lock()
	defer lock.Unlock()

	defer func() {
		if r := recover(); r != nil {
			logger.Error("ConversationService:HandleUpdate:Panic", "user_id", in.UserID, "panic", r)
			s.sessions.Clear(ctx, in.UserID)
			s.send(in.ChatID, msgInternalError, nil)
		}
	}()

	text := strings.TrimSpace(in.Text)
	if isCancelWord(text) {
		s.endConversation(ctx, in, msgConversationEnded)
		return
	}

	session, err := s.sessions.Get(ctx, in.UserID)
	if err != nil {
		s.fail(ctx, in)
		return
	}

	if session != nil && session.State != entity.StateNone {
		switch session.State {
		case entity.StateAwaitingGroup:
			s.onGroupPicked(ctx, in, text)
		case entity.StateAwaitingLastName:
			s.onLastNameGiven(ctx, in, text)
		case entity.StateAwaitingPlace:
			s.onPlacePicked(ctx, in, text)
		case entity.StateAwaitingDate:
			s.onDatePicked(ctx, in, session, text)
		case entity.StateAwaitingTime:
			s.onTimePicked(ctx, in, session, text)
		case entity.StateAwaitingUnsubscribe:
			s.onUnsubscribePicked(ctx, in, text)
		default:
			logger.Warn("ConversationService:HandleUpdate:UnknownState", "user_id", in.UserID, "state", session.State)
			s.endConversation(ctx, in, msgConversationEnded)
		}
		return
	}

	switch {
	case strings.HasPrefix(text, "/start"):
		s.startOnboarding(ctx, in)
	case bookVerb.MatchString(text):
		s.startBooking(ctx, in)
	case unsubVerb.MatchString(text):
		s.startUnsubscribe(ctx, in)
	default:
		s.send(in.ChatID, msgUnknownCommand, nil)
	}
}

// --- onboarding ---

func (s *ConversationService) startOnboarding(ctx context.Context, in Incoming) {
	chatID := in.ChatID
	if _, err := s.users.Upsert(ctx, &userEntity.User{
		ID:        in.UserID,
		NickName:  in.NickName,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		ChatID:    &chatID,
	}); err != nil {
		s.fail(ctx, in)
		return
	}

	groups, appErr := s.groups.ListActive(ctx)
	if appErr != nil {
		s.fail(ctx, in)
		return
	}
	if len(groups) == 0 {
		s.send(in.ChatID, msgNoActiveGroups, nil)
		return
	}

	keyboard := make([][]string, 0, len(groups))
	for _, g := range groups {
		keyboard = append(keyboard, []string{g.Name})
	}
	if !s.saveState(ctx, in, entity.StateAwaitingGroup, nil, "", nil) {
		return
	}
	s.send(in.ChatID, msgGreeting, keyboard)
}

func (s *ConversationService) onGroupPicked(ctx context.Context, in Incoming, text string) {
	group, appErr := s.groups.FindByName(ctx, text)
	if appErr != nil {
		s.fail(ctx, in)
		return
	}
	if group == nil || !group.IsActive {
		s.endConversation(ctx, in, msgGroupUnknown)
		return
	}

	if err := s.users.AssignGroup(ctx, in.UserID, group.ID); err != nil {
		s.endConversation(ctx, in, msgGroupFailed)
		return
	}
	if !s.saveState(ctx, in, entity.StateAwaitingLastName, nil, "", nil) {
		return
	}
	s.send(in.ChatID, msgAskLastName, nil)
}

func (s *ConversationService) onLastNameGiven(ctx context.Context, in Incoming, text string) {
	if !isPlausibleLastName(text) {
		s.send(in.ChatID, msgLastNameRetry, nil)
		return
	}

	if err := s.users.SetLastName(ctx, in.UserID, text); err != nil {
		s.fail(ctx, in)
		return
	}
	user, err := s.users.GetByID(ctx, in.UserID)
	if err != nil || user == nil {
		s.fail(ctx, in)
		return
	}
	groupName := ""
	if user.GroupID != nil {
		if group, appErr := s.groups.FindByID(ctx, *user.GroupID); appErr == nil && group != nil {
			groupName = group.Name
		}
	}

	s.sessions.Clear(ctx, in.UserID)
	s.send(in.ChatID, fmt.Sprintf(msgOnboarded, user.LastName, groupName), nil)
}

// --- booking ---

func (s *ConversationService) startBooking(ctx context.Context, in Incoming) {
	user, err := s.users.GetByID(ctx, in.UserID)
	if err != nil {
		s.fail(ctx, in)
		return
	}
	if user == nil || user.GroupID == nil {
		s.send(in.ChatID, msgNeedOnboarding, nil)
		return
	}

	group, appErr := s.groups.FindByID(ctx, *user.GroupID)
	if appErr != nil {
		s.fail(ctx, in)
		return
	}
	if group == nil {
		s.send(in.ChatID, msgNeedOnboarding, nil)
		return
	}
	if !s.engine.Override.BypassesStructural(in.UserID) && (!group.IsActive || !group.AllowSignup) {
		s.send(in.ChatID, msgSignupClosed, nil)
		return
	}

	places, appErr := s.places.ListActive(ctx)
	if appErr != nil {
		s.fail(ctx, in)
		return
	}
	if len(places) == 0 {
		s.send(in.ChatID, msgNoPlaces, nil)
		return
	}

	keyboard := make([][]string, 0, len(places))
	for _, p := range places {
		keyboard = append(keyboard, []string{p.Name})
	}
	if !s.saveState(ctx, in, entity.StateAwaitingPlace, nil, "", nil) {
		return
	}
	s.send(in.ChatID, msgAskPlace, keyboard)
}

func (s *ConversationService) onPlacePicked(ctx context.Context, in Incoming, text string) {
	place, appErr := s.places.FindActiveByName(ctx, text)
	if appErr != nil {
		s.fail(ctx, in)
		return
	}
	if place == nil {
		s.send(in.ChatID, msgUnknownPlace, nil)
		return
	}

	groupID, ok := s.userGroupID(ctx, in)
	if !ok {
		return
	}

	now := s.now()
	dates, err := s.schedule.ListOpenDates(ctx, place.ID, groupID, s.engine.Today(now).AddDate(0, 0, 1))
	if err != nil {
		s.fail(ctx, in)
		return
	}

	keyboard := make([][]string, 0, len(dates))
	for _, date := range dates {
		if s.engine.DateBookable(date, now) {
			keyboard = append(keyboard, []string{date.Format(constants.DateFormat)})
		}
	}
	if len(keyboard) == 0 {
		s.endConversation(ctx, in, msgNothingAvailable)
		return
	}

	if !s.saveState(ctx, in, entity.StateAwaitingDate, &place.ID, place.Name, nil) {
		return
	}
	s.send(in.ChatID, msgAskDate, keyboard)
}

func (s *ConversationService) onDatePicked(ctx context.Context, in Incoming, session *entity.Session, text string) {
	raw := datePat.FindString(text)
	if raw == "" {
		s.endConversation(ctx, in, msgBadDate)
		return
	}
	date, err := time.Parse(constants.DateFormat, raw)
	if err != nil {
		s.endConversation(ctx, in, msgBadDate)
		return
	}
	if session.PlaceID == nil {
		s.endConversation(ctx, in, msgSlotGone)
		return
	}

	if verdict := s.engine.DateVerdict(date, s.now()); !verdict.Allowed {
		s.endConversation(ctx, in, verdict.Reason.Message())
		return
	}

	groupID, ok := s.userGroupID(ctx, in)
	if !ok {
		return
	}
	slots, err := s.schedule.ListOpenSlotsForDate(ctx, *session.PlaceID, groupID, date)
	if err != nil {
		s.fail(ctx, in)
		return
	}
	if len(slots) == 0 {
		s.endConversation(ctx, in, msgNothingAvailable)
		return
	}

	keyboard := make([][]string, 0, len(slots))
	for i := range slots {
		keyboard = append(keyboard, []string{slots[i].Clock()})
	}
	if !s.saveState(ctx, in, entity.StateAwaitingTime, session.PlaceID, session.PlaceName, &date) {
		return
	}
	s.send(in.ChatID, msgAskTime, keyboard)
}

func (s *ConversationService) onTimePicked(ctx context.Context, in Incoming, session *entity.Session, text string) {
	clock := normalizeClock(clockPat.FindString(text))
	if clock == "" {
		s.endConversation(ctx, in, msgBadTime)
		return
	}
	if session.PlaceID == nil || session.Date == nil {
		s.endConversation(ctx, in, msgSlotGone)
		return
	}

	summary, err := s.schedule.GetSummaryByPlaceDateTime(ctx, *session.PlaceID, *session.Date, clock)
	if err != nil {
		s.fail(ctx, in)
		return
	}
	if summary == nil {
		s.endConversation(ctx, in, msgSlotGone)
		return
	}

	verdict, appErr := s.booking.Book(ctx, in.UserID, summary.ID)
	if appErr != nil {
		s.fail(ctx, in)
		return
	}

	s.sessions.Clear(ctx, in.UserID)
	if verdict.Allowed {
		s.send(in.ChatID, fmt.Sprintf(msgBooked, session.PlaceName, summary.DateString(), summary.Clock()), nil)
		return
	}
	s.send(in.ChatID, verdict.Reason.Message(), nil)
}

// --- unsubscribe ---

func (s *ConversationService) startUnsubscribe(ctx context.Context, in Incoming) {
	bookings, appErr := s.booking.ListUserFutureBookings(ctx, in.UserID)
	if appErr != nil {
		s.fail(ctx, in)
		return
	}
	if len(bookings) == 0 {
		s.send(in.ChatID, msgNoBookings, nil)
		return
	}

	keyboard := make([][]string, 0, len(bookings))
	for i := range bookings {
		b := &bookings[i]
		keyboard = append(keyboard, []string{
			fmt.Sprintf("%s %s %s", b.PlaceName, b.Date.Format(constants.DateFormat), b.Clock()),
		})
	}
	if !s.saveState(ctx, in, entity.StateAwaitingUnsubscribe, nil, "", nil) {
		return
	}
	s.send(in.ChatID, msgAskUnsubscribe, keyboard)
}

func (s *ConversationService) onUnsubscribePicked(ctx context.Context, in Incoming, text string) {
	date := datePat.FindString(text)
	clock := normalizeClock(clockPat.FindString(text))
	if date == "" || clock == "" {
		s.send(in.ChatID, msgUnknownBooking, nil)
		return
	}

	bookings, appErr := s.booking.ListUserFutureBookings(ctx, in.UserID)
	if appErr != nil {
		s.fail(ctx, in)
		return
	}
	for i := range bookings {
		b := &bookings[i]
		if b.Date.Format(constants.DateFormat) != date || b.Clock() != clock {
			continue
		}

		verdict, appErr := s.booking.Cancel(ctx, in.UserID, b.SlotID)
		if appErr != nil {
			s.fail(ctx, in)
			return
		}
		s.sessions.Clear(ctx, in.UserID)
		if verdict.Allowed {
			s.send(in.ChatID, fmt.Sprintf(msgCancelled, b.PlaceName, date, clock), nil)
			return
		}
		s.send(in.ChatID, verdict.Reason.Message(), nil)
		return
	}
	s.send(in.ChatID, msgUnknownBooking, nil)
}

// --- helpers ---

func (s *ConversationService) userGroupID(ctx context.Context, in Incoming) (uuid.UUID, bool) {
	user, err := s.users.GetByID(ctx, in.UserID)
	if err != nil {
		s.fail(ctx, in)
		return uuid.Nil, false
	}
	if user == nil || user.GroupID == nil {
		s.endConversation(ctx, in, msgNeedOnboarding)
		return uuid.Nil, false
	}
	return *user.GroupID, true
}

func (s *ConversationService) saveState(ctx context.Context, in Incoming, state entity.State, placeID *uuid.UUID, placeName string, date *time.Time) bool {
	err := s.sessions.Save(ctx, &entity.Session{
		UserID:    in.UserID,
		ChatID:    in.ChatID,
		State:     state,
		PlaceID:   placeID,
		PlaceName: placeName,
		Date:      date,
	})
	if err != nil {
		s.fail(ctx, in)
		return false
	}
	return true
}

// endConversation clears the session and sends one closing message.
func (s *ConversationService) endConversation(ctx context.Context, in Incoming, message string) {
	s.sessions.Clear(ctx, in.UserID)
	s.send(in.ChatID, message, nil)
}

func (s *ConversationService) fail(ctx context.Context, in Incoming) {
	s.endConversation(ctx, in, msgInternalError)
}

func (s *ConversationService) send(chatID int64, text string, keyboard [][]string) {
	if err := s.sender.Send(OutgoingMessage{ChatID: chatID, Text: text, Keyboard: keyboard}); err != nil {
		logger.Error("ConversationService:Send", "chat_id", chatID, "error", err)
	}
}

func (s *ConversationService) lockFor(userID int64) *sync.Mutex {
	lock, _ := s.locks.LoadOrStore(userID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

func isCancelWord(text string) bool {
	lowered := strings.ToLower(text)
	return lowered == "/cancel" || lowered == "cancel"
}

func isPlausibleLastName(text string) bool {
	if text == "" || len(strings.Fields(text)) != 1 {
		return false
	}
	return !strings.ContainsAny(text, "0123456789/")
}

// normalizeClock pads a matched time to "HH:MM"; empty in, empty out.
func normalizeClock(raw string) string {
	if raw == "" {
		return ""
	}
	if len(raw) == 4 {
		return "0" + raw
	}
	return raw
}
