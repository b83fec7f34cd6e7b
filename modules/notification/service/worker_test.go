package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	coreEntity "timechart/core/entity"
	"timechart/core/params"
	botService "timechart/modules/bot/service"
	groupEntity "timechart/modules/group/entity"
	"timechart/modules/notification/entity"
	userEntity "timechart/modules/user/entity"
)

type fakeGroupRepo struct {
	group *groupEntity.Group
}

func (f *fakeGroupRepo) GetByID(context.Context, uuid.UUID) (*groupEntity.Group, error) {
	return f.group, nil
}
func (f *fakeGroupRepo) Create(context.Context, *groupEntity.Group) (*groupEntity.Group, error) {
	return nil, nil
}
func (f *fakeGroupRepo) GetByName(context.Context, string) (*groupEntity.Group, error) {
	return nil, nil
}
func (f *fakeGroupRepo) List(context.Context, params.QueryParams) (*groupEntity.PaginatedGroupEntity, error) {
	return nil, nil
}
func (f *fakeGroupRepo) ListActive(context.Context) ([]groupEntity.Group, error) { return nil, nil }
func (f *fakeGroupRepo) Update(context.Context, *groupEntity.Group, uuid.UUID) error {
	return nil
}
func (f *fakeGroupRepo) SetSignupAllowed(context.Context, uuid.UUID, bool) (bool, error) {
	return false, nil
}
func (f *fakeGroupRepo) Delete(context.Context, uuid.UUID) error { return nil }

type fakeUserRepo struct {
	members []userEntity.User
}

func (f *fakeUserRepo) ListNotifiable(context.Context, uuid.UUID) ([]userEntity.User, error) {
	return f.members, nil
}
func (f *fakeUserRepo) Upsert(context.Context, *userEntity.User) (*userEntity.User, error) {
	return nil, nil
}
func (f *fakeUserRepo) GetByID(context.Context, int64) (*userEntity.User, error) { return nil, nil }
func (f *fakeUserRepo) AssignGroup(context.Context, int64, uuid.UUID) error      { return nil }
func (f *fakeUserRepo) SetLastName(context.Context, int64, string) error         { return nil }

type fakeDeliveryRepo struct {
	records []entity.Delivery
}

func (f *fakeDeliveryRepo) Create(_ context.Context, d *entity.Delivery) error {
	f.records = append(f.records, *d)
	return nil
}
func (f *fakeDeliveryRepo) ListRecent(context.Context, int) ([]entity.Delivery, error) {
	return f.records, nil
}

type flakySender struct {
	failChat int64
	sent     []botService.OutgoingMessage
}

func (f *flakySender) Send(msg botService.OutgoingMessage) error {
	f.sent = append(f.sent, msg)
	if msg.ChatID == f.failChat {
		return errors.New("chat blocked")
	}
	return nil
}

func chatID(v int64) *int64 { return &v }

func signupTask(t *testing.T, groupID uuid.UUID) *asynq.Task {
	t.Helper()
	payload := []byte(`{"event_id":"ev12345","group_id":"` + groupID.String() + `","opened_at":"` + time.Now().UTC().Format(time.RFC3339) + `"}`)
	return asynq.NewTask("notification:signup_opened", payload)
}

func TestSignupOpenedFanOut(t *testing.T) {
	groupID := uuid.New()
	group := &groupEntity.Group{
		Name:        "A-1",
		IsActive:    true,
		AllowSignup: true,
		BaseEntity:  coreEntity.BaseEntity{ID: groupID},
	}
	users := &fakeUserRepo{members: []userEntity.User{
		{ID: 1, ChatID: chatID(11)},
		{ID: 2, ChatID: chatID(22)},
		{ID: 3, ChatID: chatID(33)},
	}}
	deliveries := &fakeDeliveryRepo{}
	sender := &flakySender{failChat: 22}

	w := NewWorker(&fakeGroupRepo{group: group}, users, deliveries, sender)
	if err := w.HandleSignupOpened(context.Background(), signupTask(t, groupID)); err != nil {
		t.Fatalf("HandleSignupOpened: %v", err)
	}

	// One blocked chat must not stop the fan-out.
	if len(sender.sent) != 3 {
		t.Fatalf("send attempts = %d, want 3", len(sender.sent))
	}
	if !strings.Contains(sender.sent[0].Text, "A-1") {
		t.Fatalf("message = %q, want group name included", sender.sent[0].Text)
	}

	if len(deliveries.records) != 3 {
		t.Fatalf("delivery records = %d, want 3", len(deliveries.records))
	}
	delivered := 0
	for _, rec := range deliveries.records {
		if rec.Delivered {
			delivered++
		} else if rec.Error == "" {
			t.Fatalf("failed delivery recorded without error text")
		}
	}
	if delivered != 2 {
		t.Fatalf("delivered = %d, want 2", delivered)
	}
}

func TestSignupOpenedStaleEvent(t *testing.T) {
	groupID := uuid.New()
	group := &groupEntity.Group{
		Name:       "A-1",
		IsActive:   true,
		BaseEntity: coreEntity.BaseEntity{ID: groupID},
		// AllowSignup false: the window was closed again before the task ran.
	}
	sender := &flakySender{}
	w := NewWorker(&fakeGroupRepo{group: group}, &fakeUserRepo{}, &fakeDeliveryRepo{}, sender)

	if err := w.HandleSignupOpened(context.Background(), signupTask(t, groupID)); err != nil {
		t.Fatalf("HandleSignupOpened: %v", err)
	}
	if len(sender.sent) != 0 {
		t.Fatalf("stale event must not notify, sent %d", len(sender.sent))
	}
}

func TestSignupOpenedBadPayloadSkipsRetry(t *testing.T) {
	w := NewWorker(&fakeGroupRepo{}, &fakeUserRepo{}, &fakeDeliveryRepo{}, &flakySender{})
	err := w.HandleSignupOpened(context.Background(), asynq.NewTask("notification:signup_opened", []byte("{broken")))
	if err == nil {
		t.Fatal("expected error for malformed payload")
	}
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("error %v must wrap asynq.SkipRetry", err)
	}
}
