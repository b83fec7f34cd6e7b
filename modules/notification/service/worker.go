package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"timechart/core/logger"
	botService "timechart/modules/bot/service"
	groupRepository "timechart/modules/group/repository"
	"timechart/modules/notification/entity"
	"timechart/modules/notification/repository"
	userRepository "timechart/modules/user/repository"
)

const signupOpenedText = "Signup is open for your group %s! Write \"book me\" to grab a seat."

// Worker handles queued notification tasks: it fans a signup-opened event out
// to every notifiable member of the group. Delivery is best-effort per
// recipient; one blocked chat never stops the rest.
type Worker struct {
	groups     groupRepository.GroupRepositoryInterface
	users      userRepository.UserRepositoryInterface
	deliveries repository.NotificationRepositoryInterface
	sender     botService.Sender
}

func NewWorker(
	groups groupRepository.GroupRepositoryInterface,
	users userRepository.UserRepositoryInterface,
	deliveries repository.NotificationRepositoryInterface,
	sender botService.Sender,
) *Worker {
	return &Worker{groups: groups, users: users, deliveries: deliveries, sender: sender}
}

func (w *Worker) HandleSignupOpened(ctx context.Context, t *asynq.Task) error {
	var event entity.SignupOpenedEvent
	if err := json.Unmarshal(t.Payload(), &event); err != nil {
		return fmt.Errorf("decode signup-opened payload: %v: %w", err, asynq.SkipRetry)
	}

	group, err := w.groups.GetByID(ctx, event.GroupID)
	if err != nil {
		return err
	}
	if group == nil || !group.AllowSignup {
		// The window was closed again before the task ran; notifying now
		// would only mislead.
		logger.Warn("Worker:HandleSignupOpened:Stale", "event_id", event.EventID, "group_id", event.GroupID)
		return nil
	}

	recipients, err := w.users.ListNotifiable(ctx, event.GroupID)
	if err != nil {
		return err
	}

	text := fmt.Sprintf(signupOpenedText, group.Name)
	sent := 0
	for i := range recipients {
		recipient := &recipients[i]
		if recipient.ChatID == nil {
			continue
		}

		sendErr := w.sender.Send(botService.OutgoingMessage{ChatID: *recipient.ChatID, Text: text})
		delivery := &entity.Delivery{
			EventID:   event.EventID,
			GroupID:   event.GroupID,
			UserID:    recipient.ID,
			Delivered: sendErr == nil,
		}
		if sendErr != nil {
			delivery.Error = sendErr.Error()
			logger.Warn("Worker:HandleSignupOpened:Send", "event_id", event.EventID, "user_id", recipient.ID, "user", recipient.DisplayName(), "error", sendErr)
		} else {
			sent++
		}
		if err := w.deliveries.Create(ctx, delivery); err != nil {
			logger.Error("Worker:HandleSignupOpened:Record", "event_id", event.EventID, "user_id", recipient.ID, "error", err)
		}
	}

	logger.Info("Worker:HandleSignupOpened:Done",
		"event_id", event.EventID,
		"group_id", event.GroupID,
		"recipients", len(recipients),
		"sent", sent,
	)
	return nil
}
