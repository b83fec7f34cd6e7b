package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"timechart/core/constants"
	"timechart/core/logger"
	"timechart/core/queue"
	"timechart/core/utils"
	"timechart/modules/notification/entity"
)

// Publisher enqueues notification tasks. It satisfies the group module's
// SignupOpenedPublisher.
type Publisher struct {
	client *asynq.Client
}

func NewPublisher(client *asynq.Client) *Publisher {
	return &Publisher{client: client}
}

func (p *Publisher) SignupOpened(ctx context.Context, groupID uuid.UUID) error {
	event := entity.SignupOpenedEvent{
		EventID:  utils.GenerateID(),
		GroupID:  groupID,
		OpenedAt: time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	task := asynq.NewTask(queue.TypeSignupOpened, payload)
	info, err := p.client.EnqueueContext(ctx, task,
		asynq.MaxRetry(3),
		asynq.Timeout(constants.DefaultTimeout),
	)
	if err != nil {
		logger.Error("Publisher:SignupOpened:Enqueue", "event_id", event.EventID, "error", err)
		return err
	}

	logger.Info("Publisher:SignupOpened:Enqueued",
		"event_id", event.EventID,
		"group_id", groupID,
		"task_id", info.ID,
	)
	return nil
}
