package job

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// TaskUserEvent is the job type name stored in Redis.
	TaskUserEvent = "user:event"

	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// UserEventPayload is the JSON payload of an audit record for a user write.
type UserEventPayload struct {
	Action     string    `json:"action"`
	UserID     string    `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewUserEventTask constructs an Asynq task recording a user write.
//
// Audit records are low priority: they go to the "low" queue with a short
// timeout and a few retries.
func NewUserEventTask(action, userID string, occurredAt time.Time) (*asynq.Task, error) {
	payload, err := json.Marshal(UserEventPayload{
		Action:     action,
		UserID:     userID,
		OccurredAt: occurredAt,
	})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskUserEvent,
		payload,
		asynq.MaxRetry(3),
		asynq.Queue("low"),
		asynq.Timeout(10*time.Second),
	), nil
}

// PublishUserEvent enqueues an audit record for a user write.
func (j *JobService) PublishUserEvent(ctx context.Context, action, userID string) error {
	task, err := NewUserEventTask(action, userID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to build user event task: %w", err)
	}

	info, err := j.Client.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("failed to enqueue user event: %w", err)
	}

	j.logger.Debug().
		Str("task_id", info.ID).
		Str("queue", info.Queue).
		Str("action", action).
		Msg("enqueued user event")

	return nil
}
