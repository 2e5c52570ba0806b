package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// handleUserEventTask writes the audit record to the log.
func (j *JobService) handleUserEventTask(ctx context.Context, t *asynq.Task) error {
	var p UserEventPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		// Retrying cannot fix a malformed payload.
		return fmt.Errorf("failed to unmarshal user event payload: %v: %w", err, asynq.SkipRetry)
	}

	j.logger.Info().
		Str("type", TaskUserEvent).
		Str("action", p.Action).
		Str("user_id", p.UserID).
		Time("occurred_at", p.OccurredAt).
		Msg("user event")

	return nil
}
