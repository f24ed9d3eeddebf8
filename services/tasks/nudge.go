package tasks

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dietic/aliado-bot/models"

	"github.com/hibiken/asynq"
)

const TypeOnboardingNudge = "onboarding:nudge"

// NewNudgeTask builds the delayed task fired when an onboarding session has
// not moved past the given step by fireAt.
func NewNudgeTask(payload models.ReminderPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeOnboardingNudge, b)
	opts := []asynq.Option{asynq.ProcessAt(fireAt)}
	return task, opts, nil
}

// AsynqScheduler enqueues nudges on the shared Redis-backed queue.
type AsynqScheduler struct {
	client *asynq.Client
	delay  time.Duration
}

func NewAsynqScheduler(client *asynq.Client, delay time.Duration) *AsynqScheduler {
	return &AsynqScheduler{client: client, delay: delay}
}

func (s *AsynqScheduler) ScheduleNudge(ctx context.Context, phone string, step models.Step) error {
	task, opts, err := NewNudgeTask(models.ReminderPayload{Phone: phone, Step: step}, time.Now().Add(s.delay))
	if err != nil {
		return err
	}
	_, err = s.client.EnqueueContext(ctx, task, opts...)
	return err
}
