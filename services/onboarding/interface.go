package onboarding

import (
	"context"

	"github.com/dietic/aliado-bot/models"
)

// OnboardingService drives the multi-turn provider registration dialog. One
// call handles exactly one inbound turn: it loads the session, validates the
// input against the current step's predicate, and either re-prompts or
// transitions, replying through the messaging gateway.
type OnboardingService interface {
	HandleTurn(ctx context.Context, msg models.InboundMessage) error
}

// ReminderScheduler enqueues a delayed nudge for a session that stalls
// mid-dialog. A nil scheduler disables nudges.
type ReminderScheduler interface {
	ScheduleNudge(ctx context.Context, phone string, step models.Step) error
}
