package cron

import (
	"context"
	"encoding/json"
	"testing"

	sessionRepo "github.com/dietic/aliado-bot/database/repository/session"
	"github.com/dietic/aliado-bot/models"
	"github.com/dietic/aliado-bot/services/tasks"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sessionStub struct {
	session *models.Session
	err     error
}

func (s *sessionStub) GetByPhone(context.Context, string) (*models.Session, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.session, nil
}

func (s *sessionStub) Create(context.Context, *models.Session) error { return nil }
func (s *sessionStub) UpdateIfStep(context.Context, string, models.Step, *models.Session) error {
	return nil
}
func (s *sessionStub) ClaimFinalize(context.Context, string) (*models.Session, error) {
	return nil, nil
}
func (s *sessionStub) ReleaseFinalize(context.Context, string) error { return nil }
func (s *sessionStub) Delete(context.Context, string) error          { return nil }

type gatewayStub struct {
	sent []string
}

func (g *gatewayStub) SendText(_ context.Context, _, body string) error {
	g.sent = append(g.sent, body)
	return nil
}

func (g *gatewayStub) SendTemplate(context.Context, string, string) error { return nil }

func nudgeTask(t *testing.T, phone string, step models.Step) *asynq.Task {
	t.Helper()
	b, err := json.Marshal(models.ReminderPayload{Phone: phone, Step: step})
	require.NoError(t, err)
	return asynq.NewTask(tasks.TypeOnboardingNudge, b)
}

func TestNudgeSentWhenSessionStillStalled(t *testing.T) {
	sessions := &sessionStub{session: &models.Session{Phone: "p1", Step: models.StepAwaitDistricts}}
	gateway := &gatewayStub{}
	handler := handleNudgeTask(sessions, gateway)

	err := handler(context.Background(), nudgeTask(t, "p1", models.StepAwaitDistricts))
	require.NoError(t, err)

	require.Len(t, gateway.sent, 1)
	assert.Equal(t, nudgeMessage, gateway.sent[0])
}

func TestNudgeSkippedWhenDialogMovedOn(t *testing.T) {
	sessions := &sessionStub{session: &models.Session{Phone: "p1", Step: models.StepAwaitConfirm}}
	gateway := &gatewayStub{}
	handler := handleNudgeTask(sessions, gateway)

	err := handler(context.Background(), nudgeTask(t, "p1", models.StepAwaitDistricts))
	require.NoError(t, err)
	assert.Empty(t, gateway.sent)
}

func TestNudgeSkippedWhenSessionGone(t *testing.T) {
	sessions := &sessionStub{err: sessionRepo.ErrNotFound}
	gateway := &gatewayStub{}
	handler := handleNudgeTask(sessions, gateway)

	err := handler(context.Background(), nudgeTask(t, "p1", models.StepAwaitName))
	require.NoError(t, err, "a finished session is not a task failure")
	assert.Empty(t, gateway.sent)
}

func TestNudgeRejectsMalformedPayload(t *testing.T) {
	gateway := &gatewayStub{}
	handler := handleNudgeTask(&sessionStub{}, gateway)

	err := handler(context.Background(), asynq.NewTask(tasks.TypeOnboardingNudge, []byte("not json")))
	assert.Error(t, err)
	assert.Empty(t, gateway.sent)
}
