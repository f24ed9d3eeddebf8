package onboarding

import (
	"context"
	"errors"
	"testing"

	providerRepo "github.com/dietic/aliado-bot/database/repository/provider"
	sessionRepo "github.com/dietic/aliado-bot/database/repository/session"
	"github.com/dietic/aliado-bot/models"
	"github.com/dietic/aliado-bot/services/intelligence"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPhone = "whatsapp:+51999000111"

type testEnv struct {
	sessions  *memSessionRepo
	providers *memProviderRepo
	oracle    *scriptedOracle
	gateway   *recordingGateway
	service   *DefaultOnboardingService
}

func newTestEnv() *testEnv {
	env := &testEnv{
		sessions:  newMemSessionRepo(),
		providers: &memProviderRepo{},
		oracle:    newScriptedOracle(),
		gateway:   &recordingGateway{},
	}
	env.service = NewOnboardingService(
		env.sessions,
		env.providers,
		&Normalizer{Oracle: env.oracle},
		env.gateway,
		nil,
		nil,
		"",
	)
	return env
}

func (env *testEnv) turn(t *testing.T, text string) {
	t.Helper()
	err := env.service.HandleTurn(context.Background(), models.InboundMessage{Phone: testPhone, Text: text})
	require.NoError(t, err)
}

func (env *testEnv) button(t *testing.T, payload string) {
	t.Helper()
	err := env.service.HandleTurn(context.Background(), models.InboundMessage{Phone: testPhone, ButtonPayload: payload})
	require.NoError(t, err)
}

func (env *testEnv) sessionStep(t *testing.T) models.Step {
	t.Helper()
	s, err := env.sessions.GetByPhone(context.Background(), testPhone)
	require.NoError(t, err)
	return s.Step
}

// seedSession plants a session at the given step with a complete draft.
func (env *testEnv) seedSession(t *testing.T, step models.Step) {
	t.Helper()
	err := env.sessions.Create(context.Background(), &models.Session{
		Phone:      testPhone,
		Step:       step,
		Name:       "Juan Carlos Pérez",
		Districts:  "Miraflores, mirflores, Atlantis",
		Services:   "plomería y gasfitero",
		Experience: "10 años arreglando cañerías",
	})
	require.NoError(t, err)
}

func TestFirstContactSendsWelcome(t *testing.T) {
	env := newTestEnv()
	env.turn(t, "hola")

	_, err := env.sessions.GetByPhone(context.Background(), testPhone)
	assert.ErrorIs(t, err, sessionRepo.ErrNotFound, "unsolicited hello must not open a session")
	assert.Equal(t, 1, env.gateway.count())
}

func TestWelcomeAcceptedOpensSessionAtName(t *testing.T) {
	env := newTestEnv()
	env.button(t, payloadJoinYes)

	assert.Equal(t, models.StepAwaitName, env.sessionStep(t))
	assert.Equal(t, msgAskName, env.gateway.last())
}

func TestTextualYesOpensSessionLikeButton(t *testing.T) {
	env := newTestEnv()
	env.turn(t, "Sí")

	assert.Equal(t, models.StepAwaitName, env.sessionStep(t))
	assert.Equal(t, msgAskName, env.gateway.last())
}

func TestWelcomeDeclinedLeavesNoSession(t *testing.T) {
	env := newTestEnv()
	env.button(t, payloadJoinNo)

	_, err := env.sessions.GetByPhone(context.Background(), testPhone)
	assert.ErrorIs(t, err, sessionRepo.ErrNotFound)
	assert.Equal(t, msgWelcomeDeclined, env.gateway.last())
}

func TestRejectedInputKeepsStepAndReprompts(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		reprompt string
	}{
		{"too short", "Jo", msgRepromptName},
		{"contains digit", "Juan 2 Pérez", msgRepromptName},
		{"blank", "   ", msgRepromptName},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv()
			env.button(t, payloadJoinYes)

			env.turn(t, tc.input)

			assert.Equal(t, models.StepAwaitName, env.sessionStep(t), "rejected input must not advance")
			assert.Equal(t, tc.reprompt, env.gateway.last())
		})
	}
}

func TestAcceptedTurnsAdvanceOneStepAtATime(t *testing.T) {
	env := newTestEnv()
	env.button(t, payloadJoinYes)

	steps := []struct {
		input string
		want  models.Step
	}{
		{"Juan Carlos Pérez", models.StepAwaitDistricts},
		{"Miraflores, Surco", models.StepAwaitServices},
		{"plomería", models.StepAwaitExperience},
		{"10 años arreglando cañerías", models.StepAwaitConfirm},
	}
	for _, st := range steps {
		env.turn(t, st.input)
		assert.Equal(t, st.want, env.sessionStep(t))
	}

	s, err := env.sessions.GetByPhone(context.Background(), testPhone)
	require.NoError(t, err)
	assert.Equal(t, "Juan Carlos Pérez", s.Name)
	assert.Equal(t, "Miraflores, Surco", s.Districts)
	assert.Equal(t, "plomería", s.Services)
	assert.Equal(t, "10 años arreglando cañerías", s.Experience)
}

func TestConfirmCreatesExactlyOneProvider(t *testing.T) {
	env := newTestEnv()
	env.seedSession(t, models.StepAwaitConfirm)

	env.turn(t, "Confirmar")

	require.Len(t, env.providers.providers, 1)
	p := env.providers.providers[0]
	assert.Equal(t, "Juan Carlos", p.FirstName)
	assert.Equal(t, "Pérez", p.LastName)
	assert.Equal(t, testPhone, p.Phone)
	assert.Equal(t, []string{"miraflores"}, p.Districts)
	assert.Equal(t, []string{"plomeria"}, p.Categories)
	assert.Equal(t, models.DefaultProviderRating, p.Rating)
	assert.False(t, p.Available, "new providers start unavailable")
	assert.NotEmpty(t, p.ID)

	_, err := env.sessions.GetByPhone(context.Background(), testPhone)
	assert.ErrorIs(t, err, sessionRepo.ErrNotFound, "finalized session must be gone")
}

func TestNormalizerDropsUnknownAndDedupesTypos(t *testing.T) {
	env := newTestEnv()
	env.seedSession(t, models.StepAwaitConfirm)

	env.turn(t, tokenConfirm)

	require.Len(t, env.providers.providers, 1)
	p := env.providers.providers[0]
	// "Miraflores" and "mirflores" collapse into one canonical slug;
	// "Atlantis" is unknown and must not survive as an invented value.
	assert.Equal(t, []string{"miraflores"}, p.Districts)
}

func TestDuplicateConfirmCreatesNoSecondProvider(t *testing.T) {
	env := newTestEnv()
	env.seedSession(t, models.StepAwaitConfirm)

	env.turn(t, tokenConfirm)
	env.turn(t, tokenConfirm)

	assert.Len(t, env.providers.providers, 1, "redelivered confirm must be a no-op")
}

func TestCorrectResetsToNameWithClearedDraft(t *testing.T) {
	env := newTestEnv()
	env.seedSession(t, models.StepAwaitConfirm)

	env.turn(t, "corregir")

	s, err := env.sessions.GetByPhone(context.Background(), testPhone)
	require.NoError(t, err)
	assert.Equal(t, models.StepAwaitName, s.Step)
	assert.Equal(t, testPhone, s.Phone)
	assert.Empty(t, s.Name)
	assert.Empty(t, s.Districts)
	assert.Empty(t, s.Services)
	assert.Empty(t, s.Experience)
	assert.Equal(t, msgRestart, env.gateway.last())
}

func TestUnrecognizedConfirmAnswerReprompts(t *testing.T) {
	env := newTestEnv()
	env.seedSession(t, models.StepAwaitConfirm)

	env.turn(t, "quizás")

	assert.Equal(t, models.StepAwaitConfirm, env.sessionStep(t))
	assert.Equal(t, msgRepromptConfirm, env.gateway.last())
	assert.Empty(t, env.providers.providers)
}

func TestOracleFailureLeavesSessionIntact(t *testing.T) {
	env := newTestEnv()
	env.seedSession(t, models.StepAwaitConfirm)
	env.oracle.err = &intelligence.OracleError{Op: "cleanDraft", Err: errors.New("deadline exceeded")}

	env.turn(t, tokenConfirm)

	assert.Equal(t, models.StepAwaitConfirm, env.sessionStep(t), "failed normalization must not consume the session")
	assert.Empty(t, env.providers.providers)
	assert.Equal(t, msgNormalizerRetry, env.gateway.last())

	// A later retry with the oracle back up succeeds.
	env.oracle.err = nil
	env.turn(t, tokenConfirm)
	assert.Len(t, env.providers.providers, 1)
}

func TestUnusableDraftBlocksFinalize(t *testing.T) {
	env := newTestEnv()
	err := env.sessions.Create(context.Background(), &models.Session{
		Phone:      testPhone,
		Step:       models.StepAwaitConfirm,
		Name:       "Juan Pérez",
		Districts:  "Atlantis y Narnia",
		Services:   "alquimia",
		Experience: "muchos años",
	})
	require.NoError(t, err)

	env.turn(t, tokenConfirm)

	assert.Empty(t, env.providers.providers, "all-unknown draft must not produce a provider")
	assert.Equal(t, models.StepAwaitConfirm, env.sessionStep(t))
	assert.Equal(t, msgDraftUnusable, env.gateway.last())
}

func TestStaleCollectWriteIsSilentNoOp(t *testing.T) {
	env := newTestEnv()
	env.button(t, payloadJoinYes)

	// The session moves on between the read and the conditional write, as
	// happens when two deliveries of one message race.
	require.NoError(t, env.sessions.UpdateIfStep(context.Background(), testPhone, models.StepAwaitName,
		&models.Session{Phone: testPhone, Step: models.StepAwaitDistricts, Name: "Juan Pérez"}))

	sent := env.gateway.count()
	err := env.sessions.UpdateIfStep(context.Background(), testPhone, models.StepAwaitName,
		&models.Session{Phone: testPhone, Step: models.StepAwaitDistricts, Name: "Juan Pérez"})
	assert.ErrorIs(t, err, sessionRepo.ErrStaleStep)
	assert.Equal(t, sent, env.gateway.count())
	assert.Equal(t, models.StepAwaitDistricts, env.sessionStep(t))
}

func TestRecoverFinalizeAfterProviderWritten(t *testing.T) {
	env := newTestEnv()
	env.seedSession(t, models.StepFinalized)
	require.NoError(t, env.providers.Create(context.Background(), &models.Provider{
		ID: "p-1", Phone: testPhone, Categories: []string{"plomeria"}, Districts: []string{"miraflores"},
	}))

	env.turn(t, "hola")

	_, err := env.sessions.GetByPhone(context.Background(), testPhone)
	assert.ErrorIs(t, err, sessionRepo.ErrNotFound, "orphaned claim with provider written is cleaned up")
	assert.Len(t, env.providers.providers, 1)
}

func TestRecoverFinalizeWithoutProviderReleasesClaim(t *testing.T) {
	env := newTestEnv()
	env.seedSession(t, models.StepFinalized)

	env.turn(t, "hola")

	assert.Equal(t, models.StepAwaitConfirm, env.sessionStep(t))
	assert.Equal(t, msgRepromptConfirm, env.gateway.last())
}

func TestAvailabilityKeywordsToggleProvider(t *testing.T) {
	env := newTestEnv()
	require.NoError(t, env.providers.Create(context.Background(), &models.Provider{
		ID: "p-1", Phone: testPhone, Available: false,
	}))

	env.turn(t, "DISPONIBLE")
	p, err := env.providers.GetByPhone(context.Background(), testPhone)
	require.NoError(t, err)
	assert.True(t, p.Available)
	assert.Equal(t, msgAvailableOn, env.gateway.last())

	env.turn(t, "ocupado")
	p, err = env.providers.GetByPhone(context.Background(), testPhone)
	require.NoError(t, err)
	assert.False(t, p.Available)
	assert.Equal(t, msgAvailableOff, env.gateway.last())
}

func TestAvailabilityKeywordFromUnknownPhoneFallsToWelcome(t *testing.T) {
	env := newTestEnv()

	env.turn(t, "disponible")

	_, err := env.providers.GetByPhone(context.Background(), testPhone)
	assert.ErrorIs(t, err, providerRepo.ErrNotFound)
	assert.Equal(t, 1, env.gateway.count(), "unknown phone still gets the welcome")
}

func TestTurnWithoutPhoneIsRejected(t *testing.T) {
	env := newTestEnv()
	err := env.service.HandleTurn(context.Background(), models.InboundMessage{Text: "hola"})
	assert.Error(t, err)
}

func TestProviderCreateFailureReleasesClaim(t *testing.T) {
	env := newTestEnv()
	env.seedSession(t, models.StepAwaitConfirm)
	failing := &failingProviderRepo{memProviderRepo: env.providers}
	env.service.Providers = failing

	err := env.service.HandleTurn(context.Background(), models.InboundMessage{Phone: testPhone, Text: tokenConfirm})
	assert.Error(t, err)
	assert.Equal(t, models.StepAwaitConfirm, env.sessionStep(t), "claim must be released on insert failure")
	assert.Empty(t, env.providers.providers)

	// With the store healthy again the same confirm goes through.
	env.service.Providers = env.providers
	env.turn(t, tokenConfirm)
	assert.Len(t, env.providers.providers, 1)
}

type failingProviderRepo struct {
	*memProviderRepo
}

func (r *failingProviderRepo) Create(context.Context, *models.Provider) error {
	return errors.New("write concern not satisfied")
}
