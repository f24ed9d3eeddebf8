package onboarding

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	providerRepo "github.com/dietic/aliado-bot/database/repository/provider"
	sessionRepo "github.com/dietic/aliado-bot/database/repository/session"
	"github.com/dietic/aliado-bot/models"
	"github.com/dietic/aliado-bot/services/messaging"
	"github.com/dietic/aliado-bot/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// lockWait bounds how long a turn waits for the per-phone lock before
// failing into the fallback message.
const lockWait = 10 * time.Second

// DefaultOnboardingService implements OnboardingService. Transitions are
// applied with conditional writes keyed on the step read at the start of
// the turn, so redelivered messages can never advance the dialog twice or
// create two Provider records for one finalize.
type DefaultOnboardingService struct {
	Sessions   sessionRepo.SessionRepository
	Providers  providerRepo.ProviderRepository
	Normalizer *Normalizer
	Gateway    messaging.Gateway
	// Lock serializes concurrent turns for the same phone. Optional: the
	// conditional-write discipline alone already keeps state consistent.
	Lock *utils.PhoneLock
	// Reminders nudges stalled sessions. Optional.
	Reminders ReminderScheduler
	// WelcomeContentSID is the pre-approved quick-reply template shown on
	// first contact. When empty a plain-text welcome is sent instead.
	WelcomeContentSID string

	transitions map[models.Step]transition
}

func NewOnboardingService(
	sessions sessionRepo.SessionRepository,
	providers providerRepo.ProviderRepository,
	normalizer *Normalizer,
	gateway messaging.Gateway,
	lock *utils.PhoneLock,
	reminders ReminderScheduler,
	welcomeContentSID string,
) *DefaultOnboardingService {
	return &DefaultOnboardingService{
		Sessions:          sessions,
		Providers:         providers,
		Normalizer:        normalizer,
		Gateway:           gateway,
		Lock:              lock,
		Reminders:         reminders,
		WelcomeContentSID: welcomeContentSID,
		transitions:       newTransitionTable(),
	}
}

func (s *DefaultOnboardingService) HandleTurn(ctx context.Context, msg models.InboundMessage) error {
	phone := strings.TrimSpace(msg.Phone)
	if phone == "" {
		return errors.New("inbound turn without phone identifier")
	}

	if s.Lock != nil {
		lockCtx, cancel := context.WithTimeout(ctx, lockWait)
		release, err := s.Lock.Acquire(lockCtx, phone)
		cancel()
		if err != nil {
			s.send(ctx, phone, msgTryLater)
			return fmt.Errorf("turn for %s not serialized: %w", phone, err)
		}
		defer release()
	}

	text := strings.TrimSpace(msg.Text)
	token := strings.ToLower(strings.TrimSpace(msg.ButtonPayload))

	session, err := s.Sessions.GetByPhone(ctx, phone)
	if errors.Is(err, sessionRepo.ErrNotFound) {
		return s.handleFirstContact(ctx, phone, text, token)
	}
	if err != nil {
		s.send(ctx, phone, msgTryLater)
		return err
	}

	switch session.Step {
	case models.StepAwaitConfirm:
		return s.handleConfirm(ctx, session, text, token)
	case models.StepFinalized:
		return s.recoverFinalize(ctx, session)
	default:
		return s.handleCollect(ctx, session, text)
	}
}

// handleFirstContact runs for phones without a session: the availability
// keywords of already-registered providers, and the welcome handshake for
// everyone else.
func (s *DefaultOnboardingService) handleFirstContact(ctx context.Context, phone, text, token string) error {
	logger := utils.GetLogger()

	if keyword := strings.ToLower(text); keyword == keywordAvailable || keyword == keywordUnavailable {
		err := s.Providers.SetAvailability(ctx, phone, keyword == keywordAvailable)
		if err == nil {
			reply := msgAvailableOn
			if keyword == keywordUnavailable {
				reply = msgAvailableOff
			}
			s.send(ctx, phone, reply)
			return nil
		}
		if !errors.Is(err, providerRepo.ErrNotFound) {
			s.send(ctx, phone, msgTryLater)
			return err
		}
		// Not a registered provider; fall through to the welcome handshake.
	}

	// Plain-text answers stand in for the quick-reply buttons when the
	// welcome went out as text.
	if token == "" {
		switch utils.StripAccents(strings.ToLower(text)) {
		case "si":
			token = payloadJoinYes
		case "no":
			token = payloadJoinNo
		}
	}

	switch token {
	case payloadJoinYes:
		session := &models.Session{Phone: phone, Step: models.StepAwaitName}
		if err := s.Sessions.Create(ctx, session); err != nil {
			s.send(ctx, phone, msgTryLater)
			return err
		}
		logger.Info("onboarding session created", zap.String("phone", phone))
		s.send(ctx, phone, msgWelcomeAccepted)
		s.send(ctx, phone, msgAskName)
		s.scheduleNudge(ctx, phone, models.StepAwaitName)
	case payloadJoinNo:
		s.send(ctx, phone, msgWelcomeDeclined)
	default:
		if s.WelcomeContentSID != "" {
			if err := s.Gateway.SendTemplate(ctx, phone, s.WelcomeContentSID); err != nil {
				logger.Error("failed to send welcome template", zap.String("phone", phone), zap.Error(err))
			}
		} else {
			s.send(ctx, phone, msgWelcomeFallback)
		}
	}
	return nil
}

// handleCollect runs the table-driven states: validate, write the draft
// field, advance the step by one, ask the next question.
func (s *DefaultOnboardingService) handleCollect(ctx context.Context, session *models.Session, text string) error {
	logger := utils.GetLogger()
	t, ok := s.transitions[session.Step]
	if !ok {
		// Unknown persisted step value; answer something rather than nothing.
		logger.Error("session at unhandled step", zap.String("phone", session.Phone), zap.Int("step", int(session.Step)))
		s.send(ctx, session.Phone, msgTryLater)
		return fmt.Errorf("session %s at unhandled step %d", session.Phone, session.Step)
	}

	if !t.validate(text) {
		vErr := &ValidationError{Step: session.Step.String(), Reprompt: t.reprompt}
		logger.Debug("input rejected", zap.String("phone", session.Phone), zap.Error(vErr))
		s.send(ctx, session.Phone, t.reprompt)
		return nil
	}

	from := session.Step
	next := *session
	t.apply(&next, text)
	next.Step = t.next

	err := s.Sessions.UpdateIfStep(ctx, session.Phone, from, &next)
	if errors.Is(err, sessionRepo.ErrStaleStep) {
		// Redelivery of an already-applied turn. The first delivery
		// answered; nothing to do.
		logger.Debug("duplicate turn ignored", zap.String("phone", session.Phone), zap.Int("step", int(from)))
		return nil
	}
	if err != nil {
		s.send(ctx, session.Phone, msgTryLater)
		return err
	}

	s.send(ctx, session.Phone, t.nextPrompt(&next))
	s.scheduleNudge(ctx, session.Phone, next.Step)
	return nil
}

// handleConfirm accepts exactly two tokens: confirm finalizes, correct
// resets the dialog to the name question with a cleared draft.
func (s *DefaultOnboardingService) handleConfirm(ctx context.Context, session *models.Session, text, token string) error {
	answer := token
	if answer == "" {
		answer = strings.ToLower(text)
	}

	switch answer {
	case tokenConfirm:
		return s.finalize(ctx, session)
	case tokenCorrect:
		reset := *session
		reset.ClearDraft()
		reset.Step = models.StepAwaitName
		err := s.Sessions.UpdateIfStep(ctx, session.Phone, models.StepAwaitConfirm, &reset)
		if errors.Is(err, sessionRepo.ErrStaleStep) {
			return nil
		}
		if err != nil {
			s.send(ctx, session.Phone, msgTryLater)
			return err
		}
		s.send(ctx, session.Phone, msgRestart)
		s.scheduleNudge(ctx, session.Phone, models.StepAwaitName)
		return nil
	default:
		s.send(ctx, session.Phone, msgRepromptConfirm)
		return nil
	}
}

// finalize normalizes the draft and, only on success, claims the session,
// inserts the canonical Provider record and deletes the session. A failed
// normalization leaves the session untouched; a duplicate confirm finds the
// claim already taken and backs off. No partial Provider is ever created.
func (s *DefaultOnboardingService) finalize(ctx context.Context, session *models.Session) error {
	logger := utils.GetLogger()

	draft := models.Draft{
		Name:         session.Name,
		DistrictText: session.Districts,
		ServiceText:  session.Services,
	}
	cleaned, err := s.Normalizer.Normalize(ctx, draft)
	if err != nil {
		logger.Error("draft normalization failed", zap.String("phone", session.Phone), zap.Error(err))
		s.send(ctx, session.Phone, msgNormalizerRetry)
		return nil
	}

	if len(cleaned.Categories) == 0 || len(cleaned.Districts) == 0 {
		uErr := &DraftUnusableError{Districts: len(cleaned.Districts), Categories: len(cleaned.Categories)}
		logger.Warn("normalized draft unusable", zap.String("phone", session.Phone), zap.Error(uErr))
		s.send(ctx, session.Phone, msgDraftUnusable)
		return nil
	}

	claimed, err := s.Sessions.ClaimFinalize(ctx, session.Phone)
	if errors.Is(err, sessionRepo.ErrStaleStep) {
		logger.Debug("duplicate finalize ignored", zap.String("phone", session.Phone))
		return nil
	}
	if err != nil {
		s.send(ctx, session.Phone, msgTryLater)
		return err
	}

	provider := &models.Provider{
		ID:         uuid.NewString(),
		FirstName:  cleaned.FirstName,
		LastName:   cleaned.LastName,
		Phone:      claimed.Phone,
		Districts:  cleaned.Districts,
		Categories: cleaned.Categories,
		Rating:     models.DefaultProviderRating,
		Available:  false,
	}
	if err := s.Providers.Create(ctx, provider); err != nil {
		if rerr := s.Sessions.ReleaseFinalize(ctx, session.Phone); rerr != nil {
			logger.Error("failed to release finalize claim", zap.String("phone", session.Phone), zap.Error(rerr))
		}
		s.send(ctx, session.Phone, msgTryLater)
		return err
	}

	if err := s.Sessions.Delete(ctx, session.Phone); err != nil {
		// Provider exists; the leftover claim marker is cleaned up on the
		// next inbound turn.
		logger.Error("failed to delete finalized session", zap.String("phone", session.Phone), zap.Error(err))
	}

	logger.Info("provider finalized",
		zap.String("providerId", provider.ID),
		zap.Strings("districts", provider.Districts),
		zap.Strings("categories", provider.Categories))
	s.send(ctx, session.Phone, welcomeSummary(cleaned))
	return nil
}

// recoverFinalize handles a session stuck at the claim marker after a crash
// between claim and cleanup. If the Provider got written the session just
// goes away; otherwise the claim is released so the user can confirm again.
func (s *DefaultOnboardingService) recoverFinalize(ctx context.Context, session *models.Session) error {
	_, err := s.Providers.GetByPhone(ctx, session.Phone)
	if err == nil {
		if derr := s.Sessions.Delete(ctx, session.Phone); derr != nil {
			return derr
		}
		return nil
	}
	if !errors.Is(err, providerRepo.ErrNotFound) {
		s.send(ctx, session.Phone, msgTryLater)
		return err
	}
	if rerr := s.Sessions.ReleaseFinalize(ctx, session.Phone); rerr != nil {
		s.send(ctx, session.Phone, msgTryLater)
		return rerr
	}
	s.send(ctx, session.Phone, msgRepromptConfirm)
	return nil
}

func (s *DefaultOnboardingService) send(ctx context.Context, phone, body string) {
	if err := s.Gateway.SendText(ctx, phone, body); err != nil {
		utils.GetLogger().Error("failed to send reply", zap.String("phone", phone), zap.Error(err))
	}
}

func (s *DefaultOnboardingService) scheduleNudge(ctx context.Context, phone string, step models.Step) {
	if s.Reminders == nil {
		return
	}
	if err := s.Reminders.ScheduleNudge(ctx, phone, step); err != nil {
		utils.GetLogger().Warn("failed to schedule nudge", zap.String("phone", phone), zap.Error(err))
	}
}
