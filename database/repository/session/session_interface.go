package sessionRepo

import (
	"context"
	"errors"

	"github.com/dietic/aliado-bot/models"
)

// ErrNotFound is returned when no session exists for the phone.
var ErrNotFound = errors.New("session not found")

// ErrStaleStep is returned when a conditional write finds the persisted step
// already moved past the step read at the start of the turn. Redelivered or
// out-of-order turns land here and must be treated as no-ops.
var ErrStaleStep = errors.New("session step changed since read")

// SessionRepository defines methods for onboarding session data access.
// Every mutation is conditional on the step the caller read, so duplicate
// delivery of the same inbound message can never apply two transitions.
type SessionRepository interface {
	// GetByPhone retrieves the session for a phone, or ErrNotFound.
	GetByPhone(ctx context.Context, phone string) (*models.Session, error)
	// Create inserts a fresh session at the given step.
	Create(ctx context.Context, session *models.Session) error
	// UpdateIfStep applies the update only while the persisted step still
	// equals fromStep; otherwise ErrStaleStep.
	UpdateIfStep(ctx context.Context, phone string, fromStep models.Step, update *models.Session) error
	// ClaimFinalize atomically moves the session from AWAIT_CONFIRM to the
	// finalized claim marker and returns the claimed draft. A second
	// delivery of the same confirm turn gets ErrStaleStep.
	ClaimFinalize(ctx context.Context, phone string) (*models.Session, error)
	// ReleaseFinalize undoes a claim after a downstream failure, restoring
	// the step so the user can retry.
	ReleaseFinalize(ctx context.Context, phone string) error
	// Delete removes the session for a phone.
	Delete(ctx context.Context, phone string) error
}
