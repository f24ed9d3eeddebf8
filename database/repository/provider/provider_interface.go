package providerRepo

import (
	"context"
	"errors"

	"github.com/dietic/aliado-bot/models"
)

// ErrNotFound is returned when no provider matches the lookup key.
var ErrNotFound = errors.New("provider not found")

// MatchFilter selects providers by category membership and district
// intersection. An empty Districts slice means "any district".
type MatchFilter struct {
	Category  string
	Districts []string
	Limit     int
}

// ProviderRepository defines methods for provider data access.
type ProviderRepository interface {
	// GetByID retrieves a provider by its unique ID.
	GetByID(ctx context.Context, id string) (*models.Provider, error)
	// GetByPhone retrieves a provider by its phone identifier.
	GetByPhone(ctx context.Context, phone string) (*models.Provider, error)
	// Create inserts a new provider record.
	Create(ctx context.Context, provider *models.Provider) error
	// FindMatching returns providers whose category set contains the
	// requested category and whose district set intersects the filter,
	// capped at Limit, ordered by rating descending then id ascending.
	FindMatching(ctx context.Context, filter MatchFilter) ([]models.Provider, error)
	// SetAvailability flips the availability flag for an existing provider.
	SetAvailability(ctx context.Context, phone string, available bool) error
	// UpdateRating replaces the provider's rating.
	UpdateRating(ctx context.Context, id string, rating float64) error
	// IncrementHandoffs bumps the handoff counter after a requester match.
	IncrementHandoffs(ctx context.Context, ids []string) error
}
