package routing

import (
	"context"
	"fmt"

	providerRepo "github.com/dietic/aliado-bot/database/repository/provider"
	referenceRepo "github.com/dietic/aliado-bot/database/repository/reference"
	"github.com/dietic/aliado-bot/models"
	"github.com/dietic/aliado-bot/utils"

	"go.uber.org/zap"
)

// MaxMatches caps every match result.
const MaxMatches = 3

// MatchResult is the matching engine's answer for one request.
type MatchResult struct {
	Providers []models.ProviderSummary
	// MatchedIDs carries the underlying provider ids for the handoff
	// counters.
	MatchedIDs []string
	// Expanded is set when the one-hop adjacency fallback produced the
	// result.
	Expanded bool
	// OfferBroaden is set when even the expanded query found nothing; the
	// caller should offer a user-confirmed broader search rather than
	// expanding further on its own.
	OfferBroaden bool
}

// MatchingService finds providers for a canonical category in one or more
// districts, falling back to the primary district's adjacency set when the
// direct query comes up empty. The engine never expands beyond one hop.
type MatchingService interface {
	MatchProviders(ctx context.Context, category string, districts []string) (*MatchResult, error)
}

// DefaultMatchingService implements MatchingService.
type DefaultMatchingService struct {
	ProviderRepo providerRepo.ProviderRepository
	Ref          referenceRepo.ReferenceRepository
}

func (s *DefaultMatchingService) MatchProviders(ctx context.Context, category string, districts []string) (*MatchResult, error) {
	logger := utils.GetLogger()

	if !s.Ref.HasCategory(category) {
		// LookupError: an unknown slug means zero matches, not a failure.
		logger.Warn("match requested for unknown category", zap.String("category", category))
		return &MatchResult{OfferBroaden: len(districts) > 0}, nil
	}
	districts = s.knownDistricts(districts)

	direct, err := s.query(ctx, category, districts)
	if err != nil {
		return nil, err
	}
	if len(direct) > 0 {
		return resultFrom(direct, false), nil
	}
	if len(districts) == 0 {
		// "Any district" already searched everything there is.
		return &MatchResult{}, nil
	}

	// One adjacency hop around the primary district.
	primary := districts[0]
	expandedSet := append([]string{primary}, s.Ref.Neighbors(primary)...)
	expanded, err := s.query(ctx, category, expandedSet)
	if err != nil {
		return nil, err
	}
	if len(expanded) > 0 {
		logger.Debug("matches found after adjacency expansion",
			zap.String("category", category), zap.String("primary", primary))
		return resultFrom(expanded, true), nil
	}

	return &MatchResult{Expanded: true, OfferBroaden: true}, nil
}

func (s *DefaultMatchingService) query(ctx context.Context, category string, districts []string) ([]models.Provider, error) {
	providers, err := s.ProviderRepo.FindMatching(ctx, providerRepo.MatchFilter{
		Category:  category,
		Districts: districts,
		Limit:     MaxMatches,
	})
	if err != nil {
		return nil, fmt.Errorf("provider match query failed: %w", err)
	}
	return providers, nil
}

// knownDistricts drops slugs missing from the reference set, logging each
// one. Order is preserved; the primary district stays first.
func (s *DefaultMatchingService) knownDistricts(districts []string) []string {
	kept := make([]string, 0, len(districts))
	for _, d := range districts {
		if s.Ref.HasDistrict(d) {
			kept = append(kept, d)
			continue
		}
		utils.GetLogger().Warn("dropping unknown district from match filter", zap.String("district", d))
	}
	return kept
}

func resultFrom(providers []models.Provider, expanded bool) *MatchResult {
	result := &MatchResult{Expanded: expanded}
	for _, p := range providers {
		result.Providers = append(result.Providers, p.Summary())
		result.MatchedIDs = append(result.MatchedIDs, p.ID)
	}
	return result
}
