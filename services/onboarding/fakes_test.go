package onboarding

import (
	"context"
	"sort"
	"strings"
	"sync"

	providerRepo "github.com/dietic/aliado-bot/database/repository/provider"
	sessionRepo "github.com/dietic/aliado-bot/database/repository/session"
	"github.com/dietic/aliado-bot/models"
)

// memSessionRepo is an in-memory SessionRepository with the same
// conditional-write semantics as the Mongo implementation.
type memSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*models.Session
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: make(map[string]*models.Session)}
}

func (r *memSessionRepo) GetByPhone(_ context.Context, phone string) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[phone]
	if !ok {
		return nil, sessionRepo.ErrNotFound
	}
	copy := *s
	return &copy, nil
}

func (r *memSessionRepo) Create(_ context.Context, session *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copy := *session
	r.sessions[session.Phone] = &copy
	return nil
}

func (r *memSessionRepo) UpdateIfStep(_ context.Context, phone string, fromStep models.Step, update *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[phone]
	if !ok || s.Step != fromStep {
		return sessionRepo.ErrStaleStep
	}
	copy := *update
	copy.Phone = phone
	r.sessions[phone] = &copy
	return nil
}

func (r *memSessionRepo) ClaimFinalize(_ context.Context, phone string) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[phone]
	if !ok || s.Step != models.StepAwaitConfirm {
		return nil, sessionRepo.ErrStaleStep
	}
	claimed := *s
	s.Step = models.StepFinalized
	return &claimed, nil
}

func (r *memSessionRepo) ReleaseFinalize(_ context.Context, phone string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[phone]; ok && s.Step == models.StepFinalized {
		s.Step = models.StepAwaitConfirm
	}
	return nil
}

func (r *memSessionRepo) Delete(_ context.Context, phone string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, phone)
	return nil
}

// memProviderRepo is an in-memory ProviderRepository.
type memProviderRepo struct {
	mu        sync.Mutex
	providers []*models.Provider
}

func (r *memProviderRepo) GetByID(_ context.Context, id string) (*models.Provider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.providers {
		if p.ID == id {
			copy := *p
			return &copy, nil
		}
	}
	return nil, providerRepo.ErrNotFound
}

func (r *memProviderRepo) GetByPhone(_ context.Context, phone string) (*models.Provider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.providers {
		if p.Phone == phone {
			copy := *p
			return &copy, nil
		}
	}
	return nil, providerRepo.ErrNotFound
}

func (r *memProviderRepo) Create(_ context.Context, provider *models.Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copy := *provider
	r.providers = append(r.providers, &copy)
	return nil
}

func (r *memProviderRepo) FindMatching(_ context.Context, filter providerRepo.MatchFilter) ([]models.Provider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []models.Provider
	for _, p := range r.providers {
		if p.HasCategory(filter.Category) && p.ServesAnyDistrict(filter.Districts) {
			matched = append(matched, *p)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Rating != matched[j].Rating {
			return matched[i].Rating > matched[j].Rating
		}
		return matched[i].ID < matched[j].ID
	})
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

func (r *memProviderRepo) SetAvailability(_ context.Context, phone string, available bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.providers {
		if p.Phone == phone {
			p.Available = available
			return nil
		}
	}
	return providerRepo.ErrNotFound
}

func (r *memProviderRepo) UpdateRating(_ context.Context, id string, rating float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.providers {
		if p.ID == id {
			p.Rating = rating
			return nil
		}
	}
	return providerRepo.ErrNotFound
}

func (r *memProviderRepo) IncrementHandoffs(_ context.Context, ids []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.providers {
		for _, id := range ids {
			if p.ID == id {
				p.HandoffCount++
			}
		}
	}
	return nil
}

// scriptedOracle answers from fixed canonical sets the way the real oracle's
// contract promises: typos corrected, unknown input dropped, nothing
// invented.
type scriptedOracle struct {
	categories map[string]string // freeform token -> canonical slug
	districts  map[string]string
	err        error
}

func newScriptedOracle() *scriptedOracle {
	return &scriptedOracle{
		categories: map[string]string{
			"plomeria":     "plomeria",
			"plomería":     "plomeria",
			"gasfitero":    "plomeria",
			"electricidad": "electricidad",
			"limpieza":     "limpieza",
		},
		districts: map[string]string{
			"miraflores": "miraflores",
			"mirflores":  "miraflores",
			"surco":      "santiago-de-surco",
			"surquillo":  "surquillo",
		},
	}
}

func (o *scriptedOracle) Classify(_ context.Context, text string) (*models.ClassificationResult, error) {
	if o.err != nil {
		return nil, o.err
	}
	result := &models.ClassificationResult{}
	for token, slug := range o.categories {
		if strings.Contains(strings.ToLower(text), token) {
			result.Category = slug
			break
		}
	}
	for token, slug := range o.districts {
		if strings.Contains(strings.ToLower(text), token) {
			result.Districts = append(result.Districts, slug)
			break
		}
	}
	return result, nil
}

func (o *scriptedOracle) CleanDraft(_ context.Context, draft models.Draft) (*models.CorrectedDraft, error) {
	if o.err != nil {
		return nil, o.err
	}
	corrected := &models.CorrectedDraft{
		Name:       strings.TrimSpace(draft.Name),
		Districts:  []string{},
		Categories: []string{},
	}
	seenDistricts := map[string]bool{}
	for _, token := range splitTokens(draft.DistrictText) {
		if slug, ok := o.districts[token]; ok && !seenDistricts[slug] {
			seenDistricts[slug] = true
			corrected.Districts = append(corrected.Districts, slug)
		}
	}
	seenCategories := map[string]bool{}
	for _, token := range splitTokens(draft.ServiceText) {
		if slug, ok := o.categories[token]; ok && !seenCategories[slug] {
			seenCategories[slug] = true
			corrected.Categories = append(corrected.Categories, slug)
		}
	}
	return corrected, nil
}

func splitTokens(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return r == ',' || r == ' '
	})
	var tokens []string
	for _, f := range fields {
		if f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// recordingGateway captures outbound messages instead of delivering them.
type recordingGateway struct {
	mu        sync.Mutex
	messages  []string
	templates []string
}

func (g *recordingGateway) SendText(_ context.Context, to, body string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.messages = append(g.messages, body)
	return nil
}

func (g *recordingGateway) SendTemplate(_ context.Context, to, contentSID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.templates = append(g.templates, contentSID)
	return nil
}

func (g *recordingGateway) last() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.messages) == 0 {
		return ""
	}
	return g.messages[len(g.messages)-1]
}

func (g *recordingGateway) count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.messages)
}
