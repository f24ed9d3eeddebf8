package onboarding

import (
	"context"
	"strings"

	"github.com/dietic/aliado-bot/models"
	"github.com/dietic/aliado-bot/services/intelligence"
)

// Normalizer turns a freeform draft into corrected canonical values. The
// oracle does the text correction; the normalizer owns the name split and
// the output shape. An empty district or category array is a normalizer
// success — the caller decides whether that blocks finalize.
type Normalizer struct {
	Oracle intelligence.Oracle
}

func (n *Normalizer) Normalize(ctx context.Context, draft models.Draft) (*models.CleanedDraft, error) {
	corrected, err := n.Oracle.CleanDraft(ctx, draft)
	if err != nil {
		return nil, err
	}

	first, last := splitName(corrected.Name)
	return &models.CleanedDraft{
		FirstName:  first,
		LastName:   last,
		Districts:  corrected.Districts,
		Categories: corrected.Categories,
	}, nil
}

// splitName takes the last whitespace-delimited token as the last name and
// everything before it as the first name. Best effort, not grammatically
// validated.
func splitName(full string) (first, last string) {
	tokens := strings.Fields(full)
	if len(tokens) == 0 {
		return "", ""
	}
	return strings.Join(tokens[:len(tokens)-1], " "), tokens[len(tokens)-1]
}
