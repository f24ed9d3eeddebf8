// File: services/intelligence/interface.go
package intelligence

import (
	"context"
	"fmt"

	"github.com/dietic/aliado-bot/models"
)

// Oracle is the external text-understanding service behind a fixed contract.
// Both operations are bounded by a timeout with at most one retry; callers
// must treat any returned error as an OracleError and fall back to a
// user-visible retry message.
type Oracle interface {
	// Classify reads a requester's freeform message and returns the best
	// category slug (empty when none fits) plus the ordered district
	// candidate list: requested district first, then its neighbors.
	Classify(ctx context.Context, text string) (*models.ClassificationResult, error)

	// CleanDraft corrects a freeform registration draft: fixes typos in the
	// name and maps district/service text onto canonical slugs. Slugs come
	// only from the canonical sets; unmatched input is dropped, never
	// invented. Empty arrays are a success.
	CleanDraft(ctx context.Context, draft models.Draft) (*models.CorrectedDraft, error)
}

// OracleError wraps a failed or unparseable oracle call. The raw detail is
// for logs; users only ever see a localized retry message.
type OracleError struct {
	Op  string
	Err error
}

func (e *OracleError) Error() string {
	return fmt.Sprintf("oracle %s failed: %v", e.Op, e.Err)
}

func (e *OracleError) Unwrap() error { return e.Err }
