package onboarding

import "fmt"

// ValidationError means the inbound text failed the current step's
// predicate. Non-fatal: the dialog re-prompts and the step does not move.
type ValidationError struct {
	Step     string
	Reprompt string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("input rejected at %s", e.Step)
}

// DraftUnusableError means the normalizer succeeded but produced an empty
// category or district set, so no Provider can be created from the draft.
type DraftUnusableError struct {
	Districts  int
	Categories int
}

func (e *DraftUnusableError) Error() string {
	return fmt.Sprintf("normalized draft unusable: %d districts, %d categories", e.Districts, e.Categories)
}
