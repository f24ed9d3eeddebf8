package onboarding

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/dietic/aliado-bot/models"
)

// transition describes one non-terminal dialog state: the predicate the
// inbound text must pass, what to answer when it fails, where an accepted
// value lands in the draft, and the next state's prompt.
type transition struct {
	validate   func(text string) bool
	reprompt   string
	apply      func(s *models.Session, text string)
	next       models.Step
	nextPrompt func(s *models.Session) string
}

// newTransitionTable builds the dialog's finite-state table. Construction
// panics if any collecting state is left unhandled, so a new step can never
// silently fall through to the default branch.
func newTransitionTable() map[models.Step]transition {
	table := map[models.Step]transition{
		models.StepAwaitName: {
			validate:   validName,
			reprompt:   msgRepromptName,
			apply:      func(s *models.Session, text string) { s.Name = text },
			next:       models.StepAwaitDistricts,
			nextPrompt: func(*models.Session) string { return msgAskDistricts },
		},
		models.StepAwaitDistricts: {
			validate:   validFreeText(3),
			reprompt:   msgRepromptDistricts,
			apply:      func(s *models.Session, text string) { s.Districts = text },
			next:       models.StepAwaitServices,
			nextPrompt: func(*models.Session) string { return msgAskServices },
		},
		models.StepAwaitServices: {
			validate:   validFreeText(3),
			reprompt:   msgRepromptServices,
			apply:      func(s *models.Session, text string) { s.Services = text },
			next:       models.StepAwaitExperience,
			nextPrompt: func(*models.Session) string { return msgAskExperience },
		},
		models.StepAwaitExperience: {
			validate:   validFreeText(5),
			reprompt:   msgRepromptExperience,
			apply:      func(s *models.Session, text string) { s.Experience = text },
			next:       models.StepAwaitConfirm,
			nextPrompt: summaryPrompt,
		},
	}

	// AWAIT_CONFIRM is dispatched on its two tokens rather than a predicate
	// and is handled apart; every other collecting state must be here.
	for step := models.StepAwaitName; step < models.StepAwaitConfirm; step++ {
		if _, ok := table[step]; !ok {
			panic(fmt.Sprintf("onboarding: no transition defined for step %s", step))
		}
	}
	return table
}

// validName rejects names shorter than 3 runes or containing a digit.
func validName(text string) bool {
	text = strings.TrimSpace(text)
	if len([]rune(text)) < 3 {
		return false
	}
	for _, r := range text {
		if unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func validFreeText(minLen int) func(string) bool {
	return func(text string) bool {
		return len([]rune(strings.TrimSpace(text))) >= minLen
	}
}
