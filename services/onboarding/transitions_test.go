package onboarding

import (
	"testing"

	"github.com/dietic/aliado-bot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitionTableCoversEveryCollectingStep(t *testing.T) {
	table := newTransitionTable()
	for step := models.StepAwaitName; step < models.StepAwaitConfirm; step++ {
		_, ok := table[step]
		assert.True(t, ok, "missing transition for %s", step)
	}
}

func TestTransitionTableStepsAreSequential(t *testing.T) {
	table := newTransitionTable()
	for step, tr := range table {
		assert.Equal(t, step+1, tr.next, "state %s must advance exactly one step", step)
	}
}

func TestValidName(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  bool
	}{
		{"full name", "Juan Carlos Pérez", true},
		{"three runes exactly", "Ana", true},
		{"accented short name", "Aré", true},
		{"two runes", "Jo", false},
		{"blank", "   ", false},
		{"digit embedded", "Juan4", false},
		{"phone number", "999888777", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, validName(tc.input))
		})
	}
}

func TestValidFreeTextLength(t *testing.T) {
	atLeastThree := validFreeText(3)
	assert.True(t, atLeastThree("Lima"))
	assert.True(t, atLeastThree("  Ate  "), "surrounding whitespace does not count")
	assert.False(t, atLeastThree("no"))
	assert.False(t, atLeastThree("    "))
}

func TestExperienceSummaryPromptContainsDraft(t *testing.T) {
	table := newTransitionTable()
	tr, ok := table[models.StepAwaitExperience]
	require.True(t, ok)

	s := &models.Session{
		Name:       "Juan Pérez",
		Districts:  "Miraflores",
		Services:   "plomería",
		Experience: "10 años",
	}
	prompt := tr.nextPrompt(s)
	assert.Contains(t, prompt, "Juan Pérez")
	assert.Contains(t, prompt, "Miraflores")
	assert.Contains(t, prompt, "plomería")
	assert.Contains(t, prompt, "10 años")
	assert.Contains(t, prompt, "*confirmar*")
	assert.Contains(t, prompt, "*corregir*")
}
