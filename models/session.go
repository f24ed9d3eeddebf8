package models

import "time"

// Step is the ordinal position of an onboarding session in the dialog.
type Step int

const (
	StepNew Step = iota
	StepAwaitName
	StepAwaitDistricts
	StepAwaitServices
	StepAwaitExperience
	StepAwaitConfirm
	// StepFinalized is a transient claim marker: a session only carries it
	// between the finalize claim and its deletion, so duplicate deliveries
	// of the confirm turn find the step already moved and back off.
	StepFinalized
)

func (s Step) String() string {
	switch s {
	case StepNew:
		return "new"
	case StepAwaitName:
		return "await_name"
	case StepAwaitDistricts:
		return "await_districts"
	case StepAwaitServices:
		return "await_services"
	case StepAwaitExperience:
		return "await_experience"
	case StepAwaitConfirm:
		return "await_confirm"
	case StepFinalized:
		return "finalized"
	}
	return "unknown"
}

// Session is the per-phone persisted draft and step marker for the
// registration dialog. One session per phone at most; created on first
// contact, deleted on successful finalize.
type Session struct {
	Phone      string    `bson:"phone" json:"phone"`
	Step       Step      `bson:"step" json:"step"`
	Name       string    `bson:"name,omitempty" json:"name,omitempty"`
	Districts  string    `bson:"districts,omitempty" json:"districts,omitempty"`
	Services   string    `bson:"services,omitempty" json:"services,omitempty"`
	Experience string    `bson:"experience,omitempty" json:"experience,omitempty"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time `bson:"updatedAt" json:"updatedAt"`
}

// ClearDraft wipes every collected field while keeping the phone key.
func (s *Session) ClearDraft() {
	s.Name = ""
	s.Districts = ""
	s.Services = ""
	s.Experience = ""
}
