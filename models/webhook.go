package models

// InboundMessage is one WhatsApp turn as delivered by the messaging channel:
// the sender's phone identifier plus either free text or a quick-reply token.
// Subject to at-least-once redelivery.
type InboundMessage struct {
	Phone         string `form:"From" json:"phone"`
	Text          string `form:"Body" json:"text"`
	ButtonPayload string `form:"ButtonPayload" json:"buttonPayload,omitempty"`
}

// ReminderPayload is queued when an onboarding session stalls mid-dialog.
type ReminderPayload struct {
	Phone string `json:"phone"`
	Step  Step   `json:"step"`
}
