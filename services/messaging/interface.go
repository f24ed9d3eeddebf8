package messaging

import "context"

// Gateway delivers outbound WhatsApp text. The channel is at-least-once and
// offers no cancellation; the gateway only promises a bounded send attempt.
type Gateway interface {
	// SendText delivers one plain-text message (lightweight bold/italic
	// markup allowed). Implementations split bodies that exceed the
	// channel's length cap.
	SendText(ctx context.Context, to, body string) error
	// SendTemplate delivers a pre-approved content template, used for the
	// quick-reply welcome message.
	SendTemplate(ctx context.Context, to, contentSID string) error
}
