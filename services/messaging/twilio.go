package messaging

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dietic/aliado-bot/utils"

	"github.com/twilio/twilio-go"
	api "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"
)

// maxMessageLen is the WhatsApp body cap; longer replies are split at line
// boundaries.
const maxMessageLen = 1600

// TwilioGateway implements Gateway over the Twilio WhatsApp API.
type TwilioGateway struct {
	client *twilio.RestClient
	from   string
}

// NewTwilioGateway builds a gateway from injected credentials; nothing is
// hardcoded here.
func NewTwilioGateway(accountSID, authToken, from string) *TwilioGateway {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	client.SetTimeout(10 * time.Second)
	return &TwilioGateway{client: client, from: from}
}

func (g *TwilioGateway) SendText(ctx context.Context, to, body string) error {
	for _, chunk := range SplitBody(body, maxMessageLen) {
		if err := ctx.Err(); err != nil {
			return err
		}
		params := &api.CreateMessageParams{}
		params.SetFrom(g.from)
		params.SetTo(to)
		params.SetBody(chunk)
		if _, err := g.client.Api.CreateMessage(params); err != nil {
			return fmt.Errorf("failed to send WhatsApp message to %s: %w", to, err)
		}
	}
	utils.GetLogger().Debug("WhatsApp message sent", zap.String("to", to))
	return nil
}

func (g *TwilioGateway) SendTemplate(ctx context.Context, to, contentSID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	params := &api.CreateMessageParams{}
	params.SetFrom(g.from)
	params.SetTo(to)
	params.SetContentSid(contentSID)
	if _, err := g.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("failed to send WhatsApp template to %s: %w", to, err)
	}
	return nil
}

// SplitBody chunks a message body at newline boundaries so no chunk exceeds
// the channel cap. A single line longer than the cap is split hard.
func SplitBody(body string, limit int) []string {
	if len(body) <= limit {
		return []string{body}
	}

	var chunks []string
	var current strings.Builder
	for _, line := range strings.Split(body, "\n") {
		for len(line) > limit {
			flush(&chunks, &current)
			chunks = append(chunks, line[:limit])
			line = line[limit:]
		}
		if current.Len() > 0 && current.Len()+1+len(line) > limit {
			flush(&chunks, &current)
		}
		if current.Len() > 0 {
			current.WriteByte('\n')
		}
		current.WriteString(line)
	}
	flush(&chunks, &current)
	return chunks
}

func flush(chunks *[]string, current *strings.Builder) {
	if current.Len() > 0 {
		*chunks = append(*chunks, current.String())
		current.Reset()
	}
}
