package routing

import (
	"context"
	"fmt"
	"strings"

	providerRepo "github.com/dietic/aliado-bot/database/repository/provider"
	"github.com/dietic/aliado-bot/services/intelligence"
	"github.com/dietic/aliado-bot/services/messaging"
	"github.com/dietic/aliado-bot/utils"

	"go.uber.org/zap"
)

const (
	msgNoCategory   = "Lo siento, no pude entender qué servicio necesitas."
	msgOracleRetry  = "Ocurrió un problema entendiendo tu pedido. Por favor inténtalo de nuevo."
	msgLookupFailed = "Hubo un problema buscando proveedores. Intenta de nuevo más tarde."
	msgMatchesFound = "Aquí tienes los proveedores disponibles:"
)

// RoutingService answers a requester's freeform message with up to three
// matching providers, replying through the messaging gateway.
type RoutingService interface {
	HandleRequest(ctx context.Context, phone, text string) error
}

// DefaultRoutingService implements RoutingService.
type DefaultRoutingService struct {
	Oracle       intelligence.Oracle
	Matcher      MatchingService
	ProviderRepo providerRepo.ProviderRepository
	Gateway      messaging.Gateway
}

func (s *DefaultRoutingService) HandleRequest(ctx context.Context, phone, text string) error {
	logger := utils.GetLogger()

	classification, err := s.Oracle.Classify(ctx, text)
	if err != nil {
		// Never propagate a raw oracle error to the user.
		logger.Error("classification failed", zap.String("phone", phone), zap.Error(err))
		s.send(ctx, phone, msgOracleRetry)
		return nil
	}

	if classification.Category == "" {
		// The oracle may supply its own clarification request.
		reply := classification.Message
		if reply == "" {
			reply = msgNoCategory
		}
		s.send(ctx, phone, reply)
		return nil
	}

	// The engine does its own adjacency expansion from the reference data;
	// only the requested district is passed through.
	var primary []string
	if len(classification.Districts) > 0 {
		primary = classification.Districts[:1]
	}

	result, err := s.Matcher.MatchProviders(ctx, classification.Category, primary)
	if err != nil {
		logger.Error("provider matching failed", zap.String("phone", phone), zap.Error(err))
		s.send(ctx, phone, msgLookupFailed)
		return err
	}

	s.send(ctx, phone, s.renderReply(classification.Category, primary, result))

	if len(result.MatchedIDs) > 0 {
		if err := s.ProviderRepo.IncrementHandoffs(ctx, result.MatchedIDs); err != nil {
			logger.Warn("failed to bump handoff counters", zap.Error(err))
		}
	}
	return nil
}

func (s *DefaultRoutingService) renderReply(category string, primary []string, result *MatchResult) string {
	if len(result.Providers) == 0 {
		reply := fmt.Sprintf("No encontré proveedores para *%s*", category)
		if len(primary) > 0 {
			reply += fmt.Sprintf(" en *%s* y alrededores", primary[0])
		}
		reply += "."
		if result.OfferBroaden {
			reply += " ¿Quieres que busque en más distritos? Respóndeme indicando otro distrito."
		}
		return reply
	}

	var lines []string
	lines = append(lines, msgMatchesFound)
	for i, p := range result.Providers {
		lines = append(lines, fmt.Sprintf("%d. %s %s — 📞 %s", i+1, p.FirstName, p.LastName, p.Phone))
	}
	return strings.Join(lines, "\n")
}

func (s *DefaultRoutingService) send(ctx context.Context, phone, body string) {
	if err := s.Gateway.SendText(ctx, phone, body); err != nil {
		utils.GetLogger().Error("failed to send reply", zap.String("phone", phone), zap.Error(err))
	}
}
