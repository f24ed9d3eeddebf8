package handlers

import (
	"net/http"

	"github.com/dietic/aliado-bot/models"
	"github.com/dietic/aliado-bot/services/onboarding"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// OnboardingHandler receives the provider onboarding webhook and feeds each
// turn to the conversation state machine.
type OnboardingHandler struct {
	service onboarding.OnboardingService
}

func NewOnboardingHandler(service onboarding.OnboardingService) *OnboardingHandler {
	return &OnboardingHandler{service: service}
}

func (h *OnboardingHandler) HandleInbound(c *gin.Context) {
	logger := getLogger(c)

	var msg models.InboundMessage
	if err := c.ShouldBind(&msg); err != nil || msg.Phone == "" {
		logger.Warn("inbound request without sender", zap.Error(err))
		c.String(http.StatusOK, "ignored")
		return
	}

	if err := h.service.HandleTurn(c.Request.Context(), msg); err != nil {
		logger.Error("onboarding turn failed", zap.String("phone", msg.Phone), zap.Error(err))
	}
	c.String(http.StatusOK, "delivered")
}
