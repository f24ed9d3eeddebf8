package handlers

import (
	"net/http"

	"github.com/dietic/aliado-bot/models"
	"github.com/dietic/aliado-bot/services/routing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RoutingHandler receives the requester webhook: one freeform message in,
// a provider list (or fallback) out via the gateway.
type RoutingHandler struct {
	service routing.RoutingService
}

func NewRoutingHandler(service routing.RoutingService) *RoutingHandler {
	return &RoutingHandler{service: service}
}

// HandleInbound processes one requester turn. Twilio expects a 2xx quickly;
// the reply itself goes out through the messaging gateway, so failures
// surface to the user as a fallback message, never as a webhook error body.
func (h *RoutingHandler) HandleInbound(c *gin.Context) {
	logger := getLogger(c)

	var msg models.InboundMessage
	if err := c.ShouldBind(&msg); err != nil || msg.Phone == "" {
		logger.Warn("inbound request without sender", zap.Error(err))
		c.String(http.StatusOK, "ignored")
		return
	}

	if err := h.service.HandleRequest(c.Request.Context(), msg.Phone, msg.Text); err != nil {
		// Already answered with a fallback; log the internals only.
		logger.Error("requester turn failed", zap.Error(err))
	}
	c.String(http.StatusOK, "delivered")
}
