package routes

import (
	"net/http"

	"github.com/dietic/aliado-bot/handlers"
	"github.com/dietic/aliado-bot/middleware"
	"github.com/dietic/aliado-bot/utils"

	"github.com/gin-gonic/gin"
)

// RegisterWebhookRoutes registers the Twilio-facing endpoints. Both webhooks
// sit behind signature validation.
func RegisterWebhookRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api")
	{
		api.Use(middleware.TwilioSignatureMiddleware())
		api.POST("/webhook", hb.RoutingInbound)
		api.POST("/onboarding-webhook", hb.OnboardingInbound)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "services": utils.GetHealthStatus()})
	})
}

// RegisterRoutes wires every route group on the router.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	RegisterHealthRoute(r)
	RegisterWebhookRoutes(r, hb)
}
