package middleware

import (
	"net/http"

	"github.com/dietic/aliado-bot/config"
	"github.com/dietic/aliado-bot/utils"

	"github.com/gin-gonic/gin"
	twilioClient "github.com/twilio/twilio-go/client"
	"go.uber.org/zap"
)

// TwilioSignatureMiddleware rejects webhook calls whose X-Twilio-Signature
// does not match the public URL plus the posted params. Validation can be
// switched off for local runs via VERIFY_TWILIO_REQUEST.
func TwilioSignatureMiddleware() gin.HandlerFunc {
	validator := twilioClient.NewRequestValidator(config.AppConfig.TwilioAuthToken)

	return func(c *gin.Context) {
		if !config.AppConfig.VerifyTwilioRequest {
			c.Next()
			return
		}

		signature := c.GetHeader("X-Twilio-Signature")
		if signature == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Missing Twilio signature"})
			return
		}

		if err := c.Request.ParseForm(); err != nil {
			utils.JSONError(c, http.StatusBadRequest, "Invalid form payload", err.Error())
			c.Abort()
			return
		}
		params := make(map[string]string, len(c.Request.PostForm))
		for key, values := range c.Request.PostForm {
			if len(values) > 0 {
				params[key] = values[0]
			}
		}

		// Twilio signs the full public URL it called, not what the proxy
		// hands us.
		fullURL := config.AppConfig.PublicWebhookBase + c.Request.URL.RequestURI()
		if !validator.Validate(fullURL, params, signature) {
			utils.GetLogger().Warn("Twilio signature mismatch", zap.String("url", fullURL))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Invalid Twilio signature"})
			return
		}

		c.Next()
	}
}
