package handlers

import "github.com/gin-gonic/gin"

// HandlerBundle aggregates the webhook handlers for route registration.
type HandlerBundle struct {
	RoutingInbound    gin.HandlerFunc
	OnboardingInbound gin.HandlerFunc
}
