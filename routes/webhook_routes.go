package routes

import (
	"bidquotes/internal/handlers"

	"github.com/gin-gonic/gin"
)

// SetupWebhookRoutes wires the inbound webhook endpoints. No auth middleware:
// each endpoint verifies its own signature.
func SetupWebhookRoutes(r *gin.RouterGroup, webhookHandler *handlers.WebhookHandler) {
	webhooks := r.Group("/webhooks")
	{
		webhooks.POST("/stripe", webhookHandler.HandleStripeWebhook)
		webhooks.POST("/identity", webhookHandler.HandleIdentityWebhook)
	}
}
