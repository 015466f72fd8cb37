package handlers

import (
	"crypto/subtle"
	"io"
	"net/http"

	"bidquotes/internal/models"
	"bidquotes/internal/services"
	"bidquotes/internal/utils"
	"bidquotes/pkg/logger"

	"github.com/gin-gonic/gin"
)

// WebhookHandler receives the two inbound webhook streams: payment events
// from Stripe and user lifecycle events from the identity provider. Both
// endpoints are unauthenticated routes verified by their own signatures.
type WebhookHandler struct {
	paymentService services.PaymentService
	userService    services.UserService
	identitySecret string
	logger         *logger.Logger
}

func NewWebhookHandler(
	paymentService services.PaymentService,
	userService services.UserService,
	identitySecret string,
	logger *logger.Logger,
) *WebhookHandler {
	return &WebhookHandler{
		paymentService: paymentService,
		userService:    userService,
		identitySecret: identitySecret,
		logger:         logger,
	}
}

// HandleStripeWebhook verifies and processes a payment event. Signature
// verification happens inside the payment service against the raw body.
func (h *WebhookHandler) HandleStripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		utils.BadRequestResponse(c, "Failed to read request body")
		return
	}

	signature := c.GetHeader("Stripe-Signature")
	if signature == "" {
		utils.BadRequestResponse(c, "Missing Stripe-Signature header")
		return
	}

	response, err := h.paymentService.HandleWebhookEvent(c.Request.Context(), payload, signature)
	if err != nil {
		if utils.IsValidationError(err) {
			utils.BadRequestResponse(c, err.Error())
			return
		}
		// Non-2xx makes Stripe redeliver; transient failures get retried.
		h.logger.WithError(err).Error("Webhook processing failed")
		utils.InternalServerErrorResponse(c)
		return
	}

	utils.SuccessResponse(c, response.Message, response)
}

// HandleIdentityWebhook processes a user lifecycle event from the identity
// provider, authenticated by a shared secret.
func (h *WebhookHandler) HandleIdentityWebhook(c *gin.Context) {
	secret := c.GetHeader("X-Webhook-Secret")
	if h.identitySecret == "" || subtle.ConstantTimeCompare([]byte(secret), []byte(h.identitySecret)) != 1 {
		utils.ErrorResponse(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid webhook secret")
		return
	}

	var event models.IdentityWebhookEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		utils.BadRequestResponse(c, "Invalid event payload: "+err.Error())
		return
	}

	if err := h.userService.HandleIdentityEvent(c.Request.Context(), &event); err != nil {
		if utils.IsValidationError(err) {
			utils.BadRequestResponse(c, err.Error())
			return
		}
		h.logger.WithError(err).WithField("event_type", event.Type).Error("Identity event processing failed")
		utils.InternalServerErrorResponse(c)
		return
	}

	utils.SuccessResponse(c, "Event processed", nil)
}
