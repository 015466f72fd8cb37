package payment

import (
	"context"
)

// CheckoutProvider abstracts the hosted-checkout side of the payment
// processor: session creation, webhook signature verification, and the
// session lookups the failure-reconciliation path needs.
type CheckoutProvider interface {
	CreateCheckoutSession(ctx context.Context, request *CheckoutSessionRequest) (*CheckoutSessionResponse, error)
	GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSessionResponse, error)
	FindSessionByPaymentIntent(ctx context.Context, paymentIntentID string) (*CheckoutSessionResponse, error)
	ValidateWebhook(ctx context.Context, payload []byte, signature string) (*WebhookEvent, error)
}

type CheckoutSessionRequest struct {
	ProductName   string            `json:"product_name"`
	AmountCents   int64             `json:"amount_cents"`
	Currency      string            `json:"currency"`
	SuccessURL    string            `json:"success_url"`
	CancelURL     string            `json:"cancel_url"`
	CustomerEmail string            `json:"customer_email,omitempty"`
	Metadata      map[string]string `json:"metadata"`
}

type CheckoutSessionResponse struct {
	SessionID       string            `json:"session_id"`
	SessionURL      string            `json:"session_url"`
	PaymentIntentID string            `json:"payment_intent_id,omitempty"`
	Metadata        map[string]string `json:"metadata"`
}

type WebhookEvent struct {
	EventID   string                 `json:"event_id"`
	EventType string                 `json:"event_type"`
	Data      map[string]interface{} `json:"data"`
	CreatedAt int64                  `json:"created_at"`
}
