package payment

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

type StripeProvider struct {
	client        *client.API
	webhookSecret string
}

func NewStripeProvider(secretKey, webhookSecret string) *StripeProvider {
	sc := &client.API{}
	sc.Init(secretKey, nil)

	return &StripeProvider{
		client:        sc,
		webhookSecret: webhookSecret,
	}
}

func (s *StripeProvider) CreateCheckoutSession(ctx context.Context, request *CheckoutSessionRequest) (*CheckoutSessionResponse, error) {
	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(request.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(request.ProductName),
					},
					UnitAmount: stripe.Int64(request.AmountCents),
				},
				Quantity: stripe.Int64(1),
			},
		},
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(request.SuccessURL),
		CancelURL:  stripe.String(request.CancelURL),
	}

	if request.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(request.CustomerEmail)
	}

	for key, value := range request.Metadata {
		params.AddMetadata(key, value)
	}

	sess, err := s.client.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	return convertSession(sess), nil
}

func (s *StripeProvider) GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSessionResponse, error) {
	sess, err := s.client.CheckoutSessions.Get(sessionID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve checkout session: %w", err)
	}

	return convertSession(sess), nil
}

// FindSessionByPaymentIntent resolves the checkout session that produced a
// payment intent. Used by the payment-failure webhook path, which only
// carries the intent id.
func (s *StripeProvider) FindSessionByPaymentIntent(ctx context.Context, paymentIntentID string) (*CheckoutSessionResponse, error) {
	params := &stripe.CheckoutSessionListParams{
		PaymentIntent: stripe.String(paymentIntentID),
	}
	params.Limit = stripe.Int64(1)

	iter := s.client.CheckoutSessions.List(params)
	for iter.Next() {
		return convertSession(iter.CheckoutSession()), nil
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to list checkout sessions: %w", err)
	}

	return nil, nil
}

func (s *StripeProvider) ValidateWebhook(ctx context.Context, payload []byte, signature string) (*WebhookEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, s.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to verify webhook signature: %w", err)
	}

	data := make(map[string]interface{})
	if err := json.Unmarshal(event.Data.Raw, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event data: %w", err)
	}

	return &WebhookEvent{
		EventID:   event.ID,
		EventType: string(event.Type),
		Data:      data,
		CreatedAt: event.Created,
	}, nil
}

func convertSession(sess *stripe.CheckoutSession) *CheckoutSessionResponse {
	response := &CheckoutSessionResponse{
		SessionID:  sess.ID,
		SessionURL: sess.URL,
		Metadata:   sess.Metadata,
	}

	if sess.PaymentIntent != nil {
		response.PaymentIntentID = sess.PaymentIntent.ID
	}

	return response
}
