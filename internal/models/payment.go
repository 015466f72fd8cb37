package models

import (
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"bidquotes/internal/utils"
)

type PaymentItemType string

const (
	PaymentItemBid    PaymentItemType = "bid_payment"
	PaymentItemCredit PaymentItemType = "credit_purchase"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusSucceeded PaymentStatus = "succeeded"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// PaymentTransaction records one checkout attempt with the payment processor.
// Amounts are stored in minor currency units; StripeSessionID is unique so
// webhook redelivery cannot record the same checkout twice.
type PaymentTransaction struct {
	ID                    primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	ContractorID          primitive.ObjectID  `json:"contractor_id" bson:"contractor_id" validate:"required"`
	StripeSessionID       string              `json:"stripe_session_id" bson:"stripe_session_id" validate:"required"`
	StripePaymentIntentID string              `json:"stripe_payment_intent_id,omitempty" bson:"stripe_payment_intent_id,omitempty"`
	ItemType              PaymentItemType     `json:"item_type" bson:"item_type" validate:"required"`
	AmountCents           int64               `json:"amount_cents" bson:"amount_cents"`
	Currency              string              `json:"currency" bson:"currency"`
	Status                PaymentStatus       `json:"status" bson:"status"`
	CreditsPurchased      int                 `json:"credits_purchased" bson:"credits_purchased"`
	JobID                 *primitive.ObjectID `json:"job_id,omitempty" bson:"job_id,omitempty"`
	BidID                 *primitive.ObjectID `json:"bid_id,omitempty" bson:"bid_id,omitempty"`
	CreatedAt             time.Time           `json:"created_at" bson:"created_at"`
}

// Amount returns the exact decimal dollar value of the transaction.
func (p *PaymentTransaction) Amount() decimal.Decimal {
	return utils.CentsToDecimal(p.AmountCents)
}

type DraftBidPaymentRequest struct {
	DraftBidID string `json:"draft_bid_id" validate:"required"`
}

type CheckoutSessionResponse struct {
	SessionID  string `json:"session_id"`
	SessionURL string `json:"session_url"`
}

type WebhookEventResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	EventType string `json:"event_type"`
	Processed bool   `json:"processed"`
}
