package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CreditTransactionType string

const (
	CreditTransactionPurchase CreditTransactionType = "purchase"
	CreditTransactionUsage    CreditTransactionType = "usage"
	CreditTransactionRefund   CreditTransactionType = "refund"
)

// CreditTransaction is one row of the append-only credit ledger. The most
// recent row's CreditsBalanceAfter is the contractor's current balance; the
// balance is never recomputed by summing the whole ledger.
type CreditTransaction struct {
	ID                   primitive.ObjectID    `json:"id" bson:"_id,omitempty"`
	ContractorID         primitive.ObjectID    `json:"contractor_id" bson:"contractor_id" validate:"required"`
	TransactionType      CreditTransactionType `json:"transaction_type" bson:"transaction_type" validate:"required"`
	CreditsChange        int                   `json:"credits_change" bson:"credits_change"`
	CreditsBalanceAfter  int                   `json:"credits_balance_after" bson:"credits_balance_after"`
	BidID                *primitive.ObjectID   `json:"bid_id,omitempty" bson:"bid_id,omitempty"`
	PaymentTransactionID *primitive.ObjectID   `json:"payment_transaction_id,omitempty" bson:"payment_transaction_id,omitempty"`
	Description          string                `json:"description" bson:"description"`
	CreatedAt            time.Time             `json:"created_at" bson:"created_at"`
}

type CreditBalanceResponse struct {
	Credits int `json:"credits"`
}

type CreditCompensationRequest struct {
	ContractorID string `json:"contractor_id" validate:"required"`
	Description  string `json:"description"`
}

type AddCreditResponse struct {
	ContractorID primitive.ObjectID `json:"contractor_id"`
	CreditsAdded int                `json:"credits_added"`
	NewBalance   int                `json:"new_balance"`
}
