package interfaces

import (
	"context"

	"bidquotes/internal/models"
	"bidquotes/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CreditRepository persists the append-only credit ledger. There is no update
// or delete: balances move only by appending rows.
type CreditRepository interface {
	Append(ctx context.Context, transaction *models.CreditTransaction) error
	GetLatestByContractor(ctx context.Context, contractorID primitive.ObjectID) (*models.CreditTransaction, error)
	GetByPaymentTransaction(ctx context.Context, paymentTransactionID primitive.ObjectID) (*models.CreditTransaction, error)
	GetByContractor(ctx context.Context, contractorID primitive.ObjectID, params *utils.PaginationParams) ([]*models.CreditTransaction, int64, error)
}
