package interfaces

import (
	"context"

	"bidquotes/internal/models"
	"bidquotes/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PaymentRepository interface {
	Create(ctx context.Context, transaction *models.PaymentTransaction) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.PaymentTransaction, error)
	GetBySessionID(ctx context.Context, sessionID string) (*models.PaymentTransaction, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.PaymentStatus) error

	// HasSucceededBidPayment reports whether a succeeded bid_payment row
	// exists for the bid.
	HasSucceededBidPayment(ctx context.Context, bidID primitive.ObjectID) (bool, error)

	GetByContractorID(ctx context.Context, contractorID primitive.ObjectID, params *utils.PaginationParams) ([]*models.PaymentTransaction, int64, error)
}
