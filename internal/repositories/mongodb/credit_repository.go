package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bidquotes/internal/models"
	"bidquotes/internal/repositories/interfaces"
	"bidquotes/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type creditRepository struct {
	collection *mongo.Collection
}

func NewCreditRepository(db *mongo.Database) interfaces.CreditRepository {
	return &creditRepository{
		collection: db.Collection("credit_transactions"),
	}
}

func (r *creditRepository) Append(ctx context.Context, transaction *models.CreditTransaction) error {
	transaction.ID = primitive.NewObjectID()
	transaction.CreatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, transaction)
	if err != nil {
		return fmt.Errorf("failed to append credit transaction: %w", err)
	}
	return nil
}

// GetLatestByContractor returns the newest ledger row, whose
// credits_balance_after is the contractor's current balance. Returns nil when
// the contractor has no ledger yet (balance zero).
func (r *creditRepository) GetLatestByContractor(ctx context.Context, contractorID primitive.ObjectID) (*models.CreditTransaction, error) {
	opts := options.FindOne().SetSort(bson.D{
		{Key: "created_at", Value: -1},
		{Key: "_id", Value: -1},
	})

	var transaction models.CreditTransaction
	err := r.collection.FindOne(ctx, bson.M{"contractor_id": contractorID}, opts).Decode(&transaction)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest credit transaction: %w", err)
	}
	return &transaction, nil
}

// GetByPaymentTransaction returns the grant row produced by a payment, if
// any. Webhook redelivery uses this to tell whether a recorded purchase was
// actually credited.
func (r *creditRepository) GetByPaymentTransaction(ctx context.Context, paymentTransactionID primitive.ObjectID) (*models.CreditTransaction, error) {
	var transaction models.CreditTransaction
	err := r.collection.FindOne(ctx, bson.M{"payment_transaction_id": paymentTransactionID}).Decode(&transaction)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get credit transaction by payment: %w", err)
	}
	return &transaction, nil
}

func (r *creditRepository) GetByContractor(ctx context.Context, contractorID primitive.ObjectID, params *utils.PaginationParams) ([]*models.CreditTransaction, int64, error) {
	filter := bson.M{"contractor_id": contractorID}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count credit transactions: %w", err)
	}

	cursor, err := r.collection.Find(ctx, filter, params.GetFindOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find credit transactions: %w", err)
	}
	defer cursor.Close(ctx)

	var transactions []*models.CreditTransaction
	if err := cursor.All(ctx, &transactions); err != nil {
		return nil, 0, fmt.Errorf("failed to decode credit transactions: %w", err)
	}

	return transactions, total, nil
}
