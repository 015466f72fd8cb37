package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bidquotes/internal/models"
	"bidquotes/internal/repositories/interfaces"
	"bidquotes/internal/services"
	"bidquotes/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type paymentRepository struct {
	collection *mongo.Collection
	cache      services.CacheService
}

func NewPaymentRepository(db *mongo.Database, cache services.CacheService) interfaces.PaymentRepository {
	return &paymentRepository{
		collection: db.Collection("payment_transactions"),
		cache:      cache,
	}
}

func (r *paymentRepository) Create(ctx context.Context, transaction *models.PaymentTransaction) error {
	transaction.ID = primitive.NewObjectID()
	transaction.CreatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, transaction)
	if err != nil {
		return fmt.Errorf("failed to create payment transaction: %w", err)
	}
	return nil
}

func (r *paymentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.PaymentTransaction, error) {
	var transaction models.PaymentTransaction
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&transaction)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get payment transaction: %w", err)
	}
	return &transaction, nil
}

// GetBySessionID is the webhook idempotence check: a session id that already
// has a row means the event was processed before. Succeeded rows are cached
// since Stripe redelivers events aggressively.
func (r *paymentRepository) GetBySessionID(ctx context.Context, sessionID string) (*models.PaymentTransaction, error) {
	cacheKey := fmt.Sprintf("payment_session_%s", sessionID)
	if r.cache != nil {
		var transaction models.PaymentTransaction
		if err := r.cache.Get(ctx, cacheKey, &transaction); err == nil {
			return &transaction, nil
		}
	}

	var transaction models.PaymentTransaction
	err := r.collection.FindOne(ctx, bson.M{"stripe_session_id": sessionID}).Decode(&transaction)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get payment transaction by session id: %w", err)
	}

	if r.cache != nil && transaction.Status == models.PaymentStatusSucceeded {
		r.cache.Set(ctx, cacheKey, &transaction, 24*time.Hour)
	}

	return &transaction, nil
}

func (r *paymentRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.PaymentStatus) error {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status}},
	)
	if err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("payment transaction not found")
	}
	return nil
}

func (r *paymentRepository) HasSucceededBidPayment(ctx context.Context, bidID primitive.ObjectID) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{
		"bid_id":    bidID,
		"item_type": models.PaymentItemBid,
		"status":    models.PaymentStatusSucceeded,
	})
	if err != nil {
		return false, fmt.Errorf("failed to check bid payment: %w", err)
	}
	return count > 0, nil
}

func (r *paymentRepository) GetByContractorID(ctx context.Context, contractorID primitive.ObjectID, params *utils.PaginationParams) ([]*models.PaymentTransaction, int64, error) {
	filter := bson.M{"contractor_id": contractorID}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count payment transactions: %w", err)
	}

	cursor, err := r.collection.Find(ctx, filter, params.GetFindOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find payment transactions: %w", err)
	}
	defer cursor.Close(ctx)

	var transactions []*models.PaymentTransaction
	if err := cursor.All(ctx, &transactions); err != nil {
		return nil, 0, fmt.Errorf("failed to decode payment transactions: %w", err)
	}

	return transactions, total, nil
}
