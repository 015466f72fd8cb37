package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bidquotes/internal/models"
	"bidquotes/internal/repositories/interfaces"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type buyerProfileRepository struct {
	collection *mongo.Collection
}

func NewBuyerProfileRepository(db *mongo.Database) interfaces.BuyerProfileRepository {
	return &buyerProfileRepository{
		collection: db.Collection("buyer_profiles"),
	}
}

func (r *buyerProfileRepository) Create(ctx context.Context, profile *models.BuyerProfile) error {
	profile.ID = primitive.NewObjectID()
	profile.CreatedAt = time.Now()
	profile.UpdatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, profile)
	if err != nil {
		return fmt.Errorf("failed to create buyer profile: %w", err)
	}
	return nil
}

func (r *buyerProfileRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*models.BuyerProfile, error) {
	var profile models.BuyerProfile
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&profile)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get buyer profile: %w", err)
	}
	return &profile, nil
}

func (r *buyerProfileRepository) Update(ctx context.Context, userID primitive.ObjectID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	result, err := r.collection.UpdateOne(ctx, bson.M{"user_id": userID}, bson.M{"$set": updates})
	if err != nil {
		return fmt.Errorf("failed to update buyer profile: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("buyer profile not found")
	}
	return nil
}

func (r *buyerProfileRepository) Delete(ctx context.Context, userID primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"user_id": userID})
	if err != nil {
		return fmt.Errorf("failed to delete buyer profile: %w", err)
	}
	return nil
}

type contractorProfileRepository struct {
	collection *mongo.Collection
}

func NewContractorProfileRepository(db *mongo.Database) interfaces.ContractorProfileRepository {
	return &contractorProfileRepository{
		collection: db.Collection("contractor_profiles"),
	}
}

func (r *contractorProfileRepository) Create(ctx context.Context, profile *models.ContractorProfile) error {
	profile.ID = primitive.NewObjectID()
	profile.CreatedAt = time.Now()
	profile.UpdatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, profile)
	if err != nil {
		return fmt.Errorf("failed to create contractor profile: %w", err)
	}
	return nil
}

func (r *contractorProfileRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*models.ContractorProfile, error) {
	var profile models.ContractorProfile
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&profile)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get contractor profile: %w", err)
	}
	return &profile, nil
}

func (r *contractorProfileRepository) Update(ctx context.Context, userID primitive.ObjectID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	result, err := r.collection.UpdateOne(ctx, bson.M{"user_id": userID}, bson.M{"$set": updates})
	if err != nil {
		return fmt.Errorf("failed to update contractor profile: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("contractor profile not found")
	}
	return nil
}

func (r *contractorProfileRepository) Delete(ctx context.Context, userID primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"user_id": userID})
	if err != nil {
		return fmt.Errorf("failed to delete contractor profile: %w", err)
	}
	return nil
}
