package interfaces

import (
	"context"

	"bidquotes/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BuyerProfileRepository interface {
	Create(ctx context.Context, profile *models.BuyerProfile) error
	GetByUserID(ctx context.Context, userID primitive.ObjectID) (*models.BuyerProfile, error)
	Update(ctx context.Context, userID primitive.ObjectID, updates map[string]interface{}) error
	Delete(ctx context.Context, userID primitive.ObjectID) error
}

type ContractorProfileRepository interface {
	Create(ctx context.Context, profile *models.ContractorProfile) error
	GetByUserID(ctx context.Context, userID primitive.ObjectID) (*models.ContractorProfile, error)
	Update(ctx context.Context, userID primitive.ObjectID, updates map[string]interface{}) error
	Delete(ctx context.Context, userID primitive.ObjectID) error
}
