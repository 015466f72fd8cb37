package interfaces

import (
	"context"

	"bidquotes/internal/models"
	"bidquotes/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BidRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, bid *models.Bid) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Bid, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error
	Delete(ctx context.Context, id primitive.ObjectID) error

	// Job association
	GetVisibleByJobID(ctx context.Context, jobID primitive.ObjectID) ([]*models.Bid, error)
	GetByJobAndContractor(ctx context.Context, jobID, contractorID primitive.ObjectID) (*models.Bid, error)
	GetSelectedByJobID(ctx context.Context, jobID primitive.ObjectID) (*models.Bid, error)
	CountActiveForJob(ctx context.Context, jobID primitive.ObjectID) (int64, error)

	// Contractor listings
	GetByContractorID(ctx context.Context, contractorID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Bid, int64, error)

	// Selection. Callers compose these inside a session so unselect and
	// select commit atomically.
	SetSelected(ctx context.Context, id primitive.ObjectID, selected bool) error
	ClearSelectionForJob(ctx context.Context, jobID primitive.ObjectID) error
	DeclineOthersForJob(ctx context.Context, jobID, exceptBidID primitive.ObjectID) error
}
