package interfaces

import (
	"context"

	"bidquotes/internal/models"
	"bidquotes/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type JobRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, job *models.Job) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Job, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error
	Delete(ctx context.Context, id primitive.ObjectID) error

	// Listings
	GetByBuyerID(ctx context.Context, buyerID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Job, int64, error)
	GetBiddableJobs(ctx context.Context, params *utils.PaginationParams) ([]*models.Job, int64, error)

	// Status transitions
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.JobStatus) error
	IncrementSelectionCount(ctx context.Context, id primitive.ObjectID, delta int) error

	// Images
	AddImage(ctx context.Context, image *models.JobImage) error
	GetImagesByJobID(ctx context.Context, jobID primitive.ObjectID) ([]*models.JobImage, error)
	DeleteImage(ctx context.Context, imageID primitive.ObjectID) error
	DeleteImagesByJobID(ctx context.Context, jobID primitive.ObjectID) error
}
