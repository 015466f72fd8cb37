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

type jobRepository struct {
	collection *mongo.Collection
	images     *mongo.Collection
}

func NewJobRepository(db *mongo.Database) interfaces.JobRepository {
	return &jobRepository{
		collection: db.Collection("jobs"),
		images:     db.Collection("job_images"),
	}
}

// Basic CRUD operations

func (r *jobRepository) Create(ctx context.Context, job *models.Job) error {
	job.ID = primitive.NewObjectID()
	job.CreatedAt = time.Now()
	job.UpdatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, job)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

func (r *jobRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Job, error) {
	var job models.Job
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&job)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return &job, nil
}

func (r *jobRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": updates})
	if err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("job not found")
	}
	return nil
}

func (r *jobRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	return nil
}

// Listings

func (r *jobRepository) GetByBuyerID(ctx context.Context, buyerID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Job, int64, error) {
	filter := bson.M{"buyer_id": buyerID}
	return r.findJobs(ctx, filter, params)
}

// GetBiddableJobs lists jobs contractors can browse. Drafts, closed and
// finished jobs are excluded; full_bid jobs stay visible so contractors can
// see the market even when they cannot bid.
func (r *jobRepository) GetBiddableJobs(ctx context.Context, params *utils.PaginationParams) ([]*models.Job, int64, error) {
	filter := bson.M{"status": bson.M{"$in": []models.JobStatus{
		models.JobStatusOpen,
		models.JobStatusFullBid,
	}}}
	return r.findJobs(ctx, filter, params)
}

func (r *jobRepository) findJobs(ctx context.Context, filter bson.M, params *utils.PaginationParams) ([]*models.Job, int64, error) {
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count jobs: %w", err)
	}

	cursor, err := r.collection.Find(ctx, filter, params.GetFindOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find jobs: %w", err)
	}
	defer cursor.Close(ctx)

	var jobs []*models.Job
	if err := cursor.All(ctx, &jobs); err != nil {
		return nil, 0, fmt.Errorf("failed to decode jobs: %w", err)
	}

	return jobs, total, nil
}

// Status transitions

func (r *jobRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.JobStatus) error {
	return r.Update(ctx, id, map[string]interface{}{"status": status})
}

func (r *jobRepository) IncrementSelectionCount(ctx context.Context, id primitive.ObjectID, delta int) error {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{
			"$inc": bson.M{"selection_count": delta},
			"$set": bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to increment selection count: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("job not found")
	}
	return nil
}

// Images

func (r *jobRepository) AddImage(ctx context.Context, image *models.JobImage) error {
	image.ID = primitive.NewObjectID()
	image.CreatedAt = time.Now()

	_, err := r.images.InsertOne(ctx, image)
	if err != nil {
		return fmt.Errorf("failed to add job image: %w", err)
	}
	return nil
}

func (r *jobRepository) GetImagesByJobID(ctx context.Context, jobID primitive.ObjectID) ([]*models.JobImage, error) {
	opts := options.Find().SetSort(bson.D{{Key: "image_order", Value: 1}})
	cursor, err := r.images.Find(ctx, bson.M{"job_id": jobID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find job images: %w", err)
	}
	defer cursor.Close(ctx)

	var images []*models.JobImage
	if err := cursor.All(ctx, &images); err != nil {
		return nil, fmt.Errorf("failed to decode job images: %w", err)
	}
	return images, nil
}

func (r *jobRepository) DeleteImage(ctx context.Context, imageID primitive.ObjectID) error {
	_, err := r.images.DeleteOne(ctx, bson.M{"_id": imageID})
	if err != nil {
		return fmt.Errorf("failed to delete job image: %w", err)
	}
	return nil
}

func (r *jobRepository) DeleteImagesByJobID(ctx context.Context, jobID primitive.ObjectID) error {
	_, err := r.images.DeleteMany(ctx, bson.M{"job_id": jobID})
	if err != nil {
		return fmt.Errorf("failed to delete job images: %w", err)
	}
	return nil
}
