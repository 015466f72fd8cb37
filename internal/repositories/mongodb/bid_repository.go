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
)

type bidRepository struct {
	collection *mongo.Collection
}

func NewBidRepository(db *mongo.Database) interfaces.BidRepository {
	return &bidRepository{
		collection: db.Collection("bids"),
	}
}

// Basic CRUD operations

func (r *bidRepository) Create(ctx context.Context, bid *models.Bid) error {
	bid.ID = primitive.NewObjectID()
	bid.CreatedAt = time.Now()
	bid.UpdatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, bid)
	if err != nil {
		return fmt.Errorf("failed to create bid: %w", err)
	}
	return nil
}

func (r *bidRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Bid, error) {
	var bid models.Bid
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&bid)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get bid: %w", err)
	}
	return &bid, nil
}

func (r *bidRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": updates})
	if err != nil {
		return fmt.Errorf("failed to update bid: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("bid not found")
	}
	return nil
}

func (r *bidRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete bid: %w", err)
	}
	return nil
}

// Job association

// GetVisibleByJobID returns the bids a buyer sees on their job: everything
// except contractor drafts.
func (r *bidRepository) GetVisibleByJobID(ctx context.Context, jobID primitive.ObjectID) ([]*models.Bid, error) {
	filter := bson.M{
		"job_id": jobID,
		"status": bson.M{"$ne": models.BidStatusDraft},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find bids: %w", err)
	}
	defer cursor.Close(ctx)

	var bids []*models.Bid
	if err := cursor.All(ctx, &bids); err != nil {
		return nil, fmt.Errorf("failed to decode bids: %w", err)
	}
	return bids, nil
}

func (r *bidRepository) GetByJobAndContractor(ctx context.Context, jobID, contractorID primitive.ObjectID) (*models.Bid, error) {
	var bid models.Bid
	err := r.collection.FindOne(ctx, bson.M{
		"job_id":        jobID,
		"contractor_id": contractorID,
	}).Decode(&bid)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get bid for job and contractor: %w", err)
	}
	return &bid, nil
}

func (r *bidRepository) GetSelectedByJobID(ctx context.Context, jobID primitive.ObjectID) (*models.Bid, error) {
	var bid models.Bid
	err := r.collection.FindOne(ctx, bson.M{
		"job_id":      jobID,
		"is_selected": true,
	}).Decode(&bid)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get selected bid: %w", err)
	}
	return &bid, nil
}

// CountActiveForJob counts the bids occupying slots on the job. Drafts and
// declined bids do not hold a slot.
func (r *bidRepository) CountActiveForJob(ctx context.Context, jobID primitive.ObjectID) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{
		"job_id": jobID,
		"status": bson.M{"$nin": []models.BidStatus{
			models.BidStatusDraft,
			models.BidStatusDeclined,
		}},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count bids: %w", err)
	}
	return count, nil
}

// Contractor listings

func (r *bidRepository) GetByContractorID(ctx context.Context, contractorID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Bid, int64, error) {
	filter := bson.M{"contractor_id": contractorID}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count bids: %w", err)
	}

	cursor, err := r.collection.Find(ctx, filter, params.GetFindOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find bids: %w", err)
	}
	defer cursor.Close(ctx)

	var bids []*models.Bid
	if err := cursor.All(ctx, &bids); err != nil {
		return nil, 0, fmt.Errorf("failed to decode bids: %w", err)
	}

	return bids, total, nil
}

// Selection

func (r *bidRepository) SetSelected(ctx context.Context, id primitive.ObjectID, selected bool) error {
	status := models.BidStatusPending
	if selected {
		status = models.BidStatusSelected
	}

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"is_selected": selected,
			"status":      status,
			"updated_at":  time.Now(),
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to set bid selection: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("bid not found")
	}
	return nil
}

// DeclineOthersForJob declines every competing bid on the job once one is
// confirmed. Drafts never surfaced to the buyer, so they are left alone.
func (r *bidRepository) DeclineOthersForJob(ctx context.Context, jobID, exceptBidID primitive.ObjectID) error {
	_, err := r.collection.UpdateMany(
		ctx,
		bson.M{
			"job_id": jobID,
			"_id":    bson.M{"$ne": exceptBidID},
			"status": bson.M{"$nin": []models.BidStatus{
				models.BidStatusDraft,
				models.BidStatusDeclined,
			}},
		},
		bson.M{"$set": bson.M{
			"status":      models.BidStatusDeclined,
			"is_selected": false,
			"updated_at":  time.Now(),
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to decline competing bids: %w", err)
	}
	return nil
}

// ClearSelectionForJob deselects whichever bid holds the job's selection.
// Selected bids drop back to pending; a single selected bid per job is the
// invariant this maintains together with SetSelected.
func (r *bidRepository) ClearSelectionForJob(ctx context.Context, jobID primitive.ObjectID) error {
	_, err := r.collection.UpdateMany(
		ctx,
		bson.M{"job_id": jobID, "is_selected": true},
		bson.M{"$set": bson.M{
			"is_selected": false,
			"status":      models.BidStatusPending,
			"updated_at":  time.Now(),
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to clear bid selection: %w", err)
	}
	return nil
}
