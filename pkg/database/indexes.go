package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the application depends on. The unique
// indexes are load-bearing: one bid per contractor per job, one payment row
// per checkout session, one internal user per external subject.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		"users": {
			{
				Keys:    bson.D{{Key: "external_auth_id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{
				Keys: bson.D{{Key: "email", Value: 1}},
			},
		},
		"buyer_profiles": {
			{
				Keys:    bson.D{{Key: "user_id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		"contractor_profiles": {
			{
				Keys:    bson.D{{Key: "user_id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		"jobs": {
			{
				Keys: bson.D{{Key: "buyer_id", Value: 1}, {Key: "created_at", Value: -1}},
			},
			{
				Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
			},
		},
		"job_images": {
			{
				Keys: bson.D{{Key: "job_id", Value: 1}, {Key: "image_order", Value: 1}},
			},
		},
		"bids": {
			{
				Keys:    bson.D{{Key: "job_id", Value: 1}, {Key: "contractor_id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{
				Keys: bson.D{{Key: "contractor_id", Value: 1}, {Key: "created_at", Value: -1}},
			},
			{
				Keys: bson.D{{Key: "job_id", Value: 1}, {Key: "status", Value: 1}},
			},
		},
		"credit_transactions": {
			{
				Keys: bson.D{{Key: "contractor_id", Value: 1}, {Key: "created_at", Value: -1}},
			},
			{
				Keys:    bson.D{{Key: "payment_transaction_id", Value: 1}},
				Options: options.Index().SetSparse(true),
			},
		},
		"payment_transactions": {
			{
				Keys:    bson.D{{Key: "stripe_session_id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{
				Keys: bson.D{{Key: "bid_id", Value: 1}, {Key: "status", Value: 1}},
			},
			{
				Keys: bson.D{{Key: "contractor_id", Value: 1}, {Key: "created_at", Value: -1}},
			},
		},
	}

	for collection, models := range indexes {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes for %s: %w", collection, err)
		}
	}

	return nil
}
