package services

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
)

// TransactionRunner runs a function inside one multi-document transaction.
// Satisfied by database.MongoDB in production and by a pass-through fake in
// tests.
type TransactionRunner interface {
	WithTransaction(ctx context.Context, fn func(sessCtx mongo.SessionContext) (interface{}, error)) (interface{}, error)
}
