package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserType string

const (
	UserTypeBuyer      UserType = "buyer"
	UserTypeContractor UserType = "contractor"
	UserTypeAdmin      UserType = "admin"
)

// User maps an external identity-provider subject to an internal account.
// Rows are maintained by the identity webhook (user.created/updated/deleted);
// the application never creates users directly.
type User struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ExternalAuthID string             `json:"external_auth_id" bson:"external_auth_id" validate:"required"`
	Email          string             `json:"email" bson:"email" validate:"required,email"`
	UserType       UserType           `json:"user_type" bson:"user_type" validate:"required"`
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at" bson:"updated_at"`
}

// IdentityWebhookEvent is the payload delivered by the identity provider on
// user lifecycle events.
type IdentityWebhookEvent struct {
	Type string            `json:"type"`
	Data IdentityEventData `json:"data"`
}

type IdentityEventData struct {
	ID        string            `json:"id"`
	Email     string            `json:"email"`
	UserType  string            `json:"user_type"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Timestamp int64             `json:"timestamp"`
}
