package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BuyerProfile holds the contact info revealed to a contractor once their bid
// is confirmed.
type BuyerProfile struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID       primitive.ObjectID `json:"user_id" bson:"user_id" validate:"required"`
	ContactEmail string             `json:"contact_email" bson:"contact_email" validate:"required,email"`
	PhoneNumber  string             `json:"phone_number" bson:"phone_number"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at" bson:"updated_at"`
}

// ContractorProfile holds contractor business details. The email doubles as
// the Stripe receipt address.
type ContractorProfile struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID         primitive.ObjectID `json:"user_id" bson:"user_id" validate:"required"`
	ContractorName string             `json:"contractor_name" bson:"contractor_name" validate:"required"`
	Email          string             `json:"email" bson:"email" validate:"required,email"`
	Phone          string             `json:"phone" bson:"phone"`
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at" bson:"updated_at"`
}

type ContactInfoAction string

const (
	ContactInfoActionCreate ContactInfoAction = "create"
	ContactInfoActionUpdate ContactInfoAction = "update"
)

// ContactInfoRequest is a tagged create-or-update body. The action field
// discriminates the two shapes; handlers resolve it before any service call.
type ContactInfoRequest struct {
	Action       ContactInfoAction `json:"action" validate:"required,oneof=create update"`
	ContactEmail string            `json:"contact_email" validate:"omitempty,email"`
	PhoneNumber  string            `json:"phone_number"`
	Name         string            `json:"name"`
}

type ContactInfoResponse struct {
	ContactEmail string `json:"contact_email"`
	PhoneNumber  string `json:"phone_number"`
	Name         string `json:"name,omitempty"`
}
