package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BidStatus string

// Bid status state machine:
//
//	draft -> pending (after payment or credit) | deleted
//	pending -> selected | deleted
//	selected -> confirmed | declined
//
// confirmed and declined are terminal; a declined bid may still be deleted.
const (
	BidStatusDraft     BidStatus = "draft"
	BidStatusPending   BidStatus = "pending"
	BidStatusSelected  BidStatus = "selected"
	BidStatusConfirmed BidStatus = "confirmed"
	BidStatusDeclined  BidStatus = "declined"
)

// Editable reports whether the contractor may still modify the bid.
func (s BidStatus) Editable() bool {
	return s == BidStatusDraft || s == BidStatusPending
}

// Deletable reports whether the contractor may delete the bid.
func (s BidStatus) Deletable() bool {
	return s == BidStatusDraft || s == BidStatusPending || s == BidStatusDeclined
}

// CountsTowardCap reports whether the bid consumes one of the job's five
// slots. Drafts are invisible to the buyer and declined bids free their slot.
func (s BidStatus) CountsTowardCap() bool {
	return s != BidStatusDraft && s != BidStatusDeclined
}

type Bid struct {
	ID               primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	JobID            primitive.ObjectID `json:"job_id" bson:"job_id" validate:"required"`
	ContractorID     primitive.ObjectID `json:"contractor_id" bson:"contractor_id" validate:"required"`
	Title            string             `json:"title" bson:"title"`
	PriceMin         float64            `json:"price_min" bson:"price_min"`
	PriceMax         float64            `json:"price_max" bson:"price_max"`
	TimelineEstimate string             `json:"timeline_estimate" bson:"timeline_estimate"`
	WorkDescription  string             `json:"work_description" bson:"work_description"`
	AdditionalNotes  string             `json:"additional_notes,omitempty" bson:"additional_notes,omitempty"`
	Status           BidStatus          `json:"status" bson:"status"`
	IsSelected       bool               `json:"is_selected" bson:"is_selected"`
	CreatedAt        time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at" bson:"updated_at"`
}

// Requests. Prices arrive as formatted currency strings ("$1,500.00") and are
// parsed before validation.

type BidCreateRequest struct {
	JobID            string `json:"job_id" validate:"required"`
	Title            string `json:"title" validate:"required,max=120"`
	PriceMin         string `json:"price_min" validate:"required"`
	PriceMax         string `json:"price_max" validate:"required"`
	TimelineEstimate string `json:"timeline_estimate" validate:"required"`
	WorkDescription  string `json:"work_description" validate:"required,max=5000"`
	AdditionalNotes  string `json:"additional_notes"`
}

type BidDraftCreateRequest struct {
	JobID            string `json:"job_id" validate:"required"`
	Title            string `json:"title"`
	PriceMin         string `json:"price_min"`
	PriceMax         string `json:"price_max"`
	TimelineEstimate string `json:"timeline_estimate"`
	WorkDescription  string `json:"work_description"`
	AdditionalNotes  string `json:"additional_notes"`
}

type BidUpdateRequest struct {
	Title            *string `json:"title" validate:"omitempty,max=120"`
	PriceMin         *string `json:"price_min"`
	PriceMax         *string `json:"price_max"`
	TimelineEstimate *string `json:"timeline_estimate"`
	WorkDescription  *string `json:"work_description" validate:"omitempty,max=5000"`
	AdditionalNotes  *string `json:"additional_notes"`
}

// Responses

// BidSubmissionResponse tells the contractor whether the bid went live or was
// parked as a draft awaiting payment.
type BidSubmissionResponse struct {
	Bid             *Bid `json:"bid"`
	PaymentRequired bool `json:"payment_required"`
}

type BidCardResponse struct {
	ID        primitive.ObjectID `json:"id"`
	JobID     primitive.ObjectID `json:"job_id"`
	Title     string             `json:"title"`
	Status    BidStatus          `json:"status"`
	JobTitle  string             `json:"job_title"`
	JobType   JobType            `json:"job_type"`
	JobCity   string             `json:"job_city"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// BidDetailResponse includes job context and, only once the bid is confirmed,
// the buyer's contact info.
type BidDetailResponse struct {
	Bid               `json:",inline"`
	JobTitle          string  `json:"job_title"`
	JobType           JobType `json:"job_type"`
	JobBudget         string  `json:"job_budget"`
	JobCity           string  `json:"job_city"`
	BuyerContactEmail string  `json:"buyer_contact_email,omitempty"`
	BuyerContactPhone string  `json:"buyer_contact_phone,omitempty"`
}

// BuyerBidCard is the buyer-facing view of a bid: no contractor contact info.
type BuyerBidCard struct {
	ID               primitive.ObjectID `json:"id"`
	ContractorID     primitive.ObjectID `json:"contractor_id"`
	Title            string             `json:"title"`
	PriceMin         float64            `json:"price_min"`
	PriceMax         float64            `json:"price_max"`
	TimelineEstimate string             `json:"timeline_estimate"`
	Status           BidStatus          `json:"status"`
	IsSelected       bool               `json:"is_selected"`
	CreatedAt        time.Time          `json:"created_at"`
}
