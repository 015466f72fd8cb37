package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type JobType string

const (
	JobTypePlumbing       JobType = "Plumbing"
	JobTypePainting       JobType = "Painting"
	JobTypeLandscaping    JobType = "Landscaping"
	JobTypeRoofing        JobType = "Roofing"
	JobTypeIndoor         JobType = "Indoor"
	JobTypeBackyard       JobType = "Backyard"
	JobTypeFencingDecking JobType = "Fencing & Decking"
	JobTypeDesign         JobType = "Design"
)

type JobStatus string

// Job status state machine:
//
//	draft -> open -> full_bid | waiting_confirmation | closed
//	full_bid -> waiting_confirmation | open
//	waiting_confirmation -> confirmed | open | full_bid
//
// full_bid and closed are distinct terminal-ish states: full_bid means the bid
// cap was reached, closed means the buyer explicitly closed the job. Both stop
// new bids but only full_bid still allows bid selection.
const (
	JobStatusDraft               JobStatus = "draft"
	JobStatusOpen                JobStatus = "open"
	JobStatusFullBid             JobStatus = "full_bid"
	JobStatusWaitingConfirmation JobStatus = "waiting_confirmation"
	JobStatusConfirmed           JobStatus = "confirmed"
	JobStatusClosed              JobStatus = "closed"
)

// BuyerEditable reports whether the buyer may still edit or delete the job.
func (s JobStatus) BuyerEditable() bool {
	return s == JobStatusDraft || s == JobStatusOpen || s == JobStatusFullBid
}

// AcceptsSelection reports whether the buyer may select a bid in this status.
func (s JobStatus) AcceptsSelection() bool {
	return s == JobStatusOpen || s == JobStatusFullBid
}

type Job struct {
	ID                primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	BuyerID           primitive.ObjectID `json:"buyer_id" bson:"buyer_id" validate:"required"`
	Title             string             `json:"title" bson:"title"`
	JobType           JobType            `json:"job_type" bson:"job_type"`
	JobBudget         string             `json:"job_budget" bson:"job_budget"`
	Description       string             `json:"description" bson:"description"`
	LocationAddress   string             `json:"location_address" bson:"location_address"`
	City              string             `json:"city" bson:"city"`
	OtherRequirements string             `json:"other_requirements,omitempty" bson:"other_requirements,omitempty"`
	Status            JobStatus          `json:"status" bson:"status"`
	SelectionCount    int                `json:"selection_count" bson:"selection_count"`
	MaxSelections     int                `json:"max_selections" bson:"max_selections"`
	CreatedAt         time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at" bson:"updated_at"`
}

type JobImage struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	JobID       primitive.ObjectID `json:"job_id" bson:"job_id" validate:"required"`
	ImageURL    string             `json:"image_url" bson:"image_url"`
	StoragePath string             `json:"storage_path" bson:"storage_path"`
	ImageOrder  int                `json:"image_order" bson:"image_order"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
}

// Requests

type JobCreateRequest struct {
	Title             string  `json:"title" validate:"required,max=120"`
	JobType           JobType `json:"job_type" validate:"required"`
	JobBudget         string  `json:"job_budget" validate:"required"`
	Description       string  `json:"description" validate:"required,max=5000"`
	LocationAddress   string  `json:"location_address" validate:"required"`
	City              string  `json:"city" validate:"required"`
	OtherRequirements string  `json:"other_requirements"`
}

type JobUpdateRequest struct {
	Title             *string  `json:"title" validate:"omitempty,max=120"`
	JobType           *JobType `json:"job_type"`
	JobBudget         *string  `json:"job_budget"`
	Description       *string  `json:"description" validate:"omitempty,max=5000"`
	LocationAddress   *string  `json:"location_address"`
	City              *string  `json:"city"`
	OtherRequirements *string  `json:"other_requirements"`
}

// JobDraftCreateRequest allows every descriptive field to be omitted; only a
// draft saved this way can be posted later.
type JobDraftCreateRequest struct {
	Title             string  `json:"title"`
	JobType           JobType `json:"job_type"`
	JobBudget         string  `json:"job_budget"`
	Description       string  `json:"description"`
	LocationAddress   string  `json:"location_address"`
	City              string  `json:"city"`
	OtherRequirements string  `json:"other_requirements"`
}

// Responses

type JobCardResponse struct {
	ID             primitive.ObjectID `json:"id"`
	Title          string             `json:"title"`
	JobType        JobType            `json:"job_type"`
	Status         JobStatus          `json:"status"`
	BidCount       int                `json:"bid_count"`
	ThumbnailImage string             `json:"thumbnail_image,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
}

type JobDetailResponse struct {
	Job      `json:",inline"`
	Images   []*JobImage     `json:"images"`
	BidCount int             `json:"bid_count"`
	Bids     []*BuyerBidCard `json:"bids,omitempty"`
}
