package services

import (
	"context"

	"bidquotes/internal/models"
	"bidquotes/internal/repositories/interfaces"
	"bidquotes/internal/utils"
	"bidquotes/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// BidService drives the contractor side of the marketplace: drafting,
// submitting, editing and deleting bids, plus responding to a buyer's
// selection. Submission is gated: a bid only goes live after one credit is
// consumed or the submission fee is paid through checkout.
type BidService interface {
	CreateBid(ctx context.Context, contractorID primitive.ObjectID, request *models.BidCreateRequest) (*models.BidSubmissionResponse, error)
	SaveBidDraft(ctx context.Context, contractorID primitive.ObjectID, request *models.BidDraftCreateRequest) (*models.Bid, error)
	SubmitDraft(ctx context.Context, contractorID, bidID primitive.ObjectID) (*models.BidSubmissionResponse, error)
	UpdateBid(ctx context.Context, contractorID, bidID primitive.ObjectID, request *models.BidUpdateRequest) (*models.Bid, error)
	DeleteBid(ctx context.Context, contractorID, bidID primitive.ObjectID) error

	// Selection responses
	ConfirmSelectedBid(ctx context.Context, contractorID, bidID primitive.ObjectID) error
	DeclineSelectedBid(ctx context.Context, contractorID, bidID primitive.ObjectID) error

	// Reads
	GetContractorBids(ctx context.Context, contractorID primitive.ObjectID, params *utils.PaginationParams) ([]*models.BidCardResponse, int64, error)
	GetBidDetail(ctx context.Context, contractorID, bidID primitive.ObjectID) (*models.BidDetailResponse, error)

	// ActivateBidAfterPayment promotes a paid draft to pending. Called by
	// the payment webhook path; must be idempotent under redelivery.
	ActivateBidAfterPayment(ctx context.Context, bidID primitive.ObjectID) error
}

type bidService struct {
	bidRepo          interfaces.BidRepository
	jobRepo          interfaces.JobRepository
	userRepo         interfaces.UserRepository
	buyerProfileRepo interfaces.BuyerProfileRepository
	paymentRepo      interfaces.PaymentRepository
	creditService    CreditService
	emailService     EmailService
	db               TransactionRunner
	logger           *logger.Logger
}

func NewBidService(
	bidRepo interfaces.BidRepository,
	jobRepo interfaces.JobRepository,
	userRepo interfaces.UserRepository,
	buyerProfileRepo interfaces.BuyerProfileRepository,
	paymentRepo interfaces.PaymentRepository,
	creditService CreditService,
	emailService EmailService,
	db TransactionRunner,
	logger *logger.Logger,
) BidService {
	return &bidService{
		bidRepo:          bidRepo,
		jobRepo:          jobRepo,
		userRepo:         userRepo,
		buyerProfileRepo: buyerProfileRepo,
		paymentRepo:      paymentRepo,
		creditService:    creditService,
		emailService:     emailService,
		db:               db,
		logger:           logger,
	}
}

// CreateBid validates and stores a full bid, then tries to take it live with
// a credit. Without credits the bid stays a draft and the caller is told
// payment is required.
func (s *bidService) CreateBid(ctx context.Context, contractorID primitive.ObjectID, request *models.BidCreateRequest) (*models.BidSubmissionResponse, error) {
	priceMin, priceMax, err := parseBidPrices(request.PriceMin, request.PriceMax)
	if err != nil {
		return nil, err
	}

	jobID, err := primitive.ObjectIDFromHex(request.JobID)
	if err != nil {
		return nil, utils.NewNotFoundError("job")
	}

	job, err := s.guardBiddableJob(ctx, jobID, contractorID)
	if err != nil {
		return nil, err
	}

	bid := &models.Bid{
		JobID:            jobID,
		ContractorID:     contractorID,
		Title:            request.Title,
		PriceMin:         priceMin,
		PriceMax:         priceMax,
		TimelineEstimate: request.TimelineEstimate,
		WorkDescription:  request.WorkDescription,
		AdditionalNotes:  request.AdditionalNotes,
		Status:           models.BidStatusDraft,
	}
	if err := s.bidRepo.Create(ctx, bid); err != nil {
		s.logger.WithError(err).WithJobID(jobID).Error("Failed to create bid")
		return nil, utils.NewStorageError("create bid", err)
	}

	return s.takeBidLive(ctx, bid, job)
}

func (s *bidService) SaveBidDraft(ctx context.Context, contractorID primitive.ObjectID, request *models.BidDraftCreateRequest) (*models.Bid, error) {
	jobID, err := primitive.ObjectIDFromHex(request.JobID)
	if err != nil {
		return nil, utils.NewNotFoundError("job")
	}

	if _, err := s.guardBiddableJob(ctx, jobID, contractorID); err != nil {
		return nil, err
	}

	// Draft prices are optional but must parse when present.
	var priceMin, priceMax float64
	if request.PriceMin != "" {
		if priceMin, err = utils.ParseCurrencyAmount(request.PriceMin); err != nil {
			return nil, utils.NewValidationError("invalid minimum price")
		}
	}
	if request.PriceMax != "" {
		if priceMax, err = utils.ParseCurrencyAmount(request.PriceMax); err != nil {
			return nil, utils.NewValidationError("invalid maximum price")
		}
	}

	bid := &models.Bid{
		JobID:            jobID,
		ContractorID:     contractorID,
		Title:            request.Title,
		PriceMin:         priceMin,
		PriceMax:         priceMax,
		TimelineEstimate: request.TimelineEstimate,
		WorkDescription:  request.WorkDescription,
		AdditionalNotes:  request.AdditionalNotes,
		Status:           models.BidStatusDraft,
	}
	if err := s.bidRepo.Create(ctx, bid); err != nil {
		s.logger.WithError(err).WithJobID(jobID).Error("Failed to save bid draft")
		return nil, utils.NewStorageError("save bid draft", err)
	}

	s.logger.WithBidID(bid.ID).WithJobID(jobID).Info("Bid draft saved")
	return bid, nil
}

// SubmitDraft takes an existing draft through the same gate as CreateBid.
func (s *bidService) SubmitDraft(ctx context.Context, contractorID, bidID primitive.ObjectID) (*models.BidSubmissionResponse, error) {
	bid, err := s.getOwnedBid(ctx, contractorID, bidID)
	if err != nil {
		return nil, err
	}
	if bid.Status != models.BidStatusDraft {
		return nil, utils.NewValidationError("only draft bids can be submitted")
	}
	if err := validateBidComplete(bid); err != nil {
		return nil, err
	}

	job, err := s.jobRepo.GetByID(ctx, bid.JobID)
	if err != nil {
		return nil, utils.NewStorageError("get job", err)
	}
	if job == nil {
		return nil, utils.NewNotFoundError("job")
	}
	if err := s.guardJobAcceptsBids(ctx, job); err != nil {
		return nil, err
	}

	// A draft whose submission fee was already paid goes live without
	// touching the credit ledger. This also covers a paid draft whose
	// webhook activation never landed.
	paid, err := s.paymentRepo.HasSucceededBidPayment(ctx, bid.ID)
	if err != nil {
		return nil, utils.NewStorageError("check bid payment", err)
	}
	if paid {
		if err := s.activateBid(ctx, bid); err != nil {
			return nil, err
		}
		return &models.BidSubmissionResponse{Bid: bid, PaymentRequired: false}, nil
	}

	return s.takeBidLive(ctx, bid, job)
}

func (s *bidService) UpdateBid(ctx context.Context, contractorID, bidID primitive.ObjectID, request *models.BidUpdateRequest) (*models.Bid, error) {
	bid, err := s.getOwnedBid(ctx, contractorID, bidID)
	if err != nil {
		return nil, err
	}
	if !bid.Status.Editable() {
		return nil, utils.NewValidationError("bid can no longer be edited")
	}

	updates := make(map[string]interface{})
	if request.Title != nil {
		updates["title"] = *request.Title
		bid.Title = *request.Title
	}
	if request.PriceMin != nil {
		priceMin, err := utils.ParseCurrencyAmount(*request.PriceMin)
		if err != nil {
			return nil, utils.NewValidationError("invalid minimum price")
		}
		updates["price_min"] = priceMin
		bid.PriceMin = priceMin
	}
	if request.PriceMax != nil {
		priceMax, err := utils.ParseCurrencyAmount(*request.PriceMax)
		if err != nil {
			return nil, utils.NewValidationError("invalid maximum price")
		}
		updates["price_max"] = priceMax
		bid.PriceMax = priceMax
	}
	if bid.PriceMin > 0 && bid.PriceMax > 0 && bid.PriceMin > bid.PriceMax {
		return nil, utils.NewValidationError("minimum price cannot be greater than maximum price")
	}
	if request.TimelineEstimate != nil {
		updates["timeline_estimate"] = *request.TimelineEstimate
		bid.TimelineEstimate = *request.TimelineEstimate
	}
	if request.WorkDescription != nil {
		updates["work_description"] = *request.WorkDescription
		bid.WorkDescription = *request.WorkDescription
	}
	if request.AdditionalNotes != nil {
		updates["additional_notes"] = *request.AdditionalNotes
		bid.AdditionalNotes = *request.AdditionalNotes
	}

	if len(updates) == 0 {
		return bid, nil
	}

	if err := s.bidRepo.Update(ctx, bidID, updates); err != nil {
		s.logger.WithError(err).WithBidID(bidID).Error("Failed to update bid")
		return nil, utils.NewStorageError("update bid", err)
	}

	return bid, nil
}

func (s *bidService) DeleteBid(ctx context.Context, contractorID, bidID primitive.ObjectID) error {
	bid, err := s.getOwnedBid(ctx, contractorID, bidID)
	if err != nil {
		return err
	}
	if !bid.Status.Deletable() {
		return utils.NewValidationError("bid can no longer be deleted")
	}

	if err := s.bidRepo.Delete(ctx, bidID); err != nil {
		s.logger.WithError(err).WithBidID(bidID).Error("Failed to delete bid")
		return utils.NewStorageError("delete bid", err)
	}

	// A pending bid held one of the job's slots; freeing it can reopen a
	// full job.
	if bid.Status == models.BidStatusPending {
		if err := s.reconcileJobCapacity(ctx, bid.JobID); err != nil {
			s.logger.WithError(err).WithJobID(bid.JobID).Warn("Failed to reconcile job capacity after bid deletion")
		}
	}

	s.logger.WithBidID(bidID).Info("Bid deleted")
	return nil
}

// ConfirmSelectedBid is the contractor's acceptance of the buyer's selection.
// The bid and its job finalize together and every competing bid is declined;
// afterwards contact info is shared both ways.
func (s *bidService) ConfirmSelectedBid(ctx context.Context, contractorID, bidID primitive.ObjectID) error {
	bid, err := s.getOwnedBid(ctx, contractorID, bidID)
	if err != nil {
		return err
	}
	if bid.Status != models.BidStatusSelected || !bid.IsSelected {
		return utils.NewValidationError("only a selected bid can be confirmed")
	}

	_, err = s.db.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		if err := s.bidRepo.Update(sessCtx, bidID, map[string]interface{}{
			"status": models.BidStatusConfirmed,
		}); err != nil {
			return nil, err
		}
		if err := s.bidRepo.DeclineOthersForJob(sessCtx, bid.JobID, bidID); err != nil {
			return nil, err
		}
		if err := s.jobRepo.UpdateStatus(sessCtx, bid.JobID, models.JobStatusConfirmed); err != nil {
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		s.logger.WithError(err).WithBidID(bidID).Error("Failed to confirm bid")
		return utils.NewStorageError("confirm bid", err)
	}

	s.logger.WithBidID(bidID).WithJobID(bid.JobID).Info("Bid confirmed")
	s.notifyBuyer(ctx, bid.JobID, s.emailService.SendBidConfirmed)

	return nil
}

// DeclineSelectedBid rejects the buyer's selection. The declined bid frees
// its slot and the job returns to accepting selections; the spent selection
// stays counted.
func (s *bidService) DeclineSelectedBid(ctx context.Context, contractorID, bidID primitive.ObjectID) error {
	bid, err := s.getOwnedBid(ctx, contractorID, bidID)
	if err != nil {
		return err
	}
	if bid.Status != models.BidStatusSelected || !bid.IsSelected {
		return utils.NewValidationError("only a selected bid can be declined")
	}

	_, err = s.db.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		if err := s.bidRepo.Update(sessCtx, bidID, map[string]interface{}{
			"status":      models.BidStatusDeclined,
			"is_selected": false,
		}); err != nil {
			return nil, err
		}

		// Declined bids free their slot, so recount before deciding
		// which status the job falls back to.
		active, err := s.bidRepo.CountActiveForJob(sessCtx, bid.JobID)
		if err != nil {
			return nil, err
		}
		status := models.JobStatusOpen
		if active >= utils.MaxBidsPerJob {
			status = models.JobStatusFullBid
		}
		if err := s.jobRepo.UpdateStatus(sessCtx, bid.JobID, status); err != nil {
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		s.logger.WithError(err).WithBidID(bidID).Error("Failed to decline bid")
		return utils.NewStorageError("decline bid", err)
	}

	s.logger.WithBidID(bidID).WithJobID(bid.JobID).Info("Bid declined")
	s.notifyBuyer(ctx, bid.JobID, s.emailService.SendBidDeclined)

	return nil
}

func (s *bidService) GetContractorBids(ctx context.Context, contractorID primitive.ObjectID, params *utils.PaginationParams) ([]*models.BidCardResponse, int64, error) {
	bids, total, err := s.bidRepo.GetByContractorID(ctx, contractorID, params)
	if err != nil {
		return nil, 0, utils.NewStorageError("list bids", err)
	}

	cards := make([]*models.BidCardResponse, 0, len(bids))
	for _, bid := range bids {
		card := &models.BidCardResponse{
			ID:        bid.ID,
			JobID:     bid.JobID,
			Title:     bid.Title,
			Status:    bid.Status,
			CreatedAt: bid.CreatedAt,
			UpdatedAt: bid.UpdatedAt,
		}
		if job, err := s.jobRepo.GetByID(ctx, bid.JobID); err == nil && job != nil {
			card.JobTitle = job.Title
			card.JobType = job.JobType
			card.JobCity = job.City
		}
		cards = append(cards, card)
	}

	return cards, total, nil
}

func (s *bidService) GetBidDetail(ctx context.Context, contractorID, bidID primitive.ObjectID) (*models.BidDetailResponse, error) {
	bid, err := s.getOwnedBid(ctx, contractorID, bidID)
	if err != nil {
		return nil, err
	}

	detail := &models.BidDetailResponse{Bid: *bid}

	job, err := s.jobRepo.GetByID(ctx, bid.JobID)
	if err != nil {
		return nil, utils.NewStorageError("get job", err)
	}
	if job != nil {
		detail.JobTitle = job.Title
		detail.JobType = job.JobType
		detail.JobBudget = job.JobBudget
		detail.JobCity = job.City

		// Buyer contact info is revealed only after confirmation.
		if bid.Status == models.BidStatusConfirmed {
			if profile, err := s.buyerProfileRepo.GetByUserID(ctx, job.BuyerID); err == nil && profile != nil {
				detail.BuyerContactEmail = profile.ContactEmail
				detail.BuyerContactPhone = profile.PhoneNumber
			} else if buyer, err := s.userRepo.GetByID(ctx, job.BuyerID); err == nil && buyer != nil {
				detail.BuyerContactEmail = buyer.Email
			}
		}
	}

	return detail, nil
}

// ActivateBidAfterPayment promotes a paid draft. Webhook redelivery and the
// race with a credit submission both funnel through the draft check, so a
// second call is a no-op.
func (s *bidService) ActivateBidAfterPayment(ctx context.Context, bidID primitive.ObjectID) error {
	bid, err := s.bidRepo.GetByID(ctx, bidID)
	if err != nil {
		return utils.NewStorageError("get bid", err)
	}
	if bid == nil {
		return utils.NewNotFoundError("bid")
	}
	if bid.Status != models.BidStatusDraft {
		s.logger.WithBidID(bidID).WithField("status", bid.Status).Debug("Bid already active, skipping activation")
		return nil
	}

	if err := s.activateBid(ctx, bid); err != nil {
		return err
	}

	s.logger.WithBidID(bidID).Info("Bid activated after payment")
	return nil
}

// takeBidLive attempts the credit path for a draft. Insufficient credits is
// not an error here: the bid stays a draft and payment is requested.
func (s *bidService) takeBidLive(ctx context.Context, bid *models.Bid, job *models.Job) (*models.BidSubmissionResponse, error) {
	err := s.creditService.ConsumeCredit(ctx, bid.ContractorID, bid.ID)
	if err != nil {
		if utils.IsInsufficientCreditsError(err) {
			s.logger.WithBidID(bid.ID).Info("No credits available, bid held as draft pending payment")
			return &models.BidSubmissionResponse{Bid: bid, PaymentRequired: true}, nil
		}
		return nil, err
	}

	if err := s.activateBid(ctx, bid); err != nil {
		return nil, err
	}

	return &models.BidSubmissionResponse{Bid: bid, PaymentRequired: false}, nil
}

// activateBid flips a draft to pending, trips the full_bid status when the
// cap is reached, and notifies the buyer.
func (s *bidService) activateBid(ctx context.Context, bid *models.Bid) error {
	if err := s.bidRepo.Update(ctx, bid.ID, map[string]interface{}{
		"status": models.BidStatusPending,
	}); err != nil {
		s.logger.WithError(err).WithBidID(bid.ID).Error("Failed to activate bid")
		return utils.NewStorageError("activate bid", err)
	}
	bid.Status = models.BidStatusPending

	job, err := s.jobRepo.GetByID(ctx, bid.JobID)
	if err != nil || job == nil {
		s.logger.WithError(err).WithJobID(bid.JobID).Warn("Failed to load job after bid activation")
		return nil
	}

	if job.Status == models.JobStatusOpen {
		active, err := s.bidRepo.CountActiveForJob(ctx, bid.JobID)
		if err == nil && active >= utils.MaxBidsPerJob {
			if err := s.jobRepo.UpdateStatus(ctx, bid.JobID, models.JobStatusFullBid); err != nil {
				s.logger.WithError(err).WithJobID(bid.JobID).Warn("Failed to mark job full")
			}
		}
	}

	s.notifyBuyerForJob(ctx, job, s.emailService.SendBidReceived)
	return nil
}

// reconcileJobCapacity reopens a full job when a slot frees up.
func (s *bidService) reconcileJobCapacity(ctx context.Context, jobID primitive.ObjectID) error {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return err
	}
	if job == nil || job.Status != models.JobStatusFullBid {
		return nil
	}

	active, err := s.bidRepo.CountActiveForJob(ctx, jobID)
	if err != nil {
		return err
	}
	if active < utils.MaxBidsPerJob {
		return s.jobRepo.UpdateStatus(ctx, jobID, models.JobStatusOpen)
	}
	return nil
}

// guardBiddableJob loads the job and enforces the pre-submission rules: no
// bidding on your own job, no second bid per job, and no bids on jobs that
// are closed or already full.
func (s *bidService) guardBiddableJob(ctx context.Context, jobID, contractorID primitive.ObjectID) (*models.Job, error) {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, utils.NewStorageError("get job", err)
	}
	if job == nil || job.Status == models.JobStatusDraft {
		return nil, utils.NewNotFoundError("job")
	}
	if job.BuyerID == contractorID {
		return nil, utils.NewValidationError(utils.ErrSelfBid)
	}

	existing, err := s.bidRepo.GetByJobAndContractor(ctx, jobID, contractorID)
	if err != nil {
		return nil, utils.NewStorageError("check existing bid", err)
	}
	if existing != nil {
		return nil, utils.NewValidationError(utils.ErrDuplicateBid)
	}

	if err := s.guardJobAcceptsBids(ctx, job); err != nil {
		return nil, err
	}

	return job, nil
}

func (s *bidService) guardJobAcceptsBids(ctx context.Context, job *models.Job) error {
	switch job.Status {
	case models.JobStatusOpen:
	case models.JobStatusFullBid:
		return utils.NewValidationError(utils.ErrMaxBidsReached)
	default:
		return utils.NewValidationError(utils.ErrJobNotAcceptingBids)
	}

	// The status flag can lag the count by one submission, so recount.
	active, err := s.bidRepo.CountActiveForJob(ctx, job.ID)
	if err != nil {
		return utils.NewStorageError("count bids", err)
	}
	if active >= utils.MaxBidsPerJob {
		return utils.NewValidationError(utils.ErrMaxBidsReached)
	}
	return nil
}

func (s *bidService) getOwnedBid(ctx context.Context, contractorID, bidID primitive.ObjectID) (*models.Bid, error) {
	bid, err := s.bidRepo.GetByID(ctx, bidID)
	if err != nil {
		return nil, utils.NewStorageError("get bid", err)
	}
	if bid == nil || bid.ContractorID != contractorID {
		return nil, utils.NewNotFoundError("bid")
	}
	return bid, nil
}

func (s *bidService) notifyBuyer(ctx context.Context, jobID primitive.ObjectID, send func(context.Context, string, string) error) {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil || job == nil {
		return
	}
	s.notifyBuyerForJob(ctx, job, send)
}

func (s *bidService) notifyBuyerForJob(ctx context.Context, job *models.Job, send func(context.Context, string, string) error) {
	buyer, err := s.userRepo.GetByID(ctx, job.BuyerID)
	if err != nil || buyer == nil {
		return
	}
	if err := send(ctx, buyer.Email, job.Title); err != nil {
		s.logger.WithError(err).WithJobID(job.ID).Warn("Failed to send buyer notification")
	}
}

func parseBidPrices(minStr, maxStr string) (float64, float64, error) {
	priceMin, err := utils.ParseCurrencyAmount(minStr)
	if err != nil {
		return 0, 0, utils.NewValidationError("invalid minimum price")
	}
	priceMax, err := utils.ParseCurrencyAmount(maxStr)
	if err != nil {
		return 0, 0, utils.NewValidationError("invalid maximum price")
	}
	if priceMin <= 0 || priceMax <= 0 {
		return 0, 0, utils.NewValidationError("prices must be positive")
	}
	if priceMin > priceMax {
		return 0, 0, utils.NewValidationError("minimum price cannot be greater than maximum price")
	}
	return priceMin, priceMax, nil
}

func validateBidComplete(bid *models.Bid) error {
	if bid.Title == "" || bid.TimelineEstimate == "" || bid.WorkDescription == "" {
		return utils.NewValidationError("bid is missing required fields")
	}
	if bid.PriceMin <= 0 || bid.PriceMax <= 0 {
		return utils.NewValidationError("prices must be positive")
	}
	if bid.PriceMin > bid.PriceMax {
		return utils.NewValidationError("minimum price cannot be greater than maximum price")
	}
	return nil
}
