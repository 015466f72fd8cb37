package services

import (
	"context"
	"fmt"
	"io"

	"bidquotes/internal/models"
	"bidquotes/internal/repositories/interfaces"
	"bidquotes/internal/utils"
	"bidquotes/pkg/logger"
	"bidquotes/pkg/storage"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// JobService drives the buyer side: posting and editing jobs, managing their
// photos, and working through bid selection. A job can burn at most three
// selections; each decline or cancellation spends one.
type JobService interface {
	CreateJob(ctx context.Context, buyerID primitive.ObjectID, request *models.JobCreateRequest) (*models.Job, error)
	SaveJobDraft(ctx context.Context, buyerID primitive.ObjectID, request *models.JobDraftCreateRequest) (*models.Job, error)
	PostDraft(ctx context.Context, buyerID, jobID primitive.ObjectID) (*models.Job, error)
	UpdateJob(ctx context.Context, buyerID, jobID primitive.ObjectID, request *models.JobUpdateRequest) (*models.Job, error)
	DeleteJob(ctx context.Context, buyerID, jobID primitive.ObjectID) error
	CloseJob(ctx context.Context, buyerID, jobID primitive.ObjectID) error

	// Selection
	SelectBid(ctx context.Context, buyerID, jobID, bidID primitive.ObjectID) error
	CancelBidSelection(ctx context.Context, buyerID, jobID primitive.ObjectID) error

	// Reads
	GetBuyerJobs(ctx context.Context, buyerID primitive.ObjectID, params *utils.PaginationParams) ([]*models.JobCardResponse, int64, error)
	GetOpenJobs(ctx context.Context, params *utils.PaginationParams) ([]*models.JobCardResponse, int64, error)
	GetJobDetail(ctx context.Context, jobID, viewerID primitive.ObjectID, viewerType models.UserType) (*models.JobDetailResponse, error)

	// Images
	AddJobImage(ctx context.Context, buyerID, jobID primitive.ObjectID, filename, contentType string, reader io.Reader, size int64) (*models.JobImage, error)
	DeleteJobImage(ctx context.Context, buyerID, jobID, imageID primitive.ObjectID) error
}

type jobService struct {
	jobRepo               interfaces.JobRepository
	bidRepo               interfaces.BidRepository
	userRepo              interfaces.UserRepository
	contractorProfileRepo interfaces.ContractorProfileRepository
	emailService          EmailService
	storage               storage.Provider
	db                    TransactionRunner
	logger                *logger.Logger
}

func NewJobService(
	jobRepo interfaces.JobRepository,
	bidRepo interfaces.BidRepository,
	userRepo interfaces.UserRepository,
	contractorProfileRepo interfaces.ContractorProfileRepository,
	emailService EmailService,
	storageProvider storage.Provider,
	db TransactionRunner,
	logger *logger.Logger,
) JobService {
	return &jobService{
		jobRepo:               jobRepo,
		bidRepo:               bidRepo,
		userRepo:              userRepo,
		contractorProfileRepo: contractorProfileRepo,
		emailService:          emailService,
		storage:               storageProvider,
		db:                    db,
		logger:                logger,
	}
}

func (s *jobService) CreateJob(ctx context.Context, buyerID primitive.ObjectID, request *models.JobCreateRequest) (*models.Job, error) {
	if !isValidJobType(request.JobType) {
		return nil, utils.NewValidationError("invalid job type")
	}

	job := &models.Job{
		BuyerID:           buyerID,
		Title:             request.Title,
		JobType:           request.JobType,
		JobBudget:         request.JobBudget,
		Description:       request.Description,
		LocationAddress:   request.LocationAddress,
		City:              request.City,
		OtherRequirements: request.OtherRequirements,
		Status:            models.JobStatusOpen,
		MaxSelections:     utils.MaxSelectionsPerJob,
	}
	if err := s.jobRepo.Create(ctx, job); err != nil {
		s.logger.WithError(err).WithUserID(buyerID).Error("Failed to create job")
		return nil, utils.NewStorageError("create job", err)
	}

	s.logger.WithJobID(job.ID).WithUserID(buyerID).Info("Job posted")
	return job, nil
}

func (s *jobService) SaveJobDraft(ctx context.Context, buyerID primitive.ObjectID, request *models.JobDraftCreateRequest) (*models.Job, error) {
	if request.JobType != "" && !isValidJobType(request.JobType) {
		return nil, utils.NewValidationError("invalid job type")
	}

	job := &models.Job{
		BuyerID:           buyerID,
		Title:             request.Title,
		JobType:           request.JobType,
		JobBudget:         request.JobBudget,
		Description:       request.Description,
		LocationAddress:   request.LocationAddress,
		City:              request.City,
		OtherRequirements: request.OtherRequirements,
		Status:            models.JobStatusDraft,
		MaxSelections:     utils.MaxSelectionsPerJob,
	}
	if err := s.jobRepo.Create(ctx, job); err != nil {
		s.logger.WithError(err).WithUserID(buyerID).Error("Failed to save job draft")
		return nil, utils.NewStorageError("save job draft", err)
	}

	return job, nil
}

// PostDraft publishes a draft once all required fields are filled in.
func (s *jobService) PostDraft(ctx context.Context, buyerID, jobID primitive.ObjectID) (*models.Job, error) {
	job, err := s.getOwnedJob(ctx, buyerID, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != models.JobStatusDraft {
		return nil, utils.NewValidationError("only draft jobs can be posted")
	}
	if err := validateJobComplete(job); err != nil {
		return nil, err
	}

	if err := s.jobRepo.UpdateStatus(ctx, jobID, models.JobStatusOpen); err != nil {
		return nil, utils.NewStorageError("post job", err)
	}
	job.Status = models.JobStatusOpen

	s.logger.WithJobID(jobID).Info("Job draft posted")
	return job, nil
}

func (s *jobService) UpdateJob(ctx context.Context, buyerID, jobID primitive.ObjectID, request *models.JobUpdateRequest) (*models.Job, error) {
	job, err := s.getOwnedJob(ctx, buyerID, jobID)
	if err != nil {
		return nil, err
	}
	if !job.Status.BuyerEditable() {
		return nil, utils.NewValidationError("job can no longer be edited")
	}

	updates := make(map[string]interface{})
	if request.Title != nil {
		updates["title"] = *request.Title
		job.Title = *request.Title
	}
	if request.JobType != nil {
		if !isValidJobType(*request.JobType) {
			return nil, utils.NewValidationError("invalid job type")
		}
		updates["job_type"] = *request.JobType
		job.JobType = *request.JobType
	}
	if request.JobBudget != nil {
		updates["job_budget"] = *request.JobBudget
		job.JobBudget = *request.JobBudget
	}
	if request.Description != nil {
		updates["description"] = *request.Description
		job.Description = *request.Description
	}
	if request.LocationAddress != nil {
		updates["location_address"] = *request.LocationAddress
		job.LocationAddress = *request.LocationAddress
	}
	if request.City != nil {
		updates["city"] = *request.City
		job.City = *request.City
	}
	if request.OtherRequirements != nil {
		updates["other_requirements"] = *request.OtherRequirements
		job.OtherRequirements = *request.OtherRequirements
	}

	if len(updates) == 0 {
		return job, nil
	}

	if err := s.jobRepo.Update(ctx, jobID, updates); err != nil {
		s.logger.WithError(err).WithJobID(jobID).Error("Failed to update job")
		return nil, utils.NewStorageError("update job", err)
	}

	return job, nil
}

// DeleteJob removes a job along with its bids, images and stored photos.
func (s *jobService) DeleteJob(ctx context.Context, buyerID, jobID primitive.ObjectID) error {
	job, err := s.getOwnedJob(ctx, buyerID, jobID)
	if err != nil {
		return err
	}
	if !job.Status.BuyerEditable() {
		return utils.NewValidationError("job can no longer be deleted")
	}

	images, err := s.jobRepo.GetImagesByJobID(ctx, jobID)
	if err != nil {
		return utils.NewStorageError("list job images", err)
	}

	if err := s.jobRepo.Delete(ctx, jobID); err != nil {
		s.logger.WithError(err).WithJobID(jobID).Error("Failed to delete job")
		return utils.NewStorageError("delete job", err)
	}
	if err := s.jobRepo.DeleteImagesByJobID(ctx, jobID); err != nil {
		s.logger.WithError(err).WithJobID(jobID).Warn("Failed to delete job image records")
	}

	// Stored objects are cleaned up best effort after the rows are gone.
	for _, image := range images {
		if err := s.storage.Delete(ctx, image.StoragePath); err != nil {
			s.logger.WithError(err).WithField("key", image.StoragePath).Warn("Failed to delete stored image")
		}
	}

	s.logger.WithJobID(jobID).Info("Job deleted")
	return nil
}

func (s *jobService) CloseJob(ctx context.Context, buyerID, jobID primitive.ObjectID) error {
	job, err := s.getOwnedJob(ctx, buyerID, jobID)
	if err != nil {
		return err
	}
	if job.Status != models.JobStatusOpen && job.Status != models.JobStatusFullBid {
		return utils.NewValidationError("job cannot be closed in its current status")
	}

	if err := s.jobRepo.UpdateStatus(ctx, jobID, models.JobStatusClosed); err != nil {
		return utils.NewStorageError("close job", err)
	}

	s.logger.WithJobID(jobID).Info("Job closed by buyer")
	return nil
}

// SelectBid marks one pending bid as the buyer's choice. The previous
// selection (if any) is cleared, the new one is set, and the selection
// counter moves, all in one transaction.
func (s *jobService) SelectBid(ctx context.Context, buyerID, jobID, bidID primitive.ObjectID) error {
	job, err := s.getOwnedJob(ctx, buyerID, jobID)
	if err != nil {
		return err
	}
	if !job.Status.AcceptsSelection() {
		return utils.NewValidationError("job is not accepting bid selections")
	}
	if job.SelectionCount >= job.MaxSelections {
		return utils.NewValidationError(utils.ErrMaxSelectionsReached)
	}

	bid, err := s.bidRepo.GetByID(ctx, bidID)
	if err != nil {
		return utils.NewStorageError("get bid", err)
	}
	if bid == nil || bid.JobID != jobID {
		return utils.NewNotFoundError("bid")
	}
	if bid.Status != models.BidStatusPending {
		return utils.NewValidationError("only pending bids can be selected")
	}

	_, err = s.db.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		if err := s.bidRepo.ClearSelectionForJob(sessCtx, jobID); err != nil {
			return nil, err
		}
		if err := s.bidRepo.SetSelected(sessCtx, bidID, true); err != nil {
			return nil, err
		}
		if err := s.jobRepo.IncrementSelectionCount(sessCtx, jobID, 1); err != nil {
			return nil, err
		}
		if err := s.jobRepo.UpdateStatus(sessCtx, jobID, models.JobStatusWaitingConfirmation); err != nil {
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		s.logger.WithError(err).WithJobID(jobID).WithBidID(bidID).Error("Failed to select bid")
		return utils.NewStorageError("select bid", err)
	}

	s.logger.WithJobID(jobID).WithBidID(bidID).Info("Bid selected")
	s.notifyContractor(ctx, bid.ContractorID, job.Title)

	return nil
}

// CancelBidSelection withdraws the current selection. The spent selection
// stays counted against the job's limit.
func (s *jobService) CancelBidSelection(ctx context.Context, buyerID, jobID primitive.ObjectID) error {
	job, err := s.getOwnedJob(ctx, buyerID, jobID)
	if err != nil {
		return err
	}
	if job.Status != models.JobStatusWaitingConfirmation {
		return utils.NewValidationError("no bid selection to cancel")
	}

	_, err = s.db.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		if err := s.bidRepo.ClearSelectionForJob(sessCtx, jobID); err != nil {
			return nil, err
		}

		active, err := s.bidRepo.CountActiveForJob(sessCtx, jobID)
		if err != nil {
			return nil, err
		}
		status := models.JobStatusOpen
		if active >= utils.MaxBidsPerJob {
			status = models.JobStatusFullBid
		}
		if err := s.jobRepo.UpdateStatus(sessCtx, jobID, status); err != nil {
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		s.logger.WithError(err).WithJobID(jobID).Error("Failed to cancel bid selection")
		return utils.NewStorageError("cancel bid selection", err)
	}

	s.logger.WithJobID(jobID).Info("Bid selection cancelled")
	return nil
}

func (s *jobService) GetBuyerJobs(ctx context.Context, buyerID primitive.ObjectID, params *utils.PaginationParams) ([]*models.JobCardResponse, int64, error) {
	jobs, total, err := s.jobRepo.GetByBuyerID(ctx, buyerID, params)
	if err != nil {
		return nil, 0, utils.NewStorageError("list jobs", err)
	}
	return s.buildJobCards(ctx, jobs), total, nil
}

func (s *jobService) GetOpenJobs(ctx context.Context, params *utils.PaginationParams) ([]*models.JobCardResponse, int64, error) {
	jobs, total, err := s.jobRepo.GetBiddableJobs(ctx, params)
	if err != nil {
		return nil, 0, utils.NewStorageError("list jobs", err)
	}
	return s.buildJobCards(ctx, jobs), total, nil
}

// GetJobDetail returns the job with images. The owning buyer also gets the
// visible bids; contractors and other buyers never see competing bids, and a
// draft is visible only to its owner.
func (s *jobService) GetJobDetail(ctx context.Context, jobID, viewerID primitive.ObjectID, viewerType models.UserType) (*models.JobDetailResponse, error) {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, utils.NewStorageError("get job", err)
	}
	if job == nil {
		return nil, utils.NewNotFoundError("job")
	}

	isOwner := job.BuyerID == viewerID
	if job.Status == models.JobStatusDraft && !isOwner {
		return nil, utils.NewNotFoundError("job")
	}

	detail := &models.JobDetailResponse{Job: *job}

	images, err := s.jobRepo.GetImagesByJobID(ctx, jobID)
	if err != nil {
		return nil, utils.NewStorageError("list job images", err)
	}
	detail.Images = images

	bids, err := s.bidRepo.GetVisibleByJobID(ctx, jobID)
	if err != nil {
		return nil, utils.NewStorageError("list bids", err)
	}
	detail.BidCount = len(bids)

	if isOwner && viewerType == models.UserTypeBuyer {
		cards := make([]*models.BuyerBidCard, 0, len(bids))
		for _, bid := range bids {
			cards = append(cards, &models.BuyerBidCard{
				ID:               bid.ID,
				ContractorID:     bid.ContractorID,
				Title:            bid.Title,
				PriceMin:         bid.PriceMin,
				PriceMax:         bid.PriceMax,
				TimelineEstimate: bid.TimelineEstimate,
				Status:           bid.Status,
				IsSelected:       bid.IsSelected,
				CreatedAt:        bid.CreatedAt,
			})
		}
		detail.Bids = cards
	}

	return detail, nil
}

func (s *jobService) AddJobImage(ctx context.Context, buyerID, jobID primitive.ObjectID, filename, contentType string, reader io.Reader, size int64) (*models.JobImage, error) {
	job, err := s.getOwnedJob(ctx, buyerID, jobID)
	if err != nil {
		return nil, err
	}
	if !job.Status.BuyerEditable() {
		return nil, utils.NewValidationError("job can no longer be edited")
	}
	if !utils.IsImageFile(filename) {
		return nil, utils.NewValidationError("unsupported image type")
	}
	if size > utils.MaxImageSize {
		return nil, utils.NewValidationError("image exceeds the maximum allowed size")
	}

	existing, err := s.jobRepo.GetImagesByJobID(ctx, jobID)
	if err != nil {
		return nil, utils.NewStorageError("list job images", err)
	}
	if len(existing) >= utils.MaxImagesPerJob {
		return nil, utils.NewValidationError(fmt.Sprintf("a job can have at most %d images", utils.MaxImagesPerJob))
	}

	key := fmt.Sprintf("jobs/%s/%s", jobID.Hex(), utils.GenerateUniqueFilename(filename))
	uploaded, err := s.storage.Upload(ctx, &storage.UploadRequest{
		Key:         key,
		Reader:      reader,
		ContentType: contentType,
		Size:        size,
	})
	if err != nil {
		s.logger.WithError(err).WithJobID(jobID).Error("Failed to upload job image")
		return nil, utils.NewStorageError("upload image", err)
	}

	image := &models.JobImage{
		JobID:       jobID,
		ImageURL:    uploaded.URL,
		StoragePath: uploaded.Key,
		ImageOrder:  len(existing),
	}
	if err := s.jobRepo.AddImage(ctx, image); err != nil {
		s.storage.Delete(ctx, uploaded.Key)
		return nil, utils.NewStorageError("save image record", err)
	}

	s.logger.WithJobID(jobID).WithField("key", uploaded.Key).Info("Job image added")
	return image, nil
}

func (s *jobService) DeleteJobImage(ctx context.Context, buyerID, jobID, imageID primitive.ObjectID) error {
	job, err := s.getOwnedJob(ctx, buyerID, jobID)
	if err != nil {
		return err
	}
	if !job.Status.BuyerEditable() {
		return utils.NewValidationError("job can no longer be edited")
	}

	images, err := s.jobRepo.GetImagesByJobID(ctx, jobID)
	if err != nil {
		return utils.NewStorageError("list job images", err)
	}

	var target *models.JobImage
	for _, image := range images {
		if image.ID == imageID {
			target = image
			break
		}
	}
	if target == nil {
		return utils.NewNotFoundError("image")
	}

	if err := s.jobRepo.DeleteImage(ctx, imageID); err != nil {
		return utils.NewStorageError("delete image record", err)
	}
	if err := s.storage.Delete(ctx, target.StoragePath); err != nil {
		s.logger.WithError(err).WithField("key", target.StoragePath).Warn("Failed to delete stored image")
	}

	return nil
}

func (s *jobService) buildJobCards(ctx context.Context, jobs []*models.Job) []*models.JobCardResponse {
	cards := make([]*models.JobCardResponse, 0, len(jobs))
	for _, job := range jobs {
		card := &models.JobCardResponse{
			ID:        job.ID,
			Title:     job.Title,
			JobType:   job.JobType,
			Status:    job.Status,
			CreatedAt: job.CreatedAt,
		}
		if count, err := s.bidRepo.CountActiveForJob(ctx, job.ID); err == nil {
			card.BidCount = int(count)
		}
		if images, err := s.jobRepo.GetImagesByJobID(ctx, job.ID); err == nil && len(images) > 0 {
			card.ThumbnailImage = images[0].ImageURL
		}
		cards = append(cards, card)
	}
	return cards
}

func (s *jobService) getOwnedJob(ctx context.Context, buyerID, jobID primitive.ObjectID) (*models.Job, error) {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, utils.NewStorageError("get job", err)
	}
	if job == nil || job.BuyerID != buyerID {
		return nil, utils.NewNotFoundError("job")
	}
	return job, nil
}

func (s *jobService) notifyContractor(ctx context.Context, contractorID primitive.ObjectID, jobTitle string) {
	email := ""
	if profile, err := s.contractorProfileRepo.GetByUserID(ctx, contractorID); err == nil && profile != nil {
		email = profile.Email
	}
	if email == "" {
		if user, err := s.userRepo.GetByID(ctx, contractorID); err == nil && user != nil {
			email = user.Email
		}
	}
	if email == "" {
		return
	}
	if err := s.emailService.SendBidSelected(ctx, email, jobTitle); err != nil {
		s.logger.WithError(err).WithUserID(contractorID).Warn("Failed to send selection notification")
	}
}

func validateJobComplete(job *models.Job) error {
	if job.Title == "" || job.JobBudget == "" || job.Description == "" ||
		job.LocationAddress == "" || job.City == "" {
		return utils.NewValidationError("job is missing required fields")
	}
	if !isValidJobType(job.JobType) {
		return utils.NewValidationError("invalid job type")
	}
	return nil
}

func isValidJobType(jobType models.JobType) bool {
	switch jobType {
	case models.JobTypePlumbing, models.JobTypePainting, models.JobTypeLandscaping,
		models.JobTypeRoofing, models.JobTypeIndoor, models.JobTypeBackyard,
		models.JobTypeFencingDecking, models.JobTypeDesign:
		return true
	}
	return false
}
