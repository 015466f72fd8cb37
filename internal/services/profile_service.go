package services

import (
	"context"

	"bidquotes/internal/models"
	"bidquotes/internal/repositories/interfaces"
	"bidquotes/internal/utils"
	"bidquotes/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProfileService manages the contact information revealed when a bid is
// confirmed. The request body carries an action tag so create and update
// stay explicit instead of a silent upsert.
type ProfileService interface {
	GetBuyerContactInfo(ctx context.Context, userID primitive.ObjectID) (*models.ContactInfoResponse, error)
	SaveBuyerContactInfo(ctx context.Context, userID primitive.ObjectID, request *models.ContactInfoRequest) (*models.ContactInfoResponse, error)
	GetContractorContactInfo(ctx context.Context, userID primitive.ObjectID) (*models.ContactInfoResponse, error)
	SaveContractorContactInfo(ctx context.Context, userID primitive.ObjectID, request *models.ContactInfoRequest) (*models.ContactInfoResponse, error)
}

type profileService struct {
	buyerProfileRepo      interfaces.BuyerProfileRepository
	contractorProfileRepo interfaces.ContractorProfileRepository
	logger                *logger.Logger
}

func NewProfileService(
	buyerProfileRepo interfaces.BuyerProfileRepository,
	contractorProfileRepo interfaces.ContractorProfileRepository,
	logger *logger.Logger,
) ProfileService {
	return &profileService{
		buyerProfileRepo:      buyerProfileRepo,
		contractorProfileRepo: contractorProfileRepo,
		logger:                logger,
	}
}

func (s *profileService) GetBuyerContactInfo(ctx context.Context, userID primitive.ObjectID) (*models.ContactInfoResponse, error) {
	profile, err := s.buyerProfileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, utils.NewStorageError("get buyer profile", err)
	}
	if profile == nil {
		return nil, utils.NewNotFoundError("profile")
	}
	return &models.ContactInfoResponse{
		ContactEmail: profile.ContactEmail,
		PhoneNumber:  profile.PhoneNumber,
	}, nil
}

func (s *profileService) SaveBuyerContactInfo(ctx context.Context, userID primitive.ObjectID, request *models.ContactInfoRequest) (*models.ContactInfoResponse, error) {
	existing, err := s.buyerProfileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, utils.NewStorageError("get buyer profile", err)
	}

	switch request.Action {
	case models.ContactInfoActionCreate:
		if existing != nil {
			return nil, utils.NewValidationError("contact info already exists, use update")
		}
		if request.ContactEmail == "" {
			return nil, utils.NewValidationError("contact email is required")
		}
		profile := &models.BuyerProfile{
			UserID:       userID,
			ContactEmail: request.ContactEmail,
			PhoneNumber:  request.PhoneNumber,
		}
		if err := s.buyerProfileRepo.Create(ctx, profile); err != nil {
			return nil, utils.NewStorageError("create buyer profile", err)
		}
	case models.ContactInfoActionUpdate:
		if existing == nil {
			return nil, utils.NewNotFoundError("profile")
		}
		updates := make(map[string]interface{})
		if request.ContactEmail != "" {
			updates["contact_email"] = request.ContactEmail
		}
		if request.PhoneNumber != "" {
			updates["phone_number"] = request.PhoneNumber
		}
		if len(updates) > 0 {
			if err := s.buyerProfileRepo.Update(ctx, userID, updates); err != nil {
				return nil, utils.NewStorageError("update buyer profile", err)
			}
		}
	default:
		return nil, utils.NewValidationError("invalid contact info action")
	}

	s.logger.WithUserID(userID).WithField("action", request.Action).Info("Buyer contact info saved")
	return s.GetBuyerContactInfo(ctx, userID)
}

func (s *profileService) GetContractorContactInfo(ctx context.Context, userID primitive.ObjectID) (*models.ContactInfoResponse, error) {
	profile, err := s.contractorProfileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, utils.NewStorageError("get contractor profile", err)
	}
	if profile == nil {
		return nil, utils.NewNotFoundError("profile")
	}
	return &models.ContactInfoResponse{
		ContactEmail: profile.Email,
		PhoneNumber:  profile.Phone,
		Name:         profile.ContractorName,
	}, nil
}

func (s *profileService) SaveContractorContactInfo(ctx context.Context, userID primitive.ObjectID, request *models.ContactInfoRequest) (*models.ContactInfoResponse, error) {
	existing, err := s.contractorProfileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, utils.NewStorageError("get contractor profile", err)
	}

	switch request.Action {
	case models.ContactInfoActionCreate:
		if existing != nil {
			return nil, utils.NewValidationError("contact info already exists, use update")
		}
		if request.ContactEmail == "" || request.Name == "" {
			return nil, utils.NewValidationError("contractor name and contact email are required")
		}
		profile := &models.ContractorProfile{
			UserID:         userID,
			ContractorName: request.Name,
			Email:          request.ContactEmail,
			Phone:          request.PhoneNumber,
		}
		if err := s.contractorProfileRepo.Create(ctx, profile); err != nil {
			return nil, utils.NewStorageError("create contractor profile", err)
		}
	case models.ContactInfoActionUpdate:
		if existing == nil {
			return nil, utils.NewNotFoundError("profile")
		}
		updates := make(map[string]interface{})
		if request.Name != "" {
			updates["contractor_name"] = request.Name
		}
		if request.ContactEmail != "" {
			updates["email"] = request.ContactEmail
		}
		if request.PhoneNumber != "" {
			updates["phone"] = request.PhoneNumber
		}
		if len(updates) > 0 {
			if err := s.contractorProfileRepo.Update(ctx, userID, updates); err != nil {
				return nil, utils.NewStorageError("update contractor profile", err)
			}
		}
	default:
		return nil, utils.NewValidationError("invalid contact info action")
	}

	s.logger.WithUserID(userID).WithField("action", request.Action).Info("Contractor contact info saved")
	return s.GetContractorContactInfo(ctx, userID)
}
