package services

import (
	"context"
	"fmt"

	"bidquotes/internal/models"
	"bidquotes/internal/repositories/interfaces"
	"bidquotes/internal/utils"
	"bidquotes/pkg/logger"
)

// UserService keeps the internal user table in sync with the external
// identity provider. Accounts are only ever created and removed through the
// provider's lifecycle webhooks.
type UserService interface {
	HandleIdentityEvent(ctx context.Context, event *models.IdentityWebhookEvent) error
	GetByExternalAuthID(ctx context.Context, externalAuthID string) (*models.User, error)
}

type userService struct {
	userRepo              interfaces.UserRepository
	buyerProfileRepo      interfaces.BuyerProfileRepository
	contractorProfileRepo interfaces.ContractorProfileRepository
	logger                *logger.Logger
}

func NewUserService(
	userRepo interfaces.UserRepository,
	buyerProfileRepo interfaces.BuyerProfileRepository,
	contractorProfileRepo interfaces.ContractorProfileRepository,
	logger *logger.Logger,
) UserService {
	return &userService{
		userRepo:              userRepo,
		buyerProfileRepo:      buyerProfileRepo,
		contractorProfileRepo: contractorProfileRepo,
		logger:                logger,
	}
}

func (s *userService) HandleIdentityEvent(ctx context.Context, event *models.IdentityWebhookEvent) error {
	switch event.Type {
	case "user.created":
		return s.syncUser(ctx, &event.Data)
	case "user.updated":
		return s.syncUser(ctx, &event.Data)
	case "user.deleted":
		return s.removeUser(ctx, event.Data.ID)
	default:
		s.logger.WithField("event_type", event.Type).Debug("Ignoring unhandled identity event")
		return nil
	}
}

func (s *userService) GetByExternalAuthID(ctx context.Context, externalAuthID string) (*models.User, error) {
	return s.userRepo.GetByExternalAuthID(ctx, externalAuthID)
}

// syncUser upserts the internal row for an external subject. Created and
// updated events share this path so out-of-order delivery converges to the
// same state.
func (s *userService) syncUser(ctx context.Context, data *models.IdentityEventData) error {
	if data.ID == "" {
		return utils.NewValidationError("identity event missing subject id")
	}

	userType := models.UserType(data.UserType)
	switch userType {
	case models.UserTypeBuyer, models.UserTypeContractor, models.UserTypeAdmin:
	default:
		return utils.NewValidationError(fmt.Sprintf("unknown user type %q", data.UserType))
	}

	existing, err := s.userRepo.GetByExternalAuthID(ctx, data.ID)
	if err != nil {
		return utils.NewStorageError("get user", err)
	}

	if existing == nil {
		user := &models.User{
			ExternalAuthID: data.ID,
			Email:          data.Email,
			UserType:       userType,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			s.logger.WithError(err).WithField("external_auth_id", data.ID).Error("Failed to create user from identity event")
			return utils.NewStorageError("create user", err)
		}
		s.logger.WithUserID(user.ID).WithField("user_type", userType).Info("User created from identity event")
		return nil
	}

	updates := make(map[string]interface{})
	if data.Email != "" && data.Email != existing.Email {
		updates["email"] = data.Email
	}
	if userType != existing.UserType {
		updates["user_type"] = userType
	}
	if len(updates) == 0 {
		return nil
	}

	if err := s.userRepo.Update(ctx, existing.ID, updates); err != nil {
		s.logger.WithError(err).WithUserID(existing.ID).Error("Failed to update user from identity event")
		return utils.NewStorageError("update user", err)
	}

	s.logger.WithUserID(existing.ID).Info("User updated from identity event")
	return nil
}

func (s *userService) removeUser(ctx context.Context, externalAuthID string) error {
	user, err := s.userRepo.GetByExternalAuthID(ctx, externalAuthID)
	if err != nil {
		return utils.NewStorageError("get user", err)
	}
	if user == nil {
		// Deletion webhooks can arrive more than once.
		return nil
	}

	if err := s.buyerProfileRepo.Delete(ctx, user.ID); err != nil {
		s.logger.WithError(err).WithUserID(user.ID).Warn("Failed to delete buyer profile")
	}
	if err := s.contractorProfileRepo.Delete(ctx, user.ID); err != nil {
		s.logger.WithError(err).WithUserID(user.ID).Warn("Failed to delete contractor profile")
	}
	if err := s.userRepo.Delete(ctx, user.ID); err != nil {
		return utils.NewStorageError("delete user", err)
	}

	s.logger.WithUserID(user.ID).Info("User removed from identity event")
	return nil
}
