package services

import (
	"context"
	"fmt"

	"bidquotes/internal/models"
	"bidquotes/internal/repositories/interfaces"
	"bidquotes/internal/utils"
	"bidquotes/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// CreditService manages the contractor credit ledger. The ledger is
// append-only: the latest row's credits_balance_after is the balance, and
// every mutation appends exactly one row inside a transaction so concurrent
// spends cannot both read the same balance.
type CreditService interface {
	GetBalance(ctx context.Context, contractorID primitive.ObjectID) (int, error)
	HasAvailableCredit(ctx context.Context, contractorID primitive.ObjectID) (bool, error)
	ConsumeCredit(ctx context.Context, contractorID, bidID primitive.ObjectID) error
	AddCredits(ctx context.Context, contractorID primitive.ObjectID, credits int, paymentTransactionID *primitive.ObjectID, description string) (*models.AddCreditResponse, error)
	RefundCredit(ctx context.Context, contractorID primitive.ObjectID, description string) (*models.AddCreditResponse, error)
	HasGrantForPayment(ctx context.Context, paymentTransactionID primitive.ObjectID) (bool, error)
	GetHistory(ctx context.Context, contractorID primitive.ObjectID, params *utils.PaginationParams) ([]*models.CreditTransaction, int64, error)
}

type creditService struct {
	creditRepo interfaces.CreditRepository
	db         TransactionRunner
	logger     *logger.Logger
}

func NewCreditService(
	creditRepo interfaces.CreditRepository,
	db TransactionRunner,
	logger *logger.Logger,
) CreditService {
	return &creditService{
		creditRepo: creditRepo,
		db:         db,
		logger:     logger,
	}
}

func (s *creditService) GetBalance(ctx context.Context, contractorID primitive.ObjectID) (int, error) {
	latest, err := s.creditRepo.GetLatestByContractor(ctx, contractorID)
	if err != nil {
		return 0, err
	}
	if latest == nil {
		return 0, nil
	}
	return latest.CreditsBalanceAfter, nil
}

func (s *creditService) HasAvailableCredit(ctx context.Context, contractorID primitive.ObjectID) (bool, error) {
	balance, err := s.GetBalance(ctx, contractorID)
	if err != nil {
		return false, err
	}
	return balance > 0, nil
}

// ConsumeCredit spends one credit for a bid submission. The balance read and
// the ledger append run in one transaction; a contractor racing two
// submissions cannot spend the same credit twice.
func (s *creditService) ConsumeCredit(ctx context.Context, contractorID, bidID primitive.ObjectID) error {
	_, err := s.db.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		latest, err := s.creditRepo.GetLatestByContractor(sessCtx, contractorID)
		if err != nil {
			return nil, err
		}

		balance := 0
		if latest != nil {
			balance = latest.CreditsBalanceAfter
		}
		if balance <= 0 {
			return nil, &utils.InsufficientCreditsError{ContractorID: contractorID.Hex()}
		}

		transaction := &models.CreditTransaction{
			ContractorID:        contractorID,
			TransactionType:     models.CreditTransactionUsage,
			CreditsChange:       -1,
			CreditsBalanceAfter: balance - 1,
			BidID:               &bidID,
			Description:         "bid submission",
		}
		if err := s.creditRepo.Append(sessCtx, transaction); err != nil {
			return nil, err
		}

		return nil, nil
	})
	if err != nil {
		if !utils.IsInsufficientCreditsError(err) {
			s.logger.WithError(err).WithUserID(contractorID).Error("Failed to consume credit")
		}
		return err
	}

	s.logger.WithUserID(contractorID).WithBidID(bidID).Info("Credit consumed for bid submission")
	return nil
}

func (s *creditService) AddCredits(ctx context.Context, contractorID primitive.ObjectID, credits int, paymentTransactionID *primitive.ObjectID, description string) (*models.AddCreditResponse, error) {
	return s.grantCredits(ctx, contractorID, credits, models.CreditTransactionPurchase, paymentTransactionID, description)
}

// RefundCredit is the admin compensation path: one credit handed back outside
// the purchase flow, recorded with its own transaction type so the ledger
// distinguishes it from bought credits.
func (s *creditService) RefundCredit(ctx context.Context, contractorID primitive.ObjectID, description string) (*models.AddCreditResponse, error) {
	return s.grantCredits(ctx, contractorID, 1, models.CreditTransactionRefund, nil, description)
}

func (s *creditService) HasGrantForPayment(ctx context.Context, paymentTransactionID primitive.ObjectID) (bool, error) {
	grant, err := s.creditRepo.GetByPaymentTransaction(ctx, paymentTransactionID)
	if err != nil {
		return false, err
	}
	return grant != nil, nil
}

func (s *creditService) grantCredits(ctx context.Context, contractorID primitive.ObjectID, credits int, transactionType models.CreditTransactionType, paymentTransactionID *primitive.ObjectID, description string) (*models.AddCreditResponse, error) {
	if credits <= 0 {
		return nil, utils.NewValidationError("credits to add must be positive")
	}

	result, err := s.db.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		latest, err := s.creditRepo.GetLatestByContractor(sessCtx, contractorID)
		if err != nil {
			return nil, err
		}

		balance := 0
		if latest != nil {
			balance = latest.CreditsBalanceAfter
		}

		transaction := &models.CreditTransaction{
			ContractorID:         contractorID,
			TransactionType:      transactionType,
			CreditsChange:        credits,
			CreditsBalanceAfter:  balance + credits,
			PaymentTransactionID: paymentTransactionID,
			Description:          description,
		}
		if err := s.creditRepo.Append(sessCtx, transaction); err != nil {
			return nil, err
		}

		return transaction.CreditsBalanceAfter, nil
	})
	if err != nil {
		s.logger.WithError(err).WithUserID(contractorID).Error("Failed to add credits")
		return nil, err
	}

	newBalance, ok := result.(int)
	if !ok {
		return nil, fmt.Errorf("unexpected transaction result type %T", result)
	}

	s.logger.WithUserID(contractorID).WithField("credits", credits).Info("Credits added")

	return &models.AddCreditResponse{
		ContractorID: contractorID,
		CreditsAdded: credits,
		NewBalance:   newBalance,
	}, nil
}

func (s *creditService) GetHistory(ctx context.Context, contractorID primitive.ObjectID, params *utils.PaginationParams) ([]*models.CreditTransaction, int64, error) {
	return s.creditRepo.GetByContractor(ctx, contractorID, params)
}
