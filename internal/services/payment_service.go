package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"bidquotes/internal/config"
	"bidquotes/internal/models"
	"bidquotes/internal/repositories/interfaces"
	"bidquotes/internal/utils"
	"bidquotes/pkg/logger"
	"bidquotes/pkg/payment"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PaymentService owns the checkout flow for the two purchasable items: a
// single $70 bid submission and the 20-credit bundle. Webhook handling is
// idempotent on the checkout session id; Stripe redelivers events and the
// same session must never produce two ledger entries or two activations.
type PaymentService interface {
	CreateBidPaymentSession(ctx context.Context, contractorID, draftBidID primitive.ObjectID) (*models.CheckoutSessionResponse, error)
	CreateCreditPurchaseSession(ctx context.Context, contractorID primitive.ObjectID) (*models.CheckoutSessionResponse, error)
	HasPaidForBid(ctx context.Context, bidID primitive.ObjectID) (bool, error)
	HandleWebhookEvent(ctx context.Context, payload []byte, signature string) (*models.WebhookEventResponse, error)
	GetPaymentHistory(ctx context.Context, contractorID primitive.ObjectID, params *utils.PaginationParams) ([]*models.PaymentTransaction, int64, error)
}

type paymentService struct {
	paymentRepo           interfaces.PaymentRepository
	bidRepo               interfaces.BidRepository
	userRepo              interfaces.UserRepository
	contractorProfileRepo interfaces.ContractorProfileRepository
	creditService         CreditService
	bidService            BidService
	emailService          EmailService
	provider              payment.CheckoutProvider
	appConfig             *config.AppConfig
	currency              string
	logger                *logger.Logger
}

func NewPaymentService(
	paymentRepo interfaces.PaymentRepository,
	bidRepo interfaces.BidRepository,
	userRepo interfaces.UserRepository,
	contractorProfileRepo interfaces.ContractorProfileRepository,
	creditService CreditService,
	bidService BidService,
	emailService EmailService,
	provider payment.CheckoutProvider,
	appConfig *config.AppConfig,
	currency string,
	logger *logger.Logger,
) PaymentService {
	return &paymentService{
		paymentRepo:           paymentRepo,
		bidRepo:               bidRepo,
		userRepo:              userRepo,
		contractorProfileRepo: contractorProfileRepo,
		creditService:         creditService,
		bidService:            bidService,
		emailService:          emailService,
		provider:              provider,
		appConfig:             appConfig,
		currency:              currency,
		logger:                logger,
	}
}

// Metadata keys attached to every checkout session. The webhook relies on
// them to route the completed payment.
const (
	metaItemType         = "item_type"
	metaContractorID     = "contractor_id"
	metaJobID            = "job_id"
	metaBidID            = "bid_id"
	metaAmountCents      = "amount_cents"
	metaCreditsPurchased = "credits_purchased"
)

func (s *paymentService) CreateBidPaymentSession(ctx context.Context, contractorID, draftBidID primitive.ObjectID) (*models.CheckoutSessionResponse, error) {
	bid, err := s.bidRepo.GetByID(ctx, draftBidID)
	if err != nil {
		return nil, utils.NewStorageError("get bid", err)
	}
	if bid == nil || bid.ContractorID != contractorID {
		return nil, utils.NewNotFoundError("bid")
	}
	if bid.Status != models.BidStatusDraft {
		return nil, utils.NewValidationError("only draft bids require payment")
	}

	paid, err := s.paymentRepo.HasSucceededBidPayment(ctx, draftBidID)
	if err != nil {
		return nil, utils.NewStorageError("check bid payment", err)
	}
	if paid {
		return nil, utils.NewValidationError("bid payment already completed")
	}

	request := &payment.CheckoutSessionRequest{
		ProductName:   fmt.Sprintf("Bid submission fee (%s)", s.displayAmount(utils.BidPaymentAmountCents)),
		AmountCents:   utils.BidPaymentAmountCents,
		Currency:      s.currency,
		SuccessURL:    fmt.Sprintf("%s/contractor/bids/%s?payment=success", s.appConfig.ClientURL, draftBidID.Hex()),
		CancelURL:     fmt.Sprintf("%s/contractor/bids/%s?payment=cancelled", s.appConfig.ClientURL, draftBidID.Hex()),
		CustomerEmail: s.contractorEmail(ctx, contractorID),
		Metadata: map[string]string{
			metaItemType:     string(models.PaymentItemBid),
			metaContractorID: contractorID.Hex(),
			metaJobID:        bid.JobID.Hex(),
			metaBidID:        draftBidID.Hex(),
			metaAmountCents:  strconv.FormatInt(utils.BidPaymentAmountCents, 10),
		},
	}

	session, err := s.provider.CreateCheckoutSession(ctx, request)
	if err != nil {
		s.logger.WithError(err).WithBidID(draftBidID).Error("Failed to create bid payment session")
		return nil, utils.NewStorageError("create checkout session", err)
	}

	s.logger.WithBidID(draftBidID).WithField("session_id", session.SessionID).Info("Bid payment session created")

	return &models.CheckoutSessionResponse{
		SessionID:  session.SessionID,
		SessionURL: session.SessionURL,
	}, nil
}

func (s *paymentService) CreateCreditPurchaseSession(ctx context.Context, contractorID primitive.ObjectID) (*models.CheckoutSessionResponse, error) {
	request := &payment.CheckoutSessionRequest{
		ProductName:   fmt.Sprintf("Bid credit bundle (%d credits, %s)", utils.CreditPurchaseQuantity, s.displayAmount(utils.CreditPurchaseAmountCents)),
		AmountCents:   utils.CreditPurchaseAmountCents,
		Currency:      s.currency,
		SuccessURL:    fmt.Sprintf("%s/contractor/credits?payment=success", s.appConfig.ClientURL),
		CancelURL:     fmt.Sprintf("%s/contractor/credits?payment=cancelled", s.appConfig.ClientURL),
		CustomerEmail: s.contractorEmail(ctx, contractorID),
		Metadata: map[string]string{
			metaItemType:         string(models.PaymentItemCredit),
			metaContractorID:     contractorID.Hex(),
			metaAmountCents:      strconv.FormatInt(utils.CreditPurchaseAmountCents, 10),
			metaCreditsPurchased: strconv.Itoa(utils.CreditPurchaseQuantity),
		},
	}

	session, err := s.provider.CreateCheckoutSession(ctx, request)
	if err != nil {
		s.logger.WithError(err).WithUserID(contractorID).Error("Failed to create credit purchase session")
		return nil, utils.NewStorageError("create checkout session", err)
	}

	s.logger.WithUserID(contractorID).WithField("session_id", session.SessionID).Info("Credit purchase session created")

	return &models.CheckoutSessionResponse{
		SessionID:  session.SessionID,
		SessionURL: session.SessionURL,
	}, nil
}

func (s *paymentService) HasPaidForBid(ctx context.Context, bidID primitive.ObjectID) (bool, error) {
	return s.paymentRepo.HasSucceededBidPayment(ctx, bidID)
}

func (s *paymentService) HandleWebhookEvent(ctx context.Context, payload []byte, signature string) (*models.WebhookEventResponse, error) {
	event, err := s.provider.ValidateWebhook(ctx, payload, signature)
	if err != nil {
		s.logger.WithError(err).Warn("Webhook signature verification failed")
		return nil, utils.NewValidationError("invalid webhook signature")
	}

	switch event.EventType {
	case "checkout.session.completed":
		return s.handleCheckoutCompleted(ctx, event)
	case "payment_intent.payment_failed":
		return s.handlePaymentFailed(ctx, event)
	default:
		s.logger.WithField("event_type", event.EventType).Debug("Ignoring unhandled webhook event")
		return &models.WebhookEventResponse{
			Status:    utils.StatusSuccess,
			Message:   "event ignored",
			EventType: event.EventType,
			Processed: false,
		}, nil
	}
}

func (s *paymentService) handleCheckoutCompleted(ctx context.Context, event *payment.WebhookEvent) (*models.WebhookEventResponse, error) {
	sessionID := eventString(event.Data, "id")
	if sessionID == "" {
		return nil, utils.NewValidationError("webhook event missing session id")
	}

	// Idempotence gate: a session that already has a row was handled on a
	// previous delivery. The fulfillment is still re-verified because the
	// earlier delivery may have recorded the row and then crashed before the
	// bid activation or credit grant landed.
	existing, err := s.paymentRepo.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, utils.NewStorageError("check session", err)
	}
	if existing != nil {
		if existing.Status == models.PaymentStatusSucceeded {
			if err := s.ensureFulfilled(ctx, existing); err != nil {
				return nil, err
			}
		}
		s.logger.WithField("session_id", sessionID).Info("Duplicate webhook delivery, skipping")
		return &models.WebhookEventResponse{
			Status:    utils.StatusSuccess,
			Message:   "event already processed",
			EventType: event.EventType,
			Processed: false,
		}, nil
	}

	metadata := eventMetadata(event.Data)
	transaction, err := s.buildTransaction(sessionID, event, metadata)
	if err != nil {
		return nil, err
	}
	transaction.Status = models.PaymentStatusSucceeded

	if err := s.paymentRepo.Create(ctx, transaction); err != nil {
		return nil, utils.NewStorageError("record payment", err)
	}

	switch transaction.ItemType {
	case models.PaymentItemBid:
		if err := s.bidService.ActivateBidAfterPayment(ctx, *transaction.BidID); err != nil {
			s.logger.WithError(err).WithBidID(*transaction.BidID).Error("Failed to activate bid after payment")
			return nil, err
		}
	case models.PaymentItemCredit:
		result, err := s.creditService.AddCredits(ctx, transaction.ContractorID, transaction.CreditsPurchased, &transaction.ID, "credit bundle purchase")
		if err != nil {
			s.logger.WithError(err).WithUserID(transaction.ContractorID).Error("Failed to add purchased credits")
			return nil, err
		}
		s.notifyCreditsPurchased(ctx, transaction.ContractorID, result)
	}

	s.logger.WithFields(map[string]interface{}{
		"session_id": sessionID,
		"item_type":  transaction.ItemType,
		"amount":     transaction.Amount().StringFixed(2),
	}).Info("Checkout session processed")

	return &models.WebhookEventResponse{
		Status:    utils.StatusSuccess,
		Message:   "payment processed",
		EventType: event.EventType,
		Processed: true,
	}, nil
}

// ensureFulfilled re-applies the side effect of a succeeded payment row.
// ActivateBidAfterPayment is already a no-op on an active bid; the credit
// grant is guarded by the ledger row linked to the payment transaction.
func (s *paymentService) ensureFulfilled(ctx context.Context, transaction *models.PaymentTransaction) error {
	switch transaction.ItemType {
	case models.PaymentItemBid:
		if transaction.BidID == nil {
			return nil
		}
		return s.bidService.ActivateBidAfterPayment(ctx, *transaction.BidID)
	case models.PaymentItemCredit:
		granted, err := s.creditService.HasGrantForPayment(ctx, transaction.ID)
		if err != nil {
			return utils.NewStorageError("check credit grant", err)
		}
		if granted {
			return nil
		}
		result, err := s.creditService.AddCredits(ctx, transaction.ContractorID, transaction.CreditsPurchased, &transaction.ID, "credit bundle purchase")
		if err != nil {
			return err
		}
		s.logger.WithField("session_id", transaction.StripeSessionID).Warn("Credit grant completed on webhook redelivery")
		s.notifyCreditsPurchased(ctx, transaction.ContractorID, result)
	}
	return nil
}

// handlePaymentFailed records a failed attempt for reconciliation. The event
// only carries the payment intent, so the session is looked up through the
// provider; an unresolvable intent is logged and dropped rather than erroring
// the webhook.
func (s *paymentService) handlePaymentFailed(ctx context.Context, event *payment.WebhookEvent) (*models.WebhookEventResponse, error) {
	intentID := eventString(event.Data, "id")

	session, err := s.provider.FindSessionByPaymentIntent(ctx, intentID)
	if err != nil {
		s.logger.WithError(err).WithField("payment_intent", intentID).Warn("Failed to resolve session for failed payment")
		return nil, utils.NewStorageError("resolve checkout session", err)
	}
	if session == nil {
		s.logger.WithField("payment_intent", intentID).Warn("No checkout session found for failed payment intent")
		return &models.WebhookEventResponse{
			Status:    utils.StatusSuccess,
			Message:   "no matching session",
			EventType: event.EventType,
			Processed: false,
		}, nil
	}

	existing, err := s.paymentRepo.GetBySessionID(ctx, session.SessionID)
	if err != nil {
		return nil, utils.NewStorageError("check session", err)
	}
	if existing != nil {
		return &models.WebhookEventResponse{
			Status:    utils.StatusSuccess,
			Message:   "event already processed",
			EventType: event.EventType,
			Processed: false,
		}, nil
	}

	transaction, err := s.buildTransactionFromMetadata(session.SessionID, session.Metadata)
	if err != nil {
		s.logger.WithError(err).WithField("session_id", session.SessionID).Warn("Failed payment carries invalid metadata")
		return &models.WebhookEventResponse{
			Status:    utils.StatusSuccess,
			Message:   "invalid metadata",
			EventType: event.EventType,
			Processed: false,
		}, nil
	}
	transaction.StripePaymentIntentID = intentID
	transaction.Status = models.PaymentStatusFailed

	if err := s.paymentRepo.Create(ctx, transaction); err != nil {
		return nil, utils.NewStorageError("record failed payment", err)
	}

	s.logger.WithField("session_id", session.SessionID).Info("Failed payment recorded")

	return &models.WebhookEventResponse{
		Status:    utils.StatusSuccess,
		Message:   "failure recorded",
		EventType: event.EventType,
		Processed: true,
	}, nil
}

func (s *paymentService) GetPaymentHistory(ctx context.Context, contractorID primitive.ObjectID, params *utils.PaginationParams) ([]*models.PaymentTransaction, int64, error) {
	return s.paymentRepo.GetByContractorID(ctx, contractorID, params)
}

func (s *paymentService) buildTransaction(sessionID string, event *payment.WebhookEvent, metadata map[string]string) (*models.PaymentTransaction, error) {
	transaction, err := s.buildTransactionFromMetadata(sessionID, metadata)
	if err != nil {
		return nil, err
	}

	transaction.StripePaymentIntentID = eventString(event.Data, "payment_intent")
	if currency := eventString(event.Data, "currency"); currency != "" {
		transaction.Currency = currency
	}

	// Stripe's amount is authoritative; a mismatch with our metadata means
	// the session was not created by this service.
	if amountTotal, ok := event.Data["amount_total"].(float64); ok {
		stripeAmount := int64(amountTotal)
		if stripeAmount != transaction.AmountCents {
			return nil, utils.NewValidationError("checkout amount does not match expected amount")
		}
	}

	return transaction, nil
}

func (s *paymentService) buildTransactionFromMetadata(sessionID string, metadata map[string]string) (*models.PaymentTransaction, error) {
	itemType := models.PaymentItemType(metadata[metaItemType])
	if itemType != models.PaymentItemBid && itemType != models.PaymentItemCredit {
		return nil, utils.NewValidationError("unknown payment item type")
	}

	contractorID, err := primitive.ObjectIDFromHex(metadata[metaContractorID])
	if err != nil {
		return nil, utils.NewValidationError("invalid contractor id in metadata")
	}

	amountCents, err := strconv.ParseInt(metadata[metaAmountCents], 10, 64)
	if err != nil {
		return nil, utils.NewValidationError("invalid amount in metadata")
	}

	transaction := &models.PaymentTransaction{
		ContractorID:    contractorID,
		StripeSessionID: sessionID,
		ItemType:        itemType,
		AmountCents:     amountCents,
		Currency:        s.currency,
	}

	switch itemType {
	case models.PaymentItemBid:
		bidID, err := primitive.ObjectIDFromHex(metadata[metaBidID])
		if err != nil {
			return nil, utils.NewValidationError("invalid bid id in metadata")
		}
		transaction.BidID = &bidID

		if jobID, err := primitive.ObjectIDFromHex(metadata[metaJobID]); err == nil {
			transaction.JobID = &jobID
		}
	case models.PaymentItemCredit:
		credits, err := strconv.Atoi(metadata[metaCreditsPurchased])
		if err != nil || credits <= 0 {
			return nil, utils.NewValidationError("invalid credit quantity in metadata")
		}
		transaction.CreditsPurchased = credits
	}

	return transaction, nil
}

func (s *paymentService) displayAmount(cents int64) string {
	return utils.FormatCurrency(utils.CentsToDecimal(cents).InexactFloat64(), strings.ToUpper(s.currency))
}

func (s *paymentService) contractorEmail(ctx context.Context, contractorID primitive.ObjectID) string {
	if profile, err := s.contractorProfileRepo.GetByUserID(ctx, contractorID); err == nil && profile != nil && profile.Email != "" {
		return profile.Email
	}
	if user, err := s.userRepo.GetByID(ctx, contractorID); err == nil && user != nil {
		return user.Email
	}
	return ""
}

func (s *paymentService) notifyCreditsPurchased(ctx context.Context, contractorID primitive.ObjectID, result *models.AddCreditResponse) {
	email := s.contractorEmail(ctx, contractorID)
	if email == "" {
		return
	}
	if err := s.emailService.SendCreditsPurchased(ctx, email, result.CreditsAdded, result.NewBalance); err != nil {
		s.logger.WithError(err).WithUserID(contractorID).Warn("Failed to send credit purchase email")
	}
}

func eventString(data map[string]interface{}, key string) string {
	if value, ok := data[key].(string); ok {
		return value
	}
	return ""
}

func eventMetadata(data map[string]interface{}) map[string]string {
	metadata := make(map[string]string)
	raw, ok := data["metadata"].(map[string]interface{})
	if !ok {
		return metadata
	}
	for key, value := range raw {
		if str, ok := value.(string); ok {
			metadata[key] = str
		}
	}
	return metadata
}
