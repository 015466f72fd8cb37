package services

import (
	"context"
	"strconv"
	"testing"

	"bidquotes/internal/config"
	"bidquotes/internal/models"
	"bidquotes/internal/utils"
	"bidquotes/pkg/logger"
	"bidquotes/pkg/payment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type paymentFixture struct {
	payments *fakePaymentRepo
	bids     *fakeBidRepo
	jobs     *fakeJobRepo
	users    *fakeUserRepo
	credits  *fakeCreditRepo
	emails   *fakeEmailService
	provider *fakeCheckoutProvider
	svc      PaymentService

	buyerID      primitive.ObjectID
	contractorID primitive.ObjectID
	jobID        primitive.ObjectID
}

func newPaymentFixture() *paymentFixture {
	f := &paymentFixture{
		buyerID:      primitive.NewObjectID(),
		contractorID: primitive.NewObjectID(),
		jobID:        primitive.NewObjectID(),
	}
	f.payments = newFakePaymentRepo()
	f.bids = newFakeBidRepo()
	f.jobs = newFakeJobRepo(&models.Job{
		ID:            f.jobID,
		BuyerID:       f.buyerID,
		Title:         "Roof patch",
		JobType:       models.JobTypeRoofing,
		Status:        models.JobStatusOpen,
		MaxSelections: utils.MaxSelectionsPerJob,
	})
	f.users = newFakeUserRepo(
		&models.User{ID: f.buyerID, Email: "buyer@example.com", UserType: models.UserTypeBuyer},
		&models.User{ID: f.contractorID, Email: "contractor@example.com", UserType: models.UserTypeContractor},
	)
	f.credits = &fakeCreditRepo{}
	f.emails = &fakeEmailService{}
	f.provider = newFakeCheckoutProvider()

	log := logger.NewDefault()
	contractorProfiles := newFakeContractorProfileRepo()
	creditSvc := NewCreditService(f.credits, fakeTxRunner{}, log)
	bidSvc := NewBidService(f.bids, f.jobs, f.users, newFakeBuyerProfileRepo(), f.payments, creditSvc, f.emails, fakeTxRunner{}, log)
	f.svc = NewPaymentService(
		f.payments, f.bids, f.users, contractorProfiles,
		creditSvc, bidSvc, f.emails, f.provider,
		&config.AppConfig{ClientURL: "https://app.test"}, "cad", log,
	)
	return f
}

func (f *paymentFixture) seedDraftBid() *models.Bid {
	bid := &models.Bid{
		ID:               primitive.NewObjectID(),
		JobID:            f.jobID,
		ContractorID:     f.contractorID,
		Title:            "Patch and reseal",
		PriceMin:         500,
		PriceMax:         700,
		TimelineEstimate: "1 week",
		WorkDescription:  "work",
		Status:           models.BidStatusDraft,
	}
	f.bids.Create(context.Background(), bid)
	return bid
}

func checkoutCompletedEvent(sessionID string, amountCents int64, metadata map[string]interface{}) *payment.WebhookEvent {
	return &payment.WebhookEvent{
		EventID:   "evt_" + sessionID,
		EventType: "checkout.session.completed",
		Data: map[string]interface{}{
			"id":             sessionID,
			"payment_intent": "pi_" + sessionID,
			"currency":       "cad",
			"amount_total":   float64(amountCents),
			"metadata":       metadata,
		},
	}
}

func bidPaymentMetadata(contractorID, jobID, bidID primitive.ObjectID) map[string]interface{} {
	return map[string]interface{}{
		"item_type":     string(models.PaymentItemBid),
		"contractor_id": contractorID.Hex(),
		"job_id":        jobID.Hex(),
		"bid_id":        bidID.Hex(),
		"amount_cents":  strconv.FormatInt(utils.BidPaymentAmountCents, 10),
	}
}

func TestCreateBidPaymentSession(t *testing.T) {
	f := newPaymentFixture()
	bid := f.seedDraftBid()

	session, err := f.svc.CreateBidPaymentSession(context.Background(), f.contractorID, bid.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, session.SessionID)
	assert.NotEmpty(t, session.SessionURL)

	require.Len(t, f.provider.created, 1)
	request := f.provider.created[0]
	assert.Equal(t, int64(utils.BidPaymentAmountCents), request.AmountCents)
	assert.Equal(t, "cad", request.Currency)
	assert.Equal(t, string(models.PaymentItemBid), request.Metadata["item_type"])
	assert.Equal(t, bid.ID.Hex(), request.Metadata["bid_id"])
	assert.Contains(t, request.SuccessURL, "https://app.test/contractor/bids/"+bid.ID.Hex())
}

func TestCreateBidPaymentSessionGuards(t *testing.T) {
	f := newPaymentFixture()
	bid := f.seedDraftBid()

	// Wrong owner looks like a missing bid.
	_, err := f.svc.CreateBidPaymentSession(context.Background(), primitive.NewObjectID(), bid.ID)
	assert.True(t, utils.IsNotFoundError(err))

	// Already-live bids cannot be paid for again.
	f.bids.Update(context.Background(), bid.ID, map[string]interface{}{"status": models.BidStatusPending})
	_, err = f.svc.CreateBidPaymentSession(context.Background(), f.contractorID, bid.ID)
	assert.True(t, utils.IsValidationError(err))
}

func TestCreateBidPaymentSessionAlreadyPaid(t *testing.T) {
	f := newPaymentFixture()
	bid := f.seedDraftBid()
	f.payments.Create(context.Background(), &models.PaymentTransaction{
		ContractorID:    f.contractorID,
		StripeSessionID: "cs_done",
		ItemType:        models.PaymentItemBid,
		AmountCents:     utils.BidPaymentAmountCents,
		Status:          models.PaymentStatusSucceeded,
		BidID:           &bid.ID,
	})

	_, err := f.svc.CreateBidPaymentSession(context.Background(), f.contractorID, bid.ID)
	assert.True(t, utils.IsValidationError(err))
}

func TestCreateCreditPurchaseSession(t *testing.T) {
	f := newPaymentFixture()

	_, err := f.svc.CreateCreditPurchaseSession(context.Background(), f.contractorID)
	require.NoError(t, err)

	require.Len(t, f.provider.created, 1)
	request := f.provider.created[0]
	assert.Equal(t, int64(utils.CreditPurchaseAmountCents), request.AmountCents)
	assert.Equal(t, string(models.PaymentItemCredit), request.Metadata["item_type"])
	assert.Equal(t, strconv.Itoa(utils.CreditPurchaseQuantity), request.Metadata["credits_purchased"])
}

func TestWebhookBidPaymentActivatesBid(t *testing.T) {
	f := newPaymentFixture()
	bid := f.seedDraftBid()
	f.provider.webhookEvent = checkoutCompletedEvent("cs_1", utils.BidPaymentAmountCents,
		bidPaymentMetadata(f.contractorID, f.jobID, bid.ID))

	result, err := f.svc.HandleWebhookEvent(context.Background(), []byte("{}"), "sig")
	require.NoError(t, err)
	assert.True(t, result.Processed)

	assert.Equal(t, models.BidStatusPending, f.bids.get(bid.ID).Status)
	assert.Equal(t, 1, f.payments.count())

	row, err := f.payments.GetBySessionID(context.Background(), "cs_1")
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, models.PaymentStatusSucceeded, row.Status)
	assert.Equal(t, "pi_cs_1", row.StripePaymentIntentID)
}

func TestWebhookRedeliveryIsIdempotent(t *testing.T) {
	f := newPaymentFixture()
	bid := f.seedDraftBid()
	f.provider.webhookEvent = checkoutCompletedEvent("cs_1", utils.BidPaymentAmountCents,
		bidPaymentMetadata(f.contractorID, f.jobID, bid.ID))

	_, err := f.svc.HandleWebhookEvent(context.Background(), []byte("{}"), "sig")
	require.NoError(t, err)

	result, err := f.svc.HandleWebhookEvent(context.Background(), []byte("{}"), "sig")
	require.NoError(t, err)
	assert.False(t, result.Processed)
	assert.Equal(t, "event already processed", result.Message)
	assert.Equal(t, 1, f.payments.count(), "redelivery must not record a second transaction")
}

func TestWebhookRedeliveryCompletesBidActivation(t *testing.T) {
	// The first delivery recorded the payment row but crashed before the
	// bid was activated. Redelivery must finish the job.
	f := newPaymentFixture()
	bid := f.seedDraftBid()
	f.payments.Create(context.Background(), &models.PaymentTransaction{
		ContractorID:    f.contractorID,
		StripeSessionID: "cs_1",
		ItemType:        models.PaymentItemBid,
		AmountCents:     utils.BidPaymentAmountCents,
		Status:          models.PaymentStatusSucceeded,
		BidID:           &bid.ID,
	})
	f.provider.webhookEvent = checkoutCompletedEvent("cs_1", utils.BidPaymentAmountCents,
		bidPaymentMetadata(f.contractorID, f.jobID, bid.ID))

	result, err := f.svc.HandleWebhookEvent(context.Background(), []byte("{}"), "sig")
	require.NoError(t, err)
	assert.False(t, result.Processed)

	assert.Equal(t, models.BidStatusPending, f.bids.get(bid.ID).Status)
	assert.Equal(t, 1, f.payments.count(), "redelivery must not record a second transaction")
}

func TestWebhookRedeliveryCompletesCreditGrant(t *testing.T) {
	f := newPaymentFixture()
	row := &models.PaymentTransaction{
		ContractorID:     f.contractorID,
		StripeSessionID:  "cs_2",
		ItemType:         models.PaymentItemCredit,
		AmountCents:      utils.CreditPurchaseAmountCents,
		Status:           models.PaymentStatusSucceeded,
		CreditsPurchased: utils.CreditPurchaseQuantity,
	}
	f.payments.Create(context.Background(), row)
	f.provider.webhookEvent = checkoutCompletedEvent("cs_2", utils.CreditPurchaseAmountCents, map[string]interface{}{
		"item_type":         string(models.PaymentItemCredit),
		"contractor_id":     f.contractorID.Hex(),
		"amount_cents":      strconv.FormatInt(utils.CreditPurchaseAmountCents, 10),
		"credits_purchased": strconv.Itoa(utils.CreditPurchaseQuantity),
	})

	result, err := f.svc.HandleWebhookEvent(context.Background(), []byte("{}"), "sig")
	require.NoError(t, err)
	assert.False(t, result.Processed)

	rows := f.credits.rows(f.contractorID)
	require.Len(t, rows, 1)
	assert.Equal(t, utils.CreditPurchaseQuantity, rows[0].CreditsBalanceAfter)
	require.NotNil(t, rows[0].PaymentTransactionID)
	assert.Equal(t, row.ID, *rows[0].PaymentTransactionID)
	assert.Len(t, f.emails.byKind("credits_purchased"), 1)

	// A further redelivery finds the grant and adds nothing.
	_, err = f.svc.HandleWebhookEvent(context.Background(), []byte("{}"), "sig")
	require.NoError(t, err)
	assert.Len(t, f.credits.rows(f.contractorID), 1)
}

func TestWebhookCreditPurchaseAddsCredits(t *testing.T) {
	f := newPaymentFixture()
	f.provider.webhookEvent = checkoutCompletedEvent("cs_2", utils.CreditPurchaseAmountCents, map[string]interface{}{
		"item_type":         string(models.PaymentItemCredit),
		"contractor_id":     f.contractorID.Hex(),
		"amount_cents":      strconv.FormatInt(utils.CreditPurchaseAmountCents, 10),
		"credits_purchased": strconv.Itoa(utils.CreditPurchaseQuantity),
	})

	result, err := f.svc.HandleWebhookEvent(context.Background(), []byte("{}"), "sig")
	require.NoError(t, err)
	assert.True(t, result.Processed)

	rows := f.credits.rows(f.contractorID)
	require.Len(t, rows, 1)
	assert.Equal(t, utils.CreditPurchaseQuantity, rows[0].CreditsBalanceAfter)
	require.NotNil(t, rows[0].PaymentTransactionID)

	purchased := f.emails.byKind("credits_purchased")
	require.Len(t, purchased, 1)
	assert.Equal(t, "contractor@example.com", purchased[0].to)
}

func TestWebhookAmountMismatch(t *testing.T) {
	f := newPaymentFixture()
	bid := f.seedDraftBid()
	f.provider.webhookEvent = checkoutCompletedEvent("cs_3", 100,
		bidPaymentMetadata(f.contractorID, f.jobID, bid.ID))

	_, err := f.svc.HandleWebhookEvent(context.Background(), []byte("{}"), "sig")
	require.Error(t, err)
	assert.True(t, utils.IsValidationError(err))
	assert.Equal(t, 0, f.payments.count())
	assert.Equal(t, models.BidStatusDraft, f.bids.get(bid.ID).Status)
}

func TestWebhookUnknownItemType(t *testing.T) {
	f := newPaymentFixture()
	f.provider.webhookEvent = checkoutCompletedEvent("cs_4", 1000, map[string]interface{}{
		"item_type":     "gift_card",
		"contractor_id": f.contractorID.Hex(),
		"amount_cents":  "1000",
	})

	_, err := f.svc.HandleWebhookEvent(context.Background(), []byte("{}"), "sig")
	assert.True(t, utils.IsValidationError(err))
}

func TestWebhookInvalidSignature(t *testing.T) {
	f := newPaymentFixture()
	f.provider.webhookErr = assert.AnError

	_, err := f.svc.HandleWebhookEvent(context.Background(), []byte("{}"), "bad-sig")
	assert.True(t, utils.IsValidationError(err))
}

func TestWebhookIgnoresUnhandledEvents(t *testing.T) {
	f := newPaymentFixture()
	f.provider.webhookEvent = &payment.WebhookEvent{
		EventType: "customer.created",
		Data:      map[string]interface{}{},
	}

	result, err := f.svc.HandleWebhookEvent(context.Background(), []byte("{}"), "sig")
	require.NoError(t, err)
	assert.False(t, result.Processed)
}

func TestWebhookPaymentFailedRecordsRow(t *testing.T) {
	f := newPaymentFixture()
	bid := f.seedDraftBid()

	// Create a real session through the provider so the intent resolves.
	_, err := f.svc.CreateBidPaymentSession(context.Background(), f.contractorID, bid.ID)
	require.NoError(t, err)
	var sessionID string
	for id, session := range f.provider.sessions {
		sessionID = id
		session.PaymentIntentID = "pi_failed"
	}

	f.provider.webhookEvent = &payment.WebhookEvent{
		EventType: "payment_intent.payment_failed",
		Data:      map[string]interface{}{"id": "pi_failed"},
	}

	result, err := f.svc.HandleWebhookEvent(context.Background(), []byte("{}"), "sig")
	require.NoError(t, err)
	assert.True(t, result.Processed)

	row, err := f.payments.GetBySessionID(context.Background(), sessionID)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, models.PaymentStatusFailed, row.Status)
	assert.Equal(t, models.BidStatusDraft, f.bids.get(bid.ID).Status, "a failed payment never activates the bid")
}

func TestWebhookPaymentFailedUnknownIntent(t *testing.T) {
	f := newPaymentFixture()
	f.provider.webhookEvent = &payment.WebhookEvent{
		EventType: "payment_intent.payment_failed",
		Data:      map[string]interface{}{"id": "pi_unknown"},
	}

	result, err := f.svc.HandleWebhookEvent(context.Background(), []byte("{}"), "sig")
	require.NoError(t, err)
	assert.False(t, result.Processed)
	assert.Equal(t, 0, f.payments.count())
}
