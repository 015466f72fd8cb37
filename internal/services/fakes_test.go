package services

import (
	"context"
	"errors"
	"sync"

	"bidquotes/internal/models"
	"bidquotes/internal/utils"
	"bidquotes/pkg/payment"
	"bidquotes/pkg/storage"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// In-memory fakes for the repository interfaces. They let the service logic
// run without a database; the transaction runner simply executes the callback
// against the same fakes.

type fakeTxRunner struct{}

func (fakeTxRunner) WithTransaction(ctx context.Context, fn func(sessCtx mongo.SessionContext) (interface{}, error)) (interface{}, error) {
	return fn(mongo.NewSessionContext(ctx, nil))
}

// --- users ---

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[primitive.ObjectID]*models.User)}
	for _, u := range users {
		cp := *u
		r.users[u.ID] = &cp
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByExternalAuthID(_ context.Context, externalAuthID string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ExternalAuthID == externalAuthID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) Update(_ context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return errors.New("user not found")
	}
	for key, value := range updates {
		switch key {
		case "email":
			u.Email = value.(string)
		case "user_type":
			u.UserType = value.(models.UserType)
		}
	}
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

// --- profiles ---

type fakeBuyerProfileRepo struct {
	mu       sync.Mutex
	profiles map[primitive.ObjectID]*models.BuyerProfile
}

func newFakeBuyerProfileRepo(profiles ...*models.BuyerProfile) *fakeBuyerProfileRepo {
	r := &fakeBuyerProfileRepo{profiles: make(map[primitive.ObjectID]*models.BuyerProfile)}
	for _, p := range profiles {
		cp := *p
		r.profiles[p.UserID] = &cp
	}
	return r
}

func (r *fakeBuyerProfileRepo) Create(_ context.Context, profile *models.BuyerProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if profile.ID.IsZero() {
		profile.ID = primitive.NewObjectID()
	}
	cp := *profile
	r.profiles[profile.UserID] = &cp
	return nil
}

func (r *fakeBuyerProfileRepo) GetByUserID(_ context.Context, userID primitive.ObjectID) (*models.BuyerProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.profiles[userID]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeBuyerProfileRepo) Update(_ context.Context, userID primitive.ObjectID, updates map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return errors.New("profile not found")
	}
	for key, value := range updates {
		switch key {
		case "contact_email":
			p.ContactEmail = value.(string)
		case "phone_number":
			p.PhoneNumber = value.(string)
		}
	}
	return nil
}

func (r *fakeBuyerProfileRepo) Delete(_ context.Context, userID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.profiles, userID)
	return nil
}

type fakeContractorProfileRepo struct {
	mu       sync.Mutex
	profiles map[primitive.ObjectID]*models.ContractorProfile
}

func newFakeContractorProfileRepo(profiles ...*models.ContractorProfile) *fakeContractorProfileRepo {
	r := &fakeContractorProfileRepo{profiles: make(map[primitive.ObjectID]*models.ContractorProfile)}
	for _, p := range profiles {
		cp := *p
		r.profiles[p.UserID] = &cp
	}
	return r
}

func (r *fakeContractorProfileRepo) Create(_ context.Context, profile *models.ContractorProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if profile.ID.IsZero() {
		profile.ID = primitive.NewObjectID()
	}
	cp := *profile
	r.profiles[profile.UserID] = &cp
	return nil
}

func (r *fakeContractorProfileRepo) GetByUserID(_ context.Context, userID primitive.ObjectID) (*models.ContractorProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.profiles[userID]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeContractorProfileRepo) Update(_ context.Context, userID primitive.ObjectID, updates map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return errors.New("profile not found")
	}
	for key, value := range updates {
		switch key {
		case "contractor_name":
			p.ContractorName = value.(string)
		case "email":
			p.Email = value.(string)
		case "phone":
			p.Phone = value.(string)
		}
	}
	return nil
}

func (r *fakeContractorProfileRepo) Delete(_ context.Context, userID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.profiles, userID)
	return nil
}

// --- jobs ---

type fakeJobRepo struct {
	mu     sync.Mutex
	jobs   map[primitive.ObjectID]*models.Job
	images map[primitive.ObjectID]*models.JobImage
}

func newFakeJobRepo(jobs ...*models.Job) *fakeJobRepo {
	r := &fakeJobRepo{
		jobs:   make(map[primitive.ObjectID]*models.Job),
		images: make(map[primitive.ObjectID]*models.JobImage),
	}
	for _, j := range jobs {
		cp := *j
		r.jobs[j.ID] = &cp
	}
	return r
}

func (r *fakeJobRepo) Create(_ context.Context, job *models.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job.ID.IsZero() {
		job.ID = primitive.NewObjectID()
	}
	cp := *job
	r.jobs[job.ID] = &cp
	return nil
}

func (r *fakeJobRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if j, ok := r.jobs[id]; ok {
		cp := *j
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeJobRepo) Update(_ context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return errors.New("job not found")
	}
	for key, value := range updates {
		switch key {
		case "title":
			j.Title = value.(string)
		case "job_type":
			j.JobType = value.(models.JobType)
		case "job_budget":
			j.JobBudget = value.(string)
		case "description":
			j.Description = value.(string)
		case "location_address":
			j.LocationAddress = value.(string)
		case "city":
			j.City = value.(string)
		case "other_requirements":
			j.OtherRequirements = value.(string)
		case "status":
			j.Status = value.(models.JobStatus)
		}
	}
	return nil
}

func (r *fakeJobRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.jobs, id)
	return nil
}

func (r *fakeJobRepo) GetByBuyerID(_ context.Context, buyerID primitive.ObjectID, _ *utils.PaginationParams) ([]*models.Job, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Job
	for _, j := range r.jobs {
		if j.BuyerID == buyerID {
			cp := *j
			out = append(out, &cp)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeJobRepo) GetBiddableJobs(_ context.Context, _ *utils.PaginationParams) ([]*models.Job, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Job
	for _, j := range r.jobs {
		if j.Status == models.JobStatusOpen || j.Status == models.JobStatusFullBid {
			cp := *j
			out = append(out, &cp)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeJobRepo) UpdateStatus(_ context.Context, id primitive.ObjectID, status models.JobStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return errors.New("job not found")
	}
	j.Status = status
	return nil
}

func (r *fakeJobRepo) IncrementSelectionCount(_ context.Context, id primitive.ObjectID, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return errors.New("job not found")
	}
	j.SelectionCount += delta
	return nil
}

func (r *fakeJobRepo) AddImage(_ context.Context, image *models.JobImage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if image.ID.IsZero() {
		image.ID = primitive.NewObjectID()
	}
	cp := *image
	r.images[image.ID] = &cp
	return nil
}

func (r *fakeJobRepo) GetImagesByJobID(_ context.Context, jobID primitive.ObjectID) ([]*models.JobImage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.JobImage
	for _, img := range r.images {
		if img.JobID == jobID {
			cp := *img
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeJobRepo) DeleteImage(_ context.Context, imageID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.images, imageID)
	return nil
}

func (r *fakeJobRepo) DeleteImagesByJobID(_ context.Context, jobID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, img := range r.images {
		if img.JobID == jobID {
			delete(r.images, id)
		}
	}
	return nil
}

func (r *fakeJobRepo) status(id primitive.ObjectID) models.JobStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.jobs[id].Status
}

func (r *fakeJobRepo) selectionCount(id primitive.ObjectID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.jobs[id].SelectionCount
}

// --- bids ---

type fakeBidRepo struct {
	mu   sync.Mutex
	bids map[primitive.ObjectID]*models.Bid
}

func newFakeBidRepo(bids ...*models.Bid) *fakeBidRepo {
	r := &fakeBidRepo{bids: make(map[primitive.ObjectID]*models.Bid)}
	for _, b := range bids {
		cp := *b
		r.bids[b.ID] = &cp
	}
	return r
}

func (r *fakeBidRepo) Create(_ context.Context, bid *models.Bid) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if bid.ID.IsZero() {
		bid.ID = primitive.NewObjectID()
	}
	cp := *bid
	r.bids[bid.ID] = &cp
	return nil
}

func (r *fakeBidRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.Bid, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.bids[id]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeBidRepo) Update(_ context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bids[id]
	if !ok {
		return errors.New("bid not found")
	}
	for key, value := range updates {
		switch key {
		case "title":
			b.Title = value.(string)
		case "price_min":
			b.PriceMin = value.(float64)
		case "price_max":
			b.PriceMax = value.(float64)
		case "timeline_estimate":
			b.TimelineEstimate = value.(string)
		case "work_description":
			b.WorkDescription = value.(string)
		case "additional_notes":
			b.AdditionalNotes = value.(string)
		case "status":
			b.Status = value.(models.BidStatus)
		case "is_selected":
			b.IsSelected = value.(bool)
		}
	}
	return nil
}

func (r *fakeBidRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.bids, id)
	return nil
}

func (r *fakeBidRepo) GetVisibleByJobID(_ context.Context, jobID primitive.ObjectID) ([]*models.Bid, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Bid
	for _, b := range r.bids {
		if b.JobID == jobID && b.Status != models.BidStatusDraft {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeBidRepo) GetByJobAndContractor(_ context.Context, jobID, contractorID primitive.ObjectID) (*models.Bid, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bids {
		if b.JobID == jobID && b.ContractorID == contractorID {
			cp := *b
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeBidRepo) GetSelectedByJobID(_ context.Context, jobID primitive.ObjectID) (*models.Bid, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bids {
		if b.JobID == jobID && b.IsSelected {
			cp := *b
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeBidRepo) CountActiveForJob(_ context.Context, jobID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, b := range r.bids {
		if b.JobID == jobID && b.Status.CountsTowardCap() {
			count++
		}
	}
	return count, nil
}

func (r *fakeBidRepo) GetByContractorID(_ context.Context, contractorID primitive.ObjectID, _ *utils.PaginationParams) ([]*models.Bid, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Bid
	for _, b := range r.bids {
		if b.ContractorID == contractorID {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeBidRepo) SetSelected(_ context.Context, id primitive.ObjectID, selected bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bids[id]
	if !ok {
		return errors.New("bid not found")
	}
	b.IsSelected = selected
	if selected {
		b.Status = models.BidStatusSelected
	} else {
		b.Status = models.BidStatusPending
	}
	return nil
}

func (r *fakeBidRepo) DeclineOthersForJob(_ context.Context, jobID, exceptBidID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bids {
		if b.JobID != jobID || b.ID == exceptBidID {
			continue
		}
		if b.Status == models.BidStatusDraft || b.Status == models.BidStatusDeclined {
			continue
		}
		b.Status = models.BidStatusDeclined
		b.IsSelected = false
	}
	return nil
}

func (r *fakeBidRepo) ClearSelectionForJob(_ context.Context, jobID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bids {
		if b.JobID == jobID && b.IsSelected {
			b.IsSelected = false
			b.Status = models.BidStatusPending
		}
	}
	return nil
}

func (r *fakeBidRepo) get(id primitive.ObjectID) *models.Bid {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.bids[id]; ok {
		cp := *b
		return &cp
	}
	return nil
}

// --- credits ---

type fakeCreditRepo struct {
	mu     sync.Mutex
	ledger []*models.CreditTransaction
}

func (r *fakeCreditRepo) Append(_ context.Context, transaction *models.CreditTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if transaction.ID.IsZero() {
		transaction.ID = primitive.NewObjectID()
	}
	cp := *transaction
	r.ledger = append(r.ledger, &cp)
	return nil
}

func (r *fakeCreditRepo) GetLatestByContractor(_ context.Context, contractorID primitive.ObjectID) (*models.CreditTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.ledger) - 1; i >= 0; i-- {
		if r.ledger[i].ContractorID == contractorID {
			cp := *r.ledger[i]
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeCreditRepo) GetByPaymentTransaction(_ context.Context, paymentTransactionID primitive.ObjectID) (*models.CreditTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, entry := range r.ledger {
		if entry.PaymentTransactionID != nil && *entry.PaymentTransactionID == paymentTransactionID {
			cp := *entry
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeCreditRepo) GetByContractor(_ context.Context, contractorID primitive.ObjectID, _ *utils.PaginationParams) ([]*models.CreditTransaction, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.CreditTransaction
	for _, entry := range r.ledger {
		if entry.ContractorID == contractorID {
			cp := *entry
			out = append(out, &cp)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeCreditRepo) rows(contractorID primitive.ObjectID) []*models.CreditTransaction {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.CreditTransaction
	for _, entry := range r.ledger {
		if entry.ContractorID == contractorID {
			cp := *entry
			out = append(out, &cp)
		}
	}
	return out
}

// seedBalance appends a purchase row so the contractor starts with a balance.
func (r *fakeCreditRepo) seedBalance(contractorID primitive.ObjectID, credits int) {
	r.Append(context.Background(), &models.CreditTransaction{
		ContractorID:        contractorID,
		TransactionType:     models.CreditTransactionPurchase,
		CreditsChange:       credits,
		CreditsBalanceAfter: credits,
		Description:         "seed",
	})
}

// --- payments ---

type fakePaymentRepo struct {
	mu           sync.Mutex
	transactions map[primitive.ObjectID]*models.PaymentTransaction
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{transactions: make(map[primitive.ObjectID]*models.PaymentTransaction)}
}

func (r *fakePaymentRepo) Create(_ context.Context, transaction *models.PaymentTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.transactions {
		if existing.StripeSessionID == transaction.StripeSessionID {
			return errors.New("duplicate session id")
		}
	}
	if transaction.ID.IsZero() {
		transaction.ID = primitive.NewObjectID()
	}
	cp := *transaction
	r.transactions[transaction.ID] = &cp
	return nil
}

func (r *fakePaymentRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.PaymentTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.transactions[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, nil
}

func (r *fakePaymentRepo) GetBySessionID(_ context.Context, sessionID string) (*models.PaymentTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.transactions {
		if t.StripeSessionID == sessionID {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakePaymentRepo) UpdateStatus(_ context.Context, id primitive.ObjectID, status models.PaymentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.transactions[id]
	if !ok {
		return errors.New("transaction not found")
	}
	t.Status = status
	return nil
}

func (r *fakePaymentRepo) HasSucceededBidPayment(_ context.Context, bidID primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.transactions {
		if t.BidID != nil && *t.BidID == bidID && t.Status == models.PaymentStatusSucceeded {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakePaymentRepo) GetByContractorID(_ context.Context, contractorID primitive.ObjectID, _ *utils.PaginationParams) ([]*models.PaymentTransaction, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.PaymentTransaction
	for _, t := range r.transactions {
		if t.ContractorID == contractorID {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakePaymentRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.transactions)
}

// --- email ---

type sentEmail struct {
	kind string
	to   string
}

type fakeEmailService struct {
	mu   sync.Mutex
	sent []sentEmail
}

func (s *fakeEmailService) record(kind, to string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, sentEmail{kind: kind, to: to})
	return nil
}

func (s *fakeEmailService) SendBidReceived(_ context.Context, to, _ string) error {
	return s.record("bid_received", to)
}

func (s *fakeEmailService) SendBidSelected(_ context.Context, to, _ string) error {
	return s.record("bid_selected", to)
}

func (s *fakeEmailService) SendBidConfirmed(_ context.Context, to, _ string) error {
	return s.record("bid_confirmed", to)
}

func (s *fakeEmailService) SendBidDeclined(_ context.Context, to, _ string) error {
	return s.record("bid_declined", to)
}

func (s *fakeEmailService) SendCreditsPurchased(_ context.Context, to string, _, _ int) error {
	return s.record("credits_purchased", to)
}

func (s *fakeEmailService) byKind(kind string) []sentEmail {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []sentEmail
	for _, e := range s.sent {
		if e.kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// --- checkout provider ---

type fakeCheckoutProvider struct {
	mu       sync.Mutex
	created  []*payment.CheckoutSessionRequest
	sessions map[string]*payment.CheckoutSessionResponse

	webhookEvent *payment.WebhookEvent
	webhookErr   error
}

func newFakeCheckoutProvider() *fakeCheckoutProvider {
	return &fakeCheckoutProvider{sessions: make(map[string]*payment.CheckoutSessionResponse)}
}

func (p *fakeCheckoutProvider) CreateCheckoutSession(_ context.Context, request *payment.CheckoutSessionRequest) (*payment.CheckoutSessionResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.created = append(p.created, request)
	session := &payment.CheckoutSessionResponse{
		SessionID:  primitive.NewObjectID().Hex(),
		SessionURL: "https://checkout.test/session",
		Metadata:   request.Metadata,
	}
	p.sessions[session.SessionID] = session
	return session, nil
}

func (p *fakeCheckoutProvider) GetCheckoutSession(_ context.Context, sessionID string) (*payment.CheckoutSessionResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sessions[sessionID], nil
}

func (p *fakeCheckoutProvider) FindSessionByPaymentIntent(_ context.Context, paymentIntentID string) (*payment.CheckoutSessionResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, session := range p.sessions {
		if session.PaymentIntentID == paymentIntentID {
			return session, nil
		}
	}
	return nil, nil
}

func (p *fakeCheckoutProvider) ValidateWebhook(_ context.Context, _ []byte, _ string) (*payment.WebhookEvent, error) {
	if p.webhookErr != nil {
		return nil, p.webhookErr
	}
	return p.webhookEvent, nil
}

// --- storage ---

type fakeStorageProvider struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
}

func newFakeStorageProvider() *fakeStorageProvider {
	return &fakeStorageProvider{objects: make(map[string][]byte)}
}

func (p *fakeStorageProvider) Upload(_ context.Context, request *storage.UploadRequest) (*storage.UploadResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.objects[request.Key] = nil
	return &storage.UploadResponse{
		Key:  request.Key,
		URL:  "https://cdn.test/" + request.Key,
		Size: request.Size,
	}, nil
}

func (p *fakeStorageProvider) Delete(_ context.Context, key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.objects, key)
	p.deleted = append(p.deleted, key)
	return nil
}

func (p *fakeStorageProvider) PublicURL(key string) string {
	return "https://cdn.test/" + key
}
