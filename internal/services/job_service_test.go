package services

import (
	"context"
	"strings"
	"testing"

	"bidquotes/internal/models"
	"bidquotes/internal/utils"
	"bidquotes/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type jobFixture struct {
	jobs               *fakeJobRepo
	bids               *fakeBidRepo
	users              *fakeUserRepo
	contractorProfiles *fakeContractorProfileRepo
	emails             *fakeEmailService
	store              *fakeStorageProvider
	svc                JobService

	buyerID      primitive.ObjectID
	contractorID primitive.ObjectID
}

func newJobFixture() *jobFixture {
	f := &jobFixture{
		buyerID:      primitive.NewObjectID(),
		contractorID: primitive.NewObjectID(),
	}
	f.jobs = newFakeJobRepo()
	f.bids = newFakeBidRepo()
	f.users = newFakeUserRepo(
		&models.User{ID: f.buyerID, Email: "buyer@example.com", UserType: models.UserTypeBuyer},
		&models.User{ID: f.contractorID, Email: "contractor@example.com", UserType: models.UserTypeContractor},
	)
	f.contractorProfiles = newFakeContractorProfileRepo()
	f.emails = &fakeEmailService{}
	f.store = newFakeStorageProvider()

	f.svc = NewJobService(f.jobs, f.bids, f.users, f.contractorProfiles, f.emails, f.store, fakeTxRunner{}, logger.NewDefault())
	return f
}

func (f *jobFixture) seedJob(status models.JobStatus) *models.Job {
	job := &models.Job{
		ID:              primitive.NewObjectID(),
		BuyerID:         f.buyerID,
		Title:           "Kitchen repaint",
		JobType:         models.JobTypePainting,
		JobBudget:       "$3,000.00",
		Description:     "Repaint the kitchen and hallway.",
		LocationAddress: "12 Main St",
		City:            "Toronto",
		Status:          status,
		MaxSelections:   utils.MaxSelectionsPerJob,
	}
	f.jobs.Create(context.Background(), job)
	return job
}

func (f *jobFixture) seedBid(jobID primitive.ObjectID, status models.BidStatus, selected bool) *models.Bid {
	bid := &models.Bid{
		ID:           primitive.NewObjectID(),
		JobID:        jobID,
		ContractorID: f.contractorID,
		Title:        "Paint crew bid",
		PriceMin:     1000,
		PriceMax:     1500,
		Status:       status,
		IsSelected:   selected,
	}
	f.bids.Create(context.Background(), bid)
	return bid
}

func TestCreateJobPostsImmediately(t *testing.T) {
	f := newJobFixture()

	job, err := f.svc.CreateJob(context.Background(), f.buyerID, &models.JobCreateRequest{
		Title:           "Deck staining",
		JobType:         models.JobTypeBackyard,
		JobBudget:       "$800.00",
		Description:     "Stain the back deck.",
		LocationAddress: "44 Oak Ave",
		City:            "Ottawa",
	})
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusOpen, job.Status)
	assert.Equal(t, utils.MaxSelectionsPerJob, job.MaxSelections)
}

func TestCreateJobInvalidType(t *testing.T) {
	f := newJobFixture()

	_, err := f.svc.CreateJob(context.Background(), f.buyerID, &models.JobCreateRequest{
		Title:           "Mystery work",
		JobType:         "Excavation",
		JobBudget:       "$800.00",
		Description:     "dig",
		LocationAddress: "44 Oak Ave",
		City:            "Ottawa",
	})
	assert.True(t, utils.IsValidationError(err))
}

func TestPostDraft(t *testing.T) {
	f := newJobFixture()
	draft := f.seedJob(models.JobStatusDraft)

	job, err := f.svc.PostDraft(context.Background(), f.buyerID, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusOpen, job.Status)
	assert.Equal(t, models.JobStatusOpen, f.jobs.status(draft.ID))
}

func TestPostDraftIncomplete(t *testing.T) {
	f := newJobFixture()
	draft, err := f.svc.SaveJobDraft(context.Background(), f.buyerID, &models.JobDraftCreateRequest{Title: "Just a title"})
	require.NoError(t, err)

	_, err = f.svc.PostDraft(context.Background(), f.buyerID, draft.ID)
	assert.True(t, utils.IsValidationError(err))
	assert.Equal(t, models.JobStatusDraft, f.jobs.status(draft.ID))
}

func TestPostNonDraft(t *testing.T) {
	f := newJobFixture()
	job := f.seedJob(models.JobStatusOpen)

	_, err := f.svc.PostDraft(context.Background(), f.buyerID, job.ID)
	assert.True(t, utils.IsValidationError(err))
}

func TestUpdateJobAfterSelection(t *testing.T) {
	f := newJobFixture()
	job := f.seedJob(models.JobStatusWaitingConfirmation)

	title := "New title"
	_, err := f.svc.UpdateJob(context.Background(), f.buyerID, job.ID, &models.JobUpdateRequest{Title: &title})
	assert.True(t, utils.IsValidationError(err))
}

func TestCloseJob(t *testing.T) {
	f := newJobFixture()
	job := f.seedJob(models.JobStatusOpen)

	require.NoError(t, f.svc.CloseJob(context.Background(), f.buyerID, job.ID))
	assert.Equal(t, models.JobStatusClosed, f.jobs.status(job.ID))

	err := f.svc.CloseJob(context.Background(), f.buyerID, job.ID)
	assert.True(t, utils.IsValidationError(err))
}

func TestSelectBid(t *testing.T) {
	f := newJobFixture()
	f.contractorProfiles.Create(context.Background(), &models.ContractorProfile{
		UserID:         f.contractorID,
		ContractorName: "Paint Co",
		Email:          "crew@paintco.example",
	})
	job := f.seedJob(models.JobStatusOpen)
	bid := f.seedBid(job.ID, models.BidStatusPending, false)

	require.NoError(t, f.svc.SelectBid(context.Background(), f.buyerID, job.ID, bid.ID))

	stored := f.bids.get(bid.ID)
	assert.Equal(t, models.BidStatusSelected, stored.Status)
	assert.True(t, stored.IsSelected)
	assert.Equal(t, models.JobStatusWaitingConfirmation, f.jobs.status(job.ID))
	assert.Equal(t, 1, f.jobs.selectionCount(job.ID))

	selected := f.emails.byKind("bid_selected")
	require.Len(t, selected, 1)
	assert.Equal(t, "crew@paintco.example", selected[0].to)
}

func TestSelectBidCapReached(t *testing.T) {
	f := newJobFixture()
	job := f.seedJob(models.JobStatusOpen)
	f.jobs.IncrementSelectionCount(context.Background(), job.ID, utils.MaxSelectionsPerJob)
	bid := f.seedBid(job.ID, models.BidStatusPending, false)

	err := f.svc.SelectBid(context.Background(), f.buyerID, job.ID, bid.ID)
	require.Error(t, err)
	assert.EqualError(t, err, utils.ErrMaxSelectionsReached)
}

func TestSelectBidRequiresPending(t *testing.T) {
	f := newJobFixture()
	job := f.seedJob(models.JobStatusOpen)
	bid := f.seedBid(job.ID, models.BidStatusDraft, false)

	err := f.svc.SelectBid(context.Background(), f.buyerID, job.ID, bid.ID)
	assert.True(t, utils.IsValidationError(err))
}

func TestSelectBidFromAnotherJob(t *testing.T) {
	f := newJobFixture()
	job := f.seedJob(models.JobStatusOpen)
	other := f.seedJob(models.JobStatusOpen)
	bid := f.seedBid(other.ID, models.BidStatusPending, false)

	err := f.svc.SelectBid(context.Background(), f.buyerID, job.ID, bid.ID)
	assert.True(t, utils.IsNotFoundError(err))
}

func TestSelectBidWhileWaitingConfirmation(t *testing.T) {
	f := newJobFixture()
	job := f.seedJob(models.JobStatusWaitingConfirmation)
	bid := f.seedBid(job.ID, models.BidStatusPending, false)

	err := f.svc.SelectBid(context.Background(), f.buyerID, job.ID, bid.ID)
	assert.True(t, utils.IsValidationError(err))
}

func TestCancelBidSelection(t *testing.T) {
	f := newJobFixture()
	job := f.seedJob(models.JobStatusWaitingConfirmation)
	f.jobs.IncrementSelectionCount(context.Background(), job.ID, 1)
	bid := f.seedBid(job.ID, models.BidStatusSelected, true)

	require.NoError(t, f.svc.CancelBidSelection(context.Background(), f.buyerID, job.ID))

	stored := f.bids.get(bid.ID)
	assert.Equal(t, models.BidStatusPending, stored.Status)
	assert.False(t, stored.IsSelected)
	assert.Equal(t, models.JobStatusOpen, f.jobs.status(job.ID))
	assert.Equal(t, 1, f.jobs.selectionCount(job.ID), "a cancelled selection stays spent")
}

func TestCancelSelectionThenSelectAnother(t *testing.T) {
	f := newJobFixture()
	job := f.seedJob(models.JobStatusOpen)
	first := f.seedBid(job.ID, models.BidStatusPending, false)
	second := &models.Bid{
		ID:           primitive.NewObjectID(),
		JobID:        job.ID,
		ContractorID: primitive.NewObjectID(),
		Status:       models.BidStatusPending,
	}
	f.bids.Create(context.Background(), second)

	require.NoError(t, f.svc.SelectBid(context.Background(), f.buyerID, job.ID, first.ID))
	require.NoError(t, f.svc.CancelBidSelection(context.Background(), f.buyerID, job.ID))
	require.NoError(t, f.svc.SelectBid(context.Background(), f.buyerID, job.ID, second.ID))

	assert.False(t, f.bids.get(first.ID).IsSelected)
	assert.True(t, f.bids.get(second.ID).IsSelected)
	assert.Equal(t, 2, f.jobs.selectionCount(job.ID))
}

func TestCancelWithoutSelection(t *testing.T) {
	f := newJobFixture()
	job := f.seedJob(models.JobStatusOpen)

	err := f.svc.CancelBidSelection(context.Background(), f.buyerID, job.ID)
	assert.True(t, utils.IsValidationError(err))
}

func TestGetJobDetailVisibility(t *testing.T) {
	f := newJobFixture()
	draft := f.seedJob(models.JobStatusDraft)

	_, err := f.svc.GetJobDetail(context.Background(), draft.ID, f.contractorID, models.UserTypeContractor)
	assert.True(t, utils.IsNotFoundError(err), "drafts are invisible to everyone but the owner")

	detail, err := f.svc.GetJobDetail(context.Background(), draft.ID, f.buyerID, models.UserTypeBuyer)
	require.NoError(t, err)
	assert.Equal(t, draft.ID, detail.Job.ID)
}

func TestGetJobDetailBidsOnlyForOwner(t *testing.T) {
	f := newJobFixture()
	job := f.seedJob(models.JobStatusOpen)
	f.seedBid(job.ID, models.BidStatusPending, false)
	f.seedBid(job.ID, models.BidStatusDraft, false)

	detail, err := f.svc.GetJobDetail(context.Background(), job.ID, f.buyerID, models.UserTypeBuyer)
	require.NoError(t, err)
	assert.Equal(t, 1, detail.BidCount, "drafts never appear in the count")
	require.Len(t, detail.Bids, 1)

	detail, err = f.svc.GetJobDetail(context.Background(), job.ID, f.contractorID, models.UserTypeContractor)
	require.NoError(t, err)
	assert.Equal(t, 1, detail.BidCount)
	assert.Empty(t, detail.Bids, "competing bids are hidden from contractors")
}

func TestAddJobImage(t *testing.T) {
	f := newJobFixture()
	job := f.seedJob(models.JobStatusOpen)

	image, err := f.svc.AddJobImage(context.Background(), f.buyerID, job.ID, "before.jpg", "image/jpeg", strings.NewReader("fake"), 4)
	require.NoError(t, err)
	assert.Contains(t, image.StoragePath, "jobs/"+job.ID.Hex()+"/")
	assert.NotEmpty(t, image.ImageURL)
	assert.Equal(t, 0, image.ImageOrder)
}

func TestAddJobImageLimits(t *testing.T) {
	f := newJobFixture()
	job := f.seedJob(models.JobStatusOpen)

	_, err := f.svc.AddJobImage(context.Background(), f.buyerID, job.ID, "notes.pdf", "application/pdf", strings.NewReader("x"), 1)
	assert.True(t, utils.IsValidationError(err))

	_, err = f.svc.AddJobImage(context.Background(), f.buyerID, job.ID, "huge.jpg", "image/jpeg", strings.NewReader("x"), utils.MaxImageSize+1)
	assert.True(t, utils.IsValidationError(err))

	for i := 0; i < utils.MaxImagesPerJob; i++ {
		_, err = f.svc.AddJobImage(context.Background(), f.buyerID, job.ID, "a.jpg", "image/jpeg", strings.NewReader("x"), 1)
		require.NoError(t, err)
	}
	_, err = f.svc.AddJobImage(context.Background(), f.buyerID, job.ID, "one-too-many.jpg", "image/jpeg", strings.NewReader("x"), 1)
	assert.True(t, utils.IsValidationError(err))
}

func TestDeleteJobCleansUpImages(t *testing.T) {
	f := newJobFixture()
	job := f.seedJob(models.JobStatusOpen)
	image, err := f.svc.AddJobImage(context.Background(), f.buyerID, job.ID, "before.jpg", "image/jpeg", strings.NewReader("x"), 1)
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteJob(context.Background(), f.buyerID, job.ID))

	stored, err := f.jobs.GetByID(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Nil(t, stored)
	assert.Contains(t, f.store.deleted, image.StoragePath)

	images, err := f.jobs.GetImagesByJobID(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Empty(t, images)
}

func TestDeleteJobNotOwned(t *testing.T) {
	f := newJobFixture()
	job := f.seedJob(models.JobStatusOpen)

	err := f.svc.DeleteJob(context.Background(), primitive.NewObjectID(), job.ID)
	assert.True(t, utils.IsNotFoundError(err))
}

func TestGetOpenJobsExcludesDraftsAndClosed(t *testing.T) {
	f := newJobFixture()
	f.seedJob(models.JobStatusOpen)
	f.seedJob(models.JobStatusFullBid)
	f.seedJob(models.JobStatusDraft)
	f.seedJob(models.JobStatusClosed)
	f.seedJob(models.JobStatusConfirmed)

	cards, total, err := f.svc.GetOpenJobs(context.Background(), &utils.PaginationParams{Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, cards, 2)
}
