package services

import (
	"context"
	"testing"

	"bidquotes/internal/models"
	"bidquotes/internal/utils"
	"bidquotes/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newProfileFixture() (ProfileService, *fakeBuyerProfileRepo, *fakeContractorProfileRepo) {
	buyers := newFakeBuyerProfileRepo()
	contractors := newFakeContractorProfileRepo()
	svc := NewProfileService(buyers, contractors, logger.NewDefault())
	return svc, buyers, contractors
}

func TestSaveBuyerContactInfoCreate(t *testing.T) {
	svc, _, _ := newProfileFixture()
	userID := primitive.NewObjectID()

	info, err := svc.SaveBuyerContactInfo(context.Background(), userID, &models.ContactInfoRequest{
		Action:       models.ContactInfoActionCreate,
		ContactEmail: "buyer@example.com",
		PhoneNumber:  "555-0101",
	})
	require.NoError(t, err)
	assert.Equal(t, "buyer@example.com", info.ContactEmail)
	assert.Equal(t, "555-0101", info.PhoneNumber)

	// A second create against the same user is an explicit error, not an
	// upsert.
	_, err = svc.SaveBuyerContactInfo(context.Background(), userID, &models.ContactInfoRequest{
		Action:       models.ContactInfoActionCreate,
		ContactEmail: "other@example.com",
	})
	assert.True(t, utils.IsValidationError(err))
}

func TestSaveBuyerContactInfoCreateRequiresEmail(t *testing.T) {
	svc, _, _ := newProfileFixture()

	_, err := svc.SaveBuyerContactInfo(context.Background(), primitive.NewObjectID(), &models.ContactInfoRequest{
		Action:      models.ContactInfoActionCreate,
		PhoneNumber: "555-0101",
	})
	assert.True(t, utils.IsValidationError(err))
}

func TestSaveBuyerContactInfoUpdate(t *testing.T) {
	svc, _, _ := newProfileFixture()
	userID := primitive.NewObjectID()

	_, err := svc.SaveBuyerContactInfo(context.Background(), userID, &models.ContactInfoRequest{
		Action:       models.ContactInfoActionCreate,
		ContactEmail: "buyer@example.com",
	})
	require.NoError(t, err)

	info, err := svc.SaveBuyerContactInfo(context.Background(), userID, &models.ContactInfoRequest{
		Action:      models.ContactInfoActionUpdate,
		PhoneNumber: "555-0202",
	})
	require.NoError(t, err)
	assert.Equal(t, "buyer@example.com", info.ContactEmail, "untouched fields survive a partial update")
	assert.Equal(t, "555-0202", info.PhoneNumber)
}

func TestSaveBuyerContactInfoUpdateMissing(t *testing.T) {
	svc, _, _ := newProfileFixture()

	_, err := svc.SaveBuyerContactInfo(context.Background(), primitive.NewObjectID(), &models.ContactInfoRequest{
		Action:       models.ContactInfoActionUpdate,
		ContactEmail: "buyer@example.com",
	})
	assert.True(t, utils.IsNotFoundError(err))
}

func TestSaveBuyerContactInfoInvalidAction(t *testing.T) {
	svc, _, _ := newProfileFixture()

	_, err := svc.SaveBuyerContactInfo(context.Background(), primitive.NewObjectID(), &models.ContactInfoRequest{
		Action:       "upsert",
		ContactEmail: "buyer@example.com",
	})
	assert.True(t, utils.IsValidationError(err))
}

func TestSaveContractorContactInfoCreateRequiresName(t *testing.T) {
	svc, _, _ := newProfileFixture()

	_, err := svc.SaveContractorContactInfo(context.Background(), primitive.NewObjectID(), &models.ContactInfoRequest{
		Action:       models.ContactInfoActionCreate,
		ContactEmail: "crew@example.com",
	})
	assert.True(t, utils.IsValidationError(err))
}

func TestSaveContractorContactInfoRoundTrip(t *testing.T) {
	svc, _, _ := newProfileFixture()
	userID := primitive.NewObjectID()

	info, err := svc.SaveContractorContactInfo(context.Background(), userID, &models.ContactInfoRequest{
		Action:       models.ContactInfoActionCreate,
		ContactEmail: "crew@example.com",
		PhoneNumber:  "555-0303",
		Name:         "Crew Co",
	})
	require.NoError(t, err)
	assert.Equal(t, "Crew Co", info.Name)

	info, err = svc.SaveContractorContactInfo(context.Background(), userID, &models.ContactInfoRequest{
		Action: models.ContactInfoActionUpdate,
		Name:   "Crew Co Ltd",
	})
	require.NoError(t, err)
	assert.Equal(t, "Crew Co Ltd", info.Name)
	assert.Equal(t, "crew@example.com", info.ContactEmail)

	got, err := svc.GetContractorContactInfo(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "Crew Co Ltd", got.Name)
}

func TestGetContactInfoMissing(t *testing.T) {
	svc, _, _ := newProfileFixture()

	_, err := svc.GetBuyerContactInfo(context.Background(), primitive.NewObjectID())
	assert.True(t, utils.IsNotFoundError(err))

	_, err = svc.GetContractorContactInfo(context.Background(), primitive.NewObjectID())
	assert.True(t, utils.IsNotFoundError(err))
}
