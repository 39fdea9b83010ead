package catalog

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestReviewService_Create(t *testing.T) {
	reviews := new(MockReviewRepository)
	products := new(MockProductRepository)
	svc := NewReviewService(reviews, products)
	productID := uuid.New()

	products.On("FindByID", mock.Anything, productID).Return(&catalog.Product{}, nil)
	reviews.On("Save", mock.Anything, mock.AnythingOfType("*catalog.Review")).Return(nil)

	resp, err := svc.Create(t.Context(), productID, ReviewRequest{Name: "Ana", Description: "Great"})
	require.NoError(t, err)
	assert.Equal(t, productID, resp.ProductID)
	assert.Equal(t, time.Now().Format(time.DateOnly), resp.Date)
}

func TestReviewService_CreateForMissingProduct(t *testing.T) {
	reviews := new(MockReviewRepository)
	products := new(MockProductRepository)
	svc := NewReviewService(reviews, products)

	products.On("FindByID", mock.Anything, mock.Anything).Return(nil, shared.ErrNotFound)

	_, err := svc.Create(t.Context(), uuid.New(), ReviewRequest{Name: "Ana", Description: "Great"})
	assert.ErrorIs(t, err, shared.ErrNotFound)
	reviews.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestReviewService_ScopedToProduct(t *testing.T) {
	reviews := new(MockReviewRepository)
	svc := NewReviewService(reviews, new(MockProductRepository))

	r, err := catalog.NewReview(uuid.New(), "Ana", "Great")
	require.NoError(t, err)
	reviews.On("FindByID", mock.Anything, r.ID).Return(r, nil)

	_, err = svc.Get(t.Context(), uuid.New(), r.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	err = svc.Delete(t.Context(), uuid.New(), r.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	reviews.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)

	got, err := svc.Get(t.Context(), r.ProductID, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.Name)
}

func TestReviewService_PatchKeepsOmittedFields(t *testing.T) {
	reviews := new(MockReviewRepository)
	svc := NewReviewService(reviews, new(MockProductRepository))

	r, err := catalog.NewReview(uuid.New(), "Ana", "Great")
	require.NoError(t, err)
	reviews.On("FindByID", mock.Anything, r.ID).Return(r, nil)
	reviews.On("Save", mock.Anything, r).Return(nil)

	description := "Still great"
	resp, err := svc.Update(t.Context(), r.ProductID, r.ID, PatchReviewRequest{Description: &description})
	require.NoError(t, err)
	assert.Equal(t, "Ana", resp.Name)
	assert.Equal(t, "Still great", resp.Description)
}

func TestPromotionService(t *testing.T) {
	repo := new(MockPromotionRepository)
	svc := NewPromotionService(repo)

	repo.On("Save", mock.Anything, mock.AnythingOfType("*catalog.Promotion")).Return(nil)
	created, err := svc.Create(t.Context(), PromotionRequest{Description: "Summer", Discount: 0.15})
	require.NoError(t, err)
	assert.Equal(t, "Summer", created.Description)

	_, err = svc.Create(t.Context(), PromotionRequest{Description: "Bad", Discount: -1})
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "INVALID_DISCOUNT", de.Code)

	repo.On("FindByID", mock.Anything, mock.Anything).Return(nil, shared.ErrNotFound)
	_, err = svc.Update(t.Context(), uuid.New(), PromotionRequest{Description: "Winter"})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
