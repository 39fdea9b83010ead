package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
)

// ReviewService handles reviews nested under a product
type ReviewService struct {
	reviewRepo  catalog.ReviewRepository
	productRepo catalog.ProductRepository
}

// NewReviewService creates a new ReviewService
func NewReviewService(reviewRepo catalog.ReviewRepository, productRepo catalog.ProductRepository) *ReviewService {
	return &ReviewService{reviewRepo: reviewRepo, productRepo: productRepo}
}

// Create adds a review to a product
func (s *ReviewService) Create(ctx context.Context, productID uuid.UUID, req ReviewRequest) (*ReviewResponse, error) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, err
	}
	r, err := catalog.NewReview(productID, req.Name, req.Description)
	if err != nil {
		return nil, err
	}
	if err := s.reviewRepo.Save(ctx, r); err != nil {
		return nil, err
	}
	resp := ToReviewResponse(r)
	return &resp, nil
}

// List returns a page of a product's reviews, newest first
func (s *ReviewService) List(ctx context.Context, productID uuid.UUID, f ListFilter) (*shared.Paginated[ReviewResponse], error) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, err
	}
	filter := f.ToDomain()
	reviews, err := s.reviewRepo.FindByProduct(ctx, productID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.reviewRepo.CountByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	items := make([]ReviewResponse, len(reviews))
	for i := range reviews {
		items[i] = ToReviewResponse(&reviews[i])
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Get returns a review of the product. A review of another product is not found.
func (s *ReviewService) Get(ctx context.Context, productID, reviewID uuid.UUID) (*ReviewResponse, error) {
	r, err := s.find(ctx, productID, reviewID)
	if err != nil {
		return nil, err
	}
	resp := ToReviewResponse(r)
	return &resp, nil
}

// Update applies the fields present in req
func (s *ReviewService) Update(ctx context.Context, productID, reviewID uuid.UUID, req PatchReviewRequest) (*ReviewResponse, error) {
	r, err := s.find(ctx, productID, reviewID)
	if err != nil {
		return nil, err
	}
	name, description := r.Name, r.Description
	if req.Name != nil {
		name = *req.Name
	}
	if req.Description != nil {
		description = *req.Description
	}
	if err := r.Update(name, description); err != nil {
		return nil, err
	}
	if err := s.reviewRepo.Save(ctx, r); err != nil {
		return nil, err
	}
	resp := ToReviewResponse(r)
	return &resp, nil
}

// Delete removes a review of the product
func (s *ReviewService) Delete(ctx context.Context, productID, reviewID uuid.UUID) error {
	if _, err := s.find(ctx, productID, reviewID); err != nil {
		return err
	}
	return s.reviewRepo.Delete(ctx, reviewID)
}

func (s *ReviewService) find(ctx context.Context, productID, reviewID uuid.UUID) (*catalog.Review, error) {
	r, err := s.reviewRepo.FindByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if !r.BelongsTo(productID) {
		return nil, shared.ErrNotFound
	}
	return r, nil
}
