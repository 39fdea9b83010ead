package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
)

// PromotionService handles promotion CRUD
type PromotionService struct {
	repo catalog.PromotionRepository
}

// NewPromotionService creates a new PromotionService
func NewPromotionService(repo catalog.PromotionRepository) *PromotionService {
	return &PromotionService{repo: repo}
}

// Create creates a promotion
func (s *PromotionService) Create(ctx context.Context, req PromotionRequest) (*PromotionResponse, error) {
	p, err := catalog.NewPromotion(req.Description, req.Discount)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, err
	}
	resp := ToPromotionResponse(p)
	return &resp, nil
}

// GetByID returns a promotion
func (s *PromotionService) GetByID(ctx context.Context, id uuid.UUID) (*PromotionResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToPromotionResponse(p)
	return &resp, nil
}

// List returns a page of promotions
func (s *PromotionService) List(ctx context.Context, f ListFilter) (*shared.Paginated[PromotionResponse], error) {
	filter := f.ToDomain()
	promotions, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]PromotionResponse, len(promotions))
	for i := range promotions {
		items[i] = ToPromotionResponse(&promotions[i])
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Update replaces a promotion's fields
func (s *PromotionService) Update(ctx context.Context, id uuid.UUID, req PromotionRequest) (*PromotionResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := p.Update(req.Description, req.Discount); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, err
	}
	resp := ToPromotionResponse(p)
	return &resp, nil
}

// Delete removes a promotion and its product links
func (s *PromotionService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
