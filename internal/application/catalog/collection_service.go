package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
)

// CollectionService handles collection use cases
type CollectionService struct {
	collectionRepo catalog.CollectionRepository
	productRepo    catalog.ProductRepository
	events         shared.EventPublisher
}

// NewCollectionService creates a new CollectionService
func NewCollectionService(
	collectionRepo catalog.CollectionRepository,
	productRepo catalog.ProductRepository,
	events shared.EventPublisher,
) *CollectionService {
	return &CollectionService{
		collectionRepo: collectionRepo,
		productRepo:    productRepo,
		events:         events,
	}
}

// Create creates a collection
func (s *CollectionService) Create(ctx context.Context, req CollectionRequest) (*CollectionResponse, error) {
	c, err := catalog.NewCollection(req.Title)
	if err != nil {
		return nil, err
	}
	if req.FeaturedProductID != nil {
		if err := s.ensureProduct(ctx, *req.FeaturedProductID); err != nil {
			return nil, err
		}
		c.Feature(req.FeaturedProductID)
	}
	if err := s.collectionRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	s.publish(ctx, c)

	resp := ToCollectionResponse(c, 0)
	return &resp, nil
}

// GetByID returns a collection with its product count
func (s *CollectionService) GetByID(ctx context.Context, id uuid.UUID) (*CollectionResponse, error) {
	c, err := s.collectionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	count, err := s.productRepo.CountByCollection(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToCollectionResponse(c, count)
	return &resp, nil
}

// List returns a page of collections ordered by title
func (s *CollectionService) List(ctx context.Context, f ListFilter) (*shared.Paginated[CollectionResponse], error) {
	filter := f.ToDomain()
	collections, err := s.collectionRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.collectionRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(collections))
	for i, c := range collections {
		ids[i] = c.ID
	}
	counts, err := s.collectionRepo.ProductCounts(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]CollectionResponse, len(collections))
	for i := range collections {
		items[i] = ToCollectionResponse(&collections[i], counts[collections[i].ID])
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Update replaces title and featured product
func (s *CollectionService) Update(ctx context.Context, id uuid.UUID, req CollectionRequest) (*CollectionResponse, error) {
	clearFeatured := req.FeaturedProductID == nil
	return s.Patch(ctx, id, PatchCollectionRequest{
		Title:             &req.Title,
		FeaturedProductID: req.FeaturedProductID,
		ClearFeatured:     clearFeatured,
	})
}

// Patch applies the fields present in req
func (s *CollectionService) Patch(ctx context.Context, id uuid.UUID, req PatchCollectionRequest) (*CollectionResponse, error) {
	c, err := s.collectionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		if err := c.Rename(*req.Title); err != nil {
			return nil, err
		}
	}
	switch {
	case req.FeaturedProductID != nil:
		if err := s.ensureProduct(ctx, *req.FeaturedProductID); err != nil {
			return nil, err
		}
		c.Feature(req.FeaturedProductID)
	case req.ClearFeatured:
		c.Feature(nil)
	}
	if err := s.collectionRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	s.publish(ctx, c)
	return s.GetByID(ctx, id)
}

// Delete removes an empty collection
func (s *CollectionService) Delete(ctx context.Context, id uuid.UUID) error {
	c, err := s.collectionRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	count, err := s.productRepo.CountByCollection(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return shared.NewDomainError("COLLECTION_NOT_EMPTY",
			"Collection cannot be deleted because it includes one or more products")
	}
	if err := s.collectionRepo.Delete(ctx, id); err != nil {
		return err
	}
	if s.events != nil {
		_ = s.events.Publish(ctx, catalog.NewCollectionChangedEvent(catalog.EventTypeCollectionDeleted, c))
	}
	return nil
}

func (s *CollectionService) ensureProduct(ctx context.Context, id uuid.UUID) error {
	if _, err := s.productRepo.FindByID(ctx, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("INVALID_PRODUCT", "Featured product does not exist")
		}
		return err
	}
	return nil
}

func (s *CollectionService) publish(ctx context.Context, c *catalog.Collection) {
	events := c.PullDomainEvents()
	if s.events != nil && len(events) > 0 {
		_ = s.events.Publish(ctx, events...)
	}
}
