package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// maxSlugAttempts bounds the -2, -3, ... suffix search before falling back
// to a random suffix
const maxSlugAttempts = 50

// Product list filter keys understood by the repository
const (
	filterCollectionID = "collection_id"
	filterUnitPriceGT  = "unit_price__gt"
	filterUnitPriceLT  = "unit_price__lt"
)

// ProductCacheKey is the cache key of a product detail response
func ProductCacheKey(id uuid.UUID) string {
	return "product:" + id.String()
}

// ProductService handles product use cases
type ProductService struct {
	productRepo    catalog.ProductRepository
	collectionRepo catalog.CollectionRepository
	promotionRepo  catalog.PromotionRepository
	slugger        Slugger
	events         shared.EventPublisher
	cache          ProductCache
	logger         *zap.Logger
}

// NewProductService creates a new ProductService. events and cache may be nil.
func NewProductService(
	productRepo catalog.ProductRepository,
	collectionRepo catalog.CollectionRepository,
	promotionRepo catalog.PromotionRepository,
	slugger Slugger,
	events shared.EventPublisher,
	cache ProductCache,
	logger *zap.Logger,
) *ProductService {
	return &ProductService{
		productRepo:    productRepo,
		collectionRepo: collectionRepo,
		promotionRepo:  promotionRepo,
		slugger:        slugger,
		events:         events,
		cache:          cache,
		logger:         logger,
	}
}

// Create creates a product with a unique slug derived from its title
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	if err := s.ensureCollection(ctx, req.CollectionID); err != nil {
		return nil, err
	}
	promotions, err := s.loadPromotions(ctx, req.PromotionIDs)
	if err != nil {
		return nil, err
	}
	slug, err := s.uniqueSlug(ctx, req.Title)
	if err != nil {
		return nil, err
	}

	product, err := catalog.NewProduct(req.Title, slug, *req.UnitPrice, req.Inventory, req.CollectionID)
	if err != nil {
		return nil, err
	}
	if req.Description != "" {
		product.SetDescription(req.Description)
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	if len(promotions) > 0 {
		if err := s.productRepo.ReplacePromotions(ctx, product.ID, req.PromotionIDs); err != nil {
			return nil, err
		}
		product.Promotions = promotions
	}
	s.publish(ctx, product)

	resp := ToProductResponse(product)
	return &resp, nil
}

// GetByID returns a product, served from the cache when possible
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	key := ProductCacheKey(id)
	if s.cache != nil {
		if data, ok := s.cache.Get(ctx, key); ok {
			var resp ProductResponse
			if err := json.Unmarshal(data, &resp); err == nil {
				return &resp, nil
			}
			s.cache.Delete(ctx, key)
		}
	}

	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	if s.cache != nil {
		if data, err := json.Marshal(resp); err == nil {
			s.cache.Set(ctx, key, data)
		}
	}
	return &resp, nil
}

// GetBySlug returns a product by slug
func (s *ProductService) GetBySlug(ctx context.Context, slug string) (*ProductResponse, error) {
	product, err := s.productRepo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// List returns a page of products
func (s *ProductService) List(ctx context.Context, f ProductListFilter) (*shared.Paginated[ProductResponse], error) {
	filter := shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		Search:   strings.TrimSpace(f.Search),
	}.Normalize()

	if f.CollectionID != nil {
		filter.Filters[filterCollectionID] = *f.CollectionID
	}
	if f.UnitPriceGT != nil {
		filter.Filters[filterUnitPriceGT] = *f.UnitPriceGT
	}
	if f.UnitPriceLT != nil {
		filter.Filters[filterUnitPriceLT] = *f.UnitPriceLT
	}
	filter.OrderBy, filter.OrderDir = parseOrdering(f.Ordering)

	products, err := s.productRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.productRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	page := shared.NewPaginated(ToProductResponses(products), total, filter.Page, filter.PageSize)
	return &page, nil
}

// Update applies the non-nil fields of req. A new title regenerates the slug.
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil && strings.TrimSpace(*req.Title) != product.Title {
		slug, err := s.uniqueSlug(ctx, *req.Title)
		if err != nil {
			return nil, err
		}
		if err := product.Rename(*req.Title, slug); err != nil {
			return nil, err
		}
	}
	if req.Description != nil {
		product.SetDescription(*req.Description)
	}
	if req.UnitPrice != nil {
		if err := product.SetUnitPrice(*req.UnitPrice); err != nil {
			return nil, err
		}
	}
	if req.Inventory != nil {
		if err := product.SetInventory(*req.Inventory); err != nil {
			return nil, err
		}
	}
	if req.CollectionID != nil && *req.CollectionID != product.CollectionID {
		if err := s.ensureCollection(ctx, *req.CollectionID); err != nil {
			return nil, err
		}
		if err := product.MoveToCollection(*req.CollectionID); err != nil {
			return nil, err
		}
	}
	var promotions []catalog.Promotion
	if req.PromotionIDs != nil {
		if promotions, err = s.loadPromotions(ctx, *req.PromotionIDs); err != nil {
			return nil, err
		}
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	if req.PromotionIDs != nil {
		if err := s.productRepo.ReplacePromotions(ctx, product.ID, *req.PromotionIDs); err != nil {
			return nil, err
		}
		product.Promotions = promotions
	}
	s.invalidate(ctx, product.ID)
	s.publish(ctx, product)

	resp := ToProductResponse(product)
	return &resp, nil
}

// Delete removes a product that no order references
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	n, err := s.productRepo.CountOrderItems(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return shared.NewDomainError("PRODUCT_IN_USE",
			"Product cannot be deleted because it is associated with an order item")
	}

	product.MarkDeleted()
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	s.publish(ctx, product)
	return nil
}

// ClearInventory sets inventory to zero for every listed product
func (s *ProductService) ClearInventory(ctx context.Context, ids []uuid.UUID) (int64, error) {
	updated, err := s.productRepo.ClearInventory(ctx, ids)
	if err != nil {
		return 0, err
	}
	for _, id := range ids {
		s.invalidate(ctx, id)
	}
	if s.events != nil {
		if err := s.events.Publish(ctx, catalog.NewInventoryClearedEvent(ids, updated)); err != nil {
			s.logger.Warn("failed to publish inventory cleared event", zap.Error(err))
		}
	}
	return updated, nil
}

// SetPromotions replaces the promotions linked to a product
func (s *ProductService) SetPromotions(ctx context.Context, id uuid.UUID, promotionIDs []uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	promotions, err := s.loadPromotions(ctx, promotionIDs)
	if err != nil {
		return nil, err
	}
	if err := s.productRepo.ReplacePromotions(ctx, id, promotionIDs); err != nil {
		return nil, err
	}
	product.Promotions = promotions
	s.invalidate(ctx, id)

	resp := ToProductResponse(product)
	return &resp, nil
}

// InvalidateCache drops the cached detail of each product, used after
// inventory changes made outside this service
func (s *ProductService) InvalidateCache(ctx context.Context, ids ...uuid.UUID) {
	for _, id := range ids {
		s.invalidate(ctx, id)
	}
}

func (s *ProductService) ensureCollection(ctx context.Context, id uuid.UUID) error {
	if _, err := s.collectionRepo.FindByID(ctx, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("INVALID_COLLECTION", "Collection does not exist")
		}
		return err
	}
	return nil
}

func (s *ProductService) loadPromotions(ctx context.Context, ids []uuid.UUID) ([]catalog.Promotion, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	unique := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		unique[id] = struct{}{}
	}
	promotions, err := s.promotionRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(promotions) != len(unique) {
		return nil, shared.NewDomainError("INVALID_PROMOTION", "One or more promotions do not exist")
	}
	return promotions, nil
}

// uniqueSlug returns the slug of title, suffixed -2, -3, ... until unused
func (s *ProductService) uniqueSlug(ctx context.Context, title string) (string, error) {
	base := s.slugger.Make(title)
	for n := 1; n <= maxSlugAttempts; n++ {
		candidate := base
		if n > 1 {
			candidate = fmt.Sprintf("%s-%d", base, n)
		}
		exists, err := s.productRepo.ExistsBySlug(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
	return base + "-" + uuid.NewString()[:8], nil
}

func (s *ProductService) invalidate(ctx context.Context, id uuid.UUID) {
	if s.cache != nil {
		s.cache.Delete(ctx, ProductCacheKey(id))
	}
}

func (s *ProductService) publish(ctx context.Context, product *catalog.Product) {
	events := product.PullDomainEvents()
	if s.events == nil || len(events) == 0 {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish product events",
			zap.String("product_id", product.ID.String()),
			zap.Error(err))
	}
}

// parseOrdering maps the public ordering parameter to a column and direction
func parseOrdering(ordering string) (string, string) {
	dir := "asc"
	if strings.HasPrefix(ordering, "-") {
		dir = "desc"
		ordering = ordering[1:]
	}
	switch ordering {
	case "unit_price":
		return "unit_price", dir
	case "last_update":
		return "updated_at", dir
	case "title":
		return "title", dir
	}
	return "", ""
}
