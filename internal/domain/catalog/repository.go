package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// ProductRepository defines persistence operations for products
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindBySlug(ctx context.Context, slug string) (*Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)
	// FindByIDForUpdate loads the product and locks its row until the
	// surrounding transaction ends
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Product, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
	CountByCollection(ctx context.Context, collectionID uuid.UUID) (int64, error)
	// CountOrderItems counts order lines referencing the product
	CountOrderItems(ctx context.Context, productID uuid.UUID) (int64, error)
	// ClearInventory sets inventory to zero for the given products and returns the rows updated
	ClearInventory(ctx context.Context, ids []uuid.UUID) (int64, error)
	ReplacePromotions(ctx context.Context, productID uuid.UUID, promotionIDs []uuid.UUID) error
}

// CollectionRepository defines persistence operations for collections
type CollectionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Collection, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Collection, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, collection *Collection) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ProductCounts returns the number of products per collection
	ProductCounts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int64, error)
}

// PromotionRepository defines persistence operations for promotions
type PromotionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Promotion, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Promotion, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Promotion, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, promotion *Promotion) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ReviewRepository defines persistence operations for reviews
type ReviewRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Review, error)
	FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]Review, error)
	CountByProduct(ctx context.Context, productID uuid.UUID) (int64, error)
	Save(ctx context.Context, review *Review) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProductImageRepository defines persistence operations for product images
type ProductImageRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ProductImage, error)
	FindActiveByProduct(ctx context.Context, productID uuid.UUID) ([]ProductImage, error)
	CountByProduct(ctx context.Context, productID uuid.UUID) (int64, error)
	Save(ctx context.Context, image *ProductImage) error
	Delete(ctx context.Context, id uuid.UUID) error
}
