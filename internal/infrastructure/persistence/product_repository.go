package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Product list filter keys
const (
	FilterCollectionID  = "collection_id"
	FilterUnitPriceGT   = "unit_price__gt"
	FilterUnitPriceLT   = "unit_price__lt"
	FilterInventoryLT   = "inventory__lt"
	FilterPaymentStatus = "payment_status"
)

// productPromotion is a row of the product/promotion join table
type productPromotion struct {
	ProductID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	PromotionID uuid.UUID `gorm:"type:uuid;primaryKey"`
}

func (productPromotion) TableName() string {
	return "product_promotions"
}

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID, promotions included
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).Preload("Promotions").First(&product, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &product, nil
}

// FindBySlug finds a product by its slug
func (r *GormProductRepository) FindBySlug(ctx context.Context, slug string) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).Preload("Promotions").First(&product, "slug = ?", slug).Error; err != nil {
		return nil, translateError(err)
	}
	return &product, nil
}

// FindByIDs finds all products with the given IDs
func (r *GormProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	if len(ids) == 0 {
		return []catalog.Product{}, nil
	}
	var products []catalog.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// FindByIDForUpdate loads a product and locks its row (SELECT ... FOR UPDATE on postgres).
// Must run inside a transaction for the lock to be held.
func (r *GormProductRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	query := r.db.WithContext(ctx)
	if isPostgres(r.db) {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var product catalog.Product
	if err := query.First(&product, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &product, nil
}

// FindAll finds all products matching the filter
func (r *GormProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	var products []catalog.Product
	query := r.applyFilter(r.db.WithContext(ctx).Model(&catalog.Product{}), filter)
	query = applyOrder(query, filter, ProductSortFields, "title", "asc")
	query = applyPage(query, filter)
	if err := query.Preload("Promotions").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// Count counts products matching the filter
func (r *GormProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&catalog.Product{}), filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a product. Promotion links are managed by ReplacePromotions.
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return translateError(r.db.WithContext(ctx).Omit(clause.Associations).Save(product).Error)
}

// Delete removes a product together with the rows that cascade from it:
// cart items, reviews, images, promotion links and tags. Collections
// featuring the product lose their featured product.
func (r *GormProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Table("collections").Where("featured_product_id = ?", id).
			Update("featured_product_id", nil).Error; err != nil {
			return err
		}
		for _, table := range []string{"cart_items", "reviews", "product_images", "product_promotions"} {
			if err := tx.Exec("DELETE FROM "+table+" WHERE product_id = ?", id).Error; err != nil {
				return err
			}
		}
		if err := tx.Exec("DELETE FROM tagged_items WHERE object_type = ? AND object_id = ?", "product", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&catalog.Product{}, "id = ?", id)
		if result.Error != nil {
			return translateError(result.Error)
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// ExistsBySlug checks if a product with the given slug exists
func (r *GormProductRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&catalog.Product{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountByCollection counts products in a collection
func (r *GormProductRepository) CountByCollection(ctx context.Context, collectionID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&catalog.Product{}).
		Where("collection_id = ?", collectionID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountOrderItems counts order lines referencing the product
func (r *GormProductRepository) CountOrderItems(ctx context.Context, productID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Table("order_items").
		Where("product_id = ?", productID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ClearInventory bulk-sets inventory to zero
func (r *GormProductRepository) ClearInventory(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).Model(&catalog.Product{}).
		Where("id IN ?", ids).
		Updates(map[string]any{
			"inventory":  0,
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
			"version":    gorm.Expr("version + 1"),
		})
	return result.RowsAffected, result.Error
}

// ReplacePromotions replaces the promotion links of a product
func (r *GormProductRepository) ReplacePromotions(ctx context.Context, productID uuid.UUID, promotionIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", productID).Delete(&productPromotion{}).Error; err != nil {
			return err
		}
		if len(promotionIDs) == 0 {
			return nil
		}
		links := make([]productPromotion, len(promotionIDs))
		for i, id := range promotionIDs {
			links[i] = productPromotion{ProductID: productID, PromotionID: id}
		}
		return tx.Create(&links).Error
	})
}

func (r *GormProductRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		cond, args := containsPattern(r.db, filter.Search, "title", "description")
		query = query.Where(cond, args...)
	}
	for key, value := range filter.Filters {
		switch key {
		case FilterCollectionID:
			query = query.Where("collection_id = ?", value)
		case FilterUnitPriceGT:
			query = query.Where("unit_price > ?", value)
		case FilterUnitPriceLT:
			query = query.Where("unit_price < ?", value)
		case FilterInventoryLT:
			query = query.Where("inventory < ?", value)
		}
	}
	return query
}

// translateError maps gorm errors onto domain errors
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.ErrAlreadyExists
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return shared.NewDomainError("REFERENCE_CONFLICT", "The resource is referenced by other records")
	}
	return err
}

// Ensure GormProductRepository implements ProductRepository
var _ catalog.ProductRepository = (*GormProductRepository)(nil)
