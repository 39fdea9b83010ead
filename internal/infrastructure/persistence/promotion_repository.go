package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormPromotionRepository implements PromotionRepository using GORM
type GormPromotionRepository struct {
	db *gorm.DB
}

// NewGormPromotionRepository creates a new GormPromotionRepository
func NewGormPromotionRepository(db *gorm.DB) *GormPromotionRepository {
	return &GormPromotionRepository{db: db}
}

// FindByID finds a promotion by its ID
func (r *GormPromotionRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Promotion, error) {
	var promotion catalog.Promotion
	if err := r.db.WithContext(ctx).First(&promotion, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &promotion, nil
}

// FindByIDs finds promotions by IDs
func (r *GormPromotionRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Promotion, error) {
	if len(ids) == 0 {
		return []catalog.Promotion{}, nil
	}
	var promotions []catalog.Promotion
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&promotions).Error; err != nil {
		return nil, err
	}
	return promotions, nil
}

// FindAll lists promotions
func (r *GormPromotionRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Promotion, error) {
	var promotions []catalog.Promotion
	query := r.applyFilter(r.db.WithContext(ctx).Model(&catalog.Promotion{}), filter)
	query = applyPage(applyOrder(query, filter, PromotionSortFields, "created_at", "desc"), filter)
	if err := query.Find(&promotions).Error; err != nil {
		return nil, err
	}
	return promotions, nil
}

// Count counts promotions matching the filter
func (r *GormPromotionRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&catalog.Promotion{}), filter).Count(&count).Error
	return count, err
}

// Save creates or updates a promotion
func (r *GormPromotionRepository) Save(ctx context.Context, promotion *catalog.Promotion) error {
	return translateError(r.db.WithContext(ctx).Save(promotion).Error)
}

// Delete removes a promotion and its product links
func (r *GormPromotionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("promotion_id = ?", id).Delete(&productPromotion{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&catalog.Promotion{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

func (r *GormPromotionRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		cond, args := containsPattern(r.db, filter.Search, "description")
		query = query.Where(cond, args...)
	}
	return query
}

var _ catalog.PromotionRepository = (*GormPromotionRepository)(nil)
