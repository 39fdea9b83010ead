package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormCollectionRepository implements CollectionRepository using GORM
type GormCollectionRepository struct {
	db *gorm.DB
}

// NewGormCollectionRepository creates a new GormCollectionRepository
func NewGormCollectionRepository(db *gorm.DB) *GormCollectionRepository {
	return &GormCollectionRepository{db: db}
}

// FindByID finds a collection by its ID
func (r *GormCollectionRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Collection, error) {
	var collection catalog.Collection
	if err := r.db.WithContext(ctx).First(&collection, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &collection, nil
}

// FindAll finds collections ordered by title by default
func (r *GormCollectionRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Collection, error) {
	var collections []catalog.Collection
	query := r.applyFilter(r.db.WithContext(ctx).Model(&catalog.Collection{}), filter)
	query = applyPage(applyOrder(query, filter, CollectionSortFields, "title", "asc"), filter)
	if err := query.Find(&collections).Error; err != nil {
		return nil, err
	}
	return collections, nil
}

// Count counts collections matching the filter
func (r *GormCollectionRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&catalog.Collection{}), filter).Count(&count).Error
	return count, err
}

// Save creates or updates a collection
func (r *GormCollectionRepository) Save(ctx context.Context, collection *catalog.Collection) error {
	return translateError(r.db.WithContext(ctx).Save(collection).Error)
}

// Delete removes a collection and its tags
func (r *GormCollectionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM tagged_items WHERE object_type = ? AND object_id = ?", "collection", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&catalog.Collection{}, "id = ?", id)
		if result.Error != nil {
			return translateError(result.Error)
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// ProductCounts returns the number of products of each collection
func (r *GormCollectionRepository) ProductCounts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(ids))
	if len(ids) == 0 {
		return counts, nil
	}
	var rows []struct {
		CollectionID uuid.UUID
		Count        int64
	}
	if err := r.db.WithContext(ctx).Model(&catalog.Product{}).
		Select("collection_id, COUNT(*) AS count").
		Where("collection_id IN ?", ids).
		Group("collection_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.CollectionID] = row.Count
	}
	return counts, nil
}

func (r *GormCollectionRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		cond, args := containsPattern(r.db, filter.Search, "title")
		query = query.Where(cond, args...)
	}
	return query
}

var _ catalog.CollectionRepository = (*GormCollectionRepository)(nil)
