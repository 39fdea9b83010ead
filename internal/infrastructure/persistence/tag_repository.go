package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/tagging"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTagRepository implements TagRepository using GORM
type GormTagRepository struct {
	db *gorm.DB
}

// NewGormTagRepository creates a new GormTagRepository
func NewGormTagRepository(db *gorm.DB) *GormTagRepository {
	return &GormTagRepository{db: db}
}

// FindByID finds a tag by ID
func (r *GormTagRepository) FindByID(ctx context.Context, id uuid.UUID) (*tagging.Tag, error) {
	var tag tagging.Tag
	if err := r.db.WithContext(ctx).First(&tag, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &tag, nil
}

// FindAll lists tags ordered by label
func (r *GormTagRepository) FindAll(ctx context.Context, filter shared.Filter) ([]tagging.Tag, error) {
	var tags []tagging.Tag
	query := r.applyFilter(r.db.WithContext(ctx).Model(&tagging.Tag{}), filter)
	query = applyPage(applyOrder(query, filter, TagSortFields, "label", "asc"), filter)
	if err := query.Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// Count counts tags matching the filter
func (r *GormTagRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&tagging.Tag{}), filter).Count(&count).Error
	return count, err
}

// Save creates or updates a tag
func (r *GormTagRepository) Save(ctx context.Context, t *tagging.Tag) error {
	return translateError(r.db.WithContext(ctx).Save(t).Error)
}

// Delete removes a tag and all its links
func (r *GormTagRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&tagging.TaggedItem{}, "tag_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&tagging.Tag{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// ExistsByLabel checks if another tag already uses the label
func (r *GormTagRepository) ExistsByLabel(ctx context.Context, label string, excludeID uuid.UUID) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&tagging.Tag{}).Where("LOWER(label) = ?", strings.ToLower(label))
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormTagRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		cond, args := containsPattern(r.db, filter.Search, "label")
		query = query.Where(cond, args...)
	}
	return query
}

var _ tagging.TagRepository = (*GormTagRepository)(nil)

// GormTaggedItemRepository implements TaggedItemRepository using GORM
type GormTaggedItemRepository struct {
	db *gorm.DB
}

// NewGormTaggedItemRepository creates a new GormTaggedItemRepository
func NewGormTaggedItemRepository(db *gorm.DB) *GormTaggedItemRepository {
	return &GormTaggedItemRepository{db: db}
}

// Find finds a single tag link
func (r *GormTaggedItemRepository) Find(ctx context.Context, tagID uuid.UUID, objectType tagging.ObjectType, objectID uuid.UUID) (*tagging.TaggedItem, error) {
	var item tagging.TaggedItem
	err := r.db.WithContext(ctx).
		Where("tag_id = ? AND object_type = ? AND object_id = ?", tagID, objectType, objectID).
		First(&item).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &item, nil
}

// FindByObject lists the tag links of an object with their tags
func (r *GormTaggedItemRepository) FindByObject(ctx context.Context, objectType tagging.ObjectType, objectID uuid.UUID) ([]tagging.TaggedItem, error) {
	var items []tagging.TaggedItem
	err := r.db.WithContext(ctx).
		Preload("Tag").
		Where("object_type = ? AND object_id = ?", objectType, objectID).
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Save inserts a tag link
func (r *GormTaggedItemRepository) Save(ctx context.Context, item *tagging.TaggedItem) error {
	return translateError(r.db.WithContext(ctx).Omit(clause.Associations).Create(item).Error)
}

// Delete removes a tag link
func (r *GormTaggedItemRepository) Delete(ctx context.Context, tagID uuid.UUID, objectType tagging.ObjectType, objectID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("tag_id = ? AND object_type = ? AND object_id = ?", tagID, objectType, objectID).
		Delete(&tagging.TaggedItem{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteByObject removes every tag link of an object
func (r *GormTaggedItemRepository) DeleteByObject(ctx context.Context, objectType tagging.ObjectType, objectID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("object_type = ? AND object_id = ?", objectType, objectID).
		Delete(&tagging.TaggedItem{}).Error
}

var _ tagging.TaggedItemRepository = (*GormTaggedItemRepository)(nil)
