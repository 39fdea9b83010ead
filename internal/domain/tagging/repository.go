package tagging

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// TagRepository defines the interface for tag persistence
type TagRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Tag, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Tag, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, t *Tag) error
	Delete(ctx context.Context, id uuid.UUID) error
	ExistsByLabel(ctx context.Context, label string, excludeID uuid.UUID) (bool, error)
}

// TaggedItemRepository defines the interface for tag links
type TaggedItemRepository interface {
	Find(ctx context.Context, tagID uuid.UUID, objectType ObjectType, objectID uuid.UUID) (*TaggedItem, error)
	FindByObject(ctx context.Context, objectType ObjectType, objectID uuid.UUID) ([]TaggedItem, error)
	Save(ctx context.Context, item *TaggedItem) error
	Delete(ctx context.Context, tagID uuid.UUID, objectType ObjectType, objectID uuid.UUID) error
	DeleteByObject(ctx context.Context, objectType ObjectType, objectID uuid.UUID) error
}
