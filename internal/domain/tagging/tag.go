package tagging

import (
	"strings"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// ObjectType names an entity kind that can be tagged
type ObjectType string

// Taggable object types
const (
	ObjectTypeProduct    ObjectType = "product"
	ObjectTypeCollection ObjectType = "collection"
)

// IsValid reports whether t is a taggable object type
func (t ObjectType) IsValid() bool {
	return t == ObjectTypeProduct || t == ObjectTypeCollection
}

// Tag is a free-form label
type Tag struct {
	shared.BaseEntity
	Label string `gorm:"type:varchar(255);not null;uniqueIndex"`
}

// TableName returns the table name for GORM
func (Tag) TableName() string {
	return "tags"
}

// NewTag creates a tag
func NewTag(label string) (*Tag, error) {
	t := &Tag{BaseEntity: shared.NewBaseEntity()}
	if err := t.Relabel(label); err != nil {
		return nil, err
	}
	return t, nil
}

// Relabel changes the label
func (t *Tag) Relabel(label string) error {
	label = strings.TrimSpace(label)
	if label == "" || len(label) > 255 {
		return shared.NewDomainError("INVALID_LABEL", "Label must be 1-255 characters")
	}
	t.Label = label
	t.Touch()
	return nil
}

// TaggedItem links a tag to any taggable object
type TaggedItem struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	TagID      uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_tagged_items_unique"`
	ObjectType ObjectType `gorm:"type:varchar(50);not null;uniqueIndex:idx_tagged_items_unique;index:idx_tagged_items_object"`
	ObjectID   uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_tagged_items_unique;index:idx_tagged_items_object"`
	Tag        *Tag       `gorm:"foreignKey:TagID"`
}

// TableName returns the table name for GORM
func (TaggedItem) TableName() string {
	return "tagged_items"
}

// NewTaggedItem links tagID to an object
func NewTaggedItem(tagID uuid.UUID, objectType ObjectType, objectID uuid.UUID) (*TaggedItem, error) {
	if !objectType.IsValid() {
		return nil, shared.NewDomainError("INVALID_OBJECT_TYPE", "Object type must be product or collection")
	}
	if tagID == uuid.Nil || objectID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Tag and object are required")
	}
	return &TaggedItem{
		ID:         uuid.New(),
		TagID:      tagID,
		ObjectType: objectType,
		ObjectID:   objectID,
	}, nil
}
