package tagging

import (
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/tagging"
)

// TagRequest creates or relabels a tag
type TagRequest struct {
	Label string `json:"label" binding:"required,min=1,max=255"`
}

// TagObjectRequest links or unlinks a tag and an object
type TagObjectRequest struct {
	ObjectType string    `json:"object_type" binding:"required,oneof=product collection"`
	ObjectID   uuid.UUID `json:"object_id" binding:"required"`
}

// TagListFilter holds the list query parameters
type TagListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// TagResponse represents a tag in API responses
type TagResponse struct {
	ID    uuid.UUID `json:"id"`
	Label string    `json:"label"`
}

// TaggedItemResponse represents a tag link
type TaggedItemResponse struct {
	ID         uuid.UUID `json:"id"`
	Tag        string    `json:"tag"`
	TagID      uuid.UUID `json:"tag_id"`
	ObjectType string    `json:"object_type"`
	ObjectID   uuid.UUID `json:"object_id"`
}

// ToTagResponse converts a domain Tag
func ToTagResponse(t *tagging.Tag) TagResponse {
	return TagResponse{ID: t.ID, Label: t.Label}
}

// ToTaggedItemResponse converts a domain TaggedItem
func ToTaggedItemResponse(item *tagging.TaggedItem) TaggedItemResponse {
	resp := TaggedItemResponse{
		ID:         item.ID,
		TagID:      item.TagID,
		ObjectType: string(item.ObjectType),
		ObjectID:   item.ObjectID,
	}
	if item.Tag != nil {
		resp.Tag = item.Tag.Label
	}
	return resp
}
