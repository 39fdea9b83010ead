package tagging

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/tagging"
)

// ErrLabelTaken is returned when another tag already uses a label
var ErrLabelTaken = shared.NewDomainError("ALREADY_EXISTS", "A tag with this label already exists")

// TagService manages tags and their links to products and collections
type TagService struct {
	tagRepo        tagging.TagRepository
	itemRepo       tagging.TaggedItemRepository
	productRepo    catalog.ProductRepository
	collectionRepo catalog.CollectionRepository
}

// NewTagService creates a new TagService
func NewTagService(
	tagRepo tagging.TagRepository,
	itemRepo tagging.TaggedItemRepository,
	productRepo catalog.ProductRepository,
	collectionRepo catalog.CollectionRepository,
) *TagService {
	return &TagService{
		tagRepo:        tagRepo,
		itemRepo:       itemRepo,
		productRepo:    productRepo,
		collectionRepo: collectionRepo,
	}
}

// Create creates a tag with a unique label
func (s *TagService) Create(ctx context.Context, req TagRequest) (*TagResponse, error) {
	if err := s.ensureLabelFree(ctx, req.Label, uuid.Nil); err != nil {
		return nil, err
	}
	t, err := tagging.NewTag(req.Label)
	if err != nil {
		return nil, err
	}
	if err := s.tagRepo.Save(ctx, t); err != nil {
		return nil, err
	}
	resp := ToTagResponse(t)
	return &resp, nil
}

// GetByID returns a tag
func (s *TagService) GetByID(ctx context.Context, id uuid.UUID) (*TagResponse, error) {
	t, err := s.tagRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToTagResponse(t)
	return &resp, nil
}

// List returns a page of tags, optionally filtered by label
func (s *TagService) List(ctx context.Context, f TagListFilter) (*shared.Paginated[TagResponse], error) {
	filter := shared.Filter{Page: f.Page, PageSize: f.PageSize, Search: strings.TrimSpace(f.Search)}.Normalize()
	tags, err := s.tagRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.tagRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]TagResponse, len(tags))
	for i := range tags {
		items[i] = ToTagResponse(&tags[i])
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Update relabels a tag
func (s *TagService) Update(ctx context.Context, id uuid.UUID, req TagRequest) (*TagResponse, error) {
	t, err := s.tagRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureLabelFree(ctx, req.Label, id); err != nil {
		return nil, err
	}
	if err := t.Relabel(req.Label); err != nil {
		return nil, err
	}
	if err := s.tagRepo.Save(ctx, t); err != nil {
		return nil, err
	}
	resp := ToTagResponse(t)
	return &resp, nil
}

// Delete removes a tag and every link to it
func (s *TagService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.tagRepo.Delete(ctx, id)
}

// TagObject links a tag to an object. Linking twice is a no-op.
func (s *TagService) TagObject(ctx context.Context, tagID uuid.UUID, req TagObjectRequest) (*TaggedItemResponse, error) {
	t, err := s.tagRepo.FindByID(ctx, tagID)
	if err != nil {
		return nil, err
	}
	objectType := tagging.ObjectType(req.ObjectType)
	if err := s.ensureObject(ctx, objectType, req.ObjectID); err != nil {
		return nil, err
	}

	existing, err := s.itemRepo.Find(ctx, tagID, objectType, req.ObjectID)
	if err == nil {
		existing.Tag = t
		resp := ToTaggedItemResponse(existing)
		return &resp, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	item, err := tagging.NewTaggedItem(tagID, objectType, req.ObjectID)
	if err != nil {
		return nil, err
	}
	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, err
	}
	item.Tag = t
	resp := ToTaggedItemResponse(item)
	return &resp, nil
}

// UntagObject removes the link between a tag and an object
func (s *TagService) UntagObject(ctx context.Context, tagID uuid.UUID, req TagObjectRequest) error {
	objectType := tagging.ObjectType(req.ObjectType)
	if !objectType.IsValid() {
		return shared.NewDomainError("INVALID_OBJECT_TYPE", "Object type must be product or collection")
	}
	return s.itemRepo.Delete(ctx, tagID, objectType, req.ObjectID)
}

// ListTagsFor returns the tags attached to an object
func (s *TagService) ListTagsFor(ctx context.Context, objectType string, objectID uuid.UUID) ([]TaggedItemResponse, error) {
	ot := tagging.ObjectType(objectType)
	if !ot.IsValid() {
		return nil, shared.NewDomainError("INVALID_OBJECT_TYPE", "Object type must be product or collection")
	}
	items, err := s.itemRepo.FindByObject(ctx, ot, objectID)
	if err != nil {
		return nil, err
	}
	out := make([]TaggedItemResponse, len(items))
	for i := range items {
		out[i] = ToTaggedItemResponse(&items[i])
	}
	return out, nil
}

func (s *TagService) ensureObject(ctx context.Context, objectType tagging.ObjectType, id uuid.UUID) error {
	var err error
	switch objectType {
	case tagging.ObjectTypeProduct:
		_, err = s.productRepo.FindByID(ctx, id)
	case tagging.ObjectTypeCollection:
		_, err = s.collectionRepo.FindByID(ctx, id)
	default:
		return shared.NewDomainError("INVALID_OBJECT_TYPE", "Object type must be product or collection")
	}
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NewDomainError("INVALID_OBJECT", "The tagged object does not exist")
	}
	return err
}

func (s *TagService) ensureLabelFree(ctx context.Context, label string, excludeID uuid.UUID) error {
	exists, err := s.tagRepo.ExistsByLabel(ctx, strings.TrimSpace(label), excludeID)
	if err != nil {
		return err
	}
	if exists {
		return ErrLabelTaken
	}
	return nil
}
