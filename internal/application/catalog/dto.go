package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
)

// CreateProductRequest represents a request to create a product
type CreateProductRequest struct {
	Title        string           `json:"title" binding:"required,min=1,max=255"`
	Description  string           `json:"description"`
	UnitPrice    *decimal.Decimal `json:"unit_price" binding:"required" swaggertype:"string" example:"19.99"`
	Inventory    int              `json:"inventory" binding:"min=0"`
	CollectionID uuid.UUID        `json:"collection_id" binding:"required"`
	PromotionIDs []uuid.UUID      `json:"promotion_ids"`
}

// UpdateProductRequest is a partial product update. PUT handlers require
// every field, PATCH handlers accept any subset.
type UpdateProductRequest struct {
	Title        *string          `json:"title" binding:"omitempty,min=1,max=255"`
	Description  *string          `json:"description"`
	UnitPrice    *decimal.Decimal `json:"unit_price" swaggertype:"string" example:"19.99"`
	Inventory    *int             `json:"inventory" binding:"omitempty,min=0"`
	CollectionID *uuid.UUID       `json:"collection_id"`
	PromotionIDs *[]uuid.UUID     `json:"promotion_ids"`
}

// ClearInventoryRequest lists products whose stock is reset to zero
type ClearInventoryRequest struct {
	IDs []uuid.UUID `json:"ids" binding:"required,min=1,max=500"`
}

// SetPromotionsRequest replaces a product's promotions
type SetPromotionsRequest struct {
	PromotionIDs []uuid.UUID `json:"promotion_ids" binding:"max=100"`
}

// ProductListFilter holds product list query parameters
type ProductListFilter struct {
	Search       string           `form:"search" binding:"max=100"`
	CollectionID *uuid.UUID       `form:"collection_id"`
	UnitPriceGT  *decimal.Decimal `form:"unit_price__gt"`
	UnitPriceLT  *decimal.Decimal `form:"unit_price__lt"`
	Ordering     string           `form:"ordering" binding:"omitempty,oneof=unit_price -unit_price last_update -last_update title -title"`
	Page         int              `form:"page" binding:"omitempty,min=1"`
	PageSize     int              `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID              uuid.UUID       `json:"id"`
	Title           string          `json:"title"`
	Slug            string          `json:"slug"`
	Description     string          `json:"description"`
	UnitPrice       decimal.Decimal `json:"unit_price" swaggertype:"string"`
	PriceWithTax    decimal.Decimal `json:"price_with_tax" swaggertype:"string"`
	Inventory       int             `json:"inventory"`
	InventoryStatus string          `json:"inventory_status"`
	CollectionID    uuid.UUID       `json:"collection_id"`
	PromotionIDs    []uuid.UUID     `json:"promotion_ids"`
	LastUpdate      time.Time       `json:"last_update"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:              p.ID,
		Title:           p.Title,
		Slug:            p.Slug,
		Description:     p.Description,
		UnitPrice:       p.UnitPrice,
		PriceWithTax:    p.PriceWithTax(),
		Inventory:       p.Inventory,
		InventoryStatus: p.InventoryStatus(),
		CollectionID:    p.CollectionID,
		PromotionIDs:    p.PromotionIDs(),
		LastUpdate:      p.LastUpdate(),
	}
}

// ToProductResponses converts a slice of products
func ToProductResponses(products []catalog.Product) []ProductResponse {
	out := make([]ProductResponse, len(products))
	for i := range products {
		out[i] = ToProductResponse(&products[i])
	}
	return out
}

// CollectionRequest creates or fully updates a collection
type CollectionRequest struct {
	Title             string     `json:"title" binding:"required,min=1,max=255"`
	FeaturedProductID *uuid.UUID `json:"featured_product_id"`
}

// PatchCollectionRequest partially updates a collection. ClearFeatured
// removes the featured product.
type PatchCollectionRequest struct {
	Title             *string    `json:"title" binding:"omitempty,min=1,max=255"`
	FeaturedProductID *uuid.UUID `json:"featured_product_id"`
	ClearFeatured     bool       `json:"clear_featured"`
}

// CollectionResponse represents a collection in API responses
type CollectionResponse struct {
	ID                uuid.UUID  `json:"id"`
	Title             string     `json:"title"`
	FeaturedProductID *uuid.UUID `json:"featured_product_id"`
	ProductsCount     int64      `json:"products_count"`
}

// ToCollectionResponse converts a domain Collection
func ToCollectionResponse(c *catalog.Collection, productsCount int64) CollectionResponse {
	return CollectionResponse{
		ID:                c.ID,
		Title:             c.Title,
		FeaturedProductID: c.FeaturedProductID,
		ProductsCount:     productsCount,
	}
}

// PromotionRequest creates or updates a promotion
type PromotionRequest struct {
	Description string  `json:"description" binding:"required,min=1,max=255"`
	Discount    float64 `json:"discount" binding:"min=0"`
}

// PromotionResponse represents a promotion in API responses
type PromotionResponse struct {
	ID          uuid.UUID `json:"id"`
	Description string    `json:"description"`
	Discount    float64   `json:"discount"`
}

// ToPromotionResponse converts a domain Promotion
func ToPromotionResponse(p *catalog.Promotion) PromotionResponse {
	return PromotionResponse{ID: p.ID, Description: p.Description, Discount: p.Discount}
}

// ReviewRequest creates or updates a review
type ReviewRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=255"`
	Description string `json:"description" binding:"required"`
}

// PatchReviewRequest partially updates a review
type PatchReviewRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=255"`
	Description *string `json:"description" binding:"omitempty,min=1"`
}

// ReviewResponse represents a review in API responses
type ReviewResponse struct {
	ID          uuid.UUID `json:"id"`
	ProductID   uuid.UUID `json:"product_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Date        string    `json:"date" example:"2024-05-01"`
}

// ToReviewResponse converts a domain Review
func ToReviewResponse(r *catalog.Review) ReviewResponse {
	return ReviewResponse{
		ID:          r.ID,
		ProductID:   r.ProductID,
		Name:        r.Name,
		Description: r.Description,
		Date:        r.ReviewDate.Format(time.DateOnly),
	}
}

// InitiateImageUploadRequest asks for a presigned upload URL
type InitiateImageUploadRequest struct {
	FileName    string `json:"file_name" binding:"required,min=1,max=255"`
	ContentType string `json:"content_type" binding:"required"`
	FileSize    int64  `json:"file_size" binding:"required,min=1"`
}

// InitiateImageUploadResponse carries the upload URL for a pending image
type InitiateImageUploadResponse struct {
	ImageID   uuid.UUID `json:"image_id"`
	UploadURL string    `json:"upload_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ImageResponse represents a product image in API responses
type ImageResponse struct {
	ID          uuid.UUID `json:"id"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	FileSize    int64     `json:"file_size"`
	Status      string    `json:"status"`
	URL         string    `json:"url,omitempty"`
}

// ToImageResponse converts a domain ProductImage
func ToImageResponse(i *catalog.ProductImage) ImageResponse {
	return ImageResponse{
		ID:          i.ID,
		FileName:    i.FileName,
		ContentType: i.ContentType,
		FileSize:    i.FileSize,
		Status:      string(i.Status),
	}
}

// ListFilter holds paging and search parameters shared by simple listings
type ListFilter struct {
	Search   string `form:"search" binding:"max=100"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ToDomain converts to a normalized shared.Filter
func (f ListFilter) ToDomain() shared.Filter {
	return shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		Search:   strings.TrimSpace(f.Search),
	}.Normalize()
}
