package catalog

import (
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// MaxImageFileSize is the largest accepted product image (5 MiB)
const MaxImageFileSize = 5 * 1024 * 1024

// ImageStatus tracks the upload lifecycle of an image
type ImageStatus string

const (
	// ImageStatusPending means an upload URL was issued but not yet confirmed
	ImageStatusPending ImageStatus = "pending"
	ImageStatusActive  ImageStatus = "active"
)

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ProductImage is a picture of a product kept in object storage
type ProductImage struct {
	shared.BaseEntity
	ProductID   uuid.UUID   `gorm:"type:uuid;not null;index"`
	FileName    string      `gorm:"type:varchar(255);not null"`
	ContentType string      `gorm:"type:varchar(100);not null"`
	FileSize    int64       `gorm:"not null"`
	StorageKey  string      `gorm:"type:varchar(500);not null;uniqueIndex"`
	Status      ImageStatus `gorm:"type:varchar(20);not null;default:'pending'"`
}

// TableName returns the table name for GORM
func (ProductImage) TableName() string {
	return "product_images"
}

// NewProductImage creates a pending image. The storage key is derived from
// the product and image IDs: products/{product_id}/{image_id}{ext}.
func NewProductImage(productID uuid.UUID, fileName, contentType string, fileSize int64) (*ProductImage, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT_ID", "Product ID cannot be empty")
	}
	fileName = strings.TrimSpace(fileName)
	if fileName == "" || len(fileName) > 255 {
		return nil, shared.NewDomainError("INVALID_FILE_NAME", "File name must be 1-255 characters")
	}
	ext, ok := allowedImageTypes[strings.ToLower(contentType)]
	if !ok {
		return nil, shared.NewDomainError("INVALID_CONTENT_TYPE", "Only JPEG, PNG, GIF and WebP images are accepted")
	}
	if fileSize <= 0 || fileSize > MaxImageFileSize {
		return nil, shared.NewDomainError("INVALID_FILE_SIZE", "Image size must be between 1 byte and 5 MiB")
	}

	img := &ProductImage{
		BaseEntity:  shared.NewBaseEntity(),
		ProductID:   productID,
		FileName:    fileName,
		ContentType: strings.ToLower(contentType),
		FileSize:    fileSize,
		Status:      ImageStatusPending,
	}
	img.StorageKey = path.Join("products", productID.String(), img.ID.String()+ext)
	return img, nil
}

// Activate marks the upload as confirmed
func (i *ProductImage) Activate() error {
	if i.Status != ImageStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Image is already active")
	}
	i.Status = ImageStatusActive
	return nil
}

// IsActive reports whether the image upload was confirmed
func (i *ProductImage) IsActive() bool {
	return i.Status == ImageStatusActive
}
