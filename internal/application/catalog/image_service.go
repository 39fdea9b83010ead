package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ImageServiceConfig holds image upload settings
type ImageServiceConfig struct {
	UploadURLExpiry     time.Duration
	DownloadURLExpiry   time.Duration
	MaxImagesPerProduct int
}

// DefaultImageServiceConfig returns the default configuration
func DefaultImageServiceConfig() ImageServiceConfig {
	return ImageServiceConfig{
		UploadURLExpiry:     15 * time.Minute,
		DownloadURLExpiry:   time.Hour,
		MaxImagesPerProduct: 20,
	}
}

// ImageService manages product images. Clients upload straight to object
// storage with a presigned URL, then confirm so the image becomes visible.
type ImageService struct {
	imageRepo   catalog.ProductImageRepository
	productRepo catalog.ProductRepository
	storage     ObjectStorage
	config      ImageServiceConfig
	logger      *zap.Logger
}

// NewImageService creates a new ImageService
func NewImageService(
	imageRepo catalog.ProductImageRepository,
	productRepo catalog.ProductRepository,
	storage ObjectStorage,
	config ImageServiceConfig,
	logger *zap.Logger,
) *ImageService {
	return &ImageService{
		imageRepo:   imageRepo,
		productRepo: productRepo,
		storage:     storage,
		config:      config,
		logger:      logger,
	}
}

// InitiateUpload records a pending image and returns its upload URL
func (s *ImageService) InitiateUpload(ctx context.Context, productID uuid.UUID, req InitiateImageUploadRequest) (*InitiateImageUploadResponse, error) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, err
	}
	count, err := s.imageRepo.CountByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if count >= int64(s.config.MaxImagesPerProduct) {
		return nil, shared.NewDomainError("IMAGE_LIMIT_EXCEEDED",
			fmt.Sprintf("A product can have at most %d images", s.config.MaxImagesPerProduct))
	}

	img, err := catalog.NewProductImage(productID, req.FileName, req.ContentType, req.FileSize)
	if err != nil {
		return nil, err
	}
	if err := s.imageRepo.Save(ctx, img); err != nil {
		return nil, err
	}

	url, expiresAt, err := s.storage.PresignUpload(ctx, img.StorageKey, img.ContentType, s.config.UploadURLExpiry)
	if err != nil {
		s.logger.Error("failed to presign upload", zap.String("key", img.StorageKey), zap.Error(err))
		_ = s.imageRepo.Delete(ctx, img.ID)
		return nil, shared.NewDomainError("UPLOAD_URL_FAILED", "Failed to generate upload URL")
	}
	return &InitiateImageUploadResponse{
		ImageID:   img.ID,
		UploadURL: url,
		ExpiresAt: expiresAt,
	}, nil
}

// ConfirmUpload activates a pending image once its object exists
func (s *ImageService) ConfirmUpload(ctx context.Context, productID, imageID uuid.UUID) (*ImageResponse, error) {
	img, err := s.find(ctx, productID, imageID)
	if err != nil {
		return nil, err
	}
	exists, err := s.storage.ObjectExists(ctx, img.StorageKey)
	if err != nil {
		return nil, shared.NewDomainError("STORAGE_CHECK_FAILED", "Failed to verify upload")
	}
	if !exists {
		return nil, shared.NewDomainError("UPLOAD_NOT_FOUND", "File not found in storage. Upload the file first.")
	}
	if err := img.Activate(); err != nil {
		return nil, err
	}
	if err := s.imageRepo.Save(ctx, img); err != nil {
		return nil, err
	}
	resp := s.withURL(ctx, img)
	return &resp, nil
}

// List returns a product's confirmed images with download URLs
func (s *ImageService) List(ctx context.Context, productID uuid.UUID) ([]ImageResponse, error) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, err
	}
	images, err := s.imageRepo.FindActiveByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	out := make([]ImageResponse, len(images))
	for i := range images {
		out[i] = s.withURL(ctx, &images[i])
	}
	return out, nil
}

// Delete removes the image row and its stored object
func (s *ImageService) Delete(ctx context.Context, productID, imageID uuid.UUID) error {
	img, err := s.find(ctx, productID, imageID)
	if err != nil {
		return err
	}
	if err := s.imageRepo.Delete(ctx, img.ID); err != nil {
		return err
	}
	// an orphaned object is harmless, a dangling row is not
	if err := s.storage.DeleteObject(ctx, img.StorageKey); err != nil {
		s.logger.Warn("failed to delete image object", zap.String("key", img.StorageKey), zap.Error(err))
	}
	return nil
}

func (s *ImageService) find(ctx context.Context, productID, imageID uuid.UUID) (*catalog.ProductImage, error) {
	img, err := s.imageRepo.FindByID(ctx, imageID)
	if err != nil {
		return nil, err
	}
	if img.ProductID != productID {
		return nil, shared.ErrNotFound
	}
	return img, nil
}

func (s *ImageService) withURL(ctx context.Context, img *catalog.ProductImage) ImageResponse {
	resp := ToImageResponse(img)
	url, _, err := s.storage.PresignDownload(ctx, img.StorageKey, s.config.DownloadURLExpiry)
	if err != nil {
		s.logger.Warn("failed to presign download", zap.String("key", img.StorageKey), zap.Error(err))
		return resp
	}
	resp.URL = url
	return resp
}
