package handler

import (
	"github.com/gin-gonic/gin"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
)

// ImageHandler handles product images. Files go straight to object storage
// through presigned URLs, the API only tracks them.
type ImageHandler struct {
	BaseHandler
	imageService *catalogapp.ImageService
}

// NewImageHandler creates a new ImageHandler
func NewImageHandler(imageService *catalogapp.ImageService) *ImageHandler {
	return &ImageHandler{imageService: imageService}
}

// List godoc
// @Summary      List product images
// @Description  Confirmed images with time-limited download URLs
// @Tags         images
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]catalogapp.ImageResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /store/products/{id}/images [get]
func (h *ImageHandler) List(c *gin.Context) {
	productID, ok := h.ParamUUID(c, "id", "Product")
	if !ok {
		return
	}
	images, err := h.imageService.List(c.Request.Context(), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, images)
}

// InitiateUpload godoc
// @Summary      Start an image upload
// @Description  Records a pending image and returns the URL to PUT the file to. Only jpeg, png, gif and webp up to 5 MiB.
// @Tags         images
// @Accept       json
// @Produce      json
// @Param        id      path string                                true "Product ID" format(uuid)
// @Param        request body catalogapp.InitiateImageUploadRequest true "File metadata"
// @Success      201 {object} dto.Response{data=catalogapp.InitiateImageUploadResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /store/products/{id}/images [post]
func (h *ImageHandler) InitiateUpload(c *gin.Context) {
	productID, ok := h.ParamUUID(c, "id", "Product")
	if !ok {
		return
	}
	var req catalogapp.InitiateImageUploadRequest
	if !h.BindJSON(c, &req) {
		return
	}
	upload, err := h.imageService.InitiateUpload(c.Request.Context(), productID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, upload)
}

// ConfirmUpload godoc
// @Summary      Confirm an image upload
// @Description  Activates the image once its file is present in storage
// @Tags         images
// @Produce      json
// @Param        id       path string true "Product ID" format(uuid)
// @Param        image_id path string true "Image ID" format(uuid)
// @Success      200 {object} dto.Response{data=catalogapp.ImageResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /store/products/{id}/images/{image_id}/confirm [post]
func (h *ImageHandler) ConfirmUpload(c *gin.Context) {
	productID, ok := h.ParamUUID(c, "id", "Product")
	if !ok {
		return
	}
	imageID, ok := h.ParamUUID(c, "image_id", "Image")
	if !ok {
		return
	}
	image, err := h.imageService.ConfirmUpload(c.Request.Context(), productID, imageID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, image)
}

// Delete godoc
// @Summary      Delete a product image
// @Tags         images
// @Param        id       path string true "Product ID" format(uuid)
// @Param        image_id path string true "Image ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /store/products/{id}/images/{image_id} [delete]
func (h *ImageHandler) Delete(c *gin.Context) {
	productID, ok := h.ParamUUID(c, "id", "Product")
	if !ok {
		return
	}
	imageID, ok := h.ParamUUID(c, "image_id", "Image")
	if !ok {
		return
	}
	if err := h.imageService.Delete(c.Request.Context(), productID, imageID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
