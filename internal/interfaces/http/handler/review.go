package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
)

// ReviewHandler handles the reviews nested under a product
type ReviewHandler struct {
	BaseHandler
	reviewService *catalogapp.ReviewService
}

// NewReviewHandler creates a new ReviewHandler
func NewReviewHandler(reviewService *catalogapp.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// List godoc
// @Summary      List product reviews
// @Tags         reviews
// @Produce      json
// @Param        id        path  string true  "Product ID" format(uuid)
// @Param        page      query int    false "Page number" default(1)
// @Param        page_size query int    false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]catalogapp.ReviewResponse,meta=dto.Meta}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /store/products/{id}/reviews [get]
func (h *ReviewHandler) List(c *gin.Context) {
	productID, ok := h.ParamUUID(c, "id", "Product")
	if !ok {
		return
	}
	var filter catalogapp.ListFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	page, err := h.reviewService.List(c.Request.Context(), productID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	successPage(c, page)
}

// Create godoc
// @Summary      Review a product
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Param        id      path string                   true "Product ID" format(uuid)
// @Param        request body catalogapp.ReviewRequest true "Review"
// @Success      201 {object} dto.Response{data=catalogapp.ReviewResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /store/products/{id}/reviews [post]
func (h *ReviewHandler) Create(c *gin.Context) {
	productID, ok := h.ParamUUID(c, "id", "Product")
	if !ok {
		return
	}
	var req catalogapp.ReviewRequest
	if !h.BindJSON(c, &req) {
		return
	}
	review, err := h.reviewService.Create(c.Request.Context(), productID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, review)
}

// Get godoc
// @Summary      Get a review
// @Description  Reviews of another product are reported as not found
// @Tags         reviews
// @Produce      json
// @Param        id        path string true "Product ID" format(uuid)
// @Param        review_id path string true "Review ID" format(uuid)
// @Success      200 {object} dto.Response{data=catalogapp.ReviewResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /store/products/{id}/reviews/{review_id} [get]
func (h *ReviewHandler) Get(c *gin.Context) {
	productID, reviewID, ok := h.ids(c)
	if !ok {
		return
	}
	review, err := h.reviewService.Get(c.Request.Context(), productID, reviewID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, review)
}

// Replace godoc
// @Summary      Replace a review
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Param        id        path string                   true "Product ID" format(uuid)
// @Param        review_id path string                   true "Review ID" format(uuid)
// @Param        request   body catalogapp.ReviewRequest true "Review"
// @Success      200 {object} dto.Response{data=catalogapp.ReviewResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /store/products/{id}/reviews/{review_id} [put]
func (h *ReviewHandler) Replace(c *gin.Context) {
	productID, reviewID, ok := h.ids(c)
	if !ok {
		return
	}
	var req catalogapp.ReviewRequest
	if !h.BindJSON(c, &req) {
		return
	}
	review, err := h.reviewService.Update(c.Request.Context(), productID, reviewID, catalogapp.PatchReviewRequest{
		Name:        &req.Name,
		Description: &req.Description,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, review)
}

// Update godoc
// @Summary      Update a review
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Param        id        path string                        true "Product ID" format(uuid)
// @Param        review_id path string                        true "Review ID" format(uuid)
// @Param        request   body catalogapp.PatchReviewRequest true "Fields to change"
// @Success      200 {object} dto.Response{data=catalogapp.ReviewResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /store/products/{id}/reviews/{review_id} [patch]
func (h *ReviewHandler) Update(c *gin.Context) {
	productID, reviewID, ok := h.ids(c)
	if !ok {
		return
	}
	var req catalogapp.PatchReviewRequest
	if !h.BindJSON(c, &req) {
		return
	}
	review, err := h.reviewService.Update(c.Request.Context(), productID, reviewID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, review)
}

// Delete godoc
// @Summary      Delete a review
// @Tags         reviews
// @Param        id        path string true "Product ID" format(uuid)
// @Param        review_id path string true "Review ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /store/products/{id}/reviews/{review_id} [delete]
func (h *ReviewHandler) Delete(c *gin.Context) {
	productID, reviewID, ok := h.ids(c)
	if !ok {
		return
	}
	if err := h.reviewService.Delete(c.Request.Context(), productID, reviewID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func (h *ReviewHandler) ids(c *gin.Context) (productID, reviewID uuid.UUID, ok bool) {
	if productID, ok = h.ParamUUID(c, "id", "Product"); !ok {
		return
	}
	reviewID, ok = h.ParamUUID(c, "review_id", "Review")
	return
}
