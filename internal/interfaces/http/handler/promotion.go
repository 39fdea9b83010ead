package handler

import (
	"github.com/gin-gonic/gin"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
)

// PromotionHandler handles promotion endpoints
type PromotionHandler struct {
	BaseHandler
	promotionService *catalogapp.PromotionService
}

// NewPromotionHandler creates a new PromotionHandler
func NewPromotionHandler(promotionService *catalogapp.PromotionService) *PromotionHandler {
	return &PromotionHandler{promotionService: promotionService}
}

// List godoc
// @Summary      List promotions
// @Tags         promotions
// @Produce      json
// @Param        search    query string false "Search in description"
// @Param        page      query int    false "Page number" default(1)
// @Param        page_size query int    false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]catalogapp.PromotionResponse,meta=dto.Meta}
// @Router       /store/promotions [get]
func (h *PromotionHandler) List(c *gin.Context) {
	var filter catalogapp.ListFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	page, err := h.promotionService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	successPage(c, page)
}

// Create godoc
// @Summary      Create a promotion
// @Tags         promotions
// @Accept       json
// @Produce      json
// @Param        request body catalogapp.PromotionRequest true "Promotion"
// @Success      201 {object} dto.Response{data=catalogapp.PromotionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /store/promotions [post]
func (h *PromotionHandler) Create(c *gin.Context) {
	var req catalogapp.PromotionRequest
	if !h.BindJSON(c, &req) {
		return
	}
	promotion, err := h.promotionService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, promotion)
}

// GetByID godoc
// @Summary      Get a promotion
// @Tags         promotions
// @Produce      json
// @Param        id path string true "Promotion ID" format(uuid)
// @Success      200 {object} dto.Response{data=catalogapp.PromotionResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /store/promotions/{id} [get]
func (h *PromotionHandler) GetByID(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id", "Promotion")
	if !ok {
		return
	}
	promotion, err := h.promotionService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, promotion)
}

// Update godoc
// @Summary      Update a promotion
// @Tags         promotions
// @Accept       json
// @Produce      json
// @Param        id      path string                      true "Promotion ID" format(uuid)
// @Param        request body catalogapp.PromotionRequest true "Promotion"
// @Success      200 {object} dto.Response{data=catalogapp.PromotionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /store/promotions/{id} [put]
func (h *PromotionHandler) Update(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id", "Promotion")
	if !ok {
		return
	}
	var req catalogapp.PromotionRequest
	if !h.BindJSON(c, &req) {
		return
	}
	promotion, err := h.promotionService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, promotion)
}

// Delete godoc
// @Summary      Delete a promotion
// @Tags         promotions
// @Param        id path string true "Promotion ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /store/promotions/{id} [delete]
func (h *PromotionHandler) Delete(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id", "Promotion")
	if !ok {
		return
	}
	if err := h.promotionService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
