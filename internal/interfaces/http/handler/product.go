package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/interfaces/http/dto"
)

// ProductHandler handles product-related API endpoints
type ProductHandler struct {
	BaseHandler
	productService *catalogapp.ProductService
	baseURL        string
}

// NewProductHandler creates a new ProductHandler. baseURL roots the
// pagination links and may be empty.
func NewProductHandler(productService *catalogapp.ProductService, baseURL string) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		baseURL:        baseURL,
	}
}

// ClearInventoryResponse reports how many products were reset
type ClearInventoryResponse struct {
	Updated int64 `json:"updated"`
}

// List godoc
// @Summary      List products
// @Description  Paged product listing with search, collection and price filters
// @Tags         products
// @Produce      json
// @Param        search         query string false "Search in title and description"
// @Param        collection_id  query string false "Collection ID" format(uuid)
// @Param        unit_price__gt query number false "Minimum unit price (exclusive)"
// @Param        unit_price__lt query number false "Maximum unit price (exclusive)"
// @Param        ordering       query string false "Sort order" Enums(unit_price, -unit_price, last_update, -last_update, title, -title)
// @Param        page           query int    false "Page number" default(1)
// @Param        page_size      query int    false "Page size" default(20)
// @Success      200 {object} dto.Response{data=dto.PageEnvelope[catalogapp.ProductResponse]}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /store/products [get]
func (h *ProductHandler) List(c *gin.Context) {
	var filter catalogapp.ProductListFilter
	if !h.BindQuery(c, &filter) {
		return
	}

	page, err := h.productService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, pageEnvelope(c, h.baseURL, page))
}

// Create godoc
// @Summary      Create a product
// @Description  The slug is derived from the title and made unique
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        request body catalogapp.CreateProductRequest true "Product"
// @Success      201 {object} dto.Response{data=catalogapp.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /store/products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	var req catalogapp.CreateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	product, err := h.productService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// GetByID godoc
// @Summary      Get a product
// @Description  Served from the product cache with a strong ETag. A matching If-None-Match yields 304.
// @Tags         products
// @Produce      json
// @Param        id            path   string true  "Product ID" format(uuid)
// @Param        If-None-Match header string false "ETag of a cached copy"
// @Success      200 {object} dto.Response{data=catalogapp.ProductResponse}
// @Success      304
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /store/products/{id} [get]
func (h *ProductHandler) GetByID(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id", "Product")
	if !ok {
		return
	}

	product, err := h.productService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.withETag(c, product)
}

// GetBySlug godoc
// @Summary      Get a product by slug
// @Tags         products
// @Produce      json
// @Param        slug path string true "Product slug"
// @Success      200 {object} dto.Response{data=catalogapp.ProductResponse}
// @Success      304
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /store/products/slug/{slug} [get]
func (h *ProductHandler) GetBySlug(c *gin.Context) {
	product, err := h.productService.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.withETag(c, product)
}

// Replace godoc
// @Summary      Replace a product
// @Description  Full update, every writable field is required
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id      path string                          true "Product ID" format(uuid)
// @Param        request body catalogapp.CreateProductRequest true "Product"
// @Success      200 {object} dto.Response{data=catalogapp.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /store/products/{id} [put]
func (h *ProductHandler) Replace(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id", "Product")
	if !ok {
		return
	}
	var req catalogapp.CreateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	// omitted promotions are cleared, as with every other field
	promotions := req.PromotionIDs
	product, err := h.productService.Update(c.Request.Context(), id, catalogapp.UpdateProductRequest{
		Title:        &req.Title,
		Description:  &req.Description,
		UnitPrice:    req.UnitPrice,
		Inventory:    &req.Inventory,
		CollectionID: &req.CollectionID,
		PromotionIDs: &promotions,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Update godoc
// @Summary      Update a product
// @Description  Partial update. A new title regenerates the slug.
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id      path string                          true "Product ID" format(uuid)
// @Param        request body catalogapp.UpdateProductRequest true "Fields to change"
// @Success      200 {object} dto.Response{data=catalogapp.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /store/products/{id} [patch]
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id", "Product")
	if !ok {
		return
	}
	var req catalogapp.UpdateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	product, err := h.productService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Delete godoc
// @Summary      Delete a product
// @Description  Refused with 409 PRODUCT_IN_USE while order items reference the product
// @Tags         products
// @Param        id path string true "Product ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /store/products/{id} [delete]
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id", "Product")
	if !ok {
		return
	}
	if err := h.productService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ClearInventory godoc
// @Summary      Clear inventory
// @Description  Sets the inventory of the given products to zero
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        request body catalogapp.ClearInventoryRequest true "Product IDs"
// @Success      200 {object} dto.Response{data=ClearInventoryResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /store/products/clear-inventory [post]
func (h *ProductHandler) ClearInventory(c *gin.Context) {
	var req catalogapp.ClearInventoryRequest
	if !h.BindJSON(c, &req) {
		return
	}

	updated, err := h.productService.ClearInventory(c.Request.Context(), req.IDs)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ClearInventoryResponse{Updated: updated})
}

// SetPromotions godoc
// @Summary      Set product promotions
// @Description  Replaces the promotions attached to a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id      path string                          true "Product ID" format(uuid)
// @Param        request body catalogapp.SetPromotionsRequest true "Promotion IDs"
// @Success      200 {object} dto.Response{data=catalogapp.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /store/products/{id}/promotions [put]
func (h *ProductHandler) SetPromotions(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id", "Product")
	if !ok {
		return
	}
	var req catalogapp.SetPromotionsRequest
	if !h.BindJSON(c, &req) {
		return
	}

	product, err := h.productService.SetPromotions(c.Request.Context(), id, req.PromotionIDs)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// withETag writes the success envelope tagged with its hash, or 304 when the
// client already holds it
func (h *ProductHandler) withETag(c *gin.Context, data any) {
	body, err := json.Marshal(dto.NewSuccessResponse(data))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	etag := cache.ETag(body)
	c.Header("ETag", etag)
	c.Header("Cache-Control", "no-cache")

	if cache.MatchETag(c.GetHeader("If-None-Match"), etag) {
		c.Status(http.StatusNotModified)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}
