package handler

import (
	"github.com/gin-gonic/gin"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
)

// CollectionHandler handles collection endpoints
type CollectionHandler struct {
	BaseHandler
	collectionService *catalogapp.CollectionService
}

// NewCollectionHandler creates a new CollectionHandler
func NewCollectionHandler(collectionService *catalogapp.CollectionService) *CollectionHandler {
	return &CollectionHandler{collectionService: collectionService}
}

// List godoc
// @Summary      List collections
// @Description  Collections ordered by title, with their product count
// @Tags         collections
// @Produce      json
// @Param        search    query string false "Search in title"
// @Param        page      query int    false "Page number" default(1)
// @Param        page_size query int    false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]catalogapp.CollectionResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /store/collections [get]
func (h *CollectionHandler) List(c *gin.Context) {
	var filter catalogapp.ListFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	page, err := h.collectionService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	successPage(c, page)
}

// Create godoc
// @Summary      Create a collection
// @Tags         collections
// @Accept       json
// @Produce      json
// @Param        request body catalogapp.CollectionRequest true "Collection"
// @Success      201 {object} dto.Response{data=catalogapp.CollectionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /store/collections [post]
func (h *CollectionHandler) Create(c *gin.Context) {
	var req catalogapp.CollectionRequest
	if !h.BindJSON(c, &req) {
		return
	}
	collection, err := h.collectionService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, collection)
}

// GetByID godoc
// @Summary      Get a collection
// @Tags         collections
// @Produce      json
// @Param        id path string true "Collection ID" format(uuid)
// @Success      200 {object} dto.Response{data=catalogapp.CollectionResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /store/collections/{id} [get]
func (h *CollectionHandler) GetByID(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id", "Collection")
	if !ok {
		return
	}
	collection, err := h.collectionService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, collection)
}

// Replace godoc
// @Summary      Replace a collection
// @Tags         collections
// @Accept       json
// @Produce      json
// @Param        id      path string                       true "Collection ID" format(uuid)
// @Param        request body catalogapp.CollectionRequest true "Collection"
// @Success      200 {object} dto.Response{data=catalogapp.CollectionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /store/collections/{id} [put]
func (h *CollectionHandler) Replace(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id", "Collection")
	if !ok {
		return
	}
	var req catalogapp.CollectionRequest
	if !h.BindJSON(c, &req) {
		return
	}
	collection, err := h.collectionService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, collection)
}

// Update godoc
// @Summary      Update a collection
// @Description  Partial update. clear_featured removes the featured product.
// @Tags         collections
// @Accept       json
// @Produce      json
// @Param        id      path string                            true "Collection ID" format(uuid)
// @Param        request body catalogapp.PatchCollectionRequest true "Fields to change"
// @Success      200 {object} dto.Response{data=catalogapp.CollectionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /store/collections/{id} [patch]
func (h *CollectionHandler) Update(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id", "Collection")
	if !ok {
		return
	}
	var req catalogapp.PatchCollectionRequest
	if !h.BindJSON(c, &req) {
		return
	}
	collection, err := h.collectionService.Patch(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, collection)
}

// Delete godoc
// @Summary      Delete a collection
// @Description  Refused with 409 COLLECTION_NOT_EMPTY while products belong to it
// @Tags         collections
// @Param        id path string true "Collection ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /store/collections/{id} [delete]
func (h *CollectionHandler) Delete(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id", "Collection")
	if !ok {
		return
	}
	if err := h.collectionService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
