package handler

import (
	"github.com/gin-gonic/gin"
	tagapp "github.com/storefront/backend/internal/application/tagging"
)

// TagHandler handles tags and their links to catalog objects
type TagHandler struct {
	BaseHandler
	tagService *tagapp.TagService
}

// NewTagHandler creates a new TagHandler
func NewTagHandler(tagService *tagapp.TagService) *TagHandler {
	return &TagHandler{tagService: tagService}
}

// List godoc
// @Summary      List tags
// @Tags         tags
// @Produce      json
// @Param        search    query string false "Search in label"
// @Param        page      query int    false "Page number" default(1)
// @Param        page_size query int    false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]tagapp.TagResponse,meta=dto.Meta}
// @Router       /store/tags [get]
func (h *TagHandler) List(c *gin.Context) {
	var filter tagapp.TagListFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	page, err := h.tagService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	successPage(c, page)
}

// Create godoc
// @Summary      Create a tag
// @Tags         tags
// @Accept       json
// @Produce      json
// @Param        request body tagapp.TagRequest true "Tag"
// @Success      201 {object} dto.Response{data=tagapp.TagResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /store/tags [post]
func (h *TagHandler) Create(c *gin.Context) {
	var req tagapp.TagRequest
	if !h.BindJSON(c, &req) {
		return
	}
	tag, err := h.tagService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, tag)
}

// GetByID godoc
// @Summary      Get a tag
// @Tags         tags
// @Produce      json
// @Param        id path string true "Tag ID" format(uuid)
// @Success      200 {object} dto.Response{data=tagapp.TagResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /store/tags/{id} [get]
func (h *TagHandler) GetByID(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id", "Tag")
	if !ok {
		return
	}
	tag, err := h.tagService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tag)
}

// Update godoc
// @Summary      Relabel a tag
// @Tags         tags
// @Accept       json
// @Produce      json
// @Param        id      path string            true "Tag ID" format(uuid)
// @Param        request body tagapp.TagRequest true "Tag"
// @Success      200 {object} dto.Response{data=tagapp.TagResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /store/tags/{id} [put]
func (h *TagHandler) Update(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id", "Tag")
	if !ok {
		return
	}
	var req tagapp.TagRequest
	if !h.BindJSON(c, &req) {
		return
	}
	tag, err := h.tagService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tag)
}

// Delete godoc
// @Summary      Delete a tag
// @Description  Its links are removed with it
// @Tags         tags
// @Param        id path string true "Tag ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /store/tags/{id} [delete]
func (h *TagHandler) Delete(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id", "Tag")
	if !ok {
		return
	}
	if err := h.tagService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// TagObject godoc
// @Summary      Tag an object
// @Description  Idempotent, tagging twice returns the existing link
// @Tags         tags
// @Accept       json
// @Produce      json
// @Param        id      path string                  true "Tag ID" format(uuid)
// @Param        request body tagapp.TagObjectRequest true "Object"
// @Success      201 {object} dto.Response{data=tagapp.TaggedItemResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /store/tags/{id}/items [post]
func (h *TagHandler) TagObject(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id", "Tag")
	if !ok {
		return
	}
	var req tagapp.TagObjectRequest
	if !h.BindJSON(c, &req) {
		return
	}
	item, err := h.tagService.TagObject(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, item)
}

// UntagObject godoc
// @Summary      Untag an object
// @Tags         tags
// @Accept       json
// @Param        id      path string                  true "Tag ID" format(uuid)
// @Param        request body tagapp.TagObjectRequest true "Object"
// @Success      204
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /store/tags/{id}/items [delete]
func (h *TagHandler) UntagObject(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id", "Tag")
	if !ok {
		return
	}
	var req tagapp.TagObjectRequest
	if !h.BindJSON(c, &req) {
		return
	}
	if err := h.tagService.UntagObject(c.Request.Context(), id, req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ListTagsFor godoc
// @Summary      Tags of an object
// @Tags         tags
// @Produce      json
// @Param        object_type path string true "Object type" Enums(product, collection)
// @Param        object_id   path string true "Object ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]tagapp.TaggedItemResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /store/tagged/{object_type}/{object_id} [get]
func (h *TagHandler) ListTagsFor(c *gin.Context) {
	objectID, ok := h.ParamUUID(c, "object_id", "Object")
	if !ok {
		return
	}
	items, err := h.tagService.ListTagsFor(c.Request.Context(), c.Param("object_type"), objectID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}
