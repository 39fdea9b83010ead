package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	cartapp "github.com/storefront/backend/internal/application/cart"
)

// CartHandler handles anonymous shopping carts. The cart id is the only
// credential.
type CartHandler struct {
	BaseHandler
	cartService *cartapp.CartService
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(cartService *cartapp.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// Create godoc
// @Summary      Create a cart
// @Tags         carts
// @Produce      json
// @Success      201 {object} dto.Response{data=cartapp.CartResponse}
// @Router       /store/carts [post]
func (h *CartHandler) Create(c *gin.Context) {
	cart, err := h.cartService.Create(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, cart)
}

// Get godoc
// @Summary      Get a cart
// @Description  Items with product summary and totals
// @Tags         carts
// @Produce      json
// @Param        id path string true "Cart ID" format(uuid)
// @Success      200 {object} dto.Response{data=cartapp.CartResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /store/carts/{id} [get]
func (h *CartHandler) Get(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id", "Cart")
	if !ok {
		return
	}
	cart, err := h.cartService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// Delete godoc
// @Summary      Delete a cart
// @Tags         carts
// @Param        id path string true "Cart ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /store/carts/{id} [delete]
func (h *CartHandler) Delete(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id", "Cart")
	if !ok {
		return
	}
	if err := h.cartService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// AddItem godoc
// @Summary      Add a cart item
// @Description  Adding a product already in the cart increases its quantity
// @Tags         carts
// @Accept       json
// @Produce      json
// @Param        id      path string                 true "Cart ID" format(uuid)
// @Param        request body cartapp.AddItemRequest true "Item"
// @Success      201 {object} dto.Response{data=cartapp.CartItemResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /store/carts/{id}/items [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id", "Cart")
	if !ok {
		return
	}
	var req cartapp.AddItemRequest
	if !h.BindJSON(c, &req) {
		return
	}
	item, err := h.cartService.AddItem(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, item)
}

// GetItem godoc
// @Summary      Get a cart item
// @Tags         carts
// @Produce      json
// @Param        id      path string true "Cart ID" format(uuid)
// @Param        item_id path string true "Item ID" format(uuid)
// @Success      200 {object} dto.Response{data=cartapp.CartItemResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /store/carts/{id}/items/{item_id} [get]
func (h *CartHandler) GetItem(c *gin.Context) {
	cartID, itemID, ok := h.ids(c)
	if !ok {
		return
	}
	item, err := h.cartService.GetItem(c.Request.Context(), cartID, itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// UpdateItem godoc
// @Summary      Change an item quantity
// @Tags         carts
// @Accept       json
// @Produce      json
// @Param        id      path string                    true "Cart ID" format(uuid)
// @Param        item_id path string                    true "Item ID" format(uuid)
// @Param        request body cartapp.UpdateItemRequest true "Quantity"
// @Success      200 {object} dto.Response{data=cartapp.CartItemResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /store/carts/{id}/items/{item_id} [patch]
func (h *CartHandler) UpdateItem(c *gin.Context) {
	cartID, itemID, ok := h.ids(c)
	if !ok {
		return
	}
	var req cartapp.UpdateItemRequest
	if !h.BindJSON(c, &req) {
		return
	}
	item, err := h.cartService.UpdateItem(c.Request.Context(), cartID, itemID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// RemoveItem godoc
// @Summary      Remove a cart item
// @Tags         carts
// @Param        id      path string true "Cart ID" format(uuid)
// @Param        item_id path string true "Item ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /store/carts/{id}/items/{item_id} [delete]
func (h *CartHandler) RemoveItem(c *gin.Context) {
	cartID, itemID, ok := h.ids(c)
	if !ok {
		return
	}
	if err := h.cartService.RemoveItem(c.Request.Context(), cartID, itemID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func (h *CartHandler) ids(c *gin.Context) (cartID, itemID uuid.UUID, ok bool) {
	if cartID, ok = h.ParamUUID(c, "id", "Cart"); !ok {
		return
	}
	itemID, ok = h.ParamUUID(c, "item_id", "Cart item")
	return
}
