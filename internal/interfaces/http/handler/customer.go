package handler

import (
	"github.com/gin-gonic/gin"
	customerapp "github.com/storefront/backend/internal/application/customer"
)

// CustomerHandler handles customer profiles, both the caller's own and the
// staff administration endpoints
type CustomerHandler struct {
	BaseHandler
	customerService *customerapp.CustomerService
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(customerService *customerapp.CustomerService) *CustomerHandler {
	return &CustomerHandler{customerService: customerService}
}

// GetMe godoc
// @Summary      Get my customer profile
// @Description  The profile is created from the account on first access
// @Tags         customers
// @Produce      json
// @Success      200 {object} dto.Response{data=customerapp.CustomerResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /store/customers/me [get]
func (h *CustomerHandler) GetMe(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	customer, err := h.customerService.GetMe(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customer)
}

// UpdateMe godoc
// @Summary      Update my customer profile
// @Description  Membership is ignored, only staff may change it
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        request body customerapp.UpdateCustomerRequest true "Fields to change"
// @Success      200 {object} dto.Response{data=customerapp.CustomerResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /store/customers/me [patch]
func (h *CustomerHandler) UpdateMe(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	var req customerapp.UpdateCustomerRequest
	if !h.BindJSON(c, &req) {
		return
	}
	customer, err := h.customerService.UpdateMe(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customer)
}

// GetMyAddress godoc
// @Summary      Get my address
// @Tags         customers
// @Produce      json
// @Success      200 {object} dto.Response{data=customerapp.AddressResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /store/customers/me/address [get]
func (h *CustomerHandler) GetMyAddress(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	address, err := h.customerService.GetMyAddress(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, address)
}

// PutMyAddress godoc
// @Summary      Set my address
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        request body customerapp.AddressRequest true "Address"
// @Success      200 {object} dto.Response{data=customerapp.AddressResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /store/customers/me/address [put]
func (h *CustomerHandler) PutMyAddress(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	var req customerapp.AddressRequest
	if !h.BindJSON(c, &req) {
		return
	}
	address, err := h.customerService.UpsertMyAddress(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, address)
}

// DeleteMyAddress godoc
// @Summary      Delete my address
// @Tags         customers
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /store/customers/me/address [delete]
func (h *CustomerHandler) DeleteMyAddress(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	if err := h.customerService.DeleteMyAddress(c.Request.Context(), userID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// List godoc
// @Summary      List customers
// @Tags         customers
// @Produce      json
// @Param        search     query string false "First or last name prefix"
// @Param        membership query string false "Membership" Enums(B, S, G)
// @Param        ordering   query string false "Sort order" Enums(first_name, -first_name, last_name, -last_name)
// @Param        page       query int    false "Page number" default(1)
// @Param        page_size  query int    false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]customerapp.CustomerResponse,meta=dto.Meta}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /store/customers [get]
func (h *CustomerHandler) List(c *gin.Context) {
	var filter customerapp.CustomerListFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	page, err := h.customerService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	successPage(c, page)
}

// Create godoc
// @Summary      Create a customer
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        request body customerapp.CreateCustomerRequest true "Customer"
// @Success      201 {object} dto.Response{data=customerapp.CustomerResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /store/customers [post]
func (h *CustomerHandler) Create(c *gin.Context) {
	var req customerapp.CreateCustomerRequest
	if !h.BindJSON(c, &req) {
		return
	}
	customer, err := h.customerService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, customer)
}

// GetByID godoc
// @Summary      Get a customer
// @Tags         customers
// @Produce      json
// @Param        id path string true "Customer ID" format(uuid)
// @Success      200 {object} dto.Response{data=customerapp.CustomerResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /store/customers/{id} [get]
func (h *CustomerHandler) GetByID(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id", "Customer")
	if !ok {
		return
	}
	customer, err := h.customerService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customer)
}

// Update godoc
// @Summary      Update a customer
// @Description  Used for both PUT and PATCH, absent fields are left unchanged
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        id      path string                            true "Customer ID" format(uuid)
// @Param        request body customerapp.UpdateCustomerRequest true "Fields to change"
// @Success      200 {object} dto.Response{data=customerapp.CustomerResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /store/customers/{id} [patch]
func (h *CustomerHandler) Update(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id", "Customer")
	if !ok {
		return
	}
	var req customerapp.UpdateCustomerRequest
	if !h.BindJSON(c, &req) {
		return
	}
	customer, err := h.customerService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customer)
}

// Delete godoc
// @Summary      Delete a customer
// @Description  Refused with 409 CUSTOMER_HAS_ORDERS while the customer has orders
// @Tags         customers
// @Param        id path string true "Customer ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /store/customers/{id} [delete]
func (h *CustomerHandler) Delete(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id", "Customer")
	if !ok {
		return
	}
	if err := h.customerService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// SetMembership godoc
// @Summary      Bulk set membership
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        request body customerapp.SetMembershipRequest true "Customers and membership"
// @Success      200 {object} dto.Response{data=customerapp.SetMembershipResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /store/customers/membership [post]
func (h *CustomerHandler) SetMembership(c *gin.Context) {
	var req customerapp.SetMembershipRequest
	if !h.BindJSON(c, &req) {
		return
	}
	result, err := h.customerService.SetMembership(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// GetAddress godoc
// @Summary      Get a customer's address
// @Tags         customers
// @Produce      json
// @Param        id path string true "Customer ID" format(uuid)
// @Success      200 {object} dto.Response{data=customerapp.AddressResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /store/customers/{id}/address [get]
func (h *CustomerHandler) GetAddress(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id", "Customer")
	if !ok {
		return
	}
	address, err := h.customerService.GetAddress(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, address)
}

// PutAddress godoc
// @Summary      Set a customer's address
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        id      path string                     true "Customer ID" format(uuid)
// @Param        request body customerapp.AddressRequest true "Address"
// @Success      200 {object} dto.Response{data=customerapp.AddressResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /store/customers/{id}/address [put]
func (h *CustomerHandler) PutAddress(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id", "Customer")
	if !ok {
		return
	}
	var req customerapp.AddressRequest
	if !h.BindJSON(c, &req) {
		return
	}
	address, err := h.customerService.UpsertAddress(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, address)
}

// DeleteAddress godoc
// @Summary      Delete a customer's address
// @Tags         customers
// @Param        id path string true "Customer ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /store/customers/{id}/address [delete]
func (h *CustomerHandler) DeleteAddress(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id", "Customer")
	if !ok {
		return
	}
	if err := h.customerService.DeleteAddress(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

