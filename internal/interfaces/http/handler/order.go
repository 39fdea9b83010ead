package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	orderapp "github.com/storefront/backend/internal/application/order"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// OrderHandler handles order endpoints. Customers see their own orders,
// staff see every order.
type OrderHandler struct {
	BaseHandler
	orderService *orderapp.OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService *orderapp.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// InvoiceQuery selects the invoice format
type InvoiceQuery struct {
	Format string `form:"format" binding:"omitempty,oneof=html pdf"`
}

// List godoc
// @Summary      List orders
// @Description  Staff may filter by customer; other users only get their own orders
// @Tags         orders
// @Produce      json
// @Param        customer_id    query string false "Customer ID (staff only)" format(uuid)
// @Param        payment_status query string false "Payment status" Enums(P, C, F)
// @Param        ordering       query string false "Sort order" Enums(placed_at, -placed_at, payment_status, -payment_status)
// @Param        page           query int    false "Page number" default(1)
// @Param        page_size      query int    false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]orderapp.OrderResponse,meta=dto.Meta}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /store/orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	who, ok := h.requester(c)
	if !ok {
		return
	}
	var filter orderapp.OrderListFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	page, err := h.orderService.List(c.Request.Context(), who, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	successPage(c, page)
}

// Create godoc
// @Summary      Place an order
// @Description  Turns the cart into an order of the caller and deletes the cart, in one transaction
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        request body orderapp.PlaceOrderRequest true "Cart to order"
// @Success      201 {object} dto.Response{data=orderapp.OrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /store/orders [post]
func (h *OrderHandler) Create(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	var req orderapp.PlaceOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}
	order, err := h.orderService.PlaceOrder(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// Get godoc
// @Summary      Get an order
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} dto.Response{data=orderapp.OrderResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /store/orders/{id} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	who, ok := h.requester(c)
	if !ok {
		return
	}
	id, ok := h.ParamUUID(c, "id", "Order")
	if !ok {
		return
	}
	order, err := h.orderService.Get(c.Request.Context(), who, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Invoice godoc
// @Summary      Download an invoice
// @Description  HTML by default, PDF when the headless renderer is enabled
// @Tags         orders
// @Produce      html
// @Produce      application/pdf
// @Param        id     path  string true  "Order ID" format(uuid)
// @Param        format query string false "Document format" Enums(html, pdf) default(html)
// @Success      200 {file} binary
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /store/orders/{id}/invoice [get]
func (h *OrderHandler) Invoice(c *gin.Context) {
	who, ok := h.requester(c)
	if !ok {
		return
	}
	id, ok := h.ParamUUID(c, "id", "Order")
	if !ok {
		return
	}
	var q InvoiceQuery
	if !h.BindQuery(c, &q) {
		return
	}
	doc, err := h.orderService.RenderInvoice(c.Request.Context(), who, id, q.Format)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	disposition := "inline"
	if q.Format == orderapp.InvoiceFormatPDF {
		disposition = "attachment"
	}
	c.Header("Content-Disposition", disposition+`; filename="`+doc.FileName+`"`)
	c.Data(http.StatusOK, doc.ContentType, doc.Body)
}

// Update godoc
// @Summary      Update payment status
// @Description  P may move to C or F, F back to P. C is final.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id      path string                      true "Order ID" format(uuid)
// @Param        request body orderapp.UpdateOrderRequest true "Payment status"
// @Success      200 {object} dto.Response{data=orderapp.OrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /store/orders/{id} [patch]
func (h *OrderHandler) Update(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id", "Order")
	if !ok {
		return
	}
	var req orderapp.UpdateOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}
	order, err := h.orderService.UpdatePaymentStatus(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// BulkPaymentStatus godoc
// @Summary      Bulk update payment status
// @Description  Orders whose transition is not allowed are skipped and listed
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        request body orderapp.BulkPaymentStatusRequest true "Orders and status"
// @Success      200 {object} dto.Response{data=orderapp.BulkPaymentStatusResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /store/orders/payment-status [post]
func (h *OrderHandler) BulkPaymentStatus(c *gin.Context) {
	var req orderapp.BulkPaymentStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}
	result, err := h.orderService.BulkSetPaymentStatus(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Delete godoc
// @Summary      Delete an order
// @Tags         orders
// @Param        id path string true "Order ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /store/orders/{id} [delete]
func (h *OrderHandler) Delete(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id", "Order")
	if !ok {
		return
	}
	if err := h.orderService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func (h *OrderHandler) requester(c *gin.Context) (orderapp.Requester, bool) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return orderapp.Requester{}, false
	}
	return orderapp.Requester{UserID: userID, IsStaff: middleware.IsStaff(c)}, true
}
