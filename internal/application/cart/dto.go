package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/cart"
)

// AddItemRequest adds a product to a cart
type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1,max=32767"`
}

// UpdateItemRequest changes the quantity of a cart line
type UpdateItemRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1,max=32767"`
}

// SimpleProduct is the product summary shown inside a cart
type SimpleProduct struct {
	ID        uuid.UUID       `json:"id"`
	Title     string          `json:"title"`
	UnitPrice decimal.Decimal `json:"unit_price" swaggertype:"string"`
}

// CartItemResponse represents a cart line
type CartItemResponse struct {
	ID         uuid.UUID       `json:"id"`
	Product    *SimpleProduct  `json:"product"`
	Quantity   int             `json:"quantity"`
	TotalPrice decimal.Decimal `json:"total_price" swaggertype:"string"`
}

// CartResponse represents a cart with its computed total
type CartResponse struct {
	ID         uuid.UUID          `json:"id"`
	CreatedAt  time.Time          `json:"created_at"`
	Items      []CartItemResponse `json:"items"`
	TotalPrice decimal.Decimal    `json:"total_price" swaggertype:"string"`
}

// ToCartItemResponse converts a domain CartItem
func ToCartItemResponse(item *cart.CartItem) CartItemResponse {
	resp := CartItemResponse{
		ID:         item.ID,
		Quantity:   item.Quantity,
		TotalPrice: item.TotalPrice(),
	}
	if item.Product != nil {
		resp.Product = &SimpleProduct{
			ID:        item.Product.ID,
			Title:     item.Product.Title,
			UnitPrice: item.Product.UnitPrice,
		}
	}
	return resp
}

// ToCartResponse converts a domain Cart
func ToCartResponse(c *cart.Cart) CartResponse {
	items := make([]CartItemResponse, len(c.Items))
	for i := range c.Items {
		items[i] = ToCartItemResponse(&c.Items[i])
	}
	return CartResponse{
		ID:         c.ID,
		CreatedAt:  c.CreatedAt,
		Items:      items,
		TotalPrice: c.TotalPrice(),
	}
}
