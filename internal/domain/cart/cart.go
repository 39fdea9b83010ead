package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
)

// Quantity bounds of a cart line (smallint, positive)
const (
	MinQuantity = 1
	MaxQuantity = 32767
)

// Cart is an anonymous shopping cart. Its UUID is the only credential
// needed to read or change it.
type Cart struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time  `gorm:"not null;index"`
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (Cart) TableName() string {
	return "carts"
}

// CartItem is one product line of a cart. A product appears at most once per cart.
type CartItem struct {
	ID        uuid.UUID        `gorm:"type:uuid;primaryKey"`
	CartID    uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_cart_items_cart_product"`
	ProductID uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_cart_items_cart_product"`
	Quantity  int              `gorm:"type:smallint;not null"`
	Product   *catalog.Product `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (CartItem) TableName() string {
	return "cart_items"
}

// NewCart creates an empty cart
func NewCart() *Cart {
	return &Cart{
		ID:        uuid.New(),
		CreatedAt: time.Now(),
		Items:     make([]CartItem, 0),
	}
}

// IsEmpty reports whether the cart has no items
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// FindItem returns the item with the given id
func (c *Cart) FindItem(itemID uuid.UUID) (*CartItem, bool) {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			return &c.Items[i], true
		}
	}
	return nil, false
}

// FindItemByProduct returns the line holding productID
func (c *Cart) FindItemByProduct(productID uuid.UUID) (*CartItem, bool) {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i], true
		}
	}
	return nil, false
}

// AddItem adds quantity of product to the cart. When the product is already
// in the cart its line quantity is increased instead. The returned item is the
// line that was created or changed.
func (c *Cart) AddItem(product *catalog.Product, quantity int) (*CartItem, error) {
	if product == nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product is required")
	}
	if err := validateQuantity(quantity); err != nil {
		return nil, err
	}
	if item, ok := c.FindItemByProduct(product.ID); ok {
		if err := validateQuantity(item.Quantity + quantity); err != nil {
			return nil, err
		}
		item.Quantity += quantity
		item.Product = product
		return item, nil
	}
	c.Items = append(c.Items, CartItem{
		ID:        uuid.New(),
		CartID:    c.ID,
		ProductID: product.ID,
		Quantity:  quantity,
		Product:   product,
	})
	return &c.Items[len(c.Items)-1], nil
}

// UpdateItem sets the quantity of an existing line
func (c *Cart) UpdateItem(itemID uuid.UUID, quantity int) (*CartItem, error) {
	if err := validateQuantity(quantity); err != nil {
		return nil, err
	}
	item, ok := c.FindItem(itemID)
	if !ok {
		return nil, shared.ErrNotFound
	}
	item.Quantity = quantity
	return item, nil
}

// RemoveItem drops a line from the cart
func (c *Cart) RemoveItem(itemID uuid.UUID) error {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return nil
		}
	}
	return shared.ErrNotFound
}

// TotalPrice is the sum of all line totals. Lines without a loaded product count as zero.
func (c *Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for i := range c.Items {
		total = total.Add(c.Items[i].TotalPrice())
	}
	return total
}

// TotalQuantity is the number of units across all lines
func (c *Cart) TotalQuantity() int {
	n := 0
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

// TotalPrice returns quantity * unit price
func (i *CartItem) TotalPrice() decimal.Decimal {
	if i.Product == nil {
		return decimal.Zero
	}
	return i.Product.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func validateQuantity(q int) error {
	if q < MinQuantity || q > MaxQuantity {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be between 1 and 32767")
	}
	return nil
}
