package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) preload(query *gorm.DB) *gorm.DB {
	return query.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id ASC") }).
		Preload("Items.Product")
}

// FindByID finds an order with its items
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var o order.Order
	if err := r.preload(r.db.WithContext(ctx)).First(&o, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &o, nil
}

// FindAll lists orders, newest first by default
func (r *GormOrderRepository) FindAll(ctx context.Context, filter order.OrderFilter) ([]order.Order, error) {
	var orders []order.Order
	query := r.applyFilter(r.db.WithContext(ctx).Model(&order.Order{}), filter)
	query = applyPage(applyOrder(query, filter.Filter, OrderSortFields, "placed_at", "desc"), filter.Filter)
	if err := r.preload(query).Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Count counts orders matching the filter
func (r *GormOrderRepository) Count(ctx context.Context, filter order.OrderFilter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&order.Order{}), filter).Count(&count).Error
	return count, err
}

// Create inserts the order and then its items
func (r *GormOrderRepository) Create(ctx context.Context, o *order.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(o).Error; err != nil {
			return translateError(err)
		}
		if len(o.Items) == 0 {
			return nil
		}
		return translateError(tx.Omit(clause.Associations).Create(&o.Items).Error)
	})
}

// UpdatePaymentStatus persists the payment status if the stored version still
// matches the one the order was loaded with. The aggregate's version is
// expected to be already incremented.
func (r *GormOrderRepository) UpdatePaymentStatus(ctx context.Context, o *order.Order) error {
	result := r.db.WithContext(ctx).Model(&order.Order{}).
		Where("id = ? AND version = ?", o.ID, o.Version-1).
		Updates(map[string]any{
			"payment_status": o.PaymentStatus,
			"version":        o.Version,
			"updated_at":     o.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Delete removes an order and its items
func (r *GormOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&order.OrderItem{}, "order_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&order.Order{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Summarize aggregates orders placed in [from, to)
func (r *GormOrderRepository) Summarize(ctx context.Context, from, to time.Time) (*order.PeriodSummary, error) {
	summary := &order.PeriodSummary{
		Revenue:         decimal.Zero,
		ByPaymentStatus: make(map[order.PaymentStatus]int64),
	}

	var statusRows []struct {
		PaymentStatus order.PaymentStatus
		Count         int64
	}
	if err := r.db.WithContext(ctx).Model(&order.Order{}).
		Select("payment_status, COUNT(*) AS count").
		Where("placed_at >= ? AND placed_at < ?", from, to).
		Group("payment_status").
		Scan(&statusRows).Error; err != nil {
		return nil, err
	}
	for _, row := range statusRows {
		summary.ByPaymentStatus[row.PaymentStatus] = row.Count
		summary.OrdersCount += row.Count
	}

	var totals struct {
		ItemsSold int64
		Revenue   decimal.NullDecimal
	}
	if err := r.db.WithContext(ctx).Table("order_items").
		Select("COALESCE(SUM(order_items.quantity), 0) AS items_sold, SUM(order_items.quantity * order_items.unit_price) AS revenue").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.placed_at >= ? AND orders.placed_at < ?", from, to).
		Scan(&totals).Error; err != nil {
		return nil, err
	}
	summary.ItemsSold = totals.ItemsSold
	if totals.Revenue.Valid {
		summary.Revenue = totals.Revenue.Decimal.Round(2)
	}
	return summary, nil
}

// TopProducts returns the best selling products in [from, to) by quantity
func (r *GormOrderRepository) TopProducts(ctx context.Context, from, to time.Time, limit int) ([]order.ProductSales, error) {
	var rows []struct {
		ProductID uuid.UUID
		Title     string
		Quantity  int64
		Revenue   decimal.Decimal
	}
	if err := r.db.WithContext(ctx).Table("order_items").
		Select("order_items.product_id, products.title, SUM(order_items.quantity) AS quantity, SUM(order_items.quantity * order_items.unit_price) AS revenue").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Joins("JOIN products ON products.id = order_items.product_id").
		Where("orders.placed_at >= ? AND orders.placed_at < ?", from, to).
		Group("order_items.product_id, products.title").
		Order("quantity DESC").
		Order("products.title ASC").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	sales := make([]order.ProductSales, len(rows))
	for i, row := range rows {
		sales[i] = order.ProductSales{
			ProductID: row.ProductID,
			Title:     row.Title,
			Quantity:  row.Quantity,
			Revenue:   row.Revenue.Round(2),
		}
	}
	return sales, nil
}

func (r *GormOrderRepository) applyFilter(query *gorm.DB, filter order.OrderFilter) *gorm.DB {
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.PaymentStatus != "" {
		query = query.Where("payment_status = ?", filter.PaymentStatus)
	}
	return query
}

var _ order.OrderRepository = (*GormOrderRepository)(nil)
