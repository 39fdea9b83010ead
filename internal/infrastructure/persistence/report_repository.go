package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/report"
	"gorm.io/gorm"
)

// GormReportRepository implements report.ReportRepository using GORM
type GormReportRepository struct {
	db *gorm.DB
}

// NewGormReportRepository creates a new GormReportRepository
func NewGormReportRepository(db *gorm.DB) *GormReportRepository {
	return &GormReportRepository{db: db}
}

func (r *GormReportRepository) ordersIn(ctx context.Context, p report.Period) *gorm.DB {
	return r.db.WithContext(ctx).Table("orders o").
		Where("o.placed_at >= ? AND o.placed_at < ?", p.Start, p.End)
}

// OrderSummary returns order count, items sold and revenue for the period
func (r *GormReportRepository) OrderSummary(ctx context.Context, p report.Period) (*report.OrderSummary, error) {
	var count int64
	if err := r.ordersIn(ctx, p).Count(&count).Error; err != nil {
		return nil, err
	}

	var lines struct {
		ItemsSold int64
		Revenue   decimal.Decimal
	}
	err := r.ordersIn(ctx, p).
		Select(`
			COALESCE(SUM(oi.quantity), 0) as items_sold,
			COALESCE(SUM(oi.quantity * oi.unit_price), 0) as revenue
		`).
		Joins("JOIN order_items oi ON oi.order_id = o.id").
		Scan(&lines).Error
	if err != nil {
		return nil, err
	}

	return &report.OrderSummary{
		OrdersCount: count,
		ItemsSold:   lines.ItemsSold,
		Revenue:     lines.Revenue.Round(2),
	}, nil
}

// PaymentStatusCounts counts the period's orders per payment status code
func (r *GormReportRepository) PaymentStatusCounts(ctx context.Context, p report.Period) (map[string]int64, error) {
	var rows []struct {
		PaymentStatus string
		Count         int64
	}
	err := r.ordersIn(ctx, p).
		Select("o.payment_status, COUNT(*) as count").
		Group("o.payment_status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.PaymentStatus] = row.Count
	}
	return counts, nil
}

// NewCustomers counts customer profiles created within the period
func (r *GormReportRepository) NewCustomers(ctx context.Context, p report.Period) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Table("customers").
		Where("created_at >= ? AND created_at < ?", p.Start, p.End).
		Count(&count).Error
	return count, err
}

// TopProducts ranks the period's products by quantity sold
func (r *GormReportRepository) TopProducts(ctx context.Context, p report.Period, limit int) ([]report.TopProduct, error) {
	var rows []struct {
		ProductID uuid.UUID
		Title     string
		Quantity  int64
		Revenue   decimal.Decimal
	}
	err := r.ordersIn(ctx, p).
		Select(`
			oi.product_id,
			pr.title,
			SUM(oi.quantity) as quantity,
			SUM(oi.quantity * oi.unit_price) as revenue
		`).
		Joins("JOIN order_items oi ON oi.order_id = o.id").
		Joins("JOIN products pr ON pr.id = oi.product_id").
		Group("oi.product_id, pr.title").
		Order("quantity DESC, revenue DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	top := make([]report.TopProduct, len(rows))
	for i, row := range rows {
		top[i] = report.TopProduct{
			ProductID: row.ProductID,
			Title:     row.Title,
			Quantity:  row.Quantity,
			Revenue:   row.Revenue.Round(2),
		}
	}
	return top, nil
}

var _ report.ReportRepository = (*GormReportRepository)(nil)
