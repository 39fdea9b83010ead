package report

import (
	"context"

	"github.com/shopspring/decimal"
)

// OrderSummary holds the order totals of a period
type OrderSummary struct {
	OrdersCount int64
	ItemsSold   int64
	Revenue     decimal.Decimal
}

// ReportRepository runs the aggregate queries behind the monthly report.
// Every method considers orders placed within [p.Start, p.End).
type ReportRepository interface {
	OrderSummary(ctx context.Context, p Period) (*OrderSummary, error)
	// PaymentStatusCounts is keyed by payment status code (P, C, F)
	PaymentStatusCounts(ctx context.Context, p Period) (map[string]int64, error)
	// NewCustomers counts customer profiles created within the period
	NewCustomers(ctx context.Context, p Period) (int64, error)
	// TopProducts ranks products by quantity sold, then revenue
	TopProducts(ctx context.Context, p Period, limit int) ([]TopProduct, error)
}
