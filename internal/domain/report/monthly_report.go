package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Period is a half-open reporting window [Start, End)
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// MonthPeriod returns the calendar month containing year/month in loc
func MonthPeriod(year int, month time.Month, loc *time.Location) Period {
	if loc == nil {
		loc = time.UTC
	}
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return Period{Start: start, End: start.AddDate(0, 1, 0)}
}

// PreviousMonth returns the calendar month before now
func PreviousMonth(now time.Time) Period {
	prev := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -1, 0)
	return MonthPeriod(prev.Year(), prev.Month(), now.Location())
}

// Label returns the month as YYYY-MM
func (p Period) Label() string {
	return p.Start.Format("2006-01")
}

// TopProduct is a best-seller line of the monthly report
type TopProduct struct {
	ProductID uuid.UUID       `json:"product_id"`
	Title     string          `json:"title"`
	Quantity  int64           `json:"quantity"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// MonthlyReport summarizes store activity for one month
type MonthlyReport struct {
	Period          Period           `json:"period"`
	OrdersCount     int64            `json:"orders_count"`
	ItemsSold       int64            `json:"items_sold"`
	Revenue         decimal.Decimal  `json:"revenue"`
	AverageOrder    decimal.Decimal  `json:"average_order_value"`
	ByPaymentStatus map[string]int64 `json:"by_payment_status"`
	NewCustomers    int64            `json:"new_customers"`
	TopProducts     []TopProduct     `json:"top_products"`
	GeneratedAt     time.Time        `json:"generated_at"`
}

// ComputeAverage fills AverageOrder from revenue and order count
func (r *MonthlyReport) ComputeAverage() {
	if r.OrdersCount == 0 {
		r.AverageOrder = decimal.Zero
		return
	}
	r.AverageOrder = r.Revenue.Div(decimal.NewFromInt(r.OrdersCount)).Round(2)
}

// Subject is the email subject for the report
func (r *MonthlyReport) Subject() string {
	return "Monthly report " + r.Period.Label()
}

// Text renders the report as a plain text email body
func (r *MonthlyReport) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Store report for %s\n\n", r.Period.Label())
	fmt.Fprintf(&b, "Orders:          %d\n", r.OrdersCount)
	fmt.Fprintf(&b, "Items sold:      %d\n", r.ItemsSold)
	fmt.Fprintf(&b, "Revenue:         %s\n", r.Revenue.StringFixed(2))
	fmt.Fprintf(&b, "Average order:   %s\n", r.AverageOrder.StringFixed(2))
	fmt.Fprintf(&b, "New customers:   %d\n", r.NewCustomers)

	if len(r.ByPaymentStatus) > 0 {
		b.WriteString("\nPayment status\n")
		for _, status := range []string{"Pending", "Complete", "Failed"} {
			if n, ok := r.ByPaymentStatus[status]; ok {
				fmt.Fprintf(&b, "  %-10s %d\n", status, n)
			}
		}
	}
	if len(r.TopProducts) > 0 {
		b.WriteString("\nTop products\n")
		for i, p := range r.TopProducts {
			fmt.Fprintf(&b, "  %d. %s x%d (%s)\n", i+1, p.Title, p.Quantity, p.Revenue.StringFixed(2))
		}
	}
	return b.String()
}
