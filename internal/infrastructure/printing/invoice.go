package printing

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/shopspring/decimal"
	apporder "github.com/storefront/backend/internal/application/order"
	"go.uber.org/zap"
)

var invoiceTmpl = template.Must(template.New("invoice").Funcs(template.FuncMap{
	"money": func(d decimal.Decimal) string { return d.StringFixed(2) },
	"date":  func(t time.Time) string { return t.Format("2006-01-02") },
}).Parse(invoiceTemplate))

// InvoiceRenderer renders order invoices as HTML, and as PDF when a
// PDFRenderer is configured
type InvoiceRenderer struct {
	company string
	pdf     PDFRenderer
	logger  *zap.Logger
}

// NewInvoiceRenderer creates a new InvoiceRenderer. pdf may be nil.
func NewInvoiceRenderer(company string, pdf PDFRenderer, logger *zap.Logger) *InvoiceRenderer {
	return &InvoiceRenderer{company: company, pdf: pdf, logger: logger}
}

// RenderHTML renders the invoice page
func (r *InvoiceRenderer) RenderHTML(_ context.Context, inv *apporder.Invoice) ([]byte, error) {
	var buf bytes.Buffer
	err := invoiceTmpl.Execute(&buf, struct {
		Company string
		Invoice *apporder.Invoice
	}{r.company, inv})
	if err != nil {
		return nil, fmt.Errorf("render invoice %s: %w", inv.Number, err)
	}
	return buf.Bytes(), nil
}

// RenderPDF prints the invoice page to PDF
func (r *InvoiceRenderer) RenderPDF(ctx context.Context, inv *apporder.Invoice) ([]byte, error) {
	if r.pdf == nil {
		return nil, apporder.ErrPDFUnavailable
	}

	page, err := r.RenderHTML(ctx, inv)
	if err != nil {
		return nil, err
	}

	res, err := r.pdf.Render(ctx, &RenderRequest{
		HTML:       string(page),
		Title:      inv.Number,
		Margins:    DefaultMargins(),
		FooterHTML: invoiceFooter,
	})
	if err != nil {
		r.logger.Error("invoice pdf failed", zap.String("invoice", inv.Number), zap.Error(err))
		return nil, err
	}
	return res.PDFData, nil
}

var _ apporder.InvoiceRenderer = (*InvoiceRenderer)(nil)
