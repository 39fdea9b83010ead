package printing

import (
	"bytes"
	"context"
	"time"
)

// Margins in millimeters
type Margins struct {
	Top, Right, Bottom, Left int
}

// DefaultMargins leaves room for the page footer on invoices
func DefaultMargins() Margins {
	return Margins{Top: 15, Right: 12, Bottom: 15, Left: 12}
}

const (
	a4WidthMM  = 210
	a4HeightMM = 297
)

// RenderRequest describes one A4 document to print
type RenderRequest struct {
	HTML      string
	Landscape bool
	Margins   Margins
	// Title ends up in the PDF metadata and the browser tab
	Title string
	// FooterHTML is repeated on every page. Chrome substitutes the
	// pageNumber and totalPages classes.
	FooterHTML string
	// Timeout overrides the renderer default when positive
	Timeout time.Duration
}

type RenderResult struct {
	PDFData        []byte
	PageCount      int
	RenderDuration time.Duration
}

// PDFRenderer turns HTML into PDF. The chromedp implementation drives a
// headless Chrome; tests substitute a mock.
type PDFRenderer interface {
	Render(ctx context.Context, req *RenderRequest) (*RenderResult, error)
	Close() error
}

const (
	ErrCodeRenderTimeout = "RENDER_TIMEOUT"
	ErrCodeRenderFailed  = "RENDER_FAILED"
	ErrCodeInvalidHTML   = "INVALID_HTML"
)

// RenderError tags a rendering failure with one of the ErrCode constants
// and wraps the chromedp error, if any
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{Code: code, Message: message, Cause: cause}
}

func (e *RenderError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + ": " + e.Cause.Error()
}

func (e *RenderError) Unwrap() error { return e.Cause }

// estimatePageCount counts /Type /Page objects. Every match of the page tree
// marker /Type /Pages also matches the shorter pattern, so those are
// subtracted.
func estimatePageCount(pdf []byte) int {
	pages := bytes.Count(pdf, []byte("/Type /Page")) - bytes.Count(pdf, []byte("/Type /Pages"))
	return max(pages, 1)
}
