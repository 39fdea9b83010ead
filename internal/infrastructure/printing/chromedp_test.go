package printing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPrintParams(t *testing.T) {
	params := buildPrintParams(&RenderRequest{HTML: "<p>x</p>", Margins: DefaultMargins()})

	assert.InDelta(t, mmToInches(210), params.paperWidth, 0.01)
	assert.InDelta(t, mmToInches(297), params.paperHeight, 0.01)
	assert.InDelta(t, mmToInches(15), params.marginTop, 0.001)
	assert.InDelta(t, mmToInches(12), params.marginLeft, 0.001)
	assert.False(t, params.landscape)
	assert.Empty(t, params.footerTemplate)
}

func TestBuildPrintParams_FooterNeedsMargin(t *testing.T) {
	params := buildPrintParams(&RenderRequest{
		HTML:       "<p>x</p>",
		Landscape:  true,
		FooterHTML: "<span class=\"pageNumber\"></span>",
	})

	assert.True(t, params.landscape)
	assert.InDelta(t, mmToInches(10), params.marginBottom, 0.001)
	assert.Zero(t, params.marginTop)
}

func TestBuildCompleteHTML(t *testing.T) {
	wrapped := buildCompleteHTML(&RenderRequest{HTML: "<p>hi</p>", Title: "A & B"})
	assert.Contains(t, wrapped, "<!DOCTYPE html>")
	assert.Contains(t, wrapped, "<title>A &amp; B</title>")
	assert.Contains(t, wrapped, "<body><p>hi</p></body>")

	full := "<!DOCTYPE html><html><body>x</body></html>"
	assert.Equal(t, full, buildCompleteHTML(&RenderRequest{HTML: full}))
}

func TestEstimatePageCount(t *testing.T) {
	assert.Equal(t, 1, estimatePageCount([]byte("%PDF")))
	assert.Equal(t, 2, estimatePageCount([]byte("/Type /Pages /Type /Page /Type /Page")))
}

func TestChromedpRenderer_RejectsEmptyHTML(t *testing.T) {
	r, err := NewChromedpRenderer(nil)
	require.NoError(t, err)
	defer r.Close()

	_, err = r.Render(t.Context(), &RenderRequest{HTML: "   "})

	var renderErr *RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, ErrCodeInvalidHTML, renderErr.Code)
}
