package handler

import (
	"net/http"
	"testing"

	catalogapp "github.com/storefront/backend/internal/application/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewHandler_ScopedToProduct(t *testing.T) {
	f := newStorefrontFixture(t)
	mug := f.product(t, "Mug", "4.50", 10)
	plate := f.product(t, "Plate", "12", 3)
	mugReviews := "/store/products/" + mug.ID.String() + "/reviews"

	w := f.do(t, http.MethodPost, mugReviews, map[string]any{"name": "Dana", "description": "Keeps coffee warm"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	review := decodeData[catalogapp.ReviewResponse](t, w)
	assert.Equal(t, mug.ID, review.ProductID)

	t.Run("get through its product", func(t *testing.T) {
		w := f.do(t, http.MethodGet, mugReviews+"/"+review.ID.String(), nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Dana", decodeData[catalogapp.ReviewResponse](t, w).Name)
	})

	t.Run("not found through another product", func(t *testing.T) {
		target := "/store/products/" + plate.ID.String() + "/reviews/" + review.ID.String()
		assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, target, nil).Code)
		assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodPatch, target, map[string]any{"name": "Eve"}).Code)
		assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodDelete, target, nil).Code)
	})

	t.Run("listed only under its product", func(t *testing.T) {
		mine := decodeData[[]catalogapp.ReviewResponse](t, f.do(t, http.MethodGet, mugReviews, nil))
		assert.Len(t, mine, 1)
		other := decodeData[[]catalogapp.ReviewResponse](t, f.do(t, http.MethodGet, "/store/products/"+plate.ID.String()+"/reviews", nil))
		assert.Empty(t, other)
	})

	t.Run("missing description", func(t *testing.T) {
		w := f.do(t, http.MethodPost, mugReviews, map[string]any{"name": "Dana"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION_ERROR", errorCode(t, w))
	})

	t.Run("delete", func(t *testing.T) {
		target := mugReviews + "/" + review.ID.String()
		assert.Equal(t, http.StatusNoContent, f.do(t, http.MethodDelete, target, nil).Code)
		assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, target, nil).Code)
	})
}
