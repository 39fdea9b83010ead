package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// APIResponse decodes the success envelope with a typed data field
type APIResponse[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data"`
	Error   *dto.ErrorInfo `json:"error"`
	Meta    *dto.Meta      `json:"meta"`
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func decodeInto(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func TestBaseHandler_HandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", shared.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"wrapped domain error", fmt.Errorf("load: %w", shared.NewDomainError("PRODUCT_IN_USE", "in use")), http.StatusConflict, "PRODUCT_IN_USE"},
		{"collection not empty", shared.NewDomainError("COLLECTION_NOT_EMPTY", "not empty"), http.StatusConflict, "COLLECTION_NOT_EMPTY"},
		{"invalid prefix", shared.NewDomainError("INVALID_RATING", "bad rating"), http.StatusBadRequest, "INVALID_RATING"},
		{"not found suffix", shared.NewDomainError("CART_ITEM_NOT_FOUND", "gone"), http.StatusNotFound, "CART_ITEM_NOT_FOUND"},
		{"gorm not found", gorm.ErrRecordNotFound, http.StatusNotFound, dto.ErrCodeNotFound},
		{"unexpected", errors.New("connection reset"), http.StatusInternalServerError, dto.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			h := &BaseHandler{}
			h.HandleError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}

func TestBaseHandler_HandleError_HidesInternalMessage(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	(&BaseHandler{}).HandleError(c, errors.New("pq: password authentication failed"))

	assert.NotContains(t, w.Body.String(), "password")
	require.Len(t, c.Errors, 1)
}

func TestBaseHandler_ParamUUID(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/store/products/abc", nil)
	c.Params = gin.Params{{Key: "id", Value: "abc"}}

	_, ok := (&BaseHandler{}).ParamUUID(c, "id", "Product")

	assert.False(t, ok)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Product not found", decodeResponse(t, w).Error.Message)
}

func TestBaseHandler_CurrentUserID_Missing(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	_, ok := (&BaseHandler{}).CurrentUserID(c)

	assert.False(t, ok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPageEnvelope(t *testing.T) {
	newContext := func(target string) *gin.Context {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, target, nil)
		return c
	}
	page := func(n int) *shared.Paginated[string] {
		p := shared.NewPaginated([]string{"a", "b"}, 5, n, 2)
		return &p
	}

	t.Run("middle page links both ways", func(t *testing.T) {
		c := newContext("/store/products?page=2&page_size=2&search=mug")
		env := pageEnvelope(c, "https://shop.example.com/", page(2))

		assert.Equal(t, int64(5), env.Count)
		require.NotNil(t, env.Next)
		require.NotNil(t, env.Previous)
		assert.Equal(t, "https://shop.example.com/store/products?page=3&page_size=2&search=mug", *env.Next)
		// page 1 drops the page parameter
		assert.Equal(t, "https://shop.example.com/store/products?page_size=2&search=mug", *env.Previous)
	})

	t.Run("first page has no previous", func(t *testing.T) {
		env := pageEnvelope(newContext("/store/products?page_size=2"), "https://shop.example.com", page(1))
		assert.Nil(t, env.Previous)
		require.NotNil(t, env.Next)
	})

	t.Run("last page has no next", func(t *testing.T) {
		env := pageEnvelope(newContext("/store/products?page=3&page_size=2"), "https://shop.example.com", page(3))
		assert.Nil(t, env.Next)
		require.NotNil(t, env.Previous)
	})

	t.Run("falls back to the request host", func(t *testing.T) {
		c := newContext("/store/products?page_size=2")
		c.Request.Host = "api.local:8080"
		c.Request.Header.Set("X-Forwarded-Proto", "https")

		env := pageEnvelope(c, "", page(1))
		require.NotNil(t, env.Next)
		assert.Equal(t, "https://api.local:8080/store/products?page=2&page_size=2", *env.Next)
	})

	t.Run("nil items become an empty list", func(t *testing.T) {
		p := shared.NewPaginated[string](nil, 0, 1, 20)
		env := pageEnvelope(newContext("/store/products"), "", &p)
		assert.NotNil(t, env.Results)
		assert.Empty(t, env.Results)
	})
}
