package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
)

func TestServerTiming_WritesHeader(t *testing.T) {
	router := gin.New()
	router.Use(ServerTiming())
	router.GET("/products", func(c *gin.Context) {
		telemetry.StartTiming(c.Request.Context(), "db", "products").Stop()
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	header := w.Header().Get("Server-Timing")
	assert.Contains(t, header, "total")
	assert.Contains(t, header, "db")
}

func TestServerTiming_NoContentResponse(t *testing.T) {
	router := gin.New()
	router.Use(ServerTiming())
	router.DELETE("/carts/1", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/carts/1", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, w.Header().Get("Server-Timing"), "total")
}
