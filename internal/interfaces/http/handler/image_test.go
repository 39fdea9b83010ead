package handler

import (
	"net/http"
	"testing"

	catalogapp "github.com/storefront/backend/internal/application/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageHandler_UploadFlow(t *testing.T) {
	f := newStorefrontFixture(t)
	mug := f.product(t, "Mug", "4.50", 10)
	imagesURL := "/store/products/" + mug.ID.String() + "/images"
	upload := map[string]any{"file_name": "mug.png", "content_type": "image/png", "file_size": 2048}

	initiate := func(t *testing.T) catalogapp.InitiateImageUploadResponse {
		t.Helper()
		w := f.do(t, http.MethodPost, imagesURL, upload)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		return decodeData[catalogapp.InitiateImageUploadResponse](t, w)
	}

	first := initiate(t)
	assert.NotEmpty(t, first.UploadURL)

	t.Run("confirm activates the image", func(t *testing.T) {
		w := f.do(t, http.MethodPost, imagesURL+"/"+first.ImageID.String()+"/confirm", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "active", decodeData[catalogapp.ImageResponse](t, w).Status)

		listed := decodeData[[]catalogapp.ImageResponse](t, f.do(t, http.MethodGet, imagesURL, nil))
		require.Len(t, listed, 1)
		assert.NotEmpty(t, listed[0].URL)
	})

	second := initiate(t)

	t.Run("confirm before the file is uploaded", func(t *testing.T) {
		img, err := f.images.FindByID(t.Context(), second.ImageID)
		require.NoError(t, err)
		require.NoError(t, f.objects.DeleteObject(t.Context(), img.StorageKey))

		w := f.do(t, http.MethodPost, imagesURL+"/"+second.ImageID.String()+"/confirm", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "UPLOAD_NOT_FOUND", errorCode(t, w))
	})

	t.Run("limit per product", func(t *testing.T) {
		w := f.do(t, http.MethodPost, imagesURL, upload)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "IMAGE_LIMIT_EXCEEDED", errorCode(t, w))
	})

	t.Run("unsupported content type", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/store/products/"+f.product(t, "Plate", "12", 1).ID.String()+"/images",
			map[string]any{"file_name": "plate.bmp", "content_type": "image/bmp", "file_size": 10})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
