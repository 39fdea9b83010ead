package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
)

// maxImportFileSize caps the uploaded CSV
const maxImportFileSize = 5 << 20

// ProductImportHandler handles bulk product imports
type ProductImportHandler struct {
	BaseHandler
	importService *catalogapp.ProductImportService
}

// NewProductImportHandler creates a new ProductImportHandler
func NewProductImportHandler(importService *catalogapp.ProductImportService) *ProductImportHandler {
	return &ProductImportHandler{importService: importService}
}

// ImportQuery holds the import options
type ImportQuery struct {
	Mode   string `form:"mode" binding:"omitempty,oneof=skip update fail"`
	DryRun bool   `form:"dry_run"`
}

// Import godoc
// @Summary      Import products from CSV
// @Description  Columns: title, unit_price, collection_id, and optionally description, inventory and slug. Rows whose slug matches an existing product are handled per mode. Invalid rows are reported and skipped.
// @Tags         products
// @Accept       multipart/form-data
// @Produce      json
// @Param        file    formData file   true  "CSV file, UTF-8 or with a byte order mark"
// @Param        mode    query    string false "Slug conflict handling" Enums(skip, update, fail) default(skip)
// @Param        dry_run query    bool   false "Validate only"
// @Success      200 {object} dto.Response{data=catalogapp.ProductImportResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      413 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /store/products/import [post]
func (h *ProductImportHandler) Import(c *gin.Context) {
	var query ImportQuery
	if !h.BindQuery(c, &query) {
		return
	}
	if query.Mode == "" {
		query.Mode = string(catalogapp.ImportModeSkip)
	}

	header, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, "A CSV file is required in the 'file' field")
		return
	}
	if header.Size > maxImportFileSize {
		h.Error(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "The CSV file must be at most 5 MB")
		return
	}
	file, err := header.Open()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer file.Close()

	result, err := h.importService.Import(c.Request.Context(), file, catalogapp.ImportMode(query.Mode), query.DryRun)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
