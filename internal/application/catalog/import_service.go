package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/csvimport"
	"go.uber.org/zap"
)

// Import limits
const (
	MaxImportRows      = 5000
	maxImportRowErrors = 200
)

// ImportMode decides what happens to a row whose slug matches an existing product
type ImportMode string

const (
	ImportModeSkip   ImportMode = "skip"
	ImportModeUpdate ImportMode = "update"
	ImportModeFail   ImportMode = "fail"
)

// IsValid reports whether m is a known mode
func (m ImportMode) IsValid() bool {
	switch m {
	case ImportModeSkip, ImportModeUpdate, ImportModeFail:
		return true
	}
	return false
}

// ProductImportResult summarises an import. In a dry run nothing is
// written and only TotalRows, ValidRows and the error fields are set.
type ProductImportResult struct {
	DryRun      bool                 `json:"dry_run"`
	TotalRows   int                  `json:"total_rows"`
	ValidRows   int                  `json:"valid_rows"`
	Created     int                  `json:"created"`
	Updated     int                  `json:"updated"`
	Skipped     int                  `json:"skipped"`
	ErrorRows   int                  `json:"error_rows"`
	Errors      []csvimport.RowError `json:"errors,omitempty"`
	IsTruncated bool                 `json:"is_truncated,omitempty"`
	TotalErrors int                  `json:"total_errors,omitempty"`
}

// ProductImportService creates and updates products from a CSV file with
// the columns title, unit_price, collection_id and optionally description,
// inventory and slug. The slug column only matches existing products;
// new products always get a slug derived from their title.
type ProductImportService struct {
	products       *ProductService
	productRepo    catalog.ProductRepository
	collectionRepo catalog.CollectionRepository
	logger         *zap.Logger
}

// NewProductImportService creates a new ProductImportService
func NewProductImportService(
	products *ProductService,
	productRepo catalog.ProductRepository,
	collectionRepo catalog.CollectionRepository,
	logger *zap.Logger,
) *ProductImportService {
	return &ProductImportService{
		products:       products,
		productRepo:    productRepo,
		collectionRepo: collectionRepo,
		logger:         logger,
	}
}

// Rules returns the column rules rows are validated against
func (s *ProductImportService) Rules() []csvimport.FieldRule {
	return []csvimport.FieldRule{
		csvimport.Field("title").Required().Length(1, 255).Build(),
		csvimport.Field("unit_price").Required().Decimal().Range(catalog.MinUnitPrice, catalog.MaxUnitPrice).Build(),
		csvimport.Field("collection_id").Required().UUID().Build(),
		csvimport.Field("description").Length(0, 10000).Build(),
		csvimport.Field("inventory").Int().Min(decimal.Zero).Build(),
		csvimport.Field("slug").Length(0, 255).Unique().Build(),
	}
}

// Import reads r and applies every valid row. Invalid rows are reported
// and skipped; file level problems fail the whole import with an
// INVALID_IMPORT_FILE error.
func (s *ProductImportService) Import(ctx context.Context, r io.Reader, mode ImportMode, dryRun bool) (*ProductImportResult, error) {
	if !mode.IsValid() {
		return nil, shared.NewDomainError("INVALID_IMPORT_MODE", "Mode must be one of skip, update or fail")
	}

	parser, err := csvimport.NewParser(r)
	if err != nil {
		return nil, importFileError(err)
	}
	if err := parser.ParseHeader(); err != nil {
		return nil, importFileError(err)
	}

	errs := csvimport.NewErrorCollection(maxImportRowErrors)
	validator := csvimport.NewValidator(s.Rules(), errs)
	if missing := parser.MissingHeaders(validator.RequiredColumns()); len(missing) > 0 {
		return nil, shared.NewDomainError("INVALID_IMPORT_FILE", fmt.Sprintf("Missing required columns: %v", missing))
	}

	rows, err := parser.ReadAll(MaxImportRows)
	if err != nil {
		return nil, importFileError(err)
	}

	result := &ProductImportResult{DryRun: dryRun, TotalRows: len(rows)}
	collections := make(map[uuid.UUID]bool)
	valid := make([]*csvimport.Row, 0, len(rows))
	for _, row := range rows {
		if !validator.ValidateRow(row) {
			continue
		}
		ok, err := s.collectionExists(ctx, collections, row, errs)
		if err != nil {
			return nil, err
		}
		if ok {
			valid = append(valid, row)
		}
	}
	result.ValidRows = len(valid)

	if !dryRun {
		for _, row := range valid {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if err := s.applyRow(ctx, row, mode, result, errs); err != nil {
				return nil, err
			}
		}
		s.logger.Info("Product import finished",
			zap.Int("rows", result.TotalRows),
			zap.Int("created", result.Created),
			zap.Int("updated", result.Updated),
			zap.Int("skipped", result.Skipped),
			zap.Int("errors", errs.FailedLines()))
	}

	result.ErrorRows = errs.FailedLines()
	result.Errors = errs.Errors()
	result.IsTruncated = errs.IsTruncated()
	result.TotalErrors = errs.TotalCount()
	return result, nil
}

// collectionExists checks the row's collection once per distinct ID
func (s *ProductImportService) collectionExists(ctx context.Context, cache map[uuid.UUID]bool, row *csvimport.Row, errs *csvimport.ErrorCollection) (bool, error) {
	raw := row.Get("collection_id")
	id := uuid.MustParse(raw)
	exists, seen := cache[id]
	if !seen {
		_, err := s.collectionRepo.FindByID(ctx, id)
		switch {
		case err == nil:
			exists = true
		case errors.Is(err, shared.ErrNotFound):
			exists = false
		default:
			return false, err
		}
		cache[id] = exists
	}
	if !exists {
		errs.Addf(row.Line, "collection_id", csvimport.CodeReferenceNotFound, raw, "collection %s does not exist", raw)
	}
	return exists, nil
}

// applyRow writes one validated row. Only infrastructure failures are
// returned; domain rejections become row errors.
func (s *ProductImportService) applyRow(ctx context.Context, row *csvimport.Row, mode ImportMode, result *ProductImportResult, errs *csvimport.ErrorCollection) error {
	price := decimal.RequireFromString(row.Get("unit_price"))
	collectionID := uuid.MustParse(row.Get("collection_id"))
	inventory, _ := strconv.Atoi(row.GetOrDefault("inventory", "0"))
	title := row.Get("title")
	description := row.Get("description")

	if slug := row.Get("slug"); slug != "" {
		existing, err := s.productRepo.FindBySlug(ctx, slug)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		if existing != nil {
			switch mode {
			case ImportModeSkip:
				result.Skipped++
				return nil
			case ImportModeFail:
				errs.Addf(row.Line, "slug", csvimport.CodeAlreadyExists, slug, "product %q already exists", slug)
				return nil
			}
			// blank optional columns leave the stored value alone
			req := UpdateProductRequest{
				Title:        &title,
				UnitPrice:    &price,
				CollectionID: &collectionID,
			}
			if description != "" {
				req.Description = &description
			}
			if row.Get("inventory") != "" {
				req.Inventory = &inventory
			}
			if _, err := s.products.Update(ctx, existing.ID, req); err != nil {
				return s.rowFailure(row, err, errs)
			}
			result.Updated++
			return nil
		}
	}

	_, err := s.products.Create(ctx, CreateProductRequest{
		Title:        title,
		Description:  description,
		UnitPrice:    &price,
		Inventory:    inventory,
		CollectionID: collectionID,
	})
	if err != nil {
		return s.rowFailure(row, err, errs)
	}
	result.Created++
	return nil
}

func (s *ProductImportService) rowFailure(row *csvimport.Row, err error, errs *csvimport.ErrorCollection) error {
	var domainErr *shared.DomainError
	if !errors.As(err, &domainErr) {
		return err
	}
	errs.Add(csvimport.RowError{
		Line:    row.Line,
		Code:    domainErr.Code,
		Message: domainErr.Message,
	})
	return nil
}

func importFileError(err error) error {
	return shared.NewDomainError("INVALID_IMPORT_FILE", err.Error())
}
