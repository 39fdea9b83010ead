package persistence

import (
	"strings"

	"github.com/storefront/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	if strings.ToUpper(strings.TrimSpace(orderDir)) == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// ProductSortFields contains allowed sort fields for products
var ProductSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"title":      true,
	"unit_price": true,
	"inventory":  true,
}

// CollectionSortFields contains allowed sort fields for collections
var CollectionSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"title":      true,
}

// CustomerSortFields contains allowed sort fields for customers
var CustomerSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"first_name": true,
	"last_name":  true,
	"email":      true,
	"membership": true,
}

// OrderSortFields contains allowed sort fields for orders
var OrderSortFields = map[string]bool{
	"id":             true,
	"placed_at":      true,
	"payment_status": true,
}

// PromotionSortFields contains allowed sort fields for promotions
var PromotionSortFields = map[string]bool{
	"id":          true,
	"created_at":  true,
	"description": true,
	"discount":    true,
}

// ReviewSortFields contains allowed sort fields for reviews
var ReviewSortFields = map[string]bool{
	"id":          true,
	"created_at":  true,
	"review_date": true,
	"name":        true,
}

// TagSortFields contains allowed sort fields for tags
var TagSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"label":      true,
}

// applyOrder orders by a whitelisted field. A field outside the whitelist
// falls back to defaultField with defaultDir. The id tiebreaker keeps paging stable.
func applyOrder(query *gorm.DB, filter shared.Filter, allowed map[string]bool, defaultField, defaultDir string) *gorm.DB {
	field := ValidateSortField(filter.OrderBy, allowed, "")
	dir := ValidateSortOrder(filter.OrderDir)
	if field == "" {
		field, dir = defaultField, ValidateSortOrder(defaultDir)
	}
	query = query.Order(field + " " + dir)
	if field != "id" {
		query = query.Order("id ASC")
	}
	return query
}

// applyPage limits the query to the filter's page
func applyPage(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	return query
}

// containsPattern builds a case-insensitive LIKE condition over columns
func containsPattern(db *gorm.DB, search string, columns ...string) (string, []any) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(search)) + "%"
	op := "LIKE"
	if isPostgres(db) {
		op = "ILIKE"
	}
	conds := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, col := range columns {
		if op == "LIKE" {
			conds[i] = "LOWER(" + col + ") LIKE ?"
		} else {
			conds[i] = col + " ILIKE ?"
		}
		args[i] = pattern
	}
	return strings.Join(conds, " OR "), args
}
