package persistence

import (
	"fmt"
	"strings"

	"github.com/storefront/backend/internal/domain/shared"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	if strings.ToUpper(strings.TrimSpace(orderDir)) == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField checks sortField against a whitelist, falling back to defaultField
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed != "" && allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// OrderSortFields contains allowed sort fields for orders
var OrderSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"order_number": true,
	"status":       true,
	"total_price":  true,
	"is_paid":      true,
}

// ProductSortFields contains allowed sort fields for the inventory listing
var ProductSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"name_en":       true,
	"price":         true,
	"stock":         true,
	"display_order": true,
}

// orderClause builds a safe ORDER BY clause from a filter. id is appended as a
// tiebreaker so paging is stable.
func orderClause(filter shared.Filter, allowed map[string]bool, defaultField string) string {
	field := ValidateSortField(filter.OrderBy, allowed, defaultField)
	clause := fmt.Sprintf("%s %s", field, ValidateSortOrder(filter.OrderDir))
	if field != "id" {
		clause += ", id ASC"
	}
	return clause
}
