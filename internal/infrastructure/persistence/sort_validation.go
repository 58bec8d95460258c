package persistence

import (
	"strings"
)

// ValidateSortOrder normalizes the sort order to ASC or DESC.
// Returns DESC if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	if strings.ToUpper(strings.TrimSpace(orderDir)) == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed
// fields. Returns defaultField when the input is empty or not whitelisted.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" || !allowedFields[trimmed] {
		return defaultField
	}
	return trimmed
}

// CommonSortFields contains fields common to most entities
var CommonSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

// CategorySortFields contains allowed sort fields for categories
var CategorySortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"slug":       true,
	"level":      true,
	"sort_order": true,
}

// ProductSortFields contains allowed sort fields for products
var ProductSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"sku":        true,
	"name":       true,
	"price":      true,
	"cost":       true,
	"status":     true,
}

// UserSortFields contains allowed sort fields for users
var UserSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"email":         true,
	"name":          true,
	"role":          true,
	"last_login_at": true,
}

// OrderSortFields contains allowed sort fields for purchase and sales orders
var OrderSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"order_number": true,
	"status":       true,
	"grand_total":  true,
	"submitted_at": true,
}

// ReturnSortFields contains allowed sort fields for return requests
var ReturnSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"return_number": true,
	"status":        true,
	"type":          true,
}

// PartnerSortFields contains allowed sort fields for suppliers and customers
var PartnerSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"email":      true,
}

// StockLevelSortFields contains allowed sort fields for stock levels
var StockLevelSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"on_hand":    true,
	"reserved":   true,
	"min_stock":  true,
}

// MovementSortFields contains allowed sort fields for stock movements
var MovementSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"type":       true,
}

// DocumentSortFields contains allowed sort fields for rendered documents
var DocumentSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"rendered_at":   true,
	"source_number": true,
	"type":          true,
}
