package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
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

// OrderSortFields contains allowed sort fields for orders
var OrderSortFields = map[string]bool{
	"id":                true,
	"created_at":        true,
	"updated_at":        true,
	"order_number":      true,
	"buyer_id":          true,
	"supplier_id":       true,
	"buyer_price":       true,
	"supplier_price":    true,
	"admin_margin":      true,
	"margin_percentage": true,
	"workflow_status":   true,
	"payment_status":    true,
	"target_date":       true,
	"current_stage":     true,
	"assigned_at":       true,
}

// AssignmentSortFields contains allowed sort fields for supplier assignments
var AssignmentSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"order_id":      true,
	"supplier_id":   true,
	"offered_price": true,
	"counter_price": true,
	"status":        true,
	"responded_at":  true,
	"expires_at":    true,
}

// QCCheckSortFields contains allowed sort fields for quality checks
var QCCheckSortFields = map[string]bool{
	"id":              true,
	"created_at":      true,
	"order_id":        true,
	"stage":           true,
	"checked_at":      true,
	"result":          true,
	"total_inspected": true,
}

// NotificationSortFields contains allowed sort fields for notifications
var NotificationSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"event_type": true,
	"read_at":    true,
}
