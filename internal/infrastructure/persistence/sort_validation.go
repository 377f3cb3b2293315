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

// Common allowed sort fields for entities with base fields
// These are the common fields present in most entities

// CommonSortFields contains fields common to most entities
var CommonSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

// ContractSortFields contains allowed sort fields for installment contracts
var ContractSortFields = map[string]bool{
	"id":                    true,
	"created_at":            true,
	"updated_at":            true,
	"contract_number":       true,
	"customer_name":         true,
	"gold_karat":            true,
	"status":                true,
	"remaining_gold_weight": true,
	"next_due_date":         true,
	"completion_date":       true,
}

// PaymentSortFields contains allowed sort fields for installment payments
var PaymentSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"payment_date": true,
	"amount_toman": true,
	"gold_weight":  true,
	"method":       true,
}

// AdjustmentSortFields contains allowed sort fields for weight adjustments
var AdjustmentSortFields = map[string]bool{
	"id":              true,
	"created_at":      true,
	"adjustment_date": true,
	"signed_amount":   true,
	"type":            true,
}
