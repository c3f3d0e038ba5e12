// Package filter evaluates the filter-definition language used by report
// tables: comma-separated literal lists and inclusive integer ranges matched
// against normalized task field values.
package filter

import (
	"crosstab/internal/core/apperror"
	"crosstab/internal/domain/form"
)

// Cell codes of a filter-definition table row.
const (
	CodeTargetTable = "filter_table"
	CodeTargetField = "filter_field"
	CodeValue       = "filter_value"
)

// Rule is one row of the filter-definition table.
type Rule struct {
	// Table is the code of the report table the rule applies to.
	Table string
	// FieldCode is the code of the source form field to filter on.
	FieldCode string
	// Value is a comma-separated literal list or "start-end" ranges.
	Value string
}

// Result is the outcome of applying all rules of one table.
type Result struct {
	Tasks []form.Task
	// Fragment is the URL-encoded registry back-link of the applied rules.
	Fragment string
	// Misses lists rules or references that could not be resolved.
	Misses []*apperror.AppError
}

// FieldLookup resolves a field code against the source form schema.
type FieldLookup func(code string) (form.Field, bool)
