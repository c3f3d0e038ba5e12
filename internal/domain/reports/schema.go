package reports

import (
	"cmp"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"crosstab/internal/core/apperror"
	"crosstab/internal/domain/form"
)

// Resolver looks source fields up by code after applying the alias table.
type Resolver struct {
	fields  []form.Field
	aliases map[string]string
}

// NewResolver creates a resolver over the flat fields of a source form.
func NewResolver(fields []form.Field, aliases map[string]string) *Resolver {
	return &Resolver{fields: fields, aliases: aliases}
}

// Alias returns the code a generic code is redirected to, or code itself.
func (r *Resolver) Alias(code string) string {
	if mapped, ok := r.aliases[code]; ok {
		return mapped
	}
	return code
}

// Resolve returns the first field whose code equals the aliased code.
// Absent is not an error: the caller treats the column as having no source.
func (r *Resolver) Resolve(code string) (form.Field, bool) {
	return form.ByCode(r.fields, r.Alias(code))
}

// Exact returns the first field whose code equals code, ignoring aliases.
// Filter rules name source fields directly.
func (r *Resolver) Exact(code string) (form.Field, bool) {
	return form.ByCode(r.fields, code)
}

const (
	sortDelimiter  = "$"
	reportToken    = "REPORT"
	codeTokenSplit = "_"
)

var sortSuffix = regexp.MustCompile(`^SRT_(\d+)_(ASC|DESC)$`)

// ParseCode splits a column code on the first "$" into the base code and an
// optional sort directive. A malformed suffix yields the base code, no
// directive and a non-nil error describing the suffix.
func ParseCode(raw string, columnID form.FieldID) (string, *SortDirective, error) {
	base, suffix, found := strings.Cut(raw, sortDelimiter)
	if !found {
		return raw, nil, nil
	}
	m := sortSuffix.FindStringSubmatch(suffix)
	if m == nil {
		return base, nil, fmt.Errorf("malformed sort suffix %q", suffix)
	}
	priority, err := strconv.Atoi(m[1])
	if err != nil {
		return base, nil, fmt.Errorf("sort priority %q: %w", m[1], err)
	}
	return base, &SortDirective{
		ColumnID:   columnID,
		Priority:   priority,
		Descending: m[2] == "DESC",
	}, nil
}

// DescribeColumns reads the columns of a report table field once. Sort
// suffixes go to the returned directives, ordered by priority; the
// descriptors keep only base codes. Columns repeating an id are dropped.
func DescribeColumns(table form.Field) ([]ColumnDescriptor, []SortDirective, []*apperror.AppError) {
	var (
		columns    []ColumnDescriptor
		directives []SortDirective
		warnings   []*apperror.AppError
	)
	seen := make(map[form.FieldID]bool)

	for _, col := range table.Columns() {
		if seen[col.ID] {
			warnings = append(warnings, apperror.NewValidation("duplicate column id").
				WithDetail("column_id", col.ID))
			continue
		}
		seen[col.ID] = true

		base, directive, err := ParseCode(col.Code(), col.ID)
		if err != nil {
			warnings = append(warnings, apperror.NewValidation("sort directive ignored").
				WithDetail("column_id", col.ID).
				WithDetail("code", col.Code()).
				WithCause(err))
		}
		if directive != nil {
			directives = append(directives, *directive)
		}
		columns = append(columns, ColumnDescriptor{
			ID:   col.ID,
			Code: base,
			Name: col.Name,
			Type: col.Type,
		})
	}

	slices.SortStableFunc(directives, func(a, b SortDirective) int {
		return cmp.Compare(a.Priority, b.Priority)
	})
	return columns, directives, warnings
}

// TableSpec is a report table declared on the task form.
type TableSpec struct {
	Field  form.Field
	Code   string
	FormID int
}

// FormIDFromCode extracts the source form id from a report table code such
// as "SALES_REPORT_1234". It returns 0 when the token after REPORT is missing
// or not a number.
func FormIDFromCode(code string) int {
	tokens := strings.Split(code, codeTokenSplit)
	idx := slices.Index(tokens, reportToken)
	if idx < 0 || idx+1 >= len(tokens) {
		return 0
	}
	next := tokens[idx+1]
	if next == "" || strings.TrimLeft(next, "0123456789") != "" {
		return 0
	}
	n, err := strconv.Atoi(next)
	if err != nil {
		return 0
	}
	return n
}

// DiscoverTables returns the table fields whose code contains REPORT, in
// schema order. Tables whose code names no source form are returned in
// skipped.
func DiscoverTables(fields []form.Field) (specs []TableSpec, skipped []form.Field) {
	for _, f := range fields {
		code := f.Code()
		if f.Type != form.TypeTable || !strings.Contains(code, reportToken) {
			continue
		}
		formID := FormIDFromCode(code)
		if formID == 0 {
			skipped = append(skipped, f)
			continue
		}
		specs = append(specs, TableSpec{Field: f, Code: code, FormID: formID})
	}
	return specs, skipped
}
