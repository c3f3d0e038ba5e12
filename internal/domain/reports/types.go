// Package reports builds cross-tabulation report tables from the task
// registry of a source form. Columns are bound to source fields by code, so
// the layout of every report is defined in the form designer, not here.
package reports

import (
	"strconv"

	"crosstab/internal/core/apperror"
	"crosstab/internal/domain/form"
)

// Config binds the reserved column codes of a deployment.
type Config struct {
	// Aliases replaces a generic column code with a schema-specific one
	// before resolution.
	Aliases map[string]string
	// TotalCode marks a column holding the number of tasks in the group.
	TotalCode string
	// RegistryCode marks a column holding a registry link of the group.
	RegistryCode string
	// FiltersCode is the code of the filter-definition table on the task.
	FiltersCode string
	// TotalLabel is the first-column label of the aggregate row.
	TotalLabel string
	// RegistryHost is the host of registry links.
	RegistryHost string
}

// Defaults for optional Config values.
const (
	DefaultTotalLabel   = "Всего"
	DefaultRegistryHost = "pyrus.com"
)

func (c Config) withDefaults() Config {
	if c.TotalLabel == "" {
		c.TotalLabel = DefaultTotalLabel
	}
	if c.RegistryHost == "" {
		c.RegistryHost = DefaultRegistryHost
	}
	return c
}

// ColumnKind is the computation bound to a dependent column.
type ColumnKind int

const (
	// KindFirst is the grouping column.
	KindFirst ColumnKind = iota
	// KindTotal counts the tasks of a group.
	KindTotal
	// KindRegistry links to the registry filtered to the group.
	KindRegistry
	// KindCount counts the tasks of a group whose source value equals the
	// column name.
	KindCount
)

func (k ColumnKind) String() string {
	switch k {
	case KindFirst:
		return "first"
	case KindTotal:
		return "total"
	case KindRegistry:
		return "registry"
	case KindCount:
		return "count"
	}
	return "unknown"
}

// ColumnDescriptor is a report table column as declared in the schema, with
// any sort suffix stripped from its code.
type ColumnDescriptor struct {
	ID   form.FieldID
	Code string
	Name string
	// Type is the declared type of the report column itself.
	Type form.FieldType
}

// SortDirective orders rows by one column.
type SortDirective struct {
	ColumnID   form.FieldID
	Priority   int
	Descending bool
}

// CellValue is a computed cell: either text or a count.
type CellValue struct {
	text     string
	number   int
	isNumber bool
}

// TextValue returns a text cell.
func TextValue(s string) CellValue {
	return CellValue{text: s}
}

// CountValue returns a numeric cell.
func CountValue(n int) CellValue {
	return CellValue{number: n, isNumber: true}
}

// IsNumber reports whether the cell holds a count.
func (v CellValue) IsNumber() bool { return v.isNumber }

// Int returns the count, or 0 for text cells.
func (v CellValue) Int() int { return v.number }

func (v CellValue) String() string {
	if v.isNumber {
		return strconv.Itoa(v.number)
	}
	return v.text
}

// Value converts the cell to a form value for publishing.
func (v CellValue) Value() form.Value {
	if v.isNumber {
		return form.NewNumber(int64(v.number))
	}
	return form.Text(v.text)
}

// Row is an ordered mapping from column id to cell.
type Row struct {
	order []form.FieldID
	cells map[form.FieldID]CellValue
}

// NewRow creates an empty row.
func NewRow() *Row {
	return &Row{cells: make(map[form.FieldID]CellValue)}
}

// Set writes a cell, keeping the position of an existing one.
func (r *Row) Set(id form.FieldID, v CellValue) {
	if _, ok := r.cells[id]; !ok {
		r.order = append(r.order, id)
	}
	r.cells[id] = v
}

// Get returns the cell of a column.
func (r *Row) Get(id form.FieldID) (CellValue, bool) {
	v, ok := r.cells[id]
	return v, ok
}

// Columns returns the column ids in write order.
func (r *Row) Columns() []form.FieldID {
	return r.order
}

// Table is a finished report table. The last row is the total row.
type Table struct {
	FieldID form.FieldID
	Rows    []*Row
}

// TableRows converts the table into rows of a table field update.
func (t *Table) TableRows() form.Table {
	out := make(form.Table, 0, len(t.Rows))
	for i, r := range t.Rows {
		cells := make([]form.Field, 0, len(r.order))
		for _, id := range r.order {
			cells = append(cells, form.Field{ID: id, Value: r.cells[id].Value()})
		}
		out = append(out, form.TableRow{RowID: i, Cells: cells})
	}
	return out
}

// Stage is a step of building one table.
type Stage string

const (
	StageDiscoverColumns Stage = "discover_columns"
	StageValidateSort    Stage = "validate_sort"
	StageFilter          Stage = "filter"
	StageGroup           Stage = "group"
	StageEvaluate        Stage = "evaluate"
	StageSort            Stage = "sort"
	StageReady           Stage = "ready"
)

// TableResult is the outcome of building one report table.
type TableResult struct {
	FieldID form.FieldID
	Code    string
	FormID  int
	// Stage is StageReady on success, otherwise the stage that aborted.
	Stage Stage
	Table *Table
	Err   error
	// Warnings are resolution misses and ignored directives; they never
	// abort the table.
	Warnings []*apperror.AppError
}

// OK reports whether the table is ready to publish.
func (r *TableResult) OK() bool {
	return r.Err == nil && r.Table != nil
}

// RunReport aggregates the table results of one task.
type RunReport struct {
	TaskID    int
	Tables    []*TableResult
	Published bool
}

// Ready returns the tables to publish, in discovery order.
func (r *RunReport) Ready() []*Table {
	var out []*Table
	for _, t := range r.Tables {
		if t.OK() {
			out = append(out, t.Table)
		}
	}
	return out
}

// Failed returns the results of aborted tables.
func (r *RunReport) Failed() []*TableResult {
	var out []*TableResult
	for _, t := range r.Tables {
		if !t.OK() {
			out = append(out, t)
		}
	}
	return out
}

// WarningCount returns the number of warnings over all tables.
func (r *RunReport) WarningCount() int {
	n := 0
	for _, t := range r.Tables {
		n += len(t.Warnings)
	}
	return n
}
