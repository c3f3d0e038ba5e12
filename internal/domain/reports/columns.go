package reports

import (
	"fmt"
	"strings"

	"crosstab/internal/domain/filter"
	"crosstab/internal/domain/form"
)

// RegistryURL builds a registry link of a form with the given query
// fragments appended in order. Empty fragments are skipped.
func RegistryURL(host string, formID int, fragments ...string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "https://%s/t#rg%d?ao=true&tz=180&sm=0", host, formID)
	for _, f := range fragments {
		if f == "" {
			continue
		}
		b.WriteByte('&')
		b.WriteString(f)
	}
	return b.String()
}

// column is a dependent column bound to its computation.
type column struct {
	ColumnDescriptor
	kind ColumnKind
	// source is set for KindCount columns.
	source *form.Field
}

// classify binds a dependent column to its kind. ok is false when the column
// has no code or its code resolves to no source field.
func classify(desc ColumnDescriptor, cfg Config, resolver *Resolver) (column, bool) {
	col := column{ColumnDescriptor: desc}
	if desc.Code == "" {
		return col, false
	}
	switch code := resolver.Alias(desc.Code); {
	case cfg.TotalCode != "" && code == cfg.TotalCode:
		col.kind = KindTotal
	case cfg.RegistryCode != "" && code == cfg.RegistryCode:
		col.kind = KindRegistry
	default:
		f, ok := resolver.Resolve(desc.Code)
		if !ok {
			return col, false
		}
		col.kind = KindCount
		col.source = &f
	}
	return col, true
}

// numeric reports whether the column's cells are counts and its declared
// type can hold them.
func (c column) numeric() bool {
	if c.kind != KindTotal && c.kind != KindCount {
		return false
	}
	switch c.Type {
	case "", form.TypeNumber, form.TypeMoney:
		return true
	}
	return false
}

// evaluator fills the dependent cells of one table.
type evaluator struct {
	host           string
	formID         int
	filterFragment string
}

// evaluate writes the column's cell into every row, rows and groups being
// parallel. A count column whose name is a malformed range fails the table.
func (e evaluator) evaluate(col column, rows []*Row, groups []Group) error {
	for i, g := range groups {
		var v CellValue
		switch col.kind {
		case KindTotal:
			v = CountValue(len(g.Tasks))
		case KindRegistry:
			v = TextValue(RegistryURL(e.host, e.formID, g.Key.Fragment, e.filterFragment))
		case KindCount:
			n, err := filter.Count(g.Tasks, *col.source, col.Name)
			if err != nil {
				return err
			}
			v = CountValue(n)
		default:
			continue
		}
		rows[i].Set(col.ID, v)
	}
	return nil
}
