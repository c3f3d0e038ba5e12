package filter

import (
	"crosstab/internal/domain/form"
)

// Discover collects the rules of the filter-definition table coded tableCode
// in the given task fields, grouped by target report table code. Rows with no
// target table or field code are skipped.
func Discover(taskFields []form.Field, tableCode string) map[string][]Rule {
	rules := make(map[string][]Rule)

	table, ok := form.ByCode(taskFields, tableCode)
	if !ok {
		return rules
	}
	rows, _ := table.Value.(form.Table)

	for _, row := range rows {
		rule := Rule{
			Table:     cellLiteral(row.Cells, CodeTargetTable),
			FieldCode: cellLiteral(row.Cells, CodeTargetField),
			Value:     cellLiteral(row.Cells, CodeValue),
		}
		if rule.Table == "" || rule.FieldCode == "" {
			continue
		}
		rules[rule.Table] = append(rules[rule.Table], rule)
	}
	return rules
}

// cellLiteral looks a cell up by code. The task must have been annotated with
// its form schema, see form.Task.Annotate.
func cellLiteral(cells []form.Field, code string) string {
	if f, ok := form.ByCode(cells, code); ok {
		return form.Literal(f)
	}
	return ""
}
