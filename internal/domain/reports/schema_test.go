package reports

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crosstab/internal/domain/form"
)

func TestParseCode(t *testing.T) {
	tests := []struct {
		raw       string
		base      string
		directive *SortDirective
		wantErr   bool
	}{
		{"total", "total", nil, false},
		{"total$SRT_1_DESC", "total", &SortDirective{ColumnID: 7, Priority: 1, Descending: true}, false},
		{"open$SRT_12_ASC", "open", &SortDirective{ColumnID: 7, Priority: 12}, false},
		{"a$b$SRT_1_ASC", "a", nil, true},
		{"total$SRT_x_ASC", "total", nil, true},
		{"total$SRT_1_UP", "total", nil, true},
		{"$SRT_2_ASC", "", &SortDirective{ColumnID: 7, Priority: 2}, false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			base, directive, err := ParseCode(tt.raw, 7)
			assert.Equal(t, tt.base, base)
			assert.Equal(t, tt.directive, directive)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDescribeColumns(t *testing.T) {
	table := reportTable(10, "X_REPORT_1",
		columnField(11, form.TypeText, "city", "City"),
		columnField(12, form.TypeNumber, "open$SRT_2_DESC", "Open"),
		columnField(13, form.TypeNumber, "total$SRT_1_ASC", "Total"),
		columnField(14, form.TypeNumber, "closed$SRT_bad", "Closed"),
		columnField(13, form.TypeNumber, "dup", "Dup"),
	)

	cols, directives, warnings := DescribeColumns(table)

	require.Len(t, cols, 4)
	assert.Equal(t, ColumnDescriptor{ID: 12, Code: "open", Name: "Open", Type: form.TypeNumber}, cols[1])
	assert.Equal(t, "closed", cols[3].Code)
	assert.Equal(t, []SortDirective{
		{ColumnID: 13, Priority: 1},
		{ColumnID: 12, Priority: 2, Descending: true},
	}, directives)
	assert.Len(t, warnings, 2)

	// The schema field keeps its original code.
	assert.Equal(t, "open$SRT_2_DESC", table.Columns()[1].Code())
}

func TestFormIDFromCode(t *testing.T) {
	tests := map[string]int{
		"SALES_REPORT_1234":       1234,
		"REPORT_7":                7,
		"SALES_REPORT_1234_EXTRA": 1234,
		"SALES_REPORT":            0,
		"SALES_REPORT_x1":         0,
		"SALES_REPORT_-1":         0,
		"SALESREPORT_12":          0,
		"SALES_REPORTS_12":        0,
	}
	for code, want := range tests {
		assert.Equal(t, want, FormIDFromCode(code), code)
	}
}

func TestDiscoverTables(t *testing.T) {
	fields := []form.Field{
		reportTable(1, "A_REPORT_10"),
		columnField(2, form.TypeText, "B_REPORT_11", "not a table"),
		reportTable(3, "REPORT"),
		reportTable(4, "plain"),
		reportTable(5, "C_REPORT_12"),
	}

	specs, skipped := DiscoverTables(fields)

	require.Len(t, specs, 2)
	assert.Equal(t, 10, specs[0].FormID)
	assert.Equal(t, "C_REPORT_12", specs[1].Code)
	require.Len(t, skipped, 1)
	assert.Equal(t, 3, skipped[0].ID)
}

func TestResolver_AppliesAlias(t *testing.T) {
	r := NewResolver(sourceForm().FlatFields(), map[string]string{"assignee": "owner"})

	f, ok := r.Resolve("assignee")
	require.True(t, ok)
	assert.Equal(t, 2, f.ID)

	_, ok = r.Resolve("unknown")
	assert.False(t, ok)

	_, ok = r.Resolve("")
	assert.False(t, ok)
}
