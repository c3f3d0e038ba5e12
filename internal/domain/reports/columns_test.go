package reports

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crosstab/internal/core/apperror"
	"crosstab/internal/domain/form"
)

func TestRegistryURL(t *testing.T) {
	assert.Equal(t, "https://pyrus.com/t#rg100?ao=true&tz=180&sm=0",
		RegistryURL("pyrus.com", 100))
	assert.Equal(t, "https://pyrus.com/t#rg100?ao=true&tz=180&sm=0&cid2=7&str1=Moscow",
		RegistryURL("pyrus.com", 100, "cid2=7", "str1=Moscow"))
	assert.Equal(t, "https://example.org/t#rg5?ao=true&tz=180&sm=0&str1=Moscow",
		RegistryURL("example.org", 5, "", "str1=Moscow"))
}

func TestClassify(t *testing.T) {
	resolver := NewResolver(sourceForm().FlatFields(), map[string]string{"sum": "total"})

	tests := []struct {
		name    string
		desc    ColumnDescriptor
		kind    ColumnKind
		ok      bool
		numeric bool
	}{
		{"total", ColumnDescriptor{ID: 1, Code: "total", Type: form.TypeNumber}, KindTotal, true, true},
		{"aliased total", ColumnDescriptor{ID: 1, Code: "sum"}, KindTotal, true, true},
		{"total declared as text", ColumnDescriptor{ID: 1, Code: "total", Type: form.TypeText}, KindTotal, true, false},
		{"registry", ColumnDescriptor{ID: 1, Code: "registry", Type: form.TypeText}, KindRegistry, true, false},
		{"count", ColumnDescriptor{ID: 1, Code: "status", Name: "Open"}, KindCount, true, true},
		{"unresolved", ColumnDescriptor{ID: 1, Code: "nope"}, 0, false, false},
		{"no code", ColumnDescriptor{ID: 1}, 0, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col, ok := classify(tt.desc, testConfig, resolver)
			require.Equal(t, tt.ok, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.kind, col.kind)
			assert.Equal(t, tt.numeric, col.numeric())
		})
	}
}

func TestEvaluator(t *testing.T) {
	src := sourceForm()
	city, status := src.Fields[0], src.Fields[2]
	rows, groups := Partition(sourceRegistry().Tasks, &city, 11, "Total")
	ev := evaluator{host: "pyrus.com", formID: 100, filterFragment: "mch3=1"}

	require.NoError(t, ev.evaluate(column{ColumnDescriptor: ColumnDescriptor{ID: 12}, kind: KindTotal}, rows, groups))
	require.NoError(t, ev.evaluate(column{ColumnDescriptor: ColumnDescriptor{ID: 13, Name: "Closed"}, kind: KindCount, source: &status}, rows, groups))
	require.NoError(t, ev.evaluate(column{ColumnDescriptor: ColumnDescriptor{ID: 14}, kind: KindRegistry}, rows, groups))

	assert.Equal(t, map[int]string{
		11: "Moscow",
		12: "2",
		13: "1",
		14: "https://pyrus.com/t#rg100?ao=true&tz=180&sm=0&str1=Moscow&mch3=1",
	}, cellStrings(rows[0]))
	assert.Equal(t, map[int]string{
		11: "Total",
		12: "4",
		13: "2",
		14: "https://pyrus.com/t#rg100?ao=true&tz=180&sm=0&mch3=1",
	}, cellStrings(rows[3]))
}

func TestEvaluator_RangeNamedColumn(t *testing.T) {
	src := sourceForm()
	city, priority := src.Fields[0], src.Fields[3]
	rows, groups := Partition(sourceRegistry().Tasks, &city, 11, "Total")
	ev := evaluator{host: "pyrus.com", formID: 100}

	require.NoError(t, ev.evaluate(column{ColumnDescriptor: ColumnDescriptor{ID: 12, Name: "1-3"}, kind: KindCount, source: &priority}, rows, groups))
	assert.Equal(t, "2", cellStrings(rows[0])[12])
	assert.Equal(t, "3", cellStrings(rows[3])[12])

	err := ev.evaluate(column{ColumnDescriptor: ColumnDescriptor{ID: 13, Name: "low-high"}, kind: KindCount, source: &priority}, rows, groups)
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidFilter))
}
