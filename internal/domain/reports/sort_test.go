package reports

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func numberRow(cells map[int]int) *Row {
	r := NewRow()
	for _, id := range []int{5, 9} {
		if v, ok := cells[id]; ok {
			r.Set(id, CountValue(v))
		}
	}
	return r
}

func totalRow() *Row {
	r := NewRow()
	r.Set(1, TextValue("Total"))
	return r
}

func renderRows(rows []*Row) []map[int]string {
	out := make([]map[int]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, cellStrings(r))
	}
	return out
}

var twoKeys = []SortDirective{
	{ColumnID: 9, Priority: 2, Descending: true},
	{ColumnID: 5, Priority: 1},
}

func TestSort_MultiKey(t *testing.T) {
	rows := []*Row{
		numberRow(map[int]int{5: 1, 9: 10}),
		numberRow(map[int]int{5: 1, 9: 20}),
		numberRow(map[int]int{5: 2, 9: 5}),
		totalRow(),
	}

	Sort(rows, twoKeys)

	assert.Equal(t, []map[int]string{
		{5: "1", 9: "20"},
		{5: "1", 9: "10"},
		{5: "2", 9: "5"},
		{1: "Total"},
	}, renderRows(rows))
}

func TestSort_ExtremePriorities(t *testing.T) {
	rows := []*Row{
		numberRow(map[int]int{5: 2, 9: 1}),
		numberRow(map[int]int{5: 1, 9: 2}),
		totalRow(),
	}

	Sort(rows, []SortDirective{
		{ColumnID: 9, Priority: 1, Descending: true},
		{ColumnID: 5, Priority: math.MinInt},
	})

	assert.Equal(t, []map[int]string{
		{5: "1", 9: "2"},
		{5: "2", 9: "1"},
		{1: "Total"},
	}, renderRows(rows))
}

func TestSort_Idempotent(t *testing.T) {
	rows := []*Row{
		numberRow(map[int]int{5: 3, 9: 1}),
		numberRow(map[int]int{5: 1, 9: 2}),
		numberRow(map[int]int{5: 1, 9: 7}),
		totalRow(),
	}

	Sort(rows, twoKeys)
	once := renderRows(rows)
	Sort(rows, twoKeys)

	assert.Equal(t, once, renderRows(rows))
}

func TestSort_StableForTies(t *testing.T) {
	a := numberRow(map[int]int{5: 1, 9: 1})
	b := numberRow(map[int]int{5: 1, 9: 1})
	c := numberRow(map[int]int{5: 0, 9: 1})
	rows := []*Row{a, b, c, totalRow()}

	Sort(rows, twoKeys)

	assert.Same(t, c, rows[0])
	assert.Same(t, a, rows[1])
	assert.Same(t, b, rows[2])
}

func TestSort_NoDirectivesIsNoop(t *testing.T) {
	first := numberRow(map[int]int{5: 9})
	second := numberRow(map[int]int{5: 1})
	rows := []*Row{first, second, totalRow()}

	Sort(rows, nil)

	assert.Same(t, first, rows[0])
	assert.Same(t, second, rows[1])
}

func TestSort_TotalStaysLast(t *testing.T) {
	total := numberRow(map[int]int{5: 0})
	rows := []*Row{numberRow(map[int]int{5: 4}), numberRow(map[int]int{5: 2}), total}

	Sort(rows, []SortDirective{{ColumnID: 5, Priority: 1}})

	assert.Same(t, total, rows[2])
	assert.Equal(t, "2", cellStrings(rows[0])[5])
}
