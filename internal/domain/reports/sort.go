package reports

import (
	"cmp"
	"slices"
)

// Sort orders all rows but the last by the directives in priority order,
// negating descending keys. Directives may come in any order. The last row
// is the total row and stays last.
// Sorting is stable and a no-op without directives. Missing cells sort as 0.
func Sort(rows []*Row, directives []SortDirective) {
	if len(directives) == 0 || len(rows) < 2 {
		return
	}
	ordered := slices.Clone(directives)
	slices.SortStableFunc(ordered, func(a, b SortDirective) int {
		return cmp.Compare(a.Priority, b.Priority)
	})

	body := rows[:len(rows)-1]
	slices.SortStableFunc(body, func(a, b *Row) int {
		for _, d := range ordered {
			x, y := sortKey(a, d), sortKey(b, d)
			if x < y {
				return -1
			}
			if x > y {
				return 1
			}
		}
		return 0
	})
}

func sortKey(r *Row, d SortDirective) int {
	v, _ := r.Get(d.ColumnID)
	if d.Descending {
		return -v.Int()
	}
	return v.Int()
}
