package reports

import (
	"crosstab/internal/domain/form"
)

// GroupKey identifies one output row: the normalized first-column value and
// the registry fragment of that value. The aggregate group is flagged Total
// so that no task value can collide with it.
type GroupKey struct {
	Value    string
	Fragment string
	Total    bool
}

// Group is the tasks sharing one key.
type Group struct {
	Key   GroupKey
	Tasks []form.Task
}

// Partition groups tasks by the value of the first column's source field in
// first-seen order and appends the aggregate group of all tasks. One row stub
// holding the first-column cell is returned per group. A nil source yields
// the aggregate group only.
func Partition(tasks []form.Task, source *form.Field, firstColumnID form.FieldID, totalLabel string) ([]*Row, []Group) {
	var (
		rows   []*Row
		groups []Group
	)

	if source != nil {
		index := make(map[GroupKey]int)
		for i := range tasks {
			v := tasks[i].ValueOf(*source)
			key := GroupKey{Value: form.Display(v), Fragment: form.RegistryFragment(v)}

			if pos, ok := index[key]; ok {
				groups[pos].Tasks = append(groups[pos].Tasks, tasks[i])
				continue
			}
			index[key] = len(groups)
			groups = append(groups, Group{Key: key, Tasks: []form.Task{tasks[i]}})

			row := NewRow()
			row.Set(firstColumnID, TextValue(key.Value))
			rows = append(rows, row)
		}
	}

	groups = append(groups, Group{Key: GroupKey{Value: totalLabel, Total: true}, Tasks: tasks})
	total := NewRow()
	total.Set(firstColumnID, TextValue(totalLabel))
	rows = append(rows, total)

	return rows, groups
}
