package reports

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crosstab/internal/domain/form"
)

func TestPartition_GroupsEveryTaskOnce(t *testing.T) {
	tasks := sourceRegistry().Tasks
	city := sourceForm().Fields[0]

	rows, groups := Partition(tasks, &city, 11, DefaultTotalLabel)

	require.Len(t, groups, 4)
	require.Len(t, rows, len(groups))

	seen := make(map[int]int)
	size := 0
	for _, g := range groups[:len(groups)-1] {
		size += len(g.Tasks)
		for _, task := range g.Tasks {
			seen[task.ID]++
		}
	}
	assert.Equal(t, len(tasks), size)
	for _, task := range tasks {
		assert.Equal(t, 1, seen[task.ID], "task %d", task.ID)
	}

	total := groups[len(groups)-1]
	assert.True(t, total.Key.Total)
	assert.Equal(t, tasks, total.Tasks)
	assert.Equal(t, map[int]string{11: DefaultTotalLabel}, cellStrings(rows[len(rows)-1]))
}

func TestPartition_FirstSeenOrderAndKeys(t *testing.T) {
	city := sourceForm().Fields[0]

	rows, groups := Partition(sourceRegistry().Tasks, &city, 11, "Total")

	assert.Equal(t, GroupKey{Value: "Moscow", Fragment: "str1=Moscow"}, groups[0].Key)
	assert.Equal(t, GroupKey{Value: "Berlin", Fragment: "str1=Berlin"}, groups[1].Key)
	assert.Equal(t, GroupKey{Value: form.Placeholder, Fragment: "str1="}, groups[2].Key)
	assert.Equal(t, []string{"Moscow", "Berlin", form.Placeholder, "Total"}, []string{
		cellStrings(rows[0])[11], cellStrings(rows[1])[11], cellStrings(rows[2])[11], cellStrings(rows[3])[11],
	})
}

func TestPartition_SameValueDifferentFragment(t *testing.T) {
	owner := form.Field{ID: 2, Type: form.TypePerson}
	tasks := []form.Task{
		{ID: 1, Fields: []form.Field{{ID: 2, Type: form.TypePerson, Value: form.Person{ID: 7, FirstName: "Ivan", LastName: "Petrov"}}}},
		{ID: 2, Fields: []form.Field{{ID: 2, Type: form.TypePerson, Value: form.Person{ID: 8, FirstName: "Ivan", LastName: "Petrov"}}}},
		{ID: 3},
	}

	_, groups := Partition(tasks, &owner, 11, "Total")

	require.Len(t, groups, 4)
	assert.Equal(t, "cid2=7", groups[0].Key.Fragment)
	assert.Equal(t, "cid2=8", groups[1].Key.Fragment)
	assert.Equal(t, GroupKey{Value: form.Placeholder, Fragment: "cid2=-1"}, groups[2].Key)
}

func TestPartition_TotalLabelValueDoesNotMergeWithTotal(t *testing.T) {
	city := form.Field{ID: 1, Type: form.TypeText}
	tasks := []form.Task{{ID: 1, Fields: []form.Field{{ID: 1, Type: form.TypeText, Value: form.Text("Total")}}}}

	_, groups := Partition(tasks, &city, 11, "Total")

	require.Len(t, groups, 2)
	assert.False(t, groups[0].Key.Total)
	assert.True(t, groups[1].Key.Total)
}

func TestPartition_NoSource(t *testing.T) {
	rows, groups := Partition(sourceRegistry().Tasks, nil, 11, "Total")

	require.Len(t, groups, 1)
	require.Len(t, rows, 1)
	assert.Len(t, groups[0].Tasks, 4)
}

func TestPartition_NoTasks(t *testing.T) {
	city := sourceForm().Fields[0]

	rows, groups := Partition(nil, &city, 11, "Total")

	require.Len(t, groups, 1)
	assert.Empty(t, groups[0].Tasks)
	assert.Equal(t, "Total", cellStrings(rows[0])[11])
}
