package form

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestField_UnmarshalJSON_Variants(t *testing.T) {
	payload := `[
		{"id": 1, "type": "text", "name": "Subject", "value": "Printer"},
		{"id": 2, "type": "number", "value": 3.0},
		{"id": 3, "type": "person", "value": {"id": 7, "first_name": "Ivan", "last_name": "Petrov"}},
		{"id": 4, "type": "multiple_choice", "value": {"choice_ids": [11], "choice_names": ["High"]}},
		{"id": 5, "type": "catalog", "value": {"item_id": 42, "values": ["Moscow", "RU"]}},
		{"id": 6, "type": "checkmark", "value": "checked"},
		{"id": 7, "type": "step", "value": 2},
		{"id": 8, "type": "date", "value": "2024-01-31"},
		{"id": 9, "type": "person"},
		{"id": 10, "type": "table", "value": [{"row_id": 0, "cells": [{"id": 101, "value": "a"}]}]}
	]`

	var fields []Field
	require.NoError(t, json.Unmarshal([]byte(payload), &fields))
	require.Len(t, fields, 10)

	assert.Equal(t, Text("Printer"), fields[0].Value)
	assert.Equal(t, "3", Display(fields[1]))
	assert.Equal(t, Person{ID: 7, FirstName: "Ivan", LastName: "Petrov"}, fields[2].Value)
	assert.Equal(t, MultipleChoice{ChoiceIDs: []int{11}, ChoiceNames: []string{"High"}}, fields[3].Value)
	assert.Equal(t, 42, fields[4].Value.(CatalogItem).ItemID)
	assert.Equal(t, Checkmark("checked"), fields[5].Value)
	assert.Equal(t, Step(2), fields[6].Value)
	assert.Equal(t, Text("2024-01-31"), fields[7].Value)
	assert.Nil(t, fields[8].Value)

	table, ok := fields[9].Value.(Table)
	require.True(t, ok)
	require.Len(t, table, 1)
	assert.Equal(t, Text("a"), table[0].Cells[0].Value)
}

func TestField_UnmarshalJSON_MismatchedShapeKeptRaw(t *testing.T) {
	var f Field
	require.NoError(t, json.Unmarshal([]byte(`{"id": 1, "type": "person", "value": "oops"}`), &f))

	assert.Equal(t, Raw(`"oops"`), f.Value)
	assert.Equal(t, "oops", Display(f))
}

func TestField_MarshalJSON_FieldUpdate(t *testing.T) {
	update := Field{ID: 5, Value: Table{
		{RowID: 0, Cells: []Field{
			{ID: 51, Value: Text("Ivan Petrov")},
			{ID: 52, Value: NewNumber(3)},
		}},
		{RowID: 1, Delete: true},
	}}

	data, err := json.Marshal(update)
	require.NoError(t, err)

	assert.JSONEq(t, `{"id":5,"value":[
		{"row_id":0,"cells":[{"id":51,"value":"Ivan Petrov"},{"id":52,"value":3}]},
		{"row_id":1,"delete":true}
	]}`, string(data))
}

func TestFlatFields_InlinesTitles(t *testing.T) {
	task := &Task{Fields: []Field{
		{ID: 1, Type: TypeText, Value: Text("a")},
		{ID: 2, Type: TypeTitle, Value: Title{Fields: []Field{
			{ID: 3, Type: TypeText, Value: Text("nested")},
		}}},
	}}

	f, ok := ByID(task.FlatFields(), 3)
	require.True(t, ok)
	assert.Equal(t, "nested", Display(f))

	frm := &Form{Fields: []Field{
		{ID: 10, Type: TypeTitle, Info: &FieldInfo{Fields: []Field{
			{ID: 11, Type: TypeText, Info: &FieldInfo{Code: "inner"}},
		}}},
	}}
	f, ok = ByCode(frm.FlatFields(), "inner")
	require.True(t, ok)
	assert.Equal(t, 11, f.ID)
}

func TestTask_ValueOf_MissingFieldKeepsSchemaType(t *testing.T) {
	task := &Task{ID: 1}
	schema := Field{ID: 9, Type: TypePerson, Info: &FieldInfo{Code: "assignee"}}

	v := task.ValueOf(schema)

	assert.Equal(t, TypePerson, v.Type)
	assert.Nil(t, v.Value)
	assert.Equal(t, Placeholder, Display(v))
}

func TestTask_Annotate(t *testing.T) {
	schema := &Form{Fields: []Field{
		{ID: 1, Type: TypeCheckmark, Info: &FieldInfo{Code: "done"}},
		{ID: 2, Type: TypeTable, Info: &FieldInfo{Code: "filters", Columns: []Field{
			{ID: 21, Type: TypeText, Info: &FieldInfo{Code: "filter_table"}},
		}}},
	}}
	var task Task
	require.NoError(t, json.Unmarshal([]byte(`{"id": 5, "fields": [
		{"id": 1, "value": "checked"},
		{"id": 2, "value": [{"row_id": 0, "cells": [{"id": 21, "value": "SALES_REPORT_7"}]}]}
	]}`), &task))

	task.Annotate(schema)

	done, ok := ByCode(task.FlatFields(), "done")
	require.True(t, ok)
	assert.Equal(t, Checkmark("checked"), done.Value)

	filters, ok := ByCode(task.FlatFields(), "filters")
	require.True(t, ok)
	rows := filters.Value.(Table)
	cell, ok := ByCode(rows[0].Cells, "filter_table")
	require.True(t, ok)
	assert.Equal(t, "SALES_REPORT_7", Literal(cell))
}
