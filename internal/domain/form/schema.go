package form

import "encoding/json"

// Form is a form template.
type Form struct {
	ID     int     `json:"id"`
	Name   string  `json:"name,omitempty"`
	Fields []Field `json:"fields"`
}

// FlatFields returns all fields of the form with title children inlined.
// Table columns stay inside their table.
func (f *Form) FlatFields() []Field {
	if f == nil {
		return nil
	}
	return flatten(f.Fields)
}

// Task is one task of a form.
type Task struct {
	ID     int     `json:"id"`
	FormID int     `json:"form_id,omitempty"`
	Text   string  `json:"text,omitempty"`
	Fields []Field `json:"fields,omitempty"`
}

// FlatFields returns the task's field values with title children inlined.
func (t *Task) FlatFields() []Field {
	if t == nil {
		return nil
	}
	return flatten(t.Fields)
}

// Registry is the task list of a form.
type Registry struct {
	// Tasks is nil when the platform returned none.
	Tasks []Task `json:"tasks"`
}

// Catalog is a platform dictionary.
type Catalog struct {
	CatalogID int           `json:"catalog_id"`
	Items     []CatalogItem `json:"items"`
}

// Role is a group of persons addressable as one contact.
type Role struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	MemberIDs []int  `json:"member_ids,omitempty"`
}

// Organization groups persons and roles of one account.
type Organization struct {
	ID      int      `json:"organization_id"`
	Name    string   `json:"name,omitempty"`
	Persons []Person `json:"persons,omitempty"`
	Roles   []Role   `json:"roles,omitempty"`
}

// Contacts is the contact directory.
type Contacts struct {
	Organizations []Organization `json:"organizations"`
}

// Comment is a task comment with optional field updates.
type Comment struct {
	Text           string  `json:"text,omitempty"`
	ApprovalChoice string  `json:"approval_choice,omitempty"`
	FieldUpdates   []Field `json:"field_updates,omitempty"`
}

func flatten(fields []Field) []Field {
	out := make([]Field, 0, len(fields))
	for _, f := range fields {
		out = append(out, f)
		if f.Info != nil && len(f.Info.Fields) > 0 {
			out = append(out, flatten(f.Info.Fields)...)
		}
		if title, ok := f.Value.(Title); ok {
			out = append(out, flatten(title.Fields)...)
		}
	}
	return out
}

// ByID returns the first field with the given id.
func ByID(fields []Field, id FieldID) (Field, bool) {
	for _, f := range fields {
		if f.ID == id {
			return f, true
		}
	}
	return Field{}, false
}

// ByCode returns the first field whose code equals code. An empty code never
// matches.
func ByCode(fields []Field, code string) (Field, bool) {
	if code == "" {
		return Field{}, false
	}
	for _, f := range fields {
		if f.Code() == code {
			return f, true
		}
	}
	return Field{}, false
}

// ValueOf returns the task's value for the given schema field. When the task
// does not carry the field, a value-less copy of the schema field is returned
// so type-driven rendering still works.
func (t *Task) ValueOf(schema Field) Field {
	if v, ok := ByID(t.FlatFields(), schema.ID); ok {
		if v.Type == "" {
			v.Type = schema.Type
		}
		return v
	}
	return schema.Empty()
}

// Annotate copies schema attributes (type, name, info) onto the task's field
// values by id, including the cells of table rows. Task payloads carry only
// ids and values, while the engine looks fields up by code.
func (t *Task) Annotate(schema *Form) {
	if t == nil || schema == nil {
		return
	}
	index := make(map[FieldID]Field)
	var walk func(fields []Field)
	walk = func(fields []Field) {
		for _, f := range fields {
			index[f.ID] = f
			if f.Info != nil {
				walk(f.Info.Fields)
				walk(f.Info.Columns)
			}
		}
	}
	walk(schema.Fields)
	annotate(t.Fields, index)
}

func annotate(fields []Field, index map[FieldID]Field) {
	for i := range fields {
		f := &fields[i]
		if s, ok := index[f.ID]; ok {
			if f.Type == "" && s.Type != "" {
				f.Type = s.Type
				f.Value = redecode(f.Type, f.Value)
			}
			if f.Name == "" {
				f.Name = s.Name
			}
			if f.Info == nil {
				f.Info = s.Info
			}
		}
		switch v := f.Value.(type) {
		case Title:
			annotate(v.Fields, index)
		case Table:
			for r := range v {
				annotate(v[r].Cells, index)
			}
		}
	}
}

// redecode re-interprets a value decoded before its type was known.
func redecode(t FieldType, v Value) Value {
	switch v := v.(type) {
	case Raw:
		return decodeValue(t, json.RawMessage(v))
	case Text:
		data, err := json.Marshal(string(v))
		if err != nil {
			return v
		}
		return decodeValue(t, data)
	}
	return v
}
