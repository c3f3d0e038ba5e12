// Package form models the dynamically-typed forms, tasks and catalogs of the
// task platform. Field values are decoded into a closed set of variants keyed
// by the field type so that consumers never inspect raw JSON.
package form

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// FieldID identifies a field within a form.
type FieldID = int

// FieldType is the platform type of a field.
type FieldType string

const (
	TypeText           FieldType = "text"
	TypeNumber         FieldType = "number"
	TypeMoney          FieldType = "money"
	TypePerson         FieldType = "person"
	TypeMultipleChoice FieldType = "multiple_choice"
	TypeCatalog        FieldType = "catalog"
	TypeCheckmark      FieldType = "checkmark"
	TypeStep           FieldType = "step"
	TypeTable          FieldType = "table"
	TypeTitle          FieldType = "title"
)

// Option is one choice of a multiple_choice field.
type Option struct {
	ChoiceID    int    `json:"choice_id"`
	ChoiceValue string `json:"choice_value"`
}

// FieldInfo holds schema-level attributes of a field.
type FieldInfo struct {
	Code      string   `json:"code,omitempty"`
	Options   []Option `json:"options,omitempty"`
	CatalogID int      `json:"catalog_id,omitempty"`
	// Columns of a table field.
	Columns []Field `json:"columns,omitempty"`
	// Nested fields of a title field.
	Fields []Field `json:"fields,omitempty"`
}

// Field is either a schema field (Info set, Value nil) or a task field value.
type Field struct {
	ID    FieldID
	Type  FieldType
	Name  string
	Info  *FieldInfo
	Value Value
}

// Code returns the code attached to the field, or "".
func (f Field) Code() string {
	if f.Info == nil {
		return ""
	}
	return f.Info.Code
}

// Columns returns the columns of a table field.
func (f Field) Columns() []Field {
	if f.Info == nil {
		return nil
	}
	return f.Info.Columns
}

// Empty returns a copy of the field without a value, used when a task does
// not carry the field at all.
func (f Field) Empty() Field {
	return Field{ID: f.ID, Type: f.Type, Name: f.Name}
}

type fieldJSON struct {
	ID    FieldID         `json:"id"`
	Type  FieldType       `json:"type,omitempty"`
	Name  string          `json:"name,omitempty"`
	Info  *FieldInfo      `json:"info,omitempty"`
	Value json.RawMessage `json:"value,omitempty"`
}

// UnmarshalJSON decodes the value according to the field type.
func (f *Field) UnmarshalJSON(data []byte) error {
	var raw fieldJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	f.ID = raw.ID
	f.Type = raw.Type
	f.Name = raw.Name
	f.Info = raw.Info
	f.Value = decodeValue(raw.Type, raw.Value)
	return nil
}

// MarshalJSON encodes the field in the shape accepted by field updates.
func (f Field) MarshalJSON() ([]byte, error) {
	out := fieldJSON{ID: f.ID, Type: f.Type, Name: f.Name, Info: f.Info}
	if f.Value != nil {
		v, err := json.Marshal(f.Value)
		if err != nil {
			return nil, fmt.Errorf("encode value of field %d: %w", f.ID, err)
		}
		out.Value = v
	}
	return json.Marshal(out)
}

// Value is the closed set of field value variants.
type Value interface {
	fieldValue()
}

// Text is the value of text-like fields.
type Text string

// Number is the value of number and money fields.
type Number struct {
	Decimal decimal.Decimal
}

// NewNumber creates a Number from an integer.
func NewNumber(n int64) Number {
	return Number{Decimal: decimal.NewFromInt(n)}
}

// MarshalJSON writes the number without quotes.
func (n Number) MarshalJSON() ([]byte, error) {
	return []byte(n.Decimal.String()), nil
}

// Person is a user or a role placeholder.
type Person struct {
	ID        int    `json:"id"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Type      string `json:"type,omitempty"`
}

// IsRole reports whether the person is a role placeholder; roles keep their
// label in LastName.
func (p Person) IsRole() bool {
	return p.Type == "role"
}

// FullName returns "first last".
func (p Person) FullName() string {
	return p.FirstName + " " + p.LastName
}

// MultipleChoice is the selected options of a multiple_choice field.
type MultipleChoice struct {
	ChoiceIDs   []int    `json:"choice_ids,omitempty"`
	ChoiceNames []string `json:"choice_names,omitempty"`
	Fields      []Field  `json:"fields,omitempty"`
}

// CatalogItem references one catalog row.
type CatalogItem struct {
	ItemID  int      `json:"item_id"`
	Values  []string `json:"values,omitempty"`
	Headers []string `json:"headers,omitempty"`
}

// Checkmark is "checked" or "unchecked".
type Checkmark string

// Step is the current step of a task.
type Step int

// TableRow is one row of a table field value.
type TableRow struct {
	RowID  int     `json:"row_id"`
	Cells  []Field `json:"cells,omitempty"`
	Delete bool    `json:"delete,omitempty"`
}

// Table is the value of a table field.
type Table []TableRow

// Title groups nested fields.
type Title struct {
	Checkmark string  `json:"checkmark,omitempty"`
	Fields    []Field `json:"fields,omitempty"`
}

// Raw keeps values of types the engine does not interpret.
type Raw json.RawMessage

// MarshalJSON returns the raw bytes unchanged.
func (r Raw) MarshalJSON() ([]byte, error) {
	if len(r) == 0 {
		return []byte("null"), nil
	}
	return r, nil
}

func (Text) fieldValue()           {}
func (Number) fieldValue()         {}
func (Person) fieldValue()         {}
func (MultipleChoice) fieldValue() {}
func (CatalogItem) fieldValue()    {}
func (Checkmark) fieldValue()      {}
func (Step) fieldValue()           {}
func (Table) fieldValue()          {}
func (Title) fieldValue()          {}
func (Raw) fieldValue()            {}

// decodeValue maps a raw JSON value to its variant. Values that do not match
// the shape their type promises are kept as Raw.
func decodeValue(t FieldType, data json.RawMessage) Value {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	switch t {
	case TypeNumber, TypeMoney:
		d, err := decimal.NewFromString(string(bytes.Trim(data, `"`)))
		if err == nil {
			return Number{Decimal: d}
		}
	case TypePerson:
		var p Person
		if json.Unmarshal(data, &p) == nil {
			return p
		}
	case TypeMultipleChoice:
		var mc MultipleChoice
		if json.Unmarshal(data, &mc) == nil {
			return mc
		}
	case TypeCatalog:
		var ci CatalogItem
		if json.Unmarshal(data, &ci) == nil {
			return ci
		}
	case TypeCheckmark:
		var s string
		if json.Unmarshal(data, &s) == nil {
			return Checkmark(s)
		}
	case TypeStep:
		var n int
		if json.Unmarshal(data, &n) == nil {
			return Step(n)
		}
	case TypeTable:
		var rows Table
		if json.Unmarshal(data, &rows) == nil {
			return rows
		}
	case TypeTitle:
		var ti Title
		if json.Unmarshal(data, &ti) == nil {
			return ti
		}
	default:
		var s string
		if json.Unmarshal(data, &s) == nil {
			return Text(s)
		}
	}
	return Raw(data)
}
