package reports

import (
	"context"
	"errors"

	"crosstab/internal/domain/form"
)

type fakeStore struct {
	forms      map[int]*form.Form
	registries map[int]*form.Registry
	catalogs   map[int]*form.Catalog
	contacts   *form.Contacts

	comments   []form.Comment
	commentErr error

	formCalls     map[int]int
	registryCalls map[int]int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		forms:         make(map[int]*form.Form),
		registries:    make(map[int]*form.Registry),
		catalogs:      make(map[int]*form.Catalog),
		contacts:      &form.Contacts{},
		formCalls:     make(map[int]int),
		registryCalls: make(map[int]int),
	}
}

func (s *fakeStore) Form(_ context.Context, id int) (*form.Form, error) {
	s.formCalls[id]++
	f, ok := s.forms[id]
	if !ok {
		return nil, errors.New("form not found")
	}
	return f, nil
}

func (s *fakeStore) Registry(_ context.Context, id int) (*form.Registry, error) {
	s.registryCalls[id]++
	r, ok := s.registries[id]
	if !ok {
		return nil, errors.New("registry not found")
	}
	return r, nil
}

func (s *fakeStore) Catalog(_ context.Context, id int) (*form.Catalog, error) {
	return s.catalogs[id], nil
}

func (s *fakeStore) Contacts(context.Context) (*form.Contacts, error) {
	return s.contacts, nil
}

func (s *fakeStore) CommentTask(_ context.Context, _ int, c form.Comment) error {
	if s.commentErr != nil {
		return s.commentErr
	}
	s.comments = append(s.comments, c)
	return nil
}

func columnField(id int, typ form.FieldType, code, name string) form.Field {
	return form.Field{ID: id, Type: typ, Name: name, Info: &form.FieldInfo{Code: code}}
}

func reportTable(id int, code string, cols ...form.Field) form.Field {
	return form.Field{ID: id, Type: form.TypeTable, Info: &form.FieldInfo{Code: code, Columns: cols}}
}

func choice(id int, name string) form.MultipleChoice {
	return form.MultipleChoice{ChoiceIDs: []int{id}, ChoiceNames: []string{name}}
}

// cellStrings renders a row as column id -> cell text.
func cellStrings(r *Row) map[int]string {
	out := make(map[int]string)
	for _, id := range r.Columns() {
		v, _ := r.Get(id)
		out[id] = v.String()
	}
	return out
}

// Source form 100: city (text), owner (person), status (choice), priority (number).
func sourceForm() *form.Form {
	return &form.Form{ID: 100, Fields: []form.Field{
		columnField(1, form.TypeText, "city", "City"),
		columnField(2, form.TypePerson, "owner", "Owner"),
		{ID: 3, Type: form.TypeMultipleChoice, Name: "Status", Info: &form.FieldInfo{Code: "status", Options: []form.Option{
			{ChoiceID: 1, ChoiceValue: "Open"},
			{ChoiceID: 2, ChoiceValue: "Closed"},
		}}},
		columnField(4, form.TypeNumber, "priority", "Priority"),
	}}
}

func sourceTask(id int, city string, status form.MultipleChoice, priority int64) form.Task {
	fields := []form.Field{
		{ID: 3, Type: form.TypeMultipleChoice, Value: status},
		{ID: 4, Type: form.TypeNumber, Value: form.NewNumber(priority)},
	}
	if city != "" {
		fields = append(fields, form.Field{ID: 1, Type: form.TypeText, Value: form.Text(city)})
	}
	return form.Task{ID: id, FormID: 100, Fields: fields}
}

func sourceRegistry() *form.Registry {
	return &form.Registry{Tasks: []form.Task{
		sourceTask(1, "Moscow", choice(1, "Open"), 1),
		sourceTask(2, "Berlin", choice(2, "Closed"), 2),
		sourceTask(3, "Moscow", choice(2, "Closed"), 3),
		sourceTask(4, "", choice(1, "Open"), 5),
	}}
}

var testConfig = Config{
	TotalCode:    "total",
	RegistryCode: "registry",
	FiltersCode:  "filters",
}
