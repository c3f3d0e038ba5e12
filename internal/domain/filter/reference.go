package filter

import (
	"context"
	"strconv"
	"strings"

	"crosstab/internal/domain/form"
)

// ReferenceSource provides the directories needed to turn human-entered
// literals into platform identifiers.
type ReferenceSource interface {
	Contacts(ctx context.Context) (*form.Contacts, error)
	Catalog(ctx context.Context, catalogID int) (*form.Catalog, error)
}

// Reference is one registry parameter derived from a filter literal.
type Reference struct {
	Key   string
	Value string
}

// ResolveReference maps a literal filter value on field to a registry
// parameter. The boolean is false when nothing matched; the error is set only
// when a directory could not be fetched.
func ResolveReference(ctx context.Context, field form.Field, literal string, src ReferenceSource) (Reference, bool, error) {
	switch field.Type {
	case form.TypeText:
		return Reference{Key: form.ParamKey(form.ParamText, field.ID), Value: literal}, true, nil

	case form.TypeMultipleChoice:
		if field.Info == nil {
			return Reference{}, false, nil
		}
		for _, opt := range field.Info.Options {
			if opt.ChoiceValue == literal {
				return Reference{Key: form.ParamKey(form.ParamChoice, field.ID), Value: strconv.Itoa(opt.ChoiceID)}, true, nil
			}
		}
		return Reference{}, false, nil

	case form.TypePerson:
		contacts, err := src.Contacts(ctx)
		if err != nil {
			return Reference{}, false, err
		}
		contactID, ok := findRole(contacts, literal)
		if !ok {
			contactID, ok = findPerson(contacts, literal)
		}
		if !ok {
			return Reference{}, false, nil
		}
		return Reference{Key: form.ParamKey(form.ParamPerson, field.ID), Value: strconv.Itoa(contactID)}, true, nil

	case form.TypeCatalog:
		catalogID := 0
		if field.Info != nil {
			catalogID = field.Info.CatalogID
		}
		compare, column, ok := parseCatalogLiteral(literal)
		if !ok {
			return Reference{}, false, nil
		}
		catalog, err := src.Catalog(ctx, catalogID)
		if err != nil {
			return Reference{}, false, err
		}
		itemID, ok := findCatalogItem(catalog, compare, column)
		if !ok {
			return Reference{}, false, nil
		}
		return Reference{Key: form.ParamKey(form.ParamCatalog, field.ID), Value: strconv.Itoa(itemID)}, true, nil

	case form.TypeCheckmark:
		value := "false"
		if literal == "checked" {
			value = "true"
		}
		return Reference{Key: form.ParamKey(form.ParamCheckmark, field.ID), Value: value}, true, nil

	case form.TypeStep:
		return Reference{Key: form.ParamKey(form.ParamStep, field.ID)}, true, nil
	}
	return Reference{}, false, nil
}

func findRole(contacts *form.Contacts, label string) (int, bool) {
	if contacts == nil {
		return 0, false
	}
	for _, org := range contacts.Organizations {
		for _, r := range org.Roles {
			if r.Name == label {
				return r.ID, true
			}
		}
	}
	return 0, false
}

func findPerson(contacts *form.Contacts, label string) (int, bool) {
	if contacts == nil {
		return 0, false
	}
	for _, org := range contacts.Organizations {
		for _, p := range org.Persons {
			if p.FullName() == label {
				return p.ID, true
			}
		}
	}
	return 0, false
}

// parseCatalogLiteral splits "<compare>[,<column>]". The column defaults to 0
// and must be a non-negative integer.
func parseCatalogLiteral(literal string) (string, int, bool) {
	compare, column, found := strings.Cut(literal, ",")
	compare = strings.TrimSpace(compare)
	if !found {
		return compare, 0, true
	}
	column = strings.TrimSpace(column)
	if column == "" || strings.TrimLeft(column, "0123456789") != "" {
		return "", 0, false
	}
	n, err := strconv.Atoi(column)
	if err != nil {
		return "", 0, false
	}
	return compare, n, true
}

func findCatalogItem(catalog *form.Catalog, compare string, column int) (int, bool) {
	if catalog == nil {
		return 0, false
	}
	for _, item := range catalog.Items {
		if column < len(item.Values) && item.Values[column] == compare {
			return item.ItemID, true
		}
	}
	return 0, false
}
