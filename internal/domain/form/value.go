package form

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
)

// Placeholder is the rendering of an absent value.
const Placeholder = "Нет значения"

// Display normalizes a field value to the string used for grouping, filtering
// and table cells. Every comparison against a field value goes through it.
func Display(f Field) string {
	switch v := f.Value.(type) {
	case nil:
		return Placeholder
	case Text:
		return string(v)
	case Number:
		return v.Decimal.String()
	case Person:
		if v.IsRole() {
			return v.LastName
		}
		return v.FullName()
	case MultipleChoice:
		if len(v.ChoiceNames) == 0 {
			return Placeholder
		}
		return v.ChoiceNames[0]
	case CatalogItem:
		if len(v.Values) == 0 {
			return ""
		}
		return v.Values[0]
	case Checkmark:
		return string(v)
	case Step:
		return strconv.Itoa(int(v))
	case Raw:
		var s string
		if json.Unmarshal(v, &s) == nil {
			return s
		}
		return string(v)
	default:
		return Placeholder
	}
}

// Literal is like Display but renders an absent value as "". It reads
// human-entered configuration cells.
func Literal(f Field) string {
	if f.Value == nil {
		return ""
	}
	return Display(f)
}

// Registry parameter prefixes.
const (
	ParamPerson    = "cid"
	ParamChoice    = "mch"
	ParamText      = "str"
	ParamCatalog   = "ctf"
	ParamStep      = "tst"
	ParamCheckmark = "chk"
)

// RegistryFragment returns the URL-encoded registry parameter contributed by
// the field's value, e.g. "cid12=-1" for an empty person field with id 12.
// Types the registry cannot filter by contribute "".
func RegistryFragment(f Field) string {
	var key, value string
	switch f.Type {
	case TypePerson:
		key, value = ParamPerson, "-1"
		if p, ok := f.Value.(Person); ok {
			value = strconv.Itoa(p.ID)
		}
	case TypeMultipleChoice:
		key, value = ParamChoice, "0"
		if mc, ok := f.Value.(MultipleChoice); ok && len(mc.ChoiceIDs) > 0 {
			value = strconv.Itoa(mc.ChoiceIDs[0])
		}
	case TypeText:
		key = ParamText
		if f.Value != nil {
			value = Display(f)
		}
	case TypeCatalog:
		key = ParamCatalog
		if ci, ok := f.Value.(CatalogItem); ok {
			value = strconv.Itoa(ci.ItemID)
		}
	case TypeStep:
		key = ParamStep
		if f.Value != nil {
			value = Display(f)
		}
	default:
		return ""
	}
	return ParamKey(key, f.ID) + "=" + url.QueryEscape(value)
}

// ParamKey builds a registry parameter name for a field.
func ParamKey(prefix string, id FieldID) string {
	return prefix + strconv.Itoa(id)
}

// Params is an insertion-ordered set of registry parameters. Setting an
// existing key replaces its value in place.
type Params struct {
	keys   []string
	values map[string]string
}

// Set adds or replaces a parameter.
func (p *Params) Set(key, value string) {
	if p.values == nil {
		p.values = make(map[string]string)
	}
	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.values[key] = value
}

// Len returns the number of parameters.
func (p *Params) Len() int {
	return len(p.keys)
}

// Encode renders the parameters as a query string in insertion order.
func (p *Params) Encode() string {
	parts := make([]string, 0, len(p.keys))
	for _, k := range p.keys {
		parts = append(parts, url.QueryEscape(k)+"="+url.QueryEscape(p.values[k]))
	}
	return strings.Join(parts, "&")
}
