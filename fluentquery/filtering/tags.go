package filtering

import (
	"reflect"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/krew-solutions/fluentquery-go/fluentquery/predicate"
)

const tagName = "filter"

// FromTags builds the bindings of filter F by scanning its `filter` struct tags:
//
//	type ArticleFilter struct {
//		Id   int64  `filter:"Id"`
//		Name string `filter:"Name,op=like"`
//		Skip int64  `filter:"ArticleTypeId,not"`
//	}
//
// An empty property name means the field name. The default of every binding is
// the zero value of its field. Untagged fields are ignored.
func FromTags[F any, E any]() (MetadataProvider, error) {
	ft := reflect.TypeFor[F]()
	et := reflect.TypeFor[E]()
	if ft.Kind() != reflect.Struct {
		return nil, errors.Wrapf(ErrFilterTypeMismatch, "%s is not a struct", ft)
	}

	var bindings []Binding
	var result error
	for _, f := range reflect.VisibleFields(ft) {
		tag, ok := f.Tag.Lookup(tagName)
		if !ok || tag == "-" || !f.IsExported() {
			continue
		}
		m, err := parseTag[F, E](f, tag)
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		if _, ok := et.FieldByName(m.Property); !ok {
			result = multierror.Append(result, errors.Wrapf(ErrUnknownProperty, "%s.%s (from %s.%s)", et.Name(), m.Property, ft.Name(), f.Name))
			continue
		}
		bindings = append(bindings, m)
	}
	if result != nil {
		return nil, result
	}
	return provider{filterType: ft, bindings: bindings}, nil
}

func parseTag[F any, E any](f reflect.StructField, tag string) (FilterMetadata[F, E], error) {
	parts := strings.Split(tag, ",")
	index := f.Index
	m := FilterMetadata[F, E]{
		Property: strings.TrimSpace(parts[0]),
		Value: func(filter F) any {
			return reflect.ValueOf(filter).FieldByIndex(index).Interface()
		},
		Default: reflect.Zero(f.Type).Interface(),
	}
	if m.Property == "" {
		m.Property = f.Name
	}
	for _, option := range parts[1:] {
		key, value, _ := strings.Cut(strings.TrimSpace(option), "=")
		switch key {
		case "op":
			op, err := predicate.ParseOperator(value)
			if err != nil {
				return m, errors.Wrapf(err, "field %s", f.Name)
			}
			m.Operator = op
		case "not":
			m.Negate = true
		default:
			return m, errors.Errorf("filtering: unknown tag option %q on field %s", option, f.Name)
		}
	}
	if m.Operator != predicate.Eq && isSequenceType(f.Type) {
		return m, errors.Wrapf(predicate.ErrInvalidOperatorForSequence, "field %s", f.Name)
	}
	return m, nil
}

func isSequenceType(t reflect.Type) bool {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return (t.Kind() == reflect.Slice || t.Kind() == reflect.Array) && t.Elem().Kind() != reflect.Uint8
}
