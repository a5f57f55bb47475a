package mapping

import (
	"reflect"
	"strings"

	"github.com/jinzhu/inflection"
	"github.com/pkg/errors"
)

// TableNamer lets an entity choose its own table name for auto-mapping.
type TableNamer interface {
	TableName() string
}

var tableNamerType = reflect.TypeFor[TableNamer]()

// AutoMap derives a ClassMap from the exported fields of a struct type.
//
// Column names come from the `db` tag when present (`db:"-"` skips the field),
// otherwise from the field name. Anonymous struct fields and exported anonymous
// struct pointers are flattened; unexported anonymous pointers are skipped. The
// table name comes from TableNamer, or from the type name, pluralized when
// pluralize is set (Article -> Articles).
func AutoMap(t reflect.Type, pluralize bool) (*ClassMap, error) {
	if t == nil {
		return nil, errors.Wrap(ErrMappingNotFound, "nil type")
	}
	if t.Kind() != reflect.Struct {
		return nil, errors.Wrapf(ErrMappingNotFound, "%s is not a struct", t)
	}

	m := &ClassMap{
		EntityType: t,
		EntityName: t.Name(),
		TableName:  tableName(t, pluralize),
	}
	collectProperties(t, m)

	if err := m.validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func tableName(t reflect.Type, pluralize bool) string {
	switch {
	case t.Implements(tableNamerType):
		return reflect.Zero(t).Interface().(TableNamer).TableName()
	case reflect.PointerTo(t).Implements(tableNamerType):
		return reflect.New(t).Interface().(TableNamer).TableName()
	case pluralize:
		return inflection.Plural(t.Name())
	default:
		return t.Name()
	}
}

func collectProperties(t reflect.Type, m *ClassMap) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag, hasTag := f.Tag.Lookup("db")
		column, _, _ := strings.Cut(tag, ",")
		if column == "-" {
			continue
		}
		if f.Anonymous && !hasTag {
			ft := f.Type
			if ft.Kind() == reflect.Pointer {
				// an unexported embedded pointer cannot be allocated when scanning
				if !f.IsExported() {
					continue
				}
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				collectProperties(ft, m)
				continue
			}
		}
		if !f.IsExported() {
			continue
		}
		if column == "" {
			column = f.Name
		}
		m.Properties = append(m.Properties, PropertyMap{Name: f.Name, ColumnName: column})
	}
}
