package mapping

import (
	"reflect"
	"strings"

	"github.com/pkg/errors"
)

// PropertyMap maps one entity property to its column.
type PropertyMap struct {
	Name       string
	ColumnName string
}

// ClassMap is the table/column metadata of one entity type. It is read-only once
// handed out by a Resolver.
type ClassMap struct {
	EntityType reflect.Type
	// EntityName drives the foreign key convention and join aliases; defaults to the type name
	EntityName string
	SchemaName string
	TableName  string
	Properties []PropertyMap
}

// Property finds a property by name, ignoring case.
func (m *ClassMap) Property(name string) (PropertyMap, bool) {
	for _, p := range m.Properties {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return PropertyMap{}, false
}

// Map appends or renames a property mapping and returns the class map for chaining.
func (m *ClassMap) Map(name, columnName string) *ClassMap {
	for i := range m.Properties {
		if strings.EqualFold(m.Properties[i].Name, name) {
			m.Properties[i].ColumnName = columnName
			return m
		}
	}
	m.Properties = append(m.Properties, PropertyMap{Name: name, ColumnName: columnName})
	return m
}

func (m *ClassMap) validate() error {
	if m.EntityType == nil {
		return errors.Wrap(ErrMappingNotFound, "class map without entity type")
	}
	seen := make(map[string]struct{}, len(m.Properties))
	for _, p := range m.Properties {
		key := strings.ToLower(p.Name)
		if _, ok := seen[key]; ok {
			return errors.Wrapf(ErrDuplicateProperty, "%q in %s", p.Name, m.EntityName)
		}
		seen[key] = struct{}{}
	}
	return nil
}

func (m *ClassMap) clone() *ClassMap {
	c := *m
	c.Properties = append([]PropertyMap(nil), m.Properties...)
	return &c
}

// NewClassMap starts an explicit mapping for T with the given table name.
func NewClassMap[T any](tableName string) *ClassMap {
	t := reflect.TypeFor[T]()
	return &ClassMap{
		EntityType: t,
		EntityName: t.Name(),
		TableName:  tableName,
	}
}
