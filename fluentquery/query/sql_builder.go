package query

import (
	"reflect"

	"github.com/pkg/errors"

	"github.com/krew-solutions/fluentquery-go/fluentquery/dialect"
	"github.com/krew-solutions/fluentquery-go/fluentquery/mapping"
)

// SqlBuilder renders table and column names of mapped entities in one dialect.
type SqlBuilder struct {
	dialect  dialect.Dialect
	resolver mapping.Resolver
}

func NewSqlBuilder(d dialect.Dialect, resolver mapping.Resolver) *SqlBuilder {
	return &SqlBuilder{
		dialect:  d,
		resolver: resolver,
	}
}

func (b *SqlBuilder) Dialect() dialect.Dialect {
	return b.dialect
}

func (b *SqlBuilder) TableName(entityType reflect.Type) (string, error) {
	m, err := b.resolver.Get(entityType)
	if err != nil {
		return "", err
	}
	return b.dialect.TableName(m.SchemaName, m.TableName, ""), nil
}

// ColumnName renders <table>.<column>. With includeAlias it appends AS <alias>,
// or AS <property> when the column is named differently from its property.
func (b *SqlBuilder) ColumnName(entityType reflect.Type, propertyName string, includeAlias bool, alias string) (string, error) {
	m, err := b.resolver.Get(entityType)
	if err != nil {
		return "", err
	}
	p, ok := m.Property(propertyName)
	if !ok {
		return "", errors.Wrapf(ErrUnknownColumn, "%s.%s", m.EntityName, propertyName)
	}
	if !includeAlias {
		alias = ""
	} else if alias == "" && p.ColumnName != p.Name {
		alias = p.Name
	}
	table := b.dialect.TableName(m.SchemaName, m.TableName, "")
	return b.dialect.ColumnName(table, p.ColumnName, alias), nil
}

func (b *SqlBuilder) IdentitySQL(entityType reflect.Type) (string, error) {
	table, err := b.TableName(entityType)
	if err != nil {
		return "", err
	}
	return b.dialect.IdentitySQL(table), nil
}
