package query

import (
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/krew-solutions/fluentquery-go/fluentquery/mapping"
	"github.com/krew-solutions/fluentquery-go/fluentquery/predicate"
	"github.com/krew-solutions/fluentquery-go/fluentquery/session"
)

// Field selects one entity property, optionally under an alias.
type Field struct {
	Property string
	Alias    string
}

func Prop(property string) Field {
	return Field{Property: property}
}

func (f Field) As(alias string) Field {
	f.Alias = alias
	return f
}

// JoinSpec is an inner join of the selected entity with J on the <J>Id convention.
type JoinSpec struct {
	EntityType reflect.Type
	Fields     []Field
}

// Join selects fields of J. Without fields every mapped property of J is
// selected except its Id, which equals the base entity's <J>Id by the join
// condition and would otherwise share its label.
func Join[J any](fields ...Field) JoinSpec {
	return JoinSpec{
		EntityType: reflect.TypeFor[J](),
		Fields:     fields,
	}
}

type ExecutableQuery[V any] interface {
	Execute(conn session.DbQuerier) ([]V, error)
	ExecuteWith(filter any, conn session.DbQuerier) ([]V, error)
	Statement() (Statement, error)
	StatementWith(filter any) (Statement, error)
}

// SelectQuery selects entities T and scans rows into V.
//
// A SelectQuery is configured and compiled by a single goroutine. Once compiled
// it is immutable and may be executed concurrently.
type SelectQuery[T any, V any] struct {
	qb         *QueryBuilder
	entityType reflect.Type
	fields     []Field
	joins      []JoinSpec
	sql        string
	compiled   bool
}

func Select[T any](qb *QueryBuilder, fields ...Field) *SelectQuery[T, T] {
	return SelectView[T, T](qb, fields...)
}

// SelectView selects entities T into the view type V, which carries the joined columns.
func SelectView[T any, V any](qb *QueryBuilder, fields ...Field) *SelectQuery[T, V] {
	return &SelectQuery[T, V]{
		qb:         qb,
		entityType: reflect.TypeFor[T](),
		fields:     fields,
	}
}

// Fields adds selected fields. It is a no-op once the query is compiled.
func (q *SelectQuery[T, V]) Fields(fields ...Field) *SelectQuery[T, V] {
	if q.ignoreIfCompiled("fields") {
		return q
	}
	q.fields = append(q.fields, fields...)
	return q
}

// Join adds an inner join. It is a no-op once the query is compiled.
func (q *SelectQuery[T, V]) Join(spec JoinSpec) *SelectQuery[T, V] {
	if q.ignoreIfCompiled("join") {
		return q
	}
	q.joins = append(q.joins, spec)
	return q
}

func (q *SelectQuery[T, V]) ignoreIfCompiled(change string) bool {
	if !q.compiled {
		return false
	}
	q.qb.logger.Warn("select already compiled, change ignored",
		slog.String("entity", q.entityType.Name()),
		slog.String("change", change),
	)
	return true
}

// Compile renders the SELECT ... FROM ... [INNER JOIN ...] text once. Every
// unknown field is reported; nothing is kept when compilation fails.
func (q *SelectQuery[T, V]) Compile() (ExecutableQuery[V], error) {
	if q.compiled {
		return q, nil
	}
	sb := q.qb.sqlBuilder
	m, err := q.qb.resolver.Get(q.entityType)
	if err != nil {
		return nil, err
	}

	var result error
	columns := make([]string, 0, len(q.fields))
	for _, f := range fieldsOrAll(q.fields, m) {
		column, err := sb.ColumnName(q.entityType, f.Property, true, f.Alias)
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		columns = append(columns, column)
	}

	joins := make([]string, 0, len(q.joins))
	for _, spec := range q.joins {
		joinColumns, clause, err := q.compileJoin(spec)
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		columns = append(columns, joinColumns...)
		joins = append(joins, clause)
	}

	table, err := sb.TableName(q.entityType)
	if err != nil {
		result = multierror.Append(result, err)
	}
	if result != nil {
		return nil, result
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(columns, ", "))
	b.WriteString(" FROM ")
	b.WriteString(table)
	for _, clause := range joins {
		b.WriteByte(' ')
		b.WriteString(clause)
	}
	q.sql = b.String()
	q.compiled = true

	q.qb.logger.Debug("select compiled",
		slog.String("entity", m.EntityName),
		slog.String("sql", q.sql),
	)
	return q, nil
}

func (q *SelectQuery[T, V]) compileJoin(spec JoinSpec) ([]string, string, error) {
	sb := q.qb.sqlBuilder
	jm, err := q.qb.resolver.Get(spec.EntityType)
	if err != nil {
		return nil, "", err
	}

	fields := spec.Fields
	if len(fields) == 0 {
		for _, f := range fieldsOrAll(nil, jm) {
			if !strings.EqualFold(f.Property, "Id") {
				fields = append(fields, f)
			}
		}
	}

	var result error
	columns := make([]string, 0, len(fields))
	for _, f := range fields {
		alias := f.Alias
		if alias == "" {
			property := f.Property
			if p, ok := jm.Property(property); ok {
				property = p.Name
			}
			alias = jm.EntityName + property
		}
		column, err := sb.ColumnName(spec.EntityType, f.Property, true, alias)
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		columns = append(columns, column)
	}

	foreignKey, err := sb.ColumnName(q.entityType, jm.EntityName+"Id", false, "")
	if err != nil {
		result = multierror.Append(result, errors.Wrapf(err, "join %s", jm.EntityName))
	}
	primaryKey, err := sb.ColumnName(spec.EntityType, "Id", false, "")
	if err != nil {
		result = multierror.Append(result, errors.Wrapf(err, "join %s", jm.EntityName))
	}
	table, err := sb.TableName(spec.EntityType)
	if err != nil {
		result = multierror.Append(result, err)
	}
	if result != nil {
		return nil, "", result
	}
	return columns, fmt.Sprintf("INNER JOIN %s ON %s = %s", table, foreignKey, primaryKey), nil
}

func fieldsOrAll(fields []Field, m *mapping.ClassMap) []Field {
	if len(fields) > 0 {
		return fields
	}
	all := make([]Field, len(m.Properties))
	for i, p := range m.Properties {
		all[i] = Field{Property: p.Name}
	}
	return all
}

func (q *SelectQuery[T, V]) Statement() (Statement, error) {
	return q.StatementWith(nil)
}

// StatementWith appends the WHERE clause rendered from filter. Filters without
// set values produce no WHERE clause.
func (q *SelectQuery[T, V]) StatementWith(filter any) (Statement, error) {
	var p predicate.Predicate
	if filter != nil && q.qb.predicates != nil {
		var err error
		if p, err = q.qb.predicates.GetPredicate(filter); err != nil {
			return Statement{}, err
		}
	}
	return q.statementFor(p)
}

func (q *SelectQuery[T, V]) statementFor(p predicate.Predicate) (Statement, error) {
	if _, err := q.Compile(); err != nil {
		return Statement{}, err
	}
	st := Statement{
		Text:      q.sql,
		bindStyle: q.qb.dialect.BindStyle(),
	}
	if p == nil {
		return st, nil
	}
	params := predicate.NewParameters()
	where, err := q.qb.builders.SQL(q.qb.sqlBuilder, p, params)
	if err != nil {
		return Statement{}, err
	}
	if where != "" {
		st.Text = st.Text + " WHERE " + where
		st.Parameters = params.All()
	}
	return st, nil
}

func (q *SelectQuery[T, V]) Execute(conn session.DbQuerier) ([]V, error) {
	return q.ExecuteWith(nil, conn)
}

func (q *SelectQuery[T, V]) ExecuteWith(filter any, conn session.DbQuerier) ([]V, error) {
	st, err := q.StatementWith(filter)
	if err != nil {
		return nil, err
	}
	return q.execute(st, conn)
}

func (q *SelectQuery[T, V]) execute(st Statement, conn session.DbQuerier) ([]V, error) {
	q.qb.logger.Debug("executing select",
		slog.String("sql", st.Text),
		slog.Int("parameters", len(st.Parameters)),
	)
	rows, err := conn.Query(st.Text, st.Args()...)
	if err != nil {
		return nil, errors.Wrap(err, "unable to execute select")
	}
	defer rows.Close()
	return scanAll[V](rows)
}
