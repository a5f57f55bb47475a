package query

import (
	"log/slog"

	"github.com/krew-solutions/fluentquery-go/fluentquery/dialect"
	"github.com/krew-solutions/fluentquery-go/fluentquery/mapping"
	"github.com/krew-solutions/fluentquery-go/fluentquery/predicate"
)

// PredicateSource turns a filter into a predicate tree; nil means no WHERE clause.
type PredicateSource interface {
	GetPredicate(filter any) (predicate.Predicate, error)
}

type QueryBuilderOption func(*QueryBuilder)

func WithDialect(d dialect.Dialect) QueryBuilderOption {
	return func(qb *QueryBuilder) {
		qb.dialect = d
	}
}

func WithLogger(logger *slog.Logger) QueryBuilderOption {
	return func(qb *QueryBuilder) {
		qb.logger = logger
	}
}

// QueryBuilder holds the collaborators shared by every select it starts.
type QueryBuilder struct {
	resolver   mapping.Resolver
	predicates PredicateSource
	builders   *predicate.BuilderFactory
	dialect    dialect.Dialect
	sqlBuilder *SqlBuilder
	logger     *slog.Logger
}

func NewQueryBuilder(
	resolver mapping.Resolver,
	predicates PredicateSource,
	builders *predicate.BuilderFactory,
	opts ...QueryBuilderOption,
) *QueryBuilder {
	qb := &QueryBuilder{
		resolver:   resolver,
		predicates: predicates,
		builders:   builders,
		dialect:    dialect.SqlServer(),
		logger:     slog.Default(),
	}
	for i := range opts {
		opts[i](qb)
	}
	if qb.builders == nil {
		qb.builders = predicate.NewBuilderFactory(predicate.WithLogger(qb.logger))
	}
	qb.sqlBuilder = NewSqlBuilder(qb.dialect, qb.resolver)
	return qb
}

func (qb *QueryBuilder) Dialect() dialect.Dialect {
	return qb.dialect
}

func (qb *QueryBuilder) SqlBuilder() *SqlBuilder {
	return qb.sqlBuilder
}
