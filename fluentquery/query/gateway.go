package query

import (
	"github.com/pkg/errors"

	"github.com/krew-solutions/fluentquery-go/fluentquery/predicate"
	"github.com/krew-solutions/fluentquery-go/fluentquery/session"
)

// Gateway reads entities T by filter or by Id. It compiles its select up front
// and is safe for concurrent use.
type Gateway[T any] struct {
	query *SelectQuery[T, T]
}

func NewGateway[T any](qb *QueryBuilder) (*Gateway[T], error) {
	q := Select[T](qb)
	if _, err := q.Compile(); err != nil {
		return nil, err
	}
	return &Gateway[T]{query: q}, nil
}

func (g *Gateway[T]) List(conn session.DbQuerier, filter any) ([]T, error) {
	return g.query.ExecuteWith(filter, conn)
}

// Get returns the entity whose Id equals id, or ErrNotFound.
func (g *Gateway[T]) Get(conn session.DbQuerier, id any) (T, error) {
	var zero T
	p, err := predicate.Field[T]("Id", predicate.Eq, id, false)
	if err != nil {
		return zero, err
	}
	st, err := g.query.statementFor(p)
	if err != nil {
		return zero, err
	}
	items, err := g.query.execute(st, conn)
	if err != nil {
		return zero, err
	}
	if len(items) == 0 {
		return zero, errors.Wrapf(ErrNotFound, "%s %v", g.query.entityType.Name(), id)
	}
	return items[0], nil
}
