package predicate

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/pkg/errors"

	"github.com/krew-solutions/fluentquery-go/fluentquery/dialect"
)

type groupBuilder struct {
	factory *BuilderFactory
	dialect dialect.Dialect
}

func newGroupBuilder(factory *BuilderFactory, d dialect.Dialect) Builder {
	return groupBuilder{factory, d}
}

func (b groupBuilder) SQL(sb SqlBuilder, p Predicate, params *Parameters) (string, error) {
	g, ok := p.(*Group)
	if !ok {
		return "", errors.Wrapf(ErrUnsupportedPredicate, "group builder got %T", p)
	}
	sqlParts := make([]string, 0, len(g.Predicates))
	for i := range g.Predicates {
		part, err := b.factory.SQL(sb, g.Predicates[i], params)
		if err != nil {
			return "", err
		}
		if part != "" {
			sqlParts = append(sqlParts, part)
		}
	}
	if len(sqlParts) == 0 {
		b.factory.logger.Warn("empty predicate group rendered as always true",
			slog.String("dialect", b.dialect.Name()),
			slog.String("operator", g.Operator.String()),
		)
		return b.dialect.EmptyExpression(), nil
	}
	return fmt.Sprintf("(%s)", strings.Join(sqlParts, fmt.Sprintf(" %s ", g.Operator))), nil
}
