package predicate

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/pkg/errors"

	"github.com/krew-solutions/fluentquery-go/fluentquery/dialect"
)

var operatorSymbols = map[Operator][2]string{
	Eq:   {"=", "<>"},
	Gt:   {">", "<="},
	Ge:   {">=", "<"},
	Lt:   {"<", ">="},
	Le:   {"<=", ">"},
	Like: {"LIKE", "NOT LIKE"},
}

// OperatorSymbol returns the SQL comparison for op, inverted when negate is set.
func OperatorSymbol(op Operator, negate bool) string {
	symbols, ok := operatorSymbols[op]
	if !ok {
		symbols = operatorSymbols[Eq]
	}
	if negate {
		return symbols[1]
	}
	return symbols[0]
}

type fieldBuilder struct {
	dialect dialect.Dialect
}

func newFieldBuilder(_ *BuilderFactory, d dialect.Dialect) Builder {
	return fieldBuilder{d}
}

func (b fieldBuilder) SQL(sb SqlBuilder, p Predicate, params *Parameters) (string, error) {
	fp, ok := p.(*FieldPredicate)
	if !ok {
		return "", errors.Wrapf(ErrUnsupportedPredicate, "field builder got %T", p)
	}
	column, err := sb.ColumnName(fp.EntityType, fp.PropertyName, false, "")
	if err != nil {
		return "", err
	}

	value := indirect(reflect.ValueOf(fp.Value))
	if !value.IsValid() {
		return fmt.Sprintf("(%s IS %sNULL)", column, b.not(fp.Negate)), nil
	}
	if IsSequence(fp.Value) {
		if fp.Operator != Eq {
			return "", errors.Wrapf(ErrInvalidOperatorForSequence, "%s %s", fp.PropertyName, fp.Operator)
		}
		if value.Len() == 0 {
			if fp.Negate {
				return fmt.Sprintf("(%s)", b.dialect.EmptyExpression()), nil
			}
			return "(1=0)", nil
		}
		placeholders := make([]string, value.Len())
		for i := range placeholders {
			placeholders[i] = b.bind(params, fp.PropertyName, value.Index(i).Interface())
		}
		return fmt.Sprintf("(%s %sIN (%s))", column, b.not(fp.Negate), strings.Join(placeholders, ", ")), nil
	}
	return fmt.Sprintf("(%s %s %s)",
		column,
		OperatorSymbol(fp.Operator, fp.Negate),
		b.bind(params, fp.PropertyName, value.Interface()),
	), nil
}

func (b fieldBuilder) bind(params *Parameters, name string, value any) string {
	name = params.Add(name, value)
	return b.dialect.Placeholder(name, params.Len())
}

func (b fieldBuilder) not(negate bool) string {
	if negate {
		return "NOT "
	}
	return ""
}
