package query

import (
	"database/sql"

	"github.com/krew-solutions/fluentquery-go/fluentquery/dialect"
	"github.com/krew-solutions/fluentquery-go/fluentquery/predicate"
)

type Parameter = predicate.Parameter

// Statement is rendered SQL text with its parameters in binding order.
type Statement struct {
	Text       string
	Parameters []Parameter
	bindStyle  dialect.BindStyle
}

// Args returns the driver arguments: sql.Named values for named placeholders,
// plain values for positional ones.
func (s Statement) Args() []any {
	args := make([]any, len(s.Parameters))
	for i, p := range s.Parameters {
		if s.bindStyle == dialect.NamedBind {
			args[i] = sql.Named(p.Name, p.Value)
		} else {
			args[i] = p.Value
		}
	}
	return args
}
