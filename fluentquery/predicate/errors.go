package predicate

import "github.com/pkg/errors"

var (
	ErrUnsupportedPredicate       = errors.New("predicate: unsupported predicate")
	ErrInvalidOperatorForSequence = errors.New("predicate: sequence values support only the Eq operator")
	ErrUnknownOperator            = errors.New("predicate: unknown operator")
)
