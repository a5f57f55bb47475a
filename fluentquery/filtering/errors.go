package filtering

import "github.com/pkg/errors"

var (
	ErrFilterTypeMismatch = errors.New("filtering: filter type mismatch")
	ErrUnknownProperty    = errors.New("filtering: unknown entity property")
)
