package mapping

import "github.com/pkg/errors"

var (
	ErrMappingNotFound   = errors.New("mapping: mapping not found")
	ErrDuplicateProperty = errors.New("mapping: duplicate property")
)
