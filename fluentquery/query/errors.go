package query

import "github.com/pkg/errors"

var (
	ErrUnknownColumn = errors.New("query: unknown column")
	ErrNotFound      = errors.New("query: not found")
)
