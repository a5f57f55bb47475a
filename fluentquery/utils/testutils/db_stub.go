package testutils

import (
	"context"
	"database/sql"
	"reflect"

	"github.com/pkg/errors"

	"github.com/krew-solutions/fluentquery-go/fluentquery/session"
)

func NewDbSessionStub(rows *RowsStub) *DbSessionStub {
	stub := &DbSessionStub{
		Rows: rows,
	}
	stub.conn = &connectionStub{session: stub}
	return stub
}

// DbSessionStub records the last statement and serves Rows to every query.
type DbSessionStub struct {
	Rows         *RowsStub
	QueryErr     error
	ActualQuery  string
	ActualParams []any
	conn         *connectionStub
}

func (s *DbSessionStub) Context() context.Context {
	return context.Background()
}

func (s *DbSessionStub) Atomic(callback session.SessionCallback) error {
	return callback(s)
}

func (s *DbSessionStub) Connection() session.DbConnection {
	return s.conn
}

type connectionStub struct {
	session *DbSessionStub
}

func (c *connectionStub) Exec(query string, args ...any) (session.Result, error) {
	c.session.ActualQuery = query
	c.session.ActualParams = args
	return session.NewResult(0, 0), nil
}

func (c *connectionStub) Query(query string, args ...any) (session.Rows, error) {
	c.session.ActualQuery = query
	c.session.ActualParams = args
	if c.session.QueryErr != nil {
		return nil, c.session.QueryErr
	}
	return c.session.Rows, nil
}

func (c *connectionStub) QueryRow(query string, args ...any) session.Row {
	c.session.ActualQuery = query
	c.session.ActualParams = args
	c.session.Rows.Next()
	return &RowStub{rows: c.session.Rows}
}

func NewRowsStub(columns []string, rows ...[]any) *RowsStub {
	return &RowsStub{
		columns: columns,
		rows:    rows,
		idx:     -1,
		Closed:  false,
	}
}

type RowsStub struct {
	columns []string
	rows    [][]any
	idx     int
	Closed  bool
}

func (r *RowsStub) Close() error {
	r.Closed = true
	return nil
}

func (r *RowsStub) Err() error {
	return nil
}

func (r *RowsStub) Next() bool {
	r.idx++
	return r.idx < len(r.rows)
}

func (r *RowsStub) Columns() ([]string, error) {
	return r.columns, nil
}

func (r *RowsStub) Scan(dest ...any) error {
	if r.idx < 0 || r.idx >= len(r.rows) {
		return sql.ErrNoRows
	}

	row := r.rows[r.idx]
	for i, val := range row {
		if i >= len(dest) {
			break
		}

		switch d := dest[i].(type) {
		case *int:
			*d = toInt(val)
		case *int64:
			*d = toInt64(val)
		case *int32:
			*d = toInt32(val)
		case *string:
			*d = val.(string)
		case *bool:
			*d = val.(bool)
		case *[]byte:
			*d = val.([]byte)
		case *float64:
			*d = toFloat64(val)
		case *any:
			*d = val
		case sql.Scanner:
			if err := d.Scan(val); err != nil {
				return err
			}
		default:
			if err := assign(dest[i], val); err != nil {
				return err
			}
		}
	}
	return nil
}

// assign covers nullable destinations such as **string.
func assign(dest, val any) error {
	d := reflect.ValueOf(dest)
	if d.Kind() != reflect.Pointer || d.IsNil() {
		return errors.Errorf("unsupported scan type %T", dest)
	}
	target := d.Elem()
	if val == nil {
		target.Set(reflect.Zero(target.Type()))
		return nil
	}
	v := reflect.ValueOf(val)
	if target.Kind() == reflect.Pointer {
		p := reflect.New(target.Type().Elem())
		if err := assign(p.Interface(), val); err != nil {
			return err
		}
		target.Set(p)
		return nil
	}
	if !v.Type().ConvertibleTo(target.Type()) {
		return errors.Errorf("cannot scan %T into %T", val, dest)
	}
	target.Set(v.Convert(target.Type()))
	return nil
}

func toInt(val any) int {
	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case int32:
		return int(v)
	default:
		panic("cannot convert to int")
	}
}

func toInt64(val any) int64 {
	switch v := val.(type) {
	case int:
		return int64(v)
	case int64:
		return v
	case int32:
		return int64(v)
	default:
		panic("cannot convert to int64")
	}
}

func toInt32(val any) int32 {
	switch v := val.(type) {
	case int:
		return int32(v)
	case int64:
		return int32(v)
	case int32:
		return v
	default:
		panic("cannot convert to int32")
	}
}

func toFloat64(val any) float64 {
	switch v := val.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		panic("cannot convert to float64")
	}
}

type RowStub struct {
	rows *RowsStub
}

func (r *RowStub) Err() error {
	return r.rows.Err()
}

func (r *RowStub) Scan(dest ...any) error {
	return r.rows.Scan(dest...)
}
