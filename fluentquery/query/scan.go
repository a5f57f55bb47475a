package query

import (
	"reflect"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/krew-solutions/fluentquery-go/fluentquery/session"
)

var fieldIndexes sync.Map

// fieldIndex maps lower-cased field names of a struct, embedded structs and
// exported embedded struct pointers flattened, to their index paths.
func fieldIndex(t reflect.Type) map[string][]int {
	if index, ok := fieldIndexes.Load(t); ok {
		return index.(map[string][]int)
	}
	index := make(map[string][]int)
	collectFieldIndex(t, nil, index)
	actual, _ := fieldIndexes.LoadOrStore(t, index)
	return actual.(map[string][]int)
}

func collectFieldIndex(t reflect.Type, parent []int, index map[string][]int) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		path := append(append([]int(nil), parent...), i)
		if f.Anonymous {
			ft := f.Type
			if ft.Kind() == reflect.Pointer && f.IsExported() {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				collectFieldIndex(ft, path, index)
				continue
			}
		}
		if !f.IsExported() {
			continue
		}
		key := strings.ToLower(f.Name)
		if _, ok := index[key]; !ok || len(parent) == 0 {
			index[key] = path
		}
	}
}

// fieldByIndex is reflect.Value.FieldByIndex that allocates nil embedded pointers
// on the way.
func fieldByIndex(v reflect.Value, path []int) reflect.Value {
	for i, x := range path {
		if i > 0 && v.Kind() == reflect.Pointer {
			if v.IsNil() {
				v.Set(reflect.New(v.Type().Elem()))
			}
			v = v.Elem()
		}
		v = v.Field(x)
	}
	return v
}

// scanAll scans every row into a V, matching column labels to V's fields
// case-insensitively. Unmatched columns are discarded.
func scanAll[V any](rows session.Rows) ([]V, error) {
	vt := reflect.TypeFor[V]()
	if vt.Kind() != reflect.Struct {
		return nil, errors.Errorf("query: cannot scan rows into %s", vt)
	}
	columns, err := rows.Columns()
	if err != nil {
		return nil, errors.Wrap(err, "unable to read result columns")
	}
	index := fieldIndex(vt)

	var result []V
	for rows.Next() {
		var v V
		rv := reflect.ValueOf(&v).Elem()
		dest := make([]any, len(columns))
		for i, column := range columns {
			if path, ok := index[strings.ToLower(column)]; ok {
				dest[i] = fieldByIndex(rv, path).Addr().Interface()
			} else {
				dest[i] = new(any)
			}
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, errors.Wrap(err, "unable to scan row")
		}
		result = append(result, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
