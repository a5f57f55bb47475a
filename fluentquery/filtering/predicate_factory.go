package filtering

import (
	"math"
	"math/big"
	"reflect"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/krew-solutions/fluentquery-go/fluentquery/predicate"
)

type registeredBinding struct {
	binding Binding
	target  Target
}

// PredicateFactory turns filter values into predicate trees. Its registry is
// built once and read-only afterwards, so it is safe for concurrent use.
type PredicateFactory struct {
	registry map[reflect.Type][]registeredBinding
}

// NewPredicateFactory registers the bindings of every provider. Providers of the
// same filter type are concatenated in order; empty providers are ignored.
func NewPredicateFactory(providers ...MetadataProvider) (*PredicateFactory, error) {
	f := &PredicateFactory{registry: make(map[reflect.Type][]registeredBinding)}
	var result error
	for _, p := range providers {
		bindings := p.Metadata()
		if len(bindings) == 0 {
			continue
		}
		filterType := p.FilterType()
		for _, b := range bindings {
			if b.FilterType() != filterType {
				result = multierror.Append(result, errors.Wrapf(
					ErrFilterTypeMismatch, "binding of %s registered for %s", b.FilterType(), filterType,
				))
				continue
			}
			f.registry[filterType] = append(f.registry[filterType], registeredBinding{b, b.Target()})
		}
	}
	if result != nil {
		return nil, result
	}
	return f, nil
}

// GetPredicate returns an AND group of the field predicates whose filter values
// are set, or nil when the filter is nil, unregistered, or carries only defaults.
func (f *PredicateFactory) GetPredicate(filter any) (predicate.Predicate, error) {
	if filter == nil {
		return nil, nil
	}
	fv := reflect.ValueOf(filter)
	filterType := fv.Type()
	if filterType.Kind() == reflect.Pointer {
		if fv.IsNil() {
			return nil, nil
		}
		filterType = filterType.Elem()
	}
	bindings, ok := f.registry[filterType]
	if !ok {
		return nil, nil
	}

	var predicates []predicate.Predicate
	for _, rb := range bindings {
		value, err := rb.binding.Extract(filter)
		if err != nil {
			return nil, err
		}
		if isUnset(value, rb.target.Default) {
			continue
		}
		p, err := predicate.NewField(rb.target.EntityType, rb.target.PropertyName, rb.target.Operator, rb.target.Negate, value)
		if err != nil {
			return nil, err
		}
		predicates = append(predicates, p)
	}
	if len(predicates) == 0 {
		return nil, nil
	}
	return predicate.And(predicates...), nil
}

func isUnset(value, defaultValue any) bool {
	v := reflect.ValueOf(value)
	if !v.IsValid() {
		return true
	}
	if (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) && v.IsNil() {
		return true
	}
	if defaultValue == nil && v.Kind() != reflect.Pointer && v.IsZero() {
		return true
	}
	v = indirect(v)
	if (v.Kind() == reflect.Slice || v.Kind() == reflect.Array) && v.Len() == 0 {
		return true
	}
	if defaultValue == nil {
		return false
	}
	return equal(v, indirect(reflect.ValueOf(defaultValue)))
}

func equal(v, d reflect.Value) bool {
	if !d.IsValid() {
		return false
	}
	if v.Type() == d.Type() {
		return reflect.DeepEqual(v.Interface(), d.Interface())
	}
	x, ok := number(v)
	if !ok {
		return false
	}
	y, ok := number(d)
	if !ok {
		return false
	}
	return x.Cmp(y) == 0
}

// number widens any integer or float to an exact big.Float.
func number(v reflect.Value) (*big.Float, bool) {
	switch {
	case v.CanInt():
		return new(big.Float).SetInt64(v.Int()), true
	case v.CanUint():
		return new(big.Float).SetUint64(v.Uint()), true
	case v.CanFloat():
		f := v.Float()
		if math.IsNaN(f) {
			return nil, false
		}
		return new(big.Float).SetFloat64(f), true
	default:
		return nil, false
	}
}

func indirect(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}
