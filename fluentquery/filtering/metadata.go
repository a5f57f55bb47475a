package filtering

import (
	"reflect"

	"github.com/pkg/errors"

	"github.com/krew-solutions/fluentquery-go/fluentquery/predicate"
)

// Target is the entity side of a binding: which property a filter value is
// compared with, and how.
type Target struct {
	EntityType   reflect.Type
	PropertyName string
	Operator     predicate.Operator
	Negate       bool
	// Default is the filter value meaning "not set". Numeric defaults match
	// numerically equal values of any numeric type.
	//
	// A nil Default treats the zero value of a non-pointer filter value as not
	// set, so 0 or "" never produces a predicate. To filter on a zero value,
	// either use a pointer filter field or give Default a value the filter
	// never carries (for example -1).
	Default any
}

// Binding extracts one value from a filter and targets one entity property.
type Binding interface {
	FilterType() reflect.Type
	Target() Target
	Extract(filter any) (any, error)
}

// FilterMetadata binds a value of filter F to a property of entity E.
type FilterMetadata[F any, E any] struct {
	Property string
	Operator predicate.Operator
	Negate   bool
	Value    func(F) any
	// Default follows Target.Default.
	Default any
}

func (m FilterMetadata[F, E]) FilterType() reflect.Type {
	return reflect.TypeFor[F]()
}

func (m FilterMetadata[F, E]) Target() Target {
	return Target{
		EntityType:   reflect.TypeFor[E](),
		PropertyName: m.Property,
		Operator:     m.Operator,
		Negate:       m.Negate,
		Default:      m.Default,
	}
}

// Extract accepts F or *F.
func (m FilterMetadata[F, E]) Extract(filter any) (any, error) {
	switch f := filter.(type) {
	case F:
		return m.Value(f), nil
	case *F:
		if f == nil {
			return nil, nil
		}
		return m.Value(*f), nil
	default:
		return nil, errors.Wrapf(ErrFilterTypeMismatch, "expected %s, got %T", reflect.TypeFor[F](), filter)
	}
}

// MetadataProvider supplies the bindings of one filter type.
type MetadataProvider interface {
	FilterType() reflect.Type
	Metadata() []Binding
}

type provider struct {
	filterType reflect.Type
	bindings   []Binding
}

func (p provider) FilterType() reflect.Type {
	return p.filterType
}

func (p provider) Metadata() []Binding {
	return p.bindings
}

// Provider groups hand-written bindings of filter F.
func Provider[F any](bindings ...Binding) MetadataProvider {
	return provider{
		filterType: reflect.TypeFor[F](),
		bindings:   bindings,
	}
}
