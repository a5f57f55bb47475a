package predicate

import (
	"reflect"
	"strings"

	"github.com/pkg/errors"
)

// Kind discriminates predicate shapes for builder dispatch.
type Kind string

const (
	KindField Kind = "field"
	KindGroup Kind = "group"
)

type Predicate interface {
	Kind() Kind
}

type Operator int

const (
	Eq Operator = iota
	Gt
	Ge
	Lt
	Le
	Like
)

var operatorNames = map[Operator]string{
	Eq:   "eq",
	Gt:   "gt",
	Ge:   "ge",
	Lt:   "lt",
	Le:   "le",
	Like: "like",
}

func (o Operator) String() string {
	if name, ok := operatorNames[o]; ok {
		return name
	}
	return "unknown"
}

// ParseOperator accepts the lower-case operator names produced by String.
func ParseOperator(name string) (Operator, error) {
	for op, n := range operatorNames {
		if strings.EqualFold(n, name) {
			return op, nil
		}
	}
	return Eq, errors.Wrapf(ErrUnknownOperator, "%q", name)
}

type GroupOperator int

const (
	GroupAnd GroupOperator = iota
	GroupOr
)

func (o GroupOperator) String() string {
	if o == GroupOr {
		return "OR"
	}
	return "AND"
}

// FieldPredicate compares one entity property with a value. A nil value
// renders IS [NOT] NULL, a sequence value renders [NOT] IN.
type FieldPredicate struct {
	EntityType   reflect.Type
	PropertyName string
	Operator     Operator
	Negate       bool
	Value        any
}

func (*FieldPredicate) Kind() Kind {
	return KindField
}

// NewField builds a field predicate, rejecting sequence values with operators other than Eq.
func NewField(entityType reflect.Type, propertyName string, op Operator, negate bool, value any) (*FieldPredicate, error) {
	if IsSequence(value) && op != Eq {
		return nil, errors.Wrapf(ErrInvalidOperatorForSequence, "%s %s", propertyName, op)
	}
	return &FieldPredicate{
		EntityType:   entityType,
		PropertyName: propertyName,
		Operator:     op,
		Negate:       negate,
		Value:        value,
	}, nil
}

func Field[E any](propertyName string, op Operator, value any, negate bool) (*FieldPredicate, error) {
	return NewField(reflect.TypeFor[E](), propertyName, op, negate, value)
}

type Group struct {
	Operator   GroupOperator
	Predicates []Predicate
}

func (*Group) Kind() Kind {
	return KindGroup
}

func And(predicates ...Predicate) *Group {
	return &Group{Operator: GroupAnd, Predicates: predicates}
}

func Or(predicates ...Predicate) *Group {
	return &Group{Operator: GroupOr, Predicates: predicates}
}

// IsSequence reports whether value is a slice or array other than []byte,
// looking through pointers.
func IsSequence(value any) bool {
	v := indirect(reflect.ValueOf(value))
	if !v.IsValid() {
		return false
	}
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		return v.Type().Elem().Kind() != reflect.Uint8
	}
	return false
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
