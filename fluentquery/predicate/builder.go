package predicate

import (
	"log/slog"
	"reflect"
	"sync"

	"github.com/pkg/errors"

	"github.com/krew-solutions/fluentquery-go/fluentquery/dialect"
)

// SqlBuilder resolves entity properties to rendered column names.
type SqlBuilder interface {
	Dialect() dialect.Dialect
	ColumnName(entityType reflect.Type, propertyName string, includeAlias bool, alias string) (string, error)
}

// Builder renders one predicate shape. Builders are stateless per dialect;
// everything call-specific arrives as arguments.
type Builder interface {
	SQL(sb SqlBuilder, p Predicate, params *Parameters) (string, error)
}

type BuilderConstructor func(factory *BuilderFactory, d dialect.Dialect) Builder

type BuilderFactoryOption func(*BuilderFactory)

func WithLogger(logger *slog.Logger) BuilderFactoryOption {
	return func(f *BuilderFactory) {
		f.logger = logger
	}
}

type builderKey struct {
	kind    Kind
	dialect string
}

// BuilderFactory dispatches predicates to builders by Kind and memoizes one
// builder per kind and dialect. It is safe for concurrent use.
type BuilderFactory struct {
	mu           sync.Mutex
	constructors map[Kind]BuilderConstructor
	builders     map[builderKey]Builder
	logger       *slog.Logger
}

func NewBuilderFactory(opts ...BuilderFactoryOption) *BuilderFactory {
	f := &BuilderFactory{
		constructors: make(map[Kind]BuilderConstructor),
		builders:     make(map[builderKey]Builder),
		logger:       slog.Default(),
	}
	for i := range opts {
		opts[i](f)
	}
	f.Register(KindField, newFieldBuilder)
	f.Register(KindGroup, newGroupBuilder)
	return f
}

// Register installs the constructor for a predicate kind, replacing any
// previous one.
func (f *BuilderFactory) Register(kind Kind, constructor BuilderConstructor) *BuilderFactory {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.constructors[kind] = constructor
	for key := range f.builders {
		if key.kind == kind {
			delete(f.builders, key)
		}
	}
	return f
}

func (f *BuilderFactory) Builder(p Predicate, d dialect.Dialect) (Builder, error) {
	if p == nil {
		return nil, errors.Wrap(ErrUnsupportedPredicate, "nil predicate")
	}
	key := builderKey{p.Kind(), d.Name()}

	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.builders[key]; ok {
		return b, nil
	}
	constructor, ok := f.constructors[key.kind]
	if !ok {
		return nil, errors.Wrapf(ErrUnsupportedPredicate, "no builder registered for %q (%T)", key.kind, p)
	}
	b := constructor(f, d)
	f.builders[key] = b
	return b, nil
}

// SQL renders p with the builder registered for its kind and the dialect of sb.
func (f *BuilderFactory) SQL(sb SqlBuilder, p Predicate, params *Parameters) (string, error) {
	b, err := f.Builder(p, sb.Dialect())
	if err != nil {
		return "", err
	}
	return b.SQL(sb, p, params)
}
