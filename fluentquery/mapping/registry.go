package mapping

import (
	"fmt"
	"log/slog"
	"reflect"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"
)

// Resolver returns the class map of an entity type.
type Resolver interface {
	Get(entityType reflect.Type) (*ClassMap, error)
}

// Get resolves the class map of T.
func Get[T any](r Resolver) (*ClassMap, error) {
	return r.Get(reflect.TypeFor[T]())
}

type RegistryOption func(*Registry)

// WithAutoMap toggles deriving class maps for types nobody registered.
func WithAutoMap(enabled bool) RegistryOption {
	return func(r *Registry) {
		r.autoMap = enabled
	}
}

// WithPluralization toggles pluralized table names for auto-mapped types.
func WithPluralization(enabled bool) RegistryOption {
	return func(r *Registry) {
		r.pluralize = enabled
	}
}

func WithConfig(cfg *Config) RegistryOption {
	return func(r *Registry) {
		r.config = cfg
	}
}

func WithLogger(logger *slog.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = logger
	}
}

// Registry caches class maps per entity type for the lifetime of the process.
// It is safe for concurrent use; each type is resolved at most once.
type Registry struct {
	cache     sync.Map
	group     singleflight.Group
	mu        sync.RWMutex
	explicit  map[reflect.Type]*ClassMap
	config    *Config
	autoMap   bool
	pluralize bool
	logger    *slog.Logger
}

func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		explicit:  make(map[reflect.Type]*ClassMap),
		autoMap:   true,
		pluralize: true,
		logger:    slog.Default(),
	}
	for i := range opts {
		opts[i](r)
	}
	return r
}

// Register adds explicit class maps. They take precedence over auto-mapping.
func (r *Registry) Register(maps ...*ClassMap) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range maps {
		if err := m.validate(); err != nil {
			return err
		}
		c := m.clone()
		if c.EntityType.Kind() == reflect.Pointer {
			c.EntityType = c.EntityType.Elem()
		}
		if c.EntityName == "" {
			c.EntityName = c.EntityType.Name()
		}
		r.explicit[c.EntityType] = c
		r.cache.Delete(c.EntityType)
	}
	return nil
}

func (r *Registry) Get(entityType reflect.Type) (*ClassMap, error) {
	if entityType == nil {
		return nil, errors.Wrap(ErrMappingNotFound, "nil type")
	}
	if entityType.Kind() == reflect.Pointer {
		entityType = entityType.Elem()
	}
	if m, ok := r.cache.Load(entityType); ok {
		return m.(*ClassMap), nil
	}

	// Type names are not unique (function-local types); the descriptor address is.
	key := fmt.Sprintf("%p", entityType)
	m, err, _ := r.group.Do(key, func() (any, error) {
		if m, ok := r.cache.Load(entityType); ok {
			return m, nil
		}
		m, err := r.resolve(entityType)
		if err != nil {
			return nil, err
		}
		r.cache.Store(entityType, m)
		r.logger.Debug("class map resolved",
			slog.String("entity", m.EntityName),
			slog.String("table", m.TableName),
			slog.Int("properties", len(m.Properties)),
		)
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	return m.(*ClassMap), nil
}

func (r *Registry) resolve(entityType reflect.Type) (*ClassMap, error) {
	r.mu.RLock()
	explicit, ok := r.explicit[entityType]
	r.mu.RUnlock()

	var m *ClassMap
	switch {
	case ok:
		m = explicit.clone()
	case r.autoMap:
		var err error
		if m, err = AutoMap(entityType, r.pluralize); err != nil {
			return nil, err
		}
	default:
		return nil, errors.Wrapf(ErrMappingNotFound, "no class map registered for %s", entityType)
	}

	if err := r.config.apply(m); err != nil {
		return nil, err
	}
	return m, nil
}
