package filtering

import (
	"math"
	"reflect"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"syreclabs.com/go/faker"

	"github.com/krew-solutions/fluentquery-go/fluentquery/predicate"
)

type Article struct {
	Id            int64
	Name          string
	ArticleTypeId int64
}

type ArticleFilter struct {
	Id   int64
	Name string
	Ids  []int64
}

type TaggedFilter struct {
	Id       int64   `filter:"Id"`
	Name     *string `filter:"Name,op=like"`
	Excluded int64   `filter:"ArticleTypeId,not"`
	TypeIds  []int64 `filter:"ArticleTypeId"`
	Page     int
}

func articleFilterProvider() MetadataProvider {
	return Provider[ArticleFilter](
		FilterMetadata[ArticleFilter, Article]{
			Property: "Id",
			Value:    func(f ArticleFilter) any { return f.Id },
			Default:  0,
		},
		FilterMetadata[ArticleFilter, Article]{
			Property: "Name",
			Operator: predicate.Like,
			Value:    func(f ArticleFilter) any { return f.Name },
		},
	)
}

func fieldsOf(t *testing.T, p predicate.Predicate) []*predicate.FieldPredicate {
	t.Helper()
	g, ok := p.(*predicate.Group)
	require.True(t, ok, "expected a group, got %T", p)
	assert.Equal(t, predicate.GroupAnd, g.Operator)
	fields := make([]*predicate.FieldPredicate, len(g.Predicates))
	for i := range g.Predicates {
		fields[i] = g.Predicates[i].(*predicate.FieldPredicate)
	}
	return fields
}

func TestGetPredicate(t *testing.T) {
	factory, err := NewPredicateFactory(articleFilterProvider())
	require.NoError(t, err)

	t.Run("nil filter", func(t *testing.T) {
		p, err := factory.GetPredicate(nil)
		require.NoError(t, err)
		assert.Nil(t, p)

		var f *ArticleFilter
		p, err = factory.GetPredicate(f)
		require.NoError(t, err)
		assert.Nil(t, p)
	})

	t.Run("unregistered filter type", func(t *testing.T) {
		p, err := factory.GetPredicate(struct{ Id int }{1})
		require.NoError(t, err)
		assert.Nil(t, p)
	})

	t.Run("defaults only", func(t *testing.T) {
		p, err := factory.GetPredicate(ArticleFilter{})
		require.NoError(t, err)
		assert.Nil(t, p)
	})

	t.Run("single value", func(t *testing.T) {
		id := int64(faker.RandomInt(1, 1000))
		p, err := factory.GetPredicate(ArticleFilter{Id: id})
		require.NoError(t, err)
		fields := fieldsOf(t, p)
		require.Len(t, fields, 1)
		assert.Equal(t, reflect.TypeFor[Article](), fields[0].EntityType)
		assert.Equal(t, "Id", fields[0].PropertyName)
		assert.Equal(t, predicate.Eq, fields[0].Operator)
		assert.Equal(t, id, fields[0].Value)
	})

	t.Run("binding order", func(t *testing.T) {
		name := faker.Lorem().Word()
		p, err := factory.GetPredicate(&ArticleFilter{Id: 5, Name: name})
		require.NoError(t, err)
		fields := fieldsOf(t, p)
		require.Len(t, fields, 2)
		assert.Equal(t, "Id", fields[0].PropertyName)
		assert.Equal(t, "Name", fields[1].PropertyName)
		assert.Equal(t, predicate.Like, fields[1].Operator)
		assert.Equal(t, name, fields[1].Value)
	})

	t.Run("providers of one filter type are concatenated", func(t *testing.T) {
		f, err := NewPredicateFactory(
			articleFilterProvider(),
			Provider[ArticleFilter](),
			Provider[ArticleFilter](FilterMetadata[ArticleFilter, Article]{
				Property: "Id",
				Value:    func(f ArticleFilter) any { return f.Ids },
			}),
		)
		require.NoError(t, err)

		p, err := f.GetPredicate(ArticleFilter{Ids: []int64{1, 2, 3}})
		require.NoError(t, err)
		fields := fieldsOf(t, p)
		require.Len(t, fields, 1)
		assert.Equal(t, []int64{1, 2, 3}, fields[0].Value)

		p, err = f.GetPredicate(ArticleFilter{Ids: []int64{}})
		require.NoError(t, err)
		assert.Nil(t, p)
	})

	t.Run("sentinel default lets zero through", func(t *testing.T) {
		f, err := NewPredicateFactory(Provider[ArticleFilter](FilterMetadata[ArticleFilter, Article]{
			Property: "ArticleTypeId",
			Value:    func(f ArticleFilter) any { return f.Id },
			Default:  int64(-1),
		}))
		require.NoError(t, err)

		p, err := f.GetPredicate(ArticleFilter{})
		require.NoError(t, err)
		fields := fieldsOf(t, p)
		require.Len(t, fields, 1)
		assert.Equal(t, int64(0), fields[0].Value)

		p, err = f.GetPredicate(ArticleFilter{Id: -1})
		require.NoError(t, err)
		assert.Nil(t, p)
	})

	t.Run("mismatched binding", func(t *testing.T) {
		_, err := NewPredicateFactory(Provider[Article](FilterMetadata[ArticleFilter, Article]{
			Property: "Id",
			Value:    func(f ArticleFilter) any { return f.Id },
		}))
		assert.True(t, errors.Is(err, ErrFilterTypeMismatch))
	})

	t.Run("sequence with other operator", func(t *testing.T) {
		f, err := NewPredicateFactory(Provider[ArticleFilter](FilterMetadata[ArticleFilter, Article]{
			Property: "Id",
			Operator: predicate.Gt,
			Value:    func(f ArticleFilter) any { return f.Ids },
		}))
		require.NoError(t, err)
		_, err = f.GetPredicate(ArticleFilter{Ids: []int64{1}})
		assert.True(t, errors.Is(err, predicate.ErrInvalidOperatorForSequence))
	})
}

func TestIsUnset(t *testing.T) {
	t.Run("numeric defaults compare exactly", func(t *testing.T) {
		assert.True(t, isUnset(int64(0), 0))
		assert.True(t, isUnset(uint8(3), 3.0))
		assert.True(t, isUnset(float32(0.5), 0.5))
		assert.False(t, isUnset(int64(0), 0.5))
		assert.False(t, isUnset(uint64(math.MaxUint64), -1))
		assert.False(t, isUnset(int64(1<<53+1), float64(1<<53)))
	})

	t.Run("nil default", func(t *testing.T) {
		assert.True(t, isUnset(0, nil))
		assert.True(t, isUnset("", nil))
		assert.False(t, isUnset("a", nil))
	})

	t.Run("other types", func(t *testing.T) {
		assert.True(t, isUnset("none", "none"))
		assert.False(t, isUnset("1", 1))
	})
}

func TestFromTags(t *testing.T) {
	provider, err := FromTags[TaggedFilter, Article]()
	require.NoError(t, err)
	assert.Len(t, provider.Metadata(), 4)

	factory, err := NewPredicateFactory(provider)
	require.NoError(t, err)

	t.Run("zero values are defaults", func(t *testing.T) {
		p, err := factory.GetPredicate(TaggedFilter{Page: 3})
		require.NoError(t, err)
		assert.Nil(t, p)
	})

	t.Run("options", func(t *testing.T) {
		name := faker.Lorem().Word() + "%"
		p, err := factory.GetPredicate(TaggedFilter{Name: &name, Excluded: 7})
		require.NoError(t, err)
		fields := fieldsOf(t, p)
		require.Len(t, fields, 2)

		assert.Equal(t, "Name", fields[0].PropertyName)
		assert.Equal(t, predicate.Like, fields[0].Operator)
		assert.Equal(t, &name, fields[0].Value)

		assert.Equal(t, "ArticleTypeId", fields[1].PropertyName)
		assert.True(t, fields[1].Negate)
		assert.Equal(t, int64(7), fields[1].Value)
	})

	t.Run("pointer to zero is set", func(t *testing.T) {
		empty := ""
		p, err := factory.GetPredicate(TaggedFilter{Name: &empty})
		require.NoError(t, err)
		require.Len(t, fieldsOf(t, p), 1)
	})

	t.Run("unknown property", func(t *testing.T) {
		type badFilter struct {
			Title string `filter:"Title"`
		}
		_, err := FromTags[badFilter, Article]()
		assert.True(t, errors.Is(err, ErrUnknownProperty))
	})

	t.Run("sequence with other operator", func(t *testing.T) {
		type badFilter struct {
			Ids []int64 `filter:"Id,op=gt"`
		}
		_, err := FromTags[badFilter, Article]()
		assert.True(t, errors.Is(err, predicate.ErrInvalidOperatorForSequence))
	})

	t.Run("unknown option", func(t *testing.T) {
		type badFilter struct {
			Id int64 `filter:"Id,between"`
		}
		_, err := FromTags[badFilter, Article]()
		assert.Error(t, err)
	})
}
