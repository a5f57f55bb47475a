package predicate

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krew-solutions/fluentquery-go/fluentquery/dialect"
)

type Article struct {
	Id   int64
	Name string
}

type sqlBuilderStub struct {
	dialect dialect.Dialect
}

func (s sqlBuilderStub) Dialect() dialect.Dialect {
	return s.dialect
}

func (s sqlBuilderStub) ColumnName(entityType reflect.Type, propertyName string, _ bool, _ string) (string, error) {
	if propertyName == "Missing" {
		return "", errors.New("unknown column")
	}
	table := s.dialect.TableName("", entityType.Name()+"s", "")
	return s.dialect.ColumnName(table, propertyName, ""), nil
}

func render(t *testing.T, d dialect.Dialect, p Predicate) (string, *Parameters, error) {
	t.Helper()
	params := NewParameters()
	sql, err := NewBuilderFactory().SQL(sqlBuilderStub{d}, p, params)
	return sql, params, err
}

func TestFieldBuilder(t *testing.T) {
	d := dialect.SqlServer()

	t.Run("scalar", func(t *testing.T) {
		p, err := Field[Article]("Id", Eq, int64(1), false)
		require.NoError(t, err)
		sql, params, err := render(t, d, p)
		require.NoError(t, err)
		assert.Equal(t, "([Articles].[Id] = @Id_0)", sql)
		assert.Equal(t, []Parameter{{"Id_0", int64(1)}}, params.All())
	})

	t.Run("operators", func(t *testing.T) {
		cases := []struct {
			op       Operator
			negate   bool
			expected string
		}{
			{Eq, true, "<>"},
			{Gt, false, ">"},
			{Gt, true, "<="},
			{Ge, false, ">="},
			{Ge, true, "<"},
			{Lt, false, "<"},
			{Lt, true, ">="},
			{Le, false, "<="},
			{Le, true, ">"},
			{Like, false, "LIKE"},
			{Like, true, "NOT LIKE"},
		}
		for _, c := range cases {
			t.Run(fmt.Sprintf("%s negate=%v", c.op, c.negate), func(t *testing.T) {
				p, err := Field[Article]("Name", c.op, "x", c.negate)
				require.NoError(t, err)
				sql, _, err := render(t, d, p)
				require.NoError(t, err)
				assert.Equal(t, fmt.Sprintf("([Articles].[Name] %s @Name_0)", c.expected), sql)
			})
		}
	})

	t.Run("null", func(t *testing.T) {
		p, err := Field[Article]("Name", Like, nil, false)
		require.NoError(t, err)
		sql, params, err := render(t, d, p)
		require.NoError(t, err)
		assert.Equal(t, "([Articles].[Name] IS NULL)", sql)
		assert.Zero(t, params.Len())

		var name *string
		p, err = Field[Article]("Name", Eq, name, true)
		require.NoError(t, err)
		sql, _, err = render(t, d, p)
		require.NoError(t, err)
		assert.Equal(t, "([Articles].[Name] IS NOT NULL)", sql)
	})

	t.Run("pointer is dereferenced", func(t *testing.T) {
		name := "foo"
		p, err := Field[Article]("Name", Eq, &name, false)
		require.NoError(t, err)
		_, params, err := render(t, d, p)
		require.NoError(t, err)
		v, ok := params.Value("Name_0")
		require.True(t, ok)
		assert.Equal(t, "foo", v)
	})

	t.Run("sequence", func(t *testing.T) {
		p, err := Field[Article]("Id", Eq, []int64{3, 1, 2}, false)
		require.NoError(t, err)
		sql, params, err := render(t, d, p)
		require.NoError(t, err)
		assert.Equal(t, "([Articles].[Id] IN (@Id_0, @Id_1, @Id_2))", sql)
		assert.Equal(t, []Parameter{{"Id_0", int64(3)}, {"Id_1", int64(1)}, {"Id_2", int64(2)}}, params.All())
	})

	t.Run("negated sequence", func(t *testing.T) {
		p, err := Field[Article]("Id", Eq, [2]int{1, 2}, true)
		require.NoError(t, err)
		sql, _, err := render(t, d, p)
		require.NoError(t, err)
		assert.Equal(t, "([Articles].[Id] NOT IN (@Id_0, @Id_1))", sql)
	})

	t.Run("empty sequence", func(t *testing.T) {
		p := &FieldPredicate{EntityType: reflect.TypeFor[Article](), PropertyName: "Id", Value: []int{}}
		sql, _, err := render(t, d, p)
		require.NoError(t, err)
		assert.Equal(t, "(1=0)", sql)
	})

	t.Run("sequence with other operator", func(t *testing.T) {
		_, err := Field[Article]("Id", Gt, []int64{1, 2, 3}, false)
		assert.True(t, errors.Is(err, ErrInvalidOperatorForSequence))

		p := &FieldPredicate{EntityType: reflect.TypeFor[Article](), PropertyName: "Id", Operator: Gt, Value: []int64{1, 2, 3}}
		_, _, err = render(t, d, p)
		assert.True(t, errors.Is(err, ErrInvalidOperatorForSequence))
	})

	t.Run("bytes are scalar", func(t *testing.T) {
		p, err := Field[Article]("Name", Gt, []byte("abc"), false)
		require.NoError(t, err)
		sql, _, err := render(t, d, p)
		require.NoError(t, err)
		assert.Equal(t, "([Articles].[Name] > @Name_0)", sql)
	})

	t.Run("postgresql placeholders", func(t *testing.T) {
		p, err := Field[Article]("Id", Eq, []int{7, 8}, false)
		require.NoError(t, err)
		sql, _, err := render(t, dialect.Postgresql(), p)
		require.NoError(t, err)
		assert.Equal(t, `("Articles"."Id" IN ($1, $2))`, sql)
	})

	t.Run("unknown column", func(t *testing.T) {
		p, err := Field[Article]("Missing", Eq, 1, false)
		require.NoError(t, err)
		_, _, err = render(t, d, p)
		assert.Error(t, err)
	})
}

func TestGroupBuilder(t *testing.T) {
	d := dialect.SqlServer()
	id, _ := Field[Article]("Id", Eq, 1, false)
	name, _ := Field[Article]("Name", Like, "a%", false)

	t.Run("and", func(t *testing.T) {
		sql, params, err := render(t, d, And(id, name))
		require.NoError(t, err)
		assert.Equal(t, "(([Articles].[Id] = @Id_0) AND ([Articles].[Name] LIKE @Name_1))", sql)
		assert.Equal(t, 2, params.Len())
	})

	t.Run("nested or", func(t *testing.T) {
		sql, _, err := render(t, d, And(Or(id, name), id))
		require.NoError(t, err)
		assert.Equal(t,
			"((([Articles].[Id] = @Id_0) OR ([Articles].[Name] LIKE @Name_1)) AND ([Articles].[Id] = @Id_2))",
			sql,
		)
	})

	t.Run("empty group", func(t *testing.T) {
		sql, _, err := render(t, d, And())
		require.NoError(t, err)
		assert.Equal(t, "1=1", sql)
	})

	t.Run("nested empty group", func(t *testing.T) {
		sql, _, err := render(t, d, Or(And(), id))
		require.NoError(t, err)
		assert.Equal(t, "(1=1 OR ([Articles].[Id] = @Id_0))", sql)
	})

	t.Run("child error aborts", func(t *testing.T) {
		missing, _ := Field[Article]("Missing", Eq, 1, false)
		_, _, err := render(t, d, And(id, missing))
		assert.Error(t, err)
	})
}

type rawPredicate struct {
	sql string
}

func (rawPredicate) Kind() Kind {
	return "raw"
}

type rawBuilder struct{}

func (rawBuilder) SQL(_ SqlBuilder, p Predicate, _ *Parameters) (string, error) {
	return p.(rawPredicate).sql, nil
}

func TestBuilderFactory(t *testing.T) {
	t.Run("unsupported predicate", func(t *testing.T) {
		_, err := NewBuilderFactory().Builder(rawPredicate{}, dialect.SqlServer())
		assert.True(t, errors.Is(err, ErrUnsupportedPredicate))
	})

	t.Run("registered kind", func(t *testing.T) {
		f := NewBuilderFactory().Register("raw", func(*BuilderFactory, dialect.Dialect) Builder {
			return rawBuilder{}
		})
		id, _ := Field[Article]("Id", Eq, 1, false)
		sql, err := f.SQL(sqlBuilderStub{dialect.SqlServer()}, And(rawPredicate{"(x = 1)"}, id), NewParameters())
		require.NoError(t, err)
		assert.Equal(t, "((x = 1) AND ([Articles].[Id] = @Id_0))", sql)
	})

	t.Run("memoizes per dialect", func(t *testing.T) {
		f := NewBuilderFactory()
		id, _ := Field[Article]("Id", Eq, 1, false)
		b1, err := f.Builder(id, dialect.SqlServer())
		require.NoError(t, err)
		b2, err := f.Builder(id, dialect.SqlServer())
		require.NoError(t, err)
		b3, err := f.Builder(id, dialect.Postgresql())
		require.NoError(t, err)
		assert.Equal(t, b1, b2)
		assert.NotEqual(t, b1, b3)
	})
}

func TestParameters(t *testing.T) {
	params := NewParameters()
	assert.Equal(t, "Id_0", params.Add("Id", 1))
	assert.Equal(t, "Id_1", params.Add("Id", 2))
	assert.Equal(t, "Name_2", params.Add("Name", "x"))
	assert.Equal(t, 3, params.Len())
	_, ok := params.Value("Name_0")
	assert.False(t, ok)
}

func TestParseOperator(t *testing.T) {
	op, err := ParseOperator("LIKE")
	require.NoError(t, err)
	assert.Equal(t, Like, op)

	_, err = ParseOperator("between")
	assert.True(t, errors.Is(err, ErrUnknownOperator))
}
