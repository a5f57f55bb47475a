package dialect

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// BindStyle tells the executor how rendered parameters are passed to the driver.
type BindStyle int

const (
	// NamedBind passes every parameter as sql.Named(name, value)
	NamedBind BindStyle = iota
	// PositionalBind passes parameter values in the order they were bound
	PositionalBind
)

// Dialect renders identifiers and parameter placeholders for one database product.
type Dialect interface {
	Name() string
	ParameterPrefix() byte
	// EmptyExpression is the always-true marker rendered for predicate groups without SQL
	EmptyExpression() string
	TableName(schemaName, tableName, alias string) string
	// ColumnName renders prefix.column; prefix is an already rendered table name
	ColumnName(prefix, columnName, alias string) string
	IdentitySQL(tableName string) string
	// Placeholder renders the parameter reference for the position-th (1-based) bound parameter
	Placeholder(name string, position int) string
	BindStyle() BindStyle
}

var ErrUnknownDialect = errors.New("dialect: unknown dialect")

// ByName returns the dialect registered under the driver-like name.
func ByName(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case "sqlserver", "mssql":
		return SqlServer(), nil
	case "postgres", "postgresql", "pgx":
		return Postgresql(), nil
	case "mysql":
		return Mysql(), nil
	case "sqlite", "sqlite3":
		return Sqlite(), nil
	default:
		return nil, errors.Wrapf(ErrUnknownDialect, "%q", name)
	}
}

// quoting carries the identifier rendering shared by all dialects.
type quoting struct {
	open  byte
	close byte
}

func (q quoting) quote(value string) string {
	if value == "" || q.isQuoted(value) {
		return value
	}
	return fmt.Sprintf("%c%s%c", q.open, strings.TrimSpace(value), q.close)
}

func (q quoting) isQuoted(value string) bool {
	value = strings.TrimSpace(value)
	if len(value) < 2 {
		return false
	}
	return value[0] == q.open && value[len(value)-1] == q.close
}

func (q quoting) tableName(schemaName, tableName, alias string) string {
	var b strings.Builder
	if schemaName != "" {
		b.WriteString(q.quote(schemaName))
		b.WriteByte('.')
	}
	b.WriteString(q.quote(tableName))
	if alias != "" {
		b.WriteString(" AS ")
		b.WriteString(q.quote(alias))
	}
	return b.String()
}

func (q quoting) columnName(prefix, columnName, alias string) string {
	var b strings.Builder
	if prefix != "" {
		b.WriteString(prefix)
		b.WriteByte('.')
	}
	b.WriteString(q.quote(columnName))
	if alias != "" {
		b.WriteString(" AS ")
		b.WriteString(q.quote(alias))
	}
	return b.String()
}
