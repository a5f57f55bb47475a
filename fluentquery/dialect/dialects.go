package dialect

import (
	"fmt"
)

const emptyExpression = "1=1"

type sqlServerDialect struct {
	quoting
}

// SqlServer quotes with brackets and binds named @ parameters.
func SqlServer() Dialect {
	return sqlServerDialect{quoting{'[', ']'}}
}

func (d sqlServerDialect) Name() string { return "sqlserver" }
func (d sqlServerDialect) ParameterPrefix() byte { return '@' }
func (d sqlServerDialect) EmptyExpression() string { return emptyExpression }
func (d sqlServerDialect) BindStyle() BindStyle { return NamedBind }

func (d sqlServerDialect) TableName(schemaName, tableName, alias string) string {
	return d.tableName(schemaName, tableName, alias)
}

func (d sqlServerDialect) ColumnName(prefix, columnName, alias string) string {
	return d.columnName(prefix, columnName, alias)
}

func (d sqlServerDialect) IdentitySQL(string) string {
	return "SELECT CAST(SCOPE_IDENTITY() AS BIGINT) AS [Id]"
}

func (d sqlServerDialect) Placeholder(name string, _ int) string {
	return fmt.Sprintf("%c%s", d.ParameterPrefix(), name)
}

type postgresqlDialect struct {
	quoting
}

// Postgresql quotes with double quotes and binds positional $n parameters,
// which both pgx and database/sql drivers accept.
func Postgresql() Dialect {
	return postgresqlDialect{quoting{'"', '"'}}
}

func (d postgresqlDialect) Name() string { return "postgresql" }
func (d postgresqlDialect) ParameterPrefix() byte { return '$' }
func (d postgresqlDialect) EmptyExpression() string { return emptyExpression }
func (d postgresqlDialect) BindStyle() BindStyle { return PositionalBind }

func (d postgresqlDialect) TableName(schemaName, tableName, alias string) string {
	return d.tableName(schemaName, tableName, alias)
}

func (d postgresqlDialect) ColumnName(prefix, columnName, alias string) string {
	return d.columnName(prefix, columnName, alias)
}

func (d postgresqlDialect) IdentitySQL(string) string {
	return "SELECT LASTVAL() AS \"Id\""
}

func (d postgresqlDialect) Placeholder(_ string, position int) string {
	return fmt.Sprintf("%c%d", d.ParameterPrefix(), position)
}

type mysqlDialect struct {
	quoting
}

// Mysql quotes with backticks and binds positional ? parameters.
func Mysql() Dialect {
	return mysqlDialect{quoting{'`', '`'}}
}

func (d mysqlDialect) Name() string { return "mysql" }
func (d mysqlDialect) ParameterPrefix() byte { return '?' }
func (d mysqlDialect) EmptyExpression() string { return emptyExpression }
func (d mysqlDialect) BindStyle() BindStyle { return PositionalBind }

func (d mysqlDialect) TableName(schemaName, tableName, alias string) string {
	return d.tableName(schemaName, tableName, alias)
}

func (d mysqlDialect) ColumnName(prefix, columnName, alias string) string {
	return d.columnName(prefix, columnName, alias)
}

func (d mysqlDialect) IdentitySQL(string) string {
	return "SELECT CONVERT(LAST_INSERT_ID(), SIGNED INTEGER) AS `Id`"
}

func (d mysqlDialect) Placeholder(string, int) string {
	return "?"
}

type sqliteDialect struct {
	quoting
}

// Sqlite quotes with double quotes and binds named @ parameters.
func Sqlite() Dialect {
	return sqliteDialect{quoting{'"', '"'}}
}

func (d sqliteDialect) Name() string { return "sqlite" }
func (d sqliteDialect) ParameterPrefix() byte { return '@' }
func (d sqliteDialect) EmptyExpression() string { return emptyExpression }
func (d sqliteDialect) BindStyle() BindStyle { return NamedBind }

func (d sqliteDialect) TableName(schemaName, tableName, alias string) string {
	return d.tableName(schemaName, tableName, alias)
}

func (d sqliteDialect) ColumnName(prefix, columnName, alias string) string {
	return d.columnName(prefix, columnName, alias)
}

func (d sqliteDialect) IdentitySQL(string) string {
	return "SELECT LAST_INSERT_ROWID() AS \"Id\""
}

func (d sqliteDialect) Placeholder(name string, _ int) string {
	return fmt.Sprintf("%c%s", d.ParameterPrefix(), name)
}
