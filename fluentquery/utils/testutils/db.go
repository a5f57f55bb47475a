package testutils

import (
	"context"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/krew-solutions/fluentquery-go/fluentquery/session"
	pgxsession "github.com/krew-solutions/fluentquery-go/fluentquery/session/pgx"
)

// PgConfigured reports whether a PostgreSQL server was configured through DB_HOST.
func PgConfigured() bool {
	_, ok := os.LookupEnv("DB_HOST")
	return ok
}

func NewPgSessionPool() (session.SessionPool, func(), error) {
	var db_username string = getEnv("DB_USERNAME", "devel")
	var db_password string = getEnv("DB_PASSWORD", "devel")
	var db_host string = getEnv("DB_HOST", "localhost")
	var db_port string = getEnv("DB_PORT", "5432")
	var db_basename string = getEnv("DB_DATABASE", "devel_grade")

	connString := "postgres://" + db_username + ":" + db_password + "@" + db_host + ":" + db_port + "/" + db_basename

	pool, err := pgxpool.New(context.Background(), connString)
	if err != nil {
		return nil, nil, err
	}

	return pgxsession.NewSessionPool(pool), pool.Close, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}

	return fallback
}
