package sql

import (
	"context"
	"database/sql"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/krew-solutions/fluentquery-go/fluentquery/session"
)

func NewSession(ctx context.Context, db *sql.DB) *Session {
	return &Session{
		ctx:        ctx,
		db:         db,
		dbExecutor: db,
	}
}

// Session runs statements on a database/sql handle, or on a transaction
// inside Atomic.
type Session struct {
	ctx        context.Context
	db         *sql.DB
	dbExecutor DbExecutor
}

func (s *Session) Context() context.Context {
	return s.ctx
}

func (s *Session) Connection() session.DbConnection {
	return s
}

func (s *Session) Atomic(callback session.SessionCallback) error {
	// TODO: Add support for SavePoint:
	// https://github.com/golang/go/issues/7898#issuecomment-580080390
	if s.db == nil {
		return errors.New("savePoint is not currently supported")
	}
	tx, err := s.db.BeginTx(s.ctx, nil)
	if err != nil {
		return errors.Wrap(err, "unable to start transaction")
	}
	newSession := &Session{
		ctx:        s.ctx,
		dbExecutor: tx,
	}
	err = callback(newSession)
	if err != nil {
		if txErr := tx.Rollback(); txErr != nil {
			return multierror.Append(err, txErr)
		}
		return err
	}
	if txErr := tx.Commit(); txErr != nil {
		return errors.Wrap(txErr, "failed to commit tx")
	}
	return nil
}

func (s *Session) Exec(query string, args ...any) (session.Result, error) {
	return s.dbExecutor.ExecContext(s.ctx, query, args...)
}

func (s *Session) Query(query string, args ...any) (session.Rows, error) {
	rows, err := s.dbExecutor.QueryContext(s.ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Session) QueryRow(query string, args ...any) session.Row {
	return s.dbExecutor.QueryRowContext(s.ctx, query, args...)
}

// DbExecutor is satisfied by both *sql.DB and *sql.Tx.
type DbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type SessionPool struct {
	db *sql.DB
}

func NewSessionPool(db *sql.DB) *SessionPool {
	return &SessionPool{db: db}
}

func (p *SessionPool) Session(ctx context.Context, callback session.SessionPoolCallback) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return callback(NewSession(ctx, p.db))
}
