// Package sqlconn implements the smartdb.Connection capability once, on
// top of database/sql, so each wire driver (sqlite, mysql, postgres) only
// has to know how to build a DSN and register its database/sql driver
// name. This mirrors the teacher's runtime/client.PrismaClient wrapping a
// single *sql.DB/*sql.Tx pair behind a provider-neutral surface.
package sqlconn

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	smartdb "github.com/smartdb-go/smartdb"
)

var errNotOpen = errors.New("connection is not open")

// execer is satisfied by both *sql.DB and *sql.Tx, letting Conn redirect
// every statement through whichever is currently active.
type execer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

// Conn is a smartdb.Connection backed by database/sql. It is not safe for
// concurrent use, matching the spec's single-owner Connection contract.
type Conn struct {
	sqlDriverName string
	dsn           string
	db            *sql.DB
	tx            *sql.Tx
	lastErr       string
}

// New builds a Closed connection. sqlDriverName is the name passed to
// sql.Open (e.g. "sqlite", "mysql", "postgres"); dsn is the driver-specific
// connection string.
func New(sqlDriverName, dsn string) *Conn {
	return &Conn{sqlDriverName: sqlDriverName, dsn: dsn}
}

func (c *Conn) fail(kind smartdb.ErrorKind, err error) *smartdb.DbError {
	c.lastErr = err.Error()
	return smartdb.NewError(c.lastErr, 0, kind, false)
}

// Open establishes the underlying database/sql connection. Idempotent.
func (c *Conn) Open(ctx context.Context) smartdb.Result[struct{}] {
	if c.db != nil {
		return smartdb.Success(struct{}{})
	}
	db, err := sql.Open(c.sqlDriverName, c.dsn)
	if err != nil {
		return smartdb.Failure[struct{}](c.fail(smartdb.KindConfiguration, err))
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return smartdb.Failure[struct{}](c.fail(smartdb.KindConnection, err))
	}
	c.db = db
	c.lastErr = ""
	return smartdb.Success(struct{}{})
}

// Close tears down the connection, rolling back any open transaction.
// Idempotent.
func (c *Conn) Close() error {
	if c.tx != nil {
		c.tx.Rollback()
		c.tx = nil
	}
	if c.db != nil {
		err := c.db.Close()
		c.db = nil
		return err
	}
	return nil
}

// IsOpen reports whether the connection currently holds a live *sql.DB.
func (c *Conn) IsOpen() bool { return c.db != nil }

func (c *Conn) execer() execer {
	if c.tx != nil {
		return c.tx
	}
	return c.db
}

// Query runs sql and returns a cursor positioned before the first row.
func (c *Conn) Query(ctx context.Context, query string) smartdb.Result[smartdb.ResultSet] {
	if c.db == nil {
		return smartdb.Failure[smartdb.ResultSet](c.fail(smartdb.KindConnection, errNotOpen))
	}
	rows, err := c.execer().QueryContext(ctx, query)
	if err != nil {
		return smartdb.Failure[smartdb.ResultSet](c.fail(smartdb.KindQuery, err))
	}
	rs, err := newRows(rows)
	if err != nil {
		rows.Close()
		return smartdb.Failure[smartdb.ResultSet](c.fail(smartdb.KindQuery, err))
	}
	c.lastErr = ""
	return smartdb.Success[smartdb.ResultSet](rs)
}

// Execute runs sql with no parameters, returning the affected row count.
func (c *Conn) Execute(ctx context.Context, query string) smartdb.Result[int64] {
	if c.db == nil {
		return smartdb.Failure[int64](c.fail(smartdb.KindConnection, errNotOpen))
	}
	res, err := c.execer().ExecContext(ctx, query)
	if err != nil {
		return smartdb.Failure[int64](c.fail(smartdb.KindExecution, err))
	}
	n, _ := res.RowsAffected()
	c.lastErr = ""
	return smartdb.Success(n)
}

// ExecuteParams runs sql with positional bound parameters, applying the
// driver-agnostic binding rules from Value to a driver/sql value.
func (c *Conn) ExecuteParams(ctx context.Context, query string, params []smartdb.Value) smartdb.Result[int64] {
	if c.db == nil {
		return smartdb.Failure[int64](c.fail(smartdb.KindConnection, errNotOpen))
	}

	args := make([]any, len(params))
	for i, p := range params {
		v, err := toDriverValue(p)
		if err != nil {
			return smartdb.Failure[int64](c.fail(smartdb.KindInvalidArgument, fmt.Errorf("parameter %d: %v", i, err)))
		}
		args[i] = v
	}

	stmt, err := c.execer().PrepareContext(ctx, query)
	if err != nil {
		return smartdb.Failure[int64](c.fail(smartdb.KindExecution, err))
	}
	defer stmt.Close()

	res, err := stmt.ExecContext(ctx, args...)
	if err != nil {
		if isParamCountMismatch(err) {
			msg := fmt.Sprintf("parameter count mismatch: %v", err)
			c.lastErr = msg
			return smartdb.FailureKind[int64](msg, 0, smartdb.KindInvalidArgument, false)
		}
		return smartdb.Failure[int64](c.fail(smartdb.KindExecution, err))
	}
	n, _ := res.RowsAffected()
	c.lastErr = ""
	return smartdb.Success(n)
}

// isParamCountMismatch recognizes database/sql's own count check
// ("sql: expected N arguments") and, for drivers that report no placeholder
// count to database/sql (modernc.org/sqlite), the driver's bind error for a
// placeholder left without an argument.
func isParamCountMismatch(err error) bool {
	msg := err.Error()
	if strings.Contains(msg, "sql: expected") && strings.Contains(msg, "argument") {
		return true
	}
	return strings.Contains(msg, "missing argument with index")
}

func toDriverValue(v smartdb.Value) (any, error) {
	if v.IsNull() {
		return nil, nil
	}
	if i, ok := v.Int64(); ok {
		return i, nil
	}
	if b, ok := v.Bool(); ok {
		if b {
			return int64(1), nil
		}
		return int64(0), nil
	}
	if f, ok := v.Float64(); ok {
		return f, nil
	}
	if s, ok := v.String(); ok {
		return s, nil
	}
	if by, ok := v.Bytes(); ok {
		return by, nil
	}
	return nil, fmt.Errorf("unsupported value discriminant")
}

// Begin starts a transaction. Fails with kind=Transaction if one is
// already active.
func (c *Conn) Begin(ctx context.Context) smartdb.Result[struct{}] {
	if c.db == nil {
		return smartdb.Failure[struct{}](c.fail(smartdb.KindConnection, errNotOpen))
	}
	if c.tx != nil {
		return smartdb.Failure[struct{}](c.fail(smartdb.KindTransaction, errors.New("a transaction is already active")))
	}
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return smartdb.Failure[struct{}](c.fail(smartdb.KindTransaction, err))
	}
	c.tx = tx
	c.lastErr = ""
	return smartdb.Success(struct{}{})
}

// Commit commits the active transaction.
func (c *Conn) Commit(ctx context.Context) smartdb.Result[struct{}] {
	if c.tx == nil {
		return smartdb.Failure[struct{}](c.fail(smartdb.KindTransaction, errors.New("no active transaction")))
	}
	err := c.tx.Commit()
	c.tx = nil
	if err != nil {
		return smartdb.Failure[struct{}](c.fail(smartdb.KindTransaction, err))
	}
	c.lastErr = ""
	return smartdb.Success(struct{}{})
}

// Rollback rolls back the active transaction.
func (c *Conn) Rollback(ctx context.Context) smartdb.Result[struct{}] {
	if c.tx == nil {
		return smartdb.Failure[struct{}](c.fail(smartdb.KindTransaction, errors.New("no active transaction")))
	}
	err := c.tx.Rollback()
	c.tx = nil
	if err != nil {
		return smartdb.Failure[struct{}](c.fail(smartdb.KindTransaction, err))
	}
	c.lastErr = ""
	return smartdb.Success(struct{}{})
}

// LastError returns the most recent failure message, or "" if the last
// operation succeeded.
func (c *Conn) LastError() string { return c.lastErr }
