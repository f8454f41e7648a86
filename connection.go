package smartdb

import "context"

// Connection is a capability over a single physical database link, modeled
// as a state machine over {Closed, Open, Closing}. It is exclusively owned
// by one holder at a time and is not safe for concurrent use by multiple
// goroutines once acquired.
type Connection interface {
	// Open transitions Closed->Open. Idempotent if already Open.
	Open(ctx context.Context) Result[struct{}]

	// Close transitions Open->Closed. Idempotent and infallible.
	Close() error

	// IsOpen is a pure query of the current state.
	IsOpen() bool

	// Query executes sql and returns a cursor positioned before the first
	// row. Valid only when Open.
	Query(ctx context.Context, sql string) Result[ResultSet]

	// Execute runs sql with no parameters and returns the affected row
	// count. Valid only when Open.
	Execute(ctx context.Context, sql string) Result[int64]

	// ExecuteParams runs sql with positional parameters bound per the
	// driver-agnostic binding rules. A params length mismatch against the
	// backend's reported placeholder count fails with InvalidArgument
	// without executing.
	ExecuteParams(ctx context.Context, sql string, params []Value) Result[int64]

	// Begin, Commit and Rollback advance the transactional state by one
	// step. Valid only when Open.
	Begin(ctx context.Context) Result[struct{}]
	Commit(ctx context.Context) Result[struct{}]
	Rollback(ctx context.Context) Result[struct{}]

	// LastError returns the most recent operation's failure message, or
	// the empty string if the last operation succeeded.
	LastError() string
}
