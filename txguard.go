package smartdb

import "context"

// TransactionGuard is a scoped transaction over a borrowed Connection. It
// issues BEGIN on construction and, unless explicitly committed or rolled
// back, issues ROLLBACK when Close is called — the Go stand-in for the
// move-only, auto-rollback-on-scope-exit guard: callers are expected to
// `defer guard.Close(ctx)` immediately after a successful Begin.
//
// At most one TransactionGuard may be active per Connection at a time;
// violating that is a caller bug that corrupts transactional state, not
// something the guard detects.
type TransactionGuard struct {
	conn   Connection
	active bool
}

// Begin issues BEGIN on conn and returns an active guard. On BEGIN failure
// the guard is not constructed and the original error is propagated.
func Begin(ctx context.Context, conn Connection) Result[*TransactionGuard] {
	res := conn.Begin(ctx)
	if !res.Ok() {
		return Failure[*TransactionGuard](res.Err())
	}
	return Success(&TransactionGuard{conn: conn, active: true})
}

// Active reports whether the guard still owns an un-terminated transaction.
func (g *TransactionGuard) Active() bool { return g.active }

// Commit issues COMMIT and clears active on success. Calling Commit on an
// inactive guard fails with kind=Transaction.
func (g *TransactionGuard) Commit(ctx context.Context) Result[struct{}] {
	if !g.active {
		return FailureKind[struct{}]("Transaction is not active", 0, KindTransaction, false)
	}
	res := g.conn.Commit(ctx)
	if res.Ok() {
		g.active = false
	}
	return res
}

// Rollback issues ROLLBACK and clears active on success. Calling Rollback
// on an inactive guard fails with kind=Transaction.
func (g *TransactionGuard) Rollback(ctx context.Context) Result[struct{}] {
	if !g.active {
		return FailureKind[struct{}]("Transaction is not active", 0, KindTransaction, false)
	}
	res := g.conn.Rollback(ctx)
	if res.Ok() {
		g.active = false
	}
	return res
}

// Close rolls back the transaction if it is still active, swallowing any
// rollback failure since there is no further channel to signal it during
// unwinding. Safe to call multiple times.
func (g *TransactionGuard) Close(ctx context.Context) {
	if !g.active {
		return
	}
	g.conn.Rollback(ctx)
	g.active = false
}
