package smartdb

import (
	"context"
	"testing"
)

type countingConn struct {
	begins, commits, rollbacks int
	failBegin                  bool
}

func (c *countingConn) Open(ctx context.Context) Result[struct{}] { return Success(struct{}{}) }
func (c *countingConn) Close() error                              { return nil }
func (c *countingConn) IsOpen() bool                               { return true }
func (c *countingConn) Query(ctx context.Context, sql string) Result[ResultSet] {
	return FailureMsg[ResultSet]("unused", 0)
}
func (c *countingConn) Execute(ctx context.Context, sql string) Result[int64] {
	return Success[int64](0)
}
func (c *countingConn) ExecuteParams(ctx context.Context, sql string, params []Value) Result[int64] {
	return Success[int64](0)
}
func (c *countingConn) Begin(ctx context.Context) Result[struct{}] {
	c.begins++
	if c.failBegin {
		return FailureKind[struct{}]("begin failed", 0, KindTransaction, false)
	}
	return Success(struct{}{})
}
func (c *countingConn) Commit(ctx context.Context) Result[struct{}] {
	c.commits++
	return Success(struct{}{})
}
func (c *countingConn) Rollback(ctx context.Context) Result[struct{}] {
	c.rollbacks++
	return Success(struct{}{})
}
func (c *countingConn) LastError() string { return "" }

func TestTransactionGuardRollbackOnDrop(t *testing.T) {
	conn := &countingConn{}
	ctx := context.Background()

	res := Begin(ctx, conn)
	if !res.Ok() {
		t.Fatalf("Begin failed: %v", res.Err())
	}
	guard := res.Value()
	guard.Close(ctx)

	if conn.begins != 1 || conn.commits != 0 || conn.rollbacks != 1 {
		t.Errorf("got begins=%d commits=%d rollbacks=%d, want 1/0/1", conn.begins, conn.commits, conn.rollbacks)
	}
}

func TestTransactionGuardCommit(t *testing.T) {
	conn := &countingConn{}
	ctx := context.Background()

	res := Begin(ctx, conn)
	if !res.Ok() {
		t.Fatalf("Begin failed: %v", res.Err())
	}
	guard := res.Value()
	if commitRes := guard.Commit(ctx); !commitRes.Ok() {
		t.Fatalf("Commit failed: %v", commitRes.Err())
	}
	guard.Close(ctx) // no-op, already inactive

	if conn.begins != 1 || conn.commits != 1 || conn.rollbacks != 0 {
		t.Errorf("got begins=%d commits=%d rollbacks=%d, want 1/1/0", conn.begins, conn.commits, conn.rollbacks)
	}
}

func TestTransactionGuardBeginFailure(t *testing.T) {
	conn := &countingConn{failBegin: true}
	ctx := context.Background()

	res := Begin(ctx, conn)
	if res.Ok() {
		t.Fatal("Begin should have failed")
	}
	if conn.begins != 1 || conn.commits != 0 || conn.rollbacks != 0 {
		t.Errorf("got begins=%d commits=%d rollbacks=%d, want 1/0/0", conn.begins, conn.commits, conn.rollbacks)
	}
}

func TestTransactionGuardInactiveOperations(t *testing.T) {
	conn := &countingConn{}
	ctx := context.Background()
	guard := Begin(ctx, conn).Value()
	guard.Commit(ctx)

	if res := guard.Commit(ctx); res.Ok() || res.Err().Kind != KindTransaction {
		t.Errorf("commit on inactive guard should fail with kind=Transaction, got %+v", res)
	}
	if res := guard.Rollback(ctx); res.Ok() || res.Err().Kind != KindTransaction {
		t.Errorf("rollback on inactive guard should fail with kind=Transaction, got %+v", res)
	}
}
