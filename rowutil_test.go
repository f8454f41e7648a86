package smartdb

import (
	"context"
	"testing"
)

type fixedRows struct {
	cols []string
	rows [][]Value
	pos  int
}

func (r *fixedRows) Next() bool {
	if r.pos >= len(r.rows) {
		return false
	}
	r.pos++
	return true
}
func (r *fixedRows) Get(index int) Value {
	if r.pos == 0 || index < 0 || index >= len(r.rows[r.pos-1]) {
		return Null
	}
	return r.rows[r.pos-1][index]
}
func (r *fixedRows) GetByName(name string) Value {
	for i, c := range r.cols {
		if c == name {
			return r.Get(i)
		}
	}
	return Null
}
func (r *fixedRows) ColumnNames() []string { return r.cols }
func (r *fixedRows) Close() error          { return nil }

type queryStubConn struct {
	rs  ResultSet
	err *DbError
}

func (c *queryStubConn) Open(ctx context.Context) Result[struct{}] { return Success(struct{}{}) }
func (c *queryStubConn) Close() error                               { return nil }
func (c *queryStubConn) IsOpen() bool                                { return true }
func (c *queryStubConn) Query(ctx context.Context, sql string) Result[ResultSet] {
	if c.err != nil {
		return Failure[ResultSet](c.err)
	}
	return Success[ResultSet](c.rs)
}
func (c *queryStubConn) Execute(ctx context.Context, sql string) Result[int64] {
	return Success[int64](0)
}
func (c *queryStubConn) ExecuteParams(ctx context.Context, sql string, params []Value) Result[int64] {
	return Success[int64](0)
}
func (c *queryStubConn) Begin(ctx context.Context) Result[struct{}]    { return Success(struct{}{}) }
func (c *queryStubConn) Commit(ctx context.Context) Result[struct{}]  { return Success(struct{}{}) }
func (c *queryStubConn) Rollback(ctx context.Context) Result[struct{}] { return Success(struct{}{}) }
func (c *queryStubConn) LastError() string                             { return "" }

func TestQueryOneReturnsFirstRow(t *testing.T) {
	conn := &queryStubConn{rs: &fixedRows{
		cols: []string{"id", "name"},
		rows: [][]Value{{NewInt32(1), NewString("a")}, {NewInt32(2), NewString("b")}},
	}}
	res := QueryOne(context.Background(), conn, "select * from t")
	if !res.Ok() {
		t.Fatalf("QueryOne failed: %v", res.Err())
	}
	row := res.Value()
	if id, _ := row[0].Int32(); id != 1 {
		t.Errorf("expected first row id=1, got %d", id)
	}
}

func TestQueryOneNotFound(t *testing.T) {
	conn := &queryStubConn{rs: &fixedRows{cols: []string{"id"}}}
	res := QueryOne(context.Background(), conn, "select * from t")
	if res.Ok() {
		t.Fatal("expected failure for empty result set")
	}
	if res.Err().Kind != KindNotFound {
		t.Errorf("expected kind=NotFound, got %v", res.Err().Kind)
	}
}

func TestQueryAllEmptyIsSuccess(t *testing.T) {
	conn := &queryStubConn{rs: &fixedRows{cols: []string{"id"}}}
	res := QueryAll(context.Background(), conn, "select * from t")
	if !res.Ok() {
		t.Fatalf("QueryAll failed: %v", res.Err())
	}
	if len(res.Value()) != 0 {
		t.Errorf("expected empty result, got %v", res.Value())
	}
}

func TestQueryAllDrainsEveryRow(t *testing.T) {
	conn := &queryStubConn{rs: &fixedRows{
		cols: []string{"id"},
		rows: [][]Value{{NewInt32(1)}, {NewInt32(2)}, {NewInt32(3)}},
	}}
	res := QueryAll(context.Background(), conn, "select * from t")
	if !res.Ok() {
		t.Fatalf("QueryAll failed: %v", res.Err())
	}
	if len(res.Value()) != 3 {
		t.Errorf("expected 3 rows, got %d", len(res.Value()))
	}
}
