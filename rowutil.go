package smartdb

import "context"

// Row is an ordered sequence of column values for a single result row.
type Row []Value

// QueryOne executes sql and materializes the first row's columns into a
// Row. No rows produced is a failure with kind=NotFound and message
// "No rows returned".
func QueryOne(ctx context.Context, conn Connection, sql string) Result[Row] {
	rsRes := conn.Query(ctx, sql)
	if !rsRes.Ok() {
		return Failure[Row](rsRes.Err())
	}
	rs := rsRes.Value()
	defer rs.Close()

	if !rs.Next() {
		return FailureKind[Row]("No rows returned", 0, KindNotFound, false)
	}
	return Success(materializeRow(rs))
}

// QueryAll executes sql and drains every row into a sequence of Row. An
// empty result set is a successful empty sequence.
func QueryAll(ctx context.Context, conn Connection, sql string) Result[[]Row] {
	rsRes := conn.Query(ctx, sql)
	if !rsRes.Ok() {
		return Failure[[]Row](rsRes.Err())
	}
	rs := rsRes.Value()
	defer rs.Close()

	rows := make([]Row, 0)
	for rs.Next() {
		rows = append(rows, materializeRow(rs))
	}
	return Success(rows)
}

func materializeRow(rs ResultSet) Row {
	cols := rs.ColumnNames()
	row := make(Row, len(cols))
	for i := range cols {
		row[i] = rs.Get(i)
	}
	return row
}
