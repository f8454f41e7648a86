package sqlconn

import (
	"database/sql"
	"strings"
	"time"

	smartdb "github.com/smartdb-go/smartdb"
)

// rowsResultSet adapts *sql.Rows to the smartdb.ResultSet capability.
// Column names and declared database types are captured once at
// construction, before the first Next, matching the spec's stability
// invariant for ColumnNames.
type rowsResultSet struct {
	rows    *sql.Rows
	cols    []string
	dbTypes []string // uppercased DatabaseTypeName(), "" if unavailable
	current []smartdb.Value
	hasRow  bool
}

func newRows(rows *sql.Rows) (*rowsResultSet, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	dbTypes := make([]string, len(cols))
	if colTypes, err := rows.ColumnTypes(); err == nil {
		for i, ct := range colTypes {
			if i < len(dbTypes) {
				dbTypes[i] = strings.ToUpper(ct.DatabaseTypeName())
			}
		}
	}
	return &rowsResultSet{rows: rows, cols: cols, dbTypes: dbTypes}, nil
}

func (r *rowsResultSet) Next() bool {
	if !r.rows.Next() {
		r.hasRow = false
		r.current = nil
		return false
	}
	dest := make([]any, len(r.cols))
	ptrs := make([]any, len(r.cols))
	for i := range dest {
		ptrs[i] = &dest[i]
	}
	if err := r.rows.Scan(ptrs...); err != nil {
		r.hasRow = false
		r.current = nil
		return false
	}
	row := make([]smartdb.Value, len(dest))
	for i, raw := range dest {
		dbType := ""
		if i < len(r.dbTypes) {
			dbType = r.dbTypes[i]
		}
		row[i] = fromDriverValue(raw, dbType)
	}
	r.current = row
	r.hasRow = true
	return true
}

func (r *rowsResultSet) Get(index int) smartdb.Value {
	if !r.hasRow || index < 0 || index >= len(r.current) {
		return smartdb.Null
	}
	return r.current[index]
}

func (r *rowsResultSet) GetByName(name string) smartdb.Value {
	for i, c := range r.cols {
		if c == name {
			return r.Get(i)
		}
	}
	return smartdb.Null
}

func (r *rowsResultSet) ColumnNames() []string {
	out := make([]string, len(r.cols))
	copy(out, r.cols)
	return out
}

func (r *rowsResultSet) Close() error { return r.rows.Close() }

// fromDriverValue converts a database/sql scan result into a Value. Text
// columns sometimes surface as []byte depending on the driver; the
// declared database type disambiguates BLOB from TEXT/VARCHAR so bytes and
// strings round-trip correctly, resolving the spec's open question about
// row typing without going through a textual conversion step.
func fromDriverValue(raw any, dbType string) smartdb.Value {
	switch t := raw.(type) {
	case nil:
		return smartdb.Null
	case int64:
		return smartdb.NewInt64(t)
	case int32:
		return smartdb.NewInt32(t)
	case float64:
		return smartdb.NewFloat64(t)
	case float32:
		return smartdb.NewFloat64(float64(t))
	case bool:
		return smartdb.NewBool(t)
	case string:
		return smartdb.NewString(t)
	case []byte:
		if isBlobType(dbType) {
			return smartdb.NewBytes(t)
		}
		return smartdb.NewString(string(t))
	case time.Time:
		return smartdb.NewString(t.Format(time.RFC3339Nano))
	default:
		return smartdb.Null
	}
}

func isBlobType(dbType string) bool {
	switch {
	case strings.Contains(dbType, "BLOB"):
		return true
	case strings.Contains(dbType, "BINARY"):
		return true
	case strings.Contains(dbType, "BYTEA"):
		return true
	default:
		return false
	}
}
