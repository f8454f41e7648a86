//go:build smartdb_cgo

package sqlite

import _ "github.com/mattn/go-sqlite3"

// sqlDriverName is the name mattn/go-sqlite3 registers under database/sql
// when this module is built with -tags smartdb_cgo.
const sqlDriverName = "sqlite3"
