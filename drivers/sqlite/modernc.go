//go:build !smartdb_cgo

package sqlite

import _ "modernc.org/sqlite"

// sqlDriverName is the name modernc.org/sqlite registers under database/sql.
const sqlDriverName = "sqlite"
