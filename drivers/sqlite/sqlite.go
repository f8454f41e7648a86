// Package sqlite registers the embedded SQLite driver. The default build
// uses modernc.org/sqlite, a CGo-free implementation, so consumers of this
// module need no C toolchain; build with -tags smartdb_cgo to link
// mattn/go-sqlite3 instead (see sqlite_cgo.go).
package sqlite

import (
	smartdb "github.com/smartdb-go/smartdb"
	"github.com/smartdb-go/smartdb/internal/sqlconn"
)

const driverName = "sqlite"

// Driver materializes sqlite connections from a config object recognizing
// "path" (default ":memory:").
type Driver struct{}

// New returns a Driver ready to register with a smartdb.Registry or
// manager.Manager.
func New() Driver { return Driver{} }

func (Driver) Name() string { return driverName }

func (Driver) CreateConnection(config map[string]any) (smartdb.Connection, error) {
	path := ":memory:"
	if v, ok := config["path"].(string); ok && v != "" {
		path = v
	}
	return sqlconn.New(sqlDriverName, path), nil
}
