// Package mysql registers the MySQL wire driver on top of
// go-sql-driver/mysql.
package mysql

import (
	"fmt"

	_ "github.com/go-sql-driver/mysql"

	smartdb "github.com/smartdb-go/smartdb"
	"github.com/smartdb-go/smartdb/internal/sqlconn"
)

const (
	driverName     = "mysql"
	sqlDriverName  = "mysql"
	connectTimeout = "10s"
)

// Driver materializes MySQL connections from a config object recognizing
// "host", "port", "user", "password", "database" and "charset".
type Driver struct{}

// New returns a Driver ready to register with a smartdb.Registry or
// manager.Manager.
func New() Driver { return Driver{} }

func (Driver) Name() string { return driverName }

func (Driver) CreateConnection(config map[string]any) (smartdb.Connection, error) {
	host := stringOr(config, "host", "127.0.0.1")
	port := intOr(config, "port", 3306)
	user := stringOr(config, "user", "root")
	password := stringOr(config, "password", "")
	database := stringOr(config, "database", "")
	charset := stringOr(config, "charset", "utf8mb4")

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&timeout=%s&parseTime=false",
		user, password, host, port, database, charset, connectTimeout)

	return sqlconn.New(sqlDriverName, dsn), nil
}

func stringOr(config map[string]any, key, def string) string {
	if v, ok := config[key].(string); ok && v != "" {
		return v
	}
	return def
}

func intOr(config map[string]any, key string, def int) int {
	switch v := config[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return def
	}
}
