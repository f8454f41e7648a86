// Package postgres registers a third, equally thin Driver on top of
// lib/pq, demonstrating the registry's extensibility beyond the two
// initial backends (sqlite, mysql).
package postgres

import (
	"fmt"

	_ "github.com/lib/pq"

	smartdb "github.com/smartdb-go/smartdb"
	"github.com/smartdb-go/smartdb/internal/sqlconn"
)

const (
	driverName    = "postgres"
	sqlDriverName = "postgres"
)

// Driver materializes postgres connections from a config object
// recognizing "host", "port", "user", "password", "database" and
// "sslmode".
type Driver struct{}

// New returns a Driver ready to register with a smartdb.Registry or
// manager.Manager.
func New() Driver { return Driver{} }

func (Driver) Name() string { return driverName }

func (Driver) CreateConnection(config map[string]any) (smartdb.Connection, error) {
	host := stringOr(config, "host", "127.0.0.1")
	port := intOr(config, "port", 5432)
	user := stringOr(config, "user", "postgres")
	password := stringOr(config, "password", "")
	database := stringOr(config, "database", "")
	sslmode := stringOr(config, "sslmode", "disable")

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s connect_timeout=10",
		host, port, user, password, database, sslmode)

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
