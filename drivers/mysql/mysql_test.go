package mysql

import (
	"context"
	"os"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	smartdb "github.com/smartdb-go/smartdb"
)

// mysqlTestEnabled reports whether SMARTDB_MYSQL_TEST_ENABLE names one of
// the documented truthy values. Anything else, including an unset
// variable, skips the MySQL integration suite.
func mysqlTestEnabled() bool {
	switch os.Getenv("SMARTDB_MYSQL_TEST_ENABLE") {
	case "1", "true", "TRUE", "on", "ON":
		return true
	default:
		return false
	}
}

func mysqlTestConfig() map[string]any {
	config := map[string]any{}
	if v := os.Getenv("SMARTDB_MYSQL_HOST"); v != "" {
		config["host"] = v
	}
	if v := os.Getenv("SMARTDB_MYSQL_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config["port"] = port
		}
	}
	if v := os.Getenv("SMARTDB_MYSQL_USER"); v != "" {
		config["user"] = v
	}
	if v := os.Getenv("SMARTDB_MYSQL_PASSWORD"); v != "" {
		config["password"] = v
	}
	if v := os.Getenv("SMARTDB_MYSQL_DATABASE"); v != "" {
		config["database"] = v
	}
	if v := os.Getenv("SMARTDB_MYSQL_CHARSET"); v != "" {
		config["charset"] = v
	}
	return config
}

func skipUnlessEnabled(t *testing.T) smartdb.Connection {
	t.Helper()
	if !mysqlTestEnabled() {
		t.Skip("set SMARTDB_MYSQL_TEST_ENABLE=1 (or true/TRUE/on/ON) against a reachable MySQL server to run this test")
	}
	conn, err := New().CreateConnection(mysqlTestConfig())
	require.NoError(t, err)
	require.NotNil(t, conn)
	return conn
}

func TestMySQLOpenAndPing(t *testing.T) {
	conn := skipUnlessEnabled(t)
	defer conn.Close()

	res := conn.Open(context.Background())
	require.True(t, res.Ok(), "open: %v", res.Err())
	require.True(t, conn.IsOpen())
}

func TestMySQLRoundTripParams(t *testing.T) {
	conn := skipUnlessEnabled(t)
	defer conn.Close()

	ctx := context.Background()
	require.True(t, conn.Open(ctx).Ok())

	drop := conn.Execute(ctx, "DROP TABLE IF EXISTS smartdb_roundtrip_test")
	require.True(t, drop.Ok(), "drop: %v", drop.Err())
	create := conn.Execute(ctx, "CREATE TABLE smartdb_roundtrip_test (id INTEGER PRIMARY KEY, v VARCHAR(255))")
	require.True(t, create.Ok(), "create: %v", create.Err())

	ins := conn.ExecuteParams(ctx, "INSERT INTO smartdb_roundtrip_test (id, v) VALUES (?, ?)",
		[]smartdb.Value{smartdb.NewInt32(1), smartdb.NewString("hello from smartdb")})
	require.True(t, ins.Ok(), "insert: %v", ins.Err())
	require.Equal(t, int64(1), ins.Value())

	q := conn.Query(ctx, "SELECT v FROM smartdb_roundtrip_test WHERE id = 1")
	require.True(t, q.Ok(), "query: %v", q.Err())
	rs := q.Value()
	defer rs.Close()

	require.True(t, rs.Next())
	s, ok := rs.Get(0).String()
	require.True(t, ok)
	require.Equal(t, "hello from smartdb", s)
}
