// Package manager implements DatabaseManager: a driver registry, a named
// JSON configuration store, and a pool cache that deduplicates pools of
// identical shape. The cache holds weak references (via the standard
// library's weak package) so pools are reclaimed once no external holder
// keeps one alive, mirroring the spec's "cache stores weak references"
// contract without a manual refcounting scheme.
package manager

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
	"weak"

	smartdb "github.com/smartdb-go/smartdb"
	"github.com/smartdb-go/smartdb/internal/dblog"
	"github.com/smartdb-go/smartdb/pool"
)

// PoolOptions mirrors the external pool options surface (spec §6); unset
// fields fall back to their documented defaults when resolved.
type PoolOptions struct {
	MinSize      *uint
	MaxSize      *uint
	WaitTimeout  *time.Duration
	TestOnBorrow *bool
	TestOnReturn *bool
}

func (o *PoolOptions) resolve() pool.Options {
	resolved := pool.Options{
		MinSize:      0,
		MaxSize:      16,
		WaitTimeout:  5 * time.Second,
		TestOnBorrow: true,
		TestOnReturn: false,
	}
	if o == nil {
		return resolved
	}
	if o.MinSize != nil {
		resolved.MinSize = *o.MinSize
	}
	if o.MaxSize != nil {
		resolved.MaxSize = *o.MaxSize
	}
	if o.WaitTimeout != nil {
		resolved.WaitTimeout = *o.WaitTimeout
	}
	if o.TestOnBorrow != nil {
		resolved.TestOnBorrow = *o.TestOnBorrow
	}
	if o.TestOnReturn != nil {
		resolved.TestOnReturn = *o.TestOnReturn
	}
	return resolved
}

func optionsFingerprint(o pool.Options) string {
	return fmt.Sprintf("min=%d;max=%d;wait=%d;tob=%t;tor=%t",
		o.MinSize, o.MaxSize, o.WaitTimeout.Milliseconds(), o.TestOnBorrow, o.TestOnReturn)
}

// configFingerprint relies on encoding/json sorting map keys alphabetically
// on marshal, giving the canonical sorted-key serialization the spec calls
// for without a bespoke canonicalizer.
func configFingerprint(config map[string]any) string {
	data, err := json.Marshal(config)
	if err != nil {
		return fmt.Sprintf("%v", config)
	}
	return string(data)
}

// errorCounters tallies manager failures by kind, the Go stand-in for the
// original DbErrorCounters accumulator exposed via DatabaseManager's
// errorCounters()/resetErrorCounters() accessors.
type errorCounters struct {
	mu     sync.Mutex
	counts map[smartdb.ErrorKind]uint64
}

func newErrorCounters() *errorCounters {
	return &errorCounters{counts: make(map[smartdb.ErrorKind]uint64)}
}

func (c *errorCounters) increment(kind smartdb.ErrorKind) {
	c.mu.Lock()
	c.counts[kind]++
	c.mu.Unlock()
}

func (c *errorCounters) snapshot() map[smartdb.ErrorKind]uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[smartdb.ErrorKind]uint64, len(c.counts))
	for k, v := range c.counts {
		out[k] = v
	}
	return out
}

func (c *errorCounters) reset() {
	c.mu.Lock()
	c.counts = make(map[smartdb.ErrorKind]uint64)
	c.mu.Unlock()
}

// Manager is a DatabaseManager instance: driver registry, named config
// store, pool cache and lastError, all serialized under one mutex.
type Manager struct {
	mu        sync.Mutex
	registry  *smartdb.Registry
	configs   map[string]map[string]any
	pools     map[string]weak.Pointer[pool.Pool]
	lastError string
	errCounts *errorCounters
}

// New builds an empty Manager.
func New() *Manager {
	return &Manager{
		registry:  smartdb.NewRegistry(),
		configs:   make(map[string]map[string]any),
		pools:     make(map[string]weak.Pointer[pool.Pool]),
		errCounts: newErrorCounters(),
	}
}

var defaultInstance = New()

// Default returns the process-wide Manager instance. It is a convenience;
// callers may construct their own Manager via New instead.
func Default() *Manager { return defaultInstance }

func (m *Manager) setLastError(msg string) {
	m.mu.Lock()
	m.lastError = msg
	m.mu.Unlock()
}

func (m *Manager) clearLastError() {
	m.mu.Lock()
	m.lastError = ""
	m.mu.Unlock()
}

// LastError returns the most recent operation's failure message, cleared
// on the next successful operation.
func (m *Manager) LastError() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastError
}

// ErrorCounters returns a snapshot of accumulated failure counts by
// ErrorKind, tallied across every failed operation since the last reset.
func (m *Manager) ErrorCounters() map[smartdb.ErrorKind]uint64 {
	return m.errCounts.snapshot()
}

// ResetErrorCounters zeroes the failure counters.
func (m *Manager) ResetErrorCounters() {
	m.errCounts.reset()
}

// fail records err as lastError, increments its kind's counter and emits a
// structured log event carrying the operation name, error kind, code and
// retryability, then returns err unchanged.
func (m *Manager) fail(op string, err *smartdb.DbError) *smartdb.DbError {
	m.setLastError(err.Message)
	m.errCounts.increment(err.Kind)
	logFn := dblog.Warn
	if err.Kind == smartdb.KindInternal {
		logFn = dblog.Error
	}
	logFn("manager operation failed",
		"op", op, "kind", err.Kind.String(), "code", err.Code,
		"retryable", err.Retryable, "error", err.Message)
	return err
}

// RegisterDriver stores d under d.Name(), overwriting any previous
// registration. A nil driver is InvalidArgument.
func (m *Manager) RegisterDriver(d smartdb.Driver) *smartdb.DbError {
	if err := m.registry.Register(d); err != nil {
		return m.fail("register_driver", err)
	}
	m.clearLastError()
	return nil
}

// LoadConfig parses a JSON document at path whose top-level object must
// contain a "connections" object mapping names to per-connection config
// objects. Success replaces, rather than merges, the configuration map.
func (m *Manager) LoadConfig(path string) *smartdb.DbError {
	data, readErr := os.ReadFile(path)
	if readErr != nil {
		err := smartdb.NewError(fmt.Sprintf("failed to read config file %q: %v", path, readErr), 0, smartdb.KindConfiguration, false)
		return m.fail("load_config", err)
	}

	var doc map[string]any
	if jsonErr := json.Unmarshal(data, &doc); jsonErr != nil {
		err := smartdb.NewError(fmt.Sprintf("invalid config JSON in %q: %v", path, jsonErr), 0, smartdb.KindConfiguration, false)
		return m.fail("load_config", err)
	}

	connsRaw, ok := doc["connections"]
	if !ok {
		err := smartdb.NewError("config is missing the \"connections\" key", 0, smartdb.KindConfiguration, false)
		return m.fail("load_config", err)
	}
	connsObj, ok := connsRaw.(map[string]any)
	if !ok {
		err := smartdb.NewError("config \"connections\" key must be an object", 0, smartdb.KindConfiguration, false)
		return m.fail("load_config", err)
	}

	newConfigs := make(map[string]map[string]any, len(connsObj))
	for name, v := range connsObj {
		cfgObj, ok := v.(map[string]any)
		if !ok {
			err := smartdb.NewError(fmt.Sprintf("connection %q config must be an object", name), 0, smartdb.KindConfiguration, false)
			return m.fail("load_config", err)
		}
		newConfigs[name] = cfgObj
	}

	m.mu.Lock()
	m.configs = newConfigs
	m.mu.Unlock()
	m.clearLastError()
	return nil
}

// CreateConnectionRaw builds a Closed connection directly from a driver
// name and config object, bypassing the named-config store.
func (m *Manager) CreateConnectionRaw(driverName string, config map[string]any) smartdb.Result[smartdb.Connection] {
	m.mu.Lock()
	driver, ok := m.registry.Lookup(driverName)
	m.mu.Unlock()
	if !ok {
		err := smartdb.NewError(fmt.Sprintf("Driver not found: %s", driverName), 0, smartdb.KindNotFound, false)
		return smartdb.Failure[smartdb.Connection](m.fail("create_connection_raw", err))
	}

	conn, cerr := driver.CreateConnection(config)
	if cerr != nil {
		err := smartdb.NewError(fmt.Sprintf("driver %q failed to create connection: %v", driverName, cerr), 0, smartdb.KindInternal, true)
		return smartdb.Failure[smartdb.Connection](m.fail("create_connection_raw", err))
	}
	if conn == nil {
		err := smartdb.NewError(fmt.Sprintf("driver %q returned a nil connection", driverName), 0, smartdb.KindInternal, true)
		return smartdb.Failure[smartdb.Connection](m.fail("create_connection_raw", err))
	}
	m.clearLastError()
	return smartdb.Success(conn)
}

// CreateConnection looks up name in the config store and delegates to
// CreateConnectionRaw using its "driver" field.
func (m *Manager) CreateConnection(name string) smartdb.Result[smartdb.Connection] {
	m.mu.Lock()
	cfg, ok := m.configs[name]
	m.mu.Unlock()
	if !ok {
		err := smartdb.NewError(fmt.Sprintf("Connection config not found: %s", name), 0, smartdb.KindNotFound, false)
		return smartdb.Failure[smartdb.Connection](m.fail("create_connection", err))
	}

	driverNameAny, ok := cfg["driver"]
	driverName, isString := driverNameAny.(string)
	if !ok || !isString || driverName == "" {
		err := smartdb.NewError(fmt.Sprintf("connection %q config is missing the \"driver\" field", name), 0, smartdb.KindConfiguration, false)
		return smartdb.Failure[smartdb.Connection](m.fail("create_connection", err))
	}

	return m.CreateConnectionRaw(driverName, cfg)
}

// CreatePool returns a cached pool for name/opts if one is still live,
// otherwise builds and caches a new one. Pointer-identical calls with the
// same name and options fingerprint return the same *pool.Pool.
func (m *Manager) CreatePool(name string, opts *PoolOptions) smartdb.Result[*pool.Pool] {
	resolved := opts.resolve()
	if resolved.MaxSize == 0 {
		err := smartdb.NewError("pool maxSize must be >= 1", 0, smartdb.KindInvalidArgument, false)
		return smartdb.Failure[*pool.Pool](m.fail("create_pool", err))
	}
	key := "name:" + name + ":" + optionsFingerprint(resolved)
	factory := func(ctx context.Context) smartdb.Result[smartdb.Connection] {
		return m.CreateConnection(name)
	}
	return m.getOrCreatePool("create_pool", key, resolved, factory)
}

// CreatePoolRaw is CreatePool without name-indirection: the config object
// is supplied directly.
func (m *Manager) CreatePoolRaw(driverName string, config map[string]any, opts *PoolOptions) smartdb.Result[*pool.Pool] {
	resolved := opts.resolve()
	if resolved.MaxSize == 0 {
		err := smartdb.NewError("pool maxSize must be >= 1", 0, smartdb.KindInvalidArgument, false)
		return smartdb.Failure[*pool.Pool](m.fail("create_pool_raw", err))
	}
	key := "raw:" + driverName + ":" + configFingerprint(config) + ":" + optionsFingerprint(resolved)
	factory := func(ctx context.Context) smartdb.Result[smartdb.Connection] {
		return m.CreateConnectionRaw(driverName, config)
	}
	return m.getOrCreatePool("create_pool_raw", key, resolved, factory)
}

func (m *Manager) getOrCreatePool(op, key string, resolved pool.Options, factory pool.Factory) smartdb.Result[*pool.Pool] {
	m.mu.Lock()
	if wp, ok := m.pools[key]; ok {
		if p := wp.Value(); p != nil {
			m.mu.Unlock()
			return smartdb.Success(p)
		}
	}
	m.mu.Unlock()

	newPool, perr := pool.New(context.Background(), factory, resolved)
	if perr != nil {
		return smartdb.Failure[*pool.Pool](m.fail(op, perr))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Double-check under the lock: another caller may have won the race
	// to construct a pool for this key while we were building ours.
	if wp, ok := m.pools[key]; ok {
		if p := wp.Value(); p != nil {
			newPool.Shutdown()
			return smartdb.Success(p)
		}
	}
	m.pools[key] = weak.Make(newPool)
	m.lastError = ""
	dblog.Info("manager: created pool", "key", key)
	return smartdb.Success(newPool)
}
