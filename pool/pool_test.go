package pool

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	smartdb "github.com/smartdb-go/smartdb"
)

// fakeConn is a minimal smartdb.Connection for exercising the pool without
// a real backend.
type fakeConn struct {
	mu         sync.Mutex
	open       bool
	failOpen   bool
	begins     int
	commits    int
	rollbacks  int
	closed     bool
}

func newFakeConn() *fakeConn { return &fakeConn{open: true} }

func (c *fakeConn) Open(ctx context.Context) smartdb.Result[struct{}] {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failOpen {
		return smartdb.FailureKind[struct{}]("open failed", 0, smartdb.KindConnection, true)
	}
	c.open = true
	return smartdb.Success(struct{}{})
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = false
	c.closed = true
	return nil
}

func (c *fakeConn) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

func (c *fakeConn) Query(ctx context.Context, sql string) smartdb.Result[smartdb.ResultSet] {
	return smartdb.FailureMsg[smartdb.ResultSet]("not implemented", 0)
}

func (c *fakeConn) Execute(ctx context.Context, sql string) smartdb.Result[int64] {
	return smartdb.Success[int64](0)
}

func (c *fakeConn) ExecuteParams(ctx context.Context, sql string, params []smartdb.Value) smartdb.Result[int64] {
	return smartdb.Success[int64](0)
}

func (c *fakeConn) Begin(ctx context.Context) smartdb.Result[struct{}] {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.begins++
	return smartdb.Success(struct{}{})
}

func (c *fakeConn) Commit(ctx context.Context) smartdb.Result[struct{}] {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.commits++
	return smartdb.Success(struct{}{})
}

func (c *fakeConn) Rollback(ctx context.Context) smartdb.Result[struct{}] {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rollbacks++
	return smartdb.Success(struct{}{})
}

func (c *fakeConn) LastError() string { return "" }

func fakeFactory() Factory {
	return func(ctx context.Context) smartdb.Result[smartdb.Connection] {
		return smartdb.Success[smartdb.Connection](newFakeConn())
	}
}

func TestSingleSlotReuse(t *testing.T) {
	p, err := New(context.Background(), fakeFactory(), Options{MaxSize: 1})
	require.Nil(t, err)

	res1 := p.Acquire(context.Background())
	require.True(t, res1.Ok())
	h1 := res1.Value()
	c1 := h1.Connection()
	h1.Release()

	res2 := p.Acquire(context.Background())
	require.True(t, res2.Ok())
	require.Same(t, c1, res2.Value().Connection())
}

func TestExhaustionTimeout(t *testing.T) {
	p, err := New(context.Background(), fakeFactory(), Options{MaxSize: 1, WaitTimeout: 50 * time.Millisecond})
	require.Nil(t, err)

	res1 := p.Acquire(context.Background())
	require.True(t, res1.Ok())

	start := time.Now()
	res2 := p.Acquire(context.Background())
	elapsed := time.Since(start)

	require.False(t, res2.Ok())
	require.Equal(t, smartdb.KindTimeout, res2.Err().Kind)
	require.Contains(t, res2.Err().Message, "timed out")
	require.GreaterOrEqual(t, elapsed, 50*time.Millisecond)
	require.LessOrEqual(t, p.Total(), uint(1))
}

func TestConcurrentAcquireRespectsCeiling(t *testing.T) {
	p, err := New(context.Background(), fakeFactory(), Options{MaxSize: 4, WaitTimeout: 500 * time.Millisecond})
	require.Nil(t, err)

	var mu sync.Mutex
	var concurrent, peak int
	var failures int32
	var wg sync.WaitGroup

	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := p.Acquire(context.Background())
			if !res.Ok() {
				mu.Lock()
				failures++
				mu.Unlock()
				return
			}
			mu.Lock()
			concurrent++
			if concurrent > peak {
				peak = concurrent
			}
			mu.Unlock()

			time.Sleep(20 * time.Millisecond)

			mu.Lock()
			concurrent--
			mu.Unlock()
			res.Value().Release()
		}()
	}
	wg.Wait()

	require.Equal(t, int32(0), failures)
	require.LessOrEqual(t, peak, 4)
	require.Equal(t, p.Idle(), int(p.Total()))
}

func TestMetricsAccounting(t *testing.T) {
	p, err := New(context.Background(), fakeFactory(), Options{MaxSize: 1, WaitTimeout: 40 * time.Millisecond})
	require.Nil(t, err)

	h := p.Acquire(context.Background())
	require.True(t, h.Ok())

	second := p.Acquire(context.Background())
	require.False(t, second.Ok())

	h.Value().Release()

	stats := p.Stats()
	require.Equal(t, uint64(2), stats.AcquireAttempts)
	require.Equal(t, uint64(1), stats.AcquireSuccesses)
	require.Equal(t, uint64(1), stats.AcquireFailures)
	require.Equal(t, uint64(1), stats.AcquireTimeouts)
	require.GreaterOrEqual(t, stats.WaitEvents, uint64(1))
	require.GreaterOrEqual(t, stats.PeakInUse, uint64(1))
	require.Greater(t, stats.TotalAcquireWaitMicros, uint64(0))
}

func TestFactoryFailureAccounting(t *testing.T) {
	factory := func(ctx context.Context) smartdb.Result[smartdb.Connection] {
		return smartdb.FailureMsg[smartdb.Connection]("factory boom", 0)
	}
	p, err := New(context.Background(), factory, Options{MaxSize: 1})
	require.Nil(t, err)

	res := p.Acquire(context.Background())
	require.False(t, res.Ok())
	require.Contains(t, res.Err().Message, "factory boom")

	stats := p.Stats()
	require.Equal(t, uint64(1), stats.AcquireAttempts)
	require.Equal(t, uint64(1), stats.AcquireFailures)
	require.Equal(t, uint64(1), stats.FactoryFailures)
}

func TestShutdownIdempotent(t *testing.T) {
	p, err := New(context.Background(), fakeFactory(), Options{MaxSize: 2, MinSize: 1})
	require.Nil(t, err)

	p.Shutdown()
	p.Shutdown()

	res := p.Acquire(context.Background())
	require.False(t, res.Ok())
	require.Equal(t, smartdb.KindConnection, res.Err().Kind)
}

func TestConstructionRejectsZeroMaxSize(t *testing.T) {
	_, err := New(context.Background(), fakeFactory(), Options{MaxSize: 0})
	require.NotNil(t, err)
	require.Equal(t, smartdb.KindInvalidArgument, err.Kind)
}
