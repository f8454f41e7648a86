// Package pool implements ConnectionPool: a bounded, reusable store of
// smartdb.Connection values with blocking acquire, a wait timeout, health
// probes and metrics. The timed-wait coordination below is grounded on the
// timer+sync.Cond.Broadcast idiom used for pooled-resource acquisition
// elsewhere in the ecosystem (a single condition variable woken either by
// a release or by a per-waiter deadline timer, with every woken waiter
// re-checking its own deadline).
package pool

import (
	"context"
	"fmt"
	"sync"
	"time"

	smartdb "github.com/smartdb-go/smartdb"
	"github.com/smartdb-go/smartdb/internal/dblog"
	"github.com/smartdb-go/smartdb/internal/traceid"
)

// Factory produces a new, Closed Connection on demand. It must not call
// back into the pool that owns it (re-entrant acquire is unsupported).
type Factory func(ctx context.Context) smartdb.Result[smartdb.Connection]

// Options configures a ConnectionPool.
type Options struct {
	MinSize      uint
	MaxSize      uint
	WaitTimeout  time.Duration
	TestOnBorrow bool
	TestOnReturn bool
}

// normalize clamps MinSize to MaxSize and reports construction errors.
func (o Options) normalize() (Options, *smartdb.DbError) {
	if o.MaxSize == 0 {
		return o, smartdb.NewError("pool maxSize must be >= 1", 0, smartdb.KindInvalidArgument, false)
	}
	if o.MinSize > o.MaxSize {
		o.MinSize = o.MaxSize
	}
	return o, nil
}

// Metrics is a point-in-time snapshot of the pool's monotone counters.
// AverageAcquireWaitMicros is derived, not stored.
type Metrics struct {
	AcquireAttempts          uint64
	AcquireSuccesses         uint64
	AcquireFailures          uint64
	AcquireTimeouts          uint64
	WaitEvents               uint64
	FactoryFailures          uint64
	TotalAcquireWaitMicros   uint64
	AverageAcquireWaitMicros uint64
	PeakInUse                uint64
}

// Pool is a bounded, concurrency-safe store of reusable connections.
type Pool struct {
	mu   sync.Mutex
	cond *sync.Cond

	factory Factory
	opts    Options

	idle   []smartdb.Connection // LIFO stack: idle[len-1] is most recently returned
	total  uint
	closed bool

	metrics   Metrics
	lastError string
}

// New constructs a pool, normalizes opts and performs best-effort warm-up
// of up to opts.MinSize connections. Warm-up failures are skipped silently
// and are not retried later.
func New(ctx context.Context, factory Factory, opts Options) (*Pool, *smartdb.DbError) {
	if factory == nil {
		return nil, smartdb.NewError("pool factory must not be nil", 0, smartdb.KindInvalidArgument, false)
	}
	normalized, err := opts.normalize()
	if err != nil {
		return nil, err
	}

	p := &Pool{factory: factory, opts: normalized}
	p.cond = sync.NewCond(&p.mu)

	for i := uint(0); i < normalized.MinSize; i++ {
		res := p.produce(ctx)
		if !res.Ok() {
			dblog.Warn("pool warm-up: factory failed", "error", res.Err().Error())
			continue
		}
		conn := res.Value()
		if openRes := conn.Open(ctx); !openRes.Ok() {
			dblog.Warn("pool warm-up: open failed", "error", openRes.Err().Error())
			conn.Close()
			continue
		}
		p.idle = append(p.idle, conn)
		p.total++
	}
	return p, nil
}

// produce calls the factory, turning a panic into an Internal, retryable
// failure so it never escapes the pool.
func (p *Pool) produce(ctx context.Context) (res smartdb.Result[smartdb.Connection]) {
	defer func() {
		if r := recover(); r != nil {
			res = smartdb.FailureKind[smartdb.Connection](fmt.Sprintf("connection factory panicked: %v", r), 0, smartdb.KindInternal, true)
		}
	}()
	return p.factory(ctx)
}

// Handle is a uniquely-owning reference to a checked-out connection. Call
// Release exactly once (typically via defer) to return the connection to
// its pool; dropping a Handle without releasing leaks the slot.
type Handle struct {
	pool     *Pool
	conn     smartdb.Connection
	released bool
	mu       sync.Mutex
}

// Connection returns the checked-out connection.
func (h *Handle) Connection() smartdb.Connection { return h.conn }

// Release returns the connection to its pool. Idempotent: only the first
// call has an effect, so it is safe to defer unconditionally even if a
// caller also releases explicitly on a success path.
func (h *Handle) Release() {
	h.mu.Lock()
	if h.released {
		h.mu.Unlock()
		return
	}
	h.released = true
	h.mu.Unlock()
	h.pool.release(h.conn)
}

// Acquire obtains a connection, blocking up to Options.WaitTimeout when the
// pool is exhausted. ctx is forwarded to factory/open calls for their own
// I/O deadlines; the pool's own wait loop is governed solely by
// Options.WaitTimeout, per the pool's documented single cancellation
// channel.
func (p *Pool) Acquire(ctx context.Context) smartdb.Result[*Handle] {
	opCtx := traceid.New(ctx)

	p.mu.Lock()
	p.metrics.AcquireAttempts++
	start := time.Now()
	var deadline time.Time
	if p.opts.WaitTimeout > 0 {
		deadline = start.Add(p.opts.WaitTimeout)
	}

	for {
		if p.closed {
			p.metrics.AcquireFailures++
			p.lastError = "Connection pool is closed"
			p.mu.Unlock()
			return smartdb.FailureKind[*Handle](p.lastError, 0, smartdb.KindConnection, true)
		}

		if n := len(p.idle); n > 0 {
			conn := p.idle[n-1]
			p.idle = p.idle[:n-1]
			p.mu.Unlock()

			if !p.testOnBorrow(opCtx, conn) {
				// The health check closed conn: give its slot back, then
				// retry only while waiting is permitted (WaitTimeout > 0 and
				// the deadline not yet reached); otherwise fail.
				p.mu.Lock()
				p.total--
				p.cond.Signal()
				if p.opts.WaitTimeout == 0 || !time.Now().Before(deadline) {
					p.metrics.AcquireFailures++
					p.lastError = "Connection failed health check on borrow"
					p.mu.Unlock()
					return smartdb.FailureKind[*Handle](p.lastError, 0, smartdb.KindConnection, true)
				}
				continue
			}

			p.mu.Lock()
			p.recordSuccess(start)
			p.mu.Unlock()
			return smartdb.Success(&Handle{pool: p, conn: conn})
		}

		if p.total < p.opts.MaxSize {
			p.total++
			p.mu.Unlock()

			factRes := p.produce(opCtx)
			if !factRes.Ok() {
				p.mu.Lock()
				p.total--
				p.metrics.FactoryFailures++
				p.metrics.AcquireFailures++
				msg := "factory failed to produce a connection"
				if factRes.Err() != nil {
					msg = factRes.Err().Message
				}
				p.lastError = msg
				p.cond.Signal()
				p.mu.Unlock()
				dblog.Error("pool acquire: factory failed", "error", msg, "trace_id", traceid.From(opCtx))
				return smartdb.FailureKind[*Handle](msg, 0, smartdb.KindInternal, true)
			}

			conn := factRes.Value()
			if !p.testOnBorrow(opCtx, conn) {
				// Same gating as the idle-path check above.
				p.mu.Lock()
				p.total--
				p.cond.Signal()
				if p.opts.WaitTimeout == 0 || !time.Now().Before(deadline) {
					p.metrics.AcquireFailures++
					p.lastError = "Connection failed health check on borrow"
					p.mu.Unlock()
					return smartdb.FailureKind[*Handle](p.lastError, 0, smartdb.KindConnection, true)
				}
				continue
			}

			p.mu.Lock()
			p.recordSuccess(start)
			p.mu.Unlock()
			return smartdb.Success(&Handle{pool: p, conn: conn})
		}

		if p.opts.WaitTimeout == 0 {
			p.metrics.AcquireFailures++
			p.lastError = "Connection pool exhausted"
			p.mu.Unlock()
			return smartdb.FailureKind[*Handle](p.lastError, 0, smartdb.KindConnection, true)
		}

		p.metrics.WaitEvents++
		if p.waitLocked(deadline) {
			p.metrics.AcquireFailures++
			p.metrics.AcquireTimeouts++
			p.metrics.TotalAcquireWaitMicros += uint64(time.Since(start).Microseconds())
			p.lastError = "Connection pool acquire timed out"
			p.mu.Unlock()
			return smartdb.FailureKind[*Handle](p.lastError, 0, smartdb.KindTimeout, true)
		}
		// woken by a release or a stale timer firing; re-check from the top
	}
}

// waitLocked blocks on p.cond until woken, returning true iff deadline has
// elapsed. Must be called with p.mu held; returns with p.mu held.
func (p *Pool) waitLocked(deadline time.Time) bool {
	if deadline.IsZero() {
		p.cond.Wait()
		return false
	}
	now := time.Now()
	if !now.Before(deadline) {
		return true
	}
	timer := time.AfterFunc(deadline.Sub(now), func() {
		p.mu.Lock()
		p.cond.Broadcast()
		p.mu.Unlock()
	})
	p.cond.Wait()
	timer.Stop()
	return !time.Now().Before(deadline)
}

// testOnBorrow ensures conn is Open when Options.TestOnBorrow is set,
// closing and reporting failure if it cannot be opened. Called without
// p.mu held.
func (p *Pool) testOnBorrow(ctx context.Context, conn smartdb.Connection) bool {
	if !p.opts.TestOnBorrow || conn.IsOpen() {
		return true
	}
	if res := conn.Open(ctx); !res.Ok() {
		conn.Close()
		return false
	}
	return true
}

// recordSuccess must be called with p.mu held, after the connection has
// already left the idle stack (or been freshly created).
func (p *Pool) recordSuccess(start time.Time) {
	p.metrics.AcquireSuccesses++
	waitMicros := uint64(time.Since(start).Microseconds())
	p.metrics.TotalAcquireWaitMicros += waitMicros
	checkedOut := uint64(p.total) - uint64(len(p.idle))
	if checkedOut > p.metrics.PeakInUse {
		p.metrics.PeakInUse = checkedOut
	}
	p.lastError = ""
}

// release returns conn to the pool, or closes it if the pool is closed or
// TestOnReturn fails. Never blocks beyond a constant amount of work.
func (p *Pool) release(conn smartdb.Connection) {
	p.mu.Lock()
	if p.closed || (p.opts.TestOnReturn && !conn.IsOpen()) {
		p.total--
		p.cond.Signal()
		p.mu.Unlock()
		conn.Close()
		return
	}
	p.idle = append(p.idle, conn)
	p.cond.Signal()
	p.mu.Unlock()
}

// Shutdown closes every idle connection and rejects future acquires.
// Idempotent. Outstanding handles still close their connection when
// released, even after shutdown.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	idle := p.idle
	p.idle = nil
	p.total -= uint(len(idle))
	p.cond.Broadcast()
	p.mu.Unlock()

	for _, conn := range idle {
		conn.Close()
	}
}

// Stats returns a snapshot of the pool's metrics, including the derived
// average acquire wait.
func (p *Pool) Stats() Metrics {
	p.mu.Lock()
	defer p.mu.Unlock()
	m := p.metrics
	denom := m.AcquireSuccesses + m.AcquireFailures
	if denom > 0 {
		m.AverageAcquireWaitMicros = m.TotalAcquireWaitMicros / denom
	}
	return m
}

// LastError returns the most recent failure message, cleared on the next
// successful acquire.
func (p *Pool) LastError() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastError
}

// Total returns the current total connection count (idle + checked out).
func (p *Pool) Total() uint {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.total
}

// Idle returns the current idle connection count.
func (p *Pool) Idle() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.idle)
}
