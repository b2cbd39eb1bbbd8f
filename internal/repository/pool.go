package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// ErrPoolClosed is returned by Acquire after Close
var ErrPoolClosed = errors.New("connection pool is closed")

// PoolStats reports pool usage counters
type PoolStats struct {
	Size     int64  `json:"size"`
	InUse    int64  `json:"in_use"`
	Idle     int64  `json:"idle"`
	Dialed   uint64 `json:"dialed"`
	Acquired uint64 `json:"acquired"`
	Released uint64 `json:"released"`
	Failed   uint64 `json:"failed"`
}

// DialFunc opens a new backend connection
type DialFunc func(ctx context.Context) (Conn, error)

// CloseFunc disposes of a backend connection
type CloseFunc func(conn Conn)

// BoundedPool is a Pool holding at most size connections at once. Idle
// connections are reused before new ones are dialed.
type BoundedPool struct {
	size      int64
	sem       *semaphore.Weighted
	dial      DialFunc
	closeConn CloseFunc

	mu     sync.Mutex
	idle   []Conn
	closed bool

	inUse    atomic.Int64
	dialed   atomic.Uint64
	acquired atomic.Uint64
	released atomic.Uint64
	failed   atomic.Uint64
}

// lease wraps a pooled connection so that it is returned at most once
type lease struct {
	Conn
	returned atomic.Bool
}

// NewBoundedPool creates a pool of at most size connections
func NewBoundedPool(size int, dial DialFunc, closeConn CloseFunc) (*BoundedPool, error) {
	if size < 1 {
		return nil, fmt.Errorf("pool size must be positive, got: %d", size)
	}
	if closeConn == nil {
		closeConn = func(Conn) {}
	}
	return &BoundedPool{
		size:      int64(size),
		sem:       semaphore.NewWeighted(int64(size)),
		dial:      dial,
		closeConn: closeConn,
	}, nil
}

// Acquire waits for a free slot and returns an idle or freshly dialed connection
func (p *BoundedPool) Acquire(ctx context.Context) (Conn, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		p.failed.Add(1)
		return nil, err
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.sem.Release(1)
		p.failed.Add(1)
		return nil, ErrPoolClosed
	}
	var conn Conn
	if n := len(p.idle); n > 0 {
		conn = p.idle[n-1]
		p.idle = p.idle[:n-1]
	}
	p.mu.Unlock()

	if conn == nil {
		var err error
		conn, err = p.dial(ctx)
		if err != nil {
			p.sem.Release(1)
			p.failed.Add(1)
			return nil, err
		}
		p.dialed.Add(1)
	}

	p.inUse.Add(1)
	p.acquired.Add(1)
	return &lease{Conn: conn}, nil
}

// Release returns a leased connection. Releasing the same lease twice, or a
// connection that did not come from this pool, has no effect.
func (p *BoundedPool) Release(conn Conn) {
	l, ok := conn.(*lease)
	if !ok || !l.returned.CompareAndSwap(false, true) {
		return
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.closeConn(l.Conn)
	} else {
		p.idle = append(p.idle, l.Conn)
		p.mu.Unlock()
	}

	p.inUse.Add(-1)
	p.released.Add(1)
	p.sem.Release(1)
}

// Stats reports pool usage
func (p *BoundedPool) Stats() PoolStats {
	p.mu.Lock()
	idle := int64(len(p.idle))
	p.mu.Unlock()

	return PoolStats{
		Size:     p.size,
		InUse:    p.inUse.Load(),
		Idle:     idle,
		Dialed:   p.dialed.Load(),
		Acquired: p.acquired.Load(),
		Released: p.released.Load(),
		Failed:   p.failed.Load(),
	}
}

// Close disposes of idle connections; leased ones are disposed of on release
func (p *BoundedPool) Close(_ context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	idle := p.idle
	p.idle = nil
	p.mu.Unlock()

	for _, conn := range idle {
		p.closeConn(conn)
	}
	return nil
}
