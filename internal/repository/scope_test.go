package repository

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amiyamandal-dev/blogapi/internal/domain"
)

// memConn is a Conn over a shared in-memory map, used to observe scope behaviour
type memConn struct {
	mu       *sync.Mutex
	articles map[string]*domain.Article
	fail     error
	delay    time.Duration
}

func (c *memConn) wait(ctx context.Context) error {
	if c.fail != nil {
		return c.fail
	}
	if c.delay == 0 {
		return nil
	}
	select {
	case <-time.After(c.delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *memConn) FindArticle(ctx context.Context, name string) (*domain.Article, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	a, ok := c.articles[name]
	if !ok {
		return nil, domain.ErrArticleNotFound
	}
	cp := *a
	cp.Comments = append([]domain.Comment(nil), a.Comments...)
	return &cp, nil
}

func (c *memConn) IncrementUpvotes(ctx context.Context, name string, delta int64) (*domain.Article, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	c.mu.Lock()
	a, ok := c.articles[name]
	if ok {
		a.Upvotes += delta
	}
	c.mu.Unlock()
	if !ok {
		return nil, domain.ErrArticleNotFound
	}
	return c.FindArticle(ctx, name)
}

func (c *memConn) PushComment(ctx context.Context, name string, comment domain.Comment) (*domain.Article, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	c.mu.Lock()
	a, ok := c.articles[name]
	if ok {
		a.Comments = append(a.Comments, comment)
	}
	c.mu.Unlock()
	if !ok {
		return nil, domain.ErrArticleNotFound
	}
	return c.FindArticle(ctx, name)
}

// countingPool records every acquire and release
type countingPool struct {
	conn       *memConn
	acquireErr error
	acquired   atomic.Int64
	released   atomic.Int64
}

func newCountingPool(articles ...*domain.Article) *countingPool {
	m := make(map[string]*domain.Article, len(articles))
	for _, a := range articles {
		m[a.Name] = a
	}
	return &countingPool{conn: &memConn{mu: &sync.Mutex{}, articles: m}}
}

func (p *countingPool) Acquire(ctx context.Context) (Conn, error) {
	if p.acquireErr != nil {
		return nil, p.acquireErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.acquired.Add(1)
	return p.conn, nil
}

func (p *countingPool) Release(Conn) { p.released.Add(1) }

func (p *countingPool) Stats() PoolStats {
	return PoolStats{Acquired: uint64(p.acquired.Load()), Released: uint64(p.released.Load())}
}

func (p *countingPool) Close(context.Context) error { return nil }

func TestWithConnectionReleasesOnSuccess(t *testing.T) {
	pool := newCountingPool(&domain.Article{Name: "learn-react"})
	scope := NewScope(pool, time.Second, time.Second)

	article, err := WithConnection(context.Background(), scope, OpFetch, func(ctx context.Context, conn Conn) (*domain.Article, error) {
		return conn.FindArticle(ctx, "learn-react")
	})
	require.NoError(t, err)
	assert.Equal(t, "learn-react", article.Name)
	assert.EqualValues(t, 1, pool.acquired.Load())
	assert.EqualValues(t, 1, pool.released.Load())
}

func TestWithConnectionReleasesOnNotFound(t *testing.T) {
	pool := newCountingPool()
	scope := NewScope(pool, 0, 0)

	_, err := WithConnection(context.Background(), scope, OpFetch, func(ctx context.Context, conn Conn) (*domain.Article, error) {
		return conn.FindArticle(ctx, "missing")
	})
	assert.ErrorIs(t, err, domain.ErrArticleNotFound)
	assert.Equal(t, domain.OutcomeNotFound, domain.Classify(err))
	assert.EqualValues(t, 1, pool.released.Load())
}

func TestWithConnectionTranslatesStoreFaults(t *testing.T) {
	pool := newCountingPool()
	pool.conn.fail = errors.New("connection reset by peer 10.1.2.3:27017")
	scope := NewScope(pool, 0, 0)

	_, err := WithConnection(context.Background(), scope, OpUpvote, func(ctx context.Context, conn Conn) (*domain.Article, error) {
		return conn.IncrementUpvotes(ctx, "learn-react", 1)
	})
	require.Error(t, err)
	assert.Equal(t, domain.OutcomeConnectivity, domain.Classify(err))
	assert.NotContains(t, err.Error(), "10.1.2.3")
	assert.Equal(t, pool.conn.fail, domain.CauseOf(err))
	assert.EqualValues(t, 1, pool.released.Load())
}

func TestWithConnectionSkipsOperationWhenAcquireFails(t *testing.T) {
	pool := newCountingPool()
	pool.acquireErr = errors.New("server selection timeout")
	scope := NewScope(pool, 0, 0)

	called := false
	_, err := WithConnection(context.Background(), scope, OpFetch, func(ctx context.Context, conn Conn) (*domain.Article, error) {
		called = true
		return nil, nil
	})
	assert.False(t, called)
	assert.Equal(t, domain.OutcomeConnectivity, domain.Classify(err))
	assert.EqualValues(t, 0, pool.acquired.Load())
	assert.EqualValues(t, 0, pool.released.Load())
}

func TestWithConnectionOperationTimeout(t *testing.T) {
	pool := newCountingPool(&domain.Article{Name: "learn-react"})
	pool.conn.delay = time.Second
	scope := NewScope(pool, 0, 20*time.Millisecond)

	start := time.Now()
	_, err := WithConnection(context.Background(), scope, OpFetch, func(ctx context.Context, conn Conn) (*domain.Article, error) {
		return conn.FindArticle(ctx, "learn-react")
	})
	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.Equal(t, domain.OutcomeConnectivity, domain.Classify(err))
	assert.ErrorIs(t, domain.CauseOf(err), context.DeadlineExceeded)
	assert.EqualValues(t, 1, pool.released.Load())
}

func TestWithConnectionReleasesOnPanic(t *testing.T) {
	pool := newCountingPool()
	scope := NewScope(pool, 0, 0)

	assert.Panics(t, func() {
		_, _ = WithConnection(context.Background(), scope, OpFetch, func(ctx context.Context, conn Conn) (int, error) {
			panic("boom")
		})
	})
	assert.EqualValues(t, 1, pool.acquired.Load())
	assert.EqualValues(t, 1, pool.released.Load())
}
