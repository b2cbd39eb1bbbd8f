package repository

import (
	"context"
	"errors"
	"time"

	"github.com/amiyamandal-dev/blogapi/internal/domain"
)

// Conn is a live store connection leased from a Pool for one operation.
// Each method is a single request against the store with a single atomic effect.
type Conn interface {
	// FindArticle reads the article with the given name
	FindArticle(ctx context.Context, name string) (*domain.Article, error)

	// IncrementUpvotes adds delta to the stored counter server-side and returns the result
	IncrementUpvotes(ctx context.Context, name string, delta int64) (*domain.Article, error)

	// PushComment appends the comment to the stored sequence server-side and returns the result
	PushComment(ctx context.Context, name string, comment domain.Comment) (*domain.Article, error)
}

// Pool hands out connections with acquire/release semantics
type Pool interface {
	// Acquire blocks until a connection is available or ctx is done
	Acquire(ctx context.Context) (Conn, error)

	// Release returns a connection obtained from Acquire
	Release(conn Conn)

	// Stats reports pool usage
	Stats() PoolStats

	// Close releases every idle connection and rejects further acquires
	Close(ctx context.Context) error
}

// Scope runs operations against a connection that is acquired for, and
// released after, exactly one call.
type Scope struct {
	pool           Pool
	acquireTimeout time.Duration
	opTimeout      time.Duration
}

// NewScope creates a connection scope over pool. Zero timeouts leave the
// caller's deadline as the only bound.
func NewScope(pool Pool, acquireTimeout, opTimeout time.Duration) *Scope {
	return &Scope{
		pool:           pool,
		acquireTimeout: acquireTimeout,
		opTimeout:      opTimeout,
	}
}

// WithConnection acquires a connection, passes it to fn and releases it on
// every exit path. Acquisition failures become *domain.ConnectivityError and
// fn is not called. Errors from fn keep their not-found and invalid-input
// identity; anything else is reported as a connectivity error.
func WithConnection[T any](ctx context.Context, s *Scope, op string, fn func(ctx context.Context, conn Conn) (T, error)) (T, error) {
	var zero T

	acquireCtx, cancelAcquire := withOptionalTimeout(ctx, s.acquireTimeout)
	conn, err := s.pool.Acquire(acquireCtx)
	cancelAcquire()
	if err != nil {
		return zero, domain.NewConnectivityError(op, err)
	}
	defer s.pool.Release(conn)

	opCtx, cancelOp := withOptionalTimeout(ctx, s.opTimeout)
	defer cancelOp()

	result, err := fn(opCtx, conn)
	if err != nil {
		return zero, translateError(op, err)
	}
	return result, nil
}

func translateError(op string, err error) error {
	var connErr *domain.ConnectivityError
	switch {
	case errors.Is(err, domain.ErrArticleNotFound), errors.Is(err, domain.ErrInvalidInput):
		return err
	case errors.As(err, &connErr):
		return err
	default:
		return domain.NewConnectivityError(op, err)
	}
}

func withOptionalTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
