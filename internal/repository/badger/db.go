package badger

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/amiyamandal-dev/blogapi/internal/repository"
)

// errDBClosed is returned when a connection is requested from a closed database
var errDBClosed = errors.New("badger db is closed")

// maxConflictBackoff caps the wait between retries of a conflicting transaction
const maxConflictBackoff = 50 * time.Millisecond

// DB wraps BadgerDB as an embedded article store
type DB struct {
	*badger.DB
}

// New creates a new BadgerDB instance
func New(dbPath string) (*DB, error) {
	opts := badger.DefaultOptions(dbPath)
	opts.Logger = nil // Disable badger's logger

	return open(opts)
}

// NewInMemory creates a BadgerDB instance that keeps all data in memory
func NewInMemory() (*DB, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil

	return open(opts)
}

func open(opts badger.Options) (*DB, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	return &DB{DB: db}, nil
}

// NewPool creates a bounded connection pool over the database
func NewPool(db *DB, size int) (*repository.BoundedPool, error) {
	return repository.NewBoundedPool(size, func(ctx context.Context) (repository.Conn, error) {
		if db.IsClosed() {
			return nil, errDBClosed
		}
		return &articleConn{db: db}, nil
	}, nil)
}

// Close closes the database
func (db *DB) Close() error {
	return db.DB.Close()
}

// HealthCheck checks if the database is healthy
func (db *DB) HealthCheck(_ context.Context) error {
	if db.IsClosed() {
		return errDBClosed
	}
	return db.View(func(txn *badger.Txn) error {
		return nil
	})
}

// updateWithRetry runs fn in a read-write transaction. Badger rejects the
// commit with ErrConflict when a key read by fn was written concurrently;
// the transaction is then re-run against the new value until ctx is done.
func (db *DB) updateWithRetry(ctx context.Context, fn func(txn *badger.Txn) error) error {
	backoff := time.Millisecond
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}

		wait := backoff/2 + time.Duration(rand.Int63n(int64(backoff/2+1)))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		if backoff < maxConflictBackoff {
			backoff *= 2
		}
	}
}
