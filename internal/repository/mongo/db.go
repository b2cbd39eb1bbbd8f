package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/amiyamandal-dev/blogapi/internal/repository"
)

// errUnreachable marks failed pings
var errUnreachable = errors.New("mongodb server unreachable")

// Options configures the MongoDB article store
type Options struct {
	URI            string
	Database       string
	Collection     string
	PoolSize       int
	ConnectTimeout time.Duration
}

// DB wraps a MongoDB client bound to the articles collection
type DB struct {
	client      *mongo.Client
	articles    *mongo.Collection
	pingTimeout time.Duration
}

// New creates a MongoDB client. The driver connects lazily; use HealthCheck
// to verify the server is reachable.
func New(opts Options) (*DB, error) {
	if opts.PoolSize < 1 {
		opts.PoolSize = 1
	}

	clientOpts := options.Client().
		ApplyURI(opts.URI).
		SetMaxPoolSize(uint64(opts.PoolSize)).
		SetBSONOptions(&options.BSONOptions{
			DefaultDocumentM: true,
			NilSliceAsEmpty:  true,
		})
	if opts.ConnectTimeout > 0 {
		clientOpts.SetConnectTimeout(opts.ConnectTimeout).
			SetServerSelectionTimeout(opts.ConnectTimeout)
	}

	client, err := mongo.Connect(clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create mongodb client: %w", err)
	}

	return &DB{
		client:      client,
		articles:    client.Database(opts.Database).Collection(opts.Collection),
		pingTimeout: opts.ConnectTimeout,
	}, nil
}

// NewPool creates a bounded pool of sessions. A new session is only handed
// out after the server answered a ping; idle sessions are reused.
func NewPool(db *DB, size int) (*repository.BoundedPool, error) {
	dial := func(ctx context.Context) (repository.Conn, error) {
		if err := db.HealthCheck(ctx); err != nil {
			return nil, err
		}
		sess, err := db.client.StartSession()
		if err != nil {
			return nil, fmt.Errorf("failed to start session: %w", err)
		}
		return &articleConn{articles: db.articles, sess: sess}, nil
	}
	release := func(conn repository.Conn) {
		if c, ok := conn.(*articleConn); ok {
			c.sess.EndSession(context.Background())
		}
	}
	return repository.NewBoundedPool(size, dial, release)
}

// EnsureIndexes creates the unique index on the article name
func (db *DB) EnsureIndexes(ctx context.Context) error {
	_, err := db.articles.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("articles_name_unique"),
	})
	if err != nil {
		return fmt.Errorf("failed to create name index: %w", err)
	}
	return nil
}

// HealthCheck pings the primary
func (db *DB) HealthCheck(ctx context.Context) error {
	if db.pingTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, db.pingTimeout)
		defer cancel()
	}
	if err := db.client.Ping(ctx, readpref.Primary()); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %w", errUnreachable, err)
	}
	return nil
}

// Close disconnects the client
func (db *DB) Close(ctx context.Context) error {
	return db.client.Disconnect(ctx)
}
