package badger

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/amiyamandal-dev/blogapi/internal/domain"
)

func articleKey(name string) []byte {
	return []byte(fmt.Sprintf("article:name:%s", name))
}

// articleConn implements repository.Conn over a shared BadgerDB handle
type articleConn struct {
	db *DB
}

// FindArticle retrieves an article by name
func (c *articleConn) FindArticle(ctx context.Context, name string) (*domain.Article, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var article *domain.Article
	err := c.db.View(func(txn *badger.Txn) error {
		var err error
		article, err = getArticle(txn, name)
		return err
	})
	if err != nil {
		return nil, err
	}
	return article, nil
}

// IncrementUpvotes adds delta to the upvote counter in one conflict-checked transaction
func (c *articleConn) IncrementUpvotes(ctx context.Context, name string, delta int64) (*domain.Article, error) {
	return c.mutate(ctx, name, func(article *domain.Article) {
		article.Upvotes += delta
	})
}

// PushComment appends a comment in one conflict-checked transaction
func (c *articleConn) PushComment(ctx context.Context, name string, comment domain.Comment) (*domain.Article, error) {
	return c.mutate(ctx, name, func(article *domain.Article) {
		article.Comments = append(article.Comments, comment)
	})
}

// mutate applies fn to the stored article inside a single transaction.
// Badger has no server-side $inc or $push, so this read-modify-write stands
// in for them: the transaction is serializable, a commit that raced another
// writer fails with ErrConflict and updateWithRetry re-runs fn against the
// new value. No update is lost.
func (c *articleConn) mutate(ctx context.Context, name string, fn func(article *domain.Article)) (*domain.Article, error) {
	var updated *domain.Article
	err := c.db.updateWithRetry(ctx, func(txn *badger.Txn) error {
		article, err := getArticle(txn, name)
		if err != nil {
			return err
		}
		fn(article)
		if err := putArticle(txn, article); err != nil {
			return err
		}
		updated = article
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func getArticle(txn *badger.Txn, name string) (*domain.Article, error) {
	item, err := txn.Get(articleKey(name))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, domain.ErrArticleNotFound
		}
		return nil, err
	}

	var article *domain.Article
	err = item.Value(func(val []byte) error {
		var err error
		article, err = domain.FromJSON(val)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to decode article %q: %w", name, err)
	}
	if article.Comments == nil {
		article.Comments = []domain.Comment{}
	}
	return article, nil
}

func putArticle(txn *badger.Txn, article *domain.Article) error {
	data, err := article.ToJSON()
	if err != nil {
		return err
	}
	return txn.Set(articleKey(article.Name), data)
}

// ArticleSeeder provisions articles directly into BadgerDB
type ArticleSeeder struct {
	db *DB
}

// NewArticleSeeder creates a new BadgerDB-based article seeder
func NewArticleSeeder(db *DB) *ArticleSeeder {
	return &ArticleSeeder{db: db}
}

// Seed writes every article in one transaction, replacing existing ones by name
func (s *ArticleSeeder) Seed(ctx context.Context, articles []*domain.Article) (int, error) {
	for _, article := range articles {
		if err := article.Validate(); err != nil {
			return 0, err
		}
	}

	err := s.db.updateWithRetry(ctx, func(txn *badger.Txn) error {
		for _, article := range articles {
			if article.Comments == nil {
				article.Comments = []domain.Comment{}
			}
			if err := putArticle(txn, article); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(articles), nil
}
