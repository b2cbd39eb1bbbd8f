package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/amiyamandal-dev/blogapi/internal/domain"
)

// articleConn implements repository.Conn with a session on the articles collection
type articleConn struct {
	articles *mongo.Collection
	sess     *mongo.Session
}

func byName(name string) bson.D {
	return bson.D{{Key: "name", Value: name}}
}

// FindArticle retrieves an article by name
func (c *articleConn) FindArticle(ctx context.Context, name string) (*domain.Article, error) {
	ctx = mongo.NewSessionContext(ctx, c.sess)
	return decodeArticle(c.articles.FindOne(ctx, byName(name)), name)
}

// IncrementUpvotes applies $inc server-side and returns the updated document
func (c *articleConn) IncrementUpvotes(ctx context.Context, name string, delta int64) (*domain.Article, error) {
	update := bson.D{{Key: "$inc", Value: bson.D{{Key: "upvotes", Value: delta}}}}
	return c.findOneAndUpdate(ctx, name, update)
}

// PushComment applies $push server-side and returns the updated document
func (c *articleConn) PushComment(ctx context.Context, name string, comment domain.Comment) (*domain.Article, error) {
	update := bson.D{{Key: "$push", Value: bson.D{{Key: "comments", Value: comment}}}}
	return c.findOneAndUpdate(ctx, name, update)
}

// findOneAndUpdate never upserts: a missing article stays missing
func (c *articleConn) findOneAndUpdate(ctx context.Context, name string, update bson.D) (*domain.Article, error) {
	ctx = mongo.NewSessionContext(ctx, c.sess)
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetUpsert(false)
	return decodeArticle(c.articles.FindOneAndUpdate(ctx, byName(name), update, opts), name)
}

func decodeArticle(res *mongo.SingleResult, name string) (*domain.Article, error) {
	var article domain.Article
	if err := res.Decode(&article); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrArticleNotFound
		}
		return nil, fmt.Errorf("failed to read article %q: %w", name, err)
	}
	if article.Comments == nil {
		article.Comments = []domain.Comment{}
	}
	return &article, nil
}

// ArticleSeeder provisions articles into MongoDB
type ArticleSeeder struct {
	db *DB
}

// NewArticleSeeder creates a new MongoDB-based article seeder
func NewArticleSeeder(db *DB) *ArticleSeeder {
	return &ArticleSeeder{db: db}
}

// Seed ensures the name index and upserts every article by name
func (s *ArticleSeeder) Seed(ctx context.Context, articles []*domain.Article) (int, error) {
	if len(articles) == 0 {
		return 0, nil
	}

	models := make([]mongo.WriteModel, 0, len(articles))
	for _, article := range articles {
		if err := article.Validate(); err != nil {
			return 0, err
		}
		if article.Comments == nil {
			article.Comments = []domain.Comment{}
		}
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(byName(article.Name)).
			SetReplacement(article).
			SetUpsert(true))
	}

	if err := s.db.EnsureIndexes(ctx); err != nil {
		return 0, err
	}

	res, err := s.db.articles.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(true))
	if err != nil {
		return 0, fmt.Errorf("failed to seed articles: %w", err)
	}
	return int(res.UpsertedCount + res.MatchedCount), nil
}
