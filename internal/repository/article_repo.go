package repository

import (
	"context"

	"github.com/amiyamandal-dev/blogapi/internal/domain"
)

// ArticleRepository defines the operations available on the articles collection.
// Every operation returns either the article or an error that classifies as
// domain.OutcomeNotFound, domain.OutcomeInvalidInput or domain.OutcomeConnectivity.
type ArticleRepository interface {
	// GetByName retrieves an article by its name
	GetByName(ctx context.Context, name string) (*domain.Article, error)

	// IncrementUpvotes atomically adds one upvote and returns the updated article
	IncrementUpvotes(ctx context.Context, name string) (*domain.Article, error)

	// AppendComment atomically appends a comment and returns the updated article
	AppendComment(ctx context.Context, name string, comment domain.Comment) (*domain.Article, error)
}

// Seeder provisions articles out-of-band. It is not part of ArticleRepository
// because the request path never creates articles.
type Seeder interface {
	// Seed inserts or replaces the given articles by name and reports how many were written
	Seed(ctx context.Context, articles []*domain.Article) (int, error)
}
