package repository

import (
	"context"
	"strings"

	"github.com/amiyamandal-dev/blogapi/internal/domain"
	"github.com/amiyamandal-dev/blogapi/internal/validator"
)

// Operation names used in errors, logs and metrics
const (
	OpFetch   = "fetch"
	OpUpvote  = "upvote"
	OpComment = "comment"
)

// ArticleStore implements ArticleRepository on top of a connection scope.
// It holds no locks: concurrent mutations of one article are serialized by
// the store's atomic increment and push primitives.
type ArticleStore struct {
	scope     *Scope
	validator *validator.Validator
}

// NewArticleStore creates a new article store
func NewArticleStore(scope *Scope, v *validator.Validator) *ArticleStore {
	if v == nil {
		v = validator.New()
	}
	return &ArticleStore{scope: scope, validator: v}
}

// GetByName retrieves an article by its name
func (s *ArticleStore) GetByName(ctx context.Context, name string) (*domain.Article, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}

	return WithConnection(ctx, s.scope, OpFetch, func(ctx context.Context, conn Conn) (*domain.Article, error) {
		return conn.FindArticle(ctx, name)
	})
}

// IncrementUpvotes adds one upvote and returns the updated article
func (s *ArticleStore) IncrementUpvotes(ctx context.Context, name string) (*domain.Article, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}

	return WithConnection(ctx, s.scope, OpUpvote, func(ctx context.Context, conn Conn) (*domain.Article, error) {
		return conn.IncrementUpvotes(ctx, name, 1)
	})
}

// AppendComment appends a comment and returns the updated article.
// Invalid comments are rejected before a connection is acquired.
func (s *ArticleStore) AppendComment(ctx context.Context, name string, comment domain.Comment) (*domain.Article, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}

	comment, err = s.validator.ValidateComment(comment)
	if err != nil {
		return nil, err
	}

	return WithConnection(ctx, s.scope, OpComment, func(ctx context.Context, conn Conn) (*domain.Article, error) {
		return conn.PushComment(ctx, name, comment)
	})
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", domain.NewValidationError("name", "is required")
	}
	return name, nil
}
