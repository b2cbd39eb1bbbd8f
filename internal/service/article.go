package service

import (
	"context"
	"time"

	"github.com/amiyamandal-dev/blogapi/internal/domain"
	"github.com/amiyamandal-dev/blogapi/internal/metrics"
	"github.com/amiyamandal-dev/blogapi/internal/repository"
	"github.com/amiyamandal-dev/blogapi/pkg/logger"
)

// RetryPolicy bounds retries of idempotent reads
type RetryPolicy struct {
	Attempts int           // extra attempts after the first
	Backoff  time.Duration // wait before the first retry, doubled each time
}

// ArticleService handles article-related business logic
type ArticleService struct {
	articleRepo repository.ArticleRepository
	metrics     *metrics.Registry
	retry       RetryPolicy
	logger      *logger.Logger
}

// NewArticleService creates a new article service
func NewArticleService(
	articleRepo repository.ArticleRepository,
	registry *metrics.Registry,
	retry RetryPolicy,
	logger *logger.Logger,
) *ArticleService {
	if registry == nil {
		registry = metrics.New()
	}
	return &ArticleService{
		articleRepo: articleRepo,
		metrics:     registry,
		retry:       retry,
		logger:      logger.WithComponent("article-service"),
	}
}

// GetByName retrieves an article by name. Connectivity failures are retried
// because the read has no side effects.
func (s *ArticleService) GetByName(ctx context.Context, name string) (*domain.Article, error) {
	start := time.Now()

	article, err := s.articleRepo.GetByName(ctx, name)
	backoff := s.retry.Backoff
	for attempt := 1; attempt <= s.retry.Attempts && domain.Classify(err) == domain.OutcomeConnectivity; attempt++ {
		s.logger.Warn("Retrying article fetch",
			"name", name,
			"attempt", attempt,
			"error", domain.CauseOf(err),
		)
		s.metrics.ObserveRetry(repository.OpFetch)

		select {
		case <-ctx.Done():
			s.observe(repository.OpFetch, name, start, err)
			return nil, err
		case <-time.After(backoff):
		}
		backoff *= 2

		article, err = s.articleRepo.GetByName(ctx, name)
	}

	s.observe(repository.OpFetch, name, start, err)
	if err != nil {
		return nil, err
	}
	return article, nil
}

// Upvote adds one upvote to the article. It is not retried: a timed out
// upvote may already have been applied.
func (s *ArticleService) Upvote(ctx context.Context, name string) (*domain.Article, error) {
	start := time.Now()

	article, err := s.articleRepo.IncrementUpvotes(ctx, name)
	s.observe(repository.OpUpvote, name, start, err)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Article upvoted", "name", name, "upvotes", article.Upvotes)
	return article, nil
}

// AddComment appends a comment to the article. Like Upvote it is not retried.
func (s *ArticleService) AddComment(ctx context.Context, name string, req *domain.CommentRequest) (*domain.Article, error) {
	start := time.Now()

	article, err := s.articleRepo.AppendComment(ctx, name, req.ToComment())
	s.observe(repository.OpComment, name, start, err)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Comment added",
		"name", name,
		"username", req.Username,
		"comments", len(article.Comments),
	)
	return article, nil
}

// observe records metrics and logs failures that are not the caller's fault
func (s *ArticleService) observe(op, name string, start time.Time, err error) {
	outcome := domain.Classify(err)
	s.metrics.ObserveOperation(op, outcome, start)

	switch outcome {
	case domain.OutcomeSuccess:
		s.logger.Debug("Article operation succeeded", "op", op, "name", name, "duration", time.Since(start))
	case domain.OutcomeNotFound, domain.OutcomeInvalidInput:
		s.logger.Debug("Article operation rejected", "op", op, "name", name, "outcome", outcome.String(), "error", err)
	default:
		s.logger.Error("Article operation failed",
			"op", op,
			"name", name,
			"outcome", outcome.String(),
			"error", domain.CauseOf(err),
		)
	}
}
