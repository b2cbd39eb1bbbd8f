package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amiyamandal-dev/blogapi/internal/domain"
	"github.com/amiyamandal-dev/blogapi/pkg/logger"
)

// scriptedRepo fails the first `failures` calls with a connectivity error
type scriptedRepo struct {
	failures int
	calls    map[string]int
	comment  domain.Comment
}

func newScriptedRepo(failures int) *scriptedRepo {
	return &scriptedRepo{failures: failures, calls: map[string]int{}}
}

func (r *scriptedRepo) next(op, name string) (*domain.Article, error) {
	r.calls[op]++
	if r.calls[op] <= r.failures {
		return nil, domain.NewConnectivityError(op, errors.New("socket closed"))
	}
	if name == "missing" {
		return nil, domain.ErrArticleNotFound
	}
	return &domain.Article{Name: name, Upvotes: 1}, nil
}

func (r *scriptedRepo) GetByName(_ context.Context, name string) (*domain.Article, error) {
	return r.next("fetch", name)
}

func (r *scriptedRepo) IncrementUpvotes(_ context.Context, name string) (*domain.Article, error) {
	return r.next("upvote", name)
}

func (r *scriptedRepo) AppendComment(_ context.Context, name string, c domain.Comment) (*domain.Article, error) {
	r.comment = c
	a, err := r.next("comment", name)
	if err == nil {
		a.Comments = []domain.Comment{c}
	}
	return a, err
}

func newTestService(repo *scriptedRepo, attempts int) *ArticleService {
	return NewArticleService(repo, nil, RetryPolicy{Attempts: attempts, Backoff: time.Millisecond}, logger.NewNop())
}

func TestGetByNameRetriesConnectivityErrors(t *testing.T) {
	repo := newScriptedRepo(2)
	svc := newTestService(repo, 2)

	article, err := svc.GetByName(context.Background(), "learn-react")
	require.NoError(t, err)
	assert.Equal(t, "learn-react", article.Name)
	assert.Equal(t, 3, repo.calls["fetch"])
}

func TestGetByNameGivesUpAfterRetries(t *testing.T) {
	repo := newScriptedRepo(5)
	svc := newTestService(repo, 2)

	_, err := svc.GetByName(context.Background(), "learn-react")
	assert.Equal(t, domain.OutcomeConnectivity, domain.Classify(err))
	assert.Equal(t, 3, repo.calls["fetch"])
}

func TestGetByNameDoesNotRetryNotFound(t *testing.T) {
	repo := newScriptedRepo(0)
	svc := newTestService(repo, 3)

	_, err := svc.GetByName(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrArticleNotFound)
	assert.Equal(t, 1, repo.calls["fetch"])
}

func TestGetByNameStopsRetryingWhenContextDone(t *testing.T) {
	repo := newScriptedRepo(10)
	svc := NewArticleService(repo, nil, RetryPolicy{Attempts: 5, Backoff: time.Hour}, logger.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := svc.GetByName(ctx, "learn-react")
	assert.Equal(t, domain.OutcomeConnectivity, domain.Classify(err))
	assert.Equal(t, 1, repo.calls["fetch"])
}

func TestMutationsAreNeverRetried(t *testing.T) {
	repo := newScriptedRepo(1)
	svc := newTestService(repo, 3)
	ctx := context.Background()

	_, err := svc.Upvote(ctx, "learn-react")
	assert.Equal(t, domain.OutcomeConnectivity, domain.Classify(err))
	assert.Equal(t, 1, repo.calls["upvote"])

	_, err = svc.AddComment(ctx, "learn-react", &domain.CommentRequest{Username: "bob", Text: "nice!"})
	assert.Equal(t, domain.OutcomeConnectivity, domain.Classify(err))
	assert.Equal(t, 1, repo.calls["comment"])
}

func TestAddCommentPassesTrimmedComment(t *testing.T) {
	repo := newScriptedRepo(0)
	svc := newTestService(repo, 0)

	article, err := svc.AddComment(context.Background(), "learn-react", &domain.CommentRequest{Username: " bob ", Text: " nice! "})
	require.NoError(t, err)
	assert.Equal(t, domain.Comment{Username: "bob", Text: "nice!"}, repo.comment)
	assert.Len(t, article.Comments, 1)
}
