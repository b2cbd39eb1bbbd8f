package handlers

import (
	"html"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"

	"github.com/amiyamandal-dev/blogapi/internal/api/middleware"
	"github.com/amiyamandal-dev/blogapi/internal/domain"
	"github.com/amiyamandal-dev/blogapi/internal/service"
	"github.com/amiyamandal-dev/blogapi/pkg/logger"
	"github.com/amiyamandal-dev/blogapi/pkg/response"
)

// ArticleHandler handles article-related requests
type ArticleHandler struct {
	articleService *service.ArticleService
	sanitizer      *bluemonday.Policy
	logger         *logger.Logger
}

// NewArticleHandler creates a new article handler
func NewArticleHandler(articleService *service.ArticleService, logger *logger.Logger) *ArticleHandler {
	return &ArticleHandler{
		articleService: articleService,
		sanitizer:      bluemonday.StrictPolicy(),
		logger:         logger.WithComponent("article-handler"),
	}
}

// GetByName returns the article stored under :name
func (h *ArticleHandler) GetByName(c *gin.Context) {
	name := c.Param("name")

	article, err := h.articleService.GetByName(c.Request.Context(), name)
	if err != nil {
		h.fail(c, "fetch", name, err)
		return
	}

	response.Document(c, article)
}

// Upvote adds one upvote to :name and returns the updated article
func (h *ArticleHandler) Upvote(c *gin.Context) {
	name := c.Param("name")

	article, err := h.articleService.Upvote(c.Request.Context(), name)
	if err != nil {
		h.fail(c, "upvote", name, err)
		return
	}

	response.Document(c, article)
}

// AddComment appends the comment in the request body to :name
func (h *ArticleHandler) AddComment(c *gin.Context) {
	name := c.Param("name")

	var req domain.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	req.Username = h.stripMarkup(req.Username)
	req.Text = h.stripMarkup(req.Text)

	article, err := h.articleService.AddComment(c.Request.Context(), name, &req)
	if err != nil {
		h.fail(c, "comment", name, err)
		return
	}

	response.Document(c, article)
}

// stripMarkup removes HTML tags but keeps the text as typed. Text without
// '<' cannot hold a tag and is left alone. Otherwise the policy's escaped
// output is decoded again so the front-end escapes it exactly once.
func (h *ArticleHandler) stripMarkup(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}
	return html.UnescapeString(h.sanitizer.Sanitize(s))
}

func (h *ArticleHandler) fail(c *gin.Context, op, name string, err error) {
	if response.StatusFor(err) >= http.StatusInternalServerError {
		_ = c.Error(err)
		h.logger.Warn("Article request failed",
			"op", op,
			"name", name,
			"request_id", middleware.GetRequestID(c),
			"error", domain.CauseOf(err),
		)
	}
	response.FromError(c, err)
}
