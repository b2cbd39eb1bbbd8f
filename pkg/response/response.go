package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amiyamandal-dev/blogapi/internal/domain"
)

// Response represents a standard API envelope
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Document sends v as the whole response body. Article endpoints answer with
// the stored document itself, not an envelope.
func Document(c *gin.Context, v interface{}) {
	c.JSON(http.StatusOK, v)
}

// Error sends an error response
func Error(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Response{
		Success: false,
		Error:   message,
	})
}

// BadRequest sends a 400 Bad Request response
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// NotFound sends a 404 Not Found response
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

// TooManyRequests sends a 429 Too Many Requests response
func TooManyRequests(c *gin.Context, message string) {
	Error(c, http.StatusTooManyRequests, message)
}

// ServiceUnavailable sends a 503 Service Unavailable response
func ServiceUnavailable(c *gin.Context, message string) {
	Error(c, http.StatusServiceUnavailable, message)
}

// InternalServerError sends a 500 Internal Server Error response
func InternalServerError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}

// StatusFor maps a store error onto an HTTP status
func StatusFor(err error) int {
	switch domain.Classify(err) {
	case domain.OutcomeSuccess:
		return http.StatusOK
	case domain.OutcomeNotFound:
		return http.StatusNotFound
	case domain.OutcomeInvalidInput:
		return http.StatusBadRequest
	case domain.OutcomeConnectivity:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// FromError sends the error response matching err's outcome. Only caller
// errors carry their message; server-side failures get a fixed text.
func FromError(c *gin.Context, err error) {
	switch status := StatusFor(err); status {
	case http.StatusNotFound:
		NotFound(c, "Article not found")
	case http.StatusBadRequest:
		BadRequest(c, err.Error())
	case http.StatusServiceUnavailable:
		ServiceUnavailable(c, "Article store unavailable, please retry")
	default:
		InternalServerError(c, "Internal server error")
	}
}
