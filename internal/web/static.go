package web

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/amiyamandal-dev/blogapi/pkg/logger"
	"github.com/amiyamandal-dev/blogapi/pkg/response"
)

const indexFile = "index.html"

// StaticHandler serves the compiled single-page app. Paths that do not name
// a file fall back to index.html so client-side routes can be deep-linked.
type StaticHandler struct {
	root   string
	logger *logger.Logger
}

// NewStaticHandler creates a handler serving files below root
func NewStaticHandler(root string, log *logger.Logger) *StaticHandler {
	h := &StaticHandler{
		root:   root,
		logger: log.WithComponent("static"),
	}
	if _, err := os.Stat(filepath.Join(root, indexFile)); err != nil {
		h.logger.Warn("No index.html in static directory, only API routes will answer", "dir", root)
	}
	return h
}

// Serve is installed as the router's NoRoute handler
func (h *StaticHandler) Serve(c *gin.Context) {
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		response.NotFound(c, "Not found")
		return
	}
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		response.NotFound(c, "Not found")
		return
	}

	// Clean against "/" so the result never escapes root
	rel := path.Clean("/" + c.Request.URL.Path)
	if file, ok := h.regularFile(rel); ok {
		c.File(file)
		return
	}

	if index, ok := h.regularFile("/" + indexFile); ok {
		c.File(index)
		return
	}

	response.NotFound(c, "Not found")
}

func (h *StaticHandler) regularFile(rel string) (string, bool) {
	if rel == "/" {
		return "", false
	}
	full := filepath.Join(h.root, filepath.FromSlash(rel))
	info, err := os.Stat(full)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	return full, true
}
