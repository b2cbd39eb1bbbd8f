package web

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amiyamandal-dev/blogapi/pkg/logger"
)

func setupStatic(t *testing.T, withIndex bool) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "static", "js"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "static", "js", "main.js"), []byte("console.log(1)"), 0o644))
	if withIndex {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<div id=root></div>"), 0o644))
	}

	r := gin.New()
	r.NoRoute(NewStaticHandler(dir, logger.NewNop()).Serve)
	return r
}

func get(r *gin.Engine, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func TestStaticServesFiles(t *testing.T) {
	r := setupStatic(t, true)

	w := get(r, http.MethodGet, "/static/js/main.js")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "console.log(1)", w.Body.String())
}

func TestStaticFallsBackToIndex(t *testing.T) {
	r := setupStatic(t, true)

	for _, target := range []string{"/", "/articles/learn-react", "/static/js"} {
		w := get(r, http.MethodGet, target)
		assert.Equal(t, http.StatusOK, w.Code, target)
		assert.Contains(t, w.Body.String(), "id=root", target)
	}
}

func TestStaticDoesNotEscapeRoot(t *testing.T) {
	r := setupStatic(t, false)

	w := get(r, http.MethodGet, "/../../etc/passwd")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStaticLeavesAPIPathsAlone(t *testing.T) {
	r := setupStatic(t, true)

	w := get(r, http.MethodGet, "/api/unknown")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"Not found"}`, w.Body.String())

	w = get(r, http.MethodPost, "/articles/learn-react")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStaticWithoutIndex(t *testing.T) {
	r := setupStatic(t, false)

	w := get(r, http.MethodGet, "/articles/learn-react")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
