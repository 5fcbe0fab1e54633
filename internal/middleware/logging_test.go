package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLoggedRouter(quiet ...string) (*gin.Engine, *logrustest.Hook) {
	gin.SetMode(gin.TestMode)
	logger, hook := logrustest.NewNullLogger()
	router := gin.New()
	router.Use(RequestLogger(logger, quiet...))
	return router, hook
}

func TestRequestLogger_LogsServedRequests(t *testing.T) {
	router, hook := newLoggedRouter()
	router.GET("/api/v1/recommendations/:userId", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/recommendations/user-1", nil))

	require.Len(t, hook.Entries, 1)
	entry := hook.LastEntry()
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, http.StatusOK, entry.Data["status"])
	assert.Equal(t, "user-1", entry.Data["user_id"])
	assert.Equal(t, "/api/v1/recommendations/user-1", entry.Data["path"])
}

func TestRequestLogger_QuietPathsStaySilent(t *testing.T) {
	router, hook := newLoggedRouter("/health", "/metrics")
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Empty(t, hook.Entries)
}

func TestRequestLogger_LevelTracksStatus(t *testing.T) {
	router, hook := newLoggedRouter()
	router.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	router.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/bad", nil))
	require.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.Len(t, hook.Entries, 2)
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}
