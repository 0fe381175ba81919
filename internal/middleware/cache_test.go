package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rakibul/healthdir-api/internal/middleware"
)

type directoryBackend struct {
	doctors []string
}

func newCachedDirectory(cache *middleware.ResponseCache, backend *directoryBackend) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	public := r.Group("/doctors")
	public.Use(cache.Cache())
	public.GET("", func(c *gin.Context) {
		c.JSON(http.StatusOK, backend.doctors)
	})

	admin := r.Group("/admin")
	admin.Use(cache.Invalidate())
	admin.POST("/doctors/:id/reject", func(c *gin.Context) {
		backend.doctors = nil
		c.JSON(http.StatusOK, gin.H{"verification_status": "rejected"})
	})
	admin.POST("/doctors/:id/broken", func(c *gin.Context) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
	})
	admin.GET("/doctors/pending", func(c *gin.Context) {
		c.JSON(http.StatusOK, backend.doctors)
	})

	return r
}

func get(r *gin.Engine, url string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, url, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func post(r *gin.Engine, url string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, url, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCacheServesRepeatedReads(t *testing.T) {
	backend := &directoryBackend{doctors: []string{"dr-rahman"}}
	r := newCachedDirectory(middleware.NewResponseCache(time.Minute), backend)

	first := get(r, "/doctors")
	require.Equal(t, http.StatusOK, first.Code)
	assert.Contains(t, first.Body.String(), "dr-rahman")

	// Backing data changes without an API mutation; the cached body wins
	// until the TTL expires.
	backend.doctors = nil
	second := get(r, "/doctors")
	assert.Contains(t, second.Body.String(), "dr-rahman")
}

func TestMutationFlushesDirectoryCache(t *testing.T) {
	backend := &directoryBackend{doctors: []string{"dr-rahman"}}
	r := newCachedDirectory(middleware.NewResponseCache(time.Minute), backend)

	warm := get(r, "/doctors")
	require.Contains(t, warm.Body.String(), "dr-rahman")

	rejected := post(r, "/admin/doctors/1/reject")
	require.Equal(t, http.StatusOK, rejected.Code)

	after := get(r, "/doctors")
	require.Equal(t, http.StatusOK, after.Code)
	assert.NotContains(t, after.Body.String(), "dr-rahman")
}

func TestFailedMutationKeepsCache(t *testing.T) {
	backend := &directoryBackend{doctors: []string{"dr-rahman"}}
	r := newCachedDirectory(middleware.NewResponseCache(time.Minute), backend)

	get(r, "/doctors")
	backend.doctors = nil

	broken := post(r, "/admin/doctors/1/broken")
	require.Equal(t, http.StatusBadRequest, broken.Code)

	after := get(r, "/doctors")
	assert.Contains(t, after.Body.String(), "dr-rahman")
}

func TestReadsOnMutatingGroupDoNotFlush(t *testing.T) {
	backend := &directoryBackend{doctors: []string{"dr-rahman"}}
	r := newCachedDirectory(middleware.NewResponseCache(time.Minute), backend)

	get(r, "/doctors")
	backend.doctors = nil

	pending := get(r, "/admin/doctors/pending")
	require.Equal(t, http.StatusOK, pending.Code)

	after := get(r, "/doctors")
	assert.Contains(t, after.Body.String(), "dr-rahman")
}
