package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/student-profile-api/internal/models"
	"github.com/noah-isme/student-profile-api/internal/service"
	appErrors "github.com/noah-isme/student-profile-api/pkg/errors"
)

type stubValidator struct{}

func (stubValidator) ValidateToken(token string) (*models.JWTClaims, error) {
	if token == "good" {
		return &models.JWTClaims{UserID: "u1", Email: "ana@example.com"}, nil
	}
	return nil, appErrors.Wrap(errors.New("bad"), appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
}

func newProtectedRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(JWT(stubValidator{}))
	r.GET("/me", func(c *gin.Context) {
		c.String(http.StatusOK, Claims(c).UserID)
	})
	return r
}

func TestJWTAcceptsBearerToken(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer good")
	newProtectedRouter().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", rec.Body.String())
}

func TestJWTMissingIdentity(t *testing.T) {
	rec := httptest.NewRecorder()
	newProtectedRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "MISSING_IDENTITY")
}

func TestUserLogFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Empty(t, UserLogFields(c))

	c.Set(ContextUserKey, &models.JWTClaims{UserID: "u1"})
	fields := UserLogFields(c)
	require.Len(t, fields, 1)
	assert.Equal(t, "u1", fields[0].String)
}

func TestJWTRejectsInvalidToken(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer bad")
	newProtectedRouter().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "UNAUTHORIZED")
}

func TestJWTQueryTokenOnlyForEventStreams(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me?access_token=good", nil)
	req.Header.Set("Accept", "text/event-stream")
	newProtectedRouter().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	newProtectedRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me?access_token=good", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestResponseMetaCacheHit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(WithResponseMeta())
	var meta map[string]interface{}
	r.GET("/", func(c *gin.Context) {
		SetCacheHit(c, true)
		meta = ExtractMeta(c)
		c.Status(http.StatusOK)
	})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.NotNil(t, meta)
	assert.Equal(t, true, meta[cacheHitKey])
}

func TestSetCacheHitWritesHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", func(c *gin.Context) {
		SetCacheHit(c, false)
		assert.Equal(t, false, ExtractMeta(c)[cacheHitKey])
		c.Status(http.StatusOK)
	})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "MISS", rec.Header().Get(cacheHeader))
}

func TestMetricsMiddlewareRecordsRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	r := gin.New()
	r.Use(Metrics(metrics))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	assert.Equal(t, uint64(2), metrics.Snapshot().RequestsTotal)
}

type recordingObserver struct {
	requests []string
	streams  []string
}

func (r *recordingObserver) ObserveHTTPRequest(method, path string, _ int, _ time.Duration) {
	r.requests = append(r.requests, method+" "+path)
}

func (r *recordingObserver) ObserveStream(path string, _ time.Duration) {
	r.streams = append(r.streams, path)
}

func TestMetricsMiddlewareSeparatesStreamsAndSkips(t *testing.T) {
	gin.SetMode(gin.TestMode)
	obs := &recordingObserver{}
	r := gin.New()
	r.Use(observe(obs, []string{"/metrics"}))
	r.GET("/metrics", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/subjects", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/subjects/stream", func(c *gin.Context) {
		c.Header("Content-Type", "text/event-stream")
		c.Status(http.StatusOK)
	})

	for _, path := range []string{"/metrics", "/subjects", "/subjects/stream"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, []string{"GET /subjects"}, obs.requests)
	assert.Equal(t, []string{"/subjects/stream"}, obs.streams)
}
