package service

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/student-profile-api/internal/models"
)

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetricsService()
	m.ObserveHTTPRequest(http.MethodGet, "/api/v1/subjects", 200, 20*time.Millisecond)
	m.RecordCacheOperation(true, time.Millisecond)
	m.RecordCacheOperation(false, time.Millisecond)
	m.RecordSubjectCreated(models.SubjectCompleted)
	m.StreamOpened()
	m.StreamOpened()
	m.StreamClosed()
	m.RecordTranscript("csv")
	m.RecordAuth("login", "ok")
	m.RecordAuth("login", "INVALID_CREDENTIALS")

	snap := m.Snapshot()
	assert.Equal(t, uint64(1), snap.TranscriptsRendered)
	assert.Equal(t, uint64(1), snap.AuthRejected)
	assert.GreaterOrEqual(t, snap.UptimeSeconds, int64(0))
	assert.Equal(t, uint64(1), snap.RequestsTotal)
	assert.InDelta(t, 0.5, snap.CacheHitRatio, 1e-9)
	assert.Equal(t, uint64(1), snap.SubjectsCreated)
	assert.Equal(t, int64(1), snap.OpenStreams)
}

func TestMetricsHandlerExposesCollectors(t *testing.T) {
	m := NewMetricsService()
	m.RecordSubjectCreated(models.SubjectInProgress)
	m.RecordAuth("login", "INVALID_CREDENTIALS")
	m.RecordTranscript("pdf")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `subjects_created_total{status="in_progress"} 1`))
	assert.True(t, strings.Contains(body, `auth_attempts_total{action="login",outcome="INVALID_CREDENTIALS"} 1`))
	assert.True(t, strings.Contains(body, `transcripts_rendered_total{format="pdf"} 1`))
	assert.True(t, strings.Contains(body, "go_goroutines"))
}

func TestNilMetricsServiceIsSafe(t *testing.T) {
	var m *MetricsService
	m.RecordSubjectCreated(models.SubjectCompleted)
	m.StreamOpened()
	m.RecordAuth("login", "ok")
	assert.Equal(t, models.SystemMetrics{}, m.Snapshot())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
