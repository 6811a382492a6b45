package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/student-profile-api/internal/middleware"
	"github.com/noah-isme/student-profile-api/internal/models"
	"github.com/noah-isme/student-profile-api/pkg/response"
)

type authServiceMock struct {
	registerResp   *models.RegisterResponse
	registerErr    error
	loginResp      *models.LoginResponse
	loginErr       error
	refreshResp    *models.RefreshTokenResponse
	refreshErr     error
	logoutErr      error
	lastLogin      models.LoginRequest
	lastLogoutUser string
	registerCalled bool
	logoutCalled   bool
}

func (m *authServiceMock) Register(ctx context.Context, req models.RegisterRequest) (*models.RegisterResponse, error) {
	m.registerCalled = true
	return m.registerResp, m.registerErr
}

func (m *authServiceMock) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	m.lastLogin = req
	return m.loginResp, m.loginErr
}

func (m *authServiceMock) RefreshToken(ctx context.Context, req models.RefreshTokenRequest) (*models.RefreshTokenResponse, error) {
	return m.refreshResp, m.refreshErr
}

func (m *authServiceMock) Logout(ctx context.Context, refreshToken string, userID string) error {
	m.logoutCalled = true
	m.lastLogoutUser = userID
	return m.logoutErr
}

type profileServiceMock struct {
	profile      *models.Profile
	err          error
	lastPatch    models.ProfilePatch
	lastPayload  []byte
	lastUserID   string
	updateCalled bool
	photoCalled  bool
}

func (m *profileServiceMock) Get(ctx context.Context, userID string) (*models.Profile, error) {
	m.lastUserID = userID
	return m.profile, m.err
}

func (m *profileServiceMock) Update(ctx context.Context, userID string, patch models.ProfilePatch) (*models.Profile, error) {
	m.updateCalled = true
	m.lastUserID = userID
	m.lastPatch = patch
	return m.profile, m.err
}

func (m *profileServiceMock) UpdatePhoto(ctx context.Context, userID string, payload []byte) (*models.Profile, error) {
	m.photoCalled = true
	m.lastPayload = payload
	return m.profile, m.err
}

type subjectServiceMock struct {
	record      *models.SubjectRecord
	records     []models.SubjectRecord
	err         error
	snapshots   []models.SubjectSnapshot
	watchErr    error
	lastRequest models.CreateSubjectRequest
	lastUserID  string
	createCalls int
}

func (m *subjectServiceMock) Create(ctx context.Context, userID string, req models.CreateSubjectRequest) (*models.SubjectRecord, error) {
	m.createCalls++
	m.lastUserID = userID
	m.lastRequest = req
	return m.record, m.err
}

func (m *subjectServiceMock) List(ctx context.Context, userID string) ([]models.SubjectRecord, error) {
	m.lastUserID = userID
	return m.records, m.err
}

func (m *subjectServiceMock) Watch(ctx context.Context, userID string, fn func(models.SubjectSnapshot) error) error {
	m.lastUserID = userID
	for _, snap := range m.snapshots {
		if err := fn(snap); err != nil {
			return err
		}
	}
	return m.watchErr
}

type gradeSummaryMock struct {
	summary  *models.GradeSummary
	cacheHit bool
	err      error
}

func (m *gradeSummaryMock) Summary(ctx context.Context, userID string) (*models.GradeSummary, bool, error) {
	return m.summary, m.cacheHit, m.err
}

type transcriptServiceMock struct {
	file       *models.TranscriptFile
	share      *models.TranscriptShare
	err        error
	lastFormat string
	lastToken  string
}

func (m *transcriptServiceMock) Export(ctx context.Context, userID, format string) (*models.TranscriptFile, error) {
	m.lastFormat = format
	return m.file, m.err
}

func (m *transcriptServiceMock) Share(ctx context.Context, userID, format string) (*models.TranscriptShare, error) {
	m.lastFormat = format
	return m.share, m.err
}

func (m *transcriptServiceMock) Download(ctx context.Context, token string) (*models.TranscriptFile, error) {
	m.lastToken = token
	return m.file, m.err
}

func newTestContext(method, target string, body io.Reader, userID string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.Request = req
	if userID != "" {
		c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: userID, Email: userID + "@example.com"})
	}
	return c, w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var env response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}
