package handler

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/student-profile-api/internal/models"
	appErrors "github.com/noah-isme/student-profile-api/pkg/errors"
)

func TestAuthHandlerRegisterCreated(t *testing.T) {
	mockSvc := &authServiceMock{registerResp: &models.RegisterResponse{UserID: "u1"}}
	handler := NewAuthHandler(mockSvc)

	body := bytes.NewBufferString(`{"firstName":"Ana","lastName":"Lee","email":"ana@example.com","password":"secret1"}`)
	c, w := newTestContext(http.MethodPost, "/auth/register", body, "")
	handler.Register(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, mockSvc.registerCalled)
	assert.Contains(t, w.Body.String(), `"user_id":"u1"`)
}

func TestAuthHandlerRegisterEmailTaken(t *testing.T) {
	mockSvc := &authServiceMock{registerErr: appErrors.Clone(appErrors.ErrEmailTaken, "")}
	handler := NewAuthHandler(mockSvc)

	body := bytes.NewBufferString(`{"firstName":"Ana","lastName":"Lee","email":"ana@example.com","password":"secret1"}`)
	c, w := newTestContext(http.MethodPost, "/auth/register", body, "")
	handler.Register(c)

	require.Equal(t, http.StatusConflict, w.Code)
	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, "EMAIL_ALREADY_IN_USE", env.Error.Code)
}

func TestAuthHandlerRegisterInvalidBody(t *testing.T) {
	mockSvc := &authServiceMock{}
	handler := NewAuthHandler(mockSvc)

	c, w := newTestContext(http.MethodPost, "/auth/register", bytes.NewBufferString(`{"email":`), "")
	handler.Register(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, mockSvc.registerCalled)
}

func TestAuthHandlerLoginCapturesClient(t *testing.T) {
	mockSvc := &authServiceMock{loginResp: &models.LoginResponse{TokenPair: models.TokenPair{AccessToken: "tok"}}}
	handler := NewAuthHandler(mockSvc)

	c, w := newTestContext(http.MethodPost, "/auth/login", bytes.NewBufferString(`{"email":"ana@example.com","password":"secret1"}`), "")
	c.Request.Header.Set("User-Agent", "student-app/1.0")
	handler.Login(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ana@example.com", mockSvc.lastLogin.Email)
	assert.Equal(t, "student-app/1.0", mockSvc.lastLogin.UserAgent)
}

func TestAuthHandlerLoginInvalidCredentials(t *testing.T) {
	mockSvc := &authServiceMock{loginErr: appErrors.Clone(appErrors.ErrInvalidCredentials, "")}
	handler := NewAuthHandler(mockSvc)

	c, w := newTestContext(http.MethodPost, "/auth/login", bytes.NewBufferString(`{"email":"ana@example.com","password":"nope"}`), "")
	handler.Login(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_CREDENTIALS")
}

func TestAuthHandlerRefresh(t *testing.T) {
	mockSvc := &authServiceMock{refreshResp: &models.RefreshTokenResponse{TokenPair: models.TokenPair{AccessToken: "new"}}}
	handler := NewAuthHandler(mockSvc)

	c, w := newTestContext(http.MethodPost, "/auth/refresh", bytes.NewBufferString(`{"refresh_token":"r1"}`), "")
	handler.Refresh(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"access_token":"new"`)
}

func TestAuthHandlerLogoutPassesIdentity(t *testing.T) {
	mockSvc := &authServiceMock{}
	handler := NewAuthHandler(mockSvc)

	c, w := newTestContext(http.MethodPost, "/auth/logout", bytes.NewBufferString(`{"refresh_token":"r1"}`), "u1")
	handler.Logout(c)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.True(t, mockSvc.logoutCalled)
	assert.Equal(t, "u1", mockSvc.lastLogoutUser)
}

func TestAuthHandlerLogoutRequiresToken(t *testing.T) {
	mockSvc := &authServiceMock{}
	handler := NewAuthHandler(mockSvc)

	c, w := newTestContext(http.MethodPost, "/auth/logout", bytes.NewBufferString(`{}`), "u1")
	handler.Logout(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, mockSvc.logoutCalled)
}

func TestAuthHandlerMe(t *testing.T) {
	handler := NewAuthHandler(&authServiceMock{})

	c, w := newTestContext(http.MethodGet, "/auth/me", nil, "u1")
	handler.Me(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"u1"`)

	c, w = newTestContext(http.MethodGet, "/auth/me", nil, "")
	handler.Me(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "MISSING_IDENTITY")
}
