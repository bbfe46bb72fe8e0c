package handler

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/fyp-manager-api/internal/models"
	appErrors "github.com/noah-isme/fyp-manager-api/pkg/errors"
)

type fakeAuthService struct {
	loginErr    error
	signupActor *models.JWTClaims
	signupCalls int
}

func (f *fakeAuthService) Login(_ context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &models.LoginResponse{
		Message: "Login successful",
		Role:    models.RoleGuide,
		Token:   "signed-token",
		User:    models.Principal{ID: "guide-1", Email: req.Email, Role: models.RoleGuide},
	}, nil
}

func (f *fakeAuthService) Signup(_ context.Context, actor *models.JWTClaims, req models.SignupRequest) (*models.LoginResponse, error) {
	f.signupCalls++
	f.signupActor = actor
	return &models.LoginResponse{
		Message: "Admin created successfully",
		Role:    models.RoleAdmin,
		Token:   "admin-token",
		User:    models.Principal{ID: "admin-2", Email: req.Email, Name: req.UserName, Role: models.RoleAdmin},
	}, nil
}

func (f *fakeAuthService) Me(_ context.Context, actor *models.JWTClaims) (*models.Principal, error) {
	return &models.Principal{ID: actor.UserID, Role: actor.Role}, nil
}

func TestLoginSetsSessionCookie(t *testing.T) {
	h := NewAuthHandler(&fakeAuthService{}, CookieConfig{Name: "session", MaxAge: time.Hour, Secure: true})
	c, rec := newTestContext(http.MethodPost, "/api/login", jsonBody(`{"email":"grace@uni.edu"}`))

	h.Login(c)

	require.Equal(t, http.StatusOK, rec.Code)
	cookie := rec.Header().Get("Set-Cookie")
	assert.Contains(t, cookie, "session=signed-token")
	assert.Contains(t, cookie, "Max-Age=3600")
	assert.Contains(t, cookie, "HttpOnly")
	assert.Contains(t, cookie, "Secure")
	assert.Contains(t, cookie, "SameSite=Strict")
	assert.NotContains(t, rec.Body.String(), "signed-token")
	assert.Contains(t, rec.Body.String(), `"role":"Guide"`)
}

func TestLoginUnknownUser(t *testing.T) {
	h := NewAuthHandler(&fakeAuthService{loginErr: appErrors.ErrUserNotFound}, CookieConfig{})
	c, rec := newTestContext(http.MethodPost, "/api/login", jsonBody(`{"email":"ghost@uni.edu"}`))

	h.Login(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Header().Get("Set-Cookie"))
}

func TestLoginRejectsMalformedBody(t *testing.T) {
	h := NewAuthHandler(&fakeAuthService{}, CookieConfig{})
	c, rec := newTestContext(http.MethodPost, "/api/login", jsonBody(`{"email":`))

	h.Login(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, appErrors.ErrValidation.Code, decodeEnvelope(t, rec).Error.Code)
}

func TestSignupByAdminKeepsCallerSession(t *testing.T) {
	svc := &fakeAuthService{}
	h := NewAuthHandler(svc, CookieConfig{})
	c, rec := newTestContext(http.MethodPost, "/api/signup", jsonBody(`{"userName":"Second","email":"second@uni.edu"}`))
	actor := asUser(c, "admin-1", models.RoleAdmin)

	h.Signup(c)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Same(t, actor, svc.signupActor)
	assert.Empty(t, rec.Header().Get("Set-Cookie"))
}

func TestSignupBootstrapLogsIn(t *testing.T) {
	h := NewAuthHandler(&fakeAuthService{}, CookieConfig{})
	c, rec := newTestContext(http.MethodPost, "/api/signup", jsonBody(`{"userName":"First","email":"first@uni.edu"}`))

	h.Signup(c)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Set-Cookie"), "token=admin-token"))
}

func TestLogoutExpiresCookie(t *testing.T) {
	h := NewAuthHandler(&fakeAuthService{}, CookieConfig{})
	c, rec := newTestContext(http.MethodPost, "/api/logout", nil)

	h.Logout(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "Max-Age=0")
	assert.Contains(t, rec.Body.String(), "Logged out successfully")
}

func TestMeRequiresSession(t *testing.T) {
	h := NewAuthHandler(&fakeAuthService{}, CookieConfig{})
	c, rec := newTestContext(http.MethodGet, "/api/me", nil)

	h.Me(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "no token provided", decodeEnvelope(t, rec).Error.Message)
}
