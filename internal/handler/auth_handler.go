package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/fyp-manager-api/internal/middleware"
	"github.com/noah-isme/fyp-manager-api/internal/models"
	"github.com/noah-isme/fyp-manager-api/pkg/response"
)

type authService interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
	Signup(ctx context.Context, actor *models.JWTClaims, req models.SignupRequest) (*models.LoginResponse, error)
	Me(ctx context.Context, actor *models.JWTClaims) (*models.Principal, error)
}

// CookieConfig describes the session cookie written at login.
type CookieConfig struct {
	Name   string
	MaxAge time.Duration
	Secure bool
}

// AuthHandler wires HTTP endpoints to the auth service.
type AuthHandler struct {
	service authService
	cookie  CookieConfig
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc authService, cookie CookieConfig) *AuthHandler {
	if cookie.Name == "" {
		cookie.Name = middleware.SessionCookie
	}
	if cookie.MaxAge <= 0 {
		cookie.MaxAge = 7 * 24 * time.Hour
	}
	return &AuthHandler{service: svc, cookie: cookie}
}

// Login godoc
// @Summary Log in by email
// @Description Resolves the email to an admin, guide or student and sets the session cookie
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if !bindJSON(c, &req, "invalid login payload") {
		return
	}

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.setSession(c, res.Token)
	middleware.SetAuditResource(c, res.User.ID)
	res.Token = ""
	response.JSON(c, http.StatusOK, res, nil)
}

// Signup godoc
// @Summary Create an administrator
// @Description Open while no administrator exists; afterwards requires an admin session
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.SignupRequest true "Signup payload"
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req models.SignupRequest
	if !bindJSON(c, &req, "invalid signup payload") {
		return
	}

	actor := claimsFromContext(c)
	res, err := h.service.Signup(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	if actor == nil {
		h.setSession(c, res.Token)
	}
	middleware.SetAuditResource(c, res.User.ID)
	res.Token = ""
	response.Created(c, res)
}

// Logout godoc
// @Summary Log out
// @Description Expires the session cookie
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(h.cookie.Name, "", -1, "/", "", h.cookie.Secure, true)
	response.JSON(c, http.StatusOK, gin.H{"message": "Logged out successfully"}, nil)
}

// Me godoc
// @Summary Current principal
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	principal, err := h.service.Me(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, principal, nil)
}

func (h *AuthHandler) setSession(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(h.cookie.Name, token, int(h.cookie.MaxAge.Seconds()), "/", "", h.cookie.Secure, true)
}
