package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/fyp-manager-api/internal/models"
)

func newTestAuthService(store *principalStore) *AuthService {
	return NewAuthService(store, validator.New(), zap.NewNop(), AuthConfig{Secret: "secret", Expiry: time.Hour, Issuer: "fyp-test"})
}

func TestAuthServiceLoginResolvesAdminBeforeStudent(t *testing.T) {
	store := newPrincipalStore(
		models.Principal{Role: models.RoleStudent, Name: "Shared Student", Email: "shared@example.com", Department: "CSE"},
		models.Principal{Role: models.RoleAdmin, Name: "Shared Admin", Email: "shared@example.com"},
	)
	svc := newTestAuthService(store)

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: " shared@example.com "})
	require.NoError(t, err)
	assert.Equal(t, "Login successful", res.Message)
	assert.Equal(t, models.RoleAdmin, res.Role)
	assert.Equal(t, int64(3600), res.ExpiresIn)
	assert.NotEmpty(t, res.Token)

	claims, err := svc.ValidateToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.Equal(t, "fyp-test", claims.Issuer)
}

func TestAuthServiceLoginCarriesDepartment(t *testing.T) {
	store := newPrincipalStore()
	guide := store.add(models.RoleGuide, "Grace Hopper", "CSE")
	svc := newTestAuthService(store)

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: guide.Email})
	require.NoError(t, err)
	claims, err := svc.ValidateToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, "CSE", claims.Department)
	assert.Equal(t, models.RoleGuide, claims.Role)
}

func TestAuthServiceLoginUnknownEmail(t *testing.T) {
	svc := newTestAuthService(newPrincipalStore())
	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "nobody@example.com"})
	requireAppError(t, err, http.StatusUnauthorized, "user not found")
}

func TestAuthServiceLoginValidatesEmail(t *testing.T) {
	svc := newTestAuthService(newPrincipalStore())
	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "not-an-email"})
	requireAppError(t, err, http.StatusBadRequest, "")
}

func TestAuthServiceSignupBootstrapsFirstAdmin(t *testing.T) {
	store := newPrincipalStore()
	svc := newTestAuthService(store)

	res, err := svc.Signup(context.Background(), nil, models.SignupRequest{UserName: "Root", Email: "Root@Example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Admin created successfully", res.Message)
	assert.Equal(t, "root@example.com", res.User.Email)
	count, _ := store.CountByRole(context.Background(), models.RoleAdmin)
	assert.Equal(t, 1, count)
}

func TestAuthServiceSignupRequiresAdminOnceBootstrapped(t *testing.T) {
	store := newPrincipalStore()
	admin := store.add(models.RoleAdmin, "Root", "")
	student := store.add(models.RoleStudent, "Sam", "CSE")
	svc := newTestAuthService(store)

	_, err := svc.Signup(context.Background(), nil, models.SignupRequest{UserName: "Second", Email: "second@example.com"})
	requireAppError(t, err, http.StatusForbidden, "")

	_, err = svc.Signup(context.Background(), claimsFor(student), models.SignupRequest{UserName: "Second", Email: "second@example.com"})
	requireAppError(t, err, http.StatusForbidden, "")

	res, err := svc.Signup(context.Background(), claimsFor(admin), models.SignupRequest{UserName: "Second", Email: "second@example.com"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, res.Role)
}

func TestAuthServiceSignupDuplicateEmail(t *testing.T) {
	store := newPrincipalStore()
	admin := store.add(models.RoleAdmin, "Root", "")
	guide := store.add(models.RoleGuide, "Grace", "CSE")
	svc := newTestAuthService(store)

	_, err := svc.Signup(context.Background(), claimsFor(admin), models.SignupRequest{UserName: "Grace", Email: guide.Email})
	requireAppError(t, err, http.StatusConflict, "Admin already exists with this email")

	store.createErr = &pq.Error{Code: "23505", Constraint: "principals_email_key"}
	_, err = svc.Signup(context.Background(), claimsFor(admin), models.SignupRequest{UserName: "Racer", Email: "racer@example.com"})
	requireAppError(t, err, http.StatusConflict, "Admin already exists with this email")
}

func TestAuthServiceMe(t *testing.T) {
	store := newPrincipalStore()
	student := store.add(models.RoleStudent, "Sam", "CSE")
	svc := newTestAuthService(store)

	got, err := svc.Me(context.Background(), claimsFor(student))
	require.NoError(t, err)
	assert.Equal(t, "Sam", got.Name)

	_, err = svc.Me(context.Background(), &models.JWTClaims{UserID: "gone", Role: models.RoleStudent})
	requireAppError(t, err, http.StatusUnauthorized, "user not found")
}

func TestAuthServiceValidateTokenRejects(t *testing.T) {
	svc := newTestAuthService(newPrincipalStore())

	sign := func(claims *models.JWTClaims, secret string) string {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		require.NoError(t, err)
		return token
	}
	future := jwt.NewNumericDate(time.Now().Add(time.Hour))
	past := jwt.NewNumericDate(time.Now().Add(-time.Hour))

	cases := map[string]string{
		"garbage":      "not-a-token",
		"wrong secret": sign(&models.JWTClaims{UserID: "u1", Role: models.RoleAdmin, RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: future}}, "other"),
		"expired":      sign(&models.JWTClaims{UserID: "u1", Role: models.RoleAdmin, RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: past}}, "secret"),
		"unknown role": sign(&models.JWTClaims{UserID: "u1", Role: "superuser", RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: future}}, "secret"),
		"missing id":   sign(&models.JWTClaims{Role: models.RoleGuide, RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: future}}, "secret"),
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ValidateToken(token)
			requireAppError(t, err, http.StatusUnauthorized, "invalid token")
		})
	}
}
