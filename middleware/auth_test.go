package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/arenahub/tournament-ops/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(testSecret)
	require.NoError(t, err)
	return signed
}

func authedRequest(t *testing.T, claims jwt.MapClaims) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, claims))
	return req
}

func TestAuthenticateExposesClaims(t *testing.T) {
	var gotID int
	var gotRole models.UserRole
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := GetUserIDFromContext(r.Context())
		require.NoError(t, err)
		gotID = id

		role, err := GetUserRoleFromContext(r.Context())
		require.NoError(t, err)
		gotRole = role
	})

	rec := httptest.NewRecorder()
	Authenticate(testSecret)(next).ServeHTTP(rec, authedRequest(t, jwt.MapClaims{
		"user_id": 42,
		"role":    "organizer",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 42, gotID)
	assert.Equal(t, models.RoleOrganizer, gotRole)
}

func TestAuthenticateRejectsMissingOrBadToken(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run without valid credentials")
	})
	handler := Authenticate(testSecret)(next)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateRejectsExpiredToken(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run with an expired token")
	})

	rec := httptest.NewRecorder()
	Authenticate(testSecret)(next).ServeHTTP(rec, authedRequest(t, jwt.MapClaims{
		"user_id": 42,
		"role":    "organizer",
		"exp":     time.Now().Add(-time.Hour).Unix(),
	}))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthorizeRoleGate(t *testing.T) {
	var ran bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { ran = true })
	chain := Authenticate(testSecret)(Authorize(models.RoleOrganizer, models.RoleAdmin)(next))

	rec := httptest.NewRecorder()
	chain.ServeHTTP(rec, authedRequest(t, jwt.MapClaims{
		"user_id": 1,
		"role":    "admin",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, ran)

	ran = false
	rec = httptest.NewRecorder()
	chain.ServeHTTP(rec, authedRequest(t, jwt.MapClaims{
		"user_id": 2,
		"role":    "player",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, ran)
}

func TestAuthorizeWithoutClaimsIsUnauthorized(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run without claims in context")
	})

	rec := httptest.NewRecorder()
	Authorize(models.RoleAdmin)(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
