package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret, sub string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": sub})
	s, err := tok.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func runIdentity(t *testing.T, secret, authHeader string) (int, string) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var captured string
	h := Identity(secret)(func(c echo.Context) error {
		captured = UserID(c)
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	return rec.Code, captured
}

func TestIdentityExtractsSubject(t *testing.T) {
	code, uid := runIdentity(t, testSecret, "Bearer "+signToken(t, testSecret, "user-42"))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "user-42", uid)
}

func TestIdentityAllowsAnonymous(t *testing.T) {
	code, uid := runIdentity(t, testSecret, "")
	assert.Equal(t, http.StatusOK, code)
	assert.Empty(t, uid)
}

func TestIdentityRejectsForgedToken(t *testing.T) {
	code, _ := runIdentity(t, testSecret, "Bearer "+signToken(t, "wrong-secret", "user-42"))
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestIdentityRejectsGarbageToken(t *testing.T) {
	code, _ := runIdentity(t, testSecret, "Bearer not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestIdentityDisabledWithoutSecret(t *testing.T) {
	// With no secret configured even a garbage token passes through
	// anonymously instead of blocking traffic.
	code, uid := runIdentity(t, "", "Bearer not-a-jwt")
	assert.Equal(t, http.StatusOK, code)
	assert.Empty(t, uid)
}
