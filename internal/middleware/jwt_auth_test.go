package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/lumeo-app/backend/internal/middleware"
	"github.com/lumeo-app/backend/internal/models"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, expiresAt time.Time) string {
	t.Helper()
	claims := &models.JwtCustomClaims{
		UserID: "64b64c7f2f8fb814c8ef2b11",
		Email:  "a@x.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

// invoke runs the middleware around a trivial handler and reports the
// resulting error plus whatever claims the handler observed
func invoke(t *testing.T, authHeader string) (error, *models.JwtCustomClaims) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/post/all", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	c := e.NewContext(req, httptest.NewRecorder())

	var seen *models.JwtCustomClaims
	next := func(c echo.Context) error {
		seen, _ = c.Get("user").(*models.JwtCustomClaims)
		return c.NoContent(http.StatusOK)
	}

	err := middleware.JWTAuthMiddleware(testSecret)(next)(c)
	return err, seen
}

func assertStatus(t *testing.T, err error, want int) {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T (%v)", err, err)
	}
	if he.Code != want {
		t.Errorf("got status %d, want %d", he.Code, want)
	}
}

func TestJWTAuthMiddleware(t *testing.T) {
	t.Run("missing header is 401", func(t *testing.T) {
		err, _ := invoke(t, "")
		assertStatus(t, err, http.StatusUnauthorized)
	})

	t.Run("malformed header is 403", func(t *testing.T) {
		err, _ := invoke(t, "Token abc.def.ghi")
		assertStatus(t, err, http.StatusForbidden)
	})

	t.Run("wrong signature is 403", func(t *testing.T) {
		token := signToken(t, "some-other-secret", time.Now().Add(time.Hour))
		err, _ := invoke(t, "Bearer "+token)
		assertStatus(t, err, http.StatusForbidden)
	})

	t.Run("expired token is 403", func(t *testing.T) {
		token := signToken(t, testSecret, time.Now().Add(-time.Minute))
		err, _ := invoke(t, "Bearer "+token)
		assertStatus(t, err, http.StatusForbidden)
	})

	t.Run("valid token reaches the handler with claims", func(t *testing.T) {
		token := signToken(t, testSecret, time.Now().Add(time.Hour))
		err, claims := invoke(t, "Bearer "+token)
		if err != nil {
			t.Fatalf("middleware error = %v, want nil", err)
		}
		if claims == nil {
			t.Fatal("handler saw no claims in context")
		}
		if claims.Email != "a@x.com" {
			t.Errorf("claims email = %q, want %q", claims.Email, "a@x.com")
		}
		if claims.UserID != "64b64c7f2f8fb814c8ef2b11" {
			t.Errorf("claims userId = %q, want %q", claims.UserID, "64b64c7f2f8fb814c8ef2b11")
		}
	})
}
