package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/wolfman30/careflow-portal/internal/auth"
)

func TestBearerAuthMissingHeader(t *testing.T) {
	mw := BearerAuth(auth.NewJWTVerifier("secret", ""), nil)
	req := httptest.NewRequest(http.MethodGet, "/api/calendar/events", nil)
	rec := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler must not run")
	})).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestBearerAuthInvalidToken(t *testing.T) {
	mw := BearerAuth(auth.NewJWTVerifier("secret", ""), nil)
	req := httptest.NewRequest(http.MethodGet, "/api/calendar/events", nil)
	req.Header.Set("Authorization", "Bearer "+signedUserToken(t, "wrong"))
	rec := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestBearerAuthValidToken(t *testing.T) {
	mw := BearerAuth(auth.NewJWTVerifier("secret", ""), nil)
	req := httptest.NewRequest(http.MethodGet, "/api/calendar/events", nil)
	req.Header.Set("Authorization", "Bearer "+signedUserToken(t, "secret"))
	rec := httptest.NewRecorder()

	called := false
	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		id, ok := auth.IdentityFromContext(r.Context())
		if !ok || id.UserID != "patient-1" {
			t.Fatalf("expected identity in context, got %+v", id)
		}
		w.WriteHeader(http.StatusOK)
	})).ServeHTTP(rec, req)

	if !called {
		t.Fatalf("expected handler to be called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
}

func signedUserToken(t *testing.T, secret string) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   "patient-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(5 * time.Minute)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}
