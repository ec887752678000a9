package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"splitmate/pkg/utils"
)

func okHandler(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestJWTMiddlewareMissingCookie(t *testing.T) {
	handler := JWTMiddleware(okHandler(t))

	req := httptest.NewRequest(http.MethodGet, "/groups/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestJWTMiddlewareValidToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := utils.SignToken(42, "+15551234567")
	if err != nil {
		t.Fatalf("SignToken: %v", err)
	}

	var gotUserID float64
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, _ = r.Context().Value(utils.ContextKey("userId")).(float64)
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/groups/", nil)
	req.AddCookie(&http.Cookie{Name: "Bearer", Value: token})
	rec := httptest.NewRecorder()
	JWTMiddleware(inner).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if int(gotUserID) != 42 {
		t.Errorf("userId in context = %v, want 42", gotUserID)
	}
}

func TestJWTMiddlewareGarbageToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	req := httptest.NewRequest(http.MethodGet, "/groups/", nil)
	req.AddCookie(&http.Cookie{Name: "Bearer", Value: "not-a-jwt"})
	rec := httptest.NewRecorder()
	JWTMiddleware(okHandler(t)).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestMiddlewaresExcludePaths(t *testing.T) {
	wrapped := MiddlewaresExcludePaths(JWTMiddleware, "/auth/request-otp", "/auth/verify-otp")(okHandler(t))

	// Excluded path goes straight through without a token.
	req := httptest.NewRequest(http.MethodPost, "/auth/request-otp", nil)
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("excluded path: status = %d, want %d", rec.Code, http.StatusOK)
	}

	// Everything else still requires auth.
	req = httptest.NewRequest(http.MethodGet, "/groups/", nil)
	rec = httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("protected path: status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}
