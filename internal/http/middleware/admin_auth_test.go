package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func serveAdmin(t *testing.T, secret, authHeader string) (*httptest.ResponseRecorder, *AdminClaims) {
	t.Helper()
	var got *AdminClaims
	h := AdminJWT(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claims, ok := AdminClaimsFromContext(r.Context()); ok {
			got = &claims
		}
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodGet, "/admin/bookings", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec, got
}

func signed(t *testing.T, method jwt.SigningMethod, key any, claims AdminClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestAdminJWT(t *testing.T) {
	valid, err := IssueAdminToken("secret", "ops@clinic", time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	expiry := jwt.NewNumericDate(time.Now().Add(time.Hour))

	tests := []struct {
		name   string
		secret string
		header string
		want   int
	}{
		{"missing secret", "", "Bearer " + valid, http.StatusUnauthorized},
		{"missing header", "secret", "", http.StatusUnauthorized},
		{"wrong scheme", "secret", "Basic abc", http.StatusUnauthorized},
		{"wrong key", "other", "Bearer " + valid, http.StatusUnauthorized},
		{"no expiry", "secret", "Bearer " + signed(t, jwt.SigningMethodHS256, []byte("secret"), AdminClaims{Role: AdminRole}), http.StatusUnauthorized},
		{"expired", "secret", "Bearer " + signed(t, jwt.SigningMethodHS256, []byte("secret"), AdminClaims{
			Role:             AdminRole,
			RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))},
		}), http.StatusUnauthorized},
		{"hs512 rejected", "secret", "Bearer " + signed(t, jwt.SigningMethodHS512, []byte("secret"), AdminClaims{
			Role:             AdminRole,
			RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: expiry},
		}), http.StatusUnauthorized},
		{"wrong role", "secret", "Bearer " + signed(t, jwt.SigningMethodHS256, []byte("secret"), AdminClaims{
			Role:             "viewer",
			RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: expiry},
		}), http.StatusForbidden},
		{"valid", "secret", "Bearer " + valid, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := serveAdmin(t, tt.secret, tt.header)
			if rec.Code != tt.want {
				t.Fatalf("expected status %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestAdminJWTExposesClaims(t *testing.T) {
	token, err := IssueAdminToken("secret", "ops@clinic", time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	rec, claims := serveAdmin(t, "secret", "Bearer "+token)
	if rec.Code != http.StatusOK || claims == nil {
		t.Fatalf("expected claims in context, status %d", rec.Code)
	}
	if claims.Subject != "ops@clinic" || claims.Role != AdminRole {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestIssueAdminTokenRequiresSecret(t *testing.T) {
	if _, err := IssueAdminToken("", "ops", time.Hour); err == nil {
		t.Fatalf("expected error for empty secret")
	}
}
