package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	pkgAuth "github.com/dhruvbhatia/bizdesk-backend/pkg/auth"
	"github.com/dhruvbhatia/bizdesk-backend/pkg/config"
	"github.com/dhruvbhatia/bizdesk-backend/pkg/enums"
	"github.com/dhruvbhatia/bizdesk-backend/pkg/logger"
)

type stubSessionChecker struct {
	ok    bool
	err   error
	gotID string
}

func (s *stubSessionChecker) HasSession(_ context.Context, accessID string) (bool, error) {
	s.gotID = accessID
	return s.ok, s.err
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func jwtConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "middleware-test-secret",
		Issuer:            "bizdesk-test",
		ExpirationMinutes: 15,
	}
}

func mintToken(t *testing.T, cfg config.JWTConfig, role enums.Role, jti string) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg, time.Now(), pkgAuth.AccessTokenPayload{Role: role, JTI: jti})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	return token
}

func runAuth(t *testing.T, cfg config.JWTConfig, checker *stubSessionChecker, header string) (*httptest.ResponseRecorder, enums.Role, string) {
	t.Helper()

	var seenRole enums.Role
	var seenID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenRole = RoleFromContext(r.Context())
		seenID = AccessIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	handler := Auth(cfg, checker, testLogger())(next)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/inventory", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec, seenRole, seenID
}

func TestAuthMissingHeader(t *testing.T) {
	rec, _, _ := runAuth(t, jwtConfig(), &stubSessionChecker{ok: true}, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestAuthMalformedToken(t *testing.T) {
	rec, _, _ := runAuth(t, jwtConfig(), &stubSessionChecker{ok: true}, "Bearer not-a-jwt")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Error.Code != "UNAUTHORIZED" {
		t.Fatalf("error code = %q", body.Error.Code)
	}
}

func TestAuthWrongSecret(t *testing.T) {
	other := jwtConfig()
	other.Secret = "a-different-secret"
	token := mintToken(t, other, enums.RoleAdmin, "jti-1")

	rec, _, _ := runAuth(t, jwtConfig(), &stubSessionChecker{ok: true}, "Bearer "+token)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestAuthSeedsRoleAndAccessID(t *testing.T) {
	cfg := jwtConfig()
	checker := &stubSessionChecker{ok: true}
	token := mintToken(t, cfg, enums.RoleShopOwner, "jti-42")

	rec, role, accessID := runAuth(t, cfg, checker, "Bearer "+token)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204 (%s)", rec.Code, rec.Body.String())
	}
	if role != enums.RoleShopOwner {
		t.Fatalf("role = %q", role)
	}
	if accessID != "jti-42" {
		t.Fatalf("access id = %q", accessID)
	}
	if checker.gotID != "jti-42" {
		t.Fatalf("session checked for %q", checker.gotID)
	}
}

func TestAuthRevokedSession(t *testing.T) {
	cfg := jwtConfig()
	token := mintToken(t, cfg, enums.RoleAdmin, "jti-9")

	rec, _, _ := runAuth(t, cfg, &stubSessionChecker{ok: false}, "Bearer "+token)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestAuthSessionStoreFailure(t *testing.T) {
	cfg := jwtConfig()
	token := mintToken(t, cfg, enums.RoleAdmin, "jti-9")

	rec, _, _ := runAuth(t, cfg, &stubSessionChecker{err: errors.New("redis down")}, "Bearer "+token)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestRequireRole(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	handler := RequireRole(enums.RoleAdmin, testLogger())(next)

	req := httptest.NewRequest(http.MethodDelete, "/api/admin/v1/inventory", nil)
	req = req.WithContext(WithRole(req.Context(), enums.RoleShopOwner))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/admin/v1/inventory", nil)
	req = req.WithContext(WithRole(req.Context(), enums.RoleAdmin))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
}
