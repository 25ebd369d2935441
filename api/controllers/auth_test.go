package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dhruvbhatia/bizdesk-backend/internal/auth"
	"github.com/dhruvbhatia/bizdesk-backend/pkg/enums"
	pkgerrors "github.com/dhruvbhatia/bizdesk-backend/pkg/errors"
	"github.com/dhruvbhatia/bizdesk-backend/pkg/logger"
)

type stubAuthService struct {
	session  *auth.SessionResponse
	err      error
	loggedIn auth.LoginRequest
}

func (s *stubAuthService) Login(_ context.Context, req auth.LoginRequest) (*auth.SessionResponse, error) {
	s.loggedIn = req
	return s.session, s.err
}

func (s *stubAuthService) Refresh(_ context.Context, _ auth.RefreshRequest) (*auth.SessionResponse, error) {
	return s.session, s.err
}

func (s *stubAuthService) Logout(_ context.Context, _ auth.LogoutRequest) error {
	return s.err
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func TestLoginSuccess(t *testing.T) {
	svc := &stubAuthService{session: &auth.SessionResponse{
		Role:         enums.RoleAdmin,
		AccessToken:  "jwt-token",
		RefreshToken: "refresh-token",
		ExpiresIn:    3600,
	}}
	handler := Login(svc, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"token":"admin-access-token"}`))
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", rec.Code, rec.Body.String())
	}
	if svc.loggedIn.Token != "admin-access-token" {
		t.Fatalf("service saw token %q", svc.loggedIn.Token)
	}

	var body struct {
		Data auth.SessionResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.Role != enums.RoleAdmin || body.Data.AccessToken != "jwt-token" {
		t.Fatalf("data = %+v", body.Data)
	}
}

func TestLoginValidationFailure(t *testing.T) {
	handler := Login(&stubAuthService{}, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"token":"short"}`))
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestLoginUnknownToken(t *testing.T) {
	svc := &stubAuthService{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")}
	handler := Login(svc, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"token":"wrong-token-value"}`))
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestLoginNilService(t *testing.T) {
	handler := Login(nil, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"token":"whatever-token"}`))
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestLogout(t *testing.T) {
	handler := Logout(&stubAuthService{}, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", strings.NewReader(`{"access_token":"jwt-token"}`))
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "logged_out") {
		t.Fatalf("body = %s", rec.Body.String())
	}
}
