package responses

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/dhruvbhatia/bizdesk-backend/pkg/errors"
	"github.com/dhruvbhatia/bizdesk-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

type errorBody struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v (%s)", err, rec.Body.String())
	}
	return body
}

func TestWriteSuccessEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteSuccess(rec, map[string]string{"status": "ok"})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Fatalf("content type = %q", got)
	}

	var body struct {
		Data map[string]string `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data["status"] != "ok" {
		t.Fatalf("data = %v", body.Data)
	}
}

func TestWriteSuccessStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteSuccessStatus(rec, http.StatusCreated, map[string]int{"id": 7})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestWriteErrorTyped(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(context.Background(), testLogger(), rec, pkgerrors.New(pkgerrors.CodeNotFound, "item not found"))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	body := decodeError(t, rec)
	if body.Error.Code != "NOT_FOUND" {
		t.Fatalf("code = %q", body.Error.Code)
	}
	if body.Error.Message != "item not found" {
		t.Fatalf("message = %q", body.Error.Message)
	}
}

func TestWriteErrorUntypedBecomesInternal(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(context.Background(), testLogger(), rec, errors.New("nil pointer somewhere"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	body := decodeError(t, rec)
	if body.Error.Code != "INTERNAL_ERROR" {
		t.Fatalf("code = %q", body.Error.Code)
	}
	// Internal details never reach the client.
	if body.Error.Message != "internal server error" {
		t.Fatalf("message = %q leaks internals", body.Error.Message)
	}
}

func TestWriteErrorStorageHidesMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	err := pkgerrors.Wrap(pkgerrors.CodeStorage, errors.New("pq: connection refused"), "insert inventory row")
	WriteError(context.Background(), testLogger(), rec, err)

	body := decodeError(t, rec)
	if body.Error.Message != "storage failure" {
		t.Fatalf("message = %q, want generic storage message", body.Error.Message)
	}
}

func TestWriteErrorValidationDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	err := pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
		WithDetails(map[string]any{"product_name": "required"})
	WriteError(context.Background(), testLogger(), rec, err)

	body := decodeError(t, rec)
	if body.Error.Details["product_name"] != "required" {
		t.Fatalf("details = %v", body.Error.Details)
	}
}

func TestWriteErrorForbiddenDropsDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	err := pkgerrors.New(pkgerrors.CodeForbidden, "role required").
		WithDetails(map[string]any{"have": "shop_owner"})
	WriteError(context.Background(), testLogger(), rec, err)

	body := decodeError(t, rec)
	if body.Error.Details != nil {
		t.Fatalf("details leaked: %v", body.Error.Details)
	}
}

func TestWriteErrorNil(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(context.Background(), testLogger(), rec, nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}
