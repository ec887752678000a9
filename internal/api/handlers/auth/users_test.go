package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"splitmate/internal/repositories/sqlconnect"
	"splitmate/pkg/utils"
)

func authedRequest(method, target, body string, userID int) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	ctx := context.WithValue(req.Context(), utils.ContextKey("userId"), float64(userID))
	return req.WithContext(ctx)
}

func TestUpdateProfileHandlerKeepsOmittedFields(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()
	sqlconnect.DB = db
	defer func() { sqlconnect.DB = nil }()

	// Only name in the body: email and image must stay out of the SET
	// clause entirely, not be overwritten with NULL.
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET name = ? WHERE id = ?")).
		WithArgs("Ada", 42).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec := httptest.NewRecorder()
	UpdateProfileHandler(rec, authedRequest(http.MethodPatch, "/auth/profile", `{"name":"Ada"}`, 42))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestUpdateProfileHandlerSetsProvidedFields(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()
	sqlconnect.DB = db
	defer func() { sqlconnect.DB = nil }()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET name = ?, email = ? WHERE id = ?")).
		WithArgs("Ada", "ada@example.com", 42).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec := httptest.NewRecorder()
	UpdateProfileHandler(rec, authedRequest(http.MethodPatch, "/auth/profile",
		`{"name":"Ada","email":"ada@example.com"}`, 42))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestUpdateProfileHandlerRequiresName(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()
	sqlconnect.DB = db
	defer func() { sqlconnect.DB = nil }()

	rec := httptest.NewRecorder()
	UpdateProfileHandler(rec, authedRequest(http.MethodPatch, "/auth/profile",
		`{"email":"ada@example.com"}`, 42))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}
