package groups

import (
	"context"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"splitmate/internal/models"
	"splitmate/internal/repositories/sqlconnect"
	"splitmate/pkg/utils"
)

func authedRequest(method, target, body string, userID int) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	ctx := context.WithValue(req.Context(), utils.ContextKey("userId"), float64(userID))
	return req.WithContext(ctx)
}

func TestCreateGroupHandlerInsertsAdminInOneTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()
	sqlconnect.DB = db
	defer func() { sqlconnect.DB = nil }()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO groups (name, description) VALUES (?, ?)")).
		WithArgs("Trip", "Summer trip").
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO group_members (group_id, user_id, role) VALUES (?, ?, ?)")).
		WithArgs(5, 42, models.RoleAdmin).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	rec := httptest.NewRecorder()
	CreateGroupHandler(rec, authedRequest(http.MethodPost, "/groups/create",
		`{"name":"Trip","description":"Summer trip"}`, 42))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusCreated, rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCreateGroupHandlerRollsBackWhenAdminInsertFails(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()
	sqlconnect.DB = db
	defer func() { sqlconnect.DB = nil }()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO groups (name, description) VALUES (?, ?)")).
		WithArgs("Trip", "").
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO group_members")).
		WillReturnError(context.DeadlineExceeded)
	mock.ExpectRollback()

	rec := httptest.NewRecorder()
	CreateGroupHandler(rec, authedRequest(http.MethodPost, "/groups/create", `{"name":"Trip"}`, 42))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
